// Package memory implementa el almacén jerárquico en memoria del proceso.
// Se usa en desarrollo local (STORE_DRIVER=memory) y en los tests de guard, cascada y casos de uso.
// Las transacciones trabajan sobre una copia del conjunto de datos que solo se publica en Commit.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Logistica-api/internal/application/ports"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type dataset struct {
	companies map[string]entity.Company
	depots    map[string]entity.Depot
	users     map[string]entity.User
	clients   map[string]entity.Client
	products  map[string]entity.Product
}

func newDataset() *dataset {
	return &dataset{
		companies: map[string]entity.Company{},
		depots:    map[string]entity.Depot{},
		users:     map[string]entity.User{},
		clients:   map[string]entity.Client{},
		products:  map[string]entity.Product{},
	}
}

func (d *dataset) clone() *dataset {
	out := newDataset()
	for k, v := range d.companies {
		out.companies[k] = v
	}
	for k, v := range d.depots {
		out.depots[k] = v
	}
	for k, v := range d.users {
		out.users[k] = copyUser(v)
	}
	for k, v := range d.clients {
		out.clients[k] = v
	}
	for k, v := range d.products {
		out.products[k] = copyProduct(v)
	}
	return out
}

// Store almacén en memoria. Una transacción a la vez; las lecturas fuera de tx toman el mismo lock.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// Repositories devuelve los repositorios fuera de transacción.
// No usarlos dentro de RunInTx: el lock del almacén ya está tomado.
func (s *Store) Repositories() repository.Repositories {
	return s.bind(nil)
}

// RunInTx ejecuta fn sobre una copia; si fn no falla la copia reemplaza al estado publicado.
func (s *Store) RunInTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.data.clone()
	if err := fn(s.bind(snapshot)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = snapshot
	return nil
}

func (s *Store) bind(tx *dataset) repository.Repositories {
	b := binding{store: s, tx: tx}
	return repository.Repositories{
		Companies: &CompanyRepo{b},
		Depots:    &DepotRepo{b},
		Users:     &UserRepo{b},
		Clients:   &ClientRepo{b},
		Products:  &ProductRepo{b},
	}
}

type binding struct {
	store *Store
	tx    *dataset
}

func (b binding) do(ctx context.Context, fn func(d *dataset) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.data)
}

func copyUser(u entity.User) entity.User {
	if u.CompanyID != nil {
		c := *u.CompanyID
		u.CompanyID = &c
	}
	if u.DepotID != nil {
		d := *u.DepotID
		u.DepotID = &d
	}
	return u
}

func copyProduct(p entity.Product) entity.Product {
	if p.Availability != nil {
		p.Availability = append([]entity.StockEntry(nil), p.Availability...)
	}
	return p
}

// page ordena por creación descendente (desempate por ID) y aplica limit/offset.
func page[T any](items []T, created func(T) time.Time, id func(T) string, limit, offset int) []T {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if ci.Equal(cj) {
			return id(items[i]) < id(items[j])
		}
		return ci.After(cj)
	})
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
