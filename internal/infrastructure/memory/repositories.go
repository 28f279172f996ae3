package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var (
	_ repository.CompanyRepository = (*CompanyRepo)(nil)
	_ repository.DepotRepository   = (*DepotRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.ClientRepository  = (*ClientRepo)(nil)
	_ repository.ProductRepository = (*ProductRepo)(nil)
)

// ── Company ──────────────────────────────────────────────────────────────────

// CompanyRepo empresas en memoria.
type CompanyRepo struct{ b binding }

func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	return r.b.do(ctx, func(d *dataset) error {
		if _, ok := d.companies[c.ID]; ok {
			return fmt.Errorf("empresa %s: %w", c.ID, domain.ErrConflict)
		}
		for _, other := range d.companies {
			if other.NameKey == c.NameKey {
				return domain.ErrCompanyNameTaken
			}
		}
		d.companies[c.ID] = *c
		return nil
	})
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	err := r.b.do(ctx, func(d *dataset) error {
		if c, ok := d.companies[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CompanyRepo) GetByNameKey(ctx context.Context, nameKey string) (*entity.Company, error) {
	var out *entity.Company
	err := r.b.do(ctx, func(d *dataset) error {
		for _, c := range d.companies {
			if c.NameKey == nameKey {
				c := c
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria equivale a GetByID: la transacción ya tiene el almacén en exclusiva.
func (r *CompanyRepo) GetForUpdate(ctx context.Context, id string) (*entity.Company, error) {
	return r.GetByID(ctx, id)
}

func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	return r.b.do(ctx, func(d *dataset) error {
		cur, ok := d.companies[c.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for id, other := range d.companies {
			if id != c.ID && other.NameKey == c.NameKey {
				return domain.ErrCompanyNameTaken
			}
		}
		cur.Name, cur.NameKey, cur.Address, cur.UpdatedAt = c.Name, c.NameKey, c.Address, c.UpdatedAt
		d.companies[c.ID] = cur
		return nil
	})
}

func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	var out []*entity.Company
	err := r.b.do(ctx, func(d *dataset) error {
		items := make([]entity.Company, 0, len(d.companies))
		for _, c := range d.companies {
			items = append(items, c)
		}
		items = page(items, func(c entity.Company) time.Time { return c.CreatedAt }, func(c entity.Company) string { return c.ID }, limit, offset)
		for i := range items {
			out = append(out, &items[i])
		}
		return nil
	})
	return out, err
}

func (r *CompanyRepo) Delete(ctx context.Context, id string) error {
	return r.b.do(ctx, func(d *dataset) error {
		for _, dep := range d.depots {
			if dep.CompanyID == id {
				return fmt.Errorf("empresa %s con sedes: %w", id, domain.ErrConflict)
			}
		}
		for _, u := range d.users {
			if u.Company() == id {
				return fmt.Errorf("empresa %s con usuarios: %w", id, domain.ErrConflict)
			}
		}
		for _, c := range d.clients {
			if c.CompanyID == id {
				return fmt.Errorf("empresa %s con clientes: %w", id, domain.ErrConflict)
			}
		}
		for _, p := range d.products {
			if p.CompanyID == id {
				return fmt.Errorf("empresa %s con productos: %w", id, domain.ErrConflict)
			}
		}
		delete(d.companies, id)
		return nil
	})
}

// ── Depot ────────────────────────────────────────────────────────────────────

// DepotRepo sedes en memoria.
type DepotRepo struct{ b binding }

func (r *DepotRepo) Create(ctx context.Context, dep *entity.Depot) error {
	return r.b.do(ctx, func(d *dataset) error {
		if _, ok := d.companies[dep.CompanyID]; !ok {
			return fmt.Errorf("empresa %s inexistente: %w", dep.CompanyID, domain.ErrInvalidInput)
		}
		if _, ok := d.depots[dep.ID]; ok {
			return fmt.Errorf("sede %s: %w", dep.ID, domain.ErrConflict)
		}
		d.depots[dep.ID] = *dep
		return nil
	})
}

func (r *DepotRepo) GetByID(ctx context.Context, id string) (*entity.Depot, error) {
	var out *entity.Depot
	err := r.b.do(ctx, func(d *dataset) error {
		if dep, ok := d.depots[id]; ok {
			out = &dep
		}
		return nil
	})
	return out, err
}

func (r *DepotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Depot, error) {
	return r.GetByID(ctx, id)
}

func (r *DepotRepo) Update(ctx context.Context, dep *entity.Depot) error {
	return r.b.do(ctx, func(d *dataset) error {
		cur, ok := d.depots[dep.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Name, cur.Capacity, cur.Address = dep.Name, dep.Capacity, dep.Address
		cur.Latitude, cur.Longitude, cur.ResponsableID = dep.Latitude, dep.Longitude, dep.ResponsableID
		cur.UpdatedAt = dep.UpdatedAt
		d.depots[dep.ID] = cur
		return nil
	})
}

func (r *DepotRepo) List(ctx context.Context, scope access.ScopeFilter, limit, offset int) ([]*entity.Depot, error) {
	var out []*entity.Depot
	err := r.b.do(ctx, func(d *dataset) error {
		items := make([]entity.Depot, 0)
		for _, dep := range d.depots {
			if scope.CompanyID != "" && dep.CompanyID != scope.CompanyID {
				continue
			}
			if scope.DepotID != "" && dep.ID != scope.DepotID {
				continue
			}
			items = append(items, dep)
		}
		items = page(items, func(x entity.Depot) time.Time { return x.CreatedAt }, func(x entity.Depot) string { return x.ID }, limit, offset)
		for i := range items {
			out = append(out, &items[i])
		}
		return nil
	})
	return out, err
}

func (r *DepotRepo) Delete(ctx context.Context, id string) error {
	return r.b.do(ctx, func(d *dataset) error {
		for _, u := range d.users {
			if u.Depot() == id {
				return fmt.Errorf("sede %s con usuarios: %w", id, domain.ErrConflict)
			}
		}
		delete(d.depots, id)
		return nil
	})
}

func (r *DepotRepo) DeleteByCompany(ctx context.Context, companyID string) (int64, error) {
	var n int64
	err := r.b.do(ctx, func(d *dataset) error {
		for id, dep := range d.depots {
			if dep.CompanyID == companyID {
				delete(d.depots, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

// ── User ─────────────────────────────────────────────────────────────────────

// UserRepo usuarios en memoria. El email es único sin distinguir mayúsculas.
type UserRepo struct{ b binding }

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.b.do(ctx, func(d *dataset) error {
		if err := checkUserRefs(d, u); err != nil {
			return err
		}
		for _, other := range d.users {
			if strings.EqualFold(other.Email, u.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		d.users[u.ID] = copyUser(*u)
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.b.do(ctx, func(d *dataset) error {
		if u, ok := d.users[id]; ok {
			cp := copyUser(u)
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.b.do(ctx, func(d *dataset) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, email) {
				cp := copyUser(u)
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	return r.b.do(ctx, func(d *dataset) error {
		cur, ok := d.users[u.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Name, cur.Role, cur.Status, cur.UpdatedAt = u.Name, u.Role, u.Status, u.UpdatedAt
		d.users[u.ID] = cur
		return nil
	})
}

func (r *UserRepo) SetDepot(ctx context.Context, u *entity.User) error {
	return r.b.do(ctx, func(d *dataset) error {
		cur, ok := d.users[u.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if err := checkUserRefs(d, u); err != nil {
			return err
		}
		next := copyUser(*u)
		cur.CompanyID, cur.DepotID, cur.UpdatedAt = next.CompanyID, next.DepotID, next.UpdatedAt
		d.users[u.ID] = cur
		return nil
	})
}

func (r *UserRepo) List(ctx context.Context, scope access.ScopeFilter, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	err := r.b.do(ctx, func(d *dataset) error {
		items := make([]entity.User, 0)
		for _, u := range d.users {
			if scope.CompanyID != "" && u.Company() != scope.CompanyID {
				continue
			}
			if scope.DepotID != "" && u.Depot() != scope.DepotID {
				continue
			}
			items = append(items, copyUser(u))
		}
		items = page(items, func(x entity.User) time.Time { return x.CreatedAt }, func(x entity.User) string { return x.ID }, limit, offset)
		for i := range items {
			out = append(out, &items[i])
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.b.do(ctx, func(d *dataset) error {
		delete(d.users, id)
		return nil
	})
}

func (r *UserRepo) DeleteByCompany(ctx context.Context, companyID string) (int64, error) {
	var n int64
	err := r.b.do(ctx, func(d *dataset) error {
		for id, u := range d.users {
			if u.Company() == companyID {
				delete(d.users, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *UserRepo) DetachFromDepot(ctx context.Context, depotID string) (int64, error) {
	var n int64
	err := r.b.do(ctx, func(d *dataset) error {
		for id, u := range d.users {
			if u.Depot() == depotID {
				u.Detach()
				d.users[id] = u
				n++
			}
		}
		return nil
	})
	return n, err
}

// checkUserRefs emula las claves foráneas de users.company_id y users.depot_id.
func checkUserRefs(d *dataset, u *entity.User) error {
	if id := u.Company(); id != "" {
		if _, ok := d.companies[id]; !ok {
			return fmt.Errorf("empresa %s inexistente: %w", id, domain.ErrInvalidInput)
		}
	}
	if id := u.Depot(); id != "" {
		dep, ok := d.depots[id]
		if !ok {
			return fmt.Errorf("sede %s inexistente: %w", id, domain.ErrInvalidInput)
		}
		if dep.CompanyID != u.Company() {
			return domain.ErrDepotCompanyMismatch
		}
	}
	return nil
}

// ── Client ───────────────────────────────────────────────────────────────────

// ClientRepo clientes en memoria.
type ClientRepo struct{ b binding }

func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	return r.b.do(ctx, func(d *dataset) error {
		if _, ok := d.companies[c.CompanyID]; !ok {
			return fmt.Errorf("empresa %s inexistente: %w", c.CompanyID, domain.ErrInvalidInput)
		}
		d.clients[c.ID] = *c
		return nil
	})
}

func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	var out *entity.Client
	err := r.b.do(ctx, func(d *dataset) error {
		if c, ok := d.clients[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *ClientRepo) List(ctx context.Context, scope access.ScopeFilter, limit, offset int) ([]*entity.Client, error) {
	var out []*entity.Client
	err := r.b.do(ctx, func(d *dataset) error {
		items := make([]entity.Client, 0)
		for _, c := range d.clients {
			if scope.CompanyID != "" && c.CompanyID != scope.CompanyID {
				continue
			}
			items = append(items, c)
		}
		items = page(items, func(x entity.Client) time.Time { return x.CreatedAt }, func(x entity.Client) string { return x.ID }, limit, offset)
		for i := range items {
			out = append(out, &items[i])
		}
		return nil
	})
	return out, err
}

func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	return r.b.do(ctx, func(d *dataset) error {
		delete(d.clients, id)
		return nil
	})
}

func (r *ClientRepo) DeleteByCompany(ctx context.Context, companyID string) (int64, error) {
	var n int64
	err := r.b.do(ctx, func(d *dataset) error {
		for id, c := range d.clients {
			if c.CompanyID == companyID {
				delete(d.clients, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

// ── Product ──────────────────────────────────────────────────────────────────

// ProductRepo productos y stock por sede en memoria.
type ProductRepo struct{ b binding }

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.b.do(ctx, func(d *dataset) error {
		if _, ok := d.companies[p.CompanyID]; !ok {
			return fmt.Errorf("empresa %s inexistente: %w", p.CompanyID, domain.ErrInvalidInput)
		}
		for _, other := range d.products {
			if other.CompanyID == p.CompanyID && other.SKU == p.SKU {
				return fmt.Errorf("sku %s: %w", p.SKU, domain.ErrConflict)
			}
		}
		d.products[p.ID] = copyProduct(*p)
		return nil
	})
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.b.do(ctx, func(d *dataset) error {
		if p, ok := d.products[id]; ok {
			cp := copyProduct(p)
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) List(ctx context.Context, scope access.ScopeFilter, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.b.do(ctx, func(d *dataset) error {
		items := make([]entity.Product, 0)
		for _, p := range d.products {
			if scope.CompanyID != "" && p.CompanyID != scope.CompanyID {
				continue
			}
			items = append(items, copyProduct(p))
		}
		items = page(items, func(x entity.Product) time.Time { return x.CreatedAt }, func(x entity.Product) string { return x.ID }, limit, offset)
		for i := range items {
			out = append(out, &items[i])
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) UpsertStock(ctx context.Context, productID string, entry entity.StockEntry) error {
	return r.b.do(ctx, func(d *dataset) error {
		p, ok := d.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		p = copyProduct(p)
		for i := range p.Availability {
			if p.Availability[i].DepotID == entry.DepotID {
				p.Availability[i] = entry
				d.products[productID] = p
				return nil
			}
		}
		p.Availability = append(p.Availability, entry)
		d.products[productID] = p
		return nil
	})
}

func (r *ProductRepo) ListStockByDepot(ctx context.Context, depotID string) ([]repository.DepotStock, error) {
	var out []repository.DepotStock
	err := r.b.do(ctx, func(d *dataset) error {
		for _, p := range d.products {
			for _, s := range p.Availability {
				if s.DepotID == depotID {
					out = append(out, repository.DepotStock{ProductID: p.ID, SKU: p.SKU, Name: p.Name, Quantity: s.Quantity})
				}
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, err
}

func (r *ProductRepo) DeleteStockByDepot(ctx context.Context, depotID string) (int64, error) {
	var n int64
	err := r.b.do(ctx, func(d *dataset) error {
		for id, p := range d.products {
			kept := make([]entity.StockEntry, 0, len(p.Availability))
			for _, s := range p.Availability {
				if s.DepotID == depotID {
					n++
					continue
				}
				kept = append(kept, s)
			}
			if len(kept) != len(p.Availability) {
				p.Availability = kept
				d.products[id] = p
			}
		}
		return nil
	})
	return n, err
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.b.do(ctx, func(d *dataset) error {
		delete(d.products, id)
		return nil
	})
}

func (r *ProductRepo) DeleteByCompany(ctx context.Context, companyID string) (int64, error) {
	var n int64
	err := r.b.do(ctx, func(d *dataset) error {
		for id, p := range d.products {
			if p.CompanyID == companyID {
				delete(d.products, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
