package cascade_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/internal/application/cascade"
	"github.com/jhoicas/Logistica-api/internal/application/ports"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/memory"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type cascadeCall struct {
	kind    access.ResourceKind
	outcome string
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []cascadeCall
}

func (o *recordingObserver) ObserveCascade(kind access.ResourceKind, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, cascadeCall{kind, outcome})
}

// seedTenant crea una empresa con admin, dos sedes con responsable, un miembro por sede,
// un cliente y un producto con stock en ambas sedes.
func seedTenant(t *testing.T, s *memory.Store, companyID string) {
	t.Helper()
	ctx := context.Background()
	r := s.Repositories()

	c := &entity.Company{ID: companyID, CreatedAt: time.Now()}
	c.Rename("Empresa " + companyID)
	require.NoError(t, r.Companies.Create(ctx, c))

	admin := &entity.User{ID: companyID + "-admin", Email: companyID + "-admin@test.co", Role: entity.RoleAdmin, Status: entity.UserStatusActive}
	admin.AssignCompany(companyID)
	require.NoError(t, r.Users.Create(ctx, admin))

	for _, suffix := range []string{"north", "south"} {
		d := &entity.Depot{ID: companyID + "-" + suffix, CompanyID: companyID, ResponsableID: companyID + "-resp-" + suffix}
		require.NoError(t, r.Depots.Create(ctx, d))

		resp := &entity.User{ID: d.ResponsableID, Email: d.ResponsableID + "@test.co", Role: entity.RoleResponsableDepot, Status: entity.UserStatusActive}
		require.NoError(t, resp.AttachTo(d))
		require.NoError(t, r.Users.Create(ctx, resp))

		member := &entity.User{ID: companyID + "-member-" + suffix, Email: companyID + "-member-" + suffix + "@test.co", Role: entity.RoleDelivery, Status: entity.UserStatusActive}
		require.NoError(t, member.AttachTo(d))
		require.NoError(t, r.Users.Create(ctx, member))
	}

	require.NoError(t, r.Clients.Create(ctx, &entity.Client{ID: companyID + "-client", CompanyID: companyID}))
	p := &entity.Product{ID: companyID + "-product", CompanyID: companyID, SKU: "SKU-1"}
	require.NoError(t, r.Products.Create(ctx, p))
	for _, suffix := range []string{"north", "south"} {
		require.NoError(t, r.Products.UpsertStock(ctx, p.ID, entity.StockEntry{DepotID: companyID + "-" + suffix, Quantity: decimal.NewFromInt(10)}))
	}
}

func newEngine(tx ports.TxRunner, obs *recordingObserver) *cascade.Engine {
	return cascade.NewEngine(tx, logger.Nop(), obs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cascada de empresa
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteCompany_BorraTodoLoQueCuelga(t *testing.T) {
	s := memory.NewStore()
	seedTenant(t, s, "acme")
	seedTenant(t, s, "globex")
	obs := &recordingObserver{}
	ctx := context.Background()

	rep, err := newEngine(s, obs).DeleteCompany(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, cascade.Report{UsersDeleted: 5, ClientsDeleted: 1, ProductsDeleted: 1, DepotsDeleted: 2}, rep)

	r := s.Repositories()
	for _, id := range []string{"acme-admin", "acme-resp-north", "acme-member-north", "acme-member-south"} {
		u, err := r.Users.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, u, id)
	}
	d, err := r.Depots.GetByID(ctx, "acme-north")
	require.NoError(t, err)
	assert.Nil(t, d)
	c, err := r.Companies.GetByID(ctx, "acme")
	require.NoError(t, err)
	assert.Nil(t, c)

	// la otra empresa no se toca
	users, err := r.Users.List(ctx, access.ScopeFilter{CompanyID: "globex"}, 100, 0)
	require.NoError(t, err)
	assert.Len(t, users, 5)

	// ningún usuario queda apuntando a una sede borrada
	all, err := r.Users.List(ctx, access.ScopeFilter{}, 100, 0)
	require.NoError(t, err)
	for _, u := range all {
		assert.NotEqual(t, "acme", u.Company())
	}

	assert.Equal(t, []cascadeCall{{access.KindCompany, "ok"}}, obs.calls)
}

func TestDeleteCompany_SegundaVezEsNotFound(t *testing.T) {
	s := memory.NewStore()
	seedTenant(t, s, "acme")
	obs := &recordingObserver{}
	engine := newEngine(s, obs)

	_, err := engine.DeleteCompany(context.Background(), "acme")
	require.NoError(t, err)

	rep, err := engine.DeleteCompany(context.Background(), "acme")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, cascade.Report{}, rep)
	assert.Equal(t, "not_found", obs.calls[1].outcome)
}

func TestDeleteCompany_InexistenteNoBorraNada(t *testing.T) {
	s := memory.NewStore()
	seedTenant(t, s, "acme")

	_, err := newEngine(s, &recordingObserver{}).DeleteCompany(context.Background(), "nadie")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	users, err := s.Repositories().Users.List(context.Background(), access.ScopeFilter{}, 100, 0)
	require.NoError(t, err)
	assert.Len(t, users, 5)
}

func TestDeleteCompany_ConcurrentesUnaSolaCompleta(t *testing.T) {
	s := memory.NewStore()
	seedTenant(t, s, "acme")
	engine := newEngine(s, &recordingObserver{})

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.DeleteCompany(context.Background(), "acme")
		}(i)
	}
	wg.Wait()

	ok, notFound := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrNotFound):
			notFound++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, notFound)
}

// failingTx inyecta un fallo en el borrado de sedes, después de haber borrado usuarios y clientes.
type failingTx struct{ store *memory.Store }

type failingDepots struct{ repository.DepotRepository }

func (failingDepots) DeleteByCompany(context.Context, string) (int64, error) {
	return 0, errors.New("almacén no disponible")
}

func (f failingTx) RunInTx(ctx context.Context, fn func(repository.Repositories) error) error {
	return f.store.RunInTx(ctx, func(r repository.Repositories) error {
		r.Depots = failingDepots{r.Depots}
		return fn(r)
	})
}

func TestDeleteCompany_FalloAMitadRevierteTodo(t *testing.T) {
	s := memory.NewStore()
	seedTenant(t, s, "acme")
	obs := &recordingObserver{}

	rep, err := newEngine(failingTx{s}, obs).DeleteCompany(context.Background(), "acme")
	require.Error(t, err)
	assert.Equal(t, cascade.Report{}, rep)
	assert.Equal(t, "error", obs.calls[0].outcome)

	r := s.Repositories()
	users, err := r.Users.List(context.Background(), access.ScopeFilter{CompanyID: "acme"}, 100, 0)
	require.NoError(t, err)
	assert.Len(t, users, 5, "los usuarios borrados antes del fallo deben volver")
	cl, err := r.Clients.GetByID(context.Background(), "acme-client")
	require.NoError(t, err)
	assert.NotNil(t, cl)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cascada de sede
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteDepot_DesvinculaUsuariosYBorraStock(t *testing.T) {
	s := memory.NewStore()
	seedTenant(t, s, "acme")
	ctx := context.Background()

	rep, err := newEngine(s, &recordingObserver{}).DeleteDepot(ctx, "acme-north")
	require.NoError(t, err)
	assert.Equal(t, cascade.Report{UsersDetached: 2, StockRemoved: 1, DepotsDeleted: 1}, rep)

	r := s.Repositories()
	member, err := r.Users.GetByID(ctx, "acme-member-north")
	require.NoError(t, err)
	require.NotNil(t, member, "los miembros se conservan")
	assert.Empty(t, member.Depot())
	assert.Equal(t, "acme", member.Company(), "conservan la empresa")

	p, err := r.Products.GetByID(ctx, "acme-product")
	require.NoError(t, err)
	require.Len(t, p.Availability, 1)
	assert.Equal(t, "acme-south", p.Availability[0].DepotID)

	south, err := r.Users.List(ctx, access.ScopeFilter{DepotID: "acme-south"}, 100, 0)
	require.NoError(t, err)
	assert.Len(t, south, 2, "la otra sede no se toca")
}

func TestDeleteDepot_Inexistente(t *testing.T) {
	s := memory.NewStore()
	obs := &recordingObserver{}

	_, err := newEngine(s, obs).DeleteDepot(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []cascadeCall{{access.KindDepot, "not_found"}}, obs.calls)
}
