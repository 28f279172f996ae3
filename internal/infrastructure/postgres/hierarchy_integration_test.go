//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Logistica-api/internal/application/cascade"
	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/usecase"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Logistica-api/pkg/config"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type pgApp struct {
	pool      *pgxpool.Pool
	repos     repository.Repositories
	engine    *cascade.Engine
	companies *usecase.CompanyUseCase
	depots    *usecase.DepotUseCase
	members   *usecase.MemberUseCase
	clients   *usecase.ClientUseCase
	products  *usecase.ProductUseCase
}

// setupPostgres levanta un PostgreSQL desechable con el esquema migrado. Sin Docker el test se omite.
func setupPostgres(t *testing.T) *pgApp {
	t.Helper()
	ctx := context.Background()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		t.Skip("Docker no disponible, se omiten los tests de integración")
	}
	provider.Close()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("logistica_test"),
		tcpostgres.WithUsername("logistica"),
		tcpostgres.WithPassword("logistica_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("no se pudo arrancar PostgreSQL: %v", err)
	}
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("terminar contenedor: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applied, err := postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	require.NotEmpty(t, applied)

	repos := postgres.NewRepositories(pool)
	tx := postgres.NewTxRunner(pool)
	engine := cascade.NewEngine(tx, logger.Nop(), nil)
	return &pgApp{
		pool:      pool,
		repos:     repos,
		engine:    engine,
		companies: usecase.NewCompanyUseCase(repos, tx, engine),
		depots:    usecase.NewDepotUseCase(repos, tx, engine),
		members:   usecase.NewMemberUseCase(repos, tx),
		clients:   usecase.NewClientUseCase(repos.Clients),
		products:  usecase.NewProductUseCase(repos, tx),
	}
}

func pgCreds(email string) dto.UserInput {
	return dto.UserInput{Email: email, Password: "secreto123"}
}

// hierarchy crea empresa, una sede con responsable y un miembro.
func (a *pgApp) hierarchy(t *testing.T, name, domainName string) (*dto.CompanyCreatedResponse, *dto.DepotCreatedResponse, *dto.UserResponse) {
	t.Helper()
	ctx := context.Background()
	company, err := a.companies.CreateWithAdmin(ctx, dto.CreateCompanyRequest{Name: name, Admin: pgCreds("a@" + domainName)})
	require.NoError(t, err)
	depot, err := a.depots.CreateWithResponsable(ctx, company.Company.ID, dto.CreateDepotRequest{Name: "North", Responsable: pgCreds("r@" + domainName)})
	require.NoError(t, err, "sede y responsable se insertan en la misma transacción")
	member, err := a.members.Create(ctx, depot.Depot.ID, dto.CreateMemberRequest{Email: "m@" + domainName, Password: "secreto123", Role: "delivery"})
	require.NoError(t, err)
	return company, depot, member
}

func (a *pgApp) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, a.pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// Esquema
// ──────────────────────────────────────────────────────────────────────────────

func TestMigrate_Idempotente(t *testing.T) {
	a := setupPostgres(t)
	applied, err := postgres.Migrate(context.Background(), a.pool)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cascadas sobre el esquema real
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteCompany_RespetaLasClavesForaneas(t *testing.T) {
	a := setupPostgres(t)
	ctx := context.Background()
	acme, north, m := a.hierarchy(t, "Acme", "acme.com")
	globex, _, _ := a.hierarchy(t, "Globex", "globex.com")

	_, err := a.clients.Create(ctx, acme.Company.ID, dto.CreateClientRequest{Name: "Cliente"})
	require.NoError(t, err)
	product, err := a.products.Create(ctx, acme.Company.ID, dto.CreateProductRequest{SKU: "SKU-1", Name: "Caja", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = a.products.SetAvailability(ctx, product.ID, dto.SetAvailabilityRequest{DepotID: north.Depot.ID, Quantity: decimal.NewFromInt(5)})
	require.NoError(t, err)

	rep, err := a.engine.DeleteCompany(ctx, acme.Company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rep.UsersDeleted)
	assert.Equal(t, int64(1), rep.ClientsDeleted)
	assert.Equal(t, int64(1), rep.ProductsDeleted)
	assert.Equal(t, int64(1), rep.DepotsDeleted)

	for _, id := range []string{acme.Admin.ID, north.Responsable.ID, m.ID} {
		u, err := a.repos.Users.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, u)
	}
	assert.Zero(t, a.count(t, `SELECT count(*) FROM product_stock WHERE depot_id = $1`, north.Depot.ID))
	assert.Equal(t, 3, a.count(t, `SELECT count(*) FROM users WHERE company_id = $1`, globex.Company.ID), "otra empresa intacta")

	_, err = a.engine.DeleteCompany(ctx, acme.Company.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCompany_ConcurrentesUnaSolaConfirma(t *testing.T) {
	a := setupPostgres(t)
	acme, _, _ := a.hierarchy(t, "Acme", "acme.com")

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = a.engine.DeleteCompany(context.Background(), acme.Company.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrNotFound, "el resto espera el FOR UPDATE y ya no encuentra la empresa")
	}
	assert.Equal(t, 1, ok)
}

func TestDeleteDepot_DesvinculaUsuariosYBorraStock(t *testing.T) {
	a := setupPostgres(t)
	ctx := context.Background()
	acme, north, m := a.hierarchy(t, "Acme", "acme.com")
	product, err := a.products.Create(ctx, acme.Company.ID, dto.CreateProductRequest{SKU: "SKU-1", Name: "Caja"})
	require.NoError(t, err)
	_, err = a.products.SetAvailability(ctx, product.ID, dto.SetAvailabilityRequest{DepotID: north.Depot.ID, Quantity: decimal.NewFromInt(2)})
	require.NoError(t, err)

	rep, err := a.engine.DeleteDepot(ctx, north.Depot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rep.UsersDetached)
	assert.Equal(t, int64(1), rep.StockRemoved)

	got, err := a.repos.Users.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Depot())
	assert.Equal(t, acme.Company.ID, got.Company())
}

// ──────────────────────────────────────────────────────────────────────────────
// Escrituras de usuario
// ──────────────────────────────────────────────────────────────────────────────

func TestUserRepo_UpdateConCopiaViejaNoRevierteLaSede(t *testing.T) {
	a := setupPostgres(t)
	ctx := context.Background()
	acme, _, m := a.hierarchy(t, "Acme", "acme.com")
	south, err := a.depots.CreateWithResponsable(ctx, acme.Company.ID, dto.CreateDepotRequest{Name: "South", Responsable: pgCreds("s@acme.com")})
	require.NoError(t, err)

	stale, err := a.repos.Users.GetByID(ctx, m.ID)
	require.NoError(t, err)
	_, err = a.members.AttachToDepot(ctx, m.ID, south.Depot.ID)
	require.NoError(t, err)

	stale.Name = "Marta"
	stale.UpdatedAt = time.Now()
	require.NoError(t, a.repos.Users.Update(ctx, stale))

	got, err := a.repos.Users.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marta", got.Name)
	assert.Equal(t, south.Depot.ID, got.Depot())

	assert.ErrorIs(t, a.repos.Users.Update(ctx, &entity.User{ID: "00000000-0000-0000-0000-000000000000"}), domain.ErrNotFound)
}
