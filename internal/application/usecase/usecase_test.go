package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/internal/application/cascade"
	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/ports"
	"github.com/jhoicas/Logistica-api/internal/application/usecase"
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

type app struct {
	store     *memory.Store
	companies *usecase.CompanyUseCase
	depots    *usecase.DepotUseCase
	members   *usecase.MemberUseCase
	clients   *usecase.ClientUseCase
	products  *usecase.ProductUseCase
}

func newApp(tx ports.TxRunner, s *memory.Store) *app {
	repos := s.Repositories()
	engine := cascade.NewEngine(tx, logger.Nop(), nil)
	return &app{
		store:     s,
		companies: usecase.NewCompanyUseCase(repos, tx, engine),
		depots:    usecase.NewDepotUseCase(repos, tx, engine),
		members:   usecase.NewMemberUseCase(repos, tx),
		clients:   usecase.NewClientUseCase(repos.Clients),
		products:  usecase.NewProductUseCase(repos, tx),
	}
}

func newMemoryApp() *app {
	s := memory.NewStore()
	return newApp(s, s)
}

func creds(email string) dto.UserInput {
	return dto.UserInput{Email: email, Password: "secreto123"}
}

func (a *app) company(t *testing.T, name, adminEmail string) *dto.CompanyCreatedResponse {
	t.Helper()
	out, err := a.companies.CreateWithAdmin(context.Background(), dto.CreateCompanyRequest{Name: name, Admin: creds(adminEmail)})
	require.NoError(t, err)
	return out
}

func (a *app) depot(t *testing.T, companyID, name, respEmail string) *dto.DepotCreatedResponse {
	t.Helper()
	out, err := a.depots.CreateWithResponsable(context.Background(), companyID, dto.CreateDepotRequest{Name: name, Responsable: creds(respEmail)})
	require.NoError(t, err)
	return out
}

func (a *app) member(t *testing.T, depotID, email string) *dto.UserResponse {
	t.Helper()
	out, err := a.members.Create(context.Background(), depotID, dto.CreateMemberRequest{DepotID: depotID, Email: email, Password: "secreto123", Role: "delivery"})
	require.NoError(t, err)
	return out
}

// failingUsersTx ejecuta la transacción real pero con un Users.Create que falla.
type failingUsersTx struct {
	store *memory.Store
	err   error
}

func (f failingUsersTx) RunInTx(ctx context.Context, fn func(repository.Repositories) error) error {
	return f.store.RunInTx(ctx, func(r repository.Repositories) error {
		r.Users = failingCreate{UserRepository: r.Users, err: f.err}
		return fn(r)
	})
}

type failingCreate struct {
	repository.UserRepository
	err error
}

func (f failingCreate) Create(context.Context, *entity.User) error { return f.err }

// readCommittedTx corre fn sobre los repositorios publicados: cada escritura ajena se ve al
// instante, como en una transacción READ COMMITTED sin bloqueo de fila.
type readCommittedTx struct {
	repos repository.Repositories
}

func (t readCommittedTx) RunInTx(_ context.Context, fn func(repository.Repositories) error) error {
	return fn(t.repos)
}

// moveAfterRead ejecuta move una sola vez, justo después de la primera lectura del usuario.
type moveAfterRead struct {
	repository.UserRepository
	move func()
	done bool
}

func (m *moveAfterRead) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := m.UserRepository.GetByID(ctx, id)
	if !m.done {
		m.done = true
		m.move()
	}
	return u, err
}

// ──────────────────────────────────────────────────────────────────────────────
// Jerarquía completa
// ──────────────────────────────────────────────────────────────────────────────

func TestEscenario_CrearJerarquiaYBorrarEmpresa(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()

	acme := a.company(t, "Acme", "a@acme.com")
	assert.Equal(t, "admin", acme.Admin.Role)
	assert.Equal(t, acme.Company.ID, acme.Admin.CompanyID)

	north := a.depot(t, acme.Company.ID, "North", "r@acme.com")
	assert.Equal(t, north.Responsable.ID, north.Depot.ResponsableID)
	assert.Equal(t, north.Depot.ID, north.Responsable.DepotID)
	assert.Equal(t, acme.Company.ID, north.Responsable.CompanyID)

	m := a.member(t, north.Depot.ID, "m@acme.com")
	assert.Equal(t, acme.Company.ID, m.CompanyID, "la empresa del miembro sale de su sede")

	rep, err := a.companies.Delete(ctx, acme.Company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rep.UsersDeleted)
	assert.Equal(t, int64(1), rep.DepotsDeleted)

	_, err = a.members.GetByID(ctx, acme.Admin.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = a.depots.GetByID(ctx, north.Depot.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = a.members.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = a.companies.GetByID(ctx, acme.Company.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación en pareja
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateWithAdmin_EmailRepetidoNoDejaEmpresa(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	a.company(t, "Acme", "a@acme.com")

	_, err := a.companies.CreateWithAdmin(ctx, dto.CreateCompanyRequest{Name: "Globex", Admin: creds("A@acme.com")})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrPartialCreation)

	c, err := a.store.Repositories().Companies.GetByNameKey(ctx, entity.CompanyNameKey("Globex"))
	require.NoError(t, err)
	assert.Nil(t, c, "la empresa no puede quedar sin administrador")
}

func TestCreateWithAdmin_NombreRepetido(t *testing.T) {
	a := newMemoryApp()
	a.company(t, "Acme Logística", "a@acme.com")

	_, err := a.companies.CreateWithAdmin(context.Background(), dto.CreateCompanyRequest{Name: " acme  LOGÍSTICA", Admin: creds("b@acme.com")})
	assert.ErrorIs(t, err, domain.ErrCompanyNameTaken)
}

func TestCreateWithAdmin_FalloIntermedioEsCreacionIncompleta(t *testing.T) {
	s := memory.NewStore()
	cause := errors.New("conexión perdida")
	a := newApp(failingUsersTx{store: s, err: cause}, s)
	ctx := context.Background()

	_, err := a.companies.CreateWithAdmin(ctx, dto.CreateCompanyRequest{Name: "Acme", Admin: creds("a@acme.com")})
	assert.ErrorIs(t, err, domain.ErrPartialCreation)
	assert.ErrorIs(t, err, cause)

	list, err := s.Repositories().Companies.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateWithAdmin_EntradaIncompleta(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()

	_, err := a.companies.CreateWithAdmin(ctx, dto.CreateCompanyRequest{Name: "  ", Admin: creds("a@acme.com")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = a.companies.CreateWithAdmin(ctx, dto.CreateCompanyRequest{Name: "Acme", Admin: dto.UserInput{Email: "a@acme.com"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateWithResponsable_EmpresaInexistente(t *testing.T) {
	a := newMemoryApp()
	_, err := a.depots.CreateWithResponsable(context.Background(), "no-existe", dto.CreateDepotRequest{Name: "North", Responsable: creds("r@acme.com")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateWithResponsable_FalloRevierteLaSede(t *testing.T) {
	s := memory.NewStore()
	acme := newApp(s, s).company(t, "Acme", "a@acme.com")

	a := newApp(failingUsersTx{store: s, err: errors.New("timeout")}, s)
	ctx := context.Background()
	_, err := a.depots.CreateWithResponsable(ctx, acme.Company.ID, dto.CreateDepotRequest{Name: "North", Responsable: creds("r@acme.com")})
	assert.ErrorIs(t, err, domain.ErrPartialCreation)

	depots, err := s.Repositories().Depots.List(ctx, access.ScopeFilter{CompanyID: acme.Company.ID}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, depots, "la sede no puede quedar sin responsable")
}

// ──────────────────────────────────────────────────────────────────────────────
// Empresas y sedes
// ──────────────────────────────────────────────────────────────────────────────

func TestCompanyList_AlcancePorEmpresa(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")
	a.company(t, "Globex", "a@globex.com")

	all, err := a.companies.List(ctx, access.ScopeFilter{}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, dto.DefaultPageLimit, all.Page.Limit)

	own, err := a.companies.List(ctx, access.ScopeFilter{CompanyID: acme.Company.ID}, dto.PageRequest{Limit: 500})
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	assert.Equal(t, "Acme", own.Items[0].Name)
	assert.Equal(t, dto.MaxPageLimit, own.Page.Limit)
}

func TestCompanyUpdate_RenombrarAUnNombreOcupado(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")
	a.company(t, "Globex", "a@globex.com")

	name := "GLOBEX"
	_, err := a.companies.Update(ctx, acme.Company.ID, dto.UpdateCompanyRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrConflict)

	name = "Acme Logística"
	out, err := a.companies.Update(ctx, acme.Company.ID, dto.UpdateCompanyRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Acme Logística", out.Name)

	_, err = a.companies.Update(ctx, "no-existe", dto.UpdateCompanyRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDepotUpdate_NoCambiaEmpresa(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")
	north := a.depot(t, acme.Company.ID, "North", "r@acme.com")

	capacity := 250
	name := "North Hub"
	out, err := a.depots.Update(ctx, north.Depot.ID, dto.UpdateDepotRequest{Name: &name, Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, "North Hub", out.Name)
	assert.Equal(t, 250, out.Capacity)
	assert.Equal(t, acme.Company.ID, out.CompanyID)

	capacity = -1
	_, err = a.depots.Update(ctx, north.Depot.ID, dto.UpdateDepotRequest{Capacity: &capacity})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDepotDelete_MiembrosConservanEmpresa(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")
	north := a.depot(t, acme.Company.ID, "North", "r@acme.com")
	m := a.member(t, north.Depot.ID, "m@acme.com")

	rep, err := a.depots.Delete(ctx, north.Depot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rep.UsersDetached)

	got, err := a.members.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, got.DepotID)
	assert.Equal(t, acme.Company.ID, got.CompanyID)

	_, err = a.depots.Delete(ctx, north.Depot.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Miembros
// ──────────────────────────────────────────────────────────────────────────────

func TestMemberCreate_SoloCargos(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")
	north := a.depot(t, acme.Company.ID, "North", "r@acme.com")

	for _, role := range []string{"admin", "responsable_depot", "super_admin", "root"} {
		_, err := a.members.Create(ctx, north.Depot.ID, dto.CreateMemberRequest{Email: role + "@acme.com", Password: "secreto123", Role: role})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, role)
	}

	_, err := a.members.Create(ctx, "no-existe", dto.CreateMemberRequest{Email: "m@acme.com", Password: "secreto123", Role: "warehouse"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemberDelete_ProtegeAdminYResponsable(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")
	north := a.depot(t, acme.Company.ID, "North", "r@acme.com")
	m := a.member(t, north.Depot.ID, "m@acme.com")

	assert.ErrorIs(t, a.members.Delete(ctx, acme.Admin.ID), domain.ErrProtectedMember)
	assert.ErrorIs(t, a.members.Delete(ctx, north.Responsable.ID), domain.ErrProtectedMember)
	require.NoError(t, a.members.Delete(ctx, m.ID))
	assert.ErrorIs(t, a.members.Delete(ctx, m.ID), domain.ErrNotFound)
}

func TestMemberUpdate_CargoYEstado(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")
	north := a.depot(t, acme.Company.ID, "North", "r@acme.com")
	m := a.member(t, north.Depot.ID, "m@acme.com")

	role, status := "pre_sales", entity.UserStatusInactive
	out, err := a.members.Update(ctx, m.ID, dto.UpdateMemberRequest{Role: &role, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "pre_sales", out.Role)
	assert.Equal(t, entity.UserStatusInactive, out.Status)

	role = "admin"
	_, err = a.members.Update(ctx, m.ID, dto.UpdateMemberRequest{Role: &role})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un miembro no se asciende a admin")
}

func TestMemberUpdate_NoDeshaceUnCambioDeSedeIntercalado(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")
	north := a.depot(t, acme.Company.ID, "North", "rn@acme.com")
	south := a.depot(t, acme.Company.ID, "South", "rs@acme.com")
	m := a.member(t, north.Depot.ID, "m@acme.com")

	// el traslado a South confirma entre la lectura y la escritura del renombrado
	repos := a.store.Repositories()
	repos.Users = &moveAfterRead{UserRepository: repos.Users, move: func() {
		_, err := a.members.AttachToDepot(ctx, m.ID, south.Depot.ID)
		require.NoError(t, err)
	}}
	renamer := usecase.NewMemberUseCase(repos, readCommittedTx{repos: repos})

	name := "Marta"
	out, err := renamer.Update(ctx, m.ID, dto.UpdateMemberRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Marta", out.Name)
	assert.Equal(t, south.Depot.ID, out.DepotID)

	got, err := a.members.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marta", got.Name)
	assert.Equal(t, south.Depot.ID, got.DepotID, "renombrar no devuelve el miembro a North")
	assert.Equal(t, acme.Company.ID, got.CompanyID)
}

func TestMemberUpdate_TrasBorrarSuSede(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")
	north := a.depot(t, acme.Company.ID, "North", "rn@acme.com")
	m := a.member(t, north.Depot.ID, "m@acme.com")

	// la sede desaparece entre la lectura y la escritura del renombrado
	repos := a.store.Repositories()
	repos.Users = &moveAfterRead{UserRepository: repos.Users, move: func() {
		_, err := a.depots.Delete(ctx, north.Depot.ID)
		require.NoError(t, err)
	}}
	renamer := usecase.NewMemberUseCase(repos, readCommittedTx{repos: repos})

	name := "Marta"
	out, err := renamer.Update(ctx, m.ID, dto.UpdateMemberRequest{Name: &name})
	require.NoError(t, err, "el renombrado no vuelve a apuntar a la sede borrada")
	assert.Empty(t, out.DepotID)
	assert.Equal(t, acme.Company.ID, out.CompanyID)
}

func TestAttachToDepot_SoloDentroDeLaEmpresa(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")
	globex := a.company(t, "Globex", "a@globex.com")
	north := a.depot(t, acme.Company.ID, "North", "r@acme.com")
	south := a.depot(t, acme.Company.ID, "South", "s@acme.com")
	central := a.depot(t, globex.Company.ID, "Central", "r@globex.com")
	m := a.member(t, north.Depot.ID, "m@acme.com")

	out, err := a.members.AttachToDepot(ctx, m.ID, south.Depot.ID)
	require.NoError(t, err)
	assert.Equal(t, south.Depot.ID, out.DepotID)
	assert.Equal(t, acme.Company.ID, out.CompanyID)

	_, err = a.members.AttachToDepot(ctx, m.ID, central.Depot.ID)
	assert.ErrorIs(t, err, domain.ErrDepotCompanyMismatch)
	got, err := a.members.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, south.Depot.ID, got.DepotID, "el intento fallido no cambia la sede")

	_, err = a.members.AttachToDepot(ctx, north.Responsable.ID, south.Depot.ID)
	assert.ErrorIs(t, err, domain.ErrProtectedMember)
}

func TestMemberList_AlcancePorSede(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")
	north := a.depot(t, acme.Company.ID, "North", "r@acme.com")
	south := a.depot(t, acme.Company.ID, "South", "s@acme.com")
	a.member(t, north.Depot.ID, "m1@acme.com")
	a.member(t, south.Depot.ID, "m2@acme.com")

	out, err := a.members.List(ctx, access.ScopeFilter{CompanyID: acme.Company.ID, DepotID: north.Depot.ID}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2, "responsable y miembro de North")
	for _, u := range out.Items {
		assert.Equal(t, north.Depot.ID, u.DepotID)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes y productos
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_CrudBasico(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")

	c, err := a.clients.Create(ctx, acme.Company.ID, dto.CreateClientRequest{Name: "Tienda Centro"})
	require.NoError(t, err)
	assert.Equal(t, acme.Company.ID, c.CompanyID)

	list, err := a.clients.List(ctx, access.ScopeFilter{CompanyID: acme.Company.ID}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	require.NoError(t, a.clients.Delete(ctx, c.ID))
	_, err = a.clients.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = a.clients.Create(ctx, "no-existe", dto.CreateClientRequest{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetAvailability_SedeDeLaMismaEmpresa(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")
	globex := a.company(t, "Globex", "a@globex.com")
	north := a.depot(t, acme.Company.ID, "North", "r@acme.com")
	central := a.depot(t, globex.Company.ID, "Central", "r@globex.com")

	p, err := a.products.Create(ctx, acme.Company.ID, dto.CreateProductRequest{SKU: "CAJ-01", Name: "Caja", Price: decimal.NewFromInt(1500)})
	require.NoError(t, err)

	_, err = a.products.Create(ctx, acme.Company.ID, dto.CreateProductRequest{SKU: "CAJ-01", Name: "Otra caja"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	out, err := a.products.SetAvailability(ctx, p.ID, dto.SetAvailabilityRequest{DepotID: north.Depot.ID, Quantity: decimal.NewFromInt(12)})
	require.NoError(t, err)
	require.Len(t, out.Availability, 1)
	assert.True(t, out.Availability[0].Quantity.Equal(decimal.NewFromInt(12)))

	_, err = a.products.SetAvailability(ctx, p.ID, dto.SetAvailabilityRequest{DepotID: central.Depot.ID, Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrDepotCompanyMismatch)

	_, err = a.products.SetAvailability(ctx, p.ID, dto.SetAvailabilityRequest{DepotID: north.Depot.ID, Quantity: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stock, err := a.depots.Availability(ctx, north.Depot.ID)
	require.NoError(t, err)
	require.Len(t, stock.Items, 1)
	assert.Equal(t, "CAJ-01", stock.Items[0].SKU)
	assert.True(t, stock.Items[0].Quantity.Equal(decimal.NewFromInt(12)))

	empty, err := a.depots.Availability(ctx, central.Depot.ID)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestProductDelete(t *testing.T) {
	a := newMemoryApp()
	ctx := context.Background()
	acme := a.company(t, "Acme", "a@acme.com")
	p, err := a.products.Create(ctx, acme.Company.ID, dto.CreateProductRequest{SKU: "A", Name: "A"})
	require.NoError(t, err)

	require.NoError(t, a.products.Delete(ctx, p.ID))
	assert.ErrorIs(t, a.products.Delete(ctx, p.ID), domain.ErrNotFound)
}
