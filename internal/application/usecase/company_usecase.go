package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Logistica-api/internal/application/cascade"
	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/ports"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// CascadeDeleter borra un nodo de la jerarquía con todo lo que cuelga de él (ver cascade.Engine).
type CascadeDeleter interface {
	DeleteCompany(ctx context.Context, companyID string) (cascade.Report, error)
	DeleteDepot(ctx context.Context, depotID string) (cascade.Report, error)
}

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	repos   repository.Repositories
	tx      ports.TxRunner
	cascade CascadeDeleter
}

// NewCompanyUseCase construye el caso de uso con los puertos de persistencia y el motor de cascada.
func NewCompanyUseCase(repos repository.Repositories, tx ports.TxRunner, deleter CascadeDeleter) *CompanyUseCase {
	return &CompanyUseCase{repos: repos, tx: tx, cascade: deleter}
}

// CreateWithAdmin crea la empresa y su administrador en una sola transacción: o existen los dos o ninguno.
// Nombre o email repetidos devuelven un error que envuelve domain.ErrConflict; cualquier otro fallo
// devuelve domain.ErrPartialCreation.
func (uc *CompanyUseCase) CreateWithAdmin(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyCreatedResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("nombre obligatorio: %w", domain.ErrInvalidInput)
	}
	admin, err := newUser(in.Admin, entity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	company.Rename(in.Name)
	admin.AssignCompany(company.ID)

	err = uc.tx.RunInTx(ctx, func(r repository.Repositories) error {
		if err := r.Companies.Create(ctx, company); err != nil {
			return err
		}
		return r.Users.Create(ctx, admin)
	})
	if err != nil {
		return nil, pairedCreationError(err)
	}
	return &dto.CompanyCreatedResponse{
		Company: *entityToCompanyResponse(company),
		Admin:   *EntityToUserResponse(admin),
	}, nil
}

// GetByID obtiene una empresa por ID. domain.ErrNotFound si no existe.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repos.Companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación. Un alcance con CompanyID devuelve solo esa empresa.
func (uc *CompanyUseCase) List(ctx context.Context, scope access.ScopeFilter, page dto.PageRequest) (*dto.CompanyListResponse, error) {
	page.DefaultPage()
	var list []*entity.Company
	if scope.CompanyID != "" {
		c, err := uc.repos.Companies.GetByID(ctx, scope.CompanyID)
		if err != nil {
			return nil, err
		}
		if c != nil && page.Offset == 0 {
			list = append(list, c)
		}
	} else {
		var err error
		if list, err = uc.repos.Companies.List(ctx, page.Limit, page.Offset); err != nil {
			return nil, err
		}
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update actualiza nombre y dirección. El nombre nuevo vuelve a comprobarse contra los existentes.
func (uc *CompanyUseCase) Update(ctx context.Context, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.repos.Companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("nombre obligatorio: %w", domain.ErrInvalidInput)
		}
		company.Rename(*in.Name)
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	company.UpdatedAt = time.Now()
	if err := uc.repos.Companies.Update(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// Delete borra la empresa con sus sedes, usuarios, clientes y productos. Devuelve cuando la cascada
// ya confirmó; domain.ErrNotFound si la empresa no existe.
func (uc *CompanyUseCase) Delete(ctx context.Context, id string) (cascade.Report, error) {
	return uc.cascade.DeleteCompany(ctx, id)
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
