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

// DepotUseCase casos de uso para sedes.
type DepotUseCase struct {
	repos   repository.Repositories
	tx      ports.TxRunner
	cascade CascadeDeleter
}

// NewDepotUseCase construye el caso de uso.
func NewDepotUseCase(repos repository.Repositories, tx ports.TxRunner, deleter CascadeDeleter) *DepotUseCase {
	return &DepotUseCase{repos: repos, tx: tx, cascade: deleter}
}

// CreateWithResponsable crea la sede y su responsable en una sola transacción. La sede nace con
// ResponsableID ya asignado y el responsable se une a ella con AttachTo, así empresa y sede del
// usuario quedan fijadas por el mismo camino que usa cualquier otro miembro.
func (uc *DepotUseCase) CreateWithResponsable(ctx context.Context, companyID string, in dto.CreateDepotRequest) (*dto.DepotCreatedResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("nombre obligatorio: %w", domain.ErrInvalidInput)
	}
	if in.Capacity < 0 {
		return nil, fmt.Errorf("capacidad negativa: %w", domain.ErrInvalidInput)
	}
	responsable, err := newUser(in.Responsable, entity.RoleResponsableDepot)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	depot := &entity.Depot{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		ResponsableID: responsable.ID,
		Name:          strings.TrimSpace(in.Name),
		Capacity:      in.Capacity,
		Address:       in.Address,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = uc.tx.RunInTx(ctx, func(r repository.Repositories) error {
		company, err := r.Companies.GetForUpdate(ctx, companyID)
		if err != nil {
			return err
		}
		if company == nil {
			return domain.ErrNotFound
		}
		if err := r.Depots.Create(ctx, depot); err != nil {
			return err
		}
		if err := responsable.AttachTo(depot); err != nil {
			return err
		}
		return r.Users.Create(ctx, responsable)
	})
	if err != nil {
		return nil, pairedCreationError(err)
	}
	return &dto.DepotCreatedResponse{
		Depot:       *toDepotResponse(depot),
		Responsable: *EntityToUserResponse(responsable),
	}, nil
}

// GetByID obtiene una sede por ID. domain.ErrNotFound si no existe.
func (uc *DepotUseCase) GetByID(ctx context.Context, id string) (*dto.DepotResponse, error) {
	depot, err := uc.repos.Depots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if depot == nil {
		return nil, domain.ErrNotFound
	}
	return toDepotResponse(depot), nil
}

// List lista sedes dentro del alcance con paginación.
func (uc *DepotUseCase) List(ctx context.Context, scope access.ScopeFilter, page dto.PageRequest) (*dto.DepotListResponse, error) {
	page.DefaultPage()
	list, err := uc.repos.Depots.List(ctx, scope, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DepotResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *toDepotResponse(d))
	}
	return &dto.DepotListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update actualiza una sede. La empresa de una sede no cambia nunca.
func (uc *DepotUseCase) Update(ctx context.Context, id string, in dto.UpdateDepotRequest) (*dto.DepotResponse, error) {
	depot, err := uc.repos.Depots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if depot == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("nombre obligatorio: %w", domain.ErrInvalidInput)
		}
		depot.Name = strings.TrimSpace(*in.Name)
	}
	if in.Capacity != nil {
		if *in.Capacity < 0 {
			return nil, fmt.Errorf("capacidad negativa: %w", domain.ErrInvalidInput)
		}
		depot.Capacity = *in.Capacity
	}
	if in.Address != nil {
		depot.Address = *in.Address
	}
	if in.Latitude != nil {
		depot.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		depot.Longitude = *in.Longitude
	}
	depot.UpdatedAt = time.Now()
	if err := uc.repos.Depots.Update(ctx, depot); err != nil {
		return nil, err
	}
	return toDepotResponse(depot), nil
}

// Delete borra la sede: sus usuarios quedan sin sede (conservan la empresa) y su stock desaparece.
func (uc *DepotUseCase) Delete(ctx context.Context, id string) (cascade.Report, error) {
	return uc.cascade.DeleteDepot(ctx, id)
}

// Availability stock registrado en la sede, ordenado por SKU.
func (uc *DepotUseCase) Availability(ctx context.Context, id string) (*dto.DepotAvailabilityResponse, error) {
	depot, err := uc.repos.Depots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if depot == nil {
		return nil, domain.ErrNotFound
	}
	stock, err := uc.repos.Products.ListStockByDepot(ctx, id)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DepotStockItem, 0, len(stock))
	for _, s := range stock {
		items = append(items, dto.DepotStockItem{
			ProductID: s.ProductID,
			SKU:       s.SKU,
			Name:      s.Name,
			Quantity:  s.Quantity,
		})
	}
	return &dto.DepotAvailabilityResponse{DepotID: depot.ID, Items: items}, nil
}

func toDepotResponse(d *entity.Depot) *dto.DepotResponse {
	if d == nil {
		return nil
	}
	return &dto.DepotResponse{
		ID:            d.ID,
		CompanyID:     d.CompanyID,
		ResponsableID: d.ResponsableID,
		Name:          d.Name,
		Capacity:      d.Capacity,
		Address:       d.Address,
		Latitude:      d.Latitude,
		Longitude:     d.Longitude,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
