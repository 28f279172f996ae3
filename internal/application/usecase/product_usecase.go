package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/internal/application/ports"
	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

// ProductUseCase casos de uso para productos y su disponibilidad por sede.
type ProductUseCase struct {
	repos repository.Repositories
	tx    ports.TxRunner
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repos repository.Repositories, tx ports.TxRunner) *ProductUseCase {
	return &ProductUseCase{repos: repos, tx: tx}
}

// Create crea un producto en la empresa indicada. SKU repetido en la empresa devuelve domain.ErrConflict.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("sku y nombre obligatorios: %w", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("precio negativo: %w", domain.ErrInvalidInput)
	}
	now := time.Now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		SKU:       sku,
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repos.Products.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto con su disponibilidad. domain.ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// List lista productos dentro del alcance con paginación.
func (uc *ProductUseCase) List(ctx context.Context, scope access.ScopeFilter, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repos.Products.List(ctx, scope, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// SetAvailability fija la cantidad disponible del producto en una sede. La sede se bloquea durante
// la escritura y debe pertenecer a la misma empresa que el producto.
func (uc *ProductUseCase) SetAvailability(ctx context.Context, id string, in dto.SetAvailabilityRequest) (*dto.ProductResponse, error) {
	if in.Quantity.IsNegative() {
		return nil, fmt.Errorf("cantidad negativa: %w", domain.ErrInvalidInput)
	}
	var out *entity.Product
	err := uc.tx.RunInTx(ctx, func(r repository.Repositories) error {
		product, err := r.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		depot, err := r.Depots.GetForUpdate(ctx, in.DepotID)
		if err != nil {
			return err
		}
		if depot == nil {
			return domain.ErrNotFound
		}
		if depot.CompanyID != product.CompanyID {
			return domain.ErrDepotCompanyMismatch
		}
		entry := entity.StockEntry{DepotID: depot.ID, Quantity: in.Quantity, UpdatedAt: time.Now()}
		if err := r.Products.UpsertStock(ctx, product.ID, entry); err != nil {
			return err
		}
		out, err = r.Products.GetByID(ctx, product.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(out), nil
}

// Delete elimina un producto con su stock.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repos.Products.Delete(ctx, id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	availability := make([]dto.StockEntryResponse, 0, len(p.Availability))
	for _, s := range p.Availability {
		availability = append(availability, dto.StockEntryResponse{
			DepotID:   s.DepotID,
			Quantity:  s.Quantity,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return &dto.ProductResponse{
		ID:           p.ID,
		CompanyID:    p.CompanyID,
		SKU:          p.SKU,
		Name:         p.Name,
		Price:        p.Price,
		Availability: availability,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
