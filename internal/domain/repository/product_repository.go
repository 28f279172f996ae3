package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// DepotStock disponibilidad de un producto en una sede (consulta acotada por sede).
type DepotStock struct {
	ProductID string
	SKU       string
	Name      string
	Quantity  decimal.Decimal
}

// ProductRepository define el puerto de persistencia para Product y su stock por sede.
type ProductRepository interface {
	// Create devuelve domain.ErrConflict si el SKU ya existe en la empresa.
	Create(ctx context.Context, product *entity.Product) error
	// GetByID incluye Availability.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, scope access.ScopeFilter, limit, offset int) ([]*entity.Product, error)
	UpsertStock(ctx context.Context, productID string, entry entity.StockEntry) error
	ListStockByDepot(ctx context.Context, depotID string) ([]DepotStock, error)
	DeleteStockByDepot(ctx context.Context, depotID string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByCompany(ctx context.Context, companyID string) (int64, error)
}
