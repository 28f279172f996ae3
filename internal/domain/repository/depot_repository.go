package repository

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// DepotRepository define el puerto de persistencia para Depot (DIP).
type DepotRepository interface {
	Create(ctx context.Context, depot *entity.Depot) error
	GetByID(ctx context.Context, id string) (*entity.Depot, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Depot, error)
	// Update no modifica CompanyID.
	Update(ctx context.Context, depot *entity.Depot) error
	List(ctx context.Context, scope access.ScopeFilter, limit, offset int) ([]*entity.Depot, error)
	Delete(ctx context.Context, id string) error
	DeleteByCompany(ctx context.Context, companyID string) (int64, error)
}
