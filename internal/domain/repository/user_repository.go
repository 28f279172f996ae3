package repository

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	// Create devuelve domain.ErrEmailAlreadyExists si el email ya existe.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// Update persiste nombre, rol y estado. Nunca toca empresa ni sede.
	// domain.ErrNotFound si el usuario ya no existe.
	Update(ctx context.Context, user *entity.User) error
	// SetDepot persiste la pareja (company_id, depot_id) que fijó User.AttachTo.
	SetDepot(ctx context.Context, user *entity.User) error
	// List aplica el filtro de alcance; los campos vacíos del filtro no restringen.
	List(ctx context.Context, scope access.ScopeFilter, limit, offset int) ([]*entity.User, error)
	Delete(ctx context.Context, id string) error
	DeleteByCompany(ctx context.Context, companyID string) (int64, error)
	// DetachFromDepot pone depot_id a NULL en todos los usuarios de la sede.
	DetachFromDepot(ctx context.Context, depotID string) (int64, error)
}
