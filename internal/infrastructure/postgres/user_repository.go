package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, company_id, depot_id, email, password_hash, name, role, status, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, company_id, depot_id, email, password_hash, name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.CompanyID, user.DepotID, user.Email, user.PasswordHash, user.Name,
		string(user.Role), user.Status, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return mapConstraintError(err)
		}
		return fmt.Errorf("insert user: %w", mapConstraintError(err))
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail obtiene un usuario por email sin distinguir mayúsculas.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.scanOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepo) scanOne(ctx context.Context, query, arg string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	var role string
	if err := row.Scan(
		&u.ID, &u.CompanyID, &u.DepotID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.Status,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	return &u, nil
}

// Update persiste nombre, rol y estado. company_id y depot_id solo cambian con SetDepot.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET name = $2, role = $3, status = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, user.ID, user.Name, string(user.Role), user.Status, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update user: %w", mapConstraintError(err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetDepot persiste la empresa y la sede del usuario.
func (r *UserRepo) SetDepot(ctx context.Context, user *entity.User) error {
	query := `UPDATE users SET company_id = $2, depot_id = $3, updated_at = $4 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, user.ID, user.CompanyID, user.DepotID, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("set user depot: %w", mapConstraintError(err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista usuarios aplicando el filtro de alcance.
func (r *UserRepo) List(ctx context.Context, scope access.ScopeFilter, limit, offset int) ([]*entity.User, error) {
	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE ($1::uuid IS NULL OR company_id = $1::uuid)
		  AND ($2::uuid IS NULL OR depot_id = $2::uuid)
		ORDER BY created_at DESC, id LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, nullable(scope.CompanyID), nullable(scope.DepotID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Delete elimina un usuario por ID.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", mapConstraintError(err))
	}
	return nil
}

// DeleteByCompany elimina todos los usuarios de una empresa (admin, responsables y miembros).
func (r *UserRepo) DeleteByCompany(ctx context.Context, companyID string) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM users WHERE company_id = $1`, companyID)
	if err != nil {
		return 0, fmt.Errorf("delete users by company: %w", mapConstraintError(err))
	}
	return cmd.RowsAffected(), nil
}

// DetachFromDepot pone depot_id a NULL en los usuarios de la sede; conservan company_id.
func (r *UserRepo) DetachFromDepot(ctx context.Context, depotID string) (int64, error) {
	cmd, err := r.q.Exec(ctx, `UPDATE users SET depot_id = NULL, updated_at = now() WHERE depot_id = $1`, depotID)
	if err != nil {
		return 0, fmt.Errorf("detach users from depot: %w", err)
	}
	return cmd.RowsAffected(), nil
}
