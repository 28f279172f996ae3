package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var _ repository.DepotRepository = (*DepotRepo)(nil)

const depotColumns = `id, company_id, responsable_id, name, capacity, address, latitude, longitude, created_at, updated_at`

// DepotRepo implementación del puerto DepotRepository sobre PostgreSQL.
type DepotRepo struct {
	q Querier
}

// NewDepotRepository construye el adaptador de persistencia para sedes. Pasar pool o tx.
func NewDepotRepository(q Querier) *DepotRepo {
	return &DepotRepo{q: q}
}

// Create persiste una nueva sede. El responsable puede insertarse después en la misma tx (FK diferida).
func (r *DepotRepo) Create(ctx context.Context, d *entity.Depot) error {
	query := `
		INSERT INTO depots (id, company_id, responsable_id, name, capacity, address, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.CompanyID, d.ResponsableID, d.Name, d.Capacity, d.Address,
		d.Latitude, d.Longitude, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert depot: %w", mapConstraintError(err))
	}
	return nil
}

// GetByID obtiene una sede por ID.
func (r *DepotRepo) GetByID(ctx context.Context, id string) (*entity.Depot, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.scanOne(ctx, `SELECT `+depotColumns+` FROM depots WHERE id = $1`, id)
}

// GetForUpdate obtiene la sede y bloquea la fila (SELECT FOR UPDATE).
func (r *DepotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Depot, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.scanOne(ctx, `SELECT `+depotColumns+` FROM depots WHERE id = $1 FOR UPDATE`, id)
}

func (r *DepotRepo) scanOne(ctx context.Context, query, id string) (*entity.Depot, error) {
	var d entity.Depot
	err := r.q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.CompanyID, &d.ResponsableID, &d.Name, &d.Capacity, &d.Address,
		&d.Latitude, &d.Longitude, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get depot: %w", err)
	}
	return &d, nil
}

// Update actualiza los datos operativos de la sede. company_id no se toca.
func (r *DepotRepo) Update(ctx context.Context, d *entity.Depot) error {
	query := `
		UPDATE depots SET name = $2, capacity = $3, address = $4, latitude = $5, longitude = $6,
		       responsable_id = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.Name, d.Capacity, d.Address, d.Latitude, d.Longitude, d.ResponsableID, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update depot: %w", mapConstraintError(err))
	}
	return nil
}

// List lista sedes aplicando el filtro de alcance.
func (r *DepotRepo) List(ctx context.Context, scope access.ScopeFilter, limit, offset int) ([]*entity.Depot, error) {
	query := `
		SELECT ` + depotColumns + ` FROM depots
		WHERE ($1::uuid IS NULL OR company_id = $1::uuid)
		  AND ($2::uuid IS NULL OR id = $2::uuid)
		ORDER BY created_at DESC, id LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, nullable(scope.CompanyID), nullable(scope.DepotID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list depots: %w", err)
	}
	defer rows.Close()

	var list []*entity.Depot
	for rows.Next() {
		var d entity.Depot
		if err := rows.Scan(
			&d.ID, &d.CompanyID, &d.ResponsableID, &d.Name, &d.Capacity, &d.Address,
			&d.Latitude, &d.Longitude, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan depot: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// Delete elimina una sede. Sus usuarios deben estar desvinculados (ver cascade.Engine).
func (r *DepotRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM depots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete depot: %w", mapConstraintError(err))
	}
	return nil
}

// DeleteByCompany elimina todas las sedes de una empresa.
func (r *DepotRepo) DeleteByCompany(ctx context.Context, companyID string) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM depots WHERE company_id = $1`, companyID)
	if err != nil {
		return 0, fmt.Errorf("delete depots by company: %w", mapConstraintError(err))
	}
	return cmd.RowsAffected(), nil
}
