package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Logistica-api/internal/domain/access"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, company_id, sku, name, price, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
// El stock por sede vive en product_stock.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto y su disponibilidad inicial.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, company_id, sku, name, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, p.ID, p.CompanyID, p.SKU, p.Name, p.Price, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", mapConstraintError(err))
	}
	for _, s := range p.Availability {
		if err := r.UpsertStock(ctx, p.ID, s); err != nil {
			return err
		}
	}
	return nil
}

// GetByID obtiene un producto con su disponibilidad por sede.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	var p entity.Product
	err := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id).Scan(
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	stock, err := r.stockFor(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Availability = stock[p.ID]
	return &p, nil
}

// List lista productos del filtro con su disponibilidad (una consulta extra para todo el lote).
func (r *ProductRepo) List(ctx context.Context, scope access.ScopeFilter, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + ` FROM products
		WHERE ($1::uuid IS NULL OR company_id = $1::uuid)
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, nullable(scope.CompanyID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	var ids []string
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products rows: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}
	stock, err := r.stockFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		p.Availability = stock[p.ID]
	}
	return list, nil
}

func (r *ProductRepo) stockFor(ctx context.Context, productIDs []string) (map[string][]entity.StockEntry, error) {
	query := `
		SELECT product_id, depot_id, quantity, updated_at
		FROM product_stock WHERE product_id = ANY($1::uuid[])
		ORDER BY depot_id`
	rows, err := r.q.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get product stock: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]entity.StockEntry, len(productIDs))
	for rows.Next() {
		var productID string
		var s entity.StockEntry
		if err := rows.Scan(&productID, &s.DepotID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product stock: %w", err)
		}
		out[productID] = append(out[productID], s)
	}
	return out, rows.Err()
}

// UpsertStock inserta o actualiza la cantidad de un producto en una sede.
func (r *ProductRepo) UpsertStock(ctx context.Context, productID string, entry entity.StockEntry) error {
	query := `
		INSERT INTO product_stock (product_id, depot_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, depot_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, productID, entry.DepotID, entry.Quantity, entry.UpdatedAt); err != nil {
		return fmt.Errorf("upsert stock: %w", mapConstraintError(err))
	}
	return nil
}

// ListStockByDepot devuelve los productos con stock registrado en la sede.
func (r *ProductRepo) ListStockByDepot(ctx context.Context, depotID string) ([]repository.DepotStock, error) {
	if !validID(depotID) {
		return nil, nil
	}
	query := `
		SELECT p.id, p.sku, p.name, s.quantity
		FROM product_stock s
		JOIN products p ON p.id = s.product_id
		WHERE s.depot_id = $1
		ORDER BY p.sku`
	rows, err := r.q.Query(ctx, query, depotID)
	if err != nil {
		return nil, fmt.Errorf("list depot stock: %w", err)
	}
	defer rows.Close()

	var list []repository.DepotStock
	for rows.Next() {
		var s repository.DepotStock
		if err := rows.Scan(&s.ProductID, &s.SKU, &s.Name, &s.Quantity); err != nil {
			return nil, fmt.Errorf("scan depot stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// DeleteStockByDepot elimina todas las filas de stock de la sede.
func (r *ProductRepo) DeleteStockByDepot(ctx context.Context, depotID string) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM product_stock WHERE depot_id = $1`, depotID)
	if err != nil {
		return 0, fmt.Errorf("delete depot stock: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// Delete elimina un producto; su stock cae por ON DELETE CASCADE.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// DeleteByCompany elimina los productos de una empresa (y su stock).
func (r *ProductRepo) DeleteByCompany(ctx context.Context, companyID string) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE company_id = $1`, companyID)
	if err != nil {
		return 0, fmt.Errorf("delete products by company: %w", err)
	}
	return cmd.RowsAffected(), nil
}
