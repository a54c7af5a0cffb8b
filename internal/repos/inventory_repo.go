package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"medicatalog/internal/domain"
)

// InventoryRepo reads and sets the stock status of products.
type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// Row used by the back-office stock listing
type InventoryRow struct {
	ProductID string `db:"product_id" json:"productId"`
	Name      string `db:"name" json:"name"`
	Brand     string `db:"brand" json:"brand"`
	Category  string `db:"category" json:"category"`
	Stock     string `db:"stock" json:"stock"`
}

// ListAll returns every product's stock state (for /admin/inventory)
func (r *InventoryRepo) ListAll(ctx context.Context) ([]InventoryRow, error) {
	rows := []InventoryRow{}
	err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT id AS product_id, name, brand, category, stock
		FROM products
		ORDER BY category, name
	`)
	return rows, err
}

// Statuses returns the stock state of each known id; unknown ids are absent.
func (r *InventoryRepo) Statuses(ctx context.Context, ids []string) (map[string]domain.StockStatus, error) {
	out := make(map[string]domain.StockStatus, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT id AS product_id, stock FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ProductID string `db:"product_id"`
		Stock     string `db:"stock"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		st, err := domain.ParseStockStatus(row.Stock)
		if err != nil {
			return nil, err
		}
		out[row.ProductID] = st
	}
	return out, nil
}

// SetStatus updates one product's stock state.
func (r *InventoryRepo) SetStatus(ctx context.Context, productID string, st domain.StockStatus) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products SET stock = ?, updated_at = ?
		WHERE id = ?
	`), string(st), stamp(time.Now()), productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
