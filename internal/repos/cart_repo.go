package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"medicatalog/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type cartItemRow struct {
	ProductID string `db:"product_id"`
	Name      string `db:"name"`
	Brand     string `db:"brand"`
	Image     string `db:"image"`
	Qty       int    `db:"qty"`
}

// Load returns the session's cart; a session without one has an empty cart.
func (r *CartRepo) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	rows := []cartItemRow{}
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(`
	  SELECT ci.product_id, ci.name, ci.brand, ci.image, ci.qty
	  FROM cart_items ci JOIN carts c ON c.id = ci.cart_id
	  WHERE c.session_id = ?
	  ORDER BY ci.position
	`), sessionID); err != nil {
		return domain.Cart{}, err
	}
	c := domain.Cart{Items: make([]domain.CartItem, 0, len(rows))}
	for _, it := range rows {
		c.Items = append(c.Items, domain.CartItem{
			ID: it.ProductID, Name: it.Name, Brand: it.Brand, Image: it.Image, Quantity: it.Qty,
		})
	}
	return c, nil
}

// Save replaces the stored cart of the session with c in one transaction.
func (r *CartRepo) Save(ctx context.Context, sessionID string, c domain.Cart) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	cartID, err := ensureCart(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM cart_items WHERE cart_id = ?`), cartID); err != nil {
		return err
	}
	for i, it := range c.Items {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
		  INSERT INTO cart_items(cart_id, product_id, position, name, brand, image, qty)
		  VALUES(?,?,?,?,?,?,?)
		`), cartID, it.ID, i, it.Name, it.Brand, it.Image, it.Quantity); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func ensureCart(ctx context.Context, tx *sqlx.Tx, sessionID string) (string, error) {
	now := stamp(time.Now())
	if _, err := tx.ExecContext(ctx, tx.Rebind(`
	  INSERT INTO carts(id, session_id, updated_at) VALUES(?,?,?)
	  ON CONFLICT(session_id) DO UPDATE SET updated_at = excluded.updated_at
	`), sessionID, sessionID, now); err != nil {
		return "", err
	}
	var cartID string
	err := tx.GetContext(ctx, &cartID, tx.Rebind(`SELECT id FROM carts WHERE session_id = ?`), sessionID)
	return cartID, err
}

func (r *CartRepo) Clear(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM carts WHERE session_id = ?)
	`), sessionID)
	return err
}
