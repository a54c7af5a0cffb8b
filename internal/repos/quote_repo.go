package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"medicatalog/internal/domain"
)

type QuoteRepo struct{ db *sqlx.DB }

func NewQuoteRepo(db *sqlx.DB) *QuoteRepo { return &QuoteRepo{db: db} }

// ---------- Admin list summary ----------
type QuoteSummary struct {
	ID         string `db:"id" json:"id"`
	UserID     string `db:"user_id" json:"userId,omitempty"`
	Contact    string `db:"contact" json:"contact"`
	GuestEmail string `db:"guest_email" json:"guestEmail,omitempty"`
	Lines      int    `db:"lines" json:"lines"`
	Units      int    `db:"units" json:"units"`
	Status     string `db:"status" json:"status"`
	CreatedAt  string `db:"created_at" json:"createdAt"`
}

type quoteRow struct {
	ID         string `db:"id"`
	UserID     string `db:"user_id"`
	GuestName  string `db:"guest_name"`
	GuestEmail string `db:"guest_email"`
	GuestPhone string `db:"guest_phone"`
	Status     string `db:"status"`
	CreatedAt  string `db:"created_at"`
}

// Create stores a quote header with its lines in one transaction.
func (r *QuoteRepo) Create(ctx context.Context, sessionID string, q domain.Quote) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`
	  INSERT INTO quotes
	    (id, session_id, user_id, guest_name, guest_email, guest_phone, status, created_at)
	  VALUES
	    (?,  ?,          ?,       ?,          ?,           ?,           ?,      ?)
	`), q.ID, sessionID, q.UserID, q.GuestName, q.GuestEmail, q.GuestPhone, string(q.Status), stamp(q.CreatedAt)); err != nil {
		return err
	}
	for i, it := range q.Items {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
		  INSERT INTO quote_items(quote_id, product_id, position, name, brand, qty)
		  VALUES(?, ?, ?, ?, ?, ?)
		`), q.ID, it.ProductID, i, it.Name, it.Brand, it.Quantity); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *QuoteRepo) Get(ctx context.Context, id string) (domain.Quote, error) {
	var row quoteRow
	err := sqlx.GetContext(ctx, r.db, &row, r.db.Rebind(`
	  SELECT id, COALESCE(user_id,'') AS user_id, guest_name, guest_email, guest_phone, status, created_at
	  FROM quotes WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quote{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Quote{}, err
	}

	items := []domain.QuoteItem{}
	if err := sqlx.SelectContext(ctx, r.db, &items, r.db.Rebind(`
	  SELECT product_id, name, brand, qty AS quantity
	  FROM quote_items WHERE quote_id = ?
	  ORDER BY position
	`), id); err != nil {
		return domain.Quote{}, err
	}
	return domain.Quote{
		ID:         row.ID,
		Status:     domain.QuoteStatus(row.Status),
		UserID:     row.UserID,
		GuestName:  row.GuestName,
		GuestEmail: row.GuestEmail,
		GuestPhone: row.GuestPhone,
		Items:      items,
		CreatedAt:  parseStamp(row.CreatedAt),
	}, nil
}

func (r *QuoteRepo) ListLatest(ctx context.Context, limit int) ([]QuoteSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []QuoteSummary{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`
		SELECT q.id, COALESCE(q.user_id,'') AS user_id,
		       COALESCE(u.email, q.guest_name) AS contact, q.guest_email,
		       COUNT(qi.product_id) AS lines, COALESCE(SUM(qi.qty),0) AS units,
		       q.status, q.created_at
		FROM quotes q
		LEFT JOIN users u ON u.id = q.user_id
		LEFT JOIN quote_items qi ON qi.quote_id = q.id
		GROUP BY q.id, q.user_id, u.email, q.guest_name, q.guest_email, q.status, q.created_at
		ORDER BY q.created_at DESC
		LIMIT ?
	`), limit)
	return out, err
}

// ListByUser returns the quotes a signed-in user submitted.
func (r *QuoteRepo) ListByUser(ctx context.Context, userID string) ([]QuoteSummary, error) {
	out := []QuoteSummary{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`
		SELECT q.id, q.user_id, '' AS contact, q.guest_email,
		       COUNT(qi.product_id) AS lines, COALESCE(SUM(qi.qty),0) AS units,
		       q.status, q.created_at
		FROM quotes q
		LEFT JOIN quote_items qi ON qi.quote_id = q.id
		WHERE q.user_id = ?
		GROUP BY q.id, q.user_id, q.guest_email, q.status, q.created_at
		ORDER BY q.created_at DESC
	`), userID)
	return out, err
}

func (r *QuoteRepo) UpdateStatus(ctx context.Context, id string, status domain.QuoteStatus) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE quotes SET status = ? WHERE id = ?`), string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
