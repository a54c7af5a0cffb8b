package repos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"medicatalog/internal/domain"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

type reviewRow struct {
	ID        string         `db:"id"`
	ProductID string         `db:"product_id"`
	UserID    sql.NullString `db:"user_id"`
	Author    string         `db:"author"`
	Rating    int            `db:"rating"`
	Comment   string         `db:"comment"`
	CreatedAt string         `db:"created_at"`
}

func (r *ReviewRepo) Add(ctx context.Context, rv domain.Review) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  INSERT INTO product_reviews(id, product_id, user_id, author, rating, comment, created_at)
	  VALUES(?,?,?,?,?,?,?)`),
		rv.ID, rv.ProductID, sql.NullString{String: rv.UserID, Valid: rv.UserID != ""},
		rv.Author, rv.Rating, rv.Comment, stamp(rv.CreatedAt))
	return err
}

// ByProduct lists a product's reviews, newest first.
func (r *ReviewRepo) ByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	var rows []reviewRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
	  SELECT id, product_id, user_id, author, rating, comment, created_at
	  FROM product_reviews WHERE product_id=?
	  ORDER BY created_at DESC, id`), productID); err != nil {
		return nil, err
	}
	out := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Review{
			ID: row.ID, ProductID: row.ProductID, UserID: row.UserID.String,
			Author: row.Author, Rating: row.Rating, Comment: row.Comment,
			CreatedAt: parseStamp(row.CreatedAt),
		})
	}
	return out, nil
}
