package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"medicatalog/internal/catalog"
	"medicatalog/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	ID          string            `db:"id"`
	Name        string            `db:"name"`
	Brand       string            `db:"brand"`
	Type        string            `db:"type"`
	Category    string            `db:"category"`
	SubCategory string            `db:"sub_category"`
	Description string            `db:"description"`
	Features    domain.FeatureSet `db:"features_json"`
	Stock       string            `db:"stock"`
	CreatedAt   string            `db:"created_at"`
	UpdatedAt   string            `db:"updated_at"`
}

type mediaRow struct {
	ProductID string `db:"product_id"`
	Position  int    `db:"position"`
	URL       string `db:"url"`
	MediaType string `db:"media_type"`
	Alt       string `db:"alt"`
}

type translationRow struct {
	ProductID   string            `db:"product_id"`
	Language    string            `db:"language"`
	Name        string            `db:"name"`
	Description string            `db:"description"`
	Features    domain.FeatureSet `db:"features_json"`
}

const productCols = `id, name, brand, type, category, sub_category, description, features_json, stock, created_at, updated_at`

func (row productRow) product() (domain.Product, error) {
	stock, err := domain.ParseStockStatus(row.Stock)
	if err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ID:           row.ID,
		Name:         row.Name,
		Brand:        row.Brand,
		Type:         row.Type,
		Category:     row.Category,
		SubCategory:  row.SubCategory,
		Description:  row.Description,
		Features:     row.Features,
		Stock:        stock,
		Media:        []domain.Media{},
		Translations: []domain.ProductTranslation{},
		CreatedAt:    parseStamp(row.CreatedAt),
		UpdatedAt:    parseStamp(row.UpdatedAt),
	}, nil
}

// List returns products matching the structural part of q, newest first.
// Free-text search is left to catalog.Filter.
func (r *ProductRepo) List(ctx context.Context, q catalog.Query) ([]domain.Product, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if q.Category != "" {
		where += ` AND category = ?`
		args = append(args, q.Category)
	}
	if q.Type != "" {
		where += ` AND type = ?`
		args = append(args, q.Type)
	}
	if q.SubCategory != "" {
		where += ` AND sub_category = ?`
		args = append(args, q.SubCategory)
	}
	if q.Brand != "" {
		where += ` AND brand = ?`
		args = append(args, q.Brand)
	}

	var rows []productRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(`
	  SELECT `+productCols+`
	  FROM products`+where+`
	  ORDER BY created_at DESC, id`), args...); err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var row productRow
	err := sqlx.GetContext(ctx, r.db, &row, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	out, err := r.hydrate(ctx, []productRow{row})
	if err != nil {
		return domain.Product{}, err
	}
	return out[0], nil
}

// ByShortID returns products whose compact id (lowercase, no hyphens) starts
// with prefix, oldest first.
func (r *ProductRepo) ByShortID(ctx context.Context, prefix string) ([]domain.Product, error) {
	var rows []productRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(`
	  SELECT `+productCols+`
	  FROM products
	  WHERE REPLACE(LOWER(id), '-', '') LIKE ?
	  ORDER BY created_at, id`), prefix+"%"); err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

// hydrate attaches media and translations in two queries.
func (r *ProductRepo) hydrate(ctx context.Context, rows []productRow) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]string, len(rows))
	pos := make(map[string]int, len(rows))
	for i, row := range rows {
		p, err := row.product()
		if err != nil {
			return nil, err
		}
		ids[i] = row.ID
		pos[row.ID] = i
		out = append(out, p)
	}

	query, args, err := sqlx.In(`
	  SELECT product_id, position, url, media_type, alt
	  FROM product_media WHERE product_id IN (?)
	  ORDER BY product_id, position`, ids)
	if err != nil {
		return nil, err
	}
	var media []mediaRow
	if err := sqlx.SelectContext(ctx, r.db, &media, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, m := range media {
		i := pos[m.ProductID]
		out[i].Media = append(out[i].Media, domain.Media{
			URL: m.URL, Type: domain.MediaType(m.MediaType), Alt: m.Alt, Order: m.Position,
		})
	}

	query, args, err = sqlx.In(`
	  SELECT product_id, language, name, description, features_json
	  FROM product_translations WHERE product_id IN (?)
	  ORDER BY product_id, language`, ids)
	if err != nil {
		return nil, err
	}
	var trs []translationRow
	if err := sqlx.SelectContext(ctx, r.db, &trs, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, t := range trs {
		i := pos[t.ProductID]
		out[i].Translations = append(out[i].Translations, domain.ProductTranslation{
			Language: domain.Language(t.Language), Name: t.Name, Description: t.Description, Features: t.Features,
		})
	}
	return out, nil
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := insertProduct(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

func insertProduct(ctx context.Context, e sqlx.ExtContext, p domain.Product) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if _, err := e.ExecContext(ctx, e.Rebind(`
	  INSERT INTO products(`+productCols+`)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?)`),
		p.ID, p.Name, p.Brand, p.Type, p.Category, p.SubCategory, p.Description,
		p.Features, string(p.Stock), stamp(p.CreatedAt), stamp(p.UpdatedAt)); err != nil {
		return err
	}
	if err := writeMedia(ctx, e, p.ID, domain.NormalizeMedia(p.Name, p.Media)); err != nil {
		return err
	}
	for _, t := range p.Translations {
		if err := upsertTranslation(ctx, e, p.ID, t); err != nil {
			return err
		}
	}
	return nil
}

// Update overwrites the base fields and the gallery of an existing product.
// p.Translations are upserted per language; languages not listed are kept.
func (r *ProductRepo) Update(ctx context.Context, p domain.Product) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, tx.Rebind(`
	  UPDATE products SET name=?, brand=?, type=?, category=?, sub_category=?, description=?,
	    features_json=?, stock=?, updated_at=?
	  WHERE id=?`),
		p.Name, p.Brand, p.Type, p.Category, p.SubCategory, p.Description,
		p.Features, string(p.Stock), stamp(time.Now()), p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	if err := writeMedia(ctx, tx, p.ID, domain.NormalizeMedia(p.Name, p.Media)); err != nil {
		return err
	}
	for _, t := range p.Translations {
		if err := upsertTranslation(ctx, tx, p.ID, t); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReplaceMedia stores media as the product's whole gallery, in the given order.
func (r *ProductRepo) ReplaceMedia(ctx context.Context, id string, media []domain.Media) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := touch(ctx, tx, id); err != nil {
		return err
	}
	for i := range media {
		media[i].Order = i
	}
	if err := writeMedia(ctx, tx, id, media); err != nil {
		return err
	}
	return tx.Commit()
}

func writeMedia(ctx context.Context, e sqlx.ExtContext, id string, media []domain.Media) error {
	if _, err := e.ExecContext(ctx, e.Rebind(`DELETE FROM product_media WHERE product_id=?`), id); err != nil {
		return err
	}
	for _, m := range media {
		if _, err := e.ExecContext(ctx, e.Rebind(`
		  INSERT INTO product_media(product_id, position, url, media_type, alt)
		  VALUES(?,?,?,?,?)`), id, m.Order, m.URL, string(m.Type), m.Alt); err != nil {
			return err
		}
	}
	return nil
}

// UpsertTranslation creates or replaces the product's entry for t.Language.
func (r *ProductRepo) UpsertTranslation(ctx context.Context, id string, t domain.ProductTranslation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := touch(ctx, tx, id); err != nil {
		return err
	}
	if err := upsertTranslation(ctx, tx, id, t); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertTranslation(ctx context.Context, e sqlx.ExtContext, id string, t domain.ProductTranslation) error {
	_, err := e.ExecContext(ctx, e.Rebind(`
	  INSERT INTO product_translations(product_id, language, name, description, features_json)
	  VALUES(?,?,?,?,?)
	  ON CONFLICT(product_id, language) DO UPDATE SET
	    name = excluded.name,
	    description = excluded.description,
	    features_json = excluded.features_json`),
		id, string(t.Language), t.Name, t.Description, t.Features)
	return err
}

// touch bumps updated_at, reporting ErrNotFound for an unknown id.
func touch(ctx context.Context, e sqlx.ExtContext, id string) error {
	res, err := e.ExecContext(ctx, e.Rebind(`UPDATE products SET updated_at=? WHERE id=?`), stamp(time.Now()), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a product with its gallery, translations, reviews and cart lines.
// Quote history keeps its own snapshot.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM cart_items WHERE product_id=?`,
		`DELETE FROM product_media WHERE product_id=?`,
		`DELETE FROM product_translations WHERE product_id=?`,
		`DELETE FROM product_reviews WHERE product_id=?`,
	} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM products WHERE id=?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
