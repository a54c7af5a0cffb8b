package services

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"medicatalog/internal/cache"
	"medicatalog/internal/catalog"
	"medicatalog/internal/domain"
	applog "medicatalog/internal/log"
	"medicatalog/internal/repos"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100

	filtersKey       = "catalog:filters:v1"
	categoryTypesKey = "catalog:category-types:v1"
)

var reShortID = regexp.MustCompile(`^[0-9a-f]{4,32}$`)

// CatalogService is the product store: lookups, filtered listing, facet
// metadata and the back-office writes.
type CatalogService struct {
	Prods *repos.ProductRepo
	Cache cache.Store
	TTL   time.Duration
}

func NewCatalogService(prods *repos.ProductRepo, store cache.Store, ttl time.Duration) *CatalogService {
	if store == nil {
		store = cache.NewMemory()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogService{Prods: prods, Cache: store, TTL: ttl}
}

// Result is one page of a filtered listing. Facets describe the whole
// matched set, not only the page.
type Result struct {
	Items    []domain.Product  `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Pages    int               `json:"pages"`
	Facets   catalog.FacetSet  `json:"facets"`
	Slugs    map[string]string `json:"slugs"`
}

func (s *CatalogService) GetByID(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	return p, domain.Transient("products.get", err)
}

// GetBySlug resolves slug against the current catalog.
func (s *CatalogService) GetBySlug(ctx context.Context, slug string) (domain.Product, error) {
	all, err := s.Prods.List(ctx, catalog.Query{})
	if err != nil {
		return domain.Product{}, domain.Transient("products.list", err)
	}
	m, err := catalog.NewSlugIndex(all).Resolve(slug)
	if err != nil {
		return domain.Product{}, err
	}
	if m.Candidates > 1 {
		applog.Warn("slug.collision", map[string]any{"slug": slug, "candidates": m.Candidates, "chosen": m.ID})
	}
	for _, p := range all {
		if p.ID == m.ID {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

// GetByShortID finds the product whose compact id starts with prefix; the
// oldest wins when several do.
func (s *CatalogService) GetByShortID(ctx context.Context, prefix string) (domain.Product, error) {
	prefix = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(prefix), "-", ""))
	if !reShortID.MatchString(prefix) {
		return domain.Product{}, domain.Invalid("shortId", "expected 4 to 32 hexadecimal characters")
	}
	ps, err := s.Prods.ByShortID(ctx, prefix)
	if err != nil {
		return domain.Product{}, domain.Transient("products.by_short_id", err)
	}
	if len(ps) == 0 {
		return domain.Product{}, domain.ErrNotFound
	}
	if len(ps) > 1 {
		applog.Warn("shortid.collision", map[string]any{"prefix": prefix, "candidates": len(ps), "chosen": ps[0].ID})
	}
	return ps[0], nil
}

// Query filters the catalog (structural AND, then free text), newest first,
// and returns the requested page with facets of the matched set.
func (s *CatalogService) Query(ctx context.Context, q catalog.Query, page, pageSize int) (Result, error) {
	q = q.Normalize()
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	all, err := s.Prods.List(ctx, catalog.Query{})
	if err != nil {
		return Result{}, domain.Transient("products.list", err)
	}
	matched := catalog.Filter(all, q)

	res := Result{
		Total:    len(matched),
		Page:     page,
		PageSize: pageSize,
		Pages:    (len(matched) + pageSize - 1) / pageSize,
		Facets:   catalog.Facets(matched),
		Items:    []domain.Product{},
		Slugs:    map[string]string{},
	}
	if start := (page - 1) * pageSize; start < len(matched) {
		end := start + pageSize
		if end > len(matched) {
			end = len(matched)
		}
		res.Items = matched[start:end]
	}
	idx := catalog.NewSlugIndex(all)
	for _, p := range res.Items {
		res.Slugs[p.ID], _ = idx.Canonical(p.ID)
	}
	return res, nil
}

// Slug returns the canonical slug of one product.
func (s *CatalogService) Slug(ctx context.Context, id string) (string, error) {
	all, err := s.Prods.List(ctx, catalog.Query{})
	if err != nil {
		return "", domain.Transient("products.list", err)
	}
	slug, ok := catalog.NewSlugIndex(all).Canonical(id)
	if !ok {
		return "", domain.ErrNotFound
	}
	return slug, nil
}

// Filters returns the sorted facet values of the whole catalog.
func (s *CatalogService) Filters(ctx context.Context) (catalog.FacetSet, error) {
	var out catalog.FacetSet
	err := s.cached(ctx, filtersKey, &out, func(all []domain.Product) any {
		return catalog.Facets(all)
	})
	return out, err
}

// CategoryTypes returns, per category, the types and sub-categories in use.
func (s *CatalogService) CategoryTypes(ctx context.Context) ([]catalog.CategoryTypes, error) {
	out := []catalog.CategoryTypes{}
	err := s.cached(ctx, categoryTypesKey, &out, func(all []domain.Product) any {
		return catalog.Relations(all)
	})
	return out, err
}

// cached serves key from the cache, computing it from the full catalog on a
// miss. Cache failures are logged and bypassed.
func (s *CatalogService) cached(ctx context.Context, key string, dst any, compute func([]domain.Product) any) error {
	b, err := s.Cache.Get(ctx, key)
	if err == nil {
		if jerr := json.Unmarshal(b, dst); jerr == nil {
			return nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		applog.Event("cache.get", err, map[string]any{"key": key})
	}

	all, err := s.Prods.List(ctx, catalog.Query{})
	if err != nil {
		return domain.Transient("products.list", err)
	}
	b, err = json.Marshal(compute(all))
	if err != nil {
		return err
	}
	if err := s.Cache.Set(ctx, key, b, s.TTL); err != nil {
		applog.Event("cache.set", err, map[string]any{"key": key})
	}
	return json.Unmarshal(b, dst)
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.Cache.Delete(ctx, filtersKey, categoryTypesKey); err != nil {
		applog.Event("cache.invalidate", err, nil)
	}
}

// ---------- back-office writes ----------

// ProductInput is the writable part of a product.
type ProductInput struct {
	Name         string                      `json:"name"`
	Brand        string                      `json:"brand"`
	Type         string                      `json:"type"`
	Category     string                      `json:"category"`
	SubCategory  string                      `json:"subCategory"`
	Description  string                      `json:"description"`
	Features     domain.FeatureSet           `json:"features"`
	Stock        string                      `json:"stock"`
	Media        []domain.Media              `json:"media"`
	Translations []domain.ProductTranslation `json:"translations"`
}

func (in ProductInput) product() (domain.Product, error) {
	p := domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Brand:       strings.TrimSpace(in.Brand),
		Type:        strings.TrimSpace(in.Type),
		Category:    strings.TrimSpace(in.Category),
		SubCategory: strings.TrimSpace(in.SubCategory),
		Description: strings.TrimSpace(in.Description),
		Features:    in.Features,
	}
	if p.Name == "" || len(p.Name) > 200 {
		return p, domain.Invalid("name", "required, at most 200 characters")
	}
	if p.Category == "" {
		return p, domain.Invalid("category", "required")
	}
	stock := in.Stock
	if strings.TrimSpace(stock) == "" {
		stock = string(domain.InStock)
	}
	st, err := domain.ParseStockStatus(stock)
	if err != nil {
		return p, err
	}
	p.Stock = st
	for _, m := range in.Media {
		if strings.TrimSpace(m.URL) == "" {
			return p, domain.Invalid("media", "url required")
		}
		if m.Type != "" && m.Type != domain.MediaImage && m.Type != domain.MediaVideo {
			return p, domain.Invalid("media", "type must be image or video")
		}
	}
	p.Media = domain.NormalizeMedia(p.Name, catalog.SortMedia(in.Media))
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	p, err := in.product()
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	p.Translations, err = cleanTranslations(in.Translations)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.Prods.Create(ctx, p); err != nil {
		return domain.Product{}, err
	}
	s.invalidate(ctx)
	applog.Event("product.created", nil, map[string]any{"id": p.ID, "name": p.Name})
	return s.GetByID(ctx, p.ID)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	p, err := in.product()
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = id
	p.Translations, err = cleanTranslations(in.Translations)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.Prods.Update(ctx, p); err != nil {
		return domain.Product{}, err
	}
	s.invalidate(ctx)
	return s.GetByID(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Prods.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	applog.Event("product.deleted", nil, map[string]any{"id": id})
	return nil
}

// UpsertTranslations stores the given language entries and returns how many
// were applied. Entries with neither a name nor a description are skipped.
func (s *CatalogService) UpsertTranslations(ctx context.Context, id string, trs []domain.ProductTranslation) (int, error) {
	clean, err := cleanTranslations(trs)
	if err != nil {
		return 0, err
	}
	if _, err := s.Prods.Get(ctx, id); err != nil {
		return 0, err
	}
	for _, t := range clean {
		if err := s.Prods.UpsertTranslation(ctx, id, t); err != nil {
			return 0, err
		}
	}
	return len(clean), nil
}

func cleanTranslations(trs []domain.ProductTranslation) ([]domain.ProductTranslation, error) {
	out := make([]domain.ProductTranslation, 0, len(trs))
	seen := map[domain.Language]bool{}
	for _, t := range trs {
		lang, err := domain.ParseLanguage(string(t.Language))
		if err != nil {
			return nil, err
		}
		t.Language = lang
		t.Name = strings.TrimSpace(t.Name)
		t.Description = strings.TrimSpace(t.Description)
		if t.Name == "" && t.Description == "" {
			continue
		}
		if seen[lang] {
			return nil, domain.Invalid("language", "duplicate entry for "+string(lang))
		}
		seen[lang] = true
		out = append(out, t)
	}
	return out, nil
}

// DeleteMedia removes the gallery entry at index and closes the gap in the
// display order.
func (s *CatalogService) DeleteMedia(ctx context.Context, id string, index int) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	media, err := catalog.RemoveMedia(p.Media, index)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.Prods.ReplaceMedia(ctx, id, media); err != nil {
		return domain.Product{}, err
	}
	return s.GetByID(ctx, id)
}
