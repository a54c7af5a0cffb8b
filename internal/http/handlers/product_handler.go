package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"medicatalog/internal/catalog"
	"medicatalog/internal/domain"
	"medicatalog/internal/log"
	"medicatalog/internal/services"
	"medicatalog/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Reviews *services.ReviewService
}

// productView is a product as the API and templates show it: translatable
// fields already resolved for the request language.
type productView struct {
	domain.Product
	Slug      string   `json:"slug"`
	Image     string   `json:"image"`
	Orderable bool     `json:"orderable"`
	Lines     []string `json:"-"`

	// detail views only
	Reviews []domain.Review `json:"reviews,omitempty"`
	Rating  float64         `json:"rating,omitempty"`
}

func viewOf(p domain.Product, lang domain.Language, slug string) productView {
	lp := catalog.Localize(p, string(lang))
	lp.Media = catalog.SortMedia(lp.Media)
	return productView{
		Product:   lp,
		Slug:      slug,
		Image:     lp.Image(),
		Orderable: lp.Stock.Orderable(),
		Lines:     lp.Features.Lines(),
	}
}

func viewsOf(res services.Result, lang domain.Language) []productView {
	out := make([]productView, 0, len(res.Items))
	for _, p := range res.Items {
		out = append(out, viewOf(p, lang, res.Slugs[p.ID]))
	}
	return out
}

// queryFrom reads the listing filters from the query string.
func queryFrom(c *fiber.Ctx) (catalog.Query, string, bool) {
	var q catalog.Query
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"category", &q.Category},
		{"type", &q.Type},
		{"subCategory", &q.SubCategory},
		{"brand", &q.Brand},
	} {
		v, ok := validate.Facet(c.Query(f.name))
		if !ok {
			return q, f.name, false
		}
		*f.dst = v
	}
	if raw := c.Query("q"); raw != "" {
		s, ok := validate.Q(raw)
		if !ok {
			return q, "q", false
		}
		q.Search = s
	}
	return q, "", true
}

func intQuery(c *fiber.Ctx, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

// GET /produits
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q, field, ok := queryFrom(c)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": field})
		c.Status(fiber.StatusBadRequest)
		return render(c, "products", fiber.Map{"Products": []productView{}, "Query": q, "Err": field})
	}
	res, err := h.Catalog.Query(c.UserContext(), q, intQuery(c, "page"), 0)
	if err != nil {
		log.Error(c, "products.list", err, nil)
		c.Status(statusFor(err))
		return render(c, "products", fiber.Map{"Products": []productView{}, "Query": q, "Retry": true})
	}
	return render(c, "products", fiber.Map{
		"Products": viewsOf(res, Lang(c)),
		"Facets":   res.Facets,
		"Query":    q,
		"Total":    res.Total,
		"Page":     res.Page,
		"Pages":    res.Pages,
	})
}

// GET /produit/:slug
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "slug"})
		return notFound(c, labels[Lang(c)]["NotFound"])
	}
	ctx := c.UserContext()
	p, err := h.Catalog.GetBySlug(ctx, slug)
	if err != nil {
		if statusFor(err) == fiber.StatusNotFound {
			return notFound(c, labels[Lang(c)]["NotFound"])
		}
		log.Error(c, "product.detail", err, map[string]any{"slug": slug})
		c.Status(statusFor(err))
		return render(c, "product", fiber.Map{"Retry": true})
	}
	canon, err := h.Catalog.Slug(ctx, p.ID)
	if err == nil && canon != slug {
		return c.Redirect("/produit/"+canon, fiber.StatusMovedPermanently)
	}
	return render(c, "product", fiber.Map{"P": h.withReviews(c, viewOf(p, Lang(c), canon))})
}

// withReviews attaches the product's reviews. A failed read leaves them out
// rather than failing the whole page.
func (h *ProductHandler) withReviews(c *fiber.Ctx, v productView) productView {
	rs, err := h.Reviews.List(c.UserContext(), v.ID)
	if err != nil {
		log.Error(c, "product.reviews", err, map[string]any{"product": v.ID})
		return v
	}
	v.Reviews, v.Rating = rs, domain.AverageRating(rs)
	return v
}

// ---------- JSON API ----------

// GET /api/v1/products
func (h *ProductHandler) APIList(c *fiber.Ctx) error {
	q, field, ok := queryFrom(c)
	if !ok {
		return badRequest(c, field, "invalid filter value")
	}
	res, err := h.Catalog.Query(c.UserContext(), q, intQuery(c, "page"), intQuery(c, "pageSize"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"items":    viewsOf(res, Lang(c)),
		"total":    res.Total,
		"page":     res.Page,
		"pageSize": res.PageSize,
		"pages":    res.Pages,
		"facets":   res.Facets,
	})
}

func (h *ProductHandler) single(c *fiber.Ctx, p domain.Product, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	slug, err := h.Catalog.Slug(c.UserContext(), p.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.withReviews(c, viewOf(p, Lang(c), slug)))
}

// GET /api/v1/products/:id
func (h *ProductHandler) APIGet(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	p, err := h.Catalog.GetByID(c.UserContext(), id)
	return h.single(c, p, err)
}

// GET /api/v1/products/by-slug/:slug
func (h *ProductHandler) APIBySlug(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return badRequest(c, "slug", "invalid slug")
	}
	p, err := h.Catalog.GetBySlug(c.UserContext(), slug)
	return h.single(c, p, err)
}

// GET /api/v1/products/by-shortid/:shortId
func (h *ProductHandler) APIByShortID(c *fiber.Ctx) error {
	p, err := h.Catalog.GetByShortID(c.UserContext(), c.Params("shortId"))
	return h.single(c, p, err)
}

// GET /api/v1/products/:id/localized?lang=
func (h *ProductHandler) APILocalized(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	p, err := h.Catalog.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	code := c.Query("lang")
	if code == "" {
		code = string(Lang(c))
	}
	return c.JSON(catalog.Resolve(p, code))
}

// GET /api/v1/products/:id/reviews
func (h *ProductHandler) APIReviews(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	if _, err := h.Catalog.GetByID(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	rs, err := h.Reviews.List(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"reviews": rs, "count": len(rs), "rating": domain.AverageRating(rs)})
}

// POST /api/v1/products/:id/reviews
func (h *ProductHandler) APIAddReview(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	var in services.ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	rv, err := h.Reviews.Add(c.UserContext(), id, in, currentUser(c))
	if err != nil {
		return writeError(c, err)
	}
	log.Audit(c, "product.review", map[string]any{"product": id, "review": rv.ID, "rating": rv.Rating})
	return c.Status(fiber.StatusCreated).JSON(rv)
}

// GET /api/v1/filters
func (h *ProductHandler) Filters(c *fiber.Ctx) error {
	f, err := h.Catalog.Filters(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(f)
}

// GET /api/v1/category-types
func (h *ProductHandler) CategoryTypes(c *fiber.Ctx) error {
	rel, err := h.Catalog.CategoryTypes(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rel)
}
