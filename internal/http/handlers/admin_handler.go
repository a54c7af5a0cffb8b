package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"medicatalog/internal/domain"
	applog "medicatalog/internal/log"
	"medicatalog/internal/repos"
	"medicatalog/internal/services"
	"medicatalog/internal/validate"
)

// AdminHandler serves the back-office JSON API. Routes are mounted behind
// RequireStaff; user listing additionally needs RequireAdmin.
type AdminHandler struct {
	Catalog *services.CatalogService
	Quotes  *services.QuoteService
	Inv     *services.InventoryService
	Users   *repos.UserRepo
}

func (h *AdminHandler) productID(c *fiber.Ctx) (string, bool) {
	return validate.ID(c.Params("id"))
}

// POST /api/v1/admin/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product": p.ID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/v1/admin/products/:id
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := h.productID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product": id})
	return c.JSON(p)
}

// DELETE /api/v1/admin/products/:id
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := h.productID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// PUT /api/v1/admin/products/:id/translations
func (h *AdminHandler) UpsertTranslations(c *fiber.Ctx) error {
	id, ok := h.productID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	var body struct {
		Translations []domain.ProductTranslation `json:"translations"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	n, err := h.Catalog.UpsertTranslations(c.UserContext(), id, body.Translations)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.products.translations", map[string]any{"product": id, "applied": n})
	return c.JSON(fiber.Map{"applied": n})
}

// DELETE /api/v1/admin/products/:id/media/:index
func (h *AdminHandler) DeleteMedia(c *fiber.Ctx) error {
	id, ok := h.productID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	idx, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return badRequest(c, "index", "index must be a number")
	}
	p, err := h.Catalog.DeleteMedia(c.UserContext(), id, idx)
	if err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.products.media.delete", map[string]any{"product": id, "index": idx})
	return c.JSON(p)
}

// GET /api/v1/admin/quotes
func (h *AdminHandler) ListQuotes(c *fiber.Ctx) error {
	limit := intQuery(c, "limit")
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	list, err := h.Quotes.List(c.UserContext(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"quotes": list})
}

// GET /api/v1/admin/quotes/:id
func (h *AdminHandler) Quote(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid quote id")
	}
	q, err := h.Quotes.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(q)
}

// POST /api/v1/admin/quotes/:id/status
func (h *AdminHandler) UpdateQuoteStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid quote id")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	if err := h.Quotes.SetStatus(c.UserContext(), id, body.Status); err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.quotes.update", map[string]any{"quote": id, "status": body.Status})
	return c.JSON(fiber.Map{"id": id, "status": body.Status})
}

// GET /api/v1/admin/inventory
func (h *AdminHandler) Inventory(c *fiber.Ctx) error {
	rows, err := h.Inv.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"items": rows})
}

// POST /api/v1/admin/inventory/:id
func (h *AdminHandler) UpdateStock(c *fiber.Ctx) error {
	id, ok := h.productID(c)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	var body struct {
		Stock string `json:"stock"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	if err := h.Inv.SetStatus(c.UserContext(), id, body.Stock); err != nil {
		return writeError(c, err)
	}
	applog.Audit(c, "admin.inventory.save", map[string]any{"product": id, "stock": body.Stock})
	return c.JSON(fiber.Map{"productId": id, "stock": body.Stock})
}

// GET /api/v1/admin/users lists accounts other than admins.
func (h *AdminHandler) UsersList(c *fiber.Ctx) error {
	users := []struct {
		ID    string `db:"id" json:"id"`
		Email string `db:"email" json:"email"`
		Name  string `db:"name" json:"name"`
		Role  string `db:"role" json:"role"`
	}{}
	if err := h.Users.DB.SelectContext(c.UserContext(), &users,
		`SELECT id, email, name, role FROM users WHERE role != 'ADMIN' ORDER BY email`); err != nil {
		return writeError(c, domain.Transient("users.list", err))
	}
	return c.JSON(fiber.Map{"users": users})
}
