package handlers

import (
	"github.com/gofiber/fiber/v2"

	"medicatalog/internal/catalog"
	"medicatalog/internal/log"
	"medicatalog/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// Home lists every category with the product types found in it.
func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	rel, err := h.Catalog.CategoryTypes(c.UserContext())
	if err != nil {
		log.Error(c, "home.categories", err, nil)
		c.Status(statusFor(err))
		return render(c, "home", fiber.Map{"Categories": []catalog.CategoryTypes{}, "Retry": true})
	}
	return render(c, "home", fiber.Map{"Categories": rel})
}
