package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"medicatalog/internal/services"
	"medicatalog/internal/validate"
)

const maxAvailabilityIDs = 50

type InventoryHandler struct {
	Inv *services.InventoryService
}

// GET /api/v1/availability?ids=a,b,c
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("ids"))
	if raw == "" {
		return badRequest(c, "ids", "missing ids")
	}
	parts := strings.Split(raw, ",")
	if len(parts) > maxAvailabilityIDs {
		return badRequest(c, "ids", "too many ids")
	}
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		id, ok := validate.ID(p)
		if !ok {
			return badRequest(c, "ids", "invalid product id")
		}
		ids = append(ids, id)
	}

	avail, err := h.Inv.CheckAvailability(c.UserContext(), ids)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"items": avail})
}
