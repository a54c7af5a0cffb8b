package handlers

import (
	"github.com/gofiber/fiber/v2"

	"medicatalog/internal/domain"
	"medicatalog/internal/log"
	"medicatalog/internal/services"
)

type QuoteHandler struct {
	Quotes   *services.QuoteService
	Cart     *services.CartService
	Sessions *Sessions
}

func requesterFor(c *fiber.Ctx, guest *domain.GuestInfo) domain.Requester {
	if u := currentUser(c); u != nil {
		return domain.Requester{UserID: u.ID}
	}
	return domain.Requester{Guest: guest}
}

// POST /devis
func (h *QuoteHandler) Submit(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	r := requesterFor(c, &domain.GuestInfo{
		Name:  c.FormValue("name"),
		Email: c.FormValue("email"),
		Phone: c.FormValue("phone"),
	})
	q, err := h.Quotes.Submit(c.UserContext(), sid, nil, r)
	if err != nil {
		// the cart is untouched; show it again with the problem
		cv, _ := h.Cart.View(c.UserContext(), sid)
		msg := labels[Lang(c)]["Retry"]
		if ve, ok := domain.IsValidation(err); ok {
			log.Security(c, "validation.fail", map[string]any{"field": ve.Field})
			msg = ve.Field + ": " + ve.Message
		} else if statusFor(err) == fiber.StatusConflict {
			msg = labels[Lang(c)]["Unavailable"]
		} else {
			log.Error(c, "quote.submit", err, nil)
		}
		c.Status(statusFor(err))
		return render(c, "cart", fiber.Map{
			"Cart": cv, "Units": cv.TotalQuantity(), "Err": msg, "Guest": r.Guest != nil,
			"Form": r.Guest,
		})
	}
	log.Audit(c, "quote.submit", map[string]any{"quote": q.ID, "lines": len(q.Items)})
	return render(c, "quote_done", fiber.Map{"Quote": q})
}

// POST /api/v1/devis
func (h *QuoteHandler) APISubmit(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	var body struct {
		Items     []domain.QuoteLine `json:"items"`
		GuestInfo *domain.GuestInfo  `json:"guestInfo"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	q, err := h.Quotes.Submit(c.UserContext(), sid, body.Items, requesterFor(c, body.GuestInfo))
	if err != nil {
		return writeError(c, err)
	}
	log.Audit(c, "quote.submit", map[string]any{"quote": q.ID, "lines": len(q.Items)})
	return c.Status(fiber.StatusCreated).JSON(q)
}

// GET /api/v1/devis
func (h *QuoteHandler) APIMine(c *fiber.Ctx) error {
	u := currentUser(c)
	list, err := h.Quotes.ListForUser(c.UserContext(), u.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"quotes": list})
}
