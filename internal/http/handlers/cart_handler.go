package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"medicatalog/internal/domain"
	"medicatalog/internal/log"
	"medicatalog/internal/services"
	"medicatalog/internal/validate"
)

type CartHandler struct {
	Cart     *services.CartService
	Sessions *Sessions
}

func (h *CartHandler) page(c *fiber.Ctx, cv domain.Cart, errMsg string) error {
	return render(c, "cart", fiber.Map{
		"Cart":  cv,
		"Units": cv.TotalQuantity(),
		"Err":   errMsg,
		"Guest": currentUser(c) == nil,
	})
}

// GET /panier
func (h *CartHandler) View(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	cv, err := h.Cart.View(c.UserContext(), sid)
	if err != nil {
		log.Error(c, "cart.view", err, nil)
		c.Status(statusFor(err))
		return h.page(c, domain.Cart{}, labels[Lang(c)]["Retry"])
	}
	return h.page(c, cv, "")
}

// formFailure re-renders the cart with the failure; the stored cart is
// unchanged.
func (h *CartHandler) formFailure(c *fiber.Ctx, cv domain.Cart, err error) error {
	msg := labels[Lang(c)]["Retry"]
	switch {
	case errors.Is(err, domain.ErrNotOrderable):
		msg = labels[Lang(c)]["Unavailable"]
	case errors.Is(err, domain.ErrNotFound):
		msg = labels[Lang(c)]["NotFound"]
	default:
		if ve, ok := domain.IsValidation(err); ok {
			msg = ve.Message
		} else {
			log.Error(c, "cart.update", err, nil)
		}
	}
	c.Status(statusFor(err))
	return h.page(c, cv, msg)
}

// POST /panier
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty := validate.Qty(c.FormValue("qty"))
	cv, err := h.Cart.Add(c.UserContext(), sid, productID, qty)
	if err != nil {
		return h.formFailure(c, cv, err)
	}
	log.Info(c, "cart.add", map[string]any{"product": productID, "qty": qty})
	return c.Redirect("/panier")
}

// POST /panier/quantite
func (h *CartHandler) Update(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty, ok := validate.SignedQty(c.FormValue("qty"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "qty"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid quantity")
	}
	cv, err := h.Cart.Update(c.UserContext(), sid, productID, qty)
	if err != nil {
		return h.formFailure(c, cv, err)
	}
	return c.Redirect("/panier")
}

// POST /panier/retirer
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	cv, err := h.Cart.Remove(c.UserContext(), sid, productID)
	if err != nil {
		return h.formFailure(c, cv, err)
	}
	return c.Redirect("/panier")
}

// ---------- JSON API ----------

type cartLineBody struct {
	ID       string `json:"id"`
	Quantity *int   `json:"quantity"`
}

func cartJSON(c *fiber.Ctx, cv domain.Cart) error {
	if cv.Items == nil {
		cv.Items = []domain.CartItem{}
	}
	return c.JSON(fiber.Map{"items": cv.Items, "units": cv.TotalQuantity()})
}

// GET /api/v1/cart
func (h *CartHandler) APIView(c *fiber.Ctx) error {
	cv, err := h.Cart.View(c.UserContext(), h.Sessions.ensureSID(c))
	if err != nil {
		return writeError(c, err)
	}
	return cartJSON(c, cv)
}

// POST /api/v1/cart
func (h *CartHandler) APIAdd(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	var body cartLineBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	id, ok := validate.ID(body.ID)
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	qty := 1
	if body.Quantity != nil {
		qty = *body.Quantity
	}
	cv, err := h.Cart.Add(c.UserContext(), sid, id, qty)
	if err != nil {
		return writeError(c, err)
	}
	log.Info(c, "cart.add", map[string]any{"product": id, "qty": qty})
	return cartJSON(c, cv)
}

// PATCH /api/v1/cart/:id
func (h *CartHandler) APIUpdate(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	var body cartLineBody
	if err := c.BodyParser(&body); err != nil || body.Quantity == nil {
		return badRequest(c, "quantity", "quantity is required")
	}
	cv, err := h.Cart.Update(c.UserContext(), sid, id, *body.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return cartJSON(c, cv)
}

// DELETE /api/v1/cart/:id
func (h *CartHandler) APIRemove(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id", "invalid product id")
	}
	cv, err := h.Cart.Remove(c.UserContext(), h.Sessions.ensureSID(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return cartJSON(c, cv)
}

// DELETE /api/v1/cart
func (h *CartHandler) APIClear(c *fiber.Ctx) error {
	if err := h.Cart.Clear(c.UserContext(), h.Sessions.ensureSID(c)); err != nil {
		return writeError(c, err)
	}
	return cartJSON(c, domain.Cart{})
}

// POST /api/v1/cart/merge
func (h *CartHandler) APIMerge(c *fiber.Ctx) error {
	sid := h.Sessions.ensureSID(c)
	var body struct {
		Items []domain.QuoteLine `json:"items"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "body", "invalid JSON body")
	}
	cv, skipped, err := h.Cart.Merge(c.UserContext(), sid, body.Items)
	if err != nil {
		return writeError(c, err)
	}
	if cv.Items == nil {
		cv.Items = []domain.CartItem{}
	}
	return c.JSON(fiber.Map{"items": cv.Items, "units": cv.TotalQuantity(), "skipped": skipped})
}
