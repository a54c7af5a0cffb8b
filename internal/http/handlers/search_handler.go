package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"medicatalog/internal/catalog"
	"medicatalog/internal/log"
	"medicatalog/internal/services"
	"medicatalog/internal/validate"
)

const suggestLimit = 10

type SearchHandler struct {
	Catalog *services.CatalogService
	Seq     *catalog.SeqTracker
}

// GET /search
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	if strings.TrimSpace(rawQ) == "" {
		// Initial page load: show empty search without errors
		return render(c, "search", fiber.Map{"Q": "", "Products": []productView{}, "Count": 0})
	}
	q, ok := validate.Q(rawQ)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
		c.Status(fiber.StatusBadRequest)
		return render(c, "search", fiber.Map{"Q": "", "Products": []productView{}, "Count": 0, "Err": "q"})
	}
	res, err := h.Catalog.Query(c.UserContext(), catalog.Query{Search: q}, 1, services.MaxPageSize)
	if err != nil {
		log.Error(c, "search.error", err, nil)
		c.Status(statusFor(err))
		return render(c, "search", fiber.Map{"Q": q, "Products": []productView{}, "Count": 0, "Retry": true})
	}
	return render(c, "search", fiber.Map{
		"Q": q, "Products": viewsOf(res, Lang(c)), "Count": res.Total,
	})
}

// GET /api/v1/search?q=&seq=
// Answers carry the caller's seq back; an answer for a query older than one
// already answered for the same session is flagged stale.
func (h *SearchHandler) APISearch(c *fiber.Ctx) error {
	var seq uint64
	if raw := c.Query("seq"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "seq", "seq must be a positive integer")
		}
		seq = n
	}
	rawQ := c.Query("q")
	if strings.TrimSpace(rawQ) == "" {
		return c.JSON(fiber.Map{"q": "", "seq": seq, "stale": false, "items": []productView{}, "total": 0})
	}
	q, ok := validate.Q(rawQ)
	if !ok {
		return badRequest(c, "q", "enter a valid keyword")
	}
	res, err := h.Catalog.Query(c.UserContext(), catalog.Query{Search: q}, 1, suggestLimit)
	if err != nil {
		return writeError(c, err)
	}
	// callers without a session or login are never marked stale
	fresh := true
	if key := seqKey(c); key != "" {
		fresh = h.Seq.Observe(key, seq)
	}
	return c.JSON(fiber.Map{
		"q":     q,
		"seq":   seq,
		"stale": !fresh,
		"items": viewsOf(res, Lang(c)),
		"total": res.Total,
	})
}

func seqKey(c *fiber.Ctx) string {
	if sid := c.Cookies("sid"); sid != "" {
		return "sid:" + sid
	}
	if u := currentUser(c); u != nil {
		return "user:" + u.ID
	}
	return ""
}
