package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"medicatalog/internal/auth"
	"medicatalog/internal/cache"
	"medicatalog/internal/config"
	"medicatalog/internal/domain"
	"medicatalog/internal/http/handlers"
	"medicatalog/internal/repos"
	"medicatalog/internal/services"
)

// newTestApp wires the real handlers the way cmd/medicatalog does, on an
// in-memory database with the demo catalog.
func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", FilterCacheTTL: time.Minute}
	db, err := repos.OpenDB(cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := auth.NewTokens("test-secret")
	require.NoError(t, err)
	authSvc := &services.AuthService{Users: repos.NewUserRepo(db), Tokens: tokens}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(handlers.Language(domain.LangFR, false))
	app.Use(handlers.Identify(authSvc))
	app.Use(csrf.New(csrf.Config{
		KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax",
		Next: func(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/api/") },
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	deps := handlers.NewDeps(db, cfg, cache.NewMemory(), authSvc)

	app.Get("/", deps.CategoryHandler.Home)
	app.Get("/produits", deps.ProductHandler.List)
	app.Get("/produit/:slug", deps.ProductHandler.Detail)
	app.Get("/search", limiter.New(limiter.Config{Max: 3, Expiration: time.Second}), deps.SearchHandler.Search)
	app.Get("/panier", deps.CartHandler.View)
	app.Post("/panier", deps.CartHandler.Add)
	app.Post("/panier/quantite", deps.CartHandler.Update)
	app.Post("/panier/retirer", deps.CartHandler.Remove)
	app.Post("/devis", deps.QuoteHandler.Submit)
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{Max: 3, Expiration: time.Minute}), deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)

	api := app.Group("/api/v1")
	api.Get("/products", deps.ProductHandler.APIList)
	api.Get("/products/by-slug/:slug", deps.ProductHandler.APIBySlug)
	api.Get("/products/by-shortid/:shortId", deps.ProductHandler.APIByShortID)
	api.Get("/products/:id", deps.ProductHandler.APIGet)
	api.Get("/products/:id/localized", deps.ProductHandler.APILocalized)
	api.Get("/products/:id/reviews", deps.ProductHandler.APIReviews)
	api.Post("/products/:id/reviews", deps.ProductHandler.APIAddReview)
	api.Get("/filters", deps.ProductHandler.Filters)
	api.Get("/category-types", deps.ProductHandler.CategoryTypes)
	api.Get("/search", deps.SearchHandler.APISearch)
	api.Get("/availability", limiter.New(limiter.Config{Max: 3, Expiration: time.Second}), deps.InventoryHandler.Check)
	api.Get("/cart", deps.CartHandler.APIView)
	api.Post("/cart", deps.CartHandler.APIAdd)
	api.Post("/cart/merge", deps.CartHandler.APIMerge)
	api.Patch("/cart/:id", deps.CartHandler.APIUpdate)
	api.Delete("/cart/:id", deps.CartHandler.APIRemove)
	api.Delete("/cart", deps.CartHandler.APIClear)
	api.Post("/devis", deps.QuoteHandler.APISubmit)
	api.Get("/devis", handlers.RequireUser(), deps.QuoteHandler.APIMine)
	api.Post("/auth/login", deps.AuthHandler.APILogin)
	api.Post("/auth/register", deps.AuthHandler.APIRegister)

	admin := api.Group("/admin", handlers.RequireStaff())
	admin.Post("/products", deps.AdminHandler.CreateProduct)
	admin.Put("/products/:id", deps.AdminHandler.UpdateProduct)
	admin.Delete("/products/:id", deps.AdminHandler.DeleteProduct)
	admin.Put("/products/:id/translations", deps.AdminHandler.UpsertTranslations)
	admin.Delete("/products/:id/media/:index", deps.AdminHandler.DeleteMedia)
	admin.Get("/quotes", deps.AdminHandler.ListQuotes)
	admin.Get("/quotes/:id", deps.AdminHandler.Quote)
	admin.Post("/quotes/:id/status", deps.AdminHandler.UpdateQuoteStatus)
	admin.Get("/inventory", deps.AdminHandler.Inventory)
	admin.Post("/inventory/:id", deps.AdminHandler.UpdateStock)
	admin.Get("/users", handlers.RequireAdmin(), deps.AdminHandler.UsersList)
	return app, db
}

// client keeps cookies between requests like a browser would.
type client struct {
	t     *testing.T
	app   *fiber.App
	jar   map[string]string
	token string
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app, jar: map[string]string{}}
}

func (cl *client) send(req *http.Request) *http.Response {
	cl.t.Helper()
	for k, v := range cl.jar {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	resp, err := cl.app.Test(req, -1)
	require.NoError(cl.t, err)
	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(cl.jar, c.Name)
			continue
		}
		cl.jar[c.Name] = c.Value
	}
	return resp
}

func (cl *client) get(path string) *http.Response {
	return cl.send(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cl *client) call(method, path string, payload any) *http.Response {
	cl.t.Helper()
	var r io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(cl.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return cl.send(req)
}

// form posts with the csrf token picked up from an earlier GET.
func (cl *client) form(path string, vals url.Values) *http.Response {
	cl.t.Helper()
	if cl.jar["csrf_"] == "" {
		cl.get("/login")
	}
	vals.Set("csrf", cl.jar["csrf_"])
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.send(req)
}

func (cl *client) login(email string) {
	cl.t.Helper()
	resp := cl.call(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": "Passw0rd!"})
	require.Equal(cl.t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
	}
	decode(cl.t, resp, &out)
	require.NotEmpty(cl.t, out.Token)
	cl.token = out.Token
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func newFormRequest(path string, vals url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
