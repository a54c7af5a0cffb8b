package main

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"medicatalog/internal/auth"
	"medicatalog/internal/cache"
	"medicatalog/internal/config"
	"medicatalog/internal/domain"
	"medicatalog/internal/http/handlers"
	applog "medicatalog/internal/log"
	"medicatalog/internal/repos"
	"medicatalog/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	store := cache.Open(ctx, cfg.RedisURL)
	cancel()

	defaultLang, err := domain.ParseLanguage(cfg.DefaultLang)
	if err != nil {
		log.Printf("[config] DEFAULT_LANG %q unknown, using %s", cfg.DefaultLang, domain.BaseLanguage)
		defaultLang = domain.BaseLanguage
	}

	// Auth wiring
	tokens, err := auth.NewTokens(cfg.JWTSecret)
	if err != nil {
		log.Fatal(err)
	}
	authSvc := &services.AuthService{Users: repos.NewUserRepo(db), Tokens: tokens}

	// Templates & app
	engine := html.New(cfg.TemplatesDir, ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			applog.Error(c, "server.error", err, map[string]any{"status": code})
			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(code).JSON(fiber.Map{"error": "request failed"})
			}
			// Avoid leaking internals; best-effort render
			if rerr := c.Status(code).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(code).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(handlers.Language(defaultLang, cfg.CookieSecure))
	app.Use(handlers.Identify(authSvc))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		// JSON clients authenticate with bearer tokens; forms carry the token
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	app.Static("/static", "./web/static")

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, store, authSvc)

	// Public pages
	app.Get("/", deps.CategoryHandler.Home)
	app.Get("/produits", deps.ProductHandler.List)
	app.Get("/produit/:slug", deps.ProductHandler.Detail)
	app.Get("/search", limiter.New(limiter.Config{Max: 30, Expiration: time.Minute}), deps.SearchHandler.Search)

	// Cart & quotes
	app.Get("/panier", deps.CartHandler.View)
	app.Post("/panier", deps.CartHandler.Add)
	app.Post("/panier/quantite", deps.CartHandler.Update)
	app.Post("/panier/retirer", deps.CartHandler.Remove)
	app.Post("/devis", deps.QuoteHandler.Submit)

	// Auth routes (login throttled)
	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, retry later"})
			}
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	})
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", loginLimiter, deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)

	// API
	api := app.Group("/api/v1", cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
	}))
	api.Get("/products", deps.ProductHandler.APIList)
	api.Get("/products/by-slug/:slug", deps.ProductHandler.APIBySlug)
	api.Get("/products/by-shortid/:shortId", deps.ProductHandler.APIByShortID)
	api.Get("/products/:id", deps.ProductHandler.APIGet)
	api.Get("/products/:id/localized", deps.ProductHandler.APILocalized)
	api.Get("/products/:id/reviews", deps.ProductHandler.APIReviews)
	api.Post("/products/:id/reviews", limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Hour,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.review.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry later"})
		},
	}), deps.ProductHandler.APIAddReview)
	api.Get("/filters", deps.ProductHandler.Filters)
	api.Get("/category-types", deps.ProductHandler.CategoryTypes)
	api.Get("/search", limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.search.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), deps.SearchHandler.APISearch)
	api.Get("/availability", limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), deps.InventoryHandler.Check)

	api.Get("/cart", deps.CartHandler.APIView)
	api.Post("/cart", deps.CartHandler.APIAdd)
	api.Post("/cart/merge", deps.CartHandler.APIMerge)
	api.Patch("/cart/:id", deps.CartHandler.APIUpdate)
	api.Delete("/cart/:id", deps.CartHandler.APIRemove)
	api.Delete("/cart", deps.CartHandler.APIClear)

	api.Post("/devis", deps.QuoteHandler.APISubmit)
	api.Get("/devis", handlers.RequireUser(), deps.QuoteHandler.APIMine)
	api.Post("/auth/login", loginLimiter, deps.AuthHandler.APILogin)
	api.Post("/auth/register", loginLimiter, deps.AuthHandler.APIRegister)

	// Back-office
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

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
