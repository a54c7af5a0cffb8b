package handlers

import (
	"github.com/jmoiron/sqlx"

	"medicatalog/internal/cache"
	"medicatalog/internal/catalog"
	"medicatalog/internal/config"
	"medicatalog/internal/repos"
	"medicatalog/internal/services"
)

type Deps struct {
	Sessions         *Sessions
	AuthHandler      *AuthHandler
	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	SearchHandler    *SearchHandler
	CartHandler      *CartHandler
	QuoteHandler     *QuoteHandler
	AdminHandler     *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, store cache.Store, auth *services.AuthService) *Deps {
	prodRepo := repos.NewProductRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	cartRepo := repos.NewCartRepo(db)
	quoteRepo := repos.NewQuoteRepo(db)
	reviewRepo := repos.NewReviewRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo, store, cfg.FilterCacheTTL)
	invSvc := services.NewInventoryService(invRepo)
	cartSvc := services.NewCartService(cartRepo, catalogSvc)
	quoteSvc := services.NewQuoteService(cartSvc, catalogSvc, quoteRepo)
	reviewSvc := services.NewReviewService(prodRepo, reviewRepo)

	sessions := &Sessions{Secure: cfg.CookieSecure}
	return &Deps{
		Sessions:         sessions,
		AuthHandler:      &AuthHandler{Auth: auth, Sessions: sessions},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc, Reviews: reviewSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc, Seq: catalog.NewSeqTracker()},
		CartHandler:      &CartHandler{Cart: cartSvc, Sessions: sessions},
		QuoteHandler:     &QuoteHandler{Quotes: quoteSvc, Cart: cartSvc, Sessions: sessions},
		AdminHandler:     &AdminHandler{Catalog: catalogSvc, Quotes: quoteSvc, Inv: invSvc, Users: auth.Users},
	}
}
