package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicatalog/internal/catalog"
	"medicatalog/internal/domain"
	"medicatalog/internal/repos"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSeededCatalogRoundTrips(t *testing.T) {
	ctx := context.Background()
	r := repos.NewProductRepo(openTestDB(t))

	all, err := r.List(ctx, catalog.Query{})
	require.NoError(t, err)
	require.Len(t, all, len(repos.SeedProducts()))
	assert.Equal(t, repos.SeedMaskYuwell, all[0].ID, "newest first")

	p, err := r.Get(ctx, repos.SeedYH680)
	require.NoError(t, err)
	assert.Equal(t, "YH-680", p.Name)
	assert.Equal(t, domain.InStock, p.Stock)
	assert.Equal(t, []string{"Pression 4-20 cmH2O", "Écran LCD", "Humidificateur chauffant", "Carte SD"}, p.Features.List())
	require.Len(t, p.Media, 3)
	assert.Equal(t, "/media/cpap/yh-680/main.jpg", p.Media[0].URL)
	assert.Equal(t, domain.MediaVideo, p.Media[2].Type)
	assert.Equal(t, "YH-680", p.Media[1].Alt, "missing alt defaults to the name")
	require.Len(t, p.Translations, 2)
	assert.Equal(t, domain.LangAR, p.Translations[0].Language)

	f20, err := r.Get(ctx, repos.SeedAirFitF20)
	require.NoError(t, err)
	assert.Equal(t, domain.FeatureMap, f20.Features.Kind())
	assert.Equal(t, "Tailles", f20.Features.Pairs()[0].Key)
}

func TestGetUnknownIsNotFound(t *testing.T) {
	_, err := repos.NewProductRepo(openTestDB(t)).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListStructuralFilter(t *testing.T) {
	r := repos.NewProductRepo(openTestDB(t))
	got, err := r.List(context.Background(), catalog.Query{Category: "MASQUE", Brand: "ResMed"})
	require.NoError(t, err)
	ids := []string{}
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{repos.SeedAirFitN20, repos.SeedAirFitF20}, ids)
}

func TestByShortID(t *testing.T) {
	r := repos.NewProductRepo(openTestDB(t))
	got, err := r.ByShortID(context.Background(), catalog.ShortID(repos.SeedOxygen8F5))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, repos.SeedOxygen8F5, got[0].ID)
}

func TestProductWrites(t *testing.T) {
	ctx := context.Background()
	r := repos.NewProductRepo(openTestDB(t))
	p := domain.Product{
		ID: "9b0c1d2e-3f4a-4b5c-8d7e-8f9a0b1c2d10", Name: "Lit médicalisé", Brand: "Invacare",
		Type: "Électrique", Category: "LIT", Stock: domain.PreOrder,
		Features: domain.NewFeatureList("3 fonctions"),
		Media:    []domain.Media{{URL: "/a.jpg"}, {URL: "/b.jpg"}},
	}
	require.NoError(t, r.Create(ctx, p))

	p.Description = "Lit trois fonctions"
	p.Media = []domain.Media{{URL: "/b.jpg"}}
	require.NoError(t, r.Update(ctx, p))
	require.NoError(t, r.UpsertTranslation(ctx, p.ID, domain.ProductTranslation{Language: domain.LangEN, Name: "Hospital bed"}))
	require.NoError(t, r.UpsertTranslation(ctx, p.ID, domain.ProductTranslation{Language: domain.LangEN, Name: "Electric hospital bed"}))

	got, err := r.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lit trois fonctions", got.Description)
	require.Len(t, got.Media, 1)
	assert.Equal(t, 0, got.Media[0].Order)
	require.Len(t, got.Translations, 1)
	assert.Equal(t, "Electric hospital bed", got.Translations[0].Name)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	require.NoError(t, r.Delete(ctx, p.ID))
	assert.ErrorIs(t, r.Delete(ctx, p.ID), domain.ErrNotFound)
	assert.ErrorIs(t, r.Update(ctx, p), domain.ErrNotFound)
	assert.ErrorIs(t, r.UpsertTranslation(ctx, p.ID, domain.ProductTranslation{Language: domain.LangAR, Name: "x"}), domain.ErrNotFound)
}

func TestCartSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	r := repos.NewCartRepo(openTestDB(t))

	empty, err := r.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	c := domain.Cart{Items: []domain.CartItem{
		{ID: repos.SeedAirFitF20, Name: "AirFit F20", Brand: "ResMed", Quantity: 2},
		{ID: repos.SeedYH680, Name: "YH-680", Brand: "YUWELL", Image: "/x.jpg", Quantity: 1},
	}}
	require.NoError(t, r.Save(ctx, "sid-1", c))
	got, err := r.Load(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, c.Items, got.Items)

	c.Items = c.Items[1:]
	require.NoError(t, r.Save(ctx, "sid-1", c))
	got, _ = r.Load(ctx, "sid-1")
	assert.Equal(t, c.Items, got.Items)

	require.NoError(t, r.Clear(ctx, "sid-1"))
	got, _ = r.Load(ctx, "sid-1")
	assert.Empty(t, got.Items)
}

func TestQuoteCreateAndList(t *testing.T) {
	ctx := context.Background()
	r := repos.NewQuoteRepo(openTestDB(t))
	q := domain.Quote{
		ID: "q-1", Status: domain.QuoteRequested,
		GuestName: "Samira", GuestEmail: "samira@example.dz", GuestPhone: "0555123456",
		Items: []domain.QuoteItem{
			{ProductID: repos.SeedYH680, Name: "YH-680", Brand: "YUWELL", Quantity: 2},
			{ProductID: repos.SeedAirFitF20, Name: "AirFit F20", Brand: "ResMed", Quantity: 1},
		},
		CreatedAt: time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, r.Create(ctx, "sid-1", q))

	got, err := r.Get(ctx, "q-1")
	require.NoError(t, err)
	assert.Equal(t, q.Items, got.Items)
	assert.True(t, q.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, domain.QuoteRequested, got.Status)

	list, err := r.ListLatest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Samira", list[0].Contact)
	assert.Equal(t, 2, list[0].Lines)
	assert.Equal(t, 3, list[0].Units)

	require.NoError(t, r.UpdateStatus(ctx, "q-1", domain.QuoteHandled))
	assert.ErrorIs(t, r.UpdateStatus(ctx, "q-2", domain.QuoteHandled), domain.ErrNotFound)
	_, err = r.Get(ctx, "q-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionsAndStock(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := repos.NewUserRepo(db)

	u, err := users.ByEmail(ctx, "ADMIN@medicatalog.test")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)

	require.NoError(t, users.BindSession(ctx, "sid-9", u.ID))
	su, err := users.SessionUser(ctx, "sid-9")
	require.NoError(t, err)
	assert.Equal(t, u.ID, su.ID)
	require.NoError(t, users.UnbindSession(ctx, "sid-9"))
	_, err = users.SessionUser(ctx, "sid-9")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	inv := repos.NewInventoryRepo(db)
	require.NoError(t, inv.SetStatus(ctx, repos.SeedNebulizer, domain.LowStock))
	st, err := inv.Statuses(ctx, []string{repos.SeedNebulizer, "ghost"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.StockStatus{repos.SeedNebulizer: domain.LowStock}, st)
	assert.ErrorIs(t, inv.SetStatus(ctx, "ghost", domain.InStock), domain.ErrNotFound)
}

func TestReviewsNewestFirstAndCascade(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	reviews := repos.NewReviewRepo(db)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, reviews.Add(ctx, domain.Review{
		ID: "r1", ProductID: repos.SeedYH680, Author: "Samira", Rating: 4, Comment: "Silencieux", CreatedAt: base,
	}))
	require.NoError(t, reviews.Add(ctx, domain.Review{
		ID: "r2", ProductID: repos.SeedYH680, UserID: "u-client", Author: "Client", Rating: 5,
		Comment: "Très bien", CreatedAt: base.Add(time.Hour),
	}))

	got, err := reviews.ByProduct(ctx, repos.SeedYH680)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[0].ID)
	assert.Equal(t, "u-client", got[0].UserID)
	assert.Empty(t, got[1].UserID)
	assert.True(t, base.Equal(got[1].CreatedAt))

	assert.Error(t, reviews.Add(ctx, domain.Review{
		ID: "r3", ProductID: repos.SeedYH680, Author: "x", Rating: 6, Comment: "x", CreatedAt: base,
	}), "rating is checked by the schema")

	require.NoError(t, repos.NewProductRepo(db).Delete(ctx, repos.SeedYH680))
	got, err = reviews.ByProduct(ctx, repos.SeedYH680)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	users := repos.NewUserRepo(openTestDB(t))
	require.NoError(t, users.Create(ctx, domain.User{
		ID: "u-new", Email: "nadia@example.dz", Name: "Nadia", Hash: "$2a$10$x", Role: domain.RoleUser,
	}))
	u, err := users.ByEmail(ctx, "Nadia@Example.dz")
	require.NoError(t, err)
	assert.Equal(t, "u-new", u.ID)

	assert.Error(t, users.Create(ctx, domain.User{
		ID: "u-dup", Email: "NADIA@example.dz", Name: "Nadia", Hash: "$2a$10$x", Role: domain.RoleUser,
	}), "emails are unique regardless of case")
}
