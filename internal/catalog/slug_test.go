package catalog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicatalog/internal/catalog"
	"medicatalog/internal/domain"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"YH-680":                      "yh-680",
		"AirFit F20":                  "airfit-f20",
		"  Nébuliseur à piston  ":     "nebuliseur-a-piston",
		"Concentrateur d'oxygène 5L":  "concentrateur-d-oxygene-5l",
		"Lit médicalisé / électrique": "lit-medicalise-electrique",
		"Cœur & Poumons":              "coeur-poumons",
		"CPAP/PPC   Auto!!":           "cpap-ppc-auto",
		"مكثف":                        "produit",
	}
	for in, want := range cases {
		assert.Equal(t, want, catalog.Slugify(in), in)
		assert.Equal(t, catalog.Slugify(in), catalog.Slugify(in), "deterministic")
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "3f2a9c1d", catalog.ShortID("3F2A9C1D-0000-4000-8000-000000000001"))
	assert.Equal(t, "ab", catalog.ShortID("ab"))
}

func TestSlugRoundTrip(t *testing.T) {
	products := sampleCatalog()
	idx := catalog.NewSlugIndex(products)
	for _, p := range products {
		m, err := idx.Resolve(catalog.Slugify(p.Name))
		require.NoError(t, err, p.Name)
		assert.Equal(t, p.ID, m.ID)
		assert.Equal(t, 1, m.Candidates)

		canon, ok := idx.Canonical(p.ID)
		require.True(t, ok)
		assert.Equal(t, catalog.Slugify(p.Name), canon)
	}
}

func TestSlugCollisionPolicy(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older := domain.Product{ID: "bbbbbbbb-0000-4000-8000-000000000002", Name: "Masque Nasal", CreatedAt: t0}
	newer := domain.Product{ID: "aaaaaaaa-0000-4000-8000-000000000001", Name: "Masque nasal!", CreatedAt: t0.Add(time.Minute)}
	idx := catalog.NewSlugIndex([]domain.Product{newer, older})

	m, err := idx.Resolve("masque-nasal")
	require.NoError(t, err)
	assert.Equal(t, older.ID, m.ID, "oldest wins on a shared plain slug")
	assert.Equal(t, 2, m.Candidates)

	canon, _ := idx.Canonical(newer.ID)
	assert.Equal(t, "masque-nasal-aaaaaaaa", canon)
	m, err = idx.Resolve(canon)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, m.ID)
	assert.Equal(t, 1, m.Candidates)
}

func TestSlugResolveNotFound(t *testing.T) {
	idx := catalog.NewSlugIndex(sampleCatalog())
	for _, s := range []string{"", "unknown-product", "yh-680-deadbeef"} {
		_, err := idx.Resolve(s)
		assert.ErrorIs(t, err, domain.ErrNotFound, s)
	}
}
