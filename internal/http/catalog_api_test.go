package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicatalog/internal/repos"
)

type listResp struct {
	Items []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Brand     string `json:"brand"`
		Slug      string `json:"slug"`
		Orderable bool   `json:"orderable"`
	} `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Pages    int `json:"pages"`
	Facets   struct {
		Categories []string `json:"categories"`
		Brands     []string `json:"brands"`
	} `json:"facets"`
}

func TestAPIListSearchFacetsAndPaging(t *testing.T) {
	app, _ := newTestApp(t)
	cl := newClient(t, app)

	var out listResp
	resp := cl.get("/api/v1/products?q=yuwell")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &out)
	assert.Equal(t, 6, out.Total)
	for _, it := range out.Items {
		assert.Equal(t, "YUWELL", it.Brand)
	}
	assert.Equal(t, []string{"YUWELL"}, out.Facets.Brands)
	assert.Equal(t, []string{"AEROSOLTHERAPIE", "CPAP/PPC", "MASQUE", "OXYGENOTHERAPIE"}, out.Facets.Categories)

	out = listResp{}
	decode(t, cl.get("/api/v1/products?category=MASQUE&pageSize=2&page=2"), &out)
	assert.Equal(t, 4, out.Total)
	assert.Equal(t, 2, out.Pages)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, []string{"MASQUE"}, out.Facets.Categories)

	resp = cl.get("/api/v1/products?brand=%3Cscript%3E")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIListAcceptsPunctuatedQueries(t *testing.T) {
	app, _ := newTestApp(t)
	cl := newClient(t, app)

	for _, q := range []string{"d’oxygène", "YH-680, YUWELL", "Filtre (YH)", "8F-5?"} {
		resp := cl.get("/api/v1/products?q=" + url.QueryEscape(q))
		assert.Equal(t, http.StatusOK, resp.StatusCode, q)
	}

	var out listResp
	decode(t, cl.get("/api/v1/products?q="+url.QueryEscape("d'oxygène 8F-5")), &out)
	require.Equal(t, 1, out.Total)
	assert.Equal(t, repos.SeedOxygen8F5, out.Items[0].ID)

	resp := cl.get("/api/v1/products?q=" + url.QueryEscape(strings.Repeat("x", 51)))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIListLocalizesByLanguage(t *testing.T) {
	app, _ := newTestApp(t)
	cl := newClient(t, app)

	var out listResp
	decode(t, cl.get("/api/v1/products?category=CPAP/PPC&lang=EN"), &out)
	names := map[string]string{}
	for _, it := range out.Items {
		names[it.ID] = it.Name
	}
	assert.Equal(t, "YH-680 Auto CPAP", names[repos.SeedYH680])
	assert.Equal(t, "YH-560", names[repos.SeedYH560], "no translation keeps the base name")

	// the choice sticks through the cookie
	out = listResp{}
	decode(t, cl.get("/api/v1/products?category=CPAP/PPC"), &out)
	for _, it := range out.Items {
		if it.ID == repos.SeedYH680 {
			assert.Equal(t, "YH-680 Auto CPAP", it.Name)
		}
	}
}

func TestAPIProductLookups(t *testing.T) {
	app, _ := newTestApp(t)
	cl := newClient(t, app)

	var p struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Slug      string `json:"slug"`
		Orderable bool   `json:"orderable"`
		Media     []struct {
			URL   string `json:"url"`
			Order int    `json:"order"`
		} `json:"media"`
	}
	resp := cl.get("/api/v1/products/" + repos.SeedYH680)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &p)
	assert.Equal(t, "yh-680", p.Slug)
	assert.True(t, p.Orderable)
	require.Len(t, p.Media, 3)
	assert.Equal(t, 0, p.Media[0].Order)

	resp = cl.get("/api/v1/products/by-slug/yh-680")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &p)
	assert.Equal(t, repos.SeedYH680, p.ID)

	// a shared plain slug goes to the oldest product
	resp = cl.get("/api/v1/products/by-slug/masque-nasal")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &p)
	assert.Equal(t, repos.SeedMaskBMC, p.ID)
	assert.Equal(t, "masque-nasal-7f8a9b0c", p.Slug)

	resp = cl.get("/api/v1/products/by-slug/masque-nasal-8a9b0c1d")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &p)
	assert.Equal(t, repos.SeedMaskYuwell, p.ID)

	resp = cl.get("/api/v1/products/by-shortid/0b6c1f5e")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &p)
	assert.Equal(t, repos.SeedYH680, p.ID)

	assert.Equal(t, http.StatusUnprocessableEntity, cl.get("/api/v1/products/by-shortid/XYZ!").StatusCode)
	assert.Equal(t, http.StatusNotFound, cl.get("/api/v1/products/by-slug/unknown-product").StatusCode)
	assert.Equal(t, http.StatusNotFound, cl.get("/api/v1/products/does-not-exist").StatusCode)
}

func TestAPILocalizedFallsBackPerField(t *testing.T) {
	app, _ := newTestApp(t)
	cl := newClient(t, app)

	var v struct {
		Language    string   `json:"language"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Translated  []string `json:"translated"`
	}
	decode(t, cl.get("/api/v1/products/"+repos.SeedYH680+"/localized?lang=AR"), &v)
	assert.Equal(t, "AR", v.Language)
	assert.Equal(t, "YH-680", v.Name, "no Arabic name, base name kept")
	assert.Equal(t, "جهاز ضغط هوائي تلقائي هادئ مع مرطب مدمج.", v.Description)
	assert.Equal(t, []string{"description"}, v.Translated)

	v.Translated = nil
	decode(t, cl.get("/api/v1/products/"+repos.SeedYH680+"/localized?lang=ES"), &v)
	assert.Equal(t, "FR", v.Language)
	assert.Empty(t, v.Translated)
}

func TestAPIFiltersAndCategoryTypes(t *testing.T) {
	app, _ := newTestApp(t)
	cl := newClient(t, app)

	var f struct {
		Categories    []string `json:"categories"`
		Brands        []string `json:"brands"`
		SubCategories []string `json:"subcategories"`
	}
	decode(t, cl.get("/api/v1/filters"), &f)
	assert.Equal(t, []string{"AEROSOLTHERAPIE", "CPAP/PPC", "MASQUE", "OXYGENOTHERAPIE"}, f.Categories)
	assert.Equal(t, []string{"BMC", "ResMed", "YUWELL"}, f.Brands)
	assert.Equal(t, []string{"FILTRE"}, f.SubCategories)

	var rel []struct {
		Category string   `json:"category"`
		Types    []string `json:"types"`
	}
	decode(t, cl.get("/api/v1/category-types"), &rel)
	require.Len(t, rel, 4)
	assert.Equal(t, "CPAP/PPC", rel[1].Category)
	assert.Equal(t, []string{"Accessoire", "Auto-pilotée", "Fixe"}, rel[1].Types)
}

func TestAPIAvailability(t *testing.T) {
	app, _ := newTestApp(t)
	cl := newClient(t, app)

	var out struct {
		Items []struct {
			ProductID string `json:"productId"`
			Stock     string `json:"stock"`
			Orderable bool   `json:"orderable"`
		} `json:"items"`
	}
	resp := cl.get("/api/v1/availability?ids=" + repos.SeedFilterYH + "," + repos.SeedYH560 + ",nope")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &out)
	require.Len(t, out.Items, 3)
	assert.Equal(t, "COMING_SOON", out.Items[0].Stock)
	assert.False(t, out.Items[0].Orderable)
	assert.Equal(t, "LOW_STOCK", out.Items[1].Stock)
	assert.True(t, out.Items[1].Orderable)
	assert.Equal(t, "OUT_OF_STOCK", out.Items[2].Stock)

	assert.Equal(t, http.StatusBadRequest, cl.get("/api/v1/availability").StatusCode)
}
