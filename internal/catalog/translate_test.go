package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"medicatalog/internal/catalog"
	"medicatalog/internal/domain"
)

func translatedProduct() domain.Product {
	return domain.Product{
		ID:          "p1",
		Name:        "Concentrateur d'oxygène 5L",
		Description: "Concentrateur fixe",
		Features:    domain.NewFeatureList("Débit 0.5-5 L/min", "Alarme"),
		Translations: []domain.ProductTranslation{
			{Language: domain.LangEN, Name: "Oxygen concentrator 5L", Description: "", Features: domain.NewFeatureList()},
			{Language: domain.LangAR, Name: "", Description: "مكثف أكسجين ثابت", Features: domain.NewFeatureList("تدفق 5 لتر")},
		},
	}
}

func TestResolveFallsBackWithoutTranslation(t *testing.T) {
	p := translatedProduct()
	p.Translations = nil
	for _, lang := range []string{"EN", "FR", "AR", "de", ""} {
		v := catalog.Resolve(p, lang)
		assert.Equal(t, p.Name, v.Name, lang)
		assert.Equal(t, p.Description, v.Description, lang)
		assert.Equal(t, p.Features.Strings(), v.Features.Strings(), lang)
		assert.Empty(t, v.Translated, lang)
	}
}

func TestResolvePerFieldFallback(t *testing.T) {
	p := translatedProduct()

	en := catalog.Resolve(p, "en")
	assert.Equal(t, domain.LangEN, en.Language)
	assert.Equal(t, "Oxygen concentrator 5L", en.Name)
	assert.Equal(t, "Concentrateur fixe", en.Description, "blank description falls back")
	assert.Equal(t, []string{"Débit 0.5-5 L/min", "Alarme"}, en.Features.Strings(), "empty features fall back")
	assert.Equal(t, []string{"name"}, en.Translated)

	ar := catalog.Resolve(p, "Ar")
	assert.Equal(t, p.Name, ar.Name)
	assert.Equal(t, "مكثف أكسجين ثابت", ar.Description)
	assert.Equal(t, []string{"تدفق 5 لتر"}, ar.Features.Strings())
}

func TestResolveUnknownLanguageIsSilent(t *testing.T) {
	v := catalog.Resolve(translatedProduct(), "ES")
	assert.Equal(t, domain.BaseLanguage, v.Language)
	assert.Equal(t, "Concentrateur d'oxygène 5L", v.Name)
}

func TestLocalizeKeepsOtherFields(t *testing.T) {
	p := translatedProduct()
	p.Brand = "Yuwell"
	got := catalog.Localize(p, "EN")
	assert.Equal(t, "Oxygen concentrator 5L", got.Name)
	assert.Equal(t, "Yuwell", got.Brand)
	assert.Equal(t, "Concentrateur d'oxygène 5L", p.Name, "input untouched")
}

func TestFieldNames(t *testing.T) {
	names := []string{}
	for _, f := range catalog.TranslatableFields {
		names = append(names, f.String())
	}
	assert.Equal(t, []string{"name", "description", "features"}, names)
}
