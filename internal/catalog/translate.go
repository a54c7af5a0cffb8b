package catalog

import (
	"strings"

	"medicatalog/internal/domain"
)

// Field identifies a translatable product field.
type Field int

const (
	FieldName Field = iota
	FieldDescription
	FieldFeatures
)

// TranslatableFields is the closed set of fields a translation may override.
var TranslatableFields = [...]Field{FieldName, FieldDescription, FieldFeatures}

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldDescription:
		return "description"
	case FieldFeatures:
		return "features"
	}
	return "unknown"
}

// LocalizedView is a product's translatable fields in one language.
type LocalizedView struct {
	ID          string            `json:"id"`
	Language    domain.Language   `json:"language"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Features    domain.FeatureSet `json:"features"`
	Translated  []string          `json:"translated"`
}

// Resolve picks each translatable field from the translation matching code
// when it is defined there, otherwise from the base product. Unknown codes
// resolve to the base fields.
func Resolve(p domain.Product, code string) LocalizedView {
	view := LocalizedView{
		ID:          p.ID,
		Language:    domain.BaseLanguage,
		Name:        p.Name,
		Description: p.Description,
		Features:    p.Features,
		Translated:  []string{},
	}
	lang, err := domain.ParseLanguage(code)
	if err != nil {
		return view
	}
	view.Language = lang
	tr, ok := findTranslation(p, lang)
	if !ok {
		return view
	}
	for _, f := range TranslatableFields {
		if !defined(tr, f) {
			continue
		}
		switch f {
		case FieldName:
			view.Name = tr.Name
		case FieldDescription:
			view.Description = tr.Description
		case FieldFeatures:
			view.Features = tr.Features
		}
		view.Translated = append(view.Translated, f.String())
	}
	return view
}

// Localize returns a copy of p with the translatable fields resolved.
func Localize(p domain.Product, code string) domain.Product {
	v := Resolve(p, code)
	p.Name = v.Name
	p.Description = v.Description
	p.Features = v.Features
	return p
}

func findTranslation(p domain.Product, lang domain.Language) (domain.ProductTranslation, bool) {
	for _, t := range p.Translations {
		if strings.EqualFold(string(t.Language), string(lang)) {
			return t, true
		}
	}
	return domain.ProductTranslation{}, false
}

// defined treats blank strings and empty feature sets as absent.
func defined(t domain.ProductTranslation, f Field) bool {
	switch f {
	case FieldName:
		return strings.TrimSpace(t.Name) != ""
	case FieldDescription:
		return strings.TrimSpace(t.Description) != ""
	case FieldFeatures:
		return !t.Features.IsEmpty()
	}
	return false
}
