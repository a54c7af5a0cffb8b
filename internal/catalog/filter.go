// Package catalog holds the storefront's in-memory product logic: structural
// and text filtering, facet extraction, translation fallback, slugs and media
// ordering. Everything here is pure and works on already-loaded products.
package catalog

import (
	"sort"
	"strings"

	"medicatalog/internal/domain"
)

// Query constrains a product listing. Empty fields are unconstrained.
type Query struct {
	Category    string `json:"category,omitempty"`
	Type        string `json:"type,omitempty"`
	SubCategory string `json:"subCategory,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Search      string `json:"search,omitempty"`
}

func (q Query) Normalize() Query {
	return Query{
		Category:    strings.TrimSpace(q.Category),
		Type:        strings.TrimSpace(q.Type),
		SubCategory: strings.TrimSpace(q.SubCategory),
		Brand:       strings.TrimSpace(q.Brand),
		Search:      strings.TrimSpace(q.Search),
	}
}

// Structural drops the free-text part of the query.
func (q Query) Structural() Query {
	q.Search = ""
	return q
}

func (q Query) IsZero() bool { return q.Normalize() == Query{} }

// MatchStructural compares facet fields exactly (case-sensitive).
func MatchStructural(p domain.Product, q Query) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Type != "" && p.Type != q.Type {
		return false
	}
	if q.SubCategory != "" && p.SubCategory != q.SubCategory {
		return false
	}
	if q.Brand != "" && p.Brand != q.Brand {
		return false
	}
	return true
}

// MatchText reports whether needle (already lower-cased) occurs in the
// name, description, brand, type or any feature entry.
func MatchText(p domain.Product, needle string) bool {
	if needle == "" {
		return true
	}
	for _, s := range []string{p.Name, p.Description, p.Brand, p.Type} {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	for _, s := range p.Features.Strings() {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// Filter keeps the products satisfying every non-empty dimension of q, in
// their original order.
func Filter(products []domain.Product, q Query) []domain.Product {
	q = q.Normalize()
	needle := strings.ToLower(q.Search)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !MatchStructural(p, q) {
			continue
		}
		if !MatchText(p, needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FacetSet lists the distinct refinement values present in a product set.
type FacetSet struct {
	Categories    []string `json:"categories"`
	Brands        []string `json:"brands"`
	Types         []string `json:"types"`
	SubCategories []string `json:"subcategories"`
}

// Facets collects non-empty distinct values, sorted ascending.
func Facets(products []domain.Product) FacetSet {
	cats, brands, types, subs := newValueSet(), newValueSet(), newValueSet(), newValueSet()
	for _, p := range products {
		cats.add(p.Category)
		brands.add(p.Brand)
		types.add(p.Type)
		subs.add(p.SubCategory)
	}
	return FacetSet{
		Categories:    cats.sorted(),
		Brands:        brands.sorted(),
		Types:         types.sorted(),
		SubCategories: subs.sorted(),
	}
}

// CategoryTypes is the set of types and sub-categories seen under one category.
type CategoryTypes struct {
	Category      string   `json:"category"`
	Types         []string `json:"types"`
	SubCategories []string `json:"subcategories"`
}

func Relations(products []domain.Product) []CategoryTypes {
	byCat := map[string]*[2]valueSet{}
	for _, p := range products {
		if strings.TrimSpace(p.Category) == "" {
			continue
		}
		sets, ok := byCat[p.Category]
		if !ok {
			sets = &[2]valueSet{newValueSet(), newValueSet()}
			byCat[p.Category] = sets
		}
		sets[0].add(p.Type)
		sets[1].add(p.SubCategory)
	}
	out := make([]CategoryTypes, 0, len(byCat))
	for cat, sets := range byCat {
		out = append(out, CategoryTypes{Category: cat, Types: sets[0].sorted(), SubCategories: sets[1].sorted()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

type valueSet map[string]struct{}

func newValueSet() valueSet { return valueSet{} }

func (s valueSet) add(v string) {
	if strings.TrimSpace(v) == "" {
		return
	}
	s[v] = struct{}{}
}

func (s valueSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
