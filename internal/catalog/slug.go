package catalog

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"medicatalog/internal/domain"
)

// ShortIDLen is the length of the id fragment appended to colliding slugs.
const ShortIDLen = 8

const fallbackSlug = "produit"

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9]+`)
	ligatures = strings.NewReplacer(
		"œ", "oe", "Œ", "oe", "æ", "ae", "Æ", "ae", "ß", "ss",
		"ø", "o", "Ø", "o", "ł", "l", "Ł", "l", "đ", "d", "Đ", "d",
	)
)

// Slugify maps a product name to a lowercase ASCII slug with diacritics
// removed and runs of other characters collapsed to one hyphen.
func Slugify(name string) string {
	s := ligatures.Replace(strings.TrimSpace(name))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fallbackSlug
	}
	return s
}

// ShortID is the id fragment used in disambiguated slugs and short links.
func ShortID(id string) string {
	compact := strings.ToLower(strings.ReplaceAll(id, "-", ""))
	if len(compact) > ShortIDLen {
		return compact[:ShortIDLen]
	}
	return compact
}

type slugEntry struct {
	id    string
	slug  string
	short string
}

// SlugIndex resolves slugs against a product snapshot. Entries are kept
// oldest first so collisions resolve the same way on every call.
type SlugIndex struct {
	entries []slugEntry
	byID    map[string]int
	counts  map[string]int
}

// SlugMatch is the outcome of a resolution. Candidates > 1 means the plain
// slug was shared and the oldest product was chosen.
type SlugMatch struct {
	ID         string
	Candidates int
}

func NewSlugIndex(products []domain.Product) *SlugIndex {
	sorted := append([]domain.Product(nil), products...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	x := &SlugIndex{
		entries: make([]slugEntry, 0, len(sorted)),
		byID:    make(map[string]int, len(sorted)),
		counts:  map[string]int{},
	}
	for _, p := range sorted {
		e := slugEntry{id: p.ID, slug: Slugify(p.Name), short: ShortID(p.ID)}
		x.byID[p.ID] = len(x.entries)
		x.entries = append(x.entries, e)
		x.counts[e.slug]++
	}
	return x
}

// Canonical returns the slug to publish for id: the plain slug, or the
// plain slug suffixed with the short id when another product shares it.
func (x *SlugIndex) Canonical(id string) (string, bool) {
	i, ok := x.byID[id]
	if !ok {
		return "", false
	}
	e := x.entries[i]
	if x.counts[e.slug] > 1 {
		return e.slug + "-" + e.short, true
	}
	return e.slug, true
}

// Resolve maps a slug to a product id. An id-suffixed slug wins; otherwise
// the plain slug must match, and on collision the oldest product is used.
func (x *SlugIndex) Resolve(slug string) (SlugMatch, error) {
	slug = strings.ToLower(strings.Trim(strings.TrimSpace(slug), "/"))
	if slug == "" {
		return SlugMatch{}, domain.ErrNotFound
	}
	if i := strings.LastIndexByte(slug, '-'); i > 0 && len(slug)-i-1 == ShortIDLen {
		base, frag := slug[:i], slug[i+1:]
		for _, e := range x.entries {
			if e.short == frag && e.slug == base {
				return SlugMatch{ID: e.id, Candidates: 1}, nil
			}
		}
	}
	var first string
	n := 0
	for _, e := range x.entries {
		if e.slug != slug {
			continue
		}
		if n == 0 {
			first = e.id
		}
		n++
	}
	if n == 0 {
		return SlugMatch{}, domain.ErrNotFound
	}
	return SlugMatch{ID: first, Candidates: n}, nil
}
