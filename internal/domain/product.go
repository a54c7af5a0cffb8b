package domain

import (
	"strings"
	"time"
)

type StockStatus string

const (
	InStock    StockStatus = "IN_STOCK"
	LowStock   StockStatus = "LOW_STOCK"
	OutOfStock StockStatus = "OUT_OF_STOCK"
	PreOrder   StockStatus = "PRE_ORDER"
	ComingSoon StockStatus = "COMING_SOON"
)

// ParseStockStatus accepts the five storefront stock states (case-insensitive).
// Anything else is a data error.
func ParseStockStatus(s string) (StockStatus, error) {
	switch st := StockStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case InStock, LowStock, OutOfStock, PreOrder, ComingSoon:
		return st, nil
	}
	return "", Invalid("stock", "unknown stock status "+strings.TrimSpace(s))
}

// Orderable reports whether a product in this state may be added to a cart.
func (s StockStatus) Orderable() bool {
	return s != OutOfStock && s != ComingSoon
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

type Media struct {
	URL   string    `json:"url"`
	Type  MediaType `json:"type"`
	Alt   string    `json:"alt"`
	Order int       `json:"order"`
}

type ProductTranslation struct {
	Language    Language   `json:"language"`
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Features    FeatureSet `json:"features"`
}

type Product struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Brand        string               `json:"brand"`
	Type         string               `json:"type"`
	Category     string               `json:"category"`
	SubCategory  string               `json:"subCategory,omitempty"`
	Description  string               `json:"description"`
	Features     FeatureSet           `json:"features"`
	Stock        StockStatus          `json:"stock"`
	Media        []Media              `json:"media"`
	Translations []ProductTranslation `json:"translations"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

// Image returns the first media url, used as the cart thumbnail.
func (p Product) Image() string {
	if len(p.Media) == 0 {
		return ""
	}
	return p.Media[0].URL
}

// Translation returns the entry for lang, if any.
func (p Product) Translation(lang Language) (ProductTranslation, bool) {
	for _, t := range p.Translations {
		if t.Language == lang {
			return t, true
		}
	}
	return ProductTranslation{}, false
}

// NormalizeMedia fills defaulted fields and renumbers Order to 0..n-1,
// keeping the given sequence.
func NormalizeMedia(productName string, media []Media) []Media {
	out := make([]Media, len(media))
	for i, m := range media {
		if m.Type != MediaVideo {
			m.Type = MediaImage
		}
		if strings.TrimSpace(m.Alt) == "" {
			m.Alt = productName
		}
		m.Order = i
		out[i] = m
	}
	return out
}

// Availability is the public stock answer for one product.
type Availability struct {
	ProductID string      `json:"productId"`
	Stock     StockStatus `json:"stock"`
	Orderable bool        `json:"orderable"`
}
