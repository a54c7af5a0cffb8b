package domain

import (
	"strings"
	"time"
)

type CartItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Image    string `json:"image,omitempty"`
	Quantity int    `json:"quantity"`
}

// Cart holds at most one line per product id, in insertion order.
type Cart struct {
	Items []CartItem `json:"items"`
}

func (c Cart) Index(id string) int {
	for i, it := range c.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (c Cart) TotalQuantity() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) Clone() Cart {
	return Cart{Items: append([]CartItem(nil), c.Items...)}
}

type QuoteLine struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"quantity"`
}

type GuestInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Requester identifies who asks for a quote: an authenticated user, or a
// guest by contact details.
type Requester struct {
	UserID string     `json:"userId,omitempty"`
	Guest  *GuestInfo `json:"guestInfo,omitempty"`
}

func (r Requester) Authenticated() bool { return strings.TrimSpace(r.UserID) != "" }

type QuoteRequest struct {
	Items     []QuoteLine `json:"items"`
	Requester Requester   `json:"requester"`
}

type QuoteStatus string

const (
	QuoteRequested  QuoteStatus = "DEVIS"
	QuoteInProgress QuoteStatus = "EN_COURS"
	QuoteHandled    QuoteStatus = "TRAITE"
	QuoteCancelled  QuoteStatus = "ANNULE"
)

func ParseQuoteStatus(s string) (QuoteStatus, error) {
	switch st := QuoteStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case QuoteRequested, QuoteInProgress, QuoteHandled, QuoteCancelled:
		return st, nil
	}
	return "", Invalid("status", "unknown quote status")
}

type QuoteItem struct {
	ProductID string `json:"productId" db:"product_id"`
	Name      string `json:"name" db:"name"`
	Brand     string `json:"brand" db:"brand"`
	Quantity  int    `json:"quantity" db:"quantity"`
}

// Quote is a stored quote request.
type Quote struct {
	ID         string      `json:"id"`
	Status     QuoteStatus `json:"status"`
	UserID     string      `json:"userId,omitempty"`
	GuestName  string      `json:"guestName,omitempty"`
	GuestEmail string      `json:"guestEmail,omitempty"`
	GuestPhone string      `json:"guestPhone,omitempty"`
	Items      []QuoteItem `json:"items"`
	CreatedAt  time.Time   `json:"createdAt"`
}
