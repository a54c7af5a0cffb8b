package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"medicatalog/internal/cart"
	"medicatalog/internal/domain"
	applog "medicatalog/internal/log"
	"medicatalog/internal/repos"
)

type QuoteService struct {
	Carts   *CartService
	Catalog *CatalogService
	Quotes  *repos.QuoteRepo
}

func NewQuoteService(carts *CartService, cat *CatalogService, quotes *repos.QuoteRepo) *QuoteService {
	return &QuoteService{Carts: carts, Catalog: cat, Quotes: quotes}
}

// Submit turns a cart into a stored quote request. lines, when given,
// replace the session cart as the source and the session cart is left as is.
// Otherwise the session cart is cleared once the quote is stored; any
// failure leaves it untouched.
func (s *QuoteService) Submit(ctx context.Context, sessionID string, lines []domain.QuoteLine, r domain.Requester) (domain.Quote, error) {
	var c domain.Cart
	if len(lines) > 0 {
		c = cart.FromLines(lines)
	} else {
		var err error
		if c, err = s.Carts.View(ctx, sessionID); err != nil {
			return domain.Quote{}, err
		}
	}
	req, err := cart.ToQuoteRequest(c, r)
	if err != nil {
		return domain.Quote{}, err
	}

	q := domain.Quote{
		ID:        uuid.NewString(),
		Status:    domain.QuoteRequested,
		Items:     make([]domain.QuoteItem, 0, len(req.Items)),
		CreatedAt: time.Now().UTC(),
	}
	if req.Requester.Authenticated() {
		q.UserID = req.Requester.UserID
	} else {
		q.GuestName = req.Requester.Guest.Name
		q.GuestEmail = req.Requester.Guest.Email
		q.GuestPhone = req.Requester.Guest.Phone
	}
	for _, l := range req.Items {
		p, err := s.Catalog.GetByID(ctx, l.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Quote{}, domain.Invalid("items", "unknown product "+l.ProductID)
		}
		if err != nil {
			return domain.Quote{}, err
		}
		if !p.Stock.Orderable() {
			return domain.Quote{}, fmt.Errorf("%s: %w", p.Name, domain.ErrNotOrderable)
		}
		q.Items = append(q.Items, domain.QuoteItem{ProductID: p.ID, Name: p.Name, Brand: p.Brand, Quantity: l.Quantity})
	}

	if err := s.Quotes.Create(ctx, sessionID, q); err != nil {
		return domain.Quote{}, domain.Transient("quotes.create", err)
	}
	if len(lines) == 0 {
		if err := s.Carts.Clear(ctx, sessionID); err != nil {
			applog.Event("quote.cart_clear", err, map[string]any{"quote": q.ID})
		}
	}
	applog.Event("quote.submitted", nil, map[string]any{"quote": q.ID, "lines": len(q.Items), "guest": q.UserID == ""})
	return q, nil
}

func (s *QuoteService) Get(ctx context.Context, id string) (domain.Quote, error) {
	q, err := s.Quotes.Get(ctx, id)
	return q, domain.Transient("quotes.get", err)
}

func (s *QuoteService) List(ctx context.Context, limit int) ([]repos.QuoteSummary, error) {
	out, err := s.Quotes.ListLatest(ctx, limit)
	return out, domain.Transient("quotes.list", err)
}

func (s *QuoteService) ListForUser(ctx context.Context, userID string) ([]repos.QuoteSummary, error) {
	out, err := s.Quotes.ListByUser(ctx, userID)
	return out, domain.Transient("quotes.list", err)
}

func (s *QuoteService) SetStatus(ctx context.Context, id, raw string) error {
	st, err := domain.ParseQuoteStatus(raw)
	if err != nil {
		return err
	}
	return s.Quotes.UpdateStatus(ctx, id, st)
}
