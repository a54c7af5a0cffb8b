package services

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"medicatalog/internal/cart"
	"medicatalog/internal/domain"
	"medicatalog/internal/repos"
)

// CartService owns the session carts. Every mutation loads the cart, applies
// one cart operation and saves the result; per-session locking keeps
// concurrent requests of one session in order.
type CartService struct {
	Carts   *repos.CartRepo
	Catalog *CatalogService
	locks   [64]sync.Mutex
}

func NewCartService(carts *repos.CartRepo, cat *CatalogService) *CartService {
	return &CartService{Carts: carts, Catalog: cat}
}

func (s *CartService) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	m := &s.locks[h.Sum32()%uint32(len(s.locks))]
	m.Lock()
	return m.Unlock
}

func (s *CartService) View(ctx context.Context, sessionID string) (domain.Cart, error) {
	c, err := s.Carts.Load(ctx, sessionID)
	return c, domain.Transient("cart.load", err)
}

// mutate applies op to the stored cart. On error the stored cart is left
// as it was and returned unchanged.
func (s *CartService) mutate(ctx context.Context, sessionID string, op func(domain.Cart) (domain.Cart, error)) (domain.Cart, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	c, err := s.Carts.Load(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, domain.Transient("cart.load", err)
	}
	next, err := op(c)
	if err != nil {
		return c, err
	}
	if err := s.Carts.Save(ctx, sessionID, next); err != nil {
		return c, domain.Transient("cart.save", err)
	}
	return next, nil
}

func (s *CartService) Add(ctx context.Context, sessionID, productID string, qty int) (domain.Cart, error) {
	p, err := s.Catalog.GetByID(ctx, productID)
	if err != nil {
		c, _ := s.Carts.Load(ctx, sessionID)
		return c, err
	}
	return s.mutate(ctx, sessionID, func(c domain.Cart) (domain.Cart, error) {
		return cart.AddItem(c, p, qty)
	})
}

func (s *CartService) Update(ctx context.Context, sessionID, productID string, qty int) (domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(c domain.Cart) (domain.Cart, error) {
		return cart.UpdateQuantity(c, productID, qty)
	})
}

func (s *CartService) Remove(ctx context.Context, sessionID, productID string) (domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(c domain.Cart) (domain.Cart, error) {
		return cart.RemoveItem(c, productID), nil
	})
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	unlock := s.lock(sessionID)
	defer unlock()
	return domain.Transient("cart.clear", s.Carts.Clear(ctx, sessionID))
}

// Merge adds client-held lines (a cart kept in the browser before the
// session existed) to the session cart. Lines that cannot be added are
// reported by product id and skipped.
func (s *CartService) Merge(ctx context.Context, sessionID string, lines []domain.QuoteLine) (domain.Cart, []string, error) {
	products := make(map[string]domain.Product, len(lines))
	skipped := []string{}
	for _, l := range lines {
		if _, ok := products[l.ProductID]; ok {
			continue
		}
		p, err := s.Catalog.GetByID(ctx, l.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return domain.Cart{}, nil, err
		}
		products[l.ProductID] = p
	}
	c, err := s.mutate(ctx, sessionID, func(c domain.Cart) (domain.Cart, error) {
		for _, l := range lines {
			p, ok := products[l.ProductID]
			if !ok {
				skipped = append(skipped, l.ProductID)
				continue
			}
			next, err := cart.AddItem(c, p, l.Quantity)
			if err != nil {
				skipped = append(skipped, l.ProductID)
				continue
			}
			c = next
		}
		return c, nil
	})
	return c, skipped, err
}
