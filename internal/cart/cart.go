// Package cart implements the cart operations and the cart → quote request
// conversion. Functions never modify their input cart; they return the new
// state, or the unchanged cart alongside an error.
package cart

import (
	"medicatalog/internal/domain"
	"medicatalog/internal/validate"
)

// MaxQuantity bounds a single cart line.
const MaxQuantity = 999

// AddItem adds qty units of p, merging with an existing line for the same id.
func AddItem(c domain.Cart, p domain.Product, qty int) (domain.Cart, error) {
	if qty < 1 {
		return c, domain.Invalid("quantity", "must be at least 1")
	}
	if !p.Stock.Orderable() {
		return c, domain.ErrNotOrderable
	}
	next := c.Clone()
	if i := next.Index(p.ID); i >= 0 {
		total := next.Items[i].Quantity + qty
		if total > MaxQuantity {
			return c, domain.Invalid("quantity", "exceeds the maximum per product")
		}
		next.Items[i].Quantity = total
		return next, nil
	}
	if qty > MaxQuantity {
		return c, domain.Invalid("quantity", "exceeds the maximum per product")
	}
	next.Items = append(next.Items, domain.CartItem{
		ID:       p.ID,
		Name:     p.Name,
		Brand:    p.Brand,
		Image:    p.Image(),
		Quantity: qty,
	})
	return next, nil
}

// UpdateQuantity sets the quantity of line id; zero or less removes it.
func UpdateQuantity(c domain.Cart, id string, qty int) (domain.Cart, error) {
	if qty <= 0 {
		return RemoveItem(c, id), nil
	}
	if qty > MaxQuantity {
		return c, domain.Invalid("quantity", "exceeds the maximum per product")
	}
	i := c.Index(id)
	if i < 0 {
		return c, domain.ErrNotFound
	}
	next := c.Clone()
	next.Items[i].Quantity = qty
	return next, nil
}

func RemoveItem(c domain.Cart, id string) domain.Cart {
	next := domain.Cart{Items: make([]domain.CartItem, 0, len(c.Items))}
	for _, it := range c.Items {
		if it.ID != id {
			next.Items = append(next.Items, it)
		}
	}
	return next
}

// ToQuoteRequest turns the cart into a quote request. Duplicate ids are
// summed; guests must supply a valid name, email and phone.
func ToQuoteRequest(c domain.Cart, r domain.Requester) (domain.QuoteRequest, error) {
	lines := make([]domain.QuoteLine, 0, len(c.Items))
	pos := map[string]int{}
	for _, it := range c.Items {
		if it.ID == "" {
			return domain.QuoteRequest{}, domain.Invalid("items", "line without product id")
		}
		if it.Quantity < 1 {
			return domain.QuoteRequest{}, domain.Invalid("quantity", "must be at least 1")
		}
		if i, ok := pos[it.ID]; ok {
			lines[i].Quantity += it.Quantity
		} else {
			pos[it.ID] = len(lines)
			lines = append(lines, domain.QuoteLine{ProductID: it.ID, Quantity: it.Quantity})
		}
	}
	if len(lines) == 0 {
		return domain.QuoteRequest{}, domain.Invalid("items", "the cart is empty")
	}
	for _, l := range lines {
		if l.Quantity > MaxQuantity {
			return domain.QuoteRequest{}, domain.Invalid("quantity", "exceeds the maximum per product")
		}
	}

	req := domain.QuoteRequest{Items: lines}
	if r.Authenticated() {
		req.Requester = domain.Requester{UserID: r.UserID}
		return req, nil
	}
	guest, err := validGuest(r.Guest)
	if err != nil {
		return domain.QuoteRequest{}, err
	}
	req.Requester = domain.Requester{Guest: &guest}
	return req, nil
}

func validGuest(g *domain.GuestInfo) (domain.GuestInfo, error) {
	if g == nil {
		return domain.GuestInfo{}, domain.Invalid("name", "required")
	}
	name, ok := validate.ContactName(g.Name)
	if !ok {
		return domain.GuestInfo{}, domain.Invalid("name", "required")
	}
	email, ok := validate.Email(g.Email)
	if !ok {
		return domain.GuestInfo{}, domain.Invalid("email", "enter a valid email address")
	}
	phone, ok := validate.Phone(g.Phone)
	if !ok {
		return domain.GuestInfo{}, domain.Invalid("phone", "enter a valid phone number")
	}
	return domain.GuestInfo{Name: name, Email: email, Phone: phone}, nil
}

// FromLines builds a cart from raw client lines, used when a client posts
// its own (browser-stored) cart instead of the session one.
func FromLines(lines []domain.QuoteLine) domain.Cart {
	c := domain.Cart{Items: make([]domain.CartItem, 0, len(lines))}
	for _, l := range lines {
		c.Items = append(c.Items, domain.CartItem{ID: l.ProductID, Quantity: l.Quantity})
	}
	return c
}
