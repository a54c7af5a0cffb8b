package cart_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicatalog/internal/cart"
	"medicatalog/internal/domain"
)

var (
	cpap = domain.Product{ID: "p-yh680", Name: "YH-680", Brand: "YUWELL", Stock: domain.InStock,
		Media: []domain.Media{{URL: "/img/yh680.jpg"}}}
	mask   = domain.Product{ID: "p-f20", Name: "AirFit F20", Brand: "ResMed", Stock: domain.PreOrder}
	filter = domain.Product{ID: "p-filter", Name: "Filtre YH", Brand: "YUWELL", Stock: domain.ComingSoon}
)

func goodGuest() *domain.GuestInfo {
	return &domain.GuestInfo{Name: "Samira B.", Email: "samira@example.dz", Phone: "+213 555 12 34 56"}
}

func TestAddItemMergesQuantities(t *testing.T) {
	c, err := cart.AddItem(domain.Cart{}, cpap, 1)
	require.NoError(t, err)
	c, err = cart.AddItem(c, cpap, 2)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, "/img/yh680.jpg", c.Items[0].Image)

	c, err = cart.AddItem(c, mask, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p-yh680", "p-f20"}, []string{c.Items[0].ID, c.Items[1].ID})
	assert.Equal(t, 4, c.TotalQuantity())
}

func TestAddItemRejectsUnavailable(t *testing.T) {
	start, _ := cart.AddItem(domain.Cart{}, cpap, 1)
	got, err := cart.AddItem(start, filter, 1)
	assert.ErrorIs(t, err, domain.ErrNotOrderable)
	assert.Equal(t, start, got)

	out := filter
	out.Stock = domain.OutOfStock
	_, err = cart.AddItem(start, out, 1)
	assert.ErrorIs(t, err, domain.ErrNotOrderable)
}

func TestAddItemQuantityBounds(t *testing.T) {
	_, err := cart.AddItem(domain.Cart{}, cpap, 0)
	ve, ok := domain.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "quantity", ve.Field)

	c, err := cart.AddItem(domain.Cart{}, cpap, cart.MaxQuantity)
	require.NoError(t, err)
	got, err := cart.AddItem(c, cpap, 1)
	_, ok = domain.IsValidation(err)
	assert.True(t, ok)
	assert.Equal(t, cart.MaxQuantity, got.Items[0].Quantity)
}

func TestAddItemDoesNotTouchInput(t *testing.T) {
	c, _ := cart.AddItem(domain.Cart{}, cpap, 1)
	_, _ = cart.AddItem(c, cpap, 5)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	c, _ := cart.AddItem(domain.Cart{}, cpap, 1)
	c, _ = cart.AddItem(c, mask, 1)

	c, err := cart.UpdateQuantity(c, "p-f20", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Items[1].Quantity)

	for _, q := range []int{0, -2} {
		got, err := cart.UpdateQuantity(c, "p-f20", q)
		require.NoError(t, err)
		assert.Equal(t, -1, got.Index("p-f20"))
		assert.Len(t, got.Items, 1)
	}

	_, err = cart.UpdateQuantity(c, "missing", 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveItemUnknownIsNoop(t *testing.T) {
	c, _ := cart.AddItem(domain.Cart{}, cpap, 2)
	assert.Equal(t, c.Items, cart.RemoveItem(c, "nope").Items)
}

func TestToQuoteRequestForUser(t *testing.T) {
	c, _ := cart.AddItem(domain.Cart{}, cpap, 2)
	c, _ = cart.AddItem(c, mask, 1)
	req, err := cart.ToQuoteRequest(c, domain.Requester{UserID: "u-1", Guest: goodGuest()})
	require.NoError(t, err)
	assert.Equal(t, "u-1", req.Requester.UserID)
	assert.Nil(t, req.Requester.Guest)
	assert.Equal(t, []domain.QuoteLine{{ProductID: "p-yh680", Quantity: 2}, {ProductID: "p-f20", Quantity: 1}}, req.Items)
}

func TestToQuoteRequestGroupsDuplicates(t *testing.T) {
	c := cart.FromLines([]domain.QuoteLine{
		{ProductID: "p-yh680", Quantity: 1},
		{ProductID: "p-f20", Quantity: 1},
		{ProductID: "p-yh680", Quantity: 4},
	})
	req, err := cart.ToQuoteRequest(c, domain.Requester{Guest: goodGuest()})
	require.NoError(t, err)
	assert.Equal(t, []domain.QuoteLine{{ProductID: "p-yh680", Quantity: 5}, {ProductID: "p-f20", Quantity: 1}}, req.Items)
	assert.Equal(t, "samira@example.dz", req.Requester.Guest.Email)
}

func TestToQuoteRequestValidatesGuest(t *testing.T) {
	c, _ := cart.AddItem(domain.Cart{}, cpap, 1)
	cases := []struct {
		guest *domain.GuestInfo
		field string
	}{
		{nil, "name"},
		{&domain.GuestInfo{Name: " ", Email: "a@b.fr", Phone: "0555123456"}, "name"},
		{&domain.GuestInfo{Name: "Ali", Email: "not-an-email", Phone: "0555123456"}, "email"},
		{&domain.GuestInfo{Name: "Ali", Email: "a@b.fr", Phone: "12"}, "phone"},
	}
	for _, tc := range cases {
		_, err := cart.ToQuoteRequest(c, domain.Requester{Guest: tc.guest})
		ve, ok := domain.IsValidation(err)
		require.True(t, ok, tc.field)
		assert.Equal(t, tc.field, ve.Field)
	}
}

func TestToQuoteRequestEmptyCart(t *testing.T) {
	_, err := cart.ToQuoteRequest(domain.Cart{}, domain.Requester{UserID: "u-1"})
	ve, ok := domain.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "items", ve.Field)
}
