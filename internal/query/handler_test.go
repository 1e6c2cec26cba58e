package query

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/infrastructure/store/mocks"
	"github.com/example/storefront/internal/readmodel"
)

func newTestQueryHandler() (*Handler, *mocks.MockReadStore) {
	readStore := mocks.NewMockReadStore()
	return NewHandler(readStore, decimal.NewFromInt(75)), readStore
}

func TestHandler_GetProduct(t *testing.T) {
	handler, readStore := newTestQueryHandler()
	_ = readStore.Set("products", "prod-1", &readmodel.ProductReadModel{ID: "prod-1", Title: "Eau de Parfum"})

	p, ok := handler.GetProduct("prod-1")
	require.True(t, ok)
	assert.Equal(t, "Eau de Parfum", p.Title)

	_, ok = handler.GetProduct("prod-404")
	assert.False(t, ok)
}

func TestHandler_ListProducts(t *testing.T) {
	handler, readStore := newTestQueryHandler()
	_ = readStore.Set("products", "prod-1", &readmodel.ProductReadModel{ID: "prod-1"})
	_ = readStore.Set("products", "prod-2", &readmodel.ProductReadModel{ID: "prod-2"})

	assert.Len(t, handler.ListProducts(), 2)
}

// A shopper with no projected cart still gets a usable empty view
func TestHandler_GetCart_Empty(t *testing.T) {
	handler, _ := newTestQueryHandler()

	view := handler.GetCart("shopper-123")

	require.NotNil(t, view)
	assert.Equal(t, "cart-shopper-123", view.Cart.ID)
	assert.Empty(t, view.Cart.Items)
	assert.Equal(t, 0, view.Quote.TotalItems)
	assert.True(t, view.Quote.Total.IsZero())
}

func TestHandler_GetCart_WithQuote(t *testing.T) {
	handler, readStore := newTestQueryHandler()
	_ = readStore.Set("carts", "cart-shopper-123", &readmodel.CartReadModel{
		ID:        "cart-shopper-123",
		ShopperID: "shopper-123",
		Items: []readmodel.CartLineReadModel{
			{ProductID: "prod-1", VariantID: "50ml", UnitPrice: "100.00", Quantity: 1},
		},
		PromoCode:    "SAVE15",
		PromoPercent: 15,
	})

	view := handler.GetCart("shopper-123")

	assert.Equal(t, "SAVE15", view.Cart.PromoCode)
	assert.Equal(t, "100.00", view.Quote.Subtotal.StringFixed(2))
	assert.Equal(t, "15.00", view.Quote.DiscountAmount.StringFixed(2))
	assert.Equal(t, "85.00", view.Quote.Total.StringFixed(2))
	assert.Equal(t, 1.0, view.Quote.ShippingProgress)
}

func TestHandler_GetCart_ReadError(t *testing.T) {
	handler, readStore := newTestQueryHandler()
	readStore.GetErr = assert.AnError

	view := handler.GetCart("shopper-123")

	// Errors degrade to an empty cart rather than failing the page
	require.NotNil(t, view)
	assert.Empty(t, view.Cart.Items)
}

func TestHandler_GetShopper(t *testing.T) {
	handler, readStore := newTestQueryHandler()
	_ = readStore.Set("shoppers", "shopper-123", &readmodel.ShopperReadModel{ID: "shopper-123", Email: "a@example.com"})

	s, ok := handler.GetShopper("shopper-123")
	require.True(t, ok)
	assert.Equal(t, "a@example.com", s.Email)

	_, ok = handler.GetShopper("shopper-404")
	assert.False(t, ok)
}
