package projection

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/shopper"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/infrastructure/store/mocks"
	"github.com/example/storefront/internal/readmodel"
)

func newTestProjector() (*Projector, *mocks.MockReadStore) {
	readStore := mocks.NewMockReadStore()
	return NewProjector(readStore), readStore
}

func feed(t *testing.T, p *Projector, aggregateType, eventType string, version int, data any) {
	t.Helper()

	jsonData, err := json.Marshal(data)
	require.NoError(t, err)

	event := store.Event{
		ID:            "evt-1",
		AggregateID:   "agg-1",
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          jsonData,
		Timestamp:     time.Now(),
		Version:       version,
	}
	raw, err := json.Marshal(&event)
	require.NoError(t, err)

	require.NoError(t, p.HandleEvent(context.Background(), []byte(event.AggregateID), raw))
}

func addedEvent(productID, variantID, price string, quantity int) cart.ItemAddedToCart {
	return cart.ItemAddedToCart{
		CartID:    "cart-shopper-123",
		ShopperID: "shopper-123",
		ProductID: productID,
		VariantID: variantID,
		Title:     "Eau de Parfum",
		UnitPrice: price,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}
}

func getCart(t *testing.T, readStore *mocks.MockReadStore) *readmodel.CartReadModel {
	t.Helper()
	data, ok, err := readStore.Get("carts", "cart-shopper-123")
	require.NoError(t, err)
	require.True(t, ok)
	return data.(*readmodel.CartReadModel)
}

// ============================================
// Cart Projection Tests
// ============================================

func TestProjector_ItemAdded_CreatesCart(t *testing.T) {
	p, readStore := newTestProjector()

	feed(t, p, cart.AggregateType, cart.EventItemAdded, 1, addedEvent("prod-1", "50ml", "49.00", 2))

	c := getCart(t, readStore)
	assert.Equal(t, "shopper-123", c.ShopperID)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "49.00", c.Items[0].UnitPrice)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.True(t, c.Open)
	assert.Equal(t, 1, c.Version)
}

func TestProjector_ItemAdded_MergesSameVariant(t *testing.T) {
	p, readStore := newTestProjector()

	feed(t, p, cart.AggregateType, cart.EventItemAdded, 1, addedEvent("prod-1", "50ml", "49.00", 2))
	feed(t, p, cart.AggregateType, cart.EventItemAdded, 2, addedEvent("prod-1", "50ml", "49.00", 1))

	c := getCart(t, readStore)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, 2, c.Version)
}

func TestProjector_ItemAdded_DistinctVariants(t *testing.T) {
	p, readStore := newTestProjector()

	feed(t, p, cart.AggregateType, cart.EventItemAdded, 1, addedEvent("prod-1", "50ml", "49.00", 1))
	feed(t, p, cart.AggregateType, cart.EventItemAdded, 2, addedEvent("prod-1", "100ml", "79.00", 1))

	c := getCart(t, readStore)
	assert.Len(t, c.Items, 2)
}

func TestProjector_ItemRemoved(t *testing.T) {
	p, readStore := newTestProjector()

	feed(t, p, cart.AggregateType, cart.EventItemAdded, 1, addedEvent("prod-1", "50ml", "49.00", 1))
	feed(t, p, cart.AggregateType, cart.EventItemRemoved, 2, cart.ItemRemovedFromCart{
		CartID: "cart-shopper-123", ShopperID: "shopper-123", ProductID: "prod-1", VariantID: "50ml",
	})

	c := getCart(t, readStore)
	assert.Empty(t, c.Items)
}

func TestProjector_QuantityUpdated(t *testing.T) {
	p, readStore := newTestProjector()

	feed(t, p, cart.AggregateType, cart.EventItemAdded, 1, addedEvent("prod-1", "50ml", "49.00", 1))
	feed(t, p, cart.AggregateType, cart.EventQuantityUpdated, 2, cart.CartItemQuantityUpdated{
		CartID: "cart-shopper-123", ShopperID: "shopper-123", ProductID: "prod-1", VariantID: "50ml", Quantity: 4,
	})

	c := getCart(t, readStore)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 4, c.Items[0].Quantity)
}

func TestProjector_CartCleared_ResetsLinesAndPromo(t *testing.T) {
	p, readStore := newTestProjector()

	feed(t, p, cart.AggregateType, cart.EventItemAdded, 1, addedEvent("prod-1", "50ml", "49.00", 1))
	feed(t, p, cart.AggregateType, cart.EventPromoApplied, 2, cart.PromoCodeApplied{
		CartID: "cart-shopper-123", ShopperID: "shopper-123", Code: "SAVE15", Percent: 15,
	})
	feed(t, p, cart.AggregateType, cart.EventCartCleared, 3, cart.CartCleared{
		CartID: "cart-shopper-123", ShopperID: "shopper-123",
	})

	c := getCart(t, readStore)
	assert.Empty(t, c.Items)
	assert.Empty(t, c.PromoCode)
	assert.Equal(t, 0, c.PromoPercent)
}

func TestProjector_OpenAndClose(t *testing.T) {
	p, readStore := newTestProjector()

	feed(t, p, cart.AggregateType, cart.EventItemAdded, 1, addedEvent("prod-1", "50ml", "49.00", 1))
	feed(t, p, cart.AggregateType, cart.EventCartClosed, 2, cart.CartClosed{
		CartID: "cart-shopper-123", ShopperID: "shopper-123",
	})

	c := getCart(t, readStore)
	assert.False(t, c.Open)
	assert.Len(t, c.Items, 1)

	feed(t, p, cart.AggregateType, cart.EventCartOpened, 3, cart.CartOpened{
		CartID: "cart-shopper-123", ShopperID: "shopper-123",
	})
	assert.True(t, getCart(t, readStore).Open)
}

func TestProjector_PromoAppliedAndReplaced(t *testing.T) {
	p, readStore := newTestProjector()

	feed(t, p, cart.AggregateType, cart.EventPromoApplied, 1, cart.PromoCodeApplied{
		CartID: "cart-shopper-123", ShopperID: "shopper-123", Code: "WELCOME10", Percent: 10,
	})
	feed(t, p, cart.AggregateType, cart.EventPromoApplied, 2, cart.PromoCodeApplied{
		CartID: "cart-shopper-123", ShopperID: "shopper-123", Code: "LUXURY20", Percent: 20,
	})

	c := getCart(t, readStore)
	assert.Equal(t, "LUXURY20", c.PromoCode)
	assert.Equal(t, 20, c.PromoPercent)
}

func TestProjector_PromoRemoved(t *testing.T) {
	p, readStore := newTestProjector()

	feed(t, p, cart.AggregateType, cart.EventPromoApplied, 1, cart.PromoCodeApplied{
		CartID: "cart-shopper-123", ShopperID: "shopper-123", Code: "WELCOME10", Percent: 10,
	})
	feed(t, p, cart.AggregateType, cart.EventPromoRemoved, 2, cart.PromoCodeRemoved{
		CartID: "cart-shopper-123", ShopperID: "shopper-123", Code: "WELCOME10",
	})

	c := getCart(t, readStore)
	assert.Empty(t, c.PromoCode)
	assert.Equal(t, 0, c.PromoPercent)
}

func TestProjector_CheckoutStarted_KeepsCartIntact(t *testing.T) {
	p, readStore := newTestProjector()

	feed(t, p, cart.AggregateType, cart.EventItemAdded, 1, addedEvent("prod-1", "50ml", "49.00", 2))
	feed(t, p, cart.AggregateType, cart.EventCheckoutStarted, 2, cart.CheckoutStarted{
		CartID: "cart-shopper-123", ShopperID: "shopper-123", SessionID: "sess-1",
		RedirectURL: "https://pay.example.com/s/abc",
	})

	c := getCart(t, readStore)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 2, c.Version)
}

// ============================================
// Product Projection Tests
// ============================================

func TestProjector_ProductLifecycle(t *testing.T) {
	p, readStore := newTestProjector()

	feed(t, p, product.AggregateType, product.EventProductCreated, 1, product.ProductCreated{
		ProductID: "prod-1", Title: "Eau de Parfum", Brand: "Maison", BasePrice: "49.00",
		Variants: []product.VariantSpec{{VariantID: "50ml", Label: "50 ml", Price: "49.00"}},
	})

	data, ok, err := readStore.Get("products", "prod-1")
	require.NoError(t, err)
	require.True(t, ok)
	prod := data.(*readmodel.ProductReadModel)
	assert.Equal(t, "Eau de Parfum", prod.Title)
	require.Len(t, prod.Variants, 1)
	assert.Equal(t, "49.00", prod.Variants[0].Price)

	feed(t, p, product.AggregateType, product.EventProductUpdated, 2, product.ProductUpdated{
		ProductID: "prod-1", Title: "Eau de Parfum Intense", Brand: "Maison", BasePrice: "59.00",
	})
	data, _, _ = readStore.Get("products", "prod-1")
	assert.Equal(t, "Eau de Parfum Intense", data.(*readmodel.ProductReadModel).Title)

	feed(t, p, product.AggregateType, product.EventProductImageUpdated, 3, product.ProductImageUpdated{
		ProductID: "prod-1", ImageURL: "https://img.example.com/p1.jpg",
	})
	data, _, _ = readStore.Get("products", "prod-1")
	assert.Equal(t, "https://img.example.com/p1.jpg", data.(*readmodel.ProductReadModel).ImageURL)

	feed(t, p, product.AggregateType, product.EventProductDeleted, 4, product.ProductDeleted{ProductID: "prod-1"})
	_, ok, err = readStore.Get("products", "prod-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

// ============================================
// Shopper Projection Tests
// ============================================

func TestProjector_ShopperRegisteredAndUpdated(t *testing.T) {
	p, readStore := newTestProjector()

	feed(t, p, shopper.AggregateType, shopper.EventShopperRegistered, 1, shopper.ShopperRegistered{
		ShopperID: "shopper-123", Email: "a@example.com", Name: "Alex", Role: "shopper",
		PasswordHash: "$2a$12$hash",
	})

	data, ok, err := readStore.Get("shoppers", "shopper-123")
	require.NoError(t, err)
	require.True(t, ok)
	s := data.(*readmodel.ShopperReadModel)
	assert.Equal(t, "a@example.com", s.Email)
	assert.Equal(t, "shopper", s.Role)

	feed(t, p, shopper.AggregateType, shopper.EventShopperUpdated, 2, shopper.ShopperUpdated{
		ShopperID: "shopper-123", Name: "Alexandra",
	})
	data, _, _ = readStore.Get("shoppers", "shopper-123")
	assert.Equal(t, "Alexandra", data.(*readmodel.ShopperReadModel).Name)
}

// Unknown aggregate types pass through without error
func TestProjector_IgnoresUnknownAggregates(t *testing.T) {
	p, readStore := newTestProjector()

	feed(t, p, "Warehouse", "SomethingHappened", 1, map[string]string{"x": "y"})

	assert.Empty(t, readStore.SetCalls)
}

func TestProjector_MalformedEvent(t *testing.T) {
	p, _ := newTestProjector()

	err := p.HandleEvent(context.Background(), []byte("key"), []byte("not json"))
	assert.Error(t, err)
}
