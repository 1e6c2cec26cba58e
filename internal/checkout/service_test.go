package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/cart"
)

// fakeCreator records session requests and answers from a script
type fakeCreator struct {
	mu       sync.Mutex
	calls    []fakeCall
	session  *Session
	err      error
	blocked  chan struct{}
	entered  chan struct{}
}

type fakeCall struct {
	IdempotencyKey string
	Request        SessionRequest
}

func (f *fakeCreator) CreateSession(ctx context.Context, idempotencyKey string, req SessionRequest) (*Session, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{IdempotencyKey: idempotencyKey, Request: req})
	f.mu.Unlock()

	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}
	if f.blocked != nil {
		<-f.blocked
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func testCart() *cart.Cart {
	key := cart.LineKey("prod-1", "50ml")
	return &cart.Cart{
		ID:        "cart-shopper-123",
		ShopperID: "shopper-123",
		Items: map[string]cart.LineItem{
			key: {
				ProductID: "prod-1",
				VariantID: "50ml",
				Title:     "Eau de Parfum",
				UnitPrice: decimal.RequireFromString("49.00"),
				Quantity:  2,
			},
		},
		LineOrder: []string{key},
		PromoCode: "SAVE15",
		PromoPercent: 15,
		Open:      true,
		Version:   3,
	}
}

func TestService_Handoff_Success(t *testing.T) {
	creator := &fakeCreator{session: &Session{ID: "sess-1", URL: "https://pay.example.com/s/abc"}}
	service := NewService(creator)

	session, err := service.Handoff(context.Background(), testCart())

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/s/abc", session.URL)

	require.Len(t, creator.calls, 1)
	call := creator.calls[0]
	assert.Equal(t, "cart-shopper-123", call.Request.CartID)
	assert.Equal(t, "SAVE15", call.Request.PromoCode)
	assert.Equal(t, 15, call.Request.PromoPercent)
	require.Len(t, call.Request.Items, 1)
	assert.Equal(t, "49.00", call.Request.Items[0].UnitPrice)
	assert.Equal(t, 2, call.Request.Items[0].Quantity)
}

// Idempotency key is derived from cart identity and version, so retrying
// the same cart state reuses the key
func TestService_Handoff_IdempotencyKey(t *testing.T) {
	creator := &fakeCreator{session: &Session{ID: "sess-1", URL: "https://pay.example.com/s/abc"}}
	service := NewService(creator)

	_, err := service.Handoff(context.Background(), testCart())
	require.NoError(t, err)
	_, err = service.Handoff(context.Background(), testCart())
	require.NoError(t, err)

	require.Len(t, creator.calls, 2)
	assert.Equal(t, "cart-shopper-123-v3", creator.calls[0].IdempotencyKey)
	assert.Equal(t, creator.calls[0].IdempotencyKey, creator.calls[1].IdempotencyKey)
}

func TestService_Handoff_EmptyCart(t *testing.T) {
	creator := &fakeCreator{session: &Session{ID: "sess-1", URL: "https://pay.example.com/s/abc"}}
	service := NewService(creator)

	c := &cart.Cart{ID: "cart-shopper-123", ShopperID: "shopper-123"}

	session, err := service.Handoff(context.Background(), c)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, session)
	assert.Empty(t, creator.calls)
}

// A second submission while one is running is rejected, not queued
func TestService_Handoff_InFlightRejected(t *testing.T) {
	blocked := make(chan struct{})
	entered := make(chan struct{})
	creator := &fakeCreator{
		session: &Session{ID: "sess-1", URL: "https://pay.example.com/s/abc"},
		blocked: blocked,
		entered: entered,
	}
	service := NewService(creator)

	done := make(chan error, 1)
	go func() {
		_, err := service.Handoff(context.Background(), testCart())
		done <- err
	}()

	<-entered
	assert.True(t, service.InFlight("cart-shopper-123"))

	_, err := service.Handoff(context.Background(), testCart())
	assert.ErrorIs(t, err, ErrCheckoutInFlight)

	close(blocked)
	require.NoError(t, <-done)
	assert.False(t, service.InFlight("cart-shopper-123"))
}

// A failed handoff releases the guard so the shopper can retry immediately
func TestService_Handoff_FailureReleasesGuard(t *testing.T) {
	creator := &fakeCreator{err: ErrNoRedirectURL}
	service := NewService(creator)

	_, err := service.Handoff(context.Background(), testCart())
	assert.ErrorIs(t, err, ErrNoRedirectURL)
	assert.False(t, service.InFlight("cart-shopper-123"))

	// Retry goes through once the creator recovers
	creator.err = nil
	creator.session = &Session{ID: "sess-2", URL: "https://pay.example.com/s/def"}

	session, err := service.Handoff(context.Background(), testCart())
	require.NoError(t, err)
	assert.Equal(t, "sess-2", session.ID)
}

// Carts of different shoppers never block each other
func TestService_Handoff_GuardIsPerCart(t *testing.T) {
	blocked := make(chan struct{})
	entered := make(chan struct{})
	creator := &fakeCreator{
		session: &Session{ID: "sess-1", URL: "https://pay.example.com/s/abc"},
		blocked: blocked,
		entered: entered,
	}
	service := NewService(creator)

	done := make(chan error, 1)
	go func() {
		_, err := service.Handoff(context.Background(), testCart())
		done <- err
	}()
	<-entered

	other := testCart()
	other.ID = "cart-shopper-456"
	other.ShopperID = "shopper-456"

	// Unblock before the second submission so the shared creator does not
	// stall it
	close(blocked)
	require.NoError(t, <-done)

	_, err := service.Handoff(context.Background(), other)
	require.NoError(t, err)
}
