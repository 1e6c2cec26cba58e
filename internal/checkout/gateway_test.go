package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() SessionRequest {
	return SessionRequest{
		CartID:    "cart-shopper-123",
		ShopperID: "shopper-123",
		Items: []LineItem{
			{ProductID: "prod-1", VariantID: "50ml", Title: "Eau de Parfum", UnitPrice: "49.00", Quantity: 2},
		},
	}
}

func TestGateway_CreateSession_Success(t *testing.T) {
	var gotIdempotencyKey string
	var gotBody SessionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Session{ID: "sess-1", URL: "https://pay.example.com/s/abc"})
	}))
	defer server.Close()

	gateway := NewGateway(server.URL, time.Second)

	session, err := gateway.CreateSession(context.Background(), "cart-shopper-123-v3", testRequest())

	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)
	assert.Equal(t, "https://pay.example.com/s/abc", session.URL)
	assert.Equal(t, "cart-shopper-123-v3", gotIdempotencyKey)
	assert.Equal(t, "cart-shopper-123", gotBody.CartID)
	require.Len(t, gotBody.Items, 1)
	assert.Equal(t, "49.00", gotBody.Items[0].UnitPrice)
}

func TestGateway_CreateSession_RejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	gateway := NewGateway(server.URL, time.Second)

	session, err := gateway.CreateSession(context.Background(), "key", testRequest())

	assert.ErrorIs(t, err, ErrSessionRejected)
	assert.Nil(t, session)
	assert.Contains(t, err.Error(), "status 500")
}

func TestGateway_CreateSession_MissingURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Session{ID: "sess-1"})
	}))
	defer server.Close()

	gateway := NewGateway(server.URL, time.Second)

	session, err := gateway.CreateSession(context.Background(), "key", testRequest())

	assert.ErrorIs(t, err, ErrNoRedirectURL)
	assert.Nil(t, session)
}

func TestGateway_CreateSession_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	gateway := NewGateway(server.URL, time.Second)

	_, err := gateway.CreateSession(context.Background(), "key", testRequest())

	assert.ErrorIs(t, err, ErrSessionRejected)
}

func TestGateway_CreateSession_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(Session{ID: "sess-1", URL: "https://pay.example.com/s/abc"})
	}))
	defer server.Close()

	gateway := NewGateway(server.URL, 20*time.Millisecond)

	_, err := gateway.CreateSession(context.Background(), "key", testRequest())

	assert.ErrorIs(t, err, ErrSessionRejected)
}

func TestGateway_CreateSession_Unreachable(t *testing.T) {
	gateway := NewGateway("http://127.0.0.1:1/sessions", time.Second)

	_, err := gateway.CreateSession(context.Background(), "key", testRequest())

	assert.ErrorIs(t, err, ErrSessionRejected)
}
