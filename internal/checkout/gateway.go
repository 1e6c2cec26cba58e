package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrSessionRejected covers every way the gateway can fail a handoff:
	// transport errors, non-2xx statuses and unreadable responses. The
	// wrapped detail carries the specific cause.
	ErrSessionRejected = errors.New("checkout session rejected")

	// ErrNoRedirectURL means the gateway answered 2xx but without a url to
	// send the shopper to; treated the same as a rejected session.
	ErrNoRedirectURL = errors.New("checkout session response missing redirect url")
)

// LineItem is the wire shape of one cart line in a session request
type LineItem struct {
	ProductID    string `json:"product_id"`
	VariantID    string `json:"variant_id"`
	Title        string `json:"title"`
	VariantLabel string `json:"variant_label"`
	Image        string `json:"image,omitempty"`
	UnitPrice    string `json:"unit_price"`
	Quantity     int    `json:"quantity"`
}

// SessionRequest is the body sent to the payment gateway's
// session-creation endpoint
type SessionRequest struct {
	CartID       string     `json:"cart_id"`
	ShopperID    string     `json:"shopper_id"`
	Items        []LineItem `json:"items"`
	PromoCode    string     `json:"promo_code,omitempty"`
	PromoPercent int        `json:"promo_percent,omitempty"`
}

// Session is the gateway's answer: a hosted-payment redirect URL.
// Navigating there ends this system's responsibility for the purchase.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SessionCreator creates checkout sessions against an external gateway
type SessionCreator interface {
	CreateSession(ctx context.Context, idempotencyKey string, req SessionRequest) (*Session, error)
}

// Gateway calls the payment processor's session-creation endpoint over HTTP.
// Every call carries a timeout and an idempotency key so a retried
// submission can be deduplicated by the processor.
type Gateway struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
}

const defaultTimeout = 10 * time.Second

func NewGateway(endpoint string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Gateway{
		endpoint: endpoint,
		client:   &http.Client{},
		timeout:  timeout,
	}
}

// CreateSession posts the serialized cart and returns the redirect session.
// Transport failures, non-2xx statuses and missing URLs are all errors; the
// caller's cart state is never touched by a failed handoff.
func (g *Gateway) CreateSession(ctx context.Context, idempotencyKey string, req SessionRequest) (*Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionRejected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrSessionRejected, resp.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("%w: unreadable response: %v", ErrSessionRejected, err)
	}
	if session.URL == "" {
		return nil, ErrNoRedirectURL
	}

	return &session, nil
}
