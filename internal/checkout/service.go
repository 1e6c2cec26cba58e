package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/example/storefront/internal/domain/cart"
)

var (
	ErrEmptyCart = errors.New("cart has no items")

	// ErrCheckoutInFlight mirrors the disabled checkout button: one
	// submission per cart at a time, with no queuing.
	ErrCheckoutInFlight = errors.New("checkout already in progress")
)

// Service guards checkout submissions per cart and exchanges a cart
// snapshot for a gateway redirect session
type Service struct {
	creator SessionCreator

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewService(creator SessionCreator) *Service {
	return &Service{
		creator:  creator,
		inFlight: make(map[string]bool),
	}
}

func (s *Service) begin(cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[cartID] {
		return ErrCheckoutInFlight
	}
	s.inFlight[cartID] = true
	return nil
}

func (s *Service) finish(cartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, cartID)
}

// InFlight reports whether a submission is currently running for a cart
func (s *Service) InFlight(cartID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[cartID]
}

// Handoff serializes the cart into a session request and submits it.
// The in-flight guard is released whether the gateway accepts or rejects,
// so a failed submission can be retried immediately.
func (s *Service) Handoff(ctx context.Context, c *cart.Cart) (*Session, error) {
	lines := c.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	if err := s.begin(c.ID); err != nil {
		return nil, err
	}
	defer s.finish(c.ID)

	req := SessionRequest{
		CartID:       c.ID,
		ShopperID:    c.ShopperID,
		Items:        make([]LineItem, 0, len(lines)),
		PromoCode:    c.PromoCode,
		PromoPercent: c.PromoPercent,
	}
	for _, line := range lines {
		req.Items = append(req.Items, LineItem{
			ProductID:    line.ProductID,
			VariantID:    line.VariantID,
			Title:        line.Title,
			VariantLabel: line.VariantLabel,
			Image:        line.Image,
			UnitPrice:    line.UnitPrice.StringFixed(2),
			Quantity:     line.Quantity,
		})
	}

	// Cart version makes retries of the same cart state collapse to one
	// session on the gateway side
	idempotencyKey := fmt.Sprintf("%s-v%d", c.ID, c.Version)

	return s.creator.CreateSession(ctx, idempotencyKey, req)
}
