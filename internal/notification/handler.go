package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/readmodel"
)

// Handler reacts to checkout events with shopper emails. Every failure is
// swallowed after logging; notifications never block the event stream.
type Handler struct {
	emailService *email.Service
	readStore    store.ReadStoreInterface
}

func NewHandler(emailSvc *email.Service, readStore store.ReadStoreInterface) *Handler {
	return &Handler{
		emailService: emailSvc,
		readStore:    readStore,
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	if event.EventType == cart.EventCheckoutStarted {
		return h.handleCheckoutStarted(event)
	}

	return nil
}

func (h *Handler) handleCheckoutStarted(event store.Event) error {
	var e cart.CheckoutStarted
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal CheckoutStarted event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing CheckoutStarted for cart %s, shopper %s", e.CartID, e.ShopperID)

	shopperData, exists, err := h.readStore.Get("shoppers", e.ShopperID)
	if err != nil {
		log.Printf("[Notifier] Error getting shopper %s: %v", e.ShopperID, err)
		return nil
	}
	if !exists {
		// Guest checkout has no account to notify
		log.Printf("[Notifier] No account for shopper %s, skipping email", e.ShopperID)
		return nil
	}

	shopper, ok := shopperData.(*readmodel.ShopperReadModel)
	if !ok {
		log.Printf("[Notifier] Invalid shopper data type for shopper: %s", e.ShopperID)
		return nil
	}

	lines := h.cartLines(e.CartID)

	if err := h.emailService.SendCheckoutStarted(shopper.Email, e.RedirectURL, lines); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", shopper.Email, err)
		return err
	}

	log.Printf("[Notifier] Checkout email sent to %s for cart %s", shopper.Email, e.CartID)
	return nil
}

func (h *Handler) cartLines(cartID string) []email.CartLine {
	cartData, exists, err := h.readStore.Get("carts", cartID)
	if err != nil || !exists {
		return nil
	}

	c, ok := cartData.(*readmodel.CartReadModel)
	if !ok {
		return nil
	}

	lines := make([]email.CartLine, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, email.CartLine{
			Title:        item.Title,
			VariantLabel: item.VariantLabel,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
		})
	}
	return lines
}
