package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/shopspring/decimal"
)

const AggregateType = "Cart"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("product_id is required")
	ErrInvalidVariant  = errors.New("variant_id is required")
	ErrNegativePrice   = errors.New("unit price must not be negative")
	ErrNoPromoApplied  = errors.New("no promo code applied")
)

// LineItem is one product variant plus its quantity within a cart
type LineItem struct {
	ProductID    string          `json:"product_id"`
	VariantID    string          `json:"variant_id"`
	Title        string          `json:"title"`
	VariantLabel string          `json:"variant_label"`
	Image        string          `json:"image,omitempty"`
	ProductType  string          `json:"product_type,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
}

// Cart is the rebuilt aggregate state. Items are keyed by product+variant;
// LineOrder preserves insertion order for display. Totals are always derived
// from the lines, never stored.
type Cart struct {
	ID           string              `json:"id"`
	ShopperID    string              `json:"shopper_id"`
	Items        map[string]LineItem `json:"items"` // line key -> item
	LineOrder    []string            `json:"line_order"`
	PromoCode    string              `json:"promo_code,omitempty"`
	PromoPercent int                 `json:"promo_percent"`
	Open         bool                `json:"open"`
	Version      int                 `json:"version"`
}

// LineKey builds the composite key identifying a line item
func LineKey(productID, variantID string) string {
	return productID + "/" + variantID
}

// CartID returns the cart ID for a shopper (one cart per shopper)
func CartID(shopperID string) string {
	return "cart-" + shopperID
}

// Lines returns the line items in insertion order
func (c *Cart) Lines() []LineItem {
	lines := make([]LineItem, 0, len(c.LineOrder))
	for _, key := range c.LineOrder {
		if item, ok := c.Items[key]; ok {
			lines = append(lines, item)
		}
	}
	return lines
}

// TotalItems returns the sum of quantities across all lines
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice returns the sum of unit price x quantity across all lines
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, key := range c.LineOrder {
		item, ok := c.Items[key]
		if !ok {
			continue
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (c *Cart) removeLine(key string) {
	if _, ok := c.Items[key]; !ok {
		return
	}
	delete(c.Items, key)
	for i, k := range c.LineOrder {
		if k == key {
			c.LineOrder = append(c.LineOrder[:i], c.LineOrder[i+1:]...)
			break
		}
	}
}

// applyEvent applies a single event to the cart state
func (c *Cart) applyEvent(event store.Event) error {
	switch event.EventType {
	case EventItemAdded:
		var data ItemAddedToCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if c.Items == nil {
			c.Items = make(map[string]LineItem)
		}
		c.ID = data.CartID
		c.ShopperID = data.ShopperID

		price, err := decimal.NewFromString(data.UnitPrice)
		if err != nil {
			return fmt.Errorf("invalid unit price %q: %w", data.UnitPrice, err)
		}

		key := LineKey(data.ProductID, data.VariantID)
		if existing, ok := c.Items[key]; ok {
			existing.Quantity += data.Quantity
			existing.UnitPrice = price
			c.Items[key] = existing
		} else {
			c.Items[key] = LineItem{
				ProductID:    data.ProductID,
				VariantID:    data.VariantID,
				Title:        data.Title,
				VariantLabel: data.VariantLabel,
				Image:        data.Image,
				ProductType:  data.ProductType,
				Brand:        data.Brand,
				UnitPrice:    price,
				Quantity:     data.Quantity,
			}
			c.LineOrder = append(c.LineOrder, key)
		}
		// Adding surfaces the cart sidebar
		c.Open = true

	case EventItemRemoved:
		var data ItemRemovedFromCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.removeLine(LineKey(data.ProductID, data.VariantID))

	case EventQuantityUpdated:
		var data CartItemQuantityUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		key := LineKey(data.ProductID, data.VariantID)
		if item, ok := c.Items[key]; ok {
			item.Quantity = data.Quantity
			c.Items[key] = item
		}

	case EventCartCleared:
		var data CartCleared
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.Items = make(map[string]LineItem)
		c.LineOrder = nil
		c.PromoCode = ""
		c.PromoPercent = 0

	case EventCartOpened:
		c.Open = true

	case EventCartClosed:
		// Closing never clears contents
		c.Open = false

	case EventPromoApplied:
		var data PromoCodeApplied
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.PromoCode = data.Code
		c.PromoPercent = data.Percent

	case EventPromoRemoved:
		c.PromoCode = ""
		c.PromoPercent = 0
	}
	c.Version = event.Version
	return nil
}

// Service exposes the cart operations. Every mutation is an event appended
// to the event store; state is rebuilt by replay, with snapshots cutting
// replay cost for long-lived carts.
type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// loadCart loads a cart by replaying events, using snapshot if available
func (s *Service) loadCart(ctx context.Context, cartID string) (*Cart, error) {
	cart := &Cart{Items: make(map[string]LineItem)}

	snapshot, err := s.eventStore.GetSnapshot(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var events []store.Event
	if snapshot != nil {
		if err := json.Unmarshal(snapshot.State, cart); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		events = s.eventStore.GetEventsFromVersion(ctx, cartID, snapshot.Version)
	} else {
		events = s.eventStore.GetEvents(cartID)
	}

	for _, event := range events {
		if err := cart.applyEvent(event); err != nil {
			return nil, fmt.Errorf("failed to apply event: %w", err)
		}
	}

	return cart, nil
}

// Get returns the current cart state for a shopper
func (s *Service) Get(ctx context.Context, shopperID string) (*Cart, error) {
	cart, err := s.loadCart(ctx, CartID(shopperID))
	if err != nil {
		return nil, err
	}
	if cart.ID == "" {
		cart.ID = CartID(shopperID)
		cart.ShopperID = shopperID
	}
	return cart, nil
}

// maybeCreateSnapshot creates a snapshot if the threshold is exceeded
func (s *Service) maybeCreateSnapshot(ctx context.Context, cart *Cart) error {
	if cart.Version > 0 && cart.Version%store.SnapshotThreshold == 0 {
		state, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("failed to marshal cart state: %w", err)
		}

		snapshot := &store.Snapshot{
			AggregateID:   cart.ID,
			AggregateType: AggregateType,
			Version:       cart.Version,
			State:         state,
			CreatedAt:     time.Now(),
		}

		if err := s.eventStore.SaveSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
	}
	return nil
}

// AddItemParams carries the line fields for AddItem
type AddItemParams struct {
	ProductID    string
	VariantID    string
	Title        string
	VariantLabel string
	Image        string
	ProductType  string
	Brand        string
	UnitPrice    decimal.Decimal
	Quantity     int
}

// AddItem appends an ItemAddedToCart event. Adding an already present
// variant increments its quantity on replay instead of duplicating the line.
func (s *Service) AddItem(ctx context.Context, shopperID string, params AddItemParams) error {
	if params.ProductID == "" {
		return ErrInvalidProduct
	}
	if params.VariantID == "" {
		return ErrInvalidVariant
	}
	if params.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if params.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}

	cartID := CartID(shopperID)

	event := ItemAddedToCart{
		CartID:       cartID,
		ShopperID:    shopperID,
		ProductID:    params.ProductID,
		VariantID:    params.VariantID,
		Title:        params.Title,
		VariantLabel: params.VariantLabel,
		Image:        params.Image,
		ProductType:  params.ProductType,
		Brand:        params.Brand,
		UnitPrice:    params.UnitPrice.StringFixed(2),
		Quantity:     params.Quantity,
		AddedAt:      time.Now(),
	}

	return s.append(ctx, cartID, shopperID, EventItemAdded, event)
}

// RemoveItem appends an ItemRemovedFromCart event. Removing an absent line
// is not an error; replay treats it as a no-op.
func (s *Service) RemoveItem(ctx context.Context, shopperID, productID, variantID string) error {
	if productID == "" {
		return ErrInvalidProduct
	}
	if variantID == "" {
		return ErrInvalidVariant
	}

	cartID := CartID(shopperID)

	event := ItemRemovedFromCart{
		CartID:    cartID,
		ShopperID: shopperID,
		ProductID: productID,
		VariantID: variantID,
		RemovedAt: time.Now(),
	}

	return s.append(ctx, cartID, shopperID, EventItemRemoved, event)
}

// UpdateQuantity sets a line's quantity directly. A quantity below one
// removes the line instead of leaving a zero-quantity row.
func (s *Service) UpdateQuantity(ctx context.Context, shopperID, productID, variantID string, quantity int) error {
	if quantity < 1 {
		return s.RemoveItem(ctx, shopperID, productID, variantID)
	}
	if productID == "" {
		return ErrInvalidProduct
	}
	if variantID == "" {
		return ErrInvalidVariant
	}

	cartID := CartID(shopperID)

	event := CartItemQuantityUpdated{
		CartID:    cartID,
		ShopperID: shopperID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
		UpdatedAt: time.Now(),
	}

	return s.append(ctx, cartID, shopperID, EventQuantityUpdated, event)
}

// Clear drops every line and any applied promo
func (s *Service) Clear(ctx context.Context, shopperID string) error {
	cartID := CartID(shopperID)

	event := CartCleared{
		CartID:    cartID,
		ShopperID: shopperID,
		ClearedAt: time.Now(),
	}

	return s.append(ctx, cartID, shopperID, EventCartCleared, event)
}

// Open marks the cart sidebar visible
func (s *Service) Open(ctx context.Context, shopperID string) error {
	cartID := CartID(shopperID)

	event := CartOpened{
		CartID:    cartID,
		ShopperID: shopperID,
		OpenedAt:  time.Now(),
	}

	return s.append(ctx, cartID, shopperID, EventCartOpened, event)
}

// Close hides the cart sidebar without touching its contents
func (s *Service) Close(ctx context.Context, shopperID string) error {
	cartID := CartID(shopperID)

	event := CartClosed{
		CartID:    cartID,
		ShopperID: shopperID,
		ClosedAt:  time.Now(),
	}

	return s.append(ctx, cartID, shopperID, EventCartClosed, event)
}

// ApplyPromo records a validated promo code. The caller resolves the code
// against the promo table first; applying replaces any prior promo.
func (s *Service) ApplyPromo(ctx context.Context, shopperID, code string, percent int) error {
	cartID := CartID(shopperID)

	event := PromoCodeApplied{
		CartID:    cartID,
		ShopperID: shopperID,
		Code:      code,
		Percent:   percent,
		AppliedAt: time.Now(),
	}

	return s.append(ctx, cartID, shopperID, EventPromoApplied, event)
}

// RemovePromo clears the applied promo, if any
func (s *Service) RemovePromo(ctx context.Context, shopperID string) error {
	cartID := CartID(shopperID)

	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		return err
	}
	if cart.PromoCode == "" {
		return ErrNoPromoApplied
	}

	event := PromoCodeRemoved{
		CartID:    cartID,
		ShopperID: shopperID,
		Code:      cart.PromoCode,
		RemovedAt: time.Now(),
	}

	return s.append(ctx, cartID, shopperID, EventPromoRemoved, event)
}

// StartCheckout records a successful handoff to the payment gateway
func (s *Service) StartCheckout(ctx context.Context, shopperID, sessionID, redirectURL string) error {
	cartID := CartID(shopperID)

	event := CheckoutStarted{
		CartID:      cartID,
		ShopperID:   shopperID,
		SessionID:   sessionID,
		RedirectURL: redirectURL,
		StartedAt:   time.Now(),
	}

	return s.append(ctx, cartID, shopperID, EventCheckoutStarted, event)
}

func (s *Service) append(ctx context.Context, cartID, shopperID, eventType string, data any) error {
	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		cart = &Cart{
			ID:        cartID,
			ShopperID: shopperID,
			Items:     make(map[string]LineItem),
		}
	}

	storedEvent, err := s.eventStore.Append(ctx, cartID, AggregateType, eventType, data)
	if err != nil {
		return err
	}

	if storedEvent != nil {
		if err := cart.applyEvent(*storedEvent); err != nil {
			return err
		}
	}

	if err := s.maybeCreateSnapshot(ctx, cart); err != nil {
		log.Printf("[Cart] Failed to create snapshot for cart %s: %v", cart.ID, err)
	}

	return nil
}
