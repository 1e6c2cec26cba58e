package cart

import "time"

const (
	EventItemAdded       = "ItemAddedToCart"
	EventItemRemoved     = "ItemRemovedFromCart"
	EventQuantityUpdated = "CartItemQuantityUpdated"
	EventCartCleared     = "CartCleared"
	EventCartOpened      = "CartOpened"
	EventCartClosed      = "CartClosed"
	EventPromoApplied    = "PromoCodeApplied"
	EventPromoRemoved    = "PromoCodeRemoved"
	EventCheckoutStarted = "CheckoutStarted"
)

// ItemAddedToCart carries a full line snapshot so replays never depend on
// the catalog. UnitPrice is a decimal string ("49.00").
type ItemAddedToCart struct {
	CartID       string    `json:"cart_id"`
	ShopperID    string    `json:"shopper_id"`
	ProductID    string    `json:"product_id"`
	VariantID    string    `json:"variant_id"`
	Title        string    `json:"title"`
	VariantLabel string    `json:"variant_label"`
	Image        string    `json:"image,omitempty"`
	ProductType  string    `json:"product_type,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	UnitPrice    string    `json:"unit_price"`
	Quantity     int       `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}

type ItemRemovedFromCart struct {
	CartID    string    `json:"cart_id"`
	ShopperID string    `json:"shopper_id"`
	ProductID string    `json:"product_id"`
	VariantID string    `json:"variant_id"`
	RemovedAt time.Time `json:"removed_at"`
}

// CartItemQuantityUpdated sets the quantity directly (not additive).
// Only emitted with Quantity >= 1; lower requests become removals.
type CartItemQuantityUpdated struct {
	CartID    string    `json:"cart_id"`
	ShopperID string    `json:"shopper_id"`
	ProductID string    `json:"product_id"`
	VariantID string    `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CartCleared struct {
	CartID    string    `json:"cart_id"`
	ShopperID string    `json:"shopper_id"`
	ClearedAt time.Time `json:"cleared_at"`
}

type CartOpened struct {
	CartID    string    `json:"cart_id"`
	ShopperID string    `json:"shopper_id"`
	OpenedAt  time.Time `json:"opened_at"`
}

type CartClosed struct {
	CartID    string    `json:"cart_id"`
	ShopperID string    `json:"shopper_id"`
	ClosedAt  time.Time `json:"closed_at"`
}

// PromoCodeApplied replaces any previously applied promo.
type PromoCodeApplied struct {
	CartID    string    `json:"cart_id"`
	ShopperID string    `json:"shopper_id"`
	Code      string    `json:"code"`
	Percent   int       `json:"percent"`
	AppliedAt time.Time `json:"applied_at"`
}

type PromoCodeRemoved struct {
	CartID    string    `json:"cart_id"`
	ShopperID string    `json:"shopper_id"`
	Code      string    `json:"code"`
	RemovedAt time.Time `json:"removed_at"`
}

// CheckoutStarted records a successful handoff to the payment gateway.
// The cart is not cleared; payment completion happens outside this system.
type CheckoutStarted struct {
	CartID      string    `json:"cart_id"`
	ShopperID   string    `json:"shopper_id"`
	SessionID   string    `json:"session_id"`
	RedirectURL string    `json:"redirect_url"`
	StartedAt   time.Time `json:"started_at"`
}
