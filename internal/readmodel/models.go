package readmodel

import "time"

// ProductVariantReadModel is one purchasable configuration of a product
type ProductVariantReadModel struct {
	VariantID string `json:"variant_id"`
	Label     string `json:"label"`
	Price     string `json:"price"` // decimal string, e.g. "49.00"
}

// ProductReadModel is the read model for catalog products
type ProductReadModel struct {
	ID          string                    `json:"id"`
	Title       string                    `json:"title"`
	Brand       string                    `json:"brand"`
	ProductType string                    `json:"product_type"`
	Description string                    `json:"description"`
	ImageURL    string                    `json:"image_url,omitempty"`
	BasePrice   string                    `json:"base_price"`
	Variants    []ProductVariantReadModel `json:"variants,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// CartLineReadModel is one line of a shopper's cart.
// Lines are keyed by product+variant and kept in insertion order.
type CartLineReadModel struct {
	ProductID    string `json:"product_id"`
	VariantID    string `json:"variant_id"`
	Title        string `json:"title"`
	VariantLabel string `json:"variant_label"`
	Image        string `json:"image,omitempty"`
	ProductType  string `json:"product_type,omitempty"`
	Brand        string `json:"brand,omitempty"`
	UnitPrice    string `json:"unit_price"` // decimal string
	Quantity     int    `json:"quantity"`
}

// CartReadModel is the read model for a shopper's cart
type CartReadModel struct {
	ID           string              `json:"id"`
	ShopperID    string              `json:"shopper_id"`
	Items        []CartLineReadModel `json:"items"`
	PromoCode    string              `json:"promo_code,omitempty"`
	PromoPercent int                 `json:"promo_percent"`
	Open         bool                `json:"open"`
	Version      int                 `json:"version"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ShopperReadModel is the read model for shopper accounts
type ShopperReadModel struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionReadModel is the read model for refresh token sessions
type SessionReadModel struct {
	ID               string    `json:"id"`
	ShopperID        string    `json:"shopper_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}
