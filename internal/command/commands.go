package command

import "github.com/example/storefront/internal/domain/product"

// Product Commands
type CreateProduct struct {
	Title       string                `json:"title"`
	Brand       string                `json:"brand"`
	ProductType string                `json:"product_type"`
	Description string                `json:"description"`
	BasePrice   string                `json:"base_price"`
	Variants    []product.VariantSpec `json:"variants,omitempty"`
}

type UpdateProduct struct {
	ProductID   string                `json:"product_id"`
	Title       string                `json:"title"`
	Brand       string                `json:"brand"`
	ProductType string                `json:"product_type"`
	Description string                `json:"description"`
	BasePrice   string                `json:"base_price"`
	Variants    []product.VariantSpec `json:"variants,omitempty"`
}

type DeleteProduct struct {
	ProductID string `json:"product_id"`
}

type UpdateProductImage struct {
	ProductID string `json:"product_id"`
	ImageURL  string `json:"image_url"`
}

// Cart Commands
type AddToCart struct {
	ShopperID string `json:"shopper_id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type RemoveFromCart struct {
	ShopperID string `json:"shopper_id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
}

// UpdateCartQuantity sets a line's quantity. A quantity below one removes
// the line instead.
type UpdateCartQuantity struct {
	ShopperID string `json:"shopper_id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type ClearCart struct {
	ShopperID string `json:"shopper_id"`
}

type OpenCart struct {
	ShopperID string `json:"shopper_id"`
}

type CloseCart struct {
	ShopperID string `json:"shopper_id"`
}

// Promo Commands
type ApplyPromo struct {
	ShopperID string `json:"shopper_id"`
	Code      string `json:"code"`
}

type RemovePromo struct {
	ShopperID string `json:"shopper_id"`
}

// Checkout Command
type Checkout struct {
	ShopperID string `json:"shopper_id"`
}
