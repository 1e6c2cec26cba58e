package product

import "time"

const (
	EventProductCreated      = "ProductCreated"
	EventProductUpdated      = "ProductUpdated"
	EventProductDeleted      = "ProductDeleted"
	EventProductImageUpdated = "ProductImageUpdated"
)

// VariantSpec names one purchasable configuration. Price is a decimal string.
type VariantSpec struct {
	VariantID string `json:"variant_id"`
	Label     string `json:"label"`
	Price     string `json:"price"`
}

type ProductCreated struct {
	ProductID   string        `json:"product_id"`
	Title       string        `json:"title"`
	Brand       string        `json:"brand"`
	ProductType string        `json:"product_type"`
	Description string        `json:"description"`
	BasePrice   string        `json:"base_price"`
	Variants    []VariantSpec `json:"variants,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

type ProductUpdated struct {
	ProductID   string        `json:"product_id"`
	Title       string        `json:"title"`
	Brand       string        `json:"brand"`
	ProductType string        `json:"product_type"`
	Description string        `json:"description"`
	BasePrice   string        `json:"base_price"`
	Variants    []VariantSpec `json:"variants,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type ProductDeleted struct {
	ProductID string    `json:"product_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type ProductImageUpdated struct {
	ProductID string    `json:"product_id"`
	ImageURL  string    `json:"image_url"`
	UpdatedAt time.Time `json:"updated_at"`
}
