package product

import (
	"context"
	"errors"
	"time"

	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateType = "Product"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
	ErrInvalidPrice    = errors.New("price must be a positive decimal")
	ErrInvalidTitle    = errors.New("title is required")
)

type Product struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Brand       string        `json:"brand"`
	ProductType string        `json:"product_type"`
	Description string        `json:"description"`
	BasePrice   string        `json:"base_price"`
	Variants    []VariantSpec `json:"variants,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func validatePrice(price string) error {
	d, err := decimal.NewFromString(price)
	if err != nil || !d.IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}

func validateVariants(variants []VariantSpec) error {
	for _, v := range variants {
		if err := validatePrice(v.Price); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, title, brand, productType, description, basePrice string, variants []VariantSpec) (*Product, error) {
	if title == "" {
		return nil, ErrInvalidTitle
	}
	if err := validatePrice(basePrice); err != nil {
		return nil, err
	}
	if err := validateVariants(variants); err != nil {
		return nil, err
	}

	productID := uuid.New().String()
	now := time.Now()

	event := ProductCreated{
		ProductID:   productID,
		Title:       title,
		Brand:       brand,
		ProductType: productType,
		Description: description,
		BasePrice:   basePrice,
		Variants:    variants,
		CreatedAt:   now,
	}

	_, err := s.eventStore.Append(ctx, productID, AggregateType, EventProductCreated, event)
	if err != nil {
		return nil, err
	}

	return &Product{
		ID:          productID,
		Title:       title,
		Brand:       brand,
		ProductType: productType,
		Description: description,
		BasePrice:   basePrice,
		Variants:    variants,
		CreatedAt:   now,
	}, nil
}

func (s *Service) Update(ctx context.Context, productID, title, brand, productType, description, basePrice string, variants []VariantSpec) error {
	if title == "" {
		return ErrInvalidTitle
	}
	if err := validatePrice(basePrice); err != nil {
		return err
	}
	if err := validateVariants(variants); err != nil {
		return err
	}

	events := s.eventStore.GetEvents(productID)
	if len(events) == 0 {
		return ErrProductNotFound
	}

	event := ProductUpdated{
		ProductID:   productID,
		Title:       title,
		Brand:       brand,
		ProductType: productType,
		Description: description,
		BasePrice:   basePrice,
		Variants:    variants,
		UpdatedAt:   time.Now(),
	}

	_, err := s.eventStore.Append(ctx, productID, AggregateType, EventProductUpdated, event)
	return err
}

func (s *Service) Delete(ctx context.Context, productID string) error {
	events := s.eventStore.GetEvents(productID)
	if len(events) == 0 {
		return ErrProductNotFound
	}

	event := ProductDeleted{
		ProductID: productID,
		DeletedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, productID, AggregateType, EventProductDeleted, event)
	return err
}

func (s *Service) UpdateImage(ctx context.Context, productID, imageURL string) error {
	events := s.eventStore.GetEvents(productID)
	if len(events) == 0 {
		return ErrProductNotFound
	}

	event := ProductImageUpdated{
		ProductID: productID,
		ImageURL:  imageURL,
		UpdatedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, productID, AggregateType, EventProductImageUpdated, event)
	return err
}
