package projection

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/shopper"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/readmodel"
)

// Projector consumes the event stream and maintains the read models.
// It is the only writer of the carts/products/shoppers collections, so the
// read side never observes a cart whose totals disagree with its lines.
type Projector struct {
	readStore store.ReadStoreInterface
}

func NewProjector(readStore store.ReadStoreInterface) *Projector {
	return &Projector{readStore: readStore}
}

func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}

	log.Printf("[Projector] Received event: %s (aggregate: %s)", event.EventType, event.AggregateType)

	switch event.AggregateType {
	case product.AggregateType:
		return p.handleProductEvent(event)
	case cart.AggregateType:
		return p.handleCartEvent(event)
	case shopper.AggregateType:
		return p.handleShopperEvent(event)
	}

	return nil
}

func (p *Projector) handleProductEvent(event store.Event) error {
	switch event.EventType {
	case product.EventProductCreated:
		var e product.ProductCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set("products", e.ProductID, &readmodel.ProductReadModel{
			ID:          e.ProductID,
			Title:       e.Title,
			Brand:       e.Brand,
			ProductType: e.ProductType,
			Description: e.Description,
			BasePrice:   e.BasePrice,
			Variants:    toVariantReadModels(e.Variants),
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.CreatedAt,
		})

	case product.EventProductUpdated:
		var e product.ProductUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("products", e.ProductID, func(current any) any {
			prod := current.(*readmodel.ProductReadModel)
			prod.Title = e.Title
			prod.Brand = e.Brand
			prod.ProductType = e.ProductType
			prod.Description = e.Description
			prod.BasePrice = e.BasePrice
			prod.Variants = toVariantReadModels(e.Variants)
			prod.UpdatedAt = e.UpdatedAt
			return prod
		})
		return err

	case product.EventProductDeleted:
		var e product.ProductDeleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Delete("products", e.ProductID)

	case product.EventProductImageUpdated:
		var e product.ProductImageUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("products", e.ProductID, func(current any) any {
			prod := current.(*readmodel.ProductReadModel)
			prod.ImageURL = e.ImageURL
			prod.UpdatedAt = e.UpdatedAt
			return prod
		})
		return err
	}

	return nil
}

func toVariantReadModels(specs []product.VariantSpec) []readmodel.ProductVariantReadModel {
	if len(specs) == 0 {
		return nil
	}
	variants := make([]readmodel.ProductVariantReadModel, len(specs))
	for i, v := range specs {
		variants[i] = readmodel.ProductVariantReadModel{
			VariantID: v.VariantID,
			Label:     v.Label,
			Price:     v.Price,
		}
	}
	return variants
}

func (p *Projector) handleCartEvent(event store.Event) error {
	switch event.EventType {
	case cart.EventItemAdded:
		var e cart.ItemAddedToCart
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateCart(e.CartID, e.ShopperID, event.Version, func(c *readmodel.CartReadModel) {
			for i, line := range c.Items {
				if line.ProductID == e.ProductID && line.VariantID == e.VariantID {
					c.Items[i].Quantity += e.Quantity
					c.Items[i].UnitPrice = e.UnitPrice
					c.Open = true
					return
				}
			}
			c.Items = append(c.Items, readmodel.CartLineReadModel{
				ProductID:    e.ProductID,
				VariantID:    e.VariantID,
				Title:        e.Title,
				VariantLabel: e.VariantLabel,
				Image:        e.Image,
				ProductType:  e.ProductType,
				Brand:        e.Brand,
				UnitPrice:    e.UnitPrice,
				Quantity:     e.Quantity,
			})
			c.Open = true
		})

	case cart.EventItemRemoved:
		var e cart.ItemRemovedFromCart
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateCart(e.CartID, e.ShopperID, event.Version, func(c *readmodel.CartReadModel) {
			for i, line := range c.Items {
				if line.ProductID == e.ProductID && line.VariantID == e.VariantID {
					c.Items = append(c.Items[:i], c.Items[i+1:]...)
					return
				}
			}
		})

	case cart.EventQuantityUpdated:
		var e cart.CartItemQuantityUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateCart(e.CartID, e.ShopperID, event.Version, func(c *readmodel.CartReadModel) {
			for i, line := range c.Items {
				if line.ProductID == e.ProductID && line.VariantID == e.VariantID {
					c.Items[i].Quantity = e.Quantity
					return
				}
			}
		})

	case cart.EventCartCleared:
		var e cart.CartCleared
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateCart(e.CartID, e.ShopperID, event.Version, func(c *readmodel.CartReadModel) {
			c.Items = []readmodel.CartLineReadModel{}
			c.PromoCode = ""
			c.PromoPercent = 0
		})

	case cart.EventCartOpened:
		var e cart.CartOpened
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateCart(e.CartID, e.ShopperID, event.Version, func(c *readmodel.CartReadModel) {
			c.Open = true
		})

	case cart.EventCartClosed:
		var e cart.CartClosed
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateCart(e.CartID, e.ShopperID, event.Version, func(c *readmodel.CartReadModel) {
			c.Open = false
		})

	case cart.EventPromoApplied:
		var e cart.PromoCodeApplied
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateCart(e.CartID, e.ShopperID, event.Version, func(c *readmodel.CartReadModel) {
			c.PromoCode = e.Code
			c.PromoPercent = e.Percent
		})

	case cart.EventPromoRemoved:
		var e cart.PromoCodeRemoved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.updateCart(e.CartID, e.ShopperID, event.Version, func(c *readmodel.CartReadModel) {
			c.PromoCode = ""
			c.PromoPercent = 0
		})

	case cart.EventCheckoutStarted:
		var e cart.CheckoutStarted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		// Nothing to project; the cart stays intact until payment
		// completes outside this system
		return p.updateCart(e.CartID, e.ShopperID, event.Version, func(c *readmodel.CartReadModel) {})
	}

	return nil
}

// updateCart applies fn to the cart read model, creating it first if the
// cart has never been projected
func (p *Projector) updateCart(cartID, shopperID string, version int, fn func(c *readmodel.CartReadModel)) error {
	current, ok, err := p.readStore.Get("carts", cartID)
	if err != nil {
		return err
	}

	var c *readmodel.CartReadModel
	if ok {
		c = current.(*readmodel.CartReadModel)
	} else {
		c = &readmodel.CartReadModel{
			ID:        cartID,
			ShopperID: shopperID,
			Items:     []readmodel.CartLineReadModel{},
		}
	}

	fn(c)
	c.Version = version
	return p.readStore.Set("carts", cartID, c)
}

func (p *Projector) handleShopperEvent(event store.Event) error {
	switch event.EventType {
	case shopper.EventShopperRegistered:
		var e shopper.ShopperRegistered
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		return p.readStore.Set("shoppers", e.ShopperID, &readmodel.ShopperReadModel{
			ID:           e.ShopperID,
			Email:        e.Email,
			PasswordHash: e.PasswordHash,
			Name:         e.Name,
			Role:         e.Role,
			CreatedAt:    e.CreatedAt,
			UpdatedAt:    e.CreatedAt,
		})

	case shopper.EventShopperUpdated:
		var e shopper.ShopperUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		_, err := p.readStore.Update("shoppers", e.ShopperID, func(current any) any {
			s := current.(*readmodel.ShopperReadModel)
			s.Name = e.Name
			s.UpdatedAt = e.UpdatedAt
			return s
		})
		return err
	}

	// Login/logout events are audit trail only
	return nil
}
