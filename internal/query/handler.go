package query

import (
	"log"

	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/pricing"
	"github.com/example/storefront/internal/readmodel"
)

// CartView is a cart read model paired with its computed pricing quote
type CartView struct {
	Cart  *readmodel.CartReadModel `json:"cart"`
	Quote pricing.Quote            `json:"quote"`
}

type Handler struct {
	readStore             store.ReadStoreInterface
	freeShippingThreshold decimal.Decimal
}

func NewHandler(readStore store.ReadStoreInterface, freeShippingThreshold decimal.Decimal) *Handler {
	if freeShippingThreshold.LessThanOrEqual(decimal.Zero) {
		freeShippingThreshold = pricing.DefaultFreeShippingThreshold
	}
	return &Handler{readStore: readStore, freeShippingThreshold: freeShippingThreshold}
}

// Products
func (h *Handler) GetProduct(id string) (*readmodel.ProductReadModel, bool) {
	data, ok, err := h.readStore.Get("products", id)
	if err != nil {
		log.Printf("[Query] Error getting product %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*readmodel.ProductReadModel), true
}

func (h *Handler) ListProducts() []*readmodel.ProductReadModel {
	items, err := h.readStore.GetAll("products")
	if err != nil {
		log.Printf("[Query] Error listing products: %v", err)
		return nil
	}
	products := make([]*readmodel.ProductReadModel, 0, len(items))
	for _, item := range items {
		products = append(products, item.(*readmodel.ProductReadModel))
	}
	return products
}

// GetCart returns the shopper's cart with its pricing quote. A shopper who
// has never touched their cart gets an empty one rather than a miss.
func (h *Handler) GetCart(shopperID string) *CartView {
	cartID := cart.CartID(shopperID)
	data, ok, err := h.readStore.Get("carts", cartID)
	if err != nil {
		log.Printf("[Query] Error getting cart %s: %v", cartID, err)
		ok = false
	}

	var c *readmodel.CartReadModel
	if ok {
		c = data.(*readmodel.CartReadModel)
	} else {
		c = &readmodel.CartReadModel{
			ID:        cartID,
			ShopperID: shopperID,
			Items:     []readmodel.CartLineReadModel{},
		}
	}

	return &CartView{
		Cart:  c,
		Quote: pricing.Compute(c.Items, c.PromoPercent, h.freeShippingThreshold),
	}
}

// Shoppers
func (h *Handler) GetShopper(id string) (*readmodel.ShopperReadModel, bool) {
	data, ok, err := h.readStore.Get("shoppers", id)
	if err != nil {
		log.Printf("[Query] Error getting shopper %s: %v", id, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return data.(*readmodel.ShopperReadModel), true
}
