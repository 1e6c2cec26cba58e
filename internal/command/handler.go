package command

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/promo"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/readmodel"
)

// Handler validates commands against the read models and dispatches them
// to the aggregate services. The catalog read model is the price authority:
// cart lines are always priced from the projected product, never from
// client input.
type Handler struct {
	productSvc  *product.Service
	cartSvc     *cart.Service
	checkoutSvc *checkout.Service
	promoTable  promo.Table
	readStore   store.ReadStoreInterface
}

func NewHandler(
	productSvc *product.Service,
	cartSvc *cart.Service,
	checkoutSvc *checkout.Service,
	promoTable promo.Table,
	readStore store.ReadStoreInterface,
) *Handler {
	return &Handler{
		productSvc:  productSvc,
		cartSvc:     cartSvc,
		checkoutSvc: checkoutSvc,
		promoTable:  promoTable,
		readStore:   readStore,
	}
}

// CreateProduct creates a new product (read model updates async via Kafka)
func (h *Handler) CreateProduct(ctx context.Context, cmd CreateProduct) (*product.Product, error) {
	return h.productSvc.Create(ctx, cmd.Title, cmd.Brand, cmd.ProductType, cmd.Description, cmd.BasePrice, cmd.Variants)
}

func (h *Handler) UpdateProduct(ctx context.Context, cmd UpdateProduct) error {
	return h.productSvc.Update(ctx, cmd.ProductID, cmd.Title, cmd.Brand, cmd.ProductType, cmd.Description, cmd.BasePrice, cmd.Variants)
}

func (h *Handler) DeleteProduct(ctx context.Context, cmd DeleteProduct) error {
	return h.productSvc.Delete(ctx, cmd.ProductID)
}

func (h *Handler) UpdateProductImage(ctx context.Context, cmd UpdateProductImage) error {
	return h.productSvc.UpdateImage(ctx, cmd.ProductID, cmd.ImageURL)
}

// AddToCart resolves the variant's price from the catalog and appends an
// ItemAddedToCart event
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) error {
	prod, err := h.getProduct(cmd.ProductID)
	if err != nil {
		return err
	}

	label, price, err := resolveVariant(prod, cmd.VariantID)
	if err != nil {
		return err
	}

	unitPrice, err := decimal.NewFromString(price)
	if err != nil {
		return product.ErrInvalidPrice
	}

	return h.cartSvc.AddItem(ctx, cmd.ShopperID, cart.AddItemParams{
		ProductID:    cmd.ProductID,
		VariantID:    cmd.VariantID,
		Title:        prod.Title,
		VariantLabel: label,
		Image:        prod.ImageURL,
		ProductType:  prod.ProductType,
		Brand:        prod.Brand,
		UnitPrice:    unitPrice,
		Quantity:     cmd.Quantity,
	})
}

func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) error {
	return h.cartSvc.RemoveItem(ctx, cmd.ShopperID, cmd.ProductID, cmd.VariantID)
}

// UpdateCartQuantity sets a line's quantity; the cart service turns a
// quantity below one into a removal
func (h *Handler) UpdateCartQuantity(ctx context.Context, cmd UpdateCartQuantity) error {
	return h.cartSvc.UpdateQuantity(ctx, cmd.ShopperID, cmd.ProductID, cmd.VariantID, cmd.Quantity)
}

func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) error {
	return h.cartSvc.Clear(ctx, cmd.ShopperID)
}

func (h *Handler) OpenCart(ctx context.Context, cmd OpenCart) error {
	return h.cartSvc.Open(ctx, cmd.ShopperID)
}

func (h *Handler) CloseCart(ctx context.Context, cmd CloseCart) error {
	return h.cartSvc.Close(ctx, cmd.ShopperID)
}

// ApplyPromo evaluates the code against the promo table and, when it
// resolves, records it on the cart. Applying a second code replaces the
// first; discounts never stack.
func (h *Handler) ApplyPromo(ctx context.Context, cmd ApplyPromo) (int, error) {
	percent, err := promo.Evaluate(h.promoTable, cmd.Code)
	if err != nil {
		return 0, err
	}

	if err := h.cartSvc.ApplyPromo(ctx, cmd.ShopperID, promo.Normalize(cmd.Code), percent); err != nil {
		return 0, err
	}
	return percent, nil
}

func (h *Handler) RemovePromo(ctx context.Context, cmd RemovePromo) error {
	return h.cartSvc.RemovePromo(ctx, cmd.ShopperID)
}

// Checkout loads the cart from the event store and hands it off to the
// payment gateway. On success a CheckoutStarted event is recorded and the
// gateway's redirect URL returned; the cart itself is left intact.
func (h *Handler) Checkout(ctx context.Context, cmd Checkout) (*checkout.Session, error) {
	c, err := h.cartSvc.Get(ctx, cmd.ShopperID)
	if err != nil {
		return nil, err
	}

	session, err := h.checkoutSvc.Handoff(ctx, c)
	if err != nil {
		return nil, err
	}

	if err := h.cartSvc.StartCheckout(ctx, cmd.ShopperID, session.ID, session.URL); err != nil {
		// The gateway already accepted; the shopper still gets the
		// redirect even if the audit event could not be appended
		log.Printf("[Command] Failed to record checkout start for %s: %v", c.ID, err)
	}

	return session, nil
}

func (h *Handler) getProduct(productID string) (*readmodel.ProductReadModel, error) {
	p, ok, err := h.readStore.Get("products", productID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return p.(*readmodel.ProductReadModel), nil
}

// resolveVariant returns the label and price for the requested variant.
// Products without variants sell at their base price under any variant id
// the client supplies.
func resolveVariant(p *readmodel.ProductReadModel, variantID string) (label, price string, err error) {
	if variantID == "" {
		return "", "", cart.ErrInvalidVariant
	}
	if len(p.Variants) == 0 {
		return "", p.BasePrice, nil
	}
	for _, v := range p.Variants {
		if v.VariantID == variantID {
			return v.Label, v.Price, nil
		}
	}
	return "", "", product.ErrVariantNotFound
}
