package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/command"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/promo"
	"github.com/example/storefront/internal/query"
	"github.com/example/storefront/internal/recommend"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	picker       *recommend.Picker
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, picker *recommend.Picker) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		picker:       picker,
	}
}

// Product Handlers

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateProduct
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.cmdHandler.CreateProduct(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListProducts())
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, ok := h.queryHandler.GetProduct(id)
	if !ok {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	var cmd command.UpdateProduct
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.ProductID = id

	if err := h.cmdHandler.UpdateProduct(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Product updated"})
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	if err := h.cmdHandler.DeleteProduct(r.Context(), command.DeleteProduct{ProductID: id}); err != nil {
		respondCommandError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	shopperID := getShopperID(r)
	respondJSON(w, http.StatusOK, h.queryHandler.GetCart(shopperID))
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	shopperID := getShopperID(r)

	var req struct {
		ProductID string `json:"product_id"`
		VariantID string `json:"variant_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cmd := command.AddToCart{
		ShopperID: shopperID,
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	}
	if err := h.cmdHandler.AddToCart(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.queryHandler.GetCart(shopperID))
}

// UpdateCartItem sets a line's quantity. A quantity below one removes the
// line, matching what DELETE on the same path would do.
func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	shopperID := getShopperID(r)
	productID, variantID, ok := extractLineParams(r.URL.Path)
	if !ok {
		respondJSONError(w, "Missing product or variant id", http.StatusBadRequest)
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.UpdateCartQuantity{
		ShopperID: shopperID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  req.Quantity,
	}
	if err := h.cmdHandler.UpdateCartQuantity(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.queryHandler.GetCart(shopperID))
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	shopperID := getShopperID(r)
	productID, variantID, ok := extractLineParams(r.URL.Path)
	if !ok {
		respondJSONError(w, "Missing product or variant id", http.StatusBadRequest)
		return
	}

	cmd := command.RemoveFromCart{
		ShopperID: shopperID,
		ProductID: productID,
		VariantID: variantID,
	}
	if err := h.cmdHandler.RemoveFromCart(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.queryHandler.GetCart(shopperID))
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	shopperID := getShopperID(r)
	if err := h.cmdHandler.ClearCart(r.Context(), command.ClearCart{ShopperID: shopperID}); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.queryHandler.GetCart(shopperID))
}

func (h *Handlers) OpenCart(w http.ResponseWriter, r *http.Request) {
	shopperID := getShopperID(r)
	if err := h.cmdHandler.OpenCart(r.Context(), command.OpenCart{ShopperID: shopperID}); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) CloseCart(w http.ResponseWriter, r *http.Request) {
	shopperID := getShopperID(r)
	if err := h.cmdHandler.CloseCart(r.Context(), command.CloseCart{ShopperID: shopperID}); err != nil {
		respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Promo Handlers

func (h *Handlers) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	shopperID := getShopperID(r)

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.ApplyPromo{ShopperID: shopperID, Code: req.Code}
	if _, err := h.cmdHandler.ApplyPromo(r.Context(), cmd); err != nil {
		respondCommandError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.queryHandler.GetCart(shopperID))
}

func (h *Handlers) RemovePromo(w http.ResponseWriter, r *http.Request) {
	shopperID := getShopperID(r)
	if err := h.cmdHandler.RemovePromo(r.Context(), command.RemovePromo{ShopperID: shopperID}); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.queryHandler.GetCart(shopperID))
}

// Checkout Handler

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	shopperID := getShopperID(r)

	session, err := h.cmdHandler.Checkout(r.Context(), command.Checkout{ShopperID: shopperID})
	if err != nil {
		respondCommandError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": session.URL})
}

// Recommendations Handler

// GetRecommendations is best-effort: a cart or catalog problem yields an
// empty list, never an error status
func (h *Handlers) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	shopperID := getShopperID(r)

	view := h.queryHandler.GetCart(shopperID)
	suggestions := h.picker.ForCart(view.Cart, 4)
	if suggestions == nil {
		suggestions = []recommend.Suggestion{}
	}

	respondJSON(w, http.StatusOK, suggestions)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondCommandError maps domain errors onto HTTP statuses
func respondCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, promo.ErrUnknownCode):
		respondJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, checkout.ErrCheckoutInFlight):
		respondJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, checkout.ErrEmptyCart):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, checkout.ErrNoRedirectURL), errors.Is(err, checkout.ErrSessionRejected):
		respondJSONError(w, "Checkout is unavailable, please try again", http.StatusBadGateway)
	case errors.Is(err, product.ErrProductNotFound), errors.Is(err, product.ErrVariantNotFound):
		respondJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, cart.ErrInvalidVariant),
		errors.Is(err, cart.ErrNegativePrice),
		errors.Is(err, cart.ErrNoPromoApplied),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidTitle):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// extractLineParams parses /cart/items/{productID}/{variantID}
func extractLineParams(path string) (productID, variantID string, ok bool) {
	rest := strings.TrimPrefix(path, "/cart/items/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// getShopperID extracts the shopper ID from JWT context or falls back to
// the X-Shopper-ID header for unauthenticated carts
func getShopperID(r *http.Request) string {
	if shopperID := middleware.GetShopperID(r.Context()); shopperID != "" {
		return shopperID
	}
	if shopperID := r.Header.Get("X-Shopper-ID"); shopperID != "" {
		return shopperID
	}
	return "guest"
}
