package api

import (
	"log"
	"net/http"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
)

// NewRouter wires the HTTP routes. Shopping routes take an optional JWT so
// guests keep their carts via the X-Shopper-ID header; catalog writes
// require the admin role.
func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, jwtService *auth.JWTService) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.AuthMiddleware(jwtService)
	optionalAuth := middleware.OptionalAuthMiddleware(jwtService)
	requireAdmin := func(next http.Handler) http.Handler {
		return requireAuth(middleware.RequireRole("admin")(next))
	}

	// Auth
	mux.HandleFunc("/auth/register", postOnly(authHandlers.Register))
	mux.HandleFunc("/auth/login", postOnly(authHandlers.Login))
	mux.HandleFunc("/auth/refresh", postOnly(authHandlers.Refresh))
	mux.Handle("/auth/logout", optionalAuth(http.HandlerFunc(postOnly(authHandlers.Logout))))
	mux.Handle("/auth/me", requireAuth(http.HandlerFunc(authHandlers.Me)))

	// Products
	mux.Handle("/products", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetProducts(w, r)
		case http.MethodPost:
			requireAdmin(http.HandlerFunc(handlers.CreateProduct)).ServeHTTP(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	mux.Handle("/products/", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetProduct(w, r)
		case http.MethodPut:
			requireAdmin(http.HandlerFunc(handlers.UpdateProduct)).ServeHTTP(w, r)
		case http.MethodDelete:
			requireAdmin(http.HandlerFunc(handlers.DeleteProduct)).ServeHTTP(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	// Cart
	mux.Handle("/cart", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetCart(w, r)
		case http.MethodDelete:
			handlers.ClearCart(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	mux.Handle("/cart/open", optionalAuth(http.HandlerFunc(postOnly(handlers.OpenCart))))
	mux.Handle("/cart/close", optionalAuth(http.HandlerFunc(postOnly(handlers.CloseCart))))

	mux.Handle("/cart/items", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.AddToCart(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	mux.Handle("/cart/items/", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			handlers.UpdateCartItem(w, r)
		case http.MethodDelete:
			handlers.RemoveFromCart(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	// Promo
	mux.Handle("/cart/promo", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlers.ApplyPromo(w, r)
		case http.MethodDelete:
			handlers.RemovePromo(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	// Checkout
	mux.Handle("/checkout", optionalAuth(http.HandlerFunc(postOnly(handlers.Checkout))))

	// Recommendations
	mux.Handle("/recommendations", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetRecommendations(w, r)
		default:
			methodNotAllowed(w)
		}
	})))

	return withLogging(mux)
}

func postOnly(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		handler(w, r)
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	respondJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
