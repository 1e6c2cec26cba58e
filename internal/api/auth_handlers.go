package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain/shopper"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/readmodel"
)

// hashToken creates a SHA-256 hash of the token for storage; the raw
// refresh token only ever lives in the shopper's cookie
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// SessionStore is the read store surface the auth handlers need
type SessionStore interface {
	store.ReadStoreInterface
	store.ShopperDirectory
}

// AuthHandlers handles registration, login and token refresh
type AuthHandlers struct {
	shopperService *shopper.Service
	jwtService     *auth.JWTService
	readStore      SessionStore
}

func NewAuthHandlers(shopperService *shopper.Service, jwtService *auth.JWTService, readStore SessionStore) *AuthHandlers {
	return &AuthHandlers{
		shopperService: shopperService,
		jwtService:     jwtService,
		readStore:      readStore,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Shopper ShopperResponse `json:"shopper"`
	Message string          `json:"message,omitempty"`
}

type ShopperResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Register handles shopper registration
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, exists := h.readStore.GetShopperByEmail(req.Email); exists {
		respondJSONError(w, "Email already registered", http.StatusConflict)
		return
	}

	newShopper, err := h.shopperService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if err == auth.ErrPasswordTooShort {
			respondJSONError(w, "Password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.setAuthCookies(w, newShopper.ID, newShopper.Email, newShopper.Role, r)

	respondJSON(w, http.StatusCreated, AuthResponse{
		Shopper: ShopperResponse{
			ID:        newShopper.ID,
			Email:     newShopper.Email,
			Name:      newShopper.Name,
			Role:      newShopper.Role,
			CreatedAt: newShopper.CreatedAt,
		},
		Message: "Registration successful",
	})
}

// Login handles shopper login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	shopperModel, exists := h.readStore.GetShopperByEmail(req.Email)
	if !exists {
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if !auth.CheckPassword(req.Password, shopperModel.PasswordHash) {
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	sessionID := h.setAuthCookies(w, shopperModel.ID, shopperModel.Email, shopperModel.Role, r)

	// Best effort; login succeeds even if the audit event fails
	_ = h.shopperService.RecordLogin(r.Context(), shopperModel.ID, sessionID)

	respondJSON(w, http.StatusOK, AuthResponse{
		Shopper: ShopperResponse{
			ID:        shopperModel.ID,
			Email:     shopperModel.Email,
			Name:      shopperModel.Name,
			Role:      shopperModel.Role,
			CreatedAt: shopperModel.CreatedAt,
		},
		Message: "Login successful",
	})
}

// Logout handles shopper logout
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetShopperFromContext(r.Context())
	if ok {
		sessionID := ""
		if cookie, err := r.Cookie("session_id"); err == nil {
			sessionID = cookie.Value
		}
		_ = h.shopperService.RecordLogout(r.Context(), claims.ShopperID, sessionID)
		_ = h.readStore.DeleteSessionsByShopperID(claims.ShopperID)
	}

	h.clearAuthCookies(w)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logout successful",
	})
}

// Refresh rotates the refresh token and session
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshCookie, err := r.Cookie("refresh_token")
	if err != nil {
		respondJSONError(w, "No refresh token", http.StatusUnauthorized)
		return
	}

	sessionCookie, err := r.Cookie("session_id")
	if err != nil {
		h.clearAuthCookies(w)
		respondJSONError(w, "No session", http.StatusUnauthorized)
		return
	}

	shopperID, err := h.jwtService.ValidateRefreshToken(refreshCookie.Value)
	if err != nil {
		h.clearAuthCookies(w)
		respondJSONError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	sessionData, exists, err := h.readStore.Get("sessions", sessionCookie.Value)
	if err != nil || !exists {
		h.clearAuthCookies(w)
		respondJSONError(w, "Session not found", http.StatusUnauthorized)
		return
	}

	session := sessionData.(*readmodel.SessionReadModel)

	if time.Now().After(session.ExpiresAt) {
		_ = h.readStore.Delete("sessions", sessionCookie.Value)
		h.clearAuthCookies(w)
		respondJSONError(w, "Session expired", http.StatusUnauthorized)
		return
	}

	if hashToken(refreshCookie.Value) != session.RefreshTokenHash {
		h.clearAuthCookies(w)
		respondJSONError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	shopperData, exists, err := h.readStore.Get("shoppers", shopperID)
	if err != nil || !exists {
		h.clearAuthCookies(w)
		respondJSONError(w, "Shopper not found", http.StatusUnauthorized)
		return
	}

	shopperModel := shopperData.(*readmodel.ShopperReadModel)

	// Old session is replaced, not reused
	_ = h.readStore.Delete("sessions", sessionCookie.Value)

	h.setAuthCookies(w, shopperModel.ID, shopperModel.Email, shopperModel.Role, r)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Token refreshed",
	})
}

// Me returns the authenticated shopper's profile
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetShopperFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	shopperData, exists, err := h.readStore.Get("shoppers", claims.ShopperID)
	if err != nil || !exists {
		respondJSONError(w, "Shopper not found", http.StatusNotFound)
		return
	}

	shopperModel := shopperData.(*readmodel.ShopperReadModel)

	respondJSON(w, http.StatusOK, ShopperResponse{
		ID:        shopperModel.ID,
		Email:     shopperModel.Email,
		Name:      shopperModel.Name,
		Role:      shopperModel.Role,
		CreatedAt: shopperModel.CreatedAt,
	})
}

// Helper methods

func (h *AuthHandlers) setAuthCookies(w http.ResponseWriter, shopperID, email, role string, r *http.Request) string {
	accessToken, accessExpiry, _ := h.jwtService.GenerateAccessToken(shopperID, email, role)
	refreshToken, refreshExpiry, _ := h.jwtService.GenerateRefreshToken(shopperID)

	sessionID := uuid.New().String()

	_ = h.readStore.Set("sessions", sessionID, &readmodel.SessionReadModel{
		ID:               sessionID,
		ShopperID:        shopperID,
		RefreshTokenHash: hashToken(refreshToken),
		ExpiresAt:        refreshExpiry,
		CreatedAt:        time.Now(),
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		Expires:  accessExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/auth/refresh",
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    sessionID,
		Path:     "/",
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	return sessionID
}

func (h *AuthHandlers) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/auth/refresh",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
