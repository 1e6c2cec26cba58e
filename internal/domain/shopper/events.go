package shopper

import "time"

const (
	EventShopperRegistered = "ShopperRegistered"
	EventShopperLoggedIn   = "ShopperLoggedIn"
	EventShopperLoggedOut  = "ShopperLoggedOut"
	EventShopperUpdated    = "ShopperUpdated"
)

// ShopperRegistered is emitted when a new shopper account is created
type ShopperRegistered struct {
	ShopperID    string    `json:"shopper_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// ShopperLoggedIn is emitted on successful login
type ShopperLoggedIn struct {
	ShopperID string    `json:"shopper_id"`
	SessionID string    `json:"session_id"`
	LoggedAt  time.Time `json:"logged_at"`
}

// ShopperLoggedOut is emitted on logout
type ShopperLoggedOut struct {
	ShopperID string    `json:"shopper_id"`
	SessionID string    `json:"session_id"`
	LoggedAt  time.Time `json:"logged_at"`
}

// ShopperUpdated is emitted when profile details change
type ShopperUpdated struct {
	ShopperID string    `json:"shopper_id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}
