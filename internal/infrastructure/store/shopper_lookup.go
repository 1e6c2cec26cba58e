package store

import (
	"strings"

	"github.com/example/storefront/internal/readmodel"
)

// ShopperDirectory is the read-side lookup surface the auth flow needs on
// top of the generic collections
type ShopperDirectory interface {
	GetShopperByEmail(email string) (*readmodel.ShopperReadModel, bool)
	DeleteSessionsByShopperID(shopperID string) error
}

// GetShopperByEmail finds a shopper by email, case-insensitively
func (rs *ReadStore) GetShopperByEmail(email string) (*readmodel.ShopperReadModel, bool) {
	items, err := rs.GetAll("shoppers")
	if err != nil {
		return nil, false
	}
	for _, item := range items {
		if s, ok := item.(*readmodel.ShopperReadModel); ok && strings.EqualFold(s.Email, email) {
			return s, true
		}
	}
	return nil, false
}

// DeleteSessionsByShopperID removes every session belonging to a shopper
func (rs *ReadStore) DeleteSessionsByShopperID(shopperID string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	sessions := rs.data["sessions"]
	for id, item := range sessions {
		if s, ok := item.(*readmodel.SessionReadModel); ok && s.ShopperID == shopperID {
			delete(sessions, id)
		}
	}
	return nil
}

// GetShopperByEmail finds a shopper by email, case-insensitively
func (rs *PostgresReadStore) GetShopperByEmail(email string) (*readmodel.ShopperReadModel, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	var s readmodel.ShopperReadModel
	err := rs.db.QueryRow(`
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM read_shoppers WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&s.ID, &s.Email, &s.PasswordHash, &s.Name, &s.Role, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, false
	}
	return &s, true
}

// DeleteSessionsByShopperID removes every session belonging to a shopper
func (rs *PostgresReadStore) DeleteSessionsByShopperID(shopperID string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	_, err := rs.db.Exec("DELETE FROM shopper_sessions WHERE shopper_id = $1", shopperID)
	return err
}
