package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/storefront/internal/readmodel"
)

// PostgresReadStore implements ReadStoreInterface using PostgreSQL
type PostgresReadStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewPostgresReadStore creates a new PostgreSQL-based read store
func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

var errUnknownCollection = errors.New("unknown collection")

// Set stores a read model
func (rs *PostgresReadStore) Set(collection, id string, data any) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	switch collection {
	case "products":
		return rs.setProduct(data.(*readmodel.ProductReadModel))
	case "carts":
		return rs.setCart(data.(*readmodel.CartReadModel))
	case "shoppers":
		return rs.setShopper(data.(*readmodel.ShopperReadModel))
	case "sessions":
		return rs.setSession(data.(*readmodel.SessionReadModel))
	}
	return fmt.Errorf("%w: %s", errUnknownCollection, collection)
}

// Get retrieves a read model by id
func (rs *PostgresReadStore) Get(collection, id string) (any, bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.get(collection, id)
}

func (rs *PostgresReadStore) get(collection, id string) (any, bool, error) {
	switch collection {
	case "products":
		return rs.getProduct(id)
	case "carts":
		return rs.getCart(id)
	case "shoppers":
		return rs.getShopper(id)
	case "sessions":
		return rs.getSession(id)
	}
	return nil, false, fmt.Errorf("%w: %s", errUnknownCollection, collection)
}

// GetAll retrieves all items in a collection
func (rs *PostgresReadStore) GetAll(collection string) ([]any, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	switch collection {
	case "products":
		return rs.getAllProducts()
	case "carts":
		return rs.getAllCarts()
	case "shoppers":
		return rs.getAllShoppers()
	}
	return nil, fmt.Errorf("%w: %s", errUnknownCollection, collection)
}

// Delete removes a read model
func (rs *PostgresReadStore) Delete(collection, id string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var tableName string
	switch collection {
	case "products":
		tableName = "read_products"
	case "carts":
		tableName = "read_carts"
	case "shoppers":
		tableName = "read_shoppers"
	case "sessions":
		tableName = "shopper_sessions"
	default:
		return fmt.Errorf("%w: %s", errUnknownCollection, collection)
	}

	_, err := rs.db.Exec("DELETE FROM "+tableName+" WHERE id = $1", id)
	return err
}

// Update modifies a read model using an update function
func (rs *PostgresReadStore) Update(collection, id string, updateFn func(current any) any) (bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	current, found, err := rs.get(collection, id)
	if err != nil || !found {
		return false, err
	}

	updated := updateFn(current)

	switch collection {
	case "products":
		err = rs.setProduct(updated.(*readmodel.ProductReadModel))
	case "carts":
		err = rs.setCart(updated.(*readmodel.CartReadModel))
	case "shoppers":
		err = rs.setShopper(updated.(*readmodel.ShopperReadModel))
	case "sessions":
		err = rs.setSession(updated.(*readmodel.SessionReadModel))
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Product operations

func (rs *PostgresReadStore) setProduct(p *readmodel.ProductReadModel) error {
	variantsJSON, err := json.Marshal(p.Variants)
	if err != nil {
		return err
	}
	_, err = rs.db.Exec(`
		INSERT INTO read_products (id, title, brand, product_type, description, image_url, base_price, variants, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			brand = EXCLUDED.brand,
			product_type = EXCLUDED.product_type,
			description = EXCLUDED.description,
			image_url = EXCLUDED.image_url,
			base_price = EXCLUDED.base_price,
			variants = EXCLUDED.variants,
			updated_at = EXCLUDED.updated_at
	`, p.ID, p.Title, p.Brand, p.ProductType, p.Description, p.ImageURL, p.BasePrice, variantsJSON, p.CreatedAt, p.UpdatedAt)
	return err
}

func (rs *PostgresReadStore) getProduct(id string) (any, bool, error) {
	var p readmodel.ProductReadModel
	var variantsJSON []byte
	err := rs.db.QueryRow(`
		SELECT id, title, brand, product_type, description, image_url, base_price, variants, created_at, updated_at
		FROM read_products WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Brand, &p.ProductType, &p.Description, &p.ImageURL, &p.BasePrice, &variantsJSON, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(variantsJSON, &p.Variants); err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

func (rs *PostgresReadStore) getAllProducts() ([]any, error) {
	rows, err := rs.db.Query(`
		SELECT id, title, brand, product_type, description, image_url, base_price, variants, created_at, updated_at
		FROM read_products ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []any
	for rows.Next() {
		var p readmodel.ProductReadModel
		var variantsJSON []byte
		if err := rows.Scan(&p.ID, &p.Title, &p.Brand, &p.ProductType, &p.Description, &p.ImageURL, &p.BasePrice, &variantsJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
			continue
		}
		if err := json.Unmarshal(variantsJSON, &p.Variants); err != nil {
			continue
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

// Cart operations

func (rs *PostgresReadStore) setCart(c *readmodel.CartReadModel) error {
	itemsJSON, err := json.Marshal(c.Items)
	if err != nil {
		return err
	}
	_, err = rs.db.Exec(`
		INSERT INTO read_carts (id, shopper_id, items, promo_code, promo_percent, open, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			items = EXCLUDED.items,
			promo_code = EXCLUDED.promo_code,
			promo_percent = EXCLUDED.promo_percent,
			open = EXCLUDED.open,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
	`, c.ID, c.ShopperID, itemsJSON, c.PromoCode, c.PromoPercent, c.Open, c.Version, time.Now())
	return err
}

func (rs *PostgresReadStore) getCart(id string) (any, bool, error) {
	var c readmodel.CartReadModel
	var itemsJSON []byte
	err := rs.db.QueryRow(`
		SELECT id, shopper_id, items, promo_code, promo_percent, open, version, updated_at
		FROM read_carts WHERE id = $1
	`, id).Scan(&c.ID, &c.ShopperID, &itemsJSON, &c.PromoCode, &c.PromoPercent, &c.Open, &c.Version, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
		return nil, false, err
	}
	return &c, true, nil
}

func (rs *PostgresReadStore) getAllCarts() ([]any, error) {
	rows, err := rs.db.Query(`
		SELECT id, shopper_id, items, promo_code, promo_percent, open, version, updated_at
		FROM read_carts ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var carts []any
	for rows.Next() {
		var c readmodel.CartReadModel
		var itemsJSON []byte
		if err := rows.Scan(&c.ID, &c.ShopperID, &itemsJSON, &c.PromoCode, &c.PromoPercent, &c.Open, &c.Version, &c.UpdatedAt); err != nil {
			continue
		}
		if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
			continue
		}
		carts = append(carts, &c)
	}
	return carts, rows.Err()
}

// Shopper operations

func (rs *PostgresReadStore) setShopper(s *readmodel.ShopperReadModel) error {
	_, err := rs.db.Exec(`
		INSERT INTO read_shoppers (id, email, password_hash, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at
	`, s.ID, s.Email, s.PasswordHash, s.Name, s.Role, s.CreatedAt, s.UpdatedAt)
	return err
}

func (rs *PostgresReadStore) getShopper(id string) (any, bool, error) {
	var s readmodel.ShopperReadModel
	err := rs.db.QueryRow(`
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM read_shoppers WHERE id = $1
	`, id).Scan(&s.ID, &s.Email, &s.PasswordHash, &s.Name, &s.Role, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &s, true, nil
}

func (rs *PostgresReadStore) getAllShoppers() ([]any, error) {
	rows, err := rs.db.Query(`
		SELECT id, email, password_hash, name, role, created_at, updated_at
		FROM read_shoppers ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shoppers []any
	for rows.Next() {
		var s readmodel.ShopperReadModel
		if err := rows.Scan(&s.ID, &s.Email, &s.PasswordHash, &s.Name, &s.Role, &s.CreatedAt, &s.UpdatedAt); err != nil {
			continue
		}
		shoppers = append(shoppers, &s)
	}
	return shoppers, rows.Err()
}

// Session operations

func (rs *PostgresReadStore) setSession(s *readmodel.SessionReadModel) error {
	_, err := rs.db.Exec(`
		INSERT INTO shopper_sessions (id, shopper_id, refresh_token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			refresh_token_hash = EXCLUDED.refresh_token_hash,
			expires_at = EXCLUDED.expires_at
	`, s.ID, s.ShopperID, s.RefreshTokenHash, s.ExpiresAt, s.CreatedAt)
	return err
}

func (rs *PostgresReadStore) getSession(id string) (any, bool, error) {
	var s readmodel.SessionReadModel
	err := rs.db.QueryRow(`
		SELECT id, shopper_id, refresh_token_hash, expires_at, created_at
		FROM shopper_sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.ShopperID, &s.RefreshTokenHash, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &s, true, nil
}
