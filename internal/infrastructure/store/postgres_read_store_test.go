package store

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/readmodel"
)

func newMockReadStore(t *testing.T) (*PostgresReadStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresReadStore(db), mock
}

func TestPostgresReadStore_SetCart(t *testing.T) {
	rs, mock := newMockReadStore(t)

	cart := &readmodel.CartReadModel{
		ID:        "cart-shopper-123",
		ShopperID: "shopper-123",
		Items: []readmodel.CartLineReadModel{
			{ProductID: "prod-1", VariantID: "var-50ml", Title: "Amber Noir", VariantLabel: "50ml", UnitPrice: "49.00", Quantity: 2},
		},
		PromoCode:    "SAVE15",
		PromoPercent: 15,
		Open:         true,
		Version:      7,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO read_carts")).
		WithArgs("cart-shopper-123", "shopper-123", sqlmock.AnyArg(), "SAVE15", 15, true, 7, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, rs.Set("carts", cart.ID, cart))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReadStore_GetCart(t *testing.T) {
	rs, mock := newMockReadStore(t)

	itemsJSON := []byte(`[{"product_id":"prod-1","variant_id":"var-50ml","title":"Amber Noir","variant_label":"50ml","unit_price":"49.00","quantity":2}]`)
	mock.ExpectQuery(regexp.QuoteMeta("FROM read_carts WHERE id = $1")).
		WithArgs("cart-shopper-123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "shopper_id", "items", "promo_code", "promo_percent", "open", "version", "updated_at"}).
			AddRow("cart-shopper-123", "shopper-123", itemsJSON, "SAVE15", 15, true, 7, time.Now()))

	got, found, err := rs.Get("carts", "cart-shopper-123")

	require.NoError(t, err)
	require.True(t, found)
	cart := got.(*readmodel.CartReadModel)
	assert.Equal(t, "shopper-123", cart.ShopperID)
	assert.Equal(t, "SAVE15", cart.PromoCode)
	assert.Equal(t, 15, cart.PromoPercent)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "49.00", cart.Items[0].UnitPrice)
}

func TestPostgresReadStore_GetCart_NotFound(t *testing.T) {
	rs, mock := newMockReadStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM read_carts WHERE id = $1")).
		WithArgs("cart-missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, found, err := rs.Get("carts", "cart-missing")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestPostgresReadStore_SetProduct(t *testing.T) {
	rs, mock := newMockReadStore(t)

	product := &readmodel.ProductReadModel{
		ID:          "prod-1",
		Title:       "Amber Noir",
		Brand:       "Maison Test",
		ProductType: "eau de parfum",
		BasePrice:   "49.00",
		Variants: []readmodel.ProductVariantReadModel{
			{VariantID: "var-50ml", Label: "50ml", Price: "49.00"},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO read_products")).
		WithArgs("prod-1", "Amber Noir", "Maison Test", "eau de parfum", "", "", "49.00",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, rs.Set("products", product.ID, product))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReadStore_GetAllProducts(t *testing.T) {
	rs, mock := newMockReadStore(t)

	now := time.Now()
	variantsJSON := []byte(`[{"variant_id":"var-50ml","label":"50ml","price":"49.00"}]`)
	mock.ExpectQuery(regexp.QuoteMeta("FROM read_products")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "brand", "product_type", "description", "image_url", "base_price", "variants", "created_at", "updated_at"}).
			AddRow("prod-1", "Amber Noir", "Maison Test", "eau de parfum", "", "", "49.00", variantsJSON, now, now).
			AddRow("prod-2", "Cedar Veil", "Maison Test", "eau de toilette", "", "", "39.00", []byte(`[]`), now, now))

	products, err := rs.GetAll("products")

	require.NoError(t, err)
	require.Len(t, products, 2)
	first := products[0].(*readmodel.ProductReadModel)
	assert.Equal(t, "Amber Noir", first.Title)
	require.Len(t, first.Variants, 1)
	assert.Equal(t, "50ml", first.Variants[0].Label)
}

func TestPostgresReadStore_ShopperRoundTrip(t *testing.T) {
	rs, mock := newMockReadStore(t)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO read_shoppers")).
		WithArgs("shopper-1", "a@example.com", "hash", "Alex", "customer", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, rs.Set("shoppers", "shopper-1", &readmodel.ShopperReadModel{
		ID: "shopper-1", Email: "a@example.com", PasswordHash: "hash", Name: "Alex", Role: "customer",
		CreatedAt: now, UpdatedAt: now,
	}))

	mock.ExpectQuery(regexp.QuoteMeta("FROM read_shoppers WHERE id = $1")).
		WithArgs("shopper-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "created_at", "updated_at"}).
			AddRow("shopper-1", "a@example.com", "hash", "Alex", "customer", now, now))

	got, found, err := rs.Get("shoppers", "shopper-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Alex", got.(*readmodel.ShopperReadModel).Name)
}

func TestPostgresReadStore_Delete(t *testing.T) {
	rs, mock := newMockReadStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM read_products WHERE id = $1")).
		WithArgs("prod-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, rs.Delete("products", "prod-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReadStore_Update(t *testing.T) {
	rs, mock := newMockReadStore(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM read_carts WHERE id = $1")).
		WithArgs("cart-shopper-123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "shopper_id", "items", "promo_code", "promo_percent", "open", "version", "updated_at"}).
			AddRow("cart-shopper-123", "shopper-123", []byte(`[]`), "", 0, true, 3, now))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO read_carts")).
		WithArgs("cart-shopper-123", "shopper-123", sqlmock.AnyArg(), "WELCOME10", 10, true, 4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := rs.Update("carts", "cart-shopper-123", func(current any) any {
		cart := current.(*readmodel.CartReadModel)
		cart.PromoCode = "WELCOME10"
		cart.PromoPercent = 10
		cart.Version = 4
		return cart
	})

	require.NoError(t, err)
	assert.True(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReadStore_Update_NotFound(t *testing.T) {
	rs, mock := newMockReadStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM read_carts WHERE id = $1")).
		WithArgs("cart-missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	updated, err := rs.Update("carts", "cart-missing", func(current any) any { return current })

	require.NoError(t, err)
	assert.False(t, updated)
}

func TestPostgresReadStore_GetShopperByEmail(t *testing.T) {
	rs, mock := newMockReadStore(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(email) = LOWER($1)")).
		WithArgs("Alex@Example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "role", "created_at", "updated_at"}).
			AddRow("shopper-1", "alex@example.com", "hash", "Alex", "customer", now, now))

	shopper, found := rs.GetShopperByEmail("Alex@Example.com")

	require.True(t, found)
	assert.Equal(t, "shopper-1", shopper.ID)
}

func TestPostgresReadStore_DeleteSessionsByShopperID(t *testing.T) {
	rs, mock := newMockReadStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM shopper_sessions WHERE shopper_id = $1")).
		WithArgs("shopper-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, rs.DeleteSessionsByShopperID("shopper-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresReadStore_UnknownCollection(t *testing.T) {
	rs, _ := newMockReadStore(t)

	_, _, err := rs.Get("orders", "o-1")
	assert.Error(t, err)

	err = rs.Set("orders", "o-1", nil)
	assert.Error(t, err)

	_, err = rs.GetAll("orders")
	assert.Error(t, err)
}
