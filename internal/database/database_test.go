package database

import (
	"path/filepath"
	"testing"
	"time"

	"rastreio-produtos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "teste.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func addProduct(t *testing.T, db *DB, userID int64) int64 {
	t.Helper()
	id, err := db.AddTrackedProduct(userID, models.Product{
		URL:          "https://www.trendyol.com/marca/tenis-p-1234567",
		Store:        "Trendyol",
		Size:         "M",
		LastPrice:    100,
		Name:         "Tênis Esportivo",
		WasAvailable: true,
	})
	require.NoError(t, err)
	return id
}

func TestAddAndGetTrackedProduct(t *testing.T) {
	db := newTestDB(t)

	id := addProduct(t, db, 42)
	require.NotZero(t, id)

	p, err := db.GetProductByID(id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.UserID)
	assert.Equal(t, "Trendyol", p.Store)
	assert.Equal(t, "M", p.Size)
	assert.Equal(t, 100.0, p.LastPrice)
	assert.Equal(t, "Tênis Esportivo", p.Name)
	assert.True(t, p.WasAvailable)

	all, err := db.GetAllTrackedProducts()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetUserProducts(t *testing.T) {
	db := newTestDB(t)

	addProduct(t, db, 42)
	addProduct(t, db, 42)
	addProduct(t, db, 99)

	mine, err := db.GetUserProducts(42)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := db.GetUserProducts(7)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateProductPriceRecordsHistory(t *testing.T) {
	db := newTestDB(t)
	id := addProduct(t, db, 42)

	require.NoError(t, db.UpdateProductPrice(id, 80, false))

	p, err := db.GetProductByID(id)
	require.NoError(t, err)
	assert.Equal(t, 80.0, p.LastPrice)
	assert.False(t, p.WasAvailable)
	assert.False(t, p.LastCheck.IsZero())

	// Cada atualização gera exatamente uma entrada no histórico
	history, err := db.GetPriceHistory(id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 80.0, history[0].Price)

	require.NoError(t, db.UpdateProductPrice(id, 75, true))
	history, err = db.GetPriceHistory(id)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Histórico em ordem cronológica
	assert.Equal(t, 80.0, history[0].Price)
	assert.Equal(t, 75.0, history[1].Price)
}

func TestThresholds(t *testing.T) {
	db := newTestDB(t)
	id := addProduct(t, db, 42)

	assert.Error(t, db.AddThreshold(42, id, 0))

	require.NoError(t, db.AddThreshold(42, id, 90))
	require.NoError(t, db.AddThreshold(50, id, 70))

	thresholds, err := db.GetProductThresholds(id)
	require.NoError(t, err)
	require.Len(t, thresholds, 2)
	assert.Equal(t, 90.0, thresholds[0].Price)
	assert.Equal(t, int64(50), thresholds[1].UserID)
}

func TestDeleteProduct(t *testing.T) {
	db := newTestDB(t)
	id := addProduct(t, db, 42)
	require.NoError(t, db.UpdateProductPrice(id, 80, true))
	require.NoError(t, db.AddThreshold(42, id, 90))

	// Outro usuário não consegue remover
	removed, err := db.DeleteProduct(99, id)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = db.DeleteProduct(42, id)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = db.GetProductByID(id)
	assert.Error(t, err)

	// Histórico e limites órfãos são limpos junto
	history, err := db.GetPriceHistory(id)
	require.NoError(t, err)
	assert.Empty(t, history)

	thresholds, err := db.GetProductThresholds(id)
	require.NoError(t, err)
	assert.Empty(t, thresholds)
}

func TestSeededStores(t *testing.T) {
	db := newTestDB(t)

	stores, err := db.GetEnabledStores()
	require.NoError(t, err)
	require.Len(t, stores, 3)
	assert.Equal(t, "Trendyol", stores[0].Name)
	assert.Equal(t, "trendyol.com", stores[0].BaseURL)
	assert.NotEmpty(t, stores[0].Selectors)
}

func TestSetStoreEnabled(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.SetStoreEnabled("Zara", false))

	stores, err := db.GetEnabledStores()
	require.NoError(t, err)
	require.Len(t, stores, 2)
	for _, s := range stores {
		assert.NotEqual(t, "Zara", s.Name)
	}

	require.NoError(t, db.SetStoreEnabled("Zara", true))
	stores, err = db.GetEnabledStores()
	require.NoError(t, err)
	assert.Len(t, stores, 3)
}

func TestStorePrices(t *testing.T) {
	db := newTestDB(t)

	// Sem leitura registrada: nil, sem erro
	price, err := db.GetLatestPrice("tênis", 1)
	require.NoError(t, err)
	assert.Nil(t, price)

	require.NoError(t, db.UpsertStorePrice("tênis", 1, "https://loja/u1", 120, true))

	price, err = db.GetLatestPrice("tênis", 1)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 120.0, price.Price)
	assert.True(t, price.InStock)
	assert.Equal(t, "https://loja/u1", price.URL)

	// Nova leitura substitui a anterior
	require.NoError(t, db.UpsertStorePrice("tênis", 1, "https://loja/u2", 99.9, false))

	price, err = db.GetLatestPrice("tênis", 1)
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 99.9, price.Price)
	assert.False(t, price.InStock)
	assert.Equal(t, "https://loja/u2", price.URL)
}

func TestUserStats(t *testing.T) {
	db := newTestDB(t)

	count, err := db.GetUserRequestCount(42, time.Minute)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, db.UpdateUserStats(42))
	require.NoError(t, db.UpdateUserStats(42))
	require.NoError(t, db.UpdateUserStats(42))

	count, err = db.GetUserRequestCount(42, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Contadores são por usuário
	count, err = db.GetUserRequestCount(99, time.Minute)
	require.NoError(t, err)
	assert.Zero(t, count)
}
