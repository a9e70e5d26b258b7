package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bossnova23/shopify-tracker/internal/database"
	"github.com/bossnova23/shopify-tracker/internal/models"
)

// These tests run against a disposable PostgreSQL database named by
// TEST_DATABASE_URL. Its stores, products and themes tables are truncated.
func newPostgresRepo(t *testing.T) *Repository {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, `TRUNCATE products, stores, themes RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return New(db)
}

func TestPostgresSchemaIsIdempotent(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()

	again, err := database.NewPostgres(ctx, os.Getenv("TEST_DATABASE_URL"))
	require.NoError(t, err)
	defer again.Close()

	assert.Equal(t, database.Postgres, again.Dialect)
	for _, table := range []string{"stores", "products", "themes"} {
		var name string
		err := again.QueryRowContext(ctx, again.Rebind(
			`SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?`),
			table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	require.NoError(t, repo.Ping(ctx))
}

func TestPostgresStoresAndProducts(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()

	store := createStore(t, repo, "pg.myshopify.com")
	assert.Equal(t, int64(1), store.ID)
	assert.Equal(t, store.ID, createStore(t, repo, "pg.myshopify.com").ID)

	product := fakeProduct(store.ID)
	err := repo.WithRetry(ctx, DefaultRetryPolicy, func(ctx context.Context, tx *Tx) error {
		return tx.CreateProduct(ctx, product)
	})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)

	again := *product
	again.ID = 0
	err = repo.WithRetry(ctx, DefaultRetryPolicy, func(ctx context.Context, tx *Tx) error {
		return tx.CreateProduct(ctx, &again)
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	found, err := repo.FindProduct(ctx, "pg.myshopify.com", product.Handle)
	require.NoError(t, err)
	assert.Equal(t, product, found)

	products, err := repo.GetProductsByStore(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Product{*product}, products)

	_, err = repo.GetStoreByDomain(ctx, "missing.myshopify.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresUniqueViolationIsNotTransient(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()
	createStore(t, repo, "dup.myshopify.com")

	attempts := 0
	err := repo.WithRetry(ctx, DefaultRetryPolicy, func(ctx context.Context, tx *Tx) error {
		attempts++
		_, err := tx.tx.ExecContext(ctx, tx.db.Rebind(`INSERT INTO stores (domain, track_start) VALUES (?, ?)`),
			"dup.myshopify.com", "10-15-26")
		return err
	})

	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsTransient(err))
	assert.Equal(t, 1, attempts)
}

func TestPostgresRecentThemes(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		theme := &models.Theme{
			Name:           "Modern Theme",
			Style:          "modern",
			PrimaryColor:   "#e55b5b",
			SecondaryColor: "#68cc66",
			AccentColor:    "#4c53ff",
			FontPrimary:    "Roboto",
			FontSecondary:  "Lato",
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateTheme(ctx, theme))
		assert.Equal(t, int64(i+1), theme.ID)
	}

	themes, err := repo.GetRecentThemes(ctx, 10)
	require.NoError(t, err)
	require.Len(t, themes, 10)
	assert.Equal(t, int64(12), themes[0].ID)
	assert.True(t, themes[0].CreatedAt.Equal(base.Add(11*time.Minute)))
	assert.Equal(t, int64(3), themes[9].ID)
	assert.Empty(t, themes[0].PreviewData)
}

func TestPostgresRollbackOnError(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.WithRetry(ctx, DefaultRetryPolicy, func(ctx context.Context, tx *Tx) error {
		if _, err := tx.GetOrCreateStore(ctx, "rolled.myshopify.com", "10-15-26"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetStoreByDomain(ctx, "rolled.myshopify.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
