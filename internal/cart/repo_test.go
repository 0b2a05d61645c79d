package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gostorefront/shop-api/internal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("shop_test"),
		tcpostgres.WithUsername("app"),
		tcpostgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, postgres.Migrate(dsn))

	db, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return db, cleanup
}

func seedUserAndProduct(t *testing.T, db *pgxpool.Pool, stock int) (userID, productID string) {
	t.Helper()
	ctx := context.Background()

	userID = uuid.NewString()
	productID = uuid.NewString()
	_, err := db.Exec(ctx, `INSERT INTO users(id, email, name) VALUES ($1, $2, 'Test User')`,
		userID, userID+"@example.com")
	require.NoError(t, err)
	_, err = db.Exec(ctx, `INSERT INTO products(id, name, category, price_cents) VALUES ($1, 'T-Shirt Design 1', 'SHIRT', 700)`,
		productID)
	require.NoError(t, err)
	_, err = db.Exec(ctx, `INSERT INTO inventory(product_id, quantity) VALUES ($1, $2)`,
		productID, stock)
	require.NoError(t, err)
	return userID, productID
}

func TestAddItem_CreatesCartAndIncrementsOnRepeat(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := &Repo{DB: db}
	ctx := context.Background()

	userID, productID := seedUserAndProduct(t, db, 25)

	it, err := repo.AddItem(ctx, userID, productID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, it.Qty)

	// re-adding the same product increments, never duplicates the row
	it, err = repo.AddItem(ctx, userID, productID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, it.Qty)

	c, err := repo.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Qty)
	assert.Equal(t, 700, c.Items[0].PriceCents)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := &Repo{DB: db}

	userID, _ := seedUserAndProduct(t, db, 25)

	_, err := repo.AddItem(context.Background(), userID, uuid.NewString(), 1)
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestAddItem_OutOfStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := &Repo{DB: db}

	userID, productID := seedUserAndProduct(t, db, 0)

	_, err := repo.AddItem(context.Background(), userID, productID, 1)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestGetCart_NoCartYet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := &Repo{DB: db}

	userID, _ := seedUserAndProduct(t, db, 25)

	c, err := repo.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestRemoveAndClear(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := &Repo{DB: db}
	ctx := context.Background()

	userID, productID := seedUserAndProduct(t, db, 25)

	_, err := repo.AddItem(ctx, userID, productID, 2)
	require.NoError(t, err)

	require.NoError(t, repo.RemoveItem(ctx, userID, productID))
	c, err := repo.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	_, err = repo.AddItem(ctx, userID, productID, 1)
	require.NoError(t, err)
	require.NoError(t, repo.ClearCart(ctx, userID))
	c, err = repo.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}
