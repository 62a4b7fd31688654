package repository_test

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chetan2520/RathWale-Backend/internal/migrations"
	"github.com/Chetan2520/RathWale-Backend/internal/model"
	"github.com/Chetan2520/RathWale-Backend/internal/repository"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" || strings.HasPrefix(dbURL, "sqlite://") {
		t.Skip("DATABASE_URL does not point at PostgreSQL")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err, "connect to database")
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx), "ping database")

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()
	_, err = migrations.Up(ctx, sqlDB, migrations.Postgres)
	require.NoError(t, err)

	// entries and entry_items go with users through ON DELETE CASCADE
	_, err = pool.Exec(ctx, "TRUNCATE TABLE users CASCADE")
	require.NoError(t, err)

	return pool
}

func createUser(t *testing.T, users *repository.UserRepository, name string) *model.User {
	t.Helper()
	u := &model.User{ID: uuid.New(), Username: name, PasswordHash: "hash"}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func newEntry(owner uuid.UUID, items ...model.Item) *model.Entry {
	return &model.Entry{
		ID:           uuid.New(),
		Owner:        owner,
		CustomerName: "Asha",
		BookingDate:  time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		Items:        items,
		Total:        model.ComputeTotal(items),
	}
}

func TestUserRepository_Integration(t *testing.T) {
	pool := setupTestDB(t)
	users := repository.NewUserRepository(pool)
	ctx := context.Background()

	u := createUser(t, users, "alice")
	assert.False(t, u.CreatedAt.IsZero())

	byName, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byID, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	err = users.Create(ctx, &model.User{ID: uuid.New(), Username: "alice", PasswordHash: "x"})
	assert.ErrorIs(t, err, model.ErrUsernameTaken)

	_, err = users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEntryRepository_Integration(t *testing.T) {
	pool := setupTestDB(t)
	users := repository.NewUserRepository(pool)
	entries := repository.NewEntryRepository(pool)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	e := newEntry(alice.ID,
		model.Item{Name: "Chair", Price: decimal.RequireFromString("500.50"), Quantity: 2},
		model.Item{Name: "Table", Price: decimal.NewFromInt(1500), Quantity: 1},
	)
	require.NoError(t, entries.Create(ctx, e))

	got, err := entries.GetByIDAndOwner(ctx, e.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "2501", got.Total.String())
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Chair", got.Items[0].Name)
	assert.Equal(t, "500.5", got.Items[0].Price.String())
	assert.Equal(t, e.BookingDate, got.BookingDate)

	_, err = entries.GetByIDAndOwner(ctx, e.ID, bob.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	list, err := entries.ListByOwner(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	foreign := *e
	foreign.Owner = bob.ID
	assert.ErrorIs(t, entries.UpdateByIDAndOwner(ctx, &foreign), model.ErrNotFound)

	e.Items = []model.Item{{Name: "Desk", Price: decimal.NewFromInt(800), Quantity: 3}}
	e.Total = model.ComputeTotal(e.Items)
	require.NoError(t, entries.UpdateByIDAndOwner(ctx, e))

	list, err = entries.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2400", list[0].Total.String())
	assert.Equal(t, "Desk", list[0].Items[0].Name)

	assert.ErrorIs(t, entries.DeleteByIDAndOwner(ctx, e.ID, bob.ID), model.ErrNotFound)
	require.NoError(t, entries.DeleteByIDAndOwner(ctx, e.ID, alice.ID))
	assert.ErrorIs(t, entries.DeleteByIDAndOwner(ctx, e.ID, alice.ID), model.ErrNotFound)
}

func TestEntryRepository_ConcurrentUpdates(t *testing.T) {
	pool := setupTestDB(t)
	users := repository.NewUserRepository(pool)
	entries := repository.NewEntryRepository(pool)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	e := newEntry(alice.ID, model.Item{Name: "Chair", Price: decimal.NewFromInt(10), Quantity: 1})
	require.NoError(t, entries.Create(ctx, e))

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(qty int) {
			defer wg.Done()
			update := *e
			update.Items = []model.Item{{Name: "Chair", Price: decimal.NewFromInt(10), Quantity: qty}}
			update.Total = model.ComputeTotal(update.Items)
			assert.NoError(t, entries.UpdateByIDAndOwner(ctx, &update))
		}(i)
	}
	wg.Wait()

	got, err := entries.GetByIDAndOwner(ctx, e.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Total.Equal(model.ComputeTotal(got.Items)), "total must match the surviving items")
}
