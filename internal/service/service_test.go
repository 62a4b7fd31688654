package service_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Chetan2520/RathWale-Backend/internal/auth"
	"github.com/Chetan2520/RathWale-Backend/internal/model"
	"github.com/Chetan2520/RathWale-Backend/internal/repository/sqlite"
	"github.com/Chetan2520/RathWale-Backend/internal/service"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(context.Background(), filepath.Join(t.TempDir(), "app.db"), discard)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func setupAuth(t *testing.T, store *sqlite.Store) (*service.AuthService, *auth.TokenIssuer) {
	t.Helper()
	hasher := auth.NewHasher(2, bcrypt.MinCost)
	t.Cleanup(hasher.Close)
	tokens := auth.NewTokenIssuer([]byte("test-secret"), time.Hour)
	return service.NewAuthService(store.Users(), hasher, tokens, discard), tokens
}

func register(t *testing.T, svc *service.AuthService, name string) uuid.UUID {
	t.Helper()
	_, user, err := svc.Register(context.Background(), name, "secret1")
	require.NoError(t, err)
	return user.ID
}

func item(name, price string, qty int) model.Item {
	return model.Item{Name: name, Price: decimal.RequireFromString(price), Quantity: qty}
}

func bookingInput(items ...model.Item) service.EntryInput {
	return service.EntryInput{
		CustomerName: "Asha",
		BookingDate:  time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		Items:        items,
	}
}

func TestEntryService_CreateComputesTotal(t *testing.T) {
	store := setupStore(t)
	authSvc, _ := setupAuth(t, store)
	svc := service.NewEntryService(store.Entries(), discard)
	ctx := context.Background()
	owner := register(t, authSvc, "alice")

	entry, err := svc.Create(ctx, owner, bookingInput(item("Chair", "500", 2), item("Table", "1500", 1)))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, owner, entry.Owner)
	assert.Equal(t, "2500", entry.Total.String())

	got, err := svc.Get(ctx, entry.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "2500", got.Total.String())
	assert.True(t, entry.CreatedAt.Equal(got.CreatedAt))
}

func TestEntryService_EmptyItemsTotalZero(t *testing.T) {
	store := setupStore(t)
	authSvc, _ := setupAuth(t, store)
	svc := service.NewEntryService(store.Entries(), discard)
	owner := register(t, authSvc, "alice")

	entry, err := svc.Create(context.Background(), owner, bookingInput())
	require.NoError(t, err)
	assert.True(t, entry.Total.IsZero())
	assert.Empty(t, entry.Items)
}

func TestEntryService_UpdateRecomputesAndIsIdempotent(t *testing.T) {
	store := setupStore(t)
	authSvc, _ := setupAuth(t, store)
	svc := service.NewEntryService(store.Entries(), discard)
	ctx := context.Background()
	owner := register(t, authSvc, "alice")

	entry, err := svc.Create(ctx, owner, bookingInput(item("Chair", "500", 2)))
	require.NoError(t, err)

	in := bookingInput(item("Desk", "800", 3), item("Lamp", "99.99", 1))
	first, err := svc.Update(ctx, entry.ID, owner, in)
	require.NoError(t, err)
	assert.Equal(t, "2499.99", first.Total.String())

	second, err := svc.Update(ctx, entry.ID, owner, in)
	require.NoError(t, err)
	assert.Equal(t, first.Total.String(), second.Total.String())
	assert.True(t, entry.CreatedAt.Equal(second.CreatedAt))

	got, err := svc.Get(ctx, entry.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "2499.99", got.Total.String())
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Desk", got.Items[0].Name)
	assert.Equal(t, owner, got.Owner)
}

func TestEntryService_OtherOwnerSeesNothing(t *testing.T) {
	store := setupStore(t)
	authSvc, _ := setupAuth(t, store)
	svc := service.NewEntryService(store.Entries(), discard)
	ctx := context.Background()
	alice := register(t, authSvc, "alice")
	bob := register(t, authSvc, "bob")

	entry, err := svc.Create(ctx, alice, bookingInput(item("Chair", "500", 2)))
	require.NoError(t, err)

	_, err = svc.Get(ctx, entry.ID, bob)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.Update(ctx, entry.ID, bob, bookingInput())
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, entry.ID, bob), model.ErrNotFound)

	list, err := svc.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1000", list[0].Total.String())
}

func TestEntryService_Delete(t *testing.T) {
	store := setupStore(t)
	authSvc, _ := setupAuth(t, store)
	svc := service.NewEntryService(store.Entries(), discard)
	ctx := context.Background()
	owner := register(t, authSvc, "alice")

	entry, err := svc.Create(ctx, owner, bookingInput(item("Chair", "500", 2)))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, entry.ID, owner))
	_, err = svc.Get(ctx, entry.ID, owner)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, entry.ID, owner), model.ErrNotFound)
}

func TestEntryService_InputItemsAreCopied(t *testing.T) {
	store := setupStore(t)
	authSvc, _ := setupAuth(t, store)
	svc := service.NewEntryService(store.Entries(), discard)
	owner := register(t, authSvc, "alice")

	in := bookingInput(item("Chair", "500", 2))
	entry, err := svc.Create(context.Background(), owner, in)
	require.NoError(t, err)

	in.Items[0].Quantity = 100
	assert.Equal(t, 2, entry.Items[0].Quantity)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	store := setupStore(t)
	svc, tokens := setupAuth(t, store)
	ctx := context.Background()

	token, user, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	id, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	token, loggedIn, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)

	me, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
}

func TestAuthService_DuplicateUsername(t *testing.T) {
	store := setupStore(t)
	svc, _ := setupAuth(t, store)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "alice", "other-secret")
	assert.ErrorIs(t, err, model.ErrUsernameTaken)
}

func TestAuthService_InvalidCredentials(t *testing.T) {
	store := setupStore(t)
	svc, _ := setupAuth(t, store)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}
