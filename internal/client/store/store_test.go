package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCart() *domain.Cart {
	cart := domain.NewCart()
	cart.AddItem(domain.CartLine{
		ProductID: "acuvue-oasys",
		PlanType:  domain.PlanSingle,
		Name:      "Acuvue Oasys",
		UnitPrice: decimal.RequireFromString("29.90"),
	}, 2)
	cart.Version = 3
	return cart
}

func sampleWishlist() *domain.Wishlist {
	w := domain.NewWishlist()
	w.Add(domain.WishlistItem{ProductID: "biofinity", Name: "Biofinity", Price: decimal.RequireFromString("24.50")})
	return w
}

// roundtrip exercises the Store contract shared by every implementation
func roundtrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.LoadCart(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	cart := sampleCart()
	require.NoError(t, s.SaveCart(ctx, cart))

	loaded, err := s.LoadCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, loaded.ID)
	assert.Equal(t, int64(3), loaded.Version)
	assert.Equal(t, 2, loaded.ItemCount)
	assert.True(t, loaded.Total.Equal(decimal.RequireFromString("59.80")))

	require.NoError(t, s.DeleteCart(ctx))
	_, err = s.LoadCart(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	wishlist := sampleWishlist()
	require.NoError(t, s.SaveWishlist(ctx, wishlist))
	loadedW, err := s.LoadWishlist(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loadedW.Count())
	require.NoError(t, s.DeleteWishlist(ctx))
}

func TestSQLiteStore_Roundtrip(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "horus.db"))
	require.NoError(t, err)
	defer s.Close()

	roundtrip(t, s)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "horus.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)

	cart := sampleCart()
	require.NoError(t, s.SaveCart(context.Background(), cart))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cart.ID, loaded.ID)
}

func TestFileStore_Roundtrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	roundtrip(t, s)
}

// brokenStore fails every operation
type brokenStore struct{}

var errBroken = errors.New("store unavailable")

func (brokenStore) LoadCart(context.Context) (*domain.Cart, error)         { return nil, errBroken }
func (brokenStore) SaveCart(context.Context, *domain.Cart) error           { return errBroken }
func (brokenStore) DeleteCart(context.Context) error                       { return errBroken }
func (brokenStore) LoadWishlist(context.Context) (*domain.Wishlist, error) { return nil, errBroken }
func (brokenStore) SaveWishlist(context.Context, *domain.Wishlist) error   { return errBroken }
func (brokenStore) DeleteWishlist(context.Context) error                   { return errBroken }
func (brokenStore) Close() error                                           { return nil }

func TestTieredStore_FallsBackOnPrimaryFailure(t *testing.T) {
	fallback, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	tiered := NewTieredStore(brokenStore{}, fallback)
	ctx := context.Background()

	cart := sampleCart()
	require.NoError(t, tiered.SaveCart(ctx, cart))

	// The write must have landed in the fallback
	fromFallback, err := fallback.LoadCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, fromFallback.ID)

	loaded, err := tiered.LoadCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, loaded.ID)
}

func TestTieredStore_PrimaryMissReadsFallback(t *testing.T) {
	primary, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	fallback, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	tiered := NewTieredStore(primary, fallback)
	ctx := context.Background()

	// Seed the fallback only, as if it was written during a primary outage
	cart := sampleCart()
	require.NoError(t, fallback.SaveCart(ctx, cart))

	loaded, err := tiered.LoadCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, loaded.ID)
}

func TestTieredStore_PrefersPrimary(t *testing.T) {
	primary, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	fallback, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	tiered := NewTieredStore(primary, fallback)
	ctx := context.Background()

	primaryCart := sampleCart()
	require.NoError(t, primary.SaveCart(ctx, primaryCart))

	stale := domain.NewCart()
	require.NoError(t, fallback.SaveCart(ctx, stale))

	loaded, err := tiered.LoadCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, primaryCart.ID, loaded.ID)
}
