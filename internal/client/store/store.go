// Package store provides device-local persistence for the storefront
// client: the current cart and wishlist survive restarts without a server
// round trip.
package store

import (
	"context"
	"errors"

	"github.com/horus-optical/horus-backend/internal/domain"
)

// ErrNotFound is returned when no record is stored yet
var ErrNotFound = errors.New("store: record not found")

// Store persists the device's current cart and wishlist
type Store interface {
	LoadCart(ctx context.Context) (*domain.Cart, error)
	SaveCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context) error

	LoadWishlist(ctx context.Context) (*domain.Wishlist, error)
	SaveWishlist(ctx context.Context, wishlist *domain.Wishlist) error
	DeleteWishlist(ctx context.Context) error

	Close() error
}

// Record keys shared by all store implementations
const (
	cartKey     = "horus-cart"
	wishlistKey = "horus-wishlist"
)
