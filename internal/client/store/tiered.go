package store

import (
	"context"
	"errors"

	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// TieredStore reads and writes through a primary store, falling back to a
// secondary one when the primary fails. A missing record in the primary is
// also looked up in the fallback so data written during an earlier primary
// outage is not lost.
type TieredStore struct {
	primary  Store
	fallback Store
}

// NewTieredStore creates a TieredStore
func NewTieredStore(primary, fallback Store) *TieredStore {
	return &TieredStore{primary: primary, fallback: fallback}
}

// LoadCart loads the cart from the primary, then the fallback
func (s *TieredStore) LoadCart(ctx context.Context) (*domain.Cart, error) {
	cart, err := s.primary.LoadCart(ctx)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Warn().Err(err).Msg("Primary store read failed, trying fallback")
	}
	return s.fallback.LoadCart(ctx)
}

// SaveCart writes the cart to the primary, or the fallback when that fails
func (s *TieredStore) SaveCart(ctx context.Context, cart *domain.Cart) error {
	if err := s.primary.SaveCart(ctx, cart); err != nil {
		log.Warn().Err(err).Msg("Primary store write failed, using fallback")
		return s.fallback.SaveCart(ctx, cart)
	}
	return nil
}

// DeleteCart removes the cart from both tiers
func (s *TieredStore) DeleteCart(ctx context.Context) error {
	perr := s.primary.DeleteCart(ctx)
	ferr := s.fallback.DeleteCart(ctx)
	if perr != nil {
		return perr
	}
	return ferr
}

// LoadWishlist loads the wishlist from the primary, then the fallback
func (s *TieredStore) LoadWishlist(ctx context.Context) (*domain.Wishlist, error) {
	wishlist, err := s.primary.LoadWishlist(ctx)
	if err == nil {
		return wishlist, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Warn().Err(err).Msg("Primary store read failed, trying fallback")
	}
	return s.fallback.LoadWishlist(ctx)
}

// SaveWishlist writes the wishlist to the primary, or the fallback when that fails
func (s *TieredStore) SaveWishlist(ctx context.Context, wishlist *domain.Wishlist) error {
	if err := s.primary.SaveWishlist(ctx, wishlist); err != nil {
		log.Warn().Err(err).Msg("Primary store write failed, using fallback")
		return s.fallback.SaveWishlist(ctx, wishlist)
	}
	return nil
}

// DeleteWishlist removes the wishlist from both tiers
func (s *TieredStore) DeleteWishlist(ctx context.Context) error {
	perr := s.primary.DeleteWishlist(ctx)
	ferr := s.fallback.DeleteWishlist(ctx)
	if perr != nil {
		return perr
	}
	return ferr
}

// Close closes both tiers
func (s *TieredStore) Close() error {
	perr := s.primary.Close()
	ferr := s.fallback.Close()
	if perr != nil {
		return perr
	}
	return ferr
}
