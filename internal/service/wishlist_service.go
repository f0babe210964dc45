package service

import (
	"context"
	"errors"

	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/horus-optical/horus-backend/internal/websocket"
)

// WishlistService handles server-side wishlist state
type WishlistService struct {
	repo   domain.WishlistRepository
	events websocket.EventPublisher
}

// NewWishlistService creates a new WishlistService
func NewWishlistService(repo domain.WishlistRepository, events websocket.EventPublisher) *WishlistService {
	return &WishlistService{repo: repo, events: events}
}

// GetWishlist returns the user's wishlist, or an empty one when none is stored
func (s *WishlistService) GetWishlist(ctx context.Context, userID string) (*domain.Wishlist, error) {
	w, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrWishlistNotFound) {
		empty := domain.NewWishlist()
		empty.UserID = userID
		return empty, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Sync unions the pushed items into the stored wishlist and returns the
// merged result. Duplicate product ids keep their earliest AddedAt, so
// re-syncing the same guest wishlist is harmless.
func (s *WishlistService) Sync(ctx context.Context, userID string, items []domain.WishlistItem) (*domain.Wishlist, error) {
	w, err := s.GetWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	w.UserID = userID
	w.Merge(items)

	saved, err := s.repo.Save(ctx, w)
	if err != nil {
		return nil, err
	}

	s.events.Publish(userID, websocket.WishlistUpdated(saved))
	return saved, nil
}

// Remove deletes one product from the wishlist and returns the remaining
// items. Sync is union-only, so removals must come through here; removing an
// absent product is a no-op.
func (s *WishlistService) Remove(ctx context.Context, userID, productID string) (*domain.Wishlist, error) {
	w, err := s.GetWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !w.Remove(productID) {
		return w, nil
	}

	saved, err := s.repo.Save(ctx, w)
	if err != nil {
		return nil, err
	}

	s.events.Publish(userID, websocket.WishlistUpdated(saved))
	return saved, nil
}

// Clear removes the user's wishlist
func (s *WishlistService) Clear(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.events.Publish(userID, websocket.WishlistUpdated(nil))
	return nil
}
