package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/horus-optical/horus-backend/internal/cache"
	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/horus-optical/horus-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// CartService handles server-side cart state: reads through the cache,
// writes through the repository with version checks, and notifies the
// user's other sessions after every successful write.
type CartService struct {
	repo   domain.CartRepository
	cache  cache.CartCache
	events websocket.EventPublisher
	sfg    singleflight.Group // Prevents cache stampede on concurrent misses
}

// NewCartService creates a new CartService
func NewCartService(repo domain.CartRepository, cartCache cache.CartCache, events websocket.EventPublisher) *CartService {
	return &CartService{
		repo:   repo,
		cache:  cartCache,
		events: events,
	}
}

// GetCart returns the user's cart, or an empty unversioned cart when none is
// stored yet. The empty default is not persisted.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Warn().Err(err).Str("user_id", userID).Msg("Cart cache read failed")
		}

		cart, err = s.repo.Get(ctx, userID)
		if errors.Is(err, domain.ErrCartNotFound) {
			empty := domain.NewCart()
			empty.UserID = userID
			empty.Version = 0
			return empty, nil
		}
		if err != nil {
			return nil, err
		}

		go func() {
			cctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(cctx, userID, cart); err != nil {
				log.Warn().Err(err).Str("user_id", userID).Msg("Cart cache write failed")
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// PushCart replaces the user's cart with the given lines, guarded by the
// version token the client last saw. On a conflict the current server cart is
// returned together with domain.ErrVersionConflict so the caller can re-merge.
func (s *CartService) PushCart(ctx context.Context, userID string, lines []domain.CartLine, baseVersion int64) (*domain.Cart, error) {
	cart := domain.NewCart()
	cart.UserID = userID
	for _, line := range lines {
		cart.AddItem(line, line.Quantity)
	}

	saved, err := s.repo.Save(ctx, cart, baseVersion)
	if errors.Is(err, domain.ErrVersionConflict) {
		current, getErr := s.repo.Get(ctx, userID)
		if getErr != nil {
			return nil, getErr
		}
		return current, domain.ErrVersionConflict
	}
	if err != nil {
		return nil, err
	}

	s.invalidateCache(userID)
	s.events.Publish(userID, websocket.CartUpdated(saved))
	return saved, nil
}

// MigrateGuest folds a guest cart into the user's server cart exactly once
// per guest cart id. Replays return the current cart unchanged.
func (s *CartService) MigrateGuest(ctx context.Context, userID string, guestCartID uuid.UUID, guestLines []domain.CartLine) (*domain.Cart, error) {
	cart, applied, err := s.repo.MigrateGuest(ctx, userID, guestCartID, guestLines)
	if err != nil {
		return nil, err
	}
	if !applied {
		log.Info().Str("user_id", userID).Str("guest_cart_id", guestCartID.String()).
			Msg("Guest cart migration replayed, no-op")
		return cart, nil
	}

	s.invalidateCache(userID)
	s.events.Publish(userID, websocket.CartMigrated(cart))
	return cart, nil
}

// ClearCart removes the user's cart
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.invalidateCache(userID)
	s.events.Publish(userID, websocket.CartCleared(nil))
	return nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Cart cache invalidation failed")
	}
}
