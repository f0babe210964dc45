package cache

import (
	"context"
	"errors"

	"github.com/horus-optical/horus-backend/internal/domain"
)

// CartCache is a read-through cache in front of the cart repository
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

// ErrCacheMiss is returned when no cached cart exists for the user
var ErrCacheMiss = errors.New("cache miss")

// NoOpCache disables caching (used when REDIS_URL is not configured)
type NoOpCache struct{}

func (NoOpCache) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	return nil, ErrCacheMiss
}

func (NoOpCache) Set(ctx context.Context, userID string, cart *domain.Cart) error { return nil }

func (NoOpCache) Delete(ctx context.Context, userID string) error { return nil }
