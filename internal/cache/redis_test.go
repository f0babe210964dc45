package cache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func testCart(userID string) *domain.Cart {
	cart := domain.NewCart()
	cart.UserID = userID
	cart.AddItem(domain.CartLine{
		ProductID: "acuvue-oasys",
		PlanType:  domain.PlanSingle,
		Name:      "Acuvue Oasys",
		UnitPrice: decimal.RequireFromString("29.90"),
		Quantity:  1,
	}, 2)
	return cart
}

func TestRedisCache_GetSet_RoundTrip(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	cart := testCart("auth0|u1")

	require.NoError(t, cache.Set(ctx, "auth0|u1", cart))

	got, err := cache.Get(ctx, "auth0|u1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.ItemCount)
	assert.True(t, got.Total.Equal(cart.Total))
	assert.Len(t, got.Items, 1)
}

func TestRedisCache_Get_Miss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	_, err := cache.Get(context.Background(), "auth0|nobody")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Get_CorruptPayload(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set("cart:auth0|u1", "{not json"))

	_, err := cache.Get(context.Background(), "auth0|u1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Delete(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "auth0|u1", testCart("auth0|u1")))
	require.NoError(t, cache.Delete(ctx, "auth0|u1"))

	assert.False(t, mr.Exists("cart:auth0|u1"))
}

func TestRedisCache_Set_StoresJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, cache.Set(context.Background(), "auth0|u1", testCart("auth0|u1")))

	raw, err := mr.Get("cart:auth0|u1")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "auth0|u1", decoded["userId"])
}
