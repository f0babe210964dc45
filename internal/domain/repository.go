package domain

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository persists user carts with optimistic concurrency.
// Save compares baseVersion against the stored version and returns
// ErrVersionConflict on mismatch; a cart that does not exist yet is
// created when baseVersion is 0.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart, baseVersion int64) (*Cart, error)
	Delete(ctx context.Context, userID string) error

	// MigrateGuest additively merges the guest lines into the user's cart
	// exactly once per guest cart id. Replays return the current cart with
	// applied=false.
	MigrateGuest(ctx context.Context, userID string, guestCartID uuid.UUID, guestLines []CartLine) (cart *Cart, applied bool, err error)
}

// WishlistRepository persists user wishlists (full overwrite on save)
type WishlistRepository interface {
	Get(ctx context.Context, userID string) (*Wishlist, error)
	Save(ctx context.Context, wishlist *Wishlist) (*Wishlist, error)
	Delete(ctx context.Context, userID string) error
}

// ProductRepository persists catalog products keyed by slug
type ProductRepository interface {
	Upsert(ctx context.Context, product *Product) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	Count(ctx context.Context) (int64, error)
}

// CouponRepository looks up locally mirrored coupons
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	Upsert(ctx context.Context, coupon *Coupon) error
}
