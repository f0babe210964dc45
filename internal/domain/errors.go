package domain

import "errors"

// Domain errors
var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrWishlistNotFound = errors.New("wishlist not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCouponNotFound   = errors.New("coupon not found")
	ErrCouponExpired    = errors.New("coupon expired")
	ErrVersionConflict  = errors.New("cart version conflict")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrUnauthorized     = errors.New("unauthorized")
)
