package service

import (
	"context"
	"time"

	"github.com/horus-optical/horus-backend/internal/domain"
)

// CouponSource looks up a coupon by code. The WooCommerce client implements
// it for live validation; the Postgres mirror serves as fallback.
type CouponSource interface {
	GetCoupon(ctx context.Context, code string) (*domain.Coupon, error)
}

// couponRepoSource adapts a domain.CouponRepository to CouponSource
type couponRepoSource struct {
	repo domain.CouponRepository
}

func (a couponRepoSource) GetCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	return a.repo.GetByCode(ctx, code)
}

// CouponService validates discount codes. Validation errors are the one
// user-facing error path: unknown and expired codes map to domain errors the
// handler turns into inline messages.
type CouponService struct {
	source CouponSource
	now    func() time.Time
}

// NewCouponService creates a CouponService backed by the given source
func NewCouponService(source CouponSource) *CouponService {
	return &CouponService{source: source, now: time.Now}
}

// NewCouponServiceFromRepo creates a CouponService backed by the local mirror
func NewCouponServiceFromRepo(repo domain.CouponRepository) *CouponService {
	return NewCouponService(couponRepoSource{repo: repo})
}

// Validate checks the code and returns the coupon when it is usable
func (s *CouponService) Validate(ctx context.Context, code string) (*domain.Coupon, error) {
	coupon, err := s.source.GetCoupon(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon.Expired(s.now()) {
		return nil, domain.ErrCouponExpired
	}
	return coupon, nil
}
