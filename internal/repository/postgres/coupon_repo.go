package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CouponRepository implements domain.CouponRepository using PostgreSQL.
// It serves as the local mirror when the upstream store is not configured.
type CouponRepository struct {
	db DB
}

// NewCouponRepository creates a new CouponRepository
func NewCouponRepository(db DB) *CouponRepository {
	return &CouponRepository{db: db}
}

// GetByCode retrieves a coupon by its code (case-insensitive)
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	const query = `SELECT code, amount, discount_type, expires_at FROM coupons WHERE code = $1`

	var (
		c         domain.Coupon
		amountStr string
		dt        string
		expiresAt *time.Time
	)
	err := r.db.QueryRow(ctx, query, strings.ToLower(code)).Scan(&c.Code, &amountStr, &dt, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, fmt.Errorf("select coupon: %w", err)
	}
	if c.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("parse coupon amount: %w", err)
	}
	c.DiscountType = domain.DiscountType(dt)
	c.ExpiresAt = expiresAt
	return &c, nil
}

// Upsert stores the coupon, overwriting any existing record with the same code
func (r *CouponRepository) Upsert(ctx context.Context, coupon *domain.Coupon) error {
	const query = `INSERT INTO coupons (code, amount, discount_type, expires_at) VALUES ($1, $2, $3, $4)
	               ON CONFLICT (code) DO UPDATE SET amount = EXCLUDED.amount,
	                   discount_type = EXCLUDED.discount_type, expires_at = EXCLUDED.expires_at`

	_, err := r.db.Exec(ctx, query,
		strings.ToLower(coupon.Code), coupon.Amount.StringFixed(2),
		string(coupon.DiscountType), coupon.ExpiresAt)
	if err != nil {
		return fmt.Errorf("upsert coupon: %w", err)
	}
	return nil
}
