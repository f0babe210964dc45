package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/horus-optical/horus-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CouponHandler handles coupon validation requests
type CouponHandler struct {
	couponService *service.CouponService
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(couponService *service.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// ValidateCouponRequest is the body of POST /api/v1/coupons/validate
type ValidateCouponRequest struct {
	Code string `json:"code"`
}

// CouponResponse describes a usable coupon
type CouponResponse struct {
	Code         string `json:"code"`
	Amount       string `json:"amount"`
	DiscountType string `json:"discount_type"`
}

// ValidateCouponResponse is the validation result. Invalid codes are an
// expected outcome, so the error text is meant for display.
type ValidateCouponResponse struct {
	Valid  bool            `json:"valid"`
	Coupon *CouponResponse `json:"coupon,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ValidateCoupon handles POST /api/v1/coupons/validate
func (h *CouponHandler) ValidateCoupon(c echo.Context) error {
	var req ValidateCouponRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return NewValidationError(c, "Coupon code is required", []ValidationError{
			{Field: "code", Message: "Code must not be empty"},
		})
	}

	coupon, err := h.couponService.Validate(c.Request().Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCouponNotFound):
			return c.JSON(http.StatusNotFound, ValidateCouponResponse{
				Valid: false,
				Error: "Coupon code not found",
			})
		case errors.Is(err, domain.ErrCouponExpired):
			return c.JSON(http.StatusBadRequest, ValidateCouponResponse{
				Valid: false,
				Error: "Coupon has expired",
			})
		default:
			log.Error().Err(err).Str("code", code).Msg("Coupon validation failed")
			return NewInternalError(c, "Failed to validate coupon")
		}
	}

	return c.JSON(http.StatusOK, ValidateCouponResponse{
		Valid: true,
		Coupon: &CouponResponse{
			Code:         coupon.Code,
			Amount:       coupon.Amount.StringFixed(2),
			DiscountType: string(coupon.DiscountType),
		},
	})
}
