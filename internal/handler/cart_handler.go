// Package handler contains the Echo HTTP handlers for the storefront API.
package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/horus-optical/horus-backend/internal/middleware"
	"github.com/horus-optical/horus-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CartHandler handles cart-related HTTP requests
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// PushCartRequest is the body of POST /api/v1/cart: the client's full cart
// plus the server version it was based on
type PushCartRequest struct {
	Items       []domain.CartLine `json:"items"`
	BaseVersion int64             `json:"baseVersion"`
}

// MigrateCartRequest is the body of POST /api/v1/cart/migrate
type MigrateCartRequest struct {
	GuestCartID uuid.UUID         `json:"guestCartId"`
	Items       []domain.CartLine `json:"items"`
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	cart, err := h.cartService.GetCart(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get cart")
		return NewInternalError(c, "Failed to get cart")
	}

	return c.JSON(http.StatusOK, cart)
}

// PushCart handles POST /api/v1/cart. The client sends its complete cart;
// the server replaces the stored cart when the base version still matches
// and otherwise answers 409 with the current server state.
func (h *CartHandler) PushCart(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req PushCartRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.BaseVersion < 0 {
		return NewValidationError(c, "Invalid base version", []ValidationError{
			{Field: "baseVersion", Message: "Base version must not be negative"},
		})
	}
	for _, line := range req.Items {
		if line.ProductID == "" {
			return NewValidationError(c, "Invalid cart line", []ValidationError{
				{Field: "items", Message: "Every line needs a productId"},
			})
		}
	}

	cart, err := h.cartService.PushCart(c.Request().Context(), userID, req.Items, req.BaseVersion)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return NewVersionConflictError(c, "Cart was modified elsewhere", cart)
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to push cart")
		return NewInternalError(c, "Failed to save cart")
	}

	return c.JSON(http.StatusOK, cart)
}

// MigrateCart handles POST /api/v1/cart/migrate: merges a guest cart into
// the authenticated user's cart. Safe to retry; a guest cart id is applied
// at most once.
func (h *CartHandler) MigrateCart(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req MigrateCartRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.GuestCartID == uuid.Nil {
		return NewValidationError(c, "Invalid guest cart id", []ValidationError{
			{Field: "guestCartId", Message: "Guest cart id is required"},
		})
	}

	cart, err := h.cartService.MigrateGuest(c.Request().Context(), userID, req.GuestCartID, req.Items)
	if err != nil {
		log.Error().Err(err).
			Str("user_id", userID).
			Str("guest_cart_id", req.GuestCartID.String()).
			Msg("Failed to migrate guest cart")
		return NewInternalError(c, "Failed to migrate cart")
	}

	return c.JSON(http.StatusOK, cart)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if err := h.cartService.ClearCart(c.Request().Context(), userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to clear cart")
		return NewInternalError(c, "Failed to clear cart")
	}

	return c.NoContent(http.StatusNoContent)
}
