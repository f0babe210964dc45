package handler

import (
	"net/http"

	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/horus-optical/horus-backend/internal/middleware"
	"github.com/horus-optical/horus-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WishlistHandler handles wishlist-related HTTP requests
type WishlistHandler struct {
	wishlistService *service.WishlistService
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlistService *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// SyncWishlistRequest is the body of POST /api/v1/wishlist/sync
type SyncWishlistRequest struct {
	Items []domain.WishlistItem `json:"items"`
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	wishlist, err := h.wishlistService.GetWishlist(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get wishlist")
		return NewInternalError(c, "Failed to get wishlist")
	}

	return c.JSON(http.StatusOK, wishlist)
}

// SyncWishlist handles POST /api/v1/wishlist/sync: unions the client's items
// into the stored wishlist and returns the merged result
func (h *WishlistHandler) SyncWishlist(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req SyncWishlistRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	for _, item := range req.Items {
		if item.ProductID == "" {
			return NewValidationError(c, "Invalid wishlist item", []ValidationError{
				{Field: "items", Message: "Every item needs a productId"},
			})
		}
	}

	wishlist, err := h.wishlistService.Sync(c.Request().Context(), userID, req.Items)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to sync wishlist")
		return NewInternalError(c, "Failed to sync wishlist")
	}

	return c.JSON(http.StatusOK, wishlist)
}

// RemoveWishlistItem handles DELETE /api/v1/wishlist/items/:productId:
// removes one saved product and returns the remaining wishlist
func (h *WishlistHandler) RemoveWishlistItem(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	productID := c.Param("productId")
	if productID == "" {
		return NewValidationError(c, "Product id is required", []ValidationError{
			{Field: "productId", Message: "Product id must not be empty"},
		})
	}

	wishlist, err := h.wishlistService.Remove(c.Request().Context(), userID, productID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("product_id", productID).Msg("Failed to remove wishlist item")
		return NewInternalError(c, "Failed to remove wishlist item")
	}

	return c.JSON(http.StatusOK, wishlist)
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if err := h.wishlistService.Clear(c.Request().Context(), userID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to clear wishlist")
		return NewInternalError(c, "Failed to clear wishlist")
	}

	return c.NoContent(http.StatusNoContent)
}
