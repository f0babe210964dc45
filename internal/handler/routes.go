package handler

import (
	"github.com/horus-optical/horus-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, cartHandler *CartHandler, wishlistHandler *WishlistHandler, couponHandler *CouponHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Cart routes (protected)
	cart := api.Group("/cart")
	cart.Use(authMiddleware.Authenticate())
	cart.Use(middleware.RateLimitMiddleware(rateLimiter))
	cart.GET("", cartHandler.GetCart)
	cart.POST("", cartHandler.PushCart)
	cart.POST("/migrate", cartHandler.MigrateCart)
	cart.DELETE("", cartHandler.ClearCart)

	// Wishlist routes (protected)
	wishlist := api.Group("/wishlist")
	wishlist.Use(authMiddleware.Authenticate())
	wishlist.Use(middleware.RateLimitMiddleware(rateLimiter))
	wishlist.GET("", wishlistHandler.GetWishlist)
	wishlist.POST("/sync", wishlistHandler.SyncWishlist)
	wishlist.DELETE("/items/:productId", wishlistHandler.RemoveWishlistItem)
	wishlist.DELETE("", wishlistHandler.ClearWishlist)

	// Coupon validation is reachable for guests too: the storefront checks
	// codes before login
	api.POST("/coupons/validate", couponHandler.ValidateCoupon)

	// WebSocket endpoint (token authenticated via query parameter)
	if wsHandler != nil {
		e.GET("/ws", wsHandler.HandleWS)
	}
}
