// Package sync talks to the storefront backend: pulling and pushing the
// cart and wishlist, migrating guest carts, and validating coupons.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/horus-optical/horus-backend/internal/domain"
)

// TokenSource supplies the current access token for API calls
type TokenSource func() string

// ConflictError reports a rejected cart push and carries the current
// server-side cart so the caller can re-merge
type ConflictError struct {
	Cart *domain.Cart
}

func (e *ConflictError) Error() string {
	return "sync: cart version conflict"
}

// CouponResult is the outcome of a coupon validation call
type CouponResult struct {
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
	Coupon *struct {
		Code         string `json:"code"`
		Amount       string `json:"amount"`
		DiscountType string `json:"discount_type"`
	} `json:"coupon,omitempty"`
}

// Client is the HTTP client for the storefront API
type Client struct {
	baseURL    string
	token      TokenSource
	httpClient *http.Client
}

// NewClient creates a Client. token may return "" while logged out.
func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type pushCartRequest struct {
	Items       []domain.CartLine `json:"items"`
	BaseVersion int64             `json:"baseVersion"`
}

type migrateCartRequest struct {
	GuestCartID uuid.UUID         `json:"guestCartId"`
	Items       []domain.CartLine `json:"items"`
}

type syncWishlistRequest struct {
	Items []domain.WishlistItem `json:"items"`
}

// conflictBody is the shape of the 409 response from the cart endpoint
type conflictBody struct {
	Detail string       `json:"detail"`
	Cart   *domain.Cart `json:"cart"`
}

// PullCart fetches the server-side cart
func (c *Client) PullCart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, http.MethodGet, "/api/v1/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// PushCart replaces the server-side cart. On a version conflict the returned
// error is a *ConflictError carrying the server state.
func (c *Client) PushCart(ctx context.Context, items []domain.CartLine, baseVersion int64) (*domain.Cart, error) {
	var cart domain.Cart
	err := c.do(ctx, http.MethodPost, "/api/v1/cart", pushCartRequest{Items: items, BaseVersion: baseVersion}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// MigrateGuestCart merges a guest cart into the logged-in user's cart.
// Retrying with the same guest cart id is safe.
func (c *Client) MigrateGuestCart(ctx context.Context, guestCartID uuid.UUID, items []domain.CartLine) (*domain.Cart, error) {
	var cart domain.Cart
	err := c.do(ctx, http.MethodPost, "/api/v1/cart/migrate", migrateCartRequest{GuestCartID: guestCartID, Items: items}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// PullWishlist fetches the server-side wishlist
func (c *Client) PullWishlist(ctx context.Context) (*domain.Wishlist, error) {
	var wishlist domain.Wishlist
	if err := c.do(ctx, http.MethodGet, "/api/v1/wishlist", nil, &wishlist); err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// SyncWishlist unions local items into the server wishlist and returns the
// merged result
func (c *Client) SyncWishlist(ctx context.Context, items []domain.WishlistItem) (*domain.Wishlist, error) {
	var wishlist domain.Wishlist
	err := c.do(ctx, http.MethodPost, "/api/v1/wishlist/sync", syncWishlistRequest{Items: items}, &wishlist)
	if err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// RemoveWishlistItem deletes one saved product from the server wishlist and
// returns the remaining items. The sync endpoint is union-only, so removals
// go through this call.
func (c *Client) RemoveWishlistItem(ctx context.Context, productID string) (*domain.Wishlist, error) {
	var wishlist domain.Wishlist
	path := "/api/v1/wishlist/items/" + url.PathEscape(productID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &wishlist); err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// ClearWishlist deletes the server-side wishlist
func (c *Client) ClearWishlist(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/wishlist", nil, nil)
}

// ValidateCoupon checks a discount code. Invalid codes are reported in the
// result, not as an error.
func (c *Client) ValidateCoupon(ctx context.Context, code string) (*CouponResult, error) {
	body, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/coupons/validate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// 404 and 400 carry a result payload too
	var result CouponResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode coupon result: %w", err)
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		var conflict conflictBody
		if err := json.NewDecoder(resp.Body).Decode(&conflict); err != nil {
			return fmt.Errorf("decode conflict body: %w", err)
		}
		return &ConflictError{Cart: conflict.Cart}
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode >= 400:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}
