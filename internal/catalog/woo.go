// Package catalog syncs the upstream WooCommerce product feed into the
// local relational catalog.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/horus-optical/horus-backend/internal/config"
	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// WooImage is an upstream product image reference
type WooImage struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// WooAttribute is an upstream product attribute (name plus option values)
type WooAttribute struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// WooMeta is an upstream key-value meta entry
type WooMeta struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// WooProduct is the subset of the WooCommerce product payload we consume
type WooProduct struct {
	ID               int64          `json:"id"`
	Name             string         `json:"name"`
	Slug             string         `json:"slug"`
	Description      string         `json:"description"`
	ShortDescription string         `json:"short_description"`
	Price            string         `json:"price"`
	RegularPrice     string         `json:"regular_price"`
	StockQuantity    *int           `json:"stock_quantity"`
	StockStatus      string         `json:"stock_status"`
	AverageRating    string         `json:"average_rating"`
	RatingCount      int            `json:"rating_count"`
	Images           []WooImage     `json:"images"`
	Attributes       []WooAttribute `json:"attributes"`
	MetaData         []WooMeta      `json:"meta_data"`
}

// WooCoupon is the subset of the WooCommerce coupon payload we consume
type WooCoupon struct {
	Code         string  `json:"code"`
	Amount       string  `json:"amount"`
	DiscountType string  `json:"discount_type"`
	DateExpires  *string `json:"date_expires"`
}

// WooClient consumes the WooCommerce REST API read-only
type WooClient struct {
	baseURL    string
	key        string
	secret     string
	pageSize   int
	httpClient *http.Client
}

// NewWooClient creates a WooClient from configuration
func NewWooClient(cfg config.WooConfig) *WooClient {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return &WooClient{
		baseURL:    cfg.BaseURL,
		key:        cfg.ConsumerKey,
		secret:     cfg.ConsumerSecret,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PageSize returns the configured page size
func (c *WooClient) PageSize() int {
	return c.pageSize
}

// FetchPage fetches one page of the product feed. An empty slice means the
// upstream has no further pages.
func (c *WooClient) FetchPage(ctx context.Context, page int) ([]WooProduct, error) {
	endpoint := fmt.Sprintf("%s/wp-json/wc/v3/products?page=%d&per_page=%d&status=publish",
		c.baseURL, page, c.pageSize)

	var products []WooProduct
	if err := c.getJSON(ctx, endpoint, &products); err != nil {
		return nil, fmt.Errorf("fetch products page %d: %w", page, err)
	}
	return products, nil
}

// GetCoupon looks up a coupon by its exact code
func (c *WooClient) GetCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	endpoint := fmt.Sprintf("%s/wp-json/wc/v3/coupons?code=%s", c.baseURL, url.QueryEscape(code))

	var coupons []WooCoupon
	if err := c.getJSON(ctx, endpoint, &coupons); err != nil {
		return nil, fmt.Errorf("fetch coupon: %w", err)
	}
	if len(coupons) == 0 {
		return nil, domain.ErrCouponNotFound
	}

	raw := coupons[0]
	amount, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return nil, fmt.Errorf("parse coupon amount %q: %w", raw.Amount, err)
	}
	coupon := &domain.Coupon{
		Code:         raw.Code,
		Amount:       amount,
		DiscountType: domain.DiscountType(raw.DiscountType),
	}
	if raw.DateExpires != nil && *raw.DateExpires != "" {
		// WooCommerce returns site-local time without zone; treat as UTC
		if t, err := time.Parse("2006-01-02T15:04:05", *raw.DateExpires); err == nil {
			t = t.UTC()
			coupon.ExpiresAt = &t
		}
	}
	return coupon, nil
}

func (c *WooClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.key, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream returned %s", strconv.Itoa(resp.StatusCode))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
