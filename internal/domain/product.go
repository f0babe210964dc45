package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the replenishment cadence of a contact lens product,
// derived heuristically from catalog text when not explicit upstream
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// Product is a catalog record, upserted by slug from the upstream feed.
// Existing records are fully overwritten field-by-field on each sync.
type Product struct {
	ID                int64             `json:"id"`
	Slug              string            `json:"slug"`
	Name              string            `json:"name"`
	Brand             string            `json:"brand"`
	Price             decimal.Decimal   `json:"price"`
	SubscriptionPrice decimal.Decimal   `json:"subscriptionPrice"`
	Frequency         Frequency         `json:"frequency"`
	Material          string            `json:"material,omitempty"`
	WaterContent      string            `json:"waterContent,omitempty"`
	Stock             int               `json:"stock"`
	InStock           bool              `json:"inStock"`
	Images            []string          `json:"images"`
	Specifications    map[string]string `json:"specifications"`
	Rating            float64           `json:"rating"`
	ReviewCount       int               `json:"reviewCount"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}
