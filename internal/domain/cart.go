package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanType distinguishes one-time purchases from subscription lines
type PlanType string

const (
	PlanSingle       PlanType = "single"
	PlanSubscription PlanType = "subscription"
)

// LineKey is the composite identity of a cart line. Two lines for the same
// product but different plan types (or subscription periods) are distinct.
// An empty SubscriptionPeriod means the line has no period dimension.
type LineKey struct {
	ProductID          string
	PlanType           PlanType
	SubscriptionPeriod string
}

// CartLine represents a single line in a cart
type CartLine struct {
	ProductID             string          `json:"productId"`
	PlanType              PlanType        `json:"planType"`
	SubscriptionPeriod    string          `json:"subscriptionPeriod,omitempty"`
	Name                  string          `json:"name"`
	Brand                 string          `json:"brand"`
	UnitPrice             decimal.Decimal `json:"unitPrice"`
	SubscriptionUnitPrice decimal.Decimal `json:"subscriptionUnitPrice"`
	Quantity              int             `json:"quantity"`
	ImageRef              string          `json:"imageRef,omitempty"`
}

// Key returns the composite identity of the line
func (l CartLine) Key() LineKey {
	return LineKey{
		ProductID:          l.ProductID,
		PlanType:           l.PlanType,
		SubscriptionPeriod: l.SubscriptionPeriod,
	}
}

// EffectivePrice returns the price used for totals: the subscription price
// when the line is a subscription and one is set, otherwise the unit price
func (l CartLine) EffectivePrice() decimal.Decimal {
	if l.PlanType == PlanSubscription && l.SubscriptionUnitPrice.IsPositive() {
		return l.SubscriptionUnitPrice
	}
	return l.UnitPrice
}

// Cart is the cart aggregate: ordered lines plus derived totals.
// ID identifies a guest cart across login migration; Version is the
// server-side optimistic concurrency token (0 for a cart never pushed).
type Cart struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"userId,omitempty"`
	Items     []CartLine      `json:"items"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewCart creates an empty cart with a fresh identity
func NewCart() *Cart {
	return &Cart{
		ID:        uuid.New(),
		Items:     []CartLine{},
		Total:     decimal.Zero,
		UpdatedAt: time.Now().UTC(),
	}
}

// AddItem merges qty of line into the cart. A line matching the same key has
// its quantity incremented; otherwise the line is appended. qty < 1 is a no-op.
func (c *Cart) AddItem(line CartLine, qty int) {
	if qty < 1 {
		return
	}
	key := line.Key()
	for i := range c.Items {
		if c.Items[i].Key() == key {
			c.Items[i].Quantity += qty
			c.recompute()
			return
		}
	}
	line.Quantity = qty
	c.Items = append(c.Items, line)
	c.recompute()
}

// UpdateQuantity sets the quantity of the line with the given key.
// qty <= 0 removes the line. Returns false when no line matches.
func (c *Cart) UpdateQuantity(key LineKey, qty int) bool {
	if qty <= 0 {
		return c.RemoveItem(key)
	}
	for i := range c.Items {
		if c.Items[i].Key() == key {
			c.Items[i].Quantity = qty
			c.recompute()
			return true
		}
	}
	return false
}

// RemoveItem removes the line with the given key. Returns false when absent.
func (c *Cart) RemoveItem(key LineKey) bool {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.recompute()
			return true
		}
	}
	return false
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []CartLine{}
	c.recompute()
}

// MergeGuest folds guest lines into the cart. Quantities of lines sharing a
// key are summed; unmatched guest lines are appended in order. Prices of
// existing lines are kept as-is (no reconciliation).
func (c *Cart) MergeGuest(guest []CartLine) {
	for _, g := range guest {
		if g.Quantity < 1 {
			continue
		}
		merged := false
		key := g.Key()
		for i := range c.Items {
			if c.Items[i].Key() == key {
				c.Items[i].Quantity += g.Quantity
				merged = true
				break
			}
		}
		if !merged {
			c.Items = append(c.Items, g)
		}
	}
	c.recompute()
}

// Line returns the line with the given key, or nil
func (c *Cart) Line(key LineKey) *CartLine {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			return &c.Items[i]
		}
	}
	return nil
}

// Adopted reports whether the cart reflects a server-side record.
// Guest carts built on the device have no user and version 0.
func (c *Cart) Adopted() bool {
	return c.Version > 0 || c.UserID != ""
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Clone returns a deep copy of the cart
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = make([]CartLine, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}

// recompute refreshes the derived fields. Lines with non-positive quantity
// are dropped so they can never be persisted.
func (c *Cart) recompute() {
	valid := c.Items[:0]
	count := 0
	total := decimal.Zero
	for _, line := range c.Items {
		if line.Quantity < 1 {
			continue
		}
		valid = append(valid, line)
		count += line.Quantity
		total = total.Add(line.EffectivePrice().Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	c.Items = valid
	c.ItemCount = count
	c.Total = total
	c.UpdatedAt = time.Now().UTC()
}
