package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistItem is a saved product. Items are unique by ProductID.
type WishlistItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Price     decimal.Decimal `json:"price"`
	ImageRef  string          `json:"imageRef,omitempty"`
	AddedAt   time.Time       `json:"addedAt"`
}

// Wishlist is a set-like collection of saved products
type Wishlist struct {
	UserID    string         `json:"userId,omitempty"`
	Items     []WishlistItem `json:"items"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewWishlist creates an empty wishlist
func NewWishlist() *Wishlist {
	return &Wishlist{Items: []WishlistItem{}, UpdatedAt: time.Now().UTC()}
}

// Count returns the number of saved items
func (w *Wishlist) Count() int {
	return len(w.Items)
}

// Contains reports whether the product is already saved
func (w *Wishlist) Contains(productID string) bool {
	for _, it := range w.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// Add appends the item unless its product is already saved.
// Returns false on the duplicate no-op.
func (w *Wishlist) Add(item WishlistItem) bool {
	if w.Contains(item.ProductID) {
		return false
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}
	w.Items = append(w.Items, item)
	w.UpdatedAt = time.Now().UTC()
	return true
}

// Remove deletes the item with the given product id. Returns false when absent.
func (w *Wishlist) Remove(productID string) bool {
	for i, it := range w.Items {
		if it.ProductID == productID {
			w.Items = append(w.Items[:i], w.Items[i+1:]...)
			w.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// Toggle removes the item when present, adds it when absent
func (w *Wishlist) Toggle(item WishlistItem) {
	if !w.Remove(item.ProductID) {
		w.Add(item)
	}
}

// Clear empties the wishlist
func (w *Wishlist) Clear() {
	w.Items = []WishlistItem{}
	w.UpdatedAt = time.Now().UTC()
}

// Merge unions the given items into the wishlist by product id.
// For duplicates the earliest AddedAt wins.
func (w *Wishlist) Merge(items []WishlistItem) {
	for _, incoming := range items {
		found := false
		for i := range w.Items {
			if w.Items[i].ProductID == incoming.ProductID {
				if !incoming.AddedAt.IsZero() && incoming.AddedAt.Before(w.Items[i].AddedAt) {
					w.Items[i].AddedAt = incoming.AddedAt
				}
				found = true
				break
			}
		}
		if !found {
			w.Items = append(w.Items, incoming)
		}
	}
	w.UpdatedAt = time.Now().UTC()
}
