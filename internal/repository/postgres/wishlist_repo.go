package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

// WishlistRepository implements domain.WishlistRepository using PostgreSQL
type WishlistRepository struct {
	db DB
}

// NewWishlistRepository creates a new WishlistRepository
func NewWishlistRepository(db DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// Get retrieves the wishlist for a user
func (r *WishlistRepository) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	const query = `SELECT items, updated_at FROM wishlists WHERE user_id = $1`

	var (
		itemsJSON []byte
		w         = domain.Wishlist{UserID: userID, Items: []domain.WishlistItem{}}
	)
	if err := r.db.QueryRow(ctx, query, userID).Scan(&itemsJSON, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWishlistNotFound
		}
		return nil, fmt.Errorf("select wishlist: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &w.Items); err != nil {
		return nil, fmt.Errorf("unmarshal wishlist items: %w", err)
	}
	return &w, nil
}

// Save stores the wishlist, fully overwriting any existing record
func (r *WishlistRepository) Save(ctx context.Context, wishlist *domain.Wishlist) (*domain.Wishlist, error) {
	const query = `INSERT INTO wishlists (user_id, items, updated_at) VALUES ($1, $2, $3)
	               ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at`

	itemsJSON, err := json.Marshal(wishlist.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal wishlist items: %w", err)
	}
	now := time.Now().UTC()
	if _, err := r.db.Exec(ctx, query, wishlist.UserID, itemsJSON, now); err != nil {
		return nil, fmt.Errorf("upsert wishlist: %w", err)
	}
	wishlist.UpdatedAt = now
	return wishlist, nil
}

// Delete removes the wishlist for a user
func (r *WishlistRepository) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM wishlists WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("delete wishlist: %w", err)
	}
	return nil
}
