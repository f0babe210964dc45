package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CartRepository implements domain.CartRepository using PostgreSQL
type CartRepository struct {
	db DB
}

// NewCartRepository creates a new CartRepository
func NewCartRepository(db DB) *CartRepository {
	return &CartRepository{db: db}
}

// Get retrieves the cart for a user
func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	const query = `SELECT items, item_count, total, version, updated_at FROM carts WHERE user_id = $1`

	var (
		itemsJSON []byte
		totalStr  string
		cart      = domain.Cart{UserID: userID, Items: []domain.CartLine{}}
	)
	row := r.db.QueryRow(ctx, query, userID)
	if err := row.Scan(&itemsJSON, &cart.ItemCount, &totalStr, &cart.Version, &cart.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}
	return hydrateCart(&cart, itemsJSON, totalStr)
}

// hydrateCart fills the JSON and numeric columns into the aggregate
func hydrateCart(cart *domain.Cart, itemsJSON []byte, totalStr string) (*domain.Cart, error) {
	if err := json.Unmarshal(itemsJSON, &cart.Items); err != nil {
		return nil, fmt.Errorf("unmarshal cart items: %w", err)
	}
	total, err := decimal.NewFromString(totalStr)
	if err != nil {
		return nil, fmt.Errorf("parse cart total: %w", err)
	}
	cart.Total = total
	return cart, nil
}

// Save stores the cart, enforcing the version token. baseVersion 0 inserts a
// new row; otherwise the stored version must equal baseVersion. The returned
// cart carries the incremented version.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart, baseVersion int64) (saved *domain.Cart, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	saved, err = saveCartTx(ctx, tx, cart, baseVersion)
	return saved, err
}

// saveCartTx performs the compare-and-swap inside an open transaction.
// Shared with MigrateGuest.
func saveCartTx(ctx context.Context, tx pgx.Tx, cart *domain.Cart, baseVersion int64) (*domain.Cart, error) {
	const sel = `SELECT version FROM carts WHERE user_id = $1 FOR UPDATE`
	const ins = `INSERT INTO carts (user_id, items, item_count, total, version, updated_at)
	             VALUES ($1, $2, $3, $4, 1, $5)`
	const upd = `UPDATE carts SET items = $2, item_count = $3, total = $4, version = $5, updated_at = $6
	             WHERE user_id = $1`

	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal cart items: %w", err)
	}

	now := time.Now().UTC()
	totalStr := cart.Total.StringFixed(2)
	var curVer int64
	scanErr := tx.QueryRow(ctx, sel, cart.UserID).Scan(&curVer)
	switch {
	case scanErr == nil:
		if curVer != baseVersion {
			return nil, domain.ErrVersionConflict
		}
		newVer := curVer + 1
		if _, err := tx.Exec(ctx, upd, cart.UserID, itemsJSON, cart.ItemCount, totalStr, newVer, now); err != nil {
			return nil, fmt.Errorf("update cart: %w", err)
		}
		saved := cart.Clone()
		saved.Version = newVer
		saved.UpdatedAt = now
		return saved, nil
	case errors.Is(scanErr, pgx.ErrNoRows):
		if baseVersion != 0 {
			return nil, domain.ErrVersionConflict
		}
		if _, err := tx.Exec(ctx, ins, cart.UserID, itemsJSON, cart.ItemCount, totalStr, now); err != nil {
			return nil, fmt.Errorf("insert cart: %w", err)
		}
		saved := cart.Clone()
		saved.Version = 1
		saved.UpdatedAt = now
		return saved, nil
	default:
		return nil, fmt.Errorf("select cart version: %w", scanErr)
	}
}

// Delete removes the cart for a user
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM carts WHERE user_id = $1`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// MigrateGuest merges the guest lines into the user's cart exactly once per
// guest cart id. The migration ledger row and the cart write commit in one
// transaction, so a crashed client can safely retry the call.
func (r *CartRepository) MigrateGuest(ctx context.Context, userID string, guestCartID uuid.UUID, guestLines []domain.CartLine) (cart *domain.Cart, applied bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const ledgerSel = `SELECT 1 FROM cart_migrations WHERE guest_cart_id = $1`
	const ledgerIns = `INSERT INTO cart_migrations (guest_cart_id, user_id, applied_at) VALUES ($1, $2, $3)`

	var one int
	scanErr := tx.QueryRow(ctx, ledgerSel, guestCartID).Scan(&one)
	if scanErr == nil {
		// Replay: the merge already happened, return current state untouched.
		cart, err = loadCartTx(ctx, tx, userID)
		return cart, false, err
	}
	if !errors.Is(scanErr, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("select cart migration: %w", scanErr)
	}

	cart, err = loadCartTx(ctx, tx, userID)
	if errors.Is(err, domain.ErrCartNotFound) {
		cart = domain.NewCart()
		cart.UserID = userID
		cart.Version = 0
		err = nil
	}
	if err != nil {
		return nil, false, err
	}

	cart.MergeGuest(guestLines)

	cart, err = saveCartTx(ctx, tx, cart, cart.Version)
	if err != nil {
		return nil, false, err
	}
	if _, err = tx.Exec(ctx, ledgerIns, guestCartID, userID, time.Now().UTC()); err != nil {
		return nil, false, fmt.Errorf("insert cart migration: %w", err)
	}
	return cart, true, nil
}

// loadCartTx reads the user's cart inside an open transaction, locking the row
func loadCartTx(ctx context.Context, tx pgx.Tx, userID string) (*domain.Cart, error) {
	const query = `SELECT items, item_count, total, version, updated_at FROM carts WHERE user_id = $1 FOR UPDATE`

	var (
		itemsJSON []byte
		totalStr  string
		cart      = domain.Cart{UserID: userID, Items: []domain.CartLine{}}
	)
	if err := tx.QueryRow(ctx, query, userID).Scan(&itemsJSON, &cart.ItemCount, &totalStr, &cart.Version, &cart.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}
	return hydrateCart(&cart, itemsJSON, totalStr)
}
