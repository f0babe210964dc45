package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/horus-optical/horus-backend/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore is the primary local store, backed by a single-file SQLite
// database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and initializes) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// A local single-client store never needs more than one connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// LoadCart loads the current cart
func (s *SQLiteStore) LoadCart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := s.load(ctx, cartKey, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveCart stores the current cart
func (s *SQLiteStore) SaveCart(ctx context.Context, cart *domain.Cart) error {
	return s.save(ctx, cartKey, cart)
}

// DeleteCart removes the stored cart
func (s *SQLiteStore) DeleteCart(ctx context.Context) error {
	return s.delete(ctx, cartKey)
}

// LoadWishlist loads the current wishlist
func (s *SQLiteStore) LoadWishlist(ctx context.Context) (*domain.Wishlist, error) {
	var wishlist domain.Wishlist
	if err := s.load(ctx, wishlistKey, &wishlist); err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// SaveWishlist stores the current wishlist
func (s *SQLiteStore) SaveWishlist(ctx context.Context, wishlist *domain.Wishlist) error {
	return s.save(ctx, wishlistKey, wishlist)
}

// DeleteWishlist removes the stored wishlist
func (s *SQLiteStore) DeleteWishlist(ctx context.Context) error {
	return s.delete(ctx, wishlistKey)
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) load(ctx context.Context, key string, out any) error {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM records WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(value, out); err != nil {
		// A corrupt record behaves like a missing one
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
