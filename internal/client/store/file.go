package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/horus-optical/horus-backend/internal/domain"
)

// FileStore is the fallback local store: plain JSON files in a directory.
// It has no dependencies beyond the filesystem, so it still works when the
// SQLite database cannot be opened.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// LoadCart loads the current cart
func (s *FileStore) LoadCart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := s.load(cartKey, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveCart stores the current cart
func (s *FileStore) SaveCart(ctx context.Context, cart *domain.Cart) error {
	return s.save(cartKey, cart)
}

// DeleteCart removes the stored cart
func (s *FileStore) DeleteCart(ctx context.Context) error {
	return s.delete(cartKey)
}

// LoadWishlist loads the current wishlist
func (s *FileStore) LoadWishlist(ctx context.Context) (*domain.Wishlist, error) {
	var wishlist domain.Wishlist
	if err := s.load(wishlistKey, &wishlist); err != nil {
		return nil, err
	}
	return &wishlist, nil
}

// SaveWishlist stores the current wishlist
func (s *FileStore) SaveWishlist(ctx context.Context, wishlist *domain.Wishlist) error {
	return s.save(wishlistKey, wishlist)
}

// DeleteWishlist removes the stored wishlist
func (s *FileStore) DeleteWishlist(ctx context.Context) error {
	return s.delete(wishlistKey)
}

// Close is a no-op for the file store
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) load(key string, out any) error {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return ErrNotFound
	}
	return nil
}

// save writes via a temp file and rename so a crash never leaves a
// half-written record
func (s *FileStore) save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("temp file for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
