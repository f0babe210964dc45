// Package testutil provides hand-written mocks for the domain repositories.
package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/horus-optical/horus-backend/internal/domain"
)

// MockCartRepository is an in-memory implementation of domain.CartRepository
type MockCartRepository struct {
	mu       sync.Mutex
	Carts    map[string]*domain.Cart
	Migrated map[uuid.UUID]bool

	// Optional overrides
	GetFn  func(ctx context.Context, userID string) (*domain.Cart, error)
	SaveFn func(ctx context.Context, cart *domain.Cart, baseVersion int64) (*domain.Cart, error)
}

// NewMockCartRepository creates a new MockCartRepository
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		Carts:    make(map[string]*domain.Cart),
		Migrated: make(map[uuid.UUID]bool),
	}
}

// Get retrieves a cart by user id
func (m *MockCartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.Carts[userID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return cart.Clone(), nil
}

// Save stores a cart, enforcing the version token like the real repository
func (m *MockCartRepository) Save(ctx context.Context, cart *domain.Cart, baseVersion int64) (*domain.Cart, error) {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, cart, baseVersion)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Carts[cart.UserID]
	if !ok {
		if baseVersion != 0 {
			return nil, domain.ErrVersionConflict
		}
		saved := cart.Clone()
		saved.Version = 1
		m.Carts[cart.UserID] = saved
		return saved.Clone(), nil
	}
	if existing.Version != baseVersion {
		return nil, domain.ErrVersionConflict
	}
	saved := cart.Clone()
	saved.Version = existing.Version + 1
	m.Carts[cart.UserID] = saved
	return saved.Clone(), nil
}

// Delete removes a cart
func (m *MockCartRepository) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Carts, userID)
	return nil
}

// MigrateGuest merges guest lines once per guest cart id
func (m *MockCartRepository) MigrateGuest(ctx context.Context, userID string, guestCartID uuid.UUID, guestLines []domain.CartLine) (*domain.Cart, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.Carts[userID]
	if !ok {
		cart = domain.NewCart()
		cart.UserID = userID
	}
	if m.Migrated[guestCartID] {
		return cart.Clone(), false, nil
	}
	merged := cart.Clone()
	merged.MergeGuest(guestLines)
	merged.Version = cart.Version + 1
	m.Carts[userID] = merged
	m.Migrated[guestCartID] = true
	return merged.Clone(), true, nil
}

// MockWishlistRepository is an in-memory implementation of domain.WishlistRepository
type MockWishlistRepository struct {
	mu        sync.Mutex
	Wishlists map[string]*domain.Wishlist
	SaveFn    func(ctx context.Context, wishlist *domain.Wishlist) (*domain.Wishlist, error)
}

// NewMockWishlistRepository creates a new MockWishlistRepository
func NewMockWishlistRepository() *MockWishlistRepository {
	return &MockWishlistRepository{Wishlists: make(map[string]*domain.Wishlist)}
}

// Get retrieves a wishlist by user id
func (m *MockWishlistRepository) Get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.Wishlists[userID]
	if !ok {
		return nil, domain.ErrWishlistNotFound
	}
	cp := *w
	cp.Items = append([]domain.WishlistItem(nil), w.Items...)
	return &cp, nil
}

// Save stores a wishlist
func (m *MockWishlistRepository) Save(ctx context.Context, wishlist *domain.Wishlist) (*domain.Wishlist, error) {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, wishlist)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *wishlist
	cp.Items = append([]domain.WishlistItem(nil), wishlist.Items...)
	m.Wishlists[wishlist.UserID] = &cp
	return wishlist, nil
}

// Delete removes a wishlist
func (m *MockWishlistRepository) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Wishlists, userID)
	return nil
}

// MockCouponRepository is an in-memory implementation of domain.CouponRepository
type MockCouponRepository struct {
	mu      sync.Mutex
	Coupons map[string]*domain.Coupon
}

// NewMockCouponRepository creates a new MockCouponRepository
func NewMockCouponRepository() *MockCouponRepository {
	return &MockCouponRepository{Coupons: make(map[string]*domain.Coupon)}
}

// GetByCode retrieves a coupon by code
func (m *MockCouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Coupons[code]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	return c, nil
}

// Upsert stores a coupon
func (m *MockCouponRepository) Upsert(ctx context.Context, coupon *domain.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Coupons[coupon.Code] = coupon
	return nil
}

// MockProductRepository is an in-memory implementation of domain.ProductRepository
type MockProductRepository struct {
	mu       sync.Mutex
	Products map[string]*domain.Product
	UpsertFn func(ctx context.Context, product *domain.Product) (*domain.Product, error)
	nextID   int64
}

// NewMockProductRepository creates a new MockProductRepository
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{Products: make(map[string]*domain.Product)}
}

// Upsert inserts or fully overwrites a product by slug
func (m *MockProductRepository) Upsert(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, product)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.Products[product.Slug]; ok {
		product.ID = existing.ID
		product.CreatedAt = existing.CreatedAt
	} else {
		m.nextID++
		product.ID = m.nextID
	}
	cp := *product
	m.Products[product.Slug] = &cp
	return product, nil
}

// GetBySlug retrieves a product by slug
func (m *MockProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Products[slug]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

// Count returns the number of stored products
func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.Products)), nil
}
