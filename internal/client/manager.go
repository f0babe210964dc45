// Package client is the storefront-side library: a local-first cart and
// wishlist that survive restarts, sync to the backend when a user is
// logged in, and migrate guest state on login.
package client

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	"github.com/google/uuid"
	"github.com/horus-optical/horus-backend/internal/client/store"
	"github.com/horus-optical/horus-backend/internal/client/sync"
	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/rs/zerolog"
)

// API is the backend surface the manager needs
type API interface {
	sync.CartPusher
	PullCart(ctx context.Context) (*domain.Cart, error)
	MigrateGuestCart(ctx context.Context, guestCartID uuid.UUID, items []domain.CartLine) (*domain.Cart, error)
	PullWishlist(ctx context.Context) (*domain.Wishlist, error)
	SyncWishlist(ctx context.Context, items []domain.WishlistItem) (*domain.Wishlist, error)
	RemoveWishlistItem(ctx context.Context, productID string) (*domain.Wishlist, error)
	ClearWishlist(ctx context.Context) error
}

// Manager owns the device-local cart and wishlist. Every mutation is
// persisted locally first; when a user is logged in the change is also
// queued for server delivery through the outbox.
type Manager struct {
	local  store.Store
	api    API
	outbox *sync.Outbox
	logger zerolog.Logger

	mu       gosync.Mutex
	loggedIn bool
}

// NewManager creates a Manager. Call Start to begin background delivery.
func NewManager(local store.Store, api API, logger zerolog.Logger) *Manager {
	return &Manager{
		local:  local,
		api:    api,
		outbox: sync.NewOutbox(api, local, logger),
		logger: logger,
	}
}

// Start runs the outbox until ctx is cancelled
func (m *Manager) Start(ctx context.Context) {
	go m.outbox.Run(ctx)
}

// Cart returns the current cart, creating an empty one on first use
func (m *Manager) Cart(ctx context.Context) (*domain.Cart, error) {
	cart, err := m.local.LoadCart(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewCart(), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem adds qty of the line to the cart
func (m *Manager) AddItem(ctx context.Context, line domain.CartLine, qty int) (*domain.Cart, error) {
	return m.mutateCart(ctx, func(cart *domain.Cart) {
		cart.AddItem(line, qty)
	})
}

// UpdateQuantity sets a line's quantity; zero or less removes the line
func (m *Manager) UpdateQuantity(ctx context.Context, key domain.LineKey, qty int) (*domain.Cart, error) {
	return m.mutateCart(ctx, func(cart *domain.Cart) {
		cart.UpdateQuantity(key, qty)
	})
}

// RemoveItem removes the line with the given key
func (m *Manager) RemoveItem(ctx context.Context, key domain.LineKey) (*domain.Cart, error) {
	return m.mutateCart(ctx, func(cart *domain.Cart) {
		cart.RemoveItem(key)
	})
}

// ClearCart empties the cart
func (m *Manager) ClearCart(ctx context.Context) (*domain.Cart, error) {
	return m.mutateCart(ctx, func(cart *domain.Cart) {
		cart.Clear()
	})
}

func (m *Manager) mutateCart(ctx context.Context, mutate func(*domain.Cart)) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, err := m.Cart(ctx)
	if err != nil {
		return nil, err
	}
	mutate(cart)
	if err := m.local.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("persist cart: %w", err)
	}
	if m.loggedIn {
		m.outbox.Enqueue(cart)
	}
	return cart, nil
}

// Wishlist returns the current wishlist, creating an empty one on first use
func (m *Manager) Wishlist(ctx context.Context) (*domain.Wishlist, error) {
	wishlist, err := m.local.LoadWishlist(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewWishlist(), nil
	}
	if err != nil {
		return nil, err
	}
	return wishlist, nil
}

// ToggleWishlist adds the item, or removes it when already present
func (m *Manager) ToggleWishlist(ctx context.Context, item domain.WishlistItem) (*domain.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wishlist, err := m.Wishlist(ctx)
	if err != nil {
		return nil, err
	}
	removed := wishlist.Remove(item.ProductID)
	if !removed {
		wishlist.Add(item)
	}
	if err := m.local.SaveWishlist(ctx, wishlist); err != nil {
		return nil, fmt.Errorf("persist wishlist: %w", err)
	}
	if !m.loggedIn {
		return wishlist, nil
	}

	// The sync endpoint is a union merge, so a removal pushed through it
	// would be resurrected; removals get their own call
	var synced *domain.Wishlist
	if removed {
		synced, err = m.api.RemoveWishlistItem(ctx, item.ProductID)
	} else {
		synced, err = m.api.SyncWishlist(ctx, wishlist.Items)
	}
	if err != nil {
		m.logger.Warn().Err(err).Msg("wishlist sync failed, local state kept")
		return wishlist, nil
	}
	if err := m.local.SaveWishlist(ctx, synced); err == nil {
		wishlist = synced
	}
	return wishlist, nil
}

// ClearWishlist empties the wishlist, on the server too when logged in
func (m *Manager) ClearWishlist(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.local.DeleteWishlist(ctx); err != nil {
		return err
	}
	if m.loggedIn {
		if err := m.api.ClearWishlist(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("wishlist clear failed on server")
		}
	}
	return nil
}

// Login adopts the server state after authentication. A non-empty guest
// cart is migrated (merged server-side, exactly once per guest cart id);
// the wishlist is unioned. The resulting server state replaces the local
// copies. A cart that was already adopted in an earlier session is never
// re-migrated: it is reconciled against the server copy instead.
func (m *Manager) Login(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	local, err := m.Cart(ctx)
	if err != nil {
		return err
	}

	var serverCart *domain.Cart
	switch {
	case local.IsEmpty():
		serverCart, err = m.api.PullCart(ctx)
	case local.Adopted():
		// Re-login after a restart: the stored cart already reflects a
		// server state, so migrating it would double the quantities.
		// Local edits win per line; the merged result is queued so any
		// offline change reaches the server.
		server, pullErr := m.api.PullCart(ctx)
		if pullErr != nil {
			err = pullErr
			break
		}
		serverCart = sync.ResolveConflict(local, server)
		m.outbox.Enqueue(serverCart)
	default:
		serverCart, err = m.api.MigrateGuestCart(ctx, local.ID, local.Items)
	}
	if err != nil {
		return fmt.Errorf("adopt server cart: %w", err)
	}
	if err := m.local.SaveCart(ctx, serverCart); err != nil {
		return fmt.Errorf("persist server cart: %w", err)
	}

	wishlist, err := m.Wishlist(ctx)
	if err != nil {
		return err
	}
	var serverWishlist *domain.Wishlist
	if wishlist.Count() == 0 {
		serverWishlist, err = m.api.PullWishlist(ctx)
	} else {
		serverWishlist, err = m.api.SyncWishlist(ctx, wishlist.Items)
	}
	if err != nil {
		return fmt.Errorf("adopt server wishlist: %w", err)
	}
	if err := m.local.SaveWishlist(ctx, serverWishlist); err != nil {
		return fmt.Errorf("persist server wishlist: %w", err)
	}

	m.loggedIn = true
	m.logger.Info().
		Int("cart_items", serverCart.ItemCount).
		Int("wishlist_items", serverWishlist.Count()).
		Msg("adopted server state after login")
	return nil
}

// Logout detaches from the server. The cart contents stay on the device
// as a fresh guest cart so a later login migrates them again.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, err := m.Cart(ctx)
	if err != nil {
		return err
	}

	guest := domain.NewCart()
	for _, line := range cart.Items {
		guest.AddItem(line, line.Quantity)
	}
	if err := m.local.SaveCart(ctx, guest); err != nil {
		return fmt.Errorf("persist guest cart: %w", err)
	}

	m.loggedIn = false
	return nil
}

// Flush pushes any pending cart change synchronously
func (m *Manager) Flush(ctx context.Context) {
	m.outbox.Flush(ctx)
}
