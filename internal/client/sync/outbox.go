package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/horus-optical/horus-backend/internal/client/store"
	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

const (
	// flushInterval is how often an unflushed cart is retried without a
	// new enqueue
	flushInterval = 30 * time.Second
	// maxConflictRounds bounds re-merge attempts within one flush
	maxConflictRounds = 3
)

// CartPusher pushes a cart state to the server
type CartPusher interface {
	PushCart(ctx context.Context, items []domain.CartLine, baseVersion int64) (*domain.Cart, error)
}

// Outbox delivers local cart changes to the server. Writes are coalesced:
// only the newest cart state matters, so an enqueue replaces any pending
// one. Failed pushes stay pending and are retried on the next enqueue or
// on the periodic flush; the cart itself is already durable in the local
// store, so a lost push never loses data.
type Outbox struct {
	pusher CartPusher
	local  store.Store
	logger zerolog.Logger

	mu      sync.Mutex
	pending *domain.Cart

	notify  chan struct{}
	done    chan struct{}
	backoff func() retry.Backoff
}

// NewOutbox creates an Outbox. Call Run to start delivery.
func NewOutbox(pusher CartPusher, local store.Store, logger zerolog.Logger) *Outbox {
	return &Outbox{
		pusher: pusher,
		local:  local,
		logger: logger,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(4, retry.NewExponential(500*time.Millisecond))
		},
	}
}

// Enqueue schedules the cart for delivery, replacing any pending state
func (o *Outbox) Enqueue(cart *domain.Cart) {
	o.mu.Lock()
	o.pending = cart.Clone()
	o.mu.Unlock()

	select {
	case o.notify <- struct{}{}:
	default:
	}
}

// Run delivers pending carts until ctx is cancelled
func (o *Outbox) Run(ctx context.Context) {
	defer close(o.done)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-o.notify:
		case <-ticker.C:
		}
		o.flush(ctx)
	}
}

// Done is closed once Run has returned
func (o *Outbox) Done() <-chan struct{} {
	return o.done
}

// Flush pushes the pending cart synchronously, for tests and shutdown
func (o *Outbox) Flush(ctx context.Context) {
	o.flush(ctx)
}

func (o *Outbox) flush(ctx context.Context) {
	o.mu.Lock()
	cart := o.pending
	o.pending = nil
	o.mu.Unlock()

	if cart == nil {
		return
	}

	saved, err := o.push(ctx, cart)
	if err != nil {
		o.logger.Warn().Err(err).Int64("base_version", cart.Version).Msg("cart push failed, keeping pending")
		o.mu.Lock()
		// a newer enqueue wins over the failed state
		if o.pending == nil {
			o.pending = cart
		}
		o.mu.Unlock()
		return
	}

	o.writeBack(ctx, saved)
}

// writeBack adopts the pushed result into the local store. The stored cart
// may already be newer than the state that was pushed, so only the identity
// and version token are taken from the server echo; newer local lines are
// left in place for the next push.
func (o *Outbox) writeBack(ctx context.Context, saved *domain.Cart) {
	current, err := o.local.LoadCart(ctx)
	if err != nil {
		current = saved
	} else {
		current.ID = saved.ID
		current.UserID = saved.UserID
		current.Version = saved.Version
	}
	if err := o.local.SaveCart(ctx, current); err != nil {
		o.logger.Warn().Err(err).Msg("failed to persist pushed cart locally")
	}
}

// push delivers one cart state, resolving version conflicts by re-merging
// onto the server cart and retrying with its version
func (o *Outbox) push(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	current := cart
	for round := 0; round <= maxConflictRounds; round++ {
		var saved *domain.Cart
		err := retry.Do(ctx, o.backoff(), func(ctx context.Context) error {
			pushed, err := o.pusher.PushCart(ctx, current.Items, current.Version)
			if err != nil {
				var conflict *ConflictError
				if errors.As(err, &conflict) {
					// not transient, handled by the outer loop
					return err
				}
				return retry.RetryableError(err)
			}
			saved = pushed
			return nil
		})
		if err == nil {
			return saved, nil
		}

		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			return nil, err
		}
		o.logger.Info().
			Int64("local_version", current.Version).
			Int64("server_version", conflict.Cart.Version).
			Msg("cart version conflict, re-merging")
		current = ResolveConflict(current, conflict.Cart)
	}
	return nil, errors.New("sync: unresolved cart conflict")
}

// ResolveConflict merges a rejected local cart onto the current server
// cart. Local quantities win per line; server lines the local cart never
// saw are kept. The result carries the server's version so the retry can
// succeed.
func ResolveConflict(local, server *domain.Cart) *domain.Cart {
	merged := server.Clone()
	for _, line := range local.Items {
		if !merged.UpdateQuantity(line.Key(), line.Quantity) {
			merged.AddItem(line, line.Quantity)
		}
	}
	return merged
}
