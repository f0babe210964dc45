package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventTypeUpdated  EventType = "updated"
	EventTypeCleared  EventType = "cleared"
	EventTypeMigrated EventType = "migrated"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeCart     EntityType = "cart"
	EntityTypeWishlist EntityType = "wishlist"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "cart.updated"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "cart"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// CartUpdated creates a cart.updated event
func CartUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCart, payload)
}

// CartCleared creates a cart.cleared event
func CartCleared(payload interface{}) Event {
	return NewEvent(EventTypeCleared, EntityTypeCart, payload)
}

// CartMigrated creates a cart.migrated event (guest cart folded in on login)
func CartMigrated(payload interface{}) Event {
	return NewEvent(EventTypeMigrated, EntityTypeCart, payload)
}

// WishlistUpdated creates a wishlist.updated event
func WishlistUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeWishlist, payload)
}
