// Package events announces catalog changes to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Action names the kind of change applied to an item.
type Action string

const (
	ActionCreated      Action = "item.created"
	ActionUpdated      Action = "item.updated"
	ActionDeleted      Action = "item.deleted"
	ActionImported     Action = "item.imported"
	ActionPriceChanged Action = "item.price_changed"
	ActionQtyChanged   Action = "item.quantity_changed"
	ActionRoomChanged  Action = "item.room_changed"
	ActionFavorite     Action = "item.favorite_toggled"
)

// ItemEvent is the message emitted after a durable mutation.
type ItemEvent struct {
	Action    Action    `json:"action"`
	ItemID    string    `json:"itemId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewItemEvent builds an event stamped with at.
func NewItemEvent(action Action, itemID string, at time.Time) ItemEvent {
	return ItemEvent{Action: action, ItemID: itemID, Timestamp: at}
}

func (e ItemEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers item events.
type Publisher interface {
	Publish(ctx context.Context, e ItemEvent) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, ItemEvent) error { return nil }
