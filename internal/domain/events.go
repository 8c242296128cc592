package domain

import "fmt"

// Push-channel event kinds. The channel gives no delivery or ordering
// guarantee; consumers merge whole records last-applied-wins.
const (
	EventOrderNew           = "order:new"
	EventOrderUpdated       = "order:updated"
	EventCourierOrderUpdate = "courier:order-updated"
)

type PushEvent struct {
	Event     string       `json:"event"`
	OrderID   string       `json:"orderId"`
	NewStatus Status       `json:"newStatus,omitempty"`
	Order     *OrderRecord `json:"order"`
}

// Validate rejects malformed payloads before they reach the store.
func (e PushEvent) Validate() error {
	switch e.Event {
	case EventOrderNew, EventOrderUpdated, EventCourierOrderUpdate:
	default:
		return fmt.Errorf("unknown event kind %q", e.Event)
	}
	if e.OrderID == "" {
		return fmt.Errorf("event %s without orderId", e.Event)
	}
	if e.Order == nil {
		return fmt.Errorf("event %s for %s without order payload", e.Event, e.OrderID)
	}
	if e.Order.ID != e.OrderID {
		return fmt.Errorf("event orderId %s does not match payload id %s", e.OrderID, e.Order.ID)
	}
	if e.Event != EventOrderNew && !e.NewStatus.Valid() {
		return fmt.Errorf("event %s for %s with bad status %q", e.Event, e.OrderID, e.NewStatus)
	}
	return nil
}
