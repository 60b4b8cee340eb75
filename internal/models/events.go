package models

import "time"

// Event types
const (
	EventTypeOrderRecorded  = "ORDER_RECORDED"
	EventTypeCheckoutFailed = "CHECKOUT_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderRecordedEvent published after a completed checkout is persisted
type OrderRecordedEvent struct {
	BaseEvent
	OrderID   string      `json:"order_id"`
	SessionID string      `json:"session_id"`
	Total     int64       `json:"total"`
	Items     []OrderItem `json:"items"`
}

// CheckoutFailedEvent published when a checkout attempt fails
type CheckoutFailedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
	Message   string `json:"message,omitempty"`
}
