package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypePaymentCreated       = "PAYMENT_CREATED"
	EventTypePaymentStatusChanged = "PAYMENT_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentCreatedEvent published when a payment is created
type PaymentCreatedEvent struct {
	BaseEvent
	PaymentID     int64           `json:"payment_id"`
	ProductID     int64           `json:"product_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        PaymentStatus   `json:"status"`
	UserID        *string         `json:"user_id,omitempty"`
}

// PaymentStatusChangedEvent published after a lifecycle transition is persisted
type PaymentStatusChangedEvent struct {
	BaseEvent
	PaymentID  int64         `json:"payment_id"`
	FromStatus PaymentStatus `json:"from_status"`
	ToStatus   PaymentStatus `json:"to_status"`
}
