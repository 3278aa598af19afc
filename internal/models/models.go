package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	StockLevel  int             `db:"stock_level" json:"stockLevel"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// PaymentMethod is how the customer pays
type PaymentMethod string

// Payment methods
const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// PaymentMethods lists every accepted payment method
var PaymentMethods = []PaymentMethod{
	PaymentMethodCreditCard,
	PaymentMethodPaypal,
	PaymentMethodBankTransfer,
}

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// PaymentStatus is a step of the checkout lifecycle
type PaymentStatus string

// Payment statuses, in lifecycle order
const (
	PaymentStatusInitialized  PaymentStatus = "initialized"
	PaymentStatusUserSet      PaymentStatus = "user_set"
	PaymentStatusPaymentTaken PaymentStatus = "payment_taken"
	PaymentStatusComplete     PaymentStatus = "complete"
)

// PaymentStatuses lists every status in lifecycle order
var PaymentStatuses = []PaymentStatus{
	PaymentStatusInitialized,
	PaymentStatusUserSet,
	PaymentStatusPaymentTaken,
	PaymentStatusComplete,
}

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	for _, known := range PaymentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s PaymentStatus) String() string {
	return string(s)
}

// Payment represents a payment for a single product
type Payment struct {
	ID            int64           `db:"id" json:"id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"paymentMethod"`
	Status        PaymentStatus   `db:"status" json:"status"`
	UserID        *string         `db:"user_id" json:"userId,omitempty"`
	ProductID     int64           `db:"product_id" json:"productId"`
	Product       *Product        `db:"product" json:"product,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// PaymentEvent is one recorded entry of a payment's audit trail
type PaymentEvent struct {
	EventID    string        `db:"event_id" json:"eventId"`
	EventType  string        `db:"event_type" json:"eventType"`
	PaymentID  int64         `db:"payment_id" json:"paymentId"`
	FromStatus *string       `db:"from_status" json:"fromStatus,omitempty"`
	ToStatus   PaymentStatus `db:"to_status" json:"toStatus"`
	OccurredAt time.Time     `db:"occurred_at" json:"occurredAt"`
	RecordedAt time.Time     `db:"recorded_at" json:"recordedAt"`
}
