package service

import (
	"context"
	"time"

	"checkout-service/internal/models"
	"checkout-service/internal/store"
	"checkout-service/internal/util"

	"github.com/shopspring/decimal"
)

// ProductStore is the product side of the store
type ProductStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
}

// PaymentStore is what the payment service needs from the store. Product lookup
// is included for the existence check on creation.
type PaymentStore interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByID(ctx context.Context, id int64) (*models.Payment, error)
	SavePayment(ctx context.Context, payment *models.Payment) error
	ListPayments(ctx context.Context, filter store.PaymentFilter) ([]models.Payment, error)
	SumPaymentAmounts(ctx context.Context, status models.PaymentStatus) (decimal.NullDecimal, error)
	GetPaymentEvents(ctx context.Context, paymentID int64) ([]models.PaymentEvent, error)
}

// AuditStore records payment events
type AuditStore interface {
	RecordPaymentEvent(ctx context.Context, event *models.PaymentEvent) (bool, error)
}

// Cache is an expiring key/value store. Get returns redisclient.ErrCacheMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// PaymentEventPublisher announces payment changes to other consumers
type PaymentEventPublisher interface {
	PublishPaymentCreated(ctx context.Context, event *models.PaymentCreatedEvent) error
	PublishPaymentStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error
}

// observeStore times a store call; use as defer observeStore("op")()
func observeStore(operation string) func() {
	start := time.Now()
	return func() {
		util.StoreQueryLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
