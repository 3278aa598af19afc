package api

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"checkout-service/internal/models"
	"checkout-service/internal/redisclient"
	"checkout-service/internal/store"

	"github.com/shopspring/decimal"
)

// fakeStore backs both services in handler tests
type fakeStore struct {
	mu       sync.Mutex
	products []models.Product
	payments []models.Payment
	events   []models.PaymentEvent
	err      error
}

func (f *fakeStore) CreateProduct(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	product.ID = int64(len(f.products) + 1)
	product.CreatedAt = time.Now().UTC()
	f.products = append(f.products, *product)
	return nil
}

func (f *fakeStore) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
}

func (f *fakeStore) GetProducts(_ context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Product{}, f.products...), nil
}

func (f *fakeStore) CreatePayment(_ context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	payment.ID = int64(len(f.payments) + 1)
	payment.CreatedAt = time.Now().UTC()
	payment.UpdatedAt = payment.CreatedAt
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakeStore) GetPaymentByID(_ context.Context, id int64) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.payments {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("payment %d: %w", id, store.ErrNotFound)
}

func (f *fakeStore) SavePayment(_ context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.payments {
		if f.payments[i].ID == payment.ID {
			f.payments[i].Status = payment.Status
			return nil
		}
	}
	return fmt.Errorf("payment %d: %w", payment.ID, store.ErrNotFound)
}

func (f *fakeStore) ListPayments(_ context.Context, filter store.PaymentFilter) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	payments := []models.Payment{}
	for _, p := range f.payments {
		if filter.Status == nil || p.Status == *filter.Status {
			payments = append(payments, p)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, nil
}

func (f *fakeStore) SumPaymentAmounts(_ context.Context, status models.PaymentStatus) (decimal.NullDecimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return decimal.NullDecimal{}, f.err
	}
	var total decimal.NullDecimal
	for _, p := range f.payments {
		if p.Status == status {
			total = decimal.NullDecimal{Decimal: total.Decimal.Add(p.Amount), Valid: true}
		}
	}
	return total, nil
}

func (f *fakeStore) GetPaymentEvents(_ context.Context, paymentID int64) ([]models.PaymentEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := []models.PaymentEvent{}
	for _, e := range f.events {
		if e.PaymentID == paymentID {
			events = append(events, e)
		}
	}
	return events, nil
}

// nopCache always misses and drops writes
type nopCache struct{}

func (nopCache) Get(context.Context, string) (string, error) { return "", redisclient.ErrCacheMiss }

func (nopCache) Set(context.Context, string, string, time.Duration) error { return nil }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }
