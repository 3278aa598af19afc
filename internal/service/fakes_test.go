package service

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

// memoryStore is an in-memory stand-in for *store.Store
type memoryStore struct {
	mu               sync.Mutex
	products         map[int64]models.Product
	payments         map[int64]models.Payment
	events           []models.PaymentEvent
	nextID           int64
	err              error
	getProductsCalls int
	savePaymentCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products: map[int64]models.Product{},
		payments: map[int64]models.Payment{},
	}
}

func (m *memoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memoryStore) CreateProduct(_ context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	product.ID = m.id()
	product.CreatedAt = time.Now().UTC()
	m.products[product.ID] = *product
	return nil
}

func (m *memoryStore) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	product, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}
	return &product, nil
}

func (m *memoryStore) GetProducts(_ context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getProductsCalls++
	if m.err != nil {
		return nil, m.err
	}
	products := []models.Product{}
	for _, p := range m.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (m *memoryStore) CreatePayment(_ context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	payment.ID = m.id()
	payment.CreatedAt = time.Now().UTC()
	payment.UpdatedAt = payment.CreatedAt
	stored := *payment
	stored.Product = nil
	m.payments[payment.ID] = stored
	return nil
}

func (m *memoryStore) GetPaymentByID(_ context.Context, id int64) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	payment, ok := m.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %d: %w", id, store.ErrNotFound)
	}
	return &payment, nil
}

func (m *memoryStore) SavePayment(_ context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.savePaymentCalls++
	if m.err != nil {
		return m.err
	}
	stored, ok := m.payments[payment.ID]
	if !ok {
		return fmt.Errorf("payment %d: %w", payment.ID, store.ErrNotFound)
	}
	stored.Status = payment.Status
	stored.UpdatedAt = time.Now().UTC()
	payment.UpdatedAt = stored.UpdatedAt
	m.payments[payment.ID] = stored
	return nil
}

func (m *memoryStore) ListPayments(_ context.Context, filter store.PaymentFilter) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	payments := []models.Payment{}
	for _, p := range m.payments {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if product, ok := m.products[p.ProductID]; ok {
			p.Product = &product
		}
		payments = append(payments, p)
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, nil
}

func (m *memoryStore) SumPaymentAmounts(_ context.Context, status models.PaymentStatus) (decimal.NullDecimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return decimal.NullDecimal{}, m.err
	}
	var total decimal.NullDecimal
	for _, p := range m.payments {
		if p.Status != status {
			continue
		}
		total.Decimal = total.Decimal.Add(p.Amount)
		total.Valid = true
	}
	return total, nil
}

func (m *memoryStore) RecordPaymentEvent(_ context.Context, event *models.PaymentEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, e := range m.events {
		if e.EventID == event.EventID {
			return false, nil
		}
	}
	recorded := *event
	recorded.RecordedAt = time.Now().UTC()
	m.events = append(m.events, recorded)
	return true, nil
}

func (m *memoryStore) GetPaymentEvents(_ context.Context, paymentID int64) ([]models.PaymentEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	events := []models.PaymentEvent{}
	for _, e := range m.events {
		if e.PaymentID == paymentID {
			events = append(events, e)
		}
	}
	return events, nil
}

func (m *memoryStore) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *memoryStore) productCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getProductsCalls
}

// memoryCache is an in-memory Cache with injectable failures
type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", c.getErr
	}
	value, ok := c.values[key]
	if !ok {
		return "", redisclient.ErrCacheMiss
	}
	return value, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.values[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memoryCache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[key]
	return value, ok
}

func (c *memoryCache) setCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu      sync.Mutex
	created []*models.PaymentCreatedEvent
	changed []*models.PaymentStatusChangedEvent
	err     error
}

func (p *recordingPublisher) PublishPaymentCreated(_ context.Context, event *models.PaymentCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, event)
	return p.err
}

func (p *recordingPublisher) PublishPaymentStatusChanged(_ context.Context, event *models.PaymentStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, event)
	return p.err
}
