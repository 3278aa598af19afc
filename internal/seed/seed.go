// Package seed fills an empty database with a demo catalog and payments.
package seed

import (
	"context"
	"fmt"
	"math/rand"

	"checkout-service/internal/models"
	"checkout-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultProducts = 50
	DefaultPayments = 100

	maxStock      = 1000
	minPriceCents = 100
	maxPriceCents = 100000
)

var (
	adjectives = []string{"Small", "Ergonomic", "Rustic", "Intelligent", "Gorgeous", "Sleek", "Handcrafted", "Refined", "Practical", "Licensed"}
	materials  = []string{"Steel", "Wooden", "Concrete", "Plastic", "Cotton", "Granite", "Rubber", "Bronze", "Frozen", "Soft"}
	nouns      = []string{"Chair", "Car", "Computer", "Keyboard", "Mouse", "Bike", "Ball", "Gloves", "Pants", "Shirt", "Table", "Shoes", "Hat", "Towels", "Soap"}
)

// Store is the write side the seeder needs
type Store interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
}

// Result counts what a run inserted
type Result struct {
	Products int
	Payments int
}

// Seeder inserts randomly generated products and payments
type Seeder struct {
	store  Store
	rng    *rand.Rand
	logger *zap.Logger
}

// New creates a seeder drawing from rng
func New(store Store, rng *rand.Rand) *Seeder {
	return &Seeder{
		store:  store,
		rng:    rng,
		logger: util.GetLogger(),
	}
}

// Run inserts products first and then payments spread over them. Payments get
// any status, since seeded data stands in for history rather than new checkouts.
func (s *Seeder) Run(ctx context.Context, productCount, paymentCount int) (Result, error) {
	var result Result
	if paymentCount > 0 && productCount <= 0 {
		return result, fmt.Errorf("cannot seed %d payments without products", paymentCount)
	}

	s.logger.Info("Seeding products...", zap.Int("count", productCount))
	products := make([]*models.Product, 0, productCount)
	for i := 0; i < productCount; i++ {
		product := s.randomProduct()
		if err := s.store.CreateProduct(ctx, product); err != nil {
			return result, fmt.Errorf("failed to seed product %d: %w", i+1, err)
		}
		products = append(products, product)
		result.Products++
	}

	s.logger.Info("Seeding payments...", zap.Int("count", paymentCount))
	for i := 0; i < paymentCount; i++ {
		payment := s.randomPayment(products[s.rng.Intn(len(products))])
		if err := s.store.CreatePayment(ctx, payment); err != nil {
			return result, fmt.Errorf("failed to seed payment %d: %w", i+1, err)
		}
		result.Payments++
	}

	s.logger.Info("Database seeded successfully",
		zap.Int("products", result.Products),
		zap.Int("payments", result.Payments))
	return result, nil
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}

func (s *Seeder) randomPrice() decimal.Decimal {
	cents := minPriceCents + s.rng.Int63n(maxPriceCents-minPriceCents+1)
	return decimal.New(cents, -2)
}

func (s *Seeder) randomProduct() *models.Product {
	adjective, material, noun := pick(s.rng, adjectives), pick(s.rng, materials), pick(s.rng, nouns)
	return &models.Product{
		Name:        fmt.Sprintf("%s %s %s", adjective, material, noun),
		Description: fmt.Sprintf("The %s %s is made of %s materials.", adjective, noun, material),
		Price:       s.randomPrice(),
		StockLevel:  s.rng.Intn(maxStock + 1),
	}
}

func (s *Seeder) randomPayment(product *models.Product) *models.Payment {
	userID := uuid.New().String()
	return &models.Payment{
		Amount:        s.randomPrice(),
		PaymentMethod: pick(s.rng, models.PaymentMethods),
		Status:        pick(s.rng, models.PaymentStatuses),
		UserID:        &userID,
		ProductID:     product.ID,
	}
}
