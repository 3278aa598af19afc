package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"checkout-service/internal/models"

	"github.com/shopspring/decimal"
)

// PaymentFilter narrows ListPayments. A nil field means no restriction.
type PaymentFilter struct {
	Status *models.PaymentStatus
}

const paymentColumns = `id, amount, payment_method, status, user_id, product_id, created_at, updated_at`

const paymentWithProductSelect = `
		SELECT p.id, p.amount, p.payment_method, p.status, p.user_id, p.product_id,
		       p.created_at, p.updated_at,
		       pr.id          AS "product.id",
		       pr.name        AS "product.name",
		       pr.description AS "product.description",
		       pr.price       AS "product.price",
		       pr.stock_level AS "product.stock_level",
		       pr.created_at  AS "product.created_at"
		FROM payments p
		JOIN products pr ON pr.id = p.product_id`

// CreatePayment creates a new payment record
func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (amount, payment_method, status, user_id, product_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query,
		payment.Amount, payment.PaymentMethod, payment.Status, payment.UserID, payment.ProductID,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
}

// GetPaymentByID retrieves a payment by ID
func (s *Store) GetPaymentByID(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment,
		"SELECT "+paymentColumns+" FROM payments WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// SavePayment persists the payment's status. Only the status is mutable.
func (s *Store) SavePayment(ctx context.Context, payment *models.Payment) error {
	err := s.db.QueryRowxContext(ctx,
		"UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at",
		payment.Status, payment.ID,
	).Scan(&payment.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("payment %d: %w", payment.ID, ErrNotFound)
	}
	return err
}

// ListPayments retrieves payments matching filter with their product joined in
func (s *Store) ListPayments(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("p.status = $%d", len(args)))
	}

	query := paymentWithProductSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.id"

	payments := []models.Payment{}
	err := s.db.SelectContext(ctx, &payments, query, args...)
	return payments, err
}

// SumPaymentAmounts sums amount over payments with the given status.
// The result is invalid (NULL) when no row matches.
func (s *Store) SumPaymentAmounts(ctx context.Context, status models.PaymentStatus) (decimal.NullDecimal, error) {
	var total decimal.NullDecimal
	err := s.db.GetContext(ctx, &total,
		"SELECT SUM(amount) FROM payments WHERE status = $1", status)
	return total, err
}
