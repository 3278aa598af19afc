package service

import (
	"context"
	"errors"
	"time"

	"checkout-service/internal/apperr"
	"checkout-service/internal/lifecycle"
	"checkout-service/internal/models"
	"checkout-service/internal/store"
	"checkout-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService manages payments and their status lifecycle
type PaymentService struct {
	store  PaymentStore
	events PaymentEventPublisher
	logger *zap.Logger
}

// NewPaymentService creates a new payment service. events may be nil, in which
// case no domain events are published.
func NewPaymentService(store PaymentStore, events PaymentEventPublisher) *PaymentService {
	return &PaymentService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// CreatePaymentRequest represents a request to start a checkout.
// Status is accepted for compatibility but every payment starts initialized.
type CreatePaymentRequest struct {
	Amount        decimal.Decimal      `json:"amount" binding:"required,gt=0"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required,payment_method"`
	ProductID     int64                `json:"productId" binding:"required,gt=0"`
	UserID        *string              `json:"userId"`
	Status        models.PaymentStatus `json:"status"`
}

// UpdatePaymentStatusRequest is the body of a status change
type UpdatePaymentStatusRequest struct {
	Status models.PaymentStatus `json:"status" binding:"required"`
}

// TotalCompleted is the sum of all completed payment amounts
type TotalCompleted struct {
	Total decimal.Decimal `json:"total"`
}

// CreatePayment creates an initialized payment for an existing product
func (s *PaymentService) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*models.Payment, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.CreatePayment")
	defer span.End()

	if err := checkMoney("Amount", req.Amount); err != nil {
		return nil, err
	}
	if !req.PaymentMethod.Valid() {
		return nil, apperr.Validation("Invalid payment method: %s", req.PaymentMethod)
	}

	product, err := s.lookupProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Status:        models.PaymentStatusInitialized,
		UserID:        req.UserID,
		ProductID:     product.ID,
	}

	done := observeStore("create_payment")
	err = s.store.CreatePayment(ctx, payment)
	done()
	if err != nil {
		return nil, apperr.Internal("failed to create payment", err)
	}
	payment.Product = product

	util.PaymentsCreatedTotal.WithLabelValues(string(payment.PaymentMethod)).Inc()
	s.logger.Info("Payment created",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("product_id", payment.ProductID),
		zap.String("method", string(payment.PaymentMethod)))

	s.publishCreated(ctx, payment)
	return payment, nil
}

func (s *PaymentService) lookupProduct(ctx context.Context, productID int64) (*models.Product, error) {
	done := observeStore("get_product")
	defer done()

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Product with ID %d not found", productID)
		}
		return nil, apperr.Internal("failed to load product", err)
	}
	return product, nil
}

func (s *PaymentService) lookupPayment(ctx context.Context, id int64) (*models.Payment, error) {
	done := observeStore("get_payment")
	defer done()

	payment, err := s.store.GetPaymentByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Payment with ID %d not found", id)
		}
		return nil, apperr.Internal("failed to load payment", err)
	}
	return payment, nil
}

// UpdatePaymentStatus advances a payment one step along its lifecycle.
// A missing payment is reported before the requested status is looked at.
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, id int64, requested models.PaymentStatus) (*models.Payment, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.UpdatePaymentStatus")
	defer span.End()

	payment, err := s.lookupPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if !requested.Valid() {
		return nil, apperr.Validation("Invalid payment status: %s", requested)
	}

	from := payment.Status
	if _, err := lifecycle.ApplyTransition(payment, requested); err != nil {
		util.PaymentTransitionsRejectedTotal.WithLabelValues(string(from), string(requested)).Inc()
		s.logger.Info("Rejected payment status change",
			zap.Int64("payment_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(requested)))
		return nil, err
	}

	done := observeStore("save_payment")
	err = s.store.SavePayment(ctx, payment)
	done()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("Payment with ID %d not found", id)
		}
		return nil, apperr.Internal("failed to update payment", err)
	}

	util.PaymentTransitionsTotal.WithLabelValues(string(from), string(payment.Status)).Inc()
	s.logger.Info("Payment status updated",
		zap.Int64("payment_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(payment.Status)))

	s.publishStatusChanged(ctx, payment, from)
	return payment, nil
}

// GetAllPayments returns every payment with its product
func (s *PaymentService) GetAllPayments(ctx context.Context) ([]models.Payment, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.GetAllPayments")
	defer span.End()

	return s.listPayments(ctx, store.PaymentFilter{})
}

// GetPaymentsByStatus returns the payments currently in status
func (s *PaymentService) GetPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.GetPaymentsByStatus")
	defer span.End()

	if !status.Valid() {
		return nil, apperr.Validation("Invalid payment status: %s", status)
	}

	return s.listPayments(ctx, store.PaymentFilter{Status: &status})
}

func (s *PaymentService) listPayments(ctx context.Context, filter store.PaymentFilter) ([]models.Payment, error) {
	done := observeStore("list_payments")
	defer done()

	payments, err := s.store.ListPayments(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("failed to list payments", err)
	}
	return payments, nil
}

// GetTotalCompletedPayments sums the amounts of complete payments. No complete
// payments yields zero.
func (s *PaymentService) GetTotalCompletedPayments(ctx context.Context) (decimal.Decimal, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.GetTotalCompletedPayments")
	defer span.End()

	done := observeStore("sum_payments")
	total, err := s.store.SumPaymentAmounts(ctx, models.PaymentStatusComplete)
	done()
	if err != nil {
		return decimal.Zero, apperr.Internal("failed to sum completed payments", err)
	}

	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// GetPaymentHistory returns the recorded lifecycle events of a payment, oldest first
func (s *PaymentService) GetPaymentHistory(ctx context.Context, id int64) ([]models.PaymentEvent, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.GetPaymentHistory")
	defer span.End()

	if _, err := s.lookupPayment(ctx, id); err != nil {
		return nil, err
	}

	done := observeStore("get_payment_events")
	defer done()

	events, err := s.store.GetPaymentEvents(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to load payment history", err)
	}
	return events, nil
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// publishCreated and publishStatusChanged are best effort: the payment is
// already committed, so a broker failure is only logged.
func (s *PaymentService) publishCreated(ctx context.Context, payment *models.Payment) {
	if s.events == nil {
		return
	}

	event := &models.PaymentCreatedEvent{
		BaseEvent:     newBaseEvent(models.EventTypePaymentCreated),
		PaymentID:     payment.ID,
		ProductID:     payment.ProductID,
		Amount:        payment.Amount,
		PaymentMethod: payment.PaymentMethod,
		Status:        payment.Status,
		UserID:        payment.UserID,
	}

	if err := s.events.PublishPaymentCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish PaymentCreated event",
			zap.Int64("payment_id", payment.ID),
			zap.Error(err))
	}
}

func (s *PaymentService) publishStatusChanged(ctx context.Context, payment *models.Payment, from models.PaymentStatus) {
	if s.events == nil {
		return
	}

	event := &models.PaymentStatusChangedEvent{
		BaseEvent:  newBaseEvent(models.EventTypePaymentStatusChanged),
		PaymentID:  payment.ID,
		FromStatus: from,
		ToStatus:   payment.Status,
	}

	if err := s.events.PublishPaymentStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish PaymentStatusChanged event",
			zap.Int64("payment_id", payment.ID),
			zap.Error(err))
	}
}
