package service

import (
	"context"
	"fmt"

	"checkout-service/internal/broker"
	"checkout-service/internal/models"
	"checkout-service/internal/util"

	"go.uber.org/zap"
)

// PaymentAuditService records payment events into the audit trail
type PaymentAuditService struct {
	store  AuditStore
	logger *zap.Logger
}

// NewPaymentAuditService creates a new audit service
func NewPaymentAuditService(store AuditStore) *PaymentAuditService {
	return &PaymentAuditService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// HandlePaymentCreated records the creation of a payment
func (as *PaymentAuditService) HandlePaymentCreated(ctx context.Context, event *models.PaymentCreatedEvent) error {
	ctx, span := util.StartSpan(ctx, "PaymentAuditService.HandlePaymentCreated")
	defer span.End()

	return as.record(ctx, &models.PaymentEvent{
		EventID:    event.EventID,
		EventType:  event.EventType,
		PaymentID:  event.PaymentID,
		ToStatus:   event.Status,
		OccurredAt: event.Timestamp,
	})
}

// HandlePaymentStatusChanged records a lifecycle transition
func (as *PaymentAuditService) HandlePaymentStatusChanged(ctx context.Context, event *models.PaymentStatusChangedEvent) error {
	ctx, span := util.StartSpan(ctx, "PaymentAuditService.HandlePaymentStatusChanged")
	defer span.End()

	from := string(event.FromStatus)
	return as.record(ctx, &models.PaymentEvent{
		EventID:    event.EventID,
		EventType:  event.EventType,
		PaymentID:  event.PaymentID,
		FromStatus: &from,
		ToStatus:   event.ToStatus,
		OccurredAt: event.Timestamp,
	})
}

func (as *PaymentAuditService) record(ctx context.Context, event *models.PaymentEvent) error {
	if event.EventID == "" {
		return fmt.Errorf("event for payment %d has no id: %w", event.PaymentID, broker.ErrMalformedMessage)
	}

	done := observeStore("record_payment_event")
	inserted, err := as.store.RecordPaymentEvent(ctx, event)
	done()
	if err != nil {
		return fmt.Errorf("failed to record payment event: %w", err)
	}

	if !inserted {
		as.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	util.PaymentEventsRecordedTotal.WithLabelValues(event.EventType).Inc()
	as.logger.Debug("Recorded payment event",
		zap.String("event_id", event.EventID),
		zap.Int64("payment_id", event.PaymentID))
	return nil
}
