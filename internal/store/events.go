package store

import (
	"context"

	"checkout-service/internal/models"
)

// RecordPaymentEvent appends an event to the payment audit trail.
// It reports false when the event id was already recorded.
func (s *Store) RecordPaymentEvent(ctx context.Context, event *models.PaymentEvent) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_events (event_id, event_type, payment_id, from_status, to_status, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING`,
		event.EventID, event.EventType, event.PaymentID, event.FromStatus, event.ToStatus, event.OccurredAt)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// GetPaymentEvents returns the audit trail of a payment, oldest first
func (s *Store) GetPaymentEvents(ctx context.Context, paymentID int64) ([]models.PaymentEvent, error) {
	events := []models.PaymentEvent{}
	err := s.db.SelectContext(ctx, &events, `
		SELECT event_id, event_type, payment_id, from_status, to_status, occurred_at, recorded_at
		FROM payment_events
		WHERE payment_id = $1
		ORDER BY occurred_at, recorded_at`, paymentID)
	return events, err
}
