// Package lifecycle enforces the linear payment status flow
// initialized -> user_set -> payment_taken -> complete.
package lifecycle

import (
	"checkout-service/internal/apperr"
	"checkout-service/internal/models"
)

var successors = map[models.PaymentStatus]models.PaymentStatus{
	models.PaymentStatusInitialized:  models.PaymentStatusUserSet,
	models.PaymentStatusUserSet:      models.PaymentStatusPaymentTaken,
	models.PaymentStatusPaymentTaken: models.PaymentStatusComplete,
}

// NextValidStatus returns the only status current may move to.
// complete and unknown statuses have no successor.
func NextValidStatus(current models.PaymentStatus) (models.PaymentStatus, bool) {
	next, ok := successors[current]
	return next, ok
}

// IsTerminal reports whether no transition out of s exists
func IsTerminal(s models.PaymentStatus) bool {
	_, ok := successors[s]
	return !ok
}

// ApplyTransition moves payment to requested if that is its single legal next status.
// The payment is mutated in place and returned; persisting it is up to the caller.
func ApplyTransition(payment *models.Payment, requested models.PaymentStatus) (*models.Payment, error) {
	next, ok := NextValidStatus(payment.Status)
	if !ok || requested != next {
		return nil, apperr.InvalidTransition(payment.Status.String(), requested.String())
	}

	payment.Status = requested
	return payment, nil
}
