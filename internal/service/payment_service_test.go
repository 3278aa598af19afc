package service

import (
	"context"
	"errors"
	"testing"

	"checkout-service/internal/apperr"
	"checkout-service/internal/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentFixture(t *testing.T) (*PaymentService, *memoryStore, *recordingPublisher) {
	t.Helper()

	st := newMemoryStore()
	seedProducts(t, st, "Widget")
	events := &recordingPublisher{}
	return NewPaymentService(st, events), st, events
}

func creditCardPayment(productID int64, amount int64) *CreatePaymentRequest {
	return &CreatePaymentRequest{
		Amount:        decimal.NewFromInt(amount),
		PaymentMethod: models.PaymentMethodCreditCard,
		ProductID:     productID,
	}
}

// putPayment stores a payment directly in the given status
func putPayment(st *memoryStore, amount decimal.Decimal, status models.PaymentStatus) int64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	id := st.id()
	st.payments[id] = models.Payment{
		ID:            id,
		Amount:        amount,
		PaymentMethod: models.PaymentMethodPaypal,
		Status:        status,
		ProductID:     1,
	}
	return id
}

func TestCreatePaymentStartsInitialized(t *testing.T) {
	svc, _, events := newPaymentFixture(t)

	payment, err := svc.CreatePayment(context.Background(), creditCardPayment(1, 100))

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusInitialized, payment.Status)
	assert.NotZero(t, payment.ID)
	require.NotNil(t, payment.Product)
	assert.Equal(t, "Widget", payment.Product.Name)

	require.Len(t, events.created, 1)
	assert.Equal(t, payment.ID, events.created[0].PaymentID)
	assert.Equal(t, models.EventTypePaymentCreated, events.created[0].EventType)
	assert.NotEmpty(t, events.created[0].EventID)
}

func TestCreatePaymentIgnoresRequestedStatus(t *testing.T) {
	svc, _, _ := newPaymentFixture(t)
	req := creditCardPayment(1, 100)
	req.Status = models.PaymentStatusComplete

	payment, err := svc.CreatePayment(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusInitialized, payment.Status)
}

func TestCreatePaymentKeepsUserID(t *testing.T) {
	svc, _, _ := newPaymentFixture(t)
	user := "user-42"
	req := creditCardPayment(1, 100)
	req.UserID = &user

	payment, err := svc.CreatePayment(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, payment.UserID)
	assert.Equal(t, user, *payment.UserID)
}

func TestCreatePaymentUnknownProduct(t *testing.T) {
	svc, st, events := newPaymentFixture(t)

	_, err := svc.CreatePayment(context.Background(), creditCardPayment(999, 100))

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, err.Error(), "999")
	assert.Empty(t, st.payments)
	assert.Empty(t, events.created)
}

func TestCreatePaymentValidation(t *testing.T) {
	svc, st, _ := newPaymentFixture(t)

	_, err := svc.CreatePayment(context.Background(), creditCardPayment(1, 0))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	req := creditCardPayment(1, 10)
	req.PaymentMethod = "cash"
	_, err = svc.CreatePayment(context.Background(), req)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	assert.Empty(t, st.payments)
}

func TestCreatePaymentRejectsAmountsTheLedgerCannotHold(t *testing.T) {
	for _, amount := range []string{"0.004", "0.006", "12.345", "10000000000", "-0.01"} {
		t.Run(amount, func(t *testing.T) {
			svc, st, events := newPaymentFixture(t)
			req := creditCardPayment(1, 0)
			req.Amount = decimal.RequireFromString(amount)

			_, err := svc.CreatePayment(context.Background(), req)

			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Empty(t, st.payments)
			assert.Empty(t, events.created)
		})
	}
}

func TestCreatePaymentAcceptsMoneyBounds(t *testing.T) {
	for _, amount := range []string{"0.01", "0.50", "9999999999.99"} {
		t.Run(amount, func(t *testing.T) {
			svc, _, _ := newPaymentFixture(t)
			req := creditCardPayment(1, 0)
			req.Amount = decimal.RequireFromString(amount)

			payment, err := svc.CreatePayment(context.Background(), req)

			require.NoError(t, err)
			assert.True(t, payment.Amount.Equal(req.Amount))
		})
	}
}

func TestCreatePaymentSurvivesPublishFailure(t *testing.T) {
	svc, st, events := newPaymentFixture(t)
	events.err = errors.New("broker unavailable")

	payment, err := svc.CreatePayment(context.Background(), creditCardPayment(1, 100))

	require.NoError(t, err)
	assert.Contains(t, st.payments, payment.ID)
}

func TestPaymentWithoutPublisher(t *testing.T) {
	st := newMemoryStore()
	seedProducts(t, st, "Widget")
	svc := NewPaymentService(st, nil)

	payment, err := svc.CreatePayment(context.Background(), creditCardPayment(1, 100))
	require.NoError(t, err)

	_, err = svc.UpdatePaymentStatus(context.Background(), payment.ID, models.PaymentStatusUserSet)
	require.NoError(t, err)
}

func TestUpdatePaymentStatusWalksLifecycle(t *testing.T) {
	svc, st, events := newPaymentFixture(t)
	ctx := context.Background()

	payment, err := svc.CreatePayment(ctx, creditCardPayment(1, 100))
	require.NoError(t, err)

	steps := []models.PaymentStatus{
		models.PaymentStatusUserSet,
		models.PaymentStatusPaymentTaken,
		models.PaymentStatusComplete,
	}
	for _, next := range steps {
		updated, err := svc.UpdatePaymentStatus(ctx, payment.ID, next)
		require.NoError(t, err, next)
		assert.Equal(t, next, updated.Status)
		assert.Equal(t, next, st.payments[payment.ID].Status)
	}

	require.Len(t, events.changed, 3)
	assert.Equal(t, models.PaymentStatusInitialized, events.changed[0].FromStatus)
	assert.Equal(t, models.PaymentStatusComplete, events.changed[2].ToStatus)
}

func TestUpdatePaymentStatusRejectsSkip(t *testing.T) {
	svc, st, events := newPaymentFixture(t)
	id := putPayment(st, decimal.NewFromInt(10), models.PaymentStatusInitialized)

	_, err := svc.UpdatePaymentStatus(context.Background(), id, models.PaymentStatusPaymentTaken)

	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "initialized")
	assert.Contains(t, err.Error(), "payment_taken")
	assert.Equal(t, models.PaymentStatusInitialized, st.payments[id].Status)
	assert.Zero(t, st.savePaymentCalls)
	assert.Empty(t, events.changed)
}

func TestUpdatePaymentStatusCompleteIsTerminal(t *testing.T) {
	svc, st, _ := newPaymentFixture(t)
	id := putPayment(st, decimal.NewFromInt(10), models.PaymentStatusComplete)

	for _, requested := range models.PaymentStatuses {
		_, err := svc.UpdatePaymentStatus(context.Background(), id, requested)
		assert.ErrorIs(t, err, apperr.ErrInvalidTransition, requested)
	}
	assert.Equal(t, models.PaymentStatusComplete, st.payments[id].Status)
}

func TestUpdatePaymentStatusUnknownStatus(t *testing.T) {
	svc, st, _ := newPaymentFixture(t)
	id := putPayment(st, decimal.NewFromInt(10), models.PaymentStatusInitialized)

	_, err := svc.UpdatePaymentStatus(context.Background(), id, "refunded")

	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdatePaymentStatusMissingPaymentIsNotFound(t *testing.T) {
	svc, _, _ := newPaymentFixture(t)

	properties := gopter.NewProperties(nil)
	properties.Property("missing payment is never an invalid transition", prop.ForAll(
		func(id int64, requested string) bool {
			_, err := svc.UpdatePaymentStatus(context.Background(), id, models.PaymentStatus(requested))
			return errors.Is(err, apperr.ErrNotFound) && !errors.Is(err, apperr.ErrInvalidTransition)
		},
		gen.Int64Range(1000, 1<<40),
		gen.OneConstOf("initialized", "user_set", "payment_taken", "complete", "bogus"),
	))
	properties.TestingRun(t)
}

func TestUpdatePaymentStatusStoreFailureIsInternal(t *testing.T) {
	svc, st, _ := newPaymentFixture(t)
	id := putPayment(st, decimal.NewFromInt(10), models.PaymentStatusInitialized)
	st.fail(errors.New("connection reset"))

	_, err := svc.UpdatePaymentStatus(context.Background(), id, models.PaymentStatusUserSet)

	assert.ErrorIs(t, err, apperr.ErrInternal)
	assert.Equal(t, "Internal server error", apperr.PublicMessage(err))
}

func TestGetPaymentsByStatus(t *testing.T) {
	svc, st, _ := newPaymentFixture(t)
	putPayment(st, decimal.NewFromInt(10), models.PaymentStatusComplete)
	putPayment(st, decimal.NewFromInt(20), models.PaymentStatusInitialized)
	putPayment(st, decimal.NewFromInt(30), models.PaymentStatusComplete)

	complete, err := svc.GetPaymentsByStatus(context.Background(), models.PaymentStatusComplete)
	require.NoError(t, err)
	require.Len(t, complete, 2)
	for _, p := range complete {
		assert.Equal(t, models.PaymentStatusComplete, p.Status)
		require.NotNil(t, p.Product)
	}

	_, err = svc.GetPaymentsByStatus(context.Background(), "pending")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetAllPayments(t *testing.T) {
	svc, st, _ := newPaymentFixture(t)

	payments, err := svc.GetAllPayments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, payments)

	putPayment(st, decimal.NewFromInt(10), models.PaymentStatusUserSet)
	putPayment(st, decimal.NewFromInt(20), models.PaymentStatusInitialized)

	payments, err = svc.GetAllPayments(context.Background())
	require.NoError(t, err)
	assert.Len(t, payments, 2)
	assert.Less(t, payments[0].ID, payments[1].ID)
}

func TestGetTotalCompletedPayments(t *testing.T) {
	svc, st, _ := newPaymentFixture(t)
	ctx := context.Background()

	total, err := svc.GetTotalCompletedPayments(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	putPayment(st, decimal.NewFromInt(10), models.PaymentStatusComplete)
	putPayment(st, decimal.NewFromInt(20), models.PaymentStatusComplete)
	putPayment(st, decimal.NewFromInt(30), models.PaymentStatusComplete)
	putPayment(st, decimal.NewFromInt(999), models.PaymentStatusInitialized)

	total, err = svc.GetTotalCompletedPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, "60", total.String())
}

func TestGetTotalCompletedPaymentsIsExactSum(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("total equals the sum of complete amounts", prop.ForAll(
		func(completeCents []int64, otherCents []int64) bool {
			st := newMemoryStore()
			svc := NewPaymentService(st, nil)

			expected := decimal.Zero
			for _, cents := range completeCents {
				amount := decimal.New(cents, -2)
				expected = expected.Add(amount)
				putPayment(st, amount, models.PaymentStatusComplete)
			}
			for _, cents := range otherCents {
				putPayment(st, decimal.New(cents, -2), models.PaymentStatusPaymentTaken)
			}

			total, err := svc.GetTotalCompletedPayments(context.Background())
			return err == nil && total.Equal(expected)
		},
		gen.SliceOf(gen.Int64Range(1, 10_000_000)),
		gen.SliceOf(gen.Int64Range(1, 10_000_000)),
	))
	properties.TestingRun(t)
}

func TestGetPaymentHistory(t *testing.T) {
	svc, st, _ := newPaymentFixture(t)
	audit := NewPaymentAuditService(st)
	ctx := context.Background()
	id := putPayment(st, decimal.NewFromInt(10), models.PaymentStatusUserSet)

	require.NoError(t, audit.HandlePaymentStatusChanged(ctx, &models.PaymentStatusChangedEvent{
		BaseEvent:  newBaseEvent(models.EventTypePaymentStatusChanged),
		PaymentID:  id,
		FromStatus: models.PaymentStatusInitialized,
		ToStatus:   models.PaymentStatusUserSet,
	}))

	history, err := svc.GetPaymentHistory(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.PaymentStatusUserSet, history[0].ToStatus)

	_, err = svc.GetPaymentHistory(ctx, 404)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
