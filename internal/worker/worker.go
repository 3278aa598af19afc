package worker

import (
	"context"

	"checkout-service/internal/broker"
	"checkout-service/internal/service"
	"checkout-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageSource is the consuming side of a broker.Consumer
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// PaymentAuditWorker consumes payment events and records them in the audit trail
type PaymentAuditWorker struct {
	consumer     MessageSource
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewPaymentAuditWorker creates a new audit worker
func NewPaymentAuditWorker(consumer MessageSource, audit *service.PaymentAuditService) *PaymentAuditWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnPaymentCreated(audit.HandlePaymentCreated)
	eventHandler.OnPaymentStatusChanged(audit.HandlePaymentStatusChanged)

	return &PaymentAuditWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       util.GetLogger(),
	}
}

// Start consumes until ctx is cancelled
func (w *PaymentAuditWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting payment audit worker")
	return w.consumer.StartConsuming(ctx, w.handle)
}

func (w *PaymentAuditWorker) handle(ctx context.Context, msg kafka.Message) error {
	return w.eventHandler.HandleMessage(ctx, msg)
}

// Stop stops the worker
func (w *PaymentAuditWorker) Stop() error {
	w.logger.Info("Stopping payment audit worker")
	return w.consumer.Close()
}
