package worker

import (
	"context"

	"auroma-service/internal/broker"
	"auroma-service/internal/mailer"
	"auroma-service/internal/models"
	"auroma-service/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes order events and turns them into customer
// emails. Events with no resolvable address are acknowledged and skipped.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	mailer       mailer.Mailer
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, m mailer.Mailer) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		mailer:   m,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	eventHandler.OnPointsAwarded(w.handlePointsAwarded)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	if event.Email == "" {
		w.logger.Warn("OrderCreated event without email, skipping confirmation",
			zap.String("order_id", event.OrderID))
		return nil
	}
	return w.mailer.SendOrderConfirmation(ctx, event.Email, event.OrderID, event.Total)
}

func (w *NotificationWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	if event.Email == "" {
		return nil
	}
	return w.mailer.SendOrderStatusUpdate(ctx, event.Email, event.OrderID, event.NewStatus)
}

func (w *NotificationWorker) handlePointsAwarded(ctx context.Context, event *models.PointsAwardedEvent) error {
	if event.Email == "" {
		return nil
	}
	return w.mailer.SendPointsAwarded(ctx, event.Email, event.Points)
}
