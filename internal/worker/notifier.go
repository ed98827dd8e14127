package worker

import (
	"context"
	"encoding/json"

	"shop-service/internal/broker"
	"shop-service/internal/models"
	"shop-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Notifier consumes order events and records them for customer
// notifications. Delivery is currently a structured log line; hooking in an
// email provider only needs a new case in handle.
type Notifier struct {
	consumer *broker.Consumer
	logger   *zap.Logger
}

// NewNotifier creates a notifier over the given consumer.
func NewNotifier(consumer *broker.Consumer) *Notifier {
	return &Notifier{
		consumer: consumer,
		logger:   util.GetLogger(),
	}
}

// Start consumes until the context is cancelled.
func (n *Notifier) Start(ctx context.Context) error {
	return n.consumer.StartConsuming(ctx, n.handle)
}

// Stop closes the underlying consumer.
func (n *Notifier) Stop() error {
	return n.consumer.Close()
}

func (n *Notifier) handle(ctx context.Context, msg kafka.Message) error {
	var base models.BaseEvent
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		n.logger.Warn("Failed to unmarshal event", zap.Error(err))
		return err
	}

	switch base.EventType {
	case models.EventTypeOrderCreated:
		var event models.OrderCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return err
		}
		util.OrderEventsConsumedTotal.WithLabelValues(base.EventType).Inc()
		n.logger.Info("Order confirmation notification",
			zap.String("order_id", event.OrderID),
			zap.String("order_number", event.OrderNumber),
			zap.String("user_id", event.UserID),
			zap.Float64("total", event.Total))

	case models.EventTypeOrderStatusChanged:
		var event models.OrderStatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return err
		}
		util.OrderEventsConsumedTotal.WithLabelValues(base.EventType).Inc()
		n.logger.Info("Order status notification",
			zap.String("order_id", event.OrderID),
			zap.String("from", event.FromStatus),
			zap.String("to", event.ToStatus))

	default:
		n.logger.Debug("Unhandled event type", zap.String("type", base.EventType))
	}

	return nil
}
