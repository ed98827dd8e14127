package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/util"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: data}
}

func TestNotifierHandlesOrderEvents(t *testing.T) {
	n := &Notifier{logger: util.GetLogger()}
	ctx := context.Background()

	created := models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "e1",
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:     "o1",
		OrderNumber: "ORD-1",
		UserID:      "u1",
		Total:       108,
	}
	assert.NoError(t, n.handle(ctx, message(t, created)))

	changed := models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "e2",
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    "o1",
		FromStatus: models.OrderStatusPending,
		ToStatus:   models.OrderStatusShipped,
	}
	assert.NoError(t, n.handle(ctx, message(t, changed)))

	// Unknown event types are ignored, not errors.
	unknown := models.BaseEvent{EventID: "e3", EventType: "SOMETHING_ELSE", Timestamp: time.Now()}
	assert.NoError(t, n.handle(ctx, message(t, unknown)))
}

func TestNotifierRejectsMalformedMessages(t *testing.T) {
	n := &Notifier{logger: util.GetLogger()}

	err := n.handle(context.Background(), kafka.Message{Value: []byte("{broken")})
	assert.Error(t, err)
}
