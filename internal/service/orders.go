package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"shop-service/internal/broker"
	"shop-service/internal/models"
	"shop-service/internal/session"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// OrderService serves order history and admin status updates.
type OrderService struct {
	store     *store.Store
	publisher *broker.EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service. publisher may be nil when
// event publishing is disabled.
func NewOrderService(store *store.Store, publisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// List returns orders visible to the session: everything for admins, only
// the requester's own orders otherwise. An optional status filter applies
// after visibility; results are newest-created first.
func (s *OrderService) List(ctx context.Context, sess *session.Session, status string) ([]models.Order, error) {
	if sess.User == nil {
		return nil, unauthorizedErr("sign in to view orders")
	}
	if status != "" && !models.ValidOrderStatus(status) {
		return nil, validationErr("unknown status: %s", status)
	}

	orders, err := s.store.Orders(ctx)
	if err != nil {
		return nil, internalErr("failed to load orders", err)
	}

	visible := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if !sess.IsAdmin() && o.UserID != sess.User.ID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		visible = append(visible, o)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	return visible, nil
}

// Get returns one order, enforcing owner-or-admin visibility.
func (s *OrderService) Get(ctx context.Context, sess *session.Session, id string) (*models.Order, error) {
	if sess.User == nil {
		return nil, unauthorizedErr("sign in to view orders")
	}

	orders, err := s.store.Orders(ctx)
	if err != nil {
		return nil, internalErr("failed to load orders", err)
	}

	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		if !sess.IsAdmin() && orders[i].UserID != sess.User.ID {
			return nil, forbiddenErr("you do not have access to this order")
		}
		return &orders[i], nil
	}
	return nil, notFoundErr("order not found")
}

// UpdateStatus moves an order to a new status, appending to its status
// history. Admin-only; the API layer enforces the role, the service
// validates the transition target against the enum.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status, note string) (*models.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.ValidOrderStatus(status) {
		return nil, validationErr("invalid status: %s", status)
	}
	if note == "" {
		note = fmt.Sprintf("Status updated to %s", status)
	}

	var updated *models.Order
	var previous string
	err := s.store.WithLock(func() error {
		orders, err := s.store.Orders(ctx)
		if err != nil {
			return internalErr("failed to load orders", err)
		}

		for i := range orders {
			if orders[i].ID != id {
				continue
			}
			now := util.Now()
			previous = orders[i].Status
			orders[i].Status = status
			orders[i].StatusHistory = append(orders[i].StatusHistory, models.StatusChange{
				Status:    status,
				Timestamp: now,
				Note:      note,
			})
			orders[i].UpdatedAt = now
			updated = &orders[i]
			return s.store.SaveOrders(ctx, orders)
		}
		return notFoundErr("order not found")
	})
	if err != nil {
		if _, ok := err.(*Error); ok {
			return nil, err
		}
		return nil, internalErr("failed to save orders", err)
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(status).Inc()
	s.logger.Info("Order status updated",
		zap.String("order_id", id),
		zap.String("from", previous),
		zap.String("to", status))

	if s.publisher != nil {
		event := &models.OrderStatusChangedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   util.NewID(),
				EventType: models.EventTypeOrderStatusChanged,
				Timestamp: util.Now(),
			},
			OrderID:     updated.ID,
			OrderNumber: updated.OrderNumber,
			UserID:      updated.UserID,
			FromStatus:  previous,
			ToStatus:    status,
			Note:        note,
		}
		if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
		}
	}

	return updated, nil
}
