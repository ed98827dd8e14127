package service

import (
	"context"

	"shop-service/internal/broker"
	"shop-service/internal/models"
	"shop-service/internal/session"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// Pricing holds the checkout money constants.
type Pricing struct {
	// FreeShippingThreshold is the subtotal at or above which shipping is
	// waived.
	FreeShippingThreshold float64
	// FlatShippingRate applies below the threshold.
	FlatShippingRate float64
	// TaxRate is applied to the subtotal.
	TaxRate float64
}

// DefaultPricing matches the storefront defaults: free shipping from 100,
// 9.99 flat rate below that, 8% tax.
var DefaultPricing = Pricing{
	FreeShippingThreshold: 100,
	FlatShippingRate:      9.99,
	TaxRate:               0.08,
}

// CheckoutService converts a session cart into a persisted order with stock
// side effects.
type CheckoutService struct {
	store     *store.Store
	publisher *broker.EventPublisher
	pricing   Pricing
	logger    *zap.Logger
}

// NewCheckoutService creates a new checkout service. publisher may be nil
// when event publishing is disabled.
func NewCheckoutService(store *store.Store, publisher *broker.EventPublisher, pricing Pricing) *CheckoutService {
	return &CheckoutService{
		store:     store,
		publisher: publisher,
		pricing:   pricing,
		logger:    util.GetLogger(),
	}
}

// CheckoutRequest is the payload for placing an order.
type CheckoutRequest struct {
	ShippingAddress models.Address `json:"shippingAddress" binding:"required"`
	PaymentMethod   string         `json:"paymentMethod" binding:"required"`
}

// Checkout validates the cart against live stock, decrements stock, computes
// totals and persists the order. The walk over the cart decrements stock in
// memory only; products.json is written once, after every line has passed,
// so a failing line leaves the stored stock untouched. There is no rollback
// if the orders write fails after the products write succeeded.
//
// On success the session cart is cleared; the caller is responsible for
// saving the session.
func (s *CheckoutService) Checkout(ctx context.Context, sess *session.Session, req *CheckoutRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	if sess.User == nil {
		return nil, unauthorizedErr("sign in to place an order")
	}
	if len(sess.Cart) == 0 {
		util.CheckoutFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, validationErr("cart is empty")
	}
	if !req.ShippingAddress.Complete() {
		util.CheckoutFailedTotal.WithLabelValues("invalid_address").Inc()
		return nil, validationErr("shipping address requires street, city, state and zip code")
	}

	var order *models.Order
	err := s.store.WithLock(func() error {
		products, err := s.store.Products(ctx)
		if err != nil {
			return internalErr("failed to load products", err)
		}

		index := make(map[string]int, len(products))
		for i := range products {
			index[products[i].ID] = i
		}

		var subtotal float64
		items := make([]models.OrderItem, 0, len(sess.Cart))
		for _, line := range sess.Cart {
			i, ok := index[line.ProductID]
			if !ok {
				util.CheckoutFailedTotal.WithLabelValues("product_not_found").Inc()
				return validationErr("product not found: %s", line.ProductID)
			}
			p := &products[i]
			if p.Stock < line.Quantity {
				util.CheckoutFailedTotal.WithLabelValues("insufficient_stock").Inc()
				return validationErr("insufficient stock for %s: %d available", p.Name, p.Stock)
			}

			p.Stock -= line.Quantity
			p.UpdatedAt = util.Now()
			subtotal += p.Price * float64(line.Quantity)

			item := models.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Price:     p.Price,
				Quantity:  line.Quantity,
			}
			if len(p.Images) > 0 {
				item.Image = p.Images[0]
			}
			items = append(items, item)
		}

		subtotal = util.Round2(subtotal)
		shipping := s.pricing.FlatShippingRate
		if subtotal >= s.pricing.FreeShippingThreshold {
			shipping = 0
		}
		shipping = util.Round2(shipping)
		tax := util.Round2(subtotal * s.pricing.TaxRate)
		total := util.Round2(subtotal + shipping + tax)

		if err := s.store.SaveProducts(ctx, products); err != nil {
			util.CheckoutFailedTotal.WithLabelValues("storage_error").Inc()
			return internalErr("failed to save products", err)
		}

		now := util.Now()
		order = &models.Order{
			ID:              util.NewID(),
			OrderNumber:     util.OrderNumber(now),
			UserID:          sess.User.ID,
			CustomerName:    sess.User.Name,
			CustomerEmail:   sess.User.Email,
			Items:           items,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			Subtotal:        subtotal,
			Shipping:        shipping,
			Tax:             tax,
			Total:           total,
			Status:          models.OrderStatusPending,
			StatusHistory: []models.StatusChange{
				{Status: models.OrderStatusPending, Timestamp: now, Note: "Order placed"},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}

		orders, err := s.store.Orders(ctx)
		if err != nil {
			util.CheckoutFailedTotal.WithLabelValues("storage_error").Inc()
			return internalErr("failed to load orders", err)
		}
		if err := s.store.SaveOrders(ctx, append(orders, *order)); err != nil {
			util.CheckoutFailedTotal.WithLabelValues("storage_error").Inc()
			return internalErr("failed to save order", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sess.Cart = []models.CartItem{}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", order.UserID),
		zap.Float64("total", order.Total))

	if s.publisher != nil {
		event := &models.OrderCreatedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   util.NewID(),
				EventType: models.EventTypeOrderCreated,
				Timestamp: util.Now(),
			},
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			Total:       order.Total,
			Items:       order.Items,
		}
		if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
		}
	}

	return order, nil
}
