package service

import (
	"context"
	"testing"

	"shop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCheckoutRequest() *CheckoutRequest {
	return &CheckoutRequest{
		ShippingAddress: models.Address{
			Street:  "1 Main St",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62701",
		},
		PaymentMethod: "card",
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := newTestStore(t)
	svc := NewCheckoutService(db, nil, DefaultPricing)
	sess := customerSession("u1")

	_, err := svc.Checkout(context.Background(), sess, validCheckoutRequest())
	require.Error(t, err)
	assert.Equal(t, KindValidation, ErrKind(err))

	orders, err := db.Orders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckoutRequiresSignIn(t *testing.T) {
	db := newTestStore(t)
	svc := NewCheckoutService(db, nil, DefaultPricing)

	sess := customerSession("u1")
	sess.User = nil

	_, err := svc.Checkout(context.Background(), sess, validCheckoutRequest())
	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, ErrKind(err))
}

func TestCheckoutIncompleteAddress(t *testing.T) {
	db := newTestStore(t)
	seedProducts(t, db, []models.Product{testProduct("p1", "Widget", 10, 5)})
	svc := NewCheckoutService(db, nil, DefaultPricing)
	cart := NewCartService(db)

	sess := customerSession("u1")
	require.NoError(t, cart.Add(context.Background(), sess, "p1", 1))

	req := validCheckoutRequest()
	req.ShippingAddress.ZipCode = ""

	_, err := svc.Checkout(context.Background(), sess, req)
	require.Error(t, err)
	assert.Equal(t, KindValidation, ErrKind(err))
}

func TestCheckoutUnknownProductLeavesStockUntouched(t *testing.T) {
	db := newTestStore(t)
	seedProducts(t, db, []models.Product{testProduct("p1", "Widget", 10, 5)})
	svc := NewCheckoutService(db, nil, DefaultPricing)

	sess := customerSession("u1")
	sess.Cart = []models.CartItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "ghost", Quantity: 1},
	}

	_, err := svc.Checkout(context.Background(), sess, validCheckoutRequest())
	require.Error(t, err)
	assert.Equal(t, KindValidation, ErrKind(err))

	products, err := db.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 5, products[0].Stock)

	orders, err := db.Orders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckoutInsufficientStockLeavesEveryLineUntouched(t *testing.T) {
	db := newTestStore(t)
	seedProducts(t, db, []models.Product{
		testProduct("p1", "Widget", 10, 5),
		testProduct("p2", "Gadget", 20, 1),
	})
	svc := NewCheckoutService(db, nil, DefaultPricing)

	sess := customerSession("u1")
	sess.Cart = []models.CartItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	}

	_, err := svc.Checkout(context.Background(), sess, validCheckoutRequest())
	require.Error(t, err)
	assert.Equal(t, KindValidation, ErrKind(err))

	products, err := db.Products(context.Background())
	require.NoError(t, err)
	byID := map[string]int{}
	for _, p := range products {
		byID[p.ID] = p.Stock
	}
	assert.Equal(t, 5, byID["p1"])
	assert.Equal(t, 1, byID["p2"])

	assert.Len(t, sess.Cart, 2)
}

func TestCheckoutSuccess(t *testing.T) {
	db := newTestStore(t)
	seedProducts(t, db, []models.Product{testProduct("p1", "Widget", 50, 5)})
	svc := NewCheckoutService(db, nil, DefaultPricing)
	cart := NewCartService(db)

	ctx := context.Background()
	sess := customerSession("u1")
	require.NoError(t, cart.Add(ctx, sess, "p1", 2))

	order, err := svc.Checkout(ctx, sess, validCheckoutRequest())
	require.NoError(t, err)

	assert.Equal(t, 100.0, order.Subtotal)
	assert.Equal(t, 0.0, order.Shipping)
	assert.Equal(t, 8.0, order.Tax)
	assert.Equal(t, 108.0, order.Total)
	assert.Equal(t, order.Total, order.Subtotal+order.Shipping+order.Tax)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, models.OrderStatusPending, order.StatusHistory[0].Status)
	assert.NotEmpty(t, order.OrderNumber)
	assert.Equal(t, "u1", order.UserID)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "p1", order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 50.0, order.Items[0].Price)

	products, err := db.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, products[0].Stock)

	assert.Empty(t, sess.Cart)

	orders, err := db.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestCheckoutShippingBelowThreshold(t *testing.T) {
	db := newTestStore(t)
	seedProducts(t, db, []models.Product{testProduct("p1", "Widget", 50, 5)})
	svc := NewCheckoutService(db, nil, DefaultPricing)

	sess := customerSession("u1")
	sess.Cart = []models.CartItem{{ProductID: "p1", Quantity: 1}}

	order, err := svc.Checkout(context.Background(), sess, validCheckoutRequest())
	require.NoError(t, err)

	assert.Equal(t, 50.0, order.Subtotal)
	assert.Equal(t, 9.99, order.Shipping)
	assert.Equal(t, 4.0, order.Tax)
	assert.Equal(t, 63.99, order.Total)
}

func TestCheckoutMultipleLinesSnapshotsEachProduct(t *testing.T) {
	db := newTestStore(t)
	seedProducts(t, db, []models.Product{
		testProduct("p1", "Widget", 19.99, 10),
		testProduct("p2", "Gadget", 34.5, 4),
	})
	svc := NewCheckoutService(db, nil, DefaultPricing)

	sess := customerSession("u1")
	sess.Cart = []models.CartItem{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 1},
	}

	order, err := svc.Checkout(context.Background(), sess, validCheckoutRequest())
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Widget", order.Items[0].Name)
	assert.Equal(t, "p1.jpg", order.Items[0].Image)
	assert.Equal(t, 94.47, order.Subtotal)
	assert.Equal(t, 9.99, order.Shipping)
	assert.Equal(t, 7.56, order.Tax)
	assert.Equal(t, 112.02, order.Total)

	products, err := db.Products(context.Background())
	require.NoError(t, err)
	byID := map[string]int{}
	for _, p := range products {
		byID[p.ID] = p.Stock
	}
	assert.Equal(t, 7, byID["p1"])
	assert.Equal(t, 3, byID["p2"])
}
