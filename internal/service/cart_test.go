package service

import (
	"context"
	"testing"

	"shop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddAccumulates(t *testing.T) {
	db := newTestStore(t)
	seedProducts(t, db, []models.Product{testProduct("p1", "Widget", 10, 5)})
	svc := NewCartService(db)

	ctx := context.Background()
	sess := customerSession("u1")

	require.NoError(t, svc.Add(ctx, sess, "p1", 2))
	require.NoError(t, svc.Add(ctx, sess, "p1", 2))

	require.Len(t, sess.Cart, 1)
	assert.Equal(t, 4, sess.Cart[0].Quantity)
	assert.False(t, sess.Cart[0].AddedAt.IsZero())
}

func TestCartAddRejectsOverStock(t *testing.T) {
	db := newTestStore(t)
	seedProducts(t, db, []models.Product{testProduct("p1", "Widget", 10, 3)})
	svc := NewCartService(db)

	ctx := context.Background()
	sess := customerSession("u1")

	require.NoError(t, svc.Add(ctx, sess, "p1", 2))

	// Accumulated quantity would exceed stock: whole operation rejected,
	// existing line untouched.
	err := svc.Add(ctx, sess, "p1", 2)
	require.Error(t, err)
	assert.Equal(t, KindValidation, ErrKind(err))
	assert.Equal(t, 2, sess.Cart[0].Quantity)
}

func TestCartAddUnknownProduct(t *testing.T) {
	db := newTestStore(t)
	svc := NewCartService(db)

	err := svc.Add(context.Background(), customerSession("u1"), "ghost", 1)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, ErrKind(err))
}

func TestCartUpdateZeroRemovesLine(t *testing.T) {
	db := newTestStore(t)
	seedProducts(t, db, []models.Product{testProduct("p1", "Widget", 10, 5)})
	svc := NewCartService(db)

	ctx := context.Background()
	sess := customerSession("u1")
	require.NoError(t, svc.Add(ctx, sess, "p1", 2))

	require.NoError(t, svc.Update(ctx, sess, "p1", 0))
	assert.Empty(t, sess.Cart)

	err := svc.Update(ctx, sess, "p1", 1)
	assert.Equal(t, KindNotFound, ErrKind(err))
}

func TestCartUpdateChecksLiveStock(t *testing.T) {
	db := newTestStore(t)
	seedProducts(t, db, []models.Product{testProduct("p1", "Widget", 10, 5)})
	svc := NewCartService(db)

	ctx := context.Background()
	sess := customerSession("u1")
	require.NoError(t, svc.Add(ctx, sess, "p1", 2))

	// Stock shrinks after the line was added; the update re-reads it.
	seedProducts(t, db, []models.Product{testProduct("p1", "Widget", 10, 2)})

	err := svc.Update(ctx, sess, "p1", 3)
	require.Error(t, err)
	assert.Equal(t, KindValidation, ErrKind(err))
	assert.Equal(t, 2, sess.Cart[0].Quantity)

	require.NoError(t, svc.Update(ctx, sess, "p1", 1))
	assert.Equal(t, 1, sess.Cart[0].Quantity)
}

func TestCartRemoveAndClear(t *testing.T) {
	db := newTestStore(t)
	seedProducts(t, db, []models.Product{
		testProduct("p1", "Widget", 10, 5),
		testProduct("p2", "Gadget", 20, 5),
	})
	svc := NewCartService(db)

	ctx := context.Background()
	sess := customerSession("u1")
	require.NoError(t, svc.Add(ctx, sess, "p1", 1))
	require.NoError(t, svc.Add(ctx, sess, "p2", 1))

	svc.Remove(sess, "p1")
	require.Len(t, sess.Cart, 1)
	assert.Equal(t, "p2", sess.Cart[0].ProductID)

	// Removing an absent line is a no-op.
	svc.Remove(sess, "p1")
	assert.Len(t, sess.Cart, 1)

	svc.Clear(sess)
	assert.Empty(t, sess.Cart)
}

func TestCartViewJoinsProductsAndTotals(t *testing.T) {
	db := newTestStore(t)
	seedProducts(t, db, []models.Product{
		testProduct("p1", "Widget", 19.99, 5),
		testProduct("p2", "Gadget", 5, 5),
	})
	svc := NewCartService(db)

	ctx := context.Background()
	sess := customerSession("u1")
	require.NoError(t, svc.Add(ctx, sess, "p1", 2))
	require.NoError(t, svc.Add(ctx, sess, "p2", 1))

	view, err := svc.View(ctx, sess)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.ItemCount)
	assert.Equal(t, 44.98, view.Subtotal)
	require.NotNil(t, view.Items[0].Product)
	assert.Equal(t, "Widget", view.Items[0].Product.Name)
}

func TestCartViewKeepsDanglingLines(t *testing.T) {
	db := newTestStore(t)
	seedProducts(t, db, []models.Product{testProduct("p1", "Widget", 10, 5)})
	svc := NewCartService(db)

	ctx := context.Background()
	sess := customerSession("u1")
	require.NoError(t, svc.Add(ctx, sess, "p1", 2))

	// Product deleted after the line was added.
	seedProducts(t, db, []models.Product{})

	view, err := svc.View(ctx, sess)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Nil(t, view.Items[0].Product)
	assert.Equal(t, 0.0, view.Subtotal)
}
