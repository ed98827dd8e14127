package service

import (
	"context"
	"testing"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/session"
	"shop-service/internal/store"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func seedProducts(t *testing.T, s *store.Store, products []models.Product) {
	t.Helper()
	require.NoError(t, s.SaveProducts(context.Background(), products))
}

func testProduct(id, name string, price float64, stock int) models.Product {
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	return models.Product{
		ID:        id,
		Name:      name,
		Price:     price,
		Category:  "general",
		Images:    []string{id + ".jpg"},
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func customerSession(userID string) *session.Session {
	sess := session.New()
	sess.User = &session.User{
		ID:    userID,
		Name:  "Test Customer",
		Email: userID + "@example.com",
		Role:  models.RoleCustomer,
	}
	return sess
}

func adminSession(userID string) *session.Session {
	sess := customerSession(userID)
	sess.User.Role = models.RoleAdmin
	return sess
}
