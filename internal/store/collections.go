package store

import (
	"context"

	"shop-service/internal/models"
)

// Products loads the product collection.
func (s *Store) Products(ctx context.Context) ([]models.Product, error) {
	return readCollection[models.Product](ctx, s, CollectionProducts)
}

// SaveProducts replaces the product collection.
func (s *Store) SaveProducts(ctx context.Context, products []models.Product) error {
	return writeCollection(ctx, s, CollectionProducts, products)
}

// Orders loads the order collection.
func (s *Store) Orders(ctx context.Context) ([]models.Order, error) {
	return readCollection[models.Order](ctx, s, CollectionOrders)
}

// SaveOrders replaces the order collection.
func (s *Store) SaveOrders(ctx context.Context, orders []models.Order) error {
	return writeCollection(ctx, s, CollectionOrders, orders)
}

// Users loads the user collection.
func (s *Store) Users(ctx context.Context) ([]models.User, error) {
	return readCollection[models.User](ctx, s, CollectionUsers)
}

// SaveUsers replaces the user collection.
func (s *Store) SaveUsers(ctx context.Context, users []models.User) error {
	return writeCollection(ctx, s, CollectionUsers, users)
}
