package service

import (
	"context"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/session"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// CartService mutates the session cart. Every operation validates against
// live stock at call time; nothing is cached, so checkout re-validates
// whatever the cart claims.
type CartService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store *store.Store) *CartService {
	return &CartService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CartLine is a cart item joined against the live product. Product is nil
// when the referenced product has been deleted.
type CartLine struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"addedAt"`
	Product   *models.Product `json:"product,omitempty"`
}

// CartView is the cart as returned to the client.
type CartView struct {
	Items     []CartLine `json:"items"`
	ItemCount int        `json:"itemCount"`
	Subtotal  float64    `json:"subtotal"`
}

// View joins the session cart against the current catalog. The subtotal
// covers resolvable lines only.
func (s *CartService) View(ctx context.Context, sess *session.Session) (*CartView, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, internalErr("failed to load products", err)
	}

	index := indexProducts(products)
	view := &CartView{Items: []CartLine{}}
	for _, item := range sess.Cart {
		line := CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
		}
		if p, ok := index[item.ProductID]; ok {
			line.Product = p
			view.Subtotal = util.Round2(view.Subtotal + p.Price*float64(item.Quantity))
		}
		view.ItemCount += item.Quantity
		view.Items = append(view.Items, line)
	}
	return view, nil
}

// Add puts quantity units of a product into the cart. If a line for the
// product already exists the quantities accumulate; the combined quantity is
// checked against current stock and the whole operation is rejected if it
// doesn't fit.
func (s *CartService) Add(ctx context.Context, sess *session.Session, productID string, quantity int) error {
	if quantity < 1 {
		return validationErr("quantity must be at least 1")
	}

	product, err := s.lookupProduct(ctx, productID)
	if err != nil {
		return err
	}

	for i := range sess.Cart {
		if sess.Cart[i].ProductID == productID {
			combined := sess.Cart[i].Quantity + quantity
			if combined > product.Stock {
				return validationErr("insufficient stock for %s: %d available", product.Name, product.Stock)
			}
			sess.Cart[i].Quantity = combined
			util.CartOperationsTotal.WithLabelValues("add").Inc()
			return nil
		}
	}

	if quantity > product.Stock {
		return validationErr("insufficient stock for %s: %d available", product.Name, product.Stock)
	}

	sess.Cart = append(sess.Cart, models.CartItem{
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   util.Now(),
	})
	util.CartOperationsTotal.WithLabelValues("add").Inc()
	return nil
}

// Update sets the quantity of an existing line. A quantity of zero or less
// removes the line.
func (s *CartService) Update(ctx context.Context, sess *session.Session, productID string, quantity int) error {
	idx := -1
	for i := range sess.Cart {
		if sess.Cart[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return notFoundErr("item not in cart")
	}

	if quantity <= 0 {
		sess.Cart = append(sess.Cart[:idx], sess.Cart[idx+1:]...)
		util.CartOperationsTotal.WithLabelValues("remove").Inc()
		return nil
	}

	product, err := s.lookupProduct(ctx, productID)
	if err != nil {
		return err
	}
	if quantity > product.Stock {
		return validationErr("insufficient stock for %s: %d available", product.Name, product.Stock)
	}

	sess.Cart[idx].Quantity = quantity
	util.CartOperationsTotal.WithLabelValues("update").Inc()
	return nil
}

// Remove deletes a line from the cart. Removing an absent line is a no-op.
func (s *CartService) Remove(sess *session.Session, productID string) {
	for i := range sess.Cart {
		if sess.Cart[i].ProductID == productID {
			sess.Cart = append(sess.Cart[:i], sess.Cart[i+1:]...)
			util.CartOperationsTotal.WithLabelValues("remove").Inc()
			return
		}
	}
}

// Clear empties the cart.
func (s *CartService) Clear(sess *session.Session) {
	sess.Cart = []models.CartItem{}
	util.CartOperationsTotal.WithLabelValues("clear").Inc()
}

func (s *CartService) lookupProduct(ctx context.Context, productID string) (*models.Product, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, internalErr("failed to load products", err)
	}
	for i := range products {
		if products[i].ID == productID {
			return &products[i], nil
		}
	}
	return nil, notFoundErr("product not found")
}

func indexProducts(products []models.Product) map[string]*models.Product {
	index := make(map[string]*models.Product, len(products))
	for i := range products {
		index[products[i].ID] = &products[i]
	}
	return index
}
