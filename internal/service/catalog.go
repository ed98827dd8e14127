package service

import (
	"context"
	"sort"
	"strings"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.uber.org/zap"
)

// DefaultPageSize is the catalog page size when none is requested.
const DefaultPageSize = 12

// CatalogService serves product browsing and admin product CRUD.
type CatalogService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CatalogQuery describes one catalog listing request. All filters compose
// with AND; zero values mean "no filter".
type CatalogQuery struct {
	Search      string
	Category    string
	Subcategory string
	Brand       string
	MinPrice    *float64
	MaxPrice    *float64
	Featured    *bool
	Sort        string
	Page        int
	PageSize    int
}

// CatalogPage is one page of results plus pagination metadata.
type CatalogPage struct {
	Products   []models.Product `json:"products"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// List filters, sorts and paginates the product collection in memory.
func (s *CatalogService) List(ctx context.Context, q CatalogQuery) (*CatalogPage, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, internalErr("failed to load products", err)
	}

	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if matchesQuery(p, q) {
			filtered = append(filtered, p)
		}
	}

	sortProducts(filtered, q.Sort)

	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = DefaultPageSize
	}

	total := len(filtered)
	totalPages := (total + size - 1) / size

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &CatalogPage{
		Products:   filtered[start:end],
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}, nil
}

func matchesQuery(p models.Product, q CatalogQuery) bool {
	if q.Search != "" && !matchesSearch(p, q.Search) {
		return false
	}
	if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
		return false
	}
	if q.Subcategory != "" && !strings.EqualFold(p.Subcategory, q.Subcategory) {
		return false
	}
	if q.Brand != "" && !strings.EqualFold(p.Brand, q.Brand) {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if q.Featured != nil && p.Featured != *q.Featured {
		return false
	}
	return true
}

func matchesSearch(p models.Product, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// sortProducts applies one of the named sort orders. An unrecognized key
// leaves the collection order untouched.
func sortProducts(products []models.Product, key string) {
	switch key {
	case "price_asc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case "price_desc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case "name_asc":
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
		})
	case "name_desc":
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) > strings.ToLower(products[j].Name)
		})
	case "rating":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Rating > products[j].Rating })
	case "newest":
		sort.SliceStable(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	}
}

// Get returns a single product by id.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Product, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, internalErr("failed to load products", err)
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, notFoundErr("product not found")
}

// Categories returns the distinct category names in the catalog, sorted.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, internalErr("failed to load products", err)
	}

	seen := make(map[string]bool)
	categories := []string{}
	for _, p := range products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// ProductInput is the admin payload for creating or updating a product.
type ProductInput struct {
	Name           string            `json:"name" binding:"required"`
	Description    string            `json:"description"`
	Price          float64           `json:"price" binding:"required,gt=0"`
	OriginalPrice  float64           `json:"originalPrice"`
	Category       string            `json:"category" binding:"required"`
	Subcategory    string            `json:"subcategory"`
	Brand          string            `json:"brand"`
	Images         []string          `json:"images"`
	Stock          int               `json:"stock" binding:"min=0"`
	Featured       bool              `json:"featured"`
	Tags           []string          `json:"tags"`
	Specifications map[string]string `json:"specifications"`
}

// Create adds a product to the catalog.
func (s *CatalogService) Create(ctx context.Context, in *ProductInput) (*models.Product, error) {
	now := util.Now()
	product := models.Product{
		ID:             util.NewID(),
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		OriginalPrice:  in.OriginalPrice,
		Category:       in.Category,
		Subcategory:    in.Subcategory,
		Brand:          in.Brand,
		Images:         in.Images,
		Stock:          in.Stock,
		Featured:       in.Featured,
		Tags:           in.Tags,
		Specifications: in.Specifications,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	err := s.store.WithLock(func() error {
		products, err := s.store.Products(ctx)
		if err != nil {
			return internalErr("failed to load products", err)
		}
		return s.store.SaveProducts(ctx, append(products, product))
	})
	if err != nil {
		if _, ok := err.(*Error); ok {
			return nil, err
		}
		return nil, internalErr("failed to save products", err)
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID))
	return &product, nil
}

// Update replaces the mutable fields of an existing product.
func (s *CatalogService) Update(ctx context.Context, id string, in *ProductInput) (*models.Product, error) {
	var updated *models.Product
	err := s.store.WithLock(func() error {
		products, err := s.store.Products(ctx)
		if err != nil {
			return internalErr("failed to load products", err)
		}

		for i := range products {
			if products[i].ID != id {
				continue
			}
			products[i].Name = in.Name
			products[i].Description = in.Description
			products[i].Price = in.Price
			products[i].OriginalPrice = in.OriginalPrice
			products[i].Category = in.Category
			products[i].Subcategory = in.Subcategory
			products[i].Brand = in.Brand
			if in.Images != nil {
				products[i].Images = in.Images
			}
			products[i].Stock = in.Stock
			products[i].Featured = in.Featured
			products[i].Tags = in.Tags
			products[i].Specifications = in.Specifications
			products[i].UpdatedAt = util.Now()
			updated = &products[i]
			return s.store.SaveProducts(ctx, products)
		}
		return notFoundErr("product not found")
	})
	if err != nil {
		if _, ok := err.(*Error); ok {
			return nil, err
		}
		return nil, internalErr("failed to save products", err)
	}
	return updated, nil
}

// Delete removes a product. Cart lines referencing it become dangling and
// are rejected at checkout.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	err := s.store.WithLock(func() error {
		products, err := s.store.Products(ctx)
		if err != nil {
			return internalErr("failed to load products", err)
		}

		for i := range products {
			if products[i].ID == id {
				products = append(products[:i], products[i+1:]...)
				return s.store.SaveProducts(ctx, products)
			}
		}
		return notFoundErr("product not found")
	})
	if err != nil {
		if _, ok := err.(*Error); ok {
			return err
		}
		return internalErr("failed to save products", err)
	}

	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}
