package services

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	logger *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// ListProducts returns one page of products matching filter.
func (s *ProductService) ListProducts(filter models.ProductFilter) (*ProductPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultPageSize
	case filter.Limit > maxPageSize:
		filter.Limit = maxPageSize
	}
	if filter.PriceMin != nil && filter.PriceMax != nil && filter.PriceMin.GreaterThan(*filter.PriceMax) {
		filter.PriceMin, filter.PriceMax = filter.PriceMax, filter.PriceMin
	}

	items, total, err := s.repo.Search(filter)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Deals lists products discounted by at least models.DealDiscount percent.
func (s *ProductService) Deals(filter models.ProductFilter) (*ProductPage, error) {
	if filter.MinDiscount < models.DealDiscount {
		filter.MinDiscount = models.DealDiscount
	}
	return s.ListProducts(filter)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.logger.Info("Created product", zap.String("product_id", product.ID), zap.String("title", product.Title))
	return nil
}

// UpdateProduct updates an existing product. Orders keep their own snapshot.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if product.ID == "" {
		return fmt.Errorf("product id is required")
	}
	return s.repo.Update(product)
}

// DecrementStock takes by units of a product out of stock. Stock stops at zero.
func (s *ProductService) DecrementStock(id string, by int) (*models.Product, error) {
	if by < 1 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.repo.DecrementStock(id, by)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Decremented stock", zap.String("product_id", id), zap.Int("by", by), zap.Int("stock", product.Stock))
	return product, nil
}

// DeleteProduct soft-deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("Deleted product", zap.String("product_id", id))
	return nil
}
