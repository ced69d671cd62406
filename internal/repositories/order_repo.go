package repositories

import (
	"storefront/internal/lifecycle"
	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
// Orders are never deleted through it.
type OrderRepository interface {
	GetAll(filter models.OrderFilter) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
	Create(order *models.Order) error
	Place(order *models.Order) error
	UpdateStatus(id string, status lifecycle.Status) error
}
