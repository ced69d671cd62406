package repositories

import "storefront/internal/models"

// UserRepository defines the interface for user data access.
// GetByID and GetAll return users with their orders embedded.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	GetAll() ([]models.User, error)
	UpdateOrders(userID string, orders []models.Order) error
	UpdateProfile(user *models.User) error
	Count() (int64, error)
}
