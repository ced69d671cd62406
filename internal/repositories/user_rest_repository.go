package repositories

import (
	"fmt"
	"net/http"

	"storefront/internal/models"
	"storefront/pkg/backend"
)

// RESTUserRepository reads and writes user accounts through a remote storefront API.
// It covers the subset of UserRepository the status sweep needs.
type RESTUserRepository struct {
	client *backend.Client
}

// NewRESTUserRepository creates a new instance of RESTUserRepository.
func NewRESTUserRepository(client *backend.Client) *RESTUserRepository {
	return &RESTUserRepository{client: client}
}

// GetAll fetches every user with embedded orders.
func (r *RESTUserRepository) GetAll() ([]models.User, error) {
	users, err := r.client.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list remote users: %w", err)
	}
	return users, nil
}

// GetByID fetches one user with embedded orders.
func (r *RESTUserRepository) GetByID(id string) (*models.User, error) {
	user, err := r.client.GetUser(id)
	if err != nil {
		if backend.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get remote user %s: %w", id, err)
	}
	return user, nil
}

// UpdateOrders patches the order list of a user.
func (r *RESTUserRepository) UpdateOrders(userID string, orders []models.Order) error {
	if err := r.client.PatchUserOrders(userID, orders); err != nil {
		if backend.IsStatus(err, http.StatusNotFound) {
			return fmt.Errorf("user with ID %s: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to patch orders of remote user %s: %w", userID, err)
	}
	return nil
}
