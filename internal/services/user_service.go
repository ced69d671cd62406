package services

import (
	"context"
	"fmt"

	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"go.uber.org/zap"
)

// UserService exposes user accounts with their embedded order history.
type UserService struct {
	userRepo repositories.UserRepository
	cache    cache.StatusCache
	logger   *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, statusCache cache.StatusCache, logger *zap.Logger) *UserService {
	if statusCache == nil {
		statusCache = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{userRepo: userRepo, cache: statusCache, logger: logger}
}

// ListUsers returns every user with their orders.
func (s *UserService) ListUsers() ([]models.User, error) {
	return s.userRepo.GetAll()
}

// GetUser returns one user with their orders.
func (s *UserService) GetUser(id string) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// UpdateOrders persists the statuses of the given orders of a user. Only the
// status of each order is written; every other field is a snapshot.
func (s *UserService) UpdateOrders(userID string, orders []models.Order) (*models.User, error) {
	for _, o := range orders {
		if o.ID == "" {
			return nil, fmt.Errorf("order without id: %w", ErrInvalidStatus)
		}
		if !o.Status.Valid() {
			return nil, fmt.Errorf("order %s has status %q: %w", o.ID, o.Status, ErrInvalidStatus)
		}
	}

	if err := s.userRepo.UpdateOrders(userID, orders); err != nil {
		return nil, err
	}
	for _, o := range orders {
		if err := s.cache.Invalidate(context.Background(), o.ID); err != nil {
			s.logger.Warn("Status cache invalidation failed", zap.String("order_id", o.ID), zap.Error(err))
		}
	}
	s.logger.Debug("Updated order statuses", zap.String("user_id", userID), zap.Int("orders", len(orders)))
	return s.userRepo.GetByID(userID)
}
