package services_test

import (
	"fmt"
	"testing"

	"storefront/internal/lifecycle"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateOrders(t *testing.T) {
	repo := new(MockUserRepository)
	c := new(MockStatusCache)
	svc := services.NewUserService(repo, c, nil)

	orders := []models.Order{
		{ID: "o-1", Status: lifecycle.StatusShipped},
		{ID: "o-2", Status: lifecycle.StatusCancelled},
	}
	updated := &models.User{ID: "u-1", Orders: orders}
	repo.On("UpdateOrders", "u-1", orders).Return(nil).Once()
	repo.On("GetByID", "u-1").Return(updated, nil).Once()
	c.On("Invalidate", "o-1").Return(nil).Once()
	c.On("Invalidate", "o-2").Return(nil).Once()

	user, err := svc.UpdateOrders("u-1", orders)
	require.NoError(t, err)
	assert.Equal(t, updated, user)
	repo.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestUserService_UpdateOrders_RejectsUnknownStatus(t *testing.T) {
	repo := new(MockUserRepository)
	svc := services.NewUserService(repo, nil, nil)

	_, err := svc.UpdateOrders("u-1", []models.Order{{ID: "o-1", Status: "Lost"}})
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	_, err = svc.UpdateOrders("u-1", []models.Order{{Status: lifecycle.StatusShipped}})
	assert.ErrorIs(t, err, services.ErrInvalidStatus)
	repo.AssertNotCalled(t, "UpdateOrders", mock.Anything, mock.Anything)
}

func TestUserService_UpdateOrders_UnknownUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := services.NewUserService(repo, nil, nil)

	repo.On("UpdateOrders", "ghost", mock.Anything).Return(fmt.Errorf("user ghost: %w", repositories.ErrNotFound)).Once()
	_, err := svc.UpdateOrders("ghost", []models.Order{{ID: "o-1", Status: lifecycle.StatusShipped}})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
