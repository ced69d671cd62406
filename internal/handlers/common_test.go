package handlers

import (
	"errors"
	"fmt"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewValidator(t *testing.T) {
	v := NewValidator()

	addr := models.Address{Name: "Asha Rao", Phone: "9876543210", Line: "12 MG Road", City: "Pune", Pincode: "411001"}
	assert.NoError(t, v.Struct(addr))

	addr.Name = "Asha R4o"
	assert.Error(t, v.Struct(addr))

	p := models.Product{Title: "Rice", Price: decimal.RequireFromString("0.01")}
	assert.NoError(t, v.Struct(p))
	p.Price = decimal.Zero
	assert.Error(t, v.Struct(p))
	p.Price = decimal.RequireFromString("-3")
	assert.Error(t, v.Struct(p))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("order o-1: %w", repositories.ErrNotFound), fiber.StatusNotFound},
		{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{services.ErrForbidden, fiber.StatusForbidden},
		{fmt.Errorf("wrap: %w", services.ErrNotCancellable), fiber.StatusConflict},
		{repositories.ErrDuplicate, fiber.StatusConflict},
		{services.ErrInsufficientStock, fiber.StatusConflict},
		{services.ErrEmptyCart, fiber.StatusBadRequest},
		{services.ErrInvalidPayment, fiber.StatusBadRequest},
		{errors.New("disk on fire"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
