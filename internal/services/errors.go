package services

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAlreadyExists       = errors.New("already exists")
	ErrForbidden           = errors.New("forbidden")
	ErrNotCancellable      = errors.New("order can no longer be cancelled")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidDeliveryDate = errors.New("invalid delivery date")
	ErrInvalidPayment      = errors.New("invalid payment method")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidAddress      = errors.New("a shipping address or saved address id is required")
)
