package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("record already exists")
	// ErrOutOfStock is returned when an order asks for more units than are in stock.
	ErrOutOfStock = errors.New("not enough stock")
)
