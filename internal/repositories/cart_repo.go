package repositories

import "storefront/internal/models"

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	GetByUser(userID string) ([]models.CartItem, error)
	Add(userID, productID string, qty int) error
	SetQuantity(userID, productID string, qty int) error
	Remove(userID, productID string) error
	Clear(userID string) error
}

// WishlistRepository defines the interface for wishlist data access.
type WishlistRepository interface {
	GetByUser(userID string) ([]models.WishlistItem, error)
	Add(userID, productID string) error
	Remove(userID, productID string) error
}
