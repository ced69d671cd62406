package services

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartService manages a user's cart.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetCart returns the cart lines of a user.
func (s *CartService) GetCart(userID string) ([]models.CartItem, error) {
	return s.cartRepo.GetByUser(userID)
}

// AddItem adds qty of a product to the cart, incrementing an existing line.
func (s *CartService) AddItem(userID, productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if _, err := s.productRepo.GetByID(productID); err != nil {
		return err
	}
	return s.cartRepo.Add(userID, productID, qty)
}

// SetQuantity replaces the quantity of a cart line.
func (s *CartService) SetQuantity(userID, productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	return s.cartRepo.SetQuantity(userID, productID, qty)
}

// RemoveItem drops a product from the cart.
func (s *CartService) RemoveItem(userID, productID string) error {
	return s.cartRepo.Remove(userID, productID)
}

// Clear empties the cart.
func (s *CartService) Clear(userID string) error {
	return s.cartRepo.Clear(userID)
}

// CartSubtotal is the sum of price times quantity over the cart lines.
func CartSubtotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// WishlistService manages a user's wishlist.
type WishlistService struct {
	wishlistRepo repositories.WishlistRepository
	productRepo  repositories.ProductRepository
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(wishlistRepo repositories.WishlistRepository, productRepo repositories.ProductRepository) *WishlistService {
	return &WishlistService{wishlistRepo: wishlistRepo, productRepo: productRepo}
}

// GetWishlist returns the wishlist of a user.
func (s *WishlistService) GetWishlist(userID string) ([]models.WishlistItem, error) {
	return s.wishlistRepo.GetByUser(userID)
}

// Add puts a product on the wishlist. Adding it twice is not an error.
func (s *WishlistService) Add(userID, productID string) error {
	if _, err := s.productRepo.GetByID(productID); err != nil {
		return fmt.Errorf("cannot wishlist product %s: %w", productID, err)
	}
	return s.wishlistRepo.Add(userID, productID)
}

// Remove takes a product off the wishlist.
func (s *WishlistService) Remove(userID, productID string) error {
	return s.wishlistRepo.Remove(userID, productID)
}
