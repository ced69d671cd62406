package repositories

import (
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetByUser returns the cart lines of a user with their products loaded.
func (r *GORMCartRepository) GetByUser(userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Where("user_id = ?", userID).Order("created_at").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart of user %s: %w", userID, err)
	}
	return items, nil
}

// Add puts qty units of a product in the cart, on top of any already there.
func (r *GORMCartRepository) Add(userID, productID string, qty int) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Limit(1).Find(&item)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			item = models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
			return tx.Omit(clause.Associations).Create(&item).Error
		}
		return tx.Model(&item).Omit(clause.Associations).Update("quantity", item.Quantity+qty).Error
	})
	if err != nil {
		return fmt.Errorf("failed to add product %s to cart: %w", productID, err)
	}
	return nil
}

// SetQuantity overwrites the quantity of an existing cart line.
func (r *GORMCartRepository) SetQuantity(userID, productID string, qty int) error {
	res := r.db.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", qty)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", productID, ErrNotFound)
	}
	return nil
}

// Remove deletes one line from the cart.
func (r *GORMCartRepository) Remove(userID, productID string) error {
	res := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", productID, ErrNotFound)
	}
	return nil
}

// Clear empties the cart.
func (r *GORMCartRepository) Clear(userID string) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart of user %s: %w", userID, err)
	}
	return nil
}

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

// NewGORMWishlistRepository creates a new instance of GORMWishlistRepository.
func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{db: db}
}

// GetByUser returns the wishlist of a user with products loaded.
func (r *GORMWishlistRepository) GetByUser(userID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := r.db.Preload("Product").Where("user_id = ?", userID).Order("created_at").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get wishlist of user %s: %w", userID, err)
	}
	return items, nil
}

// Add puts a product on the wishlist. Adding it twice is a no-op.
func (r *GORMWishlistRepository) Add(userID, productID string) error {
	item := models.WishlistItem{UserID: userID, ProductID: productID}
	err := r.db.Omit(clause.Associations).
		Where(models.WishlistItem{UserID: userID, ProductID: productID}).
		FirstOrCreate(&item).Error
	if err != nil {
		return fmt.Errorf("failed to add product %s to wishlist: %w", productID, err)
	}
	return nil
}

// Remove takes a product off the wishlist.
func (r *GORMWishlistRepository) Remove(userID, productID string) error {
	res := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove wishlist item %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("wishlist item %s: %w", productID, ErrNotFound)
	}
	return nil
}
