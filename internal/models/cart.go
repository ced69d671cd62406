package models

import "time"

// CartItem is one line of a user's cart.
type CartItem struct {
	UserID    string    `json:"-" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"productId" gorm:"primaryKey;type:varchar(36)"`
	Quantity  int       `json:"quantity"`
	Product   Product   `json:"product" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WishlistItem is one entry of a user's wishlist.
type WishlistItem struct {
	UserID    string    `json:"-" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"productId" gorm:"primaryKey;type:varchar(36)"`
	Product   Product   `json:"product" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReorderResult reports the cart after a reorder and the products that could not be re-added.
type ReorderResult struct {
	Cart    []CartItem `json:"cart"`
	Skipped []string   `json:"skipped"`
}
