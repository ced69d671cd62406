package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DealDiscount is the minimum discount percentage for a product to count as a deal.
const DealDiscount = 15

// Product represents a product in the store.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title       string          `json:"title" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	Brand       string          `json:"brand" gorm:"index" validate:"omitempty,max=100"`
	Category    string          `json:"category" gorm:"index" validate:"omitempty,max=100"`
	SKU         string          `json:"sku" validate:"omitempty,max=64"`
	Unit        string          `json:"unit" validate:"omitempty,max=32"`
	Thumbnail   string          `json:"thumbnail" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)" validate:"required,gt=0"`
	Discount    float64         `json:"discountPercentage" validate:"gte=0,lte=100"`
	Rating      float64         `json:"rating" validate:"gte=0,lte=5"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// Snapshot copies the product into an order line.
func (p Product) Snapshot(qty int) OrderItem {
	return OrderItem{
		ProductID:   p.ID,
		Name:        p.Title,
		Price:       p.Price,
		Quantity:    qty,
		Unit:        p.Unit,
		Brand:       p.Brand,
		Category:    p.Category,
		SKU:         p.SKU,
		Description: p.Description,
		Image:       p.Thumbnail,
	}
}

// Product sort orders accepted by ProductFilter.Sort.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortNewest    = "newest"
)

// ProductFilter narrows a catalog listing. Empty fields do not filter.
type ProductFilter struct {
	Search      string
	Brands      []string
	Categories  []string
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	RatingMin   float64
	MinDiscount float64
	Sort        string
	Page        int
	Limit       int
}
