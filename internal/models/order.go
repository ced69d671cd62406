package models

import (
	"time"

	"storefront/internal/lifecycle"

	"github.com/shopspring/decimal"
)

// OrderItem is a snapshot of a catalog product captured when the order was placed.
// Later catalog changes do not touch it.
type OrderItem struct {
	ID          uint            `json:"-" gorm:"primaryKey"`
	OrderID     string          `json:"-" gorm:"type:varchar(36);index"`
	ProductID   string          `json:"productId" gorm:"type:varchar(36)"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"` // unit price at order time
	Quantity    int             `json:"qty"`
	Unit        string          `json:"unit,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	Category    string          `json:"category,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
}

// LineTotal is price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a customer order.
type Order struct {
	ID            string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string           `json:"userId" gorm:"type:varchar(36);index"`
	Items         []OrderItem      `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Address       Address          `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	PaymentMethod PaymentMethod    `json:"paymentMethod" gorm:"serializer:json"`
	OrderedTime   time.Time        `json:"orderedTime"`
	OrderedDate   string           `json:"orderedDate" gorm:"type:varchar(10)"`
	OrderedDay    string           `json:"orderedDay" gorm:"type:varchar(16)"`
	DeliveryDate  string           `json:"deliveryDate" gorm:"type:varchar(10)"`
	Status        lifecycle.Status `json:"status" gorm:"type:varchar(32);index"`
	Subtotal      decimal.Decimal  `json:"subtotal" gorm:"type:decimal(12,2)"`
	Shipping      decimal.Decimal  `json:"shipping" gorm:"type:decimal(12,2)"`
	Tax           decimal.Decimal  `json:"tax" gorm:"type:decimal(12,2)"`
	Total         decimal.Decimal  `json:"total" gorm:"type:decimal(12,2)"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// OrderView is an order decorated with the derived display fields.
type OrderView struct {
	Order
	Countdown  string             `json:"countdown"`
	Timeline   lifecycle.Timeline `json:"timeline,omitempty"`
	StageIndex int                `json:"stageIndex"`
}

// OrderFilter narrows the admin order listing. Empty fields do not filter.
type OrderFilter struct {
	UserID string
	Status lifecycle.Status
	Search string // matches order id or user id prefix
}
