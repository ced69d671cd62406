package models

import "time"

// SavedAddress is an entry in a user's address book. Checkout copies it into
// the order, so later edits do not reach placed orders.
type SavedAddress struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string `json:"-" gorm:"type:varchar(36);index"`
	Address   `gorm:"embedded"`
	CreatedAt time.Time `json:"createdAt"`
}

// SavedCard is a payment card kept on file. Only the masked number and the
// last four digits are stored.
type SavedCard struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string    `json:"-" gorm:"type:varchar(36);index"`
	CardType   string    `json:"cardType" gorm:"type:varchar(32)"`
	CardName   string    `json:"cardName" gorm:"type:varchar(100)"`
	CardMasked string    `json:"cardMasked" gorm:"type:varchar(32)"`
	CardLast4  string    `json:"cardLast4" gorm:"column:card_last4;type:varchar(4)"`
	Expiry     string    `json:"expiry" gorm:"type:varchar(5)"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Profile is the account page of a user.
type Profile struct {
	ID        string         `json:"id"`
	Username  string         `json:"username"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Role      string         `json:"role"`
	Addresses []SavedAddress `json:"addresses"`
	Cards     []SavedCard    `json:"cards"`
}
