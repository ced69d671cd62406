package models

import "fmt"

// Payment method kinds.
const (
	PaymentCard = "card"
	PaymentUPI  = "upi"
	PaymentCOD  = "cod"
)

// PaymentMethod describes how an order was paid. Card payments keep only the
// masked number and expiry; the full number and CVV are never stored.
type PaymentMethod struct {
	Method     string `json:"method"`
	CardType   string `json:"cardType,omitempty"`
	CardName   string `json:"cardName,omitempty"`
	CardNumber string `json:"cardNumber,omitempty"` // masked, e.g. "**** **** **** 4242"
	Expiry     string `json:"expiry,omitempty"`
	UPIID      string `json:"upiId,omitempty"`
}

// String renders the payment method the way order summaries display it.
func (p PaymentMethod) String() string {
	switch p.Method {
	case PaymentCard:
		return fmt.Sprintf("%s %s", p.CardType, p.CardNumber)
	case PaymentUPI:
		return "UPI " + p.UPIID
	case PaymentCOD:
		return "Cash on Delivery"
	}
	return p.Method
}
