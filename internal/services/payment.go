package services

import (
	"fmt"
	"regexp"
	"strings"

	"storefront/internal/models"
)

// PaymentRequest is the payment part of a checkout request. CardNumber and CVV
// are only checked; they never reach storage.
type PaymentRequest struct {
	Method     string `json:"method" validate:"required,oneof=card upi cod"`
	CardType   string `json:"cardType,omitempty"`
	CardName   string `json:"cardName,omitempty"`
	CardNumber string `json:"cardNumber,omitempty"`
	Expiry     string `json:"expiry,omitempty"`
	CVV        string `json:"cvv,omitempty"`
	UPIID      string `json:"upiId,omitempty"`
}

type cardRule struct {
	digits int
	cvv    int
}

var cardRules = map[string]cardRule{
	"Visa":             {digits: 16, cvv: 3},
	"MasterCard":       {digits: 16, cvv: 3},
	"Rupay":            {digits: 16, cvv: 3},
	"American Express": {digits: 15, cvv: 4},
}

var (
	upiPattern    = regexp.MustCompile(`^[\w.-]+@[\w.-]+$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
)

// BuildPaymentMethod checks req and returns what is stored on the order.
func BuildPaymentMethod(req PaymentRequest) (models.PaymentMethod, error) {
	switch req.Method {
	case models.PaymentCOD:
		return models.PaymentMethod{Method: models.PaymentCOD}, nil

	case models.PaymentUPI:
		if !upiPattern.MatchString(req.UPIID) {
			return models.PaymentMethod{}, fmt.Errorf("upi id %q: %w", req.UPIID, ErrInvalidPayment)
		}
		return models.PaymentMethod{Method: models.PaymentUPI, UPIID: req.UPIID}, nil

	case models.PaymentCard:
		number, rule, err := checkCard(req.CardType, req.CardName, req.CardNumber, req.Expiry)
		if err != nil {
			return models.PaymentMethod{}, err
		}
		if len(req.CVV) != rule.cvv || !digitsPattern.MatchString(req.CVV) {
			return models.PaymentMethod{}, fmt.Errorf("cvv must be %d digits: %w", rule.cvv, ErrInvalidPayment)
		}
		return models.PaymentMethod{
			Method:     models.PaymentCard,
			CardType:   req.CardType,
			CardName:   req.CardName,
			CardNumber: MaskCardNumber(number),
			Expiry:     req.Expiry,
		}, nil
	}
	return models.PaymentMethod{}, fmt.Errorf("method %q: %w", req.Method, ErrInvalidPayment)
}

// CardRequest is a card to keep on file. Saved cards carry no CVV.
type CardRequest struct {
	CardType   string `json:"cardType" validate:"required"`
	CardName   string `json:"cardName" validate:"required,max=100"`
	CardNumber string `json:"cardNumber" validate:"required"`
	Expiry     string `json:"expiry" validate:"required"`
}

// BuildSavedCard checks req against the checkout card rules and returns the
// masked card that is stored.
func BuildSavedCard(req CardRequest) (models.SavedCard, error) {
	number, _, err := checkCard(req.CardType, req.CardName, req.CardNumber, req.Expiry)
	if err != nil {
		return models.SavedCard{}, err
	}
	return models.SavedCard{
		CardType:   req.CardType,
		CardName:   req.CardName,
		CardMasked: MaskCardNumber(number),
		CardLast4:  number[len(number)-4:],
		Expiry:     req.Expiry,
	}, nil
}

// checkCard returns the card number without spaces and the rule of its type.
func checkCard(cardType, name, rawNumber, expiry string) (string, cardRule, error) {
	rule, ok := cardRules[cardType]
	if !ok {
		return "", rule, fmt.Errorf("card type %q: %w", cardType, ErrInvalidPayment)
	}
	number := strings.ReplaceAll(rawNumber, " ", "")
	if len(number) != rule.digits || !digitsPattern.MatchString(number) {
		return "", rule, fmt.Errorf("card number must be %d digits: %w", rule.digits, ErrInvalidPayment)
	}
	if !expiryPattern.MatchString(expiry) {
		return "", rule, fmt.Errorf("expiry must be MM/YY: %w", ErrInvalidPayment)
	}
	if strings.TrimSpace(name) == "" {
		return "", rule, fmt.Errorf("name on card is required: %w", ErrInvalidPayment)
	}
	return number, rule, nil
}

// MaskCardNumber keeps only the last four digits.
func MaskCardNumber(number string) string {
	if len(number) < 4 {
		return "****"
	}
	return "**** **** **** " + number[len(number)-4:]
}
