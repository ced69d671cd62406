package services_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestBuildPaymentMethod(t *testing.T) {
	tests := []struct {
		name    string
		req     services.PaymentRequest
		want    models.PaymentMethod
		wantErr bool
	}{
		{
			name: "cash on delivery",
			req:  services.PaymentRequest{Method: "cod"},
			want: models.PaymentMethod{Method: models.PaymentCOD},
		},
		{
			name: "upi",
			req:  services.PaymentRequest{Method: "upi", UPIID: "asha.rao@okbank"},
			want: models.PaymentMethod{Method: models.PaymentUPI, UPIID: "asha.rao@okbank"},
		},
		{name: "upi without handle", req: services.PaymentRequest{Method: "upi", UPIID: "asha.rao"}, wantErr: true},
		{
			name: "visa is masked",
			req:  services.PaymentRequest{Method: "card", CardType: "Visa", CardName: "Asha", CardNumber: "4111111111111111", Expiry: "01/29", CVV: "999"},
			want: models.PaymentMethod{Method: models.PaymentCard, CardType: "Visa", CardName: "Asha", CardNumber: "**** **** **** 1111", Expiry: "01/29"},
		},
		{
			name: "amex takes 15 digits and a 4 digit cvv",
			req:  services.PaymentRequest{Method: "card", CardType: "American Express", CardName: "Asha", CardNumber: "3782 822463 10005", Expiry: "11/28", CVV: "1234"},
			want: models.PaymentMethod{Method: models.PaymentCard, CardType: "American Express", CardName: "Asha", CardNumber: "**** **** **** 0005", Expiry: "11/28"},
		},
		{name: "short card number", req: services.PaymentRequest{Method: "card", CardType: "Visa", CardName: "A", CardNumber: "4111", Expiry: "01/29", CVV: "999"}, wantErr: true},
		{name: "bad expiry", req: services.PaymentRequest{Method: "card", CardType: "Visa", CardName: "A", CardNumber: "4111111111111111", Expiry: "13/29", CVV: "999"}, wantErr: true},
		{name: "bad cvv", req: services.PaymentRequest{Method: "card", CardType: "Visa", CardName: "A", CardNumber: "4111111111111111", Expiry: "01/29", CVV: "99a"}, wantErr: true},
		{name: "unknown card type", req: services.PaymentRequest{Method: "card", CardType: "Diners"}, wantErr: true},
		{name: "unknown method", req: services.PaymentRequest{Method: "barter"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := services.BuildPaymentMethod(tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, services.ErrInvalidPayment)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildSavedCard(t *testing.T) {
	card, err := services.BuildSavedCard(services.CardRequest{CardType: "Visa", CardName: "Asha Rao", CardNumber: "4111 1111 1111 4242", Expiry: "12/27"})
	assert.NoError(t, err)
	assert.Equal(t, models.SavedCard{CardType: "Visa", CardName: "Asha Rao", CardMasked: "**** **** **** 4242", CardLast4: "4242", Expiry: "12/27"}, card)

	_, err = services.BuildSavedCard(services.CardRequest{CardType: "American Express", CardName: "Asha Rao", CardNumber: "4111111111111111", Expiry: "12/27"})
	assert.ErrorIs(t, err, services.ErrInvalidPayment, "amex takes 15 digits")
	_, err = services.BuildSavedCard(services.CardRequest{CardType: "Visa", CardName: "Asha Rao", CardNumber: "4111111111111111", Expiry: "1227"})
	assert.ErrorIs(t, err, services.ErrInvalidPayment)
}
