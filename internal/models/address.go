package models

// Address is the shipping address copied into an order at placement time.
type Address struct {
	Name    string `json:"name" validate:"required,alphaspace,max=100"`
	Phone   string `json:"phone" validate:"required,numeric,len=10"`
	Line    string `json:"line" validate:"required,max=255"`
	City    string `json:"city" validate:"required,max=100"`
	Pincode string `json:"pincode" validate:"required,numeric,len=6"`
}
