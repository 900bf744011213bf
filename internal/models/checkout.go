package models

// CheckoutItem is one requested product+quantity pair in a checkout cart.
type CheckoutItem struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"quantity"`
}

// PaymentDetails carries the payment credentials for a single gateway call.
// These values are never persisted and must never be logged.
type PaymentDetails struct {
	CardNumber string `json:"cardNumber"`
	CVV        string `json:"cvv"`
	ExpMonth   string `json:"expMonth"`
	ExpYear    string `json:"expYear"`
	CardHolder string `json:"cardHolder"`
	Currency   string `json:"currency"`
}

// CheckoutRequest is the ephemeral checkout input. It exists only for the
// duration of the request and is not stored.
type CheckoutRequest struct {
	Items          []CheckoutItem `json:"items"`
	PaymentMethod  string         `json:"paymentMethod"`
	PaymentDetails PaymentDetails `json:"paymentDetails"`
}
