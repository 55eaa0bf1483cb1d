package service

import "github.com/shopspring/decimal"

// CheckoutRequest represents the cart submission payload
type CheckoutRequest struct {
	Items            []CartItem   `json:"items" binding:"required,min=1"`
	Customer         CustomerInfo `json:"customer" binding:"required"`
	Shipping         ShippingInfo `json:"shipping" binding:"required"`
	PaymentMethod    string       `json:"payment_method" binding:"required"`
	CouponCode       string       `json:"coupon_code,omitempty"`
	ShippingEstimate string       `json:"shipping_estimate,omitempty"` // display hint only, never trusted for totals
	PayNow           bool         `json:"pay_now,omitempty"`
	Channel          string       `json:"channel,omitempty"`
}

type CartItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type CustomerInfo struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone_number" binding:"required"`
}

// ShippingInfo carries the destination address and the chosen method
type ShippingInfo struct {
	MethodID   string `json:"method_id" binding:"required"`
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	Area       string `json:"area"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// StandalonePaymentRequest is an ad-hoc "pay this amount" link request
type StandalonePaymentRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency"`
	Purpose  string          `json:"purpose"`
	Customer CustomerInfo    `json:"customer" binding:"required"`
	Channel  string          `json:"channel"`
}

// StandaloneInvoiceRequest bills a customer with no backing order
type StandaloneInvoiceRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Customer CustomerInfo    `json:"customer" binding:"required"`
	Address  string          `json:"address"`
	Lines    []InvoiceLine   `json:"lines,omitempty"`
}

type InvoiceLine struct {
	Name      string          `json:"name" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
}
