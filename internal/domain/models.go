package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the stock-bearing catalog entry the settlement core cares about.
// Catalog presentation fields live elsewhere; only pricing and stock matter here.
type Product struct {
	ID        uuid.UUID
	Name      string
	Price     decimal.Decimal
	Stock     int
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShippingAddress is owned by its order and stored as a JSONB snapshot
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Area       string `json:"area,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}

// Order represents a customer order
type Order struct {
	ID              uuid.UUID
	OrderNumber     string
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	PaymentMethod   string
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	ShippingCost    decimal.Decimal
	Total           decimal.Decimal
	CouponCode      *string
	ShippingAddress ShippingAddress
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem snapshots a cart line at order time
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
	CreatedAt time.Time
}

// Payment is the gateway-facing record for an order payment.
// One order has at most one live payment; re-initiation replaces the
// pending reference rather than inserting a second row.
type Payment struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	Provider          string
	Reference         string
	SessionID         *string
	Amount            decimal.Decimal
	Currency          string
	Status            PaymentStatus
	Channel           string
	ProviderResponse  []byte // opaque last-seen gateway payload
	TransactionID     *string
	WebhookReceived   bool
	WebhookReceivedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StandalonePayment is an ad-hoc "pay this amount" record with no order
type StandalonePayment struct {
	ID                uuid.UUID
	Reference         string
	CustomerName      string
	CustomerPhone     string
	CustomerEmail     string
	Purpose           string
	Amount            decimal.Decimal
	Currency          string
	Status            PaymentStatus
	Channel           string
	ProviderResponse  []byte
	TransactionID     *string
	WebhookReceived   bool
	WebhookReceivedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// InvoicePayment settles an existing invoice directly, without an order
type InvoicePayment struct {
	ID                uuid.UUID
	InvoiceID         uuid.UUID
	Reference         string
	Amount            decimal.Decimal
	Currency          string
	Status            PaymentStatus
	Channel           string
	ProviderResponse  []byte
	TransactionID     *string
	WebhookReceived   bool
	WebhookReceivedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Invoice is the contractual billing document. Customer fields are
// snapshots taken at issuance; later customer edits never change them.
// Total is independent of the parent order once issued.
type Invoice struct {
	ID              uuid.UUID
	InvoiceNumber   string
	OrderID         *uuid.UUID // nil for standalone invoices
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
	Status          InvoiceStatus
	Total           decimal.Decimal
	PaidDate        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// InvoiceItem is a billed line copied from the order at issuance time
type InvoiceItem struct {
	ID        uuid.UUID
	InvoiceID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
	CreatedAt time.Time
}

// StockMovement is an append-only inventory ledger row. Rows are never
// updated or deleted; the sum of deltas for a product reconciles with
// its current stock.
type StockMovement struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	Delta         int // signed; negative for sale, positive for return
	PreviousStock int
	NewStock      int
	Type          MovementType
	Reference     string
	Reason        *string
	Actor         string
	CreatedAt     time.Time
}

// ShippingMethod prices the shipping leg of an order. Variable methods
// have their cost settled at delivery time, so checkout records zero.
type ShippingMethod struct {
	ID        uuid.UUID
	Name      string
	Cost      decimal.Decimal
	Variable  bool
	IsActive  bool
	CreatedAt time.Time
}

// Coupon records a flat discount and its usage count
type Coupon struct {
	ID        uuid.UUID
	Code      string
	Discount  decimal.Decimal
	UsedCount int
	IsActive  bool
	CreatedAt time.Time
}

// OrderEvent represents an audit event for an order
type OrderEvent struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	EventType string
	EventData map[string]interface{} // JSONB
	CreatedAt time.Time
}

// OutboxEntry is a pending side effect (notification, document render)
// written in the same flow as the state transition that triggered it,
// so a crash between transition and dispatch loses nothing.
type OutboxEntry struct {
	ID         uuid.UUID
	EffectType string // e.g. "notify", "render_invoice"
	Event      string
	SubjectID  uuid.UUID
	Payload    map[string]interface{} // JSONB
	Status     OutboxStatus
	Attempts   int
	LastError  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IdempotencyKey stores checkout replay-protection information
type IdempotencyKey struct {
	Key         string
	OrderID     uuid.UUID
	RequestHash string
	CreatedAt   time.Time
}
