package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
)

// ProductRepository defines product data access methods
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
}

// OrderRepository defines order data access methods
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	// AdvanceStatusIf moves the order to `to` only when it is currently at
	// `from`, reporting whether a row changed. Used by the reconciler so a
	// late success webhook never regresses a more-advanced order.
	AdvanceStatusIf(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error
	List(ctx context.Context, limit, offset int) ([]*domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]*domain.Order, error)
}

// OrderItemRepository defines order item data access methods
type OrderItemRepository interface {
	CreateBatch(ctx context.Context, items []*domain.OrderItem) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)
}

// PaymentRepository defines order payment data access methods
type PaymentRepository interface {
	// Upsert inserts the payment or, when a payment already exists for the
	// same order, replaces its reference/amount/channel in place. Order to
	// payment is 1:0..1 so re-initiation must not create a second row.
	Upsert(ctx context.Context, payment *domain.Payment) error
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error)
	// MarkTerminal applies the terminal transition only when the row is
	// still PENDING, reporting whether it changed anything. Concurrent
	// webhook deliveries for the same reference serialize here.
	MarkTerminal(ctx context.Context, reference string, status domain.PaymentStatus, transactionID *string, providerResponse []byte) (bool, error)
}

// StandalonePaymentRepository defines standalone payment data access methods
type StandalonePaymentRepository interface {
	Create(ctx context.Context, payment *domain.StandalonePayment) error
	GetByReference(ctx context.Context, reference string) (*domain.StandalonePayment, error)
	MarkTerminal(ctx context.Context, reference string, status domain.PaymentStatus, transactionID *string, providerResponse []byte) (bool, error)
}

// InvoicePaymentRepository defines invoice payment data access methods
type InvoicePaymentRepository interface {
	Create(ctx context.Context, payment *domain.InvoicePayment) error
	GetByReference(ctx context.Context, reference string) (*domain.InvoicePayment, error)
	MarkTerminal(ctx context.Context, reference string, status domain.PaymentStatus, transactionID *string, providerResponse []byte) (bool, error)
}

// InvoiceRepository defines invoice data access methods
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice, items []*domain.InvoiceItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Invoice, error)
	GetItems(ctx context.Context, invoiceID uuid.UUID) ([]*domain.InvoiceItem, error)
	// MarkPaid transitions SENT/OVERDUE to PAID, reporting whether a row
	// changed. An already-PAID invoice keeps its original paid date.
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error
}

// MovementFilter narrows the stock movement export query
type MovementFilter struct {
	From      *time.Time
	To        *time.Time
	Type      *domain.MovementType
	ProductID *uuid.UUID
}

// StockRepository defines the inventory ledger. Decrement and Restore are
// idempotent per (reference, product, type): a duplicate call appends no
// second movement and leaves stock untouched.
type StockRepository interface {
	Decrement(ctx context.Context, productID uuid.UUID, qty int, reference, actor string) error
	Restore(ctx context.Context, productID uuid.UUID, qty int, reference, reason, actor string) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]*domain.StockMovement, error)
	GetByReference(ctx context.Context, reference string) ([]*domain.StockMovement, error)
}

// SequenceRepository hands out per-(namespace, date) counters atomically
type SequenceRepository interface {
	Next(ctx context.Context, namespace string, date time.Time) (int, error)
}

// OutboxRepository defines pending side-effect data access methods
type OutboxRepository interface {
	Enqueue(ctx context.Context, entry *domain.OutboxEntry) error
	ListPending(ctx context.Context, limit int) ([]*domain.OutboxEntry, error)
	MarkDispatched(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string, terminal bool) error
}

// OrderEventRepository defines order audit event data access methods
type OrderEventRepository interface {
	Create(ctx context.Context, event *domain.OrderEvent) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error)
}

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// ShippingMethodRepository defines shipping method data access methods
type ShippingMethodRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ShippingMethod, error)
	Create(ctx context.Context, method *domain.ShippingMethod) error
}

// CouponRepository defines coupon data access methods
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	IncrementUsage(ctx context.Context, code string) error
	Create(ctx context.Context, coupon *domain.Coupon) error
}

// Repositories aggregates all repositories
type Repositories struct {
	Product           ProductRepository
	Order             OrderRepository
	OrderItem         OrderItemRepository
	Payment           PaymentRepository
	StandalonePayment StandalonePaymentRepository
	InvoicePayment    InvoicePaymentRepository
	Invoice           InvoiceRepository
	Stock             StockRepository
	Sequence          SequenceRepository
	Outbox            OutboxRepository
	OrderEvent        OrderEventRepository
	IdempotencyKey    IdempotencyKeyRepository
	ShippingMethod    ShippingMethodRepository
	Coupon            CouponRepository
}
