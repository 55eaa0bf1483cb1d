package domain

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	// PENDING - order created, awaiting payment confirmation
	OrderStatusPending OrderStatus = "PENDING"
	// PROCESSING - payment confirmed, order being prepared
	OrderStatusProcessing OrderStatus = "PROCESSING"
	// SHIPPED - order handed to the carrier
	OrderStatusShipped OrderStatus = "SHIPPED"
	// DELIVERED - order received by the customer
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// CANCELLED - order cancelled before fulfilment
	OrderStatusCancelled OrderStatus = "CANCELLED"
	// REFUNDED - order refunded after payment
	OrderStatusRefunded OrderStatus = "REFUNDED"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
		OrderStatusRefunded:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return newStatus == OrderStatusProcessing ||
			newStatus == OrderStatusCancelled
	case OrderStatusProcessing:
		return newStatus == OrderStatusShipped ||
			newStatus == OrderStatusCancelled ||
			newStatus == OrderStatusRefunded
	case OrderStatusShipped:
		return newStatus == OrderStatusDelivered ||
			newStatus == OrderStatusRefunded
	case OrderStatusDelivered:
		return newStatus == OrderStatusRefunded
	case OrderStatusCancelled, OrderStatusRefunded:
		return false // Terminal states
	default:
		return false
	}
}

// IsTerminal reports whether no further automatic transition is permitted
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

// PaymentStatus represents the settlement status of a payment record
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the payment reached a final outcome.
// COMPLETED and FAILED never transition again; REFUNDED is reached
// only through a manual back-office action on a COMPLETED payment.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed || s == PaymentStatusRefunded
}

// CanTransitionTo checks if a payment status transition is valid
func (s PaymentStatus) CanTransitionTo(newStatus PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return newStatus == PaymentStatusCompleted || newStatus == PaymentStatusFailed
	case PaymentStatusCompleted:
		return newStatus == PaymentStatusRefunded
	case PaymentStatusFailed, PaymentStatusRefunded:
		return false // Terminal states
	default:
		return false
	}
}

// InvoiceStatus represents the billing status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
	InvoiceStatusRefunded  InvoiceStatus = "REFUNDED"
)

// IsValid checks if the invoice status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled, InvoiceStatusRefunded:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if an invoice status transition is valid
func (s InvoiceStatus) CanTransitionTo(newStatus InvoiceStatus) bool {
	switch s {
	case InvoiceStatusSent:
		return newStatus == InvoiceStatusPaid ||
			newStatus == InvoiceStatusOverdue ||
			newStatus == InvoiceStatusCancelled
	case InvoiceStatusOverdue:
		return newStatus == InvoiceStatusPaid ||
			newStatus == InvoiceStatusCancelled
	case InvoiceStatusPaid:
		return newStatus == InvoiceStatusRefunded
	case InvoiceStatusCancelled, InvoiceStatusRefunded:
		return false // Terminal states
	default:
		return false
	}
}

// MovementType classifies a stock movement ledger entry
type MovementType string

const (
	MovementTypePurchase   MovementType = "purchase"
	MovementTypeSale       MovementType = "sale"
	MovementTypeAdjustment MovementType = "adjustment"
	MovementTypeReturn     MovementType = "return"
	MovementTypeDamaged    MovementType = "damaged"
)

// IsValid checks if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase, MovementTypeSale, MovementTypeAdjustment, MovementTypeReturn, MovementTypeDamaged:
		return true
	default:
		return false
	}
}

// PaymentKind distinguishes the three payable record families the
// reconciler can match a gateway reference against.
type PaymentKind string

const (
	PaymentKindOrder      PaymentKind = "order"
	PaymentKindStandalone PaymentKind = "standalone"
	PaymentKindInvoice    PaymentKind = "invoice"
)

// Outbox effect types understood by the dispatcher
const (
	EffectTypeNotify        = "notify"
	EffectTypeRenderInvoice = "render_invoice"
)

// OutboxStatus represents the dispatch state of a pending side effect
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusDispatched OutboxStatus = "DISPATCHED"
	OutboxStatusFailed     OutboxStatus = "FAILED"
)
