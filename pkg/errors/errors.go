package errors

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrConflict is returned when there's a conflict (e.g., idempotency)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrInsufficientStock is returned when a decrement would drive stock negative
type ErrInsufficientStock struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *ErrInsufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ErrInvalidStateTransition is returned when an invalid order status transition is attempted
type ErrInvalidStateTransition struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrSignature is returned when a webhook signature does not verify.
// No state is changed when this error is produced.
type ErrSignature struct{}

func (e *ErrSignature) Error() string {
	return "webhook signature verification failed"
}

// ErrReconciliationAnomaly is returned when a webhook carries an outcome
// that conflicts with an already-terminal payment state. The stored state
// is never overwritten; the anomaly is logged and alerted instead.
type ErrReconciliationAnomaly struct {
	Reference string
	Stored    domain.PaymentStatus
	Incoming  domain.PaymentStatus
}

func (e *ErrReconciliationAnomaly) Error() string {
	return fmt.Sprintf("reconciliation anomaly for %s: stored terminal status %s, incoming %s",
		e.Reference, e.Stored, e.Incoming)
}
