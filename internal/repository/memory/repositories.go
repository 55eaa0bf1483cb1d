// Package memory provides in-memory repository implementations with the
// same conditional-update semantics as the postgres package. Used by
// service tests; not suitable for production.
package memory

import (
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
)

// NewRepositories creates a fully wired in-memory repository set. The
// stock repository shares the product store so stock checks and movement
// appends stay atomic.
func NewRepositories() *repository.Repositories {
	products := NewProductRepository()
	return &repository.Repositories{
		Product:           products,
		Order:             NewOrderRepository(),
		OrderItem:         NewOrderItemRepository(),
		Payment:           NewPaymentRepository(),
		StandalonePayment: NewStandalonePaymentRepository(),
		InvoicePayment:    NewInvoicePaymentRepository(),
		Invoice:           NewInvoiceRepository(),
		Stock:             NewStockRepository(products),
		Sequence:          NewSequenceRepository(),
		Outbox:            NewOutboxRepository(),
		OrderEvent:        NewOrderEventRepository(),
		IdempotencyKey:    NewIdempotencyKeyRepository(),
		ShippingMethod:    NewShippingMethodRepository(),
		Coupon:            NewCouponRepository(),
	}
}
