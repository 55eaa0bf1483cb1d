package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Product:           NewProductRepository(db, logger),
		Order:             NewOrderRepository(db, logger),
		OrderItem:         NewOrderItemRepository(db, logger),
		Payment:           NewPaymentRepository(db, logger),
		StandalonePayment: NewStandalonePaymentRepository(db, logger),
		InvoicePayment:    NewInvoicePaymentRepository(db, logger),
		Invoice:           NewInvoiceRepository(db, logger),
		Stock:             NewStockRepository(db, logger),
		Sequence:          NewSequenceRepository(db, logger),
		Outbox:            NewOutboxRepository(db, logger),
		OrderEvent:        NewOrderEventRepository(db, logger),
		IdempotencyKey:    NewIdempotencyKeyRepository(db, logger),
		ShippingMethod:    NewShippingMethodRepository(db, logger),
		Coupon:            NewCouponRepository(db, logger),
	}
}
