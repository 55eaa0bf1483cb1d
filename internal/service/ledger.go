package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
)

// InventoryLedger is the stock-movement surface the settlement flows use.
// Every stock change goes through here so the append-only movement history
// always reconciles with current stock.
type InventoryLedger struct {
	stock  repository.StockRepository
	logger *zap.Logger
}

// NewInventoryLedger creates a new inventory ledger service
func NewInventoryLedger(stock repository.StockRepository, logger *zap.Logger) *InventoryLedger {
	return &InventoryLedger{stock: stock, logger: logger}
}

// Decrement records a sale movement and reduces stock. Fails with
// ErrInsufficientStock when the product cannot cover qty.
func (l *InventoryLedger) Decrement(ctx context.Context, productID uuid.UUID, qty int, reference, actor string) error {
	if err := l.stock.Decrement(ctx, productID, qty, reference, actor); err != nil {
		return err
	}
	l.logger.Info("Stock decremented",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", qty),
		zap.String("reference", reference),
	)
	return nil
}

// Restore records a return movement and puts stock back. Calling it twice
// for the same (reference, product) is a no-op.
func (l *InventoryLedger) Restore(ctx context.Context, productID uuid.UUID, qty int, reference, reason, actor string) error {
	if err := l.stock.Restore(ctx, productID, qty, reference, reason, actor); err != nil {
		return err
	}
	l.logger.Info("Stock restored",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", qty),
		zap.String("reference", reference),
		zap.String("reason", reason),
	)
	return nil
}

// RestoreForOrder compensates every line of an order, keyed by the order
// number so repeated compensation attempts stay idempotent. Per-line
// failures are logged and skipped; the remaining lines are still restored.
func (l *InventoryLedger) RestoreForOrder(ctx context.Context, items []*domain.OrderItem, orderNumber, reason, actor string) {
	for _, item := range items {
		if err := l.stock.Restore(ctx, item.ProductID, item.Quantity, orderNumber, reason, actor); err != nil {
			l.logger.Error("Failed to restore stock for order item",
				zap.String("order_number", orderNumber),
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}
}

// ListMovements exports the movement history for back-office reporting
func (l *InventoryLedger) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*domain.StockMovement, error) {
	return l.stock.ListMovements(ctx, filter)
}

// MovementsByReference returns every movement recorded under a reference
func (l *InventoryLedger) MovementsByReference(ctx context.Context, reference string) ([]*domain.StockMovement, error) {
	return l.stock.GetByReference(ctx, reference)
}
