package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

type orderService struct {
	repos    *repository.Repositories
	ledger   *InventoryLedger
	refgen   *ReferenceGenerator
	invoices *invoiceService
	logger   *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	repos *repository.Repositories,
	ledger *InventoryLedger,
	refgen *ReferenceGenerator,
	invoices *invoiceService,
	logger *zap.Logger,
) *orderService {
	return &orderService{
		repos:    repos,
		ledger:   ledger,
		refgen:   refgen,
		invoices: invoices,
		logger:   logger,
	}
}

type resolvedLine struct {
	product *domain.Product
	qty     int
}

// Create assembles an order from a cart submission. Prices always come
// from the catalog, never from the request. Stock coverage is validated
// before anything is persisted; once the order exists, per-line ledger
// failures are logged and compensated later instead of rolling back.
func (s *orderService) Create(ctx context.Context, req CheckoutRequest) (*domain.Order, []*domain.OrderItem, error) {
	lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return nil, nil, err
	}

	methodID, err := uuid.Parse(req.Shipping.MethodID)
	if err != nil {
		return nil, nil, &errors.ErrValidation{Message: "invalid shipping method id"}
	}
	method, err := s.repos.ShippingMethod.GetByID(ctx, methodID)
	if err != nil {
		return nil, nil, err
	}
	if !method.IsActive {
		return nil, nil, &errors.ErrValidation{Message: "shipping method is not available"}
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.product.Price.Mul(decimal.NewFromInt(int64(line.qty))))
	}

	// Variable-cost methods are settled at delivery, recorded as zero here
	shippingCost := method.Cost
	if method.Variable {
		shippingCost = decimal.Zero
	}

	discount := decimal.Zero
	var couponCode *string
	if req.CouponCode != "" {
		coupon, err := s.repos.Coupon.GetByCode(ctx, req.CouponCode)
		if err != nil {
			return nil, nil, err
		}
		if !coupon.IsActive {
			return nil, nil, &errors.ErrValidation{Message: "coupon is not active"}
		}
		discount = coupon.Discount
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
		couponCode = &coupon.Code
	}

	total := subtotal.Sub(discount).Add(shippingCost)

	orderNumber, err := s.refgen.Next(ctx, NamespaceOrder)
	if err != nil {
		s.logger.Error("Failed to generate order number", zap.Error(err))
		return nil, nil, err
	}

	customerName := strings.TrimSpace(req.Customer.FirstName + " " + req.Customer.LastName)
	order := &domain.Order{
		OrderNumber:   orderNumber,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: req.PaymentMethod,
		Subtotal:      subtotal,
		Discount:      discount,
		ShippingCost:  shippingCost,
		Total:         total,
		CouponCode:    couponCode,
		ShippingAddress: domain.ShippingAddress{
			FullName:   customerName,
			Phone:      req.Customer.Phone,
			Email:      req.Customer.Email,
			Street:     req.Shipping.Street,
			City:       req.Shipping.City,
			Area:       req.Shipping.Area,
			PostalCode: req.Shipping.PostalCode,
			Country:    req.Shipping.Country,
		},
	}

	s.logger.Info("Creating order", zap.String("order_number", orderNumber))
	if err := s.repos.Order.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order", zap.Error(err))
		return nil, nil, err
	}

	items := make([]*domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, &domain.OrderItem{
			OrderID:   order.ID,
			ProductID: line.product.ID,
			Name:      line.product.Name,
			UnitPrice: line.product.Price,
			Quantity:  line.qty,
			LineTotal: line.product.Price.Mul(decimal.NewFromInt(int64(line.qty))),
		})
	}
	if err := s.repos.OrderItem.CreateBatch(ctx, items); err != nil {
		s.logger.Error("Failed to create order items", zap.Error(err))
		return nil, nil, err
	}

	if couponCode != nil {
		if err := s.repos.Coupon.IncrementUsage(ctx, *couponCode); err != nil {
			s.logger.Error("Failed to increment coupon usage",
				zap.String("coupon", *couponCode), zap.Error(err))
		}
	}

	// The order is already committed; a line that fails to decrement here
	// is logged and left for manual reconciliation, not rolled back.
	for _, item := range items {
		if err := s.ledger.Decrement(ctx, item.ProductID, item.Quantity, orderNumber, "checkout"); err != nil {
			s.logger.Error("Failed to decrement stock for order item",
				zap.String("order_number", orderNumber),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
		}
	}

	if _, err := s.invoices.IssueForOrder(ctx, order, items); err != nil {
		s.logger.Error("Failed to issue invoice for order",
			zap.String("order_number", orderNumber), zap.Error(err))
	}

	event := &domain.OrderEvent{
		OrderID:   order.ID,
		EventType: "order_created",
		EventData: map[string]interface{}{
			"order_number": orderNumber,
			"total":        total.String(),
			"item_count":   len(items),
		},
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Error("Failed to record order event",
			zap.String("event_type", event.EventType), zap.Error(err))
	}

	s.enqueueNotify(ctx, "order.created", order.ID, map[string]interface{}{
		"order_number": orderNumber,
		"total":        total.String(),
	})

	return order, items, nil
}

// resolveLines validates the cart against the catalog and checks that
// current stock covers every line before anything is written.
func (s *orderService) resolveLines(ctx context.Context, cart []CartItem) ([]resolvedLine, error) {
	lines := make([]resolvedLine, 0, len(cart))
	for _, cartItem := range cart {
		if cartItem.Quantity <= 0 {
			return nil, &errors.ErrValidation{Message: "item quantity must be positive"}
		}
		productID, err := uuid.Parse(cartItem.ProductID)
		if err != nil {
			return nil, &errors.ErrValidation{Message: "invalid product id: " + cartItem.ProductID}
		}
		product, err := s.repos.Product.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !product.Published {
			return nil, &errors.ErrValidation{Message: "product is not available: " + product.Name}
		}
		if product.Stock < cartItem.Quantity {
			return nil, &errors.ErrInsufficientStock{
				ProductID: product.ID,
				Requested: cartItem.Quantity,
				Available: product.Stock,
			}
		}
		lines = append(lines, resolvedLine{product: product, qty: cartItem.Quantity})
	}
	return lines, nil
}

// GetByID returns the order with its items
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, []*domain.OrderItem, error) {
	order, err := s.repos.Order.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repos.OrderItem.GetByOrderID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// GetByOrderNumber returns the order with its items
func (s *orderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, []*domain.OrderItem, error) {
	order, err := s.repos.Order.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repos.OrderItem.GetByOrderID(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// List returns orders for the back office, optionally filtered by status
func (s *orderService) List(ctx context.Context, status *domain.OrderStatus, limit, offset int) ([]*domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if status != nil {
		if !status.IsValid() {
			return nil, &errors.ErrValidation{Message: "invalid order status: " + string(*status)}
		}
		return s.repos.Order.ListByStatus(ctx, *status, limit, offset)
	}
	return s.repos.Order.List(ctx, limit, offset)
}

// UpdateStatus is the audited manual path for back-office status changes.
// Setting the current status again is a no-op and emits nothing.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus domain.OrderStatus, actor string) (*domain.Order, error) {
	if !newStatus.IsValid() {
		return nil, &errors.ErrValidation{Message: "invalid order status: " + string(newStatus)}
	}

	order, err := s.repos.Order.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == newStatus {
		return order, nil
	}
	if !order.Status.CanTransitionTo(newStatus) {
		return nil, &errors.ErrInvalidStateTransition{From: order.Status, To: newStatus}
	}

	// Conditional on the status the transition was validated against, so a
	// concurrent admin edit cannot interleave past the validation
	changed, err := s.repos.Order.AdvanceStatusIf(ctx, id, order.Status, newStatus)
	if err != nil {
		s.logger.Error("Failed to update order status",
			zap.String("order_id", id.String()), zap.Error(err))
		return nil, err
	}
	if !changed {
		return nil, &errors.ErrConflict{Message: "order status changed concurrently"}
	}

	// Cancelling or refunding puts the reserved stock back
	if newStatus == domain.OrderStatusCancelled || newStatus == domain.OrderStatusRefunded {
		items, err := s.repos.OrderItem.GetByOrderID(ctx, id)
		if err != nil {
			s.logger.Error("Failed to load items for stock restore",
				zap.String("order_id", id.String()), zap.Error(err))
		} else {
			s.ledger.RestoreForOrder(ctx, items, order.OrderNumber, "order "+strings.ToLower(string(newStatus)), actor)
		}
	}

	event := &domain.OrderEvent{
		OrderID:   id,
		EventType: "status_changed",
		EventData: map[string]interface{}{
			"from":  string(order.Status),
			"to":    string(newStatus),
			"actor": actor,
		},
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Error("Failed to record order event",
			zap.String("event_type", event.EventType), zap.Error(err))
	}

	s.enqueueNotify(ctx, "order.status_changed", id, map[string]interface{}{
		"order_number": order.OrderNumber,
		"from":         string(order.Status),
		"to":           string(newStatus),
	})

	s.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("from", string(order.Status)),
		zap.String("to", string(newStatus)),
		zap.String("actor", actor),
	)

	order.Status = newStatus
	return order, nil
}

func (s *orderService) enqueueNotify(ctx context.Context, event string, orderID uuid.UUID, payload map[string]interface{}) {
	entry := &domain.OutboxEntry{
		EffectType: domain.EffectTypeNotify,
		Event:      event,
		SubjectID:  orderID,
		Payload:    payload,
		Status:     domain.OutboxStatusPending,
	}
	if err := s.repos.Outbox.Enqueue(ctx, entry); err != nil {
		s.logger.Error("Failed to enqueue notification",
			zap.String("event", event), zap.Error(err))
	}
}
