package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

type invoiceService struct {
	repos  *repository.Repositories
	refgen *ReferenceGenerator
	logger *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(repos *repository.Repositories, refgen *ReferenceGenerator, logger *zap.Logger) *invoiceService {
	return &invoiceService{
		repos:  repos,
		refgen: refgen,
		logger: logger,
	}
}

// IssueForOrder creates the invoice for a freshly assembled order.
// Customer fields and line prices are snapshots; later edits to the order
// or the catalog never change an issued invoice.
func (s *invoiceService) IssueForOrder(ctx context.Context, order *domain.Order, items []*domain.OrderItem) (*domain.Invoice, error) {
	number, err := s.refgen.Next(ctx, NamespaceInvoice)
	if err != nil {
		return nil, err
	}

	addr := order.ShippingAddress
	invoice := &domain.Invoice{
		InvoiceNumber:   number,
		OrderID:         &order.ID,
		CustomerName:    addr.FullName,
		CustomerPhone:   addr.Phone,
		CustomerEmail:   addr.Email,
		CustomerAddress: formatAddress(addr),
		Status:          domain.InvoiceStatusSent,
		Total:           order.Total,
	}

	invItems := make([]*domain.InvoiceItem, 0, len(items))
	for _, item := range items {
		invItems = append(invItems, &domain.InvoiceItem{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}

	if err := s.repos.Invoice.Create(ctx, invoice, invItems); err != nil {
		s.logger.Error("Failed to create invoice",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
		return nil, err
	}

	s.enqueueRender(ctx, invoice.ID)
	s.logger.Info("Invoice issued",
		zap.String("invoice_number", number),
		zap.String("order_number", order.OrderNumber),
	)
	return invoice, nil
}

// IssueStandalone bills a customer with no backing order
func (s *invoiceService) IssueStandalone(ctx context.Context, req StandaloneInvoiceRequest) (*domain.Invoice, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) && len(req.Lines) == 0 {
		return nil, &errors.ErrValidation{Message: "amount must be positive"}
	}

	number, err := s.refgen.Next(ctx, NamespaceInvoice)
	if err != nil {
		return nil, err
	}

	total := req.Amount
	invItems := make([]*domain.InvoiceItem, 0, len(req.Lines))
	if len(req.Lines) > 0 {
		total = decimal.Zero
		for _, line := range req.Lines {
			lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(lineTotal)
			invItems = append(invItems, &domain.InvoiceItem{
				Name:      line.Name,
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
				LineTotal: lineTotal,
			})
		}
	}

	invoice := &domain.Invoice{
		InvoiceNumber:   number,
		CustomerName:    strings.TrimSpace(req.Customer.FirstName + " " + req.Customer.LastName),
		CustomerPhone:   req.Customer.Phone,
		CustomerEmail:   req.Customer.Email,
		CustomerAddress: req.Address,
		Status:          domain.InvoiceStatusSent,
		Total:           total,
	}

	if err := s.repos.Invoice.Create(ctx, invoice, invItems); err != nil {
		s.logger.Error("Failed to create standalone invoice", zap.Error(err))
		return nil, err
	}

	s.enqueueRender(ctx, invoice.ID)
	s.logger.Info("Standalone invoice issued", zap.String("invoice_number", number))
	return invoice, nil
}

// GetByID returns the invoice with its items
func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, []*domain.InvoiceItem, error) {
	invoice, err := s.repos.Invoice.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repos.Invoice.GetItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return invoice, items, nil
}

// MarkPaid settles the invoice. Calling it again for an already-paid
// invoice changes nothing and keeps the original paid date.
func (s *invoiceService) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	changed, err := s.repos.Invoice.MarkPaid(ctx, id, paidAt)
	if err != nil {
		return err
	}
	if !changed {
		s.logger.Debug("Invoice already settled", zap.String("invoice_id", id.String()))
		return nil
	}
	s.logger.Info("Invoice marked paid", zap.String("invoice_id", id.String()))
	return nil
}

// Reissue cancels the order's current invoice and issues a fresh one from
// the order's present state. This is the only path that re-derives an
// invoice after issuance.
func (s *invoiceService) Reissue(ctx context.Context, orderID uuid.UUID, actor string) (*domain.Invoice, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.OrderItem.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	current, err := s.repos.Invoice.GetByOrderID(ctx, orderID)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); !ok {
			return nil, err
		}
	}
	if current != nil {
		if current.Status == domain.InvoiceStatusPaid {
			return nil, &errors.ErrConflict{Message: "cannot reissue a paid invoice"}
		}
		if err := s.repos.Invoice.UpdateStatus(ctx, current.ID, domain.InvoiceStatusCancelled); err != nil {
			return nil, err
		}
		s.logger.Info("Invoice cancelled for reissue",
			zap.String("invoice_number", current.InvoiceNumber),
			zap.String("actor", actor),
		)
	}

	invoice, err := s.IssueForOrder(ctx, order, items)
	if err != nil {
		return nil, err
	}

	event := &domain.OrderEvent{
		OrderID:   orderID,
		EventType: "invoice_reissued",
		EventData: map[string]interface{}{
			"invoice_number": invoice.InvoiceNumber,
			"actor":          actor,
		},
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Error("Failed to record order event",
			zap.String("event_type", event.EventType), zap.Error(err))
	}

	return invoice, nil
}

func (s *invoiceService) enqueueRender(ctx context.Context, invoiceID uuid.UUID) {
	entry := &domain.OutboxEntry{
		EffectType: domain.EffectTypeRenderInvoice,
		Event:      "invoice.issued",
		SubjectID:  invoiceID,
		Status:     domain.OutboxStatusPending,
	}
	if err := s.repos.Outbox.Enqueue(ctx, entry); err != nil {
		s.logger.Error("Failed to enqueue invoice render",
			zap.String("invoice_id", invoiceID.String()), zap.Error(err))
	}
}

func formatAddress(addr domain.ShippingAddress) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{addr.Street, addr.Area, addr.City, addr.PostalCode, addr.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
