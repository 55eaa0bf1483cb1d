package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/gateway"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

// GatewayClient is the slice of the provider client the payment flows
// consume. Injected so tests can substitute a fake provider.
type GatewayClient interface {
	Initialize(ctx context.Context, params gateway.InitializeParams) (*gateway.InitializeResult, error)
	CheckStatus(ctx context.Context, reference string) (*gateway.Outcome, error)
}

// Reference prefixes distinguishing the three payable record families
const (
	PrefixOrderPayment      = "PAY"
	PrefixStandalonePayment = "SPAY"
	PrefixInvoicePayment    = "IPAY"
)

type paymentService struct {
	repos    *repository.Repositories
	gw       GatewayClient
	currency string
	logger   *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(repos *repository.Repositories, gw GatewayClient, currency string, logger *zap.Logger) *paymentService {
	return &paymentService{
		repos:    repos,
		gw:       gw,
		currency: currency,
		logger:   logger,
	}
}

// StartPayment initiates (or re-initiates) payment for an order. The
// payment row is upserted by order id: a second attempt replaces the
// pending reference instead of creating a parallel one, so webhooks for
// the superseded reference resolve to nothing. Gateway failure leaves the
// order untouched and payable.
func (s *paymentService) StartPayment(ctx context.Context, orderID uuid.UUID, channel string) (*domain.Payment, string, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	if order.PaymentStatus == domain.PaymentStatusCompleted {
		return nil, "", &errors.ErrConflict{Message: "order is already paid"}
	}
	if order.Status.IsTerminal() {
		return nil, "", &errors.ErrConflict{Message: "order is " + string(order.Status)}
	}

	reference := gateway.GenerateReference(PrefixOrderPayment)
	result, err := s.gw.Initialize(ctx, gateway.InitializeParams{
		Reference:     reference,
		Amount:        order.Total,
		Currency:      s.currency,
		CustomerName:  order.ShippingAddress.FullName,
		CustomerPhone: order.ShippingAddress.Phone,
		CustomerEmail: order.ShippingAddress.Email,
		Channel:       channel,
		Description:   "Order " + order.OrderNumber,
		ReturnContext: "order_number=" + order.OrderNumber,
	})
	if err != nil {
		s.logger.Error("Gateway initialization failed",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
		return nil, "", err
	}

	payment := &domain.Payment{
		OrderID:   order.ID,
		Provider:  "gateway",
		Reference: result.Reference,
		Amount:    order.Total,
		Currency:  s.currency,
		Status:    domain.PaymentStatusPending,
		Channel:   channel,
	}
	if result.SessionID != "" {
		payment.SessionID = &result.SessionID
	}

	if err := s.repos.Payment.Upsert(ctx, payment); err != nil {
		s.logger.Error("Failed to persist payment",
			zap.String("reference", result.Reference), zap.Error(err))
		return nil, "", err
	}

	event := &domain.OrderEvent{
		OrderID:   order.ID,
		EventType: "payment_initiated",
		EventData: map[string]interface{}{
			"reference": result.Reference,
			"amount":    order.Total.String(),
			"channel":   channel,
		},
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Error("Failed to record order event",
			zap.String("event_type", event.EventType), zap.Error(err))
	}

	s.logger.Info("Payment initiated",
		zap.String("order_number", order.OrderNumber),
		zap.String("reference", result.Reference),
	)
	return payment, result.PaymentURL, nil
}

// StartStandalone creates an ad-hoc payment link with no backing order
func (s *paymentService) StartStandalone(ctx context.Context, req StandalonePaymentRequest) (*domain.StandalonePayment, string, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, "", &errors.ErrValidation{Message: "amount must be positive"}
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}

	customerName := req.Customer.FirstName
	if req.Customer.LastName != "" {
		customerName = req.Customer.FirstName + " " + req.Customer.LastName
	}

	reference := gateway.GenerateReference(PrefixStandalonePayment)
	result, err := s.gw.Initialize(ctx, gateway.InitializeParams{
		Reference:     reference,
		Amount:        req.Amount,
		Currency:      currency,
		CustomerName:  customerName,
		CustomerPhone: req.Customer.Phone,
		CustomerEmail: req.Customer.Email,
		Channel:       req.Channel,
		Description:   req.Purpose,
	})
	if err != nil {
		s.logger.Error("Gateway initialization failed for standalone payment", zap.Error(err))
		return nil, "", err
	}

	payment := &domain.StandalonePayment{
		Reference:     result.Reference,
		CustomerName:  customerName,
		CustomerPhone: req.Customer.Phone,
		CustomerEmail: req.Customer.Email,
		Purpose:       req.Purpose,
		Amount:        req.Amount,
		Currency:      currency,
		Status:        domain.PaymentStatusPending,
		Channel:       req.Channel,
	}
	if err := s.repos.StandalonePayment.Create(ctx, payment); err != nil {
		s.logger.Error("Failed to persist standalone payment",
			zap.String("reference", result.Reference), zap.Error(err))
		return nil, "", err
	}

	s.logger.Info("Standalone payment initiated", zap.String("reference", result.Reference))
	return payment, result.PaymentURL, nil
}

// StartForInvoice initiates a direct settlement of an existing invoice
func (s *paymentService) StartForInvoice(ctx context.Context, invoiceID uuid.UUID, channel string) (*domain.InvoicePayment, string, error) {
	invoice, err := s.repos.Invoice.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if invoice.Status == domain.InvoiceStatusPaid {
		return nil, "", &errors.ErrConflict{Message: "invoice is already paid"}
	}
	if invoice.Status == domain.InvoiceStatusCancelled || invoice.Status == domain.InvoiceStatusRefunded {
		return nil, "", &errors.ErrConflict{Message: fmt.Sprintf("invoice is %s", invoice.Status)}
	}

	reference := gateway.GenerateReference(PrefixInvoicePayment)
	result, err := s.gw.Initialize(ctx, gateway.InitializeParams{
		Reference:     reference,
		Amount:        invoice.Total,
		Currency:      s.currency,
		CustomerName:  invoice.CustomerName,
		CustomerPhone: invoice.CustomerPhone,
		CustomerEmail: invoice.CustomerEmail,
		Channel:       channel,
		Description:   "Invoice " + invoice.InvoiceNumber,
		ReturnContext: "invoice_number=" + invoice.InvoiceNumber,
	})
	if err != nil {
		s.logger.Error("Gateway initialization failed for invoice payment",
			zap.String("invoice_number", invoice.InvoiceNumber), zap.Error(err))
		return nil, "", err
	}

	payment := &domain.InvoicePayment{
		InvoiceID: invoice.ID,
		Reference: result.Reference,
		Amount:    invoice.Total,
		Currency:  s.currency,
		Status:    domain.PaymentStatusPending,
		Channel:   channel,
	}
	if err := s.repos.InvoicePayment.Create(ctx, payment); err != nil {
		s.logger.Error("Failed to persist invoice payment",
			zap.String("reference", result.Reference), zap.Error(err))
		return nil, "", err
	}

	s.logger.Info("Invoice payment initiated",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("reference", result.Reference),
	)
	return payment, result.PaymentURL, nil
}
