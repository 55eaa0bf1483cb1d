package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/gateway"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

// Callback is the provider's webhook payload
type Callback struct {
	ReferenceNumber string `json:"referenceNumber"`
	ResponseCode    string `json:"responsecode"`
	Amount          string `json:"amount"`
	TransactionID   string `json:"transactionid"`
	TransactionDT   string `json:"transactiondt"`
	HashCode        string `json:"hashcode"`
	ReturnContext   string `json:"returnContext"`
}

// ReconcileResult is what a processed callback or status poll resolved to
type ReconcileResult struct {
	Reference     string
	Kind          domain.PaymentKind
	PaymentStatus domain.PaymentStatus
	Replay        bool // a terminal state was already recorded with the same outcome
	Anomaly       bool // incoming outcome conflicted with the stored terminal state
}

type reconcileService struct {
	repos  *repository.Repositories
	ledger *InventoryLedger
	gw     GatewayClient
	secret string
	logger *zap.Logger
}

// NewReconcileService creates a new webhook reconciliation service
func NewReconcileService(
	repos *repository.Repositories,
	ledger *InventoryLedger,
	gw GatewayClient,
	webhookSecret string,
	logger *zap.Logger,
) *reconcileService {
	return &reconcileService{
		repos:  repos,
		ledger: ledger,
		gw:     gw,
		secret: webhookSecret,
		logger: logger,
	}
}

// ProcessCallback applies a provider webhook. rawBody is the request body
// exactly as received, needed for signature verification over fields this
// struct does not know about. The returned error is nil for replays and
// anomalies: both still answer 200 so the provider stops retrying.
func (s *reconcileService) ProcessCallback(ctx context.Context, cb Callback, rawBody []byte) (*ReconcileResult, error) {
	if s.secret != "" {
		fields, err := callbackFields(rawBody)
		if err != nil {
			return nil, &errors.ErrValidation{Message: "malformed callback body"}
		}
		if !gateway.VerifySignature(s.secret, fields, cb.HashCode) {
			s.logger.Warn("Webhook signature rejected",
				zap.String("reference", cb.ReferenceNumber))
			return nil, &errors.ErrSignature{}
		}
	}

	success := cb.ResponseCode == "0"
	var transactionID *string
	if cb.TransactionID != "" {
		transactionID = &cb.TransactionID
	}

	return s.apply(ctx, cb.ReferenceNumber, success, transactionID, rawBody)
}

// CheckAndReconcile is the synchronous poll path. It returns the persisted
// state immediately when terminal, otherwise queries the provider live and
// runs the same transition as a webhook would.
func (s *reconcileService) CheckAndReconcile(ctx context.Context, reference string) (*ReconcileResult, error) {
	kind, status, err := s.resolve(ctx, reference)
	if err != nil {
		return nil, err
	}
	if status.IsTerminal() {
		return &ReconcileResult{Reference: reference, Kind: kind, PaymentStatus: status}, nil
	}

	outcome, err := s.gw.CheckStatus(ctx, reference)
	if err != nil {
		return nil, err
	}

	// An empty response code means the provider has no outcome yet
	if !outcome.Success && outcome.ResponseCode == "" {
		return &ReconcileResult{Reference: reference, Kind: kind, PaymentStatus: status}, nil
	}

	var transactionID *string
	if outcome.TransactionID != "" {
		transactionID = &outcome.TransactionID
	}
	return s.apply(ctx, reference, outcome.Success, transactionID, outcome.Raw)
}

// apply runs the reconciliation state machine for one reference. The
// terminal transition is a storage-level conditional update, so two
// concurrent deliveries serialize there: exactly one observes changed=true
// and runs the side effects.
func (s *reconcileService) apply(ctx context.Context, reference string, success bool, transactionID *string, raw []byte) (*ReconcileResult, error) {
	kind, _, err := s.resolve(ctx, reference)
	if err != nil {
		return nil, err
	}

	target := domain.PaymentStatusFailed
	if success {
		target = domain.PaymentStatusCompleted
	}

	var changed bool
	switch kind {
	case domain.PaymentKindOrder:
		changed, err = s.repos.Payment.MarkTerminal(ctx, reference, target, transactionID, raw)
	case domain.PaymentKindStandalone:
		changed, err = s.repos.StandalonePayment.MarkTerminal(ctx, reference, target, transactionID, raw)
	case domain.PaymentKindInvoice:
		changed, err = s.repos.InvoicePayment.MarkTerminal(ctx, reference, target, transactionID, raw)
	}
	if err != nil {
		return nil, err
	}

	if !changed {
		// Already terminal: re-read to see which outcome won
		_, stored, err := s.resolve(ctx, reference)
		if err != nil {
			return nil, err
		}
		result := &ReconcileResult{Reference: reference, Kind: kind, PaymentStatus: stored}
		if stored == target {
			result.Replay = true
			s.logger.Info("Webhook replay ignored",
				zap.String("reference", reference),
				zap.String("status", string(stored)),
			)
			return result, nil
		}
		result.Anomaly = true
		anomaly := &errors.ErrReconciliationAnomaly{Reference: reference, Stored: stored, Incoming: target}
		s.logger.Error("Reconciliation anomaly: conflicting terminal outcomes",
			zap.String("reference", reference),
			zap.String("stored", string(stored)),
			zap.String("incoming", string(target)),
			zap.Error(anomaly),
		)
		return result, nil
	}

	switch kind {
	case domain.PaymentKindOrder:
		s.settleOrder(ctx, reference, success)
	case domain.PaymentKindInvoice:
		s.settleInvoice(ctx, reference, success)
	}

	s.logger.Info("Payment reconciled",
		zap.String("reference", reference),
		zap.String("kind", string(kind)),
		zap.String("status", string(target)),
	)
	return &ReconcileResult{Reference: reference, Kind: kind, PaymentStatus: target}, nil
}

// settleOrder applies the order-side consequences of a terminal payment
func (s *reconcileService) settleOrder(ctx context.Context, reference string, success bool) {
	payment, err := s.repos.Payment.GetByReference(ctx, reference)
	if err != nil {
		s.logger.Error("Failed to reload payment after transition",
			zap.String("reference", reference), zap.Error(err))
		return
	}
	order, err := s.repos.Order.GetByID(ctx, payment.OrderID)
	if err != nil {
		s.logger.Error("Failed to load order for settlement",
			zap.String("reference", reference), zap.Error(err))
		return
	}

	if success {
		if err := s.repos.Order.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusCompleted); err != nil {
			s.logger.Error("Failed to update order payment status",
				zap.String("order_number", order.OrderNumber), zap.Error(err))
		}
		advanced, err := s.repos.Order.AdvanceStatusIf(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusProcessing)
		if err != nil {
			s.logger.Error("Failed to advance order status",
				zap.String("order_number", order.OrderNumber), zap.Error(err))
		} else if !advanced {
			s.logger.Info("Order already past PENDING, status untouched",
				zap.String("order_number", order.OrderNumber),
				zap.String("status", string(order.Status)),
			)
		}

		invoice, err := s.repos.Invoice.GetByOrderID(ctx, order.ID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); !ok {
				s.logger.Error("Failed to load invoice for settlement",
					zap.String("order_number", order.OrderNumber), zap.Error(err))
			}
		} else if _, err := s.repos.Invoice.MarkPaid(ctx, invoice.ID, time.Now()); err != nil {
			s.logger.Error("Failed to mark invoice paid",
				zap.String("invoice_number", invoice.InvoiceNumber), zap.Error(err))
		}

		s.audit(ctx, order.ID, "payment_completed", map[string]interface{}{
			"reference": reference,
		})
		s.enqueueNotify(ctx, "payment.completed", order.ID, map[string]interface{}{
			"order_number": order.OrderNumber,
			"reference":    reference,
		})
		return
	}

	// Failure: the payment is dead but the order remains PENDING and
	// payable. The optimistic stock decrement is compensated, keyed by
	// the order number so a duplicate failure webhook restores nothing
	// twice.
	if err := s.repos.Order.UpdatePaymentStatus(ctx, order.ID, domain.PaymentStatusFailed); err != nil {
		s.logger.Error("Failed to update order payment status",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
	}

	items, err := s.repos.OrderItem.GetByOrderID(ctx, order.ID)
	if err != nil {
		s.logger.Error("Failed to load items for stock restore",
			zap.String("order_number", order.OrderNumber), zap.Error(err))
	} else {
		s.ledger.RestoreForOrder(ctx, items, order.OrderNumber, "payment failed", "reconciler")
	}

	s.audit(ctx, order.ID, "payment_failed", map[string]interface{}{
		"reference": reference,
	})
	s.enqueueNotify(ctx, "payment.failed", order.ID, map[string]interface{}{
		"order_number": order.OrderNumber,
		"reference":    reference,
	})
}

// settleInvoice marks the invoice behind a direct invoice payment
func (s *reconcileService) settleInvoice(ctx context.Context, reference string, success bool) {
	if !success {
		return
	}
	payment, err := s.repos.InvoicePayment.GetByReference(ctx, reference)
	if err != nil {
		s.logger.Error("Failed to reload invoice payment after transition",
			zap.String("reference", reference), zap.Error(err))
		return
	}
	if _, err := s.repos.Invoice.MarkPaid(ctx, payment.InvoiceID, time.Now()); err != nil {
		s.logger.Error("Failed to mark invoice paid",
			zap.String("invoice_id", payment.InvoiceID.String()), zap.Error(err))
	}
}

// resolve matches a gateway reference against the three payable record
// families, in the fixed order payment, standalone, invoice.
func (s *reconcileService) resolve(ctx context.Context, reference string) (domain.PaymentKind, domain.PaymentStatus, error) {
	payment, err := s.repos.Payment.GetByReference(ctx, reference)
	if err == nil {
		return domain.PaymentKindOrder, payment.Status, nil
	}
	if _, ok := err.(*errors.ErrNotFound); !ok {
		return "", "", err
	}

	standalone, err := s.repos.StandalonePayment.GetByReference(ctx, reference)
	if err == nil {
		return domain.PaymentKindStandalone, standalone.Status, nil
	}
	if _, ok := err.(*errors.ErrNotFound); !ok {
		return "", "", err
	}

	invPayment, err := s.repos.InvoicePayment.GetByReference(ctx, reference)
	if err == nil {
		return domain.PaymentKindInvoice, invPayment.Status, nil
	}
	if _, ok := err.(*errors.ErrNotFound); !ok {
		return "", "", err
	}

	return "", "", &errors.ErrNotFound{Resource: "payment", ID: reference}
}

func (s *reconcileService) audit(ctx context.Context, orderID uuid.UUID, eventType string, data map[string]interface{}) {
	event := &domain.OrderEvent{
		OrderID:   orderID,
		EventType: eventType,
		EventData: data,
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Error("Failed to record order event",
			zap.String("event_type", eventType), zap.Error(err))
	}
}

func (s *reconcileService) enqueueNotify(ctx context.Context, event string, subjectID uuid.UUID, payload map[string]interface{}) {
	entry := &domain.OutboxEntry{
		EffectType: domain.EffectTypeNotify,
		Event:      event,
		SubjectID:  subjectID,
		Payload:    payload,
		Status:     domain.OutboxStatusPending,
	}
	if err := s.repos.Outbox.Enqueue(ctx, entry); err != nil {
		s.logger.Error("Failed to enqueue notification",
			zap.String("event", event), zap.Error(err))
	}
}

// callbackFields flattens the raw webhook body into the string map the
// signature covers, preserving numeric formatting exactly as sent.
func callbackFields(rawBody []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(rawBody))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case json.Number:
			fields[k] = val.String()
		case bool:
			fields[k] = fmt.Sprintf("%t", val)
		case nil:
			fields[k] = ""
		default:
			b, err := json.Marshal(val)
			if err != nil {
				return nil, err
			}
			fields[k] = string(b)
		}
	}
	return fields, nil
}
