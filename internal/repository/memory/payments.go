package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

type PaymentRepository struct {
	mu      sync.Mutex
	byOrder map[uuid.UUID]*domain.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{byOrder: make(map[uuid.UUID]*domain.Payment)}
}

func (r *PaymentRepository) Upsert(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.byOrder[payment.OrderID]; ok {
		existing.Reference = payment.Reference
		existing.SessionID = payment.SessionID
		existing.Amount = payment.Amount
		existing.Currency = payment.Currency
		existing.Status = payment.Status
		existing.Channel = payment.Channel
		existing.TransactionID = nil
		existing.ProviderResponse = nil
		existing.WebhookReceived = false
		existing.WebhookReceivedAt = nil
		existing.UpdatedAt = now
		*payment = *existing
		return nil
	}

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = now
	payment.UpdatedAt = now
	copied := *payment
	r.byOrder[payment.OrderID] = &copied
	return nil
}

func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, payment := range r.byOrder {
		if payment.Reference == reference {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "payment", ID: reference}
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.byOrder[orderID]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "payment", ID: orderID.String()}
	}
	copied := *payment
	return &copied, nil
}

func (r *PaymentRepository) MarkTerminal(ctx context.Context, reference string, status domain.PaymentStatus, transactionID *string, providerResponse []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, payment := range r.byOrder {
		if payment.Reference != reference {
			continue
		}
		if payment.Status != domain.PaymentStatusPending {
			return false, nil
		}
		applyTerminal(&payment.Status, &payment.TransactionID, &payment.ProviderResponse,
			&payment.WebhookReceived, &payment.WebhookReceivedAt, &payment.UpdatedAt,
			status, transactionID, providerResponse)
		return true, nil
	}
	return false, nil
}

type StandalonePaymentRepository struct {
	mu       sync.Mutex
	payments map[string]*domain.StandalonePayment
}

func NewStandalonePaymentRepository() *StandalonePaymentRepository {
	return &StandalonePaymentRepository{payments: make(map[string]*domain.StandalonePayment)}
}

func (r *StandalonePaymentRepository) Create(ctx context.Context, payment *domain.StandalonePayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	copied := *payment
	r.payments[payment.Reference] = &copied
	return nil
}

func (r *StandalonePaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.StandalonePayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[reference]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "standalone payment", ID: reference}
	}
	copied := *payment
	return &copied, nil
}

func (r *StandalonePaymentRepository) MarkTerminal(ctx context.Context, reference string, status domain.PaymentStatus, transactionID *string, providerResponse []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[reference]
	if !ok || payment.Status != domain.PaymentStatusPending {
		return false, nil
	}
	applyTerminal(&payment.Status, &payment.TransactionID, &payment.ProviderResponse,
		&payment.WebhookReceived, &payment.WebhookReceivedAt, &payment.UpdatedAt,
		status, transactionID, providerResponse)
	return true, nil
}

type InvoicePaymentRepository struct {
	mu       sync.Mutex
	payments map[string]*domain.InvoicePayment
}

func NewInvoicePaymentRepository() *InvoicePaymentRepository {
	return &InvoicePaymentRepository{payments: make(map[string]*domain.InvoicePayment)}
}

func (r *InvoicePaymentRepository) Create(ctx context.Context, payment *domain.InvoicePayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	copied := *payment
	r.payments[payment.Reference] = &copied
	return nil
}

func (r *InvoicePaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.InvoicePayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[reference]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "invoice payment", ID: reference}
	}
	copied := *payment
	return &copied, nil
}

func (r *InvoicePaymentRepository) MarkTerminal(ctx context.Context, reference string, status domain.PaymentStatus, transactionID *string, providerResponse []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[reference]
	if !ok || payment.Status != domain.PaymentStatusPending {
		return false, nil
	}
	applyTerminal(&payment.Status, &payment.TransactionID, &payment.ProviderResponse,
		&payment.WebhookReceived, &payment.WebhookReceivedAt, &payment.UpdatedAt,
		status, transactionID, providerResponse)
	return true, nil
}

// applyTerminal centralizes the terminal-transition field updates shared
// by the three payment record families
func applyTerminal(
	status *domain.PaymentStatus,
	transactionID **string,
	providerResponse *[]byte,
	webhookReceived *bool,
	webhookReceivedAt **time.Time,
	updatedAt *time.Time,
	newStatus domain.PaymentStatus,
	newTransactionID *string,
	newProviderResponse []byte,
) {
	now := time.Now()
	*status = newStatus
	if newTransactionID != nil {
		*transactionID = newTransactionID
	}
	if newProviderResponse != nil {
		*providerResponse = newProviderResponse
	}
	*webhookReceived = true
	*webhookReceivedAt = &now
	*updatedAt = now
}
