package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

type InvoiceRepository struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*domain.Invoice
	items    map[uuid.UUID][]*domain.InvoiceItem
}

func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{
		invoices: make(map[uuid.UUID]*domain.Invoice),
		items:    make(map[uuid.UUID][]*domain.InvoiceItem),
	}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice, items []*domain.InvoiceItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	now := time.Now()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	copied := *invoice
	r.invoices[invoice.ID] = &copied

	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.InvoiceID = invoice.ID
		item.CreatedAt = now
		itemCopy := *item
		r.items[invoice.ID] = append(r.items[invoice.ID], &itemCopy)
	}
	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	invoice, ok := r.invoices[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "invoice", ID: id.String()}
	}
	copied := *invoice
	return &copied, nil
}

// GetByOrderID returns the latest non-cancelled invoice for the order
func (r *InvoiceRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *domain.Invoice
	for _, invoice := range r.invoices {
		if invoice.OrderID == nil || *invoice.OrderID != orderID {
			continue
		}
		if invoice.Status == domain.InvoiceStatusCancelled {
			continue
		}
		if latest == nil || invoice.CreatedAt.After(latest.CreatedAt) {
			latest = invoice
		}
	}
	if latest == nil {
		return nil, &errors.ErrNotFound{Resource: "invoice", ID: orderID.String()}
	}
	copied := *latest
	return &copied, nil
}

func (r *InvoiceRepository) GetItems(ctx context.Context, invoiceID uuid.UUID) ([]*domain.InvoiceItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.items[invoiceID]
	out := make([]*domain.InvoiceItem, 0, len(items))
	for _, item := range items {
		copied := *item
		out = append(out, &copied)
	}
	return out, nil
}

func (r *InvoiceRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	invoice, ok := r.invoices[id]
	if !ok {
		return false, &errors.ErrNotFound{Resource: "invoice", ID: id.String()}
	}
	if invoice.Status != domain.InvoiceStatusSent && invoice.Status != domain.InvoiceStatusOverdue {
		return false, nil
	}
	invoice.Status = domain.InvoiceStatusPaid
	invoice.PaidDate = &paidAt
	invoice.UpdatedAt = time.Now()
	return true, nil
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	invoice, ok := r.invoices[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "invoice", ID: id.String()}
	}
	invoice.Status = status
	invoice.UpdatedAt = time.Now()
	return nil
}
