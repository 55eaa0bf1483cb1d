package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

type invoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) *invoiceRepository {
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *domain.Invoice, items []*domain.InvoiceItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	if invoice.UpdatedAt.IsZero() {
		invoice.UpdatedAt = now
	}

	query := `
		INSERT INTO invoices (
			id, invoice_number, order_id, customer_name, customer_phone,
			customer_email, customer_address, status, total, paid_date,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = tx.ExecContext(ctx, query,
		invoice.ID,
		invoice.InvoiceNumber,
		invoice.OrderID,
		invoice.CustomerName,
		invoice.CustomerPhone,
		invoice.CustomerEmail,
		invoice.CustomerAddress,
		invoice.Status,
		invoice.Total,
		invoice.PaidDate,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.Error(err), zap.String("invoice_number", invoice.InvoiceNumber))
		return err
	}

	if len(items) > 0 {
		itemQuery := `
			INSERT INTO invoice_items (id, invoice_id, name, unit_price, quantity, line_total, created_at)
			VALUES `
		args := make([]interface{}, 0, len(items)*7)
		for i, item := range items {
			if i > 0 {
				itemQuery += ", "
			}
			itemQuery += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
				i*7+1, i*7+2, i*7+3, i*7+4, i*7+5, i*7+6, i*7+7)

			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			if item.CreatedAt.IsZero() {
				item.CreatedAt = now
			}
			item.InvoiceID = invoice.ID

			args = append(args,
				item.ID,
				item.InvoiceID,
				item.Name,
				item.UnitPrice,
				item.Quantity,
				item.LineTotal,
				item.CreatedAt,
			)
		}

		if _, err := tx.ExecContext(ctx, itemQuery, args...); err != nil {
			r.logger.Error("Failed to create invoice items", zap.Error(err))
			return err
		}
	}

	return tx.Commit()
}

const invoiceColumns = `id, invoice_number, order_id, customer_name, customer_phone,
		customer_email, customer_address, status, total, paid_date, created_at, updated_at`

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "invoice", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get invoice by ID", zap.Error(err))
		return nil, err
	}
	return invoice, nil
}

func (r *invoiceRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Invoice, error) {
	// Re-issuance cancels the old invoice; only the live one is returned.
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE order_id = $1 AND status != 'CANCELLED'
		ORDER BY created_at DESC
		LIMIT 1
	`

	invoice, err := scanInvoice(r.db.QueryRowContext(ctx, query, orderID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "invoice", ID: orderID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get invoice by order ID", zap.Error(err))
		return nil, err
	}
	return invoice, nil
}

func (r *invoiceRepository) GetItems(ctx context.Context, invoiceID uuid.UUID) ([]*domain.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, name, unit_price, quantity, line_total, created_at
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		r.logger.Error("Failed to get invoice items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*domain.InvoiceItem
	for rows.Next() {
		var item domain.InvoiceItem
		err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.Name,
			&item.UnitPrice,
			&item.Quantity,
			&item.LineTotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (r *invoiceRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	// Status guard keeps the first paid date: a replayed webhook finds the
	// invoice already PAID and changes nothing.
	query := `
		UPDATE invoices
		SET status = 'PAID', paid_date = $2, updated_at = $3
		WHERE id = $1 AND status IN ('SENT', 'OVERDUE')
	`

	result, err := r.db.ExecContext(ctx, query, id, paidAt, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark invoice paid", zap.Error(err), zap.String("invoice_id", id.String()))
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InvoiceStatus) error {
	query := `
		UPDATE invoices
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update invoice status", zap.Error(err))
		return err
	}

	return nil
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	var invoice domain.Invoice
	var orderID *uuid.UUID
	var paidDate sql.NullTime

	err := row.Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&orderID,
		&invoice.CustomerName,
		&invoice.CustomerPhone,
		&invoice.CustomerEmail,
		&invoice.CustomerAddress,
		&invoice.Status,
		&invoice.Total,
		&paidDate,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	invoice.OrderID = orderID
	if paidDate.Valid {
		invoice.PaidDate = &paidDate.Time
	}

	return &invoice, nil
}
