package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

type paymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB, logger *zap.Logger) *paymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Upsert(ctx context.Context, payment *domain.Payment) error {
	// order_id carries a unique constraint; re-initiating payment for the
	// same order replaces the pending reference instead of inserting a
	// duplicate row. The earlier gateway reference becomes orphaned.
	query := `
		INSERT INTO payments (
			id, order_id, provider, reference, session_id, amount, currency,
			status, channel, provider_response, transaction_id,
			webhook_received, webhook_received_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (order_id) DO UPDATE SET
			provider = EXCLUDED.provider,
			reference = EXCLUDED.reference,
			session_id = EXCLUDED.session_id,
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			status = EXCLUDED.status,
			channel = EXCLUDED.channel,
			provider_response = EXCLUDED.provider_response,
			webhook_received = FALSE,
			webhook_received_at = NULL,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.Provider,
		payment.Reference,
		payment.SessionID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.Channel,
		payment.ProviderResponse,
		payment.TransactionID,
		payment.WebhookReceived,
		payment.WebhookReceivedAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to upsert payment", zap.Error(err), zap.String("reference", payment.Reference))
		return err
	}

	return nil
}

const paymentColumns = `id, order_id, provider, reference, session_id, amount, currency,
		status, channel, provider_response, transaction_id,
		webhook_received, webhook_received_at, created_at, updated_at`

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reference = $1`

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, reference))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "payment", ID: reference}
	}
	if err != nil {
		r.logger.Error("Failed to get payment by reference", zap.Error(err), zap.String("reference", reference))
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, orderID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "payment", ID: orderID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get payment by order ID", zap.Error(err))
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepository) MarkTerminal(ctx context.Context, reference string, status domain.PaymentStatus, transactionID *string, providerResponse []byte) (bool, error) {
	// The status guard serializes concurrent deliveries for the same
	// reference: only the first one moves the row out of PENDING.
	query := `
		UPDATE payments
		SET status = $2, transaction_id = COALESCE($3, transaction_id),
			provider_response = COALESCE($4, provider_response),
			webhook_received = TRUE, webhook_received_at = $5, updated_at = $5
		WHERE reference = $1 AND status = 'PENDING'
	`

	result, err := r.db.ExecContext(ctx, query, reference, status, transactionID, providerResponse, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark payment terminal", zap.Error(err), zap.String("reference", reference))
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var payment domain.Payment
	var sessionID sql.NullString
	var transactionID sql.NullString
	var webhookReceivedAt sql.NullTime

	err := row.Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.Provider,
		&payment.Reference,
		&sessionID,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.Channel,
		&payment.ProviderResponse,
		&transactionID,
		&payment.WebhookReceived,
		&webhookReceivedAt,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sessionID.Valid {
		payment.SessionID = &sessionID.String
	}
	if transactionID.Valid {
		payment.TransactionID = &transactionID.String
	}
	if webhookReceivedAt.Valid {
		payment.WebhookReceivedAt = &webhookReceivedAt.Time
	}

	return &payment, nil
}
