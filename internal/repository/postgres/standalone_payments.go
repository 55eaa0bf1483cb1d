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

type standalonePaymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStandalonePaymentRepository creates a new standalone payment repository
func NewStandalonePaymentRepository(db *sql.DB, logger *zap.Logger) *standalonePaymentRepository {
	return &standalonePaymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *standalonePaymentRepository) Create(ctx context.Context, payment *domain.StandalonePayment) error {
	query := `
		INSERT INTO standalone_payments (
			id, reference, customer_name, customer_phone, customer_email, purpose,
			amount, currency, status, channel, provider_response, transaction_id,
			webhook_received, webhook_received_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
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
		payment.Reference,
		payment.CustomerName,
		payment.CustomerPhone,
		payment.CustomerEmail,
		payment.Purpose,
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
		r.logger.Error("Failed to create standalone payment", zap.Error(err), zap.String("reference", payment.Reference))
		return err
	}

	return nil
}

func (r *standalonePaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.StandalonePayment, error) {
	query := `
		SELECT id, reference, customer_name, customer_phone, customer_email, purpose,
			amount, currency, status, channel, provider_response, transaction_id,
			webhook_received, webhook_received_at, created_at, updated_at
		FROM standalone_payments
		WHERE reference = $1
	`

	var payment domain.StandalonePayment
	var transactionID sql.NullString
	var webhookReceivedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, reference).Scan(
		&payment.ID,
		&payment.Reference,
		&payment.CustomerName,
		&payment.CustomerPhone,
		&payment.CustomerEmail,
		&payment.Purpose,
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

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "standalone_payment", ID: reference}
	}
	if err != nil {
		r.logger.Error("Failed to get standalone payment by reference", zap.Error(err), zap.String("reference", reference))
		return nil, err
	}

	if transactionID.Valid {
		payment.TransactionID = &transactionID.String
	}
	if webhookReceivedAt.Valid {
		payment.WebhookReceivedAt = &webhookReceivedAt.Time
	}

	return &payment, nil
}

func (r *standalonePaymentRepository) MarkTerminal(ctx context.Context, reference string, status domain.PaymentStatus, transactionID *string, providerResponse []byte) (bool, error) {
	query := `
		UPDATE standalone_payments
		SET status = $2, transaction_id = COALESCE($3, transaction_id),
			provider_response = COALESCE($4, provider_response),
			webhook_received = TRUE, webhook_received_at = $5, updated_at = $5
		WHERE reference = $1 AND status = 'PENDING'
	`

	result, err := r.db.ExecContext(ctx, query, reference, status, transactionID, providerResponse, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark standalone payment terminal", zap.Error(err), zap.String("reference", reference))
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
