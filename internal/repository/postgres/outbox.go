package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
)

type outboxRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOutboxRepository creates a new outbox repository
func NewOutboxRepository(db *sql.DB, logger *zap.Logger) *outboxRepository {
	return &outboxRepository{
		db:     db,
		logger: logger,
	}
}

func (r *outboxRepository) Enqueue(ctx context.Context, entry *domain.OutboxEntry) error {
	query := `
		INSERT INTO outbox (
			id, effect_type, event, subject_id, payload, status, attempts, last_error, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}
	if entry.Status == "" {
		entry.Status = domain.OutboxStatusPending
	}

	var payloadJSON []byte
	var err error
	if entry.Payload != nil {
		payloadJSON, err = json.Marshal(entry.Payload)
		if err != nil {
			return err
		}
	}

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.EffectType,
		entry.Event,
		entry.SubjectID,
		payloadJSON,
		entry.Status,
		entry.Attempts,
		entry.LastError,
		entry.CreatedAt,
		entry.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to enqueue outbox entry", zap.Error(err), zap.String("event", entry.Event))
		return err
	}

	return nil
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]*domain.OutboxEntry, error) {
	query := `
		SELECT id, effect_type, event, subject_id, payload, status, attempts, last_error, created_at, updated_at
		FROM outbox
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list pending outbox entries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.OutboxEntry
	for rows.Next() {
		var entry domain.OutboxEntry
		var payloadJSON []byte
		var lastError sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.EffectType,
			&entry.Event,
			&entry.SubjectID,
			&payloadJSON,
			&entry.Status,
			&entry.Attempts,
			&lastError,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if lastError.Valid {
			entry.LastError = &lastError.String
		}
		if len(payloadJSON) > 0 {
			if err := json.Unmarshal(payloadJSON, &entry.Payload); err != nil {
				return nil, err
			}
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

func (r *outboxRepository) MarkDispatched(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE outbox
		SET status = 'DISPATCHED', updated_at = $2
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark outbox entry dispatched", zap.Error(err))
		return err
	}

	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastError string, terminal bool) error {
	status := domain.OutboxStatusPending
	if terminal {
		status = domain.OutboxStatusFailed
	}

	query := `
		UPDATE outbox
		SET status = $2, attempts = $3, last_error = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, attempts, lastError, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark outbox entry failed", zap.Error(err))
		return err
	}

	return nil
}
