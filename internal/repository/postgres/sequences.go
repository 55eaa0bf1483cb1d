package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

type sequenceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *sql.DB, logger *zap.Logger) *sequenceRepository {
	return &sequenceRepository{
		db:     db,
		logger: logger,
	}
}

// Next atomically increments and returns the counter for (namespace, date).
// The upsert makes this safe under concurrent order creation; no find-max
// scan is ever performed.
func (r *sequenceRepository) Next(ctx context.Context, namespace string, date time.Time) (int, error) {
	query := `
		INSERT INTO sequences (namespace, seq_date, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (namespace, seq_date)
		DO UPDATE SET value = sequences.value + 1
		RETURNING value
	`

	var value int
	day := date.Format("2006-01-02")
	err := r.db.QueryRowContext(ctx, query, namespace, day).Scan(&value)
	if err != nil {
		r.logger.Error("Failed to get next sequence value", zap.Error(err), zap.String("namespace", namespace))
		return 0, err
	}

	return value, nil
}
