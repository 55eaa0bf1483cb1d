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

type shippingMethodRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewShippingMethodRepository creates a new shipping method repository
func NewShippingMethodRepository(db *sql.DB, logger *zap.Logger) *shippingMethodRepository {
	return &shippingMethodRepository{
		db:     db,
		logger: logger,
	}
}

func (r *shippingMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShippingMethod, error) {
	query := `
		SELECT id, name, cost, variable, is_active, created_at
		FROM shipping_methods
		WHERE id = $1
	`

	var method domain.ShippingMethod
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&method.ID,
		&method.Name,
		&method.Cost,
		&method.Variable,
		&method.IsActive,
		&method.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "shipping_method", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get shipping method by ID", zap.Error(err))
		return nil, err
	}

	return &method, nil
}

func (r *shippingMethodRepository) Create(ctx context.Context, method *domain.ShippingMethod) error {
	query := `
		INSERT INTO shipping_methods (id, name, cost, variable, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if method.ID == uuid.Nil {
		method.ID = uuid.New()
	}
	if method.CreatedAt.IsZero() {
		method.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		method.ID,
		method.Name,
		method.Cost,
		method.Variable,
		method.IsActive,
		method.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create shipping method", zap.Error(err))
		return err
	}

	return nil
}
