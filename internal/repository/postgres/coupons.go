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

type couponRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCouponRepository creates a new coupon repository
func NewCouponRepository(db *sql.DB, logger *zap.Logger) *couponRepository {
	return &couponRepository{
		db:     db,
		logger: logger,
	}
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `
		SELECT id, code, discount, used_count, is_active, created_at
		FROM coupons
		WHERE code = $1
	`

	var coupon domain.Coupon
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.Discount,
		&coupon.UsedCount,
		&coupon.IsActive,
		&coupon.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "coupon", ID: code}
	}
	if err != nil {
		r.logger.Error("Failed to get coupon by code", zap.Error(err))
		return nil, err
	}

	return &coupon, nil
}

func (r *couponRepository) IncrementUsage(ctx context.Context, code string) error {
	query := `
		UPDATE coupons
		SET used_count = used_count + 1
		WHERE code = $1
	`

	_, err := r.db.ExecContext(ctx, query, code)
	if err != nil {
		r.logger.Error("Failed to increment coupon usage", zap.Error(err), zap.String("code", code))
		return err
	}

	return nil
}

func (r *couponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	query := `
		INSERT INTO coupons (id, code, discount, used_count, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	if coupon.CreatedAt.IsZero() {
		coupon.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Discount,
		coupon.UsedCount,
		coupon.IsActive,
		coupon.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create coupon", zap.Error(err))
		return err
	}

	return nil
}
