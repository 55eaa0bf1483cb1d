package postgres

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

type stockRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *sql.DB, logger *zap.Logger) *stockRepository {
	return &stockRepository{
		db:     db,
		logger: logger,
	}
}

func (r *stockRepository) Decrement(ctx context.Context, productID uuid.UUID, qty int, reference, actor string) error {
	return r.move(ctx, productID, -qty, domain.MovementTypeSale, reference, nil, actor)
}

func (r *stockRepository) Restore(ctx context.Context, productID uuid.UUID, qty int, reference, reason, actor string) error {
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	return r.move(ctx, productID, qty, domain.MovementTypeReturn, reference, reasonPtr, actor)
}

// move applies a signed stock delta and appends the ledger row in one
// transaction. The product row lock is taken first so concurrent movements
// serialize before the (product, reference, type) insert runs; the stock
// update is gated on that insert actually landing, so a replayed movement
// is a no-op regardless of how the deliveries interleave.
func (r *stockRepository) move(ctx context.Context, productID uuid.UUID, delta int, movementType domain.MovementType, reference string, reason *string, actor string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var currentStock int
	err = tx.QueryRowContext(ctx,
		`SELECT stock FROM products WHERE id = $1 FOR UPDATE`,
		productID).Scan(&currentStock)
	if err == sql.ErrNoRows {
		return &errors.ErrNotFound{Resource: "product", ID: productID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to lock product for stock movement", zap.Error(err))
		return err
	}

	newStock := currentStock + delta

	res, err := tx.ExecContext(ctx, `
		INSERT INTO stock_movements (
			id, product_id, delta, previous_stock, new_stock, type, reference, reason, actor, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (product_id, reference, type) DO NOTHING
	`, uuid.New(), productID, delta, currentStock, newStock, movementType, reference, reason, actor)
	if err != nil {
		r.logger.Error("Failed to append stock movement", zap.Error(err))
		return err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		r.logger.Info("Stock movement already applied, skipping",
			zap.String("product_id", productID.String()),
			zap.String("reference", reference),
			zap.String("type", string(movementType)),
		)
		return tx.Commit()
	}

	if newStock < 0 {
		return &errors.ErrInsufficientStock{
			ProductID: productID,
			Requested: -delta,
			Available: currentStock,
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE products SET stock = $2, updated_at = NOW() WHERE id = $1`,
		productID, newStock)
	if err != nil {
		r.logger.Error("Failed to update product stock", zap.Error(err))
		return err
	}

	return tx.Commit()
}

func (r *stockRepository) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*domain.StockMovement, error) {
	query := `
		SELECT id, product_id, delta, previous_stock, new_stock, type, reference, reason, actor, created_at
		FROM stock_movements
		WHERE 1=1
	`
	args := []interface{}{}
	arg := 1

	if filter.From != nil {
		query += ` AND created_at >= $` + strconv.Itoa(arg)
		args = append(args, *filter.From)
		arg++
	}
	if filter.To != nil {
		query += ` AND created_at <= $` + strconv.Itoa(arg)
		args = append(args, *filter.To)
		arg++
	}
	if filter.Type != nil {
		query += ` AND type = $` + strconv.Itoa(arg)
		args = append(args, *filter.Type)
		arg++
	}
	if filter.ProductID != nil {
		query += ` AND product_id = $` + strconv.Itoa(arg)
		args = append(args, *filter.ProductID)
		arg++
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list stock movements", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectMovements(rows)
}

func (r *stockRepository) GetByReference(ctx context.Context, reference string) ([]*domain.StockMovement, error) {
	query := `
		SELECT id, product_id, delta, previous_stock, new_stock, type, reference, reason, actor, created_at
		FROM stock_movements
		WHERE reference = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, reference)
	if err != nil {
		r.logger.Error("Failed to get stock movements by reference", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectMovements(rows)
}

func collectMovements(rows *sql.Rows) ([]*domain.StockMovement, error) {
	var movements []*domain.StockMovement
	for rows.Next() {
		var m domain.StockMovement
		var reason sql.NullString

		err := rows.Scan(
			&m.ID,
			&m.ProductID,
			&m.Delta,
			&m.PreviousStock,
			&m.NewStock,
			&m.Type,
			&m.Reference,
			&reason,
			&m.Actor,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if reason.Valid {
			m.Reason = &reason.String
		}
		movements = append(movements, &m)
	}
	return movements, rows.Err()
}

