package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

func seedProduct(t *testing.T, products *ProductRepository, stock int) *domain.Product {
	t.Helper()
	product := &domain.Product{
		Name:      "Woven basket",
		Price:     decimal.NewFromInt(1000),
		Stock:     stock,
		Published: true,
	}
	require.NoError(t, products.Create(context.Background(), product))
	return product
}

func TestStockDecrementNeverGoesNegative(t *testing.T) {
	products := NewProductRepository()
	stock := NewStockRepository(products)
	product := seedProduct(t, products, 1)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ref := "ORD-300826-000" + string(rune('1'+i))
			results[i] = stock.Decrement(context.Background(), product.ID, 1, ref, "checkout")
		}(i)
	}
	wg.Wait()

	var stockErrs int
	for _, err := range results {
		if err != nil {
			var insufficient *errors.ErrInsufficientStock
			require.ErrorAs(t, err, &insufficient)
			stockErrs++
		}
	}
	assert.Equal(t, 1, stockErrs, "exactly one of two concurrent decrements must lose")

	stored, err := products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock)
}

func TestStockDuplicateMovementIsNoOp(t *testing.T) {
	products := NewProductRepository()
	stock := NewStockRepository(products)
	product := seedProduct(t, products, 10)

	require.NoError(t, stock.Decrement(context.Background(), product.ID, 3, "ORD-300826-0001", "checkout"))
	require.NoError(t, stock.Decrement(context.Background(), product.ID, 3, "ORD-300826-0001", "checkout"))

	stored, err := products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.Stock)

	movements, err := stock.GetByReference(context.Background(), "ORD-300826-0001")
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestStockRestoreIdempotentPerReference(t *testing.T) {
	products := NewProductRepository()
	stock := NewStockRepository(products)
	product := seedProduct(t, products, 10)

	require.NoError(t, stock.Decrement(context.Background(), product.ID, 4, "ORD-300826-0002", "checkout"))
	require.NoError(t, stock.Restore(context.Background(), product.ID, 4, "ORD-300826-0002", "payment failed", "reconciler"))
	// A second compensation for the same reference restores nothing
	require.NoError(t, stock.Restore(context.Background(), product.ID, 4, "ORD-300826-0002", "order cancelled", "admin"))

	stored, err := products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Stock)

	movements, err := stock.GetByReference(context.Background(), "ORD-300826-0002")
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, domain.MovementTypeSale, movements[0].Type)
	assert.Equal(t, domain.MovementTypeReturn, movements[1].Type)
	assert.Equal(t, 6, movements[0].NewStock)
	assert.Equal(t, 10, movements[1].NewStock)
}

func TestStockConcurrentDuplicateRestoreCreditsOnce(t *testing.T) {
	products := NewProductRepository()
	stock := NewStockRepository(products)
	product := seedProduct(t, products, 10)

	require.NoError(t, stock.Decrement(context.Background(), product.ID, 4, "ORD-300826-0004", "checkout"))

	// An admin cancel racing the failure-webhook compensation must credit once
	var wg sync.WaitGroup
	for _, actor := range []string{"admin", "reconciler"} {
		wg.Add(1)
		go func(actor string) {
			defer wg.Done()
			assert.NoError(t, stock.Restore(context.Background(), product.ID, 4, "ORD-300826-0004", "order cancelled", actor))
		}(actor)
	}
	wg.Wait()

	stored, err := products.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Stock)

	movements, err := stock.GetByReference(context.Background(), "ORD-300826-0004")
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

func TestStockMovementRecordsAudit(t *testing.T) {
	products := NewProductRepository()
	stock := NewStockRepository(products)
	product := seedProduct(t, products, 5)

	require.NoError(t, stock.Decrement(context.Background(), product.ID, 2, "ORD-300826-0003", "checkout"))

	movements, err := stock.GetByReference(context.Background(), "ORD-300826-0003")
	require.NoError(t, err)
	require.Len(t, movements, 1)
	m := movements[0]
	assert.Equal(t, -2, m.Delta)
	assert.Equal(t, 5, m.PreviousStock)
	assert.Equal(t, 3, m.NewStock)
	assert.Equal(t, "checkout", m.Actor)
	assert.Nil(t, m.Reason)
}
