package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
)

func seedOrder(t *testing.T, orders *OrderRepository, status domain.OrderStatus) *domain.Order {
	t.Helper()
	order := &domain.Order{
		OrderNumber:   "ORD-300826-0001",
		Status:        status,
		PaymentStatus: domain.PaymentStatusPending,
	}
	require.NoError(t, orders.Create(context.Background(), order))
	return order
}

func TestAdvanceStatusIfMatchesCurrent(t *testing.T) {
	orders := NewOrderRepository()
	order := seedOrder(t, orders, domain.OrderStatusPending)

	changed, err := orders.AdvanceStatusIf(context.Background(), order.ID, domain.OrderStatusPending, domain.OrderStatusProcessing)
	require.NoError(t, err)
	assert.True(t, changed)

	stored, err := orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, stored.Status)
}

func TestAdvanceStatusIfStaleFromIsNoOp(t *testing.T) {
	orders := NewOrderRepository()
	order := seedOrder(t, orders, domain.OrderStatusCancelled)

	// The caller validated against PENDING; the row moved on since
	changed, err := orders.AdvanceStatusIf(context.Background(), order.ID, domain.OrderStatusPending, domain.OrderStatusProcessing)
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, stored.Status)
}

func TestAdvanceStatusIfConcurrentTransitionsOneWins(t *testing.T) {
	orders := NewOrderRepository()
	order := seedOrder(t, orders, domain.OrderStatusPending)

	first, err := orders.AdvanceStatusIf(context.Background(), order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled)
	require.NoError(t, err)
	second, err := orders.AdvanceStatusIf(context.Background(), order.ID, domain.OrderStatusPending, domain.OrderStatusProcessing)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second, "a transition validated against a stale status must not apply")

	stored, err := orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, stored.Status)
}
