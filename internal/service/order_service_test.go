package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

func TestOrderCreateTotals(t *testing.T) {
	env := newTestEnv(t)

	order, items := env.createOrder(t)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(5000)), "subtotal = %s", order.Subtotal)
	assert.True(t, order.ShippingCost.Equal(decimal.NewFromInt(500)))
	assert.True(t, order.Discount.Equal(decimal.Zero))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(5500)), "total = %s", order.Total)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, items, 2)

	// Prices come from the catalog snapshot, not the request
	assert.True(t, items[0].UnitPrice.Equal(env.productA.Price))
	assert.True(t, items[0].LineTotal.Equal(decimal.NewFromInt(3000)))
}

func TestOrderCreateInvariantTotal(t *testing.T) {
	env := newTestEnv(t)

	coupon := &domain.Coupon{Code: "WELCOME", Discount: decimal.NewFromInt(700), IsActive: true}
	require.NoError(t, env.repos.Coupon.Create(context.Background(), coupon))

	req := env.checkoutRequest()
	req.CouponCode = "WELCOME"
	order, _, err := env.orders.Create(context.Background(), req)
	require.NoError(t, err)

	expected := order.Subtotal.Sub(order.Discount).Add(order.ShippingCost)
	assert.True(t, order.Total.Equal(expected))
	assert.True(t, order.Discount.Equal(decimal.NewFromInt(700)))

	stored, err := env.repos.Coupon.GetByCode(context.Background(), "WELCOME")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsedCount)
}

func TestOrderCreateDecrementsStock(t *testing.T) {
	env := newTestEnv(t)

	order, _ := env.createOrder(t)

	a, err := env.repos.Product.GetByID(context.Background(), env.productA.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, a.Stock)

	b, err := env.repos.Product.GetByID(context.Background(), env.productB.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, b.Stock)

	assert.Equal(t, -4, env.movementSum(t, order.OrderNumber))
}

func TestOrderCreateInsufficientStockBeforeCommit(t *testing.T) {
	env := newTestEnv(t)

	req := env.checkoutRequest()
	req.Items[0].Quantity = 11 // productA has 10

	_, _, err := env.orders.Create(context.Background(), req)
	var stockErr *errors.ErrInsufficientStock
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, env.productA.ID, stockErr.ProductID)
	assert.Equal(t, 11, stockErr.Requested)
	assert.Equal(t, 10, stockErr.Available)

	// Nothing was persisted and no stock moved
	orders, err := env.repos.Order.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, orders)

	a, err := env.repos.Product.GetByID(context.Background(), env.productA.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, a.Stock)
}

func TestOrderCreateRejectsUnpublishedProduct(t *testing.T) {
	env := newTestEnv(t)

	hidden := &domain.Product{Name: "Draft item", Price: decimal.NewFromInt(100), Stock: 5, Published: false}
	require.NoError(t, env.repos.Product.Create(context.Background(), hidden))

	req := env.checkoutRequest()
	req.Items = []CartItem{{ProductID: hidden.ID.String(), Quantity: 1}}

	_, _, err := env.orders.Create(context.Background(), req)
	var valErr *errors.ErrValidation
	require.ErrorAs(t, err, &valErr)
}

func TestOrderCreateIssuesInvoiceAndOutbox(t *testing.T) {
	env := newTestEnv(t)

	order, _ := env.createOrder(t)

	invoice, err := env.repos.Invoice.GetByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, invoice.Status)
	assert.True(t, invoice.Total.Equal(order.Total))
	assert.Equal(t, "Awa Sagbo", invoice.CustomerName)

	entries, err := env.repos.Outbox.ListPending(context.Background(), 10)
	require.NoError(t, err)

	var events []string
	for _, e := range entries {
		events = append(events, e.Event)
	}
	assert.Contains(t, events, "order.created")
	assert.Contains(t, events, "invoice.issued")
}

func TestOrderCreateVariableShippingCostsZero(t *testing.T) {
	env := newTestEnv(t)

	variable := &domain.ShippingMethod{Name: "Upcountry", Cost: decimal.NewFromInt(2500), Variable: true, IsActive: true}
	require.NoError(t, env.repos.ShippingMethod.Create(context.Background(), variable))

	req := env.checkoutRequest()
	req.Shipping.MethodID = variable.ID.String()

	order, _, err := env.orders.Create(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, order.ShippingCost.Equal(decimal.Zero))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(5000)))
}

func TestUpdateStatusValidTransition(t *testing.T) {
	env := newTestEnv(t)
	order, _ := env.createOrder(t)

	updated, err := env.orders.UpdateStatus(context.Background(), order.ID, domain.OrderStatusProcessing, "tester")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)

	events, err := env.repos.OrderEvent.GetByOrderID(context.Background(), order.ID)
	require.NoError(t, err)

	var found bool
	for _, e := range events {
		if e.EventType == "status_changed" {
			found = true
			assert.Equal(t, "PENDING", e.EventData["from"])
			assert.Equal(t, "PROCESSING", e.EventData["to"])
			assert.Equal(t, "tester", e.EventData["actor"])
		}
	}
	assert.True(t, found, "status_changed audit event missing")
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	env := newTestEnv(t)
	order, _ := env.createOrder(t)

	_, err := env.orders.UpdateStatus(context.Background(), order.ID, domain.OrderStatusDelivered, "tester")
	var transErr *errors.ErrInvalidStateTransition
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, domain.OrderStatusPending, transErr.From)
	assert.Equal(t, domain.OrderStatusDelivered, transErr.To)
}

func TestUpdateStatusNoOpEmitsNothing(t *testing.T) {
	env := newTestEnv(t)
	order, _ := env.createOrder(t)

	before, err := env.repos.Outbox.ListPending(context.Background(), 100)
	require.NoError(t, err)

	updated, err := env.orders.UpdateStatus(context.Background(), order.ID, domain.OrderStatusPending, "tester")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, updated.Status)

	after, err := env.repos.Outbox.ListPending(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, after, len(before), "no-op status update must not enqueue notifications")
}

func TestUpdateStatusCancelRestoresStock(t *testing.T) {
	env := newTestEnv(t)
	order, _ := env.createOrder(t)

	_, err := env.orders.UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled, "tester")
	require.NoError(t, err)

	a, err := env.repos.Product.GetByID(context.Background(), env.productA.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, a.Stock)

	assert.Equal(t, 0, env.movementSum(t, order.OrderNumber))
}
