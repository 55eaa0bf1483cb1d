package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/gateway"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository/memory"
)

// fakeGateway satisfies GatewayClient without any network traffic
type fakeGateway struct {
	initErr    error
	statusErr  error
	outcome    *gateway.Outcome
	initCount  int
	lastParams gateway.InitializeParams
}

func (f *fakeGateway) Initialize(ctx context.Context, params gateway.InitializeParams) (*gateway.InitializeResult, error) {
	f.initCount++
	f.lastParams = params
	if f.initErr != nil {
		return nil, f.initErr
	}
	ref := params.Reference
	if ref == "" {
		ref = gateway.GenerateReference("PAY")
	}
	return &gateway.InitializeResult{
		Reference:  ref,
		SessionID:  "sess-1",
		PaymentURL: "https://pay.test/" + ref,
	}, nil
}

func (f *fakeGateway) CheckStatus(ctx context.Context, reference string) (*gateway.Outcome, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if f.outcome != nil {
		return f.outcome, nil
	}
	return &gateway.Outcome{Reference: reference}, nil
}

type testEnv struct {
	repos      *repository.Repositories
	gw         *fakeGateway
	orders     *orderService
	invoices   *invoiceService
	payments   *paymentService
	reconciler *reconcileService
	ledger     *InventoryLedger

	productA *domain.Product
	productB *domain.Product
	method   *domain.ShippingMethod
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repos := memory.NewRepositories()
	logger := zap.NewNop()
	refgen := NewReferenceGenerator(repos.Sequence)
	ledger := NewInventoryLedger(repos.Stock, logger)
	invoices := NewInvoiceService(repos, refgen, logger)
	gw := &fakeGateway{}

	env := &testEnv{
		repos:      repos,
		gw:         gw,
		orders:     NewOrderService(repos, ledger, refgen, invoices, logger),
		invoices:   invoices,
		payments:   NewPaymentService(repos, gw, "XOF", logger),
		reconciler: NewReconcileService(repos, ledger, gw, "", logger),
		ledger:     ledger,
	}

	env.productA = &domain.Product{
		Name:      "Woven basket",
		Price:     decimal.NewFromInt(1000),
		Stock:     10,
		Published: true,
	}
	require.NoError(t, repos.Product.Create(context.Background(), env.productA))

	env.productB = &domain.Product{
		Name:      "Shea butter jar",
		Price:     decimal.NewFromInt(2000),
		Stock:     5,
		Published: true,
	}
	require.NoError(t, repos.Product.Create(context.Background(), env.productB))

	env.method = &domain.ShippingMethod{
		Name:     "Cotonou delivery",
		Cost:     decimal.NewFromInt(500),
		IsActive: true,
	}
	require.NoError(t, repos.ShippingMethod.Create(context.Background(), env.method))

	return env
}

// checkoutRequest builds the standard two-line cart: 3 x 1000 + 1 x 2000
// with 500 shipping, totalling 5500
func (e *testEnv) checkoutRequest() CheckoutRequest {
	return CheckoutRequest{
		Items: []CartItem{
			{ProductID: e.productA.ID.String(), Quantity: 3},
			{ProductID: e.productB.ID.String(), Quantity: 1},
		},
		Customer: CustomerInfo{
			FirstName: "Awa",
			LastName:  "Sagbo",
			Phone:     "+22997000001",
			Email:     "awa@example.com",
		},
		Shipping: ShippingInfo{
			MethodID: e.method.ID.String(),
			Street:   "Rue 12.080",
			City:     "Cotonou",
			Country:  "BJ",
		},
		PaymentMethod: "mobile_money",
	}
}

// createOrder runs checkout and returns the order with its items
func (e *testEnv) createOrder(t *testing.T) (*domain.Order, []*domain.OrderItem) {
	t.Helper()
	order, items, err := e.orders.Create(context.Background(), e.checkoutRequest())
	require.NoError(t, err)
	return order, items
}

// startPayment initiates payment for the order and returns the reference
func (e *testEnv) startPayment(t *testing.T, order *domain.Order) string {
	t.Helper()
	payment, _, err := e.payments.StartPayment(context.Background(), order.ID, "mtn")
	require.NoError(t, err)
	return payment.Reference
}

// movementSum nets all ledger deltas recorded under a reference
func (e *testEnv) movementSum(t *testing.T, reference string) int {
	t.Helper()
	movements, err := e.repos.Stock.GetByReference(context.Background(), reference)
	require.NoError(t, err)
	sum := 0
	for _, m := range movements {
		sum += m.Delta
	}
	return sum
}
