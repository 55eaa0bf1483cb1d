package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/gateway"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

func successCallback(reference string) (Callback, []byte) {
	cb := Callback{
		ReferenceNumber: reference,
		ResponseCode:    "0",
		Amount:          "5500.00",
		TransactionID:   "TXN-123",
		TransactionDT:   "2026-08-30T10:00:00Z",
	}
	raw, _ := json.Marshal(cb)
	return cb, raw
}

func failureCallback(reference string) (Callback, []byte) {
	cb := Callback{
		ReferenceNumber: reference,
		ResponseCode:    "91",
		Amount:          "5500.00",
		TransactionDT:   "2026-08-30T10:00:00Z",
	}
	raw, _ := json.Marshal(cb)
	return cb, raw
}

func TestReconcileSuccessSettlesOrder(t *testing.T) {
	env := newTestEnv(t)
	order, _ := env.createOrder(t)
	reference := env.startPayment(t, order)

	cb, raw := successCallback(reference)
	result, err := env.reconciler.ProcessCallback(context.Background(), cb, raw)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, result.PaymentStatus)
	assert.False(t, result.Replay)
	assert.False(t, result.Anomaly)

	stored, err := env.repos.Order.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, stored.Status)
	assert.Equal(t, domain.PaymentStatusCompleted, stored.PaymentStatus)

	invoice, err := env.repos.Invoice.GetByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, invoice.Status)
	require.NotNil(t, invoice.PaidDate)

	payment, err := env.repos.Payment.GetByReference(context.Background(), reference)
	require.NoError(t, err)
	assert.True(t, payment.WebhookReceived)
	require.NotNil(t, payment.TransactionID)
	assert.Equal(t, "TXN-123", *payment.TransactionID)
}

func TestReconcileFailureRestoresStockOnce(t *testing.T) {
	env := newTestEnv(t)
	order, _ := env.createOrder(t)
	reference := env.startPayment(t, order)

	cb, raw := failureCallback(reference)
	result, err := env.reconciler.ProcessCallback(context.Background(), cb, raw)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, result.PaymentStatus)

	stored, err := env.repos.Order.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, stored.Status, "order status must stay PENDING on payment failure")
	assert.Equal(t, domain.PaymentStatusFailed, stored.PaymentStatus)

	// Ledger nets to zero for the order's reference
	assert.Equal(t, 0, env.movementSum(t, order.OrderNumber))

	// A duplicate failure webhook restores nothing twice
	result, err = env.reconciler.ProcessCallback(context.Background(), cb, raw)
	require.NoError(t, err)
	assert.True(t, result.Replay)
	assert.Equal(t, 0, env.movementSum(t, order.OrderNumber))

	a, err := env.repos.Product.GetByID(context.Background(), env.productA.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, a.Stock)
}

func TestReconcileReplayIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	order, _ := env.createOrder(t)
	reference := env.startPayment(t, order)

	cb, raw := successCallback(reference)
	for i := 0; i < 3; i++ {
		result, err := env.reconciler.ProcessCallback(context.Background(), cb, raw)
		require.NoError(t, err, "replay %d must still succeed", i)
		assert.Equal(t, domain.PaymentStatusCompleted, result.PaymentStatus)
		if i > 0 {
			assert.True(t, result.Replay)
		}
	}

	stored, err := env.repos.Order.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, stored.Status)
}

func TestReconcileAnomalySuccessWins(t *testing.T) {
	env := newTestEnv(t)
	order, _ := env.createOrder(t)
	reference := env.startPayment(t, order)

	cb, raw := successCallback(reference)
	_, err := env.reconciler.ProcessCallback(context.Background(), cb, raw)
	require.NoError(t, err)

	// A late failure notice must never overwrite COMPLETED
	failCb, failRaw := failureCallback(reference)
	result, err := env.reconciler.ProcessCallback(context.Background(), failCb, failRaw)
	require.NoError(t, err, "anomaly still answers success to stop provider retries")
	assert.True(t, result.Anomaly)
	assert.Equal(t, domain.PaymentStatusCompleted, result.PaymentStatus)

	payment, err := env.repos.Payment.GetByReference(context.Background(), reference)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, payment.Status)
}

func TestReconcileUnknownReference(t *testing.T) {
	env := newTestEnv(t)

	cb, raw := successCallback("PAY-000-000000")
	_, err := env.reconciler.ProcessCallback(context.Background(), cb, raw)
	var notFound *errors.ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestReconcileSignatureRejected(t *testing.T) {
	env := newTestEnv(t)
	order, _ := env.createOrder(t)
	reference := env.startPayment(t, order)

	secured := NewReconcileService(env.repos, env.ledger, env.gw, "topsecret", zap.NewNop())

	cb, raw := successCallback(reference)
	cb.HashCode = "deadbeef"
	_, err := secured.ProcessCallback(context.Background(), cb, raw)
	var sigErr *errors.ErrSignature
	require.ErrorAs(t, err, &sigErr)

	// Rejected webhook changed nothing
	payment, err := env.repos.Payment.GetByReference(context.Background(), reference)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
}

func TestReconcileSignatureAccepted(t *testing.T) {
	env := newTestEnv(t)
	order, _ := env.createOrder(t)
	reference := env.startPayment(t, order)

	secured := NewReconcileService(env.repos, env.ledger, env.gw, "topsecret", zap.NewNop())

	cb := Callback{
		ReferenceNumber: reference,
		ResponseCode:    "0",
		Amount:          "5500.00",
		TransactionDT:   "2026-08-30T10:00:00Z",
	}
	fields := map[string]string{
		"referenceNumber": cb.ReferenceNumber,
		"responsecode":    cb.ResponseCode,
		"amount":          cb.Amount,
		"transactiondt":   cb.TransactionDT,
	}
	cb.HashCode = gateway.ComputeSignature("topsecret", fields)
	raw, err := json.Marshal(map[string]string{
		"referenceNumber": cb.ReferenceNumber,
		"responsecode":    cb.ResponseCode,
		"amount":          cb.Amount,
		"transactiondt":   cb.TransactionDT,
		"hashcode":        cb.HashCode,
	})
	require.NoError(t, err)

	result, err := secured.ProcessCallback(context.Background(), cb, raw)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, result.PaymentStatus)
}

func TestCheckAndReconcileTerminalReadsStorage(t *testing.T) {
	env := newTestEnv(t)
	order, _ := env.createOrder(t)
	reference := env.startPayment(t, order)

	cb, raw := successCallback(reference)
	_, err := env.reconciler.ProcessCallback(context.Background(), cb, raw)
	require.NoError(t, err)

	// Provider says FAILED; storage is already terminal, poll must not ask
	env.gw.outcome = &gateway.Outcome{Reference: reference, ResponseCode: "91"}
	result, err := env.reconciler.CheckAndReconcile(context.Background(), reference)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, result.PaymentStatus)
}

func TestCheckAndReconcilePendingPollsProvider(t *testing.T) {
	env := newTestEnv(t)
	order, _ := env.createOrder(t)
	reference := env.startPayment(t, order)

	env.gw.outcome = &gateway.Outcome{
		Reference:     reference,
		Success:       true,
		ResponseCode:  "0",
		TransactionID: "TXN-POLL",
		Raw:           []byte(`{"responsecode":"0"}`),
	}

	result, err := env.reconciler.CheckAndReconcile(context.Background(), reference)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, result.PaymentStatus)

	// Webhook and poll converge: a later webhook is a replay
	cb, raw := successCallback(reference)
	replay, err := env.reconciler.ProcessCallback(context.Background(), cb, raw)
	require.NoError(t, err)
	assert.True(t, replay.Replay)

	stored, err := env.repos.Order.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, stored.Status)
}

func TestReconcileStandalonePayment(t *testing.T) {
	env := newTestEnv(t)

	req := StandalonePaymentRequest{
		Amount:   env.productA.Price,
		Customer: CustomerInfo{FirstName: "Noel", Phone: "+22997000002"},
		Purpose:  "deposit",
	}
	payment, _, err := env.payments.StartStandalone(context.Background(), req)
	require.NoError(t, err)

	cb, raw := successCallback(payment.Reference)
	result, err := env.reconciler.ProcessCallback(context.Background(), cb, raw)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentKindStandalone, result.Kind)
	assert.Equal(t, domain.PaymentStatusCompleted, result.PaymentStatus)

	stored, err := env.repos.StandalonePayment.GetByReference(context.Background(), payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, stored.Status)
}

func TestReconcileInvoicePaymentMarksInvoicePaid(t *testing.T) {
	env := newTestEnv(t)

	invoice, err := env.invoices.IssueStandalone(context.Background(), StandaloneInvoiceRequest{
		Amount:   env.productB.Price,
		Customer: CustomerInfo{FirstName: "Chantal", LastName: "Hounsou", Phone: "+22997000003"},
	})
	require.NoError(t, err)

	payment, _, err := env.payments.StartForInvoice(context.Background(), invoice.ID, "card")
	require.NoError(t, err)

	cb, raw := successCallback(payment.Reference)
	result, err := env.reconciler.ProcessCallback(context.Background(), cb, raw)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentKindInvoice, result.Kind)

	stored, err := env.repos.Invoice.GetByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, stored.Status)
}
