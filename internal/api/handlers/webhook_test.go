package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/config"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/gateway"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository/memory"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/service"
)

type stubGateway struct{}

func (stubGateway) Initialize(ctx context.Context, params gateway.InitializeParams) (*gateway.InitializeResult, error) {
	return &gateway.InitializeResult{
		Reference:  params.Reference,
		SessionID:  "sess-1",
		PaymentURL: "https://pay.test/" + params.Reference,
	}, nil
}

func (stubGateway) CheckStatus(ctx context.Context, reference string) (*gateway.Outcome, error) {
	return &gateway.Outcome{Reference: reference}, nil
}

type webhookFixture struct {
	router    *gin.Engine
	repos     *repository.Repositories
	svcs      *service.Services
	reference string
	order     *domain.Order
}

func newWebhookFixture(t *testing.T, webhookSecret string) *webhookFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos := memory.NewRepositories()
	logger := zap.NewNop()
	cfg := &config.Config{}
	cfg.Gateway.Currency = "XOF"
	cfg.Gateway.WebhookSecret = webhookSecret
	svcs := service.NewServices(cfg, repos, stubGateway{}, logger)

	product := &domain.Product{
		Name:      "Woven basket",
		Price:     decimal.NewFromInt(1000),
		Stock:     10,
		Published: true,
	}
	require.NoError(t, repos.Product.Create(context.Background(), product))

	method := &domain.ShippingMethod{
		Name:     "Cotonou delivery",
		Cost:     decimal.NewFromInt(500),
		IsActive: true,
	}
	require.NoError(t, repos.ShippingMethod.Create(context.Background(), method))

	order, _, err := svcs.Orders.Create(context.Background(), service.CheckoutRequest{
		Items: []service.CartItem{{ProductID: product.ID.String(), Quantity: 2}},
		Customer: service.CustomerInfo{
			FirstName: "Awa",
			LastName:  "Sagbo",
			Phone:     "+22997000001",
		},
		Shipping: service.ShippingInfo{
			MethodID: method.ID.String(),
			Street:   "Rue 234",
			City:     "Cotonou",
		},
		PaymentMethod: "gateway",
	})
	require.NoError(t, err)

	payment, _, err := svcs.Payments.StartPayment(context.Background(), order.ID, "mtn")
	require.NoError(t, err)

	router := gin.New()
	router.POST("/webhooks/payment", HandlePaymentWebhook(svcs, logger))

	return &webhookFixture{
		router:    router,
		repos:     repos,
		svcs:      svcs,
		reference: payment.Reference,
		order:     order,
	}
}

func (f *webhookFixture) post(t *testing.T, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestWebhookSuccessReturns200(t *testing.T) {
	f := newWebhookFixture(t, "")

	w := f.post(t, map[string]interface{}{
		"referenceNumber": f.reference,
		"responsecode":    "0",
		"amount":          "2500.00",
		"transactionid":   "TXN-1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, string(domain.PaymentStatusCompleted), resp["paymentStatus"])

	order, err := f.repos.Order.GetByID(context.Background(), f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, order.Status)
}

func TestWebhookReplayStillReturns200(t *testing.T) {
	f := newWebhookFixture(t, "")
	body := map[string]interface{}{
		"referenceNumber": f.reference,
		"responsecode":    "0",
	}

	require.Equal(t, http.StatusOK, f.post(t, body).Code)
	w := f.post(t, body)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookUnknownReferenceReturns404(t *testing.T) {
	f := newWebhookFixture(t, "")

	w := f.post(t, map[string]interface{}{
		"referenceNumber": "PAY-0-000000",
		"responsecode":    "0",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookBadSignatureReturns403(t *testing.T) {
	f := newWebhookFixture(t, "topsecret")

	w := f.post(t, map[string]interface{}{
		"referenceNumber": f.reference,
		"responsecode":    "0",
		"hashcode":        "not-the-right-digest",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Rejected webhook must not settle anything
	payment, err := f.repos.Payment.GetByReference(context.Background(), f.reference)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
}

func TestWebhookValidSignatureAccepted(t *testing.T) {
	f := newWebhookFixture(t, "topsecret")

	fields := map[string]string{
		"referenceNumber": f.reference,
		"responsecode":    "0",
		"amount":          "2500.00",
	}
	w := f.post(t, map[string]interface{}{
		"referenceNumber": f.reference,
		"responsecode":    "0",
		"amount":          "2500.00",
		"hashcode":        gateway.ComputeSignature("topsecret", fields),
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookMissingReferenceReturns400(t *testing.T) {
	f := newWebhookFixture(t, "")

	w := f.post(t, map[string]interface{}{"responsecode": "0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
