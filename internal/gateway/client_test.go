package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/config"
)

func testClient(baseURL string) *Client {
	return NewClient(config.GatewayConfig{
		BaseURL:     baseURL,
		MerchantKey: "mk_test",
		CallbackURL: "https://shop.test/webhooks/payment",
		Timeout:     5 * time.Second,
	}, zap.NewNop())
}

func TestInitializeSuccess(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/payments/initialize", r.URL.Path)
		assert.Equal(t, "Bearer mk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]string{
			"responsecode":    "0",
			"referenceNumber": captured["referenceNumber"].(string),
			"sessionId":       "sess-42",
			"paymentUrl":      "https://provider.test/pay/sess-42",
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	result, err := client.Initialize(context.Background(), InitializeParams{
		Reference:     "PAY-1700000000000-123456",
		Amount:        decimal.NewFromInt(7500),
		Currency:      "XOF",
		CustomerPhone: "+22997000001",
		ReturnContext: "order_number=ORD-300826-0001",
	})
	require.NoError(t, err)
	assert.Equal(t, "PAY-1700000000000-123456", result.Reference)
	assert.Equal(t, "sess-42", result.SessionID)
	assert.Equal(t, "https://provider.test/pay/sess-42", result.PaymentURL)

	assert.Equal(t, "7500.00", captured["amount"])
	assert.Equal(t, "https://shop.test/webhooks/payment", captured["returnUrl"])
	assert.Equal(t, "order_number=ORD-300826-0001", captured["returnContext"])
}

func TestInitializeProviderDecline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"responsecode":    "05",
			"responsemessage": "merchant not active",
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Initialize(context.Background(), InitializeParams{
		Reference: "PAY-1-000001",
		Amount:    decimal.NewFromInt(100),
		Currency:  "XOF",
	})
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "initialize", gwErr.Op)
	assert.Equal(t, "05", gwErr.Code)
	assert.Contains(t, gwErr.Error(), "merchant not active")
}

func TestInitializeNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream timeout", http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Initialize(context.Background(), InitializeParams{
		Reference: "PAY-1-000001",
		Amount:    decimal.NewFromInt(100),
		Currency:  "XOF",
	})
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusBadGateway, gwErr.StatusCode)
}

func TestInitializeUnconfigured(t *testing.T) {
	client := NewClient(config.GatewayConfig{}, zap.NewNop())
	_, err := client.Initialize(context.Background(), InitializeParams{
		Amount:   decimal.NewFromInt(100),
		Currency: "XOF",
	})
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
}

func TestCheckStatusSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/payments/PAY-1-000001/status", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"responsecode":  "0",
			"transactionid": "TXN-9",
			"amount":        "7500.00",
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	outcome, err := client.CheckStatus(context.Background(), "PAY-1-000001")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "TXN-9", outcome.TransactionID)
	assert.True(t, outcome.Amount.Equal(decimal.NewFromInt(7500)))
	assert.NotEmpty(t, outcome.Raw)
}

func TestCheckStatusFailureCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"responsecode":    "91",
			"responsemessage": "insufficient funds",
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	outcome, err := client.CheckStatus(context.Background(), "PAY-1-000001")
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, "91", outcome.ResponseCode)
}

func TestCheckStatusNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.CheckStatus(context.Background(), "PAY-unknown")
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusNotFound, gwErr.StatusCode)
}

func TestGenerateReferenceFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^SPAY-\d{13}-\d{6}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := GenerateReference("SPAY")
		assert.Regexp(t, pattern, ref)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}
