// Package gateway wraps the external mobile-money/card payment provider.
// The client is pure request/response: it persists nothing and is safe to
// share across components. It is constructed once in main and injected.
package gateway

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/config"
)

// Error is a typed provider-level failure: HTTP transport errors,
// non-2xx responses and malformed bodies all surface as *Error so
// callers can treat payment initiation as independently retryable.
type Error struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("gateway %s: provider code %s: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// InitializeParams describes a payment to initialize with the provider
type InitializeParams struct {
	Reference     string // optional; generated when empty
	Amount        decimal.Decimal
	Currency      string
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Channel       string
	Description   string
	ReturnContext string // opaque key=value pairs echoed back in the webhook
}

// InitializeResult carries the redirect target for the customer
type InitializeResult struct {
	Reference  string
	SessionID  string
	PaymentURL string
}

// Outcome is the provider's view of a payment, from a status poll
type Outcome struct {
	Reference     string
	Success       bool
	ResponseCode  string
	TransactionID string
	Amount        decimal.Decimal
	Raw           []byte
}

// Client calls the payment provider API with the merchant key
type Client struct {
	baseURL     string
	merchantKey string
	callbackURL string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a payment gateway HTTP client
func NewClient(cfg config.GatewayConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		merchantKey: cfg.MerchantKey,
		callbackURL: cfg.CallbackURL,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

type initializeRequest struct {
	ReferenceNumber string `json:"referenceNumber"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	CustomerName    string `json:"customerName,omitempty"`
	CustomerPhone   string `json:"customerPhone,omitempty"`
	CustomerEmail   string `json:"customerEmail,omitempty"`
	Channel         string `json:"channel,omitempty"`
	Description     string `json:"description,omitempty"`
	ReturnURL       string `json:"returnUrl,omitempty"`
	ReturnContext   string `json:"returnContext,omitempty"`
}

type initializeResponse struct {
	ResponseCode    string `json:"responsecode"`
	ResponseMessage string `json:"responsemessage"`
	ReferenceNumber string `json:"referenceNumber"`
	SessionID       string `json:"sessionId"`
	PaymentURL      string `json:"paymentUrl"`
}

// Initialize registers the payment with the provider and returns the
// redirect URL. A reference is generated when the caller supplies none.
func (c *Client) Initialize(ctx context.Context, params InitializeParams) (*InitializeResult, error) {
	if c.baseURL == "" || c.merchantKey == "" {
		return nil, &Error{Op: "initialize", Message: "gateway client not configured: base URL and merchant key required"}
	}

	reference := params.Reference
	if reference == "" {
		reference = GenerateReference("PAY")
	}

	reqBody := initializeRequest{
		ReferenceNumber: reference,
		Amount:          params.Amount.StringFixed(2),
		Currency:        params.Currency,
		CustomerName:    params.CustomerName,
		CustomerPhone:   params.CustomerPhone,
		CustomerEmail:   params.CustomerEmail,
		Channel:         params.Channel,
		Description:     params.Description,
		ReturnURL:       c.callbackURL,
		ReturnContext:   params.ReturnContext,
	}

	var resp initializeResponse
	if err := c.post(ctx, "initialize", "/api/v1/payments/initialize", reqBody, &resp); err != nil {
		return nil, err
	}

	if resp.ResponseCode != "0" {
		return nil, &Error{
			Op:      "initialize",
			Code:    resp.ResponseCode,
			Message: resp.ResponseMessage,
		}
	}
	if resp.PaymentURL == "" {
		return nil, &Error{Op: "initialize", Message: "provider returned no payment URL"}
	}

	if resp.ReferenceNumber != "" {
		reference = resp.ReferenceNumber
	}

	return &InitializeResult{
		Reference:  reference,
		SessionID:  resp.SessionID,
		PaymentURL: resp.PaymentURL,
	}, nil
}

type statusResponse struct {
	ResponseCode    string `json:"responsecode"`
	ResponseMessage string `json:"responsemessage"`
	ReferenceNumber string `json:"referenceNumber"`
	TransactionID   string `json:"transactionid"`
	Amount          string `json:"amount"`
}

// CheckStatus polls the provider for the current state of a reference.
// It is a pure read, safe to call repeatedly.
func (c *Client) CheckStatus(ctx context.Context, reference string) (*Outcome, error) {
	if c.baseURL == "" || c.merchantKey == "" {
		return nil, &Error{Op: "status", Message: "gateway client not configured: base URL and merchant key required"}
	}

	url := fmt.Sprintf("%s/api/v1/payments/%s/status", c.baseURL, reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Op: "status", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.merchantKey)
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: "status", Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Error{Op: "status", Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.logger.Warn("Gateway status check returned non-2xx",
			zap.Int("status", httpResp.StatusCode),
			zap.String("reference", reference),
		)
		return nil, &Error{Op: "status", StatusCode: httpResp.StatusCode, Message: string(body)}
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Op: "status", Err: fmt.Errorf("malformed response: %w", err)}
	}

	amount := decimal.Zero
	if resp.Amount != "" {
		if parsed, err := decimal.NewFromString(resp.Amount); err == nil {
			amount = parsed
		}
	}

	return &Outcome{
		Reference:     reference,
		Success:       resp.ResponseCode == "0",
		ResponseCode:  resp.ResponseCode,
		TransactionID: resp.TransactionID,
		Amount:        amount,
		Raw:           body,
	}, nil
}

func (c *Client) post(ctx context.Context, op, path string, reqBody, out interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return &Error{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.merchantKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		c.logger.Warn("Gateway request returned non-2xx",
			zap.String("op", op),
			zap.Int("status", httpResp.StatusCode),
		)
		return &Error{Op: op, StatusCode: httpResp.StatusCode, Message: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
	}

	return nil
}

// GenerateReference builds an application-generated payment reference:
// {PREFIX}-{epochMillis}-{random6}.
func GenerateReference(prefix string) string {
	const digits = "0123456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is unrecoverable for reference generation
		panic(err)
	}
	for i := range buf {
		buf[i] = digits[int(buf[i])%len(digits)]
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), buf)
}
