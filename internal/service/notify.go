package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const notifyTimeout = 10 * time.Second

// Notifier is the message-composition/delivery subsystem seen from the
// settlement core: a fire-and-forget capability. How delivery happens
// (SMS, WhatsApp, push) is not this package's concern.
type Notifier interface {
	Notify(ctx context.Context, event string, orderID uuid.UUID, payload map[string]interface{}) error
}

// DocumentRenderer is the PDF/document subsystem seen from the core
type DocumentRenderer interface {
	RenderInvoice(ctx context.Context, invoiceID uuid.UUID) error
}

// WebhookNotifier posts settlement events to a configured internal URL.
// It is only ever called from the outbox dispatcher, never from a
// request path.
type WebhookNotifier struct {
	targetURL  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebhookNotifier creates a notifier that POSTs to targetURL.
// An empty URL produces a notifier that drops everything.
func NewWebhookNotifier(targetURL string, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		targetURL:  targetURL,
		httpClient: &http.Client{Timeout: notifyTimeout},
		logger:     logger,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, event string, orderID uuid.UUID, payload map[string]interface{}) error {
	if n.targetURL == "" {
		n.logger.Debug("Notify: no target URL configured, dropping event", zap.String("event", event))
		return nil
	}

	body := map[string]interface{}{
		"event":    event,
		"order_id": orderID.String(),
	}
	for k, v := range payload {
		body[k] = v
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.targetURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify target returned status %d", resp.StatusCode)
	}

	n.logger.Info("Notification sent", zap.String("event", event), zap.String("order_id", orderID.String()))
	return nil
}

// LogRenderer is a stand-in renderer that only records the request.
// The real PDF subsystem lives outside the settlement core.
type LogRenderer struct {
	logger *zap.Logger
}

// NewLogRenderer creates a renderer that logs render requests
func NewLogRenderer(logger *zap.Logger) *LogRenderer {
	return &LogRenderer{logger: logger}
}

func (r *LogRenderer) RenderInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	r.logger.Info("Invoice render requested", zap.String("invoice_id", invoiceID.String()))
	return nil
}
