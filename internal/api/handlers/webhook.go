package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/service"
)

// HandlePaymentWebhook handles POST /webhooks/payment.
// Response contract: 200 for every recognized reference, replays and
// anomalies included, so the provider stops retrying; 403 on a bad
// signature; 404 on an unknown reference; 5xx tells the provider to retry.
func HandlePaymentWebhook(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawBody, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Error("Failed to read webhook body", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(rawBody))

		var cb service.Callback
		if err := json.Unmarshal(rawBody, &cb); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed webhook payload"})
			return
		}
		if cb.ReferenceNumber == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing referenceNumber"})
			return
		}

		logger.Info("Payment webhook received",
			zap.String("reference", cb.ReferenceNumber),
			zap.String("responsecode", cb.ResponseCode),
		)

		result, err := svcs.Reconciler.ProcessCallback(c.Request.Context(), cb, rawBody)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"paymentStatus": result.PaymentStatus,
		})
	}
}
