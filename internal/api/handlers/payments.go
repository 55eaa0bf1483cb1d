package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/service"
)

// InitiatePaymentRequest re-initiates payment for an existing order
type InitiatePaymentRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	Channel string `json:"channel"`
}

// PaymentResponse represents an initiated payment
type PaymentResponse struct {
	Reference  string               `json:"reference"`
	Amount     string               `json:"amount"`
	Currency   string               `json:"currency"`
	Status     domain.PaymentStatus `json:"status"`
	PaymentURL string               `json:"payment_url"`
}

// HandleInitiatePayment handles POST /v1/payments/initiate
func HandleInitiatePayment(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InitiatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}
		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		payment, paymentURL, err := svcs.Payments.StartPayment(c.Request.Context(), orderID, req.Channel)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, PaymentResponse{
			Reference:  payment.Reference,
			Amount:     payment.Amount.String(),
			Currency:   payment.Currency,
			Status:     payment.Status,
			PaymentURL: paymentURL,
		})
	}
}

// HandleStandalonePayment handles POST /v1/payments/standalone
func HandleStandalonePayment(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.StandalonePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		payment, paymentURL, err := svcs.Payments.StartStandalone(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, PaymentResponse{
			Reference:  payment.Reference,
			Amount:     payment.Amount.String(),
			Currency:   payment.Currency,
			Status:     payment.Status,
			PaymentURL: paymentURL,
		})
	}
}

// InvoicePayRequest selects the channel for settling an invoice directly
type InvoicePayRequest struct {
	Channel string `json:"channel"`
}

// HandleInvoicePay handles POST /v1/invoices/:id/pay
func HandleInvoicePay(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		invoiceID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
			return
		}

		var req InvoicePayRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
				return
			}
		}

		payment, paymentURL, err := svcs.Payments.StartForInvoice(c.Request.Context(), invoiceID, req.Channel)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, PaymentResponse{
			Reference:  payment.Reference,
			Amount:     payment.Amount.String(),
			Currency:   payment.Currency,
			Status:     payment.Status,
			PaymentURL: paymentURL,
		})
	}
}

// HandlePaymentStatus handles GET /v1/payments/:reference/status.
// Terminal states are answered from storage; pending ones trigger a live
// provider poll that reconciles exactly like a webhook.
func HandlePaymentStatus(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reference := c.Param("reference")
		if reference == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing reference"})
			return
		}

		result, err := svcs.Reconciler.CheckAndReconcile(c.Request.Context(), reference)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"reference":      result.Reference,
			"kind":           result.Kind,
			"payment_status": result.PaymentStatus,
			"checked_at":     time.Now().UTC().Format(time.RFC3339),
		})
	}
}
