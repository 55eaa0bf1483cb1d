package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/api/middleware"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/service"
)

// CheckoutResponse represents the checkout response
type CheckoutResponse struct {
	Order        OrderResponse `json:"order"`
	PaymentURL   string        `json:"payment_url,omitempty"`
	PaymentError string        `json:"payment_error,omitempty"`
}

// HandleCheckout handles POST /v1/checkout
func HandleCheckout(repos *repository.Repositories, svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Replay of a previously seen Idempotency-Key returns the order
		// created back then, without touching stock or payments again
		_, _, existingOrderID, isExisting := middleware.GetIdempotencyInfo(c)
		if isExisting {
			orderID, err := uuid.Parse(existingOrderID)
			if err != nil {
				logger.Error("Invalid existing order ID from idempotency", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			order, items, err := svcs.Orders.GetByID(c.Request.Context(), orderID)
			if err != nil {
				respondError(c, logger, err)
				return
			}
			c.JSON(http.StatusOK, CheckoutResponse{Order: buildOrderResponse(order, items)})
			return
		}

		var req service.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		order, items, err := svcs.Orders.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		if key, requestHash, _, _ := middleware.GetIdempotencyInfo(c); key != "" {
			idempKey := &domain.IdempotencyKey{
				Key:         key,
				OrderID:     order.ID,
				RequestHash: requestHash,
			}
			if err := repos.IdempotencyKey.Create(c.Request.Context(), idempKey); err != nil {
				logger.Error("Failed to store idempotency key", zap.Error(err))
			}
		}

		resp := CheckoutResponse{Order: buildOrderResponse(order, items)}

		// A gateway failure here never fails the checkout; the order is
		// created and stays payable through /v1/payments/initiate
		if req.PayNow {
			_, paymentURL, err := svcs.Payments.StartPayment(c.Request.Context(), order.ID, req.Channel)
			if err != nil {
				logger.Error("Payment initiation failed during checkout",
					zap.String("order_number", order.OrderNumber), zap.Error(err))
				resp.PaymentError = "payment initiation failed, retry via /v1/payments/initiate"
			} else {
				resp.PaymentURL = paymentURL
			}
		}

		c.JSON(http.StatusCreated, resp)
	}
}
