package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/service"
)

// OrderResponse represents the order response
type OrderResponse struct {
	ID              string                 `json:"id"`
	OrderNumber     string                 `json:"order_number"`
	Status          domain.OrderStatus     `json:"status"`
	PaymentStatus   domain.PaymentStatus   `json:"payment_status"`
	PaymentMethod   string                 `json:"payment_method"`
	Subtotal        string                 `json:"subtotal"`
	Discount        string                 `json:"discount"`
	ShippingCost    string                 `json:"shipping_cost"`
	Total           string                 `json:"total"`
	CouponCode      *string                `json:"coupon_code,omitempty"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	Items           []OrderItemResponse    `json:"items,omitempty"`
	CreatedAt       string                 `json:"created_at"`
	UpdatedAt       string                 `json:"updated_at"`
}

type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

func buildOrderResponse(order *domain.Order, items []*domain.OrderItem) OrderResponse {
	resp := OrderResponse{
		ID:              order.ID.String(),
		OrderNumber:     order.OrderNumber,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		PaymentMethod:   order.PaymentMethod,
		Subtotal:        order.Subtotal.String(),
		Discount:        order.Discount.String(),
		ShippingCost:    order.ShippingCost.String(),
		Total:           order.Total.String(),
		CouponCode:      order.CouponCode,
		ShippingAddress: order.ShippingAddress,
		CreatedAt:       order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       order.UpdatedAt.Format(time.RFC3339),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			UnitPrice: item.UnitPrice.String(),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.String(),
		})
	}
	return resp
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		order, err := repos.Order.GetByID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		items, err := repos.OrderItem.GetByOrderID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, buildOrderResponse(order, items))
	}
}

// HandleListOrders handles GET /v1/admin/orders
func HandleListOrders(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		var status *domain.OrderStatus
		if raw := c.Query("status"); raw != "" {
			s := domain.OrderStatus(raw)
			status = &s
		}

		orders, err := svcs.Orders.List(c.Request.Context(), status, limit, offset)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		resp := make([]OrderResponse, 0, len(orders))
		for _, order := range orders {
			resp = append(resp, buildOrderResponse(order, nil))
		}
		c.JSON(http.StatusOK, gin.H{"orders": resp, "count": len(resp)})
	}
}

// UpdateOrderStatusRequest is the admin status patch payload
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// HandleUpdateOrderStatus handles PATCH /v1/admin/orders/:id/status
func HandleUpdateOrderStatus(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		actor := c.GetString("actor")
		if actor == "" {
			actor = "admin"
		}

		order, err := svcs.Orders.UpdateStatus(c.Request.Context(), orderID, domain.OrderStatus(req.Status), actor)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, buildOrderResponse(order, nil))
	}
}
