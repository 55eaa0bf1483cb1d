package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/domain"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/repository"
	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/service"
)

// StockMovementResponse is one ledger row in the export
type StockMovementResponse struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	Delta         int     `json:"delta"`
	PreviousStock int     `json:"previous_stock"`
	NewStock      int     `json:"new_stock"`
	Type          string  `json:"type"`
	Reference     string  `json:"reference"`
	Reason        *string `json:"reason,omitempty"`
	Actor         string  `json:"actor"`
	CreatedAt     string  `json:"created_at"`
}

// HandleListStockMovements handles GET /v1/admin/stock-movements
func HandleListStockMovements(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter repository.MovementFilter

		if raw := c.Query("from"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date, want RFC3339"})
				return
			}
			filter.From = &t
		}
		if raw := c.Query("to"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date, want RFC3339"})
				return
			}
			filter.To = &t
		}
		if raw := c.Query("type"); raw != "" {
			mt := domain.MovementType(raw)
			if !mt.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movement type"})
				return
			}
			filter.Type = &mt
		}
		if raw := c.Query("product_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
				return
			}
			filter.ProductID = &id
		}

		movements, err := svcs.Ledger.ListMovements(c.Request.Context(), filter)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		resp := make([]StockMovementResponse, 0, len(movements))
		for _, m := range movements {
			resp = append(resp, StockMovementResponse{
				ID:            m.ID.String(),
				ProductID:     m.ProductID.String(),
				Delta:         m.Delta,
				PreviousStock: m.PreviousStock,
				NewStock:      m.NewStock,
				Type:          string(m.Type),
				Reference:     m.Reference,
				Reason:        m.Reason,
				Actor:         m.Actor,
				CreatedAt:     m.CreatedAt.Format(time.RFC3339),
			})
		}
		c.JSON(http.StatusOK, gin.H{"movements": resp, "count": len(resp)})
	}
}

// InvoiceResponse represents an invoice
type InvoiceResponse struct {
	ID              string                `json:"id"`
	InvoiceNumber   string                `json:"invoice_number"`
	OrderID         *string               `json:"order_id,omitempty"`
	CustomerName    string                `json:"customer_name"`
	CustomerPhone   string                `json:"customer_phone,omitempty"`
	CustomerEmail   string                `json:"customer_email,omitempty"`
	CustomerAddress string                `json:"customer_address,omitempty"`
	Status          domain.InvoiceStatus  `json:"status"`
	Total           string                `json:"total"`
	PaidDate        *string               `json:"paid_date,omitempty"`
	Items           []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt       string                `json:"created_at"`
}

type InvoiceItemResponse struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

func buildInvoiceResponse(invoice *domain.Invoice, items []*domain.InvoiceItem) InvoiceResponse {
	resp := InvoiceResponse{
		ID:              invoice.ID.String(),
		InvoiceNumber:   invoice.InvoiceNumber,
		CustomerName:    invoice.CustomerName,
		CustomerPhone:   invoice.CustomerPhone,
		CustomerEmail:   invoice.CustomerEmail,
		CustomerAddress: invoice.CustomerAddress,
		Status:          invoice.Status,
		Total:           invoice.Total.String(),
		CreatedAt:       invoice.CreatedAt.Format(time.RFC3339),
	}
	if invoice.OrderID != nil {
		id := invoice.OrderID.String()
		resp.OrderID = &id
	}
	if invoice.PaidDate != nil {
		pd := invoice.PaidDate.Format(time.RFC3339)
		resp.PaidDate = &pd
	}
	for _, item := range items {
		resp.Items = append(resp.Items, InvoiceItemResponse{
			Name:      item.Name,
			UnitPrice: item.UnitPrice.String(),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.String(),
		})
	}
	return resp
}

// HandleStandaloneInvoice handles POST /v1/admin/invoices/standalone
func HandleStandaloneInvoice(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.StandaloneInvoiceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		invoice, err := svcs.Invoices.IssueStandalone(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusCreated, buildInvoiceResponse(invoice, nil))
	}
}

// HandleReissueInvoice handles POST /v1/admin/invoices/:id/reissue.
// The :id here is the order whose invoice is re-derived.
func HandleReissueInvoice(svcs *service.Services, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		actor := c.GetString("actor")
		if actor == "" {
			actor = "admin"
		}

		invoice, err := svcs.Invoices.Reissue(c.Request.Context(), orderID, actor)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusCreated, buildInvoiceResponse(invoice, nil))
	}
}
