package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/gateway"
	"github.com/Juste-Gnimavo/cechemoi-sub006/pkg/errors"
)

// respondError maps typed service errors onto HTTP responses
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch e := err.(type) {
	case *errors.ErrValidation:
		resp := gin.H{"error": e.Error()}
		if len(e.Fields) > 0 {
			resp["fields"] = e.Fields
		}
		c.JSON(http.StatusBadRequest, resp)
	case *errors.ErrInsufficientStock:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      e.Error(),
			"product_id": e.ProductID.String(),
			"requested":  e.Requested,
			"available":  e.Available,
		})
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case *errors.ErrConflict:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	case *errors.ErrInvalidStateTransition:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	case *errors.ErrSignature:
		c.JSON(http.StatusForbidden, gin.H{"error": e.Error()})
	case *gateway.Error:
		logger.Error("Gateway error", zap.Error(e))
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
	default:
		logger.Error("Internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
