package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Juste-Gnimavo/cechemoi-sub006/internal/config"
)

// AdminAuthMiddleware guards back-office routes with a Bearer API key
// checked against the configured bcrypt hash. No hash configured means
// admin routes are closed entirely.
func AdminAuthMiddleware(cfg *config.Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Admin.APIKeyHash == "" {
			logger.Warn("Admin route hit with no ADMIN_API_KEY_HASH configured",
				zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "admin access is not configured"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			c.Abort()
			return
		}
		apiKey := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		if err := bcrypt.CompareHashAndPassword([]byte(cfg.Admin.APIKeyHash), []byte(apiKey)); err != nil {
			logger.Warn("Admin authentication failed", zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			c.Abort()
			return
		}

		c.Set("actor", "admin")
		c.Next()
	}
}
