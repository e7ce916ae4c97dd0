package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hypermemo/hypermemo/internal/pkg/jwt"
	"github.com/hypermemo/hypermemo/internal/pkg/response"
)

const ContextUserIDKey = "user_id"

type AuthConfig struct {
	Secret []byte
	// Required false attributes every request to AnonUserID, for local
	// development without a token issuer.
	Required   bool
	AnonUserID string
}

// Auth resolves the request identity from the bearer token. Failure messages
// stay generic on purpose.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Required {
			c.Set(ContextUserIDKey, cfg.AnonUserID)
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "unauthorized", "missing authorization")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, http.StatusUnauthorized, "unauthorized", "invalid authorization")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(strings.TrimSpace(parts[1]), cfg.Secret)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "unauthorized", "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}
