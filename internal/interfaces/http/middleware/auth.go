package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	// AuthHeaderKey is the header carrying the delivery token
	AuthHeaderKey = "Authorization"

	// BearerPrefix precedes the token in the header
	BearerPrefix = "Bearer "
)

// WebhookAuth verifies the JWT the platform attaches to each delivery.
// Tokens are HMAC-signed (HS256) with the shared webhook secret; an
// expired or tampered token rejects the delivery with 401.
//
// With an empty secret verification is disabled. The config layer refuses
// that in production.
func WebhookAuth(secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			unauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			unauthorized(c, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			unauthorized(c, "Missing token")
			return
		}

		_, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			logger.Warn("webhook delivery rejected",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			unauthorized(c, "Token verification failed")
			return
		}

		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	reject(c, http.StatusUnauthorized, message)
}
