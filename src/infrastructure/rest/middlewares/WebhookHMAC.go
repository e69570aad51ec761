package middlewares

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http"

	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HMACHeaderName carries the hex signature of the raw request body
const HMACHeaderName = "X-Webhook-Hmac"

// WebhookHMACMiddleware verifies the HMAC-SHA512 signature of webhook
// deliveries. With no secret configured verification is skipped entirely;
// with a secret set a missing or wrong signature is rejected.
func WebhookHMACMiddleware(secret string, loggerInstance *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		received := c.GetHeader(HMACHeaderName)
		if received == "" {
			loggerInstance.Warn("Webhook rejected, missing HMAC signature",
				zap.String("remote", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing HMAC signature"})
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read request body"})
			c.Abort()
			return
		}
		// restore the body for the handler
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		mac := hmac.New(sha512.New, []byte(secret))
		mac.Write(body)
		expected := hex.EncodeToString(mac.Sum(nil))

		if !hmac.Equal([]byte(received), []byte(expected)) {
			loggerInstance.Warn("Webhook rejected, invalid HMAC signature",
				zap.String("remote", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid HMAC signature"})
			c.Abort()
			return
		}

		c.Next()
	}
}
