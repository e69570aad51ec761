package middlewares

import (
	"errors"
	"net/http"

	domainErrors "go-whatsapp-gateway-api/src/domain/errors"

	"github.com/gin-gonic/gin"
)

// ErrorHandler maps typed application errors attached to the context onto
// HTTP statuses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *domainErrors.AppError
		if !errors.As(err, &appErr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		switch appErr.Type {
		case domainErrors.NotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": appErr.Error()})
		case domainErrors.ValidationError:
			c.JSON(http.StatusBadRequest, gin.H{"error": appErr.Error()})
		case domainErrors.NotAuthenticated:
			c.JSON(http.StatusUnauthorized, gin.H{"error": appErr.Error()})
		case domainErrors.NotAuthorized:
			c.JSON(http.StatusForbidden, gin.H{"error": appErr.Error()})
		case domainErrors.ConfigurationError:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": appErr.Error()})
		case domainErrors.TransportError, domainErrors.GatewayError:
			c.JSON(http.StatusBadGateway, gin.H{"error": appErr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": appErr.Error()})
		}
	}
}
