package routes

import (
	"go-whatsapp-gateway-api/src/infrastructure/di"
	"go-whatsapp-gateway-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
)

// WebhookRoutes registers the gateway-facing webhook outside the /v1 API
// group. It is authenticated by HMAC signature, not by JWT.
func WebhookRoutes(router *gin.Engine, appContext *di.ApplicationContext) {
	webhookRoute := router.Group("/webhook")
	webhookRoute.Use(middlewares.WebhookHMACMiddleware(
		appContext.Settings.WebhookHMACSecret, appContext.Logger))
	{
		webhookRoute.GET("", appContext.WebhookController.Liveness)
		webhookRoute.POST("", appContext.WebhookController.Receive)
	}
}
