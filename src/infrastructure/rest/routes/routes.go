package routes

import (
	"net/http"

	"go-whatsapp-gateway-api/src/infrastructure/di"

	"github.com/gin-gonic/gin"
)

func ApplicationRouter(router *gin.Engine, appContext *di.ApplicationContext) {
	v1 := router.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Service is running",
		})
	})

	MessageRoutes(v1, appContext.MessageController)
	CampaignRoutes(v1, appContext.CampaignController)
	NotificationRoutes(v1, appContext.NotificationController)
	WebhookRoutes(router, appContext)
	StaticRoutes(router, appContext)
}

// StaticRoutes serves stored attachments under /files/ so the gateway
// can fetch media the service re-sends by URL.
func StaticRoutes(router *gin.Engine, appContext *di.ApplicationContext) {
	if appContext.Settings.AttachmentDir != "" {
		router.Static("/files", appContext.Settings.AttachmentDir)
	}
}
