package routes

import (
	"go-whatsapp-gateway-api/src/infrastructure/rest/controllers/notification"
	"go-whatsapp-gateway-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
)

func NotificationRoutes(router *gin.RouterGroup, controller notification.INotificationController) {
	notificationRoute := router.Group("/notifications")
	notificationRoute.Use(middlewares.AuthJWTMiddleware())
	{
		notificationRoute.POST("/", controller.CreateRule)
		notificationRoute.GET("/:id", controller.GetRule)
		notificationRoute.PUT("/:id", controller.UpdateRule)
		notificationRoute.DELETE("/:id", controller.DeleteRule)
		notificationRoute.POST("/:id/trigger", controller.TriggerRule)
		notificationRoute.POST("/:id/send", controller.SendSimpleMessage)
		notificationRoute.POST("/run-scheduled", controller.RunScheduled)
	}
}
