package routes

import (
	"go-whatsapp-gateway-api/src/infrastructure/rest/controllers/message"
	"go-whatsapp-gateway-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
)

func MessageRoutes(router *gin.RouterGroup, controller message.IMessageController) {
	messageRoute := router.Group("/messages")
	messageRoute.Use(middlewares.AuthJWTMiddleware())
	{
		messageRoute.POST("/send", controller.SendMessage)
		messageRoute.GET("/:id", controller.GetMessage)
		messageRoute.POST("/:id/read", controller.MarkAsRead)
		messageRoute.GET("/status/:message_id", controller.GetMessageStatus)
	}
}
