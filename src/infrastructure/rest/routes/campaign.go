package routes

import (
	"go-whatsapp-gateway-api/src/infrastructure/rest/controllers/campaign"
	"go-whatsapp-gateway-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
)

func CampaignRoutes(router *gin.RouterGroup, controller campaign.ICampaignController) {
	campaignRoute := router.Group("/campaigns")
	campaignRoute.Use(middlewares.AuthJWTMiddleware())
	{
		campaignRoute.POST("/", controller.CreateCampaign)
		campaignRoute.GET("/:id", controller.GetCampaign)
		campaignRoute.POST("/:id/submit", controller.SubmitCampaign)
		campaignRoute.POST("/:id/retry", controller.RetryFailed)
		campaignRoute.GET("/:id/progress", controller.GetProgress)
	}

	listRoute := router.Group("/recipient-lists")
	listRoute.Use(middlewares.AuthJWTMiddleware())
	{
		listRoute.POST("/", controller.CreateRecipientList)
	}
}
