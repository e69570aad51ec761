package campaign

import (
	"errors"
	"net/http"

	campaignUseCase "go-whatsapp-gateway-api/src/application/usecases/campaign"
	domainCampaign "go-whatsapp-gateway-api/src/domain/campaign"
	"go-whatsapp-gateway-api/src/domain/common"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ICampaignController interface {
	CreateCampaign(c *gin.Context)
	GetCampaign(c *gin.Context)
	SubmitCampaign(c *gin.Context)
	RetryFailed(c *gin.Context)
	GetProgress(c *gin.Context)
	CreateRecipientList(c *gin.Context)
}

type CampaignController struct {
	commonService   common.CommonService
	campaignUseCase campaignUseCase.ICampaignUseCase
	Logger          *logger.Logger
}

func NewCampaignController(
	commonService common.CommonService,
	useCase campaignUseCase.ICampaignUseCase,
	loggerInstance *logger.Logger,
) ICampaignController {
	return &CampaignController{
		commonService:   commonService,
		campaignUseCase: useCase,
		Logger:          loggerInstance,
	}
}

func (c *CampaignController) CreateCampaign(ctx *gin.Context) {
	var request CreateCampaignRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		c.Logger.Error("Couldn't process request - invalid request", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		_ = ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	recipientType := request.RecipientType
	if recipientType == "" {
		recipientType = domainCampaign.RecipientTypeInline
	}

	campaign := &domainCampaign.BulkCampaign{
		Name:            request.Name,
		RecipientType:   recipientType,
		RecipientListID: request.RecipientListID,
		MessageContent:  request.MessageContent,
		ContentType:     request.ContentType,
		Attach:          request.Attach,
	}

	recipients := make([]domainCampaign.Recipient, len(request.Recipients))
	for i, r := range request.Recipients {
		recipients[i] = domainCampaign.Recipient{
			MobileNumber:  r.MobileNumber,
			RecipientName: r.RecipientName,
			RecipientData: r.RecipientData,
		}
	}

	created, err := c.campaignUseCase.CreateCampaign(campaign, recipients)
	if err != nil {
		c.Logger.Error("Error creating campaign", zap.Error(err), zap.String("name", request.Name))
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, toCampaignResponse(created))
}

func (c *CampaignController) GetCampaign(ctx *gin.Context) {
	var request CampaignIDRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID"})
		return
	}

	campaign, err := c.campaignUseCase.GetCampaign(request.ID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, toCampaignResponse(campaign))
}

func (c *CampaignController) SubmitCampaign(ctx *gin.Context) {
	var request CampaignIDRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID"})
		return
	}

	campaign, err := c.campaignUseCase.Submit(request.ID)
	if err != nil {
		c.Logger.Error("Error submitting campaign", zap.Error(err), zap.Int("id", request.ID))
		_ = ctx.Error(err)
		return
	}

	c.Logger.Info("Campaign queued", zap.Int("id", campaign.ID))
	ctx.JSON(http.StatusAccepted, toCampaignResponse(campaign))
}

func (c *CampaignController) RetryFailed(ctx *gin.Context) {
	var request CampaignIDRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID"})
		return
	}

	count, err := c.campaignUseCase.RetryFailed(request.ID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, RetryResponse{Requeued: count})
}

func (c *CampaignController) GetProgress(ctx *gin.Context) {
	var request CampaignIDRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign ID"})
		return
	}

	progress, err := c.campaignUseCase.GetProgress(request.ID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, progress)
}

func (c *CampaignController) CreateRecipientList(ctx *gin.Context) {
	var request CreateRecipientListRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		c.Logger.Error("Couldn't process request - invalid request", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		_ = ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	members := make([]domainCampaign.Recipient, len(request.Members))
	for i, r := range request.Members {
		members[i] = domainCampaign.Recipient{
			MobileNumber:  r.MobileNumber,
			RecipientName: r.RecipientName,
			RecipientData: r.RecipientData,
		}
	}

	created, err := c.campaignUseCase.CreateRecipientList(
		&domainCampaign.RecipientList{Name: request.Name}, members)
	if err != nil {
		c.Logger.Error("Error creating recipient list", zap.Error(err), zap.String("name", request.Name))
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, RecipientListResponse{ID: created.ID, Name: created.Name})
}

func toCampaignResponse(campaign *domainCampaign.BulkCampaign) CampaignResponse {
	return CampaignResponse{
		ID:             campaign.ID,
		Name:           campaign.Name,
		Status:         campaign.Status,
		RecipientCount: campaign.RecipientCount,
		SentCount:      campaign.SentCount,
	}
}
