package notification

import (
	"errors"
	"net/http"

	notificationUseCase "go-whatsapp-gateway-api/src/application/usecases/notification"
	"go-whatsapp-gateway-api/src/domain/common"
	domainNotification "go-whatsapp-gateway-api/src/domain/notification"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type INotificationController interface {
	CreateRule(c *gin.Context)
	GetRule(c *gin.Context)
	UpdateRule(c *gin.Context)
	DeleteRule(c *gin.Context)
	TriggerRule(c *gin.Context)
	SendSimpleMessage(c *gin.Context)
	RunScheduled(c *gin.Context)
}

type NotificationController struct {
	commonService       common.CommonService
	notificationUseCase notificationUseCase.INotificationUseCase
	Logger              *logger.Logger
}

func NewNotificationController(
	commonService common.CommonService,
	useCase notificationUseCase.INotificationUseCase,
	loggerInstance *logger.Logger,
) INotificationController {
	return &NotificationController{
		commonService:       commonService,
		notificationUseCase: useCase,
		Logger:              loggerInstance,
	}
}

func (c *NotificationController) CreateRule(ctx *gin.Context) {
	var request RuleRequest
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

	created, err := c.notificationUseCase.CreateRule(ruleFromRequest(&request))
	if err != nil {
		c.Logger.Error("Error creating notification rule", zap.Error(err), zap.String("name", request.Name))
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusCreated, toRuleResponse(created))
}

func (c *NotificationController) GetRule(ctx *gin.Context) {
	var request RuleIDRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule ID"})
		return
	}

	rule, err := c.notificationUseCase.GetRule(request.ID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, toRuleResponse(rule))
}

func (c *NotificationController) UpdateRule(ctx *gin.Context) {
	var request RuleIDRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule ID"})
		return
	}

	var ruleMap map[string]interface{}
	if err := ctx.ShouldBindJSON(&ruleMap); err != nil {
		_ = ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	updated, err := c.notificationUseCase.UpdateRule(request.ID, ruleMap)
	if err != nil {
		c.Logger.Error("Error updating notification rule", zap.Error(err), zap.Int("id", request.ID))
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, toRuleResponse(updated))
}

func (c *NotificationController) DeleteRule(ctx *gin.Context) {
	var request RuleIDRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule ID"})
		return
	}

	if err := c.notificationUseCase.DeleteRule(request.ID); err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "rule deleted"})
}

func (c *NotificationController) TriggerRule(ctx *gin.Context) {
	var uriRequest RuleIDRequest
	if err := ctx.ShouldBindUri(&uriRequest); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule ID"})
		return
	}

	var request TriggerRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		_ = ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if err := c.notificationUseCase.TriggerForRecord(uriRequest.ID, request.RecordType, request.RecordName); err != nil {
		c.Logger.Error("Error triggering notification rule",
			zap.Error(err), zap.Int("id", uriRequest.ID), zap.String("record", request.RecordName))
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "notification triggered"})
}

func (c *NotificationController) SendSimpleMessage(ctx *gin.Context) {
	var uriRequest RuleIDRequest
	if err := ctx.ShouldBindUri(&uriRequest); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rule ID"})
		return
	}

	var request SimpleMessageRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		_ = ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	rule, err := c.notificationUseCase.GetRule(uriRequest.ID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	if err := c.notificationUseCase.SendSimpleMessage(rule, request.PhoneNumber, request.Message); err != nil {
		c.Logger.Error("Error sending simple message", zap.Error(err), zap.Int("ruleID", uriRequest.ID))
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "message sent"})
}

// RunScheduled fires the daily sweep on demand
func (c *NotificationController) RunScheduled(ctx *gin.Context) {
	if err := c.notificationUseCase.TriggerScheduledRules(); err != nil {
		c.Logger.Error("Error running scheduled rules", zap.Error(err))
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "scheduled rules triggered"})
}

func ruleFromRequest(request *RuleRequest) *domainNotification.Rule {
	return &domainNotification.Rule{
		Name:            request.Name,
		TriggerMode:     request.TriggerMode,
		ReferenceType:   request.ReferenceType,
		DateField:       request.DateField,
		DaysInAdvance:   request.DaysInAdvance,
		Condition:       request.Condition,
		Message:         request.Message,
		Fields:          request.Fields,
		PhoneField:      request.PhoneField,
		AttachmentMode:  request.AttachmentMode,
		Attach:          request.Attach,
		AttachFromField: request.AttachFromField,
		FileName:        request.FileName,
		SetField:        request.SetField,
		SetFieldValue:   request.SetFieldValue,
		Disabled:        request.Disabled,
	}
}

func toRuleResponse(rule *domainNotification.Rule) RuleResponse {
	return RuleResponse{
		ID:             rule.ID,
		Name:           rule.Name,
		TriggerMode:    rule.TriggerMode,
		ReferenceType:  rule.ReferenceType,
		Condition:      rule.Condition,
		Message:        rule.Message,
		AttachmentMode: rule.AttachmentMode,
		Disabled:       rule.Disabled,
	}
}
