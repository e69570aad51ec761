package message

import (
	"errors"
	"net/http"

	messageUseCase "go-whatsapp-gateway-api/src/application/usecases/message"
	"go-whatsapp-gateway-api/src/domain/common"
	domainMessage "go-whatsapp-gateway-api/src/domain/message"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type IMessageController interface {
	SendMessage(c *gin.Context)
	GetMessage(c *gin.Context)
	GetMessageStatus(c *gin.Context)
	MarkAsRead(c *gin.Context)
}

type MessageController struct {
	commonService  common.CommonService
	messageUseCase messageUseCase.IMessageUseCase
	Logger         *logger.Logger
}

func NewMessageController(
	commonService common.CommonService,
	useCase messageUseCase.IMessageUseCase,
	loggerInstance *logger.Logger,
) IMessageController {
	return &MessageController{
		commonService:  commonService,
		messageUseCase: useCase,
		Logger:         loggerInstance,
	}
}

func (c *MessageController) SendMessage(ctx *gin.Context) {
	var request SendMessageRequest
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

	msg := &domainMessage.Message{
		To:               request.To,
		Message:          request.Message,
		ContentType:      request.ContentType,
		Attach:           request.Attach,
		IsReply:          request.IsReply,
		ReplyToMessageID: request.ReplyToMessageID,
		ReferenceDoctype: request.ReferenceDoctype,
		ReferenceName:    request.ReferenceName,
	}

	sent, err := c.messageUseCase.SendMessage(msg)
	if err != nil {
		c.Logger.Error("Error sending message", zap.Error(err), zap.String("to", request.To))
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, SendMessageResponse{
		ID:        sent.ID,
		MessageID: sent.MessageID,
		Status:    sent.Status,
	})
}

func (c *MessageController) GetMessage(ctx *gin.Context) {
	var request MessageIDRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	msg, err := c.messageUseCase.GetMessage(request.ID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, MessageResponse{
		ID:               msg.ID,
		MessageID:        msg.MessageID,
		Type:             msg.Type,
		From:             msg.From,
		To:               msg.To,
		ProfileName:      msg.ProfileName,
		Message:          msg.Message,
		ContentType:      msg.ContentType,
		Attach:           msg.Attach,
		IsReply:          msg.IsReply,
		ReplyToMessageID: msg.ReplyToMessageID,
		Status:           msg.Status,
	})
}

func (c *MessageController) GetMessageStatus(ctx *gin.Context) {
	var request MessageStatusRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	status, err := c.messageUseCase.GetMessageStatus(request.MessageID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, MessageStatusResponse{
		MessageID: request.MessageID,
		Status:    status,
	})
}

func (c *MessageController) MarkAsRead(ctx *gin.Context) {
	var request MessageIDRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	if err := c.messageUseCase.MarkAsRead(request.ID); err != nil {
		c.Logger.Error("Error sending read receipt", zap.Error(err), zap.Int("id", request.ID))
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": domainMessage.StatusMarkedAsRead})
}
