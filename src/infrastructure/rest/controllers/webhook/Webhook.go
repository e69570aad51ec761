package webhook

import (
	"io"
	"net/http"

	webhookUseCase "go-whatsapp-gateway-api/src/application/usecases/webhook"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type IWebhookController interface {
	Liveness(c *gin.Context)
	Receive(c *gin.Context)
}

// WebhookController is the gateway-facing endpoint. It always answers 200
// to deliveries it could read; processing failures are logged, not
// returned, so the gateway does not retry endlessly.
type WebhookController struct {
	webhookUseCase webhookUseCase.IWebhookUseCase
	Logger         *logger.Logger
}

func NewWebhookController(useCase webhookUseCase.IWebhookUseCase, loggerInstance *logger.Logger) IWebhookController {
	return &WebhookController{
		webhookUseCase: useCase,
		Logger:         loggerInstance,
	}
}

func (c *WebhookController) Liveness(ctx *gin.Context) {
	ctx.String(http.StatusOK, "WAHA webhook endpoint")
}

func (c *WebhookController) Receive(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.String(http.StatusBadRequest, "could not read body")
		return
	}

	if err := c.webhookUseCase.HandleEvent(body); err != nil {
		c.Logger.Error("Error handling webhook event", zap.Error(err))
	}
	ctx.String(http.StatusOK, "OK")
}
