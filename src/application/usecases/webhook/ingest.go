package webhook

import (
	"errors"
	"strconv"
	"strings"

	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	domainMessage "go-whatsapp-gateway-api/src/domain/message"
	"go-whatsapp-gateway-api/src/application/usecases/dispatch"
	"go-whatsapp-gateway-api/src/infrastructure/config"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"
	attachmentRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/attachment"
	"go-whatsapp-gateway-api/src/infrastructure/repository/mysql/auditlog"
	messageRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/message"
	"go-whatsapp-gateway-api/src/infrastructure/storage"
	"go-whatsapp-gateway-api/src/infrastructure/waha"

	"github.com/gofrs/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Gateway webhook event names
const (
	EventMessage         = "message"
	EventMessageAny      = "message.any"
	EventMessageReaction = "message.reaction"
	EventMessageAck      = "message.ack"
	EventMessageRevoked  = "message.revoked"
	EventSessionStatus   = "session.status"
)

// IWebhookUseCase consumes gateway webhook deliveries
type IWebhookUseCase interface {
	HandleEvent(body []byte) error
}

// WebhookUseCase classifies inbound events and turns them into message
// rows, status transitions and audit entries.
type WebhookUseCase struct {
	messageRepository    messageRepo.MessageRepositoryInterface
	attachmentRepository attachmentRepo.AttachmentRepositoryInterface
	auditLogRepository   auditlog.AuditLogRepositoryInterface
	wahaClient           waha.ClientInterface
	dispatcher           dispatch.IDispatchUseCase
	attachmentStore      *storage.AttachmentStore
	settings             config.Settings
	Logger               *logger.Logger
}

func NewWebhookUseCase(
	messageRepository messageRepo.MessageRepositoryInterface,
	attachmentRepository attachmentRepo.AttachmentRepositoryInterface,
	auditLogRepository auditlog.AuditLogRepositoryInterface,
	wahaClient waha.ClientInterface,
	dispatcher dispatch.IDispatchUseCase,
	attachmentStore *storage.AttachmentStore,
	settings config.Settings,
	loggerInstance *logger.Logger,
) IWebhookUseCase {
	return &WebhookUseCase{
		messageRepository:    messageRepository,
		attachmentRepository: attachmentRepository,
		auditLogRepository:   auditLogRepository,
		wahaClient:           wahaClient,
		dispatcher:           dispatcher,
		attachmentStore:      attachmentStore,
		settings:             settings,
		Logger:               loggerInstance,
	}
}

// HandleEvent records the raw delivery and routes by event name. Unknown
// events are logged and acknowledged so the gateway does not retry them.
func (u *WebhookUseCase) HandleEvent(body []byte) error {
	if err := u.auditLogRepository.Append(auditlog.TemplateWebhook, map[string]interface{}{
		"body": string(body),
	}); err != nil {
		u.Logger.Error("Error appending webhook audit entry", zap.Error(err))
	}

	event := gjson.GetBytes(body, "event").String()
	payload := gjson.GetBytes(body, "payload")
	session := gjson.GetBytes(body, "session").String()

	switch event {
	case EventMessage, EventMessageAny:
		u.handleMessage(payload)
	case EventMessageReaction:
		u.handleReaction(payload)
	case EventMessageAck:
		u.handleAck(payload)
	case EventMessageRevoked:
		u.handleRevoked(payload)
	case EventSessionStatus:
		u.handleSessionStatus(payload, session)
	default:
		u.Logger.Info("Ignoring unhandled webhook event", zap.String("event", event))
	}
	return nil
}

// handleMessage stores an incoming message, downloading media when the
// payload carries it. Failures are logged, never surfaced to the gateway.
func (u *WebhookUseCase) handleMessage(payload gjson.Result) {
	if payload.Get("fromMe").Bool() {
		return
	}

	contentType := classify(payload)
	msg := &domainMessage.Message{
		Type:             domainMessage.DirectionIncoming,
		From:             waha.StripChatSuffix(payload.Get("from").String()),
		Message:          extractBody(payload, contentType),
		MessageID:        payload.Get("id").String(),
		IsReply:          payload.Get("replyTo").String() != "",
		ReplyToMessageID: payload.Get("replyTo").String(),
		ContentType:      contentType,
		ProfileName:      payload.Get("_data.notifyName").String(),
	}

	var err error
	if domainMessage.IsMediaContentType(contentType) {
		err = u.handleMediaMessage(payload, msg)
	} else {
		_, err = u.messageRepository.Create(msg)
		if err == nil {
			u.maybeSendReadReceipt(msg)
		}
	}
	if err != nil {
		u.Logger.Error("Error inserting incoming message",
			zap.Error(err),
			zap.String("from", msg.From),
			zap.String("contentType", contentType))
	}
}

// classify determines the content type from the payload, body text first
// and then the transport-level data type.
func classify(payload gjson.Result) string {
	if payload.Get("body").String() != "" {
		return domainMessage.ContentTypeText
	}
	switch payload.Get("_data.type").String() {
	case "image":
		return domainMessage.ContentTypeImage
	case "video":
		return domainMessage.ContentTypeVideo
	case "audio", "ptt":
		return domainMessage.ContentTypeAudio
	case "document":
		return domainMessage.ContentTypeDocument
	}
	if nonEmpty(payload.Get("reaction")) {
		return domainMessage.ContentTypeReaction
	}
	if nonEmpty(payload.Get("location")) {
		return domainMessage.ContentTypeLocation
	}
	if nonEmpty(payload.Get("vCards")) {
		return domainMessage.ContentTypeContact
	}
	return domainMessage.ContentTypeText
}

// nonEmpty reports whether a payload value carries content. Gateways
// sometimes send empty objects or arrays for fields that do not apply;
// those fall through to text.
func nonEmpty(value gjson.Result) bool {
	if !value.Exists() {
		return false
	}
	if value.IsObject() {
		return len(value.Map()) > 0
	}
	if value.IsArray() {
		return len(value.Array()) > 0
	}
	return value.String() != ""
}

func extractBody(payload gjson.Result, contentType string) string {
	switch contentType {
	case domainMessage.ContentTypeText:
		return payload.Get("body").String()
	case domainMessage.ContentTypeReaction:
		return payload.Get("reaction.text").String()
	case domainMessage.ContentTypeLocation:
		return payload.Get("location").Raw
	case domainMessage.ContentTypeContact:
		return payload.Get("vCards").Raw
	case domainMessage.ContentTypeImage, domainMessage.ContentTypeVideo,
		domainMessage.ContentTypeAudio, domainMessage.ContentTypeDocument:
		return payload.Get("caption").String()
	}
	return ""
}

// handleMediaMessage inserts the message first so a failed download still
// leaves a row, then attaches the downloaded bytes.
func (u *WebhookUseCase) handleMediaMessage(payload gjson.Result, msg *domainMessage.Message) error {
	mediaURL := payload.Get("media.url").String()
	if mediaURL == "" {
		_, err := u.messageRepository.Create(msg)
		return err
	}

	data, downloadErr := u.wahaClient.DownloadMedia(mediaURL)
	if downloadErr != nil {
		u.Logger.Error("Media download failed", zap.Error(downloadErr), zap.String("url", mediaURL))
		_, err := u.messageRepository.Create(msg)
		return err
	}

	mimeType := payload.Get("media.mimetype").String()
	extension := storage.ResolveExtension(mimeType, msg.ContentType, data)

	token, err := uuid.NewV4()
	if err != nil {
		return err
	}
	fileName := strings.ReplaceAll(token.String(), "-", "")[:10] + "." + extension

	created, err := u.messageRepository.Create(msg)
	if err != nil {
		return err
	}
	*msg = *created

	path, fileURL, err := u.attachmentStore.Save(fileName, data)
	if err != nil {
		u.Logger.Error("Error storing attachment", zap.Error(err), zap.String("fileName", fileName))
		return nil
	}

	if _, err := u.attachmentRepository.Create(&attachmentRepo.Attachment{
		FileName:        fileName,
		FileURL:         fileURL,
		FilePath:        path,
		Mimetype:        mimeType,
		Size:            len(data),
		AttachedToID:    msg.ID,
		AttachedToField: "attach",
	}); err != nil {
		u.Logger.Error("Error recording attachment", zap.Error(err), zap.Int("messageID", msg.ID))
	}

	updates := map[string]interface{}{"attach": fileURL}
	if msg.Message == "" {
		msg.Message = "/files/" + fileName
		updates["message"] = msg.Message
	}
	msg.Attach = fileURL
	if _, err := u.messageRepository.Update(msg.ID, updates); err != nil {
		u.Logger.Error("Error attaching media to message", zap.Error(err), zap.Int("id", msg.ID))
	}

	u.maybeSendReadReceipt(msg)
	return nil
}

func (u *WebhookUseCase) maybeSendReadReceipt(msg *domainMessage.Message) {
	if !u.settings.AllowAutoReadReceipt {
		return
	}
	if err := u.dispatcher.SendReadReceipt(msg); err != nil {
		u.Logger.Warn("Read receipt failed", zap.Error(err), zap.String("messageID", msg.MessageID))
	}
}

func (u *WebhookUseCase) handleReaction(payload gjson.Result) {
	msg := &domainMessage.Message{
		Type:             domainMessage.DirectionIncoming,
		From:             waha.StripChatSuffix(payload.Get("from").String()),
		Message:          payload.Get("reaction.text").String(),
		ReplyToMessageID: payload.Get("reaction.messageId").String(),
		MessageID:        payload.Get("id").String(),
		ContentType:      domainMessage.ContentTypeReaction,
	}
	if _, err := u.messageRepository.Create(msg); err != nil {
		u.Logger.Error("Error inserting reaction", zap.Error(err), zap.String("from", msg.From))
	}
}

// handleAck applies a delivery acknowledgement to the matching message.
// Unknown message ids are a no-op.
func (u *WebhookUseCase) handleAck(payload gjson.Result) {
	messageID := payload.Get("id").String()
	if messageID == "" {
		return
	}

	msg, err := u.messageRepository.GetByMessageID(messageID)
	if err != nil {
		var appErr *domainErrors.AppError
		if errors.As(err, &appErr) && appErr.Type == domainErrors.NotFound {
			return
		}
		u.Logger.Error("Error looking up message for ack", zap.Error(err), zap.String("messageID", messageID))
		return
	}

	status := payload.Get("ackName").String()
	if status == "" {
		status = "ACK " + strconv.FormatInt(payload.Get("ack").Int(), 10)
	}
	if _, err := u.messageRepository.Update(msg.ID, map[string]interface{}{"status": status}); err != nil {
		u.Logger.Error("Error applying ack", zap.Error(err), zap.Int("id", msg.ID))
	}
}

func (u *WebhookUseCase) handleRevoked(payload gjson.Result) {
	revokedID := payload.Get("revokedMessageId").String()
	if revokedID == "" {
		return
	}

	msg, err := u.messageRepository.GetByMessageID(revokedID)
	if err != nil {
		var appErr *domainErrors.AppError
		if errors.As(err, &appErr) && appErr.Type == domainErrors.NotFound {
			return
		}
		u.Logger.Error("Error looking up revoked message", zap.Error(err), zap.String("messageID", revokedID))
		return
	}

	if _, err := u.messageRepository.Update(msg.ID, map[string]interface{}{
		"status":  domainMessage.StatusRevoked,
		"message": domainMessage.RevokedBodyMarker,
	}); err != nil {
		u.Logger.Error("Error marking message revoked", zap.Error(err), zap.Int("id", msg.ID))
	}
}

func (u *WebhookUseCase) handleSessionStatus(payload gjson.Result, session string) {
	status := payload.Get("status").String()
	if err := u.auditLogRepository.Append(auditlog.TemplateSessionStatus, map[string]interface{}{
		"session": session,
		"status":  status,
	}); err != nil {
		u.Logger.Error("Error logging session status", zap.Error(err))
	}
	u.Logger.Info("Session status changed", zap.String("session", session), zap.String("status", status))
}
