package dispatch

import (
	"encoding/json"
	"errors"
	"strings"

	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	domainMessage "go-whatsapp-gateway-api/src/domain/message"
	"go-whatsapp-gateway-api/src/infrastructure/config"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"
	"go-whatsapp-gateway-api/src/infrastructure/repository/mysql/auditlog"
	messageRepo "go-whatsapp-gateway-api/src/infrastructure/repository/mysql/message"
	"go-whatsapp-gateway-api/src/infrastructure/waha"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// Gateway endpoints per content type
const (
	EndpointSendText     = "/api/sendText"
	EndpointSendImage    = "/api/sendImage"
	EndpointSendVideo    = "/api/sendVideo"
	EndpointSendVoice    = "/api/sendVoice"
	EndpointSendFile     = "/api/sendFile"
	EndpointSendLocation = "/api/sendLocation"
	EndpointSendContact  = "/api/sendContactVcard"
	EndpointReaction     = "/api/reaction"
	EndpointSendSeen     = "/api/sendSeen"
)

// ContentTypeForEndpoint maps a send endpoint back to a message content type
func ContentTypeForEndpoint(endpoint string) string {
	switch endpoint {
	case EndpointSendImage:
		return domainMessage.ContentTypeImage
	case EndpointSendVideo:
		return domainMessage.ContentTypeVideo
	case EndpointSendVoice:
		return domainMessage.ContentTypeAudio
	case EndpointSendFile:
		return domainMessage.ContentTypeDocument
	}
	return domainMessage.ContentTypeText
}

// IDispatchUseCase is the outbound dispatcher contract
type IDispatchUseCase interface {
	Dispatch(msg *domainMessage.Message) error
	DispatchQueued(limit int)
	SendReadReceipt(msg *domainMessage.Message) error
}

// DispatchUseCase fans a logical message out to the content-type-specific
// gateway endpoint and records the delivery identifier or failure.
type DispatchUseCase struct {
	wahaClient         waha.ClientInterface
	messageRepository  messageRepo.MessageRepositoryInterface
	auditLogRepository auditlog.AuditLogRepositoryInterface
	settings           config.Settings
	Logger             *logger.Logger
}

func NewDispatchUseCase(
	wahaClient waha.ClientInterface,
	messageRepository messageRepo.MessageRepositoryInterface,
	auditLogRepository auditlog.AuditLogRepositoryInterface,
	settings config.Settings,
	loggerInstance *logger.Logger,
) IDispatchUseCase {
	return &DispatchUseCase{
		wahaClient:         wahaClient,
		messageRepository:  messageRepository,
		auditLogRepository: auditLogRepository,
		settings:           settings,
		Logger:             loggerInstance,
	}
}

// Dispatch sends a persisted outgoing message through the gateway. On
// success the message gains the gateway id and Success status; on failure
// it is marked Failed, an audit entry is appended and the typed error is
// returned to the caller.
func (u *DispatchUseCase) Dispatch(msg *domainMessage.Message) error {
	endpoint, body, err := u.buildRequest(msg)
	if err != nil {
		u.markFailed(msg, endpoint, err)
		return err
	}

	var response []byte
	if msg.ContentType == domainMessage.ContentTypeReaction {
		// reactions update an existing message instead of creating one
		response, err = u.wahaClient.Put(endpoint, body)
	} else {
		response, err = u.wahaClient.Post(endpoint, body)
	}
	if err != nil {
		u.markFailed(msg, endpoint, err)
		return err
	}

	msg.Status = domainMessage.StatusSuccess
	if id := gjson.GetBytes(response, "id"); id.Exists() && id.String() != "" {
		msg.MessageID = id.String()
	}

	if msg.ID != 0 {
		if _, err := u.messageRepository.Update(msg.ID, map[string]interface{}{
			"status":    msg.Status,
			"messageID": msg.MessageID,
		}); err != nil {
			u.Logger.Error("Error persisting send result", zap.Error(err), zap.Int("id", msg.ID))
		}
	}

	u.Logger.Info("Message dispatched",
		zap.String("endpoint", endpoint),
		zap.String("messageID", msg.MessageID),
		zap.String("to", msg.To))
	return nil
}

// DispatchQueued sends every queued outgoing message, used by the worker
// sweep so requeued campaign children get picked up. Failures are already
// recorded per message and are not propagated.
func (u *DispatchUseCase) DispatchQueued(limit int) {
	queued, err := u.messageRepository.GetQueuedOutgoing(limit)
	if err != nil {
		u.Logger.Error("Error fetching queued messages", zap.Error(err))
		return
	}
	for i := range *queued {
		msg := (*queued)[i]
		if err := u.Dispatch(&msg); err != nil {
			u.Logger.Warn("Queued message dispatch failed", zap.Int("id", msg.ID), zap.Error(err))
		}
	}
}

// SendReadReceipt marks a message as seen on the gateway side
func (u *DispatchUseCase) SendReadReceipt(msg *domainMessage.Message) error {
	if msg.MessageID == "" {
		return domainErrors.NewAppError(errors.New("message id is required to send read receipt"), domainErrors.ValidationError)
	}

	chatAddress := msg.From
	if chatAddress == "" {
		chatAddress = msg.To
	}

	body, err := json.Marshal(map[string]interface{}{
		"session": u.settings.SessionName,
		"chatId":  waha.FormatNumber(chatAddress),
	})
	if err != nil {
		return err
	}

	if _, err := u.wahaClient.Post(EndpointSendSeen, body); err != nil {
		return err
	}

	msg.Status = domainMessage.StatusMarkedAsRead
	if msg.ID != 0 {
		if _, err := u.messageRepository.Update(msg.ID, map[string]interface{}{
			"status": msg.Status,
		}); err != nil {
			u.Logger.Error("Error persisting read receipt status", zap.Error(err), zap.Int("id", msg.ID))
		}
	}
	return nil
}

// buildRequest selects the endpoint and builds the request body for the
// message's content type.
func (u *DispatchUseCase) buildRequest(msg *domainMessage.Message) (string, []byte, error) {
	data := map[string]interface{}{
		"session": u.settings.SessionName,
		"chatId":  waha.FormatNumber(msg.To),
	}

	link := msg.Attach
	if link != "" && !strings.HasPrefix(link, "http") {
		link = strings.TrimRight(u.settings.AppURL, "/") + "/" + strings.TrimLeft(link, "/")
	}

	var endpoint string
	switch msg.ContentType {
	case domainMessage.ContentTypeText:
		endpoint = EndpointSendText
		data["text"] = msg.Message

	case domainMessage.ContentTypeImage:
		endpoint = EndpointSendImage
		data["file"] = map[string]interface{}{
			"mimetype": "image/jpeg",
			"url":      link,
			"filename": "image.jpeg",
		}
		if msg.Message != "" {
			data["caption"] = msg.Message
		}

	case domainMessage.ContentTypeVideo:
		endpoint = EndpointSendVideo
		data["file"] = map[string]interface{}{
			"mimetype": "video/mp4",
			"url":      link,
			"filename": "video.mp4",
		}
		if msg.Message != "" {
			data["caption"] = msg.Message
		}

	case domainMessage.ContentTypeAudio:
		endpoint = EndpointSendVoice
		data["file"] = map[string]interface{}{
			"mimetype": "audio/ogg; codecs=opus",
			"url":      link,
		}

	case domainMessage.ContentTypeDocument:
		endpoint = EndpointSendFile
		data["file"] = map[string]interface{}{
			"url":      link,
			"filename": "document.pdf",
		}
		if msg.Message != "" {
			data["caption"] = msg.Message
		}

	case domainMessage.ContentTypeReaction:
		endpoint = EndpointReaction
		data["messageId"] = msg.ReplyToMessageID
		data["reaction"] = msg.Message

	case domainMessage.ContentTypeLocation:
		endpoint = EndpointSendLocation
		var location domainMessage.Location
		if err := json.Unmarshal([]byte(msg.Message), &location); err != nil {
			return endpoint, nil, domainErrors.NewAppError(err, domainErrors.ValidationError)
		}
		data["latitude"] = location.Latitude
		data["longitude"] = location.Longitude
		data["title"] = location.Title

	case domainMessage.ContentTypeContact:
		endpoint = EndpointSendContact
		contacts, err := decodeContacts(msg.Message)
		if err != nil {
			return endpoint, nil, domainErrors.NewAppError(err, domainErrors.ValidationError)
		}
		data["contacts"] = contacts

	default:
		return "", nil, domainErrors.NewAppError(errors.New("unsupported content type: "+msg.ContentType), domainErrors.ValidationError)
	}

	body, err := json.Marshal(data)
	if err != nil {
		return endpoint, nil, err
	}

	if msg.IsReply && msg.ReplyToMessageID != "" {
		body, err = sjson.SetBytes(body, "reply_to", msg.ReplyToMessageID)
		if err != nil {
			return endpoint, nil, err
		}
	}

	return endpoint, body, nil
}

// decodeContacts accepts a single contact object or an array and always
// forwards a list.
func decodeContacts(raw string) ([]interface{}, error) {
	var list []interface{}
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list, nil
	}
	var single map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &single); err != nil {
		return nil, err
	}
	return []interface{}{single}, nil
}

// markFailed records the failure on the message when it is persisted and
// always appends an audit entry, so a failed send leaves a trace even when
// the error path does not produce a saved message.
func (u *DispatchUseCase) markFailed(msg *domainMessage.Message, endpoint string, sendErr error) {
	msg.Status = domainMessage.StatusFailed
	if msg.ID != 0 {
		if _, err := u.messageRepository.Update(msg.ID, map[string]interface{}{
			"status": domainMessage.StatusFailed,
		}); err != nil {
			u.Logger.Error("Error persisting failed status", zap.Error(err), zap.Int("id", msg.ID))
		}
	}

	_ = u.auditLogRepository.Append(auditlog.TemplateTextMessage, map[string]interface{}{
		"error":    sendErr.Error(),
		"endpoint": endpoint,
		"to":       msg.To,
	})

	u.Logger.Error("Message dispatch failed",
		zap.Error(sendErr),
		zap.String("endpoint", endpoint),
		zap.String("to", msg.To))
}
