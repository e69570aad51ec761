package message

import (
	"time"

	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	domainMessage "go-whatsapp-gateway-api/src/domain/message"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WhatsAppMessage is the database model for messages
type WhatsAppMessage struct {
	ID               int       `gorm:"primaryKey"`
	MessageID        string    `gorm:"column:message_id;index"`
	Type             string    `gorm:"column:type;index"`
	From             string    `gorm:"column:from_number"`
	To               string    `gorm:"column:to_number"`
	ProfileName      string    `gorm:"column:profile_name"`
	Message          string    `gorm:"column:message;type:text"`
	ContentType      string    `gorm:"column:content_type"`
	Attach           string    `gorm:"column:attach"`
	IsReply          bool      `gorm:"column:is_reply;default:false"`
	ReplyToMessageID string    `gorm:"column:reply_to_message_id"`
	Status           string    `gorm:"column:status;index"`
	ReferenceDoctype string    `gorm:"column:reference_doctype;index:idx_reference"`
	ReferenceName    string    `gorm:"column:reference_name;index:idx_reference"`
	BulkCampaignID   *int      `gorm:"column:bulk_campaign_id;index"`
	CreatedAt        time.Time `gorm:"autoCreateTime:mili"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime:mili"`
}

func (WhatsAppMessage) TableName() string {
	return "whatsapp_messages"
}

var ColumnsMessageMapping = map[string]string{
	"id":               "id",
	"messageID":        "message_id",
	"type":             "type",
	"from":             "from_number",
	"to":               "to_number",
	"profileName":      "profile_name",
	"message":          "message",
	"contentType":      "content_type",
	"attach":           "attach",
	"isReply":          "is_reply",
	"replyToMessageID": "reply_to_message_id",
	"status":           "status",
	"referenceDoctype": "reference_doctype",
	"referenceName":    "reference_name",
	"bulkCampaignID":   "bulk_campaign_id",
}

// MessageRepositoryInterface defines the message repository operations
type MessageRepositoryInterface interface {
	Create(messageDomain *domainMessage.Message) (*domainMessage.Message, error)
	GetByID(id int) (*domainMessage.Message, error)
	GetByMessageID(messageID string) (*domainMessage.Message, error)
	Update(id int, messageMap map[string]interface{}) (*domainMessage.Message, error)
	GetQueuedOutgoing(limit int) (*[]domainMessage.Message, error)
	GetByCampaignAndStatus(campaignID int, status string) (*[]domainMessage.Message, error)
	CountByCampaignAndStatuses(campaignID int, statuses []string) (int, error)
}

type MessageRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewMessageRepository(db *gorm.DB, loggerInstance *logger.Logger) MessageRepositoryInterface {
	return &MessageRepository{DB: db, Logger: loggerInstance}
}

func (r *MessageRepository) Create(messageDomain *domainMessage.Message) (*domainMessage.Message, error) {
	messageModel := messageFromDomainMapper(messageDomain)
	if err := r.DB.Create(messageModel).Error; err != nil {
		r.Logger.Error("Error creating message", zap.Error(err), zap.String("to", messageDomain.To))
		return &domainMessage.Message{}, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return messageModel.toDomainMapper(), nil
}

func (r *MessageRepository) GetByID(id int) (*domainMessage.Message, error) {
	var messageModel WhatsAppMessage
	err := r.DB.Where("id = ?", id).First(&messageModel).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			r.Logger.Warn("Message not found", zap.Int("id", id))
			err = domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		} else {
			r.Logger.Error("Error getting message by ID", zap.Error(err), zap.Int("id", id))
			err = domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
		}
		return &domainMessage.Message{}, err
	}
	return messageModel.toDomainMapper(), nil
}

// GetByMessageID looks up the single stored message carrying a gateway
// message id. The column is indexed; with duplicates the first row wins.
func (r *MessageRepository) GetByMessageID(messageID string) (*domainMessage.Message, error) {
	var messageModel WhatsAppMessage
	err := r.DB.Where("message_id = ?", messageID).First(&messageModel).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting message by gateway id", zap.Error(err), zap.String("messageID", messageID))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return messageModel.toDomainMapper(), nil
}

func (r *MessageRepository) Update(id int, messageMap map[string]interface{}) (*domainMessage.Message, error) {
	var messageModel WhatsAppMessage
	messageModel.ID = id

	updateData := make(map[string]interface{})
	for k, v := range messageMap {
		if column, ok := ColumnsMessageMapping[k]; ok {
			updateData[column] = v
		} else {
			updateData[k] = v
		}
	}

	if err := r.DB.Model(&messageModel).Updates(updateData).Error; err != nil {
		r.Logger.Error("Error updating message", zap.Error(err), zap.Int("id", id))
		return &domainMessage.Message{}, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	if err := r.DB.Where("id = ?", id).First(&messageModel).Error; err != nil {
		r.Logger.Error("Error retrieving updated message", zap.Error(err), zap.Int("id", id))
		return &domainMessage.Message{}, err
	}
	return messageModel.toDomainMapper(), nil
}

// GetQueuedOutgoing retrieves outgoing messages waiting to be dispatched
func (r *MessageRepository) GetQueuedOutgoing(limit int) (*[]domainMessage.Message, error) {
	var messageModels []WhatsAppMessage
	if err := r.DB.Where("type = ? AND status = ?", domainMessage.DirectionOutgoing, domainMessage.StatusQueued).
		Limit(limit).
		Find(&messageModels).Error; err != nil {
		r.Logger.Error("Error getting queued outgoing messages", zap.Error(err))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return messageArrayToDomainMapper(&messageModels), nil
}

func (r *MessageRepository) GetByCampaignAndStatus(campaignID int, status string) (*[]domainMessage.Message, error) {
	var messageModels []WhatsAppMessage
	if err := r.DB.Where("bulk_campaign_id = ? AND status = ?", campaignID, status).
		Find(&messageModels).Error; err != nil {
		r.Logger.Error("Error getting campaign messages", zap.Error(err), zap.Int("campaignID", campaignID))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return messageArrayToDomainMapper(&messageModels), nil
}

func (r *MessageRepository) CountByCampaignAndStatuses(campaignID int, statuses []string) (int, error) {
	var count int64
	err := r.DB.Model(&WhatsAppMessage{}).
		Where("bulk_campaign_id = ? AND status IN (?)", campaignID, statuses).
		Count(&count).Error
	if err != nil {
		r.Logger.Error("Error counting campaign messages", zap.Error(err), zap.Int("campaignID", campaignID))
		return 0, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return int(count), nil
}

// Mappers
func (m *WhatsAppMessage) toDomainMapper() *domainMessage.Message {
	return &domainMessage.Message{
		ID:               m.ID,
		MessageID:        m.MessageID,
		Type:             m.Type,
		From:             m.From,
		To:               m.To,
		ProfileName:      m.ProfileName,
		Message:          m.Message,
		ContentType:      m.ContentType,
		Attach:           m.Attach,
		IsReply:          m.IsReply,
		ReplyToMessageID: m.ReplyToMessageID,
		Status:           m.Status,
		ReferenceDoctype: m.ReferenceDoctype,
		ReferenceName:    m.ReferenceName,
		BulkCampaignID:   m.BulkCampaignID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func messageFromDomainMapper(m *domainMessage.Message) *WhatsAppMessage {
	return &WhatsAppMessage{
		ID:               m.ID,
		MessageID:        m.MessageID,
		Type:             m.Type,
		From:             m.From,
		To:               m.To,
		ProfileName:      m.ProfileName,
		Message:          m.Message,
		ContentType:      m.ContentType,
		Attach:           m.Attach,
		IsReply:          m.IsReply,
		ReplyToMessageID: m.ReplyToMessageID,
		Status:           m.Status,
		ReferenceDoctype: m.ReferenceDoctype,
		ReferenceName:    m.ReferenceName,
		BulkCampaignID:   m.BulkCampaignID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func messageArrayToDomainMapper(messageModels *[]WhatsAppMessage) *[]domainMessage.Message {
	messages := make([]domainMessage.Message, len(*messageModels))
	for i, messageModel := range *messageModels {
		messages[i] = *messageModel.toDomainMapper()
	}
	return &messages
}
