package attachment

import (
	"time"

	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Attachment is the database model linking stored media files to messages
type Attachment struct {
	ID              int       `gorm:"primaryKey"`
	FileName        string    `gorm:"column:file_name"`
	FileURL         string    `gorm:"column:file_url"`
	FilePath        string    `gorm:"column:file_path"`
	Mimetype        string    `gorm:"column:mimetype"`
	Size            int       `gorm:"column:size"`
	AttachedToID    int       `gorm:"column:attached_to_id;index"`
	AttachedToField string    `gorm:"column:attached_to_field"`
	CreatedAt       time.Time `gorm:"autoCreateTime:mili"`
}

func (Attachment) TableName() string {
	return "whatsapp_attachments"
}

// AttachmentRepositoryInterface defines attachment persistence operations
type AttachmentRepositoryInterface interface {
	Create(attachment *Attachment) (*Attachment, error)
	GetByMessageID(messageID int) (*[]Attachment, error)
}

type AttachmentRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewAttachmentRepository(db *gorm.DB, loggerInstance *logger.Logger) AttachmentRepositoryInterface {
	return &AttachmentRepository{DB: db, Logger: loggerInstance}
}

func (r *AttachmentRepository) Create(attachment *Attachment) (*Attachment, error) {
	if err := r.DB.Create(attachment).Error; err != nil {
		r.Logger.Error("Error creating attachment", zap.Error(err), zap.String("fileName", attachment.FileName))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return attachment, nil
}

func (r *AttachmentRepository) GetByMessageID(messageID int) (*[]Attachment, error) {
	var attachments []Attachment
	if err := r.DB.Where("attached_to_id = ?", messageID).Find(&attachments).Error; err != nil {
		r.Logger.Error("Error getting attachments", zap.Error(err), zap.Int("messageID", messageID))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return &attachments, nil
}
