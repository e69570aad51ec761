package auditlog

import (
	"encoding/json"
	"time"

	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Log template names
const (
	TemplateWebhook       = "Webhook"
	TemplateNotification  = "Notification"
	TemplateTextMessage   = "Text Message"
	TemplateSessionStatus = "Session Status"
)

// NotificationLog is the database model for the audit log: one row per
// webhook receipt, gateway failure, or notification dispatch outcome.
type NotificationLog struct {
	ID        int       `gorm:"primaryKey"`
	Template  string    `gorm:"column:template;index"`
	MetaData  string    `gorm:"column:meta_data;type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime:mili"`
}

func (NotificationLog) TableName() string {
	return "whatsapp_notification_logs"
}

// AuditLogRepositoryInterface defines the audit log operations
type AuditLogRepositoryInterface interface {
	Append(template string, metadata interface{}) error
}

type AuditLogRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewAuditLogRepository(db *gorm.DB, loggerInstance *logger.Logger) AuditLogRepositoryInterface {
	return &AuditLogRepository{DB: db, Logger: loggerInstance}
}

// Append serializes metadata and stores an audit row. Audit failures are
// logged but never propagated so they cannot mask the event being audited.
func (r *AuditLogRepository) Append(template string, metadata interface{}) error {
	data, err := json.Marshal(metadata)
	if err != nil {
		r.Logger.Error("Error serializing audit metadata", zap.Error(err), zap.String("template", template))
		data = []byte(`{}`)
	}

	entry := &NotificationLog{
		Template: template,
		MetaData: string(data),
	}
	if err := r.DB.Create(entry).Error; err != nil {
		r.Logger.Error("Error appending audit log", zap.Error(err), zap.String("template", template))
		return domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return nil
}
