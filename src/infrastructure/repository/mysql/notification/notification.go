package notification

import (
	"encoding/json"
	"time"

	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	domainNotification "go-whatsapp-gateway-api/src/domain/notification"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationRule is the database model for notification triggers
type NotificationRule struct {
	ID              int       `gorm:"primaryKey"`
	Name            string    `gorm:"column:name;uniqueIndex"`
	TriggerMode     string    `gorm:"column:trigger_mode;index"`
	ReferenceType   string    `gorm:"column:reference_type"`
	DateField       string    `gorm:"column:date_field"`
	DaysInAdvance   int       `gorm:"column:days_in_advance;default:0"`
	Condition       string    `gorm:"column:condition_expr;type:text"`
	Message         string    `gorm:"column:message;type:text"`
	Fields          string    `gorm:"column:fields;type:text"` // JSON array of field names
	PhoneField      string    `gorm:"column:phone_field"`
	AttachmentMode  string    `gorm:"column:attachment_mode"`
	Attach          string    `gorm:"column:attach"`
	AttachFromField string    `gorm:"column:attach_from_field"`
	FileName        string    `gorm:"column:file_name"`
	SetField        string    `gorm:"column:set_field"`
	SetFieldValue   string    `gorm:"column:set_field_value"`
	Disabled        bool      `gorm:"column:disabled;default:false"`
	CreatedAt       time.Time `gorm:"autoCreateTime:mili"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:mili"`
}

func (NotificationRule) TableName() string {
	return "whatsapp_notification_rules"
}

// RuleRepositoryInterface defines the notification rule repository operations
type RuleRepositoryInterface interface {
	Create(ruleDomain *domainNotification.Rule) (*domainNotification.Rule, error)
	GetByID(id int) (*domainNotification.Rule, error)
	Update(id int, ruleMap map[string]interface{}) (*domainNotification.Rule, error)
	Delete(id int) error
	GetScheduledRules() (*[]domainNotification.Rule, error)
}

type RuleRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewRuleRepository(db *gorm.DB, loggerInstance *logger.Logger) RuleRepositoryInterface {
	return &RuleRepository{DB: db, Logger: loggerInstance}
}

func (r *RuleRepository) Create(ruleDomain *domainNotification.Rule) (*domainNotification.Rule, error) {
	ruleModel := ruleFromDomainMapper(ruleDomain)
	if err := r.DB.Create(ruleModel).Error; err != nil {
		r.Logger.Error("Error creating notification rule", zap.Error(err), zap.String("name", ruleDomain.Name))
		return &domainNotification.Rule{}, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return ruleModel.toDomainMapper(), nil
}

func (r *RuleRepository) GetByID(id int) (*domainNotification.Rule, error) {
	var ruleModel NotificationRule
	err := r.DB.Where("id = ?", id).First(&ruleModel).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			r.Logger.Warn("Notification rule not found", zap.Int("id", id))
			err = domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		} else {
			r.Logger.Error("Error getting notification rule", zap.Error(err), zap.Int("id", id))
			err = domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
		}
		return &domainNotification.Rule{}, err
	}
	return ruleModel.toDomainMapper(), nil
}

func (r *RuleRepository) Update(id int, ruleMap map[string]interface{}) (*domainNotification.Rule, error) {
	var ruleModel NotificationRule
	ruleModel.ID = id

	if err := r.DB.Model(&ruleModel).Updates(ruleMap).Error; err != nil {
		r.Logger.Error("Error updating notification rule", zap.Error(err), zap.Int("id", id))
		return &domainNotification.Rule{}, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	if err := r.DB.Where("id = ?", id).First(&ruleModel).Error; err != nil {
		return &domainNotification.Rule{}, err
	}
	return ruleModel.toDomainMapper(), nil
}

func (r *RuleRepository) Delete(id int) error {
	result := r.DB.Delete(&NotificationRule{}, id)
	if result.Error != nil {
		r.Logger.Error("Error deleting notification rule", zap.Error(result.Error), zap.Int("id", id))
		return domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	if result.RowsAffected == 0 {
		return domainErrors.NewAppErrorWithType(domainErrors.NotFound)
	}
	return nil
}

// GetScheduledRules returns every enabled Days Before / Days After rule
func (r *RuleRepository) GetScheduledRules() (*[]domainNotification.Rule, error) {
	var ruleModels []NotificationRule
	err := r.DB.Where("trigger_mode IN (?) AND disabled = ?",
		[]string{domainNotification.TriggerDaysBefore, domainNotification.TriggerDaysAfter}, false).
		Find(&ruleModels).Error
	if err != nil {
		r.Logger.Error("Error getting scheduled rules", zap.Error(err))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return ruleArrayToDomainMapper(&ruleModels), nil
}

// Mappers
func (n *NotificationRule) toDomainMapper() *domainNotification.Rule {
	var fields []string
	if n.Fields != "" {
		_ = json.Unmarshal([]byte(n.Fields), &fields)
	}
	return &domainNotification.Rule{
		ID:              n.ID,
		Name:            n.Name,
		TriggerMode:     n.TriggerMode,
		ReferenceType:   n.ReferenceType,
		DateField:       n.DateField,
		DaysInAdvance:   n.DaysInAdvance,
		Condition:       n.Condition,
		Message:         n.Message,
		Fields:          fields,
		PhoneField:      n.PhoneField,
		AttachmentMode:  n.AttachmentMode,
		Attach:          n.Attach,
		AttachFromField: n.AttachFromField,
		FileName:        n.FileName,
		SetField:        n.SetField,
		SetFieldValue:   n.SetFieldValue,
		Disabled:        n.Disabled,
		CreatedAt:       n.CreatedAt,
		UpdatedAt:       n.UpdatedAt,
	}
}

func ruleFromDomainMapper(n *domainNotification.Rule) *NotificationRule {
	fields, _ := json.Marshal(n.Fields)
	return &NotificationRule{
		ID:              n.ID,
		Name:            n.Name,
		TriggerMode:     n.TriggerMode,
		ReferenceType:   n.ReferenceType,
		DateField:       n.DateField,
		DaysInAdvance:   n.DaysInAdvance,
		Condition:       n.Condition,
		Message:         n.Message,
		Fields:          string(fields),
		PhoneField:      n.PhoneField,
		AttachmentMode:  n.AttachmentMode,
		Attach:          n.Attach,
		AttachFromField: n.AttachFromField,
		FileName:        n.FileName,
		SetField:        n.SetField,
		SetFieldValue:   n.SetFieldValue,
		Disabled:        n.Disabled,
		CreatedAt:       n.CreatedAt,
		UpdatedAt:       n.UpdatedAt,
	}
}

func ruleArrayToDomainMapper(ruleModels *[]NotificationRule) *[]domainNotification.Rule {
	rules := make([]domainNotification.Rule, len(*ruleModels))
	for i, ruleModel := range *ruleModels {
		rules[i] = *ruleModel.toDomainMapper()
	}
	return &rules
}
