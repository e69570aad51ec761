package campaign

import (
	"time"

	domainCampaign "go-whatsapp-gateway-api/src/domain/campaign"
	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BulkCampaign is the database model for bulk send jobs
type BulkCampaign struct {
	ID              int       `gorm:"primaryKey"`
	Name            string    `gorm:"column:name"`
	RecipientType   string    `gorm:"column:recipient_type"`
	RecipientListID *int      `gorm:"column:recipient_list_id;index"`
	MessageContent  string    `gorm:"column:message_content;type:text"`
	ContentType     string    `gorm:"column:content_type"`
	Attach          string    `gorm:"column:attach"`
	Status          string    `gorm:"column:status;index"`
	RecipientCount  int       `gorm:"column:recipient_count;default:0"`
	SentCount       int       `gorm:"column:sent_count;default:0"`
	CreatedAt       time.Time `gorm:"autoCreateTime:mili"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:mili"`
}

func (BulkCampaign) TableName() string {
	return "bulk_campaigns"
}

// Recipient is the database model for campaign targets and list members
type Recipient struct {
	ID              int       `gorm:"primaryKey"`
	CampaignID      *int      `gorm:"column:campaign_id;index"`
	RecipientListID *int      `gorm:"column:recipient_list_id;index"`
	MobileNumber    string    `gorm:"column:mobile_number"`
	RecipientName   string    `gorm:"column:recipient_name"`
	RecipientData   string    `gorm:"column:recipient_data;type:text"`
	CreatedAt       time.Time `gorm:"autoCreateTime:mili"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:mili"`
}

func (Recipient) TableName() string {
	return "whatsapp_recipients"
}

// RecipientList is the database model for named recipient lists
type RecipientList struct {
	ID        int       `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime:mili"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:mili"`
}

func (RecipientList) TableName() string {
	return "whatsapp_recipient_lists"
}

var ColumnsCampaignMapping = map[string]string{
	"id":              "id",
	"name":            "name",
	"recipientType":   "recipient_type",
	"recipientListID": "recipient_list_id",
	"messageContent":  "message_content",
	"contentType":     "content_type",
	"attach":          "attach",
	"status":          "status",
	"recipientCount":  "recipient_count",
	"sentCount":       "sent_count",
}

// CampaignRepositoryInterface defines the campaign repository operations
type CampaignRepositoryInterface interface {
	Create(campaignDomain *domainCampaign.BulkCampaign) (*domainCampaign.BulkCampaign, error)
	GetByID(id int) (*domainCampaign.BulkCampaign, error)
	Update(id int, campaignMap map[string]interface{}) (*domainCampaign.BulkCampaign, error)
	SetStatus(id int, status string) error
	IncrementSentCount(id int) (*domainCampaign.BulkCampaign, error)
	GetRecipients(campaignDomain *domainCampaign.BulkCampaign) (*[]domainCampaign.Recipient, error)
	CountListRecipients(listID int) (int, error)
	AddRecipient(recipientDomain *domainCampaign.Recipient) (*domainCampaign.Recipient, error)
	CreateRecipientList(listDomain *domainCampaign.RecipientList) (*domainCampaign.RecipientList, error)
	GetRecipientListByID(id int) (*domainCampaign.RecipientList, error)
}

type CampaignRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewCampaignRepository(db *gorm.DB, loggerInstance *logger.Logger) CampaignRepositoryInterface {
	return &CampaignRepository{DB: db, Logger: loggerInstance}
}

func (r *CampaignRepository) Create(campaignDomain *domainCampaign.BulkCampaign) (*domainCampaign.BulkCampaign, error) {
	campaignModel := campaignFromDomainMapper(campaignDomain)
	if err := r.DB.Create(campaignModel).Error; err != nil {
		r.Logger.Error("Error creating campaign", zap.Error(err), zap.String("name", campaignDomain.Name))
		return &domainCampaign.BulkCampaign{}, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return campaignModel.toDomainMapper(), nil
}

func (r *CampaignRepository) GetByID(id int) (*domainCampaign.BulkCampaign, error) {
	var campaignModel BulkCampaign
	err := r.DB.Where("id = ?", id).First(&campaignModel).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			r.Logger.Warn("Campaign not found", zap.Int("id", id))
			err = domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		} else {
			r.Logger.Error("Error getting campaign by ID", zap.Error(err), zap.Int("id", id))
			err = domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
		}
		return &domainCampaign.BulkCampaign{}, err
	}
	return campaignModel.toDomainMapper(), nil
}

func (r *CampaignRepository) Update(id int, campaignMap map[string]interface{}) (*domainCampaign.BulkCampaign, error) {
	var campaignModel BulkCampaign
	campaignModel.ID = id

	updateData := make(map[string]interface{})
	for k, v := range campaignMap {
		if column, ok := ColumnsCampaignMapping[k]; ok {
			updateData[column] = v
		} else {
			updateData[k] = v
		}
	}

	if err := r.DB.Model(&campaignModel).Updates(updateData).Error; err != nil {
		r.Logger.Error("Error updating campaign", zap.Error(err), zap.Int("id", id))
		return &domainCampaign.BulkCampaign{}, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	if err := r.DB.Where("id = ?", id).First(&campaignModel).Error; err != nil {
		return &domainCampaign.BulkCampaign{}, err
	}
	return campaignModel.toDomainMapper(), nil
}

// SetStatus is a point update that does not touch the counters
func (r *CampaignRepository) SetStatus(id int, status string) error {
	err := r.DB.Model(&BulkCampaign{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		r.Logger.Error("Error setting campaign status", zap.Error(err), zap.Int("id", id), zap.String("status", status))
		return domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return nil
}

// IncrementSentCount bumps sent_count atomically at the store layer so that
// concurrent per-recipient tasks cannot lose increments, then returns the
// fresh row.
func (r *CampaignRepository) IncrementSentCount(id int) (*domainCampaign.BulkCampaign, error) {
	err := r.DB.Model(&BulkCampaign{}).
		Where("id = ?", id).
		UpdateColumn("sent_count", gorm.Expr("sent_count + ?", 1)).Error
	if err != nil {
		r.Logger.Error("Error incrementing sent count", zap.Error(err), zap.Int("id", id))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}

	var campaignModel BulkCampaign
	if err := r.DB.Where("id = ?", id).First(&campaignModel).Error; err != nil {
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return campaignModel.toDomainMapper(), nil
}

// GetRecipients resolves a campaign's targets from its inline recipients or
// from the members of its named recipient list.
func (r *CampaignRepository) GetRecipients(campaignDomain *domainCampaign.BulkCampaign) (*[]domainCampaign.Recipient, error) {
	var recipientModels []Recipient
	query := r.DB
	if campaignDomain.RecipientType == domainCampaign.RecipientTypeList && campaignDomain.RecipientListID != nil {
		query = query.Where("recipient_list_id = ?", *campaignDomain.RecipientListID)
	} else {
		query = query.Where("campaign_id = ?", campaignDomain.ID)
	}

	if err := query.Find(&recipientModels).Error; err != nil {
		r.Logger.Error("Error getting campaign recipients", zap.Error(err), zap.Int("campaignID", campaignDomain.ID))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return recipientArrayToDomainMapper(&recipientModels), nil
}

func (r *CampaignRepository) CountListRecipients(listID int) (int, error) {
	var count int64
	err := r.DB.Model(&Recipient{}).
		Where("recipient_list_id = ?", listID).
		Count(&count).Error
	if err != nil {
		r.Logger.Error("Error counting list recipients", zap.Error(err), zap.Int("listID", listID))
		return 0, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return int(count), nil
}

func (r *CampaignRepository) AddRecipient(recipientDomain *domainCampaign.Recipient) (*domainCampaign.Recipient, error) {
	recipientModel := recipientFromDomainMapper(recipientDomain)
	if err := r.DB.Create(recipientModel).Error; err != nil {
		r.Logger.Error("Error adding recipient", zap.Error(err), zap.String("mobileNumber", recipientDomain.MobileNumber))
		return &domainCampaign.Recipient{}, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return recipientModel.toDomainMapper(), nil
}

func (r *CampaignRepository) CreateRecipientList(listDomain *domainCampaign.RecipientList) (*domainCampaign.RecipientList, error) {
	listModel := &RecipientList{Name: listDomain.Name}
	if err := r.DB.Create(listModel).Error; err != nil {
		r.Logger.Error("Error creating recipient list", zap.Error(err), zap.String("name", listDomain.Name))
		return &domainCampaign.RecipientList{}, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return listModel.toDomainMapper(), nil
}

func (r *CampaignRepository) GetRecipientListByID(id int) (*domainCampaign.RecipientList, error) {
	var listModel RecipientList
	err := r.DB.Where("id = ?", id).First(&listModel).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			err = domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		} else {
			r.Logger.Error("Error getting recipient list", zap.Error(err), zap.Int("id", id))
			err = domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
		}
		return &domainCampaign.RecipientList{}, err
	}
	return listModel.toDomainMapper(), nil
}

// Mappers
func (l *RecipientList) toDomainMapper() *domainCampaign.RecipientList {
	return &domainCampaign.RecipientList{
		ID:        l.ID,
		Name:      l.Name,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func (c *BulkCampaign) toDomainMapper() *domainCampaign.BulkCampaign {
	return &domainCampaign.BulkCampaign{
		ID:              c.ID,
		Name:            c.Name,
		RecipientType:   c.RecipientType,
		RecipientListID: c.RecipientListID,
		MessageContent:  c.MessageContent,
		ContentType:     c.ContentType,
		Attach:          c.Attach,
		Status:          c.Status,
		RecipientCount:  c.RecipientCount,
		SentCount:       c.SentCount,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func campaignFromDomainMapper(c *domainCampaign.BulkCampaign) *BulkCampaign {
	return &BulkCampaign{
		ID:              c.ID,
		Name:            c.Name,
		RecipientType:   c.RecipientType,
		RecipientListID: c.RecipientListID,
		MessageContent:  c.MessageContent,
		ContentType:     c.ContentType,
		Attach:          c.Attach,
		Status:          c.Status,
		RecipientCount:  c.RecipientCount,
		SentCount:       c.SentCount,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (rec *Recipient) toDomainMapper() *domainCampaign.Recipient {
	return &domainCampaign.Recipient{
		ID:              rec.ID,
		CampaignID:      rec.CampaignID,
		RecipientListID: rec.RecipientListID,
		MobileNumber:    rec.MobileNumber,
		RecipientName:   rec.RecipientName,
		RecipientData:   rec.RecipientData,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

func recipientFromDomainMapper(rec *domainCampaign.Recipient) *Recipient {
	return &Recipient{
		ID:              rec.ID,
		CampaignID:      rec.CampaignID,
		RecipientListID: rec.RecipientListID,
		MobileNumber:    rec.MobileNumber,
		RecipientName:   rec.RecipientName,
		RecipientData:   rec.RecipientData,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

func recipientArrayToDomainMapper(recipientModels *[]Recipient) *[]domainCampaign.Recipient {
	recipients := make([]domainCampaign.Recipient, len(*recipientModels))
	for i, recipientModel := range *recipientModels {
		recipients[i] = *recipientModel.toDomainMapper()
	}
	return &recipients
}
