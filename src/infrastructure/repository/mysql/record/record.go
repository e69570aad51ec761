package record

import (
	"encoding/json"
	"time"

	domainErrors "go-whatsapp-gateway-api/src/domain/errors"
	domainNotification "go-whatsapp-gateway-api/src/domain/notification"
	logger "go-whatsapp-gateway-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Record is the database model for business records notification rules
// trigger against. Field values live in a JSON document so any record type
// can be stored without schema migrations.
type Record struct {
	ID         int       `gorm:"primaryKey"`
	RecordType string    `gorm:"column:record_type;index:idx_record_type_name"`
	Name       string    `gorm:"column:name;index:idx_record_type_name"`
	Fields     string    `gorm:"column:fields;type:json"`
	CreatedAt  time.Time `gorm:"autoCreateTime:mili"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:mili"`
}

func (Record) TableName() string {
	return "records"
}

// SchemaField is the database model for record type schemas
type SchemaField struct {
	ID         int    `gorm:"primaryKey"`
	RecordType string `gorm:"column:record_type;index"`
	FieldName  string `gorm:"column:field_name"`
	FieldType  string `gorm:"column:field_type"`
}

func (SchemaField) TableName() string {
	return "record_schema_fields"
}

// RecordRepositoryInterface defines the record store operations the
// notification engine needs.
type RecordRepositoryInterface interface {
	GetByName(recordType string, name string) (*domainNotification.Record, error)
	GetByDateFieldRange(recordType string, dateField string, start time.Time, end time.Time) (*[]domainNotification.Record, error)
	SetField(recordType string, name string, field string, value interface{}) error
	GetSchemaFields(recordType string) ([]domainNotification.SchemaField, error)
	HasField(recordType string, fieldName string) (bool, error)
}

type RecordRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewRecordRepository(db *gorm.DB, loggerInstance *logger.Logger) RecordRepositoryInterface {
	return &RecordRepository{DB: db, Logger: loggerInstance}
}

func (r *RecordRepository) GetByName(recordType string, name string) (*domainNotification.Record, error) {
	var recordModel Record
	err := r.DB.Where("record_type = ? AND name = ?", recordType, name).First(&recordModel).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting record", zap.Error(err), zap.String("recordType", recordType), zap.String("name", name))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return recordModel.toDomainMapper(), nil
}

// GetByDateFieldRange returns records whose JSON date field lies inside the
// given window. The value is extracted in SQL so the filtering stays in the
// store.
func (r *RecordRepository) GetByDateFieldRange(recordType string, dateField string, start time.Time, end time.Time) (*[]domainNotification.Record, error) {
	var recordModels []Record
	err := r.DB.Where(
		"record_type = ? AND JSON_UNQUOTE(JSON_EXTRACT(fields, CONCAT('$.', ?))) BETWEEN ? AND ?",
		recordType, dateField,
		start.Format("2006-01-02 15:04:05"),
		end.Format("2006-01-02 15:04:05"),
	).Find(&recordModels).Error
	if err != nil {
		r.Logger.Error("Error querying records by date field",
			zap.Error(err),
			zap.String("recordType", recordType),
			zap.String("dateField", dateField))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}

	records := make([]domainNotification.Record, len(recordModels))
	for i, recordModel := range recordModels {
		records[i] = *recordModel.toDomainMapper()
	}
	return &records, nil
}

// SetField performs an atomic point update of a single field inside the
// record's JSON document.
func (r *RecordRepository) SetField(recordType string, name string, field string, value interface{}) error {
	err := r.DB.Model(&Record{}).
		Where("record_type = ? AND name = ?", recordType, name).
		Update("fields", gorm.Expr("JSON_SET(fields, CONCAT('$.', ?), ?)", field, value)).Error
	if err != nil {
		r.Logger.Error("Error setting record field",
			zap.Error(err),
			zap.String("recordType", recordType),
			zap.String("name", name),
			zap.String("field", field))
		return domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return nil
}

func (r *RecordRepository) GetSchemaFields(recordType string) ([]domainNotification.SchemaField, error) {
	var fieldModels []SchemaField
	if err := r.DB.Where("record_type = ?", recordType).Find(&fieldModels).Error; err != nil {
		r.Logger.Error("Error getting schema fields", zap.Error(err), zap.String("recordType", recordType))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}

	fields := make([]domainNotification.SchemaField, len(fieldModels))
	for i, fieldModel := range fieldModels {
		fields[i] = domainNotification.SchemaField{
			Name: fieldModel.FieldName,
			Type: fieldModel.FieldType,
		}
	}
	return fields, nil
}

func (r *RecordRepository) HasField(recordType string, fieldName string) (bool, error) {
	var count int64
	err := r.DB.Model(&SchemaField{}).
		Where("record_type = ? AND field_name = ?", recordType, fieldName).
		Count(&count).Error
	if err != nil {
		r.Logger.Error("Error checking schema field", zap.Error(err), zap.String("recordType", recordType))
		return false, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	return count > 0, nil
}

func (rec *Record) toDomainMapper() *domainNotification.Record {
	fields := map[string]interface{}{}
	if rec.Fields != "" {
		_ = json.Unmarshal([]byte(rec.Fields), &fields)
	}
	return &domainNotification.Record{
		RecordType: rec.RecordType,
		Name:       rec.Name,
		Fields:     fields,
	}
}
