package notification

import (
	"time"
)

// Trigger modes
const (
	TriggerRecordEvent = "Record Event"
	TriggerDaysBefore  = "Days Before"
	TriggerDaysAfter   = "Days After"
)

// Attachment modes
const (
	AttachmentNone          = "None"
	AttachmentDocumentPrint = "Document Print"
	AttachmentCustom        = "Custom Attachment"
)

// Rule is a configured notification trigger bound to a record type or a schedule
type Rule struct {
	ID              int
	Name            string
	TriggerMode     string // Record Event | Days Before | Days After
	ReferenceType   string
	DateField       string // date field driving scheduled triggers
	DaysInAdvance   int
	Condition       string // restricted expression evaluated against the record
	Message         string // template with {{field}} placeholders
	Fields          []string
	PhoneField      string
	AttachmentMode  string
	Attach          string // static file for custom attachments
	AttachFromField string
	FileName        string
	SetField        string // field written on the record after a successful send
	SetFieldValue   string
	Disabled        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Record is a snapshot of a business record a rule triggers against
type Record struct {
	RecordType string
	Name       string
	Fields     map[string]interface{}
}

// SchemaField describes one field of a record type's schema
type SchemaField struct {
	Name string
	Type string
}

// NumericFieldTypes are the schema types coerced to integers when a rule
// writes its post-send value back onto the record.
var NumericFieldTypes = map[string]bool{
	"Int":      true,
	"Float":    true,
	"Currency": true,
	"Percent":  true,
}
