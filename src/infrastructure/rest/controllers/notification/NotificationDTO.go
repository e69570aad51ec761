package notification

// RuleRequest creates or replaces a notification rule
type RuleRequest struct {
	Name            string   `json:"name" binding:"required"`
	TriggerMode     string   `json:"trigger_mode" binding:"required"`
	ReferenceType   string   `json:"reference_type"`
	DateField       string   `json:"date_field"`
	DaysInAdvance   int      `json:"days_in_advance"`
	Condition       string   `json:"condition"`
	Message         string   `json:"message" binding:"required"`
	Fields          []string `json:"fields"`
	PhoneField      string   `json:"phone_field"`
	AttachmentMode  string   `json:"attachment_mode"`
	Attach          string   `json:"attach"`
	AttachFromField string   `json:"attach_from_field"`
	FileName        string   `json:"file_name"`
	SetField        string   `json:"set_field"`
	SetFieldValue   string   `json:"set_field_value"`
	Disabled        bool     `json:"disabled"`
}

type RuleResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	TriggerMode    string `json:"trigger_mode"`
	ReferenceType  string `json:"reference_type,omitempty"`
	Condition      string `json:"condition,omitempty"`
	Message        string `json:"message"`
	AttachmentMode string `json:"attachment_mode,omitempty"`
	Disabled       bool   `json:"disabled"`
}

type RuleIDRequest struct {
	ID int `uri:"id" binding:"required"`
}

// TriggerRequest fires a rule against one stored record
type TriggerRequest struct {
	RecordType string `json:"record_type" binding:"required"`
	RecordName string `json:"record_name" binding:"required"`
}

// SimpleMessageRequest sends the rule's message to one number directly
type SimpleMessageRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Message     string `json:"message"`
}
