package campaign

import (
	"time"
)

// Campaign statuses
const (
	StatusDraft           = "Draft"
	StatusQueued          = "Queued"
	StatusInProgress      = "In Progress"
	StatusCompleted       = "Completed"
	StatusPartiallyFailed = "Partially Failed"
)

// Recipient source types
const (
	RecipientTypeInline = "Inline"
	RecipientTypeList   = "Recipient List"
)

// BulkCampaign is a one-to-many send job
type BulkCampaign struct {
	ID              int
	Name            string
	RecipientType   string // Inline | Recipient List
	RecipientListID *int
	MessageContent  string // template with {{field}} placeholders
	ContentType     string
	Attach          string // shared attachment for every recipient
	Status          string
	RecipientCount  int
	SentCount       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Recipient is a single target of a campaign, either attached inline to a
// campaign or belonging to a named recipient list.
type Recipient struct {
	ID              int
	CampaignID      *int
	RecipientListID *int
	MobileNumber    string
	RecipientName   string
	RecipientData   string // JSON object of per-recipient template variables
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RecipientList is a named, reusable set of recipients
type RecipientList struct {
	ID        int
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Progress is a point-in-time snapshot of a campaign's send accounting
type Progress struct {
	Total   int     `json:"total"`
	Sent    int     `json:"sent"`
	Failed  int     `json:"failed"`
	Queued  int     `json:"queued"`
	Percent float64 `json:"percent"`
}
