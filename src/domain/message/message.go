package message

import (
	"time"
)

// Direction of a message relative to this application
const (
	DirectionOutgoing = "Outgoing"
	DirectionIncoming = "Incoming"
)

// Content types supported by the gateway
const (
	ContentTypeText     = "text"
	ContentTypeImage    = "image"
	ContentTypeVideo    = "video"
	ContentTypeAudio    = "audio"
	ContentTypeDocument = "document"
	ContentTypeReaction = "reaction"
	ContentTypeLocation = "location"
	ContentTypeContact  = "contact"
)

// Lifecycle statuses. Delivery acknowledgements from the gateway arrive
// with their own names (sent, delivered, read, ...) and are stored as-is.
const (
	StatusQueued       = "Queued"
	StatusSuccess      = "Success"
	StatusFailed       = "Failed"
	StatusRevoked      = "Revoked"
	StatusMarkedAsRead = "marked as read"
)

// RevokedBodyMarker replaces the body of a revoked message
const RevokedBodyMarker = "[Message deleted]"

// Message is the canonical unit of communication
type Message struct {
	ID               int
	MessageID        string // gateway-assigned id, empty until observed
	Type             string // Outgoing | Incoming
	From             string
	To               string
	ProfileName      string
	Message          string // text body or JSON payload for location/contact
	ContentType      string
	Attach           string // attachment URL or application-relative path
	IsReply          bool
	ReplyToMessageID string
	Status           string
	ReferenceDoctype string
	ReferenceName    string
	BulkCampaignID   *int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Location is the structured body of a location message
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Title     string  `json:"title"`
}

// IsMediaContentType reports whether a content type carries a downloadable file
func IsMediaContentType(contentType string) bool {
	switch contentType {
	case ContentTypeImage, ContentTypeVideo, ContentTypeAudio, ContentTypeDocument:
		return true
	}
	return false
}

// GatewaySentStatuses are the statuses counted as "sent" when computing
// campaign progress: the local success status plus the gateway ack names.
var GatewaySentStatuses = []string{"sent", "delivered", StatusSuccess, "read"}
