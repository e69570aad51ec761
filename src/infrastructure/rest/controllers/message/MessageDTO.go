package message

// SendMessageRequest creates and dispatches one outgoing message
type SendMessageRequest struct {
	To               string `json:"to" binding:"required"`
	Message          string `json:"message"`
	ContentType      string `json:"content_type"`
	Attach           string `json:"attach"`
	IsReply          bool   `json:"is_reply"`
	ReplyToMessageID string `json:"reply_to_message_id"`
	ReferenceDoctype string `json:"reference_doctype"`
	ReferenceName    string `json:"reference_name"`
}

type SendMessageResponse struct {
	ID        int    `json:"id"`
	MessageID string `json:"message_id,omitempty"`
	Status    string `json:"status"`
}

type MessageIDRequest struct {
	ID int `uri:"id" binding:"required"`
}

type MessageStatusRequest struct {
	MessageID string `uri:"message_id" binding:"required"`
}

type MessageStatusResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

type MessageResponse struct {
	ID               int    `json:"id"`
	MessageID        string `json:"message_id,omitempty"`
	Type             string `json:"type"`
	From             string `json:"from,omitempty"`
	To               string `json:"to,omitempty"`
	ProfileName      string `json:"profile_name,omitempty"`
	Message          string `json:"message"`
	ContentType      string `json:"content_type"`
	Attach           string `json:"attach,omitempty"`
	IsReply          bool   `json:"is_reply"`
	ReplyToMessageID string `json:"reply_to_message_id,omitempty"`
	Status           string `json:"status"`
}
