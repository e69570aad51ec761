package campaign

// RecipientRequest is one campaign target or list member
type RecipientRequest struct {
	MobileNumber  string `json:"mobile_number" binding:"required"`
	RecipientName string `json:"recipient_name"`
	RecipientData string `json:"recipient_data"`
}

type CreateCampaignRequest struct {
	Name            string             `json:"name" binding:"required"`
	RecipientType   string             `json:"recipient_type"`
	RecipientListID *int               `json:"recipient_list_id"`
	MessageContent  string             `json:"message_content" binding:"required"`
	ContentType     string             `json:"content_type"`
	Attach          string             `json:"attach"`
	Recipients      []RecipientRequest `json:"recipients"`
}

type CampaignResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	RecipientCount int    `json:"recipient_count"`
	SentCount      int    `json:"sent_count"`
}

type CampaignIDRequest struct {
	ID int `uri:"id" binding:"required"`
}

type RetryResponse struct {
	Requeued int `json:"requeued"`
}

type CreateRecipientListRequest struct {
	Name    string             `json:"name" binding:"required"`
	Members []RecipientRequest `json:"members" binding:"required"`
}

type RecipientListResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
