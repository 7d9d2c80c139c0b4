package dto

type SendMessageRequest struct {
	Content   string   `json:"content"`
	Type      string   `json:"type"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

type SendStatusUpdateRequest struct {
	OldStatus      string `json:"old_status" validate:"required"`
	NewStatus      string `json:"new_status" validate:"required"`
	TrackingNumber string `json:"tracking_number"`
	Reason         string `json:"reason"`
}

type SendPaymentRequestRequest struct {
	Method        string `json:"method" validate:"required"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankName      string `json:"bank_name"`
	AmountCents   int64  `json:"amount_cents" validate:"required,gt=0"`
	Currency      string `json:"currency" validate:"required"`
}

type ConversationResponse struct {
	Id             string `json:"id"`
	CustomerId     string `json:"customer_id"`
	CustomerName   string `json:"customer_name"`
	CustomerAvatar string `json:"customer_avatar,omitempty"`
	LastMessage    string `json:"last_message"`
	LastMessageAt  int64  `json:"last_message_at"`
	UnreadCount    int    `json:"unread_count"`
}
