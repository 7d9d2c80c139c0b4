package entity

import "time"

type Notification struct {
	Id        string                 `json:"id"`
	TypeCode  string                 `json:"type_code"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	IsRead    bool                   `json:"is_read"`
}
