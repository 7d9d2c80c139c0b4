package entity

import "time"

type Product struct {
	Id          string    `json:"id"`
	BusinessId  string    `json:"businessId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	Stock       int       `json:"stock"`
	ImageURLs   []string  `json:"imageUrls,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Service struct {
	Id           string    `json:"id"`
	BusinessId   string    `json:"businessId"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	PriceCents   int64     `json:"priceCents"`
	Currency     string    `json:"currency"`
	DurationMins int       `json:"durationMins"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Conversation struct {
	Id             string    `json:"id"`
	BusinessId     string    `json:"businessId"`
	CustomerId     string    `json:"customerId"`
	CustomerName   string    `json:"customerName"`
	CustomerAvatar string    `json:"customerAvatar,omitempty"`
	LastMessage    string    `json:"lastMessage"`
	LastMessageAt  time.Time `json:"lastMessageAt"`
	UnreadCount    int       `json:"unreadCount"`
}
