package entity

import "time"

type OrderStatus string
type AppointmentStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderConfirmed      OrderStatus = "confirmed"
	OrderProcessing     OrderStatus = "processing"
	OrderReadyForPickup OrderStatus = "ready_for_pickup"
	OrderShipped        OrderStatus = "shipped"
	OrderDelivered      OrderStatus = "delivered"
	OrderCompleted      OrderStatus = "completed"
	OrderCancelled      OrderStatus = "cancelled"

	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

type OrderItem struct {
	ProductId  string `json:"productId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

type Order struct {
	Id             string      `json:"id"`
	OrderNumber    string      `json:"orderNumber"`
	BusinessId     string      `json:"businessId"`
	CustomerId     string      `json:"customerId"`
	CustomerName   string      `json:"customerName"`
	ConversationId string      `json:"conversationId,omitempty"`
	Items          []OrderItem `json:"items"`
	TotalCents     int64       `json:"totalCents"`
	Currency       string      `json:"currency"`
	Status         OrderStatus `json:"status"`
	TrackingNumber string      `json:"trackingNumber,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// PaymentSettings holds how a business accepts payment and fulfils orders.
type PaymentSettings struct {
	Id                  string `json:"id"`
	BusinessId          string `json:"businessId"`
	AcceptsGcash        bool   `json:"acceptsGcash"`
	GcashNumber         string `json:"gcashNumber,omitempty"`
	GcashName           string `json:"gcashName,omitempty"`
	AcceptsBankTransfer bool   `json:"acceptsBankTransfer"`
	BankName            string `json:"bankName,omitempty"`
	BankAccountNumber   string `json:"bankAccountNumber,omitempty"`
	BankAccountName     string `json:"bankAccountName,omitempty"`
	AcceptsCod          bool   `json:"acceptsCod"`
	OffersPickup        bool   `json:"offersPickup"`
	PickupAddress       string `json:"pickupAddress,omitempty"`
	OffersDelivery      bool   `json:"offersDelivery"`
	DeliveryFeeCents    int64  `json:"deliveryFeeCents"`
}

type Appointment struct {
	Id           string            `json:"id"`
	BusinessId   string            `json:"businessId"`
	CustomerId   string            `json:"customerId"`
	CustomerName string            `json:"customerName"`
	ServiceName  string            `json:"serviceName"`
	ScheduledAt  time.Time         `json:"scheduledAt"`
	DurationMins int               `json:"durationMins"`
	Status       AppointmentStatus `json:"status"`
	Notes        string            `json:"notes,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}
