package dto

type UpdateProfileRequest struct {
	Name          string   `json:"name" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	StateProvince string   `json:"state_province"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
}

type CreateProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"price_cents" validate:"required,gte=0"`
	Currency    string `json:"currency" validate:"required"`
	Stock       int    `json:"stock" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"price_cents" validate:"required,gte=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
	Active      *bool  `json:"active"`
}

type CreateServiceRequest struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents" validate:"gte=0"`
	Currency     string `json:"currency"`
	DurationMins int    `json:"duration_mins" validate:"gt=0"`
}

type UpdateOrderStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"tracking_number"`
	Reason         string `json:"reason"`
}

// UpdatePaymentSettingsRequest is a partial update; nil fields are left
// untouched by the backend.
type UpdatePaymentSettingsRequest struct {
	AcceptsGcash        *bool   `json:"accepts_gcash"`
	GcashNumber         *string `json:"gcash_number"`
	GcashName           *string `json:"gcash_name"`
	AcceptsBankTransfer *bool   `json:"accepts_bank_transfer"`
	BankName            *string `json:"bank_name"`
	BankAccountNumber   *string `json:"bank_account_number"`
	BankAccountName     *string `json:"bank_account_name"`
	AcceptsCod          *bool   `json:"accepts_cod"`
	OffersPickup        *bool   `json:"offers_pickup"`
	PickupAddress       *string `json:"pickup_address"`
	OffersDelivery      *bool   `json:"offers_delivery"`
	DeliveryFeeCents    *int64  `json:"delivery_fee_cents"`
}

type UpdateAppointmentRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled no_show"`
	Notes  string `json:"notes"`
}

type DashboardStatsResponse struct {
	TotalOrders          int   `json:"total_orders"`
	PendingOrders        int   `json:"pending_orders"`
	TotalAppointments    int   `json:"total_appointments"`
	UpcomingAppointments int   `json:"upcoming_appointments"`
	RevenueCents         int64 `json:"revenue_cents"`
	UnreadMessages       int   `json:"unread_messages"`
	ProfileViews         int   `json:"profile_views"`
}

// TrendPoint is one bucket of the engagement time series.
type TrendPoint struct {
	Date            string `json:"date"`
	Total           int    `json:"total"`
	ProfileViews    int    `json:"profile_views"`
	ProductViews    int    `json:"product_views"`
	ServiceViews    int    `json:"service_views"`
	ContactClicks   int    `json:"contact_clicks"`
	DirectionClicks int    `json:"direction_clicks"`
}
