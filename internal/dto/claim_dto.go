package dto

type StartClaimRequest struct {
	ProviderId string `json:"provider_id" validate:"required"`
}

type ClaimSearchRequest struct {
	Query string `json:"query" validate:"required,min=2"`
}

type ClaimSearchResult struct {
	Id           string `json:"id"`
	BusinessName string `json:"business_name"`
	Category     string `json:"category"`
	Address      string `json:"address"`
	City         string `json:"city"`
	LogoURL      string `json:"logo_url,omitempty"`
	ClaimStatus  string `json:"claim_status"`
}

type NewListingRequest struct {
	BusinessName  string   `json:"business_name" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	Address       string   `json:"address" validate:"required"`
	City          string   `json:"city" validate:"required"`
	StateProvince string   `json:"state_province"`
	CountryCode   string   `json:"country_code"`
	Lat           *float64 `json:"lat" validate:"required"`
	Lng           *float64 `json:"lng" validate:"required"`
}

type ClaimantRequest struct {
	FullName     string `json:"full_name" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=owner manager authorized_rep"`
	ContactPhone string `json:"contact_phone" validate:"required"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
}

type ConsentRequest struct {
	Authorized bool `json:"authorized"`
	Terms      bool `json:"terms"`
}

type DocumentSlotResponse struct {
	RemoteURL string `json:"remote_url,omitempty"`
	Uploading bool   `json:"uploading"`
	Error     string `json:"error,omitempty"`
}

// WizardStateResponse is the full session projection the frontend renders
// after every wizard operation.
type WizardStateResponse struct {
	SessionId     string                          `json:"session_id"`
	Mode          string                          `json:"mode"`
	Step          string                          `json:"step"`
	Provider      *ClaimSearchResult              `json:"provider,omitempty"`
	SearchResults []ClaimSearchResult             `json:"search_results,omitempty"`
	Documents     map[string]DocumentSlotResponse `json:"documents"`
	CanAdvance    bool                            `json:"can_advance"`
	ExistingClaim *ExistingClaimResponse          `json:"existing_claim,omitempty"`
	Receipt       *ClaimReceiptResponse           `json:"receipt,omitempty"`
	LastError     string                          `json:"last_error,omitempty"`
}

type ExistingClaimResponse struct {
	ProviderId   string `json:"provider_id"`
	BusinessName string `json:"business_name"`
	ClaimStatus  string `json:"claim_status"`
	SubmittedAt  string `json:"submitted_at"`
}

type ClaimReceiptResponse struct {
	RequestId   string `json:"request_id"`
	ProviderId  string `json:"provider_id"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submitted_at"`
}
