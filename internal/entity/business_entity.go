package entity

import "time"

type BusinessSource string
type VerificationStatus string

const (
	SourceBusinessAccount BusinessSource = "business_account"
	SourceClaimedProvider BusinessSource = "claimed_provider"

	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

type Business struct {
	Id            string             `json:"id"`
	OwnerId       string             `json:"ownerId"`
	Name          string             `json:"name"`
	Category      string             `json:"category"`
	Description   string             `json:"description"`
	Address       string             `json:"address"`
	City          string             `json:"city"`
	StateProvince string             `json:"stateProvince"`
	CountryCode   string             `json:"countryCode"`
	Lat           *float64           `json:"lat"`
	Lng           *float64           `json:"lng"`
	Phone         string             `json:"phone"`
	Email         string             `json:"email"`
	LogoURL       string             `json:"logoUrl"`
	CoverURL      string             `json:"coverUrl"`
	Status        VerificationStatus `json:"status"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// UnifiedBusiness is the single shape the portal presents regardless of
// whether the user registered a business account directly or claimed an
// existing directory listing.
type UnifiedBusiness struct {
	Source      BusinessSource     `json:"source"`
	Id          string             `json:"id"`
	ProviderId  string             `json:"providerId,omitempty"`
	DisplayName string             `json:"displayName"`
	Category    string             `json:"category"`
	LogoURL     string             `json:"logoUrl"`
	Status      VerificationStatus `json:"status"`
	City        string             `json:"city"`
}

func UnifyAccount(b *Business) UnifiedBusiness {
	return UnifiedBusiness{
		Source:      SourceBusinessAccount,
		Id:          b.Id,
		DisplayName: b.Name,
		Category:    b.Category,
		LogoURL:     b.LogoURL,
		Status:      b.Status,
		City:        b.City,
	}
}

func UnifyClaimedProvider(providerId, name, category, logoURL, city string, status VerificationStatus) UnifiedBusiness {
	return UnifiedBusiness{
		Source:      SourceClaimedProvider,
		Id:          providerId,
		ProviderId:  providerId,
		DisplayName: name,
		Category:    category,
		LogoURL:     logoURL,
		Status:      status,
		City:        city,
	}
}
