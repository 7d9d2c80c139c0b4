package claimwizard

import "time"

type Mode string
type Step string
type Role string
type DocumentSlot string

const (
	ModeSearch        Mode = "search"
	ModeClaimExisting Mode = "claim_existing"
	ModeAddNew        Mode = "add_new"

	StepSearch       Step = "search"
	StepConfirmation Step = "confirmation"
	StepDetails      Step = "details"
	StepDocuments    Step = "documents"
	StepReview       Step = "review"
	StepSuccess      Step = "success"

	RoleOwner         Role = "owner"
	RoleManager       Role = "manager"
	RoleAuthorizedRep Role = "authorized_rep"

	SlotGovernmentID    DocumentSlot = "government_id"
	SlotBusinessPermit  DocumentSlot = "business_permit"
	SlotDTIRegistration DocumentSlot = "dti_registration"
	SlotBIRCertificate  DocumentSlot = "bir_certificate"
)

// stepOrder is the fixed forward sequence of the wizard.
var stepOrder = []Step{StepSearch, StepConfirmation, StepDetails, StepDocuments, StepReview, StepSuccess}

// documentSlots in display order. Only the government ID gates the step.
var documentSlots = []DocumentSlot{SlotGovernmentID, SlotBusinessPermit, SlotDTIRegistration, SlotBIRCertificate}

// MaxDocumentBytes is the local upload ceiling. Oversized files are rejected
// before any network call.
const MaxDocumentBytes = 5 * 1024 * 1024

// DocumentUpload tracks one upload slot.
type DocumentUpload struct {
	RemoteURL string `json:"remoteUrl"`
	Uploading bool   `json:"uploading"`
	Error     string `json:"error"`
}

// ListingDraft holds the new-listing form, required only in add_new mode.
type ListingDraft struct {
	BusinessName  string   `json:"businessName"`
	Category      string   `json:"category"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	StateProvince string   `json:"stateProvince"`
	CountryCode   string   `json:"countryCode"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
}

type ClaimantDetails struct {
	FullName     string `json:"fullName"`
	Role         Role   `json:"role"`
	ContactPhone string `json:"contactPhone"`
	ContactEmail string `json:"contactEmail"`
}

type Consent struct {
	Authorized bool `json:"authorized"`
	Terms      bool `json:"terms"`
}

// ProviderSummary is the directory's public view of a listing.
type ProviderSummary struct {
	ID           string `json:"id"`
	BusinessName string `json:"businessName"`
	Category     string `json:"category"`
	Address      string `json:"address"`
	City         string `json:"city"`
	ClaimStatus  string `json:"claimStatus"`
	IsClaimable  bool   `json:"isClaimable"`
	LogoURL      string `json:"logoUrl"`
}

// ExistingClaim is the user's already-submitted claim, if any.
type ExistingClaim struct {
	ProviderID   string `json:"providerId"`
	BusinessName string `json:"businessName"`
	ClaimStatus  string `json:"claimStatus"`
	SubmittedAt  string `json:"submittedAt"`
}

// SubmissionReceipt is what the submit collaborators return on success.
type SubmissionReceipt struct {
	RequestID   string `json:"requestId"`
	ProviderID  string `json:"providerId"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submittedAt"`
	Message     string `json:"message"`
}

// Session is the ephemeral wizard state. It lives for the wizard's lifetime
// only and is never persisted; a reload starts over.
type Session struct {
	ID     string
	UserID string

	Mode Mode
	Step Step

	TargetProviderID string
	Provider         *ProviderSummary
	LoadFailed       bool

	Draft    ListingDraft
	Claimant ClaimantDetails

	Documents map[DocumentSlot]*DocumentUpload
	Consent   Consent

	SearchResults []ProviderSummary
	HasSearched   bool

	ExistingClaim *ExistingClaim
	Submitting    bool
	Receipt       *SubmissionReceipt
	LastError     string

	CreatedAt time.Time
}

func newSession(id, userID string) *Session {
	docs := make(map[DocumentSlot]*DocumentUpload, len(documentSlots))
	for _, slot := range documentSlots {
		docs[slot] = &DocumentUpload{}
	}
	return &Session{
		ID:        id,
		UserID:    userID,
		Mode:      ModeSearch,
		Step:      StepSearch,
		Claimant:  ClaimantDetails{Role: RoleOwner},
		Documents: docs,
		CreatedAt: time.Now(),
	}
}

func stepIndex(s Step) int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// IsNewBusinessValid reports whether the add_new draft is complete and the
// coordinate is inside the valid range.
func (s *Session) IsNewBusinessValid() bool {
	d := s.Draft
	if d.BusinessName == "" || d.Category == "" || d.Address == "" || d.City == "" {
		return false
	}
	if d.Lat == nil || d.Lng == nil {
		return false
	}
	if *d.Lat < -90 || *d.Lat > 90 {
		return false
	}
	if *d.Lng < -180 || *d.Lng > 180 {
		return false
	}
	return true
}

func (s *Session) IsDetailsValid() bool {
	c := s.Claimant
	return c.FullName != "" && c.Role != "" && c.ContactPhone != "" && c.ContactEmail != ""
}

// IsDocumentsValid requires the government ID only; the other slots are
// optional regardless of their state.
func (s *Session) IsDocumentsValid() bool {
	return s.Documents[SlotGovernmentID].RemoteURL != ""
}

func (s *Session) IsReviewValid() bool {
	return s.Consent.Authorized && s.Consent.Terms
}

// HasBlockingClaim reports whether an existing claim should short-circuit
// the wizard. A claim on the provider currently being viewed is not
// blocking: the user is looking at their own claim.
func (s *Session) HasBlockingClaim() bool {
	if s.ExistingClaim == nil {
		return false
	}
	return s.ExistingClaim.ProviderID != s.TargetProviderID
}

// validatorFor gates forward progress out of a step.
func (s *Session) validatorFor(step Step) bool {
	switch step {
	case StepSearch:
		// Leaving search happens through Start/StartAddNew, not Advance.
		return false
	case StepConfirmation:
		if s.Mode == ModeAddNew {
			return s.IsNewBusinessValid()
		}
		return s.Provider != nil && !s.LoadFailed
	case StepDetails:
		return s.IsDetailsValid()
	case StepDocuments:
		return s.IsDocumentsValid()
	case StepReview:
		return s.IsReviewValid()
	default:
		return false
	}
}
