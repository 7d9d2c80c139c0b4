package claimwizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrQueryTooShort  = errors.New("search query must be at least 2 characters")
	ErrNotClaimable   = errors.New("this listing has already been claimed")
	ErrUploadInFlight = errors.New("an upload for this document is already in progress")
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrAlreadyDone    = errors.New("this claim has already been submitted")
	ErrWrongStep      = errors.New("operation not available at the current step")
)

// Directory is the listings backend the wizard talks to. Implementations
// carry the caller's identity; the wizard never sees tokens.
type Directory interface {
	GetProvider(ctx context.Context, providerID string) (*ProviderSummary, error)
	SearchClaimable(ctx context.Context, query string, limit int) ([]ProviderSummary, error)
	ExistingClaim(ctx context.Context) (*ExistingClaim, error)
	SubmitClaim(ctx context.Context, req *SubmitClaimRequest) (*SubmissionReceipt, error)
	CreateAndClaim(ctx context.Context, req *CreateListingRequest) (*SubmissionReceipt, error)
}

// DocumentUploader stores a verification document and returns its public URL.
type DocumentUploader interface {
	Upload(ctx context.Context, slot DocumentSlot, filename, contentType string, data []byte) (string, error)
}

// SubmitClaimRequest claims an existing listing.
type SubmitClaimRequest struct {
	ProviderID string                  `json:"providerId"`
	Claimant   ClaimantDetails         `json:"claimant"`
	Documents  map[DocumentSlot]string `json:"documents"`
	Consent    Consent                 `json:"consent"`
}

// CreateListingRequest creates a listing and claims it in one call.
type CreateListingRequest struct {
	Listing   ListingDraft            `json:"listing"`
	Claimant  ClaimantDetails         `json:"claimant"`
	Documents map[DocumentSlot]string `json:"documents"`
	Consent   Consent                 `json:"consent"`
}

// Wizard drives one claim session through the step sequence. All state
// transitions are serialized; network calls run outside the lock with
// in-flight flags guarding re-entry.
type Wizard struct {
	directory Directory
	uploader  DocumentUploader

	mu      sync.Mutex
	session *Session
}

func New(directory Directory, uploader DocumentUploader, sessionID, userID string) *Wizard {
	return &Wizard{
		directory: directory,
		uploader:  uploader,
		session:   newSession(sessionID, userID),
	}
}

// Snapshot returns a copy of the current session state for rendering.
func (w *Wizard) Snapshot() Session {
	w.mu.Lock()
	defer w.mu.Unlock()

	copied := *w.session
	copied.Documents = make(map[DocumentSlot]*DocumentUpload, len(w.session.Documents))
	for slot, doc := range w.session.Documents {
		d := *doc
		copied.Documents[slot] = &d
	}
	copied.SearchResults = append([]ProviderSummary(nil), w.session.SearchResults...)
	return copied
}

// Start enters the wizard against a specific listing. The target summary is
// loaded up front; a load failure is terminal for the session and the caller
// must start over.
func (w *Wizard) Start(ctx context.Context, providerID string) error {
	w.mu.Lock()
	if w.session.Step == StepSuccess {
		w.mu.Unlock()
		return ErrAlreadyDone
	}
	w.session.TargetProviderID = providerID
	w.mu.Unlock()

	existing, err := w.directory.ExistingClaim(ctx)
	if err != nil {
		w.failLoad(err)
		return err
	}

	provider, err := w.directory.GetProvider(ctx, providerID)
	if err != nil {
		w.failLoad(err)
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.session.ExistingClaim = existing
	w.session.Provider = provider
	w.session.Mode = ModeClaimExisting
	w.session.Step = StepConfirmation
	w.session.LoadFailed = false
	w.session.LastError = ""

	if !provider.IsClaimable {
		w.session.LastError = ErrNotClaimable.Error()
		return ErrNotClaimable
	}
	return nil
}

func (w *Wizard) failLoad(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session.LoadFailed = true
	w.session.Mode = ModeClaimExisting
	w.session.Step = StepConfirmation
	w.session.LastError = err.Error()
}

// Search looks up claimable listings. Queries shorter than 2 characters are
// never sent to the directory.
func (w *Wizard) Search(ctx context.Context, query string) ([]ProviderSummary, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, ErrQueryTooShort
	}

	results, err := w.directory.SearchClaimable(ctx, query, 20)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	w.mu.Lock()
	w.session.SearchResults = results
	w.session.HasSearched = true
	w.mu.Unlock()
	return results, nil
}

// SelectResult picks one search result and moves to confirmation, same as
// starting against a known listing.
func (w *Wizard) SelectResult(ctx context.Context, providerID string) error {
	return w.Start(ctx, providerID)
}

// StartAddNew switches to the new-listing path. Only reachable from search.
func (w *Wizard) StartAddNew() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session.Step != StepSearch {
		return ErrWrongStep
	}
	w.session.Mode = ModeAddNew
	w.session.Step = StepConfirmation
	w.session.TargetProviderID = ""
	w.session.Provider = nil
	w.session.LastError = ""
	return nil
}

// SetDraft replaces the new-listing form contents.
func (w *Wizard) SetDraft(draft ListingDraft) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session.Draft = draft
}

// SetClaimant replaces the claimant details form contents.
func (w *Wizard) SetClaimant(details ClaimantDetails) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session.Claimant = details
}

// SetConsent records the two confirmation checkboxes.
func (w *Wizard) SetConsent(consent Consent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session.Consent = consent
}

// Advance moves one step forward when the current step's gate passes; an
// invalid step is a silent no-op on the session, reported to the caller as
// the gate's failure. Advancing from review submits the claim.
func (w *Wizard) Advance(ctx context.Context) error {
	w.mu.Lock()
	step := w.session.Step
	if step == StepSuccess {
		w.mu.Unlock()
		return ErrAlreadyDone
	}
	if !w.session.validatorFor(step) {
		w.mu.Unlock()
		return fmt.Errorf("cannot advance from %s: step is incomplete", step)
	}
	if step == StepReview {
		if w.session.Submitting {
			w.mu.Unlock()
			return ErrSubmitInFlight
		}
		w.session.Submitting = true
		w.mu.Unlock()
		return w.submit(ctx)
	}

	w.session.Step = stepOrder[stepIndex(step)+1]
	w.mu.Unlock()
	return nil
}

// Retreat moves one step backward. Backing out of confirmation on the
// new-listing path returns to search and discards the draft; backing out of
// confirmation on the claim path, or from search or success, does nothing.
func (w *Wizard) Retreat() {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.session.Step {
	case StepSearch, StepSuccess:
		return
	case StepConfirmation:
		if w.session.Mode != ModeAddNew {
			return
		}
		w.session.Mode = ModeSearch
		w.session.Step = StepSearch
		w.session.Draft = ListingDraft{}
		w.session.TargetProviderID = ""
		w.session.Provider = nil
	default:
		w.session.Step = stepOrder[stepIndex(w.session.Step)-1]
	}
}

// UploadDocument stores one verification document. Files over the size
// ceiling are rejected locally; the failure lands in the slot's error field
// and no network call is made. One upload per slot at a time.
func (w *Wizard) UploadDocument(ctx context.Context, slot DocumentSlot, filename, contentType string, data []byte) error {
	w.mu.Lock()
	doc, ok := w.session.Documents[slot]
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("unknown document slot %q", slot)
	}
	if doc.Uploading {
		w.mu.Unlock()
		return ErrUploadInFlight
	}
	if len(data) > MaxDocumentBytes {
		doc.Error = "file size must not exceed 5MB"
		w.mu.Unlock()
		return nil
	}
	doc.Uploading = true
	doc.Error = ""
	w.mu.Unlock()

	url, err := w.uploader.Upload(ctx, slot, filename, contentType, data)

	w.mu.Lock()
	defer w.mu.Unlock()
	doc.Uploading = false
	if err != nil {
		doc.Error = err.Error()
		return fmt.Errorf("failed to upload %s: %w", slot, err)
	}
	doc.RemoteURL = url
	return nil
}

// ClearDocument removes a stored document from its slot.
func (w *Wizard) ClearDocument(slot DocumentSlot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if doc, ok := w.session.Documents[slot]; ok && !doc.Uploading {
		doc.RemoteURL = ""
		doc.Error = ""
	}
}

func (w *Wizard) submit(ctx context.Context) error {
	w.mu.Lock()
	mode := w.session.Mode
	documents := make(map[DocumentSlot]string)
	for slot, doc := range w.session.Documents {
		if doc.RemoteURL != "" {
			documents[slot] = doc.RemoteURL
		}
	}
	claimant := w.session.Claimant
	consent := w.session.Consent
	draft := w.session.Draft
	providerID := w.session.TargetProviderID
	w.mu.Unlock()

	var (
		receipt *SubmissionReceipt
		err     error
	)
	if mode == ModeAddNew {
		receipt, err = w.directory.CreateAndClaim(ctx, &CreateListingRequest{
			Listing:   draft,
			Claimant:  claimant,
			Documents: documents,
			Consent:   consent,
		})
	} else {
		receipt, err = w.directory.SubmitClaim(ctx, &SubmitClaimRequest{
			ProviderID: providerID,
			Claimant:   claimant,
			Documents:  documents,
			Consent:    consent,
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.session.Submitting = false
	if err != nil {
		// The step stays on review so the user can retry.
		w.session.LastError = err.Error()
		return err
	}
	w.session.Receipt = receipt
	w.session.Step = StepSuccess
	w.session.LastError = ""
	return nil
}
