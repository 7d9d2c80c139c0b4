package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/lexcaraig/wheelbase-business/internal/dto"
	"github.com/lexcaraig/wheelbase-business/internal/pkg/logger"
	"github.com/lexcaraig/wheelbase-business/internal/repository/memory"
	"github.com/lexcaraig/wheelbase-business/pkg/backend"
	"github.com/lexcaraig/wheelbase-business/pkg/claimwizard"
	"github.com/lexcaraig/wheelbase-business/pkg/events"
	"github.com/lexcaraig/wheelbase-business/pkg/storage"
)

type IClaimService interface {
	Start(ctx context.Context, userID, token, providerID string) (*dto.WizardStateResponse, error)
	StartAddNew(ctx context.Context, userID, token string) (*dto.WizardStateResponse, error)
	Search(ctx context.Context, userID, token, query string) ([]dto.ClaimSearchResult, error)
	SetDraft(ctx context.Context, userID string, req *dto.NewListingRequest) (*dto.WizardStateResponse, error)
	SetClaimant(ctx context.Context, userID string, req *dto.ClaimantRequest) (*dto.WizardStateResponse, error)
	SetConsent(ctx context.Context, userID string, req *dto.ConsentRequest) (*dto.WizardStateResponse, error)
	UploadDocument(ctx context.Context, userID, slot, filename, contentType string, data []byte) (*dto.WizardStateResponse, error)
	ClearDocument(ctx context.Context, userID, slot string) (*dto.WizardStateResponse, error)
	Advance(ctx context.Context, userID string) (*dto.WizardStateResponse, error)
	Retreat(ctx context.Context, userID string) (*dto.WizardStateResponse, error)
	State(ctx context.Context, userID string) (*dto.WizardStateResponse, error)
	Abandon(ctx context.Context, userID string)
}

type EventPublisher interface {
	Publish(event events.Event) error
}

type claimService struct {
	backend   *backend.Client
	uploader  storage.Uploader
	wizards   *memory.WizardRepository
	publisher EventPublisher
	logger    logger.ILogger
}

func NewClaimService(client *backend.Client, uploader storage.Uploader, wizards *memory.WizardRepository, publisher EventPublisher, log logger.ILogger) IClaimService {
	return &claimService{
		backend:   client,
		uploader:  uploader,
		wizards:   wizards,
		publisher: publisher,
		logger:    log,
	}
}

// backendDirectory adapts the remote listing functions to the wizard's
// collaborator interface. It closes over the caller's token so the wizard
// itself stays identity-free.
type backendDirectory struct {
	client *backend.Client
	token  string
}

type providerRecord struct {
	Id           string `json:"id"`
	BusinessName string `json:"businessName"`
	Category     string `json:"category"`
	Address      string `json:"address"`
	City         string `json:"city"`
	ClaimStatus  string `json:"claimStatus"`
	LogoURL      string `json:"logoUrl"`
}

func (r *providerRecord) toSummary() *claimwizard.ProviderSummary {
	return &claimwizard.ProviderSummary{
		ID:           r.Id,
		BusinessName: r.BusinessName,
		Category:     r.Category,
		Address:      r.Address,
		City:         r.City,
		ClaimStatus:  r.ClaimStatus,
		IsClaimable:  r.ClaimStatus == "" || r.ClaimStatus == "unclaimed",
		LogoURL:      r.LogoURL,
	}
}

func (d *backendDirectory) GetProvider(ctx context.Context, providerID string) (*claimwizard.ProviderSummary, error) {
	var record providerRecord
	fn := fmt.Sprintf("get-provider?id=%s", url.QueryEscape(providerID))
	if err := d.client.Get(ctx, fn, d.token, &record); err != nil {
		return nil, err
	}
	return record.toSummary(), nil
}

func (d *backendDirectory) SearchClaimable(ctx context.Context, query string, limit int) ([]claimwizard.ProviderSummary, error) {
	var records []providerRecord
	fn := fmt.Sprintf("search-providers?query=%s&claimable=true&limit=%d", url.QueryEscape(query), limit)
	if err := d.client.Get(ctx, fn, d.token, &records); err != nil {
		return nil, err
	}
	out := make([]claimwizard.ProviderSummary, 0, len(records))
	for i := range records {
		out = append(out, *records[i].toSummary())
	}
	return out, nil
}

func (d *backendDirectory) ExistingClaim(ctx context.Context) (*claimwizard.ExistingClaim, error) {
	var claim claimwizard.ExistingClaim
	err := d.client.Get(ctx, "get-user-claim-status", d.token, &claim)
	if err != nil {
		var apiErr *backend.APIError
		// "No claim found" is an empty result, not a failure.
		if errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "No claim found") {
			return nil, nil
		}
		return nil, err
	}
	if claim.ProviderID == "" {
		return nil, nil
	}
	return &claim, nil
}

func (d *backendDirectory) SubmitClaim(ctx context.Context, req *claimwizard.SubmitClaimRequest) (*claimwizard.SubmissionReceipt, error) {
	var receipt claimwizard.SubmissionReceipt
	if err := d.client.CallWithAuth(ctx, "claim-provider", d.token, req, &receipt); err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return nil, errors.New(apiErr.Message)
		}
		return nil, err
	}
	return &receipt, nil
}

func (d *backendDirectory) CreateAndClaim(ctx context.Context, req *claimwizard.CreateListingRequest) (*claimwizard.SubmissionReceipt, error) {
	var receipt claimwizard.SubmissionReceipt
	if err := d.client.CallWithAuth(ctx, "create-and-claim-provider", d.token, req, &receipt); err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return nil, errors.New(apiErr.Message)
		}
		return nil, err
	}
	return &receipt, nil
}

// wizardUploader bridges document slots onto the shared object-storage
// uploader, namespacing files per user.
type wizardUploader struct {
	uploader storage.Uploader
	token    string
	userID   string
}

func (u *wizardUploader) Upload(ctx context.Context, slot claimwizard.DocumentSlot, filename, contentType string, data []byte) (string, error) {
	return u.uploader.Upload(ctx, u.token, &storage.UploadRequest{
		Folder:      fmt.Sprintf("claim-documents/%s/%s", u.userID, slot),
		Filename:    fmt.Sprintf("%s-%s", uuid.New().String()[:8], filename),
		ContentType: contentType,
		Data:        data,
	})
}

func (s *claimService) wizard(userID string) (*claimwizard.Wizard, error) {
	w, ok := s.wizards.Get(userID)
	if !ok {
		return nil, errors.New("no claim in progress, start one first")
	}
	return w, nil
}

func (s *claimService) newWizard(userID, token string) *claimwizard.Wizard {
	directory := &backendDirectory{client: s.backend, token: token}
	uploader := &wizardUploader{uploader: s.uploader, token: token, userID: userID}
	w := claimwizard.New(directory, uploader, uuid.New().String(), userID)
	s.wizards.Save(userID, w)
	return w
}

func (s *claimService) Start(ctx context.Context, userID, token, providerID string) (*dto.WizardStateResponse, error) {
	w := s.newWizard(userID, token)
	if err := w.Start(ctx, providerID); err != nil {
		s.logger.Warn("ClaimService", "Claim start blocked", map[string]interface{}{"user_id": userID, "provider_id": providerID, "error": err.Error()})
		// The state still renders: blocked and load-failed outcomes are
		// part of the wizard surface, not transport errors.
		return s.toState(w), nil
	}
	s.logger.Info("ClaimService", "Claim wizard started", map[string]interface{}{"user_id": userID, "provider_id": providerID})
	return s.toState(w), nil
}

func (s *claimService) StartAddNew(ctx context.Context, userID, token string) (*dto.WizardStateResponse, error) {
	w, ok := s.wizards.Get(userID)
	if !ok {
		w = s.newWizard(userID, token)
	}
	if err := w.StartAddNew(); err != nil {
		return nil, err
	}
	return s.toState(w), nil
}

func (s *claimService) Search(ctx context.Context, userID, token, query string) ([]dto.ClaimSearchResult, error) {
	w, ok := s.wizards.Get(userID)
	if !ok {
		w = s.newWizard(userID, token)
	}
	results, err := w.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClaimSearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, toSearchResult(&r))
	}
	return out, nil
}

func (s *claimService) SetDraft(ctx context.Context, userID string, req *dto.NewListingRequest) (*dto.WizardStateResponse, error) {
	w, err := s.wizard(userID)
	if err != nil {
		return nil, err
	}
	w.SetDraft(claimwizard.ListingDraft{
		BusinessName:  req.BusinessName,
		Category:      req.Category,
		Address:       req.Address,
		City:          req.City,
		StateProvince: req.StateProvince,
		CountryCode:   req.CountryCode,
		Lat:           req.Lat,
		Lng:           req.Lng,
	})
	return s.toState(w), nil
}

func (s *claimService) SetClaimant(ctx context.Context, userID string, req *dto.ClaimantRequest) (*dto.WizardStateResponse, error) {
	w, err := s.wizard(userID)
	if err != nil {
		return nil, err
	}
	w.SetClaimant(claimwizard.ClaimantDetails{
		FullName:     req.FullName,
		Role:         claimwizard.Role(req.Role),
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
	})
	return s.toState(w), nil
}

func (s *claimService) SetConsent(ctx context.Context, userID string, req *dto.ConsentRequest) (*dto.WizardStateResponse, error) {
	w, err := s.wizard(userID)
	if err != nil {
		return nil, err
	}
	w.SetConsent(claimwizard.Consent{Authorized: req.Authorized, Terms: req.Terms})
	return s.toState(w), nil
}

func (s *claimService) UploadDocument(ctx context.Context, userID, slot, filename, contentType string, data []byte) (*dto.WizardStateResponse, error) {
	w, err := s.wizard(userID)
	if err != nil {
		return nil, err
	}
	if err := w.UploadDocument(ctx, claimwizard.DocumentSlot(slot), filename, contentType, data); err != nil {
		return nil, err
	}

	state := s.toState(w)
	if doc, ok := state.Documents[slot]; ok && doc.RemoteURL != "" {
		_ = s.publisher.Publish(events.NewBaseEvent(events.TypeDocumentUploaded, map[string]interface{}{
			"user_id": userID,
			"slot":    slot,
			"url":     doc.RemoteURL,
		}))
	}
	return state, nil
}

func (s *claimService) ClearDocument(ctx context.Context, userID, slot string) (*dto.WizardStateResponse, error) {
	w, err := s.wizard(userID)
	if err != nil {
		return nil, err
	}
	w.ClearDocument(claimwizard.DocumentSlot(slot))
	return s.toState(w), nil
}

func (s *claimService) Advance(ctx context.Context, userID string) (*dto.WizardStateResponse, error) {
	w, err := s.wizard(userID)
	if err != nil {
		return nil, err
	}

	snapBefore := w.Snapshot()
	advanceErr := w.Advance(ctx)
	state := s.toState(w)

	if advanceErr == nil && snapBefore.Step == claimwizard.StepReview {
		snap := w.Snapshot()
		payload := map[string]interface{}{"user_id": userID, "mode": string(snap.Mode)}
		if snap.Receipt != nil {
			payload["provider_id"] = snap.Receipt.ProviderID
			payload["request_id"] = snap.Receipt.RequestID
		}
		_ = s.publisher.Publish(events.NewBaseEvent(events.TypeClaimSubmitted, payload))
		s.logger.Info("ClaimService", "Claim submitted", payload)
	}

	if advanceErr != nil {
		return state, advanceErr
	}
	return state, nil
}

func (s *claimService) Retreat(ctx context.Context, userID string) (*dto.WizardStateResponse, error) {
	w, err := s.wizard(userID)
	if err != nil {
		return nil, err
	}
	w.Retreat()
	return s.toState(w), nil
}

func (s *claimService) State(ctx context.Context, userID string) (*dto.WizardStateResponse, error) {
	w, err := s.wizard(userID)
	if err != nil {
		return nil, err
	}
	return s.toState(w), nil
}

// Abandon drops the wizard immediately instead of waiting for the TTL.
func (s *claimService) Abandon(ctx context.Context, userID string) {
	s.wizards.Delete(userID)
}

func toSearchResult(p *claimwizard.ProviderSummary) dto.ClaimSearchResult {
	return dto.ClaimSearchResult{
		Id:           p.ID,
		BusinessName: p.BusinessName,
		Category:     p.Category,
		Address:      p.Address,
		City:         p.City,
		LogoURL:      p.LogoURL,
		ClaimStatus:  p.ClaimStatus,
	}
}

func (s *claimService) toState(w *claimwizard.Wizard) *dto.WizardStateResponse {
	snap := w.Snapshot()

	res := &dto.WizardStateResponse{
		SessionId: snap.ID,
		Mode:      string(snap.Mode),
		Step:      string(snap.Step),
		Documents: make(map[string]dto.DocumentSlotResponse, len(snap.Documents)),
		LastError: snap.LastError,
	}
	for slot, doc := range snap.Documents {
		res.Documents[string(slot)] = dto.DocumentSlotResponse{
			RemoteURL: doc.RemoteURL,
			Uploading: doc.Uploading,
			Error:     doc.Error,
		}
	}
	if snap.Provider != nil {
		result := toSearchResult(snap.Provider)
		res.Provider = &result
	}
	for i := range snap.SearchResults {
		res.SearchResults = append(res.SearchResults, toSearchResult(&snap.SearchResults[i]))
	}
	if snap.ExistingClaim != nil && snap.HasBlockingClaim() {
		res.ExistingClaim = &dto.ExistingClaimResponse{
			ProviderId:   snap.ExistingClaim.ProviderID,
			BusinessName: snap.ExistingClaim.BusinessName,
			ClaimStatus:  snap.ExistingClaim.ClaimStatus,
			SubmittedAt:  snap.ExistingClaim.SubmittedAt,
		}
	}
	if snap.Receipt != nil {
		res.Receipt = &dto.ClaimReceiptResponse{
			RequestId:   snap.Receipt.RequestID,
			ProviderId:  snap.Receipt.ProviderID,
			Status:      snap.Receipt.Status,
			SubmittedAt: snap.Receipt.SubmittedAt,
		}
	}
	res.CanAdvance = canAdvance(&snap)
	return res
}

func canAdvance(snap *claimwizard.Session) bool {
	switch snap.Step {
	case claimwizard.StepConfirmation:
		if snap.Mode == claimwizard.ModeAddNew {
			return snap.IsNewBusinessValid()
		}
		return snap.Provider != nil && !snap.LoadFailed && snap.Provider.IsClaimable
	case claimwizard.StepDetails:
		return snap.IsDetailsValid()
	case claimwizard.StepDocuments:
		return snap.IsDocumentsValid()
	case claimwizard.StepReview:
		return snap.IsReviewValid() && !snap.Submitting
	default:
		return false
	}
}
