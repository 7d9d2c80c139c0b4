package claimwizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeDirectory struct {
	mu           sync.Mutex
	providers    map[string]*ProviderSummary
	existing     *ExistingClaim
	searchErr    error
	submitErr    error
	submitCalls  int
	lastSubmit   *SubmitClaimRequest
	lastCreate   *CreateListingRequest
	getProviderN int
}

func (d *fakeDirectory) GetProvider(_ context.Context, id string) (*ProviderSummary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.getProviderN++
	p, ok := d.providers[id]
	if !ok {
		return nil, errors.New("provider not found")
	}
	return p, nil
}

func (d *fakeDirectory) SearchClaimable(_ context.Context, query string, _ int) ([]ProviderSummary, error) {
	if d.searchErr != nil {
		return nil, d.searchErr
	}
	var out []ProviderSummary
	for _, p := range d.providers {
		if p.IsClaimable && strings.Contains(strings.ToLower(p.BusinessName), strings.ToLower(query)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (d *fakeDirectory) ExistingClaim(_ context.Context) (*ExistingClaim, error) {
	return d.existing, nil
}

func (d *fakeDirectory) SubmitClaim(_ context.Context, req *SubmitClaimRequest) (*SubmissionReceipt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitCalls++
	d.lastSubmit = req
	if d.submitErr != nil {
		return nil, d.submitErr
	}
	return &SubmissionReceipt{RequestID: "req-1", ProviderID: req.ProviderID, Status: "pending"}, nil
}

func (d *fakeDirectory) CreateAndClaim(_ context.Context, req *CreateListingRequest) (*SubmissionReceipt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitCalls++
	d.lastCreate = req
	if d.submitErr != nil {
		return nil, d.submitErr
	}
	return &SubmissionReceipt{RequestID: "req-2", ProviderID: "prov-new", Status: "pending"}, nil
}

type fakeUploader struct {
	mu      sync.Mutex
	calls   int
	err     error
	release chan struct{}
}

func (u *fakeUploader) Upload(_ context.Context, slot DocumentSlot, filename, _ string, _ []byte) (string, error) {
	u.mu.Lock()
	u.calls++
	release := u.release
	u.mu.Unlock()
	if release != nil {
		<-release
	}
	if u.err != nil {
		return "", u.err
	}
	return fmt.Sprintf("https://cdn.example.com/%s/%s", slot, filename), nil
}

func (u *fakeUploader) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

func claimableProvider(id, name string) *ProviderSummary {
	return &ProviderSummary{ID: id, BusinessName: name, Category: "repair_shop", City: "Manila", ClaimStatus: "unclaimed", IsClaimable: true}
}

func newTestWizard(dir *fakeDirectory, up *fakeUploader) *Wizard {
	if dir.providers == nil {
		dir.providers = map[string]*ProviderSummary{}
	}
	return New(dir, up, "sess-1", "user-1")
}

func fillToReview(t *testing.T, w *Wizard, ctx context.Context) {
	t.Helper()
	w.SetClaimant(ClaimantDetails{FullName: "Juan dela Cruz", Role: RoleOwner, ContactPhone: "+639171234567", ContactEmail: "juan@example.com"})
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("advance to documents: %v", err)
	}
	if err := w.UploadDocument(ctx, SlotGovernmentID, "id.jpg", "image/jpeg", []byte("data")); err != nil {
		t.Fatalf("upload government id: %v", err)
	}
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("advance to review: %v", err)
	}
}

func TestAdvanceBlockedByIncompleteStep(t *testing.T) {
	dir := &fakeDirectory{providers: map[string]*ProviderSummary{"p1": claimableProvider("p1", "AutoFix Garage")}}
	w := newTestWizard(dir, &fakeUploader{})
	ctx := context.Background()

	if err := w.Start(ctx, "p1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("advance to details: %v", err)
	}

	// Details form is empty: advance must leave the step untouched.
	if err := w.Advance(ctx); err == nil {
		t.Fatal("expected advance to fail with empty details")
	}
	if got := w.Snapshot().Step; got != StepDetails {
		t.Fatalf("step = %s, want %s", got, StepDetails)
	}

	// Filling the form unblocks the same call.
	w.SetClaimant(ClaimantDetails{FullName: "Juan", Role: RoleOwner, ContactPhone: "0917", ContactEmail: "j@x.com"})
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("advance after fill: %v", err)
	}
	if got := w.Snapshot().Step; got != StepDocuments {
		t.Fatalf("step = %s, want %s", got, StepDocuments)
	}
}

func TestRetreatFromConfirmationAddNewResetsToSearch(t *testing.T) {
	w := newTestWizard(&fakeDirectory{}, &fakeUploader{})

	if err := w.StartAddNew(); err != nil {
		t.Fatalf("start add new: %v", err)
	}
	lat, lng := 14.5995, 120.9842
	w.SetDraft(ListingDraft{BusinessName: "New Shop", Category: "parts_dealer", Address: "123 Rizal Ave", City: "Manila", Lat: &lat, Lng: &lng})

	w.Retreat()

	snap := w.Snapshot()
	if snap.Step != StepSearch {
		t.Fatalf("step = %s, want %s", snap.Step, StepSearch)
	}
	if snap.Mode != ModeSearch {
		t.Fatalf("mode = %s, want %s", snap.Mode, ModeSearch)
	}
	if snap.Draft.BusinessName != "" {
		t.Fatalf("draft survived retreat: %+v", snap.Draft)
	}
}

func TestRetreatFromConfirmationClaimExistingIsNoop(t *testing.T) {
	dir := &fakeDirectory{providers: map[string]*ProviderSummary{"p1": claimableProvider("p1", "AutoFix Garage")}}
	w := newTestWizard(dir, &fakeUploader{})

	if err := w.Start(context.Background(), "p1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	w.Retreat()

	snap := w.Snapshot()
	if snap.Step != StepConfirmation || snap.Mode != ModeClaimExisting {
		t.Fatalf("retreat changed state: step=%s mode=%s", snap.Step, snap.Mode)
	}
	if snap.Provider == nil || snap.Provider.ID != "p1" {
		t.Fatal("target listing discarded by no-op retreat")
	}
}

func TestDocumentsGateDependsOnlyOnGovernmentID(t *testing.T) {
	optional := []DocumentSlot{SlotBusinessPermit, SlotDTIRegistration, SlotBIRCertificate}

	for mask := 0; mask < 16; mask++ {
		s := newSession("s", "u")
		hasGov := mask&8 != 0
		if hasGov {
			s.Documents[SlotGovernmentID].RemoteURL = "https://cdn/gov.jpg"
		}
		for i, slot := range optional {
			if mask&(1<<i) != 0 {
				s.Documents[slot].RemoteURL = "https://cdn/" + string(slot)
			}
		}
		if got := s.IsDocumentsValid(); got != hasGov {
			t.Errorf("mask %04b: IsDocumentsValid() = %v, want %v", mask, got, hasGov)
		}
	}
}

func TestNewBusinessCoordinateValidation(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	base := ListingDraft{BusinessName: "Shop", Category: "repair_shop", Address: "Addr", City: "Manila"}

	tests := []struct {
		name string
		lat  *float64
		lng  *float64
		want bool
	}{
		{"manila", f(14.5995), f(120.9842), true},
		{"equator boundary", f(0), f(0), true},
		{"lat max", f(90), f(180), true},
		{"lat min", f(-90), f(-180), true},
		{"lat too high", f(90.1), f(120), false},
		{"lat too low", f(-91), f(120), false},
		{"lng too high", f(14), f(180.5), false},
		{"lng too low", f(14), f(-181), false},
		{"missing lat", nil, f(120), false},
		{"missing lng", f(14), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession("s", "u")
			s.Draft = base
			s.Draft.Lat = tt.lat
			s.Draft.Lng = tt.lng
			if got := s.IsNewBusinessValid(); got != tt.want {
				t.Errorf("IsNewBusinessValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUploadOversizedFileRejectedLocally(t *testing.T) {
	up := &fakeUploader{}
	w := newTestWizard(&fakeDirectory{}, up)

	big := make([]byte, MaxDocumentBytes+1)
	if err := w.UploadDocument(context.Background(), SlotGovernmentID, "huge.pdf", "application/pdf", big); err != nil {
		t.Fatalf("oversize rejection should not be an error: %v", err)
	}
	if up.callCount() != 0 {
		t.Fatal("oversized file reached the uploader")
	}
	doc := w.Snapshot().Documents[SlotGovernmentID]
	if doc.Error == "" {
		t.Fatal("slot error not set for oversized file")
	}
	if doc.RemoteURL != "" {
		t.Fatal("oversized file produced a remote URL")
	}
}

func TestUploadGuardsSlotWhileInFlight(t *testing.T) {
	up := &fakeUploader{release: make(chan struct{})}
	w := newTestWizard(&fakeDirectory{}, up)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- w.UploadDocument(ctx, SlotGovernmentID, "id.jpg", "image/jpeg", []byte("x"))
	}()

	// Wait for the first upload to reach the uploader.
	for up.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	if err := w.UploadDocument(ctx, SlotGovernmentID, "id2.jpg", "image/jpeg", []byte("y")); !errors.Is(err, ErrUploadInFlight) {
		t.Fatalf("second upload error = %v, want ErrUploadInFlight", err)
	}

	close(up.release)
	if err := <-done; err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if up.callCount() != 1 {
		t.Fatalf("uploader calls = %d, want 1", up.callCount())
	}
}

func TestSubmitFailureKeepsReviewAndAllowsRetry(t *testing.T) {
	dir := &fakeDirectory{
		providers: map[string]*ProviderSummary{"p1": claimableProvider("p1", "AutoFix Garage")},
		submitErr: errors.New("provider already claimed"),
	}
	w := newTestWizard(dir, &fakeUploader{})
	ctx := context.Background()

	if err := w.Start(ctx, "p1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("advance to details: %v", err)
	}
	fillToReview(t, w, ctx)
	w.SetConsent(Consent{Authorized: true, Terms: true})

	if err := w.Advance(ctx); err == nil {
		t.Fatal("expected submit failure")
	}
	snap := w.Snapshot()
	if snap.Step != StepReview {
		t.Fatalf("step after failed submit = %s, want %s", snap.Step, StepReview)
	}
	if snap.LastError == "" {
		t.Fatal("submit error not recorded")
	}

	dir.submitErr = nil
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if got := w.Snapshot().Step; got != StepSuccess {
		t.Fatalf("step after retry = %s, want %s", got, StepSuccess)
	}
}

func TestSubmitRequiresBothConsents(t *testing.T) {
	tests := []struct {
		authorized, terms, want bool
	}{
		{false, false, false},
		{true, false, false},
		{false, true, false},
		{true, true, true},
	}
	for _, tt := range tests {
		s := newSession("s", "u")
		s.Consent = Consent{Authorized: tt.authorized, Terms: tt.terms}
		if got := s.IsReviewValid(); got != tt.want {
			t.Errorf("consent(%v,%v): IsReviewValid() = %v, want %v", tt.authorized, tt.terms, got, tt.want)
		}
	}
}

func TestClaimExistingEndToEnd(t *testing.T) {
	dir := &fakeDirectory{providers: map[string]*ProviderSummary{
		"p1": claimableProvider("p1", "AutoFix Garage"),
		"p2": claimableProvider("p2", "Manila Auto Parts"),
	}}
	w := newTestWizard(dir, &fakeUploader{})
	ctx := context.Background()

	results, err := w.Search(ctx, "auto")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("search results = %d, want 2", len(results))
	}

	if _, err := w.Search(ctx, "a"); !errors.Is(err, ErrQueryTooShort) {
		t.Fatalf("short query error = %v, want ErrQueryTooShort", err)
	}

	if err := w.SelectResult(ctx, "p1"); err != nil {
		t.Fatalf("select result: %v", err)
	}
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	fillToReview(t, w, ctx)

	// Submit is blocked until both consents are given.
	if err := w.Advance(ctx); err == nil {
		t.Fatal("expected advance to fail without consent")
	}
	w.SetConsent(Consent{Authorized: true, Terms: true})
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	snap := w.Snapshot()
	if snap.Step != StepSuccess {
		t.Fatalf("step = %s, want %s", snap.Step, StepSuccess)
	}
	if snap.Receipt == nil || snap.Receipt.ProviderID != "p1" {
		t.Fatalf("receipt = %+v", snap.Receipt)
	}
	if dir.lastSubmit == nil || dir.lastSubmit.ProviderID != "p1" {
		t.Fatalf("submit request = %+v", dir.lastSubmit)
	}
	if dir.lastSubmit.Documents[SlotGovernmentID] == "" {
		t.Fatal("government id URL missing from submit request")
	}

	// The wizard is terminal after success.
	if err := w.Advance(ctx); !errors.Is(err, ErrAlreadyDone) {
		t.Fatalf("advance after success = %v, want ErrAlreadyDone", err)
	}
}

func TestAddNewEndToEnd(t *testing.T) {
	dir := &fakeDirectory{}
	w := newTestWizard(dir, &fakeUploader{})
	ctx := context.Background()

	if err := w.StartAddNew(); err != nil {
		t.Fatalf("start add new: %v", err)
	}

	// The new-listing form gates confirmation.
	if err := w.Advance(ctx); err == nil {
		t.Fatal("expected advance to fail with empty draft")
	}

	lat, lng := 14.5995, 120.9842
	w.SetDraft(ListingDraft{BusinessName: "New Shop", Category: "repair_shop", Address: "123 Rizal Ave", City: "Manila", StateProvince: "Metro Manila", Lat: &lat, Lng: &lng})
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("confirm draft: %v", err)
	}

	fillToReview(t, w, ctx)
	w.SetConsent(Consent{Authorized: true, Terms: true})
	if err := w.Advance(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if dir.lastCreate == nil {
		t.Fatal("create-and-claim was not called")
	}
	if dir.lastCreate.Listing.BusinessName != "New Shop" {
		t.Fatalf("listing = %+v", dir.lastCreate.Listing)
	}
	if dir.lastSubmit != nil {
		t.Fatal("claim-existing path called on add_new submit")
	}
}

func TestStartAgainstNonClaimableProvider(t *testing.T) {
	p := claimableProvider("p1", "Taken Garage")
	p.IsClaimable = false
	p.ClaimStatus = "claimed"
	dir := &fakeDirectory{providers: map[string]*ProviderSummary{"p1": p}}
	w := newTestWizard(dir, &fakeUploader{})

	err := w.Start(context.Background(), "p1")
	if !errors.Is(err, ErrNotClaimable) {
		t.Fatalf("start error = %v, want ErrNotClaimable", err)
	}
	// The session still shows the listing so the blocked state can render.
	snap := w.Snapshot()
	if snap.Provider == nil || snap.Step != StepConfirmation {
		t.Fatalf("blocked state not rendered: %+v", snap)
	}
}

func TestBlockingClaimDetection(t *testing.T) {
	dir := &fakeDirectory{
		providers: map[string]*ProviderSummary{"p1": claimableProvider("p1", "AutoFix Garage")},
		existing:  &ExistingClaim{ProviderID: "p9", BusinessName: "Other Shop", ClaimStatus: "pending"},
	}
	w := newTestWizard(dir, &fakeUploader{})

	if err := w.Start(context.Background(), "p1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := w.Snapshot()
	if !snap.HasBlockingClaim() {
		t.Fatal("claim on a different provider should block")
	}

	dir.existing.ProviderID = "p1"
	w2 := newTestWizard(dir, &fakeUploader{})
	if err := w2.Start(context.Background(), "p1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap2 := w2.Snapshot()
	if snap2.HasBlockingClaim() {
		t.Fatal("claim on the viewed provider should not block")
	}
}
