package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/contentpilot/contentpilot/internal/agent"
	"github.com/contentpilot/contentpilot/internal/content"
	"github.com/contentpilot/contentpilot/internal/db"
	"github.com/contentpilot/contentpilot/internal/notify"
)

// stubGenerator returns a canned result or error and records the
// requests it received.
type stubGenerator struct {
	result   *agent.Generated
	err      error
	requests []agent.Request
}

func (s *stubGenerator) Generate(_ context.Context, req agent.Request) (*agent.Generated, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// memorySink collects notifications in memory.
type memorySink struct {
	notifications []notify.Notification
}

func (m *memorySink) Notify(_ context.Context, n notify.Notification) error {
	m.notifications = append(m.notifications, n)
	return nil
}

func setupStore(t *testing.T) *content.Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return content.NewStore(database)
}

func createDraft(t *testing.T, store *content.Store, meta map[string]any) string {
	t.Helper()
	id, err := store.Create(context.Background(), content.PlatformLinkedIn, "AI trends", "Draft body", meta)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return id
}

func countActivities(t *testing.T, store *content.Store, action string) int {
	t.Helper()
	entries, err := store.RecentActivities(context.Background(), 100)
	if err != nil {
		t.Fatalf("RecentActivities: %v", err)
	}
	n := 0
	for _, e := range entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

func TestSubmitForApproval(t *testing.T) {
	store := setupStore(t)
	wf := New(store)
	ctx := context.Background()

	id := createDraft(t, store, nil)

	if !wf.SubmitForApproval(ctx, id) {
		t.Fatal("SubmitForApproval = false, want true")
	}

	item, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item.Status != content.StatusPendingApproval {
		t.Errorf("Status = %q, want %q", item.Status, content.StatusPendingApproval)
	}
	if countActivities(t, store, "submitted_for_approval") != 1 {
		t.Error("expected one submitted_for_approval activity entry")
	}
}

func TestSubmitMissingContent(t *testing.T) {
	store := setupStore(t)
	wf := New(store)

	if wf.SubmitForApproval(context.Background(), "missing") {
		t.Error("SubmitForApproval = true for missing id, want false")
	}
	// A failed submit must not leave a trace in the activity log.
	if countActivities(t, store, "submitted_for_approval") != 0 {
		t.Error("expected no activity entries for a failed submit")
	}
}

func TestApprove(t *testing.T) {
	store := setupStore(t)
	sink := &memorySink{}
	wf := New(store, WithSink(sink))
	ctx := context.Background()

	id := createDraft(t, store, nil)
	wf.SubmitForApproval(ctx, id)

	if !wf.Approve(ctx, id, "alice", "ship it") {
		t.Fatal("Approve = false, want true")
	}

	item, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item.Status != content.StatusApproved {
		t.Errorf("Status = %q, want %q", item.Status, content.StatusApproved)
	}

	records, err := store.GetApprovals(ctx, id)
	if err != nil {
		t.Fatalf("GetApprovals: %v", err)
	}
	if len(records) != 1 || records[0].Approver != "alice" {
		t.Errorf("approvals = %v, want one record by alice", records)
	}

	var approvedNote bool
	for _, n := range sink.notifications {
		if n.Action == "approved" && n.ContentID == id {
			approvedNote = true
		}
	}
	if !approvedNote {
		t.Error("expected an approved notification")
	}
}

func TestApproveIsIdempotent(t *testing.T) {
	store := setupStore(t)
	wf := New(store)
	ctx := context.Background()

	id := createDraft(t, store, nil)
	wf.SubmitForApproval(ctx, id)

	if !wf.Approve(ctx, id, "alice", "") {
		t.Fatal("first Approve = false, want true")
	}
	if !wf.Approve(ctx, id, "bob", "me too") {
		t.Fatal("second Approve = false, want true")
	}

	// The second call must not add a record or touch the item.
	records, err := store.GetApprovals(ctx, id)
	if err != nil {
		t.Fatalf("GetApprovals: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 approval record after double approve, got %d", len(records))
	}
	if records[0].Approver != "alice" {
		t.Errorf("Approver = %q, want alice (first approver kept)", records[0].Approver)
	}
	if countActivities(t, store, "approved") != 1 {
		t.Error("expected one approved activity entry")
	}
}

func TestApproveMissingContent(t *testing.T) {
	store := setupStore(t)
	wf := New(store)

	if wf.Approve(context.Background(), "missing", "alice", "") {
		t.Error("Approve = true for missing id, want false")
	}
}

func TestReject(t *testing.T) {
	store := setupStore(t)
	wf := New(store)
	ctx := context.Background()

	id := createDraft(t, store, nil)
	wf.SubmitForApproval(ctx, id)

	if !wf.Reject(ctx, id, "off brand", "bob") {
		t.Fatal("Reject = false, want true")
	}

	item, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item.Status != content.StatusRejected {
		t.Errorf("Status = %q, want %q", item.Status, content.StatusRejected)
	}
	if !item.Status.Terminal() {
		t.Error("rejected should be terminal")
	}
}

func TestRejectTwiceAppendsSecondRecord(t *testing.T) {
	store := setupStore(t)
	wf := New(store)
	ctx := context.Background()

	id := createDraft(t, store, nil)

	if !wf.Reject(ctx, id, "first", "bob") {
		t.Fatal("first Reject = false, want true")
	}
	if !wf.Reject(ctx, id, "second", "carol") {
		t.Fatal("second Reject = false, want true")
	}

	records, err := store.GetApprovals(ctx, id)
	if err != nil {
		t.Fatalf("GetApprovals: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 rejection records, got %d", len(records))
	}
}

func TestRejectMissingContent(t *testing.T) {
	store := setupStore(t)
	wf := New(store)

	if wf.Reject(context.Background(), "missing", "reason", "bob") {
		t.Error("Reject = true for missing id, want false")
	}
}

func TestRequestRevisionWithoutGenerator(t *testing.T) {
	store := setupStore(t)
	wf := New(store)
	ctx := context.Background()

	id := createDraft(t, store, nil)

	if !wf.RequestRevision(ctx, id, "make it shorter", "carol") {
		t.Fatal("RequestRevision = false, want true")
	}

	item, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item.Status != content.StatusNeedsRevision {
		t.Errorf("Status = %q, want %q", item.Status, content.StatusNeedsRevision)
	}

	revisions, err := store.GetRevisionsOf(ctx, id)
	if err != nil {
		t.Fatalf("GetRevisionsOf: %v", err)
	}
	if len(revisions) != 0 {
		t.Errorf("expected no regenerated drafts without a generator, got %d", len(revisions))
	}
}

func TestRequestRevisionRegenerates(t *testing.T) {
	store := setupStore(t)
	gen := &stubGenerator{result: &agent.Generated{
		Content:  "Revised body",
		Hashtags: []string{"#ai"},
		Metadata: map[string]any{"tone": "bold"},
	}}
	wf := New(store, WithGenerator(gen))
	ctx := context.Background()

	id := createDraft(t, store, map[string]any{"tone": "bold"})

	if !wf.RequestRevision(ctx, id, "make it shorter", "carol") {
		t.Fatal("RequestRevision = false, want true")
	}

	// Reviewer notes must reach the generator prompt.
	if len(gen.requests) != 1 {
		t.Fatalf("expected 1 generation call, got %d", len(gen.requests))
	}
	req := gen.requests[0]
	if req.Platform != string(content.PlatformLinkedIn) {
		t.Errorf("Platform = %q, want linkedin", req.Platform)
	}
	if req.Tone != "bold" {
		t.Errorf("Tone = %q, want bold", req.Tone)
	}
	if want := "AI trends - REVISION REQUESTED: make it shorter"; req.Topic != want {
		t.Errorf("Topic = %q, want %q", req.Topic, want)
	}

	revisions, err := store.GetRevisionsOf(ctx, id)
	if err != nil {
		t.Fatalf("GetRevisionsOf: %v", err)
	}
	if len(revisions) != 1 {
		t.Fatalf("expected 1 regenerated draft, got %d", len(revisions))
	}
	rev := revisions[0]
	if rev.Status != content.StatusDraft {
		t.Errorf("revision Status = %q, want %q", rev.Status, content.StatusDraft)
	}
	if rev.Content != "Revised body" {
		t.Errorf("revision Content = %q, want %q", rev.Content, "Revised body")
	}
	if rev.Metadata[content.MetaRevisionOf] != id {
		t.Errorf("revision_of = %v, want %q", rev.Metadata[content.MetaRevisionOf], id)
	}
	if rev.Metadata[content.MetaReviewer] != "carol" {
		t.Errorf("reviewer = %v, want carol", rev.Metadata[content.MetaReviewer])
	}
	// The new draft keeps the original topic, not the annotated one.
	if rev.Topic != "AI trends" {
		t.Errorf("revision Topic = %q, want original topic", rev.Topic)
	}

	original, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if original.Metadata[content.MetaHasRevisions] != true {
		t.Error("expected has_revisions flag on the original")
	}
	if original.Metadata[content.MetaLatestRevision] != rev.ID {
		t.Errorf("latest_revision = %v, want %q", original.Metadata[content.MetaLatestRevision], rev.ID)
	}
}

func TestRequestRevisionGenerationFailure(t *testing.T) {
	store := setupStore(t)
	gen := &stubGenerator{err: errors.New("provider down")}
	wf := New(store, WithGenerator(gen))
	ctx := context.Background()

	id := createDraft(t, store, nil)

	// Bookkeeping succeeds even though regeneration fails.
	if !wf.RequestRevision(ctx, id, "tighten the hook", "carol") {
		t.Fatal("RequestRevision = false, want true")
	}

	item, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item.Status != content.StatusNeedsRevision {
		t.Errorf("Status = %q, want %q", item.Status, content.StatusNeedsRevision)
	}

	records, err := store.GetApprovals(ctx, id)
	if err != nil {
		t.Fatalf("GetApprovals: %v", err)
	}
	if len(records) != 1 || records[0].Action != content.ActionRevisionRequested {
		t.Errorf("approvals = %v, want one revision_requested record", records)
	}

	revisions, err := store.GetRevisionsOf(ctx, id)
	if err != nil {
		t.Fatalf("GetRevisionsOf: %v", err)
	}
	if len(revisions) != 0 {
		t.Errorf("expected no drafts after failed regeneration, got %d", len(revisions))
	}
}

func TestRequestRevisionMissingContent(t *testing.T) {
	store := setupStore(t)
	gen := &stubGenerator{}
	wf := New(store, WithGenerator(gen))

	if wf.RequestRevision(context.Background(), "missing", "notes", "carol") {
		t.Error("RequestRevision = true for missing id, want false")
	}
	if len(gen.requests) != 0 {
		t.Error("generator must not run for a missing id")
	}
}

func TestDiscard(t *testing.T) {
	store := setupStore(t)
	wf := New(store)
	ctx := context.Background()

	id := createDraft(t, store, nil)

	if !wf.Discard(ctx, id) {
		t.Fatal("Discard = false, want true")
	}

	item, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item.Status != content.StatusDiscarded {
		t.Errorf("Status = %q, want %q", item.Status, content.StatusDiscarded)
	}
}

func TestApprovalQueue(t *testing.T) {
	store := setupStore(t)
	wf := New(store)
	ctx := context.Background()

	first := createDraft(t, store, nil)
	second := createDraft(t, store, nil)
	createDraft(t, store, nil) // stays a draft

	wf.SubmitForApproval(ctx, first)
	wf.SubmitForApproval(ctx, second)

	queue, err := wf.ApprovalQueue(ctx)
	if err != nil {
		t.Fatalf("ApprovalQueue: %v", err)
	}
	if len(queue) != 2 {
		t.Errorf("expected 2 queued items, got %d", len(queue))
	}
}

// --- HTTP handler tests ---

func setupRouter(t *testing.T) (chi.Router, *content.Store) {
	t.Helper()
	store := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, New(store))
	return r, store
}

func TestHTTPApprove(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()

	id := createDraft(t, store, nil)
	if err := store.UpdateStatus(ctx, id, content.StatusPendingApproval); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	body := strings.NewReader(`{"approver": "alice", "comments": "ship it"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/workflow/"+id+"/approve", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var result transitionResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success {
		t.Error("Success = false, want true")
	}

	item, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item.Status != content.StatusApproved {
		t.Errorf("Status = %q, want %q", item.Status, content.StatusApproved)
	}
}

func TestHTTPApproveRequiresApprover(t *testing.T) {
	r, store := setupRouter(t)

	id := createDraft(t, store, nil)

	body := strings.NewReader(`{"comments": "no name"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/workflow/"+id+"/approve", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHTTPSubmitMissingContent(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/workflow/missing/submit", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHTTPApprovalQueue(t *testing.T) {
	r, store := setupRouter(t)
	ctx := context.Background()

	id := createDraft(t, store, nil)
	if err := store.UpdateStatus(ctx, id, content.StatusPendingApproval); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/workflow/queue/approval", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var items []content.Item
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].ID != id {
		t.Errorf("expected exactly the queued item, got %v", items)
	}
}
