package workflow

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/contentpilot/contentpilot/internal/agent"
	"github.com/contentpilot/contentpilot/internal/content"
	"github.com/contentpilot/contentpilot/internal/notify"
)

// Generator regenerates content during a revision request. *agent.Agent
// satisfies it; tests substitute stubs.
type Generator interface {
	Generate(ctx context.Context, req agent.Request) (*agent.Generated, error)
}

// Workflow is the approval state machine. It is the only component that
// moves content between statuses; the store performs no transition
// validation of its own.
//
// Every operation returns an unambiguous success boolean. A missing
// content id is reported as false, never as a panic or error value
// callers could overlook.
type Workflow struct {
	store *content.Store
	gen   Generator
	sink  notify.Sink
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithGenerator enables revision regeneration through the given
// generator. Without one, revision requests perform bookkeeping only.
func WithGenerator(g Generator) Option {
	return func(w *Workflow) { w.gen = g }
}

// WithSink routes transition notifications to the given sink.
func WithSink(s notify.Sink) Option {
	return func(w *Workflow) { w.sink = s }
}

// New creates a Workflow over the given store.
func New(store *content.Store, opts ...Option) *Workflow {
	w := &Workflow{store: store}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SubmitForApproval moves an item into the approval queue. Returns
// false for a missing id without producing any activity entry.
func (w *Workflow) SubmitForApproval(ctx context.Context, id string) bool {
	if _, err := w.store.Get(ctx, id); err != nil {
		return false
	}

	if err := w.store.UpdateStatus(ctx, id, content.StatusPendingApproval); err != nil {
		log.Printf("workflow: submit %s: %v", id, err)
		return false
	}

	w.logActivity(ctx, "submitted_for_approval", "Content "+id+" submitted for approval", id)
	w.sendNotification(ctx, id, "submitted", "")

	return true
}

// Approve records an explicit human approval. Approving an already
// approved item is a no-op that still reports success: no second
// record, no status touch.
func (w *Workflow) Approve(ctx context.Context, id, approver, comments string) bool {
	item, err := w.store.Get(ctx, id)
	if err != nil {
		return false
	}

	if item.Status == content.StatusApproved {
		return true
	}

	err = w.store.RecordApproval(ctx, content.ApprovalRecord{
		ContentID: id,
		Approver:  approver,
		Comments:  comments,
	})
	if err != nil {
		log.Printf("workflow: approve %s: %v", id, err)
		return false
	}

	w.logActivity(ctx, "approved", "Content "+id+" approved by "+approver, id)
	w.sendNotification(ctx, id, "approved", "")

	return true
}

// Reject is a hard stop. There is no idempotence guard: rejecting an
// already rejected item appends another record.
func (w *Workflow) Reject(ctx context.Context, id, reason, reviewer string) bool {
	err := w.store.RecordRejection(ctx, content.ApprovalRecord{
		ContentID: id,
		Approver:  reviewer,
		Comments:  reason,
	})
	if errors.Is(err, content.ErrNotFound) {
		return false
	}
	if err != nil {
		log.Printf("workflow: reject %s: %v", id, err)
		return false
	}

	w.logActivity(ctx, "rejected", "Content "+id+" rejected: "+reason, id)
	w.sendNotification(ctx, id, "rejected", reason)

	return true
}

// RequestRevision sends an item back for regeneration with the
// reviewer's notes folded into the prompt. The bookkeeping (status
// change plus revision_requested record) always happens first; a
// generation failure afterwards does not roll it back, it only means no
// new draft appears. Callers poll GetRevisionsOf to see whether one did.
func (w *Workflow) RequestRevision(ctx context.Context, id, notes, reviewer string) bool {
	original, err := w.store.Get(ctx, id)
	if err != nil {
		return false
	}

	err = w.store.RecordRevisionRequest(ctx, content.ApprovalRecord{
		ContentID: id,
		Approver:  reviewer,
		Comments:  notes,
	})
	if err != nil {
		log.Printf("workflow: request revision %s: %v", id, err)
		return false
	}

	w.logActivity(ctx, "revision_requested", "Content "+id+" needs revision: "+truncate(notes, 50), id)
	w.sendNotification(ctx, id, "revision_requested", notes)

	if w.gen != nil {
		w.regenerate(ctx, original, notes, reviewer)
	}

	return true
}

// regenerate invokes the generator with accumulated feedback and, on
// success, creates a new draft linked to the original.
func (w *Workflow) regenerate(ctx context.Context, original *content.Item, notes, reviewer string) {
	brand := agent.BrandVoiceFromMetadata(original.Metadata)

	tone := ""
	if t, ok := original.Metadata["tone"].(string); ok {
		tone = t
	}

	topic := original.Topic + " - REVISION REQUESTED: " + notes

	gen, err := w.gen.Generate(ctx, agent.Request{
		Platform:   string(original.Platform),
		Topic:      topic,
		BrandVoice: brand,
		Tone:       tone,
	})
	if err != nil {
		// Deliberate asymmetry: the revision request stays recorded
		// even though no new draft was produced.
		log.Printf("workflow: revision regeneration for %s: %v", original.ID, err)
		return
	}

	meta := gen.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	meta[content.MetaRevisionOf] = original.ID
	meta[content.MetaRevisionNotes] = notes
	meta[content.MetaReviewer] = reviewer
	meta[content.MetaOriginalTopic] = original.Topic
	meta[content.MetaRevisedAt] = time.Now().UTC().Format(time.RFC3339)

	newID, err := w.store.Create(ctx, original.Platform, original.Topic, gen.Content, meta)
	if err != nil {
		log.Printf("workflow: storing revision of %s: %v", original.ID, err)
		return
	}

	err = w.store.UpdateMetadata(ctx, original.ID, map[string]any{
		content.MetaHasRevisions:   true,
		content.MetaLatestRevision: newID,
	})
	if err != nil {
		log.Printf("workflow: linking revision %s -> %s: %v", original.ID, newID, err)
	}

	w.logActivity(ctx, "content_regenerated", "Regenerated content for revision of "+original.ID, newID)
	w.logActivity(ctx, "revision_created", "Revision "+newID+" created for content "+original.ID, original.ID)
}

// Discard marks an item discarded. Discarded is a terminal status, not
// a deletion; the record stays queryable.
func (w *Workflow) Discard(ctx context.Context, id string) bool {
	if err := w.store.UpdateStatus(ctx, id, content.StatusDiscarded); err != nil {
		return false
	}
	w.logActivity(ctx, "discarded", "Content "+id+" discarded", id)
	return true
}

// ApprovalQueue returns all content pending approval.
func (w *Workflow) ApprovalQueue(ctx context.Context) ([]content.Item, error) {
	return w.store.GetByStatus(ctx, content.StatusPendingApproval)
}

// ReviewQueue returns all content pending review.
func (w *Workflow) ReviewQueue(ctx context.Context) ([]content.Item, error) {
	return w.store.GetByStatus(ctx, content.StatusPendingReview)
}

// logActivity writes an activity entry. A log-write failure must never
// abort the surrounding transition, so errors are only printed.
func (w *Workflow) logActivity(ctx context.Context, action, details, contentID string) {
	if err := w.store.LogActivity(ctx, action, details, contentID); err != nil {
		log.Printf("workflow: logging %s for %s: %v", action, contentID, err)
	}
}

// sendNotification hands a transition record to the sink, if any.
func (w *Workflow) sendNotification(ctx context.Context, contentID, action, extra string) {
	if w.sink == nil {
		return
	}
	err := w.sink.Notify(ctx, notify.Notification{
		ContentID: contentID,
		Action:    action,
		ExtraInfo: extra,
	})
	if err != nil {
		log.Printf("workflow: notifying %s for %s: %v", action, contentID, err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
