package content

import "time"

// Status is the approval-pipeline state of a content item.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingReview   Status = "pending_review"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusNeedsRevision   Status = "needs_revision"
	StatusScheduled       Status = "scheduled"
	StatusPublished       Status = "published"
	StatusDiscarded       Status = "discarded"
)

// Terminal reports whether no further workflow transition is defined
// from this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusPublished, StatusDiscarded:
		return true
	}
	return false
}

// Platform identifies the social network a content item targets.
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformBlog      Platform = "blog"
)

// Metadata keys used for revision linkage. Items created by a revision
// carry MetaRevisionOf; originals that spawned revisions carry
// MetaHasRevisions and MetaLatestRevision.
const (
	MetaRevisionOf     = "revision_of"
	MetaLatestRevision = "latest_revision"
	MetaHasRevisions   = "has_revisions"
	MetaRevisionNotes  = "revision_notes"
	MetaReviewer       = "reviewer"
	MetaOriginalTopic  = "original_topic"
	MetaRevisedAt      = "revised_at"
)

// Item is one unit of generated material moving through the pipeline.
type Item struct {
	ID            string         `json:"id"`
	Platform      Platform       `json:"platform"`
	Topic         string         `json:"topic"`
	Content       string         `json:"content"`
	Metadata      map[string]any `json:"metadata"`
	Status        Status         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	ScheduledTime *time.Time     `json:"scheduled_time,omitempty"`
	PublishedTime *time.Time     `json:"published_time,omitempty"`
}

// ApprovalAction describes what a reviewer decided.
type ApprovalAction string

const (
	ActionApproved          ApprovalAction = "approved"
	ActionRejected          ApprovalAction = "rejected"
	ActionRevisionRequested ApprovalAction = "revision_requested"
)

// ApprovalRecord is an immutable audit entry for a reviewer decision.
type ApprovalRecord struct {
	ID        string         `json:"id"`
	ContentID string         `json:"content_id"`
	Approver  string         `json:"approver"`
	Action    ApprovalAction `json:"action"`
	Comments  string         `json:"comments"`
	Timestamp time.Time      `json:"timestamp"`
}

// Activity is one row of the process-wide append-only activity log.
type Activity struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	ContentID string    `json:"content_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats summarises the pipeline for dashboards.
type Stats struct {
	Total        int            `json:"total"`
	ByStatus     map[Status]int `json:"by_status"`
	ApprovalRate float64        `json:"approval_rate"`
	Generated    int            `json:"generated"`
}
