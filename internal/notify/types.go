package notify

import (
	"context"
	"time"
)

// Notification records that a workflow transition happened. Delivery
// (email, chat, webhook) is external; the pipeline only guarantees the
// record is produced and handed to a sink.
type Notification struct {
	ID        string    `json:"id"`
	ContentID string    `json:"content_id"`
	Action    string    `json:"action"`
	ExtraInfo string    `json:"extra_info,omitempty"`
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink receives notification records from the workflow.
type Sink interface {
	Notify(ctx context.Context, n Notification) error
}
