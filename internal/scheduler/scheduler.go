package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/contentpilot/contentpilot/internal/content"
	"github.com/contentpilot/contentpilot/internal/safety"
)

// Errors returned by scheduling operations.
var (
	ErrNotApproved       = errors.New("content is not approved")
	ErrPastTime          = errors.New("cannot schedule in the past")
	ErrAutomationBlocked = errors.New("safety mode does not permit automated scheduling")
)

// Scheduler queues approved content for posting. Actual posting is
// simulated: PublishDue flips due items to published without calling
// any social network.
type Scheduler struct {
	store  *content.Store
	safety *safety.Controller
}

// New creates a Scheduler over the given store and safety controller.
func New(store *content.Store, ctrl *safety.Controller) *Scheduler {
	return &Scheduler{store: store, safety: ctrl}
}

// Schedule queues an approved item for the given time. Only approved
// content may be scheduled; this is the hard approval gate on the
// posting side.
func (s *Scheduler) Schedule(ctx context.Context, id string, at time.Time) error {
	item, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.Status != content.StatusApproved {
		return fmt.Errorf("%w: status is %s", ErrNotApproved, item.Status)
	}
	if at.Before(time.Now()) {
		return ErrPastTime
	}

	if err := s.store.SetScheduled(ctx, id, at); err != nil {
		return err
	}

	s.logActivity(ctx, "content_scheduled",
		fmt.Sprintf("Content %s scheduled for %s", id, at.UTC().Format(time.RFC3339)), id)
	return nil
}

// AutoSchedule schedules an item without a human in the loop. It
// refuses unless the current safety mode permits automation.
func (s *Scheduler) AutoSchedule(ctx context.Context, id string, at time.Time) error {
	if !s.safety.AllowsAutomation() {
		return ErrAutomationBlocked
	}
	return s.Schedule(ctx, id, at)
}

// Upcoming returns all scheduled items, most recent first.
func (s *Scheduler) Upcoming(ctx context.Context) ([]content.Item, error) {
	return s.store.GetByStatus(ctx, content.StatusScheduled)
}

// PublishDue marks every scheduled item whose time has arrived as
// published. Posting integrations are out of scope, so publication is
// a status flip plus an activity entry. Returns the published ids.
func (s *Scheduler) PublishDue(ctx context.Context, now time.Time) ([]string, error) {
	if !s.safety.AllowsGeneration() {
		// Crisis or emergency stop suspends posting entirely.
		return nil, nil
	}

	scheduled, err := s.store.GetByStatus(ctx, content.StatusScheduled)
	if err != nil {
		return nil, err
	}

	var published []string
	for _, item := range scheduled {
		if item.ScheduledTime == nil || item.ScheduledTime.After(now) {
			continue
		}
		if err := s.store.SetPublished(ctx, item.ID, now); err != nil {
			log.Printf("scheduler: publishing %s: %v", item.ID, err)
			continue
		}
		s.logActivity(ctx, "content_published",
			fmt.Sprintf("Content %s published to %s", item.ID, item.Platform), item.ID)
		published = append(published, item.ID)
	}

	return published, nil
}

func (s *Scheduler) logActivity(ctx context.Context, action, details, contentID string) {
	if err := s.store.LogActivity(ctx, action, details, contentID); err != nil {
		log.Printf("scheduler: logging %s for %s: %v", action, contentID, err)
	}
}
