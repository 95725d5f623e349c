package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contentpilot/contentpilot/internal/db"
)

// ErrNotFound is returned when a content id does not exist.
var ErrNotFound = errors.New("content not found")

// Store persists content items, approval records, and the activity log.
// It performs no transition validation; the workflow is the only caller
// allowed to change statuses.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new draft item and logs a content_created activity
// entry in the same transaction. Returns the new item's id.
func (s *Store) Create(ctx context.Context, platform Platform, topic, body string, metadata map[string]any) (string, error) {
	id := uuid.New().String()

	if metadata == nil {
		metadata = map[string]any{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO content (id, platform, topic, content, metadata, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, string(platform), topic, body, string(metaJSON), string(StatusDraft),
	)
	if err != nil {
		return "", fmt.Errorf("inserting content: %w", err)
	}

	details := fmt.Sprintf("Created %s content: %s", platform, truncate(topic, 50))
	_, err = tx.ExecContext(ctx, `
		INSERT INTO activity_log (id, action, details, content_id)
		VALUES (?, ?, ?, ?)`,
		uuid.New().String(), "content_created", details, id,
	)
	if err != nil {
		return "", fmt.Errorf("logging creation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing content: %w", err)
	}
	return id, nil
}

// Get retrieves a single item by id. Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, platform, topic, content, metadata, status,
		       created_at, updated_at, scheduled_time, published_time
		FROM content WHERE id = ?`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

// GetByStatus returns all items with the given status, most recent first.
func (s *Store) GetByStatus(ctx context.Context, status Status) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform, topic, content, metadata, status,
		       created_at, updated_at, scheduled_time, published_time
		FROM content WHERE status = ? ORDER BY created_at DESC, rowid DESC`,
		string(status))
	if err != nil {
		return nil, fmt.Errorf("querying content by status: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// Recent returns the most recently created items regardless of status.
func (s *Store) Recent(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform, topic, content, metadata, status,
		       created_at, updated_at, scheduled_time, published_time
		FROM content ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent content: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// GetRevisionsOf returns items whose metadata marks them as revisions of
// the given id, most recent first.
func (s *Store) GetRevisionsOf(ctx context.Context, id string) ([]Item, error) {
	// Metadata is a JSON blob; match on the revision_of key.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform, topic, content, metadata, status,
		       created_at, updated_at, scheduled_time, published_time
		FROM content
		WHERE json_extract(metadata, '$.revision_of') = ?
		ORDER BY created_at DESC, rowid DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying revisions: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// UpdateStatus sets an item's status and refreshes updated_at. The
// legality of the transition is the workflow's responsibility.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE content SET status = ?, updated_at = datetime('now') WHERE id = ?`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateMetadata merges the given keys into an item's metadata blob.
// This is a direct patch, not a status transition.
func (s *Store) UpdateMetadata(ctx context.Context, id string, patch map[string]any) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	meta := item.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	for k, v := range patch {
		meta[k] = v
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE content SET metadata = ?, updated_at = datetime('now') WHERE id = ?`,
		string(metaJSON), id)
	if err != nil {
		return fmt.Errorf("patching metadata: %w", err)
	}
	return nil
}

// SetScheduled marks an item scheduled for the given time.
func (s *Store) SetScheduled(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE content
		SET status = ?, scheduled_time = ?, updated_at = datetime('now')
		WHERE id = ?`,
		string(StatusScheduled), at.UTC().Format(time.DateTime), id)
	if err != nil {
		return fmt.Errorf("scheduling content: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPublished marks an item published at the given time.
func (s *Store) SetPublished(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE content
		SET status = ?, published_time = ?, updated_at = datetime('now')
		WHERE id = ?`,
		string(StatusPublished), at.UTC().Format(time.DateTime), id)
	if err != nil {
		return fmt.Errorf("publishing content: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordApproval appends an approved ApprovalRecord and moves the item
// to approved as a single transaction.
func (s *Store) RecordApproval(ctx context.Context, rec ApprovalRecord) error {
	rec.Action = ActionApproved
	details := fmt.Sprintf("Approved by %s", rec.Approver)
	return s.recordDecision(ctx, rec, StatusApproved, "content_approved", details)
}

// RecordRejection appends a rejected ApprovalRecord and moves the item
// to rejected as a single transaction.
func (s *Store) RecordRejection(ctx context.Context, rec ApprovalRecord) error {
	rec.Action = ActionRejected
	details := fmt.Sprintf("Rejected: %s", truncate(rec.Comments, 50))
	return s.recordDecision(ctx, rec, StatusRejected, "content_rejected", details)
}

// RecordRevisionRequest appends a revision_requested ApprovalRecord and
// moves the item to needs_revision as a single transaction.
func (s *Store) RecordRevisionRequest(ctx context.Context, rec ApprovalRecord) error {
	rec.Action = ActionRevisionRequested
	details := fmt.Sprintf("Revision: %s", truncate(rec.Comments, 50))
	return s.recordDecision(ctx, rec, StatusNeedsRevision, "revision_requested", details)
}

// recordDecision writes the approval row, the status update, and the
// activity entry atomically. Both happen or neither does.
func (s *Store) recordDecision(ctx context.Context, rec ApprovalRecord, status Status, action, details string) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO approvals (id, content_id, approver, action, comments)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.ContentID, rec.Approver, string(rec.Action), rec.Comments,
	)
	if err != nil {
		return fmt.Errorf("inserting approval record: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE content SET status = ?, updated_at = datetime('now') WHERE id = ?`,
		string(status), rec.ContentID)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO activity_log (id, action, details, content_id)
		VALUES (?, ?, ?, ?)`,
		uuid.New().String(), action, details, rec.ContentID,
	)
	if err != nil {
		return fmt.Errorf("logging decision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing decision: %w", err)
	}
	return nil
}

// GetApprovals returns all approval records for an item in
// chronological order.
func (s *Store) GetApprovals(ctx context.Context, contentID string) ([]ApprovalRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content_id, approver, action, comments, timestamp
		FROM approvals WHERE content_id = ? ORDER BY timestamp ASC, rowid ASC`,
		contentID)
	if err != nil {
		return nil, fmt.Errorf("querying approvals: %w", err)
	}
	defer rows.Close()

	var records []ApprovalRecord
	for rows.Next() {
		var (
			rec        ApprovalRecord
			action, ts string
		)
		if err := rows.Scan(&rec.ID, &rec.ContentID, &rec.Approver, &action, &rec.Comments, &ts); err != nil {
			return nil, fmt.Errorf("scanning approval: %w", err)
		}
		rec.Action = ApprovalAction(action)
		rec.Timestamp = parseTimestamp(ts)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LogActivity appends to the activity log. Callers treat failures as
// non-fatal; a lost log line must never abort a transition.
func (s *Store) LogActivity(ctx context.Context, action, details, contentID string) error {
	var cid sql.NullString
	if contentID != "" {
		cid = sql.NullString{String: contentID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, action, details, content_id)
		VALUES (?, ?, ?, ?)`,
		uuid.New().String(), action, details, cid,
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

// RecentActivities returns the newest activity entries, newest first.
func (s *Store) RecentActivities(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, details, content_id, timestamp
		FROM activity_log ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var entries []Activity
	for rows.Next() {
		var (
			a   Activity
			cid sql.NullString
			ts  string
		)
		if err := rows.Scan(&a.ID, &a.Action, &a.Details, &cid, &ts); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		a.ContentID = cid.String
		a.Timestamp = parseTimestamp(ts)
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

// Stats computes pipeline counts and the approval rate. The rate is 0
// when nothing has been approved or rejected yet.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByStatus: map[Status]int{}}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM content GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting content: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		stats.ByStatus[Status(status)] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	approved := stats.ByStatus[StatusApproved]
	rejected := stats.ByStatus[StatusRejected]
	if approved+rejected > 0 {
		stats.ApprovalRate = float64(approved) / float64(approved+rejected)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_log WHERE action = 'content_created'`,
	).Scan(&stats.Generated)
	if err != nil {
		return nil, fmt.Errorf("counting generations: %w", err)
	}

	return stats, nil
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(sc scanner) (*Item, error) {
	var (
		item                 Item
		platform, status     string
		metaJSON             string
		createdAt, updatedAt string
		scheduled, published sql.NullString
	)

	err := sc.Scan(&item.ID, &platform, &item.Topic, &item.Content, &metaJSON,
		&status, &createdAt, &updatedAt, &scheduled, &published)
	if err != nil {
		return nil, err
	}

	item.Platform = Platform(platform)
	item.Status = Status(status)
	item.CreatedAt = parseTimestamp(createdAt)
	item.UpdatedAt = parseTimestamp(updatedAt)

	if scheduled.Valid {
		t := parseTimestamp(scheduled.String)
		item.ScheduledTime = &t
	}
	if published.Valid {
		t := parseTimestamp(published.String)
		item.PublishedTime = &t
	}

	// A malformed metadata blob degrades to an empty map rather than
	// failing the read.
	item.Metadata = map[string]any{}
	if metaJSON != "" {
		_ = json.Unmarshal([]byte(metaJSON), &item.Metadata)
	}

	return &item, nil
}

func collectItems(rows *sql.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning content: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.DateTime, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
