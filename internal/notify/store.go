package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contentpilot/contentpilot/internal/db"
)

// Store persists notification records.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new notification. If n.ID is empty a UUID is generated.
func (s *Store) Create(ctx context.Context, n Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	delivered := 0
	if n.Delivered {
		delivered = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, content_id, action, extra_info, delivered)
		VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.ContentID, n.Action, n.ExtraInfo, delivered,
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// List returns the newest notifications, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content_id, action, extra_info, delivered, created_at
		FROM notifications ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var list []Notification
	for rows.Next() {
		var (
			n         Notification
			delivered int
			ts        string
		)
		if err := rows.Scan(&n.ID, &n.ContentID, &n.Action, &n.ExtraInfo, &delivered, &ts); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Delivered = delivered == 1
		if t, err := time.ParseInLocation(time.DateTime, ts, time.UTC); err == nil {
			n.CreatedAt = t
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkDelivered flags a notification as delivered.
func (s *Store) MarkDelivered(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET delivered = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking notification delivered: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("notification %s not found", id)
	}
	return nil
}
