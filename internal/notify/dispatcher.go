package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Dispatcher persists notifications and optionally POSTs them to a
// webhook. A failed webhook delivery is logged and swallowed; the
// record itself is the contract.
type Dispatcher struct {
	store      *Store
	webhookURL string
	client     *http.Client
}

// NewDispatcher creates a Dispatcher backed by the given store. An
// empty webhookURL disables webhook delivery.
func NewDispatcher(store *Store, webhookURL string) *Dispatcher {
	return &Dispatcher{
		store:      store,
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Notify persists the notification and attempts webhook delivery.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if err := d.store.Create(ctx, n); err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	if d.webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return nil
	}
	if err := d.sendWebhook(ctx, payload); err != nil {
		log.Printf("notify: webhook delivery: %v", err)
		return nil
	}
	_ = d.store.MarkDelivered(ctx, n.ID)
	return nil
}

func (d *Dispatcher) sendWebhook(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
