package dashboard

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/contentpilot/contentpilot/internal/content"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same trust model as the REST API; CORS gates the browser.
		return true
	},
}

// feedPollInterval is how often the feed checks for new activity.
const feedPollInterval = 3 * time.Second

// handleFeed streams activity-log entries over a websocket. On connect
// the latest entries are sent, then new ones as they appear.
func (d *Dashboard) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("dashboard: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain reads so close frames are processed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("dashboard: websocket read: %v", err)
				}
				return
			}
		}
	}()

	var lastSeen time.Time

	send := func(entries []content.Activity) error {
		// RecentActivities returns newest first; push oldest first so
		// the client appends in order.
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			if !e.Timestamp.After(lastSeen) {
				continue
			}
			if err := conn.WriteJSON(e); err != nil {
				return err
			}
			lastSeen = e.Timestamp
		}
		return nil
	}

	entries, err := d.store.RecentActivities(ctx, 20)
	if err == nil {
		if err := send(entries); err != nil {
			return
		}
	}

	ticker := time.NewTicker(feedPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			entries, err := d.store.RecentActivities(ctx, 50)
			if err != nil {
				log.Printf("dashboard: reading activity feed: %v", err)
				continue
			}
			if err := send(entries); err != nil {
				return
			}
		}
	}
}
