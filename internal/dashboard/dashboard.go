package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contentpilot/contentpilot/internal/content"
	"github.com/contentpilot/contentpilot/internal/safety"
)

// Dashboard aggregates pipeline and safety state for front ends.
type Dashboard struct {
	store  *content.Store
	safety *safety.Controller
}

// New creates a Dashboard over the given store and safety controller.
func New(store *content.Store, ctrl *safety.Controller) *Dashboard {
	return &Dashboard{store: store, safety: ctrl}
}

// RegisterRoutes mounts dashboard endpoints under /api/dashboard.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Route("/api/dashboard", func(r chi.Router) {
		r.Get("/summary", d.handleSummary)
		r.Get("/feed", d.handleFeed)
	})
}

// Summary is the single-call dashboard payload.
type Summary struct {
	Stats          *content.Stats     `json:"stats"`
	Safety         safety.Status      `json:"safety"`
	RecentActivity []content.Activity `json:"recent_activity"`
	RecentContent  []content.Item     `json:"recent_content"`
}

func (d *Dashboard) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := d.store.Stats(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	activity, err := d.store.RecentActivities(ctx, 10)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	recent, err := d.store.Recent(ctx, 5)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, Summary{
		Stats:          stats,
		Safety:         d.safety.GetStatus(),
		RecentActivity: activity,
		RecentContent:  recent,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
