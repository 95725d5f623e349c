package workflow

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts workflow transition endpoints under /api/workflow.
func RegisterRoutes(r chi.Router, wf *Workflow) {
	r.Route("/api/workflow", func(r chi.Router) {
		r.Get("/queue/approval", handleApprovalQueue(wf))
		r.Get("/queue/review", handleReviewQueue(wf))
		r.Post("/{id}/submit", handleSubmit(wf))
		r.Post("/{id}/approve", handleApprove(wf))
		r.Post("/{id}/reject", handleReject(wf))
		r.Post("/{id}/revise", handleRevise(wf))
		r.Post("/{id}/discard", handleDiscard(wf))
	})
}

type transitionResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

func writeResult(w http.ResponseWriter, id string, ok bool) {
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	writeJSON(w, status, transitionResult{ID: id, Success: ok})
}

func handleSubmit(wf *Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		writeResult(w, id, wf.SubmitForApproval(r.Context(), id))
	}
}

func handleApprove(wf *Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req struct {
			Approver string `json:"approver"`
			Comments string `json:"comments"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Approver == "" {
			http.Error(w, "approver is required", http.StatusBadRequest)
			return
		}

		writeResult(w, id, wf.Approve(r.Context(), id, req.Approver, req.Comments))
	}
}

func handleReject(wf *Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req struct {
			Reason   string `json:"reason"`
			Reviewer string `json:"reviewer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reviewer == "" {
			http.Error(w, "reviewer is required", http.StatusBadRequest)
			return
		}

		writeResult(w, id, wf.Reject(r.Context(), id, req.Reason, req.Reviewer))
	}
}

func handleRevise(wf *Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req struct {
			Notes    string `json:"notes"`
			Reviewer string `json:"reviewer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Notes == "" {
			http.Error(w, "notes are required", http.StatusBadRequest)
			return
		}

		writeResult(w, id, wf.RequestRevision(r.Context(), id, req.Notes, req.Reviewer))
	}
}

func handleDiscard(wf *Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		writeResult(w, id, wf.Discard(r.Context(), id))
	}
}

func handleApprovalQueue(wf *Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := wf.ApprovalQueue(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func handleReviewQueue(wf *Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := wf.ReviewQueue(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
