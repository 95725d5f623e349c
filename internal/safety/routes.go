package safety

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts safety endpoints under /api/safety.
func RegisterRoutes(r chi.Router, ctrl *Controller) {
	r.Route("/api/safety", func(r chi.Router) {
		r.Get("/status", handleStatus(ctrl))
		r.Get("/audit", handleAudit(ctrl))
		r.Post("/pause", handlePause(ctrl))
		r.Post("/resume", handleResume(ctrl))
		r.Post("/mode", handleSetMode(ctrl))
		r.Post("/crisis", handleCrisis(ctrl))
		r.Post("/check", handleCheck(ctrl))
	})
}

func handleStatus(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.GetStatus())
	}
}

func handleAudit(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 10
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		writeJSON(w, http.StatusOK, ctrl.GetAuditLog(limit))
	}
}

func handlePause(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Reason string `json:"reason"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, ctrl.EmergencyPause(req.Reason))
	}
}

func handleResume(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.ResumeOperations())
	}
}

func handleSetMode(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		ctrl.SetMode(req.Mode)
		writeJSON(w, http.StatusOK, map[string]string{"mode": string(ctrl.Mode())})
	}
}

func handleCrisis(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CrisisType string `json:"crisis_type"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, ctrl.ActivateCrisisMode(req.CrisisType))
	}
}

func handleCheck(ctrl *Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, ctrl.CheckContent(req.Content))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
