package safety

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestNewControllerDefaults(t *testing.T) {
	ctrl := NewController()

	if ctrl.Mode() != ModeManualReview {
		t.Errorf("Mode = %q, want %q", ctrl.Mode(), ModeManualReview)
	}

	status := ctrl.GetStatus()
	if status.EmergencyStop {
		t.Error("EmergencyStop = true on a fresh controller")
	}
	if status.SafetyScore != 95 {
		t.Errorf("SafetyScore = %d, want 95", status.SafetyScore)
	}
	if status.AuditLogSize != 1 {
		t.Errorf("AuditLogSize = %d, want 1 (system_start)", status.AuditLogSize)
	}

	th := ctrl.Thresholds()
	if th.MaxAutoApprovalsPerHour != 0 {
		t.Errorf("MaxAutoApprovalsPerHour = %d, want 0", th.MaxAutoApprovalsPerHour)
	}
	if th.MaxPostsPerHour != 10 {
		t.Errorf("MaxPostsPerHour = %d, want 10", th.MaxPostsPerHour)
	}
}

func TestEmergencyPause(t *testing.T) {
	ctrl := NewController()

	result := ctrl.EmergencyPause("suspicious output")

	if result.Status != "SYSTEM_HALTED" {
		t.Errorf("Status = %q, want SYSTEM_HALTED", result.Status)
	}
	if result.Reason != "suspicious output" {
		t.Errorf("Reason = %q, want suspicious output", result.Reason)
	}
	// The halt is effective before the call returns.
	if ctrl.Mode() != ModeEmergencyStop {
		t.Errorf("Mode = %q, want %q", ctrl.Mode(), ModeEmergencyStop)
	}
	if ctrl.AllowsGeneration() {
		t.Error("AllowsGeneration = true during emergency stop")
	}
	if ctrl.AllowsAutomation() {
		t.Error("AllowsAutomation = true during emergency stop")
	}

	status := ctrl.GetStatus()
	if !status.EmergencyStop {
		t.Error("EmergencyStop = false after pause")
	}
	if status.SafetyScore != 55 {
		t.Errorf("SafetyScore = %d, want 55", status.SafetyScore)
	}
	if status.LastIncident != "suspicious output" {
		t.Errorf("LastIncident = %q, want the pause reason", status.LastIncident)
	}
}

func TestEmergencyPauseDefaultReason(t *testing.T) {
	ctrl := NewController()

	result := ctrl.EmergencyPause("")
	if result.Reason != "Manual activation" {
		t.Errorf("Reason = %q, want Manual activation", result.Reason)
	}
}

func TestResumeOperations(t *testing.T) {
	ctrl := NewController()
	ctrl.EmergencyPause("drill")

	result := ctrl.ResumeOperations()

	if result.Status != "OPERATIONAL" {
		t.Errorf("Status = %q, want OPERATIONAL", result.Status)
	}
	// Resume lands in the safest mode, not the one before the pause.
	if ctrl.Mode() != ModeManualReview {
		t.Errorf("Mode = %q, want %q", ctrl.Mode(), ModeManualReview)
	}
	if ctrl.GetStatus().EmergencyStop {
		t.Error("EmergencyStop = true after resume")
	}
	if !ctrl.AllowsGeneration() {
		t.Error("AllowsGeneration = false after resume")
	}
}

func TestSetMode(t *testing.T) {
	ctrl := NewController()

	ctrl.SetMode("supervised_auto")
	if ctrl.Mode() != ModeSupervisedAuto {
		t.Errorf("Mode = %q, want %q", ctrl.Mode(), ModeSupervisedAuto)
	}

	ctrl.SetMode("full_automation")
	if ctrl.Mode() != ModeFullAutomation {
		t.Errorf("Mode = %q, want %q", ctrl.Mode(), ModeFullAutomation)
	}
}

func TestSetModeIgnoresUnknown(t *testing.T) {
	ctrl := NewController()
	ctrl.SetMode("supervised_auto")

	ctrl.SetMode("turbo")
	if ctrl.Mode() != ModeSupervisedAuto {
		t.Errorf("Mode = %q, want unchanged %q", ctrl.Mode(), ModeSupervisedAuto)
	}
}

func TestSetModeRejectsPrivilegedModes(t *testing.T) {
	ctrl := NewController()

	// Crisis and emergency stop have dedicated entry points.
	ctrl.SetMode("crisis_mode")
	if ctrl.Mode() != ModeManualReview {
		t.Errorf("Mode = %q, want unchanged %q", ctrl.Mode(), ModeManualReview)
	}
	ctrl.SetMode("emergency_stop")
	if ctrl.Mode() != ModeManualReview {
		t.Errorf("Mode = %q, want unchanged %q", ctrl.Mode(), ModeManualReview)
	}
}

func TestActivateCrisisMode(t *testing.T) {
	ctrl := NewController()

	result := ctrl.ActivateCrisisMode("data breach")

	if result.Status != "CRISIS_MODE_ACTIVE" {
		t.Errorf("Status = %q, want CRISIS_MODE_ACTIVE", result.Status)
	}
	if result.CrisisType != "data breach" {
		t.Errorf("CrisisType = %q, want data breach", result.CrisisType)
	}
	if len(result.ActionsTaken) != 4 {
		t.Errorf("ActionsTaken = %d entries, want 4", len(result.ActionsTaken))
	}
	if ctrl.Mode() != ModeCrisis {
		t.Errorf("Mode = %q, want %q", ctrl.Mode(), ModeCrisis)
	}
	if ctrl.AllowsGeneration() {
		t.Error("AllowsGeneration = true in crisis mode")
	}

	status := ctrl.GetStatus()
	if status.SafetyScore != 65 {
		t.Errorf("SafetyScore = %d, want 65", status.SafetyScore)
	}
}

func TestActivateCrisisModeDefaultType(t *testing.T) {
	ctrl := NewController()

	result := ctrl.ActivateCrisisMode("")
	if result.CrisisType != "generic" {
		t.Errorf("CrisisType = %q, want generic", result.CrisisType)
	}
}

func TestForceManualReview(t *testing.T) {
	ctrl := NewController()
	ctrl.SetMode("full_automation")

	ctrl.ForceManualReview()
	if ctrl.Mode() != ModeManualReview {
		t.Errorf("Mode = %q, want %q", ctrl.Mode(), ModeManualReview)
	}
}

func TestAllowsAutomation(t *testing.T) {
	ctrl := NewController()

	if ctrl.AllowsAutomation() {
		t.Error("AllowsAutomation = true in manual_review")
	}

	ctrl.SetMode("ai_draft_only")
	if ctrl.AllowsAutomation() {
		t.Error("AllowsAutomation = true in ai_draft_only")
	}

	ctrl.SetMode("supervised_auto")
	if !ctrl.AllowsAutomation() {
		t.Error("AllowsAutomation = false in supervised_auto")
	}

	ctrl.SetMode("full_automation")
	if !ctrl.AllowsAutomation() {
		t.Error("AllowsAutomation = false in full_automation")
	}
}

func TestCheckContentClean(t *testing.T) {
	ctrl := NewController()

	result := ctrl.CheckContent("A calm and informative post about cloud cost optimization.")

	if !result.Safe {
		t.Errorf("Safe = false, issues: %v", result.Issues)
	}
	if result.SafetyScore != 100 {
		t.Errorf("SafetyScore = %d, want 100", result.SafetyScore)
	}
	if result.RequiresManualReview {
		t.Error("RequiresManualReview = true for clean content")
	}
}

func TestCheckContentAlarmWords(t *testing.T) {
	ctrl := NewController()

	result := ctrl.CheckContent("URGENT breaking news about our product, act immediately!")

	if result.Safe {
		t.Error("Safe = true for alarming content")
	}
	// urgent, breaking, immediately.
	if len(result.Issues) != 3 {
		t.Errorf("Issues = %v, want 3 entries", result.Issues)
	}
	if result.SafetyScore != 40 {
		t.Errorf("SafetyScore = %d, want 40", result.SafetyScore)
	}
	if !result.RequiresManualReview {
		t.Error("RequiresManualReview = false for flagged content")
	}
}

func TestCheckContentLengthBounds(t *testing.T) {
	ctrl := NewController()

	short := ctrl.CheckContent("too short")
	if short.Safe {
		t.Error("Safe = true for too-short content")
	}
	if short.SafetyScore != 80 {
		t.Errorf("short SafetyScore = %d, want 80", short.SafetyScore)
	}

	long := ctrl.CheckContent(strings.Repeat("a", 5001))
	if long.Safe {
		t.Error("Safe = true for too-long content")
	}
}

func TestCheckContentScoreFloor(t *testing.T) {
	ctrl := NewController()

	// Six issues would score -20 without the floor.
	text := "emergency urgent crisis breaking alert warning"
	result := ctrl.CheckContent(text)

	if result.SafetyScore != 0 {
		t.Errorf("SafetyScore = %d, want 0 (floored)", result.SafetyScore)
	}
}

func TestAuditLogTailAndOrder(t *testing.T) {
	ctrl := NewController()
	ctrl.SetMode("ai_draft_only")
	ctrl.SetMode("supervised_auto")
	ctrl.EmergencyPause("drill")

	events := ctrl.GetAuditLog(2)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	// Chronological order: the pause is last.
	if events[1].Event != "emergency_pause" {
		t.Errorf("last event = %q, want emergency_pause", events[1].Event)
	}
	if events[0].Event != "mode_change" {
		t.Errorf("first event = %q, want mode_change", events[0].Event)
	}
}

func TestAuditLogCopyIsolation(t *testing.T) {
	ctrl := NewController()

	events := ctrl.GetAuditLog(0)
	if len(events) == 0 {
		t.Fatal("expected at least the system_start event")
	}
	events[0].Event = "tampered"

	fresh := ctrl.GetAuditLog(0)
	if fresh[0].Event == "tampered" {
		t.Error("mutating the returned slice leaked into the controller")
	}
}

// --- HTTP handler tests ---

func setupRouter(t *testing.T) (chi.Router, *Controller) {
	t.Helper()
	ctrl := NewController()
	r := chi.NewRouter()
	RegisterRoutes(r, ctrl)
	return r, ctrl
}

func TestHTTPStatus(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/safety/status", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var status Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if status.Mode != ModeManualReview {
		t.Errorf("Mode = %q, want %q", status.Mode, ModeManualReview)
	}
}

func TestHTTPPauseAndResume(t *testing.T) {
	r, ctrl := setupRouter(t)

	body := strings.NewReader(`{"reason": "incident 42"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/safety/pause", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ctrl.Mode() != ModeEmergencyStop {
		t.Errorf("Mode = %q, want %q", ctrl.Mode(), ModeEmergencyStop)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/safety/resume", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ctrl.Mode() != ModeManualReview {
		t.Errorf("Mode = %q, want %q", ctrl.Mode(), ModeManualReview)
	}
}

func TestHTTPSetMode(t *testing.T) {
	r, ctrl := setupRouter(t)

	body := strings.NewReader(`{"mode": "supervised_auto"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/safety/mode", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ctrl.Mode() != ModeSupervisedAuto {
		t.Errorf("Mode = %q, want %q", ctrl.Mode(), ModeSupervisedAuto)
	}
}

func TestHTTPCheck(t *testing.T) {
	r, _ := setupRouter(t)

	body := strings.NewReader(`{"content": "URGENT: buy now before the crisis hits!"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/safety/check", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var result ContentCheck
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Safe {
		t.Error("Safe = true for alarming content")
	}
}
