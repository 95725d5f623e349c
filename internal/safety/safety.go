package safety

import (
	"strings"
	"sync"
	"time"
)

// Mode is the system-wide automation posture.
type Mode string

const (
	ModeManualReview   Mode = "manual_review"
	ModeAIDraftOnly    Mode = "ai_draft_only"
	ModeSupervisedAuto Mode = "supervised_auto"
	ModeFullAutomation Mode = "full_automation"
	ModeCrisis         Mode = "crisis_mode"
	ModeEmergencyStop  Mode = "emergency_stop"
)

// Severity of a safety audit event.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// AuditEvent is one entry of the controller's bounded audit log.
type AuditEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	Event         string    `json:"event"`
	Description   string    `json:"description"`
	Severity      Severity  `json:"severity"`
	Mode          Mode      `json:"mode"`
	EmergencyStop bool      `json:"emergency_stop"`
}

// Thresholds are the fixed safety limits consulted by callers.
type Thresholds struct {
	MaxAutoApprovalsPerHour     int     `json:"max_auto_approvals_per_hour"`
	MinApprovalTimeSeconds      int     `json:"min_approval_time_seconds"`
	ContentSensitivityThreshold float64 `json:"content_sensitivity_threshold"`
	MaxPostsPerHour             int     `json:"max_posts_per_hour"`
}

// Status is a snapshot of the controller's state.
type Status struct {
	Mode          Mode   `json:"mode"`
	EmergencyStop bool   `json:"emergency_stop"`
	SafetyScore   int    `json:"safety_score"`
	LastIncident  string `json:"last_incident,omitempty"`
	AuditLogSize  int    `json:"audit_log_size"`
}

// PauseResult confirms an emergency pause.
type PauseResult struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Reason       string    `json:"reason"`
	Mode         Mode      `json:"mode"`
	Instructions string    `json:"instructions"`
}

// ResumeResult confirms a resumption.
type ResumeResult struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Mode      Mode      `json:"mode"`
}

// CrisisResult describes what callers must additionally perform after
// crisis mode activates. The controller only changes its own state.
type CrisisResult struct {
	Status       string    `json:"status"`
	CrisisType   string    `json:"crisis_type"`
	ActionsTaken []string  `json:"actions_taken"`
	Timestamp    time.Time `json:"timestamp"`
}

// ContentCheck is the result of a per-content safety screen.
type ContentCheck struct {
	Safe                 bool     `json:"safe"`
	SafetyScore          int      `json:"safety_score"`
	Issues               []string `json:"issues"`
	RequiresManualReview bool     `json:"requires_manual_review"`
}

// maxAuditEntries bounds the in-memory audit log; oldest entries are
// dropped first.
const maxAuditEntries = 1000

var alarmWords = []string{
	"emergency", "urgent", "crisis", "breaking",
	"alert", "immediately", "warning",
}

const (
	minContentLength = 20
	maxContentLength = 5000
)

// Controller gates automation level and can halt all transitions.
// Construct one at process start and share it by reference; all state
// mutations serialize behind a single lock so a mode check can never
// interleave with a pause.
type Controller struct {
	mu            sync.Mutex
	mode          Mode
	emergencyStop bool
	auditLog      []AuditEvent
	thresholds    Thresholds
}

// NewController creates a Controller in manual_review mode.
func NewController() *Controller {
	c := &Controller{
		mode: ModeManualReview,
		thresholds: Thresholds{
			MaxAutoApprovalsPerHour:     0,
			MinApprovalTimeSeconds:      60,
			ContentSensitivityThreshold: 0.8,
			MaxPostsPerHour:             10,
		},
	}
	c.mu.Lock()
	c.logEvent("system_start", "Safety controller initialized", SeverityInfo)
	c.mu.Unlock()
	return c
}

// EmergencyPause halts all automation. The mode change is effective
// before this call returns.
func (c *Controller) EmergencyPause(reason string) PauseResult {
	if reason == "" {
		reason = "Manual activation"
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = ModeEmergencyStop
	c.emergencyStop = true
	c.logEvent("emergency_pause", reason, SeverityCritical)

	return PauseResult{
		Status:       "SYSTEM_HALTED",
		Timestamp:    time.Now().UTC(),
		Reason:       reason,
		Mode:         c.mode,
		Instructions: "All automation stopped. Manual intervention required.",
	}
}

// ResumeOperations clears the halt flag and resets to manual_review,
// the safest mode.
func (c *Controller) ResumeOperations() ResumeResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = ModeManualReview
	c.emergencyStop = false
	c.logEvent("resume_operations", "System resumed from emergency stop", SeverityInfo)

	return ResumeResult{
		Status:    "OPERATIONAL",
		Timestamp: time.Now().UTC(),
		Mode:      c.mode,
	}
}

// settableModes are the modes SetMode accepts. Crisis and emergency
// stop have dedicated entry points.
var settableModes = map[Mode]bool{
	ModeManualReview:   true,
	ModeAIDraftOnly:    true,
	ModeSupervisedAuto: true,
	ModeFullAutomation: true,
}

// SetMode changes the operating mode. Unknown names are ignored so UI
// labels added later cannot break the controller.
func (c *Controller) SetMode(name string) {
	mode := Mode(name)
	if !settableModes[mode] {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = mode
	c.logEvent("mode_change", "Changed to "+name, SeverityInfo)
}

// ActivateCrisisMode suspends generation and scheduling. The returned
// actions are declarative: callers must perform them.
func (c *Controller) ActivateCrisisMode(crisisType string) CrisisResult {
	if crisisType == "" {
		crisisType = "generic"
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = ModeCrisis
	c.logEvent("crisis_mode_activated", "Crisis mode: "+crisisType, SeverityHigh)

	return CrisisResult{
		Status:     "CRISIS_MODE_ACTIVE",
		CrisisType: crisisType,
		ActionsTaken: []string{
			"Paused all scheduled posts",
			"Disabled automatic content generation",
			"Enabled enhanced content review",
			"Notified security team",
		},
		Timestamp: time.Now().UTC(),
	}
}

// ForceManualReview resets to manual_review unconditionally.
func (c *Controller) ForceManualReview() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = ModeManualReview
	c.logEvent("force_manual_review", "All content moved to manual review", SeverityInfo)
}

// Mode returns the current operating mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Thresholds returns the fixed safety limits.
func (c *Controller) Thresholds() Thresholds {
	return c.thresholds
}

// AllowsGeneration reports whether content generation may run in the
// current mode.
func (c *Controller) AllowsGeneration() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ModeCrisis, ModeEmergencyStop:
		return false
	}
	return true
}

// AllowsAutomation reports whether automated scheduling after approval
// is permitted in the current mode.
func (c *Controller) AllowsAutomation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ModeSupervisedAuto, ModeFullAutomation:
		return !c.emergencyStop
	}
	return false
}

// CheckContent runs the heuristic per-content safety screen.
func (c *Controller) CheckContent(text string) ContentCheck {
	var issues []string

	lower := strings.ToLower(text)
	for _, word := range alarmWords {
		if strings.Contains(lower, word) {
			issues = append(issues, "Contains alarming word: '"+word+"'")
		}
	}

	if len(text) < minContentLength {
		issues = append(issues, "Content too short")
	} else if len(text) > maxContentLength {
		issues = append(issues, "Content too long")
	}

	score := 100 - len(issues)*20
	if score < 0 {
		score = 0
	}

	return ContentCheck{
		Safe:                 len(issues) == 0,
		SafetyScore:          score,
		Issues:               issues,
		RequiresManualReview: len(issues) > 0 || score < 70,
	}
}

// GetStatus returns a coarse system-health snapshot. The score here is
// distinct from per-content scores.
func (c *Controller) GetStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		Mode:          c.mode,
		EmergencyStop: c.emergencyStop,
		SafetyScore:   c.systemScore(),
		LastIncident:  c.lastIncident(),
		AuditLogSize:  len(c.auditLog),
	}
}

// GetAuditLog returns the most recent limit entries in chronological
// order.
func (c *Controller) GetAuditLog(limit int) []AuditEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	if limit <= 0 || limit > len(c.auditLog) {
		limit = len(c.auditLog)
	}
	tail := c.auditLog[len(c.auditLog)-limit:]

	out := make([]AuditEvent, len(tail))
	copy(out, tail)
	return out
}

// logEvent appends to the audit log. Callers must hold c.mu.
func (c *Controller) logEvent(event, description string, severity Severity) {
	c.auditLog = append(c.auditLog, AuditEvent{
		Timestamp:     time.Now().UTC(),
		Event:         event,
		Description:   description,
		Severity:      severity,
		Mode:          c.mode,
		EmergencyStop: c.emergencyStop,
	})
	if len(c.auditLog) > maxAuditEntries {
		c.auditLog = c.auditLog[len(c.auditLog)-maxAuditEntries:]
	}
}

// systemScore computes the coarse health score. Callers must hold c.mu.
func (c *Controller) systemScore() int {
	score := 95
	if c.emergencyStop {
		score -= 40
	}
	if c.mode == ModeCrisis {
		score -= 30
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// lastIncident returns the description of the most recent HIGH or
// CRITICAL event. Callers must hold c.mu.
func (c *Controller) lastIncident() string {
	for i := len(c.auditLog) - 1; i >= 0; i-- {
		switch c.auditLog[i].Severity {
		case SeverityHigh, SeverityCritical:
			return c.auditLog[i].Description
		}
	}
	return ""
}
