package attendance

import (
	"encoding/json"
	"time"
)

const (
	SortDateDesc     = "date_desc"
	SortDateAsc      = "date_asc"
	SortClockInDesc  = "clock_in_desc"
	SortClockInAsc   = "clock_in_asc"
	DefaultPageLimit = 50
	MaxPageLimit     = 500
	DefaultSort      = SortDateDesc
	DateLayout       = "2006-01-02"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusOnLeave = "on_leave"
	StatusHalfDay = "half_day"
)

var statuses = map[string]struct{}{
	StatusPresent: {}, StatusAbsent: {}, StatusLate: {}, StatusOnLeave: {}, StatusHalfDay: {},
}

const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
)

const (
	SourceManual   = "manual"
	SourceTerminal = "terminal"
)

const (
	ActionClockIn  = "clock_in"
	ActionClockOut = "clock_out"
)

type ClockRequest struct {
	EmployeeID string     `json:"employee_id" binding:"required"` // employees.id
	Action     string     `json:"action" binding:"required"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	Terminal   string     `json:"terminal,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

type UpdateRequest struct {
	ClockIn  *time.Time `json:"clock_in,omitempty"`
	ClockOut *time.Time `json:"clock_out,omitempty"`
	Status   *string    `json:"status,omitempty"`
	Notes    *string    `json:"notes,omitempty"`
}

type ListQuery struct {
	EmployeeID string
	Status     string
	From       string // YYYY-MM-DD
	To         string // YYYY-MM-DD
	Limit      int
	Offset     int
	Sort       string
}

type ProcessOptions struct {
	DateFrom      string `json:"date_from,omitempty"`
	DateTo        string `json:"date_to,omitempty"`
	MarkProcessed *bool  `json:"mark_processed,omitempty"`
	AutoApprove   bool   `json:"auto_approve,omitempty"`
}

type RulesApplied struct {
	Late    int      `json:"late"`
	HalfDay int      `json:"half_day"`
	Rules   []string `json:"rules"`
}

type ProcessResult struct {
	Success            bool         `json:"success"`
	DateFrom           string       `json:"date_from"`
	DateTo             string       `json:"date_to"`
	Upserted           int          `json:"upserted"`
	SkippedConfirmed   int          `json:"skipped_confirmed"`
	RawMarkedProcessed int64        `json:"raw_marked_processed"`
	SkippedUnmatched   int          `json:"skipped_unmatched"`
	SkippedRejected    int          `json:"skipped_rejected"`
	AnomaliesDetected  int          `json:"anomalies_detected"`
	AutoApproved       int64        `json:"auto_approved_count"`
	RulesApplied       RulesApplied `json:"business_rules_applied"`
}

const (
	AnomalyMissingClockOut = "missing_clock_out"
	AnomalyLateArrival     = "late_arrival"
	AnomalyExcessiveHours  = "excessive_hours"
	AnomalyShortDay        = "short_day"
	AnomalyDuplicatePunch  = "duplicate_punch"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

type Anomaly struct {
	RecordID     string         `json:"record_id"`
	EmployeeID   string         `json:"employee_id"`
	EmployeeName string         `json:"employee_name"`
	AnomalyType  string         `json:"anomaly_type"`
	Details      map[string]any `json:"anomaly_details"`
	Date         string         `json:"date"`
	Severity     string         `json:"severity"`
}

type DailyStats struct {
	Date             string  `json:"date"`
	TotalEmployees   int64   `json:"total_employees"`
	PresentCount     int     `json:"present_count"`
	AbsentCount      int64   `json:"absent_count"`
	LateCount        int     `json:"late_count"`
	HalfDayCount     int     `json:"half_day_count"`
	OnLeaveCount     int     `json:"on_leave_count"`
	TotalWorkHours   float64 `json:"total_work_hours"`
	AverageWorkHours float64 `json:"average_work_hours"`
	AttendanceRate   float64 `json:"attendance_rate"`
}

const (
	RuleWorkSchedule = "work_schedule"
	RuleHalfDay      = "half_day"
	RuleMaxHours     = "max_hours"
)

var ruleTypes = map[string]struct{}{RuleWorkSchedule: {}, RuleHalfDay: {}, RuleMaxHours: {}}

type RuleRequest struct {
	RuleType      string          `json:"rule_type" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Parameters    json.RawMessage `json:"parameters"`
	IsActive      *bool           `json:"is_active,omitempty"`
	EffectiveFrom string          `json:"effective_from" binding:"required"`
	EffectiveTo   *string         `json:"effective_to,omitempty"`
}

// ruleParams: parameters 列の既知キー
type ruleParams struct {
	WorkStart    string   `json:"work_start,omitempty"`
	GraceMinutes *int     `json:"grace_minutes,omitempty"`
	Hours        *float64 `json:"hours,omitempty"`
}
