package attendance

import (
	"database/sql"
	"encoding/json"
	"time"
)

// DB行に対応（スキャン用）
type recordRow struct {
	ID             string
	EmployeeID     string
	EmployeeCode   sql.NullString
	EmployeeName   sql.NullString
	Date           string // DATE → "YYYY-MM-DD"
	ClockIn        sql.NullTime
	ClockOut       sql.NullTime
	InTerminal     sql.NullString
	OutTerminal    sql.NullString
	PunchCount     int
	TotalHours     sql.NullFloat64
	Status         string
	ApprovalStatus string
	IsConfirmed    bool
	SourceType     string
	Notes          sql.NullString
	RawIDs         sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Record struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employee_id"`
	EmployeeCode   string     `json:"employee_code,omitempty"`
	EmployeeName   string     `json:"employee_name,omitempty"`
	Date           string     `json:"date"`
	ClockIn        *time.Time `json:"clock_in"`
	ClockOut       *time.Time `json:"clock_out"`
	InTerminal     string     `json:"in_terminal,omitempty"`
	OutTerminal    string     `json:"out_terminal,omitempty"`
	PunchCount     int        `json:"punch_count"`
	TotalHours     *float64   `json:"total_hours"`
	Status         string     `json:"status"`
	ApprovalStatus string     `json:"approval_status"`
	IsConfirmed    bool       `json:"is_confirmed"`
	SourceType     string     `json:"source_type"`
	Notes          string     `json:"notes,omitempty"`
	RawIDs         []string   `json:"-"` // 取り込み済みの生打刻 id
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (r recordRow) toModel() Record {
	out := Record{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		EmployeeCode:   r.EmployeeCode.String,
		EmployeeName:   r.EmployeeName.String,
		Date:           r.Date,
		InTerminal:     r.InTerminal.String,
		OutTerminal:    r.OutTerminal.String,
		PunchCount:     r.PunchCount,
		Status:         r.Status,
		ApprovalStatus: r.ApprovalStatus,
		IsConfirmed:    r.IsConfirmed,
		SourceType:     r.SourceType,
		Notes:          r.Notes.String,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
	if r.ClockIn.Valid {
		t := r.ClockIn.Time.UTC()
		out.ClockIn = &t
	}
	if r.ClockOut.Valid {
		t := r.ClockOut.Time.UTC()
		out.ClockOut = &t
	}
	if r.TotalHours.Valid {
		h := r.TotalHours.Float64
		out.TotalHours = &h
	}
	if r.RawIDs.Valid && r.RawIDs.String != "" {
		_ = json.Unmarshal([]byte(r.RawIDs.String), &out.RawIDs)
	}
	return out
}

type Rule struct {
	ID            string          `json:"id"`
	RuleType      string          `json:"rule_type"`
	Name          string          `json:"name"`
	Parameters    json.RawMessage `json:"parameters"`
	IsActive      bool            `json:"is_active"`
	EffectiveFrom string          `json:"effective_from"`
	EffectiveTo   *string         `json:"effective_to"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// EffectiveOn: 有効かつ date が effective_from..effective_to に入るか
func (r Rule) EffectiveOn(date string) bool {
	if !r.IsActive || date < r.EffectiveFrom {
		return false
	}
	return r.EffectiveTo == nil || *r.EffectiveTo == "" || date <= *r.EffectiveTo
}
