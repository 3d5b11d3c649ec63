package rawattendance

import (
	"time"

	"hrms-backend/internal/employees"
	"hrms-backend/internal/identity"
	"hrms-backend/internal/importer"
)

// match_status
const (
	MatchMatched   = "matched"
	MatchUnmatched = "unmatched"
	MatchRejected  = "rejected"
)

// Event は raw_attendance_data の 1 行。processed / match_status 以外は取込後に変えない
type Event struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeUUID string    `json:"employee_uuid,omitempty"`
	Name         string    `json:"name"`
	ClockingTime time.Time `json:"clocking_time"`
	Terminal     string    `json:"terminal_description"`
	Processed    bool      `json:"processed"`
	MatchStatus  string    `json:"match_status,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Item: 一覧用。hr_name は本番社員の英語名、未登録なら registered=false
type Item struct {
	Event
	HRName     string `json:"hr_name"`
	Registered bool   `json:"registered"`
}

type Filter struct {
	Processed   *bool
	From        *time.Time
	To          *time.Time
	UserID      string
	EmployeeID  string
	MatchStatus string
	Limit       int
	Offset      int
}

// UploadEvent は JSON でのアップロード 1 件
type UploadEvent struct {
	UserID       string    `json:"user_id"`
	EmployeeID   string    `json:"employee_id" binding:"required"`
	Name         string    `json:"name" binding:"required"`
	ClockingTime time.Time `json:"clocking_time" binding:"required"`
	Terminal     string    `json:"terminal_description"`
}

type ImportResult struct {
	Inserted int                  `json:"inserted"`
	Rejected []importer.LineError `json:"rejected"`
}

// IDUpdate: 端末 user_id 単位で employee_id を付け替える
type IDUpdate struct {
	UserID        string `json:"user_id" binding:"required"`
	NewEmployeeID string `json:"new_employee_id" binding:"required"`
}

type MatchReport struct {
	Results   []identity.MatchResult `json:"results"`
	Summary   identity.Summary       `json:"summary"`
	Persisted int                    `json:"persisted"`
}

type AutoRegisterResult struct {
	Created int                  `json:"created"`
	Updated int                  `json:"updated"`
	Failed  int                  `json:"failed"`
	Errors  []employees.RowError `json:"errors"`
}

type Activity struct {
	CreatedAt  time.Time `json:"created_at"`
	Processed  bool      `json:"processed"`
	EmployeeID string    `json:"employee_id"`
}

type Dashboard struct {
	Total          int64      `json:"total_records"`
	Processed      int64      `json:"processed_records"`
	Unprocessed    int64      `json:"unprocessed_records"`
	ProcessingRate float64    `json:"processing_rate"`
	Recent         []Activity `json:"recent_activity"`
}

// Mapping は user_id_mapping の行（employee_name は表示用に結合）
type Mapping struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Terminal struct {
	ID               string    `json:"id"`
	TerminalUID      string    `json:"terminal_uid"`
	TerminalName     string    `json:"terminal_name"`
	Location         string    `json:"location"`
	ConnectionMethod string    `json:"connection_method"`
	SiteAdminName    string    `json:"site_admin_name"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type TerminalPatch struct {
	TerminalName     *string `json:"terminal_name"`
	Location         *string `json:"location"`
	ConnectionMethod *string `json:"connection_method"`
	SiteAdminName    *string `json:"site_admin_name"`
	IsActive         *bool   `json:"is_active"`
}
