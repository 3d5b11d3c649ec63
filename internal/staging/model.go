package staging

import "time"

// Record は取込直後の未検証データ。値はすべて文字列のまま保持する
type Record struct {
	ID         string            `json:"id"`
	EmployeeID string            `json:"employee_id"`
	Fields     map[string]string `json:"fields"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (r *Record) Get(name string) string {
	if name == "employee_id" {
		return r.EmployeeID
	}
	return r.Fields[name]
}

type ListQuery struct {
	Limit  int
	Offset int
	Search string
}

type Warning struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Blocking bool   `json:"blocking"`
}

type PromoteResult struct {
	EmployeeRowID string    `json:"employee_row_id"`
	EmployeeID    string    `json:"employee_id"`
	Warnings      []Warning `json:"warnings"`
}

// ===== 一括昇格 =====

const (
	StagePending   = "pending"
	StageRunning   = "running"
	StageCompleted = "completed"
	StageError     = "error"
)

type Stage struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Details string `json:"details"`
	Count   int    `json:"count"`
}

func newStages() []Stage {
	return []Stage{
		{ID: "fetch-raw", Name: "Fetching raw attendance data", Status: StagePending},
		{ID: "fetch-mappings", Name: "Loading user ID mappings", Status: StagePending},
		{ID: "fetch-staging", Name: "Loading staging employees", Status: StagePending},
		{ID: "match-records", Name: "Matching records", Status: StagePending},
		{ID: "promote-employees", Name: "Promoting employees", Status: StagePending},
		{ID: "cleanup", Name: "Cleaning up staging records", Status: StagePending},
	}
}

const (
	HaltNoReachableIDs = "No employee IDs found in raw data or user ID mappings"
	HaltNoStagingMatch = "No staging records matched with raw attendance data"
)

// RowFailure: 昇格できずに staging に残した行
type RowFailure struct {
	StagingID  string `json:"staging_id"`
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

type BatchResult struct {
	Matched    int          `json:"matched"`
	Promoted   int          `json:"promoted"`
	Removed    int          `json:"removed"`
	Retained   int          `json:"retained"`
	Halted     bool         `json:"halted"`
	HaltReason string       `json:"halt_reason,omitempty"`
	Stages     []Stage      `json:"stages"`
	Failures   []RowFailure `json:"failures"`
}

// ProgressFunc は段階が進むたびに呼ばれる（stages はコピー）
type ProgressFunc func(stages []Stage, current int)

// RawIdentity: 生打刻の user_id / employee_id の組
type RawIdentity struct {
	UserID     string
	EmployeeID string
}
