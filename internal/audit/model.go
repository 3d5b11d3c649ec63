package audit

import (
	"encoding/json"
	"time"
)

const (
	ActionCreate  = "CREATE"
	ActionUpdate  = "UPDATE"
	ActionDelete  = "DELETE"
	ActionPromote = "PROMOTE"
	ActionProcess = "PROCESS"
	ActionToggle  = "TOGGLE"
)

type Entry struct {
	ID        string          `json:"id"`
	Actor     string          `json:"actor"`
	Action    string          `json:"action"`
	TableName string          `json:"table_name"`
	RecordID  string          `json:"record_id"`
	OldValues json.RawMessage `json:"old_values,omitempty"`
	NewValues json.RawMessage `json:"new_values,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type Filter struct {
	TableName string
	RecordID  string
	Actor     string
	Action    string
}

type Page struct {
	Limit  int
	Offset int
}
