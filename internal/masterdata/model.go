package masterdata

import "time"

// Kind は参照テーブル 1 種類の定義
type Kind struct {
	Key            string // URL とログ用
	Table          string
	NameCol        string
	Label          string
	HasDescription bool
	HasDepartment  bool
}

var (
	Departments   = Kind{Key: "departments", Table: "departments", NameCol: "name", Label: "department", HasDescription: true}
	Positions     = Kind{Key: "positions", Table: "positions", NameCol: "title", Label: "position", HasDescription: true, HasDepartment: true}
	Nationalities = Kind{Key: "nationalities", Table: "nationalities", NameCol: "name", Label: "nationality"}
	Categories    = Kind{Key: "employee-categories", Table: "employee_categories", NameCol: "name", Label: "employee category", HasDescription: true}
)

func Kinds() []Kind { return []Kind{Departments, Positions, Nationalities, Categories} }

type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code,omitempty"`
	Description  string    `json:"description,omitempty"`
	DepartmentID string    `json:"department_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateRequest struct {
	Name         string `json:"name" binding:"required"`
	Code         string `json:"code"`
	Description  string `json:"description"`
	DepartmentID string `json:"department_id"`
}

type UpdateRequest struct {
	Name         *string `json:"name"`
	Code         *string `json:"code"`
	Description  *string `json:"description"`
	DepartmentID *string `json:"department_id"`
	IsActive     *bool   `json:"is_active"`
}

type ImportResult struct {
	Imported []Item `json:"imported"`
	Skipped  int    `json:"skipped_existing"`
}
