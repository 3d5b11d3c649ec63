package employees

import (
	"strings"
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

type Kind int

const (
	KindText Kind = iota
	KindDate
	KindEmail
	KindPhone
	KindStatus
	KindGender
	KindMarital
)

// Field は employees / employees_staging 共通の列定義
type Field struct {
	Name      string
	Kind      Kind
	Sensitive bool
}

// Fields: employee_id を除く更新可能列（並び順は一覧・取込テンプレートの列順）
var Fields = []Field{
	{"english_name", KindText, false},
	{"arabic_name", KindText, false},
	{"position", KindText, false},
	{"department", KindText, false},
	{"status", KindStatus, false},
	{"category", KindText, false},
	{"nationality", KindText, false},
	{"gender", KindGender, false},
	{"work_phone", KindPhone, false},
	{"date_of_joining", KindDate, false},
	{"date_of_leaving", KindDate, false},
	{"qualifications", KindText, false},
	{"personal_email", KindEmail, true},
	{"home_phone", KindPhone, true},
	{"marital_status", KindMarital, true},
	{"id_number", KindText, true},
	{"issuing_body", KindText, true},
	{"issue_date", KindDate, true},
	{"birth_place", KindText, true},
	{"birth_date", KindDate, true},
	{"nok_person", KindText, true},
	{"nok_name", KindText, true},
	{"nok_phone_number", KindPhone, true},
}

func LookupField(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

type Employee struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employee_id"`
	EnglishName    string    `json:"english_name"`
	ArabicName     string    `json:"arabic_name"`
	Position       string    `json:"position"`
	Department     string    `json:"department"`
	Status         string    `json:"status"`
	Category       string    `json:"category"`
	Nationality    string    `json:"nationality"`
	Gender         string    `json:"gender"`
	WorkPhone      string    `json:"work_phone"`
	DateOfJoining  string    `json:"date_of_joining"`
	DateOfLeaving  string    `json:"date_of_leaving"`
	Qualifications string    `json:"qualifications"`
	PersonalEmail  string    `json:"personal_email"`
	HomePhone      string    `json:"home_phone"`
	MaritalStatus  string    `json:"marital_status"`
	IDNumber       string    `json:"id_number"`
	IssuingBody    string    `json:"issuing_body"`
	IssueDate      string    `json:"issue_date"`
	BirthPlace     string    `json:"birth_place"`
	BirthDate      string    `json:"birth_date"`
	NOKPerson      string    `json:"nok_person"`
	NOKName        string    `json:"nok_name"`
	NOKPhoneNumber string    `json:"nok_phone_number"`
	IsDeletable    bool      `json:"is_deletable"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Ptr は列名から対応するフィールドへのポインタを返す（未知の列は nil）
func (e *Employee) Ptr(name string) *string {
	switch name {
	case "employee_id":
		return &e.EmployeeID
	case "english_name":
		return &e.EnglishName
	case "arabic_name":
		return &e.ArabicName
	case "position":
		return &e.Position
	case "department":
		return &e.Department
	case "status":
		return &e.Status
	case "category":
		return &e.Category
	case "nationality":
		return &e.Nationality
	case "gender":
		return &e.Gender
	case "work_phone":
		return &e.WorkPhone
	case "date_of_joining":
		return &e.DateOfJoining
	case "date_of_leaving":
		return &e.DateOfLeaving
	case "qualifications":
		return &e.Qualifications
	case "personal_email":
		return &e.PersonalEmail
	case "home_phone":
		return &e.HomePhone
	case "marital_status":
		return &e.MaritalStatus
	case "id_number":
		return &e.IDNumber
	case "issuing_body":
		return &e.IssuingBody
	case "issue_date":
		return &e.IssueDate
	case "birth_place":
		return &e.BirthPlace
	case "birth_date":
		return &e.BirthDate
	case "nok_person":
		return &e.NOKPerson
	case "nok_name":
		return &e.NOKName
	case "nok_phone_number":
		return &e.NOKPhoneNumber
	}
	return nil
}

// Values: 列名 -> 値（空は含めない）。監査ログのスナップショット用
func (e *Employee) Values() map[string]string {
	out := map[string]string{"employee_id": e.EmployeeID}
	for _, f := range Fields {
		if v := *e.Ptr(f.Name); v != "" {
			out[f.Name] = v
		}
	}
	return out
}

// FromValues は列名 -> 値の行から社員を組み立てる。未知の列は無視する
func FromValues(row map[string]string) Employee {
	var e Employee
	for k, v := range row {
		if p := e.Ptr(k); p != nil {
			*p = strings.TrimSpace(v)
		}
	}
	return e
}

// Basic は機微情報を含まない一覧用の形
type Basic struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	EnglishName string `json:"english_name"`
	ArabicName  string `json:"arabic_name"`
	Position    string `json:"position"`
	Department  string `json:"department"`
	Status      string `json:"status"`
}

type Stats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Pending  int64 `json:"pending"`
}

type ListQuery struct {
	Limit         int
	Offset        int
	Search        string
	StatusFilter  string
	SortField     string
	SortDirection string
}

// 並び替え可能な列
var sortable = map[string]string{
	"employee_id":     "employee_id",
	"english_name":    "english_name",
	"arabic_name":     "arabic_name",
	"position":        "position",
	"department":      "department",
	"status":          "status",
	"date_of_joining": "date_of_joining",
	"created_at":      "created_at",
}

type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const (
	OperationCreated = "created"
	OperationUpdated = "updated"
)

type UpsertResult struct {
	Operation string    `json:"operation"`
	Employee  *Employee `json:"employee"`
}

type UpdateResult struct {
	Employee *Employee `json:"employee"`
	Previous *Employee `json:"previous"`
}

type RowError struct {
	Row        int    `json:"row"`
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

type UploadResult struct {
	Success bool       `json:"success"`
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  []RowError `json:"errors"`
}

// NameLookup: 生打刻の表示名解決結果
type NameLookup struct {
	EmployeeID  string `json:"employee_id"`
	EnglishName string `json:"english_name"`
	Registered  bool   `json:"registered"`
}
