package employees

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	employeeIDPattern = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)
	emailPattern      = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
	phonePattern      = regexp.MustCompile(`^[+]?[1-9][\d\s\-()]{6,20}$`)

	scriptTag     = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	dangerousTag  = regexp.MustCompile(`(?i)<(iframe|object|embed|link|meta|style|form)[^>]*>`)
	dangerousURL  = regexp.MustCompile(`(?i)javascript:|data:|vbscript:`)
	eventHandlers = regexp.MustCompile(`(?i)\son\w+\s*=\s*["'][^"']*["']`)
)

const maxTextLength = 255

var (
	genders  = map[string]struct{}{"male": {}, "female": {}}
	maritals = map[string]struct{}{"single": {}, "married": {}, "divorced": {}, "widowed": {}}
	statuses = map[string]struct{}{StatusActive: {}, StatusInactive: {}, StatusPending: {}}
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Sanitize はスクリプト片などを除去して前後空白を落とす
func Sanitize(s string) string {
	s = scriptTag.ReplaceAllString(s, "")
	s = dangerousTag.ReplaceAllString(s, "")
	s = dangerousURL.ReplaceAllString(s, "")
	s = eventHandlers.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func ValidateEmployeeID(id string) error {
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return fmt.Errorf("Employee ID is required")
	case len(id) > 50:
		return fmt.Errorf("Employee ID must not exceed 50 characters")
	case !employeeIDPattern.MatchString(id):
		return fmt.Errorf("Employee ID format is invalid")
	}
	return nil
}

func ValidEmail(s string) bool {
	return len(s) >= 5 && len(s) <= 254 && emailPattern.MatchString(s)
}

func ValidPhone(s string) bool {
	return len(s) >= 7 && len(s) <= 25 && phonePattern.MatchString(s)
}

const dateLayout = "2006-01-02"

// 汎用の日付書式（月→日の順を先に試す）
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"02-Jan-06",
	"Mon Jan 2 2006",
}

// ParseDate は YYYY-MM-DD もしくは汎用書式を受け付け、1900..2100 年の範囲外は拒否する
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "null", "undefined":
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return inRange(t)
	}
	for _, l := range genericLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return inRange(t)
		}
	}
	return time.Time{}, false
}

func inRange(t time.Time) (time.Time, bool) {
	if y := t.Year(); y < 1900 || y > 2100 {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// NormalizeDate: 空は ""、解釈できれば YYYY-MM-DD
func NormalizeDate(s string) (string, bool) {
	if strings.TrimSpace(s) == "" {
		return "", true
	}
	t, ok := ParseDate(s)
	if !ok {
		return "", false
	}
	return t.Format(dateLayout), true
}

// NormalizeValue は列の種類に応じて値を整形・検証する。空文字は NULL 扱いで常に有効
func NormalizeValue(f Field, raw string) (string, error) {
	v := Sanitize(raw)
	if v == "" {
		return "", nil
	}
	switch f.Kind {
	case KindDate:
		d, ok := NormalizeDate(v)
		if !ok {
			return "", fmt.Errorf("Invalid date format. Use YYYY-MM-DD or leave empty.")
		}
		return d, nil
	case KindEmail:
		if !ValidEmail(v) {
			return "", fmt.Errorf("Email format is invalid")
		}
	case KindPhone:
		if !ValidPhone(v) {
			return "", fmt.Errorf("Phone number format is invalid")
		}
	case KindStatus:
		v = strings.ToLower(v)
		if _, ok := statuses[v]; !ok {
			return "", fmt.Errorf("status must be one of active, inactive, pending")
		}
	case KindGender:
		v = strings.ToLower(v)
		if _, ok := genders[v]; !ok {
			return "", fmt.Errorf("gender must be male or female")
		}
	case KindMarital:
		v = strings.ToLower(v)
		if _, ok := maritals[v]; !ok {
			return "", fmt.Errorf("marital_status must be one of single, married, divorced, widowed")
		}
	}
	if len([]rune(v)) > maxTextLength {
		return "", fmt.Errorf("%s must not exceed %d characters", f.Name, maxTextLength)
	}
	return v, nil
}

// Validate は全列を整形し、問題のある列を返す。e は整形済みの値で上書きされる
func Validate(e *Employee, isCreate bool) []FieldError {
	var errs []FieldError

	e.EmployeeID = Sanitize(e.EmployeeID)
	if isCreate {
		if err := ValidateEmployeeID(e.EmployeeID); err != nil {
			errs = append(errs, FieldError{Field: "employee_id", Message: err.Error()})
		}
	}

	for _, f := range Fields {
		p := e.Ptr(f.Name)
		v, err := NormalizeValue(f, *p)
		if err != nil {
			errs = append(errs, FieldError{Field: f.Name, Message: err.Error()})
			continue
		}
		*p = v
	}

	if isCreate && e.EnglishName == "" {
		errs = append(errs, FieldError{Field: "english_name", Message: "English name is required"})
	}
	return errs
}

// FindDuplicateIDs: 取込データ内で重複している employee_id
func FindDuplicateIDs(ids []string) []string {
	seen := map[string]int{}
	var dups []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}
