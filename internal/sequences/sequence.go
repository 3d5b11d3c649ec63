package sequences

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	maxPadding  = 12
	sampleLimit = 10

	// 既定の検証対象（本番社員の社員番号）
	DefaultTarget = "employees.employee_id"
)

// 検証対象として許す table.column
var targets = map[string]string{
	"employees.employee_id":         "SELECT employee_id FROM employees WHERE deleted_at IS NULL AND employee_id IS NOT NULL",
	"employees_staging.employee_id": "SELECT employee_id FROM employees_staging WHERE employee_id IS NOT NULL",
}

type Sequence struct {
	ID           string    `json:"id"`
	Key          string    `json:"key"`
	Description  string    `json:"description,omitempty"`
	Prefix       string    `json:"prefix"`
	Separator    string    `json:"separator"`
	Padding      int       `json:"padding"`
	Suffix       string    `json:"suffix"`
	NextNumber   int64     `json:"next_number"`
	TargetTable  string    `json:"target_table,omitempty"`
	TargetColumn string    `json:"target_column,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Format は n を prefix + separator + ゼロ詰め番号 + suffix にする
func (s Sequence) Format(n int64) string {
	return s.Prefix + s.Separator + fmt.Sprintf("%0*d", s.Padding, n) + s.Suffix
}

// Pattern は発番済み ID にマッチする正規表現（番号部を 1 番目のグループに持つ）
func (s Sequence) Pattern() string {
	digits := `\d+`
	if s.Padding > 0 {
		digits = fmt.Sprintf(`\d{%d,}`, s.Padding)
	}
	return "^" + regexp.QuoteMeta(s.Prefix+s.Separator) + "(" + digits + ")" + regexp.QuoteMeta(s.Suffix) + "$"
}

// Target は検証対象の table.column（未設定なら既定）
func (s Sequence) Target() string {
	if s.TargetTable == "" || s.TargetColumn == "" {
		return DefaultTarget
	}
	return s.TargetTable + "." + s.TargetColumn
}

type SaveRequest struct {
	Key          string `json:"key"`
	Description  string `json:"description"`
	Prefix       string `json:"prefix"`
	Separator    string `json:"separator"`
	Padding      *int   `json:"padding"`
	Suffix       string `json:"suffix"`
	NextNumber   *int64 `json:"next_number"`
	TargetTable  string `json:"target_table"`
	TargetColumn string `json:"target_column"`
	IsActive     *bool  `json:"is_active"`
}

type Duplicate struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type Validation struct {
	Success          bool        `json:"success"`
	Key              string      `json:"key"`
	Pattern          string      `json:"pattern"`
	Total            int         `json:"total"`
	InvalidCount     int         `json:"invalid_count"`
	DuplicateCount   int         `json:"duplicate_count"`
	InvalidSamples   []string    `json:"invalid_samples"`
	DuplicateSamples []Duplicate `json:"duplicate_samples"`
	MaxValue         int64       `json:"max_value"`
	NextValue        int64       `json:"next_value"`
	NextValueOK      bool        `json:"next_value_ok"`
}

// Validate は既存 ID 群を書式と重複で検査し、次番号が最大値を超えているか確かめる
func Validate(seq Sequence, values []string) Validation {
	re := regexp.MustCompile(seq.Pattern())
	v := Validation{
		Key:              seq.Key,
		Pattern:          seq.Pattern(),
		Total:            len(values),
		InvalidSamples:   []string{},
		DuplicateSamples: []Duplicate{},
		NextValue:        seq.NextNumber,
	}
	counts := map[string]int{}
	for _, raw := range values {
		val := strings.TrimSpace(raw)
		counts[val]++
		m := re.FindStringSubmatch(val)
		if m == nil {
			v.InvalidCount++
			if len(v.InvalidSamples) < sampleLimit {
				v.InvalidSamples = append(v.InvalidSamples, val)
			}
			continue
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			v.InvalidCount++
			continue
		}
		v.MaxValue = max(v.MaxValue, n)
	}
	var dups []Duplicate
	for val, c := range counts {
		if c > 1 {
			dups = append(dups, Duplicate{Value: val, Count: c})
		}
	}
	sort.Slice(dups, func(i, j int) bool {
		if dups[i].Count != dups[j].Count {
			return dups[i].Count > dups[j].Count
		}
		return dups[i].Value < dups[j].Value
	})
	v.DuplicateCount = len(dups)
	if len(dups) > sampleLimit {
		dups = dups[:sampleLimit]
	}
	v.DuplicateSamples = append(v.DuplicateSamples, dups...)
	v.NextValueOK = seq.NextNumber > v.MaxValue
	v.Success = v.InvalidCount == 0 && v.DuplicateCount == 0 && v.NextValueOK
	return v
}
