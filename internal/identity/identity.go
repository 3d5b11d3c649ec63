// Package identity は端末ログの利用者を社員に引き当てる。
//
// 判定は段階順で最初に当たったものを採用する:
// 社員番号の完全一致 → 正規化一致 → user_id マッピング → 氏名の部分一致 → 該当なし。
// I/O は持たない。
package identity

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

type Method string

const (
	MethodExact      Method = "exact_employee_id"
	MethodNormalized Method = "normalized_employee_id"
	MethodMapping    Method = "user_id_mapping"
	MethodFuzzy      Method = "name_fuzzy_match"
	MethodNone       Method = "no_match"
)

// Candidate は照合対象の社員（必要最小限の列）
type Candidate struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	EnglishName string `json:"english_name"`
	ArabicName  string `json:"arabic_name,omitempty"`
}

type Event struct {
	UserID     string `json:"user_id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
}

type Mapping struct {
	UserID     string `json:"user_id"`
	EmployeeID string `json:"employee_id"`
}

type MatchResult struct {
	UserID     string     `json:"user_id"`
	EmployeeID string     `json:"employee_id"`
	Name       string     `json:"name"`
	Employee   *Candidate `json:"employee,omitempty"`
	Confidence Confidence `json:"confidence"`
	Method     Method     `json:"method"`
}

// Matched: 該当ありか
func (r MatchResult) Matched() bool { return r.Employee != nil }

// Automatic: 人手の確認なしで勤怠へ反映してよい一致か（氏名一致は除外）
func (r MatchResult) Automatic() bool {
	return r.Matched() && r.Method != MethodFuzzy
}

var (
	nonAlnum     = regexp.MustCompile(`[^A-Z0-9]`)
	leadingZeros = regexp.MustCompile(`^([A-Z]*)0+(\d+)$`)
)

// NormalizeID は大小文字・記号・数値部の先頭ゼロを取り除いた比較用トークンを返す。
// "EMP-0004122" と "emp4122" はどちらも "EMP4122" になる。
func NormalizeID(s string) string {
	up := nonAlnum.ReplaceAllString(strings.ToUpper(strings.TrimSpace(s)), "")
	if m := leadingZeros.FindStringSubmatch(up); m != nil {
		return m[1] + m[2]
	}
	return up
}

type indexedCandidate struct {
	c       *Candidate
	english string
	arabic  string
}

// Index は Resolve 用の検索表。構築後は読み取り専用なので並行利用してよい
type Index struct {
	byID     map[string]*Candidate
	byNorm   map[string]*Candidate
	mappings map[string]string
	ordered  []indexedCandidate
}

// NewIndex: キー重複時は先に現れた社員を採用する
func NewIndex(employees []Candidate, mappings []Mapping) *Index {
	fold := cases.Fold()
	idx := &Index{
		byID:     make(map[string]*Candidate, len(employees)),
		byNorm:   make(map[string]*Candidate, len(employees)),
		mappings: make(map[string]string, len(mappings)),
		ordered:  make([]indexedCandidate, 0, len(employees)),
	}
	for i := range employees {
		c := &employees[i]
		if c.EmployeeID != "" {
			if _, ok := idx.byID[c.EmployeeID]; !ok {
				idx.byID[c.EmployeeID] = c
			}
			if n := NormalizeID(c.EmployeeID); n != "" {
				if _, ok := idx.byNorm[n]; !ok {
					idx.byNorm[n] = c
				}
			}
		}
		idx.ordered = append(idx.ordered, indexedCandidate{
			c:       c,
			english: fold.String(strings.TrimSpace(c.EnglishName)),
			arabic:  fold.String(strings.TrimSpace(c.ArabicName)),
		})
	}
	for _, m := range mappings {
		uid := strings.TrimSpace(m.UserID)
		if uid == "" || m.EmployeeID == "" {
			continue
		}
		if _, ok := idx.mappings[uid]; !ok {
			idx.mappings[uid] = strings.TrimSpace(m.EmployeeID)
		}
	}
	return idx
}

func (idx *Index) Len() int { return len(idx.ordered) }

// MappedEmployeeID: user_id マッピングの引き当て
func (idx *Index) MappedEmployeeID(userID string) (string, bool) {
	v, ok := idx.mappings[strings.TrimSpace(userID)]
	return v, ok
}

func (idx *Index) lookup(employeeID string) *Candidate {
	if c, ok := idx.byID[employeeID]; ok {
		return c
	}
	if n := NormalizeID(employeeID); n != "" {
		return idx.byNorm[n]
	}
	return nil
}

func Resolve(ev Event, idx *Index) MatchResult {
	res := MatchResult{
		UserID:     ev.UserID,
		EmployeeID: ev.EmployeeID,
		Name:       ev.Name,
		Confidence: ConfidenceNone,
		Method:     MethodNone,
	}
	if idx == nil {
		return res
	}

	rawID := strings.TrimSpace(ev.EmployeeID)
	if rawID != "" {
		if c, ok := idx.byID[rawID]; ok {
			return res.with(c, ConfidenceHigh, MethodExact)
		}
		if n := NormalizeID(rawID); n != "" {
			if c, ok := idx.byNorm[n]; ok {
				return res.with(c, ConfidenceMedium, MethodNormalized)
			}
		}
	}

	if len(idx.mappings) > 0 && strings.TrimSpace(ev.UserID) != "" {
		if mapped, ok := idx.MappedEmployeeID(ev.UserID); ok {
			if c := idx.lookup(mapped); c != nil {
				return res.with(c, ConfidenceMedium, MethodMapping)
			}
		}
	}

	name := cases.Fold().String(strings.TrimSpace(ev.Name))
	if name != "" {
		for _, ic := range idx.ordered {
			if nameContains(ic.english, name) || nameContains(ic.arabic, name) {
				return res.with(ic.c, ConfidenceLow, MethodFuzzy)
			}
		}
	}
	return res
}

func (r MatchResult) with(c *Candidate, conf Confidence, m Method) MatchResult {
	r.Employee = c
	r.Confidence = conf
	r.Method = m
	return r
}

// 空文字同士は一致扱いしない
func nameContains(known, name string) bool {
	if known == "" || name == "" {
		return false
	}
	return strings.Contains(known, name) || strings.Contains(name, known)
}

func ResolveAll(events []Event, idx *Index) []MatchResult {
	out := make([]MatchResult, len(events))
	for i, ev := range events {
		out[i] = Resolve(ev, idx)
	}
	return out
}

// Summary は一括照合の集計
type Summary struct {
	Total      int            `json:"total"`
	Matched    int            `json:"matched"`
	Unmatched  int            `json:"unmatched"`
	ByMethod   map[Method]int `json:"by_method"`
	NeedReview int            `json:"need_review"`
}

func Summarize(results []MatchResult) Summary {
	s := Summary{Total: len(results), ByMethod: map[Method]int{}}
	for _, r := range results {
		s.ByMethod[r.Method]++
		switch {
		case !r.Matched():
			s.Unmatched++
		case r.Method == MethodFuzzy:
			s.Matched++
			s.NeedReview++
		default:
			s.Matched++
		}
	}
	return s
}
