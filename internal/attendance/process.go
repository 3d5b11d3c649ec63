package attendance

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Policy は 1 日分の判定基準。設定値を既定とし、有効な業務ルールで上書きする
type Policy struct {
	WorkStart    int // 0 時からの分
	GraceMinutes int
	HalfDayHours float64
	MaxHours     float64
	Rules        []string
}

type Defaults struct {
	WorkStart    string
	GraceMinutes int
	HalfDayHours float64
	MaxHours     float64
	WindowDays   int
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("work_start must be HH:MM")
	}
	return t.Hour()*60 + t.Minute(), nil
}

func DefaultPolicy(d Defaults) Policy {
	start, err := parseClock(d.WorkStart)
	if err != nil {
		start = 8 * 60
	}
	return Policy{
		WorkStart:    start,
		GraceMinutes: d.GraceMinutes,
		HalfDayHours: d.HalfDayHours,
		MaxHours:     d.MaxHours,
	}
}

// PolicyFor は date に有効なルールを種類ごとに 1 件（effective_from が最も新しいもの）適用する
func PolicyFor(base Policy, rules []Rule, date string) Policy {
	latest := map[string]Rule{}
	for _, r := range rules {
		if !r.EffectiveOn(date) {
			continue
		}
		if cur, ok := latest[r.RuleType]; !ok || r.EffectiveFrom > cur.EffectiveFrom {
			latest[r.RuleType] = r
		}
	}
	p := base
	p.Rules = nil
	types := make([]string, 0, len(latest))
	for t := range latest {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		r := latest[t]
		var prm ruleParams
		if len(r.Parameters) > 0 {
			if err := json.Unmarshal(r.Parameters, &prm); err != nil {
				continue
			}
		}
		switch t {
		case RuleWorkSchedule:
			if prm.WorkStart != "" {
				if m, err := parseClock(prm.WorkStart); err == nil {
					p.WorkStart = m
				}
			}
			if prm.GraceMinutes != nil {
				p.GraceMinutes = *prm.GraceMinutes
			}
		case RuleHalfDay:
			if prm.Hours != nil {
				p.HalfDayHours = *prm.Hours
			}
		case RuleMaxHours:
			if prm.Hours != nil {
				p.MaxHours = *prm.Hours
			}
		}
		p.Rules = append(p.Rules, r.Name)
	}
	return p
}

// MinutesLate: 始業時刻からの遅れ（猶予は含めない）。始業前は 0
func (p Policy) MinutesLate(clockIn time.Time, loc *time.Location) int {
	l := clockIn.In(loc)
	late := l.Hour()*60 + l.Minute() - p.WorkStart
	if late < 0 {
		return 0
	}
	return late
}

// Status: 半日 > 遅刻 > 出勤 の順に判定する。退勤がなければ半日判定はしない
func (p Policy) Status(clockIn time.Time, clockOut *time.Time, loc *time.Location) string {
	if clockOut != nil {
		if h := Hours(clockIn, *clockOut); h < p.HalfDayHours {
			return StatusHalfDay
		}
	}
	if p.MinutesLate(clockIn, loc) > p.GraceMinutes {
		return StatusLate
	}
	return StatusPresent
}

func Hours(in, out time.Time) float64 {
	return round2(out.Sub(in).Hours())
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// Punch は社員に解決済みの打刻 1 件
type Punch struct {
	RawID      string
	EmployeeID string // employees.id
	At         time.Time
	Terminal   string
}

// Day: 社員 × 現地日付 の打刻（時刻順）
type Day struct {
	EmployeeID string
	Date       string
	Punches    []Punch
}

func (d Day) First() Punch { return d.Punches[0] }
func (d Day) Last() Punch  { return d.Punches[len(d.Punches)-1] }

// GroupDays は打刻を社員・現地日付ごとにまとめる。結果は社員、日付の順
func GroupDays(ps []Punch, loc *time.Location) []Day {
	idx := map[string]int{}
	var out []Day
	for _, p := range ps {
		date := p.At.In(loc).Format(DateLayout)
		key := p.EmployeeID + "|" + date
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, Day{EmployeeID: p.EmployeeID, Date: date})
		}
		out[i].Punches = append(out[i].Punches, p)
	}
	for i := range out {
		sort.SliceStable(out[i].Punches, func(a, b int) bool {
			return out[i].Punches[a].At.Before(out[i].Punches[b].At)
		})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].EmployeeID != out[b].EmployeeID {
			return out[a].EmployeeID < out[b].EmployeeID
		}
		return out[a].Date < out[b].Date
	})
	return out
}

// Merge は既存の日次記録に打刻を重ねる。最初の打刻が出勤、最後が退勤（1 打刻なら退勤なし）。
// RawIDs に記録済みの生打刻は件数に含めないので、同じ打刻で何度呼んでも結果は変わらない。
func Merge(existing *Record, d Day, p Policy, loc *time.Location) Record {
	var r Record
	if existing != nil {
		r = *existing
	} else {
		r = Record{
			EmployeeID:     d.EmployeeID,
			Date:           d.Date,
			SourceType:     SourceTerminal,
			ApprovalStatus: ApprovalPending,
		}
	}

	times := make([]Punch, 0, len(d.Punches)+2)
	if r.ClockIn != nil {
		times = append(times, Punch{At: *r.ClockIn, Terminal: r.InTerminal})
	}
	if r.ClockOut != nil {
		times = append(times, Punch{At: *r.ClockOut, Terminal: r.OutTerminal})
	}
	times = append(times, d.Punches...)
	sort.SliceStable(times, func(a, b int) bool { return times[a].At.Before(times[b].At) })

	first, last := times[0], times[len(times)-1]
	in := first.At
	r.ClockIn = &in
	r.InTerminal = first.Terminal
	r.ClockOut, r.OutTerminal, r.TotalHours = nil, "", nil
	if last.At.After(first.At) {
		out := last.At
		r.ClockOut = &out
		r.OutTerminal = last.Terminal
		h := Hours(in, out)
		r.TotalHours = &h
	}
	seen := make(map[string]struct{}, len(r.RawIDs))
	for _, id := range r.RawIDs {
		seen[id] = struct{}{}
	}
	ids := append([]string(nil), r.RawIDs...)
	for _, pu := range d.Punches {
		if pu.RawID != "" {
			if _, dup := seen[pu.RawID]; dup {
				continue
			}
			seen[pu.RawID] = struct{}{}
			ids = append(ids, pu.RawID)
		}
		r.PunchCount++
	}
	r.RawIDs = ids
	r.Status = p.Status(in, r.ClockOut, loc)
	return r
}

const duplicatePunchThreshold = 2

// Detect は記録 1 件の異常を返す
func Detect(r Record, p Policy, loc *time.Location) []Anomaly {
	if r.Status == StatusOnLeave || r.Status == StatusAbsent || r.ClockIn == nil {
		return nil
	}
	base := Anomaly{RecordID: r.ID, EmployeeID: r.EmployeeCode, EmployeeName: r.EmployeeName, Date: r.Date}
	if base.EmployeeID == "" {
		base.EmployeeID = r.EmployeeID
	}
	mk := func(kind, severity string, details map[string]any) Anomaly {
		a := base
		a.AnomalyType, a.Severity, a.Details = kind, severity, details
		return a
	}

	var out []Anomaly
	if r.ClockOut == nil {
		out = append(out, mk(AnomalyMissingClockOut, SeverityMedium, map[string]any{
			"clock_in": r.ClockIn.UTC().Format(time.RFC3339),
		}))
	}
	if late := p.MinutesLate(*r.ClockIn, loc); late > p.GraceMinutes {
		sev := SeverityLow
		switch {
		case late > 60:
			sev = SeverityHigh
		case late > 30:
			sev = SeverityMedium
		}
		out = append(out, mk(AnomalyLateArrival, sev, map[string]any{"minutes_late": late}))
	}
	if r.TotalHours != nil {
		h := *r.TotalHours
		switch {
		case p.MaxHours > 0 && h > p.MaxHours:
			out = append(out, mk(AnomalyExcessiveHours, SeverityHigh, map[string]any{"total_hours": h, "max_hours": p.MaxHours}))
		case h < p.HalfDayHours:
			out = append(out, mk(AnomalyShortDay, SeverityMedium, map[string]any{"total_hours": h, "half_day_hours": p.HalfDayHours}))
		}
	}
	if r.PunchCount > duplicatePunchThreshold {
		out = append(out, mk(AnomalyDuplicatePunch, SeverityLow, map[string]any{"punch_count": r.PunchCount}))
	}
	return out
}
