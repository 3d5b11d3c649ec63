package attendance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyFor(t *testing.T) {
	base := DefaultPolicy(Defaults{WorkStart: "08:00", GraceMinutes: 15, HalfDayHours: 4, MaxHours: 12})
	end := "2025-03-31"
	rules := []Rule{
		{RuleType: RuleWorkSchedule, Name: "Standard", Parameters: json.RawMessage(`{"work_start":"07:30"}`), IsActive: true, EffectiveFrom: "2024-01-01"},
		{RuleType: RuleWorkSchedule, Name: "Ramadan", Parameters: json.RawMessage(`{"work_start":"09:30","grace_minutes":5}`), IsActive: true, EffectiveFrom: "2025-03-01", EffectiveTo: &end},
		{RuleType: RuleMaxHours, Name: "Old cap", Parameters: json.RawMessage(`{"hours":10}`), IsActive: false, EffectiveFrom: "2024-01-01"},
		{RuleType: RuleHalfDay, Name: "Broken", Parameters: json.RawMessage(`[1,2]`), IsActive: true, EffectiveFrom: "2024-01-01"},
	}

	p := PolicyFor(base, rules, "2025-03-10")
	assert.Equal(t, 9*60+30, p.WorkStart)
	assert.Equal(t, 5, p.GraceMinutes)
	assert.Equal(t, 12.0, p.MaxHours)
	assert.Equal(t, 4.0, p.HalfDayHours)
	assert.Equal(t, []string{"Ramadan"}, p.Rules)

	p = PolicyFor(base, rules, "2025-04-01")
	assert.Equal(t, 7*60+30, p.WorkStart)
	assert.Equal(t, 15, p.GraceMinutes)
	assert.Equal(t, []string{"Standard"}, p.Rules)

	p = PolicyFor(base, rules, "2023-12-31")
	assert.Equal(t, base.WorkStart, p.WorkStart)
	assert.Empty(t, p.Rules)
}

func TestRuleEffectiveOn(t *testing.T) {
	end := "2025-01-31"
	r := Rule{IsActive: true, EffectiveFrom: "2025-01-01", EffectiveTo: &end}
	assert.True(t, r.EffectiveOn("2025-01-01"))
	assert.True(t, r.EffectiveOn("2025-01-31"))
	assert.False(t, r.EffectiveOn("2024-12-31"))
	assert.False(t, r.EffectiveOn("2025-02-01"))
	r.IsActive = false
	assert.False(t, r.EffectiveOn("2025-01-15"))
}

func TestGroupDaysUsesLocalDate(t *testing.T) {
	loc := time.FixedZone("AST", 3*3600)
	ps := []Punch{
		{RawID: "b", EmployeeID: "e1", At: time.Date(2025, 2, 28, 22, 0, 0, 0, time.UTC)}, // 03-01 01:00 AST
		{RawID: "a", EmployeeID: "e1", At: time.Date(2025, 2, 28, 20, 0, 0, 0, time.UTC)}, // 02-28 23:00 AST
		{RawID: "c", EmployeeID: "e0", At: time.Date(2025, 2, 28, 6, 0, 0, 0, time.UTC)},
		{RawID: "d", EmployeeID: "e0", At: time.Date(2025, 2, 28, 5, 0, 0, 0, time.UTC)},
	}
	days := GroupDays(ps, loc)
	require.Len(t, days, 3)
	assert.Equal(t, "e0", days[0].EmployeeID)
	assert.Equal(t, "d", days[0].First().RawID)
	assert.Equal(t, "c", days[0].Last().RawID)
	assert.Equal(t, "2025-02-28", days[1].Date)
	assert.Equal(t, "2025-03-01", days[2].Date)
}

func TestDetect(t *testing.T) {
	loc := time.UTC
	p := DefaultPolicy(Defaults{WorkStart: "08:00", GraceMinutes: 15, HalfDayHours: 4, MaxHours: 12})
	in := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	out := in.Add(13 * time.Hour)
	h := Hours(in, out)
	r := Record{ID: "r", EmployeeID: "emp-1", Date: "2025-03-01", ClockIn: &in, ClockOut: &out, TotalHours: &h, PunchCount: 5}

	got := Detect(r, p, loc)
	require.Len(t, got, 3)
	assert.Equal(t, AnomalyLateArrival, got[0].AnomalyType)
	assert.Equal(t, SeverityHigh, got[0].Severity)
	assert.Equal(t, "emp-1", got[0].EmployeeID)
	assert.Equal(t, AnomalyExcessiveHours, got[1].AnomalyType)
	assert.Equal(t, AnomalyDuplicatePunch, got[2].AnomalyType)

	r.Status = StatusOnLeave
	assert.Empty(t, Detect(r, p, loc))
}

func TestStatusPrecedence(t *testing.T) {
	p := DefaultPolicy(Defaults{WorkStart: "08:00", GraceMinutes: 15, HalfDayHours: 4})
	late := time.Date(2025, 3, 1, 8, 16, 0, 0, time.UTC)
	assert.Equal(t, StatusLate, p.Status(late, nil, time.UTC))
	onTime := time.Date(2025, 3, 1, 8, 15, 0, 0, time.UTC)
	assert.Equal(t, StatusPresent, p.Status(onTime, nil, time.UTC))
	short := late.Add(2 * time.Hour)
	assert.Equal(t, StatusHalfDay, p.Status(late, &short, time.UTC))
}

func TestMergeCountsEachRawPunchOnce(t *testing.T) {
	p := DefaultPolicy(Defaults{WorkStart: "08:00", GraceMinutes: 15, HalfDayHours: 4, MaxHours: 12})
	day := Day{EmployeeID: "emp-1", Date: "2025-03-01", Punches: []Punch{
		{RawID: "r1", EmployeeID: "emp-1", At: time.Date(2025, 3, 1, 7, 55, 0, 0, time.UTC), Terminal: "Gate A"},
		{RawID: "r2", EmployeeID: "emp-1", At: time.Date(2025, 3, 1, 16, 5, 0, 0, time.UTC), Terminal: "Gate A"},
	}}

	first := Merge(nil, day, p, time.UTC)
	assert.Equal(t, 2, first.PunchCount)
	assert.Equal(t, []string{"r1", "r2"}, first.RawIDs)

	again := Merge(&first, day, p, time.UTC)
	assert.Equal(t, 2, again.PunchCount)
	assert.Equal(t, []string{"r1", "r2"}, again.RawIDs)
	assert.Empty(t, Detect(again, p, time.UTC))

	// 新しい打刻だけが加算される
	later := Day{EmployeeID: "emp-1", Date: "2025-03-01", Punches: append([]Punch{
		{RawID: "r3", EmployeeID: "emp-1", At: time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC), Terminal: "Gate B"},
	}, day.Punches...)}
	merged := Merge(&again, later, p, time.UTC)
	assert.Equal(t, 3, merged.PunchCount)
	assert.Equal(t, []string{"r1", "r2", "r3"}, merged.RawIDs)
	assert.Equal(t, "Gate B", merged.OutTerminal)
	assert.Equal(t, []string{"r1", "r2"}, again.RawIDs)
}
