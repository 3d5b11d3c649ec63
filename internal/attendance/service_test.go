package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-backend/internal/audit"
	"hrms-backend/internal/identity"
	"hrms-backend/internal/notify"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/ids"
	"hrms-backend/internal/platform/realtime"
	"hrms-backend/internal/rawattendance"
)

var (
	ast     = time.FixedZone("AST", 3*3600)
	testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) // 12:00 AST
)

func utc(day, hour, minute int) time.Time {
	return time.Date(2025, 2, day, hour, minute, 0, 0, time.UTC)
}

type indexFunc func(ctx context.Context) (*identity.Index, error)

func (f indexFunc) Index(ctx context.Context) (*identity.Index, error) { return f(ctx) }

type captureNotifier struct {
	label string
	items []notify.Item
}

func (n *captureNotifier) SendAnomalyDigest(_ context.Context, label string, items []notify.Item) error {
	n.label, n.items = label, items
	return nil
}

type fixture struct {
	svc    *Service
	repo   *memRepo
	raw    *memRaw
	notify *captureNotifier
}

func newFixture(t *testing.T, events ...rawattendance.Event) *fixture {
	t.Helper()
	repo := newMemRepo()
	repo.names["emp-1"] = [2]string{"E-001", "Sara Ali"}
	repo.names["emp-2"] = [2]string{"E-002", "Omar Khan"}
	repo.active = 4
	raw := &memRaw{events: events}
	n := &captureNotifier{}

	cands := []identity.Candidate{
		{ID: "emp-1", EmployeeID: "E-001", EnglishName: "Sara Ali"},
		{ID: "emp-2", EmployeeID: "E-002", EnglishName: "Omar Khan"},
	}
	mappings := []identity.Mapping{{UserID: "U9", EmployeeID: "E-002"}}

	svc := NewService(Deps{
		Repo:      repo,
		Tx:        memTx{repo: repo, raw: raw},
		Index:     indexFunc(func(context.Context) (*identity.Index, error) { return identity.NewIndex(cands, mappings), nil }),
		Notifier:  n,
		Clock:     ids.FixedClock{T: testNow},
		IDs:       ids.NewULIDGen(),
		Audit:     audit.Nop{},
		Publisher: realtime.Nop{},
		Location:  ast,
		Defaults:  Defaults{WorkStart: "08:00", GraceMinutes: 15, HalfDayHours: 4, MaxHours: 12, WindowDays: 30},
	})
	return &fixture{svc: svc, repo: repo, raw: raw, notify: n}
}

func ev(id, userID, employeeID, name string, at time.Time) rawattendance.Event {
	return rawattendance.Event{ID: id, UserID: userID, EmployeeID: employeeID, Name: name, ClockingTime: at, Terminal: "Gate A"}
}

// 各照合段階（完全一致・正規化・マッピング・確認済み・氏名のみ・該当なし・却下）を含む打刻
func scenarioEvents() []rawattendance.Event {
	reviewed := ev("r8", "77", "??", "O. Khan", utc(28, 14, 0))
	reviewed.MatchStatus, reviewed.EmployeeUUID = rawattendance.MatchMatched, "emp-2"
	rejected := ev("r7", "E-001", "E-001", "Sara Ali", utc(28, 6, 0))
	rejected.MatchStatus = rawattendance.MatchRejected

	return []rawattendance.Event{
		ev("r1", "E-001", "E-001", "Sara Ali", utc(28, 4, 50)),
		ev("r2", "E-001", "E-001", "Sara Ali", utc(28, 13, 10)),
		ev("r3", "U9", "X9", "Someone", utc(28, 5, 40)),
		ev("r4", "e001", "e001", "Sara", utc(27, 5, 0)),
		ev("r5", "Z-999", "Z-999", "Nobody", utc(28, 6, 0)),
		ev("r6", "Q-1", "Q-1", "omar", utc(28, 6, 30)),
		rejected,
		reviewed,
		ev("r9", "E-002", "E-002", "Omar Khan", utc(26, 5, 0)),
		ev("r10", "E-001", "E-001", "Sara Ali", time.Date(2025, 1, 1, 5, 0, 0, 0, time.UTC)),
	}
}

func seedConfirmed(f *fixture) Record {
	in, out := utc(26, 4, 55), utc(26, 13, 0)
	h := Hours(in, out)
	r := Record{
		ID: "rec-confirmed", EmployeeID: "emp-2", Date: "2025-02-26", ClockIn: &in, ClockOut: &out, PunchCount: 2,
		TotalHours: &h, Status: StatusPresent, ApprovalStatus: ApprovalApproved, IsConfirmed: true, SourceType: SourceManual,
	}
	f.repo.recs[r.ID] = r
	return r
}

func findDay(t *testing.T, f *fixture, employeeID, date string) Record {
	t.Helper()
	r, err := f.repo.FindByDay(context.Background(), employeeID, date)
	require.NoError(t, err)
	require.NotNil(t, r, "%s %s", employeeID, date)
	return *r
}

func TestProcess(t *testing.T) {
	f := newFixture(t, scenarioEvents()...)
	confirmed := seedConfirmed(f)

	res, err := f.svc.Process(context.Background(), "hr-1", ProcessOptions{AutoApprove: true})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "2025-01-30", res.DateFrom)
	assert.Equal(t, "2025-03-01", res.DateTo)
	assert.Equal(t, 3, res.Upserted)
	assert.Equal(t, 1, res.SkippedConfirmed)
	assert.Equal(t, int64(6), res.RawMarkedProcessed)
	assert.Equal(t, 2, res.SkippedUnmatched)
	assert.Equal(t, 1, res.SkippedRejected)
	assert.Equal(t, 2, res.AnomaliesDetected)
	assert.Equal(t, int64(1), res.AutoApproved)
	assert.Equal(t, 1, res.RulesApplied.Late)
	assert.Equal(t, 0, res.RulesApplied.HalfDay)
	assert.Empty(t, res.RulesApplied.Rules)

	// 2 打刻: 最初が出勤、最後が退勤
	sara := findDay(t, f, "emp-1", "2025-02-28")
	require.NotNil(t, sara.ClockIn)
	require.NotNil(t, sara.ClockOut)
	assert.True(t, sara.ClockIn.Equal(utc(28, 4, 50)))
	assert.True(t, sara.ClockOut.Equal(utc(28, 13, 10)))
	assert.InDelta(t, 8.33, *sara.TotalHours, 0.001)
	assert.Equal(t, StatusPresent, sara.Status)
	assert.Equal(t, ApprovalApproved, sara.ApprovalStatus)
	assert.Equal(t, SourceTerminal, sara.SourceType)

	// 1 打刻: 退勤なし
	single := findDay(t, f, "emp-1", "2025-02-27")
	assert.Nil(t, single.ClockOut)
	assert.Nil(t, single.TotalHours)
	assert.Equal(t, StatusPresent, single.Status)
	assert.Equal(t, ApprovalPending, single.ApprovalStatus)

	// マッピング + 確認済みの打刻。08:40 AST は遅刻
	omar := findDay(t, f, "emp-2", "2025-02-28")
	assert.Equal(t, StatusLate, omar.Status)
	assert.Equal(t, 2, omar.PunchCount)
	assert.True(t, omar.ClockOut.Equal(utc(28, 14, 0)))

	// 確定済みは上書きしない
	assert.Equal(t, confirmed, f.repo.recs["rec-confirmed"])

	for _, id := range []string{"r1", "r2", "r3", "r4", "r8", "r9"} {
		assert.True(t, f.raw.byID(id).Processed, id)
		assert.Equal(t, rawattendance.MatchMatched, f.raw.byID(id).MatchStatus, id)
	}
	assert.False(t, f.raw.byID("r5").Processed)
	assert.Equal(t, rawattendance.MatchUnmatched, f.raw.byID("r5").MatchStatus)
	assert.False(t, f.raw.byID("r6").Processed, "name-only match needs review")
	assert.Empty(t, f.raw.byID("r6").MatchStatus)
	assert.False(t, f.raw.byID("r7").Processed)
	assert.Equal(t, rawattendance.MatchRejected, f.raw.byID("r7").MatchStatus)
	assert.False(t, f.raw.byID("r10").Processed, "outside default window")

	assert.Equal(t, "2025-01-30..2025-03-01", f.notify.label)
	assert.Len(t, f.notify.items, 2)

	// 再実行しても結果は変わらない
	again, err := f.svc.Process(context.Background(), "hr-1", ProcessOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Upserted)
	assert.Equal(t, int64(0), again.RawMarkedProcessed)
	assert.Equal(t, 2, again.SkippedUnmatched)
	assert.Len(t, f.repo.recs, 4)
}

func TestProcessWithoutMarking(t *testing.T) {
	f := newFixture(t, scenarioEvents()...)
	no := false
	res, err := f.svc.Process(context.Background(), "hr-1", ProcessOptions{MarkProcessed: &no})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RawMarkedProcessed)
	assert.False(t, f.raw.byID("r1").Processed)
	assert.Empty(t, f.raw.byID("r5").MatchStatus)
}

func TestProcessWithoutMarkingIsRepeatable(t *testing.T) {
	f := newFixture(t,
		ev("r1", "E-001", "E-001", "Sara Ali", utc(28, 4, 50)),
		ev("r2", "E-001", "E-001", "Sara Ali", utc(28, 13, 10)),
	)
	no := false
	for run := 1; run <= 3; run++ {
		res, err := f.svc.Process(context.Background(), "hr-1", ProcessOptions{MarkProcessed: &no})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Upserted, "run %d", run)
		assert.Equal(t, 0, res.AnomaliesDetected, "run %d", run)

		sara := findDay(t, f, "emp-1", "2025-02-28")
		assert.Equal(t, 2, sara.PunchCount, "run %d", run)
	}
	assert.Len(t, f.repo.recs, 1)
	assert.Empty(t, f.notify.items)
}

func TestProcessMergesLaterPunches(t *testing.T) {
	f := newFixture(t, ev("a", "E-001", "E-001", "Sara Ali", utc(28, 4, 50)))
	_, err := f.svc.Process(context.Background(), "hr-1", ProcessOptions{})
	require.NoError(t, err)
	first := findDay(t, f, "emp-1", "2025-02-28")
	assert.Nil(t, first.ClockOut)

	f.raw.events = append(f.raw.events, ev("b", "E-001", "E-001", "Sara Ali", utc(28, 13, 10)))
	res, err := f.svc.Process(context.Background(), "hr-1", ProcessOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Upserted)

	merged := findDay(t, f, "emp-1", "2025-02-28")
	assert.Equal(t, first.ID, merged.ID)
	assert.True(t, merged.ClockIn.Equal(utc(28, 4, 50)))
	assert.True(t, merged.ClockOut.Equal(utc(28, 13, 10)))
	assert.Equal(t, 2, merged.PunchCount)
}

func TestProcessAppliesEffectiveRules(t *testing.T) {
	f := newFixture(t,
		ev("r1", "E-001", "E-001", "Sara Ali", utc(28, 4, 50)),
		ev("r2", "E-001", "E-001", "Sara Ali", utc(28, 13, 10)),
	)
	f.repo.rules = []Rule{
		{ID: "rule-1", RuleType: RuleHalfDay, Name: "Extended half day", Parameters: json.RawMessage(`{"hours":9}`),
			IsActive: true, EffectiveFrom: "2025-02-01"},
		{ID: "rule-2", RuleType: RuleMaxHours, Name: "Disabled cap", Parameters: json.RawMessage(`{"hours":1}`),
			IsActive: false, EffectiveFrom: "2025-02-01"},
	}

	res, err := f.svc.Process(context.Background(), "hr-1", ProcessOptions{DateFrom: "2025-02-28", DateTo: "2025-02-28"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.RulesApplied.HalfDay)
	assert.Equal(t, []string{"Extended half day"}, res.RulesApplied.Rules)
	assert.Equal(t, 1, res.AnomaliesDetected)
	assert.Equal(t, AnomalyShortDay, f.notify.items[0].Type)
	assert.Equal(t, StatusHalfDay, findDay(t, f, "emp-1", "2025-02-28").Status)
}

func TestProcessRollsBackOnFailure(t *testing.T) {
	f := newFixture(t, scenarioEvents()...)
	f.raw.failMark = errors.New("new row violates row-level security policy")

	_, err := f.svc.Process(context.Background(), "hr-1", ProcessOptions{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodePermissionDenied))
	assert.Empty(t, f.repo.recs)
	assert.False(t, f.raw.byID("r1").Processed)
}

func TestProcessValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Process(context.Background(), "hr-1", ProcessOptions{DateFrom: "2025-03-02", DateTo: "2025-03-01"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	_, err = f.svc.Process(context.Background(), "hr-1", ProcessOptions{DateFrom: "01/03/2025"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	f.svc.running.Store(true)
	_, err = f.svc.Process(context.Background(), "hr-1", ProcessOptions{})
	assert.True(t, apperr.Is(err, apperr.CodeBusy))
}

func TestProcessIndexFailure(t *testing.T) {
	f := newFixture(t, scenarioEvents()...)
	f.svc.index = indexFunc(func(context.Context) (*identity.Index, error) {
		return nil, apperr.Permission(apperr.MsgPermissionDenied)
	})
	_, err := f.svc.Process(context.Background(), "hr-1", ProcessOptions{})
	assert.True(t, apperr.Is(err, apperr.CodePermissionDenied))
	assert.False(t, f.svc.running.Load())
}

func TestClockInOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	at := func(h, m int) *time.Time {
		v := time.Date(2025, 3, 1, h, m, 0, 0, time.UTC)
		return &v
	}

	in, err := f.svc.Clock(ctx, "hr-1", ClockRequest{EmployeeID: "emp-1", Action: ActionClockIn, Timestamp: at(5, 30)})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", in.Date)
	assert.Equal(t, StatusLate, in.Status)
	assert.Equal(t, SourceManual, in.SourceType)
	assert.Equal(t, "Sara Ali", in.EmployeeName)

	_, err = f.svc.Clock(ctx, "hr-1", ClockRequest{EmployeeID: "emp-1", Action: ActionClockIn, Timestamp: at(6, 0)})
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	_, err = f.svc.Clock(ctx, "hr-1", ClockRequest{EmployeeID: "emp-1", Action: ActionClockOut, Timestamp: at(5, 0)})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	out, err := f.svc.Clock(ctx, "hr-1", ClockRequest{EmployeeID: "emp-1", Action: ActionClockOut, Timestamp: at(8, 30), Notes: "left early"})
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	assert.InDelta(t, 3.0, *out.TotalHours, 0.001)
	assert.Equal(t, StatusHalfDay, out.Status)
	assert.Equal(t, "left early", out.Notes)
	assert.Equal(t, 2, out.PunchCount)

	_, err = f.svc.Clock(ctx, "hr-1", ClockRequest{EmployeeID: "emp-2", Action: ActionClockOut, Timestamp: at(8, 30)})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	_, err = f.svc.Clock(ctx, "hr-1", ClockRequest{EmployeeID: "emp-2", Action: "break"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}

func TestClockOutRejectsConfirmed(t *testing.T) {
	f := newFixture(t)
	in := time.Date(2025, 3, 1, 5, 0, 0, 0, time.UTC)
	f.repo.recs["c"] = Record{ID: "c", EmployeeID: "emp-1", Date: "2025-03-01", ClockIn: &in, IsConfirmed: true, Status: StatusPresent}

	_, err := f.svc.Clock(context.Background(), "hr-1", ClockRequest{EmployeeID: "emp-1", Action: ActionClockOut})
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}

func TestUpdateRecomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := time.Date(2025, 3, 1, 5, 30, 0, 0, time.UTC)
	f.repo.recs["x"] = Record{ID: "x", EmployeeID: "emp-1", Date: "2025-03-01", ClockIn: &in, Status: StatusLate, PunchCount: 1}

	out := time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)
	r, err := f.svc.Update(ctx, "hr-1", "x", UpdateRequest{ClockOut: &out})
	require.NoError(t, err)
	assert.InDelta(t, 9.0, *r.TotalHours, 0.001)
	assert.Equal(t, StatusLate, r.Status)

	early := time.Date(2025, 3, 1, 4, 55, 0, 0, time.UTC)
	r, err = f.svc.Update(ctx, "hr-1", "x", UpdateRequest{ClockIn: &early})
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, r.Status)

	leave := StatusOnLeave
	r, err = f.svc.Update(ctx, "hr-1", "x", UpdateRequest{Status: &leave})
	require.NoError(t, err)
	assert.Equal(t, StatusOnLeave, r.Status)

	bad := "holiday"
	_, err = f.svc.Update(ctx, "hr-1", "x", UpdateRequest{Status: &bad})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	before := time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC)
	_, err = f.svc.Update(ctx, "hr-1", "x", UpdateRequest{ClockOut: &before})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	_, err = f.svc.Update(ctx, "hr-1", "missing", UpdateRequest{})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestConfirmAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.repo.recs["x"] = Record{ID: "x", EmployeeID: "emp-1", Date: "2025-03-01", Status: StatusPresent, ApprovalStatus: ApprovalPending}

	r, err := f.svc.Confirm(ctx, "hr-1", "x")
	require.NoError(t, err)
	assert.True(t, r.IsConfirmed)
	assert.Equal(t, ApprovalApproved, r.ApprovalStatus)

	require.NoError(t, f.svc.Delete(ctx, "hr-1", "x"))
	assert.Empty(t, f.repo.recs)
	assert.True(t, apperr.Is(f.svc.Delete(ctx, "hr-1", "x"), apperr.CodeNotFound))
}

func TestDailyStatsAndAutoApprove(t *testing.T) {
	f := newFixture(t, scenarioEvents()...)
	ctx := context.Background()
	_, err := f.svc.Process(ctx, "hr-1", ProcessOptions{})
	require.NoError(t, err)

	st, err := f.svc.DailyStats(ctx, "2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.TotalEmployees)
	assert.Equal(t, 2, st.PresentCount)
	assert.Equal(t, 1, st.LateCount)
	assert.Equal(t, int64(2), st.AbsentCount)
	assert.InDelta(t, 16.66, st.TotalWorkHours, 0.001)
	assert.InDelta(t, 8.33, st.AverageWorkHours, 0.001)
	assert.InDelta(t, 50.0, st.AttendanceRate, 0.001)

	n, err := f.svc.AutoApprove(ctx, "hr-1", "2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, ApprovalApproved, findDay(t, f, "emp-1", "2025-02-28").ApprovalStatus)
	assert.Equal(t, ApprovalPending, findDay(t, f, "emp-2", "2025-02-28").ApprovalStatus)

	_, err = f.svc.DailyStats(ctx, "yesterday")
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}

func TestDetectAnomaliesAndDigest(t *testing.T) {
	f := newFixture(t, scenarioEvents()...)
	ctx := context.Background()
	seedConfirmed(f)
	no := false
	_, err := f.svc.Process(ctx, "hr-1", ProcessOptions{MarkProcessed: &no})
	require.NoError(t, err)

	out, err := f.svc.DetectAnomalies(ctx, "2025-02-26", "2025-02-28")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, AnomalyMissingClockOut, out[0].AnomalyType)
	assert.Equal(t, "E-001", out[0].EmployeeID)
	assert.Equal(t, "2025-02-27", out[0].Date)
	assert.Equal(t, AnomalyLateArrival, out[1].AnomalyType)
	assert.Equal(t, SeverityMedium, out[1].Severity)
	assert.Equal(t, 40, out[1].Details["minutes_late"])

	f.notify.items = nil
	n, err := f.svc.SendDigest(ctx, "2025-02-27")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "2025-02-27", f.notify.label)
	require.Len(t, f.notify.items, 1)
	assert.Equal(t, "Sara Ali", f.notify.items[0].EmployeeName)

	_, err = f.svc.DetectAnomalies(ctx, "2024-01-01", "2025-02-28")
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}

func TestListValidation(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.List(context.Background(), ListQuery{Status: "sleeping"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
	_, _, err = f.svc.List(context.Background(), ListQuery{From: "2025/01/01"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	f.repo.recs["x"] = Record{ID: "x", EmployeeID: "emp-1", Date: "2025-03-01", Status: StatusPresent}
	items, total, err := f.svc.List(context.Background(), ListQuery{Status: StatusPresent})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "E-001", items[0].EmployeeCode)
}

func TestBusinessRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateRule(ctx, "admin", RuleRequest{RuleType: "overtime", Name: "", EffectiveFrom: "2025-13-01"})
	require.Error(t, err)
	var api *apperr.APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, apperr.CodeInvalidArgument, api.Code)
	assert.Len(t, api.Details, 3)

	_, err = f.svc.CreateRule(ctx, "admin", RuleRequest{RuleType: RuleHalfDay, Name: "Half", EffectiveFrom: "2025-01-01"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument), "hours is required")

	to := "2024-12-31"
	_, err = f.svc.CreateRule(ctx, "admin", RuleRequest{RuleType: RuleHalfDay, Name: "Half",
		Parameters: json.RawMessage(`{"hours":5}`), EffectiveFrom: "2025-01-01", EffectiveTo: &to})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	r, err := f.svc.CreateRule(ctx, "admin", RuleRequest{RuleType: RuleWorkSchedule, Name: "Ramadan hours",
		Parameters: json.RawMessage(`{"work_start":"09:30","grace_minutes":10}`), EffectiveFrom: "2025-03-01"})
	require.NoError(t, err)
	assert.True(t, r.IsActive)
	assert.Equal(t, "admin", r.CreatedBy)

	off := false
	upd, err := f.svc.UpdateRule(ctx, "admin", r.ID, RuleRequest{RuleType: RuleWorkSchedule, Name: "Ramadan hours",
		Parameters: json.RawMessage(`{"work_start":"09:00"}`), EffectiveFrom: "2025-03-01", IsActive: &off})
	require.NoError(t, err)
	assert.False(t, upd.IsActive)
	assert.JSONEq(t, `{"work_start":"09:00"}`, string(upd.Parameters))

	active, err := f.svc.ListRules(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, f.svc.DeleteRule(ctx, "admin", r.ID))
	assert.True(t, apperr.Is(f.svc.DeleteRule(ctx, "admin", r.ID), apperr.CodeNotFound))
}
