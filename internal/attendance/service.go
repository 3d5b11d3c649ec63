package attendance

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"hrms-backend/internal/audit"
	"hrms-backend/internal/employees"
	"hrms-backend/internal/identity"
	"hrms-backend/internal/notify"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/ids"
	"hrms-backend/internal/platform/realtime"
	"hrms-backend/internal/rawattendance"
)

const (
	table      = "attendance_records"
	rulesTable = "attendance_business_rules"
	maxRange   = 366
)

// IndexSource は照合表を作る（*rawattendance.Service が満たす）
type IndexSource interface {
	Index(ctx context.Context) (*identity.Index, error)
}

type Notifier interface {
	SendAnomalyDigest(ctx context.Context, label string, items []notify.Item) error
}

type Deps struct {
	Repo      Repository
	Tx        Transactor
	Index     IndexSource
	Notifier  Notifier
	Clock     ids.Clock
	IDs       ids.IDGen
	Audit     audit.Recorder
	Publisher realtime.Publisher
	Location  *time.Location
	Defaults  Defaults
}

type Service struct {
	repo     Repository
	tx       Transactor
	index    IndexSource
	notifier Notifier
	clock    ids.Clock
	id       ids.IDGen
	audit    audit.Recorder
	pub      realtime.Publisher
	loc      *time.Location
	defaults Defaults
	running  atomic.Bool
}

func NewService(d Deps) *Service {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	if d.Defaults.WindowDays <= 0 {
		d.Defaults.WindowDays = 30
	}
	return &Service{
		repo:     d.Repo,
		tx:       d.Tx,
		index:    d.Index,
		notifier: d.Notifier,
		clock:    d.Clock,
		id:       d.IDs,
		audit:    d.Audit,
		pub:      d.Publisher,
		loc:      loc,
		defaults: d.Defaults,
	}
}

func (s *Service) today() string { return s.clock.Now().In(s.loc).Format(DateLayout) }

func (s *Service) parseDate(name, v string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(v), s.loc)
	if err != nil {
		return time.Time{}, apperr.Invalid(name + " must be YYYY-MM-DD")
	}
	return t, nil
}

// dateRange: 空なら今日。from <= to かつ maxRange 日以内
func (s *Service) dateRange(from, to string) (string, string, error) {
	if to == "" {
		to = s.today()
	}
	if from == "" {
		from = to
	}
	f, err := s.parseDate("date_from", from)
	if err != nil {
		return "", "", err
	}
	t, err := s.parseDate("date_to", to)
	if err != nil {
		return "", "", err
	}
	if t.Before(f) {
		return "", "", apperr.Invalid("date_to must be on or after date_from")
	}
	if t.Sub(f) > maxRange*24*time.Hour {
		return "", "", apperr.Invalid("date range must not exceed 366 days")
	}
	return f.Format(DateLayout), t.Format(DateLayout), nil
}

func (s *Service) basePolicy() Policy { return DefaultPolicy(s.defaults) }

func (s *Service) activeRules(ctx context.Context) ([]Rule, error) {
	rules, err := s.repo.ListRules(ctx, true)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return rules, nil
}

func (s *Service) publish(op realtime.Op, r *Record, old *Record) {
	ev := realtime.Event{Table: table, Op: op, UpdatedAt: s.clock.Now()}
	if r != nil {
		ev.RecordID, ev.Row, ev.UpdatedAt = r.ID, r, r.UpdatedAt
	}
	if old != nil {
		ev.Old = old
		if ev.RecordID == "" {
			ev.RecordID = old.ID
		}
	}
	s.pub.Publish(ev)
}

// ===== records =====

func (s *Service) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	if q.Status != "" {
		if _, ok := statuses[q.Status]; !ok {
			return nil, 0, apperr.Invalid("status must be one of present, absent, late, on_leave, half_day")
		}
	}
	if q.From != "" {
		if _, err := s.parseDate("date_from", q.From); err != nil {
			return nil, 0, err
		}
	}
	if q.To != "" {
		if _, err := s.parseDate("date_to", q.To); err != nil {
			return nil, 0, err
		}
	}
	if q.Sort == "" {
		q.Sort = DefaultSort
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	out, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, apperr.Classify(err)
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return r, nil
}

// Clock は手動の出勤・退勤。1 社員 1 日 1 記録で、退勤時に勤務時間を計算する
func (s *Service) Clock(ctx context.Context, actor string, req ClockRequest) (*Record, error) {
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	if req.EmployeeID == "" {
		return nil, apperr.Invalid("employee_id is required")
	}
	if req.Action != ActionClockIn && req.Action != ActionClockOut {
		return nil, apperr.Invalid("action must be clock_in or clock_out")
	}
	at := s.clock.Now()
	if req.Timestamp != nil {
		at = req.Timestamp.UTC()
	}
	date := at.In(s.loc).Format(DateLayout)
	rules, err := s.activeRules(ctx)
	if err != nil {
		return nil, err
	}
	p := PolicyFor(s.basePolicy(), rules, date)
	now := s.clock.Now()

	var (
		saved *Record
		prev  *Record
	)
	err = s.tx.InTx(ctx, func(ctx context.Context, repo Repository, _ RawEvents) error {
		existing, err := repo.FindByDay(ctx, req.EmployeeID, date)
		if err != nil {
			return err
		}
		var id string
		switch req.Action {
		case ActionClockIn:
			if existing != nil {
				return apperr.Conflict("Employee already clocked in today")
			}
			id, err = s.id.New()
			if err != nil {
				return err
			}
			in := at
			rec := Record{
				ID:             id,
				EmployeeID:     req.EmployeeID,
				Date:           date,
				ClockIn:        &in,
				InTerminal:     employees.Sanitize(req.Terminal),
				PunchCount:     1,
				Status:         p.Status(in, nil, s.loc),
				ApprovalStatus: ApprovalPending,
				SourceType:     SourceManual,
				Notes:          employees.Sanitize(req.Notes),
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := repo.Upsert(ctx, &rec); err != nil {
				return err
			}
		case ActionClockOut:
			if existing == nil {
				return apperr.NotFound("no clock-in record for this employee on " + date)
			}
			if existing.IsConfirmed {
				return apperr.Conflict("attendance record is confirmed and cannot be changed")
			}
			if existing.ClockIn == nil || !at.After(*existing.ClockIn) {
				return apperr.Invalid("clock_out must be after clock_in")
			}
			old := *existing
			prev = &old
			out := at
			h := Hours(*existing.ClockIn, out)
			existing.ClockOut, existing.TotalHours = &out, &h
			existing.OutTerminal = employees.Sanitize(req.Terminal)
			existing.PunchCount++
			existing.Status = p.Status(*existing.ClockIn, existing.ClockOut, s.loc)
			if n := employees.Sanitize(req.Notes); n != "" {
				existing.Notes = n
			}
			existing.UpdatedAt = now
			id = existing.ID
			if err := repo.Update(ctx, existing); err != nil {
				return err
			}
		}
		saved, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}

	log.Printf("[INFO] attendance %s by=%s employee=%s date=%s", req.Action, actor, req.EmployeeID, date)
	if prev == nil {
		s.audit.Record(ctx, actor, audit.ActionCreate, table, saved.ID, nil, saved)
		s.publish(realtime.OpInsert, saved, nil)
	} else {
		s.audit.Record(ctx, actor, audit.ActionUpdate, table, saved.ID, prev, saved)
		s.publish(realtime.OpUpdate, saved, prev)
	}
	return saved, nil
}

// Update は手動修正。時刻が変わり status の指定がなければ status を再判定する
func (s *Service) Update(ctx context.Context, actor, id string, req UpdateRequest) (*Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	prev := *rec

	if req.ClockIn != nil {
		t := req.ClockIn.UTC()
		rec.ClockIn = &t
	}
	if req.ClockOut != nil {
		t := req.ClockOut.UTC()
		rec.ClockOut = &t
	}
	if req.Notes != nil {
		rec.Notes = employees.Sanitize(*req.Notes)
	}
	if req.Status != nil {
		if _, ok := statuses[*req.Status]; !ok {
			return nil, apperr.Invalid("status must be one of present, absent, late, on_leave, half_day")
		}
		rec.Status = *req.Status
	}
	if rec.ClockOut != nil && rec.ClockIn == nil {
		return nil, apperr.Invalid("clock_out requires clock_in")
	}
	rec.TotalHours = nil
	if rec.ClockIn != nil && rec.ClockOut != nil {
		if !rec.ClockOut.After(*rec.ClockIn) {
			return nil, apperr.Invalid("clock_out must be after clock_in")
		}
		h := Hours(*rec.ClockIn, *rec.ClockOut)
		rec.TotalHours = &h
	}
	if req.Status == nil && (req.ClockIn != nil || req.ClockOut != nil) && rec.ClockIn != nil &&
		rec.Status != StatusOnLeave && rec.Status != StatusAbsent {
		rules, err := s.activeRules(ctx)
		if err != nil {
			return nil, err
		}
		rec.Status = PolicyFor(s.basePolicy(), rules, rec.Date).Status(*rec.ClockIn, rec.ClockOut, s.loc)
	}
	rec.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, apperr.Classify(err)
	}
	log.Printf("[INFO] attendance updated by=%s id=%s", actor, id)
	s.audit.Record(ctx, actor, audit.ActionUpdate, table, id, prev, rec)
	s.publish(realtime.OpUpdate, rec, &prev)
	return rec, nil
}

// Confirm: 確定済みは再処理で上書きされない
func (s *Service) Confirm(ctx context.Context, actor, id string) (*Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	prev := *rec
	rec.IsConfirmed = true
	rec.ApprovalStatus = ApprovalApproved
	rec.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, table, id, prev, rec)
	s.publish(realtime.OpUpdate, rec, &prev)
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, actor, id string) error {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return apperr.Classify(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Classify(err)
	}
	log.Printf("[INFO] attendance deleted by=%s id=%s", actor, id)
	s.audit.Record(ctx, actor, audit.ActionDelete, table, id, rec, nil)
	s.publish(realtime.OpDelete, nil, rec)
	return nil
}

// ===== processing =====

// window: 既定は date_to（今日）から遡って WindowDays 日。返す時刻は [from, to) の UTC
func (s *Service) window(opts ProcessOptions) (string, string, time.Time, time.Time, error) {
	var (
		to  time.Time
		err error
	)
	if opts.DateTo != "" {
		if to, err = s.parseDate("date_to", opts.DateTo); err != nil {
			return "", "", time.Time{}, time.Time{}, err
		}
	} else {
		to, _ = time.ParseInLocation(DateLayout, s.today(), s.loc)
	}
	from := to.AddDate(0, 0, -s.defaults.WindowDays)
	if opts.DateFrom != "" {
		if from, err = s.parseDate("date_from", opts.DateFrom); err != nil {
			return "", "", time.Time{}, time.Time{}, err
		}
	}
	if to.Before(from) {
		return "", "", time.Time{}, time.Time{}, apperr.Invalid("date_to must be on or after date_from")
	}
	return from.Format(DateLayout), to.Format(DateLayout), from.UTC(), to.AddDate(0, 0, 1).UTC(), nil
}

// Process は未処理の生打刻を日次勤怠に集約する。
// 自動確定できる一致（社員番号・正規化・マッピング、または確認済み）のみ反映し、
// 該当なしは unmatched として残す。確定済みの記録は上書きしない。
func (s *Service) Process(ctx context.Context, actor string, opts ProcessOptions) (*ProcessResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, apperr.Busy("attendance processing is already running")
	}
	defer s.running.Store(false)

	fromDate, toDate, fromT, toT, err := s.window(opts)
	if err != nil {
		return nil, err
	}
	mark := opts.MarkProcessed == nil || *opts.MarkProcessed

	idx, err := s.index.Index(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := s.activeRules(ctx)
	if err != nil {
		return nil, err
	}
	base := s.basePolicy()

	res := &ProcessResult{DateFrom: fromDate, DateTo: toDate}
	var anomalies []Anomaly
	var touched []Record

	err = s.tx.InTx(ctx, func(ctx context.Context, repo Repository, raw RawEvents) error {
		res.Upserted, res.SkippedConfirmed, res.RawMarkedProcessed = 0, 0, 0
		res.SkippedUnmatched, res.SkippedRejected, res.AutoApproved = 0, 0, 0
		res.RulesApplied = RulesApplied{}
		anomalies, touched = nil, nil

		evs, err := raw.ListUnprocessed(ctx, fromT, toT)
		if err != nil {
			return err
		}

		var (
			punches   []Punch
			unmatched []string
		)
		for _, ev := range evs {
			switch {
			case ev.MatchStatus == rawattendance.MatchRejected:
				res.SkippedRejected++
				continue
			case ev.MatchStatus == rawattendance.MatchMatched && ev.EmployeeUUID != "":
				punches = append(punches, Punch{RawID: ev.ID, EmployeeID: ev.EmployeeUUID, At: ev.ClockingTime, Terminal: ev.Terminal})
				continue
			}
			m := identity.Resolve(identity.Event{UserID: ev.UserID, EmployeeID: ev.EmployeeID, Name: ev.Name}, idx)
			if !m.Automatic() {
				res.SkippedUnmatched++
				if !m.Matched() && ev.MatchStatus != rawattendance.MatchUnmatched {
					unmatched = append(unmatched, ev.ID)
				}
				continue
			}
			punches = append(punches, Punch{RawID: ev.ID, EmployeeID: m.Employee.ID, At: ev.ClockingTime, Terminal: ev.Terminal})
		}

		now := s.clock.Now()
		var consumed []string
		applied := map[string]struct{}{}
		for _, d := range GroupDays(punches, s.loc) {
			rawIDs := make([]string, 0, len(d.Punches))
			for _, p := range d.Punches {
				rawIDs = append(rawIDs, p.RawID)
			}
			existing, err := repo.FindByDay(ctx, d.EmployeeID, d.Date)
			if err != nil {
				return err
			}
			if existing != nil && existing.IsConfirmed {
				res.SkippedConfirmed++
				consumed = append(consumed, rawIDs...)
				continue
			}

			p := PolicyFor(base, rules, d.Date)
			rec := Merge(existing, d, p, s.loc)
			if existing == nil {
				if rec.ID, err = s.id.New(); err != nil {
					return err
				}
				rec.CreatedAt = now
			}
			rec.UpdatedAt = now
			if err := repo.Upsert(ctx, &rec); err != nil {
				return err
			}
			saved, err := repo.Get(ctx, rec.ID)
			if err != nil {
				return err
			}
			res.Upserted++
			switch saved.Status {
			case StatusLate:
				res.RulesApplied.Late++
			case StatusHalfDay:
				res.RulesApplied.HalfDay++
			}
			for _, n := range p.Rules {
				applied[n] = struct{}{}
			}
			touched = append(touched, *saved)
			consumed = append(consumed, rawIDs...)
		}

		if mark {
			n, err := raw.MarkProcessed(ctx, consumed, rawattendance.MatchMatched, now)
			if err != nil {
				return err
			}
			res.RawMarkedProcessed = n
			for _, id := range unmatched {
				if err := raw.SetMatch(ctx, id, rawattendance.MatchUnmatched, "", now); err != nil {
					return err
				}
			}
		}

		var clean []string
		for _, r := range touched {
			found := Detect(r, PolicyFor(base, rules, r.Date), s.loc)
			anomalies = append(anomalies, found...)
			if len(found) == 0 && r.ApprovalStatus == ApprovalPending {
				clean = append(clean, r.ID)
			}
		}
		res.AnomaliesDetected = len(anomalies)
		if opts.AutoApprove {
			n, err := repo.SetApproval(ctx, clean, ApprovalApproved, now)
			if err != nil {
				return err
			}
			res.AutoApproved = n
		}

		res.RulesApplied.Rules = make([]string, 0, len(applied))
		for n := range applied {
			res.RulesApplied.Rules = append(res.RulesApplied.Rules, n)
		}
		sort.Strings(res.RulesApplied.Rules)
		return nil
	})
	if err != nil {
		log.Printf("[WARN] attendance processing failed by=%s: %v", actor, err)
		return nil, apperr.Classify(err)
	}
	res.Success = true

	log.Printf("[INFO] attendance processed by=%s range=%s..%s upserted=%d marked=%d unmatched=%d anomalies=%d",
		actor, fromDate, toDate, res.Upserted, res.RawMarkedProcessed, res.SkippedUnmatched, res.AnomaliesDetected)
	s.audit.Record(ctx, actor, audit.ActionProcess, table, "", nil, res)
	if res.Upserted > 0 {
		s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpUpdate, UpdatedAt: s.clock.Now()})
	}
	s.sendDigest(ctx, fromDate+".."+toDate, anomalies)
	return res, nil
}

func (s *Service) sendDigest(ctx context.Context, label string, anomalies []Anomaly) {
	if s.notifier == nil || len(anomalies) == 0 {
		return
	}
	items := make([]notify.Item, 0, len(anomalies))
	for _, a := range anomalies {
		items = append(items, notify.Item{
			EmployeeID: a.EmployeeID, EmployeeName: a.EmployeeName, Date: a.Date, Type: a.AnomalyType, Severity: a.Severity,
		})
	}
	if err := s.notifier.SendAnomalyDigest(ctx, label, items); err != nil {
		log.Printf("[WARN] anomaly digest: %v", err)
	}
}

// DetectAnomalies は期間内の記録を判定基準に照らして異常を返す
func (s *Service) DetectAnomalies(ctx context.Context, from, to string) ([]Anomaly, error) {
	from, to, err := s.dateRange(from, to)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.Range(ctx, from, to)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	rules, err := s.activeRules(ctx)
	if err != nil {
		return nil, err
	}
	base := s.basePolicy()
	out := make([]Anomaly, 0)
	for _, r := range recs {
		out = append(out, Detect(r, PolicyFor(base, rules, r.Date), s.loc)...)
	}
	return out, nil
}

// SendDigest は指定日の異常を通知する。返り値は異常件数
func (s *Service) SendDigest(ctx context.Context, date string) (int, error) {
	anomalies, err := s.DetectAnomalies(ctx, date, date)
	if err != nil {
		return 0, err
	}
	if len(anomalies) > 0 {
		s.sendDigest(ctx, anomalies[0].Date, anomalies)
	}
	return len(anomalies), nil
}

func (s *Service) DailyStats(ctx context.Context, date string) (*DailyStats, error) {
	date, _, err := s.dateRange(date, date)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.Range(ctx, date, date)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	total, err := s.repo.CountActiveEmployees(ctx)
	if err != nil {
		return nil, apperr.Classify(err)
	}

	st := &DailyStats{Date: date, TotalEmployees: total}
	var (
		withHours      int
		absentRecorded int64
	)
	for _, r := range recs {
		switch r.Status {
		case StatusPresent:
			st.PresentCount++
		case StatusLate:
			st.PresentCount++
			st.LateCount++
		case StatusHalfDay:
			st.PresentCount++
			st.HalfDayCount++
		case StatusOnLeave:
			st.OnLeaveCount++
		case StatusAbsent:
			absentRecorded++
		}
		if r.TotalHours != nil {
			st.TotalWorkHours += *r.TotalHours
			withHours++
		}
	}
	st.AbsentCount = max(total-int64(st.PresentCount)-int64(st.OnLeaveCount), absentRecorded, 0)
	st.TotalWorkHours = round2(st.TotalWorkHours)
	if withHours > 0 {
		st.AverageWorkHours = round2(st.TotalWorkHours / float64(withHours))
	}
	if total > 0 {
		st.AttendanceRate = round2(float64(st.PresentCount) / float64(total) * 100)
	}
	return st, nil
}

// AutoApprove: 指定日の未確定・未承認の記録のうち、退勤があり異常のない出勤を承認する
func (s *Service) AutoApprove(ctx context.Context, actor, date string) (int64, error) {
	date, _, err := s.dateRange(date, date)
	if err != nil {
		return 0, err
	}
	recs, err := s.repo.Range(ctx, date, date)
	if err != nil {
		return 0, apperr.Classify(err)
	}
	rules, err := s.activeRules(ctx)
	if err != nil {
		return 0, err
	}
	p := PolicyFor(s.basePolicy(), rules, date)
	var approve []string
	for _, r := range recs {
		if r.IsConfirmed || r.ApprovalStatus != ApprovalPending || r.Status != StatusPresent || r.ClockOut == nil {
			continue
		}
		if len(Detect(r, p, s.loc)) == 0 {
			approve = append(approve, r.ID)
		}
	}
	n, err := s.repo.SetApproval(ctx, approve, ApprovalApproved, s.clock.Now())
	if err != nil {
		return 0, apperr.Classify(err)
	}
	log.Printf("[INFO] attendance auto-approved by=%s date=%s count=%d", actor, date, n)
	if n > 0 {
		s.audit.Record(ctx, actor, audit.ActionUpdate, table, "", nil, map[string]any{"date": date, "auto_approved_count": n})
		s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpUpdate, UpdatedAt: s.clock.Now()})
	}
	return n, nil
}

// ===== business rules =====

func (s *Service) ListRules(ctx context.Context, activeOnly bool) ([]Rule, error) {
	rules, err := s.repo.ListRules(ctx, activeOnly)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return rules, nil
}

func (s *Service) applyRule(r *Rule, req RuleRequest) error {
	var errs []employees.FieldError
	add := func(field, msg string) { errs = append(errs, employees.FieldError{Field: field, Message: msg}) }

	r.RuleType = strings.TrimSpace(req.RuleType)
	if _, ok := ruleTypes[r.RuleType]; !ok {
		add("rule_type", "rule_type must be one of work_schedule, half_day, max_hours")
	}
	if r.Name = employees.Sanitize(req.Name); r.Name == "" {
		add("name", "name is required")
	}
	from, err := time.Parse(DateLayout, strings.TrimSpace(req.EffectiveFrom))
	if err != nil {
		add("effective_from", apperr.MsgInvalidDate)
	}
	r.EffectiveFrom = from.Format(DateLayout)
	r.EffectiveTo = nil
	if req.EffectiveTo != nil && strings.TrimSpace(*req.EffectiveTo) != "" {
		to, err := time.Parse(DateLayout, strings.TrimSpace(*req.EffectiveTo))
		switch {
		case err != nil:
			add("effective_to", apperr.MsgInvalidDate)
		case to.Before(from):
			add("effective_to", "effective_to must be on or after effective_from")
		default:
			v := to.Format(DateLayout)
			r.EffectiveTo = &v
		}
	}
	if req.IsActive != nil {
		r.IsActive = *req.IsActive
	}

	r.Parameters = json.RawMessage(`{}`)
	var prm ruleParams
	if len(req.Parameters) > 0 && string(req.Parameters) != "null" {
		if err := json.Unmarshal(req.Parameters, &prm); err != nil {
			add("parameters", "parameters must be a JSON object")
		} else {
			r.Parameters = req.Parameters
		}
	}
	switch r.RuleType {
	case RuleWorkSchedule:
		if prm.WorkStart != "" {
			if _, err := parseClock(prm.WorkStart); err != nil {
				add("parameters.work_start", err.Error())
			}
		}
		if prm.GraceMinutes != nil && *prm.GraceMinutes < 0 {
			add("parameters.grace_minutes", "grace_minutes must not be negative")
		}
	case RuleHalfDay, RuleMaxHours:
		if prm.Hours == nil || *prm.Hours <= 0 || *prm.Hours > 24 {
			add("parameters.hours", "hours must be between 0 and 24")
		}
	}
	if len(errs) > 0 {
		return apperr.InvalidWith("invalid business rule", errs)
	}
	return nil
}

func (s *Service) CreateRule(ctx context.Context, actor string, req RuleRequest) (*Rule, error) {
	id, err := s.id.New()
	if err != nil {
		return nil, apperr.Internal(err.Error())
	}
	now := s.clock.Now()
	r := &Rule{ID: id, IsActive: true, CreatedBy: actor, CreatedAt: now, UpdatedAt: now}
	if err := s.applyRule(r, req); err != nil {
		return nil, err
	}
	if err := s.repo.InsertRule(ctx, r); err != nil {
		return nil, apperr.Classify(err)
	}
	log.Printf("[INFO] business rule created by=%s id=%s type=%s", actor, id, r.RuleType)
	s.audit.Record(ctx, actor, audit.ActionCreate, rulesTable, id, nil, r)
	s.pub.Publish(realtime.Event{Table: rulesTable, Op: realtime.OpInsert, RecordID: id, Row: r, UpdatedAt: now})
	return r, nil
}

func (s *Service) UpdateRule(ctx context.Context, actor, id string, req RuleRequest) (*Rule, error) {
	r, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	prev := *r
	if err := s.applyRule(r, req); err != nil {
		return nil, err
	}
	r.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateRule(ctx, r); err != nil {
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, rulesTable, id, prev, r)
	s.pub.Publish(realtime.Event{Table: rulesTable, Op: realtime.OpUpdate, RecordID: id, Row: r, Old: prev, UpdatedAt: r.UpdatedAt})
	return r, nil
}

func (s *Service) DeleteRule(ctx context.Context, actor, id string) error {
	if err := s.repo.DeleteRule(ctx, id); err != nil {
		return apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, rulesTable, id, nil, nil)
	s.pub.Publish(realtime.Event{Table: rulesTable, Op: realtime.OpDelete, RecordID: id, UpdatedAt: s.clock.Now()})
	return nil
}
