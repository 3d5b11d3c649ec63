package rawattendance

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"hrms-backend/internal/audit"
	"hrms-backend/internal/employees"
	"hrms-backend/internal/identity"
	"hrms-backend/internal/importer"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/ids"
	"hrms-backend/internal/platform/realtime"
)

const (
	table          = "raw_attendance_data"
	maxListLimit   = 500
	maxMatchBatch  = 5000
	recentActivity = 100
)

// Directory は本番社員側に必要な操作（*employees.Service が満たす）
type Directory interface {
	LookupNames(ctx context.Context, employeeIDs []string) (map[string]employees.NameLookup, error)
	Upsert(ctx context.Context, actor string, in employees.Employee) (*employees.UpsertResult, error)
}

// CandidateSource: 照合用の社員一覧と行 id での参照（employees.Store が満たす）
type CandidateSource interface {
	Candidates(ctx context.Context) ([]identity.Candidate, error)
	// Get: 削除済み・該当なしは sql.ErrNoRows
	Get(ctx context.Context, id string) (*employees.Employee, error)
}

type Deps struct {
	Repo       Repository
	Tx         Transactor
	Directory  Directory
	Candidates CandidateSource
	Clock      ids.Clock
	IDs        ids.IDGen
	Audit      audit.Recorder
	Publisher  realtime.Publisher
	// Location は端末時刻のタイムゾーン
	Location *time.Location
}

type Service struct {
	repo  Repository
	tx    Transactor
	dir   Directory
	cands CandidateSource
	clock ids.Clock
	id    ids.IDGen
	audit audit.Recorder
	pub   realtime.Publisher
	loc   *time.Location
}

func NewService(d Deps) *Service {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:  d.Repo,
		tx:    d.Tx,
		dir:   d.Directory,
		cands: d.Candidates,
		clock: d.Clock,
		id:    d.IDs,
		audit: d.Audit,
		pub:   d.Publisher,
		loc:   loc,
	}
}

func (s *Service) newEvents(in []importer.RawEvent) ([]Event, error) {
	now := s.clock.Now()
	out := make([]Event, 0, len(in))
	for _, r := range in {
		id, err := s.id.New()
		if err != nil {
			return nil, err
		}
		userID := strings.TrimSpace(r.UserID)
		empID := strings.TrimSpace(r.EmployeeID)
		if userID == "" {
			userID = empID
		}
		out = append(out, Event{
			ID:           id,
			UserID:       userID,
			EmployeeID:   empID,
			Name:         employees.Sanitize(r.Name),
			ClockingTime: r.ClockingTime.UTC(),
			Terminal:     employees.Sanitize(r.Terminal),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return out, nil
}

func (s *Service) store(ctx context.Context, actor string, in []importer.RawEvent) (int, error) {
	evs, err := s.newEvents(in)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.InsertEvents(ctx, evs)
	if err != nil {
		return n, apperr.Classify(err)
	}
	log.Printf("[INFO] raw attendance stored by=%s rows=%d", actor, n)
	s.audit.Record(ctx, actor, audit.ActionCreate, table, "", nil, map[string]any{"rows": n})
	s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpInsert, UpdatedAt: s.clock.Now()})
	return n, nil
}

// Upload は未処理として打刻を保存する
func (s *Service) Upload(ctx context.Context, actor string, in []UploadEvent) (int, error) {
	if len(in) == 0 {
		return 0, apperr.Invalid("no attendance records to upload")
	}
	raw := make([]importer.RawEvent, 0, len(in))
	for i, u := range in {
		if strings.TrimSpace(u.EmployeeID) == "" || strings.TrimSpace(u.Name) == "" || u.ClockingTime.IsZero() {
			return 0, apperr.Invalid("record " + strconv.Itoa(i+1) + ": employee_id, name and clocking_time are required")
		}
		raw = append(raw, importer.RawEvent{
			UserID: u.UserID, EmployeeID: u.EmployeeID, Name: u.Name, ClockingTime: u.ClockingTime, Terminal: u.Terminal,
		})
	}
	return s.store(ctx, actor, raw)
}

// Import は端末エクスポート（txt / csv / xls / xlsx）を読み込んで保存する
func (s *Service) Import(ctx context.Context, actor, filename string, r io.Reader) (*ImportResult, error) {
	evs, bad, err := importer.ReadRawEvents(r, filename, s.loc)
	if err != nil {
		return nil, apperr.Invalid("unable to parse the uploaded file: " + err.Error())
	}
	if bad == nil {
		bad = []importer.LineError{}
	}
	if len(evs) == 0 {
		return &ImportResult{Rejected: bad}, apperr.InvalidWith("no valid attendance records found in the file", bad)
	}
	n, err := s.store(ctx, actor, evs)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Inserted: n, Rejected: bad}, nil
}

// List は打刻に本番社員名を付けて返す。社員検索の失敗はそのままエラーにする
func (s *Service) List(ctx context.Context, f Filter) ([]Item, int64, error) {
	if f.Limit <= 0 || f.Limit > maxListLimit {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	evs, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, apperr.Classify(err)
	}
	empIDs := make([]string, 0, len(evs))
	for _, e := range evs {
		empIDs = append(empIDs, e.EmployeeID)
	}
	names, err := s.dir.LookupNames(ctx, empIDs)
	if err != nil {
		return nil, 0, err
	}
	items := make([]Item, 0, len(evs))
	for _, e := range evs {
		it := Item{Event: e}
		if n, ok := names[strings.TrimSpace(e.EmployeeID)]; ok && n.Registered {
			it.HRName = n.EnglishName
			it.Registered = true
		}
		items = append(items, it)
	}
	return items, total, nil
}

func (s *Service) ClearAll(ctx context.Context, actor string) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, apperr.Classify(err)
	}
	log.Printf("[WARN] raw attendance cleared by=%s rows=%d", actor, n)
	s.audit.Record(ctx, actor, audit.ActionDelete, table, "", map[string]any{"rows": n}, nil)
	s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpDelete, UpdatedAt: s.clock.Now()})
	return n, nil
}

// BulkUpdateEmployeeIDs は user_id ごとの付け替えを 1 トランザクションで行う（1 件でも失敗すれば全件戻す）
func (s *Service) BulkUpdateEmployeeIDs(ctx context.Context, actor string, updates []IDUpdate) (int64, error) {
	if len(updates) == 0 {
		return 0, apperr.Invalid("no updates given")
	}
	for _, u := range updates {
		if strings.TrimSpace(u.UserID) == "" {
			return 0, apperr.Invalid("user_id is required")
		}
		if err := employees.ValidateEmployeeID(u.NewEmployeeID); err != nil {
			return 0, apperr.Invalid(err.Error())
		}
	}
	now := s.clock.Now()
	var total int64
	err := s.tx.InTx(ctx, func(ctx context.Context, r Repository) error {
		total = 0
		for _, u := range updates {
			n, err := r.UpdateEmployeeIDByUser(ctx, strings.TrimSpace(u.UserID), strings.TrimSpace(u.NewEmployeeID), now)
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, table, "", nil, updates)
	s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpUpdate, UpdatedAt: now})
	return total, nil
}

// Index は現時点の社員とマッピングから照合表を作る
func (s *Service) Index(ctx context.Context) (*identity.Index, error) {
	cands, err := s.cands.Candidates(ctx)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	ms, err := s.repo.ListMappings(ctx)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	mappings := make([]identity.Mapping, 0, len(ms))
	for _, m := range ms {
		mappings = append(mappings, identity.Mapping{UserID: m.UserID, EmployeeID: m.EmployeeID})
	}
	return identity.NewIndex(cands, mappings), nil
}

// SmartMatch は対象の打刻を照合し、自動確定できる一致は matched、該当なしは unmatched として保存する。
// 氏名による一致は確認待ちとして match_status を変えない
func (s *Service) SmartMatch(ctx context.Context, actor string, f Filter) (*MatchReport, error) {
	f.Limit, f.Offset = maxMatchBatch, 0
	evs, _, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	report := &MatchReport{Results: make([]identity.MatchResult, 0, len(evs))}
	for _, e := range evs {
		res := identity.Resolve(identity.Event{UserID: e.UserID, EmployeeID: e.EmployeeID, Name: e.Name}, idx)
		report.Results = append(report.Results, res)

		status, uuid := "", ""
		switch {
		case res.Automatic():
			status, uuid = MatchMatched, res.Employee.ID
		case !res.Matched():
			status = MatchUnmatched
		default:
			continue
		}
		if e.MatchStatus == MatchRejected || (e.MatchStatus == status && e.EmployeeUUID == uuid) {
			continue
		}
		if err := s.repo.SetMatch(ctx, e.ID, status, uuid, now); err != nil {
			return nil, apperr.Classify(err)
		}
		report.Persisted++
	}
	report.Summary = identity.Summarize(report.Results)
	log.Printf("[INFO] smart match by=%s total=%d matched=%d unmatched=%d review=%d",
		actor, report.Summary.Total, report.Summary.Matched, report.Summary.Unmatched, report.Summary.NeedReview)
	if report.Persisted > 0 {
		s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpUpdate, UpdatedAt: now})
	}
	return report, nil
}

// Review は氏名一致などを人手で確定（matched）または却下（rejected）する
func (s *Service) Review(ctx context.Context, actor, id, status, employeeRowID string) error {
	switch status {
	case MatchMatched:
		employeeRowID = strings.TrimSpace(employeeRowID)
		if employeeRowID == "" {
			return apperr.Invalid("employee_uuid is required to confirm a match")
		}
		if _, err := s.cands.Get(ctx, employeeRowID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.NotFound("employee " + employeeRowID + " not found")
			}
			return apperr.Classify(err)
		}
	case MatchRejected, MatchUnmatched:
		employeeRowID = ""
	default:
		return apperr.Invalid("match_status must be one of matched, unmatched, rejected")
	}
	now := s.clock.Now()
	if err := s.repo.SetMatch(ctx, id, status, employeeRowID, now); err != nil {
		return apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, table, id, nil, map[string]string{"match_status": status, "employee_uuid": employeeRowID})
	s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpUpdate, RecordID: id, UpdatedAt: now})
	return nil
}

// AutoRegister は未一致の打刻から社員を登録（既存なら更新）する。1 件の失敗で止めない
func (s *Service) AutoRegister(ctx context.Context, actor string, unmatched []identity.MatchResult) AutoRegisterResult {
	res := AutoRegisterResult{Errors: []employees.RowError{}}
	seen := map[string]struct{}{}
	row := 0
	for _, m := range unmatched {
		empID := strings.TrimSpace(m.EmployeeID)
		key := strings.ToLower(empID)
		if _, dup := seen[key]; dup && empID != "" {
			continue
		}
		seen[key] = struct{}{}
		row++

		out, err := s.dir.Upsert(ctx, actor, employees.Employee{
			EmployeeID:  empID,
			EnglishName: strings.TrimSpace(m.Name),
			Status:      employees.StatusActive,
		})
		if err != nil {
			res.Failed++
			if empID == "" {
				empID = "N/A"
			}
			res.Errors = append(res.Errors, employees.RowError{Row: row, EmployeeID: empID, Error: messageOf(err)})
			continue
		}
		if out.Operation == employees.OperationCreated {
			res.Created++
		} else {
			res.Updated++
		}
	}
	log.Printf("[INFO] auto register by=%s created=%d updated=%d failed=%d", actor, res.Created, res.Updated, res.Failed)
	return res
}

func (s *Service) Dashboard(ctx context.Context, from, to *time.Time) (*Dashboard, error) {
	total, processed, err := s.repo.Counts(ctx, from, to)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	recent, err := s.repo.Recent(ctx, recentActivity)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	d := &Dashboard{Total: total, Processed: processed, Unprocessed: total - processed, Recent: recent}
	if total > 0 {
		d.ProcessingRate = float64(processed) / float64(total)
	}
	return d, nil
}

// ===== mappings =====

func (s *Service) ListMappings(ctx context.Context) ([]Mapping, error) {
	ms, err := s.repo.ListMappings(ctx)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return ms, nil
}

// AddMapping: user_id は一意。重複は CONFLICT
func (s *Service) AddMapping(ctx context.Context, actor, userID, employeeID string) (*Mapping, error) {
	userID = employees.Sanitize(userID)
	employeeID = employees.Sanitize(employeeID)
	if userID == "" {
		return nil, apperr.Invalid("user_id is required")
	}
	if err := employees.ValidateEmployeeID(employeeID); err != nil {
		return nil, apperr.Invalid(err.Error())
	}
	id, err := s.id.New()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	m := &Mapping{ID: id, UserID: userID, EmployeeID: employeeID, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.InsertMapping(ctx, m); err != nil {
		if apperr.IsDuplicateKey(err) {
			return nil, apperr.Conflict("a mapping for user ID " + userID + " already exists")
		}
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionCreate, "user_id_mapping", id, nil, m)
	s.pub.Publish(realtime.Event{Table: "user_id_mapping", Op: realtime.OpInsert, RecordID: id, Row: m, UpdatedAt: now})
	return m, nil
}

func (s *Service) DeleteMapping(ctx context.Context, actor, id string) error {
	if err := s.repo.DeleteMapping(ctx, id); err != nil {
		return apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, "user_id_mapping", id, nil, nil)
	s.pub.Publish(realtime.Event{Table: "user_id_mapping", Op: realtime.OpDelete, RecordID: id, UpdatedAt: s.clock.Now()})
	return nil
}

// ===== terminals =====

func (s *Service) ListTerminals(ctx context.Context) ([]Terminal, error) {
	ts, err := s.repo.ListTerminals(ctx)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return ts, nil
}

func (s *Service) CreateTerminal(ctx context.Context, actor string, in Terminal) (*Terminal, error) {
	in.TerminalUID = employees.Sanitize(in.TerminalUID)
	in.TerminalName = employees.Sanitize(in.TerminalName)
	if in.TerminalUID == "" || in.TerminalName == "" {
		return nil, apperr.Invalid("terminal_uid and terminal_name are required")
	}
	id, err := s.id.New()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	in.ID = id
	in.Location = employees.Sanitize(in.Location)
	in.ConnectionMethod = employees.Sanitize(in.ConnectionMethod)
	in.SiteAdminName = employees.Sanitize(in.SiteAdminName)
	in.CreatedAt, in.UpdatedAt = now, now
	if err := s.repo.InsertTerminal(ctx, &in); err != nil {
		if apperr.IsDuplicateKey(err) {
			return nil, apperr.Conflict("terminal " + in.TerminalUID + " already exists")
		}
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionCreate, "terminals", id, nil, in)
	s.pub.Publish(realtime.Event{Table: "terminals", Op: realtime.OpInsert, RecordID: id, Row: in, UpdatedAt: now})
	return &in, nil
}

func (s *Service) UpdateTerminal(ctx context.Context, actor, id string, p TerminalPatch) (*Terminal, error) {
	cur, err := s.repo.GetTerminal(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	prev := *cur
	if p.TerminalName != nil {
		name := employees.Sanitize(*p.TerminalName)
		if name == "" {
			return nil, apperr.Invalid("terminal_name must not be empty")
		}
		cur.TerminalName = name
	}
	if p.Location != nil {
		cur.Location = employees.Sanitize(*p.Location)
	}
	if p.ConnectionMethod != nil {
		cur.ConnectionMethod = employees.Sanitize(*p.ConnectionMethod)
	}
	if p.SiteAdminName != nil {
		cur.SiteAdminName = employees.Sanitize(*p.SiteAdminName)
	}
	if p.IsActive != nil {
		cur.IsActive = *p.IsActive
	}
	cur.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateTerminal(ctx, cur); err != nil {
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, "terminals", id, prev, cur)
	s.pub.Publish(realtime.Event{Table: "terminals", Op: realtime.OpUpdate, RecordID: id, Row: cur, Old: prev, UpdatedAt: cur.UpdatedAt})
	return cur, nil
}

func (s *Service) DeleteTerminal(ctx context.Context, actor, id string) error {
	if err := s.repo.DeleteTerminal(ctx, id); err != nil {
		return apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, "terminals", id, nil, nil)
	s.pub.Publish(realtime.Event{Table: "terminals", Op: realtime.OpDelete, RecordID: id, UpdatedAt: s.clock.Now()})
	return nil
}

func messageOf(err error) string {
	if api, ok := apperr.Classify(err).(*apperr.APIError); ok {
		return api.Message
	}
	return err.Error()
}
