package employees

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"hrms-backend/internal/audit"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/ids"
	"hrms-backend/internal/platform/realtime"
)

const table = "employees"

type Service struct {
	repo  Repository
	clock ids.Clock
	id    ids.IDGen
	audit audit.Recorder
	pub   realtime.Publisher
}

func NewService(repo Repository, clock ids.Clock, id ids.IDGen, rec audit.Recorder, pub realtime.Publisher) *Service {
	return &Service{repo: repo, clock: clock, id: id, audit: rec, pub: pub}
}

func (s *Service) ListBasic(ctx context.Context) ([]Basic, error) {
	return s.repo.ListBasic(ctx)
}

func (s *Service) ListPaginated(ctx context.Context, q ListQuery) ([]Employee, int64, error) {
	if q.Limit <= 0 || q.Limit > 500 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Search = strings.TrimSpace(q.Search)
	return s.repo.ListPage(ctx, q)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Employee, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return e, nil
}

func (s *Service) Create(ctx context.Context, actor string, in Employee) (*Employee, error) {
	if in.Status == "" {
		in.Status = StatusActive
	}
	if errs := Validate(&in, true); len(errs) > 0 {
		return nil, apperr.InvalidWith("validation failed", errs)
	}

	existing, err := s.repo.GetByEmployeeID(ctx, in.EmployeeID)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	if existing != nil {
		return nil, apperr.Conflict(apperr.MsgDuplicateID)
	}
	return s.insert(ctx, actor, in)
}

func (s *Service) insert(ctx context.Context, actor string, e Employee) (*Employee, error) {
	id, err := s.id.New()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	e.ID = id
	e.IsDeletable = true
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.repo.Insert(ctx, &e); err != nil {
		return nil, apperr.Classify(err)
	}
	log.Printf("[INFO] employee created id=%s employee_id=%s by=%s", e.ID, e.EmployeeID, actor)
	s.audit.Record(ctx, actor, audit.ActionCreate, table, e.ID, nil, e.Values())
	s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpInsert, RecordID: e.ID, Row: e, UpdatedAt: e.UpdatedAt})
	return &e, nil
}

// UpdateSecure は許可列だけを更新する。employee_id は変更不可、空の日付は NULL にする。
// 更新前のスナップショットを併せて返す。
func (s *Service) UpdateSecure(ctx context.Context, actor, id string, updates map[string]any) (*UpdateResult, error) {
	if len(updates) == 0 {
		return nil, apperr.Invalid("no fields to update")
	}

	prev, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err)
	}

	set := map[string]any{}
	var errs []FieldError
	for k, raw := range updates {
		if k == "employee_id" {
			if str, _ := raw.(string); !strings.EqualFold(strings.TrimSpace(str), prev.EmployeeID) {
				return nil, apperr.Invalid("employee_id cannot be changed")
			}
			continue
		}
		f, ok := LookupField(k)
		if !ok {
			errs = append(errs, FieldError{Field: k, Message: "field cannot be updated"})
			continue
		}
		var str string
		switch v := raw.(type) {
		case nil:
		case string:
			str = v
		default:
			errs = append(errs, FieldError{Field: k, Message: "value must be a string or null"})
			continue
		}
		norm, err := NormalizeValue(f, str)
		if err != nil {
			errs = append(errs, FieldError{Field: k, Message: err.Error()})
			continue
		}
		if f.Name == "english_name" && norm == "" {
			errs = append(errs, FieldError{Field: k, Message: "English name is required"})
			continue
		}
		set[f.Name] = nullIfEmpty(norm)
	}
	if len(errs) > 0 {
		return nil, apperr.InvalidWith("validation failed", errs)
	}
	if len(set) == 0 {
		return &UpdateResult{Employee: prev, Previous: prev}, nil
	}

	now := s.clock.Now()
	if err := s.repo.UpdateFields(ctx, id, set, now); err != nil {
		return nil, apperr.Classify(err)
	}
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err)
	}

	s.audit.Record(ctx, actor, audit.ActionUpdate, table, id, prev.Values(), cur.Values())
	s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpUpdate, RecordID: id, Row: cur, Old: prev, UpdatedAt: cur.UpdatedAt})
	return &UpdateResult{Employee: cur, Previous: prev}, nil
}

// SafeDelete は保護対象や勤怠記録のある社員を削除しない（その場合 success=false）
func (s *Service) SafeDelete(ctx context.Context, actor, id string) (*DeleteResult, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	if !e.IsDeletable {
		return &DeleteResult{Success: false, Message: "Employee is protected and cannot be deleted"}, nil
	}
	n, err := s.repo.CountAttendance(ctx, e.EmployeeID)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	if n > 0 {
		return &DeleteResult{
			Success: false,
			Message: fmt.Sprintf("Employee has %d attendance records. Set status to inactive instead.", n),
		}, nil
	}

	now := s.clock.Now()
	if err := s.repo.SoftDelete(ctx, id, now); err != nil {
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, table, id, e.Values(), nil)
	s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpDelete, RecordID: id, Old: e, UpdatedAt: now})
	return &DeleteResult{Success: true, Message: "Employee deleted successfully"}, nil
}

// Upsert は employee_id（大文字小文字無視）で既存を探し、あれば空でない列だけ更新する
func (s *Service) Upsert(ctx context.Context, actor string, in Employee) (*UpsertResult, error) {
	in.EmployeeID = Sanitize(in.EmployeeID)
	if err := ValidateEmployeeID(in.EmployeeID); err != nil {
		return nil, apperr.Invalid(err.Error())
	}

	existing, err := s.repo.GetByEmployeeID(ctx, in.EmployeeID)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	if existing == nil {
		if in.Status == "" {
			in.Status = StatusActive
		}
		if errs := Validate(&in, true); len(errs) > 0 {
			return nil, apperr.InvalidWith(firstMessage(errs), errs)
		}
		e, err := s.insert(ctx, actor, in)
		if err != nil {
			return nil, err
		}
		return &UpsertResult{Operation: OperationCreated, Employee: e}, nil
	}

	updates := map[string]any{}
	for _, f := range Fields {
		if v := *in.Ptr(f.Name); strings.TrimSpace(v) != "" {
			updates[f.Name] = v
		}
	}
	if len(updates) == 0 {
		return &UpsertResult{Operation: OperationUpdated, Employee: existing}, nil
	}
	res, err := s.UpdateSecure(ctx, actor, existing.ID, updates)
	if err != nil {
		return nil, err
	}
	return &UpsertResult{Operation: OperationUpdated, Employee: res.Employee}, nil
}

func firstMessage(errs []FieldError) string {
	if len(errs) == 0 {
		return "validation failed"
	}
	return errs[0].Field + ": " + errs[0].Message
}

// BulkUpload は行ごとに Upsert する。失敗した行は errors に積み、残りの行は続行する
func (s *Service) BulkUpload(ctx context.Context, actor string, rows []Employee) UploadResult {
	res := UploadResult{Success: true, Errors: []RowError{}}
	for i, row := range rows {
		rowNo := i + 1
		if strings.TrimSpace(row.EmployeeID) == "" {
			res.Errors = append(res.Errors, RowError{Row: rowNo, EmployeeID: "N/A", Error: "Employee ID is required"})
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, RowError{Row: rowNo, EmployeeID: row.EmployeeID, Error: err.Error()})
			continue
		}

		out, err := s.Upsert(ctx, actor, row)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: rowNo, EmployeeID: row.EmployeeID, Error: messageOf(err)})
			continue
		}
		switch out.Operation {
		case OperationCreated:
			res.Created++
		case OperationUpdated:
			res.Updated++
		}
	}
	res.Success = len(res.Errors) == 0
	log.Printf("[INFO] bulk upload by=%s rows=%d created=%d updated=%d errors=%d",
		actor, len(rows), res.Created, res.Updated, len(res.Errors))
	return res
}

func messageOf(err error) string {
	var api *apperr.APIError
	if errors.As(err, &api) {
		return api.Message
	}
	return err.Error()
}

// LookupNames: 生打刻の表示名用。検索自体の失敗はエラーとして返し、
// 該当なしは registered=false で返す（端末の名前で埋めない）
func (s *Service) LookupNames(ctx context.Context, employeeIDs []string) (map[string]NameLookup, error) {
	uniq := make([]string, 0, len(employeeIDs))
	seen := map[string]struct{}{}
	for _, id := range employeeIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}

	found, err := s.repo.FindByEmployeeIDs(ctx, uniq)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	byID := make(map[string]Basic, len(found))
	for _, b := range found {
		byID[strings.ToUpper(b.EmployeeID)] = b
	}

	out := make(map[string]NameLookup, len(uniq))
	for _, id := range uniq {
		if b, ok := byID[strings.ToUpper(id)]; ok {
			out[id] = NameLookup{EmployeeID: b.EmployeeID, EnglishName: b.EnglishName, Registered: true}
		} else {
			out[id] = NameLookup{EmployeeID: id, Registered: false}
		}
	}
	return out, nil
}
