package staging

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"hrms-backend/internal/audit"
	"hrms-backend/internal/employees"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/ids"
	"hrms-backend/internal/platform/realtime"
)

const table = "employees_staging"

type Service struct {
	repo    Repository
	emps    EmployeeWriter
	tx      Transactor
	raw     RawSource
	clock   ids.Clock
	id      ids.IDGen
	audit   audit.Recorder
	pub     realtime.Publisher
	running atomic.Bool
}

type Deps struct {
	Repo      Repository
	Employees EmployeeWriter
	Tx        Transactor
	Raw       RawSource
	Clock     ids.Clock
	IDs       ids.IDGen
	Audit     audit.Recorder
	Publisher realtime.Publisher
}

func NewService(d Deps) *Service {
	return &Service{
		repo:  d.Repo,
		emps:  d.Employees,
		tx:    d.Tx,
		raw:   d.Raw,
		clock: d.Clock,
		id:    d.IDs,
		audit: d.Audit,
		pub:   d.Publisher,
	}
}

// BulkCreate は取込行を無検証のまま staging に積む（値のスクリプト片だけ除去）
func (s *Service) BulkCreate(ctx context.Context, actor string, rows []map[string]string) (int, error) {
	if len(rows) == 0 {
		return 0, apperr.Invalid("no rows to import")
	}
	now := s.clock.Now()
	recs := make([]Record, 0, len(rows))
	for _, row := range rows {
		id, err := s.id.New()
		if err != nil {
			return 0, err
		}
		rec := Record{ID: id, Fields: map[string]string{}, CreatedAt: now, UpdatedAt: now}
		for k, v := range row {
			v = employees.Sanitize(v)
			if k == "employee_id" {
				rec.EmployeeID = v
				continue
			}
			if _, ok := employees.LookupField(k); ok && v != "" {
				rec.Fields[k] = v
			}
		}
		recs = append(recs, rec)
	}
	n, err := s.repo.BulkCreate(ctx, recs)
	if err != nil {
		return 0, apperr.Classify(err)
	}
	log.Printf("[INFO] staging import by=%s rows=%d", actor, n)
	s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpInsert, UpdatedAt: now})
	return n, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	if q.Limit <= 0 || q.Limit > 1000 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return s.repo.List(ctx, q)
}

func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, actor, id string, patch map[string]string) (*Record, error) {
	fields := map[string]string{}
	for k, v := range patch {
		if k != "employee_id" {
			if _, ok := employees.LookupField(k); !ok {
				return nil, apperr.Invalid("unknown field: " + k)
			}
		}
		fields[k] = employees.Sanitize(v)
	}
	if len(fields) == 0 {
		return nil, apperr.Invalid("no fields to update")
	}
	prev, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	now := s.clock.Now()
	if err := s.repo.Update(ctx, id, fields, now); err != nil {
		return nil, apperr.Classify(err)
	}
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionUpdate, table, id, prev, cur)
	s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpUpdate, RecordID: id, Row: cur, UpdatedAt: now})
	return cur, nil
}

func (s *Service) Delete(ctx context.Context, actor, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Classify(err)
	}
	s.audit.Record(ctx, actor, audit.ActionDelete, table, id, nil, nil)
	s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpDelete, RecordID: id, UpdatedAt: s.clock.Now()})
	return nil
}

// Preview は本番側の同一 employee_id（大文字小文字無視）と突き合わせた昇格案を返す
func (s *Service) Preview(ctx context.Context, id string) (*Plan, *employees.Employee, error) {
	st, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, apperr.Classify(err)
	}
	var prod *employees.Employee
	if strings.TrimSpace(st.EmployeeID) != "" {
		prod, err = s.emps.GetByEmployeeID(ctx, st.EmployeeID)
		if err != nil {
			return nil, nil, apperr.Classify(err)
		}
	}
	plan := Reconcile(*st, prod)
	return &plan, prod, nil
}

// Promote は staging 行を本番へ登録し、同一トランザクションで staging 行を消す。
// 本番に同じ employee_id があれば staging 行は残したまま CONFLICT を返す。
func (s *Service) Promote(ctx context.Context, actor, id string, overrides map[string]string) (*PromoteResult, error) {
	var out PromoteResult
	var created employees.Employee

	err := s.tx.InTx(ctx, func(ctx context.Context, r Repos) error {
		st, err := r.Staging.Get(ctx, id)
		if err != nil {
			return err
		}
		merged, unknown := applyOverrides(*st, overrides)
		if len(unknown) > 0 {
			return apperr.Invalid("unknown override fields: " + strings.Join(unknown, ", "))
		}

		existing, err := r.Employees.GetByEmployeeID(ctx, merged.EmployeeID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict(fmt.Sprintf(
				"Employee %s already exists in production. The staging record was kept for manual reconciliation.", existing.EmployeeID))
		}

		plan := Reconcile(merged, nil)
		if plan.Blocked {
			return apperr.InvalidWith("staging record has unresolved validation issues", plan.Warnings)
		}

		e, err := s.build(plan)
		if err != nil {
			return err
		}
		if err := r.Employees.Insert(ctx, &e); err != nil {
			return err
		}
		if err := r.Staging.Delete(ctx, id); err != nil {
			return err
		}
		created = e
		out = PromoteResult{EmployeeRowID: e.ID, EmployeeID: e.EmployeeID, Warnings: plan.Warnings}
		return nil
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}

	log.Printf("[INFO] staging promoted staging_id=%s employee_id=%s by=%s", id, out.EmployeeID, actor)
	s.audit.Record(ctx, actor, audit.ActionPromote, "employees", created.ID, map[string]string{"staging_id": id}, created.Values())
	s.pub.Publish(realtime.Event{Table: "employees", Op: realtime.OpInsert, RecordID: created.ID, Row: created, UpdatedAt: created.UpdatedAt})
	s.pub.Publish(realtime.Event{Table: table, Op: realtime.OpDelete, RecordID: id, UpdatedAt: created.UpdatedAt})
	return &out, nil
}

func (s *Service) build(plan Plan) (employees.Employee, error) {
	e := plan.Employee
	id, err := s.id.New()
	if err != nil {
		return e, err
	}
	now := s.clock.Now()
	e.ID = id
	e.IsDeletable = true
	e.CreatedAt = now
	e.UpdatedAt = now
	return e, nil
}
