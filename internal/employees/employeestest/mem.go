// Package employeestest はテスト用のメモリ実装
package employeestest

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"hrms-backend/internal/employees"
	"hrms-backend/internal/identity"
)

type Mem struct {
	mu         sync.Mutex
	rows       []*employees.Employee
	deleted    map[string]bool
	Attendance map[string]int64
	// FailInsert が非 nil なら Insert はこのエラーを返す
	FailInsert func(e *employees.Employee) error
	FailLookup error
}

func New(seed ...employees.Employee) *Mem {
	m := &Mem{deleted: map[string]bool{}, Attendance: map[string]int64{}}
	for i := range seed {
		e := seed[i]
		if e.Status == "" {
			e.Status = employees.StatusActive
		}
		m.rows = append(m.rows, &e)
	}
	return m
}

func (m *Mem) live() []*employees.Employee {
	out := []*employees.Employee{}
	for _, e := range m.rows {
		if !m.deleted[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

func basic(e *employees.Employee) employees.Basic {
	return employees.Basic{ID: e.ID, EmployeeID: e.EmployeeID, EnglishName: e.EnglishName, ArabicName: e.ArabicName,
		Position: e.Position, Department: e.Department, Status: e.Status}
}

// All: 論理削除されていない全件のコピー
func (m *Mem) All() []employees.Employee {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []employees.Employee{}
	for _, e := range m.live() {
		out = append(out, *e)
	}
	return out
}

func (m *Mem) ListBasic(context.Context) ([]employees.Basic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []employees.Basic{}
	for _, e := range m.live() {
		out = append(out, basic(e))
	}
	return out, nil
}

func (m *Mem) ListPage(_ context.Context, q employees.ListQuery) ([]employees.Employee, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var hits []employees.Employee
	for _, e := range m.live() {
		if q.StatusFilter != "" && q.StatusFilter != "all" && e.Status != q.StatusFilter {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(e.EmployeeID+" "+e.EnglishName), strings.ToLower(q.Search)) {
			continue
		}
		hits = append(hits, *e)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].EmployeeID < hits[j].EmployeeID })
	total := int64(len(hits))
	if q.Offset >= len(hits) {
		return []employees.Employee{}, total, nil
	}
	end := q.Offset + q.Limit
	if end > len(hits) {
		end = len(hits)
	}
	return hits[q.Offset:end], total, nil
}

func (m *Mem) Stats(context.Context) (*employees.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st employees.Stats
	for _, e := range m.live() {
		st.Total++
		switch e.Status {
		case employees.StatusActive:
			st.Active++
		case employees.StatusInactive:
			st.Inactive++
		case employees.StatusPending:
			st.Pending++
		}
	}
	return &st, nil
}

func (m *Mem) Get(_ context.Context, id string) (*employees.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.live() {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *Mem) GetByEmployeeID(_ context.Context, employeeID string) (*employees.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailLookup != nil {
		return nil, m.FailLookup
	}
	for _, e := range m.live() {
		if strings.EqualFold(e.EmployeeID, employeeID) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Mem) Insert(_ context.Context, e *employees.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailInsert != nil {
		if err := m.FailInsert(e); err != nil {
			return err
		}
	}
	for _, x := range m.live() {
		if strings.EqualFold(x.EmployeeID, e.EmployeeID) {
			return errors.New("Duplicate entry '" + e.EmployeeID + "' for key 'employees.uq_employee_id'")
		}
	}
	cp := *e
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *Mem) UpdateFields(_ context.Context, id string, set map[string]any, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.live() {
		if e.ID != id {
			continue
		}
		for k, v := range set {
			p := e.Ptr(k)
			if p == nil {
				continue
			}
			if s, ok := v.(string); ok {
				*p = s
			} else {
				*p = ""
			}
		}
		e.UpdatedAt = at
		return nil
	}
	return sql.ErrNoRows
}

func (m *Mem) SoftDelete(_ context.Context, id string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.live() {
		if e.ID == id {
			m.deleted[id] = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *Mem) CountAttendance(_ context.Context, employeeID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Attendance[employeeID], nil
}

func (m *Mem) FindByEmployeeIDs(_ context.Context, ids []string) ([]employees.Basic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailLookup != nil {
		return nil, m.FailLookup
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []employees.Basic{}
	for _, e := range m.live() {
		if want[e.EmployeeID] {
			out = append(out, basic(e))
		}
	}
	return out, nil
}

func (m *Mem) Candidates(context.Context) ([]identity.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []identity.Candidate{}
	for _, e := range m.live() {
		out = append(out, identity.Candidate{ID: e.ID, EmployeeID: e.EmployeeID, EnglishName: e.EnglishName, ArabicName: e.ArabicName})
	}
	return out, nil
}
