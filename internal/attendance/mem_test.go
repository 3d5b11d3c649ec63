package attendance

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"hrms-backend/internal/rawattendance"
)

type memRepo struct {
	recs      map[string]Record
	rules     []Rule
	names     map[string][2]string // employees.id -> (employee_id, english_name)
	active    int64
	failWrite error
}

func newMemRepo() *memRepo {
	return &memRepo{recs: map[string]Record{}, names: map[string][2]string{}}
}

func (m *memRepo) join(r Record) Record {
	if n, ok := m.names[r.EmployeeID]; ok {
		r.EmployeeCode, r.EmployeeName = n[0], n[1]
	}
	return r
}

func (m *memRepo) sorted() []Record {
	out := make([]Record, 0, len(m.recs))
	for _, r := range m.recs {
		out = append(out, m.join(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].EmployeeCode < out[j].EmployeeCode
	})
	return out
}

func (m *memRepo) List(_ context.Context, q ListQuery) ([]Record, int64, error) {
	var out []Record
	for _, r := range m.sorted() {
		if q.EmployeeID != "" && r.EmployeeID != q.EmployeeID {
			continue
		}
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		if q.From != "" && r.Date < q.From {
			continue
		}
		if q.To != "" && r.Date > q.To {
			continue
		}
		out = append(out, r)
	}
	total := int64(len(out))
	if q.Offset < len(out) {
		out = out[q.Offset:min(len(out), q.Offset+q.Limit)]
	} else {
		out = nil
	}
	return out, total, nil
}

func (m *memRepo) Get(_ context.Context, id string) (*Record, error) {
	r, ok := m.recs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	r = m.join(r)
	return &r, nil
}

func (m *memRepo) FindByDay(_ context.Context, employeeID, date string) (*Record, error) {
	for _, r := range m.recs {
		if r.EmployeeID == employeeID && r.Date == date {
			r = m.join(r)
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memRepo) Upsert(ctx context.Context, r *Record) error {
	if m.failWrite != nil {
		return m.failWrite
	}
	if cur, _ := m.FindByDay(ctx, r.EmployeeID, r.Date); cur != nil {
		cur.ClockIn, cur.ClockOut = r.ClockIn, r.ClockOut
		cur.InTerminal, cur.OutTerminal = r.InTerminal, r.OutTerminal
		cur.PunchCount, cur.TotalHours, cur.Status = r.PunchCount, r.TotalHours, r.Status
		cur.RawIDs = r.RawIDs
		cur.UpdatedAt = r.UpdatedAt
		m.recs[cur.ID] = *cur
		r.ID = cur.ID
		return nil
	}
	m.recs[r.ID] = *r
	return nil
}

func (m *memRepo) Update(_ context.Context, r *Record) error {
	if m.failWrite != nil {
		return m.failWrite
	}
	if _, ok := m.recs[r.ID]; !ok {
		return sql.ErrNoRows
	}
	m.recs[r.ID] = *r
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.recs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.recs, id)
	return nil
}

func (m *memRepo) Range(_ context.Context, from, to string) ([]Record, error) {
	var out []Record
	for _, r := range m.sorted() {
		if r.Date >= from && r.Date <= to {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) SetApproval(_ context.Context, ids []string, status string, at time.Time) (int64, error) {
	var n int64
	for _, id := range ids {
		r, ok := m.recs[id]
		if !ok || r.IsConfirmed {
			continue
		}
		r.ApprovalStatus, r.UpdatedAt = status, at
		m.recs[id] = r
		n++
	}
	return n, nil
}

func (m *memRepo) CountActiveEmployees(context.Context) (int64, error) { return m.active, nil }

func (m *memRepo) ListRules(_ context.Context, activeOnly bool) ([]Rule, error) {
	out := make([]Rule, 0, len(m.rules))
	for _, r := range m.rules {
		if activeOnly && !r.IsActive {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memRepo) GetRule(_ context.Context, id string) (*Rule, error) {
	for _, r := range m.rules {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memRepo) InsertRule(_ context.Context, r *Rule) error {
	m.rules = append(m.rules, *r)
	return nil
}

func (m *memRepo) UpdateRule(_ context.Context, r *Rule) error {
	for i := range m.rules {
		if m.rules[i].ID == r.ID {
			m.rules[i] = *r
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memRepo) DeleteRule(_ context.Context, id string) error {
	for i := range m.rules {
		if m.rules[i].ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type memRaw struct {
	events   []rawattendance.Event
	failMark error
}

func (m *memRaw) ListUnprocessed(_ context.Context, from, to time.Time) ([]rawattendance.Event, error) {
	var out []rawattendance.Event
	for _, ev := range m.events {
		if !ev.Processed && !ev.ClockingTime.Before(from) && ev.ClockingTime.Before(to) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ClockingTime.Before(out[j].ClockingTime) })
	return out, nil
}

func (m *memRaw) MarkProcessed(_ context.Context, ids []string, status string, at time.Time) (int64, error) {
	if m.failMark != nil {
		return 0, m.failMark
	}
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for i := range m.events {
		if want[m.events[i].ID] {
			m.events[i].Processed = true
			if status != "" {
				m.events[i].MatchStatus = status
			}
			m.events[i].UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (m *memRaw) SetMatch(_ context.Context, id, status, employeeUUID string, at time.Time) error {
	for i := range m.events {
		if m.events[i].ID == id {
			m.events[i].MatchStatus, m.events[i].EmployeeUUID, m.events[i].UpdatedAt = status, employeeUUID, at
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memRaw) byID(id string) rawattendance.Event {
	for _, ev := range m.events {
		if ev.ID == id {
			return ev
		}
	}
	return rawattendance.Event{}
}

// memTx は失敗時に両方の状態を巻き戻す
type memTx struct {
	repo *memRepo
	raw  *memRaw
}

func (t memTx) InTx(ctx context.Context, fn func(ctx context.Context, r Repository, raw RawEvents) error) error {
	recs := make(map[string]Record, len(t.repo.recs))
	for k, v := range t.repo.recs {
		recs[k] = v
	}
	events := append([]rawattendance.Event(nil), t.raw.events...)
	if err := fn(ctx, t.repo, t.raw); err != nil {
		t.repo.recs = recs
		t.raw.events = events
		return err
	}
	return nil
}
