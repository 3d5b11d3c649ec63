package recruitment

import (
	"context"
	"database/sql"
	"sort"
	"time"
)

type memRepo struct {
	reqs        map[string]Request
	activities  []Activity
	candidates  map[string]Candidate
	assessments []Assessment
	hiring      []HiringRequest
	failHiring  error
}

func newMemRepo() *memRepo {
	return &memRepo{reqs: map[string]Request{}, candidates: map[string]Candidate{}}
}

func (m *memRepo) List(_ context.Context, q ListQuery) ([]Request, int64, error) {
	var out []Request
	for _, r := range m.reqs {
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		if q.Department != "" && r.Department != q.Department {
			continue
		}
		if q.RequestedBy != "" && r.RequestedBy != q.RequestedBy {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	if q.Offset < len(out) {
		out = out[q.Offset:min(len(out), q.Offset+q.Limit)]
	} else {
		out = nil
	}
	return out, total, nil
}

func (m *memRepo) Get(_ context.Context, id string) (*Request, error) {
	r, ok := m.reqs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (m *memRepo) GetForUpdate(ctx context.Context, id string) (*Request, error) {
	return m.Get(ctx, id)
}

func (m *memRepo) Insert(_ context.Context, r *Request) error {
	m.reqs[r.ID] = *r
	return nil
}

func (m *memRepo) Update(_ context.Context, r *Request) error {
	m.reqs[r.ID] = *r
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.reqs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.reqs, id)
	return nil
}

func (m *memRepo) InsertActivity(_ context.Context, a *Activity) error {
	m.activities = append(m.activities, *a)
	return nil
}

func (m *memRepo) ListActivities(_ context.Context, requestID string) ([]Activity, error) {
	out := make([]Activity, 0)
	for _, a := range m.activities {
		if a.RequestID == requestID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memRepo) InsertCandidate(_ context.Context, c *Candidate) error {
	m.candidates[c.ID] = *c
	return nil
}

func (m *memRepo) GetCandidate(_ context.Context, id string) (*Candidate, error) {
	c, ok := m.candidates[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (m *memRepo) ListCandidates(_ context.Context, requestID string) ([]Candidate, error) {
	out := make([]Candidate, 0)
	for _, c := range m.candidates {
		if c.RequestID == requestID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) SetCandidateStatus(_ context.Context, id, status string, at time.Time) error {
	c, ok := m.candidates[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.Status, c.UpdatedAt = status, at
	m.candidates[id] = c
	return nil
}

func (m *memRepo) InsertAssessment(_ context.Context, a *Assessment) error {
	m.assessments = append(m.assessments, *a)
	return nil
}

func (m *memRepo) ListAssessments(_ context.Context, requestID string) ([]Assessment, error) {
	out := make([]Assessment, 0)
	for _, a := range m.assessments {
		if a.RequestID == requestID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memRepo) InsertHiring(_ context.Context, h *HiringRequest) error {
	if m.failHiring != nil {
		return m.failHiring
	}
	m.hiring = append(m.hiring, *h)
	return nil
}

func (m *memRepo) ListHiring(_ context.Context, requestID string) ([]HiringRequest, error) {
	out := make([]HiringRequest, 0)
	for _, h := range m.hiring {
		if h.RequestID == requestID {
			out = append(out, h)
		}
	}
	return out, nil
}

// memTx は失敗時に状態を巻き戻す
type memTx struct{ repo *memRepo }

func (t memTx) InTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	reqs := make(map[string]Request, len(t.repo.reqs))
	for k, v := range t.repo.reqs {
		reqs[k] = v
	}
	cands := make(map[string]Candidate, len(t.repo.candidates))
	for k, v := range t.repo.candidates {
		cands[k] = v
	}
	acts := append([]Activity(nil), t.repo.activities...)
	asmts := append([]Assessment(nil), t.repo.assessments...)
	hiring := append([]HiringRequest(nil), t.repo.hiring...)
	if err := fn(ctx, t.repo); err != nil {
		t.repo.reqs, t.repo.candidates = reqs, cands
		t.repo.activities, t.repo.assessments, t.repo.hiring = acts, asmts, hiring
		return err
	}
	return nil
}
