package sequences

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-backend/internal/audit"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/ids"
)

func TestFormatAndPattern(t *testing.T) {
	seq := Sequence{Prefix: "EMP", Separator: "-", Padding: 4, Suffix: ""}
	assert.Equal(t, "EMP-0007", seq.Format(7))
	assert.Equal(t, "EMP-12345", seq.Format(12345))
	assert.Equal(t, `^EMP-(\d{4,})$`, seq.Pattern())

	bare := Sequence{Padding: 0, Suffix: ".X"}
	assert.Equal(t, "42.X", bare.Format(42))
	assert.Equal(t, `^(\d+)\.X$`, bare.Pattern())
	assert.Equal(t, DefaultTarget, bare.Target())
}

func TestValidate(t *testing.T) {
	seq := Sequence{Key: "employee", Prefix: "E", Padding: 3, NextNumber: 12}
	v := Validate(seq, []string{"E001", "E010", " E010 ", "E11", "X-9", "E005", "E005", "E005"})

	assert.Equal(t, 8, v.Total)
	assert.Equal(t, 2, v.InvalidCount)
	assert.Equal(t, []string{"E11", "X-9"}, v.InvalidSamples)
	assert.Equal(t, 2, v.DuplicateCount)
	assert.Equal(t, []Duplicate{{Value: "E005", Count: 3}, {Value: "E010", Count: 2}}, v.DuplicateSamples)
	assert.EqualValues(t, 10, v.MaxValue)
	assert.True(t, v.NextValueOK)
	assert.False(t, v.Success)

	stale := Validate(Sequence{Prefix: "E", Padding: 3, NextNumber: 5}, []string{"E001", "E009"})
	assert.False(t, stale.NextValueOK)
	assert.False(t, stale.Success)

	clean := Validate(Sequence{Prefix: "E", Padding: 3, NextNumber: 10}, []string{"E001", "E009"})
	assert.True(t, clean.Success)
}

type memRepo struct {
	mu     sync.Mutex
	seqs   map[string]*Sequence
	values map[string][]string
}

func (m *memRepo) List(context.Context) ([]Sequence, error) {
	out := []Sequence{}
	for _, s := range m.seqs {
		out = append(out, *s)
	}
	return out, nil
}

func (m *memRepo) GetByKey(_ context.Context, key string) (*Sequence, error) {
	s, ok := m.seqs[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *s
	return &c, nil
}

func (m *memRepo) LockByKey(ctx context.Context, key string) (*Sequence, error) {
	return m.GetByKey(ctx, key)
}

func (m *memRepo) Insert(_ context.Context, s *Sequence) error {
	c := *s
	m.seqs[s.Key] = &c
	return nil
}

func (m *memRepo) Update(_ context.Context, s *Sequence) error {
	c := *s
	m.seqs[s.Key] = &c
	return nil
}

func (m *memRepo) SetNext(_ context.Context, id string, next int64, at time.Time) error {
	for _, s := range m.seqs {
		if s.ID == id {
			s.NextNumber, s.UpdatedAt = next, at
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memRepo) Values(_ context.Context, target string) ([]string, error) {
	return m.values[target], nil
}

// memTx は FOR UPDATE の代わりに mutex で直列化する
type memTx struct{ repo *memRepo }

func (t memTx) InTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	return fn(ctx, t.repo)
}

func newTestService() (*Service, *memRepo) {
	repo := &memRepo{seqs: map[string]*Sequence{}, values: map[string][]string{}}
	clock := ids.FixedClock{T: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	return NewService(repo, memTx{repo: repo}, clock, ids.NewULIDGen(), audit.Nop{}), repo
}

func intp(v int) *int     { return &v }
func i64p(v int64) *int64 { return &v }
func boolp(v bool) *bool  { return &v }

func TestSaveAndNext(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	seq, err := svc.Save(ctx, "admin", SaveRequest{Key: " Employee ", Prefix: "emp", Separator: "-", Padding: intp(4), NextNumber: i64p(41)})
	require.NoError(t, err)
	assert.Equal(t, "employee", seq.Key)
	assert.Equal(t, "EMP", seq.Prefix)

	id, err := svc.Next(ctx, "admin", "EMPLOYEE")
	require.NoError(t, err)
	assert.Equal(t, "EMP-0041", id)
	id, err = svc.Next(ctx, "admin", "employee")
	require.NoError(t, err)
	assert.Equal(t, "EMP-0042", id)

	got, err := svc.Get(ctx, "employee")
	require.NoError(t, err)
	assert.EqualValues(t, 43, got.NextNumber)

	// 更新では既存の ID を保つ
	upd, err := svc.Save(ctx, "admin", SaveRequest{Key: "employee", Prefix: "E", Padding: intp(5), IsActive: boolp(false)})
	require.NoError(t, err)
	assert.Equal(t, seq.ID, upd.ID)
	assert.EqualValues(t, 43, upd.NextNumber)

	_, err = svc.Next(ctx, "admin", "employee")
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	_, err = svc.Next(ctx, "admin", "missing")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestSaveValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	cases := []SaveRequest{
		{Key: "  "},
		{Key: "a", Padding: intp(13)},
		{Key: "a", NextNumber: i64p(0)},
		{Key: "a", TargetTable: "users", TargetColumn: "password"},
	}
	for i, req := range cases {
		_, err := svc.Save(ctx, "admin", req)
		assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument), "case %d", i)
	}
}

func TestNextIsSerialised(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Save(ctx, "admin", SaveRequest{Key: "emp", Prefix: "E", Padding: intp(3)})
	require.NoError(t, err)

	const n = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		got = map[string]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := svc.Next(ctx, "admin", "emp")
			if err != nil {
				return
			}
			mu.Lock()
			got[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, got, n)
	for i := 1; i <= n; i++ {
		assert.True(t, got[fmt.Sprintf("E%03d", i)])
	}
}

func TestServiceValidate(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	_, err := svc.Save(ctx, "admin", SaveRequest{Key: "emp", Prefix: "E", Padding: intp(3), NextNumber: i64p(3)})
	require.NoError(t, err)
	repo.values[DefaultTarget] = []string{"E001", "E002", "bad"}

	v, err := svc.Validate(ctx, "emp")
	require.NoError(t, err)
	assert.Equal(t, 1, v.InvalidCount)
	assert.EqualValues(t, 2, v.MaxValue)
	assert.True(t, v.NextValueOK)

	_, err = svc.Validate(ctx, "nope")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}
