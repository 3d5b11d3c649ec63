package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"EMP-0004122", "EMP4122"},
		{"EMP4122", "EMP4122"},
		{"emp_0004122", "EMP4122"},
		{" IG0004122 ", "IG4122"},
		{"000123", "123"},
		{"0000", "0"},
		{"A-1.2", "A12"},
		{"IG12A003", "IG12A003"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeID(tt.in), tt.in)
	}
}

func TestNormalizeIDPunctuationAndZerosEquivalent(t *testing.T) {
	pairs := [][2]string{
		{"EMP-0004122", "EMP4122"},
		{"ig.00042", "IG42"},
		{"00-77", "77"},
		{"HR/0010", "hr10"},
	}
	for _, p := range pairs {
		assert.Equal(t, NormalizeID(p[0]), NormalizeID(p[1]), "%q vs %q", p[0], p[1])
	}
}

func employees() []Candidate {
	return []Candidate{
		{ID: "e1", EmployeeID: "EMP4122", EnglishName: "Ali Hassan", ArabicName: "علي حسن"},
		{ID: "e2", EmployeeID: "EMP-0004122", EnglishName: "Other Person"},
		{ID: "e3", EmployeeID: "IG4122", EnglishName: "Sara Khalid"},
		{ID: "e4", EmployeeID: "X9", EnglishName: ""},
	}
}

func TestResolveExactPreferredOverNormalized(t *testing.T) {
	idx := NewIndex(employees(), nil)

	r := Resolve(Event{EmployeeID: "EMP-0004122", Name: "Ali Hassan"}, idx)
	require.True(t, r.Matched())
	assert.Equal(t, "e2", r.Employee.ID)
	assert.Equal(t, MethodExact, r.Method)
	assert.Equal(t, ConfidenceHigh, r.Confidence)
}

func TestResolveNormalized(t *testing.T) {
	idx := NewIndex(employees(), nil)
	r := Resolve(Event{EmployeeID: "ig-0004122"}, idx)
	require.True(t, r.Matched())
	assert.Equal(t, "e3", r.Employee.ID)
	assert.Equal(t, MethodNormalized, r.Method)
	assert.Equal(t, ConfidenceMedium, r.Confidence)
}

func TestResolveNormalizedFirstWins(t *testing.T) {
	// EMP4122 と EMP-0004122 は同じ正規化キー。先に現れた e1 を採用
	idx := NewIndex(employees(), nil)
	r := Resolve(Event{EmployeeID: "emp04122"}, idx)
	require.True(t, r.Matched())
	assert.Equal(t, "e1", r.Employee.ID)
}

func TestResolveMapping(t *testing.T) {
	idx := NewIndex(employees(), []Mapping{{UserID: "U1", EmployeeID: "IG4122"}})
	r := Resolve(Event{UserID: "U1", EmployeeID: "T-77", Name: "nobody"}, idx)
	require.True(t, r.Matched())
	assert.Equal(t, "e3", r.Employee.ID)
	assert.Equal(t, MethodMapping, r.Method)
	assert.True(t, r.Automatic())
}

func TestResolveMappingToUnknownEmployeeFallsThrough(t *testing.T) {
	idx := NewIndex(employees(), []Mapping{{UserID: "U1", EmployeeID: "NOPE1"}})
	r := Resolve(Event{UserID: "U1", Name: "sara"}, idx)
	assert.Equal(t, MethodFuzzy, r.Method)
}

func TestResolveFuzzy(t *testing.T) {
	idx := NewIndex(employees(), nil)

	r := Resolve(Event{EmployeeID: "Z1", Name: "ALI"}, idx)
	require.True(t, r.Matched())
	assert.Equal(t, "e1", r.Employee.ID)
	assert.Equal(t, MethodFuzzy, r.Method)
	assert.Equal(t, ConfidenceLow, r.Confidence)
	assert.False(t, r.Automatic())

	// 逆方向: 端末名のほうが長い
	r = Resolve(Event{Name: "Mrs Sara Khalid Omar"}, idx)
	require.True(t, r.Matched())
	assert.Equal(t, "e3", r.Employee.ID)

	r = Resolve(Event{Name: "حسن"}, idx)
	require.True(t, r.Matched())
	assert.Equal(t, "e1", r.Employee.ID)
}

func TestResolveNoMatch(t *testing.T) {
	idx := NewIndex(employees(), nil)
	for _, ev := range []Event{
		{EmployeeID: "Q1", Name: "Zed"},
		{EmployeeID: "", Name: ""},
		{EmployeeID: "", Name: "   "},
	} {
		r := Resolve(ev, idx)
		assert.False(t, r.Matched(), "%+v", ev)
		assert.Equal(t, ConfidenceNone, r.Confidence)
		assert.Equal(t, MethodNone, r.Method)
	}
	assert.Equal(t, MethodNone, Resolve(Event{EmployeeID: "X9"}, nil).Method)
}

func TestResolveAllAndSummarize(t *testing.T) {
	idx := NewIndex(employees(), []Mapping{{UserID: "U1", EmployeeID: "IG4122"}})
	res := ResolveAll([]Event{
		{EmployeeID: "EMP4122"},
		{EmployeeID: "ig04122"},
		{UserID: "U1"},
		{Name: "ali"},
		{Name: "ghost"},
	}, idx)
	require.Len(t, res, 5)

	s := Summarize(res)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 4, s.Matched)
	assert.Equal(t, 1, s.Unmatched)
	assert.Equal(t, 1, s.NeedReview)
	assert.Equal(t, 1, s.ByMethod[MethodMapping])
}
