package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-backend/internal/employees"
)

func TestMapStatusTotal(t *testing.T) {
	tests := map[string]string{
		"left":        employees.StatusInactive,
		" LEFT ":      employees.StatusInactive,
		"yes":         employees.StatusActive,
		"Active":      employees.StatusActive,
		"rehired":     employees.StatusActive,
		"yet to join": employees.StatusPending,
		"Yet To Join": employees.StatusPending,
		"":            employees.StatusActive,
		"resigned":    employees.StatusActive,
		"???":         employees.StatusActive,
		"inactive":    employees.StatusActive,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapStatus(in), in)
	}
}

func TestParseDateBounds(t *testing.T) {
	for _, ok := range []string{"1900-01-01", "2100-12-31", "2020-02-29", "March 3, 2015"} {
		_, got := ParseDate(ok)
		assert.True(t, got, ok)
	}
	for _, bad := range []string{"", "null", "undefined", "1899-12-31", "2101-01-01", "yesterday"} {
		_, got := ParseDate(bad)
		assert.False(t, got, bad)
	}
}

func rec(id, empID string, fields map[string]string) Record {
	if fields == nil {
		fields = map[string]string{}
	}
	return Record{ID: id, EmployeeID: empID, Fields: fields}
}

func TestReconcilePrefersValidStaging(t *testing.T) {
	st := rec("s1", "EMP1", map[string]string{
		"english_name":    "Ali Hassan",
		"status":          "Left",
		"date_of_joining": "2019/03/01",
		"personal_email":  "ali@example.com",
		"gender":          "M",
	})
	prod := &employees.Employee{EmployeeID: "EMP1", EnglishName: "Old Name", Position: "Clerk", DateOfJoining: "2018-01-01"}

	plan := Reconcile(st, prod)
	assert.False(t, plan.Blocked)
	assert.Empty(t, plan.Warnings)
	assert.Equal(t, "Ali Hassan", plan.Employee.EnglishName)
	assert.Equal(t, employees.StatusInactive, plan.Employee.Status)
	assert.Equal(t, "2019-03-01", plan.Employee.DateOfJoining)
	assert.Equal(t, "male", plan.Employee.Gender)
	// staging が空の列は本番値で埋める
	assert.Equal(t, "Clerk", plan.Employee.Position)
	assert.Contains(t, plan.AutoFilled, "position")
}

func TestReconcileInvalidFallsBackToProduction(t *testing.T) {
	st := rec("s1", "EMP1", map[string]string{
		"english_name":   "Ali",
		"birth_date":     "not-a-date",
		"personal_email": "broken@",
	})
	prod := &employees.Employee{EmployeeID: "EMP1", BirthDate: "1990-01-01", PersonalEmail: "ali@example.com"}

	plan := Reconcile(st, prod)
	assert.False(t, plan.Blocked)
	assert.Equal(t, "1990-01-01", plan.Employee.BirthDate)
	assert.Equal(t, "ali@example.com", plan.Employee.PersonalEmail)
	require.Len(t, plan.Warnings, 2)
	for _, w := range plan.Warnings {
		assert.False(t, w.Blocking)
	}
}

func TestReconcileInvalidWithoutProductionBlocks(t *testing.T) {
	st := rec("s1", "EMP1", map[string]string{
		"english_name": "Ali",
		"birth_date":   "32/13/1990",
		"work_phone":   "abc",
	})
	plan := Reconcile(st, nil)
	assert.True(t, plan.Blocked)

	blocking := map[string]bool{}
	for _, w := range plan.Warnings {
		blocking[w.Field] = w.Blocking
	}
	assert.True(t, blocking["birth_date"])
	// 電話番号は捨てるだけで昇格は止めない
	assert.False(t, blocking["work_phone"])
	assert.Empty(t, plan.Employee.WorkPhone)
}

func TestReconcileRequiresNameAndID(t *testing.T) {
	plan := Reconcile(rec("s1", "", nil), nil)
	assert.True(t, plan.Blocked)
	fields := []string{}
	for _, w := range plan.Warnings {
		fields = append(fields, w.Field)
	}
	assert.ElementsMatch(t, []string{"employee_id", "english_name"}, fields)
	assert.Equal(t, employees.StatusActive, plan.Employee.Status)
}

func TestApplyOverrides(t *testing.T) {
	st := rec("s1", "EMP1", map[string]string{"birth_date": "bad"})
	out, unknown := applyOverrides(st, map[string]string{"birth_date": "1991-02-03", "salary": "9"})
	assert.Equal(t, []string{"salary"}, unknown)
	assert.Equal(t, "1991-02-03", out.Fields["birth_date"])
	assert.Equal(t, "bad", st.Fields["birth_date"])
}
