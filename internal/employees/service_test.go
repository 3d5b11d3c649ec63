package employees_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-backend/internal/audit"
	"hrms-backend/internal/employees"
	"hrms-backend/internal/employees/employeestest"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/ids"
	"hrms-backend/internal/platform/realtime"
)

var now = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func newService(repo employees.Repository) (*employees.Service, *realtime.Hub) {
	hub := realtime.NewHub(16)
	return employees.NewService(repo, ids.FixedClock{T: now}, ids.NewULIDGen(), audit.Nop{}, hub), hub
}

func TestCreateRejectsDuplicateCaseInsensitive(t *testing.T) {
	repo := employeestest.New(employees.Employee{ID: "1", EmployeeID: "EMP001", EnglishName: "Ali", IsDeletable: true})
	svc, _ := newService(repo)

	_, err := svc.Create(context.Background(), "hr", employees.Employee{EmployeeID: "emp001", EnglishName: "Dup"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.Equal(t, http409Message, err.(*apperr.APIError).Message)
}

const http409Message = "Employee ID already exists. Please use a unique ID."

func TestCreatePublishesInsert(t *testing.T) {
	repo := employeestest.New()
	svc, hub := newService(repo)
	sub := hub.Subscribe("employees")
	defer sub.Close()

	e, err := svc.Create(context.Background(), "hr", employees.Employee{EmployeeID: "EMP9", EnglishName: "Sara"})
	require.NoError(t, err)
	assert.Equal(t, employees.StatusActive, e.Status)
	assert.True(t, e.IsDeletable)

	ev := <-sub.C()
	assert.Equal(t, realtime.OpInsert, ev.Op)
	assert.Equal(t, e.ID, ev.RecordID)
}

func TestUpdateSecure(t *testing.T) {
	repo := employeestest.New(employees.Employee{ID: "1", EmployeeID: "EMP001", EnglishName: "Ali", BirthDate: "1990-01-01", IsDeletable: true})
	svc, _ := newService(repo)
	ctx := context.Background()

	_, err := svc.UpdateSecure(ctx, "hr", "1", map[string]any{"employee_id": "EMP002"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	_, err = svc.UpdateSecure(ctx, "hr", "1", map[string]any{"salary": "1"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	_, err = svc.UpdateSecure(ctx, "hr", "1", map[string]any{"birth_date": "31-31-2020"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	res, err := svc.UpdateSecure(ctx, "hr", "1", map[string]any{
		"employee_id": "emp001",
		"birth_date":  "",
		"position":    "Engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, "1990-01-01", res.Previous.BirthDate)
	assert.Equal(t, "", res.Employee.BirthDate)
	assert.Equal(t, "Engineer", res.Employee.Position)
	assert.Equal(t, "EMP001", res.Employee.EmployeeID)

	_, err = svc.UpdateSecure(ctx, "hr", "missing", map[string]any{"position": "x"})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestSafeDelete(t *testing.T) {
	repo := employeestest.New(
		employees.Employee{ID: "1", EmployeeID: "A1", EnglishName: "A", IsDeletable: false},
		employees.Employee{ID: "2", EmployeeID: "A2", EnglishName: "B", IsDeletable: true},
		employees.Employee{ID: "3", EmployeeID: "A3", EnglishName: "C", IsDeletable: true},
	)
	repo.Attendance["A2"] = 4
	svc, _ := newService(repo)
	ctx := context.Background()

	res, err := svc.SafeDelete(ctx, "hr", "1")
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = svc.SafeDelete(ctx, "hr", "2")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "4 attendance records")

	res, err = svc.SafeDelete(ctx, "hr", "3")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, repo.All(), 2)
}

func TestUpsert(t *testing.T) {
	repo := employeestest.New(employees.Employee{ID: "1", EmployeeID: "EMP001", EnglishName: "Ali", Position: "Clerk", IsDeletable: true})
	svc, _ := newService(repo)
	ctx := context.Background()

	out, err := svc.Upsert(ctx, "hr", employees.Employee{EmployeeID: "emp001", Position: "Manager"})
	require.NoError(t, err)
	assert.Equal(t, employees.OperationUpdated, out.Operation)
	assert.Equal(t, "Manager", out.Employee.Position)
	assert.Equal(t, "Ali", out.Employee.EnglishName)

	out, err = svc.Upsert(ctx, "hr", employees.Employee{EmployeeID: "EMP002", EnglishName: "Sara"})
	require.NoError(t, err)
	assert.Equal(t, employees.OperationCreated, out.Operation)
	assert.Len(t, repo.All(), 2)
}

func TestBulkUploadBlankIDs(t *testing.T) {
	repo := employeestest.New()
	svc, _ := newService(repo)

	rows := []employees.Employee{
		{EmployeeID: "E1", EnglishName: "One"},
		{EmployeeID: "", EnglishName: "Two"},
		{EmployeeID: "E3", EnglishName: "Three"},
		{EmployeeID: "  ", EnglishName: "Four"},
		{EmployeeID: "E5", EnglishName: "Five"},
	}
	res := svc.BulkUpload(context.Background(), "hr", rows)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Equal(t, 4, res.Errors[1].Row)
	assert.Equal(t, "Employee ID is required", res.Errors[0].Error)
	assert.LessOrEqual(t, res.Created+res.Updated, 3)
	assert.Equal(t, 3, res.Created)
	assert.False(t, res.Success)
}

func TestBulkUploadRowFailureDoesNotAbort(t *testing.T) {
	repo := employeestest.New()
	repo.FailInsert = func(e *employees.Employee) error {
		if e.EmployeeID == "E2" {
			return fmt.Errorf("new row violates row-level security policy")
		}
		return nil
	}
	svc, _ := newService(repo)

	res := svc.BulkUpload(context.Background(), "hr", []employees.Employee{
		{EmployeeID: "E1", EnglishName: "One"},
		{EmployeeID: "E2", EnglishName: "Two"},
		{EmployeeID: "E1", EnglishName: "One again"},
	})
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "E2", res.Errors[0].EmployeeID)
	assert.Equal(t, apperr.MsgPermissionDenied, res.Errors[0].Error)
}

func TestLookupNames(t *testing.T) {
	repo := employeestest.New(employees.Employee{ID: "1", EmployeeID: "EMP001", EnglishName: "Ali"})
	svc, _ := newService(repo)

	out, err := svc.LookupNames(context.Background(), []string{"EMP001", "GHOST", "EMP001", ""})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out["EMP001"].Registered)
	assert.Equal(t, "Ali", out["EMP001"].EnglishName)
	assert.False(t, out["GHOST"].Registered)
	assert.Empty(t, out["GHOST"].EnglishName)

	repo.FailLookup = fmt.Errorf("permission denied for table employees")
	_, err = svc.LookupNames(context.Background(), []string{"EMP001"})
	assert.True(t, apperr.Is(err, apperr.CodePermissionDenied))
}

func TestListPaginatedClamps(t *testing.T) {
	repo := employeestest.New(
		employees.Employee{ID: "1", EmployeeID: "A1", EnglishName: "A"},
		employees.Employee{ID: "2", EmployeeID: "A2", EnglishName: "B", Status: employees.StatusInactive},
	)
	svc, _ := newService(repo)
	items, total, err := svc.ListPaginated(context.Background(), employees.ListQuery{Limit: -1, StatusFilter: "inactive"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "A2", items[0].EmployeeID)

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, employees.Stats{Total: 2, Active: 1, Inactive: 1}, *st)
}

func TestFromValues(t *testing.T) {
	e := employees.FromValues(map[string]string{
		"employee_id":  " EMP010 ",
		"english_name": "Sara",
		"unknown":      "ignored",
	})
	assert.Equal(t, "EMP010", e.EmployeeID)
	assert.Equal(t, "Sara", e.EnglishName)
	assert.Empty(t, e.Department)
}
