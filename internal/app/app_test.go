package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-backend/internal/attendance"
	"hrms-backend/internal/audit"
	"hrms-backend/internal/employees"
	"hrms-backend/internal/masterdata"
	"hrms-backend/internal/platform/auth"
	"hrms-backend/internal/platform/ids"
	"hrms-backend/internal/platform/realtime"
	"hrms-backend/internal/rawattendance"
	"hrms-backend/internal/rbac"
	"hrms-backend/internal/recruitment"
	"hrms-backend/internal/sequences"
	"hrms-backend/internal/staging"
)

var secret = []byte("test-secret")

// ルーティングだけを確かめるため、ストアを持たないサービスで組む
func routerOnly(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	clock := ids.FixedClock{T: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	a := &App{
		Hub:         realtime.NewHub(4),
		Matrix:      rbac.NewMatrix(nil),
		Auth:        auth.NewService(nil, secret, time.Hour),
		Audit:       audit.NewService(nil, clock, ids.NewULIDGen()),
		Employees:   employees.NewService(nil, clock, ids.NewULIDGen(), audit.Nop{}, realtime.Nop{}),
		Staging:     staging.NewService(staging.Deps{}),
		Raw:         rawattendance.NewService(rawattendance.Deps{}),
		Attendance:  attendance.NewService(attendance.Deps{}),
		Recruitment: recruitment.NewService(recruitment.Deps{}),
		MasterData:  masterdata.NewService(masterdata.Deps{}),
		Sequences:   sequences.NewService(nil, nil, clock, ids.NewULIDGen(), audit.Nop{}),
	}
	r := gin.New()
	require.NotPanics(t, func() { a.RegisterRoutes(r.Group("/api/v1")) })
	return r
}

func TestRoutesRegistered(t *testing.T) {
	r := routerOnly(t)
	have := map[string]bool{}
	for _, rt := range r.Routes() {
		have[rt.Method+" "+rt.Path] = true
	}
	for _, want := range []string{
		"POST /api/v1/login",
		"GET /api/v1/me",
		"GET /api/v1/employees",
		"POST /api/v1/employees/bulk-file",
		"POST /api/v1/staging/promote-from-raw",
		"POST /api/v1/raw-attendance/import",
		"POST /api/v1/attendance/process",
		"POST /api/v1/recruitment/requests/:id/submit",
		"GET /api/v1/departments",
		"POST /api/v1/positions-import",
		"POST /api/v1/id-sequences/:key/next",
		"GET /api/v1/audit-logs",
		"GET /api/v1/realtime/:table",
	} {
		assert.True(t, have[want], want)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := routerOnly(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginIsPublic(t *testing.T) {
	r := routerOnly(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuardDeniesWithoutGrant(t *testing.T) {
	r := routerOnly(t)
	tok, err := auth.IssueToken(secret, "u1", "employee", time.Now().Add(time.Hour))
	require.NoError(t, err)

	for _, path := range []string{
		"/api/v1/id-sequences",
		"/api/v1/employees",
		"/api/v1/recruitment/requests",
		"/api/v1/realtime/employees",
		"/api/v1/realtime/employees_staging",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
}
