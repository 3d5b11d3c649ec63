package rawattendance

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hrms-backend/internal/identity"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/auth"
)

type Guard func(permission string) gin.HandlerFunc

type Handler struct {
	svc *Service
	loc *time.Location
}

func RegisterRoutes(r gin.IRoutes, svc *Service, guard Guard) {
	h := &Handler{svc: svc, loc: svc.loc}

	r.GET("/raw-attendance", guard("attendance.read"), h.List)
	r.POST("/raw-attendance", guard("attendance.create"), h.Upload)
	r.POST("/raw-attendance/import", guard("attendance.create"), h.Import)
	r.DELETE("/raw-attendance", guard("attendance.delete"), h.ClearAll)
	r.POST("/raw-attendance/employee-ids", guard("attendance.update"), h.BulkUpdateEmployeeIDs)
	r.POST("/raw-attendance/smart-match", guard("attendance.update"), h.SmartMatch)
	r.PATCH("/raw-attendance/:id/match", guard("attendance.update"), h.Review)
	r.POST("/raw-attendance/auto-register", guard("employees.create"), h.AutoRegister)
	r.GET("/raw-attendance/dashboard", guard("attendance.read"), h.Dashboard)

	r.GET("/user-id-mappings", guard("attendance.read"), h.ListMappings)
	r.POST("/user-id-mappings", guard("attendance.update"), h.AddMapping)
	r.DELETE("/user-id-mappings/:id", guard("attendance.update"), h.DeleteMapping)

	r.GET("/terminals", guard("attendance.read"), h.ListTerminals)
	r.POST("/terminals", guard("settings.update"), h.CreateTerminal)
	r.PATCH("/terminals/:id", guard("settings.update"), h.UpdateTerminal)
	r.DELETE("/terminals/:id", guard("settings.update"), h.DeleteTerminal)
}

func actor(c *gin.Context) string {
	s, _ := auth.SessionFrom(c)
	return s.UserID
}

// timeParam: YYYY-MM-DD（現地の 0 時、endOfDay なら翌日 0 時直前）か RFC3339
func (h *Handler) timeParam(c *gin.Context, key string, endOfDay bool) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, h.loc)
	if err != nil {
		return nil, apperr.Invalid(key + " must be YYYY-MM-DD or RFC3339")
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

func (h *Handler) filter(c *gin.Context) (Filter, error) {
	f := Filter{
		UserID:      c.Query("user_id"),
		EmployeeID:  c.Query("employee_id"),
		MatchStatus: c.Query("match_status"),
	}
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if v := c.Query("processed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, apperr.Invalid("processed must be true or false")
		}
		f.Processed = &b
	}
	var err error
	if f.From, err = h.timeParam(c, "date_from", false); err != nil {
		return f, err
	}
	if f.To, err = h.timeParam(c, "date_to", true); err != nil {
		return f, err
	}
	return f, nil
}

func (h *Handler) List(c *gin.Context) {
	f, err := h.filter(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	items, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

type uploadRequest struct {
	Records []UploadEvent `json:"records" binding:"required,dive"`
}

func (h *Handler) Upload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	n, err := h.svc.Upload(c.Request.Context(), actor(c), req.Records)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"inserted": n})
}

// Import: multipart の file フィールド
func (h *Handler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		apperr.Write(c, apperr.Invalid("file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		apperr.Write(c, err)
		return
	}
	defer f.Close()

	res, err := h.svc.Import(c.Request.Context(), actor(c), fh.Filename, f)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ClearAll(c *gin.Context) {
	n, err := h.svc.ClearAll(c.Request.Context(), actor(c))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

type idUpdatesRequest struct {
	Updates []IDUpdate `json:"updates" binding:"required,dive"`
}

func (h *Handler) BulkUpdateEmployeeIDs(c *gin.Context) {
	var req idUpdatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	n, err := h.svc.BulkUpdateEmployeeIDs(c.Request.Context(), actor(c), req.Updates)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": n})
}

func (h *Handler) SmartMatch(c *gin.Context) {
	f, err := h.filter(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	rep, err := h.svc.SmartMatch(c.Request.Context(), actor(c), f)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

type reviewRequest struct {
	MatchStatus  string `json:"match_status" binding:"required"`
	EmployeeUUID string `json:"employee_uuid"`
}

func (h *Handler) Review(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	if err := h.svc.Review(c.Request.Context(), actor(c), c.Param("id"), req.MatchStatus, req.EmployeeUUID); err != nil {
		apperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type autoRegisterRequest struct {
	Records []identity.MatchResult `json:"records" binding:"required"`
}

func (h *Handler) AutoRegister(c *gin.Context) {
	var req autoRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	c.JSON(http.StatusOK, h.svc.AutoRegister(c.Request.Context(), actor(c), req.Records))
}

func (h *Handler) Dashboard(c *gin.Context) {
	from, err := h.timeParam(c, "from", false)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	to, err := h.timeParam(c, "to", true)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	d, err := h.svc.Dashboard(c.Request.Context(), from, to)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) ListMappings(c *gin.Context) {
	ms, err := h.svc.ListMappings(c.Request.Context())
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ms})
}

type mappingRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	EmployeeID string `json:"employee_id" binding:"required"`
}

func (h *Handler) AddMapping(c *gin.Context) {
	var req mappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	m, err := h.svc.AddMapping(c.Request.Context(), actor(c), req.UserID, req.EmployeeID)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) DeleteMapping(c *gin.Context) {
	if err := h.svc.DeleteMapping(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		apperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListTerminals(c *gin.Context) {
	ts, err := h.svc.ListTerminals(c.Request.Context())
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ts})
}

type terminalRequest struct {
	TerminalUID      string `json:"terminal_uid" binding:"required"`
	TerminalName     string `json:"terminal_name" binding:"required"`
	Location         string `json:"location"`
	ConnectionMethod string `json:"connection_method"`
	SiteAdminName    string `json:"site_admin_name"`
	IsActive         *bool  `json:"is_active"`
}

func (h *Handler) CreateTerminal(c *gin.Context) {
	var req terminalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	in := Terminal{
		TerminalUID:      req.TerminalUID,
		TerminalName:     req.TerminalName,
		Location:         req.Location,
		ConnectionMethod: req.ConnectionMethod,
		SiteAdminName:    req.SiteAdminName,
		IsActive:         req.IsActive == nil || *req.IsActive,
	}
	t, err := h.svc.CreateTerminal(c.Request.Context(), actor(c), in)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTerminal(c *gin.Context) {
	var req TerminalPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	t, err := h.svc.UpdateTerminal(c.Request.Context(), actor(c), c.Param("id"), req)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTerminal(c *gin.Context) {
	if err := h.svc.DeleteTerminal(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		apperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
