package attendance

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/auth"
)

type Guard func(permission string) gin.HandlerFunc

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, guard Guard) {
	h := &Handler{svc: svc}

	r.GET("/attendance", guard("attendance.read"), h.List)
	r.GET("/attendance/anomalies", guard("attendance.read"), h.Anomalies)
	r.GET("/attendance/stats", guard("attendance.read"), h.DailyStats)
	r.GET("/attendance/:id", guard("attendance.read"), h.Get)
	r.POST("/attendance/clock", guard("attendance.create"), h.Clock)
	r.PATCH("/attendance/:id", guard("attendance.update"), h.Update)
	r.DELETE("/attendance/:id", guard("attendance.delete"), h.Delete)
	r.POST("/attendance/:id/confirm", guard("attendance.approve"), h.Confirm)
	r.POST("/attendance/process", guard("attendance.process"), h.Process)
	r.POST("/attendance/auto-approve", guard("attendance.approve"), h.AutoApprove)
	r.POST("/attendance/digest", guard("attendance.process"), h.Digest)

	r.GET("/attendance-rules", guard("attendance.read"), h.ListRules)
	r.POST("/attendance-rules", guard("settings.update"), h.CreateRule)
	r.PATCH("/attendance-rules/:id", guard("settings.update"), h.UpdateRule)
	r.DELETE("/attendance-rules/:id", guard("settings.update"), h.DeleteRule)
}

func actor(c *gin.Context) string {
	s, _ := auth.SessionFrom(c)
	return s.UserID
}

// GET /attendance?employee_id=&status=&date_from=&date_to=&limit=&offset=&sort=
func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		EmployeeID: c.Query("employee_id"),
		Status:     c.Query("status"),
		From:       c.Query("date_from"),
		To:         c.Query("date_to"),
		Sort:       c.DefaultQuery("sort", DefaultSort),
	}
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))
	q.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "limit": q.Limit, "offset": q.Offset})
}

func (h *Handler) Get(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) Clock(c *gin.Context) {
	var req ClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	r, err := h.svc.Clock(c.Request.Context(), actor(c), req)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	status := http.StatusOK
	if req.Action == ActionClockIn {
		status = http.StatusCreated
	}
	c.JSON(status, r)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	r, err := h.svc.Update(c.Request.Context(), actor(c), c.Param("id"), req)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		apperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Confirm(c *gin.Context) {
	r, err := h.svc.Confirm(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) Process(c *gin.Context) {
	var opts ProcessOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			apperr.BadJSON(c)
			return
		}
	}
	res, err := h.svc.Process(c.Request.Context(), actor(c), opts)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /attendance/anomalies?date_from=&date_to=
func (h *Handler) Anomalies(c *gin.Context) {
	out, err := h.svc.DetectAnomalies(c.Request.Context(), c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "total": len(out)})
}

// GET /attendance/stats?date=
func (h *Handler) DailyStats(c *gin.Context) {
	st, err := h.svc.DailyStats(c.Request.Context(), c.Query("date"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

type dateRequest struct {
	Date string `json:"date"`
}

func (h *Handler) AutoApprove(c *gin.Context) {
	var req dateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.BadJSON(c)
			return
		}
	}
	n, err := h.svc.AutoApprove(c.Request.Context(), actor(c), req.Date)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "auto_approved_count": n})
}

func (h *Handler) Digest(c *gin.Context) {
	var req dateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.BadJSON(c)
			return
		}
	}
	n, err := h.svc.SendDigest(c.Request.Context(), req.Date)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"anomalies": n})
}

func (h *Handler) ListRules(c *gin.Context) {
	active, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))
	rules, err := h.svc.ListRules(c.Request.Context(), active)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rules})
}

func (h *Handler) CreateRule(c *gin.Context) {
	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	r, err := h.svc.CreateRule(c.Request.Context(), actor(c), req)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) UpdateRule(c *gin.Context) {
	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	r, err := h.svc.UpdateRule(c.Request.Context(), actor(c), c.Param("id"), req)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteRule(c *gin.Context) {
	if err := h.svc.DeleteRule(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		apperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
