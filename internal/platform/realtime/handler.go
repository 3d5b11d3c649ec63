package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hrms-backend/internal/platform/apperr"
)

// 購読可能なテーブルと、購読に必要な閲覧権限
var streamTables = map[string]string{
	"employees":                 "employees.read",
	"employees_staging":         "employees.read",
	"attendance_records":        "attendance.read",
	"attendance_business_rules": "attendance.read",
	"raw_attendance_data":       "attendance.read",
	"user_id_mapping":           "attendance.read",
	"terminals":                 "attendance.read",
	"role_permissions":          "roles.read",
	"recruitment_requests":      "recruitment.read",
	"departments":               "masterdata.read",
	"positions":                 "masterdata.read",
	"nationalities":             "masterdata.read",
	"employee_categories":       "masterdata.read",
}

// Authorizer はリクエストの利用者が permission を持つか判定する
type Authorizer func(c *gin.Context, permission string) bool

type Handler struct {
	hub       *Hub
	allow     Authorizer
	heartbeat time.Duration
}

func RegisterRoutes(r gin.IRoutes, hub *Hub, allow Authorizer) {
	h := &Handler{hub: hub, allow: allow, heartbeat: 25 * time.Second}
	r.GET("/realtime/:table", h.Stream)
}

// Stream は SSE でテーブル変更を流す。
// 行データをそのまま送るので、テーブルの閲覧権限が無いロールは購読できない。
func (h *Handler) Stream(c *gin.Context) {
	table := c.Param("table")
	perm, ok := streamTables[table]
	if !ok {
		c.JSON(http.StatusNotFound, apperr.Body(apperr.CodeNotFound, "unknown table"))
		return
	}
	if h.allow == nil || !h.allow(c, perm) {
		c.JSON(http.StatusForbidden, apperr.Body(apperr.CodePermissionDenied, apperr.MsgPermissionDenied))
		return
	}

	sub := h.hub.Subscribe(table)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			c.SSEvent(string(ev.Op), ev)
			c.Writer.Flush()
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			c.Writer.Flush()
		}
	}
}
