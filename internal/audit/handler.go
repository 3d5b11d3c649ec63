package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hrms-backend/internal/platform/apperr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, guard gin.HandlerFunc) {
	h := &Handler{svc: svc}
	r.GET("/audit-logs", guard, h.List)
}

func (h *Handler) List(c *gin.Context) {
	f := Filter{
		TableName: c.Query("table_name"),
		RecordID:  c.Query("record_id"),
		Actor:     c.Query("actor"),
		Action:    c.Query("action"),
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.svc.List(c.Request.Context(), f, Page{Limit: limit, Offset: offset})
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}
