package staging

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hrms-backend/internal/importer"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/auth"
)

type Guard func(permission string) gin.HandlerFunc

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, guard Guard) {
	h := &Handler{svc: svc}
	r.GET("/staging", guard("employees.read"), h.List)
	r.POST("/staging/bulk", guard("employees.create"), h.BulkCreate)
	r.POST("/staging/bulk-file", guard("employees.create"), h.BulkCreateFile)
	r.POST("/staging/promote-from-raw", guard("employees.create"), h.PromoteFromRaw)
	r.GET("/staging/:id", guard("employees.read"), h.Get)
	r.PATCH("/staging/:id", guard("employees.update"), h.Update)
	r.DELETE("/staging/:id", guard("employees.delete"), h.Delete)
	r.GET("/staging/:id/preview", guard("employees.read"), h.Preview)
	r.POST("/staging/:id/promote", guard("employees.create"), h.Promote)
}

func actor(c *gin.Context) string {
	s, _ := auth.SessionFrom(c)
	return s.UserID
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	items, total, err := h.svc.List(c.Request.Context(), ListQuery{Limit: limit, Offset: offset, Search: c.Query("search")})
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

type bulkRequest struct {
	Rows []map[string]string `json:"rows" binding:"required"`
}

func (h *Handler) BulkCreate(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	n, err := h.svc.BulkCreate(c.Request.Context(), actor(c), req.Rows)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"inserted": n})
}

func (h *Handler) BulkCreateFile(c *gin.Context) {
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

	rows, err := importer.EmployeeRows(f, fh.Filename)
	if err != nil {
		apperr.Write(c, apperr.Invalid(err.Error()))
		return
	}
	n, err := h.svc.BulkCreate(c.Request.Context(), actor(c), rows)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"inserted": n})
}

func (h *Handler) Get(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) Update(c *gin.Context) {
	var patch map[string]string
	if err := c.ShouldBindJSON(&patch); err != nil {
		apperr.BadJSON(c)
		return
	}
	r, err := h.svc.Update(c.Request.Context(), actor(c), c.Param("id"), patch)
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

func (h *Handler) Preview(c *gin.Context) {
	plan, prod, err := h.svc.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan, "production": prod})
}

type promoteRequest struct {
	Overrides map[string]string `json:"overrides"`
}

func (h *Handler) Promote(c *gin.Context) {
	var req promoteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.BadJSON(c)
			return
		}
	}
	res, err := h.svc.Promote(c.Request.Context(), actor(c), c.Param("id"), req.Overrides)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// PromoteFromRaw: ?stream=1 なら各段階の進捗を SSE で流し、最後に result を送る
func (h *Handler) PromoteFromRaw(c *gin.Context) {
	if c.Query("stream") != "1" {
		res, err := h.svc.PromoteFromRawAttendance(c.Request.Context(), actor(c), nil)
		if err != nil {
			apperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	res, err := h.svc.PromoteFromRawAttendance(c.Request.Context(), actor(c), func(stages []Stage, current int) {
		c.SSEvent("progress", gin.H{"stages": stages, "current": current})
		c.Writer.Flush()
	})
	if err != nil {
		c.SSEvent("error", apperr.Classify(err))
		c.Writer.Flush()
		return
	}
	c.SSEvent("result", res)
	c.Writer.Flush()
}
