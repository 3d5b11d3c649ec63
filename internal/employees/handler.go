package employees

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hrms-backend/internal/importer"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/auth"
)

// Guard は権限名からミドルウェアを作る（rbac.RequirePermission を渡す）
type Guard func(permission string) gin.HandlerFunc

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, guard Guard) {
	h := &Handler{svc: svc}

	r.GET("/employees/basic", h.ListBasic)
	r.GET("/employees/stats", h.Stats)
	r.GET("/employees", guard("employees.read"), h.List)
	r.GET("/employees/:id", guard("employees.read"), h.Get)
	r.POST("/employees", guard("employees.create"), h.Create)
	r.PATCH("/employees/:id", guard("employees.update"), h.Update)
	r.DELETE("/employees/:id", guard("employees.delete"), h.Delete)
	r.PUT("/employees/upsert", guard("employees.create"), h.Upsert)
	r.POST("/employees/bulk", guard("employees.create"), h.BulkUpload)
	r.POST("/employees/bulk-file", guard("employees.create"), h.BulkUploadFile)
	r.POST("/employees/lookup-names", h.LookupNames)
}

func actor(c *gin.Context) string {
	s, _ := auth.SessionFrom(c)
	return s.UserID
}

func atoiDef(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *Handler) ListBasic(c *gin.Context) {
	items, err := h.svc.ListBasic(c.Request.Context())
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Limit:         atoiDef(c.Query("limit"), 50),
		Offset:        atoiDef(c.Query("offset"), 0),
		Search:        c.Query("search"),
		StatusFilter:  c.Query("status"),
		SortField:     c.DefaultQuery("sort_field", "employee_id"),
		SortDirection: c.DefaultQuery("sort_direction", "asc"),
	}
	items, total, err := h.svc.ListPaginated(c.Request.Context(), q)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total_count": total})
}

func (h *Handler) Get(c *gin.Context) {
	e, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) Create(c *gin.Context) {
	var in Employee
	if err := c.ShouldBindJSON(&in); err != nil {
		apperr.BadJSON(c)
		return
	}
	e, err := h.svc.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.Header("Location", "/api/v1/employees/"+e.ID)
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) Update(c *gin.Context) {
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		apperr.BadJSON(c)
		return
	}
	res, err := h.svc.UpdateSecure(c.Request.Context(), actor(c), c.Param("id"), updates)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	res, err := h.svc.SafeDelete(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Upsert(c *gin.Context) {
	var in Employee
	if err := c.ShouldBindJSON(&in); err != nil {
		apperr.BadJSON(c)
		return
	}
	res, err := h.svc.Upsert(c.Request.Context(), actor(c), in)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type bulkRequest struct {
	Rows []Employee `json:"rows" binding:"required"`
}

func (h *Handler) BulkUpload(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	c.JSON(http.StatusOK, h.svc.BulkUpload(c.Request.Context(), actor(c), req.Rows))
}

// BulkUploadFile は Excel / CSV の社員テンプレートを取り込む
func (h *Handler) BulkUploadFile(c *gin.Context) {
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
	emps := make([]Employee, 0, len(rows))
	for _, row := range rows {
		emps = append(emps, FromValues(row))
	}
	c.JSON(http.StatusOK, h.svc.BulkUpload(c.Request.Context(), actor(c), emps))
}

type lookupRequest struct {
	EmployeeIDs []string `json:"employee_ids" binding:"required"`
}

func (h *Handler) LookupNames(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	out, err := h.svc.LookupNames(c.Request.Context(), req.EmployeeIDs)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}
