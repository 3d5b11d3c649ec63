package masterdata

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/auth"
)

type Guard func(permission string) gin.HandlerFunc

type Handler struct{ svc *Service }

// RegisterRoutes は参照テーブルごとに同じ CRUD を登録する
// （/departments, /positions, /nationalities, /employee-categories）
func RegisterRoutes(r gin.IRoutes, svc *Service, guard Guard) {
	h := &Handler{svc: svc}
	for _, k := range Kinds() {
		base := "/" + k.Key
		r.GET(base, guard("masterdata.read"), h.List(k))
		r.POST(base, guard("masterdata.create"), h.Create(k))
		r.GET(base+"/:id", guard("masterdata.read"), h.Get(k))
		r.PATCH(base+"/:id", guard("masterdata.update"), h.Update(k))
		r.DELETE(base+"/:id", guard("masterdata.delete"), h.Disable(k))
	}
	r.POST("/positions-import", guard("masterdata.create"), h.ImportPositions)
}

func actor(c *gin.Context) string {
	s, _ := auth.SessionFrom(c)
	return s.UserID
}

// GET /<kind>?all=1
func (h *Handler) List(k Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := h.svc.List(c.Request.Context(), k, c.Query("all"))
		if err != nil {
			apperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": resp})
	}
}

func (h *Handler) Get(k Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := h.svc.Get(c.Request.Context(), k, c.Param("id"))
		if err != nil {
			apperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *Handler) Create(k Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Write(c, apperr.Invalid(err.Error()))
			return
		}
		resp, err := h.svc.Create(c.Request.Context(), actor(c), k, req)
		if err != nil {
			apperr.Write(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

func (h *Handler) Update(k Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.BadJSON(c)
			return
		}
		resp, err := h.svc.Update(c.Request.Context(), actor(c), k, c.Param("id"), req)
		if err != nil {
			apperr.Write(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *Handler) Disable(k Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.svc.Disable(c.Request.Context(), actor(c), k, c.Param("id")); err != nil {
			apperr.Write(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *Handler) ImportPositions(c *gin.Context) {
	res, err := h.svc.ImportPositionsFromStaging(c.Request.Context(), actor(c))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
