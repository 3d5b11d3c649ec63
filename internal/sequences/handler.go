package sequences

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/auth"
)

type Guard func(permission string) gin.HandlerFunc

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service, guard Guard) {
	h := &Handler{svc: svc}
	r.GET("/id-sequences", guard("sequences.manage"), h.List)
	r.PUT("/id-sequences", guard("sequences.manage"), h.Save)
	r.GET("/id-sequences/:key", guard("sequences.manage"), h.Get)
	r.POST("/id-sequences/:key/next", guard("sequences.manage"), h.Next)
	r.GET("/id-sequences/:key/validate", guard("sequences.manage"), h.Validate)
}

func actor(c *gin.Context) string {
	s, _ := auth.SessionFrom(c)
	return s.UserID
}

func (h *Handler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *Handler) Get(c *gin.Context) {
	out, err := h.svc.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Save(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	out, err := h.svc.Save(c.Request.Context(), actor(c), req)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Next(c *gin.Context) {
	id, err := h.svc.Next(c.Request.Context(), actor(c), c.Param("key"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) Validate(c *gin.Context) {
	out, err := h.svc.Validate(c.Request.Context(), c.Param("key"))
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
