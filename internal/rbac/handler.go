package rbac

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hrms-backend/internal/audit"
	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/auth"
)

type Handler struct {
	m     *Matrix
	audit audit.Recorder
}

func RegisterRoutes(r gin.IRoutes, m *Matrix, rec audit.Recorder) {
	h := &Handler{m: m, audit: rec}
	r.GET("/permissions/catalog", h.Catalog)
	r.GET("/permissions/me", h.Mine)
	r.GET("/permissions", RequirePermission(m, "roles.read"), h.Matrix)
	r.POST("/permissions/toggle", RequirePermission(m, "roles.update"), h.Toggle)
}

func (h *Handler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"roles": Roles, "permissions": Catalog})
}

func (h *Handler) Mine(c *gin.Context) {
	sess, _ := auth.SessionFrom(c)
	perms := h.m.Permissions(sess.Role)
	if sess.Role == SuperAdmin {
		perms = make([]string, 0, len(Catalog))
		for _, p := range Catalog {
			perms = append(perms, p.Key)
		}
	}
	c.JSON(http.StatusOK, gin.H{"role": sess.Role, "permissions": perms})
}

func (h *Handler) Matrix(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"matrix": h.m.Snapshot(), "updating": h.m.Updating()})
}

type ToggleRequest struct {
	Role       string `json:"role" binding:"required"`
	Permission string `json:"permission" binding:"required"`
}

func (h *Handler) Toggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	granted, err := h.m.Toggle(c.Request.Context(), req.Role, req.Permission)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	sess, _ := auth.SessionFrom(c)
	h.audit.Record(c.Request.Context(), sess.UserID, audit.ActionToggle, "role_permissions",
		req.Role+":"+req.Permission, gin.H{"granted": !granted}, gin.H{"granted": granted})
	c.JSON(http.StatusOK, gin.H{"role": req.Role, "permission": req.Permission, "granted": granted})
}
