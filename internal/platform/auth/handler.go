package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hrms-backend/internal/platform/apperr"
)

type AuthHandler struct{ svc AuthService }

// RegisterPublicRoutes: 認証不要
func RegisterPublicRoutes(r gin.IRoutes, svc AuthService) {
	h := &AuthHandler{svc: svc}
	r.POST("/login", h.Login)
}

// RegisterRoutes: RequireAuth 配下。アカウント管理は super_admin / admin に限定
func RegisterRoutes(r gin.IRoutes, svc AuthService) {
	h := &AuthHandler{svc: svc}
	r.GET("/me", h.Me)
	admin := RequireRole("super_admin", "admin")
	r.GET("/accounts", admin, h.List)
	r.POST("/accounts", admin, h.Register)
	r.DELETE("/accounts/:id", admin, h.DeleteAccount)
	r.PUT("/accounts/:id/role", RequireRole("super_admin"), h.ChangeRole)
	r.PUT("/accounts/:id/disabled", admin, h.SetDisabled)
}

type LoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}

	token, acct, err := h.svc.Login(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		if errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrDisabled) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "UNAUTHENTICATED", "message": "invalid id or password"}})
			return
		}
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user_id": acct.ID,
		"role":    acct.Role,
		"message": "Login successful",
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "UNAUTHENTICATED", "message": "no session"}})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

type RegisterRequest struct {
	ID          string `json:"id" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Role        string `json:"role,omitempty"` // 未指定なら employee
	DisplayName string `json:"display_name,omitempty"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}

	role := req.Role
	if role == "" {
		role = "employee"
	}

	if err := h.svc.Register(c.Request.Context(), req.ID, req.Password, role, req.DisplayName); err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registered"})
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *AuthHandler) ChangeRole(c *gin.Context) {
	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	if err := h.svc.ChangeRole(c.Request.Context(), c.Param("id"), req.Role); err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role changed"})
}

type SetDisabledRequest struct {
	Disabled bool `json:"disabled"`
}

func (h *AuthHandler) SetDisabled(c *gin.Context) {
	var req SetDisabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.BadJSON(c)
		return
	}
	if err := h.svc.SetDisabled(c.Request.Context(), c.Param("id"), req.Disabled); err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}
