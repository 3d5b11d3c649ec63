package rbac

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hrms-backend/internal/platform/apperr"
	"hrms-backend/internal/platform/auth"
)

// RequirePermission: Session のロールが permission を持たなければ 403
func RequirePermission(m *Matrix, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := auth.SessionFrom(c)
		if !ok || !m.HasPermission(sess.Role, permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, apperr.Body(apperr.CodePermissionDenied, apperr.MsgPermissionDenied))
			return
		}
		c.Next()
	}
}
