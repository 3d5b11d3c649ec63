package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"hrms-backend/internal/platform/apperr"
)

const ctxSessionKey = "session"

// Session はリクエスト単位で明示的に受け渡すログイン情報
type Session struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// SessionFrom: RequireAuth を通っていなければ ok=false
func SessionFrom(c *gin.Context) (Session, bool) {
	v, ok := c.Get(ctxSessionKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}

// WithSession はテストや CLI から Session を詰める
func WithSession(c *gin.Context, s Session) {
	c.Set(ctxSessionKey, s)
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "UNAUTHENTICATED", "message": msg}})
}

// RequireAuth: Authorization: Bearer <token> を検証して Session を詰める
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			unauthorized(c, "missing Authorization header")
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			unauthorized(c, "empty token")
			return
		}

		sess, err := ParseToken(secret, tokenStr)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		WithSession(c, sess)
		c.Next()
	}
}

func ParseToken(secret []byte, tokenStr string) (Session, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		// alg 固定（none攻撃とか回避）
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Session{}, err
	}
	if token == nil || !token.Valid {
		return Session{}, jwt.ErrTokenSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, jwt.ErrTokenInvalidClaims
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Session{}, jwt.ErrTokenInvalidClaims
	}
	role, _ := claims["role"].(string)
	return Session{UserID: sub, Role: role}, nil
}

// RequireRole: 例) super_admin のみ許可したい時に追加
func RequireRole(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{})
	for _, r := range roles {
		if r == "" {
			continue
		}
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok || sess.Role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, apperr.Body(apperr.CodePermissionDenied, apperr.MsgPermissionDenied))
			return
		}
		if _, allowed := roleSet[sess.Role]; !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, apperr.Body(apperr.CodePermissionDenied, apperr.MsgPermissionDenied))
			return
		}
		c.Next()
	}
}
