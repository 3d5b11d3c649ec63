// Package middleware は gin 共通ミドルウェア
package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxRequestIDKey = "request_id"
)

// RequestID: 受信ヘッダにあれば引き継ぎ、無ければ発番してレスポンスにも載せる
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(CtxRequestIDKey, rid)
		c.Header(HeaderRequestID, rid)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(CtxRequestIDKey)
}

// AccessLog: 5xx とエラー付きリクエストだけ request id 付きで記録する
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		if status >= 500 || len(c.Errors) > 0 {
			log.Printf("[ERROR] rid=%s %s %s status=%d took=%s errors=%s",
				GetRequestID(c), c.Request.Method, c.FullPath(), status, time.Since(start), c.Errors.String())
		}
	}
}
