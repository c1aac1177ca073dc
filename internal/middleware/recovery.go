package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery はハンドラー内の panic を捕捉し、スタックをログに残して汎用の 500 を返します。
// 利用者には詳細を返しません。
func Recovery(logger *slog.Logger, body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					"request_id", RequestIDFrom(c),
					"error", rec,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
				c.Abort()
				if !c.Writer.Written() {
					c.String(http.StatusInternalServerError, body)
				}
			}
		}()
		c.Next()
	}
}
