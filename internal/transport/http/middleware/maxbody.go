package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "recipe-share-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；base64 图片走 JSON，上限要留够
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if len(c.Errors) > 0 && !c.Writer.Written() {
			abort(c, resp.CodeBadRequest, "request body too large")
		}
	}
}
