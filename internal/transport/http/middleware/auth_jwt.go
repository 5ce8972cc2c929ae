package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"recipe-share-api/internal/core/auth"
	"recipe-share-api/internal/domain"
	resp "recipe-share-api/internal/transport/http/response"
)

// 请求上下文里的键
const (
	KeyUserID = "userId"
	KeyRole   = "role"
	KeyClaims = "claims"
)

// AuthJWT 校验 Bearer token，把规范化后的 userId 与 role 写进上下文。
// 不查库，用户是否还存在由下游决定。
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(ah, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abort(c, resp.CodeUnauthorized, "Unauthorized - No Token Provided")
			return
		}
		claims, err := j.Parse(strings.TrimSpace(raw))
		if err != nil {
			abort(c, resp.CodeUnauthorized, "Unauthorized - Invalid Token")
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			abort(c, resp.CodeForbidden, "")
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyUserID, domain.CanonicalID(claims.UID))
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}

func abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(resp.Status(code), resp.Error(code, msg))
}
