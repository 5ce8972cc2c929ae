package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-share-api/internal/core/auth"
	"recipe-share-api/internal/core/server"
	"recipe-share-api/internal/domain"
	mdw "recipe-share-api/internal/transport/http/middleware"
)

// NewAdminEngine 管理端 v1（统一要求 admin 角色）
func NewAdminEngine(l *zap.Logger, o server.Options, lim Limits, jwter *auth.JWTer, reg *Registry) *gin.Engine {
	r := baseEngine(l, o, lim)
	admin := r.Group("/admin/v1", mdw.AuthJWT(jwter, domain.RoleAdmin))
	reg.MountAllAdmin(admin)
	return r
}
