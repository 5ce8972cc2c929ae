// Package handler 各业务模块的 HTTP 入口，通过 router.Registry 挂载。
package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-share-api/internal/service"
)

type Deps struct {
	Auth        *service.AuthService
	Recipes     *service.RecipeService
	Interaction *service.InteractionService
	Profiles    *service.ProfileService
	Users       *service.UserService
	Reconciler  *service.Reconciler
	// RequireAuth 登录校验中间件（AuthJWT）
	RequireAuth gin.HandlerFunc
	Log         *zap.Logger
}

// APIModules 用户端全部模块
func APIModules(d Deps) []any {
	return []any{
		&AuthModule{d: d},
		&RecipeModule{d: d},
		&LikeModule{d: d},
		&SaveModule{d: d},
		&CommentModule{d: d},
		&ProfileModule{d: d},
	}
}

// AdminModules 管理端模块
func AdminModules(d Deps) []any {
	return []any{&AdminModule{d: d}}
}

func (d Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}
