package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-share-api/internal/domain"
	"recipe-share-api/internal/service"
	"recipe-share-api/internal/transport/http/ez"
)

// AdminModule 挂在 /admin/v1，分组已统一要求 admin 角色
type AdminModule struct{ d Deps }

type userListIn struct {
	Offset      int    `form:"offset" binding:"min=0"`
	Limit       int    `form:"limit,default=20" binding:"min=1,max=100"`
	Q           string `form:"q"`            // 按 email/username 模糊搜
	WithDeleted bool   `form:"with_deleted"` // 是否包含已封禁
}

type banOut struct {
	ID string `json:"id"`
}

func (m *AdminModule) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin, m.d.logger())

	ez.RegisterAction(e, ez.Action[userListIn, service.UserList]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, in *userListIn) (service.UserList, error) {
			return m.d.Users.List(c.Request.Context(), domain.UserListQuery{
				Offset: in.Offset, Limit: in.Limit, Q: in.Q, WithDeleted: in.WithDeleted,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, banOut]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Msg:    "User banned",
		Handler: func(c *gin.Context, _ *struct{}) (banOut, error) {
			id, err := m.d.Users.Ban(c.Request.Context(), c.Param("id"))
			return banOut{ID: id}, err
		},
	})

	if m.d.Reconciler == nil {
		return
	}
	ez.RegisterAction(e, ez.Action[struct{}, service.ReconcileReport]{
		Method: http.MethodPost,
		Path:   "/reconcile",
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, _ *struct{}) (service.ReconcileReport, error) {
			return m.d.Reconciler.Reconcile(c.Request.Context())
		},
	})
}
