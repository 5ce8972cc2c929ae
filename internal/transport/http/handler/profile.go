package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-share-api/internal/domain"
	"recipe-share-api/internal/service"
	"recipe-share-api/internal/transport/http/ez"
)

type ProfileModule struct{ d Deps }

type profileIn struct {
	Username   *string `json:"username"`
	Bio        *string `json:"bio"`
	ProfilePic *string `json:"profilePic"`
}

func (m *ProfileModule) MountAPI(api *gin.RouterGroup) {
	log := m.d.logger()
	pub := ez.New(api.Group("/profile"), log)
	priv := ez.New(api.Group("/profile", m.d.RequireAuth), log)
	svc := m.d.Profiles

	ez.RegisterAction(priv, ez.Action[struct{}, *service.Profile]{
		Method: http.MethodGet,
		Path:   "/me",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Profile, error) {
			return svc.Me(c.Request.Context(), ez.UserID(c))
		},
	})

	ez.RegisterAction(priv, ez.Action[profileIn, *service.Profile]{
		Method: http.MethodPut,
		Path:   "/me",
		Binder: ez.BindJSON,
		Auth:   true,
		Msg:    "Profile updated successfully",
		Handler: func(c *gin.Context, in *profileIn) (*service.Profile, error) {
			return svc.UpdateMe(c.Request.Context(), ez.UserID(c), domain.UserPatch{
				Username: in.Username, Bio: in.Bio, ProfilePic: in.ProfilePic,
			})
		},
	})

	ez.RegisterAction(pub, ez.Action[struct{}, *service.PublicProfile]{
		Method: http.MethodGet,
		Path:   "/user/:userId",
		Handler: func(c *gin.Context, _ *struct{}) (*service.PublicProfile, error) {
			return svc.Public(c.Request.Context(), c.Param("userId"))
		},
	})

	ez.RegisterAction(pub, ez.Action[struct{}, domain.Page[domain.Recipe]]{
		Method: http.MethodGet,
		Path:   "/user/:userId/recipes",
		Handler: func(c *gin.Context, _ *struct{}) (domain.Page[domain.Recipe], error) {
			return m.d.Recipes.ListByOwner(c.Request.Context(), c.Param("userId"), ez.Page(c), true)
		},
	})
}
