package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-share-api/internal/domain"
	"recipe-share-api/internal/service"
	"recipe-share-api/internal/transport/http/ez"
)

type LikeModule struct{ d Deps }

type myLikesOut struct {
	Count   int             `json:"count"`
	Recipes []domain.Recipe `json:"recipes"`
}

func (m *LikeModule) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/likes", m.d.RequireAuth), m.d.logger())
	svc := m.d.Interaction

	ez.RegisterAction(e, ez.Action[struct{}, service.LikeState]{
		Method: http.MethodPost,
		Path:   "/:recipeId",
		Auth:   true,
		Message: func(st service.LikeState) string {
			if st.Liked {
				return "Recipe liked successfully"
			}
			return "Recipe unliked successfully"
		},
		Handler: func(c *gin.Context, _ *struct{}) (service.LikeState, error) {
			return svc.ToggleLike(c.Request.Context(), ez.UserID(c), c.Param("recipeId"))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, myLikesOut]{
		Method: http.MethodGet,
		Path:   "/my-likes",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (myLikesOut, error) {
			rs, err := svc.MyLikedRecipes(c.Request.Context(), ez.UserID(c))
			if err != nil {
				return myLikesOut{}, err
			}
			return myLikesOut{Count: len(rs), Recipes: rs}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, service.Likers]{
		Method: http.MethodGet,
		Path:   "/recipe/:recipeId",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (service.Likers, error) {
			return svc.LikesOf(c.Request.Context(), c.Param("recipeId"))
		},
	})
}
