package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-share-api/internal/domain"
	"recipe-share-api/internal/service"
	"recipe-share-api/internal/transport/http/ez"
)

type CommentModule struct{ d Deps }

type commentIn struct {
	Text string `json:"text"`
}

func (m *CommentModule) MountAPI(api *gin.RouterGroup) {
	log := m.d.logger()
	pub := ez.New(api.Group("/comments"), log)
	priv := ez.New(api.Group("/comments", m.d.RequireAuth), log)
	svc := m.d.Interaction

	ez.RegisterAction(priv, ez.Action[commentIn, *domain.Comment]{
		Method: http.MethodPost,
		Path:   "/:recipeId",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Msg:    "Comment added successfully",
		Handler: func(c *gin.Context, in *commentIn) (*domain.Comment, error) {
			return svc.AddComment(c.Request.Context(), ez.UserID(c), c.Param("recipeId"), in.Text)
		},
	})

	ez.RegisterAction(priv, ez.Action[struct{}, any]{
		Method: http.MethodDelete,
		Path:   "/:commentId",
		Auth:   true,
		Msg:    "Comment deleted successfully",
		Handler: func(c *gin.Context, _ *struct{}) (any, error) {
			return nil, svc.DeleteComment(c.Request.Context(), ez.UserID(c), c.Param("commentId"))
		},
	})

	ez.RegisterAction(pub, ez.Action[struct{}, service.RecipeComments]{
		Method: http.MethodGet,
		Path:   "/recipe/:recipeId",
		Handler: func(c *gin.Context, _ *struct{}) (service.RecipeComments, error) {
			return svc.CommentsOf(c.Request.Context(), c.Param("recipeId"))
		},
	})
}
