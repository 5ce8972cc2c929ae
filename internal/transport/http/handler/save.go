package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-share-api/internal/domain"
	"recipe-share-api/internal/service"
	"recipe-share-api/internal/transport/http/ez"
)

type SaveModule struct{ d Deps }

func (m *SaveModule) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/saves", m.d.RequireAuth), m.d.logger())
	svc := m.d.Interaction

	ez.RegisterAction(e, ez.Action[struct{}, service.SaveState]{
		Method: http.MethodPost,
		Path:   "/:recipeId",
		Auth:   true,
		Message: func(st service.SaveState) string {
			if st.Saved {
				return "Recipe saved successfully"
			}
			return "Recipe removed from saved"
		},
		Handler: func(c *gin.Context, _ *struct{}) (service.SaveState, error) {
			return svc.ToggleSave(c.Request.Context(), ez.UserID(c), c.Param("recipeId"))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, domain.Page[domain.Recipe]]{
		Method: http.MethodGet,
		Path:   "/my-saves",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.Page[domain.Recipe], error) {
			return svc.SavedRecipesOf(c.Request.Context(), ez.UserID(c), ez.Page(c))
		},
	})
}
