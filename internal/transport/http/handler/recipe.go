package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-share-api/internal/domain"
	"recipe-share-api/internal/service"
	"recipe-share-api/internal/transport/http/ez"
)

type RecipeModule struct{ d Deps }

func (m *RecipeModule) Priority() int { return 20 }

type recipeIn struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Ingredients  []string        `json:"ingredients"`
	Instructions []string        `json:"instructions"`
	DietType     domain.DietType `json:"type"`
	MealType     domain.MealType `json:"mealType"`
	// url 或 base64 data uri
	Image string `json:"image"`
}

type recipePatchIn struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Ingredients  []string         `json:"ingredients"`
	Instructions []string         `json:"instructions"`
	DietType     *domain.DietType `json:"type"`
	MealType     *domain.MealType `json:"mealType"`
	Image        *string          `json:"image"`
}

type recipeListIn struct {
	DietType string `form:"type"`
	MealType string `form:"mealType"`
	Search   string `form:"search"`
	Sort     string `form:"sort"`
}

func (m *RecipeModule) MountAPI(api *gin.RouterGroup) {
	log := m.d.logger()
	pub := ez.New(api.Group("/recipes"), log)
	priv := ez.New(api.Group("/recipes", m.d.RequireAuth), log)
	svc := m.d.Recipes

	ez.RegisterAction(pub, ez.Action[recipeListIn, domain.Page[domain.Recipe]]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *recipeListIn) (domain.Page[domain.Recipe], error) {
			return svc.List(c.Request.Context(), service.ListInput{
				DietType: in.DietType, MealType: in.MealType,
				Search: in.Search, Sort: in.Sort, Page: ez.Page(c),
			})
		},
	})

	ez.RegisterAction(priv, ez.Action[struct{}, domain.Page[domain.Recipe]]{
		Method: http.MethodGet,
		Path:   "/user/me",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.Page[domain.Recipe], error) {
			return svc.ListByOwner(c.Request.Context(), ez.UserID(c), ez.Page(c), false)
		},
	})

	ez.RegisterAction(pub, ez.Action[struct{}, *domain.Recipe]{
		Method: http.MethodGet,
		Path:   "/:id",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Recipe, error) {
			return svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(priv, ez.Action[recipeIn, *domain.Recipe]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Msg:    "Recipe created successfully",
		Handler: func(c *gin.Context, in *recipeIn) (*domain.Recipe, error) {
			return svc.Create(c.Request.Context(), ez.UserID(c), service.RecipeInput{
				Title:        in.Title,
				Description:  in.Description,
				Ingredients:  in.Ingredients,
				Instructions: in.Instructions,
				DietType:     in.DietType,
				MealType:     in.MealType,
				Image:        in.Image,
			})
		},
	})

	ez.RegisterAction(priv, ez.Action[recipePatchIn, *domain.Recipe]{
		Method: http.MethodPatch,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Msg:    "Recipe updated successfully",
		Handler: func(c *gin.Context, in *recipePatchIn) (*domain.Recipe, error) {
			return svc.Update(c.Request.Context(), ez.UserID(c), c.Param("id"), domain.RecipePatch{
				Title:        in.Title,
				Description:  in.Description,
				Ingredients:  in.Ingredients,
				Instructions: in.Instructions,
				DietType:     in.DietType,
				MealType:     in.MealType,
				ImageURL:     in.Image,
			})
		},
	})

	ez.RegisterAction(priv, ez.Action[struct{}, any]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Auth:   true,
		Msg:    "Recipe deleted successfully",
		Handler: func(c *gin.Context, _ *struct{}) (any, error) {
			return nil, svc.Delete(c.Request.Context(), ez.UserID(c), c.Param("id"))
		},
	})
}
