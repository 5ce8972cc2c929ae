package domain

import (
	"context"
	"time"
)

// 约定：FindXxx 查不到时返回 (nil, nil)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	PublicByIDs(ctx context.Context, ids []string) (map[string]PublicUser, error)
	List(ctx context.Context, q UserListQuery) ([]User, int64, error)
	SoftDelete(ctx context.Context, id string) (bool, error)

	AddLikedRecipe(ctx context.Context, userID, recipeID string) (bool, error)
	RemoveLikedRecipe(ctx context.Context, userID, recipeID string) (bool, error)
	LikedRecipeIDs(ctx context.Context, userID string) ([]string, error)
	CountLikedRecipes(ctx context.Context, userID string) (int64, error)

	HasSavedRecipe(ctx context.Context, userID, recipeID string) (bool, error)
	AddSavedRecipe(ctx context.Context, userID, recipeID string) (bool, error)
	RemoveSavedRecipe(ctx context.Context, userID, recipeID string) (bool, error)
	CountSavedRecipes(ctx context.Context, userID string) (int64, error)
}

type RecipeRepository interface {
	Create(ctx context.Context, r *Recipe) error
	FindByID(ctx context.Context, id string) (*Recipe, error)
	FindByIDs(ctx context.Context, ids []string) ([]Recipe, error)
	UpdateContent(ctx context.Context, r *Recipe) error
	DeleteCascade(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, q RecipeQuery) ([]Recipe, int64, error)
	CountByOwner(ctx context.Context, userID string) (int64, error)

	HasLike(ctx context.Context, recipeID, userID string) (bool, error)
	AddLike(ctx context.Context, recipeID, userID string) (bool, error)
	RemoveLike(ctx context.Context, recipeID, userID string) (bool, error)
	LikesCount(ctx context.Context, recipeID string) (int64, error)
	LikerIDs(ctx context.Context, recipeID string) ([]string, error)
	RecipesLikedBy(ctx context.Context, userID string) ([]string, error)
	AddCommentsCount(ctx context.Context, recipeID string, delta int) (bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	FindByID(ctx context.Context, id string) (*Comment, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByRecipe(ctx context.Context, recipeID string) ([]Comment, error)
}

// MaintenanceRepository 对账：以 recipe_likes / comments 为准修复计数与镜像
type MaintenanceRepository interface {
	RecountLikes(ctx context.Context) (int64, error)
	RecountComments(ctx context.Context) (int64, error)
	RestoreLikeMirror(ctx context.Context) (int64, error)
	PruneLikeMirror(ctx context.Context) (int64, error)
	BackfillSearchText(ctx context.Context) (int64, error)
}

type Store interface {
	Users() UserRepository
	Recipes() RecipeRepository
	Comments() CommentRepository
	Maintenance() MaintenanceRepository
	// WithTx 内 fn 只能使用传入的 tx
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
