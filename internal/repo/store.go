package repo

import (
	"context"

	"gorm.io/gorm"

	"recipe-share-api/internal/domain"
)

type Store struct {
	db       *gorm.DB
	users    *UserRepo
	recipes  *RecipeRepo
	comments *CommentRepo
	maint    *MaintenanceRepo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		users:    NewUserRepo(db),
		recipes:  NewRecipeRepo(db),
		comments: NewCommentRepo(db),
		maint:    NewMaintenanceRepo(db),
	}
}

func (s *Store) Users() domain.UserRepository              { return s.users }
func (s *Store) Recipes() domain.RecipeRepository          { return s.recipes }
func (s *Store) Comments() domain.CommentRepository        { return s.comments }
func (s *Store) Maintenance() domain.MaintenanceRepository { return s.maint }

// WithTx 已在事务内时 gorm 会退化为 SAVEPOINT
func (s *Store) WithTx(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Models 需要迁移的全部表
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Recipe{},
		&domain.Comment{},
		&domain.RecipeLike{},
		&domain.LikedRecipe{},
		&domain.SavedRecipe{},
	}
}
