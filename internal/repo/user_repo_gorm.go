package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipe-share-api/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := checkModel(u); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Create(u).Error
	if err != nil && isDupKey(err) {
		return domain.Validation("user already exists")
	}
	return err
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepo) first(ctx context.Context, cond string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, cond, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Update 只更新给定列（字段校验由调用方完成）
func (r *UserRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields).Error
	if err != nil && isDupKey(err) {
		return domain.Validation("username is already taken")
	}
	return err
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

func (r *UserRepo) PublicByIDs(ctx context.Context, ids []string) (map[string]domain.PublicUser, error) {
	out := make(map[string]domain.PublicUser, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var us []domain.User
	err := r.db.WithContext(ctx).
		Select("id", "username", "bio", "profile_pic").
		Where("id IN ?", dedupe(ids)).
		Find(&us).Error
	if err != nil {
		return nil, err
	}
	for i := range us {
		out[us[i].ID] = us[i].Public()
	}
	return out, nil
}

func (r *UserRepo) List(ctx context.Context, q domain.UserListQuery) ([]domain.User, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&domain.User{})
		if q.WithDeleted {
			db = db.Unscoped()
		}
		if s := strings.TrimSpace(q.Q); s != "" {
			like := "%" + s + "%"
			db = db.Where("email LIKE ? OR username LIKE ?", like, like)
		}
		return db
	}
	var total int64
	if err := r.db.WithContext(ctx).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	err := r.db.WithContext(ctx).Scopes(scope).
		Order("created_at desc").Offset(q.Offset).Limit(q.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) SoftDelete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	return res.RowsAffected > 0, res.Error
}

// --- likedRecipes（Recipe.likes 的镜像） ---

func (r *UserRepo) AddLikedRecipe(ctx context.Context, userID, recipeID string) (bool, error) {
	return insertIgnore(ctx, r.db, &domain.LikedRecipe{UserID: userID, RecipeID: recipeID})
}

func (r *UserRepo) RemoveLikedRecipe(ctx context.Context, userID, recipeID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&domain.LikedRecipe{})
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepo) LikedRecipeIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.LikedRecipe{}).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Pluck("recipe_id", &ids).Error
	return ids, err
}

func (r *UserRepo) CountLikedRecipes(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.LikedRecipe{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// --- savedRecipes ---

func (r *UserRepo) HasSavedRecipe(ctx context.Context, userID, recipeID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.SavedRecipe{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&n).Error
	return n > 0, err
}

func (r *UserRepo) AddSavedRecipe(ctx context.Context, userID, recipeID string) (bool, error) {
	return insertIgnore(ctx, r.db, &domain.SavedRecipe{UserID: userID, RecipeID: recipeID})
}

func (r *UserRepo) RemoveSavedRecipe(ctx context.Context, userID, recipeID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&domain.SavedRecipe{})
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepo) CountSavedRecipes(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.SavedRecipe{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// insertIgnore 集合加入：已存在时不报错，返回是否真的插入了新行
func insertIgnore(ctx context.Context, db *gorm.DB, row any) (bool, error) {
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
