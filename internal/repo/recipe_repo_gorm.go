package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipe-share-api/internal/domain"
)

// 排序字段 → 列名
var recipeSortColumns = map[string]string{
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
	"likesCount":    "likes_count",
	"commentsCount": "comments_count",
	"title":         "title",
}

type RecipeRepo struct{ db *gorm.DB }

func NewRecipeRepo(db *gorm.DB) *RecipeRepo { return &RecipeRepo{db: db} }

func (r *RecipeRepo) Create(ctx context.Context, rec *domain.Recipe) error {
	if err := checkModel(rec); err != nil {
		return err
	}
	rec.SearchText = rec.SearchKey()
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *RecipeRepo) FindByID(ctx context.Context, id string) (*domain.Recipe, error) {
	var rec domain.Recipe
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RecipeRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Recipe, error) {
	var out []domain.Recipe
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", dedupe(ids)).Find(&out).Error
	return out, err
}

// UpdateContent 只写业务字段；计数列由原子增减维护，这里绝不覆盖
func (r *RecipeRepo) UpdateContent(ctx context.Context, rec *domain.Recipe) error {
	if err := checkModel(rec); err != nil {
		return err
	}
	rec.SearchText = rec.SearchKey()
	return r.db.WithContext(ctx).Model(&domain.Recipe{ID: rec.ID}).
		Select("title", "description", "ingredients", "instructions", "diet_type", "meal_type", "image_url", "search_text").
		Updates(rec).Error
}

// DeleteCascade 删除菜谱及其点赞（双边）、收藏、评论；调用方负责包事务
func (r *RecipeRepo) DeleteCascade(ctx context.Context, id string) (bool, error) {
	db := r.db.WithContext(ctx)
	for _, m := range []any{&domain.RecipeLike{}, &domain.LikedRecipe{}, &domain.SavedRecipe{}, &domain.Comment{}} {
		if err := db.Where("recipe_id = ?", id).Delete(m).Error; err != nil {
			return false, err
		}
	}
	res := db.Where("id = ?", id).Delete(&domain.Recipe{})
	return res.RowsAffected > 0, res.Error
}

func (r *RecipeRepo) List(ctx context.Context, q domain.RecipeQuery) ([]domain.Recipe, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB { return r.filter(db.Model(&domain.Recipe{}), q.Filter) }

	var total int64
	if err := r.db.WithContext(ctx).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	tx := r.db.WithContext(ctx).Scopes(scope)
	for _, s := range q.Sort {
		col, ok := recipeSortColumns[s.Field]
		if !ok {
			return nil, 0, domain.Validation("unsupported sort field: " + s.Field)
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: s.Desc})
	}
	// 稳定分页
	tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})

	var out []domain.Recipe
	if err := tx.Offset(q.Page.Offset()).Limit(q.Page.Size).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *RecipeRepo) filter(db *gorm.DB, f domain.RecipeFilter) *gorm.DB {
	if f.DietType != "" {
		db = db.Where("diet_type = ?", f.DietType)
	}
	if f.MealType != "" {
		db = db.Where("meal_type = ?", f.MealType)
	}
	if f.CreatedBy != "" {
		db = db.Where("created_by = ?", f.CreatedBy)
	}
	if f.SavedBy != "" {
		saved := r.db.Model(&domain.SavedRecipe{}).Select("recipe_id").Where("user_id = ?", f.SavedBy)
		db = db.Where("id IN (?)", saved)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + escapeLike(s) + "%"
		db = db.Where("search_text LIKE ? ESCAPE '!'", like)
	}
	return db
}

func (r *RecipeRepo) CountByOwner(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Recipe{}).Where("created_by = ?", userID).Count(&n).Error
	return n, err
}

// --- likes（权威集合）+ likes_count ---

func (r *RecipeRepo) HasLike(ctx context.Context, recipeID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.RecipeLike{}).
		Where("recipe_id = ? AND user_id = ?", recipeID, userID).
		Count(&n).Error
	return n > 0, err
}

// AddLike 只有真正插入新成员时才 +1，重复加入不会重复计数
func (r *RecipeRepo) AddLike(ctx context.Context, recipeID, userID string) (bool, error) {
	added, err := insertIgnore(ctx, r.db, &domain.RecipeLike{RecipeID: recipeID, UserID: userID})
	if err != nil || !added {
		return false, err
	}
	err = r.db.WithContext(ctx).Model(&domain.Recipe{}).Where("id = ?", recipeID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	return true, err
}

func (r *RecipeRepo) RemoveLike(ctx context.Context, recipeID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("recipe_id = ? AND user_id = ?", recipeID, userID).
		Delete(&domain.RecipeLike{})
	if res.Error != nil || res.RowsAffected == 0 {
		return false, res.Error
	}
	err := r.db.WithContext(ctx).Model(&domain.Recipe{}).Where("id = ?", recipeID).
		UpdateColumn("likes_count", gorm.Expr("CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END")).Error
	return true, err
}

func (r *RecipeRepo) LikesCount(ctx context.Context, recipeID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Recipe{}).Where("id = ?", recipeID).
		Pluck("likes_count", &n).Error
	return n, err
}

func (r *RecipeRepo) LikerIDs(ctx context.Context, recipeID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.RecipeLike{}).
		Where("recipe_id = ?", recipeID).
		Order("created_at desc").
		Pluck("user_id", &ids).Error
	return ids, err
}

// RecipesLikedBy 从权威集合取，不依赖镜像
func (r *RecipeRepo) RecipesLikedBy(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.RecipeLike{}).
		Where("user_id = ?", userID).
		Pluck("recipe_id", &ids).Error
	return ids, err
}

// AddCommentsCount 原子增减评论数（不低于 0）；菜谱不存在时返回 false
func (r *RecipeRepo) AddCommentsCount(ctx context.Context, recipeID string, delta int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Recipe{}).Where("id = ?", recipeID).
		UpdateColumn("comments_count",
			gorm.Expr("CASE WHEN comments_count + ? < 0 THEN 0 ELSE comments_count + ? END", delta, delta))
	return res.RowsAffected > 0, res.Error
}

// escapeLike 用 '!' 作转义符，三种方言写法一致
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
