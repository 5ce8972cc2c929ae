package repo

import (
	"context"

	"gorm.io/gorm"

	"recipe-share-api/internal/domain"
)

// 以 recipe_likes / comments 为准；每条语句都只改有偏差的行
const (
	sqlRecountLikes = `UPDATE recipes SET likes_count =
  (SELECT COUNT(*) FROM recipe_likes l WHERE l.recipe_id = recipes.id)
WHERE likes_count <> (SELECT COUNT(*) FROM recipe_likes l WHERE l.recipe_id = recipes.id)`

	sqlRecountComments = `UPDATE recipes SET comments_count =
  (SELECT COUNT(*) FROM comments c WHERE c.recipe_id = recipes.id)
WHERE comments_count <> (SELECT COUNT(*) FROM comments c WHERE c.recipe_id = recipes.id)`

	sqlRestoreMirror = `INSERT INTO user_liked_recipes (user_id, recipe_id, created_at)
SELECT l.user_id, l.recipe_id, l.created_at FROM recipe_likes l
WHERE NOT EXISTS (
  SELECT 1 FROM user_liked_recipes m WHERE m.user_id = l.user_id AND m.recipe_id = l.recipe_id)`

	sqlPruneMirror = `DELETE FROM user_liked_recipes
WHERE NOT EXISTS (
  SELECT 1 FROM recipe_likes l
  WHERE l.user_id = user_liked_recipes.user_id AND l.recipe_id = user_liked_recipes.recipe_id)`
)

type MaintenanceRepo struct{ db *gorm.DB }

func NewMaintenanceRepo(db *gorm.DB) *MaintenanceRepo { return &MaintenanceRepo{db: db} }

func (r *MaintenanceRepo) RecountLikes(ctx context.Context) (int64, error) {
	return r.exec(ctx, sqlRecountLikes)
}

func (r *MaintenanceRepo) RecountComments(ctx context.Context) (int64, error) {
	return r.exec(ctx, sqlRecountComments)
}

// RestoreLikeMirror 补齐 recipe_likes 有而 user_liked_recipes 缺的行
func (r *MaintenanceRepo) RestoreLikeMirror(ctx context.Context) (int64, error) {
	return r.exec(ctx, sqlRestoreMirror)
}

// PruneLikeMirror 删掉 recipe_likes 里已不存在的镜像行
func (r *MaintenanceRepo) PruneLikeMirror(ctx context.Context) (int64, error) {
	return r.exec(ctx, sqlPruneMirror)
}

// BackfillSearchText 为搜索列为空的旧行补写搜索列
func (r *MaintenanceRepo) BackfillSearchText(ctx context.Context) (int64, error) {
	var n int64
	var batch []domain.Recipe
	err := r.db.WithContext(ctx).
		Select("id", "title", "ingredients").
		Where("search_text = ''").
		FindInBatches(&batch, 200, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				res := r.db.WithContext(ctx).Model(&domain.Recipe{}).Where("id = ?", batch[i].ID).
					UpdateColumn("search_text", batch[i].SearchKey())
				if res.Error != nil {
					return res.Error
				}
				n += res.RowsAffected
			}
			return nil
		}).Error
	return n, err
}

func (r *MaintenanceRepo) exec(ctx context.Context, sql string) (int64, error) {
	res := r.db.WithContext(ctx).Exec(sql)
	return res.RowsAffected, res.Error
}
