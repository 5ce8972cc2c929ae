package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"recipe-share-api/internal/domain"
)

type CommentRepo struct{ db *gorm.DB }

func NewCommentRepo(db *gorm.DB) *CommentRepo { return &CommentRepo{db: db} }

func (r *CommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	if err := checkModel(c); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CommentRepo) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Comment{})
	return res.RowsAffected > 0, res.Error
}

// ListByRecipe 新的在前
func (r *CommentRepo) ListByRecipe(ctx context.Context, recipeID string) ([]domain.Comment, error) {
	var out []domain.Comment
	err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("created_at desc").Order("id desc").
		Find(&out).Error
	return out, err
}
