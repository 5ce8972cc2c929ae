package service

import (
	"context"

	"go.uber.org/zap"

	"recipe-share-api/internal/domain"
)

type UserList struct {
	Total int64         `json:"total"`
	Items []domain.User `json:"items"`
}

// UserService 管理端用户操作
type UserService struct{ base }

func NewUserService(d Deps) *UserService { return &UserService{base: newBase(d, "user")} }

func (s *UserService) List(ctx context.Context, q domain.UserListQuery) (UserList, error) {
	if q.Limit <= 0 || q.Limit > domain.MaxPageSize {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	items, total, err := s.store.Users().List(ctx, q)
	if err != nil {
		return UserList{}, s.fail("list users", err)
	}
	if items == nil {
		items = []domain.User{}
	}
	return UserList{Total: total, Items: items}, nil
}

// Ban 软删并撤回该用户的全部点赞（双边 + likesCount），与公开投影保持一致；
// 已封禁的用户无法再登录
func (s *UserService) Ban(ctx context.Context, rawID string) (string, error) {
	id, err := domain.ParseID(rawID, "user")
	if err != nil {
		return "", err
	}
	ctx, cancel := s.op(ctx)
	defer cancel()

	var withdrawn int
	err = s.store.WithTx(ctx, func(tx domain.Store) error {
		ok, err := tx.Users().SoftDelete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("User not found")
		}
		liked, err := tx.Recipes().RecipesLikedBy(ctx, id)
		if err != nil {
			return err
		}
		for _, rid := range liked {
			removed, err := tx.Recipes().RemoveLike(ctx, rid, id)
			if err != nil {
				return err
			}
			if _, err := tx.Users().RemoveLikedRecipe(ctx, id, rid); err != nil {
				return err
			}
			if removed {
				withdrawn++
			}
		}
		return nil
	})
	if err != nil {
		return "", s.fail("ban user", err)
	}
	s.log.Info("user banned", zap.String("user", id), zap.Int("likes_withdrawn", withdrawn))
	return id, nil
}
