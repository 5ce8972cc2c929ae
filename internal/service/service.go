// Package service 业务编排：校验、鉴权、事务与副作用。
// 对外只返回 domain.Error，原始存储错误只进日志。
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"recipe-share-api/internal/core/auth"
	"recipe-share-api/internal/domain"
	"recipe-share-api/internal/storage/image"
)

const DefaultOpTimeout = 10 * time.Second

type Deps struct {
	Store  domain.Store
	Images *image.Service
	JWT    *auth.JWTer
	// IsAdmin 判断邮箱是否为管理员；nil 表示没有管理员
	IsAdmin   func(email string) bool
	Log       *zap.Logger
	OpTimeout time.Duration
}

type base struct {
	store   domain.Store
	log     *zap.Logger
	timeout time.Duration
}

func newBase(d Deps, name string) base {
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}
	t := d.OpTimeout
	if t <= 0 {
		t = DefaultOpTimeout
	}
	return base{store: d.Store, log: l.Named(name), timeout: t}
}

// op 每个存储操作都带上限时
func (b base) op(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

// fail 业务错误原样返回，其余收敛为 Internal
func (b base) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		if de.Kind == domain.KindInternal {
			b.log.Error(op, zap.String("msg", de.Msg), zap.Error(de.Err))
		}
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		b.log.Error(op+" timed out", zap.Error(err))
		return domain.Internal("request timed out", err)
	}
	b.log.Error(op+" failed", zap.Error(err))
	return domain.Internal("Internal Server Error", err)
}

// withAuthors 把 createdBy 展开成公开投影
func withAuthors(ctx context.Context, users domain.UserRepository, recipes []domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]string, 0, len(recipes))
	for i := range recipes {
		ids = append(ids, recipes[i].CreatedBy)
	}
	m, err := users.PublicByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range recipes {
		if p, ok := m[recipes[i].CreatedBy]; ok {
			recipes[i].Author = &p
		}
	}
	return nil
}

func withCommentAuthors(ctx context.Context, users domain.UserRepository, comments []domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	ids := make([]string, 0, len(comments))
	for i := range comments {
		ids = append(ids, comments[i].UserID)
	}
	m, err := users.PublicByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range comments {
		if p, ok := m[comments[i].UserID]; ok {
			comments[i].Author = &p
		}
	}
	return nil
}

// mustUser 用户不存在（含已封禁）返回 NotFound
func mustUser(ctx context.Context, users domain.UserRepository, id string) (*domain.User, error) {
	u, err := users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}
	return u, nil
}

func mustRecipe(ctx context.Context, recipes domain.RecipeRepository, id string) (*domain.Recipe, error) {
	r, err := recipes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound("Recipe not found")
	}
	return r, nil
}
