package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-share-api/internal/core/cache"
	"recipe-share-api/internal/domain"
)

func TestReconcileRepairsDrift(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.signup(t, "alice")
	fan := e.signup(t, "bobby")
	r := e.recipe(t, owner, "soup")
	_, err := e.interaction.ToggleLike(ctx, fan.ID, r.ID)
	require.NoError(t, err)
	_, err = e.interaction.AddComment(ctx, fan.ID, r.ID, "nice")
	require.NoError(t, err)

	// 人为制造漂移：计数被改坏，镜像少一行
	require.NoError(t, e.db.Model(&domain.Recipe{}).Where("id = ?", r.ID).
		UpdateColumns(map[string]any{"likes_count": 9, "comments_count": 0, "search_text": ""}).Error)
	require.NoError(t, e.db.Where("user_id = ?", fan.ID).Delete(&domain.LikedRecipe{}).Error)

	mr := miniredis.RunT(t)
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	rec := NewReconciler(e.deps, c, time.Minute)

	rep, err := rec.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, rep.Skipped)
	assert.EqualValues(t, 1, rep.LikesCounts)
	assert.EqualValues(t, 1, rep.CommentsCounts)
	assert.EqualValues(t, 1, rep.MirrorRestored)
	assert.EqualValues(t, 1, rep.SearchText)
	assertLikeInvariant(t, e, r.ID)

	got, err := e.store.Recipes().FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.CommentsCount)
	assert.Equal(t, "soup\nrice\nsalt", got.SearchText)

	// 已一致时不再修改
	rep, err = rec.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, rep.Total())
	assert.False(t, mr.Exists(reconcileLockKey))
}

func TestReconcileSkipsWhenLockHeld(t *testing.T) {
	e := newEnv(t)
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set(reconcileLockKey, "someone-else"))
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	rep, err := NewReconciler(e.deps, c, time.Minute).Reconcile(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.Skipped)

	v, err := mr.Get(reconcileLockKey)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}

func TestReconcileWithoutLocker(t *testing.T) {
	e := newEnv(t)
	rep, err := NewReconciler(e.deps, nil, 0).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rep.Total())
}
