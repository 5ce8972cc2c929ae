package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"recipe-share-api/internal/core/cache"
	"recipe-share-api/internal/domain"
)

const reconcileLockKey = "recipe-share:reconcile"

// Locker 跨实例互斥；锁被占用时返回 cache.ErrLocked
type Locker interface {
	Exclusive(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

type ReconcileReport struct {
	LikesCounts    int64 `json:"likesCounts"`
	CommentsCounts int64 `json:"commentsCounts"`
	MirrorRestored int64 `json:"mirrorRestored"`
	MirrorPruned   int64 `json:"mirrorPruned"`
	SearchText     int64 `json:"searchText"`
	Skipped        bool  `json:"skipped"`
}

func (r ReconcileReport) Total() int64 {
	return r.LikesCounts + r.CommentsCounts + r.MirrorRestored + r.MirrorPruned + r.SearchText
}

// Reconciler 以 recipe_likes 与 comments 为准修复计数和点赞镜像
type Reconciler struct {
	base
	locker  Locker
	lockTTL time.Duration
}

func NewReconciler(d Deps, locker Locker, lockTTL time.Duration) *Reconciler {
	b := newBase(d, "reconcile")
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	// 整体修复可能比单个请求慢
	b.timeout = lockTTL
	return &Reconciler{base: b, locker: locker, lockTTL: lockTTL}
}

func (r *Reconciler) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var rep ReconcileReport
	run := func(ctx context.Context) error {
		ctx, cancel := r.op(ctx)
		defer cancel()
		return r.store.WithTx(ctx, func(tx domain.Store) error {
			m := tx.Maintenance()
			var err error
			if rep.LikesCounts, err = m.RecountLikes(ctx); err != nil {
				return err
			}
			if rep.CommentsCounts, err = m.RecountComments(ctx); err != nil {
				return err
			}
			if rep.MirrorRestored, err = m.RestoreLikeMirror(ctx); err != nil {
				return err
			}
			if rep.MirrorPruned, err = m.PruneLikeMirror(ctx); err != nil {
				return err
			}
			rep.SearchText, err = m.BackfillSearchText(ctx)
			return err
		})
	}

	var err error
	if r.locker == nil {
		err = run(ctx)
	} else {
		err = r.locker.Exclusive(ctx, reconcileLockKey, r.lockTTL, run)
	}
	if errors.Is(err, cache.ErrLocked) {
		r.log.Debug("reconcile skipped; another instance holds the lock")
		return ReconcileReport{Skipped: true}, nil
	}
	if err != nil {
		return ReconcileReport{}, r.fail("reconcile", err)
	}

	reconcileRepairsTotal.WithLabelValues("likes_count").Add(float64(rep.LikesCounts))
	reconcileRepairsTotal.WithLabelValues("comments_count").Add(float64(rep.CommentsCounts))
	reconcileRepairsTotal.WithLabelValues("mirror_restored").Add(float64(rep.MirrorRestored))
	reconcileRepairsTotal.WithLabelValues("mirror_pruned").Add(float64(rep.MirrorPruned))
	reconcileRepairsTotal.WithLabelValues("search_text").Add(float64(rep.SearchText))
	if rep.Total() > 0 {
		r.log.Warn("reconcile repaired drift",
			zap.Int64("likes_counts", rep.LikesCounts),
			zap.Int64("comments_counts", rep.CommentsCounts),
			zap.Int64("mirror_restored", rep.MirrorRestored),
			zap.Int64("mirror_pruned", rep.MirrorPruned),
			zap.Int64("search_text", rep.SearchText))
	}
	return rep, nil
}

// Run 启动时跑一次，然后按 interval 周期执行，直到 ctx 结束
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if _, err := r.Reconcile(ctx); err != nil && ctx.Err() == nil {
			r.log.Error("reconcile run failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
