// Package testhelpers 测试用的数据库与夹具。
package testhelpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"recipe-share-api/internal/core/database"
	"recipe-share-api/internal/repo"
)

// SetupTestDatabase 每个测试一个独立的内存 sqlite 库，已完成迁移。
// 单连接：事务内只能使用事务句柄。
func SetupTestDatabase(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared&_busy_timeout=5000",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	}, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, repo.Models()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupTestStore 同上，直接返回 repo.Store
func SetupTestStore(t testing.TB) (*repo.Store, *gorm.DB) {
	t.Helper()
	db := SetupTestDatabase(t)
	return repo.NewStore(db), db
}
