package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ErrLocked 锁被其他实例持有
var ErrLocked = errors.New("cache: lock is held elsewhere")

// 只删除自己持有的锁
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`)

type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewWithClient(rdb *redis.Client) *Cache { return &Cache{RDB: rdb} }

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

// TryLock SET NX PX；拿到锁时返回释放用的 token
func (c *Cache) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.RDB.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (c *Cache) Unlock(ctx context.Context, key, token string) error {
	return unlockScript.Run(ctx, c.RDB, []string{key}, token).Err()
}

// Exclusive 进程内用 singleflight 合并并发调用，跨实例用 redis 锁互斥。
// 锁被别人持有时返回 ErrLocked，fn 不会执行。
func (c *Cache) Exclusive(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	_, err, _ := c.sf.Do(key, func() (any, error) {
		token, ok, err := c.TryLock(ctx, key, ttl)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrLocked
		}
		defer func() { _ = c.Unlock(context.WithoutCancel(ctx), key, token) }()
		return nil, fn(ctx)
	})
	return err
}
