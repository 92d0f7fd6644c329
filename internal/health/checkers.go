package health

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/estate-admin-backend/internal/storage"
)

type CheckFunc func(ctx context.Context) error

type namedChecker struct {
	name string
	fn   CheckFunc
}

// NewChecker adapts a plain error-returning probe.
func NewChecker(name string, fn CheckFunc) Checker {
	return namedChecker{name: name, fn: fn}
}

func (c namedChecker) Check(ctx context.Context) CheckResult {
	if err := c.fn(ctx); err != nil {
		return CheckResult{Name: c.name, Healthy: false, Error: err.Error()}
	}
	return CheckResult{Name: c.name, Healthy: true}
}

func DBChecker(db *gorm.DB) Checker {
	return NewChecker("db", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}

func RedisChecker(client redis.UniversalClient) Checker {
	return NewChecker("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

func StorageChecker(store storage.ObjectStore) Checker {
	return NewChecker("object_store", store.Ping)
}
