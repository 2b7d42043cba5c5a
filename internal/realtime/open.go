package realtime

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/pixelpals/config"
	"github.com/d60-Lab/pixelpals/internal/repository"
	"github.com/d60-Lab/pixelpals/pkg/cache"
	"github.com/d60-Lab/pixelpals/pkg/database"
	"github.com/d60-Lab/pixelpals/pkg/logger"
)

// Open 按 realtime.driver 创建外部存储，返回的 close 函数总是非 nil。
// 连接失败不是致命错误：返回 nil store，画廊只展示种子数据。
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	noop := func() {}
	switch cfg.Realtime.Driver {
	case "redis":
		client, err := cache.InitRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Error("redis unavailable, serving seed data", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			return nil, noop, nil
		}
		return NewRedisStore(client, cfg.Redis.Prefix), func() { _ = client.Close() }, nil
	case "sql":
		db, err := database.InitDB(cfg)
		if err != nil {
			logger.Error("database unavailable, serving seed data", zap.String("driver", cfg.Database.Driver), zap.Error(err))
			return nil, noop, nil
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return NewSQLStore(repository.NewDocumentRepository(db), cfg.Realtime.PollInterval), closeDB, nil
	case "memory":
		return NewMemoryStore(), noop, nil
	case "none", "":
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown realtime driver %q", cfg.Realtime.Driver)
	}
}
