package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/d60-Lab/pixelpals/config"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop()
)

// Init 按配置构建全局 logger
func Init(cfg config.LogConfig) error {
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return err
		}
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	l, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// Set 替换全局 logger（测试中常用 zaptest / observer）
func Set(l *zap.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
}

// L 返回当前全局 logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// Sync 刷新缓冲
func Sync() { _ = L().Sync() }
