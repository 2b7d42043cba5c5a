package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 服务全部配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Gallery  GalleryConfig  `mapstructure:"gallery"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port      int     `mapstructure:"port"`
	Mode      string  `mapstructure:"mode"`
	PublicURL string  `mapstructure:"public_url"`
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RealtimeConfig 外部实时存储
type RealtimeConfig struct {
	Driver       string        `mapstructure:"driver"` // redis, sql, memory, none
	Path         string        `mapstructure:"path"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Workers      int           `mapstructure:"workers"`
	QueueSize    int           `mapstructure:"queue_size"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // 0 = 仅依赖客户端自身超时
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres, sqlite
	DSN    string `mapstructure:"dsn"`
}

type SessionConfig struct {
	Secret     string        `mapstructure:"secret"`
	CookieName string        `mapstructure:"cookie_name"`
	TTL        time.Duration `mapstructure:"ttl"`
	IdleEvict  time.Duration `mapstructure:"idle_evict"`
}

type GalleryConfig struct {
	AdminName string `mapstructure:"admin_name"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

// Load 读取 config.yaml（可选）并叠加 PIXELPALS_ 前缀的环境变量
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("PIXELPALS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.public_url", "http://localhost:8080/")
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("realtime.driver", "redis")
	v.SetDefault("realtime.path", "images")
	v.SetDefault("realtime.poll_interval", 500*time.Millisecond)
	v.SetDefault("realtime.workers", 4)
	v.SetDefault("realtime.queue_size", 10000)
	v.SetDefault("realtime.write_timeout", time.Duration(0))

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "pixelpals")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "pixelpals.db")

	v.SetDefault("session.secret", "change-me")
	v.SetDefault("session.cookie_name", "pixelpals_session")
	v.SetDefault("session.ttl", 365*24*time.Hour)
	v.SetDefault("session.idle_evict", 30*time.Minute)

	v.SetDefault("gallery.admin_name", "admin")

	v.SetDefault("sentry.environment", "development")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.service_name", "pixelpals")
	v.SetDefault("tracing.insecure", true)
}
