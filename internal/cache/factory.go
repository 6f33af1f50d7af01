package cache

import (
	"fmt"
	"io"

	"github.com/any-hub/zipserve/internal/config"
)

// ClosableStore is a Store that owns background resources.
type ClosableStore interface {
	Store
	io.Closer
}

// NewFromConfig 根据 CacheBackend 构造对应的 Store。
func NewFromConfig(cfg config.GlobalConfig) (ClosableStore, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendMemory, "":
		return NewMemoryStore(cfg.MaxMemoryCache, cfg.MaxItemSize)
	case config.CacheBackendRedis:
		return NewRedisStore(redisOptions(cfg)), nil
	case config.CacheBackendTiered:
		l1, err := NewMemoryStore(cfg.MaxMemoryCache, cfg.MaxItemSize)
		if err != nil {
			return nil, err
		}
		return NewTieredStore(l1, NewRedisStore(redisOptions(cfg))), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.CacheBackend)
	}
}

func redisOptions(cfg config.GlobalConfig) RedisOptions {
	return RedisOptions{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		Timeout:     cfg.RedisTimeout.DurationValue(),
		MaxItemSize: cfg.MaxItemSize,
	}
}
