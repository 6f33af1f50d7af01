package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions 描述 RedisStore 的连接参数。
type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	Timeout     time.Duration
	MaxItemSize int
}

// RedisStore 通过 SETNX / SET XX 实现 add 与 replace，条目永不过期。
type RedisStore struct {
	rdb         *redis.Client
	maxItemSize int
}

// NewRedisStore 创建 RedisStore；连接是惰性的，需要时调用 Ping 探测。
func NewRedisStore(opts RedisOptions) *RedisStore {
	maxItemSize := opts.MaxItemSize
	if maxItemSize <= 0 {
		maxItemSize = DefaultMaxItemSize
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})
	return &RedisStore{rdb: rdb, maxItemSize: maxItemSize}
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	val, err := r.rdb.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, unavailable(err)
	}
	return val, true, nil
}

// Add implements Store.
func (r *RedisStore) Add(ctx context.Context, key Key, value []byte) (bool, error) {
	if err := checkSize(value, r.maxItemSize); err != nil {
		return false, err
	}
	ok, err := r.rdb.SetNX(ctx, key.String(), value, 0).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return ok, nil
}

// Replace implements Store.
func (r *RedisStore) Replace(ctx context.Context, key Key, value []byte) (bool, error) {
	if err := checkSize(value, r.maxItemSize); err != nil {
		return false, err
	}
	ok, err := r.rdb.SetXX(ctx, key.String(), value, 0).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, unavailable(err)
	}
	return ok, nil
}

// Ping checks the Redis connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
