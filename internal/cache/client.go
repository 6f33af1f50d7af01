package cache

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/zipserve/internal/logging"
	"github.com/any-hub/zipserve/internal/metrics"
)

// Client 在 Store 之上实现正向缓存与负缓存两层，供响应构建器使用。
// Get 类操作遇到后端错误时记录日志并按未命中处理，不会让请求失败。
type Client struct {
	store   Store
	logger  *logrus.Logger
	metrics *metrics.Recorder
}

// NewClient 构造 Client；logger 为空时丢弃日志，recorder 可为 nil。
func NewClient(store Store, logger *logrus.Logger, recorder *metrics.Recorder) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{store: store, logger: logger, metrics: recorder}
}

// Get 查询正向缓存。
func (c *Client) Get(ctx context.Context, path string) ([]byte, bool) {
	data, ok := c.lookup(ctx, PositiveKey(path))
	c.metrics.CacheLookup(metrics.TierPositive, ok)
	return data, ok
}

// GetNegative 报告 path 是否已被记录为不存在。
func (c *Client) GetNegative(ctx context.Context, path string) bool {
	_, ok := c.lookup(ctx, NegativeKey(path))
	c.metrics.CacheLookup(metrics.TierNegative, ok)
	return ok
}

// Put 写入正向缓存：先 Add，未写入（已存在）时再 Replace。
// 超过单条上限时记录 warn 并返回 ErrValueTooLarge，调用方仍应返回内容。
func (c *Client) Put(ctx context.Context, path string, data []byte) error {
	key := PositiveKey(path)
	stored, err := c.store.Add(ctx, key, data)
	if err == nil && !stored {
		stored, err = c.store.Replace(ctx, key, data)
	}

	switch {
	case errors.Is(err, ErrValueTooLarge):
		c.metrics.CacheWrite(metrics.TierPositive, "too_large")
		c.logger.WithFields(logrus.Fields{
			"action": "cache_put",
			"key":    key.String(),
			"size":   len(data),
		}).Warn("cache_value_too_large")
		return ErrValueTooLarge
	case err != nil:
		c.metrics.CacheWrite(metrics.TierPositive, "error")
		c.logger.WithError(err).WithFields(logrus.Fields{
			"action": "cache_put",
			"key":    key.String(),
		}).Warn("cache_put_failed")
		return nil
	case !stored:
		// add 与 replace 都未写入：条目在两次调用之间被淘汰。
		c.metrics.CacheWrite(metrics.TierPositive, "skipped")
		return nil
	default:
		c.metrics.CacheWrite(metrics.TierPositive, "stored")
		return nil
	}
}

// PutNegative 记录 path 不存在。失败只记 debug 日志。
func (c *Client) PutNegative(ctx context.Context, path string) {
	key := NegativeKey(path)
	stored, err := c.store.Add(ctx, key, NegativeSentinel)
	switch {
	case err != nil:
		c.metrics.CacheWrite(metrics.TierNegative, "error")
		c.logger.WithError(err).WithFields(logrus.Fields{
			"action": "cache_put_negative",
			"key":    key.String(),
		}).Debug("negative_cache_write_failed")
	case stored:
		c.metrics.CacheWrite(metrics.TierNegative, "stored")
	default:
		c.metrics.CacheWrite(metrics.TierNegative, "exists")
	}
}

func (c *Client) lookup(ctx context.Context, key Key) ([]byte, bool) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"action": "cache_get",
			"key":    key.String(),
		}).Warn("cache_get_failed")
		return nil, false
	}
	return data, ok
}
