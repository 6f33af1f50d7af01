package cache

import (
	"context"
	"errors"
)

// Store 是缓存后端的最小契约，语义与 memcache 的 get/add/replace 对应。
// 所有实现对单个 key 的操作都是原子的；并发写入时以最后一次为准。
type Store interface {
	// Get 返回 key 对应的值；不存在时 ok 为 false 且 err 为 nil。
	Get(ctx context.Context, key Key) (value []byte, ok bool, err error)

	// Add 仅在 key 不存在时写入，返回是否写入。
	Add(ctx context.Context, key Key, value []byte) (bool, error)

	// Replace 仅在 key 已存在时覆盖，返回是否写入。
	Replace(ctx context.Context, key Key, value []byte) (bool, error)
}

var (
	// ErrValueTooLarge 表示值超过后端允许的单条上限，调用方应照常返回内容。
	ErrValueTooLarge = errors.New("cache value too large")

	// ErrStoreUnavailable 包装后端连接或超时类错误，调用方按未命中处理。
	ErrStoreUnavailable = errors.New("cache store unavailable")
)

// Kind 区分正向缓存与负缓存。
type Kind int

const (
	// Positive 缓存归档成员的内容。
	Positive Kind = iota
	// Negative 记录所有归档都不存在的路径。
	Negative
)

// Key prefixes stored in the backend.
const (
	positivePrefix = "cache://"
	negativePrefix = "noncache://"
)

// NegativeSentinel is the value written for negative entries.
var NegativeSentinel = []byte("-1")

// Key 唯一定位一个缓存条目。
type Key struct {
	Kind Kind
	Path string
}

// PositiveKey returns the content key for path.
func PositiveKey(path string) Key {
	return Key{Kind: Positive, Path: path}
}

// NegativeKey returns the not-found key for path.
func NegativeKey(path string) Key {
	return Key{Kind: Negative, Path: path}
}

// String 渲染为后端使用的字符串形式，例如 "cache://guide/index.html"。
func (k Key) String() string {
	if k.Kind == Negative {
		return negativePrefix + k.Path
	}
	return positivePrefix + k.Path
}

func checkSize(value []byte, limit int) error {
	if limit > 0 && len(value) > limit {
		return ErrValueTooLarge
	}
	return nil
}
