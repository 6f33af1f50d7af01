package cache

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
)

// DefaultMaxItemSize 与 memcache 默认的单条上限一致。
const DefaultMaxItemSize = 1000000

// MemoryStore 是基于 ristretto 的进程内缓存。成本按字节计算，
// 总量超过 maxCost 时由 ristretto 负责淘汰。
type MemoryStore struct {
	rc          *ristretto.Cache[string, []byte]
	maxItemSize int

	// ristretto 本身没有 add/replace，需要在锁内完成 check-then-set。
	mu sync.Mutex
}

// NewMemoryStore 创建内存缓存；maxItemSize <= 0 时使用 DefaultMaxItemSize。
func NewMemoryStore(maxCost int64, maxItemSize int) (*MemoryStore, error) {
	if maxCost <= 0 {
		return nil, fmt.Errorf("memory cache: max cost must be positive, got %d", maxCost)
	}
	if maxItemSize <= 0 {
		maxItemSize = DefaultMaxItemSize
	}
	// 按平均 1KB 条目估算计数器数量。
	counters := maxCost / 1024 * 10
	if counters < 1000 {
		counters = 1000
	}
	rc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        counters,
		MaxCost:            maxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryStore{rc: rc, maxItemSize: maxItemSize}, nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key Key) ([]byte, bool, error) {
	v, ok := m.rc.Get(key.String())
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

// Add implements Store.
func (m *MemoryStore) Add(_ context.Context, key Key, value []byte) (bool, error) {
	if err := checkSize(value, m.maxItemSize); err != nil {
		return false, err
	}
	k := key.String()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rc.Get(k); exists {
		return false, nil
	}
	return m.set(k, value), nil
}

// Replace implements Store.
func (m *MemoryStore) Replace(_ context.Context, key Key, value []byte) (bool, error) {
	if err := checkSize(value, m.maxItemSize); err != nil {
		return false, err
	}
	k := key.String()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rc.Get(k); !exists {
		return false, nil
	}
	return m.set(k, value), nil
}

// store 无条件写入，供 TieredStore 回填 L1 使用。
func (m *MemoryStore) store(key Key, value []byte) {
	if checkSize(value, m.maxItemSize) != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key.String(), value)
}

// set 需在持有 mu 时调用。Wait 保证写入对随后的 Get 可见。
func (m *MemoryStore) set(k string, value []byte) bool {
	ok := m.rc.Set(k, bytes.Clone(value), int64(len(value)))
	m.rc.Wait()
	return ok
}

// Close releases ristretto's background goroutines.
func (m *MemoryStore) Close() error {
	m.rc.Close()
	return nil
}
