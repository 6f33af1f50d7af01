package cache

import (
	"context"
	"errors"
)

// TieredStore 以 MemoryStore 作为 L1、RedisStore（或任意 Store）作为 L2。
// 读取先查 L1，L2 命中后回填 L1；写入以 L2 的结果为准，成功后再写 L1。
type TieredStore struct {
	l1 *MemoryStore
	l2 Store
}

// NewTieredStore combines an in-process cache with a shared backend.
func NewTieredStore(l1 *MemoryStore, l2 Store) *TieredStore {
	return &TieredStore{l1: l1, l2: l2}
}

// Get implements Store.
func (t *TieredStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	if v, ok, _ := t.l1.Get(ctx, key); ok {
		return v, true, nil
	}
	v, ok, err := t.l2.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	t.l1.store(key, v)
	return v, true, nil
}

// Add implements Store.
func (t *TieredStore) Add(ctx context.Context, key Key, value []byte) (bool, error) {
	ok, err := t.l2.Add(ctx, key, value)
	if err != nil {
		if errors.Is(err, ErrValueTooLarge) {
			return false, err
		}
		// L2 不可用时只写 L1。
		return t.l1.Add(ctx, key, value)
	}
	if ok {
		t.l1.store(key, value)
	}
	return ok, nil
}

// Replace implements Store.
func (t *TieredStore) Replace(ctx context.Context, key Key, value []byte) (bool, error) {
	ok, err := t.l2.Replace(ctx, key, value)
	if err != nil {
		if errors.Is(err, ErrValueTooLarge) {
			return false, err
		}
		return t.l1.Replace(ctx, key, value)
	}
	if ok {
		t.l1.store(key, value)
	}
	return ok, nil
}

// Close closes both tiers.
func (t *TieredStore) Close() error {
	var errs []error
	if err := t.l1.Close(); err != nil {
		errs = append(errs, err)
	}
	if closer, ok := t.l2.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
