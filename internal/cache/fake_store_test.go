package cache

import (
	"context"
	"sync"
)

// fakeStore 是可注入错误的 map 实现，用于 Client 与 TieredStore 测试。
type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	limit   int
	err     error
	adds    int
	replace int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Get(_ context.Context, key Key) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	v, ok := f.data[key.String()]
	return v, ok, nil
}

func (f *fakeStore) Add(_ context.Context, key Key, value []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds++
	if err := checkSize(value, f.limit); err != nil {
		return false, err
	}
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.data[key.String()]; ok {
		return false, nil
	}
	f.data[key.String()] = append([]byte(nil), value...)
	return true, nil
}

func (f *fakeStore) Replace(_ context.Context, key Key, value []byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replace++
	if err := checkSize(value, f.limit); err != nil {
		return false, err
	}
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.data[key.String()]; !ok {
		return false, nil
	}
	f.data[key.String()] = append([]byte(nil), value...)
	return true, nil
}
