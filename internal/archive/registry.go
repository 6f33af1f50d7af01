package archive

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
)

// ErrMemberNotFound 表示归档中不存在请求的成员，属于正常的未命中结果。
var ErrMemberNotFound = errors.New("archive member not found")

// Archive 是一个已打开的归档，按精确名称读取成员。
type Archive interface {
	Read(name string) ([]byte, error)
}

// Opener 根据归档标识打开归档，测试中可替换为内存实现。
type Opener interface {
	Open(id string) (Archive, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(id string) (Archive, error)

// Open makes OpenerFunc satisfy Opener.
func (f OpenerFunc) Open(id string) (Archive, error) {
	return f(id)
}

// Registry 缓存已打开的归档句柄，整个进程复用一份。
// 同一 ID 的并发首次打开只会调用一次 Opener；失败不缓存，下次请求会重试。
type Registry struct {
	opener Opener

	mu      sync.Mutex
	handles map[string]Archive
	opening map[string]*openCall
}

// openCall 合并同一归档的并发打开。
type openCall struct {
	wg      sync.WaitGroup
	archive Archive
	err     error
}

// NewRegistry 创建句柄注册表；opener 为空时使用 ZipOpener。
func NewRegistry(opener Opener) *Registry {
	if opener == nil {
		opener = ZipOpener{}
	}
	return &Registry{
		opener:  opener,
		handles: make(map[string]Archive),
		opening: make(map[string]*openCall),
	}
}

// Open 返回 id 对应的句柄，首次访问时才真正打开。
func (r *Registry) Open(id string) (Archive, error) {
	r.mu.Lock()
	if handle, ok := r.handles[id]; ok {
		r.mu.Unlock()
		return handle, nil
	}
	if c, ok := r.opening[id]; ok {
		r.mu.Unlock()
		c.wg.Wait()
		return c.archive, c.err
	}

	c := &openCall{}
	c.wg.Add(1)
	r.opening[id] = c
	r.mu.Unlock()

	c.archive, c.err = r.opener.Open(id)
	if c.err != nil {
		c.err = fmt.Errorf("open archive %s: %w", id, c.err)
	}

	r.mu.Lock()
	if c.err == nil {
		r.handles[id] = c.archive
	}
	delete(r.opening, id)
	r.mu.Unlock()
	c.wg.Done()

	return c.archive, c.err
}

// Opened 返回已打开的归档 ID（排序后），供诊断接口输出。
func (r *Registry) Opened() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close 关闭所有实现了 io.Closer 的句柄，仅在进程退出时调用。
func (r *Registry) Close() error {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[string]Archive)
	r.mu.Unlock()

	var errs []error
	for id, handle := range handles {
		closer, ok := handle.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close archive %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
