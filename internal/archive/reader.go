package archive

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/zipserve/internal/logging"
	"github.com/any-hub/zipserve/internal/metrics"
)

// ErrNotFound 表示遍历所有归档后仍未找到请求的成员。
var ErrNotFound = errors.New("path not found in any archive")

// Reader 负责从归档集合中读取成员：先查索引，再按集合顺序线性扫描。
type Reader struct {
	set      *Set
	registry *Registry
	logger   *logrus.Logger
	metrics  *metrics.Recorder
}

// NewReader 构造 Reader；logger 为空时丢弃日志，recorder 可为 nil。
func NewReader(set *Set, registry *Registry, logger *logrus.Logger, recorder *metrics.Recorder) *Reader {
	if logger == nil {
		logger = logging.Discard()
	}
	if registry == nil {
		registry = NewRegistry(nil)
	}
	return &Reader{
		set:      set,
		registry: registry,
		logger:   logger,
		metrics:  recorder,
	}
}

// Fetch 读取 path 对应的成员内容。
//
// 索引命中的归档最先尝试；失败后按集合顺序扫描其余归档。打开失败的归档
// 记录日志后跳过，不会使请求失败。全部未命中时返回 ErrNotFound；
// ctx 取消时返回 ctx.Err()，调用方不应据此写入负缓存。
func (r *Reader) Fetch(ctx context.Context, path string) ([]byte, error) {
	indexed, hasIndex := r.set.MapPathToArchive(path)

	if hasIndex {
		if data, ok := r.readFrom(indexed, path); ok {
			r.metrics.ArchiveRead("index")
			return data, nil
		}
	}

	for _, entry := range r.set.entries {
		if hasIndex && entry.ID == indexed {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if data, ok := r.readFrom(entry.ID, path); ok {
			r.metrics.ArchiveRead("scan")
			if hasIndex {
				r.logger.WithFields(logging.ArchiveFields("archive_index_stale", entry.ID, path)).
					WithField("indexed", indexed).
					Debug("member found outside indexed archive")
			}
			return data, nil
		}
	}

	r.metrics.ArchiveRead("miss")
	return nil, ErrNotFound
}

func (r *Reader) readFrom(id, path string) ([]byte, bool) {
	handle, err := r.registry.Open(id)
	if err != nil {
		r.metrics.ArchiveOpenFailed(id)
		r.logger.WithError(err).
			WithFields(logging.ArchiveFields("archive_open", id, "")).
			Error("archive_open_failed")
		return nil, false
	}

	data, err := handle.Read(path)
	if err != nil {
		if !errors.Is(err, ErrMemberNotFound) {
			r.logger.WithError(err).
				WithFields(logging.ArchiveFields("archive_read", id, path)).
				Warn("archive_read_failed")
		}
		return nil, false
	}

	r.logger.WithFields(logging.ArchiveFields("archive_read", id, path)).Debug("member read")
	return data, true
}
