package serve

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/zipserve/internal/archive"
	"github.com/any-hub/zipserve/internal/cache"
	"github.com/any-hub/zipserve/internal/locale"
	"github.com/any-hub/zipserve/internal/logging"
)

// DefaultCookieName 是语言偏好 cookie 的默认名称。
const DefaultCookieName = "android_developer_pref_lang"

// ContentReader 从归档集合读取成员，archive.Reader 满足该接口。
type ContentReader interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// ContentCache 是正向缓存与负缓存的组合，cache.Client 满足该接口。
type ContentCache interface {
	Get(ctx context.Context, path string) ([]byte, bool)
	GetNegative(ctx context.Context, path string) bool
	Put(ctx context.Context, path string, data []byte) error
	PutNegative(ctx context.Context, path string)
}

// Options 在构造时固定，之后不可修改。
type Options struct {
	MaxAge              time.Duration
	Public              bool
	CookieName          string
	UnknownTypeFallback bool
	TypeGuesser         TypeGuesser
	Now                 func() time.Time
}

// ResultKind 区分 Resolve 的三种结果。
type ResultKind int

const (
	// Served 表示已生成响应（包括未知类型的空响应）。
	Served ResultKind = iota
	// NotFoundResult 表示应返回 404。
	NotFoundResult
	// RetryWithoutLocale 表示 intl 路径未命中，应以 RetryPath 再试一次。
	RetryWithoutLocale
)

func (k ResultKind) String() string {
	switch k {
	case Served:
		return "served"
	case NotFoundResult:
		return "not_found"
	case RetryWithoutLocale:
		return "retry_without_locale"
	default:
		return "unknown"
	}
}

// Result 是 Resolve 的输出。
type Result struct {
	Kind      ResultKind
	Emission  *Emission
	RetryPath string
	CacheHit  bool
}

// Builder 负责单次路径解析：缓存、负缓存、归档依次查找，并生成响应描述。
type Builder struct {
	cache  ContentCache
	reader ContentReader
	opts   Options
	logger *logrus.Logger
}

// NewBuilder 构造 Builder，未设置的选项使用默认值。
func NewBuilder(c ContentCache, reader ContentReader, opts Options, logger *logrus.Logger) *Builder {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TypeGuesser == nil {
		opts.TypeGuesser = GuessType
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Builder{cache: c, reader: reader, opts: opts, logger: logger}
}

// Resolve 查找 req.Path 对应的内容。
//
// 负缓存命中或所有归档都未命中时返回 NotFoundResult；对有效 intl 请求的未命中
// 不写负缓存，而是返回 RetryWithoutLocale 让调用方以 Remainder 重试。
func (b *Builder) Resolve(ctx context.Context, req locale.Request) Result {
	name := req.Path

	if data, ok := b.cache.Get(ctx, name); ok {
		return Result{Kind: Served, Emission: b.emit(name, req, data), CacheHit: true}
	}
	if b.cache.GetNegative(ctx, name) {
		return Result{Kind: NotFoundResult, Emission: NotFound(), CacheHit: true}
	}

	data, err := b.reader.Fetch(ctx, name)
	switch {
	case err == nil:
		if putErr := b.cache.Put(ctx, name, data); putErr != nil && !errors.Is(putErr, cache.ErrValueTooLarge) {
			b.logger.WithError(putErr).WithField("path", name).Warn("cache_put_failed")
		}
		return Result{Kind: Served, Emission: b.emit(name, req, data)}
	case errors.Is(err, archive.ErrNotFound):
		if req.ValidIntl {
			return Result{Kind: RetryWithoutLocale, RetryPath: req.Remainder}
		}
		b.cache.PutNegative(ctx, name)
		return Result{Kind: NotFoundResult, Emission: NotFound()}
	default:
		// 请求被取消或超时：不写负缓存。
		b.logger.WithError(err).WithField("path", name).Debug("archive_fetch_aborted")
		return Result{Kind: NotFoundResult, Emission: NotFound()}
	}
}

func (b *Builder) emit(name string, req locale.Request, data []byte) *Emission {
	e := &Emission{Status: fiber.StatusOK}
	if req.ResetCookie {
		e.Cookie = b.langCookie(req.Lang)
	}

	revalidate := strings.Contains(name, ".html")
	if revalidate {
		e.Vary = "Cookie"
	}

	contentType, writeBody := b.resolveContentType(name)
	if !writeBody {
		return e
	}
	e.ContentType = contentType
	e.CacheControl = b.cacheControl(revalidate)
	e.Body = data
	return e
}
