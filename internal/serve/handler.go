package serve

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/zipserve/internal/locale"
	"github.com/any-hub/zipserve/internal/logging"
	"github.com/any-hub/zipserve/internal/metrics"
	"github.com/any-hub/zipserve/internal/server"
)

// Request outcomes used in logs and metrics.
const (
	OutcomeServed           = "served"
	OutcomeServedFallback   = "served_fallback"
	OutcomeNotFound         = "not_found"
	OutcomeRedirect         = "redirect"
	OutcomeIntlRedirect     = "intl_redirect"
	OutcomeMethodNotAllowed = "method_not_allowed"
)

// Handler 串联语言解析、重定向与 Builder，对外暴露 Fiber handler。
type Handler struct {
	resolver   *locale.Resolver
	builder    *Builder
	cookieName string
	logger     *logrus.Logger
	metrics    *metrics.Recorder
}

// NewHandler constructs a content handler sharing the builder's cookie name.
func NewHandler(resolver *locale.Resolver, builder *Builder, logger *logrus.Logger, recorder *metrics.Recorder) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		resolver:   resolver,
		builder:    builder,
		cookieName: builder.opts.CookieName,
		logger:     logger,
		metrics:    recorder,
	}
}

// Handle 处理一次内容请求，只接受 GET 与 HEAD。
func (h *Handler) Handle(c fiber.Ctx) error {
	started := time.Now()
	rawPath := requestPath(c)

	switch c.Method() {
	case fiber.MethodGet, fiber.MethodHead:
	default:
		h.logResult(c, rawPath, locale.Request{}, OutcomeMethodNotAllowed, false, started)
		c.Set(fiber.HeaderAllow, "GET, HEAD")
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "method_not_allowed"})
	}

	req := h.resolver.FromCookie(h.langCookie(c))

	name, redirect, ok := locale.Preprocess(rawPath)
	if !ok {
		h.logResult(c, rawPath, req, OutcomeRedirect, false, started)
		return c.Redirect().Status(fiber.StatusFound).To(redirect)
	}

	req, decision := h.resolver.Classify(name, req)
	if decision == locale.NeedsRedirect {
		query := string(c.Request().URI().QueryString())
		h.logResult(c, name, req, OutcomeIntlRedirect, false, started)
		return c.Redirect().Status(fiber.StatusFound).To(locale.IntlRedirect(name, req.Lang, query))
	}

	ctx := c.Context()
	outcome := OutcomeServed
	result := h.builder.Resolve(ctx, req)
	if result.Kind == RetryWithoutLocale {
		retry := req
		retry.Path = result.RetryPath
		retry.ValidIntl = false
		retry.Remainder = ""
		result = h.builder.Resolve(ctx, retry)
		outcome = OutcomeServedFallback
		if result.Kind == RetryWithoutLocale {
			result = Result{Kind: NotFoundResult, Emission: NotFound()}
		}
	}
	if result.Kind == NotFoundResult {
		outcome = OutcomeNotFound
	}

	h.logResult(c, name, req, outcome, result.CacheHit, started)
	return result.Emission.Apply(c)
}

// langCookie 返回语言 cookie 的值以及请求是否携带该 cookie。
func (h *Handler) langCookie(c fiber.Ctx) (string, bool) {
	var (
		value   string
		present bool
	)
	c.Request().Header.VisitAllCookie(func(key, val []byte) {
		if !present && string(key) == h.cookieName {
			value = string(val)
			present = true
		}
	})
	return value, present
}

func (h *Handler) logResult(c fiber.Ctx, path string, req locale.Request, outcome string, cacheHit bool, started time.Time) {
	h.metrics.Outcome(outcome)

	fields := logging.RequestFields(path, req.Lang, outcome, req.ValidIntl, cacheHit)
	fields["action"] = "serve"
	fields["method"] = c.Method()
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if requestID := server.RequestID(c); requestID != "" {
		fields["request_id"] = requestID
	}
	h.logger.WithFields(fields).Info("serve_complete")
}

func requestPath(c fiber.Ctx) string {
	uri := c.Request().URI()
	if uri == nil {
		return "/"
	}
	pathVal := string(uri.Path())
	if pathVal == "" {
		return "/"
	}
	return pathVal
}
