package serve

import (
	"mime"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

const (
	contentTypeIcon   = "image/x-icon"
	contentTypeBinary = "application/octet-stream"
	contentTypeHTML   = "text/html; charset=utf-8"

	cookieLifetime = 10 * 365 * 24 * time.Hour
)

const notFoundBody = "<html><head><title>404: Not Found</title></head>" +
	"<body><b><h2>Error 404</h2><br/>File not found</b></body></html>"

// TypeGuesser 根据成员名推断 Content-Type，无法识别时返回空串。
type TypeGuesser func(name string) string

// GuessType 使用扩展名表推断类型。
func GuessType(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(ext)
}

// Emission 描述一次要写出的响应，构建与写出分离便于测试。
type Emission struct {
	Status       int
	ContentType  string
	CacheControl string
	Vary         string
	Cookie       *fiber.Cookie
	Body         []byte
}

// Apply 将 Emission 写入 Fiber 上下文。
func (e *Emission) Apply(c fiber.Ctx) error {
	if e.Cookie != nil {
		c.Cookie(e.Cookie)
	}
	if e.Vary != "" {
		c.Set(fiber.HeaderVary, e.Vary)
	}
	if e.CacheControl != "" {
		c.Set(fiber.HeaderCacheControl, e.CacheControl)
	}
	if e.ContentType != "" {
		c.Set(fiber.HeaderContentType, e.ContentType)
	} else {
		c.Response().Header.SetNoDefaultContentType(true)
	}
	c.Status(e.Status)
	if len(e.Body) == 0 {
		return nil
	}
	return c.Send(e.Body)
}

// resolveContentType 返回 name 的类型以及是否应写出正文。
func (b *Builder) resolveContentType(name string) (string, bool) {
	if ct := b.opts.TypeGuesser(name); ct != "" {
		return ct, true
	}
	switch {
	case name == "favicon.ico":
		return contentTypeIcon, true
	case strings.HasSuffix(name, ".psd"):
		return contentTypeBinary, true
	case b.opts.UnknownTypeFallback:
		return contentTypeBinary, true
	default:
		return "", false
	}
}

// cacheControl 按 public、max-age、must-revalidate 的顺序拼接。
func (b *Builder) cacheControl(revalidate bool) string {
	parts := make([]string, 0, 3)
	if b.opts.Public {
		parts = append(parts, "public")
	}
	parts = append(parts, "max-age="+strconv.Itoa(int(b.opts.MaxAge/time.Second)))
	if revalidate {
		parts = append(parts, "must-revalidate")
	}
	return strings.Join(parts, ", ")
}

func (b *Builder) langCookie(lang string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:    b.opts.CookieName,
		Value:   lang,
		Path:    "/",
		Expires: b.opts.Now().Add(cookieLifetime),
	}
}

// NotFound 返回固定的 404 页面。
func NotFound() *Emission {
	return &Emission{
		Status:      fiber.StatusNotFound,
		ContentType: contentTypeHTML,
		Body:        []byte(notFoundBody),
	}
}
