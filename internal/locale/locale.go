// Package locale 解析请求的语言偏好：读取语言 cookie、规范化请求路径，
// 并决定请求是直接处理、按无效 intl 处理，还是重定向到 /intl/<lang>/ 下。
package locale

import (
	"strings"
)

// IntlSegment is the first path segment of localised content.
const IntlSegment = "intl"

// Decision 是 Classify 的结果。
type Decision int

const (
	// Clean 表示直接按请求路径处理。
	Clean Decision = iota
	// InvalidIntl 表示 intl/<lang> 中的语言不受支持，直接处理，最终通常为 404。
	InvalidIntl
	// NeedsRedirect 表示应 302 到 /intl/<lang>/<path>。
	NeedsRedirect
)

func (d Decision) String() string {
	switch d {
	case Clean:
		return "clean"
	case InvalidIntl:
		return "invalid_intl"
	case NeedsRedirect:
		return "needs_redirect"
	default:
		return "unknown"
	}
}

// Request 汇总一次请求在语言维度上的上下文。
type Request struct {
	// Lang 是生效的语言：cookie 值、默认语言或 URL 中的语言。
	Lang string
	// FromURL 为 true 表示 Lang 来自 intl/<lang>/ 路径。
	FromURL bool
	// ResetCookie 为 true 时响应需要写回语言 cookie。
	ResetCookie bool
	// ValidIntl 表示路径形如 intl/<受支持语言>/...。
	ValidIntl bool
	// Path 是去掉前导 / 的规范化路径。
	Path string
	// Remainder 是 intl/<lang>/ 之后的部分，仅 ValidIntl 时有意义。
	Remainder string
}

// Resolver holds the language configuration. It is immutable after construction.
type Resolver struct {
	DefaultLang string
	Langs       []string

	supported map[string]struct{}
}

// NewResolver builds a Resolver for the given default and supported languages.
func NewResolver(defaultLang string, langs []string) *Resolver {
	supported := make(map[string]struct{}, len(langs))
	for _, lang := range langs {
		supported[lang] = struct{}{}
	}
	return &Resolver{
		DefaultLang: defaultLang,
		Langs:       append([]string(nil), langs...),
		supported:   supported,
	}
}

// Supported reports whether lang may appear after intl/.
func (r *Resolver) Supported(lang string) bool {
	_, ok := r.supported[lang]
	return ok
}

// FromCookie 根据 cookie 得到初始语言；没有 cookie 时使用默认语言并要求写回 cookie。
// 存在但为空的 cookie 原样保留。
func (r *Resolver) FromCookie(value string, present bool) Request {
	if !present {
		return Request{Lang: r.DefaultLang, ResetCookie: true}
	}
	return Request{Lang: value}
}

// Preprocess 规范化请求路径。最后一段不含 '.' 时视为目录并补 '/'；
// 目录或空路径返回 ok=false 以及应重定向到的 index.html 地址。
func Preprocess(path string) (name string, redirect string, ok bool) {
	name = strings.TrimPrefix(path, "/")

	if slash := strings.LastIndexByte(name, '/'); slash != len(name)-1 {
		if !strings.Contains(name[slash+1:], ".") {
			name += "/"
		}
	}

	if name == "" || strings.HasSuffix(name, "/") {
		return name, "/" + name + "index.html", false
	}
	return name, "", true
}

// Classify 根据规范化路径补全 req，并给出处理方式。
func (r *Resolver) Classify(name string, req Request) (Request, Decision) {
	req.Path = name
	req.ValidIntl = false
	req.Remainder = ""

	sections := strings.SplitN(name, "/", 3)
	isIntl := len(sections) > 1 && sections[0] == IntlSegment
	if isIntl && r.Supported(sections[1]) {
		req.ValidIntl = true
		if len(sections) == 3 {
			req.Remainder = sections[2]
		}
		if req.Lang != sections[1] {
			req.Lang = sections[1]
			req.ResetCookie = true
		}
		req.FromURL = true
	}

	switch {
	case r.isClean(name, req):
		return req, Clean
	case isIntl:
		return req, InvalidIntl
	default:
		return req, NeedsRedirect
	}
}

func (r *Resolver) isClean(name string, req Request) bool {
	return req.Lang == r.DefaultLang ||
		req.ValidIntl ||
		!strings.Contains(name, ".html") ||
		req.Lang == ""
}

// IntlRedirect 构造 /intl/<lang>/<name> 重定向地址；query 为空时不带 '?'。
func IntlRedirect(name, lang, query string) string {
	uri := "/" + IntlSegment + "/" + lang + "/" + name
	if query != "" {
		uri += "?" + query
	}
	return uri
}
