package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	switch strings.ToLower(g.LogFormat) {
	case "", "json", "text":
	default:
		return newFieldError("Global.LogFormat", "仅支持 json|text")
	}
	if g.MaxAge.DurationValue() < 0 {
		return newFieldError("Global.MaxAge", "不能为负数")
	}
	if strings.TrimSpace(g.LangCookie) == "" {
		return newFieldError("Global.LangCookie", "不能为空")
	}
	if err := validateLangs(g.DefaultLang, g.Langs); err != nil {
		return err
	}
	if g.MaxItemSize <= 0 {
		return newFieldError("Global.MaxItemSize", "必须大于 0")
	}

	switch g.CacheBackend {
	case CacheBackendMemory:
		if g.MaxMemoryCache <= 0 {
			return newFieldError("Global.MaxMemoryCacheSize", "必须大于 0")
		}
	case CacheBackendRedis, CacheBackendTiered:
		if strings.TrimSpace(g.RedisAddr) == "" {
			return newFieldError("Global.RedisAddr", "redis/tiered 后端必须配置")
		}
		if g.RedisDB < 0 {
			return newFieldError("Global.RedisDB", "不能为负数")
		}
		if g.CacheBackend == CacheBackendTiered && g.MaxMemoryCache <= 0 {
			return newFieldError("Global.MaxMemoryCacheSize", "必须大于 0")
		}
	default:
		return newFieldError("Global.CacheBackend", "仅支持 memory|redis|tiered")
	}

	archives := c.ArchiveList()
	if len(archives) == 0 {
		return errors.New("至少需要配置一个归档")
	}

	seen := map[string]struct{}{}
	for i, entry := range archives {
		path := strings.TrimSpace(entry.Path)
		if path == "" {
			return newFieldError(archiveField(i, "Path"), "不能为空")
		}
		if _, exists := seen[path]; exists {
			return newFieldError(archiveField(i, "Path"), "重复")
		}
		seen[path] = struct{}{}
		if strings.HasPrefix(entry.FirstPath, "/") {
			return newFieldError(archiveField(i, "FirstPath"), "必须是归档内的相对路径")
		}
	}

	return nil
}

func validateLangs(defaultLang string, langs []string) error {
	if strings.TrimSpace(defaultLang) == "" {
		return newFieldError("Global.DefaultLang", "不能为空")
	}
	for i, lang := range langs {
		if strings.TrimSpace(lang) == "" || strings.Contains(lang, "/") {
			return newFieldError(fmt.Sprintf("Global.Langs[%d]", i), "非法语言代码")
		}
	}
	return nil
}
