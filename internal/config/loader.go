package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DefaultLangs 是未配置 Langs 时支持的语言集合。
var DefaultLangs = []string{"en", "de", "es", "fr", "it", "ja", "zh-CN", "zh-TW"}

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	if v.IsSet("Archives") && v.IsSet("Archive") {
		return nil, newFieldError("Archives", "不能与 Archive 同时配置")
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		archiveDecodeHook(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	cfg.Archive = cfg.ArchiveList()
	cfg.Archives = nil

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 相对路径以配置文件所在目录为基准，避免依赖进程工作目录。
	baseDir := filepath.Dir(path)
	for i := range cfg.Archive {
		if !filepath.IsAbs(cfg.Archive[i].Path) {
			cfg.Archive[i].Path = filepath.Join(baseDir, cfg.Archive[i].Path)
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 8080)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", "json")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("MaxAge", 600)
	v.SetDefault("Public", true)
	v.SetDefault("DefaultLang", "en")
	v.SetDefault("Langs", DefaultLangs)
	v.SetDefault("LangCookie", "android_developer_pref_lang")
	v.SetDefault("UnknownTypeFallback", false)
	v.SetDefault("CacheBackend", CacheBackendMemory)
	v.SetDefault("MaxItemSize", 1000000)
	v.SetDefault("MaxMemoryCacheSize", 256*1024*1024)
	v.SetDefault("RedisAddr", "127.0.0.1:6379")
	v.SetDefault("RedisDB", 0)
	v.SetDefault("RedisTimeout", "2s")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 8080
	}
	if strings.TrimSpace(g.DefaultLang) == "" {
		g.DefaultLang = "en"
	}
	if len(g.Langs) == 0 {
		g.Langs = append([]string(nil), DefaultLangs...)
	}
	g.CacheBackend = strings.ToLower(strings.TrimSpace(g.CacheBackend))
	if g.CacheBackend == "" {
		g.CacheBackend = CacheBackendMemory
	}
	if g.RedisTimeout.DurationValue() == 0 {
		g.RedisTimeout = Duration(2 * time.Second)
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}

// archiveDecodeHook 允许 Archive 条目写成字符串或 [path, firstPath] 数组，
// 与表格写法 {Path, FirstPath} 等价。
func archiveDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(ArchiveConfig{})

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return ArchiveConfig{Path: v}, nil
		case []interface{}:
			if len(v) == 0 || len(v) > 2 {
				return nil, fmt.Errorf("归档条目需要 1-2 个元素，得到 %d", len(v))
			}
			entry := ArchiveConfig{}
			path, ok := v[0].(string)
			if !ok {
				return nil, fmt.Errorf("归档路径必须为字符串: %v", v[0])
			}
			entry.Path = path
			if len(v) == 2 {
				first, ok := v[1].(string)
				if !ok {
					return nil, fmt.Errorf("FirstPath 必须为字符串: %v", v[1])
				}
				entry.FirstPath = first
			}
			return entry, nil
		default:
			return data, nil
		}
	}
}
