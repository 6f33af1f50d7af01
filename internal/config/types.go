package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// Seconds 返回整秒数，Cache-Control 的 max-age 只接受整数。
func (d Duration) Seconds() int {
	return int(time.Duration(d) / time.Second)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// Cache backends understood by CacheBackend.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendTiered = "tiered"
)

// GlobalConfig 描述全局运行时行为：监听端口、日志、客户端缓存头以及缓存后端。
type GlobalConfig struct {
	ListenPort    int    `mapstructure:"ListenPort"`
	LogLevel      string `mapstructure:"LogLevel"`
	LogFormat     string `mapstructure:"LogFormat"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`

	// MaxAge/Public 决定响应中的 Cache-Control，构造后不再修改。
	MaxAge Duration `mapstructure:"MaxAge"`
	Public bool     `mapstructure:"Public"`

	DefaultLang string   `mapstructure:"DefaultLang"`
	Langs       []string `mapstructure:"Langs"`
	LangCookie  string   `mapstructure:"LangCookie"`
	// UnknownTypeFallback 为 true 时，无法识别类型的内容按 application/octet-stream 输出，
	// 否则保持旧行为：200 + 空正文。
	UnknownTypeFallback bool `mapstructure:"UnknownTypeFallback"`

	CacheBackend   string   `mapstructure:"CacheBackend"`
	MaxItemSize    int      `mapstructure:"MaxItemSize"`
	MaxMemoryCache int64    `mapstructure:"MaxMemoryCacheSize"`
	RedisAddr      string   `mapstructure:"RedisAddr"`
	RedisPassword  string   `mapstructure:"RedisPassword"`
	RedisDB        int      `mapstructure:"RedisDB"`
	RedisTimeout   Duration `mapstructure:"RedisTimeout"`
}

// ArchiveConfig 对应一个 zip 归档；FirstPath 为空时该归档不参与索引匹配。
type ArchiveConfig struct {
	Path      string `mapstructure:"Path" json:"path"`
	FirstPath string `mapstructure:"FirstPath" json:"first_path,omitempty"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
	// Archives 为扁平写法（仅路径列表），Load 会将其归一化进 Archive。
	Archives []string        `mapstructure:"Archives"`
	Archive  []ArchiveConfig `mapstructure:"Archive"`
}

// ArchiveList 返回归一化后的归档列表；只给出扁平写法时逐项转换为无索引键的条目。
func (c *Config) ArchiveList() []ArchiveConfig {
	if c == nil {
		return nil
	}
	if len(c.Archive) > 0 {
		return append([]ArchiveConfig(nil), c.Archive...)
	}
	if len(c.Archives) == 0 {
		return nil
	}
	result := make([]ArchiveConfig, len(c.Archives))
	for i, p := range c.Archives {
		result[i] = ArchiveConfig{Path: p}
	}
	return result
}

// IndexedArchives 统计带 FirstPath 的归档数量，用于启动日志。
func (c *Config) IndexedArchives() int {
	count := 0
	for _, entry := range c.ArchiveList() {
		if entry.FirstPath != "" {
			count++
		}
	}
	return count
}
