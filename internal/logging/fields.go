package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RequestFields 提供路径/语言/命中状态字段，供内容请求日志复用。
func RequestFields(path, lang, outcome string, validIntl, cacheHit bool) logrus.Fields {
	return logrus.Fields{
		"path":       path,
		"lang":       lang,
		"outcome":    outcome,
		"valid_intl": validIntl,
		"cache_hit":  cacheHit,
	}
}

// ArchiveFields 描述一次归档访问，供 open/read 失败日志复用。
func ArchiveFields(action, archiveID, member string) logrus.Fields {
	fields := logrus.Fields{
		"action":  action,
		"archive": archiveID,
	}
	if member != "" {
		fields["member"] = member
	}
	return fields
}
