package utils

import (
	"net/http"
	"strings"
)

// SensitiveKeywords 敏感头部名称关键字
var SensitiveKeywords = []string{"authorization", "token", "key", "secret", "password", "credential", "cookie"}

// HeaderRedactor 日志输出前对敏感头部脱敏
type HeaderRedactor struct{}

// NewHeaderRedactor 创建头部脱敏器
func NewHeaderRedactor() *HeaderRedactor {
	return &HeaderRedactor{}
}

// IsSensitiveHeader 根据名称关键字判断
func (hr *HeaderRedactor) IsSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range SensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Redact 返回可安全写入日志的头部(只取第一个值)
func (hr *HeaderRedactor) Redact(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		if hr.IsSensitiveHeader(name) {
			switch {
			case strings.HasPrefix(value, "Bearer "):
				value = "Bearer ***"
			case len(value) > 8:
				value = value[:4] + "***" + value[len(value)-4:]
			default:
				value = "***"
			}
		}
		result[name] = value
	}
	return result
}
