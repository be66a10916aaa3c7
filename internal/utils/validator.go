package utils

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/RecoveryAshes/NewsRaker/internal/models"
)

const (
	// MaxHeaderValueLength HTTP头部值最大长度 (8KB)
	MaxHeaderValueLength = 8192
)

var (
	// forbiddenHeaders 禁止用户配置的头部 (由HTTP客户端管理)
	forbiddenHeaders = map[string]bool{
		"host":              true,
		"content-length":    true,
		"transfer-encoding": true,
		"connection":        true,
	}

	// HTTP头部名称 (RFC 7230): 字母、数字和连字符
	headerNameRegex = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

	// HTTP头部值: 可打印ASCII + 空格/制表符
	headerValueRegex = regexp.MustCompile(`^[\x20-\x7E\t]*$`)
)

// ValidateHeader 验证单个HTTP头部的名称和值
// 返回: 头部非法时返回*models.ValidationError
func ValidateHeader(name, value string) error {
	if forbiddenHeaders[strings.ToLower(name)] {
		return &models.ValidationError{
			HeaderName: name,
			Reason:     "此头部由HTTP客户端自动管理,不允许自定义",
			Suggestion: fmt.Sprintf("移除 '%s' 头部配置", name),
		}
	}

	if name == "" {
		return &models.ValidationError{
			HeaderName: name,
			Reason:     "头部名称不能为空",
		}
	}
	if !headerNameRegex.MatchString(name) {
		return &models.ValidationError{
			HeaderName: name,
			Reason:     "头部名称包含非法字符 (仅允许字母、数字和连字符)",
			Suggestion: "使用字母、数字和连字符 (如 'User-Agent', 'X-Custom-Header')",
		}
	}

	if len(value) > MaxHeaderValueLength {
		return &models.ValidationError{
			HeaderName: name,
			Reason:     fmt.Sprintf("头部值过长: %d 字节 (最大 %d)", len(value), MaxHeaderValueLength),
			Suggestion: fmt.Sprintf("将值缩短至 %d 字节以内", MaxHeaderValueLength),
		}
	}
	if !headerValueRegex.MatchString(value) {
		return &models.ValidationError{
			HeaderName: name,
			Reason:     "头部值包含非法字符 (仅允许可打印ASCII字符)",
			Suggestion: "移除控制字符和非ASCII字符",
		}
	}

	return nil
}

// ValidateHeaders 验证http.Header中的所有头部
// 返回第一个发现的ValidationError
func ValidateHeaders(headers http.Header) error {
	for name, values := range headers {
		for _, value := range values {
			if err := ValidateHeader(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}
