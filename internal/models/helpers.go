package models

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// ValidateURL 验证URL
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("无效的URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL必须是HTTP或HTTPS协议")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL必须包含主机名")
	}
	return nil
}

// ResolveLink 将相对链接解析为基于base的绝对URL
// 空链接返回空字符串
func ResolveLink(base, link string) (string, error) {
	if link == "" {
		return "", nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("解析基础URL失败: %w", err)
	}
	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("解析链接失败 [%s]: %w", link, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// generateID 生成唯一ID
func generateID() string {
	return uuid.New().String()
}
