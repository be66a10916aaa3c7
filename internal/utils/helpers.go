package utils

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ReadSeedsFromFile 从文件中读取种子URL列表
// 每行一个URL,空行和#开头的注释行跳过,非法URL记警告后跳过
func ReadSeedsFromFile(filepath string) ([]string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("打开种子文件失败: %w", err)
	}
	defer file.Close()

	seeds := make([]string, 0)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := ValidateURL(line); err != nil {
			Warnf("跳过无效URL (行 %d): %s - %v", lineNum, line, err)
			continue
		}

		seeds = append(seeds, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取种子文件失败: %w", err)
	}

	if len(seeds) == 0 {
		return nil, fmt.Errorf("种子文件中没有有效的URL")
	}

	Infof("从文件加载了 %d 个种子URL", len(seeds))
	return seeds, nil
}

// ValidateURL 验证URL格式
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("URL格式无效: %w", err)
	}

	if parsed.Scheme == "" {
		return fmt.Errorf("URL缺少协议(http/https)")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL协议必须是http或https")
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL缺少主机名")
	}

	return nil
}

// ExtractDomain 从URL中提取域名
func ExtractDomain(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("URL格式无效: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL缺少主机名")
	}
	return parsed.Host, nil
}

// NormalizeStartURL 规范化起始URL
// 缺少协议时默认补https
func NormalizeStartURL(urlStr string) (string, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}

	if parsed.Scheme == "" {
		urlStr = "https://" + urlStr
		if _, err := url.Parse(urlStr); err != nil {
			return "", err
		}
	}

	return urlStr, nil
}
