package models

import (
	"encoding/json"
	"net/url"
	"strings"
)

// ArticleRecord 一条新闻文章记录
// 对应输出JSONL中的一行,字段缺失时序列化为null
// 注意: Tags在文章页存在但无标签时为空切片([]),从未提取到时也保持空切片
type ArticleRecord struct {
	Title   *string  `json:"title"`   // 文章标题
	URL     string   `json:"url"`     // 规范化的绝对链接(唯一键)
	Date    *string  `json:"date"`    // 发布时间(ISO-8601带时区偏移,解析失败时保留原始字符串)
	Summary *string  `json:"summary"` // 摘要
	Author  *string  `json:"author"`  // 作者署名
	Tags    []string `json:"tags"`    // 标签/分类列表(有序去重)
	Content *string  `json:"content"` // 正文纯文本(已剥离脚本/图片说明/侧栏)
}

// NewSparseRecord 创建仅含URL的稀疏记录
// 用途: 文章页抓取失败时仍然产出一条记录,其余字段为null
func NewSparseRecord(articleURL string) ArticleRecord {
	return ArticleRecord{
		URL:  articleURL,
		Tags: []string{},
	}
}

// ToJSON 序列化为JSON(不含换行符)
func (r *ArticleRecord) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// NormalizeArticleURL 规范化文章链接
// 规则: 相对链接基于baseURL解析为绝对形式,去除fragment,仅保留http/https
// 返回: 规范化后的URL,无法规范化时返回空字符串
func NormalizeArticleURL(href string, baseURL string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
		return ""
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	resolved, err := base.Parse(href)
	if err != nil {
		return ""
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}

	// 去除fragment,避免同一文章以不同锚点重复入队
	resolved.Fragment = ""

	return resolved.String()
}
