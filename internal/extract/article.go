package extract

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/RecoveryAshes/NewsRaker/internal/models"
)

const (
	// minContentRunes 正文最小有效长度(rune数)
	// 低于该长度的容器视为误中导航/广告区块,继续尝试更宽的容器
	minContentRunes = 80
)

// boilerplateSelector 正文中需要剥离的样板元素
const boilerplateSelector = "script, style, aside, figure, nav, footer, form"

// contentSelectors 正文容器选择器,从窄到宽排列
var contentSelectors = []string{
	".entry-content",
	".post-content",
	"article .content",
	".content",
	"#content",
}

// tagSelectors 标签/分类链接选择器,全部选择器的命中结果合并收集
var tagSelectors = []string{
	".tags a",
	".post-tags a",
	".entry-tags a",
	"a[rel='tag']",
}

// dateLayouts 日期解析尝试的布局列表
// 带时区的布局在前;不带时区的按台北时间(+08:00)解释
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04",
	"2006/01/02",
	"2006 年 01 月 02 日 15:04",
	"2006 年 1 月 2 日 15:04",
	"2006 年 01 月 02 日",
	"2006 年 1 月 2 日",
}

// siteZone 站点本地时区,用于解释不带时区信息的日期字符串
var siteZone = time.FixedZone("CST", 8*3600)

// Extractor 文章字段提取器
// 每个输出字段持有一条有序策略链,逐个尝试取第一个非空结果;
// 单个字段落空只会使该字段为null,永远不会使整条记录失败
type Extractor struct {
	title   Chain
	date    Chain
	summary Chain
	author  Chain
}

// NewExtractor 创建提取器,内置各字段的默认策略链
func NewExtractor() *Extractor {
	return &Extractor{
		title: Chain{
			SelectorText{"h1.entry-title"},
			SelectorText{".post-title"},
			MetaProperty{"og:title"},
			SelectorText{"h1"},
			SelectorText{"title"},
		},
		date: Chain{
			SelectorAttr{"time[datetime]", "datetime"},
			MetaProperty{"article:published_time"},
			SelectorText{"time"},
			SelectorText{".entry-date, .post-date, .date"},
		},
		summary: Chain{
			MetaProperty{"og:description"},
			MetaName{"description"},
			SelectorText{".entry-summary, .summary, .excerpt"},
		},
		author: Chain{
			MetaName{"author"},
			SelectorText{".author, .byline, .entry-author, .post-author, a[rel='author']"},
		},
	}
}

// Extract 从文章页文档构建一条记录
// 每个字段独立降级,提取失败的字段为null;从不panic、从不返回错误
func (e *Extractor) Extract(doc *goquery.Document, articleURL string) models.ArticleRecord {
	record := models.NewSparseRecord(canonicalURL(articleURL))
	if doc == nil {
		return record
	}

	record.Title = e.title.Resolve(doc)
	record.Summary = e.summary.Resolve(doc)
	record.Author = e.author.Resolve(doc)

	if raw := e.date.Resolve(doc); raw != nil {
		normalized := normalizeDate(*raw)
		record.Date = &normalized
	}

	record.Tags = collectTags(doc)
	record.Content = extractContent(doc)

	return record
}

// canonicalURL 规范化记录的URL键(去fragment)
func canonicalURL(articleURL string) string {
	if normalized := models.NormalizeArticleURL(articleURL, articleURL); normalized != "" {
		return normalized
	}
	return articleURL
}

// normalizeDate 将日期字符串规范化为ISO-8601(带时区偏移)
// 解析策略: 逐个尝试已知布局,命中后输出RFC3339;
// 全部失败时保留原始字符串(而非null),方便事后人工清洗
func normalizeDate(raw string) string {
	trimmed := strings.TrimSpace(raw)

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, siteZone); err == nil {
			return t.Format(time.RFC3339)
		}
	}

	return trimmed
}

// collectTags 收集标签/分类链接文本
// 所有选择器的命中结果按出现顺序合并并去重;没有标签时返回空切片而非null
func collectTags(doc *goquery.Document) []string {
	tags := []string{}
	seen := make(map[string]bool)

	for _, selector := range tagSelectors {
		doc.Find(selector).Each(func(_ int, node *goquery.Selection) {
			tag := strings.TrimSpace(node.Text())
			if tag == "" || seen[tag] {
				return
			}
			seen[tag] = true
			tags = append(tags, tag)
		})
	}

	return tags
}

// extractContent 提取正文纯文本
// 从窄到宽尝试正文容器,取第一个剥离样板元素后仍有足够文本量的容器;
// 全部容器都过短时退回最长的非空结果,最后兜底到<article>/<body>
func extractContent(doc *goquery.Document) *string {
	var longest string

	for _, selector := range contentSelectors {
		node := doc.Find(selector).First()
		if node.Length() == 0 {
			continue
		}

		text := cleanNodeText(node)
		if utf8.RuneCountInString(text) >= minContentRunes {
			return &text
		}
		if len(text) > len(longest) {
			longest = text
		}
	}

	for _, fallback := range []string{"article", "body"} {
		node := doc.Find(fallback).First()
		if node.Length() == 0 {
			continue
		}
		text := cleanNodeText(node)
		if utf8.RuneCountInString(text) >= minContentRunes {
			return &text
		}
		if len(text) > len(longest) {
			longest = text
		}
	}

	if longest == "" {
		return nil
	}
	return &longest
}

// cleanNodeText 剥离样板元素后取纯文本并折叠空白
// 在节点副本上操作,不污染原始文档
func cleanNodeText(node *goquery.Selection) string {
	clone := node.Clone()
	clone.Find(boilerplateSelector).Remove()
	return collapseWhitespace(clone.Text())
}

// collapseWhitespace 折叠空白: 行内连续空白合并为单个空格,丢弃空行
func collapseWhitespace(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
