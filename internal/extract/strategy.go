package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy 单个字段提取策略
// 返回提取到的文本和是否命中;空白结果视为未命中
type Strategy interface {
	Extract(doc *goquery.Document) (string, bool)
}

// SelectorText 取CSS选择器首个匹配节点的文本
type SelectorText struct {
	Selector string
}

// Extract 实现Strategy接口
func (s SelectorText) Extract(doc *goquery.Document) (string, bool) {
	text := strings.TrimSpace(doc.Find(s.Selector).First().Text())
	return text, text != ""
}

// SelectorAttr 取CSS选择器首个匹配节点的指定属性值
type SelectorAttr struct {
	Selector string
	Attr     string
}

// Extract 实现Strategy接口
func (s SelectorAttr) Extract(doc *goquery.Document) (string, bool) {
	value, ok := doc.Find(s.Selector).First().Attr(s.Attr)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// MetaName 取<meta name=...>的content属性
type MetaName struct {
	Name string
}

// Extract 实现Strategy接口
func (m MetaName) Extract(doc *goquery.Document) (string, bool) {
	return SelectorAttr{
		Selector: "meta[name='" + m.Name + "']",
		Attr:     "content",
	}.Extract(doc)
}

// MetaProperty 取<meta property=...>的content属性 (OpenGraph等结构化数据)
type MetaProperty struct {
	Property string
}

// Extract 实现Strategy接口
func (m MetaProperty) Extract(doc *goquery.Document) (string, bool) {
	return SelectorAttr{
		Selector: "meta[property='" + m.Property + "']",
		Attr:     "content",
	}.Extract(doc)
}

// Chain 按顺序尝试的策略链,第一个命中的策略生效
type Chain []Strategy

// Resolve 解析策略链
// 全部未命中时返回nil(对应输出中的null)
func (c Chain) Resolve(doc *goquery.Document) *string {
	for _, strategy := range c {
		if text, ok := strategy.Extract(doc); ok {
			return &text
		}
	}
	return nil
}
