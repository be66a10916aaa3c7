package crawlers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/RecoveryAshes/NewsRaker/internal/models"
	"github.com/RecoveryAshes/NewsRaker/internal/utils"
)

// fallbackLinkSelectors 文章链接的备用选择器链
// 语义化<article>节点缺失时按顺序尝试,第一个命中的选择器生效
// (WordPress系新闻站点的常见标记模式)
var fallbackLinkSelectors = []string{
	".entry-title a",
	".post .title a",
	"h2 a",
	"h3 a",
	".post a[href], .article a[href]",
}

// nextPageTexts "下一页"链接的常见文案(中英文)
var nextPageTexts = []string{"下一頁", "下一页", "Next", "Older Posts", "Older"}

// ListingWalker 列表页漫步器
// 职责: 从分类列表页起步逐页翻页,惰性产出去重后的文章URL序列
// 同一实例不可重入,新的遍历需要重新创建(从第1页重新开始)
type ListingWalker struct {
	fetcher  *Fetcher
	maxPages int

	// 迭代状态
	pageURL string          // 下一个待抓取的列表页
	pages   int             // 已抓取的列表页数
	queue   []string        // 当前已解析、尚未产出的文章URL
	emitted map[string]bool // 本次遍历已产出的URL集合
	done    bool
}

// NewListingWalker 创建列表页漫步器
// maxPages限制翻页次数,0表示不限制
func NewListingWalker(fetcher *Fetcher, seedURL string, maxPages int) *ListingWalker {
	return &ListingWalker{
		fetcher:  fetcher,
		maxPages: maxPages,
		pageURL:  seedURL,
		emitted:  make(map[string]bool),
	}
}

// Next 产出下一个文章URL
// 序列耗尽时返回("", false);列表页抓取失败或解析不到任何链接
// 视为到达末尾而非错误
func (w *ListingWalker) Next() (string, bool) {
	for {
		if len(w.queue) > 0 {
			next := w.queue[0]
			w.queue = w.queue[1:]
			return next, true
		}
		if w.done {
			return "", false
		}
		w.advance()
	}
}

// Pages 返回已抓取的列表页数
func (w *ListingWalker) Pages() int {
	return w.pages
}

// advance 抓取下一个列表页并填充队列
func (w *ListingWalker) advance() {
	if w.pageURL == "" {
		w.done = true
		return
	}

	current := w.pageURL
	utils.Infof("抓取列表页 [%d]: %s", w.pages+1, current)

	doc, err := w.fetcher.FetchDocument(current)
	if err != nil {
		// 列表页抓取失败按到达末尾处理
		utils.Warnf("列表页抓取失败,翻页结束: %v", err)
		w.done = true
		return
	}
	w.pages++

	links := extractArticleLinks(doc, current)
	if len(links) == 0 {
		utils.Debugf("列表页无文章链接,翻页结束: %s", current)
		w.done = true
		return
	}

	for _, link := range links {
		if !w.emitted[link] {
			w.emitted[link] = true
			w.queue = append(w.queue, link)
		}
	}

	next := findNextPage(doc, current)
	if next == "" {
		utils.Debugf("未找到下一页链接,翻页结束")
		w.done = true
		return
	}
	if w.maxPages > 0 && w.pages >= w.maxPages {
		utils.Debugf("达到最大页数限制: %d", w.maxPages)
		w.done = true
		return
	}

	w.pageURL = next
}

// extractArticleLinks 从列表页解析文章链接
// 优先遍历语义化<article>节点,每个节点取第一个带href的<a>;
// 无<article>节点时退化到备用选择器链
func extractArticleLinks(doc *goquery.Document, baseURL string) []string {
	var links []string

	articles := doc.Find("article")
	if articles.Length() > 0 {
		articles.Each(func(_ int, node *goquery.Selection) {
			href, ok := node.Find("a[href]").First().Attr("href")
			if !ok {
				return
			}
			if link := models.NormalizeArticleURL(href, baseURL); link != "" {
				links = append(links, link)
			}
		})
		return links
	}

	for _, selector := range fallbackLinkSelectors {
		doc.Find(selector).Each(func(_ int, node *goquery.Selection) {
			href, ok := node.Attr("href")
			if !ok {
				return
			}
			if link := models.NormalizeArticleURL(href, baseURL); link != "" {
				links = append(links, link)
			}
		})
		if len(links) > 0 {
			return links
		}
	}

	return links
}

// findNextPage 定位"下一页"链接
// 顺序: rel=next -> 常见翻页文案 -> 常见分页容器class
// 找不到时返回空字符串
func findNextPage(doc *goquery.Document, baseURL string) string {
	if href, ok := doc.Find("a[rel='next']").First().Attr("href"); ok {
		return models.NormalizeArticleURL(href, baseURL)
	}

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, node *goquery.Selection) bool {
		text := strings.TrimSpace(node.Text())
		for _, candidate := range nextPageTexts {
			if strings.EqualFold(text, candidate) {
				href, _ := node.Attr("href")
				found = models.NormalizeArticleURL(href, baseURL)
				return false
			}
		}
		return true
	})
	if found != "" {
		return found
	}

	if href, ok := doc.Find(".nav-previous a, .pagination a.next, a.next-page").First().Attr("href"); ok {
		return models.NormalizeArticleURL(href, baseURL)
	}

	return ""
}
