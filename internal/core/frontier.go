package core

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/RecoveryAshes/NewsRaker/internal/corpus"
	"github.com/RecoveryAshes/NewsRaker/internal/crawlers"
	"github.com/RecoveryAshes/NewsRaker/internal/extract"
	"github.com/RecoveryAshes/NewsRaker/internal/models"
	"github.com/RecoveryAshes/NewsRaker/internal/utils"
)

// FrontierCrawler 种子模式爬取器(使用Colly)
// 从种子URL出发做同域扩散: 只跟进与种子同域且路径含/article/的链接,
// 每个响应页都尝试提取文章字段并写入语料
type FrontierCrawler struct {
	config         models.ScrapeConfig
	extractor      *extract.Extractor
	writer         *corpus.Writer
	headerProvider models.HeaderProvider

	taskID   string
	stats    models.RunStats
	fatalErr error
}

// NewFrontierCrawler 创建种子模式爬取器
func NewFrontierCrawler(config models.ScrapeConfig, headerProvider models.HeaderProvider) (*FrontierCrawler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	writer, err := corpus.NewWriter(config.Output, config.Resume)
	if err != nil {
		return nil, fmt.Errorf("创建语料写入器失败: %w", err)
	}

	return &FrontierCrawler{
		config:         config,
		extractor:      extract.NewExtractor(),
		writer:         writer,
		headerProvider: headerProvider,
		taskID:         models.GenerateTaskID(),
	}, nil
}

// Run 依次爬取所有种子URL
// 返回错误仅代表语料写入失败;单个种子的网络错误不中断后续种子
func (fc *FrontierCrawler) Run(seeds []string) error {
	startTime := time.Now()

	utils.Infof("🚀 种子模式启动")
	utils.Infof("种子数量: %d", len(seeds))
	utils.Infof("输出文件: %s", fc.config.Output)
	utils.Infof("最大页数: %d", fc.config.MaxPages)
	utils.Infof("请求间隔: %.1f秒", fc.config.Delay)

	for i, seed := range seeds {
		utils.Infof("📍 [%d/%d] 爬取种子: %s", i+1, len(seeds), seed)

		if err := fc.crawlSeed(seed); err != nil {
			utils.Warnf("种子爬取失败 [%s]: %v", seed, err)
		}
		if fc.fatalErr != nil {
			return fc.fatalErr
		}
		if fc.limitReached() {
			utils.Infof("已达最大页数限制 (%d),停止后续种子", fc.config.MaxPages)
			break
		}
	}

	fc.stats.Duration = time.Since(startTime).Seconds()

	utils.Infof("✅ 种子模式完成")
	utils.Infof("抓取页面: %d", fc.stats.ArticlesFetched)
	utils.Infof("写入记录: %d", fc.stats.RecordsWritten)
	utils.Infof("跳过重复: %d", fc.stats.DuplicatesSkipped)
	utils.Infof("抓取失败: %d", fc.stats.FetchFailures)
	utils.Infof("总耗时: %.2f秒", fc.stats.Duration)

	fc.writeReport(startTime)

	return nil
}

// crawlSeed 爬取单个种子及其同域文章链接
func (fc *FrontierCrawler) crawlSeed(seed string) error {
	domain, err := utils.ExtractDomain(seed)
	if err != nil {
		return fmt.Errorf("解析种子URL失败: %w", err)
	}

	c := colly.NewCollector(
		colly.UserAgent(crawlers.DefaultUserAgent),
		// 同步模式,配合LimitRule的Delay实现礼貌间隔
	)

	c.SetRequestTimeout(time.Duration(fc.config.Timeout) * time.Second)
	c.WithTransport(&http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
	})
	c.IgnoreRobotsTxt = true

	delay := time.Duration(fc.config.Delay * float64(time.Second))
	if err := c.Limit(&colly.LimitRule{
		DomainGlob: "*",
		Delay:      delay,
	}); err != nil {
		utils.Warnf("设置限速规则失败: %v", err)
	}

	c.OnRequest(func(r *colly.Request) {
		if fc.fatalErr != nil || fc.limitReached() {
			r.Abort()
			return
		}
		fc.applyHeaders(r)
		utils.Debugf("访问: %s", r.URL.String())
	})

	// 同域文章链接扩散
	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := models.NormalizeArticleURL(e.Attr("href"), e.Request.URL.String())
		if link == "" {
			return
		}

		linkDomain, err := utils.ExtractDomain(link)
		if err != nil || linkDomain != domain {
			return
		}
		if !strings.Contains(link, "/article/") {
			return
		}
		if fc.writer.Seen(link) {
			fc.stats.DuplicatesSkipped++
			return
		}

		if err := e.Request.Visit(link); err != nil {
			utils.Debugf("访问链接失败 [%s]: %v", link, err)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		contentType := strings.ToLower(r.Headers.Get("Content-Type"))
		if contentType != "" && !strings.Contains(contentType, "html") {
			return
		}

		fc.stats.ArticlesFetched++

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(r.Body)))
		if err != nil {
			utils.Warnf("解析页面失败 [%s]: %v", r.Request.URL, err)
			fc.handleRecord(models.NewSparseRecord(r.Request.URL.String()))
			return
		}

		record := fc.extractor.Extract(doc, r.Request.URL.String())
		fc.handleRecord(record)
	})

	c.OnError(func(r *colly.Response, err error) {
		utils.Debugf("爬取错误 [%s]: %v", r.Request.URL, err)
		fc.stats.FetchFailures++
	})

	if err := c.Visit(seed); err != nil {
		return err
	}
	c.Wait()

	return nil
}

// handleRecord 写入一条记录,写入失败(非重复)记为致命错误
func (fc *FrontierCrawler) handleRecord(record models.ArticleRecord) {
	err := fc.writer.Write(record)
	if err == nil {
		fc.stats.RecordsWritten++
		return
	}
	if errors.Is(err, corpus.ErrDuplicate) {
		fc.stats.DuplicatesSkipped++
		return
	}
	fc.fatalErr = fmt.Errorf("语料写入失败,终止运行: %w", err)
}

// limitReached 判断是否已达最大页数限制
func (fc *FrontierCrawler) limitReached() bool {
	return fc.config.MaxPages > 0 && fc.stats.ArticlesFetched >= fc.config.MaxPages
}

// applyHeaders 应用自定义HTTP头部
func (fc *FrontierCrawler) applyHeaders(r *colly.Request) {
	if fc.headerProvider == nil {
		return
	}

	headers, err := fc.headerProvider.GetHeaders()
	if err != nil {
		utils.Warnf("获取HTTP头部失败: %v", err)
		return
	}

	for name, values := range headers {
		if len(values) > 0 {
			r.Headers.Set(name, values[0])
		}
	}
}

// writeReport 生成运行报告
func (fc *FrontierCrawler) writeReport(startTime time.Time) {
	report := &models.RunReport{
		TaskID:     fc.taskID,
		Mode:       models.ModeSeeds,
		SeedsFile:  fc.config.SeedsFile,
		StartTime:  startTime,
		EndTime:    time.Now(),
		Stats:      fc.stats,
		OutputFile: fc.config.Output,
		Config:     fc.config,
	}
	if err := utils.WriteRunReport(report); err != nil {
		utils.Warnf("生成运行报告失败: %v", err)
	}
}

// GetStats 获取统计信息
func (fc *FrontierCrawler) GetStats() models.RunStats {
	return fc.stats
}

// Close 关闭爬取器持有的资源
func (fc *FrontierCrawler) Close() error {
	return fc.writer.Close()
}
