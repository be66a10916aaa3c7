package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/RecoveryAshes/NewsRaker/internal/corpus"
	"github.com/RecoveryAshes/NewsRaker/internal/crawlers"
	"github.com/RecoveryAshes/NewsRaker/internal/extract"
	"github.com/RecoveryAshes/NewsRaker/internal/models"
	"github.com/RecoveryAshes/NewsRaker/internal/utils"
)

// Scraper 分类模式协调器
// 执行流程: 列表页漫步器产出文章URL -> 抓取文章页 -> 字段提取 -> 语料写入
// 失败策略: 抓取/解析失败降级为稀疏记录或空字段;只有语料写入失败是致命的
type Scraper struct {
	config    models.ScrapeConfig
	fetcher   *crawlers.Fetcher
	extractor *extract.Extractor
	writer    *corpus.Writer

	taskID string
	stats  models.RunStats
}

// NewScraper 创建分类模式协调器
func NewScraper(config models.ScrapeConfig, headerProvider models.HeaderProvider) (*Scraper, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	writer, err := corpus.NewWriter(config.Output, config.Resume)
	if err != nil {
		return nil, fmt.Errorf("创建语料写入器失败: %w", err)
	}

	delay := time.Duration(config.Delay * float64(time.Second))
	timeout := time.Duration(config.Timeout) * time.Second

	return &Scraper{
		config:    config,
		fetcher:   crawlers.NewFetcher(delay, timeout, headerProvider),
		extractor: extract.NewExtractor(),
		writer:    writer,
		taskID:    models.GenerateTaskID(),
	}, nil
}

// Run 执行抓取任务
// 返回错误仅代表语料写入失败(致命);网络和解析层面的失败
// 已在内部降级,不会中断运行
func (s *Scraper) Run() error {
	startTime := time.Now()

	utils.Infof("🚀 开始抓取任务")
	utils.Infof("起始URL: %s", s.config.StartURL)
	utils.Infof("输出文件: %s", s.config.Output)
	utils.Infof("最大页数: %d", s.config.MaxPages)
	utils.Infof("请求间隔: %.1f秒", s.config.Delay)

	walker := crawlers.NewListingWalker(s.fetcher, s.config.StartURL, s.config.MaxPages)

	for {
		articleURL, ok := walker.Next()
		if !ok {
			break
		}

		if s.writer.Seen(articleURL) {
			utils.Debugf("URL已在语料中,跳过: %s", articleURL)
			s.stats.DuplicatesSkipped++
			continue
		}

		record := s.fetchArticle(articleURL)
		if err := s.writeRecord(record); err != nil {
			return err
		}
	}

	s.stats.ListingPages = walker.Pages()
	s.stats.Duration = time.Since(startTime).Seconds()

	utils.Infof("✅ 抓取任务完成")
	utils.Infof("列表页数: %d", s.stats.ListingPages)
	utils.Infof("文章页数: %d", s.stats.ArticlesFetched)
	utils.Infof("写入记录: %d", s.stats.RecordsWritten)
	utils.Infof("跳过重复: %d", s.stats.DuplicatesSkipped)
	utils.Infof("抓取失败: %d", s.stats.FetchFailures)
	utils.Infof("总耗时: %.2f秒", s.stats.Duration)

	s.writeReport(startTime)

	return nil
}

// fetchArticle 抓取并提取单篇文章
// 抓取失败时返回仅含URL的稀疏记录,不中断整个运行
func (s *Scraper) fetchArticle(articleURL string) models.ArticleRecord {
	s.stats.ArticlesFetched++

	doc, err := s.fetcher.FetchDocument(articleURL)
	if err != nil {
		utils.Warnf("文章页抓取失败,写入稀疏记录: %v", err)
		s.stats.FetchFailures++
		s.stats.SparseRecords++
		return models.NewSparseRecord(articleURL)
	}

	return s.extractor.Extract(doc, articleURL)
}

// writeRecord 写入一条记录
// 重复URL按跳过处理;其余写入错误视为致命错误向上传播
func (s *Scraper) writeRecord(record models.ArticleRecord) error {
	err := s.writer.Write(record)
	if err == nil {
		s.stats.RecordsWritten++
		utils.Debugf("已写入: %s", record.URL)
		return nil
	}
	if errors.Is(err, corpus.ErrDuplicate) {
		s.stats.DuplicatesSkipped++
		return nil
	}
	return fmt.Errorf("语料写入失败,终止运行: %w", err)
}

// writeReport 生成运行报告,失败只记警告
func (s *Scraper) writeReport(startTime time.Time) {
	report := &models.RunReport{
		TaskID:     s.taskID,
		Mode:       models.ModeCategory,
		StartURL:   s.config.StartURL,
		StartTime:  startTime,
		EndTime:    time.Now(),
		Stats:      s.stats,
		OutputFile: s.config.Output,
		Config:     s.config,
	}
	if err := utils.WriteRunReport(report); err != nil {
		utils.Warnf("生成运行报告失败: %v", err)
	}
}

// GetStats 获取统计信息
func (s *Scraper) GetStats() models.RunStats {
	return s.stats
}

// Close 关闭协调器持有的资源
func (s *Scraper) Close() error {
	return s.writer.Close()
}
