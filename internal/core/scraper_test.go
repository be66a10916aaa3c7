package core

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/RecoveryAshes/NewsRaker/internal/corpus"
	"github.com/RecoveryAshes/NewsRaker/internal/models"
)

// newNewsSite 构造一个迷你新闻站点
// 分类页含两篇文章,article/1正常,article/2返回404
func newNewsSite() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/category/ai/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<article><h2 class="entry-title"><a href="/article/1">AI晶片新突破</a></h2></article>
			<article><h2 class="entry-title"><a href="/article/2">已刪除的文章</a></h2></article>
		</body></html>`)
	})
	mux.HandleFunc("/article/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<meta name="author" content="王小明">
			<meta property="og:description" content="晶片市場新變局">
		</head><body>
			<h1 class="entry-title">AI晶片新突破</h1>
			<time datetime="2025-01-15T10:30:00+08:00">2025 年 01 月 15 日</time>
			<div class="entry-content"><p>台積電今日宣布新一代AI晶片量產,採用最新製程,效能大幅提升,業界預期將重塑半導體供應鏈格局,多家廠商已著手調整產能與採購策略以因應變化。</p></div>
			<div class="tags"><a href="/tag/ai">AI</a></div>
		</body></html>`)
	})
	mux.HandleFunc("/article/2", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	return httptest.NewServer(mux)
}

func testScrapeConfig(server *httptest.Server, output string) models.ScrapeConfig {
	return models.ScrapeConfig{
		StartURL: server.URL + "/category/ai/",
		Output:   output,
		MaxPages: 0,
		Delay:    0,
		Timeout:  5,
	}
}

func TestScraper_Run(t *testing.T) {
	server := newNewsSite()
	defer server.Close()

	output := filepath.Join(t.TempDir(), "out.jsonl")
	scraper, err := NewScraper(testScrapeConfig(server, output), nil)
	if err != nil {
		t.Fatalf("NewScraper() error = %v", err)
	}
	defer scraper.Close()

	if err := scraper.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	stats := scraper.GetStats()
	if stats.ListingPages != 1 {
		t.Errorf("ListingPages = %d, want 1", stats.ListingPages)
	}
	if stats.ArticlesFetched != 2 {
		t.Errorf("ArticlesFetched = %d, want 2", stats.ArticlesFetched)
	}
	if stats.RecordsWritten != 2 {
		t.Errorf("RecordsWritten = %d, want 2", stats.RecordsWritten)
	}
	if stats.FetchFailures != 1 {
		t.Errorf("FetchFailures = %d, want 1", stats.FetchFailures)
	}
	if stats.SparseRecords != 1 {
		t.Errorf("SparseRecords = %d, want 1", stats.SparseRecords)
	}

	records, err := corpus.ReadAll(output)
	if err != nil {
		t.Fatalf("读取输出失败: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("记录数 = %d, want 2", len(records))
	}

	// 正常文章: 字段齐全
	first := records[0]
	if first.URL != server.URL+"/article/1" {
		t.Errorf("第1条URL = %v", first.URL)
	}
	if first.Title == nil || *first.Title != "AI晶片新突破" {
		t.Errorf("第1条标题 = %v", first.Title)
	}
	if first.Author == nil || *first.Author != "王小明" {
		t.Errorf("第1条作者 = %v", first.Author)
	}
	if first.Content == nil {
		t.Error("第1条正文不应为nil")
	}

	// 抓取失败的文章: 稀疏记录
	second := records[1]
	if second.URL != server.URL+"/article/2" {
		t.Errorf("第2条URL = %v", second.URL)
	}
	if second.Title != nil || second.Content != nil {
		t.Error("第2条应为稀疏记录")
	}
	if second.Tags == nil || len(second.Tags) != 0 {
		t.Errorf("第2条Tags = %v, want 空切片", second.Tags)
	}
}

func TestScraper_RunTwiceDeduplicates(t *testing.T) {
	server := newNewsSite()
	defer server.Close()

	output := filepath.Join(t.TempDir(), "out.jsonl")

	config := testScrapeConfig(server, output)
	config.Resume = true

	// 第一次运行
	s1, err := NewScraper(config, nil)
	if err != nil {
		t.Fatalf("NewScraper() error = %v", err)
	}
	if err := s1.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	s1.Close()

	// 第二次运行: 所有URL已存在,不产生新记录
	s2, err := NewScraper(config, nil)
	if err != nil {
		t.Fatalf("NewScraper() error = %v", err)
	}
	defer s2.Close()

	if err := s2.Run(); err != nil {
		t.Fatalf("第二次Run() error = %v", err)
	}

	stats := s2.GetStats()
	if stats.RecordsWritten != 0 {
		t.Errorf("第二次RecordsWritten = %d, want 0", stats.RecordsWritten)
	}
	if stats.DuplicatesSkipped != 2 {
		t.Errorf("第二次DuplicatesSkipped = %d, want 2", stats.DuplicatesSkipped)
	}

	records, err := corpus.ReadAll(output)
	if err != nil {
		t.Fatalf("读取输出失败: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("两次运行后记录数 = %d, want 2", len(records))
	}
}

func TestScraper_WritesRunReport(t *testing.T) {
	server := newNewsSite()
	defer server.Close()

	output := filepath.Join(t.TempDir(), "out.jsonl")
	scraper, err := NewScraper(testScrapeConfig(server, output), nil)
	if err != nil {
		t.Fatalf("NewScraper() error = %v", err)
	}
	defer scraper.Close()

	if err := scraper.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	reportPath := output + ".report.json"
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("读取运行报告失败: %v", err)
	}

	var report models.RunReport
	if err := report.FromJSON(data); err != nil {
		t.Fatalf("解析运行报告失败: %v", err)
	}
	if report.TaskID == "" {
		t.Error("报告TaskID不应为空")
	}
	if report.Mode != models.ModeCategory {
		t.Errorf("报告Mode = %v, want %v", report.Mode, models.ModeCategory)
	}
	if report.Stats.RecordsWritten != 2 {
		t.Errorf("报告RecordsWritten = %d, want 2", report.Stats.RecordsWritten)
	}
}

func TestScraper_InvalidConfig(t *testing.T) {
	config := models.ScrapeConfig{Output: "out.jsonl", Timeout: 10}
	if _, err := NewScraper(config, nil); err == nil {
		t.Error("缺少起始URL的配置应返回错误")
	}
}
