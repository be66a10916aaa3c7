package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// 切换到空目录,避免意外读到仓库中的配置文件
	oldWd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(oldWd)

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Scrape.StartURL != "https://technews.tw/category/ai/" {
		t.Errorf("默认start_url = %v", config.Scrape.StartURL)
	}
	if config.Scrape.Output != "ai_articles.jsonl" {
		t.Errorf("默认output = %v", config.Scrape.Output)
	}
	if config.Scrape.MaxPages != 0 {
		t.Errorf("默认max_pages = %v, want 0", config.Scrape.MaxPages)
	}
	if config.Scrape.Delay != 1.0 {
		t.Errorf("默认delay = %v, want 1.0", config.Scrape.Delay)
	}
	if config.Scrape.Timeout != 10 {
		t.Errorf("默认timeout = %v, want 10", config.Scrape.Timeout)
	}
	if !config.Scrape.Resume {
		t.Error("默认resume应为true")
	}
	if config.Logging.Level != "info" {
		t.Errorf("默认日志级别 = %v, want info", config.Logging.Level)
	}
	if config.Index.OutDir != "index_dir" {
		t.Errorf("默认索引目录 = %v, want index_dir", config.Index.OutDir)
	}
	if config.Index.TopK != 10 {
		t.Errorf("默认top_k = %v, want 10", config.Index.TopK)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `scrape:
  start_url: https://example.com/category/tech/
  output: tech.jsonl
  max_pages: 5
  delay: 2.5
headers:
  X-Custom: abc
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Scrape.StartURL != "https://example.com/category/tech/" {
		t.Errorf("start_url = %v", config.Scrape.StartURL)
	}
	if config.Scrape.MaxPages != 5 {
		t.Errorf("max_pages = %v, want 5", config.Scrape.MaxPages)
	}
	if config.Scrape.Delay != 2.5 {
		t.Errorf("delay = %v, want 2.5", config.Scrape.Delay)
	}
	if config.Headers["X-Custom"] != "abc" {
		t.Errorf("headers = %v", config.Headers)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("日志级别 = %v, want debug", config.Logging.Level)
	}
	// 未配置的字段回落到默认值
	if config.Scrape.Timeout != 10 {
		t.Errorf("timeout = %v, want 默认值10", config.Scrape.Timeout)
	}
}

func TestConfig_MergeCLIFlags(t *testing.T) {
	oldWd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(oldWd)

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	config.MergeCLIFlags("https://example.com/cat/", "", "out.jsonl", 3, 0.5)

	if config.Scrape.StartURL != "https://example.com/cat/" {
		t.Errorf("start_url = %v", config.Scrape.StartURL)
	}
	if config.Scrape.Output != "out.jsonl" {
		t.Errorf("output = %v", config.Scrape.Output)
	}
	if config.Scrape.MaxPages != 3 {
		t.Errorf("max_pages = %v, want 3", config.Scrape.MaxPages)
	}
	if config.Scrape.Delay != 0.5 {
		t.Errorf("delay = %v, want 0.5", config.Scrape.Delay)
	}

	// 未提供的参数不覆盖 (-1表示未设置)
	config.MergeCLIFlags("", "", "", -1, -1)
	if config.Scrape.StartURL != "https://example.com/cat/" {
		t.Errorf("未提供的参数覆盖了start_url: %v", config.Scrape.StartURL)
	}
	if config.Scrape.MaxPages != 3 {
		t.Errorf("未提供的参数覆盖了max_pages: %v", config.Scrape.MaxPages)
	}
	if config.Scrape.Delay != 0.5 {
		t.Errorf("未提供的参数覆盖了delay: %v", config.Scrape.Delay)
	}

	// 种子文件切换模式
	config.MergeCLIFlags("", "seeds.txt", "", -1, -1)
	if config.Scrape.SeedsFile != "seeds.txt" {
		t.Errorf("seeds_file = %v", config.Scrape.SeedsFile)
	}
}
