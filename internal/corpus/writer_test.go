package corpus

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/NewsRaker/internal/models"
)

func strPtr(s string) *string { return &s }

func sampleRecord(url string) models.ArticleRecord {
	return models.ArticleRecord{
		Title:   strPtr("測試文章"),
		URL:     url,
		Date:    strPtr("2025-01-15T10:30:00+08:00"),
		Summary: strPtr("摘要"),
		Author:  strPtr("李四"),
		Tags:    []string{"AI"},
		Content: strPtr("正文"),
	}
}

func TestWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	w, err := NewWriter(path, false)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	defer w.Close()

	if err := w.Write(sampleRecord("https://technews.tw/article/1")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Write(sampleRecord("https://technews.tw/article/2")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if w.Count() != 2 {
		t.Errorf("Count() = %d, want 2", w.Count())
	}

	// 每条记录恰好一行,且为合法JSON对象
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取输出文件失败: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("输出行数 = %d, want 2", len(lines))
	}
	for i, line := range lines {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			t.Errorf("第%d行不是合法JSON: %v", i+1, err)
		}
		if len(obj) != 7 {
			t.Errorf("第%d行键数量 = %d, want 7", i+1, len(obj))
		}
	}
}

func TestWriter_Duplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	w, err := NewWriter(path, false)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	defer w.Close()

	if err := w.Write(sampleRecord("https://technews.tw/article/1")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	err = w.Write(sampleRecord("https://technews.tw/article/1"))
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("重复写入 error = %v, want ErrDuplicate", err)
	}
	if w.Count() != 1 {
		t.Errorf("Count() = %d, want 1", w.Count())
	}
}

func TestWriter_EmptyURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	w, err := NewWriter(path, false)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	defer w.Close()

	record := models.ArticleRecord{Tags: []string{}}
	if err := w.Write(record); err == nil {
		t.Error("空URL记录应返回错误")
	}
}

func TestWriter_Resume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	// 第一次运行写入两条记录
	w1, err := NewWriter(path, false)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := w1.Write(sampleRecord("https://technews.tw/article/1")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w1.Write(sampleRecord("https://technews.tw/article/2")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	w1.Close()

	// 续抓: 已有URL被识别为重复,新URL追加写入
	w2, err := NewWriter(path, true)
	if err != nil {
		t.Fatalf("NewWriter(resume) error = %v", err)
	}
	defer w2.Close()

	if !w2.Seen("https://technews.tw/article/1") {
		t.Error("续抓后应识别已有URL")
	}
	if err := w2.Write(sampleRecord("https://technews.tw/article/1")); !errors.Is(err, ErrDuplicate) {
		t.Errorf("续抓重复写入 error = %v, want ErrDuplicate", err)
	}
	if err := w2.Write(sampleRecord("https://technews.tw/article/3")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	w2.Close()

	// 原有内容不被截断,新记录追加在末尾
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("打开输出文件失败: %v", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record models.ArticleRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("解析行失败: %v", err)
		}
		urls = append(urls, record.URL)
	}

	want := []string{
		"https://technews.tw/article/1",
		"https://technews.tw/article/2",
		"https://technews.tw/article/3",
	}
	if len(urls) != len(want) {
		t.Fatalf("记录数 = %d, want %d", len(urls), len(want))
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("第%d条URL = %s, want %s", i+1, urls[i], want[i])
		}
	}
}

func TestWriter_ResumeTolerantOfBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	content := `{"title":null,"url":"https://technews.tw/article/1","date":null,"summary":null,"author":null,"tags":[],"content":null}
这不是JSON
{"title":null,"url":"https://technews.tw/article/2","date":null,"summary":null,"author":null,"tags":[],"content":null}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("准备测试文件失败: %v", err)
	}

	w, err := NewWriter(path, true)
	if err != nil {
		t.Fatalf("NewWriter(resume) error = %v", err)
	}
	defer w.Close()

	if !w.Seen("https://technews.tw/article/1") || !w.Seen("https://technews.tw/article/2") {
		t.Error("应从合法行中恢复URL")
	}
}

func TestReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	w, err := NewWriter(path, false)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := w.Write(sampleRecord("https://technews.tw/article/1")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Write(models.NewSparseRecord("https://technews.tw/article/2")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	w.Close()

	records, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("记录数 = %d, want 2", len(records))
	}
	if records[0].Title == nil || *records[0].Title != "測試文章" {
		t.Errorf("第1条标题 = %v, want 測試文章", records[0].Title)
	}
	if records[1].Title != nil {
		t.Errorf("稀疏记录标题 = %v, want nil", *records[1].Title)
	}
}
