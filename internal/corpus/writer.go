package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/RecoveryAshes/NewsRaker/internal/models"
	"github.com/RecoveryAshes/NewsRaker/internal/utils"
)

// maxLineSize JSONL单行最大字节数 (正文较长,放宽到16MB)
const maxLineSize = 16 * 1024 * 1024

// ErrDuplicate 重复URL跳过信号
// 调用方通过errors.Is识别,不是致命错误
var ErrDuplicate = errors.New("URL已写入,跳过重复记录")

// Writer 语料写入器
// 以追加模式打开输出文件,每条记录写成一行UTF-8 JSON并立即落盘;
// 通过内存中的URL集合保证同一URL在语料中只出现一次
type Writer struct {
	file *os.File
	path string
	seen map[string]struct{}
}

// NewWriter 创建语料写入器
// resume为true时先扫描已存在的输出文件,把其中的URL并入去重集合,
// 使多次运行追加同一语料时不会产生重复记录
func NewWriter(path string, resume bool) (*Writer, error) {
	seen := make(map[string]struct{})

	if resume {
		if err := loadSeenURLs(path, seen); err != nil {
			return nil, fmt.Errorf("恢复去重集合失败: %w", err)
		}
		if len(seen) > 0 {
			utils.Infof("从已有语料恢复 %d 个URL", len(seen))
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("打开输出文件失败 [%s]: %w", path, err)
	}

	return &Writer{
		file: file,
		path: path,
		seen: seen,
	}, nil
}

// Write 追加一条记录
// 重复URL返回ErrDuplicate(跳过信号);I/O失败返回致命错误,
// 此时语料完整性无法保证,调用方应终止运行
func (w *Writer) Write(record models.ArticleRecord) error {
	if record.URL == "" {
		return fmt.Errorf("记录缺少URL,拒绝写入")
	}
	if _, exists := w.seen[record.URL]; exists {
		return ErrDuplicate
	}

	line, err := encodeRecord(record)
	if err != nil {
		return fmt.Errorf("序列化记录失败 [%s]: %w", record.URL, err)
	}

	// 单次系统调用写入完整一行,进程中断也不会留下残行
	if _, err := w.file.Write(line); err != nil {
		return fmt.Errorf("写入语料失败 [%s]: %w", w.path, err)
	}

	w.seen[record.URL] = struct{}{}
	return nil
}

// Seen 检查URL是否已写入
func (w *Writer) Seen(url string) bool {
	_, exists := w.seen[url]
	return exists
}

// Count 返回去重集合大小(含恢复的历史URL)
func (w *Writer) Count() int {
	return len(w.seen)
}

// Close 关闭输出文件
func (w *Writer) Close() error {
	return w.file.Close()
}

// encodeRecord 把记录编码为带换行符的JSON行
// 关闭HTML转义,保持中文和URL原样可读
func encodeRecord(record models.ArticleRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&record); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// loadSeenURLs 扫描已有JSONL文件,提取url字段并入去重集合
// 损坏的行跳过不报错,保证历史语料部分损坏时仍能继续追加
func loadSeenURLs(path string, seen map[string]struct{}) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		var record struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			continue
		}
		if record.URL != "" {
			seen[record.URL] = struct{}{}
		}
	}

	return scanner.Err()
}
