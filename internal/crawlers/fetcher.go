package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"

	"github.com/RecoveryAshes/NewsRaker/internal/models"
	"github.com/RecoveryAshes/NewsRaker/internal/utils"
)

const (
	// MaxBodySize 响应体最大读取字节数 (20MB)
	MaxBodySize = 20 * 1024 * 1024

	// DefaultUserAgent 默认User-Agent
	DefaultUserAgent = "NewsRaker/1.0 (+https://github.com/RecoveryAshes/NewsRaker)"
)

// FetchError 抓取失败错误
// 携带目标URL和失败原因,调用方据此降级为稀疏记录或提前结束翻页
type FetchError struct {
	URL        string // 请求的URL
	StatusCode int    // HTTP状态码 (传输层错误时为0)
	Cause      error  // 底层错误
}

// Error 实现error接口
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("抓取失败 [%s]: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("抓取失败 [%s]: %v", e.URL, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Fetcher 限速HTTP抓取器
// 所有组件共用同一个Fetcher实例,礼貌延迟在每次网络调用前统一生效,
// 这是整个程序唯一的限速机制
type Fetcher struct {
	client         *http.Client
	delay          time.Duration
	lastRequest    time.Time
	headerProvider models.HeaderProvider
}

// NewFetcher 创建抓取器
// delay为最小请求间隔,headerProvider可为nil(此时仅携带默认User-Agent)
func NewFetcher(delay time.Duration, timeout time.Duration, headerProvider models.HeaderProvider) *Fetcher {
	// 跳过证书验证,允许访问证书配置不当的新闻站点
	client := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		},
		Timeout: timeout,
	}

	return &Fetcher{
		client:         client,
		delay:          delay,
		headerProvider: headerProvider,
	}
}

// Fetch 抓取单个页面,返回解码为UTF-8的HTML文本
// 传输错误或非2xx状态码返回*FetchError,从不panic
func (f *Fetcher) Fetch(pageURL string) (string, error) {
	f.waitPoliteness()

	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{URL: pageURL, Cause: err}
	}

	f.applyHeaders(req)

	resp, err := f.client.Do(req)
	f.lastRequest = time.Now()
	if err != nil {
		return "", &FetchError{URL: pageURL, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return "", &FetchError{URL: pageURL, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	// 解压响应体(如果有压缩)
	if encoding := resp.Header.Get("Content-Encoding"); encoding != "" {
		decompressed, err := decompressResponse(encoding, body)
		if err != nil {
			utils.Warnf("解压响应失败 [%s] (编码=%s): %v", pageURL, encoding, err)
		} else {
			body = decompressed
		}
	}

	// 按Content-Type声明的字符集解码为UTF-8 (Big5/GBK等中文编码常见)
	reader, err := charset.NewReader(bytes.NewReader(body), resp.Header.Get("Content-Type"))
	if err != nil {
		// 字符集未知时按原始字节处理
		return string(body), nil
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(body), nil
	}

	return string(decoded), nil
}

// FetchDocument 抓取页面并解析为goquery文档
func (f *Fetcher) FetchDocument(pageURL string) (*goquery.Document, error) {
	markup, err := f.Fetch(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Cause: err}
	}

	return doc, nil
}

// waitPoliteness 执行礼貌延迟
// 距上次请求不足delay时补足剩余时间,第一次请求不等待
func (f *Fetcher) waitPoliteness() {
	if f.delay <= 0 || f.lastRequest.IsZero() {
		return
	}

	elapsed := time.Since(f.lastRequest)
	if elapsed < f.delay {
		time.Sleep(f.delay - elapsed)
	}
}

// applyHeaders 应用自定义HTTP头部
func (f *Fetcher) applyHeaders(req *http.Request) {
	req.Header.Set("User-Agent", DefaultUserAgent)

	if f.headerProvider == nil {
		return
	}

	headers, err := f.headerProvider.GetHeaders()
	if err != nil {
		utils.Warnf("获取HTTP头部失败: %v", err)
		return
	}

	for name, values := range headers {
		if len(values) > 0 {
			req.Header.Set(name, values[0])
		}
	}
}

// decompressResponse 根据Content-Encoding头部解压响应体
// 支持 gzip, deflate, br (Brotli) 三种压缩格式
func decompressResponse(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip":
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()
		return io.ReadAll(reader)

	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()
		return io.ReadAll(reader)

	case "br":
		return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))

	case "", "identity":
		return body, nil

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}
