package index

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/RecoveryAshes/NewsRaker/internal/models"
	"github.com/RecoveryAshes/NewsRaker/internal/utils"
)

// 索引目录中的文件名
const (
	docsFile     = "docs.json"
	vocabFile    = "vocab.json"
	invertedFile = "inverted.json"
	tfidfFile    = "tfidf.json"
)

// DocMeta 索引中一篇文档的元数据
type DocMeta struct {
	ID    int     `json:"id"`
	Title *string `json:"title"`
	URL   string  `json:"url"`
	Date  *string `json:"date"`
}

// Index 倒排索引和TF-IDF向量
// Inverted: 词项 -> [[doc_id, term_freq], ...] 按doc_id升序
// Vectors: 每篇文档一个L2归一化的稀疏TF-IDF向量 (词项下标 -> 权重)
type Index struct {
	Docs     []DocMeta
	Vocab    map[string]int
	Inverted map[string][][2]int
	Vectors  []map[int]float64
}

// BuildIndex 从语料记录构建索引
// 正文为null的记录以空文本参与(占据doc_id但不产生词项)
func BuildIndex(records []models.ArticleRecord) *Index {
	idx := &Index{
		Docs:     make([]DocMeta, 0, len(records)),
		Vocab:    make(map[string]int),
		Inverted: make(map[string][][2]int),
		Vectors:  make([]map[int]float64, len(records)),
	}

	// 第一遍: 分词统计词频,收集词表
	termCounts := make([]map[string]int, len(records))
	bar := utils.NewProgressBar(len(records), "构建索引")

	for i, record := range records {
		idx.Docs = append(idx.Docs, DocMeta{
			ID:    i,
			Title: record.Title,
			URL:   record.URL,
			Date:  record.Date,
		})

		counts := make(map[string]int)
		for _, token := range Tokenize(derefOrEmpty(record.Content)) {
			counts[token]++
		}
		termCounts[i] = counts
		bar.Add(1)
	}

	// 词表按字典序编号,保证构建结果可复现
	terms := make([]string, 0, len(idx.Vocab))
	seen := make(map[string]bool)
	for _, counts := range termCounts {
		for term := range counts {
			if !seen[term] {
				seen[term] = true
				terms = append(terms, term)
			}
		}
	}
	sort.Strings(terms)
	for i, term := range terms {
		idx.Vocab[term] = i
	}

	// 第二遍: 倒排表 + 文档频率
	docFreq := make([]int, len(terms))
	for docID, counts := range termCounts {
		for term, freq := range counts {
			termID := idx.Vocab[term]
			idx.Inverted[term] = append(idx.Inverted[term], [2]int{docID, freq})
			docFreq[termID]++
		}
	}
	for term := range idx.Inverted {
		postings := idx.Inverted[term]
		sort.Slice(postings, func(a, b int) bool {
			return postings[a][0] < postings[b][0]
		})
	}

	// 第三遍: TF-IDF向量
	// 权重 = tf * (ln((1+N)/(1+df)) + 1),逐文档L2归一化
	totalDocs := len(records)
	for docID, counts := range termCounts {
		vector := make(map[int]float64, len(counts))
		var norm float64

		for term, freq := range counts {
			termID := idx.Vocab[term]
			idf := math.Log(float64(1+totalDocs)/float64(1+docFreq[termID])) + 1.0
			weight := float64(freq) * idf
			vector[termID] = weight
			norm += weight * weight
		}

		if norm > 0 {
			norm = math.Sqrt(norm)
			for termID := range vector {
				vector[termID] /= norm
			}
		}

		idx.Vectors[docID] = vector
	}

	utils.Infof("索引构建完成: %d 篇文档, %d 个词项", len(records), len(terms))
	return idx
}

// Save 将索引写入目录
// 产出 docs.json / vocab.json / inverted.json / tfidf.json 四个文件
func (idx *Index) Save(outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("创建索引目录失败: %w", err)
	}

	artifacts := map[string]interface{}{
		docsFile:     idx.Docs,
		vocabFile:    idx.Vocab,
		invertedFile: idx.Inverted,
		tfidfFile:    idx.Vectors,
	}

	for name, data := range artifacts {
		encoded, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("序列化%s失败: %w", name, err)
		}
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, encoded, 0644); err != nil {
			return fmt.Errorf("写入%s失败: %w", name, err)
		}
	}

	utils.Infof("✅ 索引已保存: %s", outDir)
	return nil
}

// Load 从目录加载索引
func Load(indexDir string) (*Index, error) {
	idx := &Index{}

	targets := map[string]interface{}{
		docsFile:     &idx.Docs,
		vocabFile:    &idx.Vocab,
		invertedFile: &idx.Inverted,
		tfidfFile:    &idx.Vectors,
	}

	for name, target := range targets {
		path := filepath.Join(indexDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取%s失败: %w", name, err)
		}
		if err := json.Unmarshal(data, target); err != nil {
			return nil, fmt.Errorf("解析%s失败: %w", name, err)
		}
	}

	return idx, nil
}

// derefOrEmpty 解引用字符串指针,nil时返回空串
func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
