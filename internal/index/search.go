package index

import (
	"math"
	"sort"
)

// SearchResult 一条检索结果
type SearchResult struct {
	Score float64 `json:"score"`
	Doc   DocMeta `json:"doc"`
}

// Search 在索引上执行TF-IDF余弦相似度检索
// 查询分词后构造词频向量并L2归一化,与各文档向量求点积排序,
// 返回得分最高的topK条结果(得分相同时按doc_id升序)
func (idx *Index) Search(query string, topK int) []SearchResult {
	queryVector := idx.queryVector(query)

	scores := make([]float64, len(idx.Vectors))
	for docID, docVector := range idx.Vectors {
		scores[docID] = dotProduct(queryVector, docVector)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topK <= 0 || topK > len(order) {
		topK = len(order)
	}

	results := make([]SearchResult, 0, topK)
	for _, docID := range order[:topK] {
		results = append(results, SearchResult{
			Score: scores[docID],
			Doc:   idx.Docs[docID],
		})
	}

	return results
}

// queryVector 构造查询向量
// 词频累加后整体L2归一化,词表外的词项直接忽略
func (idx *Index) queryVector(query string) map[int]float64 {
	vector := make(map[int]float64)

	for _, token := range Tokenize(query) {
		if termID, ok := idx.Vocab[token]; ok {
			vector[termID] += 1.0
		}
	}

	var norm float64
	for _, weight := range vector {
		norm += weight * weight
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for termID := range vector {
			vector[termID] /= norm
		}
	}

	return vector
}

// dotProduct 稀疏向量点积,遍历较小的一侧
func dotProduct(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}

	var sum float64
	for termID, weight := range a {
		if other, ok := b[termID]; ok {
			sum += weight * other
		}
	}
	return sum
}
