package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/RecoveryAshes/NewsRaker/internal/models"
)

// ReadAll 读取整个JSONL语料
// 无法解析的行静默跳过,与写入端的"部分损坏仍可用"约定一致
func ReadAll(path string) ([]models.ArticleRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开语料文件失败 [%s]: %w", path, err)
	}
	defer file.Close()

	var records []models.ArticleRecord

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		var record models.ArticleRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			continue
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取语料文件失败 [%s]: %w", path, err)
	}

	return records, nil
}
