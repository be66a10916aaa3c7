package models

import (
	"encoding/json"
	"time"
)

// RunStats 单次运行统计
type RunStats struct {
	ListingPages      int     `json:"listing_pages"`      // 已抓取的列表页数
	ArticlesFetched   int     `json:"articles_fetched"`   // 已访问的文章页数
	RecordsWritten    int     `json:"records_written"`    // 已写入的记录数
	DuplicatesSkipped int     `json:"duplicates_skipped"` // 因URL重复跳过的记录数
	FetchFailures     int     `json:"fetch_failures"`     // 抓取失败次数(已降级为稀疏记录)
	SparseRecords     int     `json:"sparse_records"`     // 稀疏记录数(仅URL有效)
	Duration          float64 `json:"duration"`           // 总耗时(秒)
}

// ResourceSnapshot 运行结束时的主机资源快照
type ResourceSnapshot struct {
	TotalMemory   uint64  `json:"total_memory"`   // 系统总内存(字节)
	UsedMemory    uint64  `json:"used_memory"`    // 系统已用内存(字节)
	MemoryPercent float64 `json:"memory_percent"` // 内存使用率(%)
	CPUPercent    float64 `json:"cpu_percent"`    // CPU使用率(%)
	HeapAlloc     uint64  `json:"heap_alloc"`     // 进程堆内存(字节)
}

// RunReport 运行报告
// 每次抓取结束后写入 <output>.report.json
type RunReport struct {
	TaskID    string     `json:"task_id"`              // 任务唯一ID (UUID)
	Mode      ScrapeMode `json:"mode"`                 // 抓取模式
	StartURL  string     `json:"start_url,omitempty"`  // 分类模式起始URL
	SeedsFile string     `json:"seeds_file,omitempty"` // seeds模式种子文件

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Stats     RunStats         `json:"stats"`
	Resources ResourceSnapshot `json:"resources"`

	OutputFile string       `json:"output_file"` // 语料输出路径
	Config     ScrapeConfig `json:"config"`      // 配置快照
}

// ToJSON 序列化为JSON
func (r *RunReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *RunReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
