package models

import "fmt"

// ScrapeMode 抓取模式
type ScrapeMode string

const (
	ModeCategory ScrapeMode = "category" // 分类列表页模式(逐页翻页)
	ModeSeeds    ScrapeMode = "seeds"    // 种子URL模式(同域广度优先)
)

// ScrapeConfig 抓取配置
type ScrapeConfig struct {
	StartURL  string  `json:"start_url" mapstructure:"start_url"`   // 分类列表起始URL
	SeedsFile string  `json:"seeds_file" mapstructure:"seeds_file"` // 种子URL文件路径(非空时进入seeds模式)
	Output    string  `json:"output" mapstructure:"output"`         // 输出JSONL文件路径
	MaxPages  int     `json:"max_pages" mapstructure:"max_pages"`   // 最大翻页/抓取页数 (0 = 不限制)
	Delay     float64 `json:"delay" mapstructure:"delay"`           // 请求间隔(秒)
	Timeout   int     `json:"timeout" mapstructure:"timeout"`       // 单次请求超时(秒)
	Resume    bool    `json:"resume" mapstructure:"resume"`         // 启动时从已有输出文件恢复去重集合
}

// Mode 根据配置推断抓取模式
func (c *ScrapeConfig) Mode() ScrapeMode {
	if c.SeedsFile != "" {
		return ModeSeeds
	}
	return ModeCategory
}

// Validate 验证配置
func (c *ScrapeConfig) Validate() error {
	if c.StartURL == "" && c.SeedsFile == "" {
		return fmt.Errorf("必须提供起始URL或种子文件")
	}
	if c.Output == "" {
		return fmt.Errorf("输出文件路径不能为空")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("最大页数不能为负数,当前值: %d", c.MaxPages)
	}
	if c.Delay < 0 || c.Delay > 60 {
		return fmt.Errorf("请求间隔必须在0-60秒之间,当前值: %.2f", c.Delay)
	}
	if c.Timeout < 1 || c.Timeout > 120 {
		return fmt.Errorf("请求超时必须在1-120秒之间,当前值: %d", c.Timeout)
	}
	return nil
}
