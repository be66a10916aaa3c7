package main

import (
	"fmt"

	"github.com/RecoveryAshes/NewsRaker/internal/models"
	"github.com/RecoveryAshes/NewsRaker/internal/utils"
)

// ValidateFlags 验证合并后的抓取配置
func ValidateFlags(config models.ScrapeConfig) error {
	if config.StartURL == "" && config.SeedsFile == "" {
		return fmt.Errorf("必须通过 -u 提供起始URL或通过 --seeds 提供种子文件")
	}

	if config.StartURL != "" && config.SeedsFile == "" {
		normalized, err := utils.NormalizeStartURL(config.StartURL)
		if err != nil {
			return fmt.Errorf("无效的起始URL: %w", err)
		}
		if err := utils.ValidateURL(normalized); err != nil {
			return fmt.Errorf("无效的起始URL: %w", err)
		}
	}

	if config.Output == "" {
		return fmt.Errorf("输出文件路径不能为空")
	}

	if config.MaxPages < 0 {
		return fmt.Errorf("最大页数不能为负数,当前值: %d", config.MaxPages)
	}

	if config.Delay < 0 || config.Delay > 60 {
		return fmt.Errorf("请求间隔必须在0-60秒之间,当前值: %.2f", config.Delay)
	}

	return nil
}
