package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/RecoveryAshes/NewsRaker/internal/models"
)

// Config 应用程序配置
type Config struct {
	Scrape  models.ScrapeConfig `mapstructure:"scrape"`
	Logging LoggingConfig       `mapstructure:"logging"`
	Headers map[string]string   `mapstructure:"headers"`
	Index   IndexConfig         `mapstructure:"index"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// IndexConfig 索引配置
type IndexConfig struct {
	OutDir string `mapstructure:"out_dir"`
	TopK   int    `mapstructure:"top_k"`
}

// LoadConfig 加载配置文件
// 未指定路径时按 ./configs, ., ~/.newsraker 顺序搜索config.yaml;
// 配置文件不存在不是错误,使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".newsraker"))
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 抓取配置默认值
	v.SetDefault("scrape.start_url", "https://technews.tw/category/ai/")
	v.SetDefault("scrape.output", "ai_articles.jsonl")
	v.SetDefault("scrape.max_pages", 0)
	v.SetDefault("scrape.delay", 1.0)
	v.SetDefault("scrape.timeout", 10)
	v.SetDefault("scrape.resume", true)

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	// 索引配置默认值
	v.SetDefault("index.out_dir", "index_dir")
	v.SetDefault("index.top_k", 10)
}

// MergeCLIFlags 合并命令行参数到抓取配置
// 命令行参数优先于配置文件
func (c *Config) MergeCLIFlags(startURL, seedsFile, output string, maxPages int, delay float64) {
	if startURL != "" {
		c.Scrape.StartURL = startURL
	}
	if seedsFile != "" {
		c.Scrape.SeedsFile = seedsFile
	}
	if output != "" {
		c.Scrape.Output = output
	}
	if maxPages >= 0 {
		c.Scrape.MaxPages = maxPages
	}
	if delay >= 0 {
		c.Scrape.Delay = delay
	}
}
