package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/NewsRaker/internal/core"
	"github.com/RecoveryAshes/NewsRaker/internal/corpus"
	"github.com/RecoveryAshes/NewsRaker/internal/index"
	"github.com/RecoveryAshes/NewsRaker/internal/models"
	"github.com/RecoveryAshes/NewsRaker/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// HTTP头部参数
	headers []string // 自定义HTTP请求头

	// 抓取参数
	startURL  string
	seedsFile string
	output    string
	maxPages  int
	delay     float64
	resume    bool

	// 索引/检索参数
	indexInput string
	indexDir   string
	topK       int
)

var rootCmd = &cobra.Command{
	Use:   "newsraker",
	Short: "新闻文章抓取和检索工具",
	Long: `NewsRaker - 新闻分类列表页抓取工具 (Go版本)

从新闻站点的分类列表页出发,逐页翻页收集文章链接,
抓取每篇文章并提取结构化字段,追加写入JSONL语料文件。支持:
  • 分类列表页逐页翻页抓取
  • 种子URL同域扩散抓取 (--seeds)
  • 按URL去重和断点续抓
  • 礼貌延迟限速
  • 自定义HTTP请求头
  • TF-IDF全文索引和检索 (index / search 子命令)

使用示例:
  # 分类模式(默认参数抓取AI分类)
  newsraker -u https://technews.tw/category/ai/ -o ai_articles.jsonl

  # 限制翻页数和请求间隔
  newsraker -u https://technews.tw/category/ai/ --max-pages 5 --delay 2.0

  # 种子模式
  newsraker --seeds seeds.txt -o articles.jsonl

  # 构建索引后检索
  newsraker index --input ai_articles.jsonl --outdir index_dir
  newsraker search --index index_dir --query "生成式AI" --topk 10

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		logConfig := utils.LogConfig{
			Level:      config.Logging.Level,
			LogDir:     config.Logging.LogDir,
			MaxSize:    config.Logging.Rotation.MaxSize,
			MaxBackups: config.Logging.Rotation.MaxBackups,
			MaxAge:     config.Logging.Rotation.MaxAge,
			Compress:   config.Logging.Rotation.Compress,
		}

		// 命令行参数覆盖配置文件
		if logLevel != "" {
			logConfig.Level = logLevel
		}
		if verbose && logLevel == "" {
			logConfig.Level = "debug"
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// 设置信号处理(Ctrl+C优雅退出)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		go func() {
			sig := <-sigChan
			utils.Warnf("\n收到中断信号: %v, 正在优雅关闭...", sig)
			os.Exit(0)
		}()

		appConfig, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		appConfig.MergeCLIFlags(startURL, seedsFile, output, maxPages, delay)
		if cmd.Flags().Changed("resume") {
			appConfig.Scrape.Resume = resume
		}

		if err := ValidateFlags(appConfig.Scrape); err != nil {
			return err
		}

		headerManager, err := core.NewHeaderManager(appConfig.Headers, headers)
		if err != nil {
			return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
		}

		var stats models.RunStats
		if appConfig.Scrape.Mode() == models.ModeSeeds {
			stats, err = runSeedsMode(appConfig.Scrape, headerManager)
		} else {
			stats, err = runCategoryMode(appConfig.Scrape, headerManager)
		}
		if err != nil {
			return err
		}

		printStats(stats)
		utils.Info("✨ 抓取任务完成!")
		return nil
	},
}

// runCategoryMode 执行分类列表页模式
func runCategoryMode(config models.ScrapeConfig, headerManager *core.HeaderManager) (models.RunStats, error) {
	normalized, err := utils.NormalizeStartURL(config.StartURL)
	if err != nil {
		return models.RunStats{}, fmt.Errorf("无效的起始URL: %w", err)
	}
	config.StartURL = normalized

	scraper, err := core.NewScraper(config, headerManager)
	if err != nil {
		return models.RunStats{}, fmt.Errorf("创建抓取器失败: %w", err)
	}
	defer scraper.Close()

	if err := scraper.Run(); err != nil {
		return scraper.GetStats(), fmt.Errorf("抓取失败: %w", err)
	}
	return scraper.GetStats(), nil
}

// runSeedsMode 执行种子URL模式
func runSeedsMode(config models.ScrapeConfig, headerManager *core.HeaderManager) (models.RunStats, error) {
	seeds, err := utils.ReadSeedsFromFile(config.SeedsFile)
	if err != nil {
		return models.RunStats{}, fmt.Errorf("读取种子文件失败: %w", err)
	}

	crawler, err := core.NewFrontierCrawler(config, headerManager)
	if err != nil {
		return models.RunStats{}, fmt.Errorf("创建爬取器失败: %w", err)
	}
	defer crawler.Close()

	if err := crawler.Run(seeds); err != nil {
		return crawler.GetStats(), fmt.Errorf("抓取失败: %w", err)
	}
	return crawler.GetStats(), nil
}

// printStats 打印统计结果
func printStats(stats models.RunStats) {
	fmt.Println("\n==================================================")
	fmt.Println("📊 抓取统计")
	fmt.Println("==================================================")
	fmt.Printf("✅ 列表页数: %d\n", stats.ListingPages)
	fmt.Printf("✅ 文章页数: %d\n", stats.ArticlesFetched)
	fmt.Printf("✅ 写入记录: %d\n", stats.RecordsWritten)
	fmt.Printf("🔁 跳过重复: %d\n", stats.DuplicatesSkipped)
	fmt.Printf("❌ 抓取失败: %d\n", stats.FetchFailures)
	fmt.Printf("⏱️  总耗时: %.2f秒\n", stats.Duration)
	fmt.Println("==================================================")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("NewsRaker %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
		fmt.Println("Go实现版本 - 新闻文章抓取和检索工具")
	},
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "从JSONL语料构建TF-IDF索引",
	RunE: func(cmd *cobra.Command, args []string) error {
		appConfig, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		input := indexInput
		if input == "" {
			input = appConfig.Scrape.Output
		}
		outDir := indexDir
		if outDir == "" {
			outDir = appConfig.Index.OutDir
		}

		records, err := corpus.ReadAll(input)
		if err != nil {
			return fmt.Errorf("读取语料失败: %w", err)
		}
		if len(records) == 0 {
			return fmt.Errorf("语料文件为空: %s", input)
		}

		idx := index.BuildIndex(records)
		if err := idx.Save(outDir); err != nil {
			return fmt.Errorf("保存索引失败: %w", err)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "在索引上执行TF-IDF余弦相似度检索",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appConfig, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		dir := indexDir
		if dir == "" {
			dir = appConfig.Index.OutDir
		}
		k := topK
		if k <= 0 {
			k = appConfig.Index.TopK
		}

		idx, err := index.Load(dir)
		if err != nil {
			return fmt.Errorf("加载索引失败: %w", err)
		}

		query := args[0]
		results := idx.Search(query, k)
		for _, r := range results {
			title := ""
			if r.Doc.Title != nil {
				title = *r.Doc.Title
			}
			fmt.Printf("%.4f\t%s\t%s\n", r.Score, title, r.Doc.URL)
		}
		return nil
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")

	// 抓取参数
	rootCmd.Flags().StringVarP(&startURL, "start", "u", "", "分类列表起始URL")
	rootCmd.Flags().StringVar(&seedsFile, "seeds", "", "种子URL文件路径(启用种子模式)")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "输出JSONL文件路径")
	rootCmd.Flags().IntVar(&maxPages, "max-pages", -1, "最大翻页/抓取页数 (0 = 不限制)")
	rootCmd.Flags().Float64Var(&delay, "delay", -1, "请求间隔(秒)")
	rootCmd.Flags().BoolVar(&resume, "resume", true, "启动时从已有输出文件恢复去重集合")

	// 索引参数
	indexCmd.Flags().StringVar(&indexInput, "input", "", "输入JSONL语料文件")
	indexCmd.Flags().StringVar(&indexDir, "outdir", "", "索引输出目录")

	// 检索参数
	searchCmd.Flags().StringVar(&indexDir, "index", "", "索引目录")
	searchCmd.Flags().IntVar(&topK, "topk", 0, "返回结果数量")

	// 添加子命令
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
