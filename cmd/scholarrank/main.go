package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RecoveryAshes/ScholarRank/internal/core"
	"github.com/RecoveryAshes/ScholarRank/internal/models"
	"github.com/RecoveryAshes/ScholarRank/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	logLevel   string
	debugMode  bool

	// HTTP头部参数
	headers        []string // 自定义HTTP请求头
	validateConfig bool     // 验证头部配置文件

	// 检索参数
	keyword     string
	keywordFile string
	nresults    int
	sortBy      string
	csvPath     string
	notSaveCSV  bool
	plotResults bool
	startYear   int
	endYear     int
	download    bool
	archive     bool
	publication string
	proxy       string

	// 批量处理参数
	batchDelay      int
	continueOnError bool
)

var rootCmd = &cobra.Command{
	Use:   "scholarrank",
	Short: "Google Scholar关键词检索和引用排名工具",
	Long: `ScholarRank - Google Scholar关键词检索和引用排名工具 (Go版本)

按关键词抓取检索结果页,提取标题、作者、年份、引用数和链接,
按引用数(或指定列)排名后输出。支持:
  • 分页串行抓取,固定页间延迟规避反爬虫
  • 命中人机验证时切换人工辅助浏览器会话
  • 尽力而为的字段提取,缺失字段用占位值补齐
  • 结果表格打印、CSV导出、排名-引用散点图
  • 按排名批量下载PDF原文
  • 批量关键词处理
  • 自定义HTTP请求头

使用示例:
  # 检索关键词并导出CSV
  scholarrank -k "graph neural networks" -n 20

  # 按年均引用排序并绘图
  scholarrank -k "deep learning" --sortby "cit/year" --plotresults

  # 走Wayback快照端点 (需显式关闭出版物过滤)
  scholarrank -k "machine learning" --archive --publication ""

  # 批量下载PDF
  scholarrank -k "reinforcement learning" -d

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		// 初始化日志系统
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
		if debugMode {
			logConfig.Level = "debug"
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		appConfig, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		// 创建HTTP头部管理器
		headerManager, err := core.NewHeaderManager(appConfig.Fetch.HeadersFile, headers)
		if err != nil {
			return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
		}

		// 如果用户请求验证头部配置
		if validateConfig {
			utils.Info("🔍 验证HTTP头部配置...")
			if err := headerManager.LoadConfig(); err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			if err := headerManager.Validate(); err != nil {
				return fmt.Errorf("配置验证失败: %w", err)
			}

			// 显示合并后的头部(脱敏)
			safeHeaders := headerManager.GetSafeHeaders()
			utils.Info("✅ 配置验证通过!")
			utils.Infof("当前有效的HTTP头部 (%d个):", len(safeHeaders))
			for name, value := range safeHeaders {
				utils.Infof("  %s: %s", name, value)
			}
			return nil
		}

		// 配置文件为未显式传入的标志提供值
		mergeConfigDefaults(cmd, appConfig)

		// 没有提供任何关键词: 显示帮助并以错误退出
		if keyword == "" && keywordFile == "" {
			cmd.Help()
			return fmt.Errorf("缺少检索关键词: 需要 --kw 或 --file")
		}

		// 快照端点不支持出版物过滤参数,冲突立即退出
		// "all"和默认的"arxiv"也算冲突,需显式传 --publication ""
		if archive && publication != "" {
			utils.Errorf("should NOT use --archive: archive mode NOT SUPPORT as_publication parameters: %v",
				models.ErrInvalidConfiguration)
			os.Exit(-1)
		}

		// 验证参数
		if err := ValidateFlags(nresults, startYear, endYear, proxy); err != nil {
			return err
		}

		// 截止年份默认当前年
		if endYear == 0 {
			endYear = time.Now().Year()
		}

		// 创建检索配置,命令行参数优先于配置文件
		crawlConfig := models.CrawlConfig{
			Keyword:     keyword,
			ResultCount: nresults,
			SortBy:      sortBy,
			CSVPath:     csvPath,
			SaveCSV:     !notSaveCSV && appConfig.Output.SaveCSV,
			PlotResults: plotResults,
			StartYear:   startYear,
			EndYear:     endYear,
			Download:    download,
			Archive:     archive,
			Publication: publication,
			Proxy:       proxy,
			Debug:       debugMode,
		}
		if crawlConfig.Proxy == "" {
			crawlConfig.Proxy = appConfig.Fetch.Proxy
		}

		// 信号处理: Ctrl+C取消context,流水线收尾时关闭浏览器会话
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pipeline := core.NewPipeline(appConfig, headerManager)

		// 批量模式
		if keywordFile != "" {
			if err := ValidateKeywordFile(keywordFile); err != nil {
				return err
			}
			keywords, err := utils.ReadKeywordsFromFile(keywordFile)
			if err != nil {
				return fmt.Errorf("读取关键词文件失败: %w", err)
			}

			batchCrawler := core.NewBatchCrawler(pipeline, crawlConfig,
				time.Duration(batchDelay)*time.Second, continueOnError)

			if _, err := batchCrawler.CrawlBatch(ctx, keywords); err != nil {
				return fmt.Errorf("批量检索失败: %w", err)
			}

			utils.Info("✨ 批量检索任务完成!")
			return nil
		}

		// 单关键词模式
		report, err := pipeline.Run(ctx, crawlConfig)
		if err != nil {
			return err
		}

		// 显示统计结果
		stats := report.Stats
		fmt.Println("\n==================================================")
		fmt.Println("📊 检索统计")
		fmt.Println("==================================================")
		fmt.Printf("✅ 成功页数: %d/%d\n", stats.PagesFetched, stats.PagesRequested)
		fmt.Printf("✅ 记录数: %d\n", stats.RecordsParsed)
		fmt.Printf("⚠️  引用数缺失: %d\n", stats.CitationMisses)
		fmt.Printf("⚠️  年份缺失: %d\n", stats.YearMisses)
		fmt.Printf("🌐 人机验证命中: %d (浏览器兜底 %d)\n", stats.RobotChecks, stats.BrowserFallbacks)
		if download {
			fmt.Printf("📥 下载: 成功 %d, 失败 %d, 跳过 %d\n",
				stats.DownloadsOK, stats.DownloadsFailed, stats.DownloadsSkipped)
		}
		fmt.Printf("⏱️  总耗时: %.2f秒\n", stats.Duration)
		fmt.Println("==================================================")

		utils.Info("✨ 检索任务完成!")
		return nil
	},
}

// mergeConfigDefaults 用配置文件的值填充未显式传入的标志
// 生效优先级: 命令行标志 > 配置文件 > 内置默认
func mergeConfigDefaults(cmd *cobra.Command, appConfig *core.Config) {
	flags := cmd.Flags()
	if !flags.Changed("nresults") {
		nresults = appConfig.Crawl.ResultCount
	}
	if !flags.Changed("sortby") {
		sortBy = appConfig.Crawl.SortBy
	}
	if !flags.Changed("startyear") {
		startYear = appConfig.Crawl.StartYear
	}
	if !flags.Changed("endyear") {
		endYear = appConfig.Crawl.EndYear
	}
	if !flags.Changed("publication") {
		publication = appConfig.Crawl.Publication
	}
	if !flags.Changed("csvpath") {
		csvPath = appConfig.Output.CSVPath
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ScholarRank %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
		fmt.Println("Go实现版本 - Google Scholar检索排名工具")
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "调试模式,打印每个请求URL")

	// HTTP头部参数
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().BoolVar(&validateConfig, "validate-config", false, "验证HTTP头部配置文件正确性")

	// 检索参数
	rootCmd.Flags().StringVarP(&keyword, "kw", "k", "", "检索关键词 (必需,除非使用 --file)")
	rootCmd.Flags().StringVarP(&keywordFile, "file", "f", "", "批量关键词文件,每行一个")
	rootCmd.Flags().IntVarP(&nresults, "nresults", "n", 20, "期望结果条数 (值过高容易触发人机验证)")
	rootCmd.Flags().StringVar(&sortBy, "sortby", "Citations", "排序列名 (Rank|Author|Title|Citations|Year|Source|cit/year)")
	rootCmd.Flags().StringVar(&csvPath, "csvpath", ".", "CSV输出目录")
	rootCmd.Flags().BoolVar(&notSaveCSV, "notsavecsv", false, "只打印结果,不保存CSV")
	rootCmd.Flags().BoolVar(&plotResults, "plotresults", false, "生成排名-引用数散点图PNG")
	rootCmd.Flags().IntVar(&startYear, "startyear", 1980, "检索起始年份")
	rootCmd.Flags().IntVar(&endYear, "endyear", 0, "检索截止年份 (默认当前年)")
	rootCmd.Flags().BoolVarP(&download, "download", "d", false, "批量下载PDF原文")
	rootCmd.Flags().BoolVar(&archive, "archive", false, "走Wayback快照端点 (与--publication冲突,需显式传 --publication \"\")")
	rootCmd.Flags().StringVar(&publication, "publication", "arxiv", "出版物过滤 (arxiv/all等,\"all\"或空表示不过滤)")
	rootCmd.Flags().StringVar(&proxy, "proxy", "", "HTTP代理地址")

	// 批量处理参数
	rootCmd.Flags().IntVar(&batchDelay, "batch-delay", 1, "批量处理关键词间延迟(秒)")
	rootCmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "遇到错误继续处理")

	// 添加子命令
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
