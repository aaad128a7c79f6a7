package core

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/ScholarRank/internal/crawlers"
	"github.com/RecoveryAshes/ScholarRank/internal/models"
	"github.com/RecoveryAshes/ScholarRank/internal/utils"
)

// Pipeline 单个关键词的完整流水线: 检索 -> 表格 -> CSV/绘图 -> PDF下载 -> 运行报告
type Pipeline struct {
	appConfig      *Config
	headerProvider models.HeaderProvider

	// prompt 验证码挂起点,nil时使用标准输入
	prompt crawlers.OperatorPrompt
}

// NewPipeline 创建流水线
func NewPipeline(appConfig *Config, headerProvider models.HeaderProvider) *Pipeline {
	return &Pipeline{
		appConfig:      appConfig,
		headerProvider: headerProvider,
	}
}

// Run 执行一个关键词的完整流程
// 无论CSV和绘图是否开启,最终表格都会打印;浏览器会话在收尾时统一关闭
func (p *Pipeline) Run(ctx context.Context, crawlConfig models.CrawlConfig) (*models.CrawlReport, error) {
	task, err := models.NewCrawlTask(crawlConfig)
	if err != nil {
		return nil, err
	}
	task.Start()

	fetcher, err := crawlers.NewDirectFetcher(crawlers.FetchConfig{
		Timeout: p.appConfig.FetchTimeout(),
		Proxy:   crawlConfig.Proxy,
	}, p.headerProvider)
	if err != nil {
		task.Fail(err.Error())
		return nil, err
	}

	// 浏览器进程在首次人机验证兜底时才真正启动
	session := crawlers.NewBrowserSession(crawlers.BrowserConfig{
		Headless:        p.appConfig.Browser.Headless,
		ElementAttempts: p.appConfig.Browser.ElementAttempts,
		RetryDelay:      p.appConfig.RetryDelay(),
	}, p.prompt)
	defer session.Close()

	crawler, err := NewCrawler(crawlConfig, fetcher, session, p.appConfig.PageDelay())
	if err != nil {
		task.Fail(err.Error())
		return nil, err
	}

	result, err := crawler.Run(ctx)
	if err != nil {
		task.Fail(err.Error())
		return nil, fmt.Errorf("检索失败: %w", err)
	}
	task.Stats = result.Stats

	if session.Launched() {
		utils.Infof("🌐 本次检索使用了人工辅助浏览器会话 (兜底 %d 次)", result.Stats.BrowserFallbacks)
	}

	// 最终表格总是打印
	reporter := NewReporter()
	reporter.PrintTable(result.Records)

	report := &models.CrawlReport{
		TaskID:      task.ID,
		Keyword:     crawlConfig.Keyword,
		StartTime:   *task.StartedAt,
		SortedBy:    result.SortedBy,
		EndYear:     result.EndYear,
		Records:     result.Records,
		FailedPages: result.FailedPages,
		Config:      crawlConfig,
	}

	if crawlConfig.PlotResults {
		if plotPath, err := SavePlot(result.Records, crawlConfig.Keyword, crawlConfig.CSVPath); err != nil {
			utils.Warnf("生成散点图失败: %v", err)
		} else {
			report.PlotPath = plotPath
		}
	}

	if crawlConfig.SaveCSV {
		if csvPath, err := reporter.WriteCSV(result.Records, crawlConfig.Keyword, crawlConfig.CSVPath); err != nil {
			utils.Errorf("保存CSV失败: %v", err)
		} else {
			report.CSVPath = csvPath
		}
	}

	if crawlConfig.Download {
		downloader := NewDownloader(p.appConfig.DownloadTimeout(), p.appConfig.DownloadDelay(), p.headerProvider)
		summary, err := downloader.DownloadAll(result.Records, crawlConfig.Keyword)
		if err != nil {
			utils.Errorf("批量下载失败: %v", err)
		} else {
			task.Stats.DownloadsOK = summary.OK
			task.Stats.DownloadsFailed = summary.Failed
			task.Stats.DownloadsSkipped = summary.Skipped
			report.DownloadDir = summary.OutputDir
			report.FailedDownloads = summary.Failures
		}
	}

	task.Complete()
	report.Stats = task.Stats
	report.EndTime = time.Now()
	report.Duration = task.Stats.Duration

	if p.appConfig.Output.SaveReport {
		if _, err := reporter.WriteRunReport(report, crawlConfig.CSVPath); err != nil {
			utils.Warnf("保存运行报告失败: %v", err)
		}
	}

	return report, nil
}
