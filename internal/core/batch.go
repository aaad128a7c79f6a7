package core

import (
	"context"
	"time"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
	"github.com/RecoveryAshes/ScholarRank/internal/utils"
)

// KeywordRunner 单个关键词的完整执行入口
// 批量检索对每个关键词调用一次,Pipeline是其生产实现
type KeywordRunner interface {
	Run(ctx context.Context, config models.CrawlConfig) (*models.CrawlReport, error)
}

// BatchCrawler 批量关键词检索器
// 逐个关键词跑完整流水线,关键词之间加延迟
type BatchCrawler struct {
	pipeline      KeywordRunner
	baseConfig    models.CrawlConfig
	batchDelay    time.Duration
	continueOnErr bool
}

// BatchResult 单个关键词的批量结果
type BatchResult struct {
	Keyword     string
	Success     bool
	Error       error
	Stats       models.TaskStats
	ProcessedAt time.Time
	Duration    float64
}

// BatchSummary 批量检索摘要
type BatchSummary struct {
	TotalKeywords int
	SuccessCount  int
	FailCount     int
	TotalRecords  int
	TotalDuration float64
	Results       []BatchResult
}

// NewBatchCrawler 创建批量检索器
// baseConfig的Keyword字段会被每个批量关键词覆盖,其余参数对所有关键词生效
func NewBatchCrawler(pipeline KeywordRunner, baseConfig models.CrawlConfig, batchDelay time.Duration, continueOnErr bool) *BatchCrawler {
	return &BatchCrawler{
		pipeline:      pipeline,
		baseConfig:    baseConfig,
		batchDelay:    batchDelay,
		continueOnErr: continueOnErr,
	}
}

// CrawlBatch 批量检索关键词列表
func (bc *BatchCrawler) CrawlBatch(ctx context.Context, keywords []string) (*BatchSummary, error) {
	utils.Infof("🚀 开始批量检索: %d个关键词", len(keywords))

	summary := &BatchSummary{
		TotalKeywords: len(keywords),
		Results:       make([]BatchResult, 0, len(keywords)),
	}

	startTime := time.Now()

	for i, keyword := range keywords {
		utils.Infof("\n==================== [%d/%d] ====================", i+1, len(keywords))
		utils.Infof("关键词: %s", keyword)

		result := bc.crawlSingleKeyword(ctx, keyword)
		summary.Results = append(summary.Results, result)

		if result.Success {
			summary.SuccessCount++
			summary.TotalRecords += result.Stats.RecordsParsed
		} else {
			summary.FailCount++
			utils.Errorf("❌ 检索失败: %v", result.Error)

			if !bc.continueOnErr {
				utils.Warn("批量检索中止 (--continue-on-error=false)")
				break
			}
		}

		// 批量延迟(最后一个关键词不需要延迟)
		if i < len(keywords)-1 && bc.batchDelay > 0 {
			utils.Debugf("等待 %.0f 秒后处理下一个关键词...", bc.batchDelay.Seconds())
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(bc.batchDelay):
			}
		}
	}

	summary.TotalDuration = time.Since(startTime).Seconds()

	bc.printSummary(summary)

	return summary, nil
}

// crawlSingleKeyword 检索单个关键词
func (bc *BatchCrawler) crawlSingleKeyword(ctx context.Context, keyword string) BatchResult {
	result := BatchResult{
		Keyword:     keyword,
		ProcessedAt: time.Now(),
	}

	startTime := time.Now()

	crawlConfig := bc.baseConfig
	crawlConfig.Keyword = keyword

	report, err := bc.pipeline.Run(ctx, crawlConfig)
	if err != nil {
		result.Success = false
		result.Error = err
		result.Duration = time.Since(startTime).Seconds()
		return result
	}

	result.Success = true
	result.Stats = report.Stats
	result.Duration = time.Since(startTime).Seconds()

	return result
}

// printSummary 打印批量检索摘要
func (bc *BatchCrawler) printSummary(summary *BatchSummary) {
	utils.Info("\n==================================================")
	utils.Info("📊 批量检索摘要")
	utils.Info("==================================================")
	utils.Infof("总关键词数: %d", summary.TotalKeywords)
	utils.Infof("✅ 成功: %d", summary.SuccessCount)
	utils.Infof("❌ 失败: %d", summary.FailCount)
	utils.Infof("📦 总记录数: %d", summary.TotalRecords)
	utils.Infof("⏱️  总耗时: %.2f秒", summary.TotalDuration)
	utils.Info("==================================================")

	// 显示失败的关键词
	if summary.FailCount > 0 {
		utils.Warn("\n失败的关键词:")
		for _, result := range summary.Results {
			if !result.Success {
				utils.Warnf("  - %s: %v", result.Keyword, result.Error)
			}
		}
	}
}
