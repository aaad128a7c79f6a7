package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
	"github.com/RecoveryAshes/ScholarRank/internal/scholar"
	"github.com/RecoveryAshes/ScholarRank/internal/utils"
)

// PageFetcher 结果页的直接获取路径
type PageFetcher interface {
	FetchPage(url string) ([]byte, error)
}

// RenderedFetcher 人机验证兜底的浏览器获取路径
// 会话的生命周期(惰性启动、收尾关闭)由流水线管理,协调器只负责取页
type RenderedFetcher interface {
	FetchRendered(ctx context.Context, url string) ([]byte, error)
}

// RunResult 一次检索的完整产出
type RunResult struct {
	// Records 已按排序列降序排列的记录
	Records []models.Record

	// SortedBy 实际生效的排序列,列名无效时回退为Citations
	SortedBy string

	// EndYear 年均引用计算用的截止年
	EndYear int

	// Stats 任务统计
	Stats models.TaskStats

	// FailedPages 被跳过的结果页明细
	FailedPages []models.FailedPageInfo
}

// Crawler 检索协调器
// 串行驱动分页: 构造URL -> 直接抓取 -> 必要时浏览器兜底 -> 解析 -> 分配排名,
// 页间固定延迟。单页失败只跳过该页,不中断整个任务
type Crawler struct {
	config  models.CrawlConfig
	fetcher PageFetcher
	browser RenderedFetcher
	parser  *scholar.Parser
	urls    *scholar.URLBuilder

	// pageDelay 页间延迟,每页抓完后都会等待(包括最后一页)
	pageDelay time.Duration
}

// NewCrawler 创建检索协调器
func NewCrawler(config models.CrawlConfig, fetcher PageFetcher, browser RenderedFetcher, pageDelay time.Duration) (*Crawler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if pageDelay <= 0 {
		pageDelay = 500 * time.Millisecond
	}

	return &Crawler{
		config:    config,
		fetcher:   fetcher,
		browser:   browser,
		parser:    scholar.NewParser(),
		urls:      scholar.NewURLBuilder(&config),
		pageDelay: pageDelay,
	}, nil
}

// Run 执行检索
// 偏移严格升序推进,排名在所有页之间连续递增,从1开始;
// 不跨页去重,同一篇出现在两页会得到两条排名不同的记录
func (c *Crawler) Run(ctx context.Context) (*RunResult, error) {
	startTime := time.Now()

	utils.Infof("🚀 开始检索任务")
	utils.Infof("关键词: %s", c.config.Keyword)
	utils.Infof("期望结果数: %d", c.config.ResultCount)

	result := &RunResult{EndYear: c.config.EndYear}
	offsets := scholar.PageOffsets(c.config.ResultCount)
	result.Stats.PagesRequested = len(offsets)

	rank := 0
	for _, offset := range offsets {
		pageURL := c.urls.PageURL(offset)
		if c.config.Debug {
			utils.Infof("Opening URL: %s", pageURL)
		}
		utils.Infof("Loading next %d results", offset+10)

		body, mode, err := c.fetchPage(ctx, pageURL, &result.Stats)
		if err != nil {
			// 单页失败不致命: 记录后继续下一个偏移
			utils.Errorf("结果页抓取失败,跳过 [offset=%d]: %v", offset, err)
			result.Stats.PagesFailed++
			result.FailedPages = append(result.FailedPages, models.FailedPageInfo{
				URL:      pageURL,
				Offset:   offset,
				Mode:     mode,
				ErrorMsg: err.Error(),
			})
		} else {
			result.Stats.PagesFetched++

			records, parseStats, parseErr := c.parser.ParsePage(body, pageURL)
			if parseErr != nil {
				utils.Errorf("结果页解析失败,跳过 [offset=%d]: %v", offset, parseErr)
				result.Stats.PagesFailed++
				result.FailedPages = append(result.FailedPages, models.FailedPageInfo{
					URL:      pageURL,
					Offset:   offset,
					Mode:     mode,
					ErrorMsg: parseErr.Error(),
				})
			} else {
				for i := range records {
					rank++
					records[i].Rank = rank
				}
				result.Records = append(result.Records, records...)
				result.Stats.RecordsParsed += len(records)
				result.Stats.CitationMisses += parseStats.CitationMisses
				result.Stats.YearMisses += parseStats.YearMisses
				utils.Infof("🔍 解析出 %d 条记录 [offset=%d]", len(records), offset)
			}
		}

		// 页间固定延迟,最后一页之后也等待
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pageDelay):
		}
	}

	// 年均引用: 时间窗口不为正时记0,见models.CitationsPerYear
	for i := range result.Records {
		result.Records[i].CitPerYear = models.CitationsPerYear(
			result.Records[i].Citations, result.Records[i].Year, c.config.EndYear)
	}

	// 排序失败不致命: 回退到引用数排序
	sortedBy, err := SortRecords(result.Records, c.config.SortBy)
	if err != nil {
		utils.Warnf("Column name to be sorted not found. Sorting by the number of citations...")
	}
	result.SortedBy = sortedBy

	result.Stats.Duration = time.Since(startTime).Seconds()

	utils.Infof("✅ 检索完成: %d 条记录, %d/%d 页成功, 耗时 %.2f 秒",
		len(result.Records), result.Stats.PagesFetched, result.Stats.PagesRequested, result.Stats.Duration)

	return result, nil
}

// fetchPage 抓取一个结果页,人机验证命中时切换到浏览器路径
func (c *Crawler) fetchPage(ctx context.Context, pageURL string, stats *models.TaskStats) ([]byte, models.FetchMode, error) {
	body, err := c.fetcher.FetchPage(pageURL)
	if err == nil {
		return body, models.FetchModeDirect, nil
	}
	if !errors.Is(err, models.ErrRobotCheckDetected) {
		return nil, models.FetchModeDirect, err
	}

	stats.RobotChecks++
	utils.Warnf("Robot checking detected, handling with browser session")

	if c.browser == nil {
		return nil, models.FetchModeBrowser, fmt.Errorf("没有可用的浏览器兜底路径: %w", err)
	}

	stats.BrowserFallbacks++
	body, err = c.browser.FetchRendered(ctx, pageURL)
	if err != nil {
		return nil, models.FetchModeBrowser, err
	}
	return body, models.FetchModeBrowser, nil
}

// sortKeys 排序列 (CSV列名,大小写不敏感) 到比较键的映射
var sortKeys = map[string]func(r *models.Record) float64{
	"rank":      func(r *models.Record) float64 { return float64(r.Rank) },
	"citations": func(r *models.Record) float64 { return float64(r.Citations) },
	"year":      func(r *models.Record) float64 { return float64(r.Year) },
	"cit/year":  func(r *models.Record) float64 { return r.CitPerYear },
}

// sortTextKeys 文本排序列
var sortTextKeys = map[string]func(r *models.Record) string{
	"author": func(r *models.Record) string { return r.Author },
	"title":  func(r *models.Record) string { return r.Title },
	"source": func(r *models.Record) string { return r.Link },
}

// SortRecords 按指定列降序稳定排序,原地修改records
// 返回实际生效的列名;列名无效时回退到Citations并返回ErrSortColumnNotFound
func SortRecords(records []models.Record, column string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(column))

	if numKey, ok := sortKeys[key]; ok {
		sort.SliceStable(records, func(i, j int) bool {
			return numKey(&records[i]) > numKey(&records[j])
		})
		return canonicalColumn(key), nil
	}

	if textKey, ok := sortTextKeys[key]; ok {
		sort.SliceStable(records, func(i, j int) bool {
			return textKey(&records[i]) > textKey(&records[j])
		})
		return canonicalColumn(key), nil
	}

	// 回退: 按引用数降序
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Citations > records[j].Citations
	})
	return "Citations", fmt.Errorf("排序列 %q 不存在: %w", column, models.ErrSortColumnNotFound)
}

// canonicalColumn 把小写键还原为CSV列名
func canonicalColumn(key string) string {
	switch key {
	case "rank":
		return "Rank"
	case "author":
		return "Author"
	case "title":
		return "Title"
	case "citations":
		return "Citations"
	case "year":
		return "Year"
	case "source":
		return "Source"
	case "cit/year":
		return "cit/year"
	}
	return key
}
