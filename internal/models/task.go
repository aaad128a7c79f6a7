package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"   // 待执行
	TaskStatusRunning   TaskStatus = "running"   // 执行中
	TaskStatusCompleted TaskStatus = "completed" // 已完成
	TaskStatusFailed    TaskStatus = "failed"    // 失败
	TaskStatusCancelled TaskStatus = "cancelled" // 已取消
)

// FetchMode 页面获取方式
type FetchMode string

const (
	FetchModeDirect  FetchMode = "direct"  // 直接HTTP请求
	FetchModeBrowser FetchMode = "browser" // 浏览器人工辅助
)

// TaskStats 任务统计
type TaskStats struct {
	PagesRequested   int     `json:"pages_requested"`   // 计划抓取页数
	PagesFetched     int     `json:"pages_fetched"`     // 成功抓取页数
	PagesFailed      int     `json:"pages_failed"`      // 失败跳过页数
	RobotChecks      int     `json:"robot_checks"`      // 命中人机验证次数
	BrowserFallbacks int     `json:"browser_fallbacks"` // 浏览器兜底次数
	RecordsParsed    int     `json:"records_parsed"`    // 解析出的记录数
	CitationMisses   int     `json:"citation_misses"`   // 引用数缺失记录数
	YearMisses       int     `json:"year_misses"`       // 年份缺失记录数
	DownloadsOK      int     `json:"downloads_ok"`      // 下载成功数
	DownloadsFailed  int     `json:"downloads_failed"`  // 下载失败数
	DownloadsSkipped int     `json:"downloads_skipped"` // 下载跳过数
	Duration         float64 `json:"duration"`          // 总耗时(秒)
}

// CrawlConfig 单次检索配置
type CrawlConfig struct {
	Keyword     string `json:"keyword"`      // 检索关键词
	ResultCount int    `json:"result_count"` // 期望结果条数 (默认:20)
	SortBy      string `json:"sort_by"`      // 排序列名 (默认:Citations)
	CSVPath     string `json:"csv_path"`     // CSV输出目录 (默认:.)
	SaveCSV     bool   `json:"save_csv"`     // 是否保存CSV
	PlotResults bool   `json:"plot_results"` // 是否生成散点图
	StartYear   int    `json:"start_year"`   // 起始年份 (默认:1980)
	EndYear     int    `json:"end_year"`     // 截止年份 (默认:当前年)
	Download    bool   `json:"download"`     // 是否批量下载PDF
	Archive     bool   `json:"archive"`      // 是否走Wayback快照端点
	Publication string `json:"publication"`  // 出版物过滤 ("all"或空表示不过滤)
	Proxy       string `json:"proxy"`        // HTTP代理地址,空表示直连
	Debug       bool   `json:"debug"`        // 调试模式,打印每个请求URL
}

// PublicationActive 出版物过滤是否生效
func (c *CrawlConfig) PublicationActive() bool {
	return c.Publication != "" && c.Publication != "all"
}

// Validate 验证配置
// Archive与非空Publication组合冲突:快照端点不支持出版物过滤参数
func (c *CrawlConfig) Validate() error {
	if c.Keyword == "" {
		return fmt.Errorf("关键词不能为空")
	}
	if c.ResultCount < 1 || c.ResultCount > 1000 {
		return fmt.Errorf("结果条数必须在1-1000之间,当前值: %d", c.ResultCount)
	}
	if c.StartYear < 0 || c.StartYear > 3000 {
		return fmt.Errorf("起始年份必须在0-3000之间,当前值: %d", c.StartYear)
	}
	if c.EndYear < 0 || c.EndYear > 3000 {
		return fmt.Errorf("截止年份必须在0-3000之间,当前值: %d", c.EndYear)
	}
	if c.Archive && c.Publication != "" {
		return fmt.Errorf("--archive 与 --publication 不能同时使用 (需显式传 --publication \"\"): %w", ErrInvalidConfiguration)
	}
	return nil
}

// CrawlTask 一次关键词检索任务
type CrawlTask struct {
	// 基本信息
	ID          string     `json:"id"`                     // 任务唯一ID (UUID)
	Keyword     string     `json:"keyword"`                // 检索关键词
	CreatedAt   time.Time  `json:"created_at"`             // 创建时间
	StartedAt   *time.Time `json:"started_at,omitempty"`   // 开始时间
	CompletedAt *time.Time `json:"completed_at,omitempty"` // 完成时间

	// 配置参数
	Config CrawlConfig `json:"config"` // 检索配置

	// 执行状态
	Status TaskStatus `json:"status"` // 任务状态

	// 统计信息
	Stats TaskStats `json:"stats"` // 任务统计

	// 错误信息
	ErrorMessage string `json:"error_message,omitempty"` // 错误消息
}

// NewCrawlTask 创建新任务
func NewCrawlTask(config CrawlConfig) (*CrawlTask, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &CrawlTask{
		ID:        generateID(),
		Keyword:   config.Keyword,
		CreatedAt: time.Now(),
		Config:    config,
		Status:    TaskStatusPending,
		Stats:     TaskStats{},
	}, nil
}

// Start 标记任务开始
func (t *CrawlTask) Start() {
	now := time.Now()
	t.StartedAt = &now
	t.Status = TaskStatusRunning
}

// Complete 标记任务完成
func (t *CrawlTask) Complete() {
	now := time.Now()
	t.CompletedAt = &now
	t.Status = TaskStatusCompleted
	if t.StartedAt != nil {
		t.Stats.Duration = now.Sub(*t.StartedAt).Seconds()
	}
}

// Fail 标记任务失败
func (t *CrawlTask) Fail(msg string) {
	now := time.Now()
	t.CompletedAt = &now
	t.Status = TaskStatusFailed
	t.ErrorMessage = msg
	if t.StartedAt != nil {
		t.Stats.Duration = now.Sub(*t.StartedAt).Seconds()
	}
}

// ToJSON 序列化为JSON
func (t *CrawlTask) ToJSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// FromJSON 从JSON反序列化
func (t *CrawlTask) FromJSON(data []byte) error {
	return json.Unmarshal(data, t)
}
