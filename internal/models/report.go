package models

import (
	"encoding/json"
	"time"
)

// CrawlReport 检索运行报告
type CrawlReport struct {
	// 任务信息
	TaskID  string `json:"task_id"`
	Keyword string `json:"keyword"`

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	// 统计信息
	Stats TaskStats `json:"stats"`

	// 结果列表(已排序)
	SortedBy string   `json:"sorted_by"` // 实际生效的排序列
	EndYear  int      `json:"end_year"`  // 年均引用计算用的截止年
	Records  []Record `json:"records"`

	// 失败明细
	FailedPages     []FailedPageInfo     `json:"failed_pages,omitempty"`     // 跳过的结果页
	FailedDownloads []FailedDownloadInfo `json:"failed_downloads,omitempty"` // 失败的PDF下载

	// 输出路径
	CSVPath     string `json:"csv_path,omitempty"`     // CSV文件路径
	PlotPath    string `json:"plot_path,omitempty"`    // 散点图路径
	DownloadDir string `json:"download_dir,omitempty"` // PDF输出目录

	// 配置快照
	Config CrawlConfig `json:"config"`
}

// FailedPageInfo 抓取失败被跳过的结果页
type FailedPageInfo struct {
	URL      string    `json:"url"`
	Offset   int       `json:"offset"`
	Mode     FetchMode `json:"mode"`      // 失败发生在哪条获取路径
	ErrorMsg string    `json:"error_msg"`
}

// FailedDownloadInfo 下载失败的记录
type FailedDownloadInfo struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	Title    string `json:"title"`
	ErrorMsg string `json:"error_msg"`
}

// ToJSON 序列化为JSON
func (r *CrawlReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *CrawlReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
