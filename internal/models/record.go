package models

import (
	"encoding/json"
	"math"
	"strings"
)

// 字段提取失败时写入的占位值
const (
	// TitleNotFound 标题占位值
	TitleNotFound = "Could not catch title"
	// AuthorNotFound 作者占位值
	AuthorNotFound = "Author not found"
	// linkNotFoundPrefix 链接占位值前缀,后接结果页URL
	linkNotFoundPrefix = "Look manually at: "
)

// LinkNotFound 生成链接占位值,指向该记录所在的结果页
func LinkNotFound(pageURL string) string {
	return linkNotFoundPrefix + pageURL
}

// Record 一条检索结果
// 每个结果块恰好产出一条记录,单个字段提取失败不影响其余字段
type Record struct {
	// Rank 出现顺序排名,从1开始严格递增
	Rank int `json:"rank"`

	// Author 作者串,缺失时为AuthorNotFound
	Author string `json:"author"`

	// Title 标题,缺失时为TitleNotFound
	Title string `json:"title"`

	// Citations 被引次数,缺失时为0
	Citations int `json:"citations"`

	// Year 发表年份,缺失时为0
	Year int `json:"year"`

	// Link 原文链接,缺失时为LinkNotFound占位值
	Link string `json:"source"`

	// CitPerYear 年均被引次数(派生字段)
	CitPerYear float64 `json:"cit_per_year"`
}

// IsDownloadable 链接为占位值的记录无法下载
func (r *Record) IsDownloadable() bool {
	return r.Link != "" && !strings.Contains(r.Link, "Look manually at")
}

// ToJSON 序列化为JSON
func (r *Record) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// CitationsPerYear 计算年均被引次数
// 时间窗口为 endYear+1-year;窗口不为正时返回0,避免除零和负窗口
func CitationsPerYear(citations, year, endYear int) float64 {
	span := endYear + 1 - year
	if span <= 0 {
		return 0
	}
	return math.Round(float64(citations) / float64(span))
}
