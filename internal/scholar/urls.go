package scholar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
)

const (
	// scholarBaseURL 实时检索端点
	scholarBaseURL = "https://scholar.google.com/scholar"
	// archivePrefix Wayback快照前缀,绕开实时端点的反爬虫限制
	archivePrefix = "https://web.archive.org/web/20210314203256/"
	// resultsPerPage 每页结果条数
	resultsPerPage = 10
)

// URLBuilder 按配置构造各分页的检索URL
type URLBuilder struct {
	cfg         *models.CrawlConfig
	currentYear int
}

// NewURLBuilder 创建URL构造器
func NewURLBuilder(cfg *models.CrawlConfig) *URLBuilder {
	return &URLBuilder{
		cfg:         cfg,
		currentYear: time.Now().Year(),
	}
}

// PageURL 构造指定偏移的结果页URL
// 后缀追加顺序固定: 出版物过滤 -> 起始年份 -> 截止年份
// 截止年份等于当前年时不追加,让端点使用自己的默认范围
func (b *URLBuilder) PageURL(offset int) string {
	base := scholarBaseURL
	if b.cfg.Archive {
		base = archivePrefix + scholarBaseURL
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s?start=%d&q=%s&hl=en&as_sdt=0,5",
		base, offset, url.QueryEscape(b.cfg.Keyword))

	if b.cfg.PublicationActive() {
		sb.WriteString("&as_publication=")
		sb.WriteString(url.QueryEscape(b.cfg.Publication))
	}
	if b.cfg.StartYear > 0 {
		fmt.Fprintf(&sb, "&as_ylo=%d", b.cfg.StartYear)
	}
	if b.cfg.EndYear != 0 && b.cfg.EndYear != b.currentYear {
		fmt.Fprintf(&sb, "&as_yhi=%d", b.cfg.EndYear)
	}

	return sb.String()
}

// PageOffsets 生成覆盖期望结果条数的分页偏移序列: 0, 10, 20, ...
func PageOffsets(resultCount int) []int {
	var offsets []int
	for offset := 0; offset < resultCount; offset += resultsPerPage {
		offsets = append(offsets, offset)
	}
	return offsets
}
