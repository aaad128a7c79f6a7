package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
	"github.com/RecoveryAshes/ScholarRank/internal/utils"
)

// csvColumns CSV列顺序,Rank是索引列
var csvColumns = []string{"Rank", "Author", "Title", "Citations", "Year", "Source", "cit/year"}

// Reporter 结果输出: 终端表格、CSV持久化和JSON运行报告
type Reporter struct {
	// Out 表格输出目标,默认为os.Stdout
	Out io.Writer
}

// NewReporter 创建结果输出器
func NewReporter() *Reporter {
	return &Reporter{Out: os.Stdout}
}

// PrintTable 把记录打印成对齐表格
// 即使CSV持久化和绘图都被关闭,最终表格也一定会打印
func (r *Reporter) PrintTable(records []models.Record) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Rank\tAuthor\tTitle\tCitations\tYear\tSource\tcit/year")
	for i := range records {
		rec := &records[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%d\n",
			rec.Rank, rec.Author, truncate(rec.Title, 60), rec.Citations, rec.Year,
			truncate(rec.Link, 60), int(rec.CitPerYear))
	}
	w.Flush()
}

// truncate 终端表格里的长字段截断显示,CSV和报告不截断
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// WriteCSV 把记录写到 {csvPath}/{关键词下划线形式}.csv
// 行序是排序后的顺序,UTF-8编码。返回写出的文件路径
func (r *Reporter) WriteCSV(records []models.Record, keyword, csvPath string) (string, error) {
	if csvPath == "" {
		csvPath = "."
	}
	if err := os.MkdirAll(csvPath, 0755); err != nil {
		return "", fmt.Errorf("创建CSV目录失败 [%s]: %w", csvPath, err)
	}

	path := filepath.Join(csvPath, utils.KeywordSlug(keyword)+".csv")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("创建CSV文件失败 [%s]: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvColumns); err != nil {
		return "", fmt.Errorf("写CSV表头失败: %w", err)
	}

	for i := range records {
		rec := &records[i]
		row := []string{
			strconv.Itoa(rec.Rank),
			rec.Author,
			rec.Title,
			strconv.Itoa(rec.Citations),
			strconv.Itoa(rec.Year),
			rec.Link,
			strconv.Itoa(int(rec.CitPerYear)),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("写CSV行失败: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("刷写CSV失败: %w", err)
	}

	utils.Infof("📊 CSV已保存: %s (%d 条记录)", path, len(records))
	return path, nil
}

// WriteRunReport 把运行报告写成JSON文件,放在CSV同一目录下
func (r *Reporter) WriteRunReport(report *models.CrawlReport, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败 [%s]: %w", dir, err)
	}

	data, err := report.ToJSON()
	if err != nil {
		return "", fmt.Errorf("序列化运行报告失败: %w", err)
	}

	path := filepath.Join(dir, utils.KeywordSlug(report.Keyword)+"_report.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("写运行报告失败 [%s]: %w", path, err)
	}

	utils.Debugf("运行报告已保存: %s", path)
	return path, nil
}
