package core

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
	"github.com/RecoveryAshes/ScholarRank/internal/utils"
)

// pdfMagic PDF文件头
var pdfMagic = []byte("%PDF")

// Downloader 批量PDF下载器
// 逐条串行下载,单条失败只记录不中断,链接为占位值的记录直接跳过
type Downloader struct {
	client         *http.Client
	headerProvider models.HeaderProvider

	// delay 记录间延迟
	delay time.Duration
}

// DownloadSummary 批量下载摘要
type DownloadSummary struct {
	OutputDir string
	OK        int
	Failed    int
	Skipped   int
	Failures  []models.FailedDownloadInfo
}

// NewDownloader 创建批量下载器
func NewDownloader(timeout, delay time.Duration, headerProvider models.HeaderProvider) *Downloader {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Downloader{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			},
		},
		headerProvider: headerProvider,
		delay:          delay,
	}
}

// OutputDir 下载输出目录: ./papers_{关键词下划线形式}/
func OutputDir(keyword string) string {
	return "./papers_" + utils.KeywordSlug(keyword)
}

// RecordFilename 按 {引用数}_{年份}_{标题}.pdf 构造文件名
// 标题先做文件名清洗,清洗后为空则整体返回空串,调用方跳过该记录
func RecordFilename(rec *models.Record) string {
	title := utils.SanitizeFilename(rec.Title)
	if title == "" {
		return ""
	}
	return fmt.Sprintf("%d_%d_%s.pdf", rec.Citations, rec.Year, title)
}

// DownloadAll 批量下载记录对应的PDF
// 跳过链接占位值和清洗后文件名为空的记录;每条失败都带完整诊断信息记录日志
func (d *Downloader) DownloadAll(records []models.Record, keyword string) (*DownloadSummary, error) {
	outputDir := OutputDir(keyword)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("创建下载目录失败 [%s]: %w", outputDir, err)
	}

	summary := &DownloadSummary{OutputDir: outputDir}
	utils.Infof("📥 开始批量下载: %d 条记录 -> %s", len(records), outputDir)

	bar := utils.NewProgressBar(len(records), "下载PDF")
	for i := range records {
		rec := &records[i]

		if err := d.downloadOne(rec, outputDir, summary); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, models.FailedDownloadInfo{
				URL:      rec.Link,
				Path:     filepath.Join(outputDir, RecordFilename(rec)),
				Title:    rec.Title,
				ErrorMsg: err.Error(),
			})
			utils.Errorf("❌ %v", err)
		}

		bar.Add(1)

		// 记录间延迟,最后一条不需要
		if i < len(records)-1 && d.delay > 0 {
			time.Sleep(d.delay)
		}
	}
	fmt.Println()

	utils.Infof("✅ 批量下载完成: 成功 %d, 失败 %d, 跳过 %d", summary.OK, summary.Failed, summary.Skipped)
	return summary, nil
}

// downloadOne 下载单条记录
// 跳过不计为错误;返回的错误一律是*models.DownloadError
func (d *Downloader) downloadOne(rec *models.Record, outputDir string, summary *DownloadSummary) error {
	// 链接占位值的记录不发起任何网络请求
	if !rec.IsDownloadable() {
		utils.Debugf("跳过无直接链接的记录: %s", rec.Title)
		summary.Skipped++
		return nil
	}

	// 原文链接不是合法的HTTP(S)地址时同样跳过
	if err := models.ValidateURL(rec.Link); err != nil {
		utils.Warnf("原文链接不合法,跳过下载: %s (%v)", rec.Link, err)
		summary.Skipped++
		return nil
	}

	filename := RecordFilename(rec)
	if filename == "" {
		utils.Warnf("标题清洗后为空,跳过下载: %q", rec.Title)
		summary.Skipped++
		return nil
	}
	path := filepath.Join(outputDir, filename)

	utils.Infof("📥 downloading %s", rec.Title)

	body, contentType, err := d.fetch(rec.Link)
	if err != nil {
		return &models.DownloadError{URL: rec.Link, Path: path, Cause: err}
	}

	// 既没有PDF文件头也不是PDF内容类型,视为下载失败
	if !bytes.HasPrefix(body, pdfMagic) && !strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return &models.DownloadError{
			URL:   rec.Link,
			Path:  path,
			Cause: fmt.Errorf("响应不是PDF (Content-Type=%s)", contentType),
		}
	}

	// 先写临时文件再改名,避免留下半截文件
	tmp, err := os.CreateTemp(outputDir, ".download-*")
	if err != nil {
		return &models.DownloadError{URL: rec.Link, Path: path, Cause: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &models.DownloadError{URL: rec.Link, Path: path, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &models.DownloadError{URL: rec.Link, Path: path, Cause: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &models.DownloadError{URL: rec.Link, Path: path, Cause: err}
	}

	summary.OK++
	utils.Debugf("下载成功: %s (%d bytes)", path, len(body))
	return nil
}

// fetch 发起GET请求并读取整个响应体
func (d *Downloader) fetch(pdfURL string) ([]byte, string, error) {
	req, err := http.NewRequest(http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, "", err
	}

	// PDF下载与结果页抓取共用同一份浏览器身份头部
	if d.headerProvider != nil {
		headers, err := d.headerProvider.GetHeaders()
		if err != nil {
			utils.Warnf("获取HTTP头部失败: %v", err)
		} else {
			for name, values := range headers {
				if len(values) > 0 {
					req.Header.Set(name, values[0])
				}
			}
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}
