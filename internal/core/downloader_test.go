package core

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
)

// chdirTemp 把cwd切到临时目录,下载器的输出目录是相对路径
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("获取cwd失败: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("切换cwd失败: %v", err)
	}
	t.Cleanup(func() { os.Chdir(old) })
	return dir
}

// TestDownloadAll 混合场景: 成功、非PDF失败、占位链接跳过
func TestDownloadAll(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		switch r.URL.Path {
		case "/paper.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("%PDF-1.4 fake body"))
		default:
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html>paywall</html>"))
		}
	}))
	defer server.Close()

	dir := chdirTemp(t)

	records := []models.Record{
		{Title: "Good Paper", Citations: 120, Year: 2019, Link: server.URL + "/paper.pdf"},
		{Title: "Paywalled Paper", Citations: 50, Year: 2020, Link: server.URL + "/landing"},
		{Title: "Manual Paper", Citations: 10, Year: 2021, Link: models.LinkNotFound("https://scholar.google.com/scholar?start=0")},
	}

	d := NewDownloader(0, 0, nil)
	summary, err := d.DownloadAll(records, "test keyword")
	if err != nil {
		t.Fatalf("DownloadAll() 意外失败: %v", err)
	}

	if summary.OK != 1 || summary.Failed != 1 || summary.Skipped != 1 {
		t.Errorf("摘要不符: OK=%d Failed=%d Skipped=%d", summary.OK, summary.Failed, summary.Skipped)
	}
	// 占位链接不发起网络请求
	if atomic.LoadInt64(&hits) != 2 {
		t.Errorf("应只有2次网络请求, 实际: %d", hits)
	}

	wantPath := filepath.Join(dir, "papers_test_keyword", "120_2019_Good Paper.pdf")
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("成功下载的PDF应落盘在 %s: %v", wantPath, err)
	}
	if string(data[:4]) != "%PDF" {
		t.Errorf("落盘内容不是PDF: %q", data[:4])
	}

	if len(summary.Failures) != 1 || summary.Failures[0].Title != "Paywalled Paper" {
		t.Errorf("失败明细不符: %+v", summary.Failures)
	}
}

// TestDownloadSkipsInvalidLink 非HTTP(S)链接跳过,不发起网络请求也不计为失败
func TestDownloadSkipsInvalidLink(t *testing.T) {
	chdirTemp(t)

	records := []models.Record{
		{Title: "Ftp Paper", Citations: 2, Year: 2020, Link: "ftp://example.org/p.pdf"},
		{Title: "Relative Paper", Citations: 4, Year: 2021, Link: "/relative/path.pdf"},
	}
	d := NewDownloader(0, 0, nil)
	summary, err := d.DownloadAll(records, "invalid links")
	if err != nil {
		t.Fatalf("DownloadAll() 意外失败: %v", err)
	}
	if summary.Skipped != 2 || summary.Failed != 0 || summary.OK != 0 {
		t.Errorf("不合法链接应全部跳过: %+v", summary)
	}
}

// TestDownloadContentTypeFallback 响应体无PDF文件头但内容类型是PDF时仍接受
func TestDownloadContentTypeFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("not-magic-but-typed"))
	}))
	defer server.Close()

	chdirTemp(t)

	records := []models.Record{
		{Title: "Typed Paper", Citations: 5, Year: 2022, Link: server.URL + "/x"},
	}
	d := NewDownloader(0, 0, nil)
	summary, err := d.DownloadAll(records, "typed")
	if err != nil {
		t.Fatalf("DownloadAll() 意外失败: %v", err)
	}
	if summary.OK != 1 {
		t.Errorf("内容类型为PDF的响应应接受, 摘要: %+v", summary)
	}
}

// TestDownloadHTTPError 非200状态码计为失败
func TestDownloadHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	chdirTemp(t)

	records := []models.Record{
		{Title: "Blocked Paper", Citations: 1, Year: 2023, Link: server.URL + "/x"},
	}
	d := NewDownloader(0, 0, nil)
	summary, _ := d.DownloadAll(records, "blocked")
	if summary.Failed != 1 || summary.OK != 0 {
		t.Errorf("HTTP 403应计为失败: %+v", summary)
	}
}

// TestRecordFilename 文件名构造和清洗
func TestRecordFilename(t *testing.T) {
	tests := []struct {
		name     string
		record   models.Record
		expected string
	}{
		{
			name:     "常规标题保留空格",
			record:   models.Record{Title: "Graph Attention Networks", Citations: 500, Year: 2018},
			expected: "500_2018_Graph Attention Networks.pdf",
		},
		{
			name:     "非法字符折叠成下划线",
			record:   models.Record{Title: `A/B:C*D?`, Citations: 7, Year: 2020},
			expected: "7_2020_A_B_C_D.pdf",
		},
		{
			name:     "清洗后为空则整体为空",
			record:   models.Record{Title: `///:::`, Citations: 3, Year: 2021},
			expected: "",
		},
		{
			name:     "零值字段照常拼接",
			record:   models.Record{Title: "Untitled", Citations: 0, Year: 0},
			expected: "0_0_Untitled.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecordFilename(&tt.record); got != tt.expected {
				t.Errorf("RecordFilename() = %q, 期望 %q", got, tt.expected)
			}
		})
	}
}

// TestOutputDir 输出目录命名
func TestOutputDir(t *testing.T) {
	if got := OutputDir("graph neural networks"); got != "./papers_graph_neural_networks" {
		t.Errorf("OutputDir() = %q", got)
	}
}
