package models

import (
	"errors"
	"fmt"
)

// 错误分类:除ErrInvalidConfiguration外都是非致命错误,记录日志后任务继续
var (
	// ErrNotFound 提取器未能在内容中定位目标字段
	ErrNotFound = errors.New("目标字段未找到")
	// ErrRobotCheckDetected 检测到反爬虫人机验证页面
	ErrRobotCheckDetected = errors.New("检测到人机验证页面")
	// ErrElementNotFound 页面元素在重试耗尽后仍未出现
	ErrElementNotFound = errors.New("页面元素未找到")
	// ErrSortColumnNotFound 排序列名不存在,回退到引用数排序
	ErrSortColumnNotFound = errors.New("排序列名不存在")
	// ErrInvalidConfiguration 参数组合冲突,进程以-1退出
	ErrInvalidConfiguration = errors.New("无效的参数组合")
)

// FetchError 结果页抓取失败
type FetchError struct {
	// URL 失败的页面URL
	URL string

	// StatusCode HTTP状态码,网络层失败时为0
	StatusCode int

	// Cause 底层错误
	Cause error
}

// Error 实现error接口
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("页面抓取失败 [HTTP %d]: %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("页面抓取失败: %s: %v", e.URL, e.Cause)
}

// Unwrap 支持errors.Is/As
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// DownloadError PDF下载失败
type DownloadError struct {
	// URL 下载地址
	URL string

	// Path 目标文件路径
	Path string

	// Cause 底层错误
	Cause error
}

// Error 实现error接口
func (e *DownloadError) Error() string {
	return fmt.Sprintf("PDF下载失败: %s -> %s: %v", e.URL, e.Path, e.Cause)
}

// Unwrap 支持errors.Is/As
func (e *DownloadError) Unwrap() error {
	return e.Cause
}
