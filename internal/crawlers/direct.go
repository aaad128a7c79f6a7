package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
	"github.com/RecoveryAshes/ScholarRank/internal/utils"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
)

// FetchConfig 直接抓取配置
type FetchConfig struct {
	// Timeout HTTP请求超时
	Timeout time.Duration

	// Proxy HTTP代理地址,空表示直连
	Proxy string
}

// DirectFetcher 直接抓取器(使用Colly)
// 抓取是严格串行的:一页抓完并判定后才抓下一页,避免触发反爬虫限制
type DirectFetcher struct {
	collector *colly.Collector

	// HTTP头部提供者
	headerProvider models.HeaderProvider

	// 本次Visit的响应快照,串行访问无需加锁
	lastBody   []byte
	lastStatus int
	lastErr    error
}

// NewDirectFetcher 创建直接抓取器
func NewDirectFetcher(config FetchConfig, headerProvider models.HeaderProvider) (*DirectFetcher, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, // 跳过证书验证,Wayback快照链路上的中间证书经常过期
		},
	}

	// 配置HTTP代理
	if config.Proxy != "" {
		proxyURL, err := url.Parse(config.Proxy)
		if err != nil {
			return nil, fmt.Errorf("解析代理地址失败 [%s]: %w", config.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		utils.Debugf("直接抓取器: 使用HTTP代理 %s", config.Proxy)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// 同一个检索端点每个偏移都要访问一次,必须允许重复访问
	// 目标站自己的robots.txt会拒绝检索路径,这里刻意忽略
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)

	c.SetClient(&http.Client{
		Transport: transport,
		Timeout:   timeout,
	})
	c.SetRequestTimeout(timeout)

	df := &DirectFetcher{
		collector:      c,
		headerProvider: headerProvider,
	}
	df.setupCallbacks()

	return df, nil
}

// setupCallbacks 设置Colly回调
func (df *DirectFetcher) setupCallbacks() {
	// 访问前: 应用浏览器身份头部
	df.collector.OnRequest(func(r *colly.Request) {
		if df.headerProvider != nil {
			headers, err := df.headerProvider.GetHeaders()
			if err != nil {
				utils.Warnf("获取HTTP头部失败: %v", err)
			} else {
				for name, values := range headers {
					if len(values) > 0 {
						r.Headers.Set(name, values[0])
					}
				}
			}
		}
		utils.Debugf("访问: %s", r.URL.String())
	})

	// 处理响应: 手动解压
	// 显式设置Accept-Encoding后net/http不再透明解压,需要按Content-Encoding自行处理
	df.collector.OnResponse(func(r *colly.Response) {
		df.lastStatus = r.StatusCode

		body := r.Body
		contentEncoding := r.Headers.Get("Content-Encoding")
		if contentEncoding != "" {
			decompressed, err := decompressResponse(contentEncoding, r.Body)
			if err != nil {
				utils.Warnf("解压响应失败 [%s] (编码=%s): %v", r.Request.URL, contentEncoding, err)
				// 解压失败,仍然尝试使用原始body
			} else {
				body = decompressed
			}
		}
		df.lastBody = body
	})

	// 错误处理
	df.collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		df.lastErr = &models.FetchError{
			URL:        r.Request.URL.String(),
			StatusCode: status,
			Cause:      err,
		}
	})
}

// FetchPage 抓取一个结果页并返回解压后的响应体
// 命中人机验证页面时返回ErrRobotCheckDetected,由调用方切换到浏览器路径
// 传输层失败和非200状态返回FetchError,该页由调用方跳过,不中断整个任务
func (df *DirectFetcher) FetchPage(pageURL string) ([]byte, error) {
	df.lastBody = nil
	df.lastStatus = 0
	df.lastErr = nil

	if err := df.collector.Visit(pageURL); err != nil {
		if df.lastErr != nil {
			return nil, df.lastErr
		}
		return nil, &models.FetchError{URL: pageURL, Cause: err}
	}
	if df.lastErr != nil {
		return nil, df.lastErr
	}
	if df.lastStatus != http.StatusOK {
		return nil, &models.FetchError{
			URL:        pageURL,
			StatusCode: df.lastStatus,
			Cause:      fmt.Errorf("非预期的HTTP状态"),
		}
	}

	// 人机验证判定在原始响应体上进行,特征短语都是ASCII
	if IsRobotPage(df.lastBody) {
		return nil, fmt.Errorf("结果页被人机验证拦截 [%s]: %w", pageURL, models.ErrRobotCheckDetected)
	}

	return df.lastBody, nil
}

// decompressResponse 根据Content-Encoding头部解压响应体
// 支持 gzip, deflate, br (Brotli) 三种压缩格式
func decompressResponse(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip":
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip读取失败: %w", err)
		}
		return decompressed, nil

	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return decompressed, nil

	case "br":
		reader := brotli.NewReader(bytes.NewReader(body))
		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return decompressed, nil

	case "":
		// 没有压缩,直接返回原始内容
		return body, nil

	default:
		// 未知编码,返回警告但仍然返回原始内容
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}
