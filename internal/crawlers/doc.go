// Package crawlers 提供检索结果页的两条获取路径
//
// # 概述
//
// crawlers包负责把一个结果页URL变成可供解析的HTML。入口路径是直接HTTP
// 抓取(Colly),命中人机验证后切换到人工辅助的浏览器会话(go-rod)。
// 两条路径都是严格串行的:一页完成后才处理下一页,避免触发反爬虫限制。
//
// # 核心组件
//
// ## DirectFetcher
//
// 基于Colly的直接抓取器。每次请求携带浏览器身份头部,按Content-Encoding
// 手动解压(gzip/deflate/br),在原始响应体上做人机验证判定。
//
//	fetcher, err := NewDirectFetcher(FetchConfig{Timeout: 30 * time.Second}, headerProvider)
//	body, err := fetcher.FetchPage(url)
//	if errors.Is(err, models.ErrRobotCheckDetected) { /* 切换浏览器路径 */ }
//
// ## BrowserSession
//
// 基于go-rod的人工辅助浏览器会话。整个运行期只启动一个浏览器和一个标签页,
// 首次兜底时惰性创建,后续兜底复用,由协调器收尾时关闭。渲染后的可见文本
// 仍包含验证特征时通过OperatorPrompt挂起,等操作员解完验证码后重新读取。
//
//	session := NewBrowserSession(BrowserConfig{Headless: false}, nil)
//	defer session.Close()
//	body, err := session.FetchRendered(ctx, url)
//
// ## 人机验证判定
//
// IsRobotPage在原始字节上做特征短语匹配(直接路径),IsRobotText在渲染后的
// 可见文本上匹配(浏览器路径),VisibleText负责从HTML提取可见文本。
//
// ## ResourceMonitor
//
// 浏览器启动前的系统资源预检(gopsutil)。会话是人工辅助的,预检不足只
// 警告不阻断,由操作员决定是否继续。
package crawlers
