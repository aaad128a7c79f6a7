package crawlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
	"github.com/RecoveryAshes/ScholarRank/internal/utils"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ErrBrowserCrashed 浏览器会话崩溃
var ErrBrowserCrashed = errors.New("浏览器崩溃")

// OperatorPrompt 人工介入挂起点
// 浏览器兜底路径碰到验证码时在此挂起,等操作员解完后继续
type OperatorPrompt interface {
	// WaitForOperator 显示提示并阻塞等待操作员确认
	// ctx取消时立即返回ctx错误,避免无人值守场景下永久挂起
	WaitForOperator(ctx context.Context, message string) error
}

// StdinPrompt 从标准输入读取确认的操作员提示
type StdinPrompt struct {
	// In 输入流,默认为os.Stdin
	In io.Reader
}

// WaitForOperator 打印提示并等待操作员按回车
func (p *StdinPrompt) WaitForOperator(ctx context.Context, message string) error {
	in := p.In
	if in == nil {
		in = os.Stdin
	}

	fmt.Println(message)

	// 读取放在goroutine里,让ctx取消能够抢占阻塞中的等待
	done := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(in)
		_, err := reader.ReadString('\n')
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil && err != io.EOF {
			return fmt.Errorf("读取操作员输入失败: %w", err)
		}
		return nil
	}
}

// BrowserConfig 浏览器会话配置
type BrowserConfig struct {
	// Headless 无头模式,默认false: 操作员需要看到验证码页面
	Headless bool

	// ElementAttempts 页面元素查找重试次数
	ElementAttempts int

	// RetryDelay 重试间隔
	RetryDelay time.Duration
}

// BrowserSession 人工辅助的浏览器会话
// 整个运行期只启动一个浏览器和一个标签页,首次兜底时惰性创建,
// 后续每次兜底复用,由协调器在收尾时统一关闭
type BrowserSession struct {
	config BrowserConfig
	prompt OperatorPrompt

	browser *rod.Browser
	page    *rod.Page

	// 资源预检,只提示不阻断
	monitor *ResourceMonitor

	ctx    context.Context
	cancel context.CancelFunc
}

// NewBrowserSession 创建浏览器会话,浏览器进程在首次FetchRendered时才启动
func NewBrowserSession(config BrowserConfig, prompt OperatorPrompt) *BrowserSession {
	if config.ElementAttempts <= 0 {
		config.ElementAttempts = 5
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	if prompt == nil {
		prompt = &StdinPrompt{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &BrowserSession{
		config: config,
		prompt: prompt,
		monitor: NewResourceMonitor(ResourceMonitorConfig{
			SafetyReserveMemory: 512 * 1024 * 1024,
			SafetyThreshold:     300 * 1024 * 1024,
			CPULoadThreshold:    90,
		}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Launched 浏览器进程是否已经启动
func (s *BrowserSession) Launched() bool {
	return s.browser != nil
}

// ensureLaunched 惰性启动浏览器并创建唯一的标签页
func (s *BrowserSession) ensureLaunched() error {
	if s.browser != nil {
		return nil
	}

	// 启动前做一次资源预检,不足只警告: 会话是人工辅助的,由操作员决定是否继续
	if ok, reason := s.monitor.CheckResourceAvailability(); !ok {
		utils.Warnf("系统资源偏紧,浏览器会话可能不稳定: %s", reason)
	}

	utils.Infof("🌐 启动人工辅助浏览器会话...")

	l := launcher.New().
		Headless(s.config.Headless).
		Set("disable-infobars").
		Set("ignore-certificate-errors")

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("启动浏览器失败: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("连接浏览器失败: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		browser.MustClose()
		return fmt.Errorf("创建标签页失败: %w", err)
	}

	s.browser = browser
	s.page = page
	utils.Debugf("浏览器已启动: %s", controlURL)
	return nil
}

// FetchRendered 用浏览器渲染并读取一个结果页
// 渲染后的可见文本仍包含人机验证特征时挂起等待操作员处理,
// 操作员确认后重新读取页面内容返回
func (s *BrowserSession) FetchRendered(ctx context.Context, pageURL string) (body []byte, err error) {
	// rod内部失败以panic形式抛出,统一转换为错误,避免拖垮整个任务
	defer func() {
		if r := recover(); r != nil {
			utils.Errorf("浏览器会话panic: URL=%s, 错误=%v", pageURL, r)
			body = nil
			err = fmt.Errorf("%w: %v", ErrBrowserCrashed, r)
		}
	}()

	if err := s.ensureLaunched(); err != nil {
		return nil, err
	}

	if err := s.page.Navigate(pageURL); err != nil {
		return nil, &models.FetchError{URL: pageURL, Cause: err}
	}
	if err := s.page.WaitLoad(); err != nil {
		return nil, &models.FetchError{URL: pageURL, Cause: err}
	}

	el, err := s.bodyElement()
	if err != nil {
		return nil, err
	}
	html, err := el.HTML()
	if err != nil {
		return nil, fmt.Errorf("读取页面内容失败 [%s]: %w", pageURL, err)
	}

	text, textErr := VisibleText(html)
	if textErr != nil {
		utils.Warnf("提取可见文本失败 [%s]: %v", pageURL, textErr)
		text = html
	}
	if IsRobotText(text) {
		utils.Warnf("浏览器页面仍是人机验证,等待人工处理: %s", pageURL)
		if err := s.prompt.WaitForOperator(ctx, "Solve captcha manually and press enter here to continue..."); err != nil {
			return nil, fmt.Errorf("等待人工处理被中断: %w", err)
		}

		// 验证解除后重新定位并读取
		el, err = s.bodyElement()
		if err != nil {
			return nil, err
		}
		html, err = el.HTML()
		if err != nil {
			return nil, fmt.Errorf("重新读取页面内容失败 [%s]: %w", pageURL, err)
		}
	}

	return []byte(html), nil
}

// bodyElement 带重试地定位body元素
func (s *BrowserSession) bodyElement() (*rod.Element, error) {
	return elementWithRetry(func() (*rod.Element, error) {
		return s.page.Element("body")
	}, s.config.ElementAttempts, s.config.RetryDelay)
}

// elementWithRetry 有界迭代重试的元素查找
// 每次失败后等待delay再试,重试耗尽返回ErrElementNotFound
func elementWithRetry(lookup func() (*rod.Element, error), attempts int, delay time.Duration) (*rod.Element, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		el, err := lookup()
		if err == nil {
			return el, nil
		}
		lastErr = err
		utils.Debugf("元素查找失败 (第%d/%d次): %v", attempt, attempts, err)
		if attempt < attempts {
			time.Sleep(delay)
		}
	}
	return nil, fmt.Errorf("重试%d次后仍未找到元素: %v: %w", attempts, lastErr, models.ErrElementNotFound)
}

// Close 关闭浏览器会话,未启动过则直接返回
func (s *BrowserSession) Close() {
	s.cancel()
	if s.browser != nil {
		s.browser.MustClose()
		s.browser = nil
		s.page = nil
		utils.Debugf("浏览器已关闭")
	}
}
