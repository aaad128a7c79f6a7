package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	Crawl    CrawlSettings    `mapstructure:"crawl"`
	Fetch    FetchSettings    `mapstructure:"fetch"`
	Browser  BrowserSettings  `mapstructure:"browser"`
	Download DownloadSettings `mapstructure:"download"`
	Output   OutputSettings   `mapstructure:"output"`
	Logging  LoggingConfig    `mapstructure:"logging"`
}

// CrawlSettings 检索配置
type CrawlSettings struct {
	ResultCount int    `mapstructure:"result_count"`
	SortBy      string `mapstructure:"sort_by"`
	StartYear   int    `mapstructure:"start_year"`
	EndYear     int    `mapstructure:"end_year"` // 0表示当前年
	Publication string `mapstructure:"publication"`
	PageDelayMS int    `mapstructure:"page_delay_ms"`
}

// FetchSettings 直接抓取配置
type FetchSettings struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	Proxy          string `mapstructure:"proxy"`
	HeadersFile    string `mapstructure:"headers_file"`
}

// BrowserSettings 浏览器兜底配置
type BrowserSettings struct {
	Headless        bool `mapstructure:"headless"`
	ElementAttempts int  `mapstructure:"element_attempts"`
	RetryDelayMS    int  `mapstructure:"retry_delay_ms"`
}

// DownloadSettings PDF批量下载配置
type DownloadSettings struct {
	DelayMS        int `mapstructure:"delay_ms"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// OutputSettings 输出配置
type OutputSettings struct {
	CSVPath    string `mapstructure:"csv_path"`
	SaveCSV    bool   `mapstructure:"save_csv"`
	SaveReport bool   `mapstructure:"save_report"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件
	if configPath != "" {
		// 使用指定的配置文件
		v.SetConfigFile(configPath)
	} else {
		// 搜索默认位置
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 添加配置搜索路径
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		// 用户主目录
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".scholarrank"))
		}
	}

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果配置文件不存在,使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// 解析配置
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 检索配置默认值
	v.SetDefault("crawl.result_count", 20)
	v.SetDefault("crawl.sort_by", "Citations")
	v.SetDefault("crawl.start_year", 1980)
	v.SetDefault("crawl.end_year", 0) // 0表示当前年
	v.SetDefault("crawl.publication", "arxiv")
	v.SetDefault("crawl.page_delay_ms", 500)

	// 抓取配置默认值
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.proxy", "")
	v.SetDefault("fetch.headers_file", "")

	// 浏览器配置默认值
	// 操作员需要看到验证码页面,默认带界面启动
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.element_attempts", 5)
	v.SetDefault("browser.retry_delay_ms", 1000)

	// 下载配置默认值
	v.SetDefault("download.delay_ms", 200)
	v.SetDefault("download.timeout_seconds", 60)

	// 输出配置默认值
	v.SetDefault("output.csv_path", ".")
	v.SetDefault("output.save_csv", true)
	v.SetDefault("output.save_report", true)

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)
}

// PageDelay 页间延迟
func (c *Config) PageDelay() time.Duration {
	return time.Duration(c.Crawl.PageDelayMS) * time.Millisecond
}

// FetchTimeout 抓取超时
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// RetryDelay 浏览器元素查找重试间隔
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Browser.RetryDelayMS) * time.Millisecond
}

// DownloadDelay 批量下载的记录间延迟
func (c *Config) DownloadDelay() time.Duration {
	return time.Duration(c.Download.DelayMS) * time.Millisecond
}

// DownloadTimeout 单个PDF下载超时
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Download.TimeoutSeconds) * time.Second
}
