package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
)

// TestEnsureConfigExists 文件缺失时写出内置模板,包括中间目录
func TestEnsureConfigExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "headers.yaml")
	loader := NewHeaderConfigLoader(path)

	if err := loader.EnsureConfigExists(); err != nil {
		t.Fatalf("EnsureConfigExists() 意外失败: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("模板文件应已写出: %v", err)
	}
	if !strings.Contains(string(data), "headers:") {
		t.Errorf("模板内容不符: %s", data)
	}
}

// TestEnsureConfigExistsKeepsExisting 已存在的文件不会被模板覆盖
func TestEnsureConfigExistsKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.yaml")
	original := "headers:\n  X-Keep: \"me\"\n"
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatalf("写预置配置失败: %v", err)
	}

	loader := NewHeaderConfigLoader(path)
	if err := loader.EnsureConfigExists(); err != nil {
		t.Fatalf("EnsureConfigExists() 意外失败: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != original {
		t.Error("已存在的配置文件不应被覆盖")
	}
}

// TestLoadConfig 各种配置内容的解析
func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantHeaders map[string]string
		wantErr     bool
	}{
		{
			name:        "常规配置",
			content:     "headers:\n  User-Agent: \"custom-agent\"\n  Referer: \"https://example.org\"\n",
			wantHeaders: map[string]string{"user-agent": "custom-agent", "referer": "https://example.org"},
		},
		{
			name:        "空headers块返回空map而非nil",
			content:     "headers: {}\n",
			wantHeaders: map[string]string{},
		},
		{
			name:        "只有注释的文件返回空map",
			content:     "# 没有任何头部\n",
			wantHeaders: map[string]string{},
		},
		{
			name:    "非法YAML报错",
			content: "headers: [broken: {yaml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "headers.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("写测试配置失败: %v", err)
			}

			config, err := NewHeaderConfigLoader(path).LoadConfig()
			if tt.wantErr {
				if err == nil {
					t.Fatal("应返回解析错误")
				}
				var configErr *models.ConfigError
				if !errors.As(err, &configErr) {
					t.Errorf("错误类型应为*models.ConfigError, 实际: %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig() 意外失败: %v", err)
			}

			if config.Headers == nil {
				t.Fatal("Headers不应为nil")
			}
			if len(config.Headers) != len(tt.wantHeaders) {
				t.Fatalf("头部数量不符: %v", config.Headers)
			}
			// viper把键统一转成小写
			for key, want := range tt.wantHeaders {
				if got := config.Headers[key]; got != want {
					t.Errorf("头部 %q = %q, 期望 %q", key, got, want)
				}
			}
		})
	}
}

// TestLoadConfigCreatesTemplate 配置文件缺失时LoadConfig自动生成模板并返回空配置
func TestLoadConfigCreatesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.yaml")

	config, err := NewHeaderConfigLoader(path).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() 意外失败: %v", err)
	}
	if len(config.Headers) != 0 {
		t.Errorf("模板配置不应带任何头部: %v", config.Headers)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("模板文件应已落盘: %v", err)
	}
}

// TestValidateFileSize 超过1MB的配置文件被拒绝
func TestValidateFileSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.yaml")
	big := make([]byte, MaxConfigFileSize+1)
	for i := range big {
		big[i] = '#'
	}
	if err := os.WriteFile(path, big, 0644); err != nil {
		t.Fatalf("写超大配置失败: %v", err)
	}

	loader := NewHeaderConfigLoader(path)
	err := loader.ValidateFileSize()
	if err == nil {
		t.Fatal("超过大小上限的文件应被拒绝")
	}
	var configErr *models.ConfigError
	if !errors.As(err, &configErr) {
		t.Errorf("错误类型应为*models.ConfigError, 实际: %T", err)
	}
}

// TestNewHeaderConfigLoaderDefaultPath 空路径回退到默认位置
func TestNewHeaderConfigLoaderDefaultPath(t *testing.T) {
	loader := NewHeaderConfigLoader("")
	if loader.configPath != DefaultConfigFile {
		t.Errorf("空路径应回退到 %s, 实际: %s", DefaultConfigFile, loader.configPath)
	}
}
