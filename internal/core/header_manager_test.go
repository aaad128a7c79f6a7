package core

import (
	"os"
	"path/filepath"
	"testing"
)

func writeHeadersFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "headers.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写头部配置失败: %v", err)
	}
	return path
}

// TestHeaderManagerDefaults 无配置无命令行时返回内置浏览器身份头部
func TestHeaderManagerDefaults(t *testing.T) {
	path := writeHeadersFile(t, "headers: {}\n")
	hm, err := NewHeaderManager(path, nil)
	if err != nil {
		t.Fatalf("NewHeaderManager() 意外失败: %v", err)
	}

	headers, err := hm.GetHeaders()
	if err != nil {
		t.Fatalf("GetHeaders() 意外失败: %v", err)
	}

	if got := headers.Get("User-Agent"); got != DefaultUserAgent {
		t.Errorf("默认UA不符: %q", got)
	}
	if headers.Get("Accept-Language") == "" {
		t.Error("默认头部应包含Accept-Language")
	}
}

// TestHeaderManagerMergePriority 合并优先级: 默认 < 配置文件 < 命令行
func TestHeaderManagerMergePriority(t *testing.T) {
	path := writeHeadersFile(t, `headers:
  User-Agent: "config-agent"
  X-Custom: "from-config"
`)

	tests := []struct {
		name       string
		cliHeaders []string
		wantUA     string
		wantCustom string
	}{
		{
			name:       "配置文件覆盖默认",
			cliHeaders: nil,
			wantUA:     "config-agent",
			wantCustom: "from-config",
		},
		{
			name:       "命令行覆盖配置文件",
			cliHeaders: []string{"User-Agent: cli-agent"},
			wantUA:     "cli-agent",
			wantCustom: "from-config",
		},
		{
			name:       "命令行新增头部不影响其他层",
			cliHeaders: []string{"X-Extra: cli-extra"},
			wantUA:     "config-agent",
			wantCustom: "from-config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hm, err := NewHeaderManager(path, tt.cliHeaders)
			if err != nil {
				t.Fatalf("NewHeaderManager() 意外失败: %v", err)
			}
			headers, err := hm.GetHeaders()
			if err != nil {
				t.Fatalf("GetHeaders() 意外失败: %v", err)
			}
			if got := headers.Get("User-Agent"); got != tt.wantUA {
				t.Errorf("User-Agent = %q, 期望 %q", got, tt.wantUA)
			}
			if got := headers.Get("X-Custom"); got != tt.wantCustom {
				t.Errorf("X-Custom = %q, 期望 %q", got, tt.wantCustom)
			}
		})
	}
}

// TestHeaderManagerCliParseError 命令行头部格式错误在构造时报错
func TestHeaderManagerCliParseError(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		wantErr bool
	}{
		{name: "缺少冒号", headers: []string{"NoColonHere"}, wantErr: true},
		{name: "名称为空", headers: []string{": value-only"}, wantErr: true},
		{name: "值为空是合法的", headers: []string{"X-Empty:"}, wantErr: false},
		{name: "值里的冒号保留", headers: []string{"Referer: https://example.org/x"}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHeaderManager("", tt.headers)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewHeaderManager(%v) err = %v, wantErr %v", tt.headers, err, tt.wantErr)
			}
		})
	}
}

// TestHeaderManagerRedaction 脱敏视图不暴露敏感头部的值
func TestHeaderManagerRedaction(t *testing.T) {
	path := writeHeadersFile(t, "headers: {}\n")
	hm, err := NewHeaderManager(path, []string{"Authorization: Bearer secret-token", "Cookie: sid=abc123"})
	if err != nil {
		t.Fatalf("NewHeaderManager() 意外失败: %v", err)
	}
	if _, err := hm.GetHeaders(); err != nil {
		t.Fatalf("GetHeaders() 意外失败: %v", err)
	}

	safe := hm.GetSafeHeaders()
	if safe["Authorization"] == "Bearer secret-token" {
		t.Error("Authorization的值应被脱敏")
	}
	if safe["Cookie"] == "sid=abc123" {
		t.Error("Cookie的值应被脱敏")
	}
	if safe["User-Agent"] != DefaultUserAgent {
		t.Error("非敏感头部不应被脱敏")
	}
}
