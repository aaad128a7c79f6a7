package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestKeywordSlug(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		want    string
	}{
		{"多词关键词", "graph neural networks", "graph_neural_networks"},
		{"单词关键词", "transformers", "transformers"},
		{"多个连续空格", "a  b", "a__b"},
		{"空关键词", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeywordSlug(tt.keyword); got != tt.want {
				t.Errorf("KeywordSlug(%q) = %q, want %q", tt.keyword, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"普通标题", "A survey of deep learning", "A survey of deep learning"},
		{"路径分隔符", "TCP/IP networks", "TCP_IP networks"},
		{"Windows保留字符", `Graphs: "what" <and> why?`, "Graphs_ _what_ _and_ why"},
		{"连续非法字符折叠", "a//\\\\b", "a_b"},
		{"首尾修剪", "...weird title...", "weird title"},
		{"控制字符", "line\nbreak\ttab", "line_break_tab"},
		{"全部非法", "???", ""},
		{"空输入", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestReadKeywordsFromFile(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("正常文件", func(t *testing.T) {
		path := filepath.Join(tempDir, "keywords.txt")
		content := "graph neural networks\n# 注释行跳过\n\ndeep learning\n  transformers  \n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("写入测试文件失败: %v", err)
		}

		keywords, err := ReadKeywordsFromFile(path)
		if err != nil {
			t.Fatalf("ReadKeywordsFromFile() error = %v", err)
		}

		want := []string{"graph neural networks", "deep learning", "transformers"}
		if !reflect.DeepEqual(keywords, want) {
			t.Errorf("关键词列表 = %v, want %v", keywords, want)
		}
	})

	t.Run("空文件报错", func(t *testing.T) {
		path := filepath.Join(tempDir, "empty.txt")
		if err := os.WriteFile(path, []byte("# 只有注释\n\n"), 0644); err != nil {
			t.Fatalf("写入测试文件失败: %v", err)
		}

		if _, err := ReadKeywordsFromFile(path); err == nil {
			t.Error("空文件应返回错误")
		}
	})

	t.Run("文件不存在报错", func(t *testing.T) {
		if _, err := ReadKeywordsFromFile(filepath.Join(tempDir, "missing.txt")); err == nil {
			t.Error("缺失文件应返回错误")
		}
	})
}
