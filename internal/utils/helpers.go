package utils

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ReadKeywordsFromFile 从文件中读取关键词列表,每行一个
func ReadKeywordsFromFile(filepath string) ([]string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("打开关键词文件失败: %w", err)
	}
	defer file.Close()

	keywords := make([]string, 0)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// 跳过空行和注释行
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		keywords = append(keywords, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取关键词文件失败: %w", err)
	}

	if len(keywords) == 0 {
		return nil, fmt.Errorf("关键词文件中没有有效的关键词")
	}

	Infof("从文件加载了 %d 个关键词", len(keywords))
	return keywords, nil
}

// KeywordSlug 把关键词转成文件名用的形式,空格替换为下划线
func KeywordSlug(keyword string) string {
	return strings.ReplaceAll(keyword, " ", "_")
}

// 文件名里不允许出现的字符,包含路径分隔符、Windows保留字符和控制字符
var unsafeFilenameChars = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1F\x7F]+`)

// SanitizeFilename 清洗标题等自由文本,使其可以安全用作文件名
// 非法字符替换为下划线并折叠,首尾的下划线、空格和点号去掉
// 清洗后可能为空串,调用方需要自行处理
func SanitizeFilename(name string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(name, "_")
	cleaned = strings.Trim(cleaned, "_ .")
	return cleaned
}
