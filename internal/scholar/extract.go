package scholar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
)

// 提取器契约:输入为结果块的原始内容,失败时返回零值和models.ErrNotFound,
// 所有窗口都钳制在内容边界内,任何输入都不会panic

// citedByMarker 被引次数标记,含结尾空格共9个字符
const citedByMarker = "Cited by "

// IntExtractor 整数字段提取函数
type IntExtractor func(content string) (int, error)

// StringExtractor 字符串字段提取函数
type StringExtractor func(content string) (string, error)

// ExtractCitationCount 从结果块原始HTML中提取被引次数
// 取最后一个"Cited by "标记,从标记后读取至多5个字符,遇'<'截断
// 标记不存在或窗口内容不是合法整数时返回ErrNotFound
func ExtractCitationCount(content string) (int, error) {
	idx := strings.LastIndex(content, citedByMarker)
	if idx < 0 {
		return 0, fmt.Errorf("内容中没有被引标记: %w", models.ErrNotFound)
	}

	start := idx + len(citedByMarker)
	// 窗口至少1个字符,标记后第一个字符不参与'<'判断
	end := start + 1
	for end < start+5 && end < len(content) && content[end] != '<' {
		end++
	}
	if end > len(content) {
		end = len(content)
	}

	window := content[start:end]
	count, err := strconv.Atoi(window)
	if err != nil {
		return 0, fmt.Errorf("被引次数格式无效 %q: %w", window, models.ErrNotFound)
	}
	return count, nil
}

// ExtractYear 从署名行文本中提取发表年份
// 取最后一个'-'之前的4字符窗口(与'-'之间隔一个字符)
// 窗口不全是数字时返回0且不报错;没有'-'时返回ErrNotFound
func ExtractYear(content string) (int, error) {
	dash := strings.LastIndex(content, "-")
	if dash < 0 {
		return 0, fmt.Errorf("署名行中没有分隔符: %w", models.ErrNotFound)
	}

	lo := dash - 5
	if lo < 0 {
		lo = 0
	}
	hi := dash - 1
	if hi < lo {
		hi = lo
	}

	window := content[lo:hi]
	if !isDigits(window) {
		return 0, nil
	}
	year, err := strconv.Atoi(window)
	if err != nil {
		return 0, nil
	}
	return year, nil
}

// ExtractAuthor 从署名行文本中提取作者串
// 取第一个'-'之前的内容,跳过开头2个字符;结果可以为空串
// 没有'-'时返回ErrNotFound
func ExtractAuthor(content string) (string, error) {
	dash := strings.Index(content, "-")
	if dash < 0 {
		return "", fmt.Errorf("署名行中没有分隔符: %w", models.ErrNotFound)
	}

	lo := 2
	if lo > len(content) {
		lo = len(content)
	}
	hi := dash - 1
	if hi < lo {
		hi = lo
	}

	return content[lo:hi], nil
}

// isDigits 窗口是否为非空纯数字
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
