package main

import (
	"fmt"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
)

// ValidateFlags 验证命令行标志
// 排序列不在这里校验: 列名无效不是致命错误,检索时会回退到引用数排序
func ValidateFlags(nresults, startYear, endYear int, proxy string) error {
	// 验证结果条数
	if nresults < 1 || nresults > 1000 {
		return fmt.Errorf("结果条数必须在1-1000之间,当前值: %d", nresults)
	}

	// 验证年份范围
	if startYear < 0 || startYear > 3000 {
		return fmt.Errorf("起始年份必须在0-3000之间,当前值: %d", startYear)
	}
	if endYear < 0 || endYear > 3000 {
		return fmt.Errorf("截止年份必须在0-3000之间,当前值: %d", endYear)
	}
	if endYear != 0 && endYear < startYear {
		return fmt.Errorf("截止年份不能早于起始年份: %d < %d", endYear, startYear)
	}

	// 验证代理地址
	if proxy != "" {
		if err := models.ValidateURL(proxy); err != nil {
			return fmt.Errorf("无效的代理地址: %w", err)
		}
	}

	return nil
}

// ValidateKeywordFile 验证关键词文件路径
func ValidateKeywordFile(filepath string) error {
	if filepath == "" {
		return fmt.Errorf("关键词文件路径不能为空")
	}
	// 文件存在性检查将在运行时进行
	return nil
}
