// Package scholar 负责解释检索结果页的标记语言
// 页面标记噪声较多,解析采取尽力而为策略:每个结果块恰好产出一条记录,
// 单个字段提取失败只影响该字段本身,用占位值补齐后继续
package scholar

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
	"github.com/RecoveryAshes/ScholarRank/internal/utils"
)

// ParseStats 单页解析的字段缺失统计
type ParseStats struct {
	CitationMisses int // 被引次数缺失的记录数
	YearMisses     int // 年份缺失的记录数
}

// Parser 结果页解析器
// 提取策略可注入,便于单独替换和测试
type Parser struct {
	citations IntExtractor
	year      IntExtractor
	author    StringExtractor
}

// NewParser 创建使用默认提取策略的解析器
func NewParser() *Parser {
	return &Parser{
		citations: ExtractCitationCount,
		year:      ExtractYear,
		author:    ExtractAuthor,
	}
}

// ParsePage 解析一个结果页,按出现顺序返回记录
// pageURL用于生成链接占位值;记录的Rank由调用方统一分配
func (p *Parser) ParsePage(pageHTML []byte, pageURL string) ([]models.Record, ParseStats, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return nil, ParseStats{}, fmt.Errorf("解析结果页失败: %w", err)
	}

	var records []models.Record
	var stats ParseStats

	doc.Find("div.gs_r").Each(func(_ int, block *goquery.Selection) {
		record := p.parseBlock(block, pageURL, &stats)
		records = append(records, record)
	})

	return records, stats, nil
}

// parseBlock 解析单个结果块
// 五项字段提取相互隔离,任何一项失败都不会中断其余字段
func (p *Parser) parseBlock(block *goquery.Selection, pageURL string, stats *ParseStats) models.Record {
	record := models.Record{
		Title:  models.TitleNotFound,
		Author: models.AuthorNotFound,
		Link:   models.LinkNotFound(pageURL),
	}

	anchor := block.Find("h3").First().Find("a").First()
	if anchor.Length() > 0 {
		record.Title = anchor.Text()
		if href, ok := anchor.Attr("href"); ok {
			record.Link = href
		}
	}

	blockHTML, err := goquery.OuterHtml(block)
	if err != nil {
		blockHTML = ""
	}
	if count, err := p.citations(blockHTML); err != nil {
		utils.Warnf("Number of citations not found for %s. Appending 0", record.Title)
		stats.CitationMisses++
	} else {
		record.Citations = count
	}

	byline := block.Find("div.gs_a").First()
	if byline.Length() == 0 {
		utils.Warnf("Year not found for %s, appending 0", record.Title)
		stats.YearMisses++
		return record
	}

	bylineText := byline.Text()
	if year, err := p.year(bylineText); err != nil {
		utils.Warnf("Year not found for %s, appending 0", record.Title)
		stats.YearMisses++
	} else {
		record.Year = year
	}

	if author, err := p.author(bylineText); err == nil {
		record.Author = author
	}

	return record
}
