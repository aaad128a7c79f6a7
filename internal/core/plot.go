package core

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/RecoveryAshes/ScholarRank/internal/models"
	"github.com/RecoveryAshes/ScholarRank/internal/utils"
)

// SavePlot 生成排名-引用数散点图并保存为PNG
// X轴是记录在检索结果中的原始排名,Y轴是引用数,图片与CSV放在同一目录
func SavePlot(records []models.Record, keyword, dir string) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("没有可绘制的记录")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建绘图目录失败 [%s]: %w", dir, err)
	}

	points := make(plotter.XYs, len(records))
	for i := range records {
		points[i].X = float64(records[i].Rank)
		points[i].Y = float64(records[i].Citations)
	}

	p := plot.New()
	p.Title.Text = "Keyword: " + keyword
	p.X.Label.Text = "Rank of the keyword on Google Scholar"
	p.Y.Label.Text = "Number of Citations"

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return "", fmt.Errorf("构造散点图失败: %w", err)
	}
	p.Add(scatter)

	path := filepath.Join(dir, utils.KeywordSlug(keyword)+".png")
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("保存散点图失败 [%s]: %w", path, err)
	}

	utils.Infof("📊 散点图已保存: %s", path)
	return path, nil
}
