package styler

import (
	"encoding/json"
	"fmt"
	"os"

	"styleapi/internal/model"
)

// DefaultCatalog 内置风格目录。/image/styles 按此顺序原样返回。
func DefaultCatalog() []model.Style {
	return []model.Style{
		{ID: "anime", Name: "动漫风格", Description: "将图片转换为动漫艺术风格"},
		{ID: "oil", Name: "油画风格", Description: "将图片转换为油画艺术风格"},
		{ID: "sketch", Name: "素描风格", Description: "将图片转换为铅笔素描风格"},
		{ID: "watercolor", Name: "水彩风格", Description: "将图片转换为水彩画风格"},
		{ID: "pixel", Name: "像素风格", Description: "将图片转换为像素艺术风格"},
	}
}

// LoadCatalog 从 JSON 文件加载风格目录，新增风格不用改代码。
// 文件内容为 Style 数组，顺序即返回顺序。
func LoadCatalog(path string) ([]model.Style, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var styles []model.Style
	if err := json.Unmarshal(b, &styles); err != nil {
		return nil, fmt.Errorf("parse style catalog %s: %w", path, err)
	}
	if len(styles) == 0 {
		return nil, fmt.Errorf("style catalog %s is empty", path)
	}
	for i, s := range styles {
		if s.ID == "" {
			return nil, fmt.Errorf("style catalog %s: entry %d has empty id", path, i)
		}
	}
	return styles, nil
}
