package main

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/RecoveryAshes/AideddScraper/internal/models"
)

// ValidateRunFlags 验证运行参数
// workers为0、delayMs为-1表示使用配置文件的值
func ValidateRunFlags(workers int, delayMs int, format string) error {
	if workers < 0 || workers > 100 {
		return fmt.Errorf("并发数必须在1-100之间,当前值: %d", workers)
	}
	if delayMs < -1 || delayMs > 60000 {
		return fmt.Errorf("等待时间必须在0-60000毫秒之间,当前值: %d", delayMs)
	}

	switch models.OutputFormat(strings.ToLower(format)) {
	case "", models.FormatCSV, models.FormatXLSX:
	default:
		return fmt.Errorf("无效的输出格式: %s (有效值: csv, xlsx)", format)
	}
	return nil
}

// BuildAdHocProfile 根据 scrape 命令的参数构造预设
// 有职业列表时启用详情页补充; 输出文件名取自URL最后一段
func BuildAdHocProfile(listingURL, tableID, itemClass, detailBase string, classes []string, delimiter string, quoteAll bool) (models.Profile, error) {
	if err := models.ValidateURL(listingURL); err != nil {
		return models.Profile{}, fmt.Errorf("无效的列表页URL: %w", err)
	}

	p := models.Profile{
		Name:          "scrape",
		ListingURL:    listingURL,
		DetailBaseURL: detailBase,
		TableID:       tableID,
		ItemClass:     itemClass,
		LinkColumn:    models.DefaultLinkColumn,
		Enrichment:    models.EnrichNone,
		YesToken:      models.DefaultYesToken,
		NoToken:       models.DefaultNoToken,
		OutputFile:    outputName(listingURL),
		Format:        models.FormatCSV,
		Delimiter:     delimiter,
		Quoting:       models.QuoteMinimal,
		BOM:           true,
	}
	if quoteAll {
		p.Quoting = models.QuoteAll
	}

	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" {
			p.Classes = append(p.Classes, c)
		}
	}
	if len(p.Classes) > 0 {
		p.Enrichment = models.EnrichClasses
	}
	return p, nil
}

// outputName 用URL路径的最后一段命名输出文件
func outputName(listingURL string) string {
	u, err := url.Parse(listingURL)
	if err != nil {
		return "table.csv"
	}
	segs := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	for i := len(segs) - 1; i >= 0; i-- {
		name := strings.TrimSuffix(path.Base(segs[i]), path.Ext(segs[i]))
		if name != "" && name != "fr" && name != "en" {
			return name + ".csv"
		}
	}
	return "table.csv"
}
