package models

import (
	"fmt"
	"unicode/utf8"
)

// QuotePolicy 字段引号策略
type QuotePolicy string

const (
	QuoteMinimal QuotePolicy = "minimal" // 仅在需要时加引号
	QuoteAll     QuotePolicy = "all"     // 全部字段加引号
)

// Enrichment 详情页补充方式
type Enrichment string

const (
	EnrichNone    Enrichment = "none"    // 不访问详情页
	EnrichClasses Enrichment = "classes" // 从详情页派生职业标记
)

// OutputFormat 输出文件格式
type OutputFormat string

const (
	FormatCSV  OutputFormat = "csv"
	FormatXLSX OutputFormat = "xlsx"
)

const (
	// DefaultTableID 列表页目标表格的id
	DefaultTableID = "liste"
	// DefaultItemClass 含详情链接的单元格class标记
	DefaultItemClass = "item"
	// DefaultLinkColumn 追加的详情链接列名
	DefaultLinkColumn = "Lien_Description"
	// GenericColumnPrefix 未检测到表头时生成的列名前缀
	GenericColumnPrefix = "Colonne_"
)

// Profile 一次抓取任务的配置(法术/魔法物品两种预设)
type Profile struct {
	Name          string       `mapstructure:"name" json:"name"`
	ListingURL    string       `mapstructure:"listing_url" json:"listing_url"`
	DetailBaseURL string       `mapstructure:"detail_base_url" json:"detail_base_url"`
	TableID       string       `mapstructure:"table_id" json:"table_id"`
	ItemClass     string       `mapstructure:"item_class" json:"item_class"`
	LinkColumn    string       `mapstructure:"link_column" json:"link_column"`
	Enrichment    Enrichment   `mapstructure:"enrichment" json:"enrichment"`
	Classes       []string     `mapstructure:"classes" json:"classes,omitempty"`
	YesToken      string       `mapstructure:"yes_token" json:"yes_token"`
	NoToken       string       `mapstructure:"no_token" json:"no_token"`
	OutputFile    string       `mapstructure:"output_file" json:"output_file"`
	Format        OutputFormat `mapstructure:"format" json:"format"`
	Delimiter     string       `mapstructure:"delimiter" json:"delimiter"`
	Quoting       QuotePolicy  `mapstructure:"quoting" json:"quoting"`
	BOM           bool         `mapstructure:"bom" json:"bom"`
}

// SpellProfile 法术列表预设
func SpellProfile() Profile {
	return Profile{
		Name:          "spells",
		ListingURL:    "https://www.aidedd.org/spell/fr/",
		DetailBaseURL: "https://www.aidedd.org/spell/",
		TableID:       DefaultTableID,
		ItemClass:     DefaultItemClass,
		LinkColumn:    DefaultLinkColumn,
		Enrichment:    EnrichClasses,
		Classes:       append([]string(nil), DefaultSpellClasses...),
		YesToken:      DefaultYesToken,
		NoToken:       DefaultNoToken,
		OutputFile:    "sorts_dnd_aidedd_avec_classes.csv",
		Format:        FormatCSV,
		Delimiter:     ";",
		Quoting:       QuoteMinimal,
		BOM:           true,
	}
}

// ItemProfile 魔法物品列表预设
func ItemProfile() Profile {
	return Profile{
		Name:          "items",
		ListingURL:    "https://www.aidedd.org/magic-item/fr/",
		DetailBaseURL: "https://www.aidedd.org/magic-item/",
		TableID:       DefaultTableID,
		ItemClass:     DefaultItemClass,
		LinkColumn:    DefaultLinkColumn,
		Enrichment:    EnrichNone,
		YesToken:      DefaultYesToken,
		NoToken:       DefaultNoToken,
		OutputFile:    "objets_dnd_aidedd.csv",
		Format:        FormatCSV,
		Delimiter:     ",",
		Quoting:       QuoteAll,
		BOM:           true,
	}
}

// Enriches 是否需要访问详情页
func (p *Profile) Enriches() bool {
	return p.Enrichment == EnrichClasses && len(p.Classes) > 0
}

// DelimiterRune 返回分隔符字符
func (p *Profile) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(p.Delimiter)
	return r
}

// Validate 验证配置
func (p *Profile) Validate() error {
	if err := ValidateURL(p.ListingURL); err != nil {
		return fmt.Errorf("列表页URL无效: %w", err)
	}
	// 为空时使用列表页URL解析详情链接
	if p.DetailBaseURL != "" {
		if err := ValidateURL(p.DetailBaseURL); err != nil {
			return fmt.Errorf("详情页基础URL无效: %w", err)
		}
	}
	if p.TableID == "" {
		return fmt.Errorf("表格id不能为空")
	}
	if p.OutputFile == "" {
		return fmt.Errorf("输出文件名不能为空")
	}
	switch p.Enrichment {
	case EnrichNone, EnrichClasses:
	default:
		return fmt.Errorf("无效的补充方式: %s (有效值: none, classes)", p.Enrichment)
	}
	switch p.Format {
	case FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("无效的输出格式: %s (有效值: csv, xlsx)", p.Format)
	}
	if p.Format == FormatCSV {
		if utf8.RuneCountInString(p.Delimiter) != 1 {
			return fmt.Errorf("分隔符必须是单个字符,当前值: %q", p.Delimiter)
		}
		switch d := p.DelimiterRune(); d {
		case '"', '\r', '\n', utf8.RuneError:
			return fmt.Errorf("无效的分隔符: %q", d)
		}
		switch p.Quoting {
		case QuoteMinimal, QuoteAll:
		default:
			return fmt.Errorf("无效的引号策略: %s (有效值: minimal, all)", p.Quoting)
		}
	}
	return nil
}
