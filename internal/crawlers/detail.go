package crawlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/RecoveryAshes/AideddScraper/internal/models"
	"golang.org/x/net/html"
)

// 不计入可见文本的元素
var invisibleElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// DetailEnricher 访问详情页并派生职业标记
type DetailEnricher struct {
	fetcher *Fetcher
	baseURL string
	classes []string
}

// NewDetailEnricher 创建详情页补充器
func NewDetailEnricher(fetcher *Fetcher, baseURL string, classes []string) *DetailEnricher {
	return &DetailEnricher{
		fetcher: fetcher,
		baseURL: baseURL,
		classes: classes,
	}
}

// Classes 职业枚举
func (de *DetailEnricher) Classes() []string {
	return de.classes
}

// Resolve 将相对链接解析为详情页绝对URL
func (de *DetailEnricher) Resolve(link string) (string, error) {
	return models.ResolveLink(de.baseURL, link)
}

// Empty 返回全false的标记
func (de *DetailEnricher) Empty() models.ClassFlags {
	return models.NewClassFlags(de.classes)
}

// Classify 抓取详情页并派生职业标记
// 出错时返回全false标记和错误, 由调用方决定是否记录
func (de *DetailEnricher) Classify(ctx context.Context, detailURL string) (models.ClassFlags, error) {
	page, err := de.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		return de.Empty(), err
	}

	text, err := VisibleText(bytes.NewReader(page.Body))
	if err != nil {
		return de.Empty(), fmt.Errorf("解析详情页失败 [%s]: %w", detailURL, err)
	}
	return models.DeriveClassFlags(de.classes, VisibleLines(text)), nil
}

// VisibleText 返回文档中所有文本节点按文档顺序拼接的结果
// script/style/noscript/template 中的内容被忽略
func VisibleText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if invisibleElements[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sb.String(), nil
}

// VisibleLines 按换行拆分, 去掉首尾空白并丢弃空行
func VisibleLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
