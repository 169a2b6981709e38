package crawlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/AideddScraper/internal/models"
	"github.com/RecoveryAshes/AideddScraper/internal/utils"
	"golang.org/x/net/html"
)

// ErrTableNotFound 列表页中不存在指定id的表格
var ErrTableNotFound = errors.New("未找到目标表格")

// Row 一条数据行
type Row struct {
	Cells []string
	Link  string // 详情页相对链接, 没有时为空
}

// Table 列表页表格的提取结果
type Table struct {
	Header    []string // 未检测到表头时为nil
	Rows      []Row
	TableRows int // 表格中tr的总数
	EmptyRows int // 因所有单元格为空而丢弃的行
}

// HeaderDetected 是否从页面检测到了表头
func (t *Table) HeaderDetected() bool {
	return t.Header != nil
}

// Width 表头列数; 无表头时为第一条数据行的列数
func (t *Table) Width() int {
	if t.Header != nil {
		return len(t.Header)
	}
	if len(t.Rows) > 0 {
		return len(t.Rows[0].Cells)
	}
	return 0
}

// ColumnNames 返回表头; 未检测到表头时按第一条数据行的宽度生成 Colonne_1..Colonne_N
func (t *Table) ColumnNames() []string {
	if t.Header != nil {
		return append([]string(nil), t.Header...)
	}
	names := make([]string, t.Width())
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", models.GenericColumnPrefix, i+1)
	}
	return names
}

// LinkCount 含详情链接的行数
func (t *Table) LinkCount() int {
	n := 0
	for _, r := range t.Rows {
		if r.Link != "" {
			n++
		}
	}
	return n
}

// TableExtractor 抓取列表页并提取目标表格
type TableExtractor struct {
	fetcher   *Fetcher
	tableID   string
	itemClass string
}

// NewTableExtractor 创建表格提取器
func NewTableExtractor(fetcher *Fetcher, tableID, itemClass string) *TableExtractor {
	if tableID == "" {
		tableID = models.DefaultTableID
	}
	if itemClass == "" {
		itemClass = models.DefaultItemClass
	}
	return &TableExtractor{
		fetcher:   fetcher,
		tableID:   tableID,
		itemClass: itemClass,
	}
}

// Extract 抓取listingURL并解析表格, 同时返回响应体大小
func (te *TableExtractor) Extract(ctx context.Context, listingURL string) (*Table, int, error) {
	utils.Infof("正在获取列表页: %s", listingURL)

	page, err := te.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return nil, 0, fmt.Errorf("获取列表页失败: %w", err)
	}
	utils.Debugf("列表页响应: 状态码=%d, 大小=%d bytes", page.StatusCode, len(page.Body))

	table, err := ParseTable(bytes.NewReader(page.Body), te.tableID, te.itemClass)
	if err != nil {
		return nil, len(page.Body), err
	}

	utils.Infof("表格共 %d 行, 保留数据行 %d, 丢弃空行 %d", table.TableRows, len(table.Rows), table.EmptyRows)
	if table.HeaderDetected() {
		utils.Debugf("检测到表头: %q", table.Header)
	} else if len(table.Rows) > 0 {
		utils.Infof("未检测到表头, 生成通用表头 (%d 列)", table.Width())
	}
	return table, len(page.Body), nil
}

// ParseTable 从HTML中解析id为tableID的表格
//
// 第一个满足"首个单元格是th"或"行号为0"的行作为表头, 只选一次;
// 没有单元格的行被跳过但仍计入行号。其余行都是数据行。
func ParseTable(r io.Reader, tableID, itemClass string) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	tableSel := doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, ok := s.Attr("id")
		return ok && id == tableID
	}).First()
	if tableSel.Length() == 0 {
		return nil, fmt.Errorf("%w: id=%s", ErrTableNotFound, tableID)
	}

	table := &Table{}
	trs := tableSel.Find("tr")
	table.TableRows = trs.Length()

	trs.Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("th, td")
		if cells.Length() == 0 {
			return
		}

		if table.Header == nil && (goquery.NodeName(cells.First()) == "th" || i == 0) {
			table.Header = cellTexts(cells)
			return
		}

		row := Row{Cells: cellTexts(cells), Link: detailLink(cells, itemClass)}
		if !models.HasContent(row.Cells) {
			table.EmptyRows++
			return
		}
		table.Rows = append(table.Rows, row)
	})

	return table, nil
}

func cellTexts(cells *goquery.Selection) []string {
	texts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, cellText(cell))
	})
	return texts
}

// cellText 每个文本节点去掉首尾空白后直接拼接
func cellText(cell *goquery.Selection) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range cell.Nodes {
		walk(n)
	}
	return sb.String()
}

// detailLink 第一个带itemClass且含有非空href锚点的单元格
// 每个单元格只看第一个<a>
func detailLink(cells *goquery.Selection, itemClass string) string {
	link := ""
	cells.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if !cell.HasClass(itemClass) {
			return true
		}
		href, ok := cell.Find("a").First().Attr("href")
		if ok && href != "" {
			link = href
			return false
		}
		return true
	})
	return link
}
