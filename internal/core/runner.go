package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/AideddScraper/internal/crawlers"
	"github.com/RecoveryAshes/AideddScraper/internal/models"
	"github.com/RecoveryAshes/AideddScraper/internal/output"
	"github.com/RecoveryAshes/AideddScraper/internal/utils"
)

// ProfileOverrides 命令行对单个预设的覆盖
type ProfileOverrides struct {
	OutputFile string
	Format     string
	NoEnrich   bool
}

// Apply 将覆盖应用到预设
func (o ProfileOverrides) Apply(p *models.Profile) {
	if o.OutputFile != "" {
		p.OutputFile = o.OutputFile
	}
	if o.Format != "" {
		p.Format = models.OutputFormat(strings.ToLower(o.Format))
		if p.Format == models.FormatXLSX && o.OutputFile == "" {
			p.OutputFile = strings.TrimSuffix(p.OutputFile, filepath.Ext(p.OutputFile)) + ".xlsx"
		}
	}
	if o.NoEnrich {
		p.Enrichment = models.EnrichNone
	}
}

// Runner 执行一次完整的抓取:
// 列表页提取 -> 详情页补充 -> 组装 -> 压缩列 -> 写出 -> 报告
type Runner struct {
	config         *Config
	profile        models.Profile
	headerProvider models.HeaderProvider
	progress       io.Writer
}

// NewRunner 创建运行器
func NewRunner(config *Config, profile models.Profile, headerProvider models.HeaderProvider) *Runner {
	return &Runner{
		config:         config,
		profile:        profile,
		headerProvider: headerProvider,
	}
}

// SetProgressOutput 设置进度条输出, nil时不显示
func (r *Runner) SetProgressOutput(w io.Writer) {
	r.progress = w
}

// OutputPath 输出文件路径; 相对路径基于 output.dir
func (r *Runner) OutputPath() string {
	if filepath.IsAbs(r.profile.OutputFile) {
		return r.profile.OutputFile
	}
	return filepath.Join(r.config.Output.Dir, r.profile.OutputFile)
}

// Run 执行抓取并写出结果
// 中断或任何致命错误都不会写出数据文件
func (r *Runner) Run(ctx context.Context) (*models.RunReport, error) {
	report := models.NewRunReport(r.profile)
	utils.Infof("开始抓取 [%s]: %s (运行ID: %s)", r.profile.Name, r.profile.ListingURL, report.RunID)

	err := r.run(ctx, report)
	report.Finish(err)
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		report.Status = models.RunStatusCancelled
	}

	if r.config.Output.Report {
		reporter := utils.NewReporter(r.config.Output.Dir)
		if path, saveErr := reporter.SaveReport(report); saveErr != nil {
			utils.Warnf("保存运行报告失败: %v", saveErr)
		} else {
			utils.Infof("运行报告: %s", path)
		}
	}
	return report, err
}

func (r *Runner) run(ctx context.Context, report *models.RunReport) error {
	if r.headerProvider != nil {
		headers, err := r.headerProvider.GetHeaders()
		if err != nil {
			return fmt.Errorf("HTTP头部配置无效: %w", err)
		}
		utils.Debugf("请求头部: %v", utils.NewHeaderRedactor().Redact(headers))
	}

	ds, err := r.Scrape(ctx, report)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	path := r.OutputPath()
	lines, err := output.Write(path, r.profile, ds)
	if err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	report.OutputPath = path
	report.Stats.WrittenLines = lines

	utils.Infof("数据已保存到 %s (%d 条记录, %d 列)", path, len(ds.Records), len(ds.Header))
	for _, line := range utils.PreviewLines(ds, r.flagColumns()) {
		utils.Info(line)
	}
	return nil
}

// Scrape 提取、补充并压缩, 返回待写出的数据集
func (r *Runner) Scrape(ctx context.Context, report *models.RunReport) (*models.Dataset, error) {
	listing := crawlers.NewFetcher(ctx, crawlers.FetchConfig{
		Timeout:            r.config.ListingTimeout(),
		Parallelism:        1,
		MaxBodySize:        r.config.HTTP.MaxBodySize,
		InsecureSkipVerify: r.config.HTTP.InsecureSkipVerify,
	}, r.headerProvider)

	extractor := crawlers.NewTableExtractor(listing, r.profile.TableID, r.profile.ItemClass)
	table, size, err := extractor.Extract(ctx, r.profile.ListingURL)
	report.Stats.ListingBytes = size
	if err != nil {
		return nil, err
	}

	report.Stats.TableRows = table.TableRows
	report.Stats.DataRows = len(table.Rows)
	report.Stats.EmptyRows = table.EmptyRows
	report.Stats.RowsWithLink = table.LinkCount()
	report.Stats.GeneratedHeader = !table.HeaderDetected() && len(table.Rows) > 0

	var results []crawlers.DetailResult
	if r.profile.Enriches() && len(table.Rows) > 0 {
		results, err = r.enrich(ctx, table, report)
		if err != nil {
			return nil, err
		}
	}

	ds := r.assemble(table, results)
	report.Stats.ColumnsBefore = len(ds.Header)

	compacted := ds.Compact()
	report.Stats.ColumnsAfter = len(compacted.Header)
	utils.Infof("过滤空表头列: %d -> %d 列", report.Stats.ColumnsBefore, report.Stats.ColumnsAfter)

	if compacted.IsEmpty() {
		return nil, models.ErrEmptyDataset
	}
	return compacted, nil
}

func (r *Runner) enrich(ctx context.Context, table *crawlers.Table, report *models.RunReport) ([]crawlers.DetailResult, error) {
	workers := crawlers.ClampWorkers(r.config.Detail.Workers)

	detail := crawlers.NewFetcher(ctx, crawlers.FetchConfig{
		Timeout:            r.config.DetailTimeout(),
		Delay:              r.config.Delay(),
		Parallelism:        workers,
		MaxBodySize:        r.config.HTTP.MaxBodySize,
		InsecureSkipVerify: r.config.HTTP.InsecureSkipVerify,
	}, r.headerProvider)

	enricher := crawlers.NewDetailEnricher(detail, r.detailBase(), r.profile.Classes)
	pool := crawlers.NewDetailPool(enricher, crawlers.PoolConfig{
		Workers:       workers,
		RatePerSecond: r.config.Detail.RatePerSecond,
		Burst:         r.config.Detail.Burst,
		Progress:      r.progress,
	})

	utils.Infof("获取职业信息: %d 行, 其中 %d 行有详情链接", len(table.Rows), table.LinkCount())
	results, stats, err := pool.Run(ctx, table.Rows)
	if err != nil {
		return nil, err
	}

	report.Stats.DetailFetched = stats.Fetched
	report.Stats.DetailFailed = stats.Failed
	report.Stats.DetailCached = stats.Cached
	for _, res := range results {
		if res.Err != nil {
			report.FailedDetails = append(report.FailedDetails, models.FailedDetail{
				Row:      res.Index,
				URL:      res.URL,
				ErrorMsg: res.Err.Error(),
			})
		}
	}
	utils.Infof("详情页: 成功 %d, 失败 %d, 重复 %d", stats.Fetched, stats.Failed, stats.Cached)
	return results, nil
}

// assemble 组装数据集
// 表头: 表格列 + 职业列 + 链接列; 数据行: 单元格 + 职业标记 + 详情页绝对URL
func (r *Runner) assemble(table *crawlers.Table, results []crawlers.DetailResult) *models.Dataset {
	if len(table.Rows) == 0 && !table.HeaderDetected() {
		return &models.Dataset{}
	}

	header := models.Record(table.ColumnNames())
	width := len(header)
	if r.profile.Enriches() {
		header = append(header, r.profile.Classes...)
	}
	header = append(header, r.linkColumn())

	ds := &models.Dataset{Header: header, Records: make([]models.Record, 0, len(table.Rows))}

	base := r.detailBase()
	for i, row := range table.Rows {
		// 补齐/截断到表格宽度, 职业列才能与表头对齐
		record := make(models.Record, width)
		copy(record, row.Cells)

		link := ""
		if results != nil {
			record = append(record, results[i].Flags.Tokens(r.profile.YesToken, r.profile.NoToken)...)
			link = results[i].URL
		} else if row.Link != "" {
			resolved, err := models.ResolveLink(base, row.Link)
			if err != nil {
				utils.Warnf("解析详情链接失败 [%s]: %v", row.Link, err)
			}
			link = resolved
		}
		ds.Records = append(ds.Records, append(record, link))
	}
	return ds
}

func (r *Runner) detailBase() string {
	if r.profile.DetailBaseURL != "" {
		return r.profile.DetailBaseURL
	}
	return r.profile.ListingURL
}

func (r *Runner) linkColumn() string {
	if r.profile.LinkColumn != "" {
		return r.profile.LinkColumn
	}
	return models.DefaultLinkColumn
}

func (r *Runner) flagColumns() int {
	if r.profile.Enriches() {
		return len(r.profile.Classes)
	}
	return 0
}
