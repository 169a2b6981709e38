package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/AideddScraper/internal/models"
	"github.com/schollz/progressbar/v3"
)

// Reporter 运行报告生成器
type Reporter struct {
	outputDir string
}

// NewReporter 创建报告生成器,报告写入 {outputDir}/reports
func NewReporter(outputDir string) *Reporter {
	return &Reporter{outputDir: outputDir}
}

// ReportPath 返回某个预设的报告文件路径
func (r *Reporter) ReportPath(profile string) string {
	return filepath.Join(r.outputDir, "reports", fmt.Sprintf("%s_report.json", profile))
}

// SaveReport 保存JSON运行报告
func (r *Reporter) SaveReport(report *models.RunReport) (string, error) {
	path := r.ReportPath(report.Profile.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	data, err := report.ToJSON()
	if err != nil {
		return "", fmt.Errorf("序列化JSON失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return path, nil
}

// NewProgressBar 创建进度条; out为nil时不显示
func NewProgressBar(max int, description string, out io.Writer) *progressbar.ProgressBar {
	if out == nil {
		out = io.Discard
	}
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
