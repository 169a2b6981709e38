package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/RecoveryAshes/AideddScraper/internal/models"
	"github.com/RecoveryAshes/AideddScraper/internal/utils"
)

// BatchRunner 依次运行多个预设
type BatchRunner struct {
	config         *Config
	overrides      ProfileOverrides
	batchDelay     time.Duration
	continueOnErr  bool
	headerProvider models.HeaderProvider
	progress       io.Writer
}

// BatchResult 单个预设的结果
type BatchResult struct {
	Profile  string
	Success  bool
	Error    error
	Report   *models.RunReport
	Duration float64
}

// BatchSummary 批量运行摘要
type BatchSummary struct {
	Total         int
	SuccessCount  int
	FailCount     int
	TotalRecords  int
	TotalDuration float64
	Results       []BatchResult
}

// NewBatchRunner 创建批量运行器
func NewBatchRunner(config *Config, overrides ProfileOverrides, batchDelay time.Duration, continueOnErr bool, headerProvider models.HeaderProvider) *BatchRunner {
	return &BatchRunner{
		config:         config,
		overrides:      overrides,
		batchDelay:     batchDelay,
		continueOnErr:  continueOnErr,
		headerProvider: headerProvider,
	}
}

// SetProgressOutput 设置进度条输出
func (br *BatchRunner) SetProgressOutput(w io.Writer) {
	br.progress = w
}

// RunAll 按顺序运行预设
// 中断时立即返回ctx的错误; 有失败的预设时返回汇总错误
func (br *BatchRunner) RunAll(ctx context.Context, names []string) (*BatchSummary, error) {
	utils.Infof("开始批量抓取: %d 个预设", len(names))

	summary := &BatchSummary{
		Total:   len(names),
		Results: make([]BatchResult, 0, len(names)),
	}
	start := time.Now()

	for i, name := range names {
		utils.Infof("==================== [%d/%d] %s ====================", i+1, len(names), name)

		result := br.runSingle(ctx, name)
		summary.Results = append(summary.Results, result)

		if err := ctx.Err(); err != nil {
			summary.FailCount++
			summary.TotalDuration = time.Since(start).Seconds()
			return summary, err
		}

		if result.Success {
			summary.SuccessCount++
			summary.TotalRecords += result.Report.Stats.DataRows
		} else {
			summary.FailCount++
			utils.Errorf("预设 %s 失败: %v", name, result.Error)
			if !br.continueOnErr {
				utils.Warn("批量抓取中止 (--continue-on-error=false)")
				break
			}
		}

		if i < len(names)-1 && br.batchDelay > 0 {
			utils.Debugf("等待 %s 后处理下一个预设...", br.batchDelay)
			select {
			case <-time.After(br.batchDelay):
			case <-ctx.Done():
				summary.TotalDuration = time.Since(start).Seconds()
				return summary, ctx.Err()
			}
		}
	}

	summary.TotalDuration = time.Since(start).Seconds()
	br.printSummary(summary)

	if summary.FailCount > 0 {
		return summary, fmt.Errorf("%d 个预设失败", summary.FailCount)
	}
	return summary, nil
}

func (br *BatchRunner) runSingle(ctx context.Context, name string) BatchResult {
	result := BatchResult{Profile: name}
	start := time.Now()

	profile, err := br.config.Profile(name)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start).Seconds()
		return result
	}
	br.overrides.Apply(&profile)

	runner := NewRunner(br.config, profile, br.headerProvider)
	runner.SetProgressOutput(br.progress)

	report, err := runner.Run(ctx)
	result.Report = report
	result.Error = err
	result.Success = err == nil
	result.Duration = time.Since(start).Seconds()
	return result
}

func (br *BatchRunner) printSummary(summary *BatchSummary) {
	utils.Info("==================================================")
	utils.Info("批量抓取摘要")
	utils.Info("==================================================")
	utils.Infof("预设数: %d", summary.Total)
	utils.Infof("成功: %d", summary.SuccessCount)
	utils.Infof("失败: %d", summary.FailCount)
	utils.Infof("总记录数: %d", summary.TotalRecords)
	utils.Infof("总耗时: %.2f秒", summary.TotalDuration)

	for _, r := range summary.Results {
		if !r.Success {
			utils.Warnf("  - %s: %v", r.Profile, r.Error)
		}
	}
}
