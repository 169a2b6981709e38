package models

import (
	"encoding/json"
	"time"
)

// RunStatus 运行状态
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"   // 执行中
	RunStatusCompleted RunStatus = "completed" // 已完成
	RunStatusFailed    RunStatus = "failed"    // 失败
	RunStatusCancelled RunStatus = "cancelled" // 用户中断
)

// RunStats 运行统计
type RunStats struct {
	TableRows       int     `json:"table_rows"`       // 表格中的tr数量
	DataRows        int     `json:"data_rows"`        // 保留的数据行
	EmptyRows       int     `json:"empty_rows"`       // 丢弃的空行
	RowsWithLink    int     `json:"rows_with_link"`   // 含详情链接的行
	DetailFetched   int     `json:"detail_fetched"`   // 详情页成功数
	DetailFailed    int     `json:"detail_failed"`    // 详情页失败数
	DetailCached    int     `json:"detail_cached"`    // 重复链接命中缓存数
	ColumnsBefore   int     `json:"columns_before"`   // 压缩前列数
	ColumnsAfter    int     `json:"columns_after"`    // 压缩后列数
	WrittenLines    int     `json:"written_lines"`    // 写入行数(含表头)
	ListingBytes    int     `json:"listing_bytes"`    // 列表页响应大小
	Duration        float64 `json:"duration"`         // 总耗时(秒)
	GeneratedHeader bool    `json:"generated_header"` // 是否生成了通用表头
}

// RunReport 单次运行报告
type RunReport struct {
	RunID      string    `json:"run_id"`
	Profile    Profile   `json:"profile"`
	Status     RunStatus `json:"status"`
	OutputPath string    `json:"output_path,omitempty"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`

	Stats RunStats `json:"stats"`

	// 详情页失败的URL
	FailedDetails []FailedDetail `json:"failed_details,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
}

// FailedDetail 详情页失败信息
type FailedDetail struct {
	Row      int    `json:"row"`
	URL      string `json:"url"`
	ErrorMsg string `json:"error_msg"`
}

// NewRunReport 创建运行报告
func NewRunReport(profile Profile) *RunReport {
	return &RunReport{
		RunID:     generateID(),
		Profile:   profile,
		Status:    RunStatusRunning,
		StartTime: time.Now(),
	}
}

// Finish 记录结束状态
func (r *RunReport) Finish(err error) {
	r.EndTime = time.Now()
	r.Stats.Duration = r.EndTime.Sub(r.StartTime).Seconds()
	if err != nil {
		r.Status = RunStatusFailed
		r.ErrorMessage = err.Error()
		return
	}
	r.Status = RunStatusCompleted
}

// ToJSON 序列化为JSON
func (r *RunReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *RunReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
