package models

import (
	"errors"
	"strings"
)

// ErrEmptyDataset 数据集为空(无表头且无数据行)
var ErrEmptyDataset = errors.New("数据集为空")

// Record 一行记录,按列顺序保存单元格文本
type Record []string

// Dataset 表头 + 有序记录集合
// 压缩后每条记录长度与表头一致
type Dataset struct {
	Header  Record   `json:"header"`
	Records []Record `json:"records"`
}

// IsEmpty 判断数据集是否为空
func (d *Dataset) IsEmpty() bool {
	return d == nil || (len(d.Header) == 0 && len(d.Records) == 0)
}

// Rows 返回包含表头在内的所有行(表头在首行)
func (d *Dataset) Rows() []Record {
	if d.IsEmpty() {
		return nil
	}
	rows := make([]Record, 0, len(d.Records)+1)
	if len(d.Header) > 0 {
		rows = append(rows, d.Header)
	}
	return append(rows, d.Records...)
}

// Aligned 检查每条记录长度是否等于表头长度
func (d *Dataset) Aligned() bool {
	for _, r := range d.Records {
		if len(r) != len(d.Header) {
			return false
		}
	}
	return true
}

// RetainedColumns 计算需要保留的列索引(表头非空白的列)
func (d *Dataset) RetainedColumns() []int {
	keep := make([]int, 0, len(d.Header))
	for i, name := range d.Header {
		if strings.TrimSpace(name) != "" {
			keep = append(keep, i)
		}
	}
	return keep
}

// Compact 删除表头为空的列,返回新数据集
//
// 保留的列索引只根据表头计算一次,再同样地应用到表头和每条记录;
// 记录长度不足时缺失的单元格按空字符串处理。列顺序保持不变。
func (d *Dataset) Compact() *Dataset {
	if d == nil {
		return nil
	}
	keep := d.RetainedColumns()

	out := &Dataset{
		Header:  pick(d.Header, keep),
		Records: make([]Record, 0, len(d.Records)),
	}
	for _, r := range d.Records {
		out.Records = append(out.Records, pick(r, keep))
	}
	return out
}

func pick(r Record, keep []int) Record {
	out := make(Record, len(keep))
	for j, i := range keep {
		if i < len(r) {
			out[j] = r[i]
		}
	}
	return out
}

// HasContent 行中至少有一个非空单元格
func HasContent(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return true
		}
	}
	return false
}
