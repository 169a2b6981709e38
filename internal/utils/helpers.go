package utils

import (
	"fmt"

	"github.com/RecoveryAshes/AideddScraper/internal/models"
)

// previewRows 预览的数据行数
const previewRows = 2

// PreviewLines 生成写入后在控制台展示的数据预览
// 表头显示前5列; 数据行显示第2列(名称),有职业列时附带链接列之前的flagCols列
func PreviewLines(ds *models.Dataset, flagCols int) []string {
	if ds.IsEmpty() || len(ds.Records) == 0 {
		return nil
	}

	lines := make([]string, 0, previewRows+1)
	head := ds.Header
	if len(head) > 5 {
		lines = append(lines, fmt.Sprintf("表头: %q... [+%d 列]", []string(head[:5]), len(head)-5))
	} else {
		lines = append(lines, fmt.Sprintf("表头: %q", []string(head)))
	}

	for i, r := range ds.Records {
		if i >= previewRows {
			break
		}
		name := "N/A"
		if len(r) > 1 {
			name = r[1]
		}
		line := fmt.Sprintf("%d. %s", i+1, name)
		if flagCols > 0 {
			if len(r) > flagCols {
				line += fmt.Sprintf(" - 职业: %q", []string(r[len(r)-1-flagCols:len(r)-1]))
			} else {
				line += " - 职业: N/A"
			}
		}
		lines = append(lines, line)
	}
	return lines
}
