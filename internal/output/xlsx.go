package output

import (
	"fmt"
	"io"

	"github.com/RecoveryAshes/AideddScraper/internal/models"
	"github.com/RecoveryAshes/AideddScraper/internal/utils"
	"github.com/xuri/excelize/v2"
)

// maxSheetName Excel工作表名称长度上限
const maxSheetName = 31

// WriteXLSX 将数据集写入单个工作表,表头加粗并冻结首行
func WriteXLSX(path, sheet string, ds *models.Dataset) (int, error) {
	if ds.IsEmpty() {
		return 0, models.ErrEmptyDataset
	}
	if sheet == "" {
		sheet = "Sheet1"
	}
	if len(sheet) > maxSheetName {
		sheet = sheet[:maxSheetName]
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			utils.Warnf("关闭工作簿失败: %v", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return 0, fmt.Errorf("设置工作表名称失败: %w", err)
	}

	rows := ds.Rows()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return 0, err
		}
		values := make([]interface{}, len(r))
		for j, v := range r {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return 0, fmt.Errorf("写入第%d行失败: %w", i+1, err)
		}
	}

	if len(ds.Header) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return 0, fmt.Errorf("创建表头样式失败: %w", err)
		}
		if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
			return 0, fmt.Errorf("设置表头样式失败: %w", err)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			utils.Warnf("冻结表头失败: %v", err)
		}
	}

	err := writeAtomic(path, func(w io.Writer) error {
		return f.Write(w)
	})
	if err != nil {
		return 0, err
	}

	utils.Debugf("写入 %d 行到工作表 %s (%s)", len(rows), sheet, path)
	return len(rows), nil
}
