// Package export 把排班数据导出为 Excel 和 iCalendar 文件
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workforce-manager/backend/internal/scheduler"
)

const gridSheet = "排班表"

var weekdayNames = []string{"日", "一", "二", "三", "四", "五", "六"}

var statusLabels = map[domain.ShiftStatus]string{
	domain.ShiftStatusScheduled:   "上班",
	domain.ShiftStatusDayOff:      "休息",
	domain.ShiftStatusCancelled:   "取消",
	domain.ShiftStatusTransferred: "调班",
	domain.ShiftStatusReduced:     "缩短",
}

// CellText 返回单元格在导出文件中显示的文字，空格子返回空字符串
func CellText(cell *scheduler.Cell) string {
	if cell.Shift == nil {
		return ""
	}

	text := statusLabels[cell.Shift.Status]
	if cell.Shift.StartTime != nil && cell.Shift.EndTime != nil {
		text = fmt.Sprintf("%s %s-%s", text, *cell.Shift.StartTime, *cell.Shift.EndTime)
	}
	if cell.Shift.ReplacementEmployeeID != nil {
		text += " (替班)"
	}
	return text
}

// GridWorkbook 把整月排班表写成一个工作表：每个员工一行，每天一列
func GridWorkbook(grid *scheduler.Grid) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(gridSheet)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", err
	}
	weekendStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E7E6E6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, "", err
	}
	conflictStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, "", err
	}

	// 表头：| 姓名 | 岗位 | 1 (一) | 2 (二) | ...
	f.SetCellValue(gridSheet, cellName(1, 1), "姓名")
	f.SetCellValue(gridSheet, cellName(2, 1), "岗位")
	for i, day := range grid.Days {
		f.SetCellValue(gridSheet, cellName(3+i, 1), fmt.Sprintf("%d (%s)", day.Day, weekdayNames[day.Weekday]))
	}
	f.SetCellStyle(gridSheet, cellName(1, 1), cellName(2+len(grid.Days), 1), headerStyle)

	f.SetColWidth(gridSheet, "A", "B", 12)
	if len(grid.Days) > 0 {
		f.SetColWidth(gridSheet, colName(3), colName(2+len(grid.Days)), 16)
	}

	for r, row := range grid.Rows {
		line := r + 2
		f.SetCellValue(gridSheet, cellName(1, line), row.Employee.FullName)
		if row.Employee.Position != nil {
			f.SetCellValue(gridSheet, cellName(2, line), *row.Employee.Position)
		}

		for c := range row.Cells {
			cell := &row.Cells[c]
			name := cellName(3+c, line)
			f.SetCellValue(gridSheet, name, CellText(cell))

			switch {
			case cell.HasConflict:
				f.SetCellStyle(gridSheet, name, name, conflictStyle)
				if cell.Preference != nil {
					f.AddComment(gridSheet, excelize.Comment{
						Cell:   name,
						Author: row.Employee.FullName,
						Paragraph: []excelize.RichTextRun{
							{Text: cell.Preference.Text},
						},
					})
				}
			case cell.IsWeekend:
				f.SetCellStyle(gridSheet, name, name, weekendStyle)
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", err
	}

	return buf, fmt.Sprintf("排班表_%s.xlsx", grid.Month), nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx)
	return name
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
