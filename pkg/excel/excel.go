package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// MIMEType is the content type for .xlsx downloads.
const MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook builds multi-sheet .xlsx exports with bold header rows and
// auto-sized columns.
type Workbook struct {
	file   *excelize.File
	sheets int
}

func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// AddSheet appends a sheet with a bold header row followed by data rows.
// A sheet with zero rows is still a valid export, header row only.
func (w *Workbook) AddSheet(name string, headers []string, rows [][]interface{}) error {
	if err := w.nextSheet(name); err != nil {
		return err
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(name, cell, h); err != nil {
			return err
		}
		widths[i] = len(h)
	}
	if len(headers) > 0 {
		if err := w.boldRange(name, 1, len(headers), 12); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := w.file.SetCellValue(name, cell, value); err != nil {
				return err
			}
			if c < len(widths) {
				if l := len(fmt.Sprint(value)); l > widths[c] {
					widths[c] = l
				}
			}
		}
	}

	return w.autoSize(name, widths)
}

// AddSummarySheet appends a sheet holding a bold title in A1 and label/value
// pairs starting at row 3, labels bold. Used by the statistics exports.
func (w *Workbook) AddSummarySheet(name, title string, pairs [][2]interface{}) error {
	if err := w.nextSheet(name); err != nil {
		return err
	}

	if err := w.file.SetCellValue(name, "A1", title); err != nil {
		return err
	}
	titleStyle, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(name, "A1", "A1", titleStyle); err != nil {
		return err
	}

	labelStyle, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return err
	}

	widths := []int{len(title), 0}
	for i, pair := range pairs {
		row := i + 3
		labelCell := fmt.Sprintf("A%d", row)
		if err := w.file.SetCellValue(name, labelCell, pair[0]); err != nil {
			return err
		}
		if err := w.file.SetCellStyle(name, labelCell, labelCell, labelStyle); err != nil {
			return err
		}
		if err := w.file.SetCellValue(name, fmt.Sprintf("B%d", row), pair[1]); err != nil {
			return err
		}
		if l := len(fmt.Sprint(pair[0])); l > widths[0] {
			widths[0] = l
		}
		if l := len(fmt.Sprint(pair[1])); l > widths[1] {
			widths[1] = l
		}
	}

	return w.autoSize(name, widths)
}

// Buffer serializes the workbook.
func (w *Workbook) Buffer() (*bytes.Buffer, error) {
	return w.file.WriteToBuffer()
}

// nextSheet renames the default sheet on first use, creates a new one after.
func (w *Workbook) nextSheet(name string) error {
	defer func() { w.sheets++ }()
	if w.sheets == 0 {
		return w.file.SetSheetName(w.file.GetSheetName(0), name)
	}
	_, err := w.file.NewSheet(name)
	return err
}

func (w *Workbook) boldRange(sheet string, row, cols int, size float64) error {
	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: size}})
	if err != nil {
		return err
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return w.file.SetCellStyle(sheet, first, last, style)
}

func (w *Workbook) autoSize(sheet string, widths []int) error {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.file.SetColWidth(sheet, col, col, float64(width+2)); err != nil {
			return err
		}
	}
	return nil
}
