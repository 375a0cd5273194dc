package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/playsift/levelscope/internal/report"
	"github.com/playsift/levelscope/internal/table"
)

// Sheet pairs a generated report table with its name and presentation
// settings for workbook export.
type Sheet struct {
	Name     string
	Table    *table.Table
	Settings report.Settings
}

const defaultHeaderColor = "4472C4"

// WriteWorkbook writes an XLSX workbook with one sheet per report.
func WriteWorkbook(path string, sheets []Sheet) error {
	f, err := buildWorkbook(sheets)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WorkbookBytes renders the workbook in memory, for upload to the object
// store.
func WorkbookBytes(sheets []Sheet) ([]byte, error) {
	f, err := buildWorkbook(sheets)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func buildWorkbook(sheets []Sheet) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets to export")
	}
	f := excelize.NewFile()
	for _, sh := range sheets {
		if _, err := f.NewSheet(sh.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %q: %w", sh.Name, err)
		}
		if err := writeSheet(f, sh); err != nil {
			f.Close()
			return nil, fmt.Errorf("write sheet %q: %w", sh.Name, err)
		}
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, sh Sheet) error {
	v := newView(sh.Table, sh.Settings, "-")
	for j, h := range v.header {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sh.Name, cell, h); err != nil {
			return err
		}
	}
	if len(v.header) > 0 {
		if err := styleHeader(f, sh, len(v.header)); err != nil {
			return err
		}
	}
	for i, row := range v.rows {
		for j, col := range v.columns {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			val := v.cell(row, col)
			// numbers go in as numbers so spreadsheet sorting works;
			// formatted strings (percents, dates) stay strings
			if n, ok := table.ParseNumber(val); ok && !strings.HasSuffix(val, "%") {
				if err := f.SetCellValue(sh.Name, cell, n); err != nil {
					return err
				}
				continue
			}
			if err := f.SetCellValue(sh.Name, cell, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func styleHeader(f *excelize.File, sh Sheet, ncol int) error {
	color := strings.TrimPrefix(sh.Settings.HeaderColor, "#")
	if color == "" {
		color = defaultHeaderColor
	}
	styleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(ncol, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sh.Name, "A1", last, styleID); err != nil {
		return err
	}
	lastCol := strings.TrimRight(last, "0123456789")
	return f.SetColWidth(sh.Name, "A", lastCol, 16)
}
