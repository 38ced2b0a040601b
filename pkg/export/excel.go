// Package export serializes aggregate tables into xlsx workbooks for
// download. The generic Table shape keeps the exporter independent of which
// aggregate produced the data.
package export

import (
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/wonlab/omics-status/pkg/common/models"
)

// Sheet pairs a worksheet name with the table written into it. Workbook
// preserves the given order.
type Sheet struct {
	Name  string
	Table models.Table
}

// Workbook builds an xlsx file with one worksheet per sheet entry. The first
// sheet replaces the default worksheet so the output has no empty Sheet1.
func Workbook(sheets []Sheet) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("export: no sheets to write")
	}

	f := excelize.NewFile()
	for i, sheet := range sheets {
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			f.SetSheetName("Sheet1", name)
		} else {
			f.NewSheet(name)
		}
		WriteTable(f, name, sheet.Table)
	}
	f.SetActiveSheet(1)
	return f, nil
}

// WriteTable writes a table into the named worksheet: header row first, then
// data rows in table order, cells following the table's column order.
func WriteTable(f *excelize.File, sheet string, t models.Table) {
	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	f.SetSheetRow(sheet, "A1", &header)

	for i, row := range t.Rows {
		cells := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			cells[j] = row[col]
		}
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &cells)
	}
}

// Stream writes a single-table workbook to w, for handlers serving
// format=xlsx downloads.
func Stream(w io.Writer, sheetName string, t models.Table) error {
	f, err := Workbook([]Sheet{{Name: sheetName, Table: t}})
	if err != nil {
		return err
	}
	return f.Write(w)
}
