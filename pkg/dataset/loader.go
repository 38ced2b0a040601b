package dataset

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/wonlab/omics-status/pkg/common/models"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06",
	"01/02/2006",
	time.RFC3339,
}

// ParseWorkbook reads an uploaded xlsx workbook into sample records. The
// first row of the data sheet must carry the required column headers by
// exact name; any other columns are ignored. Rows whose cells are all blank
// are skipped. An unparsable date leaves the Date field nil rather than
// failing the load.
func ParseWorkbook(r io.Reader, sheetName string, maxRows int) ([]models.SampleRecord, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, SchemaError{reason: fmt.Errorf("%w: %v", errUnreadableWorkbook, err)}
	}

	sheet, err := pickSheet(xlsx, sheetName)
	if err != nil {
		return nil, err
	}

	rows, err := xlsx.Rows(sheet)
	if err != nil {
		return nil, SchemaError{reason: fmt.Errorf("%w: %v", errUnreadableWorkbook, err)}
	}

	var header map[string]int
	var records []models.SampleRecord
	for rows.Next() {
		cells := rows.Columns()
		if blankRow(cells) {
			continue
		}

		if header == nil {
			header = make(map[string]int, len(cells))
			for i, cell := range cells {
				name := strings.TrimSpace(cell)
				if name == "" {
					continue
				}
				if _, dup := header[name]; !dup {
					header[name] = i
				}
			}
			var missing []string
			for _, col := range models.RequiredColumns {
				if _, ok := header[col]; !ok {
					missing = append(missing, col)
				}
			}
			if len(missing) > 0 {
				return nil, SchemaError{Missing: missing}
			}
			continue
		}

		if maxRows > 0 && len(records) >= maxRows {
			return nil, SchemaError{reason: fmt.Errorf("%w: more than %d data rows", errTooManyRows, maxRows)}
		}

		records = append(records, models.SampleRecord{
			Project:   cellAt(cells, header["Project"]),
			PatientID: cellAt(cells, header["PatientID"]),
			Visit:     cellAt(cells, header["Visit"]),
			Omics:     cellAt(cells, header["Omics"]),
			Tissue:    cellAt(cells, header["Tissue"]),
			SampleID:  cellAt(cells, header["SampleID"]),
			Date:      parseDate(cellAt(cells, header["Date"])),
		})
	}

	if header == nil {
		return nil, SchemaError{Missing: models.RequiredColumns}
	}

	return records, nil
}

// pickSheet resolves the data sheet: the configured name when set, otherwise
// the first sheet of the workbook.
func pickSheet(xlsx *excelize.File, sheetName string) (string, error) {
	sheetMap := xlsx.GetSheetMap()
	if sheetName != "" {
		for _, name := range sheetMap {
			if name == sheetName {
				return name, nil
			}
		}
		return "", SchemaError{reason: fmt.Errorf("%w: sheet %q not in workbook", errNoSheet, sheetName)}
	}

	first := ""
	firstIndex := 0
	for index, name := range sheetMap {
		if first == "" || index < firstIndex {
			first = name
			firstIndex = index
		}
	}
	if first == "" {
		return "", SchemaError{reason: errNoSheet}
	}
	return first, nil
}

func cellAt(cells []string, index int) string {
	if index < 0 || index >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[index])
}

func blankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	// Excel may hand back the raw serial day number for date cells.
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
		t := epoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
		return &t
	}
	return nil
}
