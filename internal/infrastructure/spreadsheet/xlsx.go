package spreadsheet

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"GradeConsolidator/internal/sheet"
)

// XLSXLoader reads the first worksheet of an Excel workbook.
type XLSXLoader struct{}

var _ sheet.Loader = XLSXLoader{}

// Extension identifies the format inside the registry.
func (XLSXLoader) Extension() string {
	return ".xlsx"
}

// Load returns raw cell values so numeric formats do not leak into the scores.
func (XLSXLoader) Load(ctx context.Context, path string) (sheet.Table, error) {
	if err := ctx.Err(); err != nil {
		return sheet.Table{}, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return sheet.Table{}, fmt.Errorf("open xlsx: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return sheet.Table{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return sheet.FromRows(path, rows), nil
}
