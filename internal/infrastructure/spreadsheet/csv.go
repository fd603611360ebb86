package spreadsheet

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"GradeConsolidator/internal/sheet"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVLoader reads comma separated exports, tolerating a UTF-8 byte-order mark.
type CSVLoader struct{}

var _ sheet.Loader = CSVLoader{}

// Extension identifies the format inside the registry.
func (CSVLoader) Extension() string {
	return ".csv"
}

// Load reads every record; ragged rows are normalized by sheet.FromRows.
func (CSVLoader) Load(ctx context.Context, path string) (sheet.Table, error) {
	if err := ctx.Err(); err != nil {
		return sheet.Table{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	br := bufio.NewReader(file)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return sheet.Table{}, fmt.Errorf("read csv: %w", err)
	}
	return sheet.FromRows(path, rows), nil
}

// Loaders returns every built-in loader, ready for sheet.NewRegistry.
func Loaders() []sheet.Loader {
	return []sheet.Loader{ODSLoader{}, XLSXLoader{}, CSVLoader{}, HTMLLoader{}}
}
