package spreadsheet

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"GradeConsolidator/internal/sheet"
)

// HTMLLoader reads the first <table> of an HTML grade export.
type HTMLLoader struct{}

var _ sheet.Loader = HTMLLoader{}

// Extension identifies the format inside the registry.
func (HTMLLoader) Extension() string {
	return ".html"
}

// Load takes the first table row as headers. A cell spanning several
// columns is followed by empty cells so later columns keep their index.
func (HTMLLoader) Load(ctx context.Context, path string) (sheet.Table, error) {
	if err := ctx.Err(); err != nil {
		return sheet.Table{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("open html: %w", err)
	}
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return sheet.Table{}, fmt.Errorf("parse html: no table found")
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		// Rows of nested tables belong to their own table.
		if tr.Closest("table").Get(0) != table.Get(0) {
			return
		}
		var row []string
		tr.Children().Filter("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, cellText(cell))
			if span, err := strconv.Atoi(cell.AttrOr("colspan", "1")); err == nil && span > 1 {
				row = append(row, make([]string, span-1)...)
			}
		})
		rows = append(rows, row)
	})

	return sheet.FromRows(path, rows), nil
}

// cellText collapses the whitespace of the cell text. A data-value
// attribute, when present, carries the unformatted value.
func cellText(cell *goquery.Selection) string {
	if v, ok := cell.Attr("data-value"); ok {
		return strings.TrimSpace(v)
	}
	return strings.Join(strings.Fields(cell.Text()), " ")
}
