// Package testkit builds spreadsheet fixtures for package tests.
package testkit

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Student is one row of a generated grade export.
type Student struct {
	First  any
	Last   any
	Score1 any
	Score2 any
	Final  any
}

// GradeHeaders mimics a real export: boilerplate prefixes, "(Real)" markers
// and a running-total column that must not be picked as a score.
var GradeHeaders = []any{
	"Nome",
	"Sobrenome",
	"Endereço de email",
	"AVALIAÇÃO 01 total (Real)",
	"Questionário: AVALIAÇÃO 01 (Real)",
	"Fórum: AVALIAÇÃO 02 (Real)",
	"Média da Disciplina (Real)",
}

// GradeRows lays students out under GradeHeaders.
func GradeRows(students ...Student) [][]any {
	rows := [][]any{GradeHeaders}
	for _, s := range students {
		rows = append(rows, []any{s.First, s.Last, "aluno@example.org", 99.0, s.Score1, s.Score2, s.Final})
	}
	return rows
}

// WriteODS writes a minimal OpenDocument spreadsheet. Float cells carry a
// locale formatted display text ("7,5") and the machine value in office:value.
func WriteODS(t testing.TB, path string, rows [][]any) {
	t.Helper()

	var body strings.Builder
	for _, row := range rows {
		body.WriteString("<table:table-row>")
		for _, cell := range row {
			body.WriteString(odsCell(cell))
		}
		body.WriteString(`<table:table-cell table:number-columns-repeated="1017"/>`)
		body.WriteString("</table:table-row>")
	}
	body.WriteString(`<table:table-row table:number-rows-repeated="1048570"><table:table-cell table:number-columns-repeated="1024"/></table:table-row>`)

	content := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"` +
		` xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0"` +
		` xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" office:version="1.2">` +
		`<office:body><office:spreadsheet><table:table table:name="Planilha1">` +
		body.String() +
		`</table:table><table:table table:name="Outra"><table:table-row><table:table-cell office:value-type="string"><text:p>ignored</text:p></table:table-cell></table:table-row></table:table>` +
		`</office:spreadsheet></office:body></office:document-content>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	mt, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		t.Fatalf("create mimetype: %v", err)
	}
	if _, err := mt.Write([]byte("application/vnd.oasis.opendocument.spreadsheet")); err != nil {
		t.Fatalf("write mimetype: %v", err)
	}
	cw, err := zw.Create("content.xml")
	if err != nil {
		t.Fatalf("create content.xml: %v", err)
	}
	if _, err := cw.Write([]byte(content)); err != nil {
		t.Fatalf("write content.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	writeFile(t, path, buf.Bytes())
}

func odsCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "<table:table-cell/>"
	case float64:
		machine := strconv.FormatFloat(val, 'f', -1, 64)
		display := strings.ReplaceAll(machine, ".", ",")
		return fmt.Sprintf(`<table:table-cell office:value-type="float" office:value="%s"><text:p>%s</text:p></table:table-cell>`, machine, display)
	default:
		var esc bytes.Buffer
		_ = xml.EscapeText(&esc, []byte(fmt.Sprint(val)))
		return fmt.Sprintf(`<table:table-cell office:value-type="string"><text:p>%s</text:p></table:table-cell>`, esc.String())
	}
}

// WriteXLSX writes rows into the first sheet of a new workbook.
func WriteXLSX(t testing.TB, path string, rows [][]any) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		values := append([]any(nil), row...)
		if err := f.SetSheetRow("Sheet1", cell, &values); err != nil {
			t.Fatalf("set row %d: %v", i, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}
}

// WriteFile writes raw bytes, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	writeFile(t, path, data)
}

func writeFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
