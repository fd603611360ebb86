package spreadsheet

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"GradeConsolidator/internal/sheet"
)

const odsContentEntry = "content.xml"

// ODSLoader reads the first table of an OpenDocument spreadsheet.
type ODSLoader struct{}

var _ sheet.Loader = ODSLoader{}

// Extension identifies the format inside the registry.
func (ODSLoader) Extension() string {
	return ".ods"
}

// Load opens the archive, streams content.xml and stops after the first table.
func (ODSLoader) Load(ctx context.Context, path string) (sheet.Table, error) {
	if err := ctx.Err(); err != nil {
		return sheet.Table{}, err
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("open ods: %w", err)
	}
	defer archive.Close()

	var content *zip.File
	for _, f := range archive.File {
		if f.Name == odsContentEntry {
			content = f
			break
		}
	}
	if content == nil {
		return sheet.Table{}, fmt.Errorf("open ods: %s missing", odsContentEntry)
	}

	rc, err := content.Open()
	if err != nil {
		return sheet.Table{}, fmt.Errorf("open %s: %w", odsContentEntry, err)
	}
	defer rc.Close()

	rows, err := readFirstTable(rc)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("parse %s: %w", odsContentEntry, err)
	}
	return sheet.FromRows(path, rows), nil
}

// odsReader accumulates rows while walking the XML token stream.
// Repeated empty cells and rows are only materialized when followed by
// content, so trailing padding (often a million rows) costs nothing.
type odsReader struct {
	rows        [][]string
	pendingRows int

	row         []string
	rowRepeat   int
	pendingCell int

	inCell     bool
	cellRepeat int
	typedValue string
	hasTyped   bool
	text       strings.Builder
	paragraphs int
	inPara     int
	annotation int
}

func readFirstTable(r io.Reader) ([][]string, error) {
	dec := xml.NewDecoder(r)
	var (
		st      odsReader
		inTable bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "table" && !inTable {
				inTable = true
				continue
			}
			if inTable {
				st.start(t)
			}
		case xml.EndElement:
			if !inTable {
				continue
			}
			if t.Name.Local == "table" {
				return st.rows, nil
			}
			st.end(t)
		case xml.CharData:
			if inTable && st.inCell && st.inPara > 0 && st.annotation == 0 {
				st.text.Write(t)
			}
		}
	}

	if !inTable {
		return nil, errors.New("no table found")
	}
	return st.rows, nil
}

func (s *odsReader) start(t xml.StartElement) {
	switch t.Name.Local {
	case "table-row":
		s.row = nil
		s.pendingCell = 0
		s.rowRepeat = intAttr(t, "number-rows-repeated", 1)
	case "table-cell", "covered-table-cell":
		s.inCell = true
		s.cellRepeat = intAttr(t, "number-columns-repeated", 1)
		s.typedValue, s.hasTyped = typedValue(t)
		s.text.Reset()
		s.paragraphs = 0
	case "annotation":
		s.annotation++
	case "p", "h":
		if s.inCell && s.annotation == 0 {
			if s.paragraphs > 0 {
				s.text.WriteByte('\n')
			}
			s.paragraphs++
			s.inPara++
		}
	case "s":
		if s.inPara > 0 && s.annotation == 0 {
			s.text.WriteString(strings.Repeat(" ", intAttr(t, "c", 1)))
		}
	case "tab":
		if s.inPara > 0 && s.annotation == 0 {
			s.text.WriteByte('\t')
		}
	case "line-break":
		if s.inPara > 0 && s.annotation == 0 {
			s.text.WriteByte('\n')
		}
	}
}

func (s *odsReader) end(t xml.EndElement) {
	switch t.Name.Local {
	case "annotation":
		if s.annotation > 0 {
			s.annotation--
		}
	case "p", "h":
		if s.inPara > 0 && s.annotation == 0 {
			s.inPara--
		}
	case "table-cell", "covered-table-cell":
		value := s.text.String()
		if s.hasTyped {
			value = s.typedValue
		}
		s.appendCell(value, s.cellRepeat)
		s.inCell = false
		s.inPara = 0
	case "table-row":
		s.appendRow()
	}
}

func (s *odsReader) appendCell(value string, repeat int) {
	if value == "" {
		s.pendingCell += repeat
		return
	}
	for ; s.pendingCell > 0; s.pendingCell-- {
		s.row = append(s.row, "")
	}
	for i := 0; i < repeat; i++ {
		s.row = append(s.row, value)
	}
}

func (s *odsReader) appendRow() {
	if len(s.row) == 0 {
		s.pendingRows += s.rowRepeat
		return
	}
	for ; s.pendingRows > 0; s.pendingRows-- {
		s.rows = append(s.rows, nil)
	}
	for i := 0; i < s.rowRepeat; i++ {
		s.rows = append(s.rows, append([]string(nil), s.row...))
	}
}

// typedValue returns the machine value of numeric, boolean and date cells.
// Display text of those cells is locale formatted ("7,5") and not reliable.
func typedValue(t xml.StartElement) (string, bool) {
	valueType := attr(t, "value-type")
	switch valueType {
	case "float", "percentage", "currency":
		return attr(t, "value"), true
	case "boolean":
		return attr(t, "boolean-value"), true
	case "date":
		return attr(t, "date-value"), true
	case "time":
		return attr(t, "time-value"), true
	default:
		return "", false
	}
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func intAttr(t xml.StartElement, local string, fallback int) int {
	raw := attr(t, local)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
