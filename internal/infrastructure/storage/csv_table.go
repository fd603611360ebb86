package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"GradeConsolidator/internal/domain"
	"GradeConsolidator/internal/ports"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVTable persists the consolidated table as a UTF-8 CSV with byte-order mark.
type CSVTable struct {
	path   string
	logger *slog.Logger
}

var (
	_ ports.TableWriter = (*CSVTable)(nil)
	_ ports.TableReader = (*CSVTable)(nil)
)

// NewCSVTable binds the snapshot location.
func NewCSVTable(path string, logger *slog.Logger) *CSVTable {
	return &CSVTable{path: path, logger: logger}
}

// Path returns the snapshot location.
func (s *CSVTable) Path() string {
	return s.path
}

// Save writes to a temporary sibling and renames it over the snapshot, so
// readers never observe a partially written file.
func (s *CSVTable) Save(ctx context.Context, table domain.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteCSV(tmp, table.Records, true); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("snapshot written", "path", s.path, "records", table.Len())
	}
	return nil
}

// Load reads the snapshot back. A missing file returns an error wrapping fs.ErrNotExist.
func (s *CSVTable) Load(ctx context.Context) (domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return domain.Table{}, err
	}

	file, err := os.Open(s.path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	records, err := ReadCSV(file)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}
	return domain.Table{Records: records}, nil
}

// WriteCSV encodes records with the fixed header, optionally prefixed by a BOM.
func WriteCSV(w io.Writer, records []domain.Record, bom bool) error {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(domain.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		row := []string{
			r.Group,
			r.Subject,
			r.StudentName,
			formatScore(r.Score1),
			formatScore(r.Score2),
			formatScore(r.FinalScore),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV decodes a table written by WriteCSV; the BOM is optional.
func ReadCSV(r io.Reader) ([]domain.Record, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = len(domain.Columns)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !slices.Equal(header, domain.Columns) {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var records []domain.Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := domain.Record{Group: row[0], Subject: row[1], StudentName: row[2]}
		scores := []*float64{&rec.Score1, &rec.Score2, &rec.FinalScore}
		for i, dst := range scores {
			v, err := strconv.ParseFloat(row[3+i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, domain.Columns[3+i], err)
			}
			*dst = v
		}
		records = append(records, rec)
	}
	return records, nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
