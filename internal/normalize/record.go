package normalize

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"GradeConsolidator/internal/domain"
	"GradeConsolidator/internal/sheet"
)

// Coerce converts a cell value to a score. Anything that is not a finite
// number, including empty cells and nil, becomes 0.
func Coerce(v any) float64 {
	var f float64
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// StudentName joins trimmed first and last names and title-cases the result.
// ok is false when both names are empty.
func StudentName(first, last string) (name string, ok bool) {
	parts := make([]string, 0, 2)
	if f := strings.TrimSpace(first); f != "" {
		parts = append(parts, f)
	}
	if l := strings.TrimSpace(last); l != "" {
		parts = append(parts, l)
	}
	if len(parts) == 0 {
		return "", false
	}
	return TitleCase(strings.Join(parts, " ")), true
}

// TitleCase upper-cases the first cased letter after any uncased character and
// lower-cases the rest: "o'neil ANA-maria" becomes "O'Neil Ana-Maria".
func TitleCase(s string) string {
	var (
		b         strings.Builder
		prevCased bool
	)
	b.Grow(len(s))
	for _, r := range s {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && !prevCased:
			b.WriteRune(unicode.ToTitle(r))
		case cased:
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevCased = cased
	}
	return b.String()
}

// Records builds one record per row that carries at least one name.
// The table headers must already be cleaned and cols resolved against them.
func Records(tbl sheet.Table, cols Columns, group, subject string) []domain.Record {
	records := make([]domain.Record, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		name, ok := StudentName(cell(row, cols.FirstName), cell(row, cols.LastName))
		if !ok {
			continue
		}
		records = append(records, domain.Record{
			Group:       group,
			Subject:     subject,
			StudentName: name,
			Score1:      Coerce(cell(row, cols.Score1)),
			Score2:      Coerce(cell(row, cols.Score2)),
			FinalScore:  Coerce(cell(row, cols.FinalScore)),
		})
	}
	return records
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
