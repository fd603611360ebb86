package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// ErrColumnNotFound is returned when a required column has no match.
var ErrColumnNotFound = errors.New("column not found")

// ColumnRules describes how required columns are recognized in cleaned headers.
// Name columns match exactly, score columns by substring.
type ColumnRules struct {
	FirstName    string
	LastName     string
	Score1       string
	Score2       string
	FinalScore   string
	ScoreExclude string
}

// Columns holds the resolved header indexes of one table.
type Columns struct {
	FirstName  int
	LastName   int
	Score1     int
	Score2     int
	FinalScore int
}

// ResolveColumns picks the first header, in source order, matching each rule.
func ResolveColumns(headers []string, rules ColumnRules) (Columns, error) {
	var (
		cols Columns
		errs []error
	)

	find := func(label string, match func(string) bool) int {
		for i, h := range headers {
			if match(h) {
				return i
			}
		}
		errs = append(errs, fmt.Errorf("%w: %s", ErrColumnNotFound, label))
		return -1
	}

	cols.FirstName = find(rules.FirstName, exact(rules.FirstName))
	cols.LastName = find(rules.LastName, exact(rules.LastName))
	cols.Score1 = find(rules.Score1, contains(rules.Score1, rules.ScoreExclude))
	cols.Score2 = find(rules.Score2, contains(rules.Score2, rules.ScoreExclude))
	cols.FinalScore = find(rules.FinalScore, contains(rules.FinalScore, ""))

	if len(errs) > 0 {
		return Columns{}, errors.Join(errs...)
	}
	return cols, nil
}

func exact(want string) func(string) bool {
	return func(h string) bool {
		return h == want
	}
}

func contains(want, exclude string) func(string) bool {
	return func(h string) bool {
		if !strings.Contains(h, want) {
			return false
		}
		return exclude == "" || !strings.Contains(h, exclude)
	}
}
