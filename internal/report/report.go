// Package report holds the read-side helpers shared by the dashboard, the
// PDF and chart renderers and the console.
package report

import (
	"errors"
	"regexp"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"GradeConsolidator/internal/domain"
)

// ErrNoData is returned when a selection matches no records.
var ErrNoData = errors.New("no records for selection")

// Filter keeps the records of one group and subject. An empty value matches all.
func Filter(records []domain.Record, group, subject string) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if group != "" && r.Group != group {
			continue
		}
		if subject != "" && r.Subject != subject {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Groups lists the distinct groups in sorted order.
func Groups(records []domain.Record) []string {
	return distinct(records, func(r domain.Record) (string, bool) {
		return r.Group, true
	})
}

// Subjects lists the distinct subjects taught to group, or to every group
// when group is empty, in sorted order.
func Subjects(records []domain.Record, group string) []string {
	return distinct(records, func(r domain.Record) (string, bool) {
		return r.Subject, group == "" || r.Group == group
	})
}

func distinct(records []domain.Record, key func(domain.Record) (string, bool)) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range records {
		k, ok := key(r)
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Summary aggregates one slice of the table.
type Summary struct {
	Count       int     `json:"count"`
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	MeanScore1  float64 `json:"meanScore1"`
	MeanScore2  float64 `json:"meanScore2"`
	MeanFinal   float64 `json:"meanFinal"`
	MedianFinal float64 `json:"medianFinal"`
	MinFinal    float64 `json:"minFinal"`
	MaxFinal    float64 `json:"maxFinal"`
}

// PassRate is the share of passed students, 0 for an empty slice.
func (s Summary) PassRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Count)
}

// Summarize computes counts and score statistics. Statistics of an empty
// slice are zero.
func Summarize(records []domain.Record) Summary {
	s := Summary{Count: len(records)}
	if len(records) == 0 {
		return s
	}

	score1 := make(stats.Float64Data, 0, len(records))
	score2 := make(stats.Float64Data, 0, len(records))
	final := make(stats.Float64Data, 0, len(records))
	for _, r := range records {
		score1 = append(score1, r.Score1)
		score2 = append(score2, r.Score2)
		final = append(final, r.FinalScore)
		if r.Status() == domain.StatusPassed {
			s.Passed++
		} else {
			s.Failed++
		}
	}

	s.MeanScore1, _ = score1.Mean()
	s.MeanScore2, _ = score2.Mean()
	s.MeanFinal, _ = final.Mean()
	s.MedianFinal, _ = final.Median()
	s.MinFinal, _ = final.Min()
	s.MaxFinal, _ = final.Max()
	return s
}

// SortByFinalDesc returns a copy ordered by final score, highest first.
// Ties keep their table order.
func SortByFinalDesc(records []domain.Record) []domain.Record {
	out := append([]domain.Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalScore > out[j].FinalScore
	})
	return out
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}_.-]`)

// SanitizeFileName replaces every character other than letters, digits,
// '_', '.' and '-' with '_'.
func SanitizeFileName(name string) string {
	return unsafeFileChars.ReplaceAllString(name, "_")
}

// FileName builds "relatorio_<group>_<subject><ext>" from sanitized parts.
func FileName(group, subject, ext string) string {
	return "relatorio_" + SanitizeFileName(group) + "_" + SanitizeFileName(subject) + ext
}

// FormatScore prints a score with at least one decimal: 8 becomes "8.0",
// 7.25 stays "7.25".
func FormatScore(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
