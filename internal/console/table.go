package console

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"GradeConsolidator/internal/domain"
	"GradeConsolidator/internal/report"
)

// PrintRecords renders records as a table sorted by final score, followed by
// the class summary.
func PrintRecords(out io.Writer, title string, records []domain.Record) {
	color.New(color.FgYellow).Fprintf(out, "\n%s\n", title)

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Aluno", "AV1", "AV2", "Média Final", "Status"})
	for _, r := range report.SortByFinalDesc(records) {
		table.Append([]string{
			r.StudentName,
			report.FormatScore(r.Score1),
			report.FormatScore(r.Score2),
			report.FormatScore(r.FinalScore),
			r.Status().Label(),
		})
	}
	table.Render()

	s := report.Summarize(records)
	fmt.Fprintf(out, "Alunos: %d  Aprovados: %d  Reprovados: %d  Média: %.2f\n",
		s.Count, s.Passed, s.Failed, s.MeanFinal)
}
