package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"GradeConsolidator/internal/app"
	"GradeConsolidator/internal/console"
	"GradeConsolidator/internal/domain"
	"GradeConsolidator/internal/ports"
	"GradeConsolidator/internal/report"
)

var (
	reportGroup   string
	reportSubject string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the PDF grade report of one group and subject",
	Long: `Write relatorio_<group>_<subject>.pdf into the report directory. Without --group and
--subject the choice is made from numbered menus.

Examples:
  gradeconsolidator report
  gradeconsolidator report --group "Turma A" --subject "Matemática"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRender(cmd, "PDF", (*app.Application).RenderPDF)
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Write the final score chart of one group and subject",
	Long: `Write relatorio_<group>_<subject>.png into the report directory. Without --group and
--subject the choice is made from numbered menus.

Examples:
  gradeconsolidator chart --group "Turma A" --subject "Matemática"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRender(cmd, "Gráfico", (*app.Application).RenderChart)
	},
}

func init() {
	for _, c := range []*cobra.Command{reportCmd, chartCmd} {
		c.Flags().StringVar(&reportGroup, "group", "", "group name as shown in the consolidated table")
		c.Flags().StringVar(&reportSubject, "subject", "", "subject name as shown in the consolidated table")
		rootCmd.AddCommand(c)
	}
}

type renderFunc func(*app.Application, context.Context, ports.Selection) (string, error)

func runRender(cmd *cobra.Command, kind string, render renderFunc) error {
	application, err := bootstrap()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	table, err := application.Table(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		color.New(color.FgRed).Fprintln(out, "Relatório consolidado não encontrado. Execute 'gradeconsolidator ingest' primeiro.")
		return fmt.Errorf("load table: %w", err)
	}
	if err != nil {
		return fmt.Errorf("load table: %w", err)
	}

	sel, err := chooseSelection(cmd.InOrStdin(), out, table.Records, reportGroup, reportSubject)
	if err != nil {
		return err
	}

	rows := report.Filter(table.Records, sel.Group, sel.Subject)
	if len(rows) == 0 {
		return fmt.Errorf("%w: %s / %s", report.ErrNoData, sel.Group, sel.Subject)
	}
	console.PrintRecords(out, sel.Group+" - "+sel.Subject, rows)

	path, err := render(application, ctx, sel)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	color.New(color.FgGreen).Fprintf(out, "%s salvo em: %s\n", kind, path)
	return nil
}

// chooseSelection fills missing values from numbered menus: group first,
// then a subject of that group.
func chooseSelection(in io.Reader, out io.Writer, records []domain.Record, group, subject string) (ports.Selection, error) {
	menu := console.NewMenu(in, out)

	if group == "" {
		chosen, err := menu.Select("Selecione um Curso", report.Groups(records))
		if err != nil {
			return ports.Selection{}, err
		}
		group = chosen
	}
	if subject == "" {
		chosen, err := menu.Select(fmt.Sprintf("Selecione uma Disciplina para '%s'", group), report.Subjects(records, group))
		if err != nil {
			return ports.Selection{}, err
		}
		subject = chosen
	}
	return ports.Selection{Group: group, Subject: subject}, nil
}
