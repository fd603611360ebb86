package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Consolidate the input directory into the output CSV",
	Long: `Read every supported spreadsheet of the input directory, normalize its rows and
replace the consolidated CSV. Files that cannot be processed are reported and skipped.

Examples:
  gradeconsolidator ingest
  gradeconsolidator --config grades.yaml ingest`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	application, err := bootstrap()
	if err != nil {
		return err
	}

	result, err := application.Ingest(cmd.Context())

	out := cmd.OutOrStdout()
	ok := color.New(color.FgGreen)
	failed := color.New(color.FgRed)
	for _, f := range result.Files {
		if f.OK() {
			ok.Fprintf(out, "  ok      %s (%d registros)\n", filepath.Base(f.Path), f.Rows)
		} else {
			failed.Fprintf(out, "  falhou  %s: %v\n", filepath.Base(f.Path), f.Err)
		}
	}
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	fmt.Fprintf(out, "%d registros de %d arquivos salvos em %s\n", result.Records, len(result.Files)-len(result.Failed()), result.OutputPath)
	return nil
}
