package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard",
	Long: `Serve the dashboard over the consolidated CSV. When dashboard.refreshInterval is set,
ingestion also runs periodically. Stops on SIGINT or SIGTERM.

Examples:
  gradeconsolidator serve
  GRADES_DASHBOARD_ADDR=:9000 gradeconsolidator serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Serve(ctx)
}
