package main

import (
	"context"
	"os"

	"GradeConsolidator/internal/cli"
	"GradeConsolidator/internal/logging"
)

func main() {
	logger := logging.New("info", "text")
	os.Exit(cli.Main(context.Background(), logger))
}
