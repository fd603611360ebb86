package app

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GradeConsolidator/internal/config"
	"GradeConsolidator/internal/logging"
	"GradeConsolidator/internal/ports"
	"GradeConsolidator/internal/testkit"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.InputDir = filepath.Join(root, "inputs_ods")
	cfg.Paths.LabelFile = filepath.Join(root, "projeto.md")
	cfg.Paths.OutputFile = filepath.Join(root, "output", "relatorio_consolidado.csv")
	cfg.Paths.ReportDir = filepath.Join(root, "output")
	cfg.Dashboard.Addr = "127.0.0.1:0"
	cfg.Dashboard.ShutdownTimeout = time.Second

	doc := "# Projeto\n\n```python\nREPORT_MAP = {\n    'turma': {'TUR01': 'Turma A'},  # turmas\n    'disciplina': {'MAT': 'Matemática'},\n}\n```\n"
	testkit.WriteFile(t, cfg.Paths.LabelFile, []byte(doc))
	testkit.WriteODS(t, filepath.Join(cfg.Paths.InputDir, "TUR01-MAT Notas.ods"), testkit.GradeRows(
		testkit.Student{First: "joão", Last: "silva", Score1: 8.0, Score2: 7.0, Final: 7.5},
		testkit.Student{First: "maria", Last: "souza", Score1: 5.0, Score2: 6.0, Final: 5.5},
	))
	return cfg
}

func TestApplicationIngestAndRender(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	application := New(cfg, logging.Discard())
	ctx := context.Background()

	result, err := application.Ingest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Records)
	assert.NotEmpty(t, result.RunID)

	table, err := application.Table(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Turma A", table.Records[0].Group)
	assert.Equal(t, "Matemática", table.Records[0].Subject)

	sel := ports.Selection{Group: "Turma A", Subject: "Matemática"}
	pdfPath, err := application.RenderPDF(ctx, sel)
	require.NoError(t, err)
	assert.FileExists(t, pdfPath)
	assert.Equal(t, filepath.Join(cfg.Paths.ReportDir, "relatorio_Turma_A_Matemática.pdf"), pdfPath)

	pngPath, err := application.RenderChart(ctx, sel)
	require.NoError(t, err)
	assert.FileExists(t, pngPath)
}

func TestApplicationRenderWithoutSnapshot(t *testing.T) {
	t.Parallel()

	application := New(testConfig(t), logging.Discard())
	_, err := application.RenderPDF(context.Background(), ports.Selection{Group: "Turma A", Subject: "Matemática"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestApplicationServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Dashboard.RefreshInterval = time.Hour
	application := New(cfg, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx) }()

	// The scheduler runs one ingestion right away.
	require.Eventually(t, func() bool {
		_, err := os.Stat(cfg.Paths.OutputFile)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
