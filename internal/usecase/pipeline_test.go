package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GradeConsolidator/internal/config"
	"GradeConsolidator/internal/domain"
	"GradeConsolidator/internal/infrastructure/labels"
	"GradeConsolidator/internal/infrastructure/source"
	"GradeConsolidator/internal/infrastructure/spreadsheet"
	"GradeConsolidator/internal/infrastructure/storage"
	"GradeConsolidator/internal/normalize"
	"GradeConsolidator/internal/ports"
	"GradeConsolidator/internal/sheet"
	"GradeConsolidator/internal/testkit"
)

var testRules = normalize.ColumnRules{
	FirstName:    "Nome",
	LastName:     "Sobrenome",
	Score1:       "AVALIAÇÃO 01",
	Score2:       "AVALIAÇÃO 02",
	FinalScore:   "Média da Disciplina",
	ScoreExclude: "total",
}

type fakeMetrics struct {
	mu    sync.Mutex
	files map[string]int
	rows  int
	runs  []string
}

func (m *fakeMetrics) FileProcessed(outcome string, rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = map[string]int{}
	}
	m.files[outcome]++
	m.rows += rows
}

func (m *fakeMetrics) RunFinished(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, outcome)
}

type fixture struct {
	inputDir string
	output   string
	metrics  *fakeMetrics
	pipeline *Pipeline
	store    *storage.CSVTable
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	f := &fixture{
		inputDir: filepath.Join(root, "inputs_ods"),
		output:   filepath.Join(root, "output", "relatorio_consolidado.csv"),
		metrics:  &fakeMetrics{},
	}
	require.NoError(t, os.MkdirAll(f.inputDir, 0o755))

	labelFile := filepath.Join(root, "labels.yaml")
	testkit.WriteFile(t, labelFile, []byte("turma:\n  TUR01: Turma A\ndisciplina:\n  MAT: Matemática\n"))

	registry := sheet.NewRegistry(spreadsheet.Loaders()...)
	f.store = storage.NewCSVTable(f.output, nil)
	f.pipeline = NewPipeline(PipelineDeps{
		Source:     source.NewDirSource(f.inputDir, registry, nil),
		Sheets:     registry,
		Labels:     labels.NewFileResolver(labelFile, config.LabelsConfig{}, nil),
		Writer:     f.store,
		Metrics:    f.metrics,
		Rules:      testRules,
		FileSuffix: " Notas",
		OutputPath: f.output,
		NewID:      func() string { return "run-1" },
	})
	return f
}

func (f *fixture) writeStandardInputs(t *testing.T) {
	t.Helper()

	testkit.WriteODS(t, filepath.Join(f.inputDir, "TUR01-MAT Notas.ods"), testkit.GradeRows(
		testkit.Student{First: " joão ", Last: " silva ", Score1: 8.0, Score2: 7.0, Final: 7.5},
		testkit.Student{First: nil, Last: nil, Score1: 5.0, Score2: 5.0, Final: 5.0},
		testkit.Student{First: "MARIA", Last: "souza", Score1: 6.0, Score2: "abc", Final: 6.0},
	))
	testkit.WriteXLSX(t, filepath.Join(f.inputDir, "TUR01-HIS Notas.xlsx"), testkit.GradeRows(
		testkit.Student{First: "Ana", Last: "Lima", Score1: 9.0, Score2: 7.0, Final: 8.0},
	))
	testkit.WriteODS(t, filepath.Join(f.inputDir, "TUR02-MAT Notas.ods"), [][]any{
		{"Nome", "Sobrenome", "Questionário: AVALIAÇÃO 01 (Real)", "Média da Disciplina (Real)"},
		{"Pedro", "Alves", 4.0, 4.0},
	})
	testkit.WriteFile(t, filepath.Join(f.inputDir, "leia-me.txt"), []byte("notas"))
}

func TestPipelineConsolidatesSources(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.writeStandardInputs(t)

	result, err := f.pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, f.output, result.OutputPath)
	assert.Equal(t, 3, result.Records)
	require.Len(t, result.Files, 3)

	failed := result.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "TUR02-MAT Notas.ods", filepath.Base(failed[0].Path))
	assert.Equal(t, "TUR02", failed[0].Group)
	assert.True(t, errors.Is(failed[0].Err, normalize.ErrColumnNotFound))
	assert.ErrorContains(t, failed[0].Err, "AVALIAÇÃO 02")

	table, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Record{
		{Group: "Turma A", Subject: "HIS", StudentName: "Ana Lima", Score1: 9, Score2: 7, FinalScore: 8},
		{Group: "Turma A", Subject: "Matemática", StudentName: "João Silva", Score1: 8, Score2: 7, FinalScore: 7.5},
		{Group: "Turma A", Subject: "Matemática", StudentName: "Maria Souza", Score1: 6, Score2: 0, FinalScore: 6},
	}, table.Records)

	finals := make([]float64, 0, table.Len())
	for _, r := range table.Records {
		finals = append(finals, r.FinalScore)
	}
	mean, err := stats.Mean(finals)
	require.NoError(t, err)
	assert.InDelta(t, 7.1667, mean, 0.001)

	assert.Equal(t, 2, f.metrics.files[ports.OutcomeOK])
	assert.Equal(t, 1, f.metrics.files[ports.OutcomeFailed])
	assert.Equal(t, 3, f.metrics.rows)
	assert.Equal(t, []string{ports.OutcomeOK}, f.metrics.runs)
}

func TestPipelineIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.writeStandardInputs(t)

	_, err := f.pipeline.Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(f.output)
	require.NoError(t, err)

	_, err = f.pipeline.Run(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(f.output)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPipelineNothingProcessedKeepsSnapshot(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.output), 0o755))
	require.NoError(t, os.WriteFile(f.output, []byte("previous"), 0o644))

	testkit.WriteODS(t, filepath.Join(f.inputDir, "semcodigo Notas.ods"), testkit.GradeRows(
		testkit.Student{First: "Ana", Last: "Lima", Score1: 9.0, Score2: 7.0, Final: 8.0},
	))

	result, err := f.pipeline.Run(context.Background())
	require.ErrorIs(t, err, ErrNothingProcessed)
	require.Len(t, result.Files, 1)
	assert.True(t, errors.Is(result.Files[0].Err, normalize.ErrMalformedFileName))

	content, err := os.ReadFile(f.output)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(content))
	assert.Equal(t, []string{ports.OutcomeEmpty}, f.metrics.runs)
}

func TestPipelineEmptyDirectory(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.pipeline.Run(context.Background())
	require.ErrorIs(t, err, ErrNothingProcessed)
	_, statErr := os.Stat(f.output)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestPipelineMissingInputDirIsFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, os.Remove(f.inputDir))

	_, err := f.pipeline.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, source.ErrInputDir))
	assert.False(t, errors.Is(err, ErrNothingProcessed))
	assert.Equal(t, []string{ports.OutcomeAborted}, f.metrics.runs)
}

func TestPipelineTwoFilesWithEmptyLabelDocument(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	doc := filepath.Join(filepath.Dir(f.inputDir), "projeto.md")
	testkit.WriteFile(t, doc, nil)
	f.pipeline.labels = labels.NewFileResolver(doc, config.LabelsConfig{CodeLanguage: "python", Assignment: "REPORT_MAP"}, nil)

	testkit.WriteODS(t, filepath.Join(f.inputDir, "A-B Notas.ods"), testkit.GradeRows(
		testkit.Student{First: "Ana", Last: "Lima", Score1: 8.0, Score2: 7.0, Final: 7.5},
		testkit.Student{First: "Bruno", Last: "Reis", Score1: 4.0, Score2: 5.0, Final: 4.5},
	))
	testkit.WriteODS(t, filepath.Join(f.inputDir, "A-C Notas.ods"), testkit.GradeRows(
		testkit.Student{First: "Carla", Last: "Dias", Score1: 10.0, Score2: 9.0, Final: 9.5},
	))

	result, err := f.pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Records)
	assert.Empty(t, result.Failed())

	table, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	var groups, subjects []string
	var finals []float64
	for _, r := range table.Records {
		groups = append(groups, r.Group)
		subjects = append(subjects, r.Subject)
		finals = append(finals, r.FinalScore)
	}
	assert.Equal(t, []string{"A", "A", "A"}, groups)
	assert.Equal(t, []string{"B", "B", "C"}, subjects)

	mean, err := stats.Mean(finals)
	require.NoError(t, err)
	assert.InDelta(t, 7.167, mean, 0.001)
}

func TestPipelineWithoutLabelsUsesCodes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.pipeline.labels = nil
	testkit.WriteXLSX(t, filepath.Join(f.inputDir, "TUR09-FIS Notas.xlsx"), testkit.GradeRows(
		testkit.Student{First: "Ana", Last: "", Score1: 9.0, Score2: 7.0, Final: 8.0},
	))

	_, err := f.pipeline.Run(context.Background())
	require.NoError(t, err)

	table, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "TUR09", table.Records[0].Group)
	assert.Equal(t, "FIS", table.Records[0].Subject)
	assert.Equal(t, "Ana", table.Records[0].StudentName)
}

func TestPipelineHonorsCancellation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.writeStandardInputs(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.pipeline.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
