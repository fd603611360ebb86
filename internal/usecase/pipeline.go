package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"GradeConsolidator/internal/domain"
	"GradeConsolidator/internal/normalize"
	"GradeConsolidator/internal/ports"
)

// ErrNothingProcessed is returned when a run produced no records. The
// previous snapshot is left untouched.
var ErrNothingProcessed = errors.New("no records produced")

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Source  ports.SourceLister
	Sheets  ports.SheetLoader
	Labels  ports.LabelResolver
	Writer  ports.TableWriter
	Metrics ports.IngestMetrics
	Logger  *slog.Logger

	Rules      normalize.ColumnRules
	FileSuffix string
	// OutputPath is reported back in Result; the writer owns the actual location.
	OutputPath string

	NewID func() string
	Now   func() time.Time
}

// FileResult is the outcome of one source file.
type FileResult struct {
	Path    string
	Group   string
	Subject string
	Rows    int
	Err     error
}

// OK reports whether the file contributed to the table.
func (f FileResult) OK() bool {
	return f.Err == nil
}

// Result summarizes one ingestion run.
type Result struct {
	RunID      string
	Files      []FileResult
	Records    int
	OutputPath string
	Duration   time.Duration
}

// Failed lists the files that were excluded from the table.
func (r Result) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if !f.OK() {
			failed = append(failed, f)
		}
	}
	return failed
}

// Pipeline implements the grade consolidation workflow.
type Pipeline struct {
	source     ports.SourceLister
	sheets     ports.SheetLoader
	labels     ports.LabelResolver
	writer     ports.TableWriter
	metrics    ports.IngestMetrics
	logger     *slog.Logger
	rules      normalize.ColumnRules
	fileSuffix string
	outputPath string
	newID      func() string
	now        func() time.Time

	// mu serializes runs so only one of them writes the snapshot at a time.
	mu sync.Mutex
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:     deps.Source,
		sheets:     deps.Sheets,
		labels:     deps.Labels,
		writer:     deps.Writer,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		rules:      deps.Rules,
		fileSuffix: deps.FileSuffix,
		outputPath: deps.OutputPath,
		newID:      deps.NewID,
		now:        deps.Now,
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.newID == nil {
		p.newID = func() string { return uuid.NewString() }
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Run ingests every listed file, isolating per-file failures, and replaces
// the snapshot when at least one record was produced.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	started := p.now()
	result := Result{RunID: p.newID(), OutputPath: p.outputPath}
	log := p.logger.With("run_id", result.RunID)

	finish := func(outcome string) {
		result.Duration = p.now().Sub(started)
		if p.metrics != nil {
			p.metrics.RunFinished(outcome, result.Duration)
		}
	}

	if p.source == nil || p.sheets == nil || p.writer == nil {
		finish(ports.OutcomeAborted)
		return result, fmt.Errorf("pipeline is not configured")
	}

	files, err := p.source.List(ctx)
	if err != nil {
		finish(ports.OutcomeAborted)
		return result, fmt.Errorf("list sources: %w", err)
	}

	labels := domain.EmptyLabelMap()
	if p.labels != nil {
		labels = p.labels.Resolve(ctx)
	}

	log.Info("ingestion started", "files", len(files))

	var table domain.Table
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			finish(ports.OutcomeAborted)
			return result, err
		}

		fr := FileResult{Path: path}
		codes, records, err := p.ProcessFile(ctx, path, labels)
		fr.Group, fr.Subject = codes.Group, codes.Subject
		if err != nil {
			fr.Err = err
			log.Warn("file skipped", "file", filepath.Base(path), "error", err)
			p.fileProcessed(ports.OutcomeFailed, 0)
		} else {
			fr.Rows = len(records)
			table.Records = append(table.Records, records...)
			log.Debug("file ingested", "file", filepath.Base(path), "rows", fr.Rows)
			p.fileProcessed(ports.OutcomeOK, fr.Rows)
		}
		result.Files = append(result.Files, fr)
	}

	result.Records = table.Len()
	if table.Len() == 0 {
		finish(ports.OutcomeEmpty)
		log.Warn("nothing to write", "files", len(files))
		return result, ErrNothingProcessed
	}

	if err := p.writer.Save(ctx, table); err != nil {
		finish(ports.OutcomeFailed)
		return result, fmt.Errorf("save table: %w", err)
	}

	finish(ports.OutcomeOK)
	log.Info("ingestion finished",
		"records", result.Records,
		"failed_files", len(result.Failed()),
		"output", result.OutputPath,
		"duration", result.Duration)
	return result, nil
}

// ProcessFile turns one source file into records. The returned codes are
// set whenever the file name could be parsed.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, labels domain.LabelMap) (normalize.FileCodes, []domain.Record, error) {
	codes, err := normalize.ParseFileName(path, p.fileSuffix)
	if err != nil {
		return codes, nil, err
	}

	tbl, err := p.sheets.Load(ctx, path)
	if err != nil {
		return codes, nil, fmt.Errorf("load sheet: %w", err)
	}

	tbl.Headers = normalize.CleanHeaders(tbl.Headers)
	cols, err := normalize.ResolveColumns(tbl.Headers, p.rules)
	if err != nil {
		return codes, nil, fmt.Errorf("resolve columns: %w", err)
	}

	records := normalize.Records(tbl, cols, labels.Group(codes.Group), labels.Subject(codes.Subject))
	return codes, records, nil
}

func (p *Pipeline) fileProcessed(outcome string, rows int) {
	if p.metrics != nil {
		p.metrics.FileProcessed(outcome, rows)
	}
}
