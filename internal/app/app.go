package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"GradeConsolidator/internal/config"
	"GradeConsolidator/internal/dashboard"
	"GradeConsolidator/internal/domain"
	"GradeConsolidator/internal/infrastructure/chart"
	"GradeConsolidator/internal/infrastructure/labels"
	"GradeConsolidator/internal/infrastructure/metrics"
	"GradeConsolidator/internal/infrastructure/pdf"
	"GradeConsolidator/internal/infrastructure/scheduler"
	"GradeConsolidator/internal/infrastructure/source"
	"GradeConsolidator/internal/infrastructure/spreadsheet"
	"GradeConsolidator/internal/infrastructure/storage"
	"GradeConsolidator/internal/logging"
	"GradeConsolidator/internal/normalize"
	"GradeConsolidator/internal/ports"
	"GradeConsolidator/internal/sheet"
	"GradeConsolidator/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.CSVTable
	metrics  *metrics.Recorder
	pipeline *usecase.Pipeline
	pdf      ports.ReportRenderer
	chart    ports.ReportRenderer
}

// New builds the application graph from cfg.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	registry := sheet.NewRegistry(spreadsheet.Loaders()...)
	store := storage.NewCSVTable(cfg.Paths.OutputFile, baseLogger.With("component", "storage"))
	recorder := metrics.NewRecorder()

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source.NewDirSource(cfg.Paths.InputDir, registry, baseLogger.With("component", "source")),
		Sheets:     registry,
		Labels:     labels.NewFileResolver(cfg.Paths.LabelFile, cfg.Labels, baseLogger.With("component", "labels")),
		Writer:     store,
		Metrics:    recorder,
		Logger:     baseLogger.With("component", "pipeline"),
		Rules:      ColumnRules(cfg.Columns),
		FileSuffix: cfg.Ingest.FileSuffix,
		OutputPath: cfg.Paths.OutputFile,
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		store:    store,
		metrics:  recorder,
		pipeline: pipeline,
		pdf:      pdf.NewRenderer(cfg.Paths.ReportDir, baseLogger.With("component", "pdf")),
		chart:    chart.NewRenderer(cfg.Paths.ReportDir, time.Now, baseLogger.With("component", "chart")),
	}
}

// ColumnRules maps the configured header patterns onto the normalizer rules.
func ColumnRules(cfg config.ColumnsConfig) normalize.ColumnRules {
	return normalize.ColumnRules{
		FirstName:    cfg.FirstName,
		LastName:     cfg.LastName,
		Score1:       cfg.Score1,
		Score2:       cfg.Score2,
		FinalScore:   cfg.FinalScore,
		ScoreExclude: cfg.ScoreExclude,
	}
}

// Ingest performs a single pipeline run.
func (a *Application) Ingest(ctx context.Context) (usecase.Result, error) {
	return a.pipeline.Run(ctx)
}

// Table loads the persisted snapshot.
func (a *Application) Table(ctx context.Context) (domain.Table, error) {
	return a.store.Load(ctx)
}

// RenderPDF writes the PDF report of one group/subject.
func (a *Application) RenderPDF(ctx context.Context, sel ports.Selection) (string, error) {
	return a.render(ctx, a.pdf, sel)
}

// RenderChart writes the bar chart of one group/subject.
func (a *Application) RenderChart(ctx context.Context, sel ports.Selection) (string, error) {
	return a.render(ctx, a.chart, sel)
}

func (a *Application) render(ctx context.Context, renderer ports.ReportRenderer, sel ports.Selection) (string, error) {
	table, err := a.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load table: %w", err)
	}
	return renderer.Render(ctx, sel, table.Records)
}

// Serve runs the dashboard and, when configured, the periodic re-ingestion
// until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	server, err := dashboard.New(dashboard.Options{
		Cache:     dashboard.NewTableCache(a.store),
		Refresher: a.pipeline,
		Metrics:   a.metrics.Handler(),
		Logger:    a.logger.With("component", "dashboard"),
	})
	if err != nil {
		return err
	}

	refresh := usecase.NewScheduler(
		scheduler.NewIntervalScheduler(a.cfg.Dashboard.RefreshInterval),
		a.pipeline,
		func(usecase.Result) { server.Invalidate() },
		a.logger.With("component", "scheduler"),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(gctx, a.cfg.Dashboard.Addr, a.cfg.Dashboard.ShutdownTimeout)
	})
	g.Go(func() error {
		if err := refresh.Start(gctx); err != nil {
			return fmt.Errorf("start refresh scheduler: %w", err)
		}
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Dashboard.ShutdownTimeout)
		defer cancel()
		return refresh.Stop(stopCtx)
	})
	return g.Wait()
}
