package chart

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"GradeConsolidator/internal/domain"
	"GradeConsolidator/internal/ports"
	"GradeConsolidator/internal/report"
)

const (
	axisMax    = 11.0
	labelShift = 0.2
)

var (
	barColor  = color.RGBA{R: 76, G: 114, B: 176, A: 255}
	meanColor = color.RGBA{R: 255, A: 255}
)

// Renderer draws the final score of every student as horizontal bars.
type Renderer struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

var _ ports.ReportRenderer = (*Renderer)(nil)

// NewRenderer writes charts into dir. now stamps the title and defaults to time.Now.
func NewRenderer(dir string, now func() time.Time, logger *slog.Logger) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{dir: dir, now: now, logger: logger}
}

// Render filters records to sel and writes relatorio_<group>_<subject>.png.
func (r *Renderer) Render(ctx context.Context, sel ports.Selection, records []domain.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rows := report.Filter(records, sel.Group, sel.Subject)
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: %s / %s", report.ErrNoData, sel.Group, sel.Subject)
	}

	p, err := r.build(sel, rows)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(r.dir, report.FileName(sel.Group, sel.Subject, ".png"))
	if err := p.Save(12*vg.Inch, 8*vg.Inch, path); err != nil {
		return "", fmt.Errorf("write chart %s: %w", path, err)
	}

	if r.logger != nil {
		r.logger.Info("chart written", "path", path, "students", len(rows))
	}
	return path, nil
}

func (r *Renderer) build(sel ports.Selection, rows []domain.Record) (*plot.Plot, error) {
	// Bars are laid out bottom-up, so the lowest score goes first to put the
	// highest on top.
	ordered := report.SortByFinalDesc(rows)
	slices.Reverse(ordered)

	values := make(plotter.Values, len(ordered))
	names := make([]string, len(ordered))
	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(ordered)),
		Labels: make([]string, len(ordered)),
	}
	for i, rec := range ordered {
		values[i] = rec.FinalScore
		names[i] = rec.StudentName
		labels.XYs[i] = plotter.XY{X: rec.FinalScore + labelShift, Y: float64(i)}
		labels.Labels[i] = strconv.FormatFloat(rec.FinalScore, 'f', 1, 64)
	}
	mean := report.Summarize(rows).MeanFinal

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Notas Finais - %s\n(%s)\nGerado em: %s",
		sel.Subject, sel.Group, r.now().Format("02/01/2006 15:04"))
	p.X.Label.Text = "Média Final"
	p.Y.Label.Text = "Aluno"
	p.X.Tick.Marker = plot.ConstantTicks(ticks())
	p.Add(plotter.NewGrid())

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)

	valueLabels, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("bar labels: %w", err)
	}
	p.Add(valueLabels)

	meanLine, err := plotter.NewLine(plotter.XYs{
		{X: mean, Y: -0.5},
		{X: mean, Y: float64(len(ordered)) - 0.5},
	})
	if err != nil {
		return nil, fmt.Errorf("mean line: %w", err)
	}
	meanLine.Color = meanColor
	meanLine.Width = vg.Points(2)
	meanLine.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(meanLine)
	p.Legend.Add(fmt.Sprintf("Média da Turma (%.2f)", mean), meanLine)
	p.Legend.Top = true

	// Add widens the axes to fit the data; pin the score range afterwards.
	p.X.Min, p.X.Max = 0, axisMax
	return p, nil
}

// ticks returns integer ticks 0..10.
func ticks() []plot.Tick {
	positions := floats.Span(make([]float64, int(axisMax)), 0, axisMax-1)
	out := make([]plot.Tick, len(positions))
	for i, v := range positions {
		out[i] = plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', 0, 64)}
	}
	return out
}
