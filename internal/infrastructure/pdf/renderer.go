package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"GradeConsolidator/internal/domain"
	"GradeConsolidator/internal/ports"
	"GradeConsolidator/internal/report"
)

var (
	columnWidths = []float64{70, 20, 20, 30, 30}
	columnTitles = []string{"Aluno", "AV1", "AV2", "Média Final", "Status"}
)

// Renderer writes the per-subject grade report as a PDF table.
type Renderer struct {
	dir      string
	logger   *slog.Logger
	compress bool
}

var _ ports.ReportRenderer = (*Renderer)(nil)

// NewRenderer writes reports into dir.
func NewRenderer(dir string, logger *slog.Logger) *Renderer {
	return &Renderer{dir: dir, logger: logger, compress: true}
}

// Render filters records to sel and writes relatorio_<group>_<subject>.pdf.
func (r *Renderer) Render(ctx context.Context, sel ports.Selection, records []domain.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rows := report.SortByFinalDesc(report.Filter(records, sel.Group, sel.Subject))
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: %s / %s", report.ErrNoData, sel.Group, sel.Subject)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(r.dir, report.FileName(sel.Group, sel.Subject, ".pdf"))

	doc := r.build(sel, rows)
	if err := doc.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write pdf %s: %w", path, err)
	}

	if r.logger != nil {
		r.logger.Info("pdf report written", "path", path, "students", len(rows))
	}
	return path, nil
}

func (r *Renderer) build(sel ports.Selection, rows []domain.Record) *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(r.compress)
	// Core fonts are cp1252; names and titles carry accents.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	doc.SetFont("Arial", "B", 16)
	doc.CellFormat(0, 10, tr("Relatório de Notas"), "", 1, "C", false, 0, "")
	doc.SetFont("Arial", "", 12)
	doc.CellFormat(0, 10, tr("Curso: "+sel.Group), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 10, tr("Disciplina: "+sel.Subject), "", 1, "L", false, 0, "")
	doc.Ln(10)

	doc.SetFont("Arial", "B", 10)
	for i, title := range columnTitles {
		doc.CellFormat(columnWidths[i], 10, tr(title), "1", 0, "C", false, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Arial", "", 10)
	for _, rec := range rows {
		status := rec.Status()
		doc.CellFormat(columnWidths[0], 10, tr(rec.StudentName), "1", 0, "", false, 0, "")
		scoreCell(doc, columnWidths[1], rec.Score1)
		scoreCell(doc, columnWidths[2], rec.Score2)
		scoreCell(doc, columnWidths[3], rec.FinalScore)
		colored(doc, status == domain.StatusFailed, func() {
			doc.CellFormat(columnWidths[4], 10, status.Label(), "1", 0, "C", false, 0, "")
		})
		doc.Ln(-1)
	}
	return doc
}

func scoreCell(doc *fpdf.Fpdf, width, score float64) {
	colored(doc, score < domain.PassThreshold, func() {
		doc.CellFormat(width, 10, report.FormatScore(score), "1", 0, "C", false, 0, "")
	})
}

// colored draws in red when alert is set and always resets to black.
func colored(doc *fpdf.Fpdf, alert bool, draw func()) {
	if alert {
		doc.SetTextColor(255, 0, 0)
	}
	draw()
	doc.SetTextColor(0, 0, 0)
}
