package dashboard

import (
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/render"

	"GradeConsolidator/internal/domain"
	"GradeConsolidator/internal/infrastructure/storage"
	"GradeConsolidator/internal/report"
)

const (
	// maxScore scales the comparison bars.
	maxScore         = 10.0
	downloadFileName = "dados_filtrados.csv"
	missingMessage   = "Arquivo 'relatorio_consolidado.csv' não encontrado! Execute a ingestão primeiro para gerar o arquivo de dados."
)

type selection struct {
	Group   string `json:"group"`
	Subject string `json:"subject"`
}

func selectionFrom(r *http.Request) selection {
	q := r.URL.Query()
	return selection{Group: q.Get("group"), Subject: q.Get("subject")}
}

type scoreBar struct {
	Label string
	Value float64
	// Width is the bar length in percent of the scale.
	Width float64
}

func bar(label string, value, scale float64) scoreBar {
	b := scoreBar{Label: label, Value: value}
	if scale > 0 {
		b.Width = value / scale * 100
	}
	return b
}

type indexView struct {
	Missing   bool
	Message   string
	Notice    string
	Error     string
	Groups    []string
	Subjects  []string
	Selected  selection
	Summary   report.Summary
	Means     []scoreBar
	Approval  []scoreBar
	Records   []domain.Record
	CanReload bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sel := selectionFrom(r)
	view := indexView{
		Selected:  sel,
		CanReload: s.refresher != nil,
		Notice:    r.URL.Query().Get("notice"),
		Error:     r.URL.Query().Get("error"),
	}

	table, err := s.cache.Get(r.Context())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		view.Missing = true
		view.Message = missingMessage
	case err != nil:
		s.logger.Error("load table", "error", err)
		view.Missing = true
		view.Message = "Não foi possível ler o relatório consolidado: " + err.Error()
	default:
		records := report.Filter(table.Records, sel.Group, sel.Subject)
		summary := report.Summarize(records)
		view.Groups = report.Groups(table.Records)
		view.Subjects = report.Subjects(table.Records, sel.Group)
		view.Summary = summary
		view.Records = records
		view.Means = []scoreBar{
			bar("AV1", summary.MeanScore1, maxScore),
			bar("AV2", summary.MeanScore2, maxScore),
			bar("Média Final", summary.MeanFinal, maxScore),
		}
		view.Approval = []scoreBar{
			bar("Aprovados", float64(summary.Passed), float64(summary.Count)),
			bar("Reprovados", float64(summary.Failed), float64(summary.Count)),
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", view); err != nil {
		s.logger.Error("render index", "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	table, err := s.cache.Get(r.Context())
	if err != nil {
		s.tableError(w, err)
		return
	}

	sel := selectionFrom(r)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadFileName+`"`)
	if err := storage.WriteCSV(w, report.Filter(table.Records, sel.Group, sel.Subject), false); err != nil {
		s.logger.Error("write download", "error", err)
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		http.Error(w, "ingestion is not available", http.StatusServiceUnavailable)
		return
	}

	back := url.Values{}
	result, err := s.refresher.Run(r.Context())
	if err != nil {
		s.logger.Warn("refresh failed", "error", err)
		back.Set("error", "Erro ao atualizar os dados: "+err.Error())
	} else {
		s.cache.Invalidate()
		back.Set("notice", "Dados atualizados: "+strconv.Itoa(result.Records)+" registros.")
	}

	http.Redirect(w, r, "/?"+back.Encode(), http.StatusSeeOther)
}

type summaryResponse struct {
	selection
	Summary  report.Summary `json:"summary"`
	PassRate float64        `json:"passRate"`
	Groups   []string       `json:"groups"`
	Subjects []string       `json:"subjects"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	table, err := s.cache.Get(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fs.ErrNotExist) {
			status = http.StatusNotFound
		}
		render.Status(r, status)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}

	sel := selectionFrom(r)
	summary := report.Summarize(report.Filter(table.Records, sel.Group, sel.Subject))
	render.JSON(w, r, summaryResponse{
		selection: sel,
		Summary:   summary,
		PassRate:  summary.PassRate(),
		Groups:    report.Groups(table.Records),
		Subjects:  report.Subjects(table.Records, sel.Group),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "ok")
}

func (s *Server) tableError(w http.ResponseWriter, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, missingMessage, http.StatusNotFound)
		return
	}
	s.logger.Error("load table", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
