package ports

import (
	"context"
	"time"

	"GradeConsolidator/internal/domain"
	"GradeConsolidator/internal/sheet"
)

// SourceLister discovers the spreadsheet files of one ingestion run.
type SourceLister interface {
	List(ctx context.Context) ([]string, error)
}

// SheetLoader reads the first sheet of a source file.
type SheetLoader interface {
	Load(ctx context.Context, path string) (sheet.Table, error)
}

// LabelResolver builds the code-to-name lookup. It never fails: problems
// degrade to an identity mapping.
type LabelResolver interface {
	Resolve(ctx context.Context) domain.LabelMap
}

// TableWriter persists the consolidated snapshot, replacing any previous one.
type TableWriter interface {
	Save(ctx context.Context, table domain.Table) error
}

// TableReader loads the persisted snapshot; a missing snapshot is reported
// with an error wrapping fs.ErrNotExist.
type TableReader interface {
	Load(ctx context.Context) (domain.Table, error)
}

// Outcome labels reported to IngestMetrics.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeEmpty   = "empty"
	OutcomeAborted = "aborted"
)

// IngestMetrics records ingestion outcomes.
type IngestMetrics interface {
	FileProcessed(outcome string, rows int)
	RunFinished(outcome string, duration time.Duration)
}

// Selection identifies the group and subject a report is rendered for.
type Selection struct {
	Group   string
	Subject string
}

// ReportRenderer renders one group/subject slice of the table into a file
// and returns its path.
type ReportRenderer interface {
	Render(ctx context.Context, sel Selection, records []domain.Record) (string, error)
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
