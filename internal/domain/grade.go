package domain

// PassThreshold is the minimum final score a student needs to pass.
const PassThreshold = 6.0

// Columns is the fixed column order of the consolidated table.
var Columns = []string{"group", "subject", "studentName", "score1", "score2", "finalScore"}

// Record is one normalized student row produced from one source file.
type Record struct {
	Group       string  `json:"group"`
	Subject     string  `json:"subject"`
	StudentName string  `json:"studentName"`
	Score1      float64 `json:"score1"`
	Score2      float64 `json:"score2"`
	FinalScore  float64 `json:"finalScore"`
}

// Status derives the pass/fail outcome from the final score.
func (r Record) Status() Status {
	if r.FinalScore >= PassThreshold {
		return StatusPassed
	}
	return StatusFailed
}

// Table is the consolidated snapshot persisted at the end of a run.
type Table struct {
	Records []Record
}

// Len reports the number of records.
func (t Table) Len() int {
	return len(t.Records)
}

// Status enumerates the outcome of a student in a subject.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// Label returns the display text used by reports.
func (s Status) Label() string {
	if s == StatusPassed {
		return "Aprovado"
	}
	return "Reprovado"
}
