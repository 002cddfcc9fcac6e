package cytoband

import (
	"errors"
	"fmt"
	"strings"
)

// Line-level skip signals. These are not failures.
var (
	ErrSkipLine          = errors.New("comment or blank line")
	ErrNonStandardContig = errors.New("non-standard contig")
	ErrCentromereMarker  = errors.New("centromere marker")
)

// MalformedRecordError reports an input row that cannot be parsed.
type MalformedRecordError struct {
	Line   int
	Raw    string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at line %d: %s (%q)", e.Line, e.Reason, e.Raw)
}

// InvalidNomenclatureError reports a band designation outside the grammar.
type InvalidNomenclatureError struct {
	Line        int
	Raw         string
	Designation string
	Reason      string
}

func (e *InvalidNomenclatureError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid band designation %q at line %d: %s (%q)", e.Designation, e.Line, e.Reason, e.Raw)
	}
	return fmt.Sprintf("invalid band designation %q: %s", e.Designation, e.Reason)
}

// Range is a half-open coordinate interval taken from a source row.
type Range struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
	Line  int    `json:"line,omitempty"`
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d (line %d)", r.Start, r.End, r.Line)
}

// DuplicateCodeConflictError means two rows name the same code with
// different coordinates. The source data is inconsistent.
type DuplicateCodeConflictError struct {
	Code   string
	First  Range
	Second Range
}

func (e *DuplicateCodeConflictError) Error() string {
	return fmt.Sprintf("conflicting ranges for code %s: %s vs %s", e.Code, e.First, e.Second)
}

// LinkCoverageWarning is recorded when a chromosome cannot be linked across
// the centromere at a level. It never aborts a run.
type LinkCoverageWarning struct {
	Chromosome  string `json:"chromosome"`
	Level       Level  `json:"level"`
	MissingArms []Arm  `json:"missingArms,omitempty"`
	Reason      string `json:"reason"`
}

func (w LinkCoverageWarning) String() string {
	if len(w.MissingArms) == 0 {
		return fmt.Sprintf("chromosome %s at %s: %s", w.Chromosome, w.Level, w.Reason)
	}
	arms := make([]string, len(w.MissingArms))
	for i, a := range w.MissingArms {
		arms[i] = a.String()
	}
	return fmt.Sprintf("chromosome %s at %s: %s (missing %s)", w.Chromosome, w.Level, w.Reason, strings.Join(arms, ","))
}
