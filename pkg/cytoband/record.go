package cytoband

import (
	"strconv"
	"strings"
)

// BandRecord is one row of the cytoband table.
type BandRecord struct {
	Chromosome  string
	Designation string
	Start       uint64
	End         uint64
	Stain       string // gieStain, optional
	Line        int
}

// Range returns the record coordinates.
func (r BandRecord) Range() Range {
	return Range{Start: r.Start, End: r.End, Line: r.Line}
}

// Code is the concept code the record names, e.g. "1p36.33".
func (r BandRecord) Code() string {
	return r.Chromosome + r.Designation
}

// splitColumns splits on tabs when present so empty columns survive,
// otherwise on runs of whitespace.
func splitColumns(line string) []string {
	if strings.Contains(line, "\t") {
		cols := strings.Split(line, "\t")
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		return cols
	}
	return strings.Fields(line)
}

func isCommentLine(line string) bool {
	return strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "track") ||
		strings.HasPrefix(line, "browser")
}

// ParseRecord parses one line of the cytoband table:
//
//	chromosome  start  end  designation  [stain]
//
// Blank and comment lines return ErrSkipLine, rows on scaffolds or the
// mitochondrion return ErrNonStandardContig. Anything else that does not
// parse is a *MalformedRecordError. Line is left zero; callers that track
// line numbers set it.
func ParseRecord(line string) (BandRecord, error) {
	trimmed := strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(trimmed) == "" || isCommentLine(strings.TrimSpace(trimmed)) {
		return BandRecord{}, ErrSkipLine
	}

	cols := splitColumns(trimmed)
	malformed := func(reason string) (BandRecord, error) {
		return BandRecord{}, &MalformedRecordError{Raw: trimmed, Reason: reason}
	}

	if len(cols) == 0 {
		return BandRecord{}, ErrSkipLine
	}

	chrom := NormalizeChromosome(cols[0])
	if isNonStandardContig(chrom) {
		return BandRecord{}, ErrNonStandardContig
	}
	if !IsNuclear(chrom) {
		return malformed("unrecognized chromosome " + strconv.Quote(cols[0]))
	}
	if len(cols) < 4 {
		return malformed("expected at least 4 columns, got " + strconv.Itoa(len(cols)))
	}

	start, err := strconv.ParseUint(cols[1], 10, 64)
	if err != nil {
		return malformed("start coordinate is not a non-negative integer")
	}
	end, err := strconv.ParseUint(cols[2], 10, 64)
	if err != nil {
		return malformed("end coordinate is not a non-negative integer")
	}
	if start >= end {
		return malformed("start coordinate must be less than end coordinate")
	}

	rec := BandRecord{
		Chromosome:  chrom,
		Designation: cols[3],
		Start:       start,
		End:         end,
	}
	if len(cols) > 4 {
		rec.Stain = cols[4]
	}
	return rec, nil
}
