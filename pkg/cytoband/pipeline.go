// Package cytoband turns a UCSC-style cytoband table into a code system:
// one concept per chromosome arm, region, band and sub-band, linked by
// part-of edges and optionally across the centromere.
package cytoband

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Options configures one conversion run.
type Options struct {
	LinkAcrossCentromere bool
	// CentromereLevels defaults to band when linking is enabled.
	CentromereLevels []Level
	ChromosomeRoots  bool
	SiblingLinks     bool
	// Header defaults to DefaultHeader when zero.
	Header Header
}

func (o Options) linkLevels() []Level {
	if !o.LinkAcrossCentromere {
		return nil
	}
	if len(o.CentromereLevels) == 0 {
		return []Level{LevelBand}
	}
	return o.CentromereLevels
}

// Summary reports what a run consumed and produced.
type Summary struct {
	KeptRows             int      `json:"keptRows"`
	SkippedRows          int      `json:"skippedRows"`
	Chromosomes          []string `json:"chromosomes"`
	Concepts             int      `json:"concepts"`
	Links                int      `json:"links"`
	LinkAcrossCentromere bool     `json:"linkAcrossCentromere"`
	CentromereLevels     []Level  `json:"centromereLevels,omitempty"`
}

// Result is the outcome of a successful run. Warnings are the recoverable
// coverage gaps found by the linker.
type Result struct {
	Document *Document
	Warnings []LinkCoverageWarning
	Summary  Summary
}

// Run converts raw cytoband table lines into a code system document. Any
// malformed row, invalid designation or conflicting code aborts the run and
// no document is returned.
func Run(lines []string, opts Options) (*Result, error) {
	var (
		bands   = make([]Band, 0, len(lines))
		kept    int
		skipped int
	)

	for i, line := range lines {
		lineNo := i + 1

		rec, err := ParseRecord(line)
		if err != nil {
			var malformed *MalformedRecordError
			switch {
			case errors.Is(err, ErrSkipLine):
				continue
			case errors.Is(err, ErrNonStandardContig):
				skipped++
				continue
			case errors.As(err, &malformed):
				malformed.Line = lineNo
				return nil, malformed
			default:
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
		rec.Line = lineNo

		path, err := Decompose(rec.Designation)
		if errors.Is(err, ErrCentromereMarker) {
			bands = append(bands, Band{Record: rec, Centromere: true})
			continue
		}
		if err != nil {
			var invalid *InvalidNomenclatureError
			if errors.As(err, &invalid) {
				invalid.Line = lineNo
				invalid.Raw = line
				return nil, invalid
			}
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		bands = append(bands, Band{Record: rec, Path: path})
		kept++
	}

	forest, err := Build(bands, BuildOptions{ChromosomeRoots: opts.ChromosomeRoots})
	if err != nil {
		return nil, err
	}

	levels := opts.linkLevels()
	warnings := Link(forest, LinkOptions{
		Enabled: opts.LinkAcrossCentromere,
		Levels:  levels,
	})

	header := opts.Header
	if header == (Header{}) {
		header = DefaultHeader()
	}
	doc := Emit(forest, header, EmitOptions{SiblingLinks: opts.SiblingLinks})

	return &Result{
		Document: doc,
		Warnings: warnings,
		Summary: Summary{
			KeptRows:             kept,
			SkippedRows:          skipped,
			Chromosomes:          sortedChromosomes(forest.Chromosomes()),
			Concepts:             forest.Len(),
			Links:                len(doc.Links),
			LinkAcrossCentromere: opts.LinkAcrossCentromere,
			CentromereLevels:     levels,
		},
	}, nil
}

// RunReader reads r to the end and runs the pipeline over its lines.
func RunReader(r io.Reader, opts Options) (*Result, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	return Run(lines, opts)
}

// ReadLines reads every line of r.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cytoband input: %w", err)
	}
	return lines, nil
}
