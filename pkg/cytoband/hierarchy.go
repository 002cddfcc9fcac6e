package cytoband

import (
	"sort"
)

// Band is a parsed record with its decomposed designation. Centromere is
// set for the centromere marker, which carries coordinates but no path.
type Band struct {
	Record     BandRecord
	Path       BandPath
	Centromere bool
}

// Concept is one node of the code system. Relations are held as codes so
// the forest never holds pointers between concepts.
type Concept struct {
	Code       string
	Display    string
	Chromosome string
	Level      Level
	Path       BandPath

	Parents        []string
	Children       []string
	LinkedParents  []string
	LinkedChildren []string

	Start    uint64
	End      uint64
	HasRange bool
	Stain    string
	Explicit bool

	source Range
}

// Forest is the concept arena for one run, keyed by code.
type Forest struct {
	concepts    map[string]*Concept
	order       []string
	chromosomes []string
	centromeres map[string]Range
	links       []LinkEdge
}

// NewForest returns an empty forest.
func NewForest() *Forest {
	return &Forest{
		concepts:    make(map[string]*Concept),
		centromeres: make(map[string]Range),
	}
}

// Concept looks up a concept by code.
func (f *Forest) Concept(code string) (*Concept, bool) {
	c, ok := f.concepts[code]
	return c, ok
}

// Len is the number of concepts.
func (f *Forest) Len() int {
	return len(f.concepts)
}

// Codes returns concept codes in discovery order.
func (f *Forest) Codes() []string {
	return append([]string(nil), f.order...)
}

// Chromosomes returns chromosomes in discovery order.
func (f *Forest) Chromosomes() []string {
	return append([]string(nil), f.chromosomes...)
}

// Centromere returns the centromere marker range read for chrom, if any.
func (f *Forest) Centromere(chrom string) (Range, bool) {
	r, ok := f.centromeres[chrom]
	return r, ok
}

// Links returns the centromere link edges added so far.
func (f *Forest) Links() []LinkEdge {
	return append([]LinkEdge(nil), f.links...)
}

// ConceptsAt returns the concepts of one chromosome arm at a level.
func (f *Forest) ConceptsAt(chrom string, arm Arm, level Level) []*Concept {
	var out []*Concept
	for _, code := range f.order {
		c := f.concepts[code]
		if c.Chromosome == chrom && c.Level == level && c.Level >= LevelArm && c.Path.Arm == arm {
			out = append(out, c)
		}
	}
	return out
}

func (f *Forest) add(c *Concept) *Concept {
	if existing, ok := f.concepts[c.Code]; ok {
		return existing
	}
	f.concepts[c.Code] = c
	f.order = append(f.order, c.Code)
	return c
}

func (f *Forest) ensureBand(chrom string, path BandPath) *Concept {
	code := chrom + path.String()
	return f.add(&Concept{
		Code:       code,
		Display:    code,
		Chromosome: chrom,
		Level:      path.Depth,
		Path:       path,
	})
}

func (f *Forest) ensureChromosome(chrom string, withRoot bool) {
	for _, c := range f.chromosomes {
		if c == chrom {
			return
		}
	}
	f.chromosomes = append(f.chromosomes, chrom)

	if withRoot {
		f.add(&Concept{
			Code:       chrom,
			Display:    "Chromosome " + chrom,
			Chromosome: chrom,
			Level:      LevelChromosome,
		})
	}
	for _, arm := range []Arm{ArmP, ArmQ} {
		c := f.ensureBand(chrom, ArmPath(arm))
		if withRoot {
			f.relate(chrom, c.Code)
		}
	}
}

func (f *Forest) relate(parent, child string) {
	p, c := f.concepts[parent], f.concepts[child]
	p.Children = addCode(p.Children, child)
	c.Parents = addCode(c.Parents, parent)
}

func (f *Forest) markCentromere(rec BandRecord) {
	r, ok := f.centromeres[rec.Chromosome]
	if !ok {
		f.centromeres[rec.Chromosome] = rec.Range()
		return
	}
	if rec.Start < r.Start {
		r.Start = rec.Start
	}
	if rec.End > r.End {
		r.End = rec.End
	}
	f.centromeres[rec.Chromosome] = r
}

// BuildOptions controls optional hierarchy shape.
type BuildOptions struct {
	// ChromosomeRoots adds a chromosome concept above the two arms.
	ChromosomeRoots bool
}

// Build folds bands into a concept forest. Every prefix of a band path is
// created on first reference and attached under the prefix one level up,
// with the arm root as the shallowest parent.
func Build(bands []Band, opts BuildOptions) (*Forest, error) {
	f := NewForest()

	for _, b := range bands {
		chrom := b.Record.Chromosome
		f.ensureChromosome(chrom, opts.ChromosomeRoots)

		if b.Centromere {
			f.markCentromere(b.Record)
			continue
		}

		parent := chrom + ArmPath(b.Path.Arm).String()
		var leaf *Concept
		for l := LevelRegion; l <= b.Path.Depth; l++ {
			leaf = f.ensureBand(chrom, b.Path.Prefix(l))
			f.relate(parent, leaf.Code)
			parent = leaf.Code
		}
		if leaf == nil {
			continue
		}
		if err := leaf.assign(b.Record); err != nil {
			return nil, err
		}
	}

	f.finalize()
	return f, nil
}

// assign attaches record coordinates to the concept the record names.
func (c *Concept) assign(rec BandRecord) error {
	if !c.Explicit {
		c.Explicit = true
		c.HasRange = true
		c.Start, c.End, c.Stain = rec.Start, rec.End, rec.Stain
		c.source = rec.Range()
		return nil
	}
	if c.Start != rec.Start || c.End != rec.End {
		first, second := c.source, rec.Range()
		if second.Line < first.Line {
			first, second = second, first
		}
		return &DuplicateCodeConflictError{Code: c.Code, First: first, Second: second}
	}
	// Same range repeated: keep a stain that does not depend on row order.
	if rec.Stain != "" && (c.Stain == "" || rec.Stain < c.Stain) {
		c.Stain = rec.Stain
	}
	return nil
}

// finalize sorts child lists numerically and spans synthesized concepts
// over their descendants.
func (f *Forest) finalize() {
	byPath := func(codes []string) {
		sort.SliceStable(codes, func(i, j int) bool {
			return f.concepts[codes[i]].Path.Compare(f.concepts[codes[j]].Path) < 0
		})
	}
	for _, c := range f.concepts {
		byPath(c.Children)
	}

	deepestFirst := f.Codes()
	sort.SliceStable(deepestFirst, func(i, j int) bool {
		return f.concepts[deepestFirst[i]].Level > f.concepts[deepestFirst[j]].Level
	})
	for _, code := range deepestFirst {
		c := f.concepts[code]
		if !c.HasRange {
			continue
		}
		for _, pc := range c.Parents {
			p := f.concepts[pc]
			if p.Explicit {
				continue
			}
			if !p.HasRange || c.Start < p.Start {
				p.Start = c.Start
			}
			if !p.HasRange || c.End > p.End {
				p.End = c.End
			}
			p.HasRange = true
		}
	}
}

// addCode inserts code into a set-like slice.
func addCode(codes []string, code string) []string {
	for _, c := range codes {
		if c == code {
			return codes
		}
	}
	return append(codes, code)
}
