package cytoband

import (
	"encoding/json"
	"sort"
)

// Header holds the code system envelope. It is filled by configuration,
// never by hierarchy logic.
type Header struct {
	ResourceType     string `json:"resourceType" yaml:"resource_type"`
	URL              string `json:"url" yaml:"url"`
	Version          string `json:"version,omitempty" yaml:"version"`
	Name             string `json:"name,omitempty" yaml:"name"`
	Title            string `json:"title,omitempty" yaml:"title"`
	Status           string `json:"status" yaml:"status"`
	Content          string `json:"content" yaml:"content"`
	CaseSensitive    bool   `json:"caseSensitive" yaml:"case_sensitive"`
	HierarchyMeaning string `json:"hierarchyMeaning" yaml:"hierarchy_meaning"`
}

// DefaultHeader returns the assembly-agnostic cytoband envelope.
func DefaultHeader() Header {
	return Header{
		ResourceType:     "CodeSystem",
		URL:              "http://example.org/fhir/CodeSystem/human-cytoband-agnostic",
		Version:          "1.2.0",
		Name:             "HumanCytogeneticBandsAssemblyAgnostic",
		Title:            "Human Cytogenetic Bands (Assembly-agnostic)",
		Status:           "active",
		Content:          "complete",
		CaseSensitive:    true,
		HierarchyMeaning: "part-of",
	}
}

type PropertyDef struct {
	Code        string `json:"code"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type ConceptProperty struct {
	Code         string  `json:"code"`
	ValueCode    string  `json:"valueCode,omitempty"`
	ValueString  string  `json:"valueString,omitempty"`
	ValueInteger *uint64 `json:"valueInteger,omitempty"`
}

// ConceptEntry is one emitted concept. Parents are containment edges,
// LinkedParents and LinkedChildren come only from centromere links.
type ConceptEntry struct {
	Code           string            `json:"code"`
	Display        string            `json:"display"`
	Parents        []string          `json:"parents,omitempty"`
	LinkedParents  []string          `json:"linkedParents,omitempty"`
	LinkedChildren []string          `json:"linkedChildren,omitempty"`
	Property       []ConceptProperty `json:"property,omitempty"`

	// Carried for stores; not part of the serialized form.
	Chromosome string `json:"-"`
	Level      Level  `json:"-"`
}

// Document is the serialized code system.
type Document struct {
	Header
	Count    int            `json:"count"`
	Property []PropertyDef  `json:"property"`
	Concepts []ConceptEntry `json:"concepts"`
	Links    []LinkEdge     `json:"links,omitempty"`
}

// EmitOptions controls optional output properties.
type EmitOptions struct {
	// SiblingLinks adds prev/next properties between siblings in genomic
	// order (p arm telomere to centromere, then q arm outwards).
	SiblingLinks bool
}

var propertyDefs = []PropertyDef{
	{Code: "kind", Type: "code", Description: "Hierarchy level of the concept"},
	{Code: "start", Type: "integer", Description: "Chromosome start (0-based)"},
	{Code: "end", Type: "integer", Description: "Chromosome end (0-based, exclusive)"},
	{Code: "giestain", Type: "string", Description: "Giemsa stain result"},
}

var siblingPropertyDefs = []PropertyDef{
	{Code: "prev", Type: "code", Description: "Previous sibling in genomic order"},
	{Code: "next", Type: "code", Description: "Next sibling in genomic order"},
}

// Emit serializes the forest. Concepts are ordered by chromosome, level
// and path so the output never depends on input row order.
func Emit(f *Forest, header Header, opts EmitOptions) *Document {
	concepts := make([]*Concept, 0, f.Len())
	for _, code := range f.order {
		concepts = append(concepts, f.concepts[code])
	}
	sort.SliceStable(concepts, func(i, j int) bool {
		a, b := concepts[i], concepts[j]
		if a.Chromosome != b.Chromosome {
			return LessChromosome(a.Chromosome, b.Chromosome)
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		if c := a.Path.Compare(b.Path); c != 0 {
			return c < 0
		}
		return a.Code < b.Code
	})

	var prev, next map[string]string
	if opts.SiblingLinks {
		prev, next = f.siblingChains()
	}

	doc := &Document{
		Header:   header,
		Count:    len(concepts),
		Property: append([]PropertyDef(nil), propertyDefs...),
		Concepts: make([]ConceptEntry, 0, len(concepts)),
	}
	if opts.SiblingLinks {
		doc.Property = append(doc.Property, siblingPropertyDefs...)
	}

	for _, c := range concepts {
		entry := ConceptEntry{
			Code:           c.Code,
			Display:        c.Display,
			Parents:        sortedCodes(f, c.Parents),
			LinkedParents:  sortedCodes(f, c.LinkedParents),
			LinkedChildren: sortedCodes(f, c.LinkedChildren),
			Chromosome:     c.Chromosome,
			Level:          c.Level,
		}
		entry.Property = append(entry.Property, ConceptProperty{Code: "kind", ValueCode: c.Level.String()})
		if c.HasRange {
			start, end := c.Start, c.End
			entry.Property = append(entry.Property,
				ConceptProperty{Code: "start", ValueInteger: &start},
				ConceptProperty{Code: "end", ValueInteger: &end},
			)
		}
		if c.Stain != "" {
			entry.Property = append(entry.Property, ConceptProperty{Code: "giestain", ValueString: c.Stain})
		}
		if p, ok := prev[c.Code]; ok {
			entry.Property = append(entry.Property, ConceptProperty{Code: "prev", ValueCode: p})
		}
		if n, ok := next[c.Code]; ok {
			entry.Property = append(entry.Property, ConceptProperty{Code: "next", ValueCode: n})
		}
		doc.Concepts = append(doc.Concepts, entry)
	}

	links := f.Links()
	sort.SliceStable(links, func(i, j int) bool {
		a, b := links[i], links[j]
		if a.Chromosome != b.Chromosome {
			return LessChromosome(a.Chromosome, b.Chromosome)
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		return a.From < b.From
	})
	doc.Links = links

	return doc
}

// Encode renders the document as indented JSON with a trailing newline.
func (d *Document) Encode() ([]byte, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// PropertyValue returns the property with the given code.
func (e ConceptEntry) PropertyValue(code string) (ConceptProperty, bool) {
	for _, p := range e.Property {
		if p.Code == code {
			return p, true
		}
	}
	return ConceptProperty{}, false
}

// siblingChains builds prev/next maps. Children are stored in ascending
// numeric order; on the p arm genomic order runs from the telomere, i.e.
// descending band numbers.
func (f *Forest) siblingChains() (map[string]string, map[string]string) {
	prev, next := make(map[string]string), make(map[string]string)
	chain := func(codes []string) {
		for i, code := range codes {
			if i > 0 {
				prev[code] = codes[i-1]
			}
			if i < len(codes)-1 {
				next[code] = codes[i+1]
			}
		}
	}

	for _, code := range f.order {
		c := f.concepts[code]
		if len(c.Children) == 0 {
			continue
		}
		chain(f.genomicOrder(c.Children))
	}
	var roots []string
	for _, chrom := range sortedChromosomes(f.chromosomes) {
		if _, ok := f.concepts[chrom]; ok {
			roots = append(roots, chrom)
			continue
		}
		chain([]string{chrom + ArmP.String(), chrom + ArmQ.String()})
	}
	// Chromosome roots follow karyotype order.
	chain(roots)
	return prev, next
}

func (f *Forest) genomicOrder(children []string) []string {
	out := append([]string(nil), children...)
	first := f.concepts[out[0]]
	if first.Level >= LevelRegion && first.Path.Arm == ArmP {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func sortedCodes(f *Forest, codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	out := append([]string(nil), codes...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := f.concepts[out[i]], f.concepts[out[j]]
		if a.Chromosome != b.Chromosome {
			return LessChromosome(a.Chromosome, b.Chromosome)
		}
		if c := a.Path.Compare(b.Path); c != 0 {
			return c < 0
		}
		return a.Code < b.Code
	})
	return out
}
