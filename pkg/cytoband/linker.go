package cytoband

import "sort"

// LinkKindCentromere tags edges synthesized across the centromere so
// consumers can drop them and keep a strict tree.
const LinkKindCentromere = "centromere-link"

// LinkEdge is a supplementary relation between the p-side and q-side
// concepts flanking the centromere.
type LinkEdge struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Kind       string `json:"kind"`
	Chromosome string `json:"chromosome"`
	Level      Level  `json:"level"`
}

// LinkOptions configures centromere linking.
type LinkOptions struct {
	Enabled bool
	Levels  []Level
}

// Link joins, per chromosome and level, the p-arm concept nearest the
// centromere to the q-arm concept nearest the centromere. On both arms band
// numbers grow away from the centromere, so the nearest concept is the one
// with the lowest path. Chromosomes lacking a side at a level are skipped
// and reported.
func Link(f *Forest, opts LinkOptions) []LinkCoverageWarning {
	if !opts.Enabled {
		return nil
	}

	var warnings []LinkCoverageWarning
	for _, chrom := range sortedChromosomes(f.chromosomes) {
		for _, level := range opts.Levels {
			pSide := proximal(f.ConceptsAt(chrom, ArmP, level))
			qSide := proximal(f.ConceptsAt(chrom, ArmQ, level))

			if pSide == nil || qSide == nil {
				w := LinkCoverageWarning{
					Chromosome: chrom,
					Level:      level,
					Reason:     "no concept at link level",
				}
				if pSide == nil {
					w.MissingArms = append(w.MissingArms, ArmP)
				}
				if qSide == nil {
					w.MissingArms = append(w.MissingArms, ArmQ)
				}
				warnings = append(warnings, w)
				continue
			}

			f.addLink(LinkEdge{
				From:       pSide.Code,
				To:         qSide.Code,
				Kind:       LinkKindCentromere,
				Chromosome: chrom,
				Level:      level,
			})

			if cen, ok := f.Centromere(chrom); ok && crossesCentromere(pSide, qSide, cen) {
				warnings = append(warnings, LinkCoverageWarning{
					Chromosome: chrom,
					Level:      level,
					Reason:     "endpoint extends past centromere",
				})
			}
		}
	}
	return warnings
}

func (f *Forest) addLink(e LinkEdge) {
	for _, existing := range f.links {
		if existing.From == e.From && existing.To == e.To {
			return
		}
	}
	f.links = append(f.links, e)
	from, to := f.concepts[e.From], f.concepts[e.To]
	from.LinkedChildren = addCode(from.LinkedChildren, e.To)
	to.LinkedParents = addCode(to.LinkedParents, e.From)
}

func proximal(concepts []*Concept) *Concept {
	var best *Concept
	for _, c := range concepts {
		if best == nil || c.Path.Compare(best.Path) < 0 {
			best = c
		}
	}
	return best
}

// crossesCentromere reports a p endpoint that runs into the centromere or a
// q endpoint that starts inside or before it.
func crossesCentromere(p, q *Concept, cen Range) bool {
	return (p.HasRange && p.End > cen.Start) || (q.HasRange && q.Start < cen.End)
}

func sortedChromosomes(chroms []string) []string {
	out := append([]string(nil), chroms...)
	sort.SliceStable(out, func(i, j int) bool {
		return LessChromosome(out[i], out[j])
	})
	return out
}
