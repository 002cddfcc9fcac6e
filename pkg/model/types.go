package model

// Concept is a stored concept with its edges in the latest release.
type Concept struct {
	ReleaseID      string   `json:"releaseId"`
	Code           string   `json:"code"`
	Display        string   `json:"display"`
	Level          string   `json:"level"`
	Chromosome     string   `json:"chromosome"`
	Start          *uint64  `json:"start,omitempty"`
	End            *uint64  `json:"end,omitempty"`
	Stain          string   `json:"stain,omitempty"`
	Parents        []string `json:"parents,omitempty"`
	Children       []string `json:"children,omitempty"`
	LinkedParents  []string `json:"linkedParents,omitempty"`
	LinkedChildren []string `json:"linkedChildren,omitempty"`
}

// Return from query
type conceptQuery struct {
	code       string
	display    string
	level      string
	chromosome string
	start      *int64
	end        *int64
	stain      string
}

func (q conceptQuery) toConcept(releaseID string) *Concept {
	c := &Concept{
		ReleaseID:  releaseID,
		Code:       q.code,
		Display:    q.display,
		Level:      q.level,
		Chromosome: q.chromosome,
		Stain:      q.stain,
	}
	if q.start != nil {
		v := uint64(*q.start)
		c.Start = &v
	}
	if q.end != nil {
		v := uint64(*q.end)
		c.End = &v
	}
	return c
}
