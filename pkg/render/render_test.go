package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yumyai/cytoterm/pkg/cytoband"
	"github.com/yumyai/cytoterm/pkg/model"
)

func TestStainColor(t *testing.T) {
	tests := []struct {
		stain string
		want  string
	}{
		{"gneg", "#F5F5F5"},
		{"gpos25", "#BFBFBF"},
		{"gpos50", "#808080"},
		{"gpos100", "#000000"},
		{"gpos", "#000000"},
		{"acen", "#C0392B"},
		{"", "#FFFFFF"},
		{"unknown", "#CCCCCC"},
	}
	for _, tt := range tests {
		if got := stainColor(tt.stain); got != tt.want {
			t.Errorf("stainColor(%q) = %s, want %s", tt.stain, got, tt.want)
		}
	}
}

func TestRenderConceptPage(t *testing.T) {
	start, end := uint64(0), uint64(2300000)
	c := &model.Concept{
		ReleaseID:      "rel-1",
		Code:           "1p36.33",
		Display:        "1p36.33",
		Level:          "subBand",
		Chromosome:     "1",
		Start:          &start,
		End:            &end,
		Stain:          "gneg",
		Parents:        []string{"1p36"},
		LinkedChildren: []string{"1q21.1"},
	}

	var buf bytes.Buffer
	if err := RenderConceptPage(&buf, c); err != nil {
		t.Fatalf("RenderConceptPage: %v", err)
	}
	page := buf.String()

	for _, want := range []string{
		"<title>1p36.33 - 1p36.33</title>",
		`<a href="/concept/1p36">1p36</a>`,
		`<a href="/concept/1q21.1">1q21.1</a>`,
		"0-2300000 (2300000 bp)",
		"Linked to (across centromere)",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(page, "Contains") {
		t.Error("empty children section rendered")
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	err := RenderSummary(&buf, SummaryData{
		Summary: cytoband.Summary{
			KeptRows:             22,
			SkippedRows:          2,
			Chromosomes:          []string{"1", "13"},
			Concepts:             40,
			Links:                1,
			LinkAcrossCentromere: true,
			CentromereLevels:     []cytoband.Level{cytoband.LevelBand},
		},
		Warnings: []cytoband.LinkCoverageWarning{{
			Chromosome:  "13",
			Level:       cytoband.LevelBand,
			MissingArms: []cytoband.Arm{cytoband.ArmP},
			Reason:      "no concept at link level",
		}},
		Output: "out.json",
		Digest: "abc",
	})
	if err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"kept rows:        22",
		"chromosomes:      1 13",
		"centromere links: 1 (levels: band)",
		"blake3:           abc",
		"WARNINGS (1)",
		"chromosome 13 at band: no concept at link level (missing p)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "release:") {
		t.Error("release line printed without a release")
	}
}
