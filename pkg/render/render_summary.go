package render

import (
	"io"
	"strings"
	"text/template"

	"github.com/yumyai/cytoterm/pkg/cytoband"
)

// SummaryData is what the convert command reports after a run.
type SummaryData struct {
	Summary  cytoband.Summary
	Warnings []cytoband.LinkCoverageWarning
	Output   string
	Digest   string
	Release  string
}

var summaryTemplate = template.Must(template.New("summary").Funcs(template.FuncMap{
	"join": strings.Join,
	"levels": func(ls []cytoband.Level) string {
		names := make([]string, 0, len(ls))
		for _, l := range ls {
			names = append(names, l.String())
		}
		return strings.Join(names, ",")
	},
}).Parse(`SUMMARY
  kept rows:        {{.Summary.KeptRows}}
  skipped rows:     {{.Summary.SkippedRows}}
  chromosomes:      {{join .Summary.Chromosomes " "}}
  concepts:         {{.Summary.Concepts}}
  centromere links: {{.Summary.Links}}{{if .Summary.LinkAcrossCentromere}} (levels: {{levels .Summary.CentromereLevels}}){{else}} (disabled){{end}}
{{- if .Output}}
  output:           {{.Output}}
{{- end}}
{{- if .Digest}}
  blake3:           {{.Digest}}
{{- end}}
{{- if .Release}}
  release:          {{.Release}}
{{- end}}
{{- if .Warnings}}
WARNINGS ({{len .Warnings}})
{{- range .Warnings}}
  - {{.String}}
{{- end}}
{{- end}}
`))

// RenderSummary writes the plain text run report.
func RenderSummary(w io.Writer, data SummaryData) error {
	return summaryTemplate.Execute(w, data)
}
