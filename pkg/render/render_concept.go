package render

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/yumyai/cytoterm/pkg/model"
)

// stainColor maps a Giemsa stain to the shade used on ideograms.
// gposN bands get darker with N, acen is drawn red and gvar/stalk blue-grey.
func stainColor(stain string) string {
	switch stain {
	case "":
		return "#FFFFFF"
	case "gneg":
		return "#F5F5F5"
	case "acen":
		return "#C0392B"
	case "gvar":
		return "#6C7A89"
	case "stalk":
		return "#95A5A6"
	}

	if pct, ok := strings.CutPrefix(stain, "gpos"); ok {
		n, err := strconv.Atoi(pct)
		if err != nil || n <= 0 {
			n = 100
		}
		if n > 100 {
			n = 100
		}
		// 25 -> light grey, 100 -> black
		v := int(math.Round(255 * (1 - float64(n)/100)))
		return fmt.Sprintf("#%02X%02X%02X", v, v, v)
	}

	return "#CCCCCC"
}

func formatRange(start, end *uint64) string {
	if start == nil || end == nil {
		return "-"
	}
	return fmt.Sprintf("%d-%d (%d bp)", *start, *end, *end-*start)
}

var conceptPageTemplate *template.Template

func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
		<link href="/static/style.css" rel="stylesheet"></link>
		<title>{{.Code}} - {{.Display}}</title>
	</head>
	<body>
		<header class="app-header">
			<h1 class="app-name">{{.Code}}</h1>
			<p class="app-description">{{.Display}}</p>
		</header>
		<table class="concept-info">
			<tr><th>Level</th><td>{{.Level}}</td></tr>
			<tr><th>Chromosome</th><td>{{.Chromosome}}</td></tr>
			<tr><th>Position</th><td>{{formatRange .Start .End}}</td></tr>
			<tr><th>Stain</th><td><span class="stain" style="background-color: {{stainColor .Stain}}">&nbsp;&nbsp;</span> {{.Stain}}</td></tr>
			<tr><th>Release</th><td>{{.ReleaseID}}</td></tr>
		</table>
		{{template "edgeList" (edges "Part of" .Parents)}}
		{{template "edgeList" (edges "Contains" .Children)}}
		{{template "edgeList" (edges "Linked from (across centromere)" .LinkedParents)}}
		{{template "edgeList" (edges "Linked to (across centromere)" .LinkedChildren)}}
	</body>
	</html>`

	edgeListTmpl := `
	{{define "edgeList"}}
		{{if .Codes}}
		<h3>{{.Title}}</h3>
		<ul class="edge-list">
			{{range .Codes}}<li><a href="/concept/{{.}}">{{.}}</a></li>{{end}}
		</ul>
		{{end}}
	{{end}}`

	conceptPageTemplate = template.New("concept_page").Funcs(template.FuncMap{
		"stainColor":  stainColor,
		"formatRange": formatRange,
		"edges": func(title string, codes []string) map[string]any {
			return map[string]any{"Title": title, "Codes": codes}
		},
	})
	conceptPageTemplate = template.Must(conceptPageTemplate.Parse(mainTmpl))
	conceptPageTemplate = template.Must(conceptPageTemplate.Parse(edgeListTmpl))
}

// RenderConceptPage writes the HTML page of a stored concept.
func RenderConceptPage(w io.Writer, c *model.Concept) error {
	return conceptPageTemplate.Execute(w, c)
}
