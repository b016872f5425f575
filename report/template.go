package report

import (
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/borolytics/borolytics/analytics"
)

// ============================================================================
// TEMPLATE — Self-contained HTML rendering
// ============================================================================
// The page embeds every chart as a base64 data URI, so the output is a
// single file with no external assets.
// ============================================================================

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"comma": analytics.FormatInt,
}).Parse(reportTemplate))

// Render writes the document as a self-contained HTML page.
func Render(w io.Writer, doc *Document) error {
	if err := reportTmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// RenderFile renders the document to a file.
func RenderFile(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	return Render(f, doc)
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
  body {
    font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
    color: #1F2937;
    margin: 0 auto;
    padding: 2rem 1rem 4rem;
    max-width: 860px;
    line-height: 1.55;
  }
  header { border-bottom: 3px solid #4F46E5; padding-bottom: 1rem; margin-bottom: 1.5rem; }
  h1 { margin: 0 0 0.25rem; font-size: 1.7rem; }
  h2 { margin-top: 2.2rem; font-size: 1.25rem; border-bottom: 1px solid #E5E7EB; padding-bottom: 0.3rem; }
  .meta { color: #6B7280; font-size: 0.9rem; margin: 0.2rem 0; }
  nav { font-size: 0.9rem; margin: 1rem 0; }
  nav a { color: #4F46E5; text-decoration: none; margin-right: 0.9rem; }
  nav a:hover { text-decoration: underline; }
  figure { margin: 1.2rem 0; text-align: center; }
  figure img { max-width: 100%; height: auto; border: 1px solid #E5E7EB; }
  table { border-collapse: collapse; margin: 1.2rem 0; width: 100%; font-size: 0.92rem; }
  caption { caption-side: top; text-align: left; font-weight: 600; margin-bottom: 0.4rem; }
  th, td { border: 1px solid #E5E7EB; padding: 0.35rem 0.6rem; }
  th { background: #F9FAFB; }
  th.left, td.left { text-align: left; }
  th.right, td.right { text-align: right; }
  tfoot td { font-weight: 600; background: #F9FAFB; }
  footer { margin-top: 3rem; color: #6B7280; font-size: 0.85rem; border-top: 1px solid #E5E7EB; padding-top: 0.8rem; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <p class="meta">{{comma .Rows}} incidents, {{.Span}}. Generated {{.GeneratedAt.Format "January 2, 2006"}}.</p>
  {{if .SourceURL}}<p class="meta">Source: <a href="{{.SourceURL}}">NYC Open Data</a></p>{{end}}
</header>

{{range .Intro}}<p>{{.}}</p>
{{end}}
<nav>
{{range .Sections}}  <a href="#{{.ID}}">{{.Title}}</a>
{{end}}</nav>

{{range .Sections}}<section id="{{.ID}}">
  <h2>{{.Title}}</h2>
{{range .Prose}}  <p>{{.}}</p>
{{end}}{{with .Chart}}  <figure><img src="{{.Src}}" alt="{{.Alt}}"></figure>
{{end}}{{with .Table}}{{$cols := .Columns}}  <table>
    <caption>{{.Title}}</caption>
    <thead><tr>{{range $cols}}<th class="{{.Align}}">{{.Label}}</th>{{end}}</tr></thead>
    <tbody>
{{range .Rows}}      <tr>{{range $i, $cell := .}}<td class="{{(index $cols $i).Align}}">{{$cell}}</td>{{end}}</tr>
{{end}}    </tbody>
{{with .Summary}}{{$s := .}}    <tfoot><tr>{{if .Values}}<td class="left">{{.Label}}</td>{{range slice $cols 1}}<td class="{{.Align}}">{{index $s.Values .Key}}</td>{{end}}{{else}}<td class="left" colspan="{{len $cols}}">{{.Label}}</td>{{end}}</tr></tfoot>
{{end}}  </table>
{{end}}</section>
{{end}}
<footer>
  <p>Counts are descriptive only. See the bias and limitations section before drawing conclusions.</p>
</footer>
</body>
</html>
`
