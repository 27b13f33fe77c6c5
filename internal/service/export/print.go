package export

import (
	"html/template"
	"io"
	"strings"

	"github.com/hashmun/hashmun/backend/internal/model/roster"
)

// RenderPrint writes the full-viewport print surface: every team listed
// exactly as in the document export, intended for browser print-to-PDF.
func RenderPrint(snap *roster.Snapshot, w io.Writer) error {
	data := printModel{ConferenceName: "MUN Conference"}
	if snap != nil && strings.TrimSpace(snap.ConferenceName) != "" {
		data.ConferenceName = snap.ConferenceName
	}
	data.Teams = groupByTeam(snap)
	return printTemplate.Execute(w, data)
}

type printModel struct {
	ConferenceName string
	Teams          []teamRows
}

var printTemplate = template.Must(template.New("print").Funcs(template.FuncMap{
	"classOrDash": func(class string) string {
		if class == "" {
			return "-"
		}
		return class
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.ConferenceName}}</title>
<style>
  body { font-family: 'Segoe UI', 'Arial', sans-serif; color: #0f172a; padding: 32px; }
  header { text-align: center; margin-bottom: 32px; }
  header h1 { font-size: 28pt; margin: 0 0 8px; }
  header p { color: #64748b; letter-spacing: 0.2em; text-transform: uppercase; font-size: 9pt; margin: 0; }
  section { margin-bottom: 40px; page-break-inside: avoid; }
  .team-head { display: flex; justify-content: space-between; align-items: flex-end; border-bottom: 2px solid #0f172a; margin-bottom: 12px; padding-bottom: 6px; }
  .team-head h2 { font-size: 16pt; text-transform: uppercase; letter-spacing: 0.05em; margin: 0; }
  .team-head span { font-weight: bold; color: #475569; font-size: 9pt; }
  table { width: 100%; border-collapse: collapse; font-size: 10pt; }
  th { background: #f1f5f9; border: 1px solid #cbd5e1; padding: 6px; text-align: left; text-transform: uppercase; font-size: 8pt; }
  td { border: 1px solid #cbd5e1; padding: 6px; }
</style>
</head>
<body>
<header>
<h1>{{.ConferenceName}}</h1>
<p>Delegate Matrix &bull; Generated by HASHMUN</p>
</header>
{{range .Teams}}<section>
<div class="team-head"><h2>{{.Name}}</h2><span>{{len .Delegates}} DELEGATES</span></div>
<table>
<thead><tr><th>Status</th><th>Name</th><th>Committee</th><th>Allotment</th><th>Class</th></tr></thead>
<tbody>
{{range .Delegates}}<tr><td>{{.Status}}</td><td>{{.Name}}</td><td>{{.Committee}}</td><td>{{.Allotment}}</td><td>{{classOrDash .Class}}</td></tr>
{{end}}</tbody>
</table>
</section>
{{end}}</body>
</html>
`))
