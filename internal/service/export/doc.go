package export

import (
	"html/template"
	"io"
	"strings"

	"github.com/hashmun/hashmun/backend/internal/model/roster"
)

// DocExporter renders a Word-compatible HTML document with one table per
// non-empty team, matching the layout organizers print and circulate.
type DocExporter struct{}

// Export implements Exporter.
func (e *DocExporter) Export(snap *roster.Snapshot, w io.Writer) error {
	return docTemplate.Execute(w, docData(snap))
}

// Extension implements Exporter.
func (e *DocExporter) Extension() string { return "doc" }

// ContentType implements Exporter.
func (e *DocExporter) ContentType() string { return "application/vnd.ms-word" }

type docModel struct {
	ConferenceName string
	Teams          []teamRows
}

func docData(snap *roster.Snapshot) docModel {
	model := docModel{ConferenceName: "MUN Conference"}
	if snap != nil && strings.TrimSpace(snap.ConferenceName) != "" {
		model.ConferenceName = snap.ConferenceName
	}
	for _, group := range groupByTeam(snap) {
		if len(group.Delegates) == 0 {
			continue
		}
		model.Teams = append(model.Teams, group)
	}
	return model
}

// StatusClass maps a status to its document CSS class.
func StatusClass(s roster.Status) string {
	return "status-" + strings.ReplaceAll(strings.ToLower(string(s)), " ", "")
}

var docTemplate = template.Must(template.New("doc").Funcs(template.FuncMap{
	"statusClass": StatusClass,
	"classOrDash": func(class string) string {
		if class == "" {
			return "-"
		}
		return class
	},
}).Parse(`<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word' xmlns='http://www.w3.org/TR/REC-html40'>
<head>
<meta charset='utf-8'>
<title>{{.ConferenceName}}</title>
<style>
  body { font-family: 'Calibri', 'Arial', sans-serif; color: #000; }
  h1 { font-family: 'Segoe UI', 'Arial', sans-serif; color: #2563eb; font-size: 24pt; text-align: center; margin-bottom: 24px; }
  h2 { font-family: 'Segoe UI', 'Arial', sans-serif; color: #1e293b; font-size: 16pt; border-bottom: 2px solid #e2e8f0; padding-bottom: 8px; margin-top: 32px; margin-bottom: 16px; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 16px; }
  th { background-color: #f8fafc; border: 1px solid #94a3b8; padding: 8px; text-align: left; font-weight: bold; color: #0f172a; }
  td { border: 1px solid #94a3b8; padding: 8px; color: #334155; }
  .status-allocated { color: #15803d; font-weight: bold; }
  .status-waitlist { color: #c2410c; }
  .status-headdelegate { color: #a16207; font-weight: bold; text-transform: uppercase; }
  p.footer { text-align: center; color: #64748b; font-size: 10pt; margin-top: 40px; }
</style>
</head>
<body>
<h1>{{.ConferenceName}}</h1>
{{range .Teams}}<h2>{{.Name}}</h2>
<table>
<thead>
<tr><th>Status</th><th>Delegate Name</th><th>Committee</th><th>Allotment</th><th>Class</th></tr>
</thead>
<tbody>
{{range .Delegates}}<tr>
<td class="{{statusClass .Status}}">{{.Status}}</td>
<td>{{.Name}}</td>
<td>{{.Committee}}</td>
<td>{{.Allotment}}</td>
<td>{{classOrDash .Class}}</td>
</tr>
{{end}}</tbody>
</table>
{{end}}<p class="footer">Generated by HASHMUN AI</p>
</body>
</html>
`))
