package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashmun/hashmun/backend/internal/model/roster"
)

// MarkdownExporter renders the roster as Markdown tables grouped by team.
type MarkdownExporter struct{}

// Export implements Exporter.
func (e *MarkdownExporter) Export(snap *roster.Snapshot, w io.Writer) error {
	name := "MUN Conference"
	if snap != nil && strings.TrimSpace(snap.ConferenceName) != "" {
		name = snap.ConferenceName
	}
	_, _ = fmt.Fprintf(w, "# %s\n\n", name)

	for _, group := range groupByTeam(snap) {
		if len(group.Delegates) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "## %s\n\n", group.Name)
		_, _ = fmt.Fprintln(w, "| Status | Delegate Name | Committee | Allotment | Class |")
		_, _ = fmt.Fprintln(w, "| --- | --- | --- | --- | --- |")
		for _, d := range group.Delegates {
			class := d.Class
			if class == "" {
				class = "-"
			}
			_, _ = fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
				escapePipes(string(d.Status)), escapePipes(d.Name),
				escapePipes(d.Committee), escapePipes(d.Allotment), escapePipes(class))
		}
		_, _ = fmt.Fprintln(w)
	}

	return nil
}

// Extension implements Exporter.
func (e *MarkdownExporter) Extension() string { return "md" }

// ContentType implements Exporter.
func (e *MarkdownExporter) ContentType() string { return "text/markdown; charset=utf-8" }

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
