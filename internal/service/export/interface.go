// Package export projects a committed roster snapshot into downloadable
// documents and the print surface. Exporters never see working copies.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/hashmun/hashmun/backend/internal/model/roster"
)

// Exporter defines the interface for all export formats.
type Exporter interface {
	Export(snap *roster.Snapshot, w io.Writer) error
	Extension() string
	ContentType() string
}

// NewExporter creates an exporter for the requested format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "doc", "word":
		return &DocExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: doc, md, json, yaml)", format)
	}
}

var whitespace = regexp.MustCompile(`\s+`)

// Filename derives the download name from the conference name with
// whitespace normalized to underscores.
func Filename(conferenceName, ext string) string {
	name := strings.TrimSpace(conferenceName)
	if name == "" {
		name = "MUN Conference"
	}
	return fmt.Sprintf("HASHMUN_%s_Master.%s", whitespace.ReplaceAllString(name, "_"), ext)
}

// teamRows groups delegates under one derived team, preserving row order.
type teamRows struct {
	Name      string
	Delegates []roster.Delegate
}

func groupByTeam(snap *roster.Snapshot) []teamRows {
	if snap == nil {
		return nil
	}
	var groups []teamRows
	for _, team := range roster.Teams(snap.Delegates, nil) {
		rows := teamRows{Name: team}
		for _, d := range snap.Delegates {
			if d.Team == team {
				rows.Delegates = append(rows.Delegates, d)
			}
		}
		groups = append(groups, rows)
	}
	return groups
}
