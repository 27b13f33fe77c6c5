package export

import (
	"encoding/json"
	"io"

	"github.com/hashmun/hashmun/backend/internal/model/roster"
)

// JSONExporter emits the snapshot as indented JSON.
type JSONExporter struct{}

// Export implements Exporter.
func (e *JSONExporter) Export(snap *roster.Snapshot, w io.Writer) error {
	if snap == nil {
		snap = &roster.Snapshot{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Extension implements Exporter.
func (e *JSONExporter) Extension() string { return "json" }

// ContentType implements Exporter.
func (e *JSONExporter) ContentType() string { return "application/json" }
