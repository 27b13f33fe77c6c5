package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hashmun/hashmun/backend/internal/model/roster"
)

// YAMLExporter emits the snapshot as YAML.
type YAMLExporter struct{}

// Export implements Exporter.
func (e *YAMLExporter) Export(snap *roster.Snapshot, w io.Writer) error {
	if snap == nil {
		snap = &roster.Snapshot{}
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(snap)
}

// Extension implements Exporter.
func (e *YAMLExporter) Extension() string { return "yaml" }

// ContentType implements Exporter.
func (e *YAMLExporter) ContentType() string { return "application/yaml" }
