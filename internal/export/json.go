package export

import (
	"encoding/json"
	"io"

	"github.com/alienxp03/panelist/internal/core"
)

// JSONExporter exports session results to JSON format.
type JSONExporter struct{}

// Export writes the session result as indented JSON.
func (e *JSONExporter) Export(result *core.SessionResult, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return "json"
}
