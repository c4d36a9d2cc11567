package report

import (
	"encoding/json"
	"io"
)

// RenderJSON writes the machine-readable report. Field names are stable; the
// encoder is configured for deterministic, diffable output.
func RenderJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}
