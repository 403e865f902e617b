package util

import (
	"encoding/json"
	"io"
	"os"
)

// PrintPrettyJSON writes v to stdout as indented JSON.
func PrintPrettyJSON(v any) error {
	return WritePrettyJSON(os.Stdout, v)
}

// WritePrettyJSON writes v to w as indented JSON followed by a newline.
func WritePrettyJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	// prompts routinely contain < > and &
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
