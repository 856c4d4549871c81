package output

import (
	"encoding/json"
	"io"

	"github.com/yndnr/apprun-go/pkg/conftree"
)

// JSONFormatter formats data as JSON.
type JSONFormatter struct{}

// Format formats data as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(native(data))
}

// native unwraps option trees into plain maps for encoders.
func native(data any) any {
	if t, ok := data.(conftree.Tree); ok {
		return t.Native()
	}
	return data
}
