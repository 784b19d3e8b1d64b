package output

import (
	"fmt"
	"io"

	"github.com/vburojevic/logsift/internal/domain"
)

// Writer renders results in one output format
type Writer interface {
	WriteRecord(r *domain.Record) error
	WriteSummary(s *FieldSummary) error
	WriteError(code, message string, hint ...string) error
	WriteMetadata(version, commit, buildDate string) error
	// Flush completes the output. Table output renders here.
	Flush() error
}

// Options configures a Writer
type Options struct {
	QueryID       string
	SeverityField string
	Scale         domain.Scale
	// Plain disables styling, e.g. when stdout is not a terminal
	Plain bool
	// Detail prints fields as name=value pairs instead of the raw line
	Detail bool
}

// Formats lists the accepted --format values
var Formats = []string{"text", "ndjson", "table"}

// NewWriter returns the writer for format
func NewWriter(format string, w io.Writer, opts Options) (Writer, error) {
	switch format {
	case "", "text":
		return NewTextWriter(w, opts), nil
	case "ndjson":
		return NewNDJSONWriter(w, opts.QueryID), nil
	case "table":
		return NewTableWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
