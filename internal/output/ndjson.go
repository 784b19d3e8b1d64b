package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/vburojevic/logsift/internal/domain"
)

// NDJSONWriter writes records as NDJSON
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
	queryID string
	count   int
}

// NewNDJSONWriter creates a new NDJSON writer. queryID tags every line so
// consumers can tell interleaved invocations apart.
func NewNDJSONWriter(w io.Writer, queryID string) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep log lines unescaped
	return &NDJSONWriter{
		w:       w,
		encoder: enc,
		queryID: queryID,
	}
}

// RecordOutput is the NDJSON form of a matched record
type RecordOutput struct {
	Type          string            `json:"type"` // Always "record"
	SchemaVersion int               `json:"schemaVersion"`
	QueryID       string            `json:"query_id,omitempty"`
	Index         int               `json:"index"` // 1-based position in the result set
	Time          string            `json:"time,omitempty"`
	Fields        map[string]string `json:"fields"`
	Line          string            `json:"line"`
}

// DoneOutput closes a result stream
type DoneOutput struct {
	Type          string `json:"type"` // Always "done"
	SchemaVersion int    `json:"schemaVersion"`
	QueryID       string `json:"query_id,omitempty"`
	Matched       int    `json:"matched"`
}

// ErrorOutput reports a failed command
type ErrorOutput struct {
	Type          string `json:"type"` // Always "error"
	SchemaVersion int    `json:"schemaVersion"`
	QueryID       string `json:"query_id,omitempty"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
}

// MetadataOutput describes the running binary
type MetadataOutput struct {
	Type          string `json:"type"` // Always "metadata"
	SchemaVersion int    `json:"schemaVersion"`
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	BuildDate     string `json:"build_date,omitempty"`
}

// WriteRecord outputs a single record
func (w *NDJSONWriter) WriteRecord(r *domain.Record) error {
	w.count++
	out := RecordOutput{
		Type:          "record",
		SchemaVersion: SchemaVersion,
		QueryID:       w.queryID,
		Index:         w.count,
		Fields:        make(map[string]string, len(r.Fields)),
		Line:          r.Line,
	}
	for _, f := range r.Fields {
		out.Fields[f.Name] = f.Value
	}
	if r.HasTime() {
		out.Time = r.Time.Format(time.RFC3339Nano)
	}
	return w.encoder.Encode(out)
}

// WriteSummary outputs a field summary
func (w *NDJSONWriter) WriteSummary(s *FieldSummary) error {
	s.SchemaVersion = SchemaVersion
	s.QueryID = w.queryID
	return w.encoder.Encode(s)
}

// WriteError outputs an error
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	out := ErrorOutput{
		Type:          "error",
		SchemaVersion: SchemaVersion,
		QueryID:       w.queryID,
		Code:          code,
		Message:       message,
	}
	if len(hint) > 0 {
		out.Hint = hint[0]
	}
	return w.encoder.Encode(out)
}

// WriteMetadata outputs version information
func (w *NDJSONWriter) WriteMetadata(version, commit, buildDate string) error {
	return w.encoder.Encode(MetadataOutput{
		Type:          "metadata",
		SchemaVersion: SchemaVersion,
		Version:       version,
		Commit:        commit,
		BuildDate:     buildDate,
	})
}

// WriteRaw outputs raw JSON data
func (w *NDJSONWriter) WriteRaw(v interface{}) error {
	return w.encoder.Encode(v)
}

// Flush ends the stream with a done marker
func (w *NDJSONWriter) Flush() error {
	return w.encoder.Encode(DoneOutput{
		Type:          "done",
		SchemaVersion: SchemaVersion,
		QueryID:       w.queryID,
		Matched:       w.count,
	})
}
