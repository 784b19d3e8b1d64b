package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/vburojevic/logsift/internal/domain"
)

// TableWriter collects records and renders them as one table on Flush
type TableWriter struct {
	w       io.Writer
	records []*domain.Record
}

// NewTableWriter creates a new table writer
func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{w: w}
}

// WriteRecord buffers a record until Flush
func (w *TableWriter) WriteRecord(r *domain.Record) error {
	w.records = append(w.records, r)
	return nil
}

// WriteSummary renders one row per value
func (w *TableWriter) WriteSummary(s *FieldSummary) error {
	rows := make([][]string, 0, len(s.Values))
	for _, v := range s.Values {
		share := "0.0%"
		if s.Total > 0 {
			share = fmt.Sprintf("%.1f%%", 100*float64(v.Count)/float64(s.Total))
		}
		rows = append(rows, []string{displayValue(v.Value), strconv.Itoa(v.Count), share})
	}
	return RenderTable(w.w, []string{s.Field, "count", "share"}, rows)
}

// WriteError renders a single-row error table
func (w *TableWriter) WriteError(code, message string, hint ...string) error {
	row := []string{code, message, ""}
	if len(hint) > 0 {
		row[2] = hint[0]
	}
	return RenderTable(w.w, []string{"error", "message", "hint"}, [][]string{row})
}

// WriteMetadata renders version information
func (w *TableWriter) WriteMetadata(version, commit, buildDate string) error {
	return RenderTable(w.w, []string{"version", "commit", "build date"}, [][]string{{version, commit, buildDate}})
}

// Flush renders the buffered records. Columns follow the first record's fields.
func (w *TableWriter) Flush() error {
	if len(w.records) == 0 {
		return nil
	}
	names := w.records[0].Names()
	header := append([]string{"#"}, names...)
	rows := make([][]string, len(w.records))
	for i, r := range w.records {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(i+1))
		for _, name := range names {
			row = append(row, r.Value(name))
		}
		rows[i] = row
	}
	w.records = nil
	return RenderTable(w.w, header, rows)
}

// RenderTable writes rows under header using tablewriter
func RenderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	table.Header(hdr...)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
