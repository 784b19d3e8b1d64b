package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vburojevic/logsift/internal/domain"
)

// TextWriter writes records as styled text
type TextWriter struct {
	w    io.Writer
	opts Options
}

// NewTextWriter creates a new text writer
func NewTextWriter(w io.Writer, opts Options) *TextWriter {
	if opts.SeverityField == "" {
		opts.SeverityField = "severity"
	}
	if len(opts.Scale) == 0 {
		opts.Scale = domain.DefaultScale
	}
	return &TextWriter{w: w, opts: opts}
}

func (w *TextWriter) render(s lipgloss.Style, text string) string {
	if w.opts.Plain {
		return text
	}
	return s.Render(text)
}

// WriteRecord outputs the raw line, or its fields in detail mode. Styled
// output prefixes the severity tag and colors the line by severity.
func (w *TextWriter) WriteRecord(r *domain.Record) error {
	level, hasLevel := r.Get(w.opts.SeverityField)
	style := SeverityStyle(level, w.opts.Scale)

	body := r.Line
	if w.opts.Detail {
		parts := make([]string, 0, len(r.Fields))
		for _, f := range r.Fields {
			parts = append(parts, w.render(Styles.FieldName, f.Name)+"="+strconv.Quote(f.Value))
		}
		body = strings.Join(parts, " ")
	} else {
		body = w.render(style, body)
	}

	var line string
	if !w.opts.Plain && hasLevel {
		line = style.Render(SeverityIndicator(level)) + " "
	}
	line += body + "\n"

	_, err := io.WriteString(w.w, line)
	return err
}

// WriteSummary outputs a styled field summary
func (w *TextWriter) WriteSummary(s *FieldSummary) error {
	var b strings.Builder
	b.WriteString(w.render(Styles.Header, "Summary by "+s.Field) + "\n")
	b.WriteString(w.render(Styles.Label, "Total: ") + w.render(Styles.Value, strconv.Itoa(s.Total)))
	if s.WindowStart != nil && s.WindowEnd != nil {
		b.WriteString(" | " + w.render(Styles.Label, "Window: ") +
			w.render(Styles.Timestamp, s.WindowStart.Format(time.RFC3339)+" .. "+s.WindowEnd.Format(time.RFC3339)))
	}
	status := StatusText(s.Total)
	if w.opts.Plain {
		status = statusLabel(s.Total)
	}
	b.WriteString(" | " + status + "\n")

	width := 0
	for _, v := range s.Values {
		width = max(width, len(displayValue(v.Value)))
	}
	for _, v := range s.Values {
		name := fmt.Sprintf("%-*s", width, displayValue(v.Value))
		if s.Field == w.opts.SeverityField {
			name = w.render(SeverityStyle(v.Value, w.opts.Scale), name)
		}
		b.WriteString("  " + name + "  " + w.render(Styles.Value, strconv.Itoa(v.Count)) + "\n")
	}

	if len(s.Patterns) > 0 {
		b.WriteString("\n" + w.render(Styles.Header, "Recurring patterns") + "\n")
		for _, p := range s.Patterns {
			b.WriteString("  " + w.render(Styles.Value, strconv.Itoa(p.Count)+"x") + " " + p.Pattern + "\n")
		}
	}

	_, err := io.WriteString(w.w, b.String())
	return err
}

// WriteError outputs a styled error
func (w *TextWriter) WriteError(code, message string, hint ...string) error {
	line := w.render(Styles.Danger, "Error") + " " + w.render(Styles.Warning, "["+code+"]") + ": " + message + "\n"
	if len(hint) > 0 && hint[0] != "" {
		line += w.render(Styles.Label, "Hint: "+hint[0]) + "\n"
	}
	_, err := io.WriteString(w.w, line)
	return err
}

// WriteMetadata outputs version information
func (w *TextWriter) WriteMetadata(version, commit, buildDate string) error {
	line := "logsift " + version + " (" + commit
	if buildDate != "" {
		line += ", " + buildDate
	}
	_, err := io.WriteString(w.w, line+")\n")
	return err
}

// Flush is a no-op; text is written as it arrives
func (w *TextWriter) Flush() error { return nil }

func displayValue(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}
