package pattern

import (
	"fmt"
	"strings"

	"github.com/vburojevic/logsift/internal/domain"
)

// FieldMismatchError reports a matcher whose captures do not line up with the
// declared fields. Values holds the captures when the mismatch was found on a
// real line; Groups holds the capture-group count when it was found at compile time.
type FieldMismatchError struct {
	Fields []string
	Values []string
	Groups int
}

func (e *FieldMismatchError) Error() string {
	if e.Values == nil {
		return fmt.Sprintf("field mismatch between log pattern and log data: pattern declares %d fields (%s) but its expression has %d capture groups",
			len(e.Fields), strings.Join(e.Fields, ", "), e.Groups)
	}
	return fmt.Sprintf("field mismatch between log pattern and log data: pattern declares %d fields (%s), the data is: '%s'",
		len(e.Fields), strings.Join(e.Fields, ", "), strings.Join(e.Values, ":::"))
}

// Parse applies the pattern to one line. A line that does not match returns
// (nil, nil); a match with the wrong number of captures is a *FieldMismatchError.
func (p *Pattern) Parse(line string) (*domain.Record, error) {
	line = strings.TrimSuffix(line, "\r")
	values, ok := p.matcher.Captures(line)
	if !ok {
		return nil, nil
	}
	return p.record(values, line)
}

// ParseChunks scans text for multiline entries and calls fn for each one in
// order. Iteration stops at the first error from parsing or from fn.
func (p *Pattern) ParseChunks(text string, fn func(*domain.Record) error) error {
	cm, ok := p.matcher.(ChunkMatcher)
	if !ok {
		return ErrMultilineUnsupported
	}
	for _, chunk := range cm.Chunks(text) {
		if len(chunk) == 0 {
			continue
		}
		rec, err := p.record(chunk[1:], chunk[0])
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pattern) record(values []string, line string) (*domain.Record, error) {
	if len(values) != len(p.fields) {
		return nil, &FieldMismatchError{
			Fields: p.Fields(),
			Values: append([]string{}, values...),
			Groups: len(values),
		}
	}
	return domain.NewRecord(p.fields, values, strings.TrimSpace(line)), nil
}
