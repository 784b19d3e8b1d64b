package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// TimeField is the reserved field name that unlocks time scoping
	TimeField = "time"
	// SeverityField is the field severity queries read by default
	SeverityField = "severity"
)

// DefaultExpr matches "2000-09-07 14:07:41 INFO  MyApp - Entering APPLICATION."
const DefaultExpr = `^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\s+(?i:(TRACE|DEBUG|INFO|WARN|ERROR|FATAL))\s+(\S+)\s+-\s+(.*)$`

// DefaultFields are the fields captured by DefaultExpr
var DefaultFields = []string{TimeField, SeverityField, "application", "message"}

// ErrMultilineUnsupported is returned when a matcher cannot scan across line boundaries
var ErrMultilineUnsupported = errors.New("pattern matcher does not support multiline scanning")

// Matcher extracts capture values from one line.
// Captures returns ok=false when the line does not match.
type Matcher interface {
	Captures(line string) (values []string, ok bool)
}

// ChunkMatcher is a Matcher that can also scan whole text for multiline entries.
// Each returned chunk holds the full match followed by its captures.
type ChunkMatcher interface {
	Matcher
	Chunks(text string) [][]string
}

// Pattern is an immutable matcher plus the ordered field names its captures map to
type Pattern struct {
	matcher Matcher
	fields  []string
	expr    string
}

// Compile builds a regular expression pattern. The number of capture groups must
// equal the number of fields.
func Compile(expr string, fields ...string) (*Pattern, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("pattern %q declares no fields", expr)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern expression: %w", err)
	}
	if re.NumSubexp() != len(fields) {
		return nil, &FieldMismatchError{Fields: fields, Groups: re.NumSubexp()}
	}
	return &Pattern{
		matcher: &regexMatcher{
			line:  re,
			chunk: regexp.MustCompile("(?s)" + expr),
			scan:  regexp.MustCompile("(?ms)" + expr),
		},
		fields: append([]string(nil), fields...),
		expr:   expr,
	}, nil
}

// MustCompile is like Compile but panics on error
func MustCompile(expr string, fields ...string) *Pattern {
	p, err := Compile(expr, fields...)
	if err != nil {
		panic(err)
	}
	return p
}

// Delimited builds a pattern that splits each line on sep. Lines without sep
// do not match; lines that split into the wrong number of parts are mismatches.
func Delimited(sep string, fields ...string) (*Pattern, error) {
	if sep == "" {
		return nil, errors.New("delimiter must not be empty")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("delimited pattern %q declares no fields", sep)
	}
	return &Pattern{
		matcher: delimitedMatcher(sep),
		fields:  append([]string(nil), fields...),
		expr:    "split:" + sep,
	}, nil
}

// New wraps a custom matcher
func New(m Matcher, fields ...string) (*Pattern, error) {
	if m == nil {
		return nil, errors.New("matcher is nil")
	}
	if len(fields) == 0 {
		return nil, errors.New("pattern declares no fields")
	}
	return &Pattern{matcher: m, fields: append([]string(nil), fields...), expr: fmt.Sprintf("%T", m)}, nil
}

var defaultPattern = MustCompile(DefaultExpr, DefaultFields...)

// Default returns the conventional four-field application log pattern
func Default() *Pattern {
	return defaultPattern
}

// Fields returns a copy of the declared field names
func (p *Pattern) Fields() []string {
	return append([]string(nil), p.fields...)
}

// HasField reports whether name is one of the declared fields
func (p *Pattern) HasField(name string) bool {
	for _, f := range p.fields {
		if f == name {
			return true
		}
	}
	return false
}

// HasTimeField reports whether the pattern captures the reserved time field
func (p *Pattern) HasTimeField() bool {
	return p.HasField(TimeField)
}

// SupportsMultiline reports whether the matcher can scan across lines
func (p *Pattern) SupportsMultiline() bool {
	_, ok := p.matcher.(ChunkMatcher)
	return ok
}

// Expr returns the source expression of the matcher
func (p *Pattern) Expr() string {
	return p.expr
}

func (p *Pattern) String() string {
	return fmt.Sprintf("[%s %s]", p.expr, strings.Join(p.fields, " "))
}

type regexMatcher struct {
	line  *regexp.Regexp
	chunk *regexp.Regexp // dot crosses newlines, anchors bind to the chunk
	scan  *regexp.Regexp // dot crosses newlines, anchors bind to lines
}

func (m *regexMatcher) Captures(line string) ([]string, bool) {
	sub := m.line.FindStringSubmatch(line)
	if sub == nil {
		return nil, false
	}
	return sub[1:], true
}

// Chunks returns the non-overlapping matches of the expression over the whole
// text, with dot crossing newlines and anchors binding to lines. When every
// match starts on a line the expression matches on its own, the lines after
// such a line continue its entry up to the next one instead, so a greedy
// message stops at the next entry.
func (m *regexMatcher) Chunks(text string) [][]string {
	matches := m.scan.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	for _, loc := range matches {
		if !m.line.MatchString(lineAt(text, loc[0])) {
			return submatches(text, matches)
		}
	}
	return m.group(text)
}

func (m *regexMatcher) group(text string) [][]string {
	var (
		chunks [][]string
		buf    []string
	)
	flush := func() {
		if len(buf) == 0 {
			return
		}
		entry := strings.TrimRight(strings.Join(buf, "\n"), "\r\n")
		sub := m.chunk.FindStringSubmatch(entry)
		if sub == nil {
			// continuation lines broke the match; the head line alone still matches
			sub = m.line.FindStringSubmatch(buf[0])
		}
		chunks = append(chunks, sub)
		buf = buf[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if m.line.MatchString(line) {
			flush()
			buf = append(buf, line)
			continue
		}
		if len(buf) > 0 {
			buf = append(buf, line)
		}
	}
	flush()
	return chunks
}

// lineAt returns the line of text containing offset i
func lineAt(text string, i int) string {
	start := strings.LastIndexByte(text[:i], '\n') + 1
	end := len(text)
	if j := strings.IndexByte(text[i:], '\n'); j >= 0 {
		end = i + j
	}
	return strings.TrimSuffix(text[start:end], "\r")
}

func submatches(text string, matches [][]int) [][]string {
	out := make([][]string, 0, len(matches))
	for _, loc := range matches {
		sub := make([]string, len(loc)/2)
		for i := range sub {
			if loc[2*i] >= 0 {
				sub[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		out = append(out, sub)
	}
	return out
}

type delimitedMatcher string

func (d delimitedMatcher) Captures(line string) ([]string, bool) {
	if !strings.Contains(line, string(d)) {
		return nil, false
	}
	parts := strings.Split(line, string(d))
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}
