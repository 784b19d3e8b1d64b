package domain

import "time"

// Field is one named value extracted from a log line
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is one structured result of matching a pattern against a line or chunk.
// Fields keep the order the pattern declared them in.
type Record struct {
	Fields []Field
	Line   string
	Time   *time.Time
}

// NewRecord zips names to values. Callers guarantee len(names) == len(values).
func NewRecord(names, values []string, line string) *Record {
	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{Name: name, Value: values[i]}
	}
	return &Record{Fields: fields, Line: line}
}

// Get returns the value of the named field
func (r *Record) Get(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the named field or "" when the record has no such field
func (r *Record) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Names returns the field names in declared order
func (r *Record) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Map returns the fields as a map, plus the raw line under "line"
func (r *Record) Map() map[string]string {
	m := make(map[string]string, len(r.Fields)+1)
	for _, f := range r.Fields {
		m[f.Name] = f.Value
	}
	m["line"] = r.Line
	return m
}

// HasTime reports whether a timestamp was resolved for the record
func (r *Record) HasTime() bool {
	return r != nil && r.Time != nil
}

// WithTime returns a copy of the record carrying the resolved timestamp
func (r *Record) WithTime(t time.Time) *Record {
	cp := *r
	cp.Time = &t
	return &cp
}
