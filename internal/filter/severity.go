package filter

import (
	"strings"

	"github.com/vburojevic/logsift/internal/domain"
)

// SeverityFilter keeps records whose severity field is one of the accepted levels
type SeverityFilter struct {
	field    string
	accepted domain.Scale
}

// NewSeverityFilter selects the part of scale that level and dir describe
func NewSeverityFilter(field string, scale domain.Scale, level string, dir domain.Direction) (*SeverityFilter, error) {
	accepted, err := scale.Select(level, dir)
	if err != nil {
		return nil, err
	}
	return &SeverityFilter{field: field, accepted: accepted}, nil
}

// Accepted returns the accepted levels
func (f *SeverityFilter) Accepted() domain.Scale { return f.accepted }

// Match compares the severity field against the accepted levels ignoring case
func (f *SeverityFilter) Match(r *domain.Record) bool {
	v, ok := r.Get(f.field)
	if !ok {
		return false
	}
	v = strings.TrimSpace(v)
	for _, level := range f.accepted {
		if strings.EqualFold(v, level) {
			return true
		}
	}
	return false
}
