package filter

import (
	"github.com/vburojevic/logsift/internal/domain"
)

// Pipeline applies the time window before the query predicate so callers can
// reuse a single matcher for a whole pass.
type Pipeline struct {
	window domain.TimeWindow
	query  Filter
}

func NewPipeline(window domain.TimeWindow, query Filter) *Pipeline {
	if query == nil {
		query = All
	}
	return &Pipeline{window: window, query: query}
}

// Match returns true when the record passes the window and the query.
func (p *Pipeline) Match(r *domain.Record) bool {
	if p == nil {
		return true
	}
	if r == nil || !p.window.Admits(r) {
		return false
	}
	return p.query.Match(r)
}
