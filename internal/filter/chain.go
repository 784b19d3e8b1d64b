// Package filter holds the record predicates a search applies after parsing.
package filter

import (
	"github.com/vburojevic/logsift/internal/domain"
)

// Filter determines if a record should be included
type Filter interface {
	// Match returns true if the record passes the filter
	Match(r *domain.Record) bool
}

// Func adapts a plain function to Filter
type Func func(r *domain.Record) bool

func (f Func) Match(r *domain.Record) bool { return f(r) }

// All accepts every record
var All Filter = Func(func(*domain.Record) bool { return true })

// Chain combines multiple filters (all must pass)
type Chain struct {
	filters []Filter
}

// NewChain creates a filter chain from multiple filters. Nil filters are skipped.
func NewChain(filters ...Filter) *Chain {
	c := &Chain{}
	for _, f := range filters {
		c.Add(f)
	}
	return c
}

// Match returns true only if all filters pass
func (c *Chain) Match(r *domain.Record) bool {
	for _, f := range c.filters {
		if !f.Match(r) {
			return false
		}
	}
	return true
}

// Add appends a filter to the chain
func (c *Chain) Add(f Filter) {
	if f != nil {
		c.filters = append(c.filters, f)
	}
}

// Len returns the number of filters in the chain
func (c *Chain) Len() int { return len(c.filters) }

// OrChain combines multiple filters (any must pass)
type OrChain struct {
	filters []Filter
}

// NewOrChain creates an OR filter chain
func NewOrChain(filters ...Filter) *OrChain {
	return &OrChain{filters: filters}
}

// Match returns true if any filter passes
func (c *OrChain) Match(r *domain.Record) bool {
	if len(c.filters) == 0 {
		return true
	}
	for _, f := range c.filters {
		if f.Match(r) {
			return true
		}
	}
	return false
}

// Not inverts a filter
type Not struct {
	Inner Filter
}

func (n Not) Match(r *domain.Record) bool { return !n.Inner.Match(r) }
