package filter

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/vburojevic/logsift/internal/domain"
)

// EqualFilter keeps records whose fields equal every criterion exactly.
// A criterion naming a field the record lacks never matches.
type EqualFilter struct {
	criteria map[string]string
}

// NewEqualFilter creates an equality filter. Empty criteria match everything.
func NewEqualFilter(criteria map[string]string) *EqualFilter {
	cp := make(map[string]string, len(criteria))
	for k, v := range criteria {
		cp[k] = v
	}
	return &EqualFilter{criteria: cp}
}

// Match returns true if all criteria hold
func (f *EqualFilter) Match(r *domain.Record) bool {
	for name, want := range f.criteria {
		got, ok := r.Get(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

type fieldRegex struct {
	field string
	re    *regexp.Regexp
}

// LikeFilter keeps records whose fields contain a case-insensitive match of
// every criterion's regular expression
type LikeFilter struct {
	checks []fieldRegex
}

// NewLikeFilter compiles each criterion with the (?i) flag
func NewLikeFilter(criteria map[string]string) (*LikeFilter, error) {
	fields := make([]string, 0, len(criteria))
	for k := range criteria {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	f := &LikeFilter{}
	for _, field := range fields {
		re, err := regexp.Compile("(?i)" + criteria[field])
		if err != nil {
			return nil, fmt.Errorf("invalid expression for field %q: %w", field, err)
		}
		f.checks = append(f.checks, fieldRegex{field: field, re: re})
	}
	return f, nil
}

// NewLikeFilterFromRegexp keeps records whose field matches re as given
func NewLikeFilterFromRegexp(field string, re *regexp.Regexp) *LikeFilter {
	return &LikeFilter{checks: []fieldRegex{{field: field, re: re}}}
}

// Match returns true if every field matches its expression
func (f *LikeFilter) Match(r *domain.Record) bool {
	for _, c := range f.checks {
		v, ok := r.Get(c.field)
		if !ok || !c.re.MatchString(v) {
			return false
		}
	}
	return true
}

// ExcludeFilter drops records whose field matches a pattern
type ExcludeFilter struct {
	field string
	re    *regexp.Regexp
}

// NewExcludeFilter creates an exclusion filter from a pattern string.
// The pattern is matched against the raw line when field is empty.
func NewExcludeFilter(field, pattern string) (*ExcludeFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &ExcludeFilter{field: field, re: re}, nil
}

// Match returns true if the record does NOT match the exclusion pattern
func (f *ExcludeFilter) Match(r *domain.Record) bool {
	v := r.Line
	if f.field != "" {
		var ok bool
		if v, ok = r.Get(f.field); !ok {
			return true
		}
	}
	return !f.re.MatchString(v)
}
