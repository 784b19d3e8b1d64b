// Package resultset holds the ordered output of a search pass.
package resultset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vburojevic/logsift/internal/domain"
)

// ResultSet is an ordered, duplicate-preserving sequence of records in the
// order they were encountered in the source
type ResultSet struct {
	records []*domain.Record
}

// New wraps records; the slice is not copied
func New(records ...*domain.Record) *ResultSet {
	return &ResultSet{records: records}
}

// Append adds a record at the end
func (rs *ResultSet) Append(r *domain.Record) {
	rs.records = append(rs.records, r)
}

// Len returns the number of records
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.records)
}

// Empty reports whether the set holds no records
func (rs *ResultSet) Empty() bool { return rs.Len() == 0 }

// Records returns a copy of the records
func (rs *ResultSet) Records() []*domain.Record {
	if rs == nil {
		return nil
	}
	return append([]*domain.Record(nil), rs.records...)
}

// First returns the first record or nil
func (rs *ResultSet) First() *domain.Record { return rs.Nth(1) }

// Last returns the last record or nil
func (rs *ResultSet) Last() *domain.Record { return rs.Nth(-1) }

// Nth returns the record at a 1-based ordinal. Negative ordinals count from
// the end (-1 is the last). Out of range ordinals and 0 return nil.
func (rs *ResultSet) Nth(ordinal int) *domain.Record {
	n := rs.Len()
	switch {
	case ordinal > 0 && ordinal <= n:
		return rs.records[ordinal-1]
	case ordinal < 0 && -ordinal <= n:
		return rs.records[n+ordinal]
	}
	return nil
}

// Values projects one field across all records, "" where a record lacks it
func (rs *ResultSet) Values(field string) []string {
	out := make([]string, rs.Len())
	for i := range out {
		out[i] = rs.records[i].Value(field)
	}
	return out
}

// Counts groups records by the value of field, keeping first-seen order of values
func (rs *ResultSet) Counts(field string) ([]string, map[string]int) {
	var order []string
	counts := make(map[string]int)
	for _, v := range rs.Values(field) {
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	return order, counts
}

var namedOrdinals = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"last": -1,
}

// ParseOrdinal accepts "first".."tenth", "last", "2nd", "3rd", "4th" and
// plain integers such as "2" or "-1"
func ParseOrdinal(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, ok := namedOrdinals[s]; ok {
		return n, nil
	}
	digits := s
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if strings.HasSuffix(s, suffix) {
			digits = strings.TrimSuffix(s, suffix)
			break
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n == 0 || (digits != s && n < 0) {
		return 0, fmt.Errorf("invalid ordinal %q (use first, last, 2nd, 3 or -1)", s)
	}
	return n, nil
}

// ParseCount accepts a non-negative integer or "no", meaning an expected empty result
func ParseCount(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "no" || s == "none" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid count %q (use a number or \"no\")", s)
	}
	return n, nil
}
