package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vburojevic/logsift/internal/domain"
)

// LineField names the raw line in where expressions
const LineField = "line"

// WhereOptions tells clauses which field carries severity and how levels order
type WhereOptions struct {
	SeverityField string
	Scale         domain.Scale
}

func (o WhereOptions) withDefaults() WhereOptions {
	if o.SeverityField == "" {
		o.SeverityField = "severity"
	}
	if len(o.Scale) == 0 {
		o.Scale = domain.DefaultScale
	}
	return o
}

// WhereClause is one field comparison such as "severity>=warn" or "message~timeout".
// Supported operators: =, !=, ~, !~, >=, <=, ^, $
type WhereClause struct {
	Field    string
	Operator string
	Value    string

	regex    *regexp.Regexp // ~ and !~
	severity bool           // field is the severity field
	rank     int            // scale position of Value for severity >= and <=
	scale    domain.Scale
}

func newWhereClause(field, op, value string, opts WhereOptions) (*WhereClause, error) {
	wc := &WhereClause{Field: field, Operator: op, Value: value}
	switch op {
	case "~", "!~":
		re, err := regexp.Compile(value)
		if err != nil {
			return nil, fmt.Errorf("invalid regex in where expression: %w", err)
		}
		wc.regex = re
	}
	if field == opts.SeverityField {
		wc.severity = true
		wc.scale = opts.Scale
		if op == ">=" || op == "<=" {
			wc.rank = opts.Scale.Index(value)
			if wc.rank < 0 {
				return nil, &domain.UnknownSeverityError{Level: value, Scale: opts.Scale}
			}
		}
	}
	return wc, nil
}

// Match checks a record against the clause. Missing fields compare as "".
func (wc *WhereClause) Match(r *domain.Record) bool {
	v := wc.fieldValue(r)

	switch wc.Operator {
	case "=":
		if wc.severity {
			return strings.EqualFold(strings.TrimSpace(v), wc.Value)
		}
		return v == wc.Value
	case "!=":
		if wc.severity {
			return !strings.EqualFold(strings.TrimSpace(v), wc.Value)
		}
		return v != wc.Value
	case "~":
		return wc.regex.MatchString(v)
	case "!~":
		return !wc.regex.MatchString(v)
	case "^":
		return strings.HasPrefix(v, wc.Value)
	case "$":
		return strings.HasSuffix(v, wc.Value)
	case ">=", "<=":
		if wc.severity {
			return wc.compareSeverity(v)
		}
		return wc.compareNumeric(v)
	}
	return false
}

func (wc *WhereClause) fieldValue(r *domain.Record) string {
	if wc.Field == LineField {
		if v, ok := r.Get(LineField); ok {
			return v
		}
		return r.Line
	}
	return r.Value(wc.Field)
}

func (wc *WhereClause) compareSeverity(v string) bool {
	idx := wc.scale.Index(strings.TrimSpace(v))
	if idx < 0 {
		return false
	}
	if wc.Operator == ">=" {
		return idx >= wc.rank
	}
	return idx <= wc.rank
}

func (wc *WhereClause) compareNumeric(v string) bool {
	got, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return false
	}
	want, err := strconv.ParseFloat(wc.Value, 64)
	if err != nil {
		return false
	}
	if wc.Operator == ">=" {
		return got >= want
	}
	return got <= want
}

// WhereFilter applies one or more where expressions (AND logic)
type WhereFilter struct {
	expr whereNode
}

// NewWhereFilter parses each expression and joins them with AND.
// Expressions support AND/OR/NOT (also &&, ||, !), parentheses, quoted
// values and /regex/flags literals.
func NewWhereFilter(exprs []string, opts WhereOptions) (*WhereFilter, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	opts = opts.withDefaults()

	f := &WhereFilter{}
	for _, src := range exprs {
		node, err := parseWhere(src, opts)
		if err != nil {
			return nil, err
		}
		if f.expr == nil {
			f.expr = node
		} else {
			f.expr = andNode{f.expr, node}
		}
	}
	return f, nil
}

// Match returns true if the record satisfies every expression
func (f *WhereFilter) Match(r *domain.Record) bool {
	if f == nil || f.expr == nil {
		return true
	}
	return f.expr.Match(r)
}
