package output

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/vburojevic/logsift/internal/domain"
	"github.com/vburojevic/logsift/internal/resultset"
)

// Analyzer groups matched records for the summary command
type Analyzer struct {
	replacers []replacer
	topN      int
}

type replacer struct {
	re   *regexp.Regexp
	repl string
}

// NewAnalyzer creates a new analyzer that reports at most topN recurring patterns
func NewAnalyzer(topN int) *Analyzer {
	if topN <= 0 {
		topN = 5
	}
	return &Analyzer{
		topN: topN,
		// UUIDs and addresses go before bare numbers so their digits survive
		replacers: []replacer{
			{regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`), "<uuid>"},
			{regexp.MustCompile(`0x[0-9a-fA-F]+`), "<addr>"},
			{regexp.MustCompile(`\d+`), "<n>"},
		},
	}
}

// ValueCount is the number of records sharing one field value
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// PatternMatch represents a recurring message shape
type PatternMatch struct {
	Pattern string   `json:"pattern"`
	Count   int      `json:"count"`
	Samples []string `json:"samples"`
}

// FieldSummary counts matched records per value of one field
type FieldSummary struct {
	Type          string         `json:"type"` // Always "summary"
	SchemaVersion int            `json:"schemaVersion"`
	QueryID       string         `json:"query_id,omitempty"`
	Field         string         `json:"field"`
	Total         int            `json:"total"`
	Values        []ValueCount   `json:"values"`
	WindowStart   *time.Time     `json:"window_start,omitempty"`
	WindowEnd     *time.Time     `json:"window_end,omitempty"`
	Patterns      []PatternMatch `json:"patterns,omitempty"`
}

// Summarize counts rs by the value of field. Values are ordered by count,
// ties keep the order they were first seen in.
func (a *Analyzer) Summarize(rs *resultset.ResultSet, field string) *FieldSummary {
	summary := &FieldSummary{
		Type:          "summary",
		SchemaVersion: SchemaVersion,
		Field:         field,
		Total:         rs.Len(),
		Values:        []ValueCount{},
	}
	if rs.Empty() {
		return summary
	}

	order, counts := rs.Counts(field)
	for _, v := range order {
		summary.Values = append(summary.Values, ValueCount{Value: v, Count: counts[v]})
	}
	sort.SliceStable(summary.Values, func(i, j int) bool {
		return summary.Values[i].Count > summary.Values[j].Count
	})

	for _, r := range rs.Records() {
		if !r.HasTime() {
			continue
		}
		if summary.WindowStart == nil || r.Time.Before(*summary.WindowStart) {
			summary.WindowStart = r.Time
		}
		if summary.WindowEnd == nil || r.Time.After(*summary.WindowEnd) {
			summary.WindowEnd = r.Time
		}
	}
	return summary
}

// normalizeMessage removes variable parts to group similar messages
func (a *Analyzer) normalizeMessage(msg string) string {
	for _, r := range a.replacers {
		msg = r.re.ReplaceAllString(msg, r.repl)
	}
	msg = strings.TrimSpace(msg)
	if len(msg) > 100 {
		msg = msg[:100] + "..."
	}
	return msg
}

// DetectPatterns finds values of field that recur once variable parts are masked
func (a *Analyzer) DetectPatterns(records []*domain.Record, field string) []PatternMatch {
	groups := make(map[string][]string)
	var order []string
	for _, r := range records {
		msg, ok := r.Get(field)
		if !ok || strings.TrimSpace(msg) == "" {
			continue
		}
		p := a.normalizeMessage(msg)
		if _, seen := groups[p]; !seen {
			order = append(order, p)
		}
		groups[p] = append(groups[p], msg)
	}

	var patterns []PatternMatch
	for _, p := range order {
		messages := groups[p]
		if len(messages) < 2 {
			continue
		}
		samples := messages
		if len(samples) > 3 {
			samples = samples[:3]
		}
		patterns = append(patterns, PatternMatch{Pattern: p, Count: len(messages), Samples: samples})
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Count > patterns[j].Count
	})
	if len(patterns) > a.topN {
		patterns = patterns[:a.topN]
	}
	return patterns
}
