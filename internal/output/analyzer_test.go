package output

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/logsift/internal/domain"
	"github.com/vburojevic/logsift/internal/resultset"
)

func TestAnalyzer_NormalizeMessage(t *testing.T) {
	a := NewAnalyzer(0)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "replaces hex addresses",
			input:    "Pointer at 0x7fff5fbff8c0 is invalid",
			expected: "Pointer at <addr> is invalid",
		},
		{
			name:     "replaces numbers",
			input:    "Failed after 123 attempts with code 456",
			expected: "Failed after <n> attempts with code <n>",
		},
		{
			name:     "replaces UUIDs",
			input:    "Device 12345678-1234-1234-1234-123456789abc not found",
			expected: "Device <uuid> not found",
		},
		{
			name:     "truncates long messages",
			input:    "This is a very long message that exceeds one hundred characters and should be truncated at the limit to prevent overly verbose output",
			expected: "This is a very long message that exceeds one hundred characters and should be truncated at the limit...",
		},
		{
			name:     "trims whitespace",
			input:    "  Message with spaces  ",
			expected: "Message with spaces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.normalizeMessage(tt.input))
		})
	}
}

func TestAnalyzer_Summarize(t *testing.T) {
	a := NewAnalyzer(0)

	t.Run("empty result set", func(t *testing.T) {
		s := a.Summarize(resultset.New(), "severity")
		assert.Equal(t, "summary", s.Type)
		assert.Equal(t, 0, s.Total)
		assert.Empty(t, s.Values)
		assert.Nil(t, s.WindowStart)
	})

	t.Run("orders by count then first seen", func(t *testing.T) {
		t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		rs := resultset.New(
			record("1", "application", "MyApp").WithTime(t0.Add(time.Minute)),
			record("2", "application", "Other").WithTime(t0),
			record("3", "application", "Third"),
			record("4", "application", "Other").WithTime(t0.Add(2*time.Minute)),
			record("5"),
		)
		s := a.Summarize(rs, "application")

		assert.Equal(t, 5, s.Total)
		assert.Equal(t, []ValueCount{
			{Value: "Other", Count: 2},
			{Value: "MyApp", Count: 1},
			{Value: "Third", Count: 1},
			{Value: "", Count: 1},
		}, s.Values)
		require.NotNil(t, s.WindowStart)
		require.NotNil(t, s.WindowEnd)
		assert.Equal(t, t0, *s.WindowStart)
		assert.Equal(t, t0.Add(2*time.Minute), *s.WindowEnd)
	})
}

func TestAnalyzer_DetectPatterns(t *testing.T) {
	a := NewAnalyzer(2)

	var records []*domain.Record
	for i := 0; i < 4; i++ {
		records = append(records, record("", "message", fmt.Sprintf("timeout after %dms", 100+i)))
	}
	for i := 0; i < 2; i++ {
		records = append(records, record("", "message", fmt.Sprintf("user %d logged in", i)))
	}
	records = append(records,
		record("", "message", "unique event"),
		record("", "message", "disk 0xdeadbeef full"),
		record("", "message", "disk 0xcafe full"),
		record("", "other", "no message field"),
	)

	patterns := a.DetectPatterns(records, "message")
	require.Len(t, patterns, 2)
	assert.Equal(t, "timeout after <n>ms", patterns[0].Pattern)
	assert.Equal(t, 4, patterns[0].Count)
	assert.Len(t, patterns[0].Samples, 3)
	assert.Equal(t, "user <n> logged in", patterns[1].Pattern)
	assert.Equal(t, 2, patterns[1].Count)
}

func BenchmarkSummarize(b *testing.B) {
	a := NewAnalyzer(0)
	rs := resultset.New()
	levels := []string{"INFO", "WARN", "ERROR"}
	for i := 0; i < 1000; i++ {
		rs.Append(record("line", "severity", levels[i%len(levels)]))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Summarize(rs, "severity")
	}
}
