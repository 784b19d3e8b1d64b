package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/vburojevic/logsift/internal/domain"
	"github.com/vburojevic/logsift/internal/resultset"
)

func record(line string, kv ...string) *domain.Record {
	var names, values []string
	for i := 0; i+1 < len(kv); i += 2 {
		names = append(names, kv[i])
		values = append(values, kv[i+1])
	}
	return domain.NewRecord(names, values, line)
}

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestNDJSONWriter(t *testing.T) {
	t.Run("writes records with type, schemaVersion and query id", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewNDJSONWriter(&buf, "q-1")

		ts := time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)
		r := record("2024-01-15 10:30:45 INFO MyApp - <b>hi</b>", "time", "2024-01-15 10:30:45", "severity", "INFO", "message", "<b>hi</b>").WithTime(ts)
		require.NoError(t, w.WriteRecord(r))
		require.NoError(t, w.WriteRecord(record("second", "severity", "WARN")))
		require.NoError(t, w.Flush())

		out := lines(&buf)
		require.Len(t, out, 3)

		first := out[0]
		assert.Equal(t, "record", gjson.Get(first, "type").String())
		assert.Equal(t, int64(SchemaVersion), gjson.Get(first, "schemaVersion").Int())
		assert.Equal(t, "q-1", gjson.Get(first, "query_id").String())
		assert.Equal(t, int64(1), gjson.Get(first, "index").Int())
		assert.Equal(t, "2024-01-15T10:30:45Z", gjson.Get(first, "time").String())
		assert.Equal(t, "INFO", gjson.Get(first, "fields.severity").String())
		assert.Equal(t, "<b>hi</b>", gjson.Get(first, "fields.message").String())
		assert.Contains(t, first, "<b>hi</b>", "HTML is not escaped")

		second := out[1]
		assert.Equal(t, int64(2), gjson.Get(second, "index").Int())
		assert.False(t, gjson.Get(second, "time").Exists())

		done := out[2]
		assert.Equal(t, "done", gjson.Get(done, "type").String())
		assert.Equal(t, int64(2), gjson.Get(done, "matched").Int())
	})

	t.Run("error with hint", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewNDJSONWriter(&buf, "")
		require.NoError(t, w.WriteError("INVALID_PATTERN", "bad", "check the groups"))

		line := buf.String()
		assert.Equal(t, "error", gjson.Get(line, "type").String())
		assert.Equal(t, "INVALID_PATTERN", gjson.Get(line, "code").String())
		assert.Equal(t, "check the groups", gjson.Get(line, "hint").String())
		assert.False(t, gjson.Get(line, "query_id").Exists())
	})

	t.Run("every type carries schemaVersion", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewNDJSONWriter(&buf, "q")
		require.NoError(t, w.WriteRecord(record("x")))
		require.NoError(t, w.WriteSummary(&FieldSummary{Type: "summary", Field: "severity"}))
		require.NoError(t, w.WriteError("E", "m"))
		require.NoError(t, w.WriteMetadata("1.0.0", "abc", ""))
		require.NoError(t, w.Flush())

		for _, l := range lines(&buf) {
			assert.True(t, gjson.Get(l, "schemaVersion").Exists(), l)
			assert.NotEmpty(t, gjson.Get(l, "type").String(), l)
		}
	})
}

func TestTextWriter(t *testing.T) {
	r := record("2024-01-15 10:30:45 ERROR MyApp - boom", "severity", "ERROR", "message", "boom")

	t.Run("plain prints the raw line", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewTextWriter(&buf, Options{Plain: true})
		require.NoError(t, w.WriteRecord(r))
		assert.Equal(t, r.Line+"\n", buf.String())
	})

	t.Run("plain detail prints fields", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewTextWriter(&buf, Options{Plain: true, Detail: true})
		require.NoError(t, w.WriteRecord(r))
		assert.Equal(t, `severity="ERROR" message="boom"`+"\n", buf.String())
	})

	t.Run("styled output is tagged by severity", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewTextWriter(&buf, Options{})
		require.NoError(t, w.WriteRecord(r))
		assert.Contains(t, buf.String(), "ERR")
		assert.Contains(t, buf.String(), "boom")
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewTextWriter(&buf, Options{Plain: true})
		require.NoError(t, w.WriteError("SOURCE_OPEN_FAILED", "no such file", "check the path"))
		assert.Equal(t, "Error [SOURCE_OPEN_FAILED]: no such file\nHint: check the path\n", buf.String())
	})

	t.Run("summary", func(t *testing.T) {
		var buf bytes.Buffer
		w := NewTextWriter(&buf, Options{Plain: true})
		s := NewAnalyzer(0).Summarize(resultset.New(
			record("a", "severity", "INFO"),
			record("b", "severity", "ERROR"),
			record("c", "severity", "ERROR"),
		), "severity")
		require.NoError(t, w.WriteSummary(s))

		out := buf.String()
		assert.Contains(t, out, "Summary by severity")
		assert.Contains(t, out, "Total: 3")
		assert.Contains(t, out, "OK")
		assert.Less(t, strings.Index(out, "ERROR"), strings.Index(out, "INFO"))
	})
}

func TestTableWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTableWriter(&buf)
	require.NoError(t, w.WriteRecord(record("l1", "severity", "INFO", "application", "MyApp")))
	require.NoError(t, w.WriteRecord(record("l2", "severity", "WARN", "application", "MyOtherApp")))
	assert.Empty(t, buf.String(), "records render on flush")

	require.NoError(t, w.Flush())
	out := strings.ToUpper(buf.String())
	for _, want := range []string{"SEVERITY", "APPLICATION", "MYAPP", "MYOTHERAPP", "WARN"} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	require.NoError(t, w.Flush())
	assert.Empty(t, buf.String(), "flush drains the buffer")
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	for _, format := range Formats {
		w, err := NewWriter(format, &buf, Options{})
		require.NoError(t, err, format)
		assert.NotNil(t, w)
	}
	_, err := NewWriter("xml", &buf, Options{})
	assert.Error(t, err)
}

func TestSeverityStyle(t *testing.T) {
	scale := domain.Scale{"green", "yellow", "orange", "red"}

	assert.Equal(t, Styles.Error.Render("x"), SeverityStyle("ERROR", domain.DefaultScale).Render("x"))
	assert.Equal(t, Styles.Warn.Render("x"), SeverityStyle("warning", nil).Render("x"))
	assert.Equal(t, Styles.Trace.Render("x"), SeverityStyle("green", scale).Render("x"))
	assert.Equal(t, Styles.Fatal.Render("x"), SeverityStyle("red", scale).Render("x"))
	assert.Equal(t, Styles.Plain.Render("x"), SeverityStyle("purple", scale).Render("x"))

	assert.Equal(t, "WRN", SeverityIndicator("WARN"))
	assert.Equal(t, "ORA", SeverityIndicator("orange"))
	assert.Equal(t, "---", SeverityIndicator(""))
}
