package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/logsift/internal/domain"
	"github.com/vburojevic/logsift/internal/pattern"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "default", cfg.Pattern)
	assert.Equal(t, "UTC", cfg.Location)
	assert.Equal(t, "severity", cfg.SeverityField)
	assert.Equal(t, domain.DefaultScale, cfg.Scale())
	assert.False(t, cfg.Quiet)
	assert.False(t, cfg.Verbose)
	assert.NoError(t, cfg.Validate())
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(orig))
	})
}

func TestLoad(t *testing.T) {
	t.Run("returns defaults when no config file exists", func(t *testing.T) {
		chdir(t, t.TempDir())
		t.Setenv("HOME", t.TempDir())
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "text", cfg.Format)
		assert.Equal(t, domain.DefaultScale, cfg.Scale())
	})

	t.Run("finds dotfile in working directory", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".logsift.yaml"), []byte("format: ndjson\n"), 0o644))

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "ndjson", cfg.Format)

		wd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(wd, ".logsift.yaml"), ConfigFile())
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, "format: table\nverbose: false\n")
		t.Setenv("LOGSIFT_FORMAT", "ndjson")
		t.Setenv("LOGSIFT_VERBOSE", "1")
		t.Setenv("LOGSIFT_SEVERITY_SCALE", "green,yellow,red")

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "ndjson", cfg.Format)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, domain.Scale{"green", "yellow", "red"}, cfg.Scale())
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logsift.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		path := writeConfig(t, `
format: table
quiet: true
pattern: access
time_format: "%d/%b/%Y:%H:%M:%S %z"
location: Europe/Zagreb
severity_field: level
severity_scale: [green, yellow, orange, red]
command_timeout: 30s
patterns:
  access:
    expr: '^(\S+) \S+ \S+ \[([^\]]+)\] "(\S+) (\S+)[^"]*" (\d{3})'
    fields: [host, time, method, path, status]
    time_format: "%d/%b/%Y:%H:%M:%S %z"
  csv:
    delimiter: ","
    fields: [time, severity, message]
`)
		cfg, err := LoadFromFile(path)
		require.NoError(t, err)

		assert.Equal(t, "table", cfg.Format)
		assert.True(t, cfg.Quiet)
		assert.Equal(t, "level", cfg.SeverityField)
		assert.Equal(t, domain.Scale{"green", "yellow", "orange", "red"}, cfg.Scale())

		loc, err := cfg.Loc()
		require.NoError(t, err)
		assert.Equal(t, "Europe/Zagreb", loc.String())

		timeout, err := cfg.Timeout()
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, timeout)

		assert.Equal(t, []string{"default", "access", "csv"}, cfg.PatternNames())

		pc, err := cfg.LookupPattern("access")
		require.NoError(t, err)
		p, err := pc.Build()
		require.NoError(t, err)
		assert.Equal(t, []string{"host", "time", "method", "path", "status"}, p.Fields())

		pc, err = cfg.LookupPattern("csv")
		require.NoError(t, err)
		p, err = pc.Build()
		require.NoError(t, err)
		assert.False(t, p.SupportsMultiline())
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := LoadFromFile("")
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		tests := []struct {
			content string
			message string
		}{
			{"format: xml\n", "invalid format"},
			{"location: Mars/Olympus\n", "invalid location"},
			{"command_timeout: soon\n", "invalid command_timeout"},
			{"patterns:\n  bad:\n    expr: '(a)(b)'\n    fields: [a]\n", `pattern "bad"`},
			{"patterns:\n  both:\n    expr: '(a)'\n    delimiter: ','\n    fields: [a]\n", "either expr or delimiter"},
		}
		for _, tt := range tests {
			_, err := LoadFromFile(writeConfig(t, tt.content))
			require.Error(t, err, tt.content)
			assert.Contains(t, err.Error(), tt.message)
		}
	})
}

func TestLookupPattern(t *testing.T) {
	cfg := Default()

	pc, err := cfg.LookupPattern("")
	require.NoError(t, err)
	p, err := pc.Build()
	require.NoError(t, err)
	assert.Same(t, pattern.Default(), p)

	_, err = cfg.LookupPattern("nginx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: default")
}
