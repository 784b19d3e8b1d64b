package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vburojevic/logsift/internal/config"
)

// ConfigCmd shows or manages configuration
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"withargs" help:"Show current configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show configuration file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate sample configuration file"`
}

// ConfigShowCmd shows current configuration
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if globals.Format == "ndjson" {
		output := map[string]interface{}{
			"type":            "config",
			"format":          cfg.Format,
			"quiet":           cfg.Quiet,
			"verbose":         cfg.Verbose,
			"pattern":         cfg.Pattern,
			"time_format":     cfg.TimeFormat,
			"location":        cfg.Location,
			"multiline":       cfg.Multiline,
			"severity_field":  cfg.SeverityField,
			"severity_scale":  cfg.Scale(),
			"command_timeout": cfg.CommandTimeout,
			"patterns":        cfg.PatternNames(),
			"config_file":     globals.ConfigFile,
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(output)
	}

	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintf(globals.Stdout, "  format:          %s\n", cfg.Format)
	fmt.Fprintf(globals.Stdout, "  quiet:           %v\n", cfg.Quiet)
	fmt.Fprintf(globals.Stdout, "  verbose:         %v\n", cfg.Verbose)
	fmt.Fprintf(globals.Stdout, "  pattern:         %s\n", cfg.Pattern)
	fmt.Fprintf(globals.Stdout, "  time_format:     %s\n", cfg.TimeFormat)
	fmt.Fprintf(globals.Stdout, "  location:        %s\n", cfg.Location)
	fmt.Fprintf(globals.Stdout, "  multiline:       %v\n", cfg.Multiline)
	fmt.Fprintf(globals.Stdout, "  severity_field:  %s\n", cfg.SeverityField)
	fmt.Fprintf(globals.Stdout, "  severity_scale:  %s\n", strings.Join(cfg.Scale(), ", "))
	if cfg.CommandTimeout != "" {
		fmt.Fprintf(globals.Stdout, "  command_timeout: %s\n", cfg.CommandTimeout)
	}
	fmt.Fprintf(globals.Stdout, "  patterns:        %s\n", strings.Join(cfg.PatternNames(), ", "))

	if globals.ConfigFile != "" {
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintf(globals.Stdout, "Loaded from: %s\n", globals.ConfigFile)
	}

	return nil
}

// ConfigPathCmd shows config file path
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := globals.ConfigFile

	if globals.Format == "ndjson" {
		output := map[string]interface{}{
			"type": "config_path",
			"path": path,
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(output)
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintln(globals.Stdout, "Create one at:")
		fmt.Fprintln(globals.Stdout, "  ./.logsift.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.logsift.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.config/logsift/config.yaml")
	} else {
		fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	}

	return nil
}

// ConfigGenerateCmd generates a sample configuration file
type ConfigGenerateCmd struct{}

// SampleConfig is the annotated configuration printed by config generate
const SampleConfig = `# logsift configuration file
# Place this file at ./.logsift.yaml, ~/.logsift.yaml or ~/.config/logsift/config.yaml
# Every key can be overridden with a LOGSIFT_ environment variable, e.g. LOGSIFT_FORMAT=ndjson

# Output format: "text" (default), "ndjson" or "table"
format: text

# Suppress non-result output
quiet: false

# Log search passes to stderr
verbose: false

# Pattern used when --pattern is not given
pattern: default

# strftime layout of the time field; empty tries common layouts
# time_format: "%Y-%m-%d %H:%M:%S"

# Time zone for times without an offset
location: UTC

# Let records span lines
multiline: false

# Field holding the severity and its levels, lowest first
severity_field: severity
severity_scale: [trace, debug, info, warn, error, fatal]

# Kill --cmd sources that run longer than this
# command_timeout: 30s

# Named patterns selectable with --pattern
patterns:
  access:
    expr: '^(\S+) \S+ \S+ \[([^\]]+)\] "(\S+) (\S+)[^"]*" (\d{3})'
    fields: [host, time, method, path, status]
    time_format: "%d/%b/%Y:%H:%M:%S %z"
  # csv:
  #   delimiter: ","
  #   fields: [time, severity, message]
`

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	io.WriteString(globals.Stdout, SampleConfig)
	return nil
}
