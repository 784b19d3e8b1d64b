package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // location names resolve without a system zoneinfo

	"github.com/spf13/viper"
	"github.com/vburojevic/logsift/internal/domain"
	"github.com/vburojevic/logsift/internal/pattern"
)

// EnvPrefix prefixes every environment override (LOGSIFT_FORMAT, ...)
const EnvPrefix = "LOGSIFT"

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	// Search defaults
	Pattern        string   `mapstructure:"pattern"`
	TimeFormat     string   `mapstructure:"time_format"`
	Location       string   `mapstructure:"location"`
	Multiline      bool     `mapstructure:"multiline"`
	SeverityField  string   `mapstructure:"severity_field"`
	SeverityScale  []string `mapstructure:"severity_scale"`
	CommandTimeout string   `mapstructure:"command_timeout"`

	// Named patterns selectable with --pattern
	Patterns map[string]PatternConfig `mapstructure:"patterns"`
}

// PatternConfig describes a named pattern. Either Expr or Delimiter is set.
type PatternConfig struct {
	Expr       string   `mapstructure:"expr"`
	Delimiter  string   `mapstructure:"delimiter"`
	Fields     []string `mapstructure:"fields"`
	TimeFormat string   `mapstructure:"time_format"`
	Multiline  bool     `mapstructure:"multiline"`
}

// DefaultPatternName selects the built-in pattern
const DefaultPatternName = "default"

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:        "text",
		Pattern:       DefaultPatternName,
		Location:      "UTC",
		SeverityField: pattern.SeverityField,
		SeverityScale: append([]string(nil), domain.DefaultScale...),
	}
}

// Load reads the first config file found and applies LOGSIFT_* environment overrides.
// Config file search order (highest precedence first):
// 1. ./.logsift.yaml or ./.logsift.yml
// 2. ~/.logsift.yaml or ~/.logsift.yml
// 3. $XDG_CONFIG_HOME/logsift/config.yaml (or ~/.config/logsift/config.yaml)
// 4. /etc/logsift/config.yaml
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("format", d.Format)
	v.SetDefault("quiet", d.Quiet)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("pattern", d.Pattern)
	v.SetDefault("time_format", d.TimeFormat)
	v.SetDefault("location", d.Location)
	v.SetDefault("multiline", d.Multiline)
	v.SetDefault("severity_field", d.SeverityField)
	v.SetDefault("severity_scale", d.SeverityScale)
	v.SetDefault("command_timeout", d.CommandTimeout)
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	names := []string{".logsift.yaml", ".logsift.yml", "logsift.yaml", "logsift.yml"}

	var searchPaths []string
	if cwd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, cwd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, home)
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(configDir, "logsift"))
	}
	searchPaths = append(searchPaths, "/etc/logsift")

	for i, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		// config.yaml only counts inside dedicated config directories
		if i >= len(searchPaths)-2 {
			path := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	return findConfigFile()
}

// Validate checks values that can be checked without a source
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "ndjson", "table":
	default:
		return fmt.Errorf("invalid format %q (use text, ndjson or table)", c.Format)
	}
	if _, err := c.Loc(); err != nil {
		return err
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	for name, pc := range c.Patterns {
		if _, err := pc.Build(); err != nil {
			return fmt.Errorf("pattern %q: %w", name, err)
		}
	}
	return nil
}

// Loc resolves the configured location; empty means UTC
func (c *Config) Loc() (*time.Location, error) {
	if c.Location == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", c.Location, err)
	}
	return loc, nil
}

// Timeout parses command_timeout; empty means no bound
func (c *Config) Timeout() (time.Duration, error) {
	if c.CommandTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CommandTimeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid command_timeout %q (use a duration like 30s)", c.CommandTimeout)
	}
	return d, nil
}

// Scale returns the configured severity scale
func (c *Config) Scale() domain.Scale {
	if len(c.SeverityScale) == 0 {
		return domain.DefaultScale
	}
	return domain.Scale(c.SeverityScale)
}

// PatternNames returns "default" followed by the configured names in order
func (c *Config) PatternNames() []string {
	names := make([]string, 0, len(c.Patterns))
	for name := range c.Patterns {
		if name != DefaultPatternName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{DefaultPatternName}, names...)
}

// LookupPattern returns the named pattern config. "default" (or "") is the
// built-in pattern unless the config overrides it.
func (c *Config) LookupPattern(name string) (PatternConfig, error) {
	if name == "" {
		name = DefaultPatternName
	}
	if pc, ok := c.Patterns[name]; ok {
		return pc, nil
	}
	if name == DefaultPatternName {
		return PatternConfig{Expr: pattern.DefaultExpr, Fields: append([]string(nil), pattern.DefaultFields...)}, nil
	}
	return PatternConfig{}, fmt.Errorf("unknown pattern %q (available: %s)", name, strings.Join(c.PatternNames(), ", "))
}

// Build compiles the pattern
func (pc PatternConfig) Build() (*pattern.Pattern, error) {
	switch {
	case pc.Delimiter != "" && pc.Expr != "":
		return nil, fmt.Errorf("set either expr or delimiter, not both")
	case pc.Delimiter != "":
		return pattern.Delimited(pc.Delimiter, pc.Fields...)
	case pc.Expr == pattern.DefaultExpr && strings.Join(pc.Fields, ",") == strings.Join(pattern.DefaultFields, ","):
		return pattern.Default(), nil
	default:
		return pattern.Compile(pc.Expr, pc.Fields...)
	}
}
