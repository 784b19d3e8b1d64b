package cli

import (
	"fmt"
	"strings"

	"github.com/vburojevic/logsift/internal/output"
)

// PatternsCmd lists the patterns --pattern can select
type PatternsCmd struct{}

// PatternInfo describes one named pattern
type PatternInfo struct {
	Type       string   `json:"type"` // Always "pattern"
	Name       string   `json:"name"`
	Kind       string   `json:"kind"` // "regex" or "delimited"
	Expr       string   `json:"expr"`
	Fields     []string `json:"fields"`
	TimeFormat string   `json:"time_format,omitempty"`
	Multiline  bool     `json:"multiline,omitempty"`
	Default    bool     `json:"default,omitempty"`
}

// Run executes the patterns command
func (c *PatternsCmd) Run(globals *Globals) error {
	cfg := globals.Config

	var infos []PatternInfo
	for _, name := range cfg.PatternNames() {
		pc, err := cfg.LookupPattern(name)
		if err != nil {
			return emitError(globals, err)
		}
		p, err := pc.Build()
		if err != nil {
			return emitError(globals, wrapf(CodeInvalidPattern, err, "pattern %q", name))
		}
		info := PatternInfo{
			Type:       "pattern",
			Name:       name,
			Kind:       "regex",
			Expr:       p.Expr(),
			Fields:     p.Fields(),
			TimeFormat: pc.TimeFormat,
			Multiline:  pc.Multiline,
			Default:    name == cfg.Pattern,
		}
		if pc.Delimiter != "" {
			info.Kind = "delimited"
			info.Expr = pc.Delimiter
		}
		infos = append(infos, info)
	}

	switch globals.Format {
	case "ndjson":
		w := output.NewNDJSONWriter(globals.Stdout, globals.QueryID)
		for _, info := range infos {
			if err := w.WriteRaw(info); err != nil {
				return err
			}
		}
		return nil
	case "table":
		rows := make([][]string, len(infos))
		for i, info := range infos {
			rows[i] = []string{info.Name, info.Kind, strings.Join(info.Fields, ","), info.Expr}
		}
		return output.RenderTable(globals.Stdout, []string{"name", "kind", "fields", "expr"}, rows)
	}

	for _, info := range infos {
		marker := " "
		if info.Default {
			marker = "*"
		}
		fmt.Fprintf(globals.Stdout, "%s %s (%s)\n", marker, info.Name, info.Kind)
		fmt.Fprintf(globals.Stdout, "    fields: %s\n", strings.Join(info.Fields, ", "))
		fmt.Fprintf(globals.Stdout, "    expr:   %s\n", info.Expr)
		if info.TimeFormat != "" {
			fmt.Fprintf(globals.Stdout, "    time:   %s\n", info.TimeFormat)
		}
	}
	return nil
}
