package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vburojevic/logsift/internal/domain"
)

// Styles holds all lipgloss styles for text output
var Styles = struct {
	// Severity styles, lowest to highest
	Trace lipgloss.Style
	Debug lipgloss.Style
	Info  lipgloss.Style
	Warn  lipgloss.Style
	Error lipgloss.Style
	Fatal lipgloss.Style
	Plain lipgloss.Style

	// Component styles
	Timestamp lipgloss.Style
	FieldName lipgloss.Style

	// Summary styles
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style

	// TUI styles
	Title     lipgloss.Style
	StatusBar lipgloss.Style
	Selected  lipgloss.Style
	Help      lipgloss.Style
}{
	Trace: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),                            // Dark gray
	Debug: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),                            // Gray
	Info:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),                             // Cyan
	Warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),                            // Orange
	Error: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),                 // Red bold
	Fatal: lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true).Underline(true), // Magenta bold underline
	Plain: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),                            // White

	Timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	FieldName: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),

	Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("239")),
	Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Value:   lipgloss.NewStyle().Bold(true),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

	Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1),
	StatusBar: lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")).Padding(0, 1),
	Selected:  lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("39")),
	Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
}

var severityRamp = []*lipgloss.Style{&Styles.Trace, &Styles.Debug, &Styles.Info, &Styles.Warn, &Styles.Error, &Styles.Fatal}

// SeverityStyle returns the style for a severity value. Common level names
// map directly; other levels are placed on the ramp by their rank in scale.
func SeverityStyle(level string, scale domain.Scale) lipgloss.Style {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "verbose":
		return Styles.Trace
	case "debug":
		return Styles.Debug
	case "info", "notice":
		return Styles.Info
	case "warn", "warning":
		return Styles.Warn
	case "error", "err":
		return Styles.Error
	case "fatal", "critical", "panic", "fault":
		return Styles.Fatal
	}
	idx := scale.Index(level)
	if idx < 0 || len(scale) == 0 {
		return Styles.Plain
	}
	if len(scale) == 1 {
		return Styles.Info
	}
	return *severityRamp[idx*(len(severityRamp)-1)/(len(scale)-1)]
}

// SeverityIndicator returns a three letter tag for a severity value
func SeverityIndicator(level string) string {
	level = strings.TrimSpace(level)
	switch strings.ToLower(level) {
	case "":
		return "---"
	case "trace":
		return "TRC"
	case "debug":
		return "DBG"
	case "info":
		return "INF"
	case "warn", "warning":
		return "WRN"
	case "error":
		return "ERR"
	case "fatal":
		return "FTL"
	}
	tag := strings.ToUpper(level)
	if len(tag) > 3 {
		tag = tag[:3]
	}
	return tag
}

// StatusText returns styled text for the number of records a pass matched
func StatusText(matched int) string {
	if matched == 0 {
		return Styles.Warning.Render(statusLabel(matched))
	}
	return Styles.Success.Render(statusLabel(matched))
}

func statusLabel(matched int) string {
	if matched == 0 {
		return "NO MATCHES"
	}
	return "OK"
}
