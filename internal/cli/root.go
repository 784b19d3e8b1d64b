package cli

import (
	"io"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/vburojevic/logsift/internal/config"
	"github.com/vburojevic/logsift/internal/output"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLI is the root command structure for logsift
type CLI struct {
	// Global flags
	Format     string `short:"f" default:"${config_format}" enum:"text,ndjson,table" help:"Output format"`
	Quiet      bool   `short:"q" help:"Suppress non-result output"`
	Verbose    bool   `short:"v" help:"Log search passes to stderr"`
	ConfigFile string `name:"config" type:"path" help:"Read configuration from this file instead of the search path"`

	// Commands
	Search   SearchCmd   `cmd:"" default:"withargs" help:"Search a log source"`
	Summary  SummaryCmd  `cmd:"" help:"Count matched records per field value"`
	Patterns PatternsCmd `cmd:"" help:"List built-in and configured patterns"`
	Config   ConfigCmd   `cmd:"" help:"Show or manage configuration"`
	UI       UICmd       `cmd:"" help:"Browse search results interactively"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// Globals holds shared state for all commands
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
	// ConfigFile is the file Config was read from, empty for defaults
	ConfigFile string
	// Clock resolves relative times such as --after 15m
	Clock clock.Clock
	// QueryID tags NDJSON output of one invocation
	QueryID string
	// Styled enables lipgloss styling of text output
	Styled bool

	logger *zap.Logger
}

// NewGlobals creates a new Globals instance from CLI flags
func NewGlobals(cli *CLI) *Globals {
	return NewGlobalsWithConfig(cli, config.Default())
}

// NewGlobalsWithConfig creates a new Globals instance with config fallbacks
func NewGlobalsWithConfig(cli *CLI, cfg *config.Config) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	g := &Globals{
		Format:  cli.Format,
		Quiet:   cli.Quiet || cfg.Quiet,
		Verbose: cli.Verbose || cfg.Verbose,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
		Clock:   clock.New(),
		QueryID: uuid.NewString(),
		Styled:  isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
	if g.Format == "" {
		g.Format = cfg.Format
	}
	return g
}

// Logger returns the debug logger: a development logger on stderr when
// verbose, a no-op logger otherwise.
func (g *Globals) Logger() *zap.Logger {
	if g.logger != nil {
		return g.logger
	}
	if !g.Verbose {
		g.logger = zap.NewNop()
		return g.logger
	}
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(g.Stderr), zapcore.DebugLevel)
	g.logger = zap.New(core)
	return g.logger
}

// Writer returns the output writer for the selected format
func (g *Globals) Writer(detail bool) output.Writer {
	return g.writerTo(g.Stdout, detail)
}

func (g *Globals) writerTo(out io.Writer, detail bool) output.Writer {
	cfg := g.Config
	w, err := output.NewWriter(g.Format, out, output.Options{
		QueryID:       g.QueryID,
		SeverityField: cfg.SeverityField,
		Scale:         cfg.Scale(),
		Plain:         !g.Styled,
		Detail:        detail,
	})
	if err != nil {
		// kong validates --format, so only a hand-built Globals lands here
		return output.NewTextWriter(out, output.Options{Plain: true})
	}
	return w
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	w := globals.Writer(false)
	if err := w.WriteMetadata(Version, Commit, BuildDate); err != nil {
		return err
	}
	return nil
}

// Version information (set at build time)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = ""
)
