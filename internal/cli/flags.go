package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/logsift/internal/config"
	"github.com/vburojevic/logsift/internal/domain"
	"github.com/vburojevic/logsift/internal/filter"
	"github.com/vburojevic/logsift/internal/resultset"
	"github.com/vburojevic/logsift/internal/search"
	"github.com/vburojevic/logsift/internal/source"
	"github.com/vburojevic/logsift/internal/timeparse"
)

// KongVars exposes config values as flag defaults
func KongVars(cfg *config.Config) kong.Vars {
	if cfg == nil {
		cfg = config.Default()
	}
	return kong.Vars{
		"config_format":  cfg.Format,
		"config_pattern": cfg.Pattern,
	}
}

// SourceFlags selects the log source
type SourceFlags struct {
	Source  string        `arg:"" optional:"" help:"Log file path, inline log text, or - for stdin"`
	File    string        `type:"path" help:"Read the log from a file"`
	Cmd     string        `help:"Run a shell command and search its stdout"`
	Text    string        `help:"Search literal log text"`
	Shell   string        `default:"sh" help:"Shell used to run --cmd"`
	Timeout time.Duration `help:"Kill --cmd after this long (default: command_timeout)"`
}

// Build resolves the flags to a source. stdin is read once so repeated
// passes see the same text.
func (f *SourceFlags) Build(globals *Globals) (source.Source, error) {
	set := 0
	for _, v := range []string{f.Source, f.File, f.Cmd, f.Text} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return nil, usageError(CodeNoSource, "pass exactly one of SOURCE, --file, --cmd or --text", "")
	}

	timeout := f.Timeout
	if timeout == 0 {
		t, err := globals.Config.Timeout()
		if err != nil {
			return nil, err
		}
		timeout = t
	}

	switch {
	case f.Source == "-":
		stdin := globals.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		text, err := source.ReadAll(source.Text("stdin"), stdin)
		if err != nil {
			return nil, err
		}
		return source.Text(text), nil
	case f.Source != "":
		return source.Guess(f.Source), nil
	case set == 0:
		return nil, usageError(CodeNoSource, "no log source given", "Pass a file, --cmd, --text or - for stdin")
	}
	return source.New(source.Descriptor{
		Text:    f.Text,
		File:    f.File,
		Command: f.Cmd,
		Shell:   f.Shell,
		Timeout: timeout,
	})
}

// PatternFlags selects how lines become records
type PatternFlags struct {
	Pattern    string   `short:"p" default:"${config_pattern}" help:"Named pattern (see 'logsift patterns')"`
	Expr       string   `short:"e" help:"Regex with one capture group per field"`
	Fields     []string `help:"Field names for --expr or --delimiter, in order"`
	Delimiter  string   `short:"d" help:"Split lines on this separator instead of matching a regex"`
	TimeFormat string   `help:"strftime layout of the time field, e.g. '%d/%b/%Y:%H:%M:%S'"`
	Location   string   `help:"Time zone for times without an offset (default: location)"`
	Multiline  bool     `short:"m" help:"Let records span lines"`
}

// Build compiles the pattern and returns the engine configuration around it
func (f *PatternFlags) Build(globals *Globals, src source.Source) (search.Config, error) {
	cfg := globals.Config

	var pc config.PatternConfig
	if f.Expr != "" || f.Delimiter != "" {
		pc = config.PatternConfig{Expr: f.Expr, Delimiter: f.Delimiter, Fields: f.Fields}
	} else {
		named, err := cfg.LookupPattern(f.Pattern)
		if err != nil {
			return search.Config{}, usageError(CodeInvalidPattern, err.Error(), "Run 'logsift patterns' to list them")
		}
		pc = named
	}
	p, err := pc.Build()
	if err != nil {
		return search.Config{}, wrapf(CodeInvalidPattern, err, "invalid pattern")
	}

	loc, err := cfg.Loc()
	if err != nil {
		return search.Config{}, err
	}
	if f.Location != "" {
		if loc, err = time.LoadLocation(f.Location); err != nil {
			return search.Config{}, usageError(CodeInvalidTime, fmt.Sprintf("invalid location %q", f.Location), "Use an IANA name such as Europe/Zagreb")
		}
	}

	return search.Config{
		Source:        src,
		Pattern:       p,
		TimeFormat:    firstNonEmpty(f.TimeFormat, pc.TimeFormat, cfg.TimeFormat),
		Location:      loc,
		Multiline:     f.Multiline || pc.Multiline || cfg.Multiline,
		SeverityField: cfg.SeverityField,
		Scale:         cfg.Scale(),
		Logger:        globals.Logger(),
	}, nil
}

// ScopeFlags restrict a search to a time window
type ScopeFlags struct {
	After     string   `help:"Keep records after this time (timestamp, or duration ago such as 15m)"`
	Before    string   `help:"Keep records before this time"`
	Around    string   `help:"Keep records around this time"`
	Within    []string `help:"Keep records between START,END"`
	Span      int      `help:"Window width in minutes for --after, --before and --around"`
	Inclusive bool     `help:"Make window boundaries inclusive"`
	Last      int      `help:"Keep the last N minutes, counted back from the newest record"`
}

// Active reports whether any scope flag is set
func (f *ScopeFlags) Active() bool {
	return f.After != "" || f.Before != "" || f.Around != "" || len(f.Within) > 0 || f.Last > 0
}

// Apply scopes e. Times resolve against the engine's time format, then as
// durations before now.
func (f *ScopeFlags) Apply(ctx context.Context, globals *Globals, e *search.Engine, cfg search.Config) (*search.Engine, error) {
	chain := timeparse.New(cfg.TimeFormat, cfg.Location)
	resolve := func(flag, value string) (time.Time, error) {
		t, err := timeparse.Resolve(value, chain, globals.Clock)
		if err != nil {
			return time.Time{}, fmt.Errorf("--%s: %w", flag, err)
		}
		return t, nil
	}

	var opts []search.ScopeOption
	if f.Span != 0 {
		opts = append(opts, search.Span(time.Duration(f.Span)*time.Minute))
	}
	if f.Inclusive {
		opts = append(opts, search.Inclusive())
	}

	if len(f.Within) > 0 {
		if len(f.Within) != 2 {
			return nil, fmt.Errorf("%w: --within takes START,END", search.ErrInvalidScope)
		}
		start, err := resolve("within", f.Within[0])
		if err != nil {
			return nil, err
		}
		end, err := resolve("within", f.Within[1])
		if err != nil {
			return nil, err
		}
		e = e.Within(start, end, opts...)
	}
	for _, step := range []struct {
		flag, value string
		apply       func(time.Time, ...search.ScopeOption) *search.Engine
	}{
		{"after", f.After, e.After},
		{"before", f.Before, e.Before},
		{"around", f.Around, e.Around},
	} {
		if step.value == "" {
			continue
		}
		t, err := resolve(step.flag, step.value)
		if err != nil {
			return nil, err
		}
		e = step.apply(t, opts...)
	}
	if f.Last > 0 {
		return e.Last(ctx, time.Duration(f.Last)*time.Minute)
	}
	if err := e.Err(); err != nil {
		return nil, err
	}
	return e, nil
}

// PredicateFlags select records. All given predicates must hold.
type PredicateFlags struct {
	For       []string `help:"Keep records whose field equals a value (field=value, repeatable)"`
	Like      []string `help:"Keep records whose field matches a case-insensitive regex (field=regex, repeatable)"`
	Exclude   []string `short:"x" help:"Drop lines matching this regex (repeatable)"`
	Severity  string   `short:"s" help:"Keep records at this severity"`
	Direction string   `default:"equal" enum:"equal,above,below,equal_and_above,equal_and_below" help:"Which side of --severity to keep"`
	Scale     []string `help:"Severity scale, lowest first (default: severity_scale)"`
	Where     []string `short:"w" help:"Boolean field expression, e.g. 'severity>=warn AND message~timeout' (repeatable)"`
	Tail      int      `help:"Return only the last N records"`
}

// Filter builds the combined predicate
func (f *PredicateFlags) Filter(cfg search.Config) (*filter.Chain, error) {
	chain := filter.NewChain()

	if len(f.For) > 0 {
		c, err := parseCriteria("for", f.For)
		if err != nil {
			return nil, err
		}
		chain.Add(filter.NewEqualFilter(c))
	}
	if len(f.Like) > 0 {
		c, err := parseCriteria("like", f.Like)
		if err != nil {
			return nil, err
		}
		like, err := filter.NewLikeFilter(c)
		if err != nil {
			return nil, wrapf(CodeInvalidFilter, err, "--like")
		}
		chain.Add(like)
	}
	for _, expr := range f.Exclude {
		ex, err := filter.NewExcludeFilter("", expr)
		if err != nil {
			return nil, wrapf(CodeInvalidFilter, err, "--exclude")
		}
		chain.Add(ex)
	}

	scale := cfg.Scale
	if len(f.Scale) > 0 {
		scale = domain.Scale(f.Scale)
	}
	if f.Severity != "" {
		dir, err := domain.ParseDirection(f.Direction)
		if err != nil {
			return nil, usageError(CodeInvalidFilter, err.Error(), "")
		}
		sev, err := filter.NewSeverityFilter(cfg.SeverityField, scale, f.Severity, dir)
		if err != nil {
			return nil, err
		}
		chain.Add(sev)
	}
	if len(f.Where) > 0 {
		where, err := filter.NewWhereFilter(f.Where, filter.WhereOptions{SeverityField: cfg.SeverityField, Scale: scale})
		if err != nil {
			return nil, &CLIError{Code: CodeInvalidFilter, Message: err.Error(), Hint: hintForFilter(err), Err: err}
		}
		chain.Add(where)
	}
	return chain, nil
}

func parseCriteria(flag string, pairs []string) (map[string]string, error) {
	c := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, usageError(CodeInvalidFilter, fmt.Sprintf("--%s %q: expected field=value", flag, pair), "")
		}
		c[strings.TrimSpace(name)] = value
	}
	return c, nil
}

// Query bundles the flags every searching command shares
type Query struct {
	SourceFlags    `embed:""`
	PatternFlags   `embed:""`
	ScopeFlags     `embed:""`
	PredicateFlags `embed:""`
}

// prepared is a scoped engine plus the predicate chain to evaluate on it
type prepared struct {
	engine *search.Engine
	filter *filter.Chain
	tail   int
	scoped bool
}

// prepare builds the engine, scopes it and compiles the predicates
func (q *Query) prepare(ctx context.Context, globals *Globals) (*prepared, error) {
	src, err := q.SourceFlags.Build(globals)
	if err != nil {
		return nil, err
	}
	cfg, err := q.PatternFlags.Build(globals, src)
	if err != nil {
		return nil, err
	}
	e, err := search.New(cfg)
	if err != nil {
		return nil, err
	}
	if q.ScopeFlags.Active() {
		if e, err = q.ScopeFlags.Apply(ctx, globals, e, cfg); err != nil {
			return nil, err
		}
	}
	f, err := q.PredicateFlags.Filter(cfg)
	if err != nil {
		return nil, err
	}
	return &prepared{engine: e, filter: f, tail: q.Tail, scoped: q.ScopeFlags.Active()}, nil
}

// results runs one pass over the source
func (p *prepared) results(ctx context.Context) (*resultset.ResultSet, error) {
	// A bare --tail keeps only N records in memory
	if p.tail > 0 && !p.scoped && p.filter.Len() == 0 {
		return p.engine.LastEntries(ctx, p.tail)
	}
	rs, err := p.engine.Select(ctx, p.filter)
	if err != nil {
		return nil, err
	}
	if p.tail > 0 && rs.Len() > p.tail {
		records := rs.Records()
		rs = resultset.New(records[len(records)-p.tail:]...)
	}
	return rs, nil
}

// run prepares the query and evaluates it once
func (q *Query) run(ctx context.Context, globals *Globals) (*resultset.ResultSet, error) {
	p, err := q.prepare(ctx, globals)
	if err != nil {
		return nil, err
	}
	return p.results(ctx)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
