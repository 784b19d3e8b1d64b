// Package search runs fluent, re-reading queries over a log source.
//
// An Engine carries query state (pattern, time window, multiline flag, time
// format) across chained calls. Every terminal call performs one full pass
// over a freshly opened source, so content appended between two calls is
// seen by the second. An Engine is not safe for concurrent use.
package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/vburojevic/logsift/internal/domain"
	"github.com/vburojevic/logsift/internal/pattern"
	"github.com/vburojevic/logsift/internal/source"
	"github.com/vburojevic/logsift/internal/timeparse"
	"go.uber.org/zap"
)

var (
	// ErrNoEntries is returned by Last when no entry in the source has a parseable time
	ErrNoEntries = errors.New("no entries with a parseable time")
	// ErrNoTimeField is returned by Last when the pattern captures no time field
	ErrNoTimeField = errors.New("time scoping requires a pattern with a \"time\" field")
	// ErrNoSource is returned by terminal calls on an engine without a source
	ErrNoSource = errors.New("no source configured")
	// ErrInvalidScope wraps bad scope arguments
	ErrInvalidScope = errors.New("invalid scope")
)

// DefaultAroundSpan is the total width of an Around window when no span is given
const DefaultAroundSpan = 300 * time.Minute

// Config configures a new Engine. Zero values select the defaults.
type Config struct {
	Source        source.Source
	Pattern       *pattern.Pattern // default pattern.Default()
	TimeFormat    string           // explicit format tried before the permissive parser
	Location      *time.Location   // zone for timestamps without an offset, default UTC
	Multiline     bool
	SeverityField string       // default "severity"
	Scale         domain.Scale // default domain.DefaultScale
	Logger        *zap.Logger  // default no-op
}

// State is the query state carried between chained calls
type State struct {
	Pattern    *pattern.Pattern
	Window     domain.TimeWindow
	Multiline  bool
	TimeFormat string
}

// Engine evaluates queries against a source
type Engine struct {
	src      source.Source
	state    State
	location *time.Location
	times    timeparse.Chain
	sevField string
	scale    domain.Scale
	log      *zap.Logger

	// err holds the first scope error; terminal calls return it
	err error
}

// New creates an engine from cfg
func New(cfg Config) (*Engine, error) {
	p := cfg.Pattern
	if p == nil {
		p = pattern.Default()
	}
	if cfg.Multiline && !p.SupportsMultiline() {
		return nil, fmt.Errorf("pattern %s: %w", p.Expr(), pattern.ErrMultilineUnsupported)
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	sevField := cfg.SeverityField
	if sevField == "" {
		sevField = pattern.SeverityField
	}
	scale := cfg.Scale
	if len(scale) == 0 {
		scale = domain.DefaultScale
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		src: cfg.Source,
		state: State{
			Pattern:    p,
			Multiline:  cfg.Multiline,
			TimeFormat: cfg.TimeFormat,
		},
		location: loc,
		times:    timeparse.New(cfg.TimeFormat, loc),
		sevField: sevField,
		scale:    scale,
		log:      log,
	}, nil
}

// Search creates an engine over src with the default pattern
func Search(src source.Source) *Engine {
	e, _ := New(Config{Source: src}) // the default pattern always scans
	return e
}

// State returns a snapshot of the current query state
func (e *Engine) State() State {
	return e.state
}

// Source returns the configured source
func (e *Engine) Source() source.Source {
	return e.src
}

// Err returns the pending scope error, if any
func (e *Engine) Err() error {
	return e.err
}

// With replaces the pattern
func (e *Engine) With(p *pattern.Pattern) *Engine {
	if p == nil {
		e.fail(errors.New("pattern is nil"))
		return e
	}
	e.state.Pattern = p
	return e
}

// WithTimeFormat sets the explicit format tried before the permissive parser
func (e *Engine) WithTimeFormat(format string) *Engine {
	e.state.TimeFormat = format
	e.times = timeparse.New(format, e.location)
	return e
}

// WithMultiline switches between line and chunk scanning
func (e *Engine) WithMultiline(on bool) *Engine {
	e.state.Multiline = on
	return e
}

// ParseTime turns s into a time using the engine's format and location
func (e *Engine) ParseTime(s string) (time.Time, error) {
	return e.times.MustParse(s)
}

func (e *Engine) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}
