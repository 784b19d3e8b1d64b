// Package timeparse turns timestamp strings into times by trying an ordered
// list of strategies and stopping at the first one that succeeds.
package timeparse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/benbjohnson/clock"
	"github.com/itchyny/timefmt-go"
)

// ErrUnparseable is returned when no strategy accepts a value
var ErrUnparseable = errors.New("unparseable time")

// Strategy parses a timestamp one way
type Strategy interface {
	Name() string
	Parse(value string) (time.Time, error)
}

// Format parses by an explicit format. Formats containing '%' are strftime
// style ("%Y-%m-%d %H:%M:%S"); anything else is a Go reference layout.
type Format struct {
	Layout   string
	Location *time.Location
}

func (f Format) Name() string { return "format:" + f.Layout }

func (f Format) Parse(value string) (time.Time, error) {
	loc := location(f.Location)
	if strings.Contains(f.Layout, "%") {
		return timefmt.ParseInLocation(value, f.Layout, loc)
	}
	return time.ParseInLocation(f.Layout, value, loc)
}

// Permissive guesses the layout of a value
type Permissive struct {
	Location *time.Location
}

func (Permissive) Name() string { return "permissive" }

func (p Permissive) Parse(value string) (time.Time, error) {
	return dateparse.ParseIn(value, location(p.Location))
}

// Chain is an ordered list of strategies
type Chain []Strategy

// New builds the chain for an optional explicit format: the format first,
// then the permissive fallback.
func New(format string, loc *time.Location) Chain {
	if format == "" {
		return Chain{Permissive{Location: loc}}
	}
	return Chain{Format{Layout: format, Location: loc}, Permissive{Location: loc}}
}

// Parse returns the result of the first strategy that accepts value
func (c Chain) Parse(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, s := range c {
		if t, err := s.Parse(value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MustParse is Parse with an error naming every strategy that was tried
func (c Chain) MustParse(value string) (time.Time, error) {
	if t, ok := c.Parse(value); ok {
		return t, nil
	}
	names := make([]string, len(c))
	for i, s := range c {
		names[i] = s.Name()
	}
	return time.Time{}, fmt.Errorf("%w: %q (tried %s)", ErrUnparseable, value, strings.Join(names, ", "))
}

// Relative interprets a duration such as "15m" or "2h" as that long before now
func Relative(value string, clk clock.Clock) (time.Time, bool) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d < 0 {
		return time.Time{}, false
	}
	return clk.Now().Add(-d), true
}

// Resolve accepts either an absolute time the chain understands or a relative
// duration. Absolute forms win so "2000-09-07" is never read as a duration.
func Resolve(value string, c Chain, clk clock.Clock) (time.Time, error) {
	if t, ok := c.Parse(value); ok {
		return t, nil
	}
	if t, ok := Relative(value, clk); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q (use a timestamp or a duration like 15m, 1h)", ErrUnparseable, value)
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
