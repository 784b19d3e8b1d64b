package search

import (
	"context"
	"fmt"
	"time"

	"github.com/vburojevic/logsift/internal/domain"
)

// ScopeOption adjusts a scoping call
type ScopeOption func(*scopeOptions)

type scopeOptions struct {
	span      time.Duration
	hasSpan   bool
	inclusive bool
}

// Span turns After and Before into a bounded window and sets the width of Around
func Span(d time.Duration) ScopeOption {
	return func(o *scopeOptions) {
		o.span = d
		o.hasSpan = true
	}
}

// Inclusive makes the window boundaries inclusive. The flag stays set until
// ResetScope or Around.
func Inclusive() ScopeOption {
	return func(o *scopeOptions) { o.inclusive = true }
}

func applyScope(opts []ScopeOption) (scopeOptions, error) {
	var o scopeOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.hasSpan && o.span < 0 {
		return o, fmt.Errorf("%w: negative span %s", ErrInvalidScope, o.span)
	}
	return o, nil
}

// After keeps records later than t. With Span(d) it is Within(t, t+d).
func (e *Engine) After(t time.Time, opts ...ScopeOption) *Engine {
	o, err := applyScope(opts)
	if err != nil {
		e.fail(err)
		return e
	}
	if o.hasSpan {
		return e.Within(t, t.Add(o.span), opts...)
	}
	e.state.Window.Start, e.state.Window.HasStart = t, true
	e.state.Window.Inclusive = e.state.Window.Inclusive || o.inclusive
	return e
}

// Before keeps records earlier than t. With Span(d) it is Within(t-d, t).
func (e *Engine) Before(t time.Time, opts ...ScopeOption) *Engine {
	o, err := applyScope(opts)
	if err != nil {
		e.fail(err)
		return e
	}
	if o.hasSpan {
		return e.Within(t.Add(-o.span), t, opts...)
	}
	e.state.Window.End, e.state.Window.HasEnd = t, true
	e.state.Window.Inclusive = e.state.Window.Inclusive || o.inclusive
	return e
}

// Around centers a window of Span(d) (default DefaultAroundSpan) on t.
// The window is always exclusive.
func (e *Engine) Around(t time.Time, opts ...ScopeOption) *Engine {
	o, err := applyScope(opts)
	if err != nil {
		e.fail(err)
		return e
	}
	span := DefaultAroundSpan
	if o.hasSpan {
		span = o.span
	}
	e.Within(t.Add(-span/2), t.Add(span/2))
	e.state.Window.Inclusive = false
	return e
}

// Within sets both bounds
func (e *Engine) Within(start, end time.Time, opts ...ScopeOption) *Engine {
	o, err := applyScope(opts)
	if err != nil {
		e.fail(err)
		return e
	}
	if start.After(end) {
		e.fail(fmt.Errorf("%w: start %s is after end %s", ErrInvalidScope, start.Format(time.RFC3339), end.Format(time.RFC3339)))
		return e
	}
	w := &e.state.Window
	w.Start, w.HasStart = start, true
	w.End, w.HasEnd = end, true
	w.Inclusive = w.Inclusive || o.inclusive
	return e
}

// Last scopes to entries after the most recent timed entry minus span.
// The source is read once to find that entry.
func (e *Engine) Last(ctx context.Context, span time.Duration) (*Engine, error) {
	if e.err != nil {
		return e, e.err
	}
	if span < 0 {
		return e, fmt.Errorf("%w: negative span %s", ErrInvalidScope, span)
	}
	if !e.state.Pattern.HasTimeField() {
		return e, ErrNoTimeField
	}
	var latest *time.Time
	err := e.each(ctx, func(r *domain.Record) error {
		if r.HasTime() {
			latest = r.Time
		}
		return nil
	})
	if err != nil {
		return e, err
	}
	if latest == nil {
		return e, ErrNoEntries
	}
	w := &e.state.Window
	w.Start, w.HasStart = latest.Add(-span), true
	w.End, w.HasEnd = time.Time{}, false
	return e, nil
}

// ResetScope clears the window, the inclusive flag and any pending scope error
func (e *Engine) ResetScope() *Engine {
	e.state.Window = domain.TimeWindow{}
	e.err = nil
	return e
}
