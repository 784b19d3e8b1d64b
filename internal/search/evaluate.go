package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vburojevic/logsift/internal/domain"
	"github.com/vburojevic/logsift/internal/filter"
	"github.com/vburojevic/logsift/internal/pattern"
	"github.com/vburojevic/logsift/internal/resultset"
	"github.com/vburojevic/logsift/internal/source"
	"go.uber.org/zap"
)

// Criteria maps field names to expected values
type Criteria map[string]string

// For keeps records whose fields equal every criterion. Nil or empty criteria keep everything.
func (e *Engine) For(ctx context.Context, c Criteria) (*resultset.ResultSet, error) {
	return e.evaluate(ctx, filter.NewEqualFilter(c))
}

// ForAll keeps every record that matches the pattern
func (e *Engine) ForAll(ctx context.Context) (*resultset.ResultSet, error) {
	return e.evaluate(ctx, filter.All)
}

// Like keeps records whose fields match every criterion as a case-insensitive regular expression
func (e *Engine) Like(ctx context.Context, c Criteria) (*resultset.ResultSet, error) {
	f, err := filter.NewLikeFilter(c)
	if err != nil {
		return nil, err
	}
	return e.evaluate(ctx, f)
}

// Matching is an alias for Like
func (e *Engine) Matching(ctx context.Context, c Criteria) (*resultset.ResultSet, error) {
	return e.Like(ctx, c)
}

// Severity keeps records whose severity lies in the part of scale that level
// and dir select. A nil scale uses the configured one.
func (e *Engine) Severity(ctx context.Context, level string, dir domain.Direction, scale domain.Scale) (*resultset.ResultSet, error) {
	if len(scale) == 0 {
		scale = e.scale
	}
	f, err := filter.NewSeverityFilter(e.sevField, scale, level, dir)
	if err != nil {
		return nil, err
	}
	return e.evaluate(ctx, f)
}

// Where keeps records matching every boolean field expression
func (e *Engine) Where(ctx context.Context, exprs ...string) (*resultset.ResultSet, error) {
	f, err := filter.NewWhereFilter(exprs, filter.WhereOptions{SeverityField: e.sevField, Scale: e.scale})
	if err != nil {
		return nil, err
	}
	if f == nil {
		return e.evaluate(ctx, filter.All)
	}
	return e.evaluate(ctx, f)
}

// Select keeps records accepted by f
func (e *Engine) Select(ctx context.Context, f filter.Filter) (*resultset.ResultSet, error) {
	if f == nil {
		f = filter.All
	}
	return e.evaluate(ctx, f)
}

// LastEntries returns the last n records that match the pattern, ignoring the window
func (e *Engine) LastEntries(ctx context.Context, n int) (*resultset.ResultSet, error) {
	if n <= 0 {
		return nil, fmt.Errorf("entry count must be positive, got %d", n)
	}
	ring := newRing(n)
	if err := e.each(ctx, func(r *domain.Record) error {
		ring.push(r)
		return nil
	}); err != nil {
		return nil, err
	}
	return resultset.New(ring.all()...), nil
}

func (e *Engine) evaluate(ctx context.Context, f filter.Filter) (*resultset.ResultSet, error) {
	if e.err != nil {
		return nil, e.err
	}
	pipe := filter.NewPipeline(e.state.Window, f)
	rs := resultset.New()
	if err := e.each(ctx, func(r *domain.Record) error {
		if pipe.Match(r) {
			rs.Append(r)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return rs, nil
}

// passStats is logged after every pass
type passStats struct {
	units   int
	records int
	untimed int
}

// each opens the source, parses every unit and hands the records to fn in
// source order. Times are resolved when the pattern has a time field.
func (e *Engine) each(ctx context.Context, fn func(*domain.Record) error) (err error) {
	if e.src == nil {
		return ErrNoSource
	}
	p := e.state.Pattern
	if e.state.Multiline && !p.SupportsMultiline() {
		return fmt.Errorf("pattern %s: %w", p.Expr(), pattern.ErrMultilineUnsupported)
	}

	started := time.Now()
	rc, err := e.src.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var stats passStats
	timed := p.HasTimeField()
	visit := func(r *domain.Record) error {
		stats.records++
		if timed {
			if t, ok := e.times.Parse(r.Value(pattern.TimeField)); ok {
				r = r.WithTime(t)
			} else {
				stats.untimed++
			}
		}
		return fn(r)
	}

	if e.state.Multiline {
		var text string
		if text, err = source.ReadAll(e.src, rc); err != nil {
			return err
		}
		err = p.ParseChunks(text, func(r *domain.Record) error {
			stats.units++
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			return visit(r)
		})
	} else {
		err = source.ScanLines(e.src, rc, func(line string) error {
			stats.units++
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			r, perr := p.Parse(line)
			if perr != nil || r == nil {
				return perr
			}
			return visit(r)
		})
	}

	fields := []zap.Field{
		zap.String("source", e.src.String()),
		zap.String("pattern", p.Expr()),
		zap.Bool("multiline", e.state.Multiline),
		zap.Int("units", stats.units),
		zap.Int("records", stats.records),
		zap.Int("misses", stats.units-stats.records),
		zap.Int("untimed", stats.untimed),
		zap.Duration("elapsed", time.Since(started)),
	}
	if err != nil {
		var mismatch *pattern.FieldMismatchError
		if errors.As(err, &mismatch) {
			fields = append(fields, zap.Strings("values", mismatch.Values))
		}
		e.log.Debug("search pass failed", append(fields, zap.Error(err))...)
		return err
	}
	e.log.Debug("search pass", fields...)
	return nil
}
