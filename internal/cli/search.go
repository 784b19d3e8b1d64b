package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vburojevic/logsift/internal/domain"
	"github.com/vburojevic/logsift/internal/resultset"
)

// SearchCmd prints the records a query matches
type SearchCmd struct {
	Query `embed:""`

	Pick   string `help:"Print only one record: 1, 2nd, third, last, -2"`
	Expect string `help:"Fail unless exactly this many records match: 0, 3, no, none"`
	Detail bool   `help:"Print fields as name=value pairs instead of the raw line"`
}

// Run executes the search command
func (c *SearchCmd) Run(globals *Globals) error {
	ctx, stop := signalContext()
	defer stop()

	// Validate the step arguments before running a pass
	expect := -1
	if c.Expect != "" {
		n, err := resultset.ParseCount(c.Expect)
		if err != nil {
			return emitError(globals, usageError(CodeInvalidArgument, err.Error(), ""))
		}
		expect = n
	}
	ordinal := 0
	if c.Pick != "" {
		n, err := resultset.ParseOrdinal(c.Pick)
		if err != nil {
			return emitError(globals, usageError(CodeInvalidArgument, err.Error(), ""))
		}
		ordinal = n
	}

	rs, err := c.Query.run(ctx, globals)
	if err != nil {
		return emitError(globals, err)
	}

	records := rs.Records()
	if ordinal != 0 {
		r := rs.Nth(ordinal)
		if r == nil {
			return emitError(globals, usageError(CodeNoSuchRecord,
				fmt.Sprintf("no record %s: %d matched", c.Pick, rs.Len()), ""))
		}
		records = []*domain.Record{r}
	}

	w := globals.Writer(c.Detail)
	for _, r := range records {
		if err := w.WriteRecord(r); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if globals.Format == "text" && !globals.Quiet {
		fmt.Fprintf(globals.Stderr, "%d matched\n", rs.Len())
	}
	if expect >= 0 && rs.Len() != expect {
		return emitError(globals, usageError(CodeExpectationFailed,
			fmt.Sprintf("expected %d records, matched %d", expect, rs.Len()), ""))
	}
	return nil
}

// signalContext is canceled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
