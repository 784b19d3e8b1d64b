package cli

import (
	"github.com/vburojevic/logsift/internal/output"
)

// SummaryCmd counts matched records per value of a field
type SummaryCmd struct {
	Query `embed:""`

	By           string `short:"b" default:"severity" help:"Field to group by"`
	Recurring    bool   `help:"Also report recurring message shapes (numbers and ids masked)"`
	MessageField string `default:"message" help:"Field inspected by --recurring"`
	Top          int    `default:"5" help:"Number of recurring shapes to report"`
}

// Run executes the summary command
func (c *SummaryCmd) Run(globals *Globals) error {
	ctx, stop := signalContext()
	defer stop()

	rs, err := c.Query.run(ctx, globals)
	if err != nil {
		return emitError(globals, err)
	}

	analyzer := output.NewAnalyzer(c.Top)
	summary := analyzer.Summarize(rs, c.By)
	if c.Recurring {
		summary.Patterns = analyzer.DetectPatterns(rs.Records(), c.MessageField)
	}

	w := globals.Writer(false)
	if err := w.WriteSummary(summary); err != nil {
		return err
	}
	return nil
}
