package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/vburojevic/logsift/internal/domain"
	"github.com/vburojevic/logsift/internal/pattern"
	"github.com/vburojevic/logsift/internal/search"
	"github.com/vburojevic/logsift/internal/source"
	"github.com/vburojevic/logsift/internal/timeparse"
	"go.uber.org/zap"
)

// Error codes emitted with failures
const (
	CodeInvalidPattern       = "INVALID_PATTERN"
	CodeInvalidFilter        = "INVALID_FILTER"
	CodeInvalidScope         = "INVALID_SCOPE"
	CodeInvalidTime          = "INVALID_TIME"
	CodeUnknownSeverity      = "UNKNOWN_SEVERITY"
	CodeMultilineUnsupported = "MULTILINE_UNSUPPORTED"
	CodeNoTimeField          = "NO_TIME_FIELD"
	CodeNoEntries            = "NO_ENTRIES"
	CodeFieldMismatch        = "FIELD_MISMATCH"
	CodeSourceOpenFailed     = "SOURCE_OPEN_FAILED"
	CodeNoSource             = "NO_SOURCE"
	CodeExpectationFailed    = "EXPECTATION_FAILED"
	CodeNoSuchRecord         = "NO_SUCH_RECORD"
	CodeInvalidArgument      = "INVALID_ARGUMENT"
	CodeNotInteractive       = "NOT_INTERACTIVE"
	CodeCanceled             = "CANCELED"
	CodeSearchFailed         = "SEARCH_FAILED"
)

// classify maps an error to a code and hint
func classify(err error) (string, string) {
	var cliErr *CLIError
	var mismatch *pattern.FieldMismatchError
	var unknown *domain.UnknownSeverityError
	var open *source.OpenError

	switch {
	case errors.As(err, &cliErr):
		return cliErr.Code, cliErr.Hint
	case errors.As(err, &mismatch):
		return CodeFieldMismatch, hintForMismatch(mismatch)
	case errors.As(err, &unknown):
		return CodeUnknownSeverity, hintForSeverity(unknown)
	case errors.Is(err, pattern.ErrMultilineUnsupported):
		return CodeMultilineUnsupported, "Multiline scanning needs a regex pattern; drop --delimiter or --multiline"
	case errors.Is(err, search.ErrNoTimeField):
		return CodeNoTimeField, "--last needs a pattern with a field named time"
	case errors.Is(err, search.ErrNoEntries):
		return CodeNoEntries, "No record carried a parseable time; check --time-format"
	case errors.Is(err, search.ErrInvalidScope):
		return CodeInvalidScope, ""
	case errors.Is(err, search.ErrNoSource):
		return CodeNoSource, "Pass a file, --cmd or --text"
	case errors.As(err, &open):
		return CodeSourceOpenFailed, hintForSource(open)
	case errors.Is(err, timeparse.ErrUnparseable):
		return CodeInvalidTime, "Use a timestamp such as 2024-01-15T10:00:00 or a duration such as 15m"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled, ""
	default:
		return CodeSearchFailed, ""
	}
}

// emitError writes err in the selected format and returns it for kong
func emitError(globals *Globals, err error) error {
	if err == nil {
		return nil
	}
	code, hint := classify(err)
	globals.Logger().Debug("command failed", zap.String("code", code), zap.Error(err))
	return outputErrorCommon(globals, code, err.Error(), hint)
}

// outputErrorCommon normalizes error emission across commands: NDJSON goes to
// stdout so consumers see failures in the result stream, text goes to stderr.
func outputErrorCommon(globals *Globals, code, message, hint string) error {
	out := globals.Stderr
	if globals.Format == "ndjson" {
		out = globals.Stdout
	}
	_ = globals.writerTo(out, false).WriteError(code, message, hint)
	return &CLIError{Code: code, Message: message, Hint: hint}
}

func wrapf(code string, err error, format string, args ...any) error {
	return &CLIError{Code: code, Message: fmt.Sprintf(format, args...) + ": " + err.Error(), Err: err}
}
