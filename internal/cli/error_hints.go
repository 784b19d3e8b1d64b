package cli

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/vburojevic/logsift/internal/domain"
	"github.com/vburojevic/logsift/internal/pattern"
	"github.com/vburojevic/logsift/internal/source"
)

func hintForMismatch(err *pattern.FieldMismatchError) string {
	if err == nil {
		return ""
	}
	return "The pattern captured a different number of values than --fields names; add a name per group or make extra groups non-capturing with (?:...)"
}

func hintForSeverity(err *domain.UnknownSeverityError) string {
	if err == nil || len(err.Scale) == 0 {
		return ""
	}
	return "Known levels: " + strings.Join(err.Scale, ", ") + " (set severity_scale or --scale for custom levels)"
}

func hintForSource(err *source.OpenError) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, os.ErrNotExist) {
		return "Check the path; pass --text to search a literal string"
	}
	if errors.Is(err, os.ErrPermission) {
		return "The file is not readable by the current user"
	}
	if isCommandNotFound(err, "") {
		return "The command was not found; it runs through sh -c, so check your PATH"
	}
	msg := err.Error()
	if strings.Contains(msg, "timed out") {
		return "Raise command_timeout or --timeout, or make the command terminate"
	}
	if strings.Contains(msg, "command failed") {
		return "The command exited with an error; run it directly to see its output"
	}
	return ""
}

func hintForFilter(err error) string {
	if err == nil {
		return ""
	}
	return "If the filter contains spaces/parentheses, quote it. Example: --where '(severity=error OR severity=fatal) AND message~timeout' (regex literal: message~/timeout|crash/i)"
}

func isCommandNotFound(err error, name string) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, exec.ErrNotFound) && name == "" {
		return true
	}

	var ee *exec.Error
	if errors.As(err, &ee) && strings.EqualFold(ee.Name, name) && errors.Is(ee.Err, exec.ErrNotFound) {
		return true
	}

	// sh reports a missing command through stderr with exit status 127
	var exit *exec.ExitError
	if errors.As(err, &exit) && exit.ExitCode() == 127 {
		return true
	}

	msg := err.Error()
	if strings.Contains(msg, "executable file not found") && strings.Contains(msg, name) {
		return true
	}
	return false
}
