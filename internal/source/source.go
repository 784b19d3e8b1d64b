// Package source provides the re-openable log sources a search reads from.
package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ErrOpen matches every failure to open or read a source
var ErrOpen = errors.New("could not open source")

// OpenError wraps the cause of a source failure
type OpenError struct {
	Source string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("could not open source %s: %v", e.Source, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrOpen) true for every OpenError
func (e *OpenError) Is(target error) bool { return target == ErrOpen }

// Source yields the raw text of a log. Every Open starts from the beginning
// so content appended between two opens is observed by the second.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// Descriptor selects exactly one kind of source
type Descriptor struct {
	Text    string
	File    string
	Command string

	// Command options
	Shell   string
	Timeout time.Duration
}

// New builds the source a descriptor names
func New(d Descriptor) (Source, error) {
	set := 0
	for _, v := range []string{d.Text, d.File, d.Command} {
		if v != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return nil, &OpenError{Source: "<none>", Err: errors.New("unsupported source descriptor: no text, file or command given")}
	case set > 1:
		return nil, &OpenError{Source: "<ambiguous>", Err: errors.New("unsupported source descriptor: give exactly one of text, file or command")}
	case d.File != "":
		return File{Path: d.File}, nil
	case d.Command != "":
		return Command{Line: d.Command, Shell: d.Shell, Timeout: d.Timeout}, nil
	default:
		return Text(d.Text), nil
	}
}

// Guess treats s as a file path when such a file exists and as log text otherwise
func Guess(s string) Source {
	if !strings.ContainsAny(s, "\n") {
		if fi, err := os.Stat(s); err == nil && !fi.IsDir() {
			return File{Path: s}
		}
	}
	return Text(s)
}

// Text is an in-memory log
type Text string

func (t Text) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(t))), nil
}

func (t Text) String() string {
	return fmt.Sprintf("text(%d bytes)", len(t))
}

// File is a log file, reopened from the start on every Open
type File struct {
	Path string
}

func (f File) Open(context.Context) (io.ReadCloser, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, &OpenError{Source: f.String(), Err: err}
	}
	return file, nil
}

func (f File) String() string {
	return "file:" + f.Path
}

const (
	initialLineBytes = 64 * 1024
	maxLineBytes     = 1024 * 1024
)

// ScanLines calls fn for every line of r. Read failures are wrapped as source errors.
func ScanLines(src Source, r io.Reader, fn func(line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, initialLineBytes), maxLineBytes)
	for sc.Scan() {
		if err := fn(sc.Text()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			err = fmt.Errorf("line too long (>%d bytes): %w", maxLineBytes, err)
		}
		return &OpenError{Source: src.String(), Err: err}
	}
	return nil
}

// ReadAll returns the full text of r
func ReadAll(src Source, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", &OpenError{Source: src.String(), Err: err}
	}
	return string(b), nil
}
