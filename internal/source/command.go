package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const maxStderrBytes = 4 * 1024

// Command is a shell command whose stdout is the log. It is re-executed on every Open.
type Command struct {
	Line    string
	Shell   string        // default "sh"
	Timeout time.Duration // zero means no bound
}

func (c Command) String() string {
	return "cmd:" + c.Line
}

// Open starts the command. Exit failures are reported by Close.
func (c Command) Open(ctx context.Context) (io.ReadCloser, error) {
	if strings.TrimSpace(c.Line) == "" {
		return nil, &OpenError{Source: c.String(), Err: errors.New("empty command")}
	}
	shell := c.Shell
	if shell == "" {
		shell = "sh"
	}

	var (
		cmdCtx context.Context
		cancel context.CancelFunc
	)
	if c.Timeout > 0 {
		cmdCtx, cancel = context.WithTimeout(ctx, c.Timeout)
	} else {
		cmdCtx, cancel = context.WithCancel(ctx)
	}

	cmd := exec.CommandContext(cmdCtx, shell, "-c", c.Line)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, &OpenError{Source: c.String(), Err: fmt.Errorf("failed to create pipe: %w", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, &OpenError{Source: c.String(), Err: fmt.Errorf("failed to create stderr pipe: %w", err)}
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, &OpenError{Source: c.String(), Err: fmt.Errorf("failed to start command: %w", err)}
	}

	r := &commandReader{src: c, cmd: cmd, stdout: stdout, ctx: cmdCtx, cancel: cancel}

	// Drain stderr so a chatty command never blocks on a full pipe.
	r.g.Go(func() error {
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || r.stderr.Len() >= maxStderrBytes {
				continue
			}
			if r.stderr.Len() > 0 {
				r.stderr.WriteByte('\n')
			}
			r.stderr.WriteString(line)
		}
		return sc.Err()
	})
	return r, nil
}

type commandReader struct {
	src    Command
	cmd    *exec.Cmd
	stdout io.ReadCloser
	ctx    context.Context
	cancel context.CancelFunc
	g      errgroup.Group
	stderr bytes.Buffer
	eof    bool
	closed bool
}

func (r *commandReader) Read(p []byte) (int, error) {
	n, err := r.stdout.Read(p)
	if errors.Is(err, io.EOF) {
		r.eof = true
	}
	return n, err
}

// Close reaps the process. A reader closed before EOF kills the command and
// reports no exit error for it.
func (r *commandReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	defer r.cancel()

	abandoned := !r.eof
	if abandoned {
		// closing our end makes a still-writing child fail with EPIPE
		_ = r.stdout.Close()
		r.cancel()
	}
	stderrErr := r.g.Wait()
	waitErr := r.cmd.Wait()

	if abandoned {
		return nil
	}
	if errors.Is(r.ctx.Err(), context.DeadlineExceeded) {
		return &OpenError{Source: r.src.String(), Err: fmt.Errorf("command timed out after %s: %w", r.src.Timeout, context.DeadlineExceeded)}
	}
	if waitErr != nil {
		if msg := r.stderr.String(); msg != "" {
			waitErr = fmt.Errorf("%w: %s", waitErr, msg)
		}
		return &OpenError{Source: r.src.String(), Err: fmt.Errorf("command failed: %w", waitErr)}
	}
	if stderrErr != nil {
		return &OpenError{Source: r.src.String(), Err: fmt.Errorf("stderr read error: %w", stderrErr)}
	}
	return nil
}
