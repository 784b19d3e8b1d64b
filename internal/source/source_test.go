package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func readAll(t *testing.T, src Source) (string, error) {
	t.Helper()
	rc, err := src.Open(context.Background())
	if err != nil {
		return "", err
	}
	text, readErr := ReadAll(src, rc)
	closeErr := rc.Close()
	if readErr != nil {
		return "", readErr
	}
	return text, closeErr
}

func TestText(t *testing.T) {
	src := Text("a\nb\n")
	for i := 0; i < 2; i++ {
		got, err := readAll(t, src)
		require.NoError(t, err)
		assert.Equal(t, "a\nb\n", got)
	}
	assert.Equal(t, "text(4 bytes)", src.String())
}

func TestFileRereadsGrowth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0o644))
	src := File{Path: path}

	got, err := readAll(t, src)
	require.NoError(t, err)
	assert.Equal(t, "one\n", got)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("two\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, err = readAll(t, src)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", got)
}

func TestFileMissing(t *testing.T) {
	src := File{Path: filepath.Join(t.TempDir(), "missing.log")}
	_, err := src.Open(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOpen))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "file:")
}

func TestCommand(t *testing.T) {
	t.Run("stdout is the log", func(t *testing.T) {
		got, err := readAll(t, Command{Line: "printf 'x\\ny\\n'"})
		require.NoError(t, err)
		assert.Equal(t, "x\ny\n", got)
	})

	t.Run("re-executed per open", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		require.NoError(t, os.WriteFile(path, []byte("one\n"), 0o644))
		src := Command{Line: "cat " + path}

		got, err := readAll(t, src)
		require.NoError(t, err)
		assert.Equal(t, "one\n", got)

		require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o644))
		got, err = readAll(t, src)
		require.NoError(t, err)
		assert.Equal(t, "one\ntwo\n", got)
	})

	t.Run("non-zero exit carries stderr", func(t *testing.T) {
		_, err := readAll(t, Command{Line: "echo broken >&2; exit 3"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOpen))
		assert.Contains(t, err.Error(), "exit status 3")
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("timeout", func(t *testing.T) {
		_, err := readAll(t, Command{Line: "exec sleep 5", Timeout: 50 * time.Millisecond})
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("close releases the command context", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		defer cancel()

		for _, timeout := range []time.Duration{0, time.Minute} {
			rc, err := Command{Line: "echo hi", Timeout: timeout}.Open(parent)
			require.NoError(t, err)
			_, err = io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())

			r := rc.(*commandReader)
			assert.ErrorIs(t, r.ctx.Err(), context.Canceled, "timeout %s", timeout)
			assert.NoError(t, parent.Err())
		}
	})

	t.Run("closing early kills the command", func(t *testing.T) {
		src := Command{Line: "yes"}
		rc, err := src.Open(context.Background())
		require.NoError(t, err)
		buf := make([]byte, 16)
		_, err = io.ReadFull(rc, buf)
		require.NoError(t, err)
		assert.NoError(t, rc.Close())
		assert.NoError(t, rc.Close())
	})

	t.Run("empty command", func(t *testing.T) {
		_, err := Command{Line: "  "}.Open(context.Background())
		assert.ErrorIs(t, err, ErrOpen)
	})
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		desc    Descriptor
		want    Source
		wantErr bool
	}{
		{"text", Descriptor{Text: "abc"}, Text("abc"), false},
		{"file", Descriptor{File: "/var/log/app.log"}, File{Path: "/var/log/app.log"}, false},
		{"command", Descriptor{Command: "cat x", Timeout: time.Second}, Command{Line: "cat x", Timeout: time.Second}, false},
		{"none", Descriptor{}, nil, true},
		{"ambiguous", Descriptor{Text: "a", File: "b"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.desc)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrOpen)
				assert.Contains(t, err.Error(), "unsupported source descriptor")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	assert.Equal(t, File{Path: path}, Guess(path))
	assert.Equal(t, Text("2000-09-07 14:07:41 INFO MyApp - x"), Guess("2000-09-07 14:07:41 INFO MyApp - x"))
	dir := t.TempDir()
	assert.Equal(t, Text(dir), Guess(dir), "directories are not files")
}

func TestScanLines(t *testing.T) {
	var lines []string
	err := ScanLines(Text(""), strings.NewReader("a\r\nb\n\nc"), func(line string) error {
		lines = append(lines, line)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "", "c"}, lines)

	stop := errors.New("stop")
	err = ScanLines(Text(""), strings.NewReader("a\nb"), func(string) error { return stop })
	assert.ErrorIs(t, err, stop)

	long := strings.Repeat("x", maxLineBytes+1)
	err = ScanLines(Text(long), strings.NewReader(long), func(string) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpen)
	assert.Contains(t, err.Error(), "line too long")
}
