package timeparse

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainParse(t *testing.T) {
	want := time.Date(2000, 9, 7, 14, 7, 41, 0, time.UTC)

	tests := []struct {
		name   string
		format string
		value  string
		want   time.Time
		ok     bool
	}{
		{"permissive only", "", "2000-09-07 14:07:41", want, true},
		{"permissive rfc3339", "", "2000-09-07T14:07:41Z", want, true},
		{"strftime format", "%m-%d-%Y %H:%M:%S", "09-07-2000 14:07:41", want, true},
		{"go layout", "02/01/2006 15:04:05", "07/09/2000 14:07:41", want, true},
		{"format miss falls back to permissive", "%d.%m.%Y", "2000-09-07 14:07:41", want, true},
		{"nothing accepts", "%Y", "not a time", time.Time{}, false},
		{"blank", "", "   ", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := New(tt.format, time.UTC).Parse(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestChainOrder(t *testing.T) {
	// Day-first explicit format must win over the permissive month-first guess.
	c := New("%d/%m/%Y", time.UTC)
	got, ok := c.Parse("03/04/2021")
	require.True(t, ok)
	assert.Equal(t, time.April, got.Month())
	assert.Equal(t, 3, got.Day())

	require.Len(t, c, 2)
	assert.Equal(t, "format:%d/%m/%Y", c[0].Name())
	assert.Equal(t, "permissive", c[1].Name())
}

func TestChainLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	got, ok := New("", loc).Parse("2000-09-07 14:07:41")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2000, 9, 7, 12, 7, 41, 0, time.UTC)))
}

func TestMustParse(t *testing.T) {
	_, err := New("%Y", time.UTC).MustParse("garbage")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnparseable))
	assert.Contains(t, err.Error(), "format:%Y, permissive")
}

func TestRelative(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))

	got, ok := Relative("15m", clk)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 15, 0, 0, time.UTC), got)

	_, ok = Relative("-5m", clk)
	assert.False(t, ok)
	_, ok = Relative("soon", clk)
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
	c := New("", time.UTC)

	got, err := Resolve("2000-09-07 14:07:41", c, clk)
	require.NoError(t, err)
	assert.Equal(t, 2000, got.Year())

	got, err = Resolve("1h", c, clk)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC), got)

	_, err = Resolve("whenever", c, clk)
	assert.ErrorIs(t, err, ErrUnparseable)
}
