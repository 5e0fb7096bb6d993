package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "3 days 6 hours", Format(3*Day+6*time.Hour))
	assert.Equal(t, "1 hour 30 minutes", Format(90*time.Minute))
	assert.Equal(t, "0 seconds", Format(0))
}

func TestShorthand(t *testing.T) {
	for _, tt := range []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{-time.Hour, "0s"},
		{time.Microsecond, "0s"},
		{90 * time.Minute, "1h 30m"},
		{400 * Day, "1y 1mo 5d"},
		{Year + Month + Week + Day + time.Hour + time.Minute + time.Second + time.Millisecond, "1y 1mo 1w 1d 1h 1m 1s 1ms"},
		{1500 * time.Millisecond, "1s 500ms"},
	} {
		assert.Equal(t, tt.want, Shorthand(tt.in), tt.in.String())
	}
}

func TestShorthandRoundTrip(t *testing.T) {
	for _, d := range []time.Duration{
		time.Millisecond,
		59 * time.Second,
		3*Day + 6*time.Hour,
		2*Year + 11*Month + 3*Week + 6*Day + 23*time.Hour + 59*time.Minute + 999*time.Millisecond,
		106751 * Day,
	} {
		got, ok := TryParse(Shorthand(d))
		require.True(t, ok, Shorthand(d))
		assert.Equal(t, d, got, Shorthand(d))
	}
}
