package duration

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	str2duration "github.com/xhit/go-str2duration/v2"
)

func TestTryParse(t *testing.T) {
	for _, tt := range []struct {
		desc  string
		input string
		want  time.Duration
		ok    bool
	}{{
		desc:  "days and hours",
		input: "3d6h",
		want:  3*Day + 6*time.Hour,
		ok:    true,
	}, {
		desc:  "every unit separated by spaces",
		input: "1y 1mo 1w 1d 1h 1m 1s 1ms",
		want:  365*Day + 30*Day + 7*Day + Day + time.Hour + time.Minute + time.Second + time.Millisecond,
		ok:    true,
	}, {
		desc:  "multi digit values",
		input: "90m",
		want:  90 * time.Minute,
		ok:    true,
	}, {
		desc:  "repeated unit accumulates",
		input: "1h1h",
		want:  2 * time.Hour,
		ok:    true,
	}, {
		desc:  "units in any order",
		input: "5s2w",
		want:  2*Week + 5*time.Second,
		ok:    true,
	}, {
		desc:  "whitespace between digits and unit",
		input: "\t4 d\n",
		want:  4 * Day,
		ok:    true,
	}, {
		desc:  "whitespace inside a number",
		input: "1 2h",
		want:  12 * time.Hour,
		ok:    true,
	}, {
		desc:  "zero value",
		input: "0s",
		want:  0,
		ok:    true,
	}, {
		desc:  "trailing digits are dropped",
		input: "3d6",
		want:  3 * Day,
		ok:    true,
	}, {
		desc:  "digits only",
		input: "42",
		want:  0,
		ok:    true,
	}, {
		desc:  "unit without digits",
		input: "h",
		want:  0,
		ok:    true,
	}, {
		desc:  "minute followed by separated s",
		input: "3m s",
		want:  3 * time.Minute,
		ok:    true,
	}, {
		desc:  "largest representable day count",
		input: "106751d",
		want:  106751 * Day,
		ok:    true,
	}, {
		desc:  "letters",
		input: "asdf",
	}, {
		desc:  "empty",
		input: "",
	}, {
		desc:  "whitespace only",
		input: "   ",
	}, {
		desc:  "bad unit after valid prefix",
		input: "3d6x",
	}, {
		desc:  "uppercase unit",
		input: "3D",
	}, {
		desc:  "separated o is not a month",
		input: "2m o",
	}, {
		desc:  "negative sign",
		input: "-5m",
	}, {
		desc:  "fractional value",
		input: "1.5h",
	}, {
		desc:  "non ascii digit",
		input: "٣d",
	}, {
		desc:  "total overflows",
		input: "106752d",
	}, {
		desc:  "digits overflow",
		input: "99999999999999999999s",
	}, {
		desc:  "sum overflows",
		input: "106751d 106751d",
	}} {
		t.Run(tt.desc, func(t *testing.T) {
			got, ok := TryParse(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTryParseMDisambiguation(t *testing.T) {
	for _, n := range []int64{1, 2, 7, 30, 365} {
		minutes, ok := TryParse(fmt.Sprintf("%dm", n))
		require.True(t, ok)
		months, ok := TryParse(fmt.Sprintf("%dmo", n))
		require.True(t, ok)
		millis, ok := TryParse(fmt.Sprintf("%dms", n))
		require.True(t, ok)

		assert.Equal(t, time.Duration(n)*time.Minute, minutes)
		assert.Equal(t, time.Duration(n)*Month, months)
		assert.Equal(t, time.Duration(n)*time.Millisecond, millis)
		assert.NotEqual(t, minutes, months)
		assert.NotEqual(t, months, millis)
		assert.NotEqual(t, minutes, millis)
	}
}

func TestTryParseIsIdempotent(t *testing.T) {
	first, ok1 := TryParse("1w 2d 3h")
	second, ok2 := TryParse("1w 2d 3h")
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}

func TestTryParseFailureIsAlwaysZero(t *testing.T) {
	for _, input := range []string{"5d?", "1y1mo!", "3h 2q", "7w x", "1h\x00"} {
		got, ok := TryParse(input)
		assert.False(t, ok, input)
		assert.Zero(t, got, input)
	}
}

func TestTryParseSumsTokens(t *testing.T) {
	suffixes := []string{"y", "mo", "w", "d", "h", "m", "s", "ms"}
	sizes := []time.Duration{Year, Month, Week, Day, time.Hour, time.Minute, time.Second, time.Millisecond}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		var (
			b    strings.Builder
			want time.Duration
		)
		for j := 0; j < 1+rng.Intn(6); j++ {
			k := rng.Intn(len(suffixes))
			n := rng.Intn(100)
			want += time.Duration(n) * sizes[k]
			fmt.Fprintf(&b, "%d%s", n, suffixes[k])
			if rng.Intn(2) == 0 {
				b.WriteByte(' ')
			}
		}
		got, ok := TryParse(b.String())
		require.True(t, ok, b.String())
		assert.Equal(t, want, got, b.String())
	}
}

// str2duration shares the w/d/h/m/s/ms units, so both must agree on them.
func TestTryParseAgreesWithStr2Duration(t *testing.T) {
	suffixes := []string{"w", "d", "h", "m", "s", "ms"}
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 200; i++ {
		var b strings.Builder
		for j := 0; j < 1+rng.Intn(5); j++ {
			fmt.Fprintf(&b, "%d%s", 1+rng.Intn(500), suffixes[rng.Intn(len(suffixes))])
		}
		want, err := str2duration.ParseDuration(b.String())
		require.NoError(t, err, b.String())

		got, ok := TryParse(b.String())
		require.True(t, ok, b.String())
		assert.Equal(t, want, got, b.String())
	}
}

func TestTryParseConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, ok := TryParse("1d 12h")
				if !ok || got != 36*time.Hour {
					t.Errorf("TryParse(\"1d 12h\") = %v, %v", got, ok)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestParse(t *testing.T) {
	d, err := Parse("2h30m")
	require.NoError(t, err)
	assert.Equal(t, 150*time.Minute, d)

	_, err = Parse("soon")
	require.ErrorIs(t, err, ErrInvalidDuration)
	assert.Contains(t, err.Error(), `"soon"`)

	_, err = Parse("")
	require.ErrorIs(t, err, ErrInvalidDuration)
}
