package duration

import (
	"strconv"
	"strings"
	"time"

	"github.com/hako/durafmt"
)

var shorthandUnits = []struct {
	suffix string
	size   time.Duration
}{
	{"y", Year},
	{"mo", Month},
	{"w", Week},
	{"d", Day},
	{"h", time.Hour},
	{"m", time.Minute},
	{"s", time.Second},
	{"ms", time.Millisecond},
}

// Format renders d for people, e.g. "3 days 6 hours".
func Format(d time.Duration) string {
	if d == 0 {
		return "0 seconds"
	}
	return durafmt.Parse(d).String()
}

// Shorthand renders d in the grammar TryParse accepts, largest unit first:
// 400 days becomes "1y 1mo 5d". Precision below a millisecond is dropped and
// anything shorter than that, including negative values, renders as "0s".
func Shorthand(d time.Duration) string {
	if d < time.Millisecond {
		return "0s"
	}
	parts := make([]string, 0, len(shorthandUnits))
	for _, u := range shorthandUnits {
		if n := d / u.size; n > 0 {
			parts = append(parts, strconv.FormatInt(int64(n), 10)+u.suffix)
			d -= n * u.size
		}
	}
	return strings.Join(parts, " ")
}
