// Package duration parses the compact duration strings moderators type into
// slash commands, such as "3d6h" or "1y 1mo 1w 1d 1h 1m 1s 1ms".
//
// A string is a sequence of <digits><unit> tokens, optionally separated by
// whitespace. Units are case-sensitive:
//
//	y   365 days
//	mo  30 days
//	w   7 days
//	d   days
//	h   hours
//	m   minutes
//	s   seconds
//	ms  milliseconds
//
// Years and months are fixed approximations, not calendar arithmetic.
package duration

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
)

// Unit lengths for the day-based suffixes.
const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
	Year  = 365 * Day
)

// ErrInvalidDuration is returned by Parse for input TryParse rejects.
var ErrInvalidDuration = errors.New("invalid duration")

// cursor walks the input one rune at a time. peek is the only lookahead.
type cursor struct {
	runes []rune
	pos   int
}

func newCursor(text string) *cursor {
	return &cursor{runes: []rune(text)}
}

func (c *cursor) done() bool {
	return c.pos >= len(c.runes)
}

func (c *cursor) next() rune {
	r := c.runes[c.pos]
	c.pos++
	return r
}

func (c *cursor) peek() (rune, bool) {
	if c.done() {
		return 0, false
	}
	return c.runes[c.pos], true
}

func (c *cursor) skip() {
	c.pos++
}

// unit resolves the suffix starting with r. For 'm' it consumes a following
// 'o' (months) or 's' (milliseconds).
func (c *cursor) unit(r rune) (time.Duration, bool) {
	switch r {
	case 'y':
		return Year, true
	case 'w':
		return Week, true
	case 'd':
		return Day, true
	case 'h':
		return time.Hour, true
	case 's':
		return time.Second, true
	case 'm':
		next, ok := c.peek()
		switch {
		case ok && next == 'o':
			c.skip()
			return Month, true
		case ok && next == 's':
			c.skip()
			return time.Millisecond, true
		}
		return time.Minute, true
	}
	return 0, false
}

// TryParse converts a shorthand duration string into a time.Duration.
//
// It reports false with a zero duration for empty or whitespace-only input,
// for any character outside the grammar, and for values that do not fit in a
// time.Duration. A trailing number without a unit is ignored, so "3d6" parses
// as three days.
func TryParse(text string) (time.Duration, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}

	var (
		pending int64
		total   time.Duration
	)
	c := newCursor(text)
	for !c.done() {
		r := c.next()
		if r >= '0' && r <= '9' {
			digit := int64(r - '0')
			if pending > (math.MaxInt64-digit)/10 {
				return 0, false
			}
			pending = pending*10 + digit
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		unit, ok := c.unit(r)
		if !ok {
			return 0, false
		}
		if pending > int64(math.MaxInt64/unit) {
			return 0, false
		}
		add := time.Duration(pending) * unit
		if total > math.MaxInt64-add {
			return 0, false
		}
		total += add
		pending = 0
	}
	return total, true
}

// Parse is TryParse with an error for callers that propagate failures, such
// as configuration loading.
func Parse(text string) (time.Duration, error) {
	d, ok := TryParse(text)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, text)
	}
	return d, nil
}
