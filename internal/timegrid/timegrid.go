// Package timegrid maps times of day onto the fixed 15-minute scheduling grid.
package timegrid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Step is the grid size in minutes.
	Step = 15
	// MinutesPerDay is the length of a calendar day in minutes.
	MinutesPerDay = 24 * 60
	// LastBoundary is the latest grid boundary a quantized value can take (23:45).
	LastBoundary = MinutesPerDay - Step
)

var ErrInvalidTime = errors.New("invalid time of day")

// TimeOfDay is a count of minutes since midnight.
type TimeOfDay int

// Policy selects the rounding direction used by Quantize.
type Policy int

const (
	Floor Policy = iota
	Ceil
	Round
)

func (p Policy) String() string {
	switch p {
	case Floor:
		return "floor"
	case Ceil:
		return "ceil"
	case Round:
		return "round"
	default:
		return "unknown"
	}
}

// Quantize snaps t to a grid boundary according to policy and clamps the
// result to [0, LastBoundary].
func Quantize(t TimeOfDay, policy Policy) TimeOfDay {
	m := int(t)
	var q int
	switch policy {
	case Floor:
		q = floorDiv(m, Step) * Step
	case Ceil:
		q = -floorDiv(-m, Step) * Step
	default:
		q = floorDiv(m+Step/2, Step) * Step
	}
	return clamp(q)
}

// OnGrid reports whether t sits exactly on a grid boundary.
func OnGrid(t TimeOfDay) bool {
	return int(t)%Step == 0
}

// NextBoundary returns the first grid boundary at or after the wall-clock
// minute of now. Seconds are ignored.
func NextBoundary(now time.Time) TimeOfDay {
	m := now.Hour()*60 + now.Minute()
	if rem := m % Step; rem != 0 {
		m += Step - rem
	}
	return TimeOfDay(m)
}

// Parse reads a strict "HH:MM" value.
func Parse(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return TimeOfDay(h*60 + m), nil
}

// ParseEnd is Parse for the end of a span, which may also be "24:00".
func ParseEnd(s string) (TimeOfDay, error) {
	if strings.TrimSpace(s) == "24:00" {
		return MinutesPerDay, nil
	}
	return Parse(s)
}

// ParseLoose reads stored "HH:MM" values without failing. Missing parts
// count as zero, fields after the minutes (seconds) are ignored and values
// past midnight are kept as is so that Quantize can clamp them; unreadable
// input yields 00:00.
func ParseLoose(s string) TimeOfDay {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	fields := strings.Split(s, ":")
	h, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0
	}
	m := 0
	if len(fields) > 1 && fields[1] != "" {
		if m, err = strconv.Atoi(strings.TrimSpace(fields[1])); err != nil {
			return 0
		}
	}
	return TimeOfDay(h*60 + m)
}

// String formats t as "HH:MM".
func (t TimeOfDay) String() string {
	m := int(t)
	if m < 0 {
		m = 0
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	*t = ParseLoose(string(b))
	return nil
}

// Add returns t shifted by the given number of minutes without clamping.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

func clamp(m int) TimeOfDay {
	if m < 0 {
		return 0
	}
	if m > LastBoundary {
		return LastBoundary
	}
	return TimeOfDay(m)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
