// Package interval implements arithmetic on half-open minute intervals.
package interval

import (
	"errors"
	"fmt"
	"sort"

	"soloschedule/internal/timegrid"
)

var ErrEmptyInterval = errors.New("interval end must be after start")

// Interval is the half-open span [Start, End).
type Interval struct {
	Start timegrid.TimeOfDay `json:"start"`
	End   timegrid.TimeOfDay `json:"end"`
}

// New returns the interval [start, end) or ErrEmptyInterval when end <= start.
func New(start, end timegrid.TimeOfDay) (Interval, error) {
	if end <= start {
		return Interval{}, fmt.Errorf("%w: %s-%s", ErrEmptyInterval, start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// Minutes is the length of the interval.
func (iv Interval) Minutes() int {
	if iv.End <= iv.Start {
		return 0
	}
	return int(iv.End - iv.Start)
}

// Valid reports whether the interval is non-degenerate.
func (iv Interval) Valid() bool {
	return iv.Start < iv.End
}

// Overlaps reports whether two half-open intervals share at least one minute.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Contains reports whether other lies entirely inside iv.
func (iv Interval) Contains(other Interval) bool {
	return iv.Start <= other.Start && other.End <= iv.End
}

func (iv Interval) String() string {
	return iv.Start.String() + "-" + iv.End.String()
}

// Sort orders intervals by start, then by end, in place.
func Sort(list []Interval) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Start != list[j].Start {
			return list[i].Start < list[j].Start
		}
		return list[i].End < list[j].End
	})
}

// MergeOverlapping returns the minimal sorted cover of list. Touching
// intervals coalesce, so adjacent busy spans become one. Degenerate
// entries are dropped. The input is not modified.
func MergeOverlapping(list []Interval) []Interval {
	return coalesce(list)
}

// MergeContiguous joins free segments that touch or overlap, which happens
// where two recurring ranges abut.
func MergeContiguous(segments []Interval) []Interval {
	return coalesce(segments)
}

func coalesce(list []Interval) []Interval {
	sorted := make([]Interval, 0, len(list))
	for _, iv := range list {
		if iv.Valid() {
			sorted = append(sorted, iv)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	Sort(sorted)

	out := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Subtract returns the parts of rng not covered by busy. busy must be sorted
// ascending and merged; entries outside rng are ignored and partial overlaps
// are clipped to rng.
func Subtract(rng Interval, busy []Interval) []Interval {
	if !rng.Valid() {
		return nil
	}
	var free []Interval
	cursor := rng.Start
	for _, b := range busy {
		if b.End <= rng.Start || b.Start >= rng.End {
			continue
		}
		if b.Start > cursor {
			end := b.Start
			if end > rng.End {
				end = rng.End
			}
			free = append(free, Interval{Start: cursor, End: end})
		}
		if b.End > cursor {
			cursor = b.End
		}
		if cursor >= rng.End {
			break
		}
	}
	if cursor < rng.End {
		free = append(free, Interval{Start: cursor, End: rng.End})
	}
	return free
}

// Clip returns the parts of list that fall inside rng, in input order.
func Clip(rng Interval, list []Interval) []Interval {
	var out []Interval
	for _, iv := range list {
		start, end := iv.Start, iv.End
		if start < rng.Start {
			start = rng.Start
		}
		if end > rng.End {
			end = rng.End
		}
		if start < end {
			out = append(out, Interval{Start: start, End: end})
		}
	}
	return out
}

// TotalMinutes sums the lengths of the intervals without merging them.
func TotalMinutes(list []Interval) int {
	total := 0
	for _, iv := range list {
		total += iv.Minutes()
	}
	return total
}
