package models

import (
	"soloschedule/internal/interval"
	"soloschedule/internal/timegrid"
)

// WeeklyAvailability maps a weekday key (sun..sat) to its recurring ranges,
// sorted ascending and non-overlapping.
type WeeklyAvailability map[string][]interval.Interval

// Ranges returns a copy of the ranges recorded for weekday.
func (w WeeklyAvailability) Ranges(weekday string) []interval.Interval {
	return append([]interval.Interval(nil), w[weekday]...)
}

// Clone deep-copies the schedule.
func (w WeeklyAvailability) Clone() WeeklyAvailability {
	out := make(WeeklyAvailability, len(Weekdays))
	for _, day := range Weekdays {
		out[day] = append([]interval.Interval{}, w[day]...)
	}
	return out
}

// Blockout is a manual exclusion on one calendar date.
type Blockout struct {
	Type  string             `json:"type"`
	Start timegrid.TimeOfDay `json:"start"`
	End   timegrid.TimeOfDay `json:"end"`
}

// Matches reports whether b is the entry identified by the delete tuple.
func (b Blockout) Matches(start, end timegrid.TimeOfDay, blockType string) bool {
	return b.Start == start && b.End == end && b.Type == blockType
}

// DayBlockouts maps an ISO date (YYYY-MM-DD) to its blockouts.
type DayBlockouts map[string][]Blockout
