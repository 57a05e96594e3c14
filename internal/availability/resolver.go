// Package availability computes the busy and free partition of a single
// calendar date from the weekly schedule, bookings and manual blockouts.
package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"soloschedule/internal/interval"
	"soloschedule/internal/models"
	"soloschedule/internal/timegrid"
)

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// DayInput is everything the resolver needs for one date.
type DayInput struct {
	Date      string
	Ranges    []interval.Interval
	Bookings  []models.Booking
	Services  models.ServiceIndex
	Blockouts []models.Blockout
	// ExcludeBookingID keeps the booking being edited out of its own conflict set.
	ExcludeBookingID string
}

// NewDayInput selects the weekday ranges and the blockouts of date. An
// unparseable date yields an input with no schedule.
func NewDayInput(
	date string,
	weekly models.WeeklyAvailability,
	bookings []models.Booking,
	services []models.Service,
	blockouts models.DayBlockouts,
	excludeBookingID string,
) DayInput {
	in := DayInput{
		Date:             date,
		Bookings:         bookings,
		Services:         models.NewServiceIndex(services),
		Blockouts:        blockouts[date],
		ExcludeBookingID: excludeBookingID,
	}
	if weekday, err := WeekdayKey(date); err == nil {
		in.Ranges = weekly.Ranges(weekday)
	}
	return in
}

// DayAvailability is the resolved partition of one date.
type DayAvailability struct {
	Date        string
	Weekday     string
	Ranges      []interval.Interval
	Busy        []interval.Interval
	Free        []interval.Interval
	HasSchedule bool
}

// ParseDate parses an ISO calendar date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// WeekdayKey maps an ISO date to its weekday key, Sunday = "sun".
func WeekdayKey(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return models.Weekdays[t.Weekday()], nil
}

// BookingOccupancy returns [time, time+duration) snapped outward to the grid.
// The second result is false when the booking occupies nothing.
func BookingOccupancy(b models.Booking, services models.ServiceIndex) (interval.Interval, bool) {
	start := timegrid.Quantize(b.Time, timegrid.Floor)
	end := timegrid.Quantize(b.Time.Add(services.DurationOf(b.Service)), timegrid.Ceil)
	iv := interval.Interval{Start: start, End: end}
	return iv, iv.Valid()
}

// BlockoutOccupancy widens a blockout outward to the grid: start is floored
// and end is ceiled.
func BlockoutOccupancy(bl models.Blockout) (interval.Interval, bool) {
	iv := interval.Interval{
		Start: timegrid.Quantize(bl.Start, timegrid.Floor),
		End:   timegrid.Quantize(bl.End, timegrid.Ceil),
	}
	return iv, iv.Valid()
}

// occupying returns the bookings on in.Date that hold their slot.
func occupying(in DayInput) []models.Booking {
	var out []models.Booking
	for _, b := range in.Bookings {
		if b.Date != in.Date || b.Canceled() {
			continue
		}
		if in.ExcludeBookingID != "" && b.ID == in.ExcludeBookingID {
			continue
		}
		out = append(out, b)
	}
	return out
}

// BusySet merges booking and blockout occupancy into the canonical busy set.
func BusySet(in DayInput) []interval.Interval {
	var all []interval.Interval
	for _, b := range occupying(in) {
		if iv, ok := BookingOccupancy(b, in.Services); ok {
			all = append(all, iv)
		}
	}
	for _, bl := range in.Blockouts {
		if iv, ok := BlockoutOccupancy(bl); ok {
			all = append(all, iv)
		}
	}
	return interval.MergeOverlapping(all)
}

// NormalizeRanges snaps recurring ranges to the grid (floor start, ceil end),
// drops empty ones and sorts the rest.
func NormalizeRanges(ranges []interval.Interval) []interval.Interval {
	out := make([]interval.Interval, 0, len(ranges))
	for _, r := range ranges {
		snapped := interval.Interval{
			Start: timegrid.Quantize(r.Start, timegrid.Floor),
			End:   timegrid.Quantize(r.End, timegrid.Ceil),
		}
		if snapped.Valid() {
			out = append(out, snapped)
		}
	}
	interval.Sort(out)
	return out
}

// Resolve computes the busy and free sets of in.Date. A weekday without
// recurring ranges has no free time and HasSchedule is false.
func Resolve(in DayInput) DayAvailability {
	day := DayAvailability{
		Date:   in.Date,
		Ranges: NormalizeRanges(in.Ranges),
		Busy:   BusySet(in),
	}
	day.Weekday, _ = WeekdayKey(in.Date)
	day.HasSchedule = len(day.Ranges) > 0
	if !day.HasSchedule {
		return day
	}

	var segments []interval.Interval
	for _, r := range day.Ranges {
		segments = append(segments, interval.Subtract(r, day.Busy)...)
	}
	day.Free = interval.MergeContiguous(segments)
	return day
}

// Starts enumerates grid-aligned start times from which duration minutes fit
// inside a single free segment. The result is strictly ascending.
func Starts(free []interval.Interval, duration int) []timegrid.TimeOfDay {
	if duration <= 0 {
		duration = timegrid.Step
	}
	seen := make(map[timegrid.TimeOfDay]struct{})
	var out []timegrid.TimeOfDay
	for _, seg := range free {
		for m := ceilToGrid(seg.Start); m.Add(duration) <= seg.End; m = m.Add(timegrid.Step) {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func ceilToGrid(t timegrid.TimeOfDay) timegrid.TimeOfDay {
	if rem := int(t) % timegrid.Step; rem != 0 {
		return t.Add(timegrid.Step - rem)
	}
	return t
}
