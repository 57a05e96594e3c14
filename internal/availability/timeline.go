package availability

import (
	"sort"

	"soloschedule/internal/interval"
	"soloschedule/internal/models"
)

type EntryKind string

const (
	EntryFree     EntryKind = "free"
	EntryBooking  EntryKind = "booking"
	EntryBlockout EntryKind = "block"
)

// Entry is one row of the day agenda.
type Entry struct {
	Kind     EntryKind
	Span     interval.Interval
	Booking  *models.Booking
	Blockout *models.Blockout
}

func (e Entry) rank() int {
	if e.Kind == EntryFree {
		return 1
	}
	return 0
}

// Timeline renders a date as one chronological list of free blocks,
// bookings and blockouts. Items are clipped to the schedule windows; on a
// day without a schedule only the items are listed. At equal starts items
// come before free blocks.
func Timeline(in DayInput) []Entry {
	day := Resolve(in)

	var items []Entry
	for _, b := range occupying(DayInput{Date: in.Date, Bookings: in.Bookings}) {
		if span, ok := BookingOccupancy(b, in.Services); ok {
			booking := b
			items = append(items, Entry{Kind: EntryBooking, Span: span, Booking: &booking})
		}
	}
	for _, bl := range in.Blockouts {
		if span, ok := BlockoutOccupancy(bl); ok {
			blockout := bl
			items = append(items, Entry{Kind: EntryBlockout, Span: span, Blockout: &blockout})
		}
	}

	var out []Entry
	if !day.HasSchedule {
		out = items
	} else {
		for _, f := range day.Free {
			out = append(out, Entry{Kind: EntryFree, Span: f})
		}
		for _, window := range day.Ranges {
			for _, it := range items {
				for _, part := range interval.Clip(window, []interval.Interval{it.Span}) {
					clipped := it
					clipped.Span = part
					out = append(out, clipped)
				}
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		if a.rank() != b.rank() {
			return a.rank() < b.rank()
		}
		return a.Span.End < b.Span.End
	})
	return out
}
