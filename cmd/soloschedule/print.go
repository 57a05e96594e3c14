package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"soloschedule/internal/availability"
	"soloschedule/internal/earnings"
	"soloschedule/internal/interval"
	"soloschedule/internal/models"
	"soloschedule/internal/service"
)

func printSlots(w io.Writer, list service.SlotList) {
	switch list.Status {
	case service.SlotsNoSchedule:
		fmt.Fprintf(w, "%s: no schedule\n", list.Date)
		return
	case service.SlotsNoFreeTimes:
		fmt.Fprintf(w, "%s: no available times for %d minutes\n", list.Date, list.Duration)
		return
	}
	fmt.Fprintf(w, "%s, %d minutes:\n", list.Date, list.Duration)
	for i, start := range list.Starts {
		marker := " "
		if i == list.Preselected {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, start)
	}
}

func printBooking(w io.Writer, b models.Booking) {
	fmt.Fprintf(w, "%s  %s %s  %s (%s)  %s/%s\n", b.ID, b.Date, b.Time, b.Client, b.Service, b.Status, b.PaidStatus)
}

func printDay(w io.Writer, view service.DayView) {
	header := fmt.Sprintf("%s (%s)", view.Date, view.Weekday)
	if !view.HasSchedule {
		header += ", no schedule"
	}
	fmt.Fprintln(w, header)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range view.Entries {
		switch e.Kind {
		case availability.EntryFree:
			fmt.Fprintf(tw, "%s\tfree\t\n", e.Span)
		case availability.EntryBooking:
			fmt.Fprintf(tw, "%s\t%s\t%s, %s [%s]\n", e.Span, e.Booking.Client, e.Booking.Service, e.Booking.Status, e.Booking.ID)
		case availability.EntryBlockout:
			fmt.Fprintf(tw, "%s\tblocked\t%s\n", e.Span, e.Blockout.Type)
		}
	}
	_ = tw.Flush()
}

func formatRanges(ranges []interval.Interval) string {
	if len(ranges) == 0 {
		return "off"
	}
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, ", ")
}

func printRanges(w io.Writer, weekday string, ranges []interval.Interval) {
	fmt.Fprintf(w, "%s: %s\n", weekday, formatRanges(ranges))
}

func printWeekly(w io.Writer, weekly models.WeeklyAvailability) {
	for _, day := range models.Weekdays {
		printRanges(w, day, weekly[day])
	}
}

func printServices(w io.Writer, services []models.Service) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMINUTES\tPRICE")
	for _, s := range services {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\n", s.Name, s.Duration, s.Price)
	}
	_ = tw.Flush()
}

func printEarnings(w io.Writer, s earnings.Summary) {
	fmt.Fprintf(w, "Total earned: %s (%d paid)\n", s.Total.StringFixed(2), s.PaidCount)
	fmt.Fprintf(w, "Unpaid:       %s (%d completed)\n\n", s.Unpaid.StringFixed(2), s.UnpaidCount)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIME\tCLIENT\tSERVICE\tPRICE\tSTATUS")
	for _, r := range s.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Date, r.Time, r.Client, r.Service, r.Price.StringFixed(2), r.Badge)
	}
	_ = tw.Flush()
}
