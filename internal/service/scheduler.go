package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"soloschedule/internal/availability"
	"soloschedule/internal/domain"
	"soloschedule/internal/interval"
	"soloschedule/internal/metrics"
	"soloschedule/internal/models"
	"soloschedule/internal/timegrid"

	"github.com/rs/zerolog"
)

type SlotStatus string

const (
	SlotsAvailable   SlotStatus = "available"
	SlotsNoSchedule  SlotStatus = "no_schedule"
	SlotsNoFreeTimes SlotStatus = "no_available_times"
)

// SlotList is the chronological list of start candidates for one date.
// Preselected is the index to highlight (-1 when the list is empty); it never
// removes entries from Starts.
type SlotList struct {
	Date        string
	Duration    int
	Starts      []timegrid.TimeOfDay
	Status      SlotStatus
	Preselected int
}

func (l SlotList) Contains(start timegrid.TimeOfDay) bool {
	for _, s := range l.Starts {
		if s == start {
			return true
		}
	}
	return false
}

// DayView is the resolved state of one date for rendering.
type DayView struct {
	Date        string
	Weekday     string
	HasSchedule bool
	Free        []interval.Interval
	Busy        []interval.Interval
	Entries     []availability.Entry
}

// Scheduler turns stored state into slot candidates and re-validates a
// candidate right before it is written. Slot commits and the other rewrites
// of the bookings and blockouts documents from one process are serialized
// by one lock; across processes the last write wins.
type Scheduler struct {
	repo   domain.Repository
	loc    *time.Location
	logger *zerolog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

func NewScheduler(repo domain.Repository, loc *time.Location, logger *zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		repo:   repo,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// Today returns the current date in the scheduling timezone.
func (s *Scheduler) Today() string {
	return s.now().In(s.loc).Format(models.DateLayout)
}

// load reads the four collections and builds the resolver input for date.
func (s *Scheduler) load(ctx context.Context, date, excludeID string) (availability.DayInput, error) {
	if _, err := availability.ParseDate(date); err != nil {
		return availability.DayInput{}, err
	}
	bookings, err := s.repo.GetBookings(ctx)
	if err != nil {
		return availability.DayInput{}, fmt.Errorf("load bookings: %w", err)
	}
	services, err := s.repo.GetServices(ctx)
	if err != nil {
		return availability.DayInput{}, fmt.Errorf("load services: %w", err)
	}
	weekly, err := s.repo.GetAvailability(ctx)
	if err != nil {
		return availability.DayInput{}, fmt.Errorf("load availability: %w", err)
	}
	blockouts, err := s.repo.GetBlockouts(ctx)
	if err != nil {
		return availability.DayInput{}, fmt.Errorf("load blockouts: %w", err)
	}
	return availability.NewDayInput(date, weekly, bookings, services, blockouts, excludeID), nil
}

// EnumerateStarts lists every grid start on date where duration minutes fit
// in one free segment. excludeID keeps a booking out of its own conflicts.
func (s *Scheduler) EnumerateStarts(ctx context.Context, date string, duration int, excludeID string) (SlotList, error) {
	in, err := s.load(ctx, date, excludeID)
	if err != nil {
		return SlotList{}, err
	}
	return s.enumerate(in, duration), nil
}

func (s *Scheduler) enumerate(in availability.DayInput, duration int) SlotList {
	day := availability.Resolve(in)
	list := SlotList{
		Date:        in.Date,
		Duration:    duration,
		Starts:      availability.Starts(day.Free, duration),
		Preselected: -1,
	}
	switch {
	case !day.HasSchedule:
		list.Status = SlotsNoSchedule
	case len(list.Starts) == 0:
		list.Status = SlotsNoFreeTimes
	default:
		list.Status = SlotsAvailable
		list.Preselected = 0
	}

	if in.Date == s.Today() && len(list.Starts) > 0 {
		next := timegrid.NextBoundary(s.now().In(s.loc))
		if i := list.indexFrom(next); i >= 0 {
			list.Preselected = i
		}
	}
	return list
}

// indexFrom returns the first start at or after t, or -1.
func (l SlotList) indexFrom(t timegrid.TimeOfDay) int {
	for i, start := range l.Starts {
		if start >= t {
			return i
		}
	}
	return -1
}

// exclusive runs fn while holding the commit lock.
func (s *Scheduler) exclusive(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// commit re-runs the enumeration against fresh storage and, if start is
// still a candidate, calls write while holding the commit lock.
func (s *Scheduler) commit(
	ctx context.Context,
	kind, date string,
	start timegrid.TimeOfDay,
	duration int,
	excludeID string,
	write func() error,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.EnumerateStarts(ctx, date, duration, excludeID)
	if err != nil {
		metrics.IncCommit(kind, metrics.ResultInvalid)
		return err
	}
	if !list.Contains(start) {
		metrics.IncCommit(kind, metrics.ResultUnavailable)
		s.logger.Info().
			Str("kind", kind).
			Str("date", date).
			Str("start", start.String()).
			Int("duration", duration).
			Msg("Slot no longer available at commit")
		return fmt.Errorf("%s at %s %s: %w", kind, date, start, ErrSlotNoLongerAvailable)
	}
	if err := write(); err != nil {
		metrics.IncCommit(kind, metrics.ResultInvalid)
		return err
	}
	metrics.IncCommit(kind, metrics.ResultCommitted)
	return nil
}

// Day resolves date into free time, busy time and the unified agenda.
func (s *Scheduler) Day(ctx context.Context, date string) (DayView, error) {
	in, err := s.load(ctx, date, "")
	if err != nil {
		return DayView{}, err
	}
	day := availability.Resolve(in)
	return DayView{
		Date:        date,
		Weekday:     day.Weekday,
		HasSchedule: day.HasSchedule,
		Free:        day.Free,
		Busy:        day.Busy,
		Entries:     availability.Timeline(in),
	}, nil
}
