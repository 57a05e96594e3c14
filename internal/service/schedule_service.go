package service

import (
	"context"
	"fmt"

	"soloschedule/internal/domain"
	"soloschedule/internal/events"
	"soloschedule/internal/interval"
	"soloschedule/internal/models"
	"soloschedule/internal/timegrid"

	"github.com/rs/zerolog"
)

const (
	defaultRangeStart  = 9 * 60
	defaultRangeLength = 3 * 60
	shortRangeLength   = 60
	latestRangeEnd     = 21 * 60
	seedRangeEnd       = 11 * 60
)

// ScheduleService edits the recurring weekly availability.
type ScheduleService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewScheduleService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ScheduleService {
	return &ScheduleService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func span(start, end int) interval.Interval {
	return interval.Interval{Start: timegrid.TimeOfDay(start), End: timegrid.TimeOfDay(end)}
}

// DefaultSchedule is Monday to Thursday 09-12 and 13-17, Friday 09-12 and
// 13-16, weekend off.
func DefaultSchedule() models.WeeklyAvailability {
	weekday := func() []interval.Interval {
		return []interval.Interval{span(9*60, 12*60), span(13*60, 17*60)}
	}
	return models.WeeklyAvailability{
		"mon": weekday(),
		"tue": weekday(),
		"wed": weekday(),
		"thu": weekday(),
		"fri": {span(9*60, 12*60), span(13*60, 16*60)},
		"sat": {},
		"sun": {},
	}
}

// Weekly returns the stored schedule, seeding the default one when nothing
// has been saved yet.
func (s *ScheduleService) Weekly(ctx context.Context) (models.WeeklyAvailability, error) {
	weekly, err := s.repo.GetAvailability(ctx)
	if err != nil {
		return nil, err
	}
	if weekly == nil {
		weekly = DefaultSchedule()
		if err := s.repo.SaveAvailability(ctx, weekly); err != nil {
			return nil, err
		}
		s.logger.Info().Msg("Seeded default weekly schedule")
	}
	return weekly.Clone(), nil
}

func validWeekday(weekday string) error {
	for _, d := range models.Weekdays {
		if d == weekday {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownWeekday, weekday)
}

// ValidateRanges checks one weekday's list: grid-aligned, non-empty and
// pairwise non-overlapping. Touching ranges are allowed.
func ValidateRanges(ranges []interval.Interval) error {
	for _, r := range ranges {
		if !timegrid.OnGrid(r.Start) || !timegrid.OnGrid(r.End) {
			return fmt.Errorf("%s: %w", r, ErrOffGrid)
		}
		if r.End <= r.Start {
			return fmt.Errorf("%s: %w", r, ErrInvalidRange)
		}
	}
	for i := range ranges {
		for j := i + 1; j < len(ranges); j++ {
			if ranges[i].Overlaps(ranges[j]) {
				return fmt.Errorf("%s and %s: %w", ranges[i], ranges[j], ErrOverlappingRange)
			}
		}
	}
	return nil
}

// SetRanges replaces the ranges of weekday after validating them.
func (s *ScheduleService) SetRanges(ctx context.Context, weekday string, ranges []interval.Interval) ([]interval.Interval, error) {
	if err := validWeekday(weekday); err != nil {
		return nil, err
	}
	if err := ValidateRanges(ranges); err != nil {
		return nil, err
	}
	return s.update(ctx, weekday, func([]interval.Interval) ([]interval.Interval, error) {
		return ranges, nil
	})
}

// SetRange replaces the range at index, rounding both ends to the grid
// first.
func (s *ScheduleService) SetRange(ctx context.Context, weekday string, index int, start, end timegrid.TimeOfDay) ([]interval.Interval, error) {
	if err := validWeekday(weekday); err != nil {
		return nil, err
	}
	rng := interval.Interval{
		Start: timegrid.Quantize(start, timegrid.Round),
		End:   timegrid.Quantize(end, timegrid.Round),
	}
	return s.update(ctx, weekday, func(ranges []interval.Interval) ([]interval.Interval, error) {
		if index < 0 || index >= len(ranges) {
			return nil, fmt.Errorf("%w: %s #%d", ErrRangeNotFound, weekday, index)
		}
		ranges[index] = rng
		if err := ValidateRanges(ranges); err != nil {
			return nil, err
		}
		return ranges, nil
	})
}

// AddRange appends a range starting at the end of the last one (09:00 on an
// empty day), three hours long or one hour when that would pass 21:00.
func (s *ScheduleService) AddRange(ctx context.Context, weekday string) ([]interval.Interval, error) {
	if err := validWeekday(weekday); err != nil {
		return nil, err
	}
	return s.update(ctx, weekday, func(ranges []interval.Interval) ([]interval.Interval, error) {
		startMin := timegrid.TimeOfDay(defaultRangeStart)
		if len(ranges) > 0 {
			startMin = ranges[len(ranges)-1].End
		}
		start := timegrid.Quantize(startMin, timegrid.Ceil)
		endMin := start.Add(defaultRangeLength)
		if endMin > latestRangeEnd {
			endMin = start.Add(shortRangeLength)
		}
		end := timegrid.Quantize(endMin, timegrid.Ceil)
		if end <= start {
			return nil, ErrNoRoomForRange
		}
		ranges = append(ranges, interval.Interval{Start: start, End: end})
		if err := ValidateRanges(ranges); err != nil {
			return nil, err
		}
		return ranges, nil
	})
}

func (s *ScheduleService) RemoveRange(ctx context.Context, weekday string, index int) ([]interval.Interval, error) {
	if err := validWeekday(weekday); err != nil {
		return nil, err
	}
	return s.update(ctx, weekday, func(ranges []interval.Interval) ([]interval.Interval, error) {
		if index < 0 || index >= len(ranges) {
			return nil, fmt.Errorf("%w: %s #%d", ErrRangeNotFound, weekday, index)
		}
		return append(ranges[:index:index], ranges[index+1:]...), nil
	})
}

func (s *ScheduleService) ClearDay(ctx context.Context, weekday string) error {
	if err := validWeekday(weekday); err != nil {
		return err
	}
	_, err := s.update(ctx, weekday, func([]interval.Interval) ([]interval.Interval, error) {
		return nil, nil
	})
	return err
}

// ToggleDay turns a weekday off (clearing it) or on. A day turned on without
// ranges gets 09:00-11:00.
func (s *ScheduleService) ToggleDay(ctx context.Context, weekday string, on bool) ([]interval.Interval, error) {
	if err := validWeekday(weekday); err != nil {
		return nil, err
	}
	return s.update(ctx, weekday, func(ranges []interval.Interval) ([]interval.Interval, error) {
		if !on {
			return nil, nil
		}
		if len(ranges) == 0 {
			return []interval.Interval{span(defaultRangeStart, seedRangeEnd)}, nil
		}
		return ranges, nil
	})
}

// ClearAll empties every weekday.
func (s *ScheduleService) ClearAll(ctx context.Context) error {
	if err := s.repo.SaveAvailability(ctx, models.WeeklyAvailability{}.Clone()); err != nil {
		return err
	}
	s.publish("", nil)
	return nil
}

// ResetDefault overwrites the schedule with DefaultSchedule.
func (s *ScheduleService) ResetDefault(ctx context.Context) error {
	if err := s.repo.SaveAvailability(ctx, DefaultSchedule()); err != nil {
		return err
	}
	s.publish("", nil)
	return nil
}

// update applies fn to one weekday, keeps the result sorted and saves it.
func (s *ScheduleService) update(
	ctx context.Context,
	weekday string,
	fn func(ranges []interval.Interval) ([]interval.Interval, error),
) ([]interval.Interval, error) {
	weekly, err := s.Weekly(ctx)
	if err != nil {
		return nil, err
	}
	ranges, err := fn(weekly.Ranges(weekday))
	if err != nil {
		return nil, err
	}
	ranges = append([]interval.Interval{}, ranges...)
	interval.Sort(ranges)
	weekly[weekday] = ranges
	if err := s.repo.SaveAvailability(ctx, weekly); err != nil {
		return nil, err
	}
	s.publish(weekday, ranges)
	return ranges, nil
}

func (s *ScheduleService) publish(weekday string, ranges []interval.Interval) {
	if s.eventBus == nil {
		return
	}
	payload := events.ScheduleEventPayload{Weekday: weekday, Ranges: []string{}}
	for _, r := range ranges {
		payload.Ranges = append(payload.Ranges, r.String())
	}
	if err := s.eventBus.PublishJSON(events.EventScheduleChanged, payload); err != nil {
		s.logger.Error().Err(err).Msg("Failed to publish event")
	}
}
