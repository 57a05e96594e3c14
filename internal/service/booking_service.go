package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"soloschedule/internal/domain"
	"soloschedule/internal/events"
	"soloschedule/internal/metrics"
	"soloschedule/internal/models"
	"soloschedule/internal/timegrid"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const kindBooking = "booking"

// BookingRequest describes a new booking (empty ID) or an edit of an
// existing one. Reschedule keeps the client fixed and resets the status to
// scheduled; a plain edit keeps the current status.
type BookingRequest struct {
	ID         string
	Client     string
	Service    string
	Date       string
	Time       timegrid.TimeOfDay
	Reschedule bool
}

type BookingService struct {
	repo      domain.Repository
	scheduler *Scheduler
	eventBus  domain.EventPublisher
	logger    *zerolog.Logger
	newID     func() string
}

func NewBookingService(repo domain.Repository, scheduler *Scheduler, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:      repo,
		scheduler: scheduler,
		eventBus:  eventBus,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

func (s *BookingService) service(ctx context.Context, name string) (models.Service, error) {
	services, err := s.repo.GetServices(ctx)
	if err != nil {
		return models.Service{}, err
	}
	for _, svc := range services {
		if svc.Name == name {
			return svc, nil
		}
	}
	return models.Service{}, fmt.Errorf("%w: %q", ErrUnknownService, name)
}

// EnumerateStarts lists start times for serviceName on date. When excludeID
// names a booking on that date whose time is still free, it is preselected.
func (s *BookingService) EnumerateStarts(ctx context.Context, date, serviceName, excludeID string) (SlotList, error) {
	svc, err := s.service(ctx, serviceName)
	if err != nil {
		return SlotList{}, err
	}
	duration := models.NewServiceIndex([]models.Service{svc}).DurationOf(svc.Name)

	list, err := s.scheduler.EnumerateStarts(ctx, date, duration, excludeID)
	if err != nil {
		return SlotList{}, err
	}
	metrics.IncSlotQuery(kindBooking, string(list.Status))

	if excludeID != "" {
		if current, err := s.Get(ctx, excludeID); err == nil && current.Date == date {
			for i, start := range list.Starts {
				if start == current.Time {
					list.Preselected = i
				}
			}
		}
	}
	return list, nil
}

// CommitBooking re-validates the requested slot and writes the booking.
func (s *BookingService) CommitBooking(ctx context.Context, req BookingRequest) (models.Booking, error) {
	req.Client = strings.TrimSpace(req.Client)
	if req.ID == "" && req.Client == "" {
		metrics.IncCommit(kindBooking, metrics.ResultInvalid)
		return models.Booking{}, ErrClientRequired
	}

	svc, err := s.service(ctx, req.Service)
	if err != nil {
		metrics.IncCommit(kindBooking, metrics.ResultInvalid)
		return models.Booking{}, err
	}
	duration := models.NewServiceIndex([]models.Service{svc}).DurationOf(svc.Name)

	var saved models.Booking
	var previous *models.Booking
	err = s.scheduler.commit(ctx, kindBooking, req.Date, req.Time, duration, req.ID, func() error {
		bookings, err := s.repo.GetBookings(ctx)
		if err != nil {
			return err
		}

		if req.ID == "" {
			saved = models.Booking{
				ID:         s.newID(),
				Client:     req.Client,
				Service:    svc.Name,
				Date:       req.Date,
				Time:       req.Time,
				Price:      svc.Price,
				Status:     models.StatusScheduled,
				PaidStatus: models.PaidStatusUnpaid,
			}
			bookings = append(bookings, saved)
			return s.repo.SaveBookings(ctx, bookings)
		}

		idx := indexOfBooking(bookings, req.ID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrBookingNotFound, req.ID)
		}
		before := bookings[idx]
		previous = &before

		updated := before
		switch {
		case req.Reschedule:
			if req.Client != "" && req.Client != before.Client {
				return ErrClientLocked
			}
			updated.Status = models.StatusScheduled
		case req.Client != "":
			updated.Client = req.Client
		case before.Client == "":
			return ErrClientRequired
		}
		updated.Service = svc.Name
		updated.Price = svc.Price
		updated.Date = req.Date
		updated.Time = req.Time

		bookings[idx] = updated
		saved = updated
		return s.repo.SaveBookings(ctx, bookings)
	})
	if err != nil {
		return models.Booking{}, err
	}

	switch {
	case previous == nil:
		s.logger.Info().Str("booking_id", saved.ID).Str("date", saved.Date).Str("time", saved.Time.String()).Msg("Booking created")
		s.publish(events.EventBookingCreated, saved, nil)
	case req.Reschedule:
		s.logger.Info().Str("booking_id", saved.ID).Str("date", saved.Date).Str("time", saved.Time.String()).Msg("Booking rescheduled")
		s.publish(events.EventBookingRescheduled, saved, previous)
	default:
		s.publish(events.EventBookingUpdated, saved, previous)
	}
	return saved, nil
}

// UpdateStatus moves a booking through its lifecycle. Reviving a canceled
// booking requires its slot to still be free.
func (s *BookingService) UpdateStatus(ctx context.Context, id, status string) (models.Booking, error) {
	if !models.IsValidStatus(status) {
		return models.Booking{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}

	if current.Canceled() && status != models.StatusCanceled {
		services, err := s.repo.GetServices(ctx)
		if err != nil {
			return models.Booking{}, err
		}
		duration := models.NewServiceIndex(services).DurationOf(current.Service)
		var updated models.Booking
		err = s.scheduler.commit(ctx, kindBooking, current.Date, current.Time, duration, current.ID, func() error {
			var applyErr error
			updated, applyErr = s.apply(ctx, id, func(b *models.Booking) { b.Status = status })
			return applyErr
		})
		if err != nil {
			return models.Booking{}, err
		}
		s.publish(events.EventBookingStatusChanged, updated, &current)
		return updated, nil
	}

	updated, err := s.mutate(ctx, id, func(b *models.Booking) { b.Status = status })
	if err != nil {
		return models.Booking{}, err
	}
	s.publish(events.EventBookingStatusChanged, updated, &current)
	return updated, nil
}

// SetPaid sets the paid flag of a booking.
func (s *BookingService) SetPaid(ctx context.Context, id string, paid bool) (models.Booking, error) {
	paidStatus := models.PaidStatusUnpaid
	if paid {
		paidStatus = models.PaidStatusPaid
	}
	updated, err := s.mutate(ctx, id, func(b *models.Booking) { b.PaidStatus = paidStatus })
	if err != nil {
		return models.Booking{}, err
	}
	s.publish(events.EventBookingPaidChanged, updated, nil)
	return updated, nil
}

// TogglePaid flips the paid flag.
func (s *BookingService) TogglePaid(ctx context.Context, id string) (models.Booking, error) {
	updated, err := s.mutate(ctx, id, func(b *models.Booking) {
		if b.Paid() {
			b.PaidStatus = models.PaidStatusUnpaid
		} else {
			b.PaidStatus = models.PaidStatusPaid
		}
	})
	if err != nil {
		return models.Booking{}, err
	}
	s.publish(events.EventBookingPaidChanged, updated, nil)
	return updated, nil
}

// mutate applies fn to one booking under the commit lock.
func (s *BookingService) mutate(ctx context.Context, id string, fn func(b *models.Booking)) (models.Booking, error) {
	var updated models.Booking
	err := s.scheduler.exclusive(func() error {
		var applyErr error
		updated, applyErr = s.apply(ctx, id, fn)
		return applyErr
	})
	return updated, err
}

// apply is mutate for callers already holding the commit lock.
func (s *BookingService) apply(ctx context.Context, id string, fn func(b *models.Booking)) (models.Booking, error) {
	bookings, err := s.repo.GetBookings(ctx)
	if err != nil {
		return models.Booking{}, err
	}
	idx := indexOfBooking(bookings, id)
	if idx < 0 {
		return models.Booking{}, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	fn(&bookings[idx])
	if err := s.repo.SaveBookings(ctx, bookings); err != nil {
		return models.Booking{}, err
	}
	return bookings[idx], nil
}

func (s *BookingService) Get(ctx context.Context, id string) (models.Booking, error) {
	bookings, err := s.repo.GetBookings(ctx)
	if err != nil {
		return models.Booking{}, err
	}
	idx := indexOfBooking(bookings, id)
	if idx < 0 {
		return models.Booking{}, fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	return bookings[idx], nil
}

// ListByDate returns the bookings on date ordered by time, canceled included.
func (s *BookingService) ListByDate(ctx context.Context, date string) ([]models.Booking, error) {
	bookings, err := s.repo.GetBookings(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Booking
	for _, b := range bookings {
		if b.Date == date {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (s *BookingService) publish(eventType string, b models.Booking, previous *models.Booking) {
	if s.eventBus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID:  b.ID,
		Client:     b.Client,
		Service:    b.Service,
		Date:       b.Date,
		Time:       b.Time.String(),
		Status:     b.Status,
		PaidStatus: b.PaidStatus,
	}
	if previous != nil && (previous.Date != b.Date || previous.Time != b.Time) {
		payload.PreviousDate = previous.Date
		payload.PreviousTime = previous.Time.String()
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}

func indexOfBooking(bookings []models.Booking, id string) int {
	for i, b := range bookings {
		if b.ID == id {
			return i
		}
	}
	return -1
}
