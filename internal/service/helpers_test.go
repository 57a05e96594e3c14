package service

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"soloschedule/internal/events"
	"soloschedule/internal/interval"
	"soloschedule/internal/models"
	"soloschedule/internal/repository"
	"soloschedule/internal/timegrid"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// 2026-03-02 is a Monday; the fixture clock sits at 10:07 that day.
const (
	today      = "2026-03-02"
	nextMonday = "2026-03-09"
	nextTue    = "2026-03-10"
	saturday   = "2026-03-07"
)

func hm(s string) timegrid.TimeOfDay {
	t, err := timegrid.Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func rng(a, b string) interval.Interval {
	return interval.Interval{Start: hm(a), End: hm(b)}
}

type recordedEvent struct {
	Type    string
	Payload map[string]interface{}
}

type fixture struct {
	ctx       context.Context
	store     *repository.Store
	scheduler *Scheduler
	bookings  *BookingService
	blockouts *BlockoutService
	schedule  *ScheduleService
	eventsMu  sync.Mutex
	events    []recordedEvent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.New(io.Discard)
	store := repository.NewStore(repository.NewMemoryStore(), &logger)
	f := &fixture{ctx: context.Background(), store: store}

	bus := events.NewEventBus(&logger)
	for _, eventType := range events.All {
		bus.Subscribe(eventType, func(e *events.Event) error {
			var payload map[string]interface{}
			if err := json.Unmarshal(e.Payload, &payload); err != nil {
				return err
			}
			f.eventsMu.Lock()
			f.events = append(f.events, recordedEvent{Type: e.Type, Payload: payload})
			f.eventsMu.Unlock()
			return nil
		})
	}

	f.scheduler = NewScheduler(store, time.UTC, &logger)
	f.scheduler.now = func() time.Time { return time.Date(2026, 3, 2, 10, 7, 0, 0, time.UTC) }
	f.bookings = NewBookingService(store, f.scheduler, bus, &logger)
	f.blockouts = NewBlockoutService(store, f.scheduler, bus, &logger)
	f.schedule = NewScheduleService(store, bus, &logger)

	require.NoError(t, store.SaveServices(f.ctx, []models.Service{
		{Name: "Trim", Duration: 30, Price: 25},
		{Name: "Colour", Duration: 90, Price: 80},
		{Name: "Broken", Duration: 0, Price: 5},
	}))
	require.NoError(t, store.SaveAvailability(f.ctx, models.WeeklyAvailability{
		"mon": {rng("09:00", "12:00")},
		"tue": {rng("09:00", "10:00")},
	}))
	return f
}

func (f *fixture) eventTypes() []string {
	var out []string
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

func (f *fixture) book(t *testing.T, client, service, date, at string) models.Booking {
	t.Helper()
	b, err := f.bookings.CommitBooking(f.ctx, BookingRequest{Client: client, Service: service, Date: date, Time: hm(at)})
	require.NoError(t, err)
	return b
}

func starts(values ...string) []timegrid.TimeOfDay {
	out := make([]timegrid.TimeOfDay, 0, len(values))
	for _, v := range values {
		out = append(out, hm(v))
	}
	return out
}

func rngFrom(start timegrid.TimeOfDay, duration int) interval.Interval {
	return interval.Interval{Start: start, End: start.Add(duration)}
}
