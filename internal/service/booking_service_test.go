package service

import (
	"sync"
	"testing"

	"soloschedule/internal/events"
	"soloschedule/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingService_CommitBooking(t *testing.T) {
	t.Run("CreatesWithDefaults", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, " Ana ", "Colour", nextMonday, "09:00")

		assert.NotEmpty(t, b.ID)
		assert.Equal(t, "Ana", b.Client)
		assert.Equal(t, 80.0, b.Price)
		assert.Equal(t, models.StatusScheduled, b.Status)
		assert.Equal(t, models.PaidStatusUnpaid, b.PaidStatus)

		stored, err := f.bookings.Get(f.ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b, stored)
		assert.Equal(t, []string{events.EventBookingCreated}, f.eventTypes())
	})

	t.Run("RejectsTakenSlot", func(t *testing.T) {
		f := newFixture(t)
		f.book(t, "Ana", "Trim", nextMonday, "10:00")

		for _, at := range []string{"10:00", "10:15", "09:45"} {
			_, err := f.bookings.CommitBooking(f.ctx, BookingRequest{Client: "Ben", Service: "Trim", Date: nextMonday, Time: hm(at)})
			assert.ErrorIs(t, err, ErrSlotNoLongerAvailable, at)
		}

		_, err := f.bookings.CommitBooking(f.ctx, BookingRequest{Client: "Ben", Service: "Trim", Date: nextMonday, Time: hm("09:30")})
		assert.NoError(t, err)
	})

	t.Run("RejectsOffGridAndOutsideSchedule", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.bookings.CommitBooking(f.ctx, BookingRequest{Client: "Ana", Service: "Trim", Date: nextMonday, Time: hm("09:10")})
		assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)

		_, err = f.bookings.CommitBooking(f.ctx, BookingRequest{Client: "Ana", Service: "Trim", Date: saturday, Time: hm("09:00")})
		assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)

		_, err = f.bookings.CommitBooking(f.ctx, BookingRequest{Client: "Ana", Service: "Colour", Date: nextMonday, Time: hm("11:00")})
		assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)
	})

	t.Run("Validation", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.bookings.CommitBooking(f.ctx, BookingRequest{Service: "Trim", Date: nextMonday, Time: hm("09:00")})
		assert.ErrorIs(t, err, ErrClientRequired)

		_, err = f.bookings.CommitBooking(f.ctx, BookingRequest{Client: "Ana", Service: "Massage", Date: nextMonday, Time: hm("09:00")})
		assert.ErrorIs(t, err, ErrUnknownService)

		_, err = f.bookings.CommitBooking(f.ctx, BookingRequest{Client: "Ana", Service: "Trim", Date: "03/09/2026", Time: hm("09:00")})
		assert.ErrorIs(t, err, ErrInvalidDate)

		_, err = f.bookings.CommitBooking(f.ctx, BookingRequest{ID: "missing", Service: "Trim", Date: nextMonday, Time: hm("09:00")})
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})

	t.Run("ZeroDurationServiceUsesDefault", func(t *testing.T) {
		f := newFixture(t)
		f.book(t, "Ana", "Broken", nextMonday, "09:00")

		list, err := f.scheduler.EnumerateStarts(f.ctx, nextMonday, 15, "")
		require.NoError(t, err)
		assert.Equal(t, hm("10:00"), list.Starts[0])
	})
}

func TestBookingService_Edit(t *testing.T) {
	t.Run("RescheduleLocksClientAndResetsStatus", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, "Ana", "Trim", nextMonday, "10:00")
		_, err := f.bookings.UpdateStatus(f.ctx, b.ID, models.StatusLate)
		require.NoError(t, err)

		_, err = f.bookings.CommitBooking(f.ctx, BookingRequest{ID: b.ID, Client: "Ben", Service: "Trim", Date: nextMonday, Time: hm("11:00"), Reschedule: true})
		assert.ErrorIs(t, err, ErrClientLocked)

		moved, err := f.bookings.CommitBooking(f.ctx, BookingRequest{ID: b.ID, Service: "Trim", Date: nextMonday, Time: hm("10:15"), Reschedule: true})
		require.NoError(t, err)
		assert.Equal(t, "Ana", moved.Client)
		assert.Equal(t, hm("10:15"), moved.Time)
		assert.Equal(t, models.StatusScheduled, moved.Status)

		last := f.events[len(f.events)-1]
		assert.Equal(t, events.EventBookingRescheduled, last.Type)
		assert.Equal(t, "10:00", last.Payload["previous_time"])
	})

	t.Run("PlainEditKeepsStatus", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, "Ana", "Trim", nextMonday, "10:00")
		_, err := f.bookings.UpdateStatus(f.ctx, b.ID, models.StatusCompleted)
		require.NoError(t, err)

		edited, err := f.bookings.CommitBooking(f.ctx, BookingRequest{ID: b.ID, Client: "Anna", Service: "Colour", Date: nextMonday, Time: hm("10:00")})
		require.NoError(t, err)
		assert.Equal(t, "Anna", edited.Client)
		assert.Equal(t, "Colour", edited.Service)
		assert.Equal(t, 80.0, edited.Price)
		assert.Equal(t, models.StatusCompleted, edited.Status)

		all, err := f.store.GetBookings(f.ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("EnumeratePreselectsCurrentTime", func(t *testing.T) {
		f := newFixture(t)
		b := f.book(t, "Ana", "Trim", nextMonday, "10:00")

		list, err := f.bookings.EnumerateStarts(f.ctx, nextMonday, "Trim", b.ID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, list.Preselected, 0)
		assert.Equal(t, hm("10:00"), list.Starts[list.Preselected])
		assert.Equal(t, 30, list.Duration)
	})
}

func TestBookingService_Status(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "Ana", "Trim", nextMonday, "10:00")

	_, err := f.bookings.UpdateStatus(f.ctx, b.ID, "done")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.bookings.UpdateStatus(f.ctx, "nope", models.StatusLate)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	canceled, err := f.bookings.UpdateStatus(f.ctx, b.ID, models.StatusCanceled)
	require.NoError(t, err)
	assert.True(t, canceled.Canceled())

	// The canceled booking no longer holds 10:00.
	taker := f.book(t, "Ben", "Trim", nextMonday, "10:00")
	assert.NotEqual(t, b.ID, taker.ID)

	_, err = f.bookings.UpdateStatus(f.ctx, b.ID, models.StatusScheduled)
	assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)

	_, err = f.bookings.UpdateStatus(f.ctx, taker.ID, models.StatusCanceled)
	require.NoError(t, err)
	revived, err := f.bookings.UpdateStatus(f.ctx, b.ID, models.StatusScheduled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, revived.Status)

	onDay, err := f.bookings.ListByDate(f.ctx, nextMonday)
	require.NoError(t, err)
	assert.Len(t, onDay, 2)
}

func TestBookingService_Paid(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "Ana", "Trim", nextMonday, "10:00")

	paid, err := f.bookings.SetPaid(f.ctx, b.ID, true)
	require.NoError(t, err)
	assert.True(t, paid.Paid())

	toggled, err := f.bookings.TogglePaid(f.ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Paid())

	_, err = f.bookings.TogglePaid(f.ctx, "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	assert.Equal(t, []string{
		events.EventBookingCreated,
		events.EventBookingPaidChanged,
		events.EventBookingPaidChanged,
	}, f.eventTypes())
}

func TestBookingService_ConcurrentWrites(t *testing.T) {
	f := newFixture(t)
	seeded := f.book(t, "Ana", "Trim", nextMonday, "09:00")

	free := []string{"09:30", "10:00", "10:30", "11:00", "11:30"}
	const toggles = 40

	var wg sync.WaitGroup
	errs := make(chan error, len(free)+toggles)
	for _, at := range free {
		wg.Add(1)
		go func(at string) {
			defer wg.Done()
			_, err := f.bookings.CommitBooking(f.ctx, BookingRequest{Client: "Walk-in " + at, Service: "Trim", Date: nextMonday, Time: hm(at)})
			errs <- err
		}(at)
	}
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.bookings.TogglePaid(f.ctx, seeded.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := f.store.GetBookings(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(free)+1)

	got, err := f.bookings.Get(f.ctx, seeded.ID)
	require.NoError(t, err)
	assert.False(t, got.Paid())
}
