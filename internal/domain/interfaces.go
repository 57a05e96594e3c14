package domain

import (
	"context"

	"soloschedule/internal/models"
)

// KeyValueStore is the persistence boundary. Values are whole JSON documents
// and every Set is a single overwrite.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Repository loads and saves the four collections. Loaded values are already
// normalized.
type Repository interface {
	GetBookings(ctx context.Context) ([]models.Booking, error)
	SaveBookings(ctx context.Context, bookings []models.Booking) error
	GetServices(ctx context.Context) ([]models.Service, error)
	SaveServices(ctx context.Context, services []models.Service) error
	GetAvailability(ctx context.Context) (models.WeeklyAvailability, error)
	SaveAvailability(ctx context.Context, weekly models.WeeklyAvailability) error
	GetBlockouts(ctx context.Context) (models.DayBlockouts, error)
	SaveBlockouts(ctx context.Context, blockouts models.DayBlockouts) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
