package models

import "soloschedule/internal/timegrid"

// Booking is one client appointment. Its length is not stored: occupancy is
// derived from the referenced Service at read time.
type Booking struct {
	ID         string             `json:"id"`
	Client     string             `json:"client"`
	Service    string             `json:"service"`
	Date       string             `json:"date"`
	Time       timegrid.TimeOfDay `json:"time"`
	Price      float64            `json:"price"`
	Status     string             `json:"status"`     // scheduled, in_progress, completed, no_show, late, canceled
	PaidStatus string             `json:"paidStatus"` // paid, unpaid
}

// Canceled reports whether the booking no longer occupies its slot.
func (b Booking) Canceled() bool {
	return b.Status == StatusCanceled
}

// Paid reports whether the booking has been paid for.
func (b Booking) Paid() bool {
	return b.PaidStatus == PaidStatusPaid
}

// Service is a bookable offering. Bookings reference it by Name.
type Service struct {
	Name     string  `json:"name" yaml:"name"`
	Duration int     `json:"duration" yaml:"duration"`
	Price    float64 `json:"price" yaml:"price"`
}

// ServiceIndex looks services up by name.
type ServiceIndex map[string]Service

func NewServiceIndex(services []Service) ServiceIndex {
	idx := make(ServiceIndex, len(services))
	for _, s := range services {
		idx[s.Name] = s
	}
	return idx
}

// DurationOf returns the duration of the named service, falling back to
// DefaultServiceDuration when the service is missing or has no usable duration.
func (idx ServiceIndex) DurationOf(name string) int {
	if s, ok := idx[name]; ok && s.Duration > 0 {
		return s.Duration
	}
	return DefaultServiceDuration
}
