// Package earnings totals booking revenue and exports the ledger.
package earnings

import (
	"sort"

	"soloschedule/internal/models"

	"github.com/shopspring/decimal"
)

const (
	BadgePaid   = "Paid"
	BadgeUnpaid = "Unpaid"
)

// Filter limits the ledger to an inclusive ISO date range. Empty bounds are open.
type Filter struct {
	From string
	To   string
}

func (f Filter) match(date string) bool {
	if f.From != "" && date < f.From {
		return false
	}
	if f.To != "" && date > f.To {
		return false
	}
	return true
}

// Row is one ledger line.
type Row struct {
	BookingID string
	Date      string
	Time      string
	Client    string
	Service   string
	Price     decimal.Decimal
	Badge     string
}

// Summary holds the totals and the ledger. Total counts paid bookings; Unpaid
// counts completed bookings that are not paid yet.
type Summary struct {
	Total       decimal.Decimal
	Paid        decimal.Decimal
	Unpaid      decimal.Decimal
	PaidCount   int
	UnpaidCount int
	Rows        []Row
}

// Badge is the ledger label of a booking.
func Badge(b models.Booking) string {
	switch {
	case b.Paid():
		return BadgePaid
	case b.Status == models.StatusCompleted:
		return BadgeUnpaid
	default:
		return b.Status
	}
}

func Summarize(bookings []models.Booking, filter Filter) Summary {
	s := Summary{
		Total:  decimal.Zero,
		Paid:   decimal.Zero,
		Unpaid: decimal.Zero,
		Rows:   []Row{},
	}

	sorted := append([]models.Booking(nil), bookings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].Time < sorted[j].Time
	})

	for _, b := range sorted {
		if !filter.match(b.Date) {
			continue
		}
		// Stored prices are dollars with cents.
		price := decimal.NewFromFloat(b.Price).Round(2)
		switch {
		case b.Paid():
			s.Paid = s.Paid.Add(price)
			s.PaidCount++
		case b.Status == models.StatusCompleted:
			s.Unpaid = s.Unpaid.Add(price)
			s.UnpaidCount++
		}
		s.Rows = append(s.Rows, Row{
			BookingID: b.ID,
			Date:      b.Date,
			Time:      b.Time.String(),
			Client:    b.Client,
			Service:   b.Service,
			Price:     price,
			Badge:     Badge(b),
		})
	}
	s.Total = s.Paid
	return s
}
