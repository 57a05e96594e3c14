package models

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusNoShow     = "no_show"
	StatusLate       = "late"
	StatusCanceled   = "canceled"
)

const (
	PaidStatusPaid   = "paid"
	PaidStatusUnpaid = "unpaid"
)

const (
	BlockBreak    = "Break"
	BlockAdmin    = "Admin"
	BlockTravel   = "Travel"
	BlockPersonal = "Personal"
	BlockBuffer   = "Buffer"
	BlockOther    = "Other"
)

// BlockTypes lists the blockout types in display order.
var BlockTypes = []string{BlockBreak, BlockAdmin, BlockTravel, BlockPersonal, BlockBuffer, BlockOther}

// Weekdays lists weekday keys indexed by time.Weekday (Sunday = 0).
var Weekdays = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// Statuses lists every booking status.
var Statuses = []string{StatusScheduled, StatusInProgress, StatusCompleted, StatusNoShow, StatusLate, StatusCanceled}

const (
	// DefaultServiceDuration applies when a booking references a missing service.
	DefaultServiceDuration = 60

	// DateLayout is the calendar date format used as the blockout and booking key.
	DateLayout = "2006-01-02"
)

// Storage keys of the local key-value store.
const (
	KeyBookings     = "bookings"
	KeyServices     = "services"
	KeyAvailability = "soloschedule_availability"
	KeyDayBlocks    = "day_blocks"
)

// IsValidStatus reports whether s is a known booking status.
func IsValidStatus(s string) bool {
	for _, status := range Statuses {
		if status == s {
			return true
		}
	}
	return false
}

// IsValidBlockType reports whether s is a known blockout type.
func IsValidBlockType(s string) bool {
	for _, t := range BlockTypes {
		if t == s {
			return true
		}
	}
	return false
}
