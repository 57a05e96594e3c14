package service

import (
	"errors"

	"soloschedule/internal/availability"
)

var (
	ErrSlotNoLongerAvailable = errors.New("selected time is no longer available, please choose another")
	ErrInvalidRange          = errors.New("end time must be after start time")
	ErrOverlappingRange      = errors.New("this overlaps another range for the day")
	ErrOffGrid               = errors.New("times must be in 15-minute increments")
	ErrNoRoomForRange        = errors.New("no room left in the day for another range")
	ErrUnknownWeekday        = errors.New("unknown weekday")
	ErrRangeNotFound         = errors.New("range not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrBlockoutNotFound      = errors.New("blockout not found")
	ErrUnknownService        = errors.New("unknown service")
	ErrInvalidService        = errors.New("service needs a name, a positive duration and a non-negative price")
	ErrInvalidStatus         = errors.New("invalid booking status")
	ErrInvalidBlockType      = errors.New("invalid blockout type")
	ErrClientRequired        = errors.New("client is required")
	ErrClientLocked          = errors.New("client cannot be changed when rescheduling")
	ErrInvalidDate           = availability.ErrInvalidDate
)
