package entity

import "errors"

var (
	// Facility errors
	ErrFacilityNotFound = errors.New("facility not found")

	// Booking errors
	ErrBookingNotFound = errors.New("booking not found")
	ErrBookingConflict = errors.New("booking conflicts with an existing booking")
	ErrEndBeforeStart  = errors.New("booking end time must be after start time")
	ErrInvalidShift    = errors.New("shifted booking falls outside the day")
	ErrNotOwner        = errors.New("requester is not the booking owner")

	// Access code errors
	ErrAccessCodeIssued = errors.New("access code already issued for this booking")

	// General errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrDatabaseError = errors.New("database error")
)
