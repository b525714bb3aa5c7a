package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("venue or court not found")

	ErrBookingNotFound = errors.New("booking not found")

	ErrUnavailable = errors.New("court is unavailable")

	// ErrConflict is an ErrUnavailable caused by an overlapping booking.
	ErrConflict = fmt.Errorf("%w: slot overlaps an existing booking", ErrUnavailable)

	ErrOutOfHours = errors.New("requested time is outside venue operating hours")

	ErrSportNotOffered = errors.New("sport is not offered on this court")

	ErrTooShort = errors.New("booking is shorter than the minimum duration")

	ErrTooSoon = errors.New("start time is earlier than the same-day lead time allows")

	ErrIncompleteInput = errors.New("required booking input is missing")
)
