package model

import (
	"time"
)

type BookingStatus string

const (
	BookingUpcoming  BookingStatus = "UPCOMING"
	BookingCompleted BookingStatus = "COMPLETED"
)

const TransactionSuccessful = "Successful"

// Booking is immutable once committed to the ledger. Its status is derived, never stored.
type Booking struct {
	ID          string    `json:"id"`
	VenueID     string    `json:"venue_id"`
	VenueName   string    `json:"venue_name"`
	CourtID     string    `json:"court_id"`
	CourtNumber string    `json:"court_number"`
	SportID     string    `json:"sport_id"`
	Date        Date      `json:"date"`
	StartTime   TimeOfDay `json:"start_time"`
	EndTime     TimeOfDay `json:"end_time"`
	BookingDate time.Time `json:"booking_date"`
}

func (b Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

func (b Booking) StartsAt(loc *time.Location) time.Time {
	return b.Date.At(b.StartTime, loc)
}

func (b Booking) EndsAt(loc *time.Location) time.Time {
	return b.Date.At(b.EndTime, loc)
}

// StatusAt reports COMPLETED once the booking's end is at or before now.
func (b Booking) StatusAt(now time.Time) BookingStatus {
	if !b.EndsAt(now.Location()).After(now) {
		return BookingCompleted
	}
	return BookingUpcoming
}

// ActiveAt reports whether now falls inside [start, end).
func (b Booking) ActiveAt(now time.Time) bool {
	loc := now.Location()
	return !now.Before(b.StartsAt(loc)) && now.Before(b.EndsAt(loc))
}

type Transaction struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	CourtID   string    `json:"court_id"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// BookingView is a booking with its status computed for a given instant.
type BookingView struct {
	Booking
	Status BookingStatus `json:"status"`
	Active bool          `json:"active"`
}

func NewBookingView(b Booking, now time.Time) BookingView {
	return BookingView{
		Booking: b,
		Status:  b.StatusAt(now),
		Active:  b.ActiveAt(now),
	}
}

// CreateBookingRequest is the raw user selection for a new booking.
type CreateBookingRequest struct {
	VenueID   string `json:"venue_id" validate:"required,max=100"`
	CourtID   string `json:"court_id" validate:"required,max=100"`
	SportID   string `json:"sport_id" validate:"required,max=50"`
	Date      string `json:"date" validate:"required,civil_date"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
}
