// Package availability decides whether a court can be booked for a slot and
// enumerates bookable courts and times. It only reads the catalog and the ledger.
package availability

import (
	"context"
	"time"

	bookingserrors "bookminton/internal/bookings/errors"
	"bookminton/internal/catalog"
	"bookminton/internal/pricing"
	"bookminton/pkg/clock"
	"bookminton/pkg/config"
	"bookminton/pkg/model"
)

// BookingReader returns the bookings already held on one court for one date.
type BookingReader interface {
	FindBySlot(ctx context.Context, venueID, courtID string, date model.Date) ([]model.Booking, error)
}

type Rules struct {
	LeadTime    time.Duration
	MinDuration time.Duration
}

func RulesFromConfig(cfg *config.Config) Rules {
	return Rules{LeadTime: cfg.LeadTime, MinDuration: cfg.MinDuration}
}

func DefaultRules() Rules {
	return Rules{LeadTime: config.DefaultLeadTime, MinDuration: config.DefaultMinDuration}
}

type VenueCourt struct {
	Venue model.Venue `json:"venue"`
	Court model.Court `json:"court"`
}

type Engine struct {
	catalog  *catalog.Catalog
	bookings BookingReader
	clock    clock.Clock
	rules    Rules
}

func NewEngine(cat *catalog.Catalog, bookings BookingReader, clk clock.Clock, rules Rules) *Engine {
	return &Engine{
		catalog:  cat,
		bookings: bookings,
		clock:    clk,
		rules:    rules,
	}
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// CheckAvailability evaluates a slot. The same-day lead time is not part of this
// check; see ValidateWindow.
func (e *Engine) CheckAvailability(ctx context.Context, venueID, courtID string, date model.Date, iv model.Interval) (model.CourtStatus, error) {
	venue, court, ok := e.catalog.Court(venueID, courtID)
	if !ok {
		return model.CourtUnavailable, nil
	}
	return e.slotStatus(ctx, venue, court, date, iv)
}

func (e *Engine) slotStatus(ctx context.Context, venue model.Venue, court model.Court, date model.Date, iv model.Interval) (model.CourtStatus, error) {
	switch court.Status {
	case model.CourtUnavailable:
		return model.CourtUnavailable, nil
	case model.CourtReserved:
		return model.CourtReserved, nil
	}

	if !iv.Within(venue.OpenHours) {
		return model.CourtUnavailable, nil
	}

	existing, err := e.bookings.FindBySlot(ctx, venue.ID, court.ID, date)
	if err != nil {
		return "", err
	}
	if HasConflict(existing, iv) {
		return model.CourtReserved, nil
	}
	return model.CourtAvailable, nil
}

// FindAvailableCourts lists, in catalog order, every court offering sportID that is
// bookable for the slot.
func (e *Engine) FindAvailableCourts(ctx context.Context, sportID string, date model.Date, iv model.Interval) ([]VenueCourt, error) {
	result := []VenueCourt{}

	for _, venue := range e.catalog.Venues() {
		for _, court := range venue.Courts {
			if _, ok := pricing.FindPricing(sportID, court.Sports); !ok {
				continue
			}
			status, err := e.slotStatus(ctx, venue, court, date, iv)
			if err != nil {
				return nil, err
			}
			if status == model.CourtAvailable {
				result = append(result, VenueCourt{Venue: venue, Court: court})
			}
		}
	}
	return result, nil
}

// Today is the current civil date in the clock's location.
func (e *Engine) Today() model.Date {
	return model.DateOf(e.clock.Now())
}

// EarliestStart returns the first start time allowed on date. On today's date that is
// now plus the lead time rounded up to a whole hour. ok is false when no start on
// date can satisfy the rule, which includes every date in the past.
func (e *Engine) EarliestStart(date model.Date) (earliest model.TimeOfDay, ok bool) {
	now := e.clock.Now()
	today := model.DateOf(now)

	switch {
	case date.Before(today):
		return 0, false
	case date != today:
		return 0, true
	}

	t := ceilToHour(now.Add(e.rules.LeadTime))
	if model.DateOf(t) != date {
		return 0, false
	}
	return model.TimeOfDayOf(t), true
}

func ceilToHour(t time.Time) time.Time {
	hour := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	if hour.Before(t) {
		hour = hour.Add(time.Hour)
	}
	return hour
}

// ValidateWindow applies the minimum-duration and same-day lead-time rules, in that
// order.
func (e *Engine) ValidateWindow(date model.Date, iv model.Interval) error {
	if iv.Duration() < e.rules.MinDuration {
		return bookingserrors.ErrTooShort
	}

	earliest, ok := e.EarliestStart(date)
	if !ok || iv.Start < earliest {
		return bookingserrors.ErrTooSoon
	}
	return nil
}

// TimeOptions lists whole hours from the opening hour through the closing hour.
func TimeOptions(hours model.OpenHours) []model.TimeOfDay {
	var options []model.TimeOfDay
	for h := hours.Open.Hour(); h <= hours.Close.Hour(); h++ {
		options = append(options, model.NewTimeOfDay(h, 0))
	}
	return options
}

// StartOptions lists the time options from which at least one bookable interval of
// the minimum duration can begin on date.
func (e *Engine) StartOptions(ctx context.Context, venueID, courtID string, date model.Date) ([]model.TimeOfDay, error) {
	venue, court, ok := e.catalog.Court(venueID, courtID)
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}

	options := TimeOptions(venue.OpenHours)
	result := []model.TimeOfDay{}
	for _, start := range options {
		end := start.Add(e.rules.MinDuration)
		if e.ValidateWindow(date, model.Interval{Start: start, End: end}) != nil {
			continue
		}
		status, err := e.slotStatus(ctx, venue, court, date, model.Interval{Start: start, End: end})
		if err != nil {
			return nil, err
		}
		if status == model.CourtAvailable {
			result = append(result, start)
		}
	}
	return result, nil
}

// EndOptions lists the time options that close a bookable interval beginning at start.
func (e *Engine) EndOptions(ctx context.Context, venueID, courtID string, date model.Date, start model.TimeOfDay) ([]model.TimeOfDay, error) {
	venue, court, ok := e.catalog.Court(venueID, courtID)
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}

	result := []model.TimeOfDay{}
	for _, end := range TimeOptions(venue.OpenHours) {
		iv := model.Interval{Start: start, End: end}
		if end <= start || e.ValidateWindow(date, iv) != nil {
			continue
		}
		status, err := e.slotStatus(ctx, venue, court, date, iv)
		if err != nil {
			return nil, err
		}
		if status != model.CourtAvailable {
			// Longer intervals only add overlap.
			break
		}
		result = append(result, end)
	}
	return result, nil
}

// HasConflict reports whether iv overlaps any of the bookings.
func HasConflict(bookings []model.Booking, iv model.Interval) bool {
	for _, b := range bookings {
		if b.Interval().Overlaps(iv) {
			return true
		}
	}
	return false
}
