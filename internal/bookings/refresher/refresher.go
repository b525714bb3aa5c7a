// Package refresher keeps a periodically recomputed view of upcoming bookings.
package refresher

import (
	"context"
	"sync/atomic"
	"time"

	"bookminton/pkg/clock"
	"bookminton/pkg/logger"
	"bookminton/pkg/model"
)

type upcomingLister interface {
	Upcoming(ctx context.Context) ([]model.BookingView, error)
}

// Board is the upcoming bookings as of RefreshedAt.
type Board struct {
	Bookings    []model.BookingView `json:"bookings"`
	ActiveCount int                 `json:"active_count"`
	RefreshedAt time.Time           `json:"refreshed_at"`
}

type Refresher struct {
	source   upcomingLister
	clock    clock.Clock
	interval time.Duration
	log      *logger.Logger

	board atomic.Pointer[Board]
	nudge chan struct{}
}

func New(source upcomingLister, clk clock.Clock, interval time.Duration, log *logger.Logger) *Refresher {
	r := &Refresher{
		source:   source,
		clock:    clk,
		interval: interval,
		log:      log,
		nudge:    make(chan struct{}, 1),
	}
	r.board.Store(&Board{Bookings: []model.BookingView{}})
	return r
}

// Start refreshes immediately, then on every tick or nudge until ctx is done.
func (r *Refresher) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("refresher started", "interval", r.interval)
	r.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("refresher stopped")
			return nil
		case <-ticker.C:
			r.Refresh(ctx)
		case <-r.nudge:
			r.Refresh(ctx)
		}
	}
}

// Nudge asks for a refresh without waiting for the next tick. It never blocks.
func (r *Refresher) Nudge() {
	select {
	case r.nudge <- struct{}{}:
	default:
	}
}

// Board returns the latest snapshot.
func (r *Refresher) Board() Board {
	return *r.board.Load()
}

func (r *Refresher) Refresh(ctx context.Context) {
	views, err := r.source.Upcoming(ctx)
	if err != nil {
		r.log.Error("failed to refresh upcoming bookings", "error", err)
		return
	}

	next := &Board{Bookings: views, RefreshedAt: r.clock.Now()}
	for _, v := range views {
		if v.Active {
			next.ActiveCount++
		}
	}

	prev := r.board.Swap(next)
	r.logTransitions(prev, next)
}

func (r *Refresher) logTransitions(prev, next *Board) {
	wasActive := make(map[string]bool, len(prev.Bookings))
	for _, v := range prev.Bookings {
		wasActive[v.ID] = v.Active
	}
	stillUpcoming := make(map[string]struct{}, len(next.Bookings))

	for _, v := range next.Bookings {
		stillUpcoming[v.ID] = struct{}{}
		if v.Active && !wasActive[v.ID] {
			r.log.Info("booking started",
				"booking_id", v.ID,
				"venue_id", v.VenueID,
				"court_id", v.CourtID,
			)
		}
	}

	for _, v := range prev.Bookings {
		if _, ok := stillUpcoming[v.ID]; !ok {
			r.log.Info("booking no longer upcoming", "booking_id", v.ID)
		}
	}
}
