package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"bookminton/internal/availability"
	bookingserrors "bookminton/internal/bookings/errors"
	"bookminton/internal/bookings/events"
	"bookminton/internal/bookings/repository"
	"bookminton/internal/bookings/validator"
	"bookminton/internal/catalog"
	"bookminton/internal/pricing"
	"bookminton/pkg/clock"
	"bookminton/pkg/config"
	apperrors "bookminton/pkg/errors"
	"bookminton/pkg/model"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type BookingService interface {
	Create(ctx context.Context, req *model.CreateBookingRequest) (*model.BookingView, error)
	GetByID(ctx context.Context, id string) (*model.BookingView, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]model.BookingView, int64, error)
	Upcoming(ctx context.Context) ([]model.BookingView, error)
	Transactions(ctx context.Context, limit int, offset int64) ([]model.Transaction, int64, error)
	Clear(ctx context.Context) error
}

type bookingService struct {
	repo      repository.BookingRepository
	catalog   *catalog.Catalog
	engine    *availability.Engine
	validator *validator.BookingValidator
	publisher events.Publisher
	clock     clock.Clock
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	cat *catalog.Catalog,
	engine *availability.Engine,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	clk clock.Clock,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		catalog:   cat,
		engine:    engine,
		validator: validator,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

type slot struct {
	venue   model.Venue
	court   model.Court
	pricing model.SportPricing
	date    model.Date
	iv      model.Interval
}

func (s *bookingService) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.BookingView, error) {
	sl, err := s.resolve(req)
	if err != nil {
		s.cfg.Log.Warn("Booking request rejected",
			"venue_id", req.VenueID,
			"court_id", req.CourtID,
			"date", req.Date,
			"start_time", req.StartTime,
			"end_time", req.EndTime,
			"error", err,
		)
		return nil, err
	}

	now := s.clock.Now()
	booking := model.Booking{
		ID:          uuid.NewString(),
		VenueID:     sl.venue.ID,
		VenueName:   sl.venue.Name,
		CourtID:     sl.court.ID,
		CourtNumber: sl.court.Number,
		SportID:     sl.pricing.Sport.ID,
		Date:        sl.date,
		StartTime:   sl.iv.Start,
		EndTime:     sl.iv.End,
		BookingDate: now,
	}
	transaction := model.Transaction{
		ID:        uuid.NewString(),
		BookingID: booking.ID,
		CourtID:   booking.CourtID,
		Amount:    pricing.CalculatePrice(sl.pricing.Sport.ID, sl.court.Sports, sl.iv),
		Status:    model.TransactionSuccessful,
		CreatedAt: now,
	}

	err = s.repo.ExecuteTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := s.verifyNoConflict(tx, &booking); err != nil {
			return err
		}
		if err := tx.Insert(booking, transaction); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			s.cfg.Log.Warn("Booking rejected at commit",
				"venue_id", booking.VenueID,
				"court_id", booking.CourtID,
				"date", booking.Date.String(),
				"interval", booking.Interval().String(),
				"error", err,
			)
			return nil, err
		}
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"venue_id", booking.VenueID,
		"court_id", booking.CourtID,
		"date", booking.Date.String(),
		"interval", booking.Interval().String(),
		"amount", transaction.Amount,
	)

	if err := s.publisher.PublishBookingCreated(ctx, events.NewBookingCreated(booking, transaction)); err != nil {
		s.cfg.Log.Error("Failed to publish booking created event",
			"id", booking.ID,
			"error", err,
		)
	}

	view := model.NewBookingView(booking, now)
	return &view, nil
}

// resolve runs every check that does not depend on the ledger, in order.
func (s *bookingService) resolve(req *model.CreateBookingRequest) (*slot, error) {
	if err := s.validator.Validate(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs.Incomplete() {
			return nil, apperrors.IncompleteInput("Date, time and sport must all be selected", verrs.Details()).
				WithCause(bookingserrors.ErrIncompleteInput)
		}
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Invalid booking request", verrs.Details())
		}
		return nil, apperrors.Internal("Failed to validate booking", err)
	}

	date, _ := model.ParseDate(req.Date)
	start, _ := model.ParseTimeOfDay(req.StartTime)
	end, _ := model.ParseEndTime(req.EndTime)
	iv := model.Interval{Start: start, End: end}

	venue, court, ok := s.catalog.Court(req.VenueID, req.CourtID)
	if !ok {
		return nil, apperrors.NotFoundWithID("Court", req.CourtID).WithCause(bookingserrors.ErrNotFound)
	}

	if court.Status != model.CourtAvailable {
		return nil, apperrors.Unavailable(fmt.Sprintf("Court %s is %s", court.Number, court.Status)).
			WithCause(bookingserrors.ErrUnavailable)
	}

	if !iv.Within(venue.OpenHours) {
		return nil, apperrors.OutOfHours(fmt.Sprintf("%s is outside opening hours %s-%s", iv, venue.OpenHours.Open, venue.OpenHours.Close)).
			WithCause(bookingserrors.ErrOutOfHours)
	}

	p, ok := pricing.FindPricing(req.SportID, court.Sports)
	if !ok {
		sport := req.SportID
		if known, found := s.catalog.Sport(req.SportID); found {
			sport = known.Name
		}
		return nil, apperrors.SportNotOffered(fmt.Sprintf("Court %s does not offer %s", court.Number, sport)).
			WithCause(bookingserrors.ErrSportNotOffered)
	}

	if err := s.engine.ValidateWindow(date, iv); err != nil {
		return nil, s.windowError(date, err)
	}

	return &slot{venue: venue, court: court, pricing: p, date: date, iv: iv}, nil
}

func (s *bookingService) windowError(date model.Date, err error) error {
	if errors.Is(err, bookingserrors.ErrTooShort) {
		return apperrors.TooShort(fmt.Sprintf("Bookings must last at least %s", s.engine.Rules().MinDuration)).
			WithCause(err)
	}

	details := map[string]any{"date": date.String()}
	if earliest, ok := s.engine.EarliestStart(date); ok {
		details["earliest_start"] = earliest.String()
	}
	return apperrors.TooSoon("Start time is too soon").WithDetails(details).WithCause(err)
}

func (s *bookingService) verifyNoConflict(tx repository.Tx, booking *model.Booking) error {
	if availability.HasConflict(tx.FindBySlot(booking.VenueID, booking.CourtID, booking.Date), booking.Interval()) {
		return apperrors.Conflict("Court is already booked for the selected time").
			WithCause(bookingserrors.ErrConflict)
	}
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.BookingView, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrBookingNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id).WithCause(err)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	view := model.NewBookingView(*booking, s.clock.Now())
	return &view, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]model.BookingView, int64, error) {
	var count int64
	var bookings []model.Booking

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", err)
			return apperrors.Internal("Failed to count bookings", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bookings, err = s.repo.FindAll(gctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", err)
			return apperrors.Internal("Failed to retrieve bookings", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	now := s.clock.Now()
	views := make([]model.BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, model.NewBookingView(b, now))
	}
	return views, count, nil
}

// Upcoming returns bookings that have not finished yet, soonest first.
func (s *bookingService) Upcoming(ctx context.Context) ([]model.BookingView, error) {
	snapshot, err := s.repo.Snapshot(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to read bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	now := s.clock.Now()
	loc := now.Location()
	views := []model.BookingView{}
	for _, b := range snapshot {
		if b.StatusAt(now) == model.BookingUpcoming {
			views = append(views, model.NewBookingView(b, now))
		}
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].StartsAt(loc).Before(views[j].StartsAt(loc))
	})
	return views, nil
}

func (s *bookingService) Transactions(ctx context.Context, limit int, offset int64) ([]model.Transaction, int64, error) {
	var count int64
	var transactions []model.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.CountTransactions(gctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count transactions", "error", err)
			return apperrors.Internal("Failed to count transactions", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		transactions, err = s.repo.FindTransactions(gctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list transactions", "error", err)
			return apperrors.Internal("Failed to retrieve transactions", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return transactions, count, nil
}

func (s *bookingService) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		s.cfg.Log.Error("Failed to clear bookings", "error", err)
		return apperrors.Internal("Failed to clear bookings", err)
	}
	s.cfg.Log.Info("Bookings and transactions cleared")
	return nil
}
