package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookminton/internal/availability"
	bookingserrors "bookminton/internal/bookings/errors"
	"bookminton/internal/bookings/events"
	"bookminton/internal/bookings/repository"
	"bookminton/internal/bookings/validator"
	"bookminton/internal/catalog"
	"bookminton/pkg/clock"
	"bookminton/pkg/config"
	apperrors "bookminton/pkg/errors"
	"bookminton/pkg/logger"
	"bookminton/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	badminton = model.Sport{ID: "badminton", Name: "Badminton"}
	futsal    = model.Sport{ID: "futsal", Name: "Futsal"}

	// 14:05 on 2025-03-10.
	now      = time.Date(2025, time.March, 10, 14, 5, 0, 0, time.UTC)
	today    = "2025-03-10"
	tomorrow = "2025-03-11"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BookingCreated
	err    error
}

func (p *recordingPublisher) PublishBookingCreated(_ context.Context, e events.BookingCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	svc       BookingService
	repo      repository.BookingRepository
	clock     *clock.FixedClock
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat := catalog.New([]model.Venue{{
		ID:        "merak",
		Name:      "Merak Merah Badminton",
		OpenHours: model.OpenHours{Open: model.NewTimeOfDay(8, 0), Close: model.NewTimeOfDay(22, 0)},
		Courts: []model.Court{
			{ID: "b1", Number: "Badminton 1", Status: model.CourtAvailable, Sports: []model.SportPricing{{Sport: badminton, PricePerHour: 50000}}},
			{ID: "b2", Number: "Badminton 2", Status: model.CourtUnavailable, Sports: []model.SportPricing{{Sport: badminton, PricePerHour: 50000}}},
			{ID: "b3", Number: "Badminton 3", Status: model.CourtReserved, Sports: []model.SportPricing{{Sport: badminton, PricePerHour: 50000}}},
			{ID: "f1", Number: "Futsal 1", Status: model.CourtAvailable, Sports: []model.SportPricing{{Sport: futsal, PricePerHour: 70000}}},
		},
	}})

	clk := clock.Fixed(now)
	repo := repository.NewMemoryBookingRepository()
	log := logger.Discard()
	engine := availability.NewEngine(cat, repo, clk, availability.DefaultRules())
	publisher := &recordingPublisher{}
	cfg := &config.Config{Log: log}

	svc := NewBookingService(repo, cat, engine, validator.NewBookingValidator(log), publisher, clk, cfg)
	return &fixture{svc: svc, repo: repo, clock: clk, publisher: publisher}
}

func request(courtID, sportID, date, start, end string) *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		VenueID:   "merak",
		CourtID:   courtID,
		SportID:   sportID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
}

func (f *fixture) counts(t *testing.T) (int64, int64) {
	t.Helper()
	ctx := context.Background()
	bookings, err := f.repo.Count(ctx)
	require.NoError(t, err)
	transactions, err := f.repo.CountTransactions(ctx)
	require.NoError(t, err)
	return bookings, transactions
}

func TestCreate_Success(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.Create(context.Background(), request("b1", "badminton", tomorrow, "10:00", "12:00"))
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "Merak Merah Badminton", view.VenueName)
	assert.Equal(t, "Badminton 1", view.CourtNumber)
	assert.Equal(t, model.BookingUpcoming, view.Status)
	assert.False(t, view.Active)
	assert.Equal(t, now, view.BookingDate)

	bookings, transactions := f.counts(t)
	assert.Equal(t, int64(1), bookings)
	assert.Equal(t, int64(1), transactions)

	txns, _, err := f.svc.Transactions(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, view.ID, txns[0].BookingID)
	assert.Equal(t, "b1", txns[0].CourtID)
	assert.Equal(t, 100000.0, txns[0].Amount)
	assert.Equal(t, model.TransactionSuccessful, txns[0].Status)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, view.ID, f.publisher.events[0].Booking.ID)
	assert.Equal(t, 100000.0, f.publisher.events[0].Amount)
}

func TestCreate_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	_, err := f.svc.Create(context.Background(), request("b1", "badminton", tomorrow, "10:00", "12:00"))
	require.NoError(t, err)

	bookings, _ := f.counts(t)
	assert.Equal(t, int64(1), bookings)
}

func TestCreate_DuplicateIsUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, request("b1", "badminton", tomorrow, "10:00", "12:00"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, request("b1", "badminton", tomorrow, "10:00", "12:00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, bookingserrors.ErrUnavailable)
	assert.ErrorIs(t, err, bookingserrors.ErrConflict)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	assert.Equal(t, "Court is already booked for the selected time", appErr.Message)

	bookings, transactions := f.counts(t)
	assert.Equal(t, int64(1), bookings)
	assert.Equal(t, int64(1), transactions)
	assert.Len(t, f.publisher.events, 1)
}

func TestCreate_ConflictBoundaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, request("b1", "badminton", tomorrow, "10:00", "12:00"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, request("b1", "badminton", tomorrow, "12:00", "13:00"))
	assert.NoError(t, err, "touching intervals do not overlap")

	_, err = f.svc.Create(ctx, request("b1", "badminton", tomorrow, "09:00", "10:30"))
	assert.ErrorIs(t, err, bookingserrors.ErrConflict)

	_, err = f.svc.Create(ctx, request("f1", "futsal", tomorrow, "10:00", "12:00"))
	assert.NoError(t, err, "other court is independent")

	bookings, _ := f.counts(t)
	assert.Equal(t, int64(3), bookings)
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		req      *model.CreateBookingRequest
		wantErr  error
		wantCode string
	}{
		{
			name:     "unknown court",
			req:      request("zz", "badminton", tomorrow, "10:00", "12:00"),
			wantErr:  bookingserrors.ErrNotFound,
			wantCode: apperrors.CodeNotFound,
		},
		{
			name: "unknown venue",
			req: &model.CreateBookingRequest{
				VenueID: "nope", CourtID: "b1", SportID: "badminton", Date: tomorrow, StartTime: "10:00", EndTime: "12:00",
			},
			wantErr:  bookingserrors.ErrNotFound,
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "court marked unavailable",
			req:      request("b2", "badminton", tomorrow, "10:00", "12:00"),
			wantErr:  bookingserrors.ErrUnavailable,
			wantCode: apperrors.CodeUnavailable,
		},
		{
			name:     "court marked reserved",
			req:      request("b3", "badminton", tomorrow, "10:00", "12:00"),
			wantErr:  bookingserrors.ErrUnavailable,
			wantCode: apperrors.CodeUnavailable,
		},
		{
			name:     "end after closing",
			req:      request("b1", "badminton", tomorrow, "21:00", "23:00"),
			wantErr:  bookingserrors.ErrOutOfHours,
			wantCode: apperrors.CodeOutOfHours,
		},
		{
			name:     "end before start",
			req:      request("b1", "badminton", tomorrow, "12:00", "10:00"),
			wantErr:  bookingserrors.ErrOutOfHours,
			wantCode: apperrors.CodeOutOfHours,
		},
		{
			name:     "sport not offered",
			req:      request("b1", "futsal", tomorrow, "10:00", "12:00"),
			wantErr:  bookingserrors.ErrSportNotOffered,
			wantCode: apperrors.CodeSportNotOffered,
		},
		{
			name:     "thirty minutes",
			req:      request("b1", "badminton", tomorrow, "10:00", "10:30"),
			wantErr:  bookingserrors.ErrTooShort,
			wantCode: apperrors.CodeTooShort,
		},
		{
			name:     "same day too soon",
			req:      request("b1", "badminton", today, "14:30", "15:30"),
			wantErr:  bookingserrors.ErrTooSoon,
			wantCode: apperrors.CodeTooSoon,
		},
		{
			name:     "same day one hour ahead is still too soon",
			req:      request("b1", "badminton", today, "15:00", "16:00"),
			wantErr:  bookingserrors.ErrTooSoon,
			wantCode: apperrors.CodeTooSoon,
		},
		{
			name:     "yesterday",
			req:      request("b1", "badminton", "2025-03-09", "10:00", "12:00"),
			wantErr:  bookingserrors.ErrTooSoon,
			wantCode: apperrors.CodeTooSoon,
		},
		{
			name:     "missing sport",
			req:      request("b1", "", tomorrow, "10:00", "12:00"),
			wantErr:  bookingserrors.ErrIncompleteInput,
			wantCode: apperrors.CodeIncompleteInput,
		},
		{
			name:     "missing time",
			req:      request("b1", "badminton", tomorrow, "", "12:00"),
			wantErr:  bookingserrors.ErrIncompleteInput,
			wantCode: apperrors.CodeIncompleteInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Create(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, apperrors.AsAppError(err).Code)

			bookings, transactions := f.counts(t)
			assert.Zero(t, bookings)
			assert.Zero(t, transactions)
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestCreate_SportNotOfferedNamesSport(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), request("b1", "futsal", tomorrow, "10:00", "12:00"))
	require.Error(t, err)
	assert.Equal(t, "Court Badminton 1 does not offer Futsal", apperrors.AsAppError(err).Message)

	_, err = f.svc.Create(context.Background(), request("b1", "curling", tomorrow, "10:00", "12:00"))
	require.Error(t, err)
	assert.Equal(t, "Court Badminton 1 does not offer curling", apperrors.AsAppError(err).Message)
}

func TestCreate_TooSoonReportsEarliestStart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), request("b1", "badminton", today, "14:30", "15:30"))
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr.Details)
	assert.Equal(t, "16:00", appErr.Details["earliest_start"])

	_, err = f.svc.Create(context.Background(), request("b1", "badminton", today, "16:00", "17:00"))
	assert.NoError(t, err)
}

func TestCreate_MalformedInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), request("b1", "badminton", "10-03-2025", "10:00", "12:00"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.AsAppError(err).Code)
}

func TestCreate_ConcurrentRequestsKeepSlotsDisjoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	starts := []string{"10:00", "10:30", "11:00", "09:30", "10:00", "11:30"}
	var wg sync.WaitGroup
	for _, start := range starts {
		wg.Add(1)
		go func(start string) {
			defer wg.Done()
			s, _ := model.ParseTimeOfDay(start)
			_, _ = f.svc.Create(ctx, request("b1", "badminton", tomorrow, start, s.Add(time.Hour).String()))
		}(start)
	}
	wg.Wait()

	all, err := f.repo.Snapshot(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			assert.False(t, all[i].Interval().Overlaps(all[j].Interval()),
				"%s overlaps %s", all[i].Interval(), all[j].Interval())
		}
	}

	_, transactions := f.counts(t)
	assert.Equal(t, int64(len(all)), transactions)
}

func TestUpcoming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, request("b1", "badminton", tomorrow, "18:00", "19:00"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, request("b1", "badminton", today, "16:00", "17:00"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, request("f1", "futsal", tomorrow, "09:00", "10:00"))
	require.NoError(t, err)

	upcoming, err := f.svc.Upcoming(ctx)
	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	assert.Equal(t, "2025-03-10 16:00", upcoming[0].Date.String()+" "+upcoming[0].StartTime.String())
	assert.Equal(t, "f1", upcoming[1].CourtID)
	assert.Equal(t, model.NewTimeOfDay(18, 0), upcoming[2].StartTime)

	// 16:30 today: the first booking is active.
	f.clock.Set(time.Date(2025, time.March, 10, 16, 30, 0, 0, time.UTC))
	upcoming, err = f.svc.Upcoming(ctx)
	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	assert.True(t, upcoming[0].Active)
	assert.False(t, upcoming[1].Active)

	// 17:00 today: it has completed.
	f.clock.Set(time.Date(2025, time.March, 10, 17, 0, 0, 0, time.UTC))
	upcoming, err = f.svc.Upcoming(ctx)
	require.NoError(t, err)
	assert.Len(t, upcoming, 2)

	all, total, err := f.svc.GetAll(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, model.BookingCompleted, all[1].Status)
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, request("b1", "badminton", tomorrow, "10:00", "12:00"))
	require.NoError(t, err)

	got, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Booking, got.Booking)

	_, err = f.svc.GetByID(ctx, "missing")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)

	_, err = f.svc.GetByID(ctx, "")
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.AsAppError(err).Code)
}

func TestGetAll_Pagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, start := range []string{"08:00", "10:00", "12:00"} {
		s, _ := model.ParseTimeOfDay(start)
		_, err := f.svc.Create(ctx, request("b1", "badminton", tomorrow, start, s.Add(time.Hour).String()))
		require.NoError(t, err)
	}

	page, total, err := f.svc.GetAll(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, model.NewTimeOfDay(10, 0), page[0].StartTime)
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, request("b1", "badminton", tomorrow, "10:00", "12:00"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Clear(ctx))
	bookings, transactions := f.counts(t)
	assert.Zero(t, bookings)
	assert.Zero(t, transactions)

	_, err = f.svc.Create(ctx, request("b1", "badminton", tomorrow, "10:00", "12:00"))
	assert.NoError(t, err, "slot is free again after clear")
}
