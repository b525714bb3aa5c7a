package refresher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookminton/pkg/clock"
	"bookminton/pkg/logger"
	"bookminton/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu    sync.Mutex
	views []model.BookingView
	err   error
	calls int
}

func (f *fakeSource) Upcoming(context.Context) ([]model.BookingView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.BookingView(nil), f.views...), nil
}

func (f *fakeSource) set(views []model.BookingView, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views, f.err = views, err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func view(id string, active bool) model.BookingView {
	return model.BookingView{Booking: model.Booking{ID: id}, Status: model.BookingUpcoming, Active: active}
}

func TestRefresh(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	src := &fakeSource{views: []model.BookingView{view("a", true), view("b", false)}}
	r := New(src, clock.Fixed(now), time.Hour, logger.Discard())

	assert.Empty(t, r.Board().Bookings)

	r.Refresh(context.Background())
	board := r.Board()
	assert.Len(t, board.Bookings, 2)
	assert.Equal(t, 1, board.ActiveCount)
	assert.Equal(t, now, board.RefreshedAt)
}

func TestRefresh_KeepsPreviousBoardOnError(t *testing.T) {
	src := &fakeSource{views: []model.BookingView{view("a", false)}}
	r := New(src, clock.Fixed(time.Now()), time.Hour, logger.Discard())
	r.Refresh(context.Background())

	src.set(nil, errors.New("boom"))
	r.Refresh(context.Background())

	assert.Len(t, r.Board().Bookings, 1)
}

func TestStart_NudgeAndStop(t *testing.T) {
	src := &fakeSource{}
	r := New(src, clock.Fixed(time.Now()), time.Hour, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool { return src.callCount() >= 1 }, time.Second, 5*time.Millisecond)

	src.set([]model.BookingView{view("a", false)}, nil)
	r.Nudge()
	require.Eventually(t, func() bool { return len(r.Board().Bookings) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}

func TestNudge_NeverBlocks(t *testing.T) {
	r := New(&fakeSource{}, clock.Fixed(time.Now()), time.Hour, logger.Discard())
	for i := 0; i < 10; i++ {
		r.Nudge()
	}
}
