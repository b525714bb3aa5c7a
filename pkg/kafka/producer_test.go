package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func buildMessage(t *testing.T) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey("court-1").
		WithValue(map[string]string{"id": "b1"}).
		WithEventType("booking.created").
		Build()
	require.NoError(t, err)
	return msg
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "bookings")

	require.NoError(t, p.Publish(context.Background(), buildMessage(t)))
	require.Len(t, w.written, 1)

	got := w.written[0]
	assert.Equal(t, "court-1", string(got.Key))
	assert.JSONEq(t, `{"id":"b1"}`, string(got.Value))

	headers := map[string]string{}
	for _, h := range got.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "booking.created", headers[HeaderEventType])
	assert.NotEmpty(t, headers[HeaderEventID])
	assert.NotEmpty(t, headers[HeaderTimestamp])
}

func TestProducer_PublishRejectsInvalid(t *testing.T) {
	p := newProducer(&fakeWriter{}, "bookings")
	msg := buildMessage(t)

	noKey := msg
	noKey.Key = ""
	assert.ErrorIs(t, p.Publish(context.Background(), noKey), ErrEmptyKey)

	noValue := msg
	noValue.Value = nil
	assert.ErrorIs(t, p.Publish(context.Background(), noValue), ErrEmptyValue)
}

func TestProducer_Closed(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "bookings")

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), buildMessage(t)), ErrProducerClosed)
}

func TestProducer_MiddlewareOrder(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newProducer(w, "bookings")

	var calls []string
	for _, name := range []string{"outer", "inner"} {
		name := name
		p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
			calls = append(calls, name)
			assert.Equal(t, "bookings", msg.Topic)
			return next(ctx, msg)
		})
	}

	err := p.Publish(context.Background(), buildMessage(t))
	assert.EqualError(t, err, "broker down")
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

func TestMessageBuilder_EncodeError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Error(t, err)
}
