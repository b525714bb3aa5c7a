// Package events announces committed bookings to other systems.
package events

import (
	"context"
	"time"

	"bookminton/pkg/kafka"
	"bookminton/pkg/model"
)

const (
	EventTypeBookingCreated = "booking.created"
	SchemaVersion           = "1"
	Source                  = "bookminton"
)

type BookingCreated struct {
	Booking       model.Booking `json:"booking"`
	TransactionID string        `json:"transaction_id"`
	Amount        float64       `json:"amount"`
}

func NewBookingCreated(b model.Booking, t model.Transaction) BookingCreated {
	return BookingCreated{Booking: b, TransactionID: t.ID, Amount: t.Amount}
}

type Publisher interface {
	PublishBookingCreated(ctx context.Context, event BookingCreated) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher is used when no broker is configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishBookingCreated(context.Context, BookingCreated) error { return nil }
func (noopPublisher) Close() error                                                 { return nil }

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producer messagePublisher
	timeout  time.Duration
}

// NewKafkaPublisher keys each event by court so events for one court stay ordered.
func NewKafkaPublisher(producer messagePublisher, timeout time.Duration) Publisher {
	return &kafkaPublisher{producer: producer, timeout: timeout}
}

func (p *kafkaPublisher) PublishBookingCreated(ctx context.Context, event BookingCreated) error {
	msg, err := kafka.NewMessage().
		WithKey(event.Booking.CourtID).
		WithValue(event).
		WithEventID(event.Booking.ID).
		WithEventType(EventTypeBookingCreated).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithTimestamp(event.Booking.BookingDate).
		Build()
	if err != nil {
		return err
	}

	// Detached from request cancellation.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}
