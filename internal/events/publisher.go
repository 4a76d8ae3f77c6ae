package events

import (
	"context"
	"time"

	"skybook/pkg/kafka"
	"skybook/pkg/logger"
	"skybook/pkg/model"
)

// Publisher emits lifecycle events after state changes. Publishing is
// best-effort: failures are logged and never surfaced to callers, so a
// broker outage cannot fail a booking.
type Publisher struct {
	bookings *kafka.Producer
	flights  *kafka.Producer
	log      *logger.Logger
}

// NewPublisher accepts nil producers; the corresponding events are then
// silently dropped (used when no brokers are configured).
func NewPublisher(bookings, flights *kafka.Producer, log *logger.Logger) *Publisher {
	return &Publisher{
		bookings: bookings,
		flights:  flights,
		log:      log,
	}
}

func (p *Publisher) BookingConfirmed(ctx context.Context, b *model.Booking) {
	p.publishBooking(ctx, TypeBookingConfirmed, b)
}

func (p *Publisher) BookingCancelled(ctx context.Context, b *model.Booking) {
	p.publishBooking(ctx, TypeBookingCancelled, b)
}

func (p *Publisher) FlightCreated(ctx context.Context, f *model.Flight) {
	p.publishFlight(ctx, TypeFlightCreated, f)
}

func (p *Publisher) FlightCancelled(ctx context.Context, f *model.Flight) {
	p.publishFlight(ctx, TypeFlightCancelled, f)
}

func (p *Publisher) publishBooking(ctx context.Context, eventType string, b *model.Booking) {
	if p == nil || p.bookings == nil {
		return
	}

	event := BookingEvent{
		Type:           eventType,
		BookingID:      b.ID,
		UserID:         b.UserID,
		FlightID:       b.FlightID,
		ConfirmationID: b.ConfirmationID,
		Passengers:     b.Passengers,
		TotalPrice:     b.TotalPrice,
		Status:         string(b.Status),
		OccurredAt:     time.Now().UTC(),
	}

	msg, err := kafka.NewJSONMessage(b.ID, event)
	if err != nil {
		p.log.Error("Failed to encode booking event", "type", eventType, "booking_id", b.ID, "error", err)
		return
	}

	if err := p.bookings.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish booking event", "type", eventType, "booking_id", b.ID, "error", err)
	}
}

func (p *Publisher) publishFlight(ctx context.Context, eventType string, f *model.Flight) {
	if p == nil || p.flights == nil {
		return
	}

	event := FlightEvent{
		Type:          eventType,
		FlightID:      f.ID,
		CompanyID:     f.CompanyID,
		FlightNumber:  f.FlightNumber,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
		Status:        string(f.Status),
		OccurredAt:    time.Now().UTC(),
	}

	msg, err := kafka.NewJSONMessage(f.ID, event)
	if err != nil {
		p.log.Error("Failed to encode flight event", "type", eventType, "flight_id", f.ID, "error", err)
		return
	}

	if err := p.flights.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish flight event", "type", eventType, "flight_id", f.ID, "error", err)
	}
}
