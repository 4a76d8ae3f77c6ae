package events

import "time"

const (
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
	TypeFlightCreated    = "flight.created"
	TypeFlightCancelled  = "flight.cancelled"
)

// BookingEvent is the payload published on booking state changes.
type BookingEvent struct {
	Type           string    `json:"type"`
	BookingID      string    `json:"booking_id"`
	UserID         string    `json:"user_id"`
	FlightID       string    `json:"flight_id"`
	ConfirmationID string    `json:"confirmation_id"`
	Passengers     int       `json:"passengers"`
	TotalPrice     float64   `json:"total_price"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// FlightEvent is the payload published on flight lifecycle changes.
type FlightEvent struct {
	Type          string    `json:"type"`
	FlightID      string    `json:"flight_id"`
	CompanyID     string    `json:"company_id"`
	FlightNumber  string    `json:"flight_number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}
