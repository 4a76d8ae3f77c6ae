package model

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	// BookingRefunded is reserved: the value is part of the stored schema
	// but no transition produces it yet.
	BookingRefunded BookingStatus = "refunded"
)

// Booking is the ledger record. Passengers maps 1:1 to a seat decrement
// already applied to the flight; TotalPrice is captured at booking time and
// never recomputed.
type Booking struct {
	ID             string        `json:"id" bson:"_id"`
	UserID         string        `json:"user_id" bson:"user_id"`
	FlightID       string        `json:"flight_id" bson:"flight_id"`
	ConfirmationID string        `json:"confirmation_id" bson:"confirmation_id"`
	Passengers     int           `json:"passengers" bson:"passengers"`
	TotalPrice     float64       `json:"total_price" bson:"total_price"`
	Status         BookingStatus `json:"status" bson:"status"`
	BookedAt       time.Time     `json:"booked_at" bson:"booked_at"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	Flight         *Flight       `json:"flight,omitempty" bson:"-"`
}

type BookingCreate struct {
	FlightID   string `json:"flight_id" validate:"required"`
	Passengers int    `json:"passengers" validate:"required,min=1"`
}
