package model

import "time"

type FlightStatus string

const (
	FlightScheduled FlightStatus = "scheduled"
	FlightCompleted FlightStatus = "completed"
	FlightCancelled FlightStatus = "cancelled"
)

func (s FlightStatus) Valid() bool {
	switch s {
	case FlightScheduled, FlightCompleted, FlightCancelled:
		return true
	}
	return false
}

// Flight carries the seat counters owned by the inventory layer.
// AvailableSeats stays within [0, TotalSeats]; the lower bound is enforced
// by the conditional seat reservation, the upper bound by construction.
type Flight struct {
	ID             string       `json:"id" bson:"_id"`
	CompanyID      string       `json:"company_id" bson:"company_id"`
	CompanyName    string       `json:"company_name" bson:"company_name"`
	FlightNumber   string       `json:"flight_number" bson:"flight_number"`
	Origin         string       `json:"origin" bson:"origin"`
	Destination    string       `json:"destination" bson:"destination"`
	DepartureTime  time.Time    `json:"departure_time" bson:"departure_time"`
	ArrivalTime    time.Time    `json:"arrival_time" bson:"arrival_time"`
	Duration       int          `json:"duration" bson:"duration"` // minutes
	Price          float64      `json:"price" bson:"price"`
	AvailableSeats int          `json:"available_seats" bson:"available_seats"`
	TotalSeats     int          `json:"total_seats" bson:"total_seats"`
	Stops          int          `json:"stops" bson:"stops"`
	Status         FlightStatus `json:"status" bson:"status"`
	CreatedAt      time.Time    `json:"created_at" bson:"created_at"`
}

type FlightCreate struct {
	CompanyID     string    `json:"company_id" validate:"required"`
	CompanyName   string    `json:"company_name" validate:"required,min=2,max=100"`
	FlightNumber  string    `json:"flight_number" validate:"required,min=2,max=10"`
	Origin        string    `json:"origin" validate:"required,len=3"`
	Destination   string    `json:"destination" validate:"required,len=3"`
	DepartureTime time.Time `json:"departure_time" validate:"required"`
	ArrivalTime   time.Time `json:"arrival_time" validate:"required,gtfield=DepartureTime"`
	Duration      int       `json:"duration" validate:"required,min=1"`
	Price         float64   `json:"price" validate:"required,gt=0"`
	TotalSeats    int       `json:"total_seats" validate:"required,min=1,max=1000"`
	Stops         int       `json:"stops" validate:"min=0,max=5"`
}

type FlightUpdate struct {
	Price          *float64      `json:"price,omitempty" validate:"omitempty,gt=0"`
	AvailableSeats *int          `json:"available_seats,omitempty" validate:"omitempty,min=0"`
	Status         *FlightStatus `json:"status,omitempty" validate:"omitempty,oneof=scheduled completed cancelled"`
}

// FlightSearch holds the public search filters. A nil DepartureDate means
// no date restriction; otherwise flights departing the same UTC calendar
// day match.
type FlightSearch struct {
	Origin        string
	Destination   string
	DepartureDate *time.Time
	Limit         int
}
