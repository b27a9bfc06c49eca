package models

import "time"

// StationType classifies a station within the network
type StationType string

const (
	StationJunction StationType = "JN"
	StationTerminus StationType = "TM"
	StationHalt     StationType = "HT"
	StationStop     StationType = "ST"
)

// TrainType represents the service class of a train
type TrainType string

const (
	TrainExpress     TrainType = "EX"
	TrainMail        TrainType = "ML"
	TrainSuperfast   TrainType = "SF"
	TrainVandeBharat TrainType = "VB"
	TrainMEMU        TrainType = "MM"
	TrainIntercity   TrainType = "IN"
)

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	BookingWaiting   BookingStatus = "WAT"
	BookingRAC       BookingStatus = "RAC"
	BookingPending   BookingStatus = "PND"
	BookingConfirmed BookingStatus = "CNF"
	BookingCancelled BookingStatus = "CNC"
)

// PaymentMode is how a transaction was paid
type PaymentMode string

const (
	PayCash       PaymentMode = "CSH"
	PayCreditCard PaymentMode = "CCD"
	PayDebitCard  PaymentMode = "DCD"
	PayNetBanking PaymentMode = "NBK"
	PayUPI        PaymentMode = "UPI"
)

// SeatCategory tags a seat as part of the confirmed or RAC pool
type SeatCategory string

const (
	SeatPoolConfirmed SeatCategory = "CNF"
	SeatPoolRAC       SeatCategory = "RAC"
)

// Station is immutable reference data; never mutated once journeys reference it
type Station struct {
	ID   int64       `json:"station_id"`
	Name string      `json:"station_name"`
	Type StationType `json:"station_type"`
}

// Route is a named ordered path of stations from one source station.
// The station chain itself lives in distance_map.
type Route struct {
	ID              int64  `json:"route_id"`
	Name            string `json:"route_name"`
	SourceStationID int64  `json:"source_station_id"`
}

// Train owns zero or more journeys over its lifetime
type Train struct {
	No   int64     `json:"train_no"`
	Name string    `json:"train_name"`
	Type TrainType `json:"train_type"`
}

// Journey is one scheduled run of a train between two stations
type Journey struct {
	ID             int64     `json:"journey_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	TrainID        int64     `json:"train_id"`
	StartStationID int64     `json:"start_station_id"`
	EndStationID   int64     `json:"end_station_id"`
}

// ScheduleStop is one stop of a journey. Distance is the leg from the
// previous stop, derived from the route's distance map and never stored:
// always 0 at the journey origin (stop number 0), nil when either end of
// the leg lacks a map entry.
type ScheduleStop struct {
	ID          int64     `json:"sched_id"`
	JourneyID   int64     `json:"journey_id"`
	StationID   int64     `json:"station_id"`
	StationName string    `json:"station_name"`
	Arrival     time.Time `json:"sched_toa"`
	Departure   time.Time `json:"sched_tod"`
	StopNumber  int       `json:"stop_number"`
	RouteID     int64     `json:"route_id"`
	Distance    *float64  `json:"distance,omitempty"`
}

// Coach belongs to one train and carries the base fare for its class
type Coach struct {
	ID      int64   `json:"coach_id"`
	Name    string  `json:"coach_name"`
	Type    string  `json:"coach_type"`
	Fare    float64 `json:"fare"`
	TrainID int64   `json:"train_id"`
}

// Seat belongs to one coach. The category sizes the CNF/RAC pools; it does not
// track live assignment.
type Seat struct {
	ID       int64        `json:"seat_id"`
	No       int64        `json:"seat_no"`
	Type     string       `json:"seat_type"`
	CoachID  int64        `json:"coach_id"`
	Category SeatCategory `json:"seat_category"`
}

// Booking aggregates reservation records under one payment transaction
type Booking struct {
	ID             int64         `json:"booking_id"`
	Time           time.Time     `json:"booking_time"`
	Status         BookingStatus `json:"booking_status"`
	PNR            int64         `json:"pnr"`
	JourneyID      int64         `json:"journey_id"`
	StartStationID int64         `json:"start_station_id"`
	EndStationID   int64         `json:"end_station_id"`
	Amount         float64       `json:"amount"`
	TxnID          int64         `json:"txn_id"`
}

// Passenger is one traveler keyed by PNR
type Passenger struct {
	PNR        int64  `json:"pnr"`
	Email      string `json:"email"`
	Name       string `json:"pass_name"`
	Age        int    `json:"age"`
	Sex        string `json:"sex"`
	Disability bool   `json:"disability"`
}

// Transaction is the opaque payment ledger entry correlated to bookings.
// Reference is an external correlation id; payment state is never interpreted.
type Transaction struct {
	ID          int64       `json:"txn_id"`
	Reference   string      `json:"txn_ref"`
	TotalAmount float64     `json:"total_amount"`
	Status      string      `json:"txn_status"`
	PaymentMode PaymentMode `json:"payment_mode"`
}

// Cancellation is the immutable record written when a booking is cancelled
type Cancellation struct {
	ID           int64     `json:"cancel_id"`
	BookingID    int64     `json:"booking_id"`
	CancelTime   time.Time `json:"cancel_time"`
	RefundAmount float64   `json:"refund_amount"`
	Status       string    `json:"cancel_status"`
	TxnID        int64     `json:"txn_id"`
}

// User is an account in the auth store
type User struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}
