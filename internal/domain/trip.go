package domain

import "time"

// TripStop is one delivery city on a driver's trip and the orders dropped there.
type TripStop struct {
	City     string
	ArriveAt time.Time
	OrderIDs []int64
}

// TripPlan is the suggested sequence of delivery stops for a driver's active
// orders. It is planning data only; nothing about the orders changes.
type TripPlan struct {
	DriverID             int64
	Start                string
	DepartAt             time.Time
	Stops                []TripStop
	TotalDurationSeconds int
	TotalDistanceKm      int
}
