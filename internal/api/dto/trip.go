package dto

import "time"

type TripStopResponse struct {
	City     string    `json:"city"`
	ArriveAt time.Time `json:"arrive_at"`
	OrderIDs []int64   `json:"order_ids"`
}

type TripResponse struct {
	DriverID             int64              `json:"driver_id"`
	Start                string             `json:"start"`
	DepartAt             time.Time          `json:"depart_at"`
	TotalDistanceKm      int                `json:"total_distance_km"`
	TotalDurationSeconds int                `json:"total_duration_seconds"`
	Stops                []TripStopResponse `json:"stops"`
}
