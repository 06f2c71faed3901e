package dto

import (
	"freight-order-service/internal/domain"
	"time"
)

// DriverResponse is a drivers row joined with the user's contact columns.
type DriverResponse struct {
	ID                  int64   `json:"id"`
	UserID              int64   `json:"user_id"`
	LicenseNumber       string  `json:"license_number"`
	Experience          int     `json:"experience"`
	CarModel            string  `json:"car_model"`
	CarNumber           string  `json:"car_number"`
	MaxWeight           float64 `json:"max_weight"`
	CarType             string  `json:"car_type"`
	Status              string  `json:"status"`
	WorkStatus          string  `json:"work_status"`
	CompletedDeliveries int     `json:"completed_deliveries"`
	HireDate            string  `json:"hire_date"`
	DismissalReason     string  `json:"dismissal_reason,omitempty"`
	FirstName           string  `json:"first_name"`
	LastName            string  `json:"last_name"`
	Phone               string  `json:"phone"`
	Email               string  `json:"email"`
}

func NewDriverResponse(d domain.Driver) DriverResponse {
	return DriverResponse{
		ID:                  d.ID,
		UserID:              d.UserID,
		LicenseNumber:       d.LicenseNumber,
		Experience:          d.Experience,
		CarModel:            d.CarModel,
		CarNumber:           d.CarNumber,
		MaxWeight:           d.MaxWeight,
		CarType:             d.CarType,
		Status:              string(d.Status),
		WorkStatus:          string(d.WorkStatus),
		CompletedDeliveries: d.CompletedDeliveries,
		HireDate:            d.HireDate,
		DismissalReason:     d.DismissalReason,
		FirstName:           d.FirstName,
		LastName:            d.LastName,
		Phone:               d.Phone,
		Email:               d.Email,
	}
}

// DriverInfoResponse adds the driver's earnings and active orders.
type DriverInfoResponse struct {
	DriverResponse
	Earnings     float64         `json:"earnings"`
	ActiveOrders []OrderResponse `json:"active_orders"`
}

type ApplicationResponse struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	LicenseNumber string     `json:"license_number"`
	Experience    int        `json:"experience"`
	CarModel      string     `json:"car_model"`
	CarNumber     string     `json:"car_number"`
	MaxWeight     float64    `json:"max_weight"`
	CarType       string     `json:"car_type"`
	Status        string     `json:"status"`
	AppliedAt     *time.Time `json:"applied_at"`
	ProcessedAt   *time.Time `json:"processed_at"`
	ProcessedBy   *int64     `json:"processed_by"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Email         string     `json:"email,omitempty"`
}

func NewApplicationResponse(a domain.DriverApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:            a.ID,
		UserID:        a.UserID,
		LicenseNumber: a.LicenseNumber,
		Experience:    a.Experience,
		CarModel:      a.CarModel,
		CarNumber:     a.CarNumber,
		MaxWeight:     a.MaxWeight,
		CarType:       a.CarType,
		Status:        string(a.Status),
		AppliedAt:     a.AppliedAt,
		ProcessedAt:   a.ProcessedAt,
		ProcessedBy:   a.ProcessedBy,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Phone:         a.Phone,
		Email:         a.Email,
	}
}

type ApplicationRequest struct {
	LicenseNumber string  `json:"licenseNumber"`
	Experience    int     `json:"experience"`
	CarModel      string  `json:"carModel"`
	CarNumber     string  `json:"carNumber"`
	MaxWeight     float64 `json:"maxWeight"`
	CarType       string  `json:"carType"`
}

func (r ApplicationRequest) Vehicle() domain.Vehicle {
	carType := r.CarType
	if carType == "" {
		carType = "tent"
	}
	return domain.Vehicle{
		LicenseNumber: r.LicenseNumber,
		Experience:    r.Experience,
		CarModel:      r.CarModel,
		CarNumber:     r.CarNumber,
		MaxWeight:     r.MaxWeight,
		CarType:       carType,
	}
}

type DismissRequest struct {
	Reason       string `json:"reason"`
	OrdersAction string `json:"ordersAction"`
	Action       string `json:"action"`
}

type WorkStatusRequest struct {
	WorkStatus string `json:"workStatus"`
}
