package domain

import "time"

// DriverStatus is the employment status of a driver.
type DriverStatus string

// WorkStatus is the driver's own availability toggle, independent of employment.
type WorkStatus string

const (
	DriverActive    DriverStatus = "active"
	DriverDismissed DriverStatus = "dismissed"

	WorkActive   WorkStatus = "active"
	WorkInactive WorkStatus = "inactive"
)

// ApplicationStatus tracks a driver application through review.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// DriverShare is the part of a delivered order's price paid to the driver.
const DriverShare = 0.70

var carTypeNames = map[string]string{
	"tent":         "Тент",
	"refrigerator": "Рефрижератор",
	"container":    "Контейнер",
	"tank":         "Цистерна",
	"flatbed":      "Платформа",
}

// CarTypeName returns the localized vehicle body label, or the raw value.
func CarTypeName(carType string) string {
	if n, ok := carTypeNames[carType]; ok {
		return n
	}
	return carType
}

// Vehicle describes the truck a driver operates.
type Vehicle struct {
	LicenseNumber string
	Experience    int
	CarModel      string
	CarNumber     string
	MaxWeight     float64
	CarType       string
}

// Contact is the user data joined onto driver rows.
type Contact struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

type Driver struct {
	ID     int64
	UserID int64
	Vehicle
	Contact

	Status              DriverStatus
	WorkStatus          WorkStatus
	CompletedDeliveries int
	HireDate            string
	DismissalReason     string
}

// Assignable reports whether the driver can be offered new orders.
func (d Driver) Assignable() bool {
	return d.Status == DriverActive && d.WorkStatus == WorkActive
}

// FullName joins first and last name.
func (d Driver) FullName() string {
	switch {
	case d.FirstName == "":
		return d.LastName
	case d.LastName == "":
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

type DriverApplication struct {
	ID     int64
	UserID int64
	Vehicle
	Contact

	Status      ApplicationStatus
	AppliedAt   *time.Time
	ProcessedAt *time.Time
	ProcessedBy *int64
}

// Review settles a pending application.
func (a *DriverApplication) Review(approve bool, adminID int64, now time.Time) error {
	if a.Status != ApplicationPending {
		return ErrApplicationProcessed
	}
	a.Status = ApplicationRejected
	if approve {
		a.Status = ApplicationApproved
	}
	by := adminID
	a.ProcessedBy = &by
	stamp(&a.ProcessedAt, now)
	return nil
}

// HireFrom builds the driver record created when an application is approved.
func HireFrom(a DriverApplication, now time.Time) Driver {
	return Driver{
		UserID:     a.UserID,
		Vehicle:    a.Vehicle,
		Contact:    a.Contact,
		Status:     DriverActive,
		WorkStatus: WorkActive,
		HireDate:   now.Format("2006-01-02"),
	}
}

// User is an account of any role.
type User struct {
	ID        int64
	Email     string
	Phone     string
	FirstName string
	LastName  string
	Verified  bool
	IsAdmin   bool
	IsDriver  bool
}

// Role names the view a user gets of orders.
func (u User) Role() string {
	switch {
	case u.IsAdmin:
		return "admin"
	case u.IsDriver:
		return "driver"
	default:
		return "client"
	}
}
