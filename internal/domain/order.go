package domain

import "time"

// CargoType is the cargo sensitivity class. It drives the price multiplier.
type CargoType string

const (
	CargoGeneral    CargoType = "general"
	CargoFragile    CargoType = "fragile"
	CargoDangerous  CargoType = "dangerous"
	CargoPerishable CargoType = "perishable"
)

var cargoTypeNames = map[CargoType]string{
	CargoGeneral:    "Общий груз",
	CargoFragile:    "Хрупкий груз",
	CargoDangerous:  "Опасный груз",
	CargoPerishable: "Скоропортящийся груз",
}

// DisplayName returns the localized cargo type label, or the raw value.
func (c CargoType) DisplayName() string {
	if n, ok := cargoTypeNames[c]; ok {
		return n
	}
	return string(c)
}

var categoryNames = map[string]string{
	"electronics": "Электроника",
	"clothing":    "Одежда и обувь",
	"furniture":   "Мебель",
	"food":        "Продукты питания",
	"building":    "Строительные материалы",
	"auto":        "Автозапчасти",
	"industrial":  "Промышленное оборудование",
	"chemicals":   "Химические вещества",
	"documents":   "Документы",
	"other":       "Другое",
}

// CategoryName returns the localized product category label, or the raw value.
func CategoryName(category string) string {
	if n, ok := categoryNames[category]; ok {
		return n
	}
	return category
}

// Order is a delivery order. Status and ClientStatus are two views of one
// lifecycle position; ClientStatus always equals ToClientStatus(Status)
// after any transition applied through this package.
type Order struct {
	ID       int64
	UserID   int64
	DriverID *int64

	SenderName  string
	SenderPhone string
	SenderEmail string

	CargoDescription string
	ProductCategory  string
	CargoWeight      float64
	CargoVolume      float64
	CargoType        CargoType

	ShippingDate    string
	PickupAddress   string
	DeliveryAddress string
	Distance        float64

	Price           *float64
	Insurance       bool
	Packaging       bool
	CancellationFee *float64
	RefundAmount    *float64

	Comments           string
	AdminComment       string
	CancellationReason string

	Status       AdminStatus
	ClientStatus ClientStatus

	CreatedAt   time.Time
	ProcessedAt *time.Time
	AssignedAt  *time.Time
	AcceptedAt  *time.Time
	InTransitAt *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

// PriceValue returns the order price, or 0 when it is not known.
func (o *Order) PriceValue() float64 {
	if o.Price == nil {
		return 0
	}
	return *o.Price
}

// AssignedTo reports whether the order is assigned to the driver user.
func (o *Order) AssignedTo(driverUserID int64) bool {
	return o.DriverID != nil && *o.DriverID == driverUserID
}

// Active reports whether a driver is still working on the order.
func (o *Order) Active() bool {
	return o.Status == StatusConfirmed || o.Status == StatusInTransit
}
