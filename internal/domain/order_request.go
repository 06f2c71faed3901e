package domain

import (
	"math"
	"sort"
	"strings"
)

// OrderRequest is what a client submits to create an order.
type OrderRequest struct {
	SenderName       string
	SenderPhone      string
	SenderEmail      string
	CargoDescription string
	ProductCategory  string
	CargoWeight      float64
	CargoVolume      float64
	CargoType        CargoType
	ShippingDate     string
	PickupAddress    string
	DeliveryAddress  string
	Distance         float64
	Insurance        bool
	Packaging        bool
	Comments         string
}

// FieldErrors maps a request field to the reason it was refused.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "invalid order: " + strings.Join(parts, "; ")
}

const msgRequired = "Обязательное поле"

// Upper bounds keep every price well inside int64.
const (
	MaxCargoWeight = 100_000.0
	MaxCargoVolume = 1_000.0
	MaxDistance    = 20_000.0
)

// Validate checks the request before any network call or pricing.
func (r OrderRequest) Validate() error {
	fe := FieldErrors{}

	required := map[string]string{
		"senderName":       r.SenderName,
		"senderPhone":      r.SenderPhone,
		"cargoDescription": r.CargoDescription,
		"productCategory":  r.ProductCategory,
		"cargoType":        string(r.CargoType),
		"shippingDate":     r.ShippingDate,
		"pickupAddress":    r.PickupAddress,
		"deliveryAddress":  r.DeliveryAddress,
	}
	for field, v := range required {
		if strings.TrimSpace(v) == "" {
			fe[field] = msgRequired
		}
	}

	r.checkCargo(fe)

	if len(fe) > 0 {
		return fe
	}
	return nil
}

// ValidateCargo checks only the numeric fields that feed pricing. A quote
// needs these and nothing else.
func (r OrderRequest) ValidateCargo() error {
	fe := FieldErrors{}
	r.checkCargo(fe)
	if len(fe) > 0 {
		return fe
	}
	return nil
}

func (r OrderRequest) checkCargo(fe FieldErrors) {
	switch {
	case !finite(r.CargoWeight) || r.CargoWeight <= 0:
		fe["cargoWeight"] = "Вес должен быть больше 0"
	case r.CargoWeight > MaxCargoWeight:
		fe["cargoWeight"] = "Вес не может превышать 100000 кг"
	}
	switch {
	case !finite(r.CargoVolume) || r.CargoVolume <= 0:
		fe["cargoVolume"] = "Объем должен быть больше 0"
	case r.CargoVolume > MaxCargoVolume:
		fe["cargoVolume"] = "Объем не может превышать 1000 м³"
	}
	switch {
	case !finite(r.Distance) || r.Distance < 0:
		fe["distance"] = "Расстояние не может быть отрицательным"
	case r.Distance > MaxDistance:
		fe["distance"] = "Расстояние не может превышать 20000 км"
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// NewOrder builds a fresh order for userID from a validated request.
// Distance and price are filled in by the caller.
func (r OrderRequest) NewOrder(userID int64) Order {
	cargo := r.CargoType
	if cargo == "" {
		cargo = CargoGeneral
	}
	return Order{
		UserID:           userID,
		SenderName:       strings.TrimSpace(r.SenderName),
		SenderPhone:      strings.TrimSpace(r.SenderPhone),
		SenderEmail:      strings.TrimSpace(r.SenderEmail),
		CargoDescription: strings.TrimSpace(r.CargoDescription),
		ProductCategory:  r.ProductCategory,
		CargoWeight:      r.CargoWeight,
		CargoVolume:      r.CargoVolume,
		CargoType:        cargo,
		ShippingDate:     r.ShippingDate,
		PickupAddress:    strings.TrimSpace(r.PickupAddress),
		DeliveryAddress:  strings.TrimSpace(r.DeliveryAddress),
		Distance:         r.Distance,
		Insurance:        r.Insurance,
		Packaging:        r.Packaging,
		Comments:         r.Comments,
		Status:           StatusNew,
		ClientStatus:     ToClientStatus(StatusNew),
	}
}
