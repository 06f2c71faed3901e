package pricing

import (
	"freight-order-service/internal/domain"
	"math"
)

// Input is the subset of an order that determines its price.
type Input struct {
	WeightKg   float64
	VolumeM3   float64
	DistanceKm float64
	CargoType  domain.CargoType
	Insurance  bool
	Packaging  bool
}

// InputFromOrder extracts the priced attributes of o.
func InputFromOrder(o domain.Order) Input {
	return Input{
		WeightKg:   o.CargoWeight,
		VolumeM3:   o.CargoVolume,
		DistanceKm: o.Distance,
		CargoType:  o.CargoType,
		Insurance:  o.Insurance,
		Packaging:  o.Packaging,
	}
}

// Quote is the itemized price shown before an order is submitted.
type Quote struct {
	DeliveryCost float64
	Packaging    float64
	Insurance    float64
	Total        int64
}

// Calculator prices shipments. The zero value is not usable; use New.
type Calculator struct {
	tariff Tariff
}

func New(t Tariff) *Calculator {
	return &Calculator{tariff: t}
}

func (c *Calculator) Tariff() Tariff { return c.tariff }

// Quote itemizes the price. Insurance is charged on the delivery cost
// before add-ons, so the two add-ons never compound.
// Inputs are not validated: callers run OrderRequest.ValidateCargo first.
func (c *Calculator) Quote(in Input) Quote {
	t := c.tariff

	delivery := t.Base +
		in.DistanceKm*t.PerKm +
		in.WeightKg*t.PerKg +
		in.VolumeM3*t.PerM3
	delivery *= t.Multiplier(in.CargoType)

	q := Quote{DeliveryCost: delivery}
	if in.Packaging {
		q.Packaging = t.PackagingFee
	}
	if in.Insurance {
		q.Insurance = delivery * t.InsuranceRate
	}

	q.Total = roundTotal(delivery + q.Packaging + q.Insurance)
	return q
}

// roundTotal saturates instead of wrapping when a tariff pushes the total
// past int64.
func roundTotal(v float64) int64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(math.RoundToEven(v))
}

// Price returns the rounded total for in.
func (c *Calculator) Price(in Input) int64 {
	return c.Quote(in).Total
}
