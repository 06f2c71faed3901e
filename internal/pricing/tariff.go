package pricing

import "freight-order-service/internal/domain"

// Tariff holds the pricing constants. All money values are in rubles.
type Tariff struct {
	Base          float64
	PerKm         float64
	PerKg         float64
	PerM3         float64
	PackagingFee  float64
	InsuranceRate float64
	Multipliers   map[domain.CargoType]float64
}

// DefaultTariff returns the constants used by the public price estimator.
func DefaultTariff() Tariff {
	return Tariff{
		Base:          1000,
		PerKm:         45,
		PerKg:         80,
		PerM3:         400,
		PackagingFee:  2000,
		InsuranceRate: 0.01,
		Multipliers: map[domain.CargoType]float64{
			domain.CargoGeneral:    1.0,
			domain.CargoFragile:    1.3,
			domain.CargoDangerous:  1.5,
			domain.CargoPerishable: 1.4,
		},
	}
}

// Multiplier returns the coefficient for cargo type c. Unknown types get 1.0.
func (t Tariff) Multiplier(c domain.CargoType) float64 {
	if m, ok := t.Multipliers[c]; ok {
		return m
	}
	return 1.0
}
