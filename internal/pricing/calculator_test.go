package pricing

import (
	"freight-order-service/internal/domain"
	"math"
	"testing"
)

func TestPriceEndToEnd(t *testing.T) {
	calc := New(DefaultTariff())

	in := Input{WeightKg: 100, VolumeM3: 2, DistanceKm: 274, CargoType: domain.CargoGeneral}
	if got := calc.Price(in); got != 22130 {
		t.Fatalf("price = %d, want 22130", got)
	}

	in.Insurance = true
	if got := calc.Price(in); got != 22351 {
		t.Fatalf("insured price = %d, want 22351", got)
	}
}

func TestPriceBaseOnly(t *testing.T) {
	calc := New(DefaultTariff())
	got := calc.Price(Input{CargoType: domain.CargoGeneral})
	if got != 1000 {
		t.Fatalf("price = %d, want base 1000", got)
	}
}

func TestPriceDeterministic(t *testing.T) {
	calc := New(DefaultTariff())
	in := Input{WeightKg: 13.7, VolumeM3: 0.42, DistanceKm: 807, CargoType: domain.CargoPerishable, Insurance: true, Packaging: true}
	first := calc.Price(in)
	for i := 0; i < 100; i++ {
		if got := calc.Price(in); got != first {
			t.Fatalf("call %d = %d, first = %d", i, got, first)
		}
	}
}

func TestAddonsAreAdditive(t *testing.T) {
	calc := New(DefaultTariff())
	in := Input{WeightKg: 100, VolumeM3: 2, DistanceKm: 274, CargoType: domain.CargoFragile}

	plain := calc.Quote(in)

	in.Packaging = true
	packed := calc.Quote(in)
	if packed.Packaging != 2000 || packed.Insurance != 0 {
		t.Fatalf("packaging quote = %+v", packed)
	}

	in.Insurance = true
	both := calc.Quote(in)
	wantIns := plain.DeliveryCost * 0.01
	if math.Abs(both.Insurance-wantIns) > 1e-9 {
		t.Fatalf("insurance = %v, want %v (1%% of pre-addon cost)", both.Insurance, wantIns)
	}
	want := int64(math.RoundToEven(plain.DeliveryCost + 2000 + wantIns))
	if both.Total != want {
		t.Fatalf("total = %d, want %d", both.Total, want)
	}
}

func TestCargoMultipliers(t *testing.T) {
	calc := New(DefaultTariff())
	base := Input{CargoType: domain.CargoGeneral}
	tests := []struct {
		cargo domain.CargoType
		want  int64
	}{
		{domain.CargoGeneral, 1000},
		{domain.CargoFragile, 1300},
		{domain.CargoDangerous, 1500},
		{domain.CargoPerishable, 1400},
		{"radioactive", 1000},
		{"", 1000},
	}
	for _, tt := range tests {
		in := base
		in.CargoType = tt.cargo
		if got := calc.Price(in); got != tt.want {
			t.Errorf("cargo %q: price = %d, want %d", tt.cargo, got, tt.want)
		}
	}
}

func TestRoundHalfEven(t *testing.T) {
	tariff := DefaultTariff()
	tariff.Base = 0
	tariff.PerKm = 1
	calc := New(tariff)

	if got := calc.Price(Input{DistanceKm: 2.5}); got != 2 {
		t.Fatalf("2.5 rounds to %d, want 2", got)
	}
	if got := calc.Price(Input{DistanceKm: 3.5}); got != 4 {
		t.Fatalf("3.5 rounds to %d, want 4", got)
	}
}

func TestTotalSaturates(t *testing.T) {
	calc := New(DefaultTariff())
	if got := calc.Price(Input{WeightKg: 1e300, VolumeM3: 1}); got != math.MaxInt64 {
		t.Fatalf("huge weight priced at %d, want MaxInt64", got)
	}
	if got := calc.Price(Input{WeightKg: -1e6}); got != 0 {
		t.Fatalf("negative weight priced at %d, want 0", got)
	}
}

func TestCustomTariff(t *testing.T) {
	tariff := DefaultTariff()
	tariff.PerKm = 20
	calc := New(tariff)
	in := Input{WeightKg: 100, VolumeM3: 2, DistanceKm: 274, CargoType: domain.CargoGeneral}
	if got := calc.Price(in); got != 15280 {
		t.Fatalf("price = %d, want 15280", got)
	}
}

func TestInputFromOrder(t *testing.T) {
	o := domain.Order{CargoWeight: 100, CargoVolume: 2, Distance: 274, CargoType: domain.CargoGeneral, Insurance: true}
	if got := New(DefaultTariff()).Price(InputFromOrder(o)); got != 22351 {
		t.Fatalf("price = %d, want 22351", got)
	}
}
