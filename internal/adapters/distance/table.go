package distance

import (
	"context"
	"fmt"
	"freight-order-service/internal/ports"
)

type cityPair struct {
	a, b string
	km   int
}

// One entry per unordered pair.
var cityTable = []cityPair{
	{"Москва", "Санкт-Петербург", 714},
	{"Москва", "Кострома", 346},
	{"Москва", "Ярославль", 274},
	{"Москва", "Владимир", 194},
	{"Москва", "Казань", 807},
	{"Москва", "Нижний Новгород", 416},
	{"Москва", "Екатеринбург", 1745},
	{"Москва", "Новосибирск", 3350},
	{"Москва", "Сочи", 1584},
	{"Санкт-Петербург", "Великий Новгород", 180},
	{"Санкт-Петербург", "Псков", 280},
	{"Санкт-Петербург", "Мурманск", 1400},
	{"Санкт-Петербург", "Кострома", 860},
	{"Санкт-Петербург", "Ярославль", 800},
	{"Кострома", "Ярославль", 85},
	{"Кострома", "Иваново", 110},
	{"Кострома", "Нижний Новгород", 330},
	{"Кострома", "Вологда", 220},
	{"Ярославль", "Вологда", 200},
	{"Ярославль", "Рыбинск", 75},
}

// TableProvider answers from the built-in intercity table.
type TableProvider struct {
	km map[[2]string]int
}

func NewTableProvider() *TableProvider {
	m := make(map[[2]string]int, len(cityTable))
	for _, e := range cityTable {
		m[[2]string{e.a, e.b}] = e.km
	}
	return &TableProvider{km: m}
}

// Lookup returns the table distance between two normalized city names in
// either direction.
func (p *TableProvider) Lookup(a, b string) (int, bool) {
	if km, ok := p.km[[2]string{a, b}]; ok {
		return km, true
	}
	km, ok := p.km[[2]string{b, a}]
	return km, ok
}

// GetDistance accepts city names or full addresses.
func (p *TableProvider) GetDistance(_ context.Context, origin, destination string) (ports.DistanceResult, error) {
	a := NormalizeCity(ExtractCity(origin))
	b := NormalizeCity(ExtractCity(destination))
	km, ok := p.Lookup(a, b)
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("table distance %q -> %q: %w", a, b, ports.ErrUnknownRoute)
	}
	return ports.DistanceResult{DistanceKm: km}, nil
}
