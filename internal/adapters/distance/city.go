package distance

import (
	"sort"
	"strings"
)

// ExtractCity returns the city part of a free-form address: the text before
// the first comma, or the first word when there is no comma.
func ExtractCity(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	if i := strings.Index(address, ","); i >= 0 {
		return strings.TrimSpace(address[:i])
	}
	return strings.Fields(address)[0]
}

// knownCities is sorted longest first so "Нижний Новгород" wins over a
// shorter name it contains.
var knownCities = func() []string {
	seen := map[string]struct{}{}
	for _, e := range cityTable {
		seen[e.a] = struct{}{}
		seen[e.b] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := len([]rune(out[i])), len([]rune(out[j]))
		if li != lj {
			return li > lj
		}
		return out[i] < out[j]
	})
	return out
}()

// NormalizeCity maps a city name onto the canonical spelling of a known city
// when one contains the other, ignoring case. Unknown names come back trimmed.
func NormalizeCity(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	folded := strings.ToLower(name)
	for _, c := range knownCities {
		lc := strings.ToLower(c)
		if strings.Contains(lc, folded) || strings.Contains(folded, lc) {
			return c
		}
	}
	return name
}

func sameCity(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
