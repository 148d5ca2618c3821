// Package filter computes the derived visitor view of the catalog: a pure
// function of the feed snapshot and the active criteria. It never mutates
// or reorders its input.
package filter

import (
	"strconv"
	"strings"

	"motorvault-api/internal/domain"
)

// Criteria is ephemeral view state. Both fields arrive as text straight
// from the search inputs; MaxPrice that does not parse as a number simply
// disables the price bound.
type Criteria struct {
	Search   string
	MaxPrice string
}

// Apply returns the records matching the criteria, preserving the input
// order. An empty input yields an empty, non-nil result.
func Apply(cars []domain.Car, c Criteria) []domain.Car {
	search := strings.ToLower(strings.TrimSpace(c.Search))
	maxPrice, priceBound := parsePrice(c.MaxPrice)

	out := make([]domain.Car, 0, len(cars))
	for _, car := range cars {
		if search != "" && !matchesSearch(car, search) {
			continue
		}
		if priceBound && car.Price > maxPrice {
			continue
		}
		out = append(out, car)
	}
	return out
}

// matchesSearch reports a case-insensitive substring match on brand or model.
func matchesSearch(car domain.Car, search string) bool {
	return strings.Contains(strings.ToLower(car.Brand), search) ||
		strings.Contains(strings.ToLower(car.Model), search)
}

func parsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}
