package pharmacy

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Pharmacy is a partner store listed by the locator
type Pharmacy struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Address           string          `json:"address"`
	DistanceMiles     decimal.Decimal `json:"distance_miles"`
	Open              bool            `json:"is_open"`
	Rating            decimal.Decimal `json:"rating"`
	DeliveryAvailable bool            `json:"delivery_available"`
}

// DistanceLabel renders the distance the way the locator shows it, e.g. "0.5 miles"
func (p Pharmacy) DistanceLabel() string {
	return fmt.Sprintf("%s miles", p.DistanceMiles.StringFixed(1))
}

// Query holds the locator filters
type Query struct {
	Search   string
	OpenNow  bool
	Delivery bool
}

// Filter returns the pharmacies whose name or address contains Search
// (case-insensitive), optionally restricted to open ones and to ones
// offering delivery. Results keep list order.
func Filter(pharmacies []Pharmacy, q Query) []Pharmacy {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(q.Search))

	out := make([]Pharmacy, 0, len(pharmacies))
	for _, p := range pharmacies {
		if needle != "" &&
			!strings.Contains(fold.String(p.Name), needle) &&
			!strings.Contains(fold.String(p.Address), needle) {
			continue
		}
		if q.OpenNow && !p.Open {
			continue
		}
		if q.Delivery && !p.DeliveryAvailable {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Seed returns the locator's fixed pharmacy list
func Seed() []Pharmacy {
	return []Pharmacy{
		{ID: "p001", Name: "HealthFirst Pharmacy", Address: "123 Main St, Anytown, USA", DistanceMiles: decimal.RequireFromString("0.5"), Open: true, Rating: decimal.RequireFromString("4.5"), DeliveryAvailable: true},
		{ID: "p002", Name: "WellCare Drugs", Address: "456 Oak Ave, Anytown, USA", DistanceMiles: decimal.RequireFromString("1.2"), Open: false, Rating: decimal.RequireFromString("4.2"), DeliveryAvailable: true},
		{ID: "p003", Name: "Community Rx", Address: "789 Pine Rd, Anytown, USA", DistanceMiles: decimal.RequireFromString("2.0"), Open: true, Rating: decimal.RequireFromString("4.8"), DeliveryAvailable: false},
		{ID: "p004", Name: "Speedy Meds", Address: "101 Elm St, Anytown, USA", DistanceMiles: decimal.RequireFromString("0.8"), Open: true, Rating: decimal.RequireFromString("3.9"), DeliveryAvailable: true},
	}
}
