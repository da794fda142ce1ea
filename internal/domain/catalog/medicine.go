package catalog

import (
	"github.com/emedico/backend/internal/domain/shared/valueobject"
)

// Medicine is a read-only catalog item. Items are seeded at startup and
// never mutated at runtime; copies are handed out by value.
type Medicine struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Brand                string            `json:"brand"`
	Category             string            `json:"category"`
	Price                valueobject.Money `json:"price"`
	Available            bool              `json:"availability"`
	PrescriptionRequired bool              `json:"requires_prescription"`
	Description          string            `json:"description"`
	ImageURL             string            `json:"image_url"`
}

// Currency returns the currency the item is priced in
func (m Medicine) Currency() valueobject.Currency {
	return m.Price.Currency()
}
