package pharmacy

import (
	"context"

	"github.com/emedico/backend/internal/domain/pharmacy"
)

// Service serves the pharmacy locator
type Service struct {
	pharmacies []pharmacy.Pharmacy
}

// NewService creates a locator over pharmacies, or over the seeded list
// when pharmacies is nil
func NewService(pharmacies []pharmacy.Pharmacy) *Service {
	if pharmacies == nil {
		pharmacies = pharmacy.Seed()
	}
	return &Service{pharmacies: pharmacies}
}

// List returns the pharmacies matching q
func (s *Service) List(_ context.Context, q pharmacy.Query) []pharmacy.Pharmacy {
	return pharmacy.Filter(s.pharmacies, q)
}
